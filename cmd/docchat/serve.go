package main

import (
	"fmt"

	dchttp "github.com/fwojciec/docchat/http"
)

// Run executes the serve command. It blocks until the context is canceled.
func (c *ServeCmd) Run(deps *Dependencies) error {
	s := dchttp.NewServer()
	s.Addr = c.Addr
	s.Logger = deps.Logger
	s.Relay = deps.Relay
	s.Sites = deps.Sites
	if c.Rate > 0 {
		s.Limiter = dchttp.NewClientLimiter(c.Rate, c.Burst)
	}

	if err := s.Open(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}
	deps.Logger.Info("listening", "addr", c.Addr, "port", s.Port())

	<-deps.Ctx.Done()

	deps.Logger.Info("shutting down")
	return s.Close()
}
