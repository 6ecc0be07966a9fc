package main

import (
	"github.com/fwojciec/docchat/mcp"
)

// Run executes the mcp command, serving requests on stdin/stdout until
// stdin is closed.
func (c *MCPCmd) Run(deps *Dependencies) error {
	s := mcp.NewServer(deps.Sites, deps.Relay)
	s.Logger = deps.Logger
	return s.Run(deps.Ctx, deps.Stdin, deps.Stdout)
}
