package main

import (
	"fmt"
	"io"

	"github.com/fwojciec/docchat"
)

// Run executes the ask command.
func (c *AskCmd) Run(deps *Dependencies) error {
	url, err := docchat.ResolveSiteURL(deps.Ctx, deps.Sites, c.Source)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docchat.ErrorMessage(err))
		if docchat.ErrorCode(err) == docchat.ENOTFOUND {
			fmt.Fprintln(deps.Stderr, "Hint: run 'docchat list' to see registered sources")
		}
		return err
	}
	return streamAnswer(deps, url, c.Question)
}

// streamAnswer runs the relay for one question, writing answer fragments to
// stdout as they arrive. Status events go to stderr in verbose mode.
func streamAnswer(deps *Dependencies, url, question string) error {
	var wrote bool
	for ev := range deps.Relay.Run(deps.Ctx, url, question) {
		switch ev.Type {
		case docchat.EventStatus:
			if deps.Verbose {
				fmt.Fprintf(deps.Stderr, "%s...\n", ev.Content)
			}
		case docchat.EventDelta:
			wrote = true
			_, _ = io.WriteString(deps.Stdout, ev.Content)
		case docchat.EventError:
			if wrote {
				fmt.Fprintln(deps.Stdout)
			}
			fmt.Fprintf(deps.Stderr, "error: %s\n", ev.Content)
			return docchat.Errorf(docchat.ECHAT, "%s", ev.Content)
		}
	}
	if err := deps.Ctx.Err(); err != nil {
		return err
	}
	if wrote {
		fmt.Fprintln(deps.Stdout)
	}
	return nil
}
