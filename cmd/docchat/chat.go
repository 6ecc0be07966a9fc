package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/fwojciec/docchat"
)

// Run executes the chat command: one question per input line until EOF or
// "exit". A failed answer is reported and the session continues.
func (c *ChatCmd) Run(deps *Dependencies) error {
	url, err := docchat.ResolveSiteURL(deps.Ctx, deps.Sites, c.Source)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docchat.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Chatting with %s. Type 'exit' to quit.\n", url)

	scanner := bufio.NewScanner(deps.Stdin)
	for {
		fmt.Fprint(deps.Stdout, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(deps.Stdout)
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		switch question {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		if err := streamAnswer(deps, url, question); err != nil && deps.Ctx.Err() != nil {
			return deps.Ctx.Err()
		}
	}
}
