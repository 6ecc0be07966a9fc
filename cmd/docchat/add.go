package main

import (
	"fmt"

	"github.com/fwojciec/docchat"
)

// Run executes the add command. Adding an existing alias replaces it.
func (c *AddCmd) Run(deps *Dependencies) error {
	site := &docchat.Site{
		ID:          c.ID,
		URL:         c.URL,
		Description: c.Description,
	}
	if err := deps.Sites.SaveSite(deps.Ctx, site); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docchat.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Added %q (%s)\n", site.ID, site.URL)
	return nil
}
