package main

import (
	"fmt"

	"github.com/fwojciec/docchat"
)

// Run executes the remove command. Built-in sources are restored on every
// start, so only user-added sources can be removed.
func (c *RemoveCmd) Run(deps *Dependencies) error {
	site, err := deps.Sites.FindSiteByID(deps.Ctx, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docchat.ErrorMessage(err))
		return err
	}
	if site.Builtin {
		err := docchat.Errorf(docchat.EINVALID, "built-in source %q cannot be removed", c.ID)
		fmt.Fprintf(deps.Stderr, "error: %s\n", docchat.ErrorMessage(err))
		fmt.Fprintln(deps.Stderr, "Hint: use 'docchat add' to override it with your own URL")
		return err
	}

	if err := deps.Sites.DeleteSite(deps.Ctx, c.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docchat.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Removed %q\n", c.ID)
	return nil
}
