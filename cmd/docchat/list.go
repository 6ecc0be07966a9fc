package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/fwojciec/docchat"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	sites, err := deps.Sites.FindSites(deps.Ctx, docchat.SiteFilter{})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}

	if len(sites) == 0 {
		fmt.Fprintln(deps.Stdout, "No sources registered. Use 'docchat add' to register one.")
		return nil
	}

	w := tabwriter.NewWriter(deps.Stdout, 0, 0, 2, ' ', 0)
	for _, s := range sites {
		origin := "builtin"
		if !s.Builtin {
			origin = "custom"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.URL, origin, s.Description)
	}
	return w.Flush()
}
