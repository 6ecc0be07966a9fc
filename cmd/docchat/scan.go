package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fwojciec/docchat/scan"
)

// Run executes the scan command.
func (c *ScanCmd) Run(deps *Dependencies) error {
	sites, err := readSites(c.File)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}
	if len(sites) == 0 {
		fmt.Fprintln(deps.Stdout, "No sites to scan.")
		return nil
	}

	fmt.Fprintf(deps.Stdout, "Scanning %d sites...\n", len(sites))

	results, err := scan.Detect(deps.Ctx, deps.Extractor, sites, c.Concurrency, func(d scan.Detection) {
		if d.Found {
			fmt.Fprintf(deps.Stdout, "  found   %s (%s)\n", d.Site, d.DetectedURL)
		} else if deps.Verbose {
			fmt.Fprintf(deps.Stdout, "  missing %s\n", d.Site)
		}
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}

	var found int
	for _, r := range results {
		if r.Found {
			found++
		}
	}
	fmt.Fprintf(deps.Stdout, "Found %d of %d sites\n", found, len(results))

	if c.Output == "" {
		return nil
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	if err := os.WriteFile(c.Output, append(data, '\n'), 0644); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}
	fmt.Fprintf(deps.Stdout, "Results written to %s\n", c.Output)
	return nil
}

// readSites returns the non-empty lines of path, skipping # comments.
func readSites(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var sites []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sites = append(sites, line)
	}
	return sites, scanner.Err()
}
