// Package scan recovers the chat credential a documentation site embeds in
// its client-side script bundles.
package scan

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/fwojciec/docchat"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultMaxScripts bounds how many script bundles are fetched per page.
	DefaultMaxScripts = 30

	// DefaultScriptTimeout is the timeout applied to each script fetch.
	DefaultScriptTimeout = 5 * time.Second
)

// priorityTokens mark script paths that are likely to hold the widget
// configuration. Matching is case-insensitive on the URL path.
var priorityTokens = []string{"inkeep", "_app", "app", "main", "page", "layout"}

var (
	apiKeyPattern        = regexp.MustCompile(`["']?apiKey["']?\s*:\s*["']([a-f0-9]{32,})["']`)
	integrationIDPattern = regexp.MustCompile(`["']?integrationId["']?\s*:\s*["']([a-zA-Z0-9_-]{20,})["']`)
)

// Ensure Extractor implements docchat.CredentialExtractor at compile time.
var _ docchat.CredentialExtractor = (*Extractor)(nil)

// Extractor fetches a page, fetches its script bundles concurrently and
// returns the credential found in the highest-priority bundle.
type Extractor struct {
	// PageFetcher retrieves the documentation page.
	PageFetcher docchat.Fetcher

	// ScriptFetcher retrieves script bundles. Defaults to PageFetcher.
	ScriptFetcher docchat.Fetcher

	Scripts docchat.ScriptFinder

	// MaxScripts defaults to DefaultMaxScripts.
	MaxScripts int

	// ScriptTimeout defaults to DefaultScriptTimeout.
	ScriptTimeout time.Duration
}

// Extract implements docchat.CredentialExtractor.
// Script fetches run in parallel, but the result is chosen by scanning
// candidates in priority order, never by completion order.
func (e *Extractor) Extract(ctx context.Context, pageURL string) (*docchat.SiteCredential, error) {
	html, err := e.PageFetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, docchat.Errorf(docchat.EEXTRACT, "fetching %s: %v", pageURL, err)
	}

	scripts, err := e.Scripts.FindScripts(html, pageURL)
	if err != nil {
		return nil, docchat.Errorf(docchat.EEXTRACT, "finding scripts: %s", docchat.ErrorMessage(err))
	}

	maxScripts := e.MaxScripts
	if maxScripts <= 0 {
		maxScripts = DefaultMaxScripts
	}
	candidates := Prioritize(scripts, maxScripts)
	if len(candidates) == 0 {
		return nil, docchat.Errorf(docchat.EEXTRACT, "no external scripts on %s", pageURL)
	}

	results := e.scanAll(ctx, candidates)
	for _, cred := range results {
		if cred != nil {
			return cred, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, docchat.Errorf(docchat.EEXTRACT, "scanning scripts: %v", err)
	}
	return nil, docchat.Errorf(docchat.EEXTRACT, "no credential in %d scripts", len(candidates))
}

// scanAll fetches every candidate concurrently and returns one result per
// candidate, in candidate order. A failed fetch leaves a nil entry.
func (e *Extractor) scanAll(ctx context.Context, candidates []string) []*docchat.SiteCredential {
	fetcher := e.ScriptFetcher
	if fetcher == nil {
		fetcher = e.PageFetcher
	}
	timeout := e.ScriptTimeout
	if timeout <= 0 {
		timeout = DefaultScriptTimeout
	}

	results := make([]*docchat.SiteCredential, len(candidates))

	var g errgroup.Group
	for i, scriptURL := range candidates {
		g.Go(func() error {
			sctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			body, err := fetcher.Fetch(sctx, scriptURL)
			if err != nil {
				return nil
			}
			results[i] = Match(body)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Prioritize deduplicates script URLs and orders them with likely
// application bundles first, keeping document order within each group.
// The result is truncated to max entries.
func Prioritize(scripts []string, max int) []string {
	seen := make(map[string]bool, len(scripts))
	var priority, others []string

	for _, s := range scripts {
		if seen[s] {
			continue
		}
		seen[s] = true

		if isPriority(s) {
			priority = append(priority, s)
		} else {
			others = append(others, s)
		}
	}

	ordered := append(priority, others...)
	if len(ordered) > max {
		ordered = ordered[:max]
	}
	return ordered
}

func isPriority(scriptURL string) bool {
	path := scriptURL
	if u, err := url.Parse(scriptURL); err == nil {
		path = u.Path
	}
	path = strings.ToLower(path)

	for _, token := range priorityTokens {
		if strings.Contains(path, token) {
			return true
		}
	}
	return false
}

// Match scans a script body for an embedded credential. The api key
// pattern is tried before the integration id pattern and the first match
// wins. Returns nil when neither matches.
func Match(body string) *docchat.SiteCredential {
	if m := apiKeyPattern.FindStringSubmatch(body); m != nil {
		return &docchat.SiteCredential{APIKey: m[1]}
	}
	if m := integrationIDPattern.FindStringSubmatch(body); m != nil {
		return &docchat.SiteCredential{IntegrationID: m[1]}
	}
	return nil
}
