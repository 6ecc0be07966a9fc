// Package goquery finds the external script bundles a documentation page
// references, using goquery to parse the HTML.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docchat"
)

var _ docchat.ScriptFinder = (*ScriptFinder)(nil)

// ScriptFinder extracts <script src> references from HTML.
type ScriptFinder struct{}

// NewScriptFinder creates a new ScriptFinder.
func NewScriptFinder() *ScriptFinder {
	return &ScriptFinder{}
}

// FindScripts returns the absolute URL of every script element with an
// external source, in document order. References are resolved against the
// origin of pageURL, not its path. Malformed and non-HTTP references are
// dropped. Duplicates are preserved.
func (f *ScriptFinder) FindScripts(html string, pageURL string) ([]string, error) {
	page, err := url.Parse(pageURL)
	if err != nil || page.Host == "" {
		return nil, docchat.Errorf(docchat.EINVALID, "invalid page URL %q", pageURL)
	}
	origin := &url.URL{Scheme: page.Scheme, Host: page.Host, Path: "/"}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, docchat.Errorf(docchat.EINVALID, "failed to parse HTML: %v", err)
	}

	var scripts []string
	doc.Find("script[src]").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		src = strings.TrimSpace(src)
		if src == "" {
			return
		}
		if resolved := resolveScript(origin, src); resolved != "" {
			scripts = append(scripts, resolved)
		}
	})

	return scripts, nil
}

// resolveScript resolves src against origin.
// Returns empty string if src cannot be parsed or is not an HTTP(S) URL.
func resolveScript(origin *url.URL, src string) string {
	ref, err := url.Parse(src)
	if err != nil {
		return ""
	}
	resolved := origin.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	if resolved.Host == "" {
		return ""
	}
	resolved.Fragment = ""
	return resolved.String()
}
