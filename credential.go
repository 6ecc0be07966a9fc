package docchat

import "context"

// SiteCredential is the chat credential a documentation site embeds in its
// client-side bundles. Either field may serve as the bearer token.
type SiteCredential struct {
	APIKey        string `json:"apiKey,omitempty"`
	IntegrationID string `json:"integrationId,omitempty"`
}

// Validate returns an error if neither field is set.
func (c *SiteCredential) Validate() error {
	if c == nil || (c.APIKey == "" && c.IntegrationID == "") {
		return Errorf(EEXTRACT, "credential has neither api key nor integration id")
	}
	return nil
}

// Token returns the bearer token, preferring the api key.
func (c *SiteCredential) Token() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	return c.IntegrationID
}

// CredentialExtractor recovers the embedded chat credential of a site.
type CredentialExtractor interface {
	// Extract fetches the page at url, scans its script bundles and returns
	// the first credential found in priority order.
	// Every failure is reported as EEXTRACT; a nil error always comes with
	// a valid credential.
	Extract(ctx context.Context, url string) (*SiteCredential, error)
}

// ScriptFinder lists the external script bundles referenced by a page.
type ScriptFinder interface {
	// FindScripts returns absolute script URLs in document order.
	FindScripts(html string, pageURL string) ([]string, error)
}
