package docchat

import (
	"context"
	"net/url"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Site is a known documentation site, addressed by a short alias.
type Site struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	Builtin     bool      `json:"builtin"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Name derives a display name from the alias by capitalizing its first letter.
func (s *Site) Name() string {
	r, size := utf8.DecodeRuneInString(s.ID)
	if r == utf8.RuneError {
		return s.ID
	}
	return string(unicode.ToUpper(r)) + s.ID[size:]
}

// Validate returns an error if the site contains invalid fields.
// An empty description is filled with a default.
func (s *Site) Validate() error {
	if s.ID == "" {
		return Errorf(EINVALID, "site id required")
	}
	if s.URL == "" {
		return Errorf(EINVALID, "site url required")
	}
	if !isHTTPURL(s.URL) {
		return Errorf(EINVALID, "site url must be an absolute http(s) URL")
	}
	if s.Description == "" {
		s.Description = "Documentation for " + s.ID
	}
	return nil
}

// SiteService represents a service for managing the site registry.
type SiteService interface {
	// FindSiteByID retrieves a site by alias.
	// Returns ENOTFOUND if the site does not exist.
	FindSiteByID(ctx context.Context, id string) (*Site, error)

	// FindSites retrieves sites matching the filter, ordered by alias.
	FindSites(ctx context.Context, filter SiteFilter) ([]*Site, error)

	// SaveSite creates the site or replaces the existing one with the same alias.
	SaveSite(ctx context.Context, site *Site) error

	// DeleteSite removes a site.
	// Returns ENOTFOUND if the site does not exist.
	DeleteSite(ctx context.Context, id string) error
}

// SiteFilter represents a filter for FindSites.
type SiteFilter struct {
	ID      *string `json:"id"`
	Builtin *bool   `json:"builtin"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// ResolveSiteURL maps an alias or URL to a site URL.
// A registered alias wins; otherwise an http(s) URL is returned unchanged.
// Returns ENOTFOUND for anything else.
func ResolveSiteURL(ctx context.Context, sites SiteService, aliasOrURL string) (string, error) {
	site, err := sites.FindSiteByID(ctx, aliasOrURL)
	if err == nil {
		return site.URL, nil
	} else if ErrorCode(err) != ENOTFOUND {
		return "", err
	}

	if strings.HasPrefix(aliasOrURL, "http://") || strings.HasPrefix(aliasOrURL, "https://") {
		return aliasOrURL, nil
	}
	return "", Errorf(ENOTFOUND, "unknown source %q", aliasOrURL)
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// DefaultSites returns the built-in site catalogue.
func DefaultSites() []*Site {
	sites := []*Site{
		{ID: "langfuse", URL: "https://langfuse.com", Description: "Langfuse (LLM Engineering Platform) official documentation"},
		{ID: "render", URL: "https://render.com/docs", Description: "Render (Cloud Hosting) official documentation"},
		{ID: "clerk", URL: "https://clerk.com/docs", Description: "Clerk (Authentication) official documentation"},
		{ID: "neon", URL: "https://neon.com/docs", Description: "Neon (Serverless Postgres) official documentation"},
		{ID: "teleport", URL: "https://goteleport.com/docs", Description: "Teleport (Access Plane) official documentation"},
		{ID: "react", URL: "https://react.dev", Description: "The library for web and native user interfaces."},
		{ID: "bootstrap", URL: "https://getbootstrap.com", Description: "The most popular HTML, CSS, and JavaScript framework for dev"},
		{ID: "ragflow", URL: "https://ragflow.io", Description: "RAGFlow is a leading open-source Retrieval-Augmented Generat"},
		{ID: "node", URL: "https://base.org", Description: "Everything required to run your own Base node"},
		{ID: "socket-io", URL: "https://socket.io", Description: "Realtime application framework (Node.JS server)"},
		{ID: "sway", URL: "https://docs.fuel.network/docs/sway", Description: "Empowering everyone to build reliable and efficient smart contracts."},
		{ID: "bun", URL: "https://bun.com", Description: "Incredibly fast JavaScript runtime, bundler, test runner, and package manager."},
		{ID: "zod", URL: "https://zod.dev", Description: "TypeScript-first schema validation with static type inference."},
		{ID: "novu", URL: "https://docs.novu.co", Description: "The open-source notification Inbox infrastructure. E-mail, SMS, and Push."},
		{ID: "litellm", URL: "https://docs.litellm.ai/docs", Description: "Python SDK, Proxy Server (AI Gateway) to call 100+ LLM APIs."},
		{ID: "posthog", URL: "https://posthog.com", Description: "PostHog is an all-in-one developer platform for building products."},
		{ID: "goose", URL: "https://block.github.io/goose", Description: "An open source, extensible AI agent that goes beyond code suggestions."},
		{ID: "frigate", URL: "https://docs.frigate.video", Description: "NVR with realtime local object detection for IP cameras."},
		{ID: "fingerprintjs", URL: "https://docs.fingerprint.com", Description: "The most advanced free and open-source browser fingerprinting."},
		{ID: "spacetimedb", URL: "https://spacetimedb.com/docs", Description: "Multiplayer at the speed of light."},
		{ID: "nextra", URL: "https://nextra.site", Description: "Simple, powerful and flexible site generation framework with Next.js."},
		{ID: "zitadel", URL: "https://zitadel.com", Description: "ZITADEL - Identity infrastructure, simplified for you."},
	}
	for _, s := range sites {
		s.Builtin = true
	}
	return sites
}
