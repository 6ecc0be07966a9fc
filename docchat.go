// Package docchat bridges a documentation site's embedded chat widget to
// callers that have no browser session. Given a site URL and a question it
// recovers the site's chat credential from its script bundles, solves the
// upstream proof-of-work challenge, opens a streamed chat completion and
// re-emits the stream as a sequence of status, delta and error events.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, sqlite/, inkeep/).
package docchat
