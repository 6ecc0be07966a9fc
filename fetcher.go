package docchat

import "context"

// UserAgent is the desktop browser user agent sent on every upstream request.
const UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Fetcher retrieves the body of a page or script.
type Fetcher interface {
	// Fetch returns the response body for the URL.
	// Non-success statuses are reported as errors.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (body string, err error)

	// Close releases any resources held by the fetcher.
	Close() error
}
