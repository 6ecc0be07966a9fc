package scan

import (
	"context"
	"net/url"
	"strings"

	"github.com/fwojciec/docchat"
	"golang.org/x/sync/errgroup"
)

// ProbePaths are appended to a site's origin, in order, when detecting
// whether the site embeds a chat credential.
var ProbePaths = []string{"", "/docs", "/introduction", "/home"}

// Detection is the outcome of probing one site.
type Detection struct {
	Site        string                  `json:"url"`
	DetectedURL string                  `json:"detectedUrl,omitempty"`
	Found       bool                    `json:"found"`
	Credential  *docchat.SiteCredential `json:"config,omitempty"`
}

// DetectProgressFunc is called once per site as detections complete.
type DetectProgressFunc func(Detection)

// Detect probes every site with the extractor, at most concurrency sites
// at a time. Sites may be bare domains or URLs. Results are returned in
// input order; progress, if provided, is called from the calling goroutine
// in completion order.
func Detect(ctx context.Context, extractor docchat.CredentialExtractor, sites []string, concurrency int, progress DetectProgressFunc) ([]Detection, error) {
	if concurrency <= 0 {
		concurrency = 10
	}

	type indexed struct {
		position  int
		detection Detection
	}
	resultCh := make(chan indexed, len(sites))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for i, site := range sites {
			g.Go(func() error {
				resultCh <- indexed{position: i, detection: detectSite(gctx, extractor, site)}
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	results := make([]Detection, len(sites))
	for r := range resultCh {
		results[r.position] = r.detection
		if progress != nil {
			progress(r.detection)
		}
	}

	return results, ctx.Err()
}

func detectSite(ctx context.Context, extractor docchat.CredentialExtractor, site string) Detection {
	base := siteOrigin(site)
	for _, path := range ProbePaths {
		if ctx.Err() != nil {
			break
		}
		target := base + path
		cred, err := extractor.Extract(ctx, target)
		if err == nil {
			return Detection{Site: site, DetectedURL: target, Found: true, Credential: cred}
		}
	}
	return Detection{Site: site}
}

// siteOrigin returns scheme://host for a URL, or https://domain for a bare domain.
func siteOrigin(site string) string {
	site = strings.TrimSpace(site)
	if u, err := url.Parse(site); err == nil && u.Scheme != "" && u.Host != "" {
		return u.Scheme + "://" + u.Host
	}
	return "https://" + strings.Trim(site, "/")
}
