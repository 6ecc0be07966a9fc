package mock

import (
	"context"

	"github.com/fwojciec/docchat"
)

var _ docchat.CredentialExtractor = (*CredentialExtractor)(nil)

// CredentialExtractor is a mock implementation of docchat.CredentialExtractor.
type CredentialExtractor struct {
	ExtractFn func(ctx context.Context, url string) (*docchat.SiteCredential, error)
}

func (e *CredentialExtractor) Extract(ctx context.Context, url string) (*docchat.SiteCredential, error) {
	return e.ExtractFn(ctx, url)
}
