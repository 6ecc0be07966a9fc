package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docchat"
)

// Ensure LoggingExtractor implements docchat.CredentialExtractor.
var _ docchat.CredentialExtractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps a CredentialExtractor with logging. Credential
// values are never logged, only which field was found.
type LoggingExtractor struct {
	next   docchat.CredentialExtractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next docchat.CredentialExtractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs the operation.
func (e *LoggingExtractor) Extract(ctx context.Context, url string) (cred *docchat.SiteCredential, err error) {
	defer func(begin time.Time) {
		e.logger.Info("credential extraction",
			"url", url,
			"field", credentialField(cred),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Extract(ctx, url)
}

func credentialField(cred *docchat.SiteCredential) string {
	switch {
	case cred == nil:
		return "(none)"
	case cred.APIKey != "":
		return "apiKey"
	case cred.IntegrationID != "":
		return "integrationId"
	default:
		return "(none)"
	}
}
