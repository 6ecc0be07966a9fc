package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docchat"
)

// Ensure LoggingChatClient implements docchat.ChatClient.
var _ docchat.ChatClient = (*LoggingChatClient)(nil)

// LoggingChatClient wraps a ChatClient with logging.
type LoggingChatClient struct {
	next   docchat.ChatClient
	logger *slog.Logger
}

// NewLoggingChatClient creates a new LoggingChatClient.
func NewLoggingChatClient(next docchat.ChatClient, logger *slog.Logger) *LoggingChatClient {
	return &LoggingChatClient{next: next, logger: logger}
}

// Challenge delegates to the wrapped client and logs the operation.
func (c *LoggingChatClient) Challenge(ctx context.Context, siteURL string) (d *docchat.ChallengeDescriptor, err error) {
	defer func(begin time.Time) {
		attrs := []any{"site", siteURL, "duration", time.Since(begin), "err", err}
		if d != nil {
			attrs = append(attrs, "maxnumber", d.MaxNumber)
		}
		c.logger.Info("challenge", attrs...)
	}(time.Now())
	return c.next.Challenge(ctx, siteURL)
}

// StreamAnswer delegates to the wrapped client and logs the number of
// fragments and bytes streamed.
func (c *LoggingChatClient) StreamAnswer(ctx context.Context, req *docchat.ChatRequest, fn docchat.DeltaFunc) (err error) {
	var deltas, size int
	defer func(begin time.Time) {
		c.logger.Info("chat stream",
			"site", req.SiteURL,
			"deltas", deltas,
			"bytes", size,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.StreamAnswer(ctx, req, func(content string) error {
		deltas++
		size += len(content)
		return fn(content)
	})
}
