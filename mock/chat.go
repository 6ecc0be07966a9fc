package mock

import (
	"context"

	"github.com/fwojciec/docchat"
)

var _ docchat.ChatClient = (*ChatClient)(nil)

// ChatClient is a mock implementation of docchat.ChatClient.
type ChatClient struct {
	ChallengeFn    func(ctx context.Context, siteURL string) (*docchat.ChallengeDescriptor, error)
	StreamAnswerFn func(ctx context.Context, req *docchat.ChatRequest, fn docchat.DeltaFunc) error
}

func (c *ChatClient) Challenge(ctx context.Context, siteURL string) (*docchat.ChallengeDescriptor, error) {
	return c.ChallengeFn(ctx, siteURL)
}

func (c *ChatClient) StreamAnswer(ctx context.Context, req *docchat.ChatRequest, fn docchat.DeltaFunc) error {
	return c.StreamAnswerFn(ctx, req, fn)
}

var _ docchat.ChatRelay = (*ChatRelay)(nil)

// ChatRelay is a mock implementation of docchat.ChatRelay.
type ChatRelay struct {
	RunFn func(ctx context.Context, siteURL, message string) <-chan docchat.Event
}

func (r *ChatRelay) Run(ctx context.Context, siteURL, message string) <-chan docchat.Event {
	return r.RunFn(ctx, siteURL, message)
}

// Events returns a closed channel that yields the given events in order.
func Events(events ...docchat.Event) <-chan docchat.Event {
	ch := make(chan docchat.Event, len(events))
	for _, e := range events {
		ch <- e
	}
	close(ch)
	return ch
}
