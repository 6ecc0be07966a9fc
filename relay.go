package docchat

import "context"

// ChatRequest holds everything the chat endpoint needs for one answer.
type ChatRequest struct {
	// SiteURL is the documentation page the credential was taken from.
	// It supplies the origin and referer headers.
	SiteURL string

	Credential *SiteCredential

	// Solution is the encoded proof-of-work solution.
	Solution string

	Message string
}

// DeltaFunc receives answer fragments in arrival order.
// Returning an error stops the stream and is returned by StreamAnswer.
type DeltaFunc func(content string) error

// ChatClient talks to the upstream chat provider.
type ChatClient interface {
	// Challenge requests a fresh proof-of-work challenge on behalf of siteURL.
	// Returns ECHALLENGE if the endpoint fails or answers with a non-2xx status.
	Challenge(ctx context.Context, siteURL string) (*ChallengeDescriptor, error)

	// StreamAnswer posts the chat request and calls fn for every non-empty
	// content fragment until the stream ends.
	// Returns ECHAT for a non-2xx response and ESTREAM for transport
	// failures while reading the stream.
	StreamAnswer(ctx context.Context, req *ChatRequest, fn DeltaFunc) error
}

// ChatRelay runs the whole pipeline for one question.
type ChatRelay interface {
	// Run returns a channel of events that is closed when the run ends.
	// The run stops as soon as ctx is done; callers that stop consuming
	// early must cancel ctx.
	Run(ctx context.Context, siteURL, message string) <-chan Event
}
