// Package relay drives one question through credential extraction, the
// proof-of-work gate and the upstream answer stream.
package relay

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fwojciec/docchat"
)

// Status messages, in the order they are emitted.
const (
	StatusScanningFormat = "scanning %s for configuration"
	StatusChallenge      = "requesting challenge"
	StatusSolving        = "solving proof-of-work"
	StatusAnswer         = "retrieving answer"
)

// ErrExtraction is the error event content when no credential was found.
const ErrExtraction = "failed to extract configuration"

// Ensure Relay implements docchat.ChatRelay at compile time.
var _ docchat.ChatRelay = (*Relay)(nil)

// Relay implements docchat.ChatRelay. Runs share no state, so a single
// Relay serves any number of concurrent runs.
type Relay struct {
	Extractor docchat.CredentialExtractor
	Solver    docchat.ChallengeSolver
	Client    docchat.ChatClient
}

// Run implements docchat.ChatRelay. The run executes on its own goroutine,
// including the proof-of-work search; it ends when the event sequence is
// complete or ctx is done, whichever comes first.
func (r *Relay) Run(ctx context.Context, siteURL, message string) <-chan docchat.Event {
	events := make(chan docchat.Event)

	go func() {
		defer close(events)

		emit := func(e docchat.Event) bool {
			select {
			case events <- e:
				return true
			case <-ctx.Done():
				return false
			}
		}
		r.run(ctx, siteURL, message, emit)
	}()

	return events
}

// run executes the pipeline. emit reports false once the consumer is gone,
// after which nothing more is done.
func (r *Relay) run(ctx context.Context, siteURL, message string, emit func(docchat.Event) bool) {
	fail := func(err error) {
		if ctx.Err() != nil {
			return
		}
		emit(docchat.ErrorEvent(docchat.ErrorMessage(err)))
	}

	if !emit(docchat.StatusEvent(statusScanning(siteURL))) {
		return
	}
	cred, err := r.Extractor.Extract(ctx, siteURL)
	if err == nil {
		err = cred.Validate()
	}
	if err != nil {
		if ctx.Err() == nil {
			emit(docchat.ErrorEvent(ErrExtraction))
		}
		return
	}

	if !emit(docchat.StatusEvent(StatusChallenge)) {
		return
	}
	challenge, err := r.Client.Challenge(ctx, siteURL)
	if err != nil {
		fail(err)
		return
	}

	if !emit(docchat.StatusEvent(StatusSolving)) {
		return
	}
	solution, err := r.Solver.Solve(ctx, challenge)
	if err != nil {
		fail(err)
		return
	}

	if !emit(docchat.StatusEvent(StatusAnswer)) {
		return
	}
	req := &docchat.ChatRequest{
		SiteURL:    siteURL,
		Credential: cred,
		Solution:   solution,
		Message:    message,
	}
	err = r.Client.StreamAnswer(ctx, req, func(content string) error {
		if !emit(docchat.DeltaEvent(content)) {
			return ctx.Err()
		}
		return nil
	})
	if err != nil {
		fail(err)
	}
}

func statusScanning(siteURL string) string {
	host := siteURL
	if u, err := url.Parse(siteURL); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}
	return fmt.Sprintf(StatusScanningFormat, host)
}
