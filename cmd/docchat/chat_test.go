package main_test

import (
	"context"
	"testing"

	"github.com/fwojciec/docchat"
	main "github.com/fwojciec/docchat/cmd/docchat"
	"github.com/fwojciec/docchat/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatCmd(t *testing.T) {
	t.Parallel()

	t.Run("answers each line until exit", func(t *testing.T) {
		t.Parallel()

		var questions []string
		deps, stdout, _ := newDeps(context.Background(), "first\n\n  second  \nexit\nignored\n")
		deps.Sites = registry()
		deps.Relay = &mock.ChatRelay{
			RunFn: func(ctx context.Context, siteURL, message string) <-chan docchat.Event {
				questions = append(questions, message)
				return mock.Events(docchat.DeltaEvent("answer to " + message))
			},
		}

		cmd := &main.ChatCmd{Source: "react"}
		require.NoError(t, cmd.Run(deps))

		assert.Equal(t, []string{"first", "second"}, questions)
		assert.Contains(t, stdout.String(), "Chatting with https://react.dev")
		assert.Contains(t, stdout.String(), "answer to first\n")
		assert.Contains(t, stdout.String(), "answer to second\n")
	})

	t.Run("stops at end of input", func(t *testing.T) {
		t.Parallel()

		var runs int
		deps, _, _ := newDeps(context.Background(), "only")
		deps.Sites = registry()
		deps.Relay = &mock.ChatRelay{
			RunFn: func(ctx context.Context, siteURL, message string) <-chan docchat.Event {
				runs++
				return mock.Events(docchat.DeltaEvent("ok"))
			},
		}

		cmd := &main.ChatCmd{Source: "react"}
		require.NoError(t, cmd.Run(deps))
		assert.Equal(t, 1, runs)
	})

	t.Run("continues after a failed answer", func(t *testing.T) {
		t.Parallel()

		var runs int
		deps, stdout, stderr := newDeps(context.Background(), "one\ntwo\nquit\n")
		deps.Sites = registry()
		deps.Relay = &mock.ChatRelay{
			RunFn: func(ctx context.Context, siteURL, message string) <-chan docchat.Event {
				runs++
				if message == "one" {
					return mock.Events(docchat.ErrorEvent("failed to extract configuration"))
				}
				return mock.Events(docchat.DeltaEvent("fine"))
			},
		}

		cmd := &main.ChatCmd{Source: "react"}
		require.NoError(t, cmd.Run(deps))

		assert.Equal(t, 2, runs)
		assert.Contains(t, stderr.String(), "failed to extract configuration")
		assert.Contains(t, stdout.String(), "fine\n")
	})

	t.Run("rejects unknown source", func(t *testing.T) {
		t.Parallel()

		deps, _, _ := newDeps(context.Background(), "q\n")
		deps.Sites = registry()

		cmd := &main.ChatCmd{Source: "missing"}
		err := cmd.Run(deps)
		assert.Equal(t, docchat.ENOTFOUND, docchat.ErrorCode(err))
	})
}
