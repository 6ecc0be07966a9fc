package main_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fwojciec/docchat"
	main "github.com/fwojciec/docchat/cmd/docchat"
	"github.com/fwojciec/docchat/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPCmd_ServesStdio(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"ask_documentation","arguments":{"source":"react","question":"hi"}}}`,
	}, "\n") + "\n"

	deps, stdout, _ := newDeps(context.Background(), input)
	deps.Sites = registry()
	deps.Relay = &mock.ChatRelay{
		RunFn: func(ctx context.Context, siteURL, message string) <-chan docchat.Event {
			return mock.Events(docchat.DeltaEvent("Hi "), docchat.DeltaEvent("there"))
		},
	}

	require.NoError(t, (&main.MCPCmd{}).Run(deps))

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 2)

	var resp struct {
		Result struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &resp))
	require.Len(t, resp.Result.Content, 1)
	assert.Equal(t, "Hi there", resp.Result.Content[0].Text)
}
