package mcp_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fwojciec/docchat"
	"github.com/fwojciec/docchat/mcp"
	"github.com/fwojciec/docchat/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type callResult struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	IsError bool `json:"isError"`
}

func newSites() *mock.SiteService {
	sites := []*docchat.Site{
		{ID: "bun", URL: "https://bun.com", Description: "Fast runtime"},
		{ID: "zod", URL: "https://zod.dev", Description: "Schema validation"},
	}
	return &mock.SiteService{
		FindSiteByIDFn: func(ctx context.Context, id string) (*docchat.Site, error) {
			for _, s := range sites {
				if s.ID == id {
					return s, nil
				}
			}
			return nil, docchat.Errorf(docchat.ENOTFOUND, "site %q not found", id)
		},
		FindSitesFn: func(ctx context.Context, filter docchat.SiteFilter) ([]*docchat.Site, error) {
			return sites, nil
		},
	}
}

// run feeds the newline-joined requests to a server and returns one
// decoded response per output line.
func run(t *testing.T, s *mcp.Server, requests ...string) []testResponse {
	t.Helper()

	var out bytes.Buffer
	require.NoError(t, s.Run(context.Background(), strings.NewReader(strings.Join(requests, "\n")+"\n"), &out))

	var responses []testResponse
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var resp testResponse
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &resp))
		responses = append(responses, resp)
	}
	return responses
}

func decodeCall(t *testing.T, resp testResponse) callResult {
	t.Helper()

	require.Nil(t, resp.Error)
	var result callResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	require.Len(t, result.Content, 1)
	return result
}

func TestServer_Initialize(t *testing.T) {
	t.Parallel()

	responses := run(t, mcp.NewServer(newSites(), &mock.ChatRelay{}),
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05"}}`)

	require.Len(t, responses, 1)
	assert.JSONEq(t, `1`, string(responses[0].ID))
	var result struct {
		ProtocolVersion string `json:"protocolVersion"`
		Capabilities    struct {
			Tools *struct{} `json:"tools"`
		} `json:"capabilities"`
		ServerInfo struct {
			Name string `json:"name"`
		} `json:"serverInfo"`
	}
	require.NoError(t, json.Unmarshal(responses[0].Result, &result))
	assert.Equal(t, "2024-11-05", result.ProtocolVersion)
	assert.NotNil(t, result.Capabilities.Tools)
	assert.Equal(t, "docchat", result.ServerInfo.Name)
}

func TestServer_Ping(t *testing.T) {
	t.Parallel()

	responses := run(t, mcp.NewServer(newSites(), &mock.ChatRelay{}), `{"jsonrpc":"2.0","id":"a","method":"ping"}`)

	require.Len(t, responses, 1)
	assert.JSONEq(t, `"a"`, string(responses[0].ID))
	assert.JSONEq(t, `{}`, string(responses[0].Result))
}

func TestServer_ToolsList(t *testing.T) {
	t.Parallel()

	responses := run(t, mcp.NewServer(newSites(), &mock.ChatRelay{}), `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)

	require.Len(t, responses, 1)
	var result struct {
		Tools []struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			InputSchema struct {
				Required []string `json:"required"`
			} `json:"inputSchema"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(responses[0].Result, &result))
	require.Len(t, result.Tools, 2)
	assert.Equal(t, mcp.ToolListSources, result.Tools[0].Name)
	assert.Equal(t, mcp.ToolAsk, result.Tools[1].Name)
	assert.Contains(t, result.Tools[1].Description, "bun, zod")
	assert.Equal(t, []string{"source", "question"}, result.Tools[1].InputSchema.Required)
}

func TestServer_ListSources(t *testing.T) {
	t.Parallel()

	responses := run(t, mcp.NewServer(newSites(), &mock.ChatRelay{}),
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"list_documentation_sources"}}`)

	result := decodeCall(t, responses[0])
	assert.False(t, result.IsError)
	assert.JSONEq(t, `[
		{"id":"bun","description":"Fast runtime","url":"https://bun.com"},
		{"id":"zod","description":"Schema validation","url":"https://zod.dev"}
	]`, result.Content[0].Text)
}

func TestServer_Ask(t *testing.T) {
	t.Parallel()

	t.Run("concatenates deltas for alias", func(t *testing.T) {
		t.Parallel()

		var gotURL, gotQuestion string
		relay := &mock.ChatRelay{
			RunFn: func(ctx context.Context, siteURL, message string) <-chan docchat.Event {
				gotURL, gotQuestion = siteURL, message
				return mock.Events(
					docchat.StatusEvent("scanning zod.dev for configuration"),
					docchat.DeltaEvent("Use "),
					docchat.DeltaEvent("z.object()"),
				)
			},
		}

		responses := run(t, mcp.NewServer(newSites(), relay),
			`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"ask_documentation","arguments":{"source":"zod","question":"objects?"}}}`)

		result := decodeCall(t, responses[0])
		assert.False(t, result.IsError)
		assert.Equal(t, "Use z.object()", result.Content[0].Text)
		assert.Equal(t, "https://zod.dev", gotURL)
		assert.Equal(t, "objects?", gotQuestion)
	})

	t.Run("accepts full URL", func(t *testing.T) {
		t.Parallel()

		var gotURL string
		relay := &mock.ChatRelay{
			RunFn: func(ctx context.Context, siteURL, message string) <-chan docchat.Event {
				gotURL = siteURL
				return mock.Events(docchat.DeltaEvent("ok"))
			},
		}

		responses := run(t, mcp.NewServer(newSites(), relay),
			`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"ask_documentation","arguments":{"source":"https://docs.new.dev","question":"q"}}}`)

		assert.False(t, decodeCall(t, responses[0]).IsError)
		assert.Equal(t, "https://docs.new.dev", gotURL)
	})

	t.Run("reports relay error with partial answer", func(t *testing.T) {
		t.Parallel()

		relay := &mock.ChatRelay{
			RunFn: func(ctx context.Context, siteURL, message string) <-chan docchat.Event {
				return mock.Events(docchat.DeltaEvent("Par"), docchat.ErrorEvent("stream error: EOF"))
			},
		}

		responses := run(t, mcp.NewServer(newSites(), relay),
			`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"ask_documentation","arguments":{"source":"bun","question":"q"}}}`)

		result := decodeCall(t, responses[0])
		assert.True(t, result.IsError)
		assert.Equal(t, "Par\n\nError: stream error: EOF", result.Content[0].Text)
	})

	t.Run("lists available sources for unknown alias", func(t *testing.T) {
		t.Parallel()

		relay := &mock.ChatRelay{
			RunFn: func(ctx context.Context, siteURL, message string) <-chan docchat.Event {
				t.Error("relay should not run")
				return mock.Events()
			},
		}

		responses := run(t, mcp.NewServer(newSites(), relay),
			`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"ask_documentation","arguments":{"source":"nope","question":"q"}}}`)

		result := decodeCall(t, responses[0])
		assert.True(t, result.IsError)
		assert.Contains(t, result.Content[0].Text, `Unknown source "nope"`)
		assert.Contains(t, result.Content[0].Text, "bun, zod")
	})

	t.Run("rejects missing arguments", func(t *testing.T) {
		t.Parallel()

		responses := run(t, mcp.NewServer(newSites(), &mock.ChatRelay{}),
			`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"ask_documentation","arguments":{"source":"bun"}}}`)

		require.NotNil(t, responses[0].Error)
		assert.Equal(t, -32602, responses[0].Error.Code)
	})
}

func TestServer_Errors(t *testing.T) {
	t.Parallel()

	responses := run(t, mcp.NewServer(newSites(), &mock.ChatRelay{}),
		`not json`,
		`{"jsonrpc":"1.0","id":1,"method":"ping"}`,
		`{"jsonrpc":"2.0","id":2,"method":"resources/list"}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"nope"}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
	)

	require.Len(t, responses, 4)
	assert.Equal(t, -32700, responses[0].Error.Code)
	assert.Equal(t, -32600, responses[1].Error.Code)
	assert.Equal(t, -32601, responses[2].Error.Code)
	assert.Equal(t, -32602, responses[3].Error.Code)
	assert.Contains(t, responses[3].Error.Message, "unknown tool")
}
