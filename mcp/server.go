// Package mcp serves the site registry and the chat relay as Model Context
// Protocol tools over newline-delimited JSON-RPC on stdio.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fwojciec/docchat"
)

// Tool names.
const (
	ToolListSources = "list_documentation_sources"
	ToolAsk         = "ask_documentation"
)

// Server answers MCP requests. Requests are handled one at a time, in
// arrival order.
type Server struct {
	Sites  docchat.SiteService
	Relay  docchat.ChatRelay
	Logger *slog.Logger

	// Version is reported in serverInfo.
	Version string
}

// NewServer returns a Server backed by the registry and relay.
func NewServer(sites docchat.SiteService, relay docchat.ChatRelay) *Server {
	return &Server{
		Sites:   sites,
		Relay:   relay,
		Logger:  slog.New(slog.DiscardHandler),
		Version: "dev",
	}
}

// Run reads requests from input until EOF or ctx is done and writes
// responses to output.
func (s *Server) Run(ctx context.Context, input io.Reader, output io.Writer) error {
	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	encoder := json.NewEncoder(output)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req request
		if err := json.Unmarshal(line, &req); err != nil {
			if err := writeError(encoder, json.RawMessage("null"), codeParseError, "parse error: "+err.Error()); err != nil {
				return fmt.Errorf("writing parse error response: %w", err)
			}
			continue
		}

		if req.JSONRPC != "2.0" {
			if !req.isNotification() {
				if err := writeError(encoder, req.ID, codeInvalidRequest, "unsupported JSON-RPC version"); err != nil {
					return fmt.Errorf("writing version error response: %w", err)
				}
			}
			continue
		}

		if req.isNotification() {
			continue
		}

		if err := s.dispatch(ctx, encoder, &req); err != nil {
			return err
		}
	}

	return scanner.Err()
}

func (s *Server) dispatch(ctx context.Context, encoder *json.Encoder, req *request) error {
	switch req.Method {
	case "initialize":
		return writeResult(encoder, req.ID, initializeResult{
			ProtocolVersion: protocolVersion,
			Capabilities:    serverCapabilities{Tools: &toolCapability{}},
			ServerInfo:      serverInfo{Name: "docchat", Version: s.Version},
		})
	case "ping":
		return writeResult(encoder, req.ID, map[string]any{})
	case "tools/list":
		return s.handleToolsList(ctx, encoder, req)
	case "tools/call":
		return s.handleToolsCall(ctx, encoder, req)
	default:
		return writeError(encoder, req.ID, codeMethodNotFound, "unknown method: "+req.Method)
	}
}

func (s *Server) handleToolsList(ctx context.Context, encoder *json.Encoder, req *request) error {
	aliases, err := s.aliases(ctx)
	if err != nil {
		return writeError(encoder, req.ID, codeInvalidRequest, docchat.ErrorMessage(err))
	}

	example := "langfuse"
	if len(aliases) > 0 {
		example = aliases[0]
	}

	return writeResult(encoder, req.ID, toolsListResult{Tools: []toolDescription{
		{
			Name:        ToolListSources,
			Description: "List detailed metadata (URL, description) for all supported documentation sources.",
			InputSchema: inputSchema{Type: "object", Properties: map[string]schemaProperty{}},
		},
		{
			Name: ToolAsk,
			Description: "Consult official technical documentation. " +
				"Currently configured sources: " + strings.Join(aliases, ", ") + ". " +
				"Use one of these aliases, or provide a full URL for a new site.",
			InputSchema: inputSchema{
				Type: "object",
				Properties: map[string]schemaProperty{
					"source": {
						Type:        "string",
						Description: fmt.Sprintf("The documentation source alias (e.g. %s) or a full URL.", example),
					},
					"question": {
						Type:        "string",
						Description: "The specific technical question to ask.",
					},
				},
				Required: []string{"source", "question"},
			},
		},
	}})
}

func (s *Server) handleToolsCall(ctx context.Context, encoder *json.Encoder, req *request) error {
	if len(req.Params) == 0 {
		return writeError(encoder, req.ID, codeInvalidParams, "params required for tools/call")
	}

	var params toolsCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return writeError(encoder, req.ID, codeInvalidParams, "invalid tools/call params: "+err.Error())
	}

	switch params.Name {
	case ToolListSources:
		return writeResult(encoder, req.ID, s.listSources(ctx))
	case ToolAsk:
		var args struct {
			Source   string `json:"source"`
			Question string `json:"question"`
		}
		if len(params.Arguments) > 0 {
			if err := json.Unmarshal(params.Arguments, &args); err != nil {
				return writeError(encoder, req.ID, codeInvalidParams, "invalid arguments: "+err.Error())
			}
		}
		if args.Source == "" || args.Question == "" {
			return writeError(encoder, req.ID, codeInvalidParams, "source and question are required")
		}
		return writeResult(encoder, req.ID, s.ask(ctx, args.Source, args.Question))
	default:
		return writeError(encoder, req.ID, codeInvalidParams, "unknown tool: "+params.Name)
	}
}

type sourceEntry struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

func (s *Server) listSources(ctx context.Context) toolsCallResult {
	sites, err := s.Sites.FindSites(ctx, docchat.SiteFilter{})
	if err != nil {
		return textResult("Error: "+docchat.ErrorMessage(err), true)
	}

	entries := make([]sourceEntry, 0, len(sites))
	for _, site := range sites {
		entries = append(entries, sourceEntry{ID: site.ID, Description: site.Description, URL: site.URL})
	}

	buf, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return textResult("Error: "+err.Error(), true)
	}
	return textResult(string(buf), false)
}

// ask runs one relay pass and returns the concatenated answer. An error
// event makes the result an error; any partial answer is kept before it.
func (s *Server) ask(ctx context.Context, source, question string) toolsCallResult {
	siteURL, err := docchat.ResolveSiteURL(ctx, s.Sites, source)
	if docchat.ErrorCode(err) == docchat.ENOTFOUND {
		aliases, _ := s.aliases(ctx)
		return textResult(fmt.Sprintf("Unknown source %q. Available sources: %s", source, strings.Join(aliases, ", ")), true)
	} else if err != nil {
		return textResult("Error: "+docchat.ErrorMessage(err), true)
	}

	s.Logger.Info("ask", "source", source, "url", siteURL)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var answer strings.Builder
	for e := range s.Relay.Run(ctx, siteURL, question) {
		switch e.Type {
		case docchat.EventDelta:
			answer.WriteString(e.Content)
		case docchat.EventError:
			if answer.Len() > 0 {
				answer.WriteString("\n\n")
			}
			answer.WriteString("Error: " + e.Content)
			return textResult(answer.String(), true)
		}
	}
	return textResult(answer.String(), false)
}

func (s *Server) aliases(ctx context.Context) ([]string, error) {
	sites, err := s.Sites.FindSites(ctx, docchat.SiteFilter{})
	if err != nil {
		return nil, err
	}
	aliases := make([]string, 0, len(sites))
	for _, site := range sites {
		aliases = append(aliases, site.ID)
	}
	return aliases, nil
}

func writeResult(encoder *json.Encoder, id json.RawMessage, result any) error {
	return encoder.Encode(response{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	})
}

func writeError(encoder *json.Encoder, id json.RawMessage, code int, message string) error {
	return encoder.Encode(response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &rpcError{Code: code, Message: message},
	})
}
