// Package inkeep implements docchat.ChatClient against the hosted chat
// provider that documentation widgets talk to.
package inkeep

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/docchat"
	"github.com/google/uuid"
)

// Upstream contract defaults.
const (
	DefaultChallengeURL = "https://api.inkeep.com/v1/challenge"
	DefaultChatURL      = "https://api.inkeep.com/v1/chat/completions"
	DefaultModel        = "inkeep-qa-expert"

	// DefaultChallengeTimeout bounds the challenge request. The chat
	// stream itself is bounded only by the caller's context.
	DefaultChallengeTimeout = 10 * time.Second
)

const (
	// SolutionHeader carries the encoded proof-of-work solution.
	SolutionHeader = "x-inkeep-challenge-solution"

	dataPrefix  = "data:"
	doneMarker  = "[DONE]"
	maxLineSize = 1 << 20
	maxBodySize = 64 << 10
)

// Ensure Client implements docchat.ChatClient at compile time.
var _ docchat.ChatClient = (*Client)(nil)

// Client talks to the challenge and chat-completions endpoints.
type Client struct {
	httpClient       *http.Client
	challengeURL     string
	chatURL          string
	model            string
	userAgent        string
	challengeTimeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for both endpoints.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithChallengeURL overrides the challenge endpoint.
func WithChallengeURL(u string) Option {
	return func(c *Client) {
		c.challengeURL = u
	}
}

// WithChatURL overrides the chat-completions endpoint.
func WithChatURL(u string) Option {
	return func(c *Client) {
		c.chatURL = u
	}
}

// WithModel overrides the model identifier sent with every chat request.
func WithModel(model string) Option {
	return func(c *Client) {
		c.model = model
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithChallengeTimeout sets the timeout for the challenge request.
func WithChallengeTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.challengeTimeout = d
	}
}

// NewClient creates a Client with the upstream defaults.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:       http.DefaultClient,
		challengeURL:     DefaultChallengeURL,
		chatURL:          DefaultChatURL,
		model:            DefaultModel,
		userAgent:        docchat.UserAgent,
		challengeTimeout: DefaultChallengeTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Challenge implements docchat.ChatClient.
func (c *Client) Challenge(ctx context.Context, siteURL string) (*docchat.ChallengeDescriptor, error) {
	ctx, cancel := context.WithTimeout(ctx, c.challengeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.challengeURL, nil)
	if err != nil {
		return nil, docchat.Errorf(docchat.ECHALLENGE, "challenge request failed: %v", err)
	}
	if err := c.setBrowserHeaders(req, siteURL); err != nil {
		return nil, docchat.Errorf(docchat.ECHALLENGE, "challenge request failed: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, docchat.Errorf(docchat.ECHALLENGE, "challenge request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, docchat.Errorf(docchat.ECHALLENGE, "challenge request failed: HTTP %d", resp.StatusCode)
	}

	var d docchat.ChallengeDescriptor
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&d); err != nil {
		return nil, docchat.Errorf(docchat.ECHALLENGE, "invalid challenge response: %v", err)
	}
	return &d, nil
}

type chatPayload struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	ID      string `json:"id"`
}

// StreamAnswer implements docchat.ChatClient.
func (c *Client) StreamAnswer(ctx context.Context, r *docchat.ChatRequest, fn docchat.DeltaFunc) error {
	if r.Credential == nil || r.Credential.Token() == "" {
		return docchat.Errorf(docchat.EINVALID, "chat request requires a credential")
	}

	body, err := json.Marshal(chatPayload{
		Model: c.model,
		Messages: []chatMessage{{
			Role:    "user",
			Content: r.Message,
			ID:      uuid.NewString(),
		}},
		Stream: true,
	})
	if err != nil {
		return fmt.Errorf("marshal chat payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.chatURL, bytes.NewReader(body))
	if err != nil {
		return docchat.Errorf(docchat.ECHAT, "chat request failed: %v", err)
	}
	if err := c.setBrowserHeaders(req, r.SiteURL); err != nil {
		return docchat.Errorf(docchat.ECHAT, "chat request failed: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.Credential.Token())
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SolutionHeader, r.Solution)
	req.Header.Set("x-stainless-helper-method", "stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return docchat.Errorf(docchat.ECHAT, "chat request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		return docchat.Errorf(docchat.ECHAT, "chat request failed: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(text)))
	}

	if err := ReadStream(resp.Body, fn); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// setBrowserHeaders makes the request look like it came from the
// documentation site's own widget.
func (c *Client) setBrowserHeaders(req *http.Request, siteURL string) error {
	u, err := url.Parse(siteURL)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("site URL %q is not absolute", siteURL)
	}

	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Origin", u.Scheme+"://"+u.Host)
	req.Header.Set("Referer", siteURL)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("sec-ch-ua", `"Not_A Brand";v="8", "Chromium";v="120", "Google Chrome";v="120"`)
	req.Header.Set("sec-ch-ua-mobile", "?0")
	req.Header.Set("sec-ch-ua-platform", `"macOS"`)
	req.Header.Set("sec-fetch-dest", "empty")
	req.Header.Set("sec-fetch-mode", "cors")
	req.Header.Set("sec-fetch-site", "cross-site")
	return nil
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// ReadStream parses an SSE chat stream and calls fn for every non-empty
// content fragment. It stops at the [DONE] sentinel or at end of input.
// Lines that are not data lines and records that do not parse are skipped.
// An error returned by fn is returned as is; read failures return ESTREAM.
func ReadStream(r io.Reader, fn docchat.DeltaFunc) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}

		data := strings.TrimSpace(strings.TrimPrefix(line, dataPrefix))
		if data == doneMarker {
			return nil
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}
		if err := fn(chunk.Choices[0].Delta.Content); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return docchat.Errorf(docchat.ESTREAM, "stream error: %v", err)
	}
	return nil
}
