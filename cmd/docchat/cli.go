package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/docchat"
	dchttp "github.com/fwojciec/docchat/http"
	"github.com/fwojciec/docchat/inkeep"
)

// Vars supplies the flag defaults referenced from CLI struct tags.
var Vars = kong.Vars{
	"challenge_url": inkeep.DefaultChallengeURL,
	"chat_url":      inkeep.DefaultChatURL,
	"model":         inkeep.DefaultModel,
	"timeout":       dchttp.DefaultFetchTimeout.String(),
}

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdin     io.Reader
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
	Verbose   bool
	Sites     docchat.SiteService
	Relay     docchat.ChatRelay
	Extractor docchat.CredentialExtractor
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DB           string        `name:"db" env:"DOCCHAT_DB" help:"Site registry database path (default ~/.docchat/docchat.db)"`
	Verbose      bool          `short:"v" help:"Show progress and debug logging"`
	Timeout      time.Duration `default:"${timeout}" env:"DOCCHAT_TIMEOUT" help:"Page and script fetch timeout"`
	Render       bool          `env:"DOCCHAT_RENDER" help:"Render pages in headless Chrome before scanning"`
	ChallengeURL string        `name:"challenge-url" default:"${challenge_url}" env:"DOCCHAT_CHALLENGE_URL" help:"Proof-of-work challenge endpoint"`
	ChatURL      string        `name:"chat-url" default:"${chat_url}" env:"DOCCHAT_CHAT_URL" help:"Chat completions endpoint"`
	Model        string        `default:"${model}" env:"DOCCHAT_MODEL" help:"Chat model identifier"`

	Ask    AskCmd    `cmd:"" help:"Ask a single question to a documentation source"`
	Chat   ChatCmd   `cmd:"" help:"Start an interactive session with a documentation source"`
	List   ListCmd   `cmd:"" help:"List registered documentation sources"`
	Add    AddCmd    `cmd:"" help:"Register a documentation source"`
	Remove RemoveCmd `cmd:"" help:"Remove a documentation source"`
	Serve  ServeCmd  `cmd:"" help:"Serve the chat relay over HTTP"`
	Scan   ScanCmd   `cmd:"" help:"Detect which sites embed a chat credential"`
	MCP    MCPCmd    `cmd:"" name:"mcp" help:"Serve documentation tools over MCP on stdio"`
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	Source   string `arg:"" help:"Source alias or documentation URL"`
	Question string `arg:"" help:"Question to ask"`
}

// ChatCmd is the "chat" subcommand.
type ChatCmd struct {
	Source string `arg:"" help:"Source alias or documentation URL"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct{}

// AddCmd is the "add" subcommand.
type AddCmd struct {
	ID          string `arg:"" help:"Source alias"`
	URL         string `arg:"" help:"Documentation URL"`
	Description string `name:"desc" short:"d" help:"Source description"`
}

// RemoveCmd is the "remove" subcommand.
type RemoveCmd struct {
	ID string `arg:"" help:"Source alias"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr  string  `default:":3002" env:"DOCCHAT_ADDR" help:"Listen address"`
	Rate  float64 `default:"1" env:"DOCCHAT_RATE" help:"Chat requests per second per client"`
	Burst int     `default:"3" env:"DOCCHAT_BURST" help:"Chat request burst per client"`
}

// ScanCmd is the "scan" subcommand.
type ScanCmd struct {
	File        string `arg:"" type:"existingfile" help:"File with one site (domain or URL) per line"`
	Output      string `short:"o" help:"Write JSON results to this file"`
	Concurrency int    `short:"c" default:"10" help:"Sites probed in parallel"`
}

// MCPCmd is the "mcp" subcommand.
type MCPCmd struct{}
