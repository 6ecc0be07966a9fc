package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/docchat"
	"github.com/fwojciec/docchat/altcha"
	"github.com/fwojciec/docchat/goquery"
	dchttp "github.com/fwojciec/docchat/http"
	"github.com/fwojciec/docchat/inkeep"
	"github.com/fwojciec/docchat/relay"
	"github.com/fwojciec/docchat/rod"
	"github.com/fwojciec/docchat/scan"
	dcslog "github.com/fwojciec/docchat/slog"
	"github.com/fwojciec/docchat/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path used when neither --db nor DOCCHAT_DB is set.
	DBPath string

	// SQLite database backing the site registry.
	DB *sqlite.DB

	// Sites is exposed for end-to-end testing.
	Sites *sqlite.SiteService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("docchat"),
		kong.Description("Ask documentation sites questions through their own embedded chat widget."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
		Vars,
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'docchat --help' to see available commands")
	}

	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	deps.Logger = logger
	deps.Verbose = cli.Verbose

	dbPath := cli.DB
	if dbPath == "" {
		dbPath = m.DBPath
	}
	m.DB = sqlite.NewDB(dbPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set DOCCHAT_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", dbPath, err)
	}
	defer m.Close()

	m.Sites = sqlite.NewSiteService(m.DB)
	if err := m.Sites.Seed(ctx, docchat.DefaultSites()); err != nil {
		return fmt.Errorf("failed to seed site registry: %w", err)
	}
	deps.Sites = m.Sites

	scriptFetcher := dchttp.NewFetcher(dchttp.WithTimeout(cli.Timeout))
	var pageFetcher docchat.Fetcher = scriptFetcher
	if cli.Render {
		browser, err := rod.NewFetcher(rod.WithFetchTimeout(cli.Timeout))
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed for --render")
			return fmt.Errorf("failed to start browser: %w", err)
		}
		defer browser.Close()
		pageFetcher = browser
	}

	var extractor docchat.CredentialExtractor
	var solver docchat.ChallengeSolver = altcha.NewSolver()
	var client docchat.ChatClient = inkeep.NewClient(
		inkeep.WithChallengeURL(cli.ChallengeURL),
		inkeep.WithChatURL(cli.ChatURL),
		inkeep.WithModel(cli.Model),
	)

	var scripts docchat.Fetcher = scriptFetcher
	if cli.Verbose {
		pageFetcher = dcslog.NewLoggingFetcher(pageFetcher, logger)
		scripts = dcslog.NewLoggingFetcher(scripts, logger)
	}
	extractor = &scan.Extractor{
		PageFetcher:   pageFetcher,
		ScriptFetcher: scripts,
		Scripts:       goquery.NewScriptFinder(),
	}
	if cli.Verbose {
		extractor = dcslog.NewLoggingExtractor(extractor, logger)
		solver = dcslog.NewLoggingSolver(solver, logger)
		client = dcslog.NewLoggingChatClient(client, logger)
	}

	deps.Extractor = extractor
	deps.Relay = &relay.Relay{
		Extractor: extractor,
		Solver:    solver,
		Client:    client,
	}

	return kongCtx.Run(deps)
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "docchat.db"
	}
	dir := filepath.Join(home, ".docchat")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "docchat.db")
}
