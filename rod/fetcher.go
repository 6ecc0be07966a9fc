// Package rod provides a docchat.Fetcher that renders pages in headless
// Chrome, for sites that inject their widget scripts at runtime.
package rod

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fwojciec/docchat"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

const (
	// DefaultMaxPages is the number of pages rendered before the browser
	// is replaced. Chrome's baseline memory grows with every page.
	DefaultMaxPages = 75

	// DefaultFetchTimeout bounds a single page render.
	DefaultFetchTimeout = 30 * time.Second

	// DefaultSettle is how long to wait after load for late script tags.
	DefaultSettle = 500 * time.Millisecond
)

// Ensure Fetcher implements docchat.Fetcher at compile time.
var _ docchat.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML using Chrome browser automation.
// It is safe for concurrent use.
type Fetcher struct {
	mu      sync.Mutex
	current *instance
	pages   int
	closed  bool

	maxPages  int
	timeout   time.Duration
	settle    time.Duration
	userAgent string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithMaxPages sets how many pages are rendered before the browser is recycled.
func WithMaxPages(n int) Option {
	return func(f *Fetcher) {
		f.maxPages = n
	}
}

// WithFetchTimeout sets the timeout for a single page render.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithSettle sets the delay between page load and reading the HTML.
func WithSettle(d time.Duration) Option {
	return func(f *Fetcher) {
		f.settle = d
	}
}

// WithUserAgent overrides the browser user agent.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// NewFetcher launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		maxPages:  DefaultMaxPages,
		timeout:   DefaultFetchTimeout,
		settle:    DefaultSettle,
		userAgent: docchat.UserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}

	inst, err := launch()
	if err != nil {
		return nil, err
	}
	f.current = inst
	return f, nil
}

// Fetch navigates to the URL and returns the rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	inst, err := f.acquire()
	if err != nil {
		return "", err
	}
	defer f.release(inst)

	page, err := inst.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", fmt.Errorf("opening page: %w", err)
	}
	defer page.Close()

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	page = page.Context(ctx)

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: f.userAgent}); err != nil {
		return "", fmt.Errorf("setting user agent: %w", err)
	}
	if err := page.Navigate(url); err != nil {
		return "", fmt.Errorf("navigating to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("waiting for %s: %w", url, err)
	}

	if f.settle > 0 {
		select {
		case <-time.After(f.settle):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	return page.HTML()
}

// Close releases browser resources. It is safe to call more than once.
// Fetches still running on the current browser fail.
func (f *Fetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true
	inst := f.current
	f.current = nil
	if inst == nil {
		return nil
	}
	return inst.shutdown()
}

// LauncherPID returns the browser process ID, or 0 when none is running.
func (f *Fetcher) LauncherPID() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.current == nil {
		return 0
	}
	return f.current.launcher.PID()
}

// instance is one launched browser and the number of fetches using it.
// A retired instance is shut down once its last fetch is released.
type instance struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	active   int
	retired  bool
}

func (i *instance) shutdown() error {
	err := i.browser.Close()
	i.launcher.Kill()
	return err
}

// acquire returns the current browser, replacing it first when it has
// rendered maxPages pages. The replaced browser keeps serving the fetches
// already running on it. A failed relaunch keeps the old browser.
func (f *Fetcher) acquire() (*instance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, docchat.Errorf(docchat.EINVALID, "fetcher closed")
	}

	if f.maxPages > 0 && f.pages >= f.maxPages {
		if next, err := launch(); err == nil {
			old := f.current
			old.retired = true
			if old.active == 0 {
				_ = old.shutdown()
			}
			f.current = next
			f.pages = 0
		}
	}

	f.pages++
	f.current.active++
	return f.current, nil
}

// release marks one fetch on inst as finished.
func (f *Fetcher) release(inst *instance) {
	f.mu.Lock()
	defer f.mu.Unlock()

	inst.active--
	if inst.retired && inst.active == 0 {
		_ = inst.shutdown()
	}
}

// launch starts a browser.
func launch() (*instance, error) {
	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Leakless(true).
		Headless(true)

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}

	return &instance{browser: browser, launcher: l}, nil
}
