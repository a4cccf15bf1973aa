package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/nao1215/pricewatch/internal/extract"
	"github.com/nao1215/pricewatch/internal/model"
)

// Viewport used by the browser session.
const (
	viewportWidth  = 1920
	viewportHeight = 1080
)

// systemChromium is used when present, as in the container image.
const systemChromium = "/usr/bin/chromium-browser"

// BrowserFetcher fetches search pages with one shared headless Chrome page.
type BrowserFetcher struct {
	mu       sync.Mutex
	browser  *rod.Browser
	page     *rod.Page
	launcher *launcher.Launcher

	bin            string
	remoteURL      string
	userAgent      string
	fetchTimeout   time.Duration
	resultsTimeout time.Duration
	logger         *slog.Logger
}

// BrowserOption configures a BrowserFetcher.
type BrowserOption func(*BrowserFetcher)

// WithBrowserBin uses an explicit Chrome binary instead of auto-detection.
func WithBrowserBin(bin string) BrowserOption {
	return func(f *BrowserFetcher) {
		f.bin = bin
	}
}

// WithRemoteURL connects to a running browser's DevTools endpoint instead
// of launching one.
func WithRemoteURL(u string) BrowserOption {
	return func(f *BrowserFetcher) {
		f.remoteURL = u
	}
}

// WithUserAgent sets the User-Agent reported by the page.
func WithUserAgent(ua string) BrowserOption {
	return func(f *BrowserFetcher) {
		f.userAgent = ua
	}
}

// WithFetchTimeout bounds navigation to a query target.
func WithFetchTimeout(d time.Duration) BrowserOption {
	return func(f *BrowserFetcher) {
		if d > 0 {
			f.fetchTimeout = d
		}
	}
}

// WithResultsTimeout bounds the wait for the result list.
func WithResultsTimeout(d time.Duration) BrowserOption {
	return func(f *BrowserFetcher) {
		if d > 0 {
			f.resultsTimeout = d
		}
	}
}

// WithBrowserLogger sets a custom logger.
func WithBrowserLogger(logger *slog.Logger) BrowserOption {
	return func(f *BrowserFetcher) {
		f.logger = logger
	}
}

// newBrowserFetcher applies options without starting a browser.
func newBrowserFetcher(opts ...BrowserOption) *BrowserFetcher {
	f := &BrowserFetcher{
		fetchTimeout:   30 * time.Second,
		resultsTimeout: 10 * time.Second,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewBrowserFetcher starts (or connects to) Chrome and opens the shared page.
// The returned error wraps ErrSessionUnavailable.
func NewBrowserFetcher(ctx context.Context, opts ...BrowserOption) (*BrowserFetcher, error) {
	f := newBrowserFetcher(opts...)
	if err := f.start(ctx); err != nil {
		_ = f.Close() //nolint:errcheck // Best effort cleanup
		return nil, fmt.Errorf("%w: %w", ErrSessionUnavailable, err)
	}
	return f, nil
}

// start launches Chrome, connects, and prepares the stealth page.
func (f *BrowserFetcher) start(ctx context.Context) error {
	wsURL := f.remoteURL
	if wsURL == "" {
		l := launcher.New().
			Context(ctx).
			Headless(true).
			NoSandbox(true).
			Leakless(false).
			Set("disable-setuid-sandbox").
			Set("disable-dev-shm-usage").
			Set("disable-accelerated-2d-canvas").
			Set("disable-gpu").
			Set("disable-blink-features", "AutomationControlled")

		switch {
		case f.bin != "":
			l = l.Bin(f.bin)
		case fileExists(systemChromium):
			l = l.Bin(systemChromium)
		}

		u, err := l.Launch()
		if err != nil {
			return fmt.Errorf("launch browser: %w", err)
		}
		f.launcher = l
		wsURL = u
		f.logger.Debug("browser launched", "url", wsURL)
	} else {
		f.logger.Debug("connecting to remote browser", "url", wsURL)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		return fmt.Errorf("connect browser: %w", err)
	}
	f.browser = b

	page, err := stealth.Page(b)
	if err != nil {
		return fmt.Errorf("open page: %w", err)
	}
	f.page = page

	if f.userAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: f.userAgent}); err != nil {
			return fmt.Errorf("set user agent: %w", err)
		}
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             viewportWidth,
		Height:            viewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		return fmt.Errorf("set viewport: %w", err)
	}

	return nil
}

// Fetch navigates the shared page to target, waits for search results and
// returns them in document order. Every failure wraps ErrFetchFailed.
func (f *BrowserFetcher) Fetch(ctx context.Context, target string) ([]model.ResultEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.page == nil {
		return nil, ErrSessionUnavailable
	}

	navCtx, cancel := context.WithTimeout(ctx, f.fetchTimeout)
	defer cancel()

	page := f.page.Context(navCtx)
	if err := page.Navigate(target); err != nil {
		return nil, fmt.Errorf("%w: navigate %s: %w", ErrFetchFailed, target, err)
	}
	if err := page.WaitLoad(); err != nil {
		f.logger.Debug("wait load did not complete", "url", target, "error", err)
	}

	if _, err := page.Timeout(f.resultsTimeout).Element(extract.ResultSelector); err != nil {
		return nil, fmt.Errorf("%w: no search results at %s: %w", ErrFetchFailed, target, err)
	}

	content, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("%w: read page: %w", ErrFetchFailed, err)
	}

	entries, err := extract.ParseResultsHTML(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: parse page: %w", ErrFetchFailed, err)
	}

	f.logger.Debug("search results fetched", "url", target, "entries", len(entries))
	return entries, nil
}

// Close shuts down the page, the browser and any launched process.
func (f *BrowserFetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var firstErr error
	if f.page != nil {
		if err := f.page.Close(); err != nil {
			firstErr = err
		}
		f.page = nil
	}
	if f.browser != nil {
		if err := f.browser.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		f.browser = nil
	}
	if f.launcher != nil {
		f.launcher.Cleanup()
		f.launcher = nil
	}
	return firstErr
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
