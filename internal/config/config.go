package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/pricewatch/internal/model"
)

// Default configuration values.
// Rates, delays and timeouts follow the values the price job has always used.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "pricewatch"

	// DefaultPriceStoreAddress is the base URL of the price store service.
	DefaultPriceStoreAddress = "http://127.0.0.1:3001"

	// DefaultNotifyEndpoint is the Telegram Bot API base URL.
	DefaultNotifyEndpoint = "https://api.telegram.org"

	// DefaultJPYToCNY converts Japanese yen into CNY.
	DefaultJPYToCNY = 0.047

	// DefaultUSDToCNY converts US dollars into CNY.
	DefaultUSDToCNY = 7.2

	// DefaultMinDelay is the lower bound of the pause between two products.
	DefaultMinDelay = 2 * time.Second

	// DefaultMaxDelay is the exclusive upper bound of the pause between two products.
	// The marketplace rejects sessions that request pages at a steady rhythm,
	// so the pause is drawn uniformly from [DefaultMinDelay, DefaultMaxDelay).
	DefaultMaxDelay = 5 * time.Second

	// DefaultFetchTimeout bounds navigation to a search page.
	DefaultFetchTimeout = 30 * time.Second

	// DefaultResultsTimeout bounds the wait for search results to render.
	DefaultResultsTimeout = 10 * time.Second

	// DefaultRequestTimeout bounds calls to the price store and notification channel.
	DefaultRequestTimeout = 15 * time.Second

	// DefaultTitleLength is the number of characters of a listing title kept for display.
	DefaultTitleLength = 100

	// DefaultReportFile is where the JSON report is written.
	DefaultReportFile = "prices.json"

	// DefaultUserAgent is sent by the browser session.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// DefaultSchedule runs the watch command every six hours.
	DefaultSchedule = "0 0 */6 * * *"
)

// Store backends accepted by Config.StoreBackend.
const (
	// StoreHTTP dispatches prices to the remote price store over HTTP.
	StoreHTTP = "http"

	// StoreSQLite keeps the latest price per product in a local SQLite file.
	StoreSQLite = "sqlite"

	// StoreNone disables dispatch entirely.
	StoreNone = "none"
)

// Config holds every option recognised by pricewatch.
// It is built once at startup and passed explicitly to each component.
type Config struct {
	// Catalog is the ordered list of products to monitor.
	Catalog []model.Product

	// ExchangeRates converts listing prices into CNY.
	ExchangeRates model.ExchangeRates

	// Blocklist overrides the extractor's accessory keywords when non-empty.
	Blocklist []string

	// Currencies overrides the normalizer's symbol table when non-empty.
	// Keys are symbols as shown on the page, values are "JPY" or "USD".
	Currencies map[string]string

	// StoreBackend selects where prices are dispatched: http, sqlite or none.
	StoreBackend string

	// PriceStoreAddress is the base URL of the HTTP price store.
	PriceStoreAddress string

	// DBDir is the directory holding the SQLite store.
	DBDir string

	// NotifyEndpoint is the base URL of the Telegram Bot API.
	NotifyEndpoint string

	// NotifyDestination is the Telegram chat that receives the run summary.
	// Notification is disabled when empty.
	NotifyDestination string

	// NotifyCredential is the Telegram bot token.
	// Notification is disabled when empty.
	NotifyCredential string

	// MinDelay and MaxDelay bound the randomized pause between products.
	MinDelay time.Duration
	MaxDelay time.Duration

	// FetchTimeout bounds navigation to a query target.
	FetchTimeout time.Duration

	// ResultsTimeout bounds the wait for the result list to appear.
	ResultsTimeout time.Duration

	// RequestTimeout bounds each outbound HTTP request.
	RequestTimeout time.Duration

	// TitleLength is the number of characters of a listing title kept.
	TitleLength int

	// UserAgent is the User-Agent reported by the browser session.
	UserAgent string

	// BrowserBin is an explicit Chrome/Chromium binary. Empty means auto-detect.
	BrowserBin string

	// RemoteBrowserURL connects to an already running browser over DevTools
	// instead of launching one.
	RemoteBrowserURL string

	// ReportFile is the JSON report path. The file is overwritten on every run.
	ReportFile string

	// MarkdownFile is an optional Markdown rendering of the report.
	MarkdownFile string

	// ConfigFilePath is the YAML configuration file given on the command line.
	ConfigFilePath string

	// EnvFile is the dotenv file read before the process environment.
	EnvFile string

	// Schedule is the cron spec used by the watch command.
	Schedule string

	// Verbose enables debug logging.
	Verbose bool
}

// NewConfig creates a Config populated with defaults and the built-in catalog.
func NewConfig() *Config {
	return &Config{
		Catalog: DefaultCatalog(),
		ExchangeRates: model.ExchangeRates{
			JPYToCNY: DefaultJPYToCNY,
			USDToCNY: DefaultUSDToCNY,
		},
		StoreBackend:      StoreHTTP,
		PriceStoreAddress: DefaultPriceStoreAddress,
		DBDir:             XDGDataDir(),
		NotifyEndpoint:    DefaultNotifyEndpoint,
		MinDelay:          DefaultMinDelay,
		MaxDelay:          DefaultMaxDelay,
		FetchTimeout:      DefaultFetchTimeout,
		ResultsTimeout:    DefaultResultsTimeout,
		RequestTimeout:    DefaultRequestTimeout,
		TitleLength:       DefaultTitleLength,
		UserAgent:         DefaultUserAgent,
		ReportFile:        DefaultReportFile,
		EnvFile:           DefaultEnvFile,
		Schedule:          DefaultSchedule,
	}
}

// NotifyEnabled reports whether both notification settings are present.
func (c *Config) NotifyEnabled() bool {
	return c.NotifyDestination != "" && c.NotifyCredential != ""
}

// XDGDataDir returns the XDG data directory for pricewatch.
// On Linux: ~/.local/share/pricewatch
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for pricewatch.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if err := ValidateCatalog(c.Catalog); err != nil {
		return err
	}

	if !c.ExchangeRates.Valid() {
		return ErrInvalidExchangeRate
	}

	switch c.StoreBackend {
	case StoreHTTP:
		if c.PriceStoreAddress == "" {
			return ErrMissingPriceStoreAddress
		}
	case StoreSQLite:
		if c.DBDir == "" {
			return ErrMissingDBDir
		}
	case StoreNone:
	default:
		return ErrInvalidStoreBackend
	}

	if c.MinDelay < 0 || c.MaxDelay < c.MinDelay {
		return ErrInvalidDelay
	}

	if c.FetchTimeout <= 0 || c.ResultsTimeout <= 0 || c.RequestTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.TitleLength <= 0 {
		return ErrInvalidTitleLength
	}

	if c.ReportFile == "" {
		return ErrMissingReportFile
	}

	return nil
}
