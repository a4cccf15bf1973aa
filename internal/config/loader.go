package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/nao1215/pricewatch/internal/model"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".pricewatch"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .pricewatch configuration file.
// Every field is optional; zero values leave the corresponding default untouched.
type File struct {
	// Products replaces the built-in catalog when present.
	Products []model.Product `yaml:"products,omitempty"`

	// Blocklist replaces the accessory keywords used by the extractor.
	Blocklist []string `yaml:"blocklist,omitempty"`

	// Currencies maps a currency symbol to "JPY" or "USD".
	Currencies map[string]string `yaml:"currencies,omitempty"`

	// ExchangeRates overrides the conversion rates.
	ExchangeRates *model.ExchangeRates `yaml:"exchangeRates,omitempty"`

	// Store configures price dispatch.
	Store StoreFile `yaml:"store,omitempty"`

	// Notify configures the Telegram summary.
	Notify NotifyFile `yaml:"notify,omitempty"`

	// Delay bounds the pause between products.
	Delay DelayFile `yaml:"delay,omitempty"`

	// Browser configures the page fetching session.
	Browser BrowserFile `yaml:"browser,omitempty"`

	// Report is the JSON report path.
	Report string `yaml:"report,omitempty"`
}

// StoreFile is the store section of the configuration file.
type StoreFile struct {
	Backend string `yaml:"backend,omitempty"`
	Address string `yaml:"address,omitempty"`
	DBDir   string `yaml:"dbDir,omitempty"`
}

// NotifyFile is the notify section of the configuration file.
// The bot token is better supplied through TELEGRAM_BOT_TOKEN.
type NotifyFile struct {
	Endpoint string `yaml:"endpoint,omitempty"`
	ChatID   string `yaml:"chatId,omitempty"`
	Token    string `yaml:"token,omitempty"`
}

// DelayFile is the delay section of the configuration file.
type DelayFile struct {
	Min time.Duration `yaml:"min,omitempty"`
	Max time.Duration `yaml:"max,omitempty"`
}

// BrowserFile is the browser section of the configuration file.
type BrowserFile struct {
	Bin            string        `yaml:"bin,omitempty"`
	RemoteURL      string        `yaml:"remoteUrl,omitempty"`
	UserAgent      string        `yaml:"userAgent,omitempty"`
	FetchTimeout   time.Duration `yaml:"fetchTimeout,omitempty"`
	ResultsTimeout time.Duration `yaml:"resultsTimeout,omitempty"`
}

// LoadConfigFile loads a YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	return ParseConfig(data)
}

// ParseConfig decodes YAML configuration data.
func ParseConfig(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .pricewatch in the current directory
// 3. Look for .pricewatch in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}

// ApplyFile overlays the non-zero values of f onto c.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}

	if len(f.Products) > 0 {
		c.Catalog = append([]model.Product(nil), f.Products...)
	}
	if len(f.Blocklist) > 0 {
		c.Blocklist = append([]string(nil), f.Blocklist...)
	}
	if len(f.Currencies) > 0 {
		c.Currencies = make(map[string]string, len(f.Currencies))
		for k, v := range f.Currencies {
			c.Currencies[k] = v
		}
	}
	if f.ExchangeRates != nil {
		if f.ExchangeRates.JPYToCNY != 0 {
			c.ExchangeRates.JPYToCNY = f.ExchangeRates.JPYToCNY
		}
		if f.ExchangeRates.USDToCNY != 0 {
			c.ExchangeRates.USDToCNY = f.ExchangeRates.USDToCNY
		}
	}

	setString(&c.StoreBackend, f.Store.Backend)
	setString(&c.PriceStoreAddress, f.Store.Address)
	setString(&c.DBDir, f.Store.DBDir)

	setString(&c.NotifyEndpoint, f.Notify.Endpoint)
	setString(&c.NotifyDestination, f.Notify.ChatID)
	setString(&c.NotifyCredential, f.Notify.Token)

	if f.Delay.Min != 0 {
		c.MinDelay = f.Delay.Min
	}
	if f.Delay.Max != 0 {
		c.MaxDelay = f.Delay.Max
	}

	setString(&c.BrowserBin, f.Browser.Bin)
	setString(&c.RemoteBrowserURL, f.Browser.RemoteURL)
	setString(&c.UserAgent, f.Browser.UserAgent)
	if f.Browser.FetchTimeout != 0 {
		c.FetchTimeout = f.Browser.FetchTimeout
	}
	if f.Browser.ResultsTimeout != 0 {
		c.ResultsTimeout = f.Browser.ResultsTimeout
	}

	setString(&c.ReportFile, f.Report)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
