package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/pricewatch/internal/model"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default catalog has six products", func(t *testing.T) {
		t.Parallel()
		if len(cfg.Catalog) != 6 {
			t.Fatalf("expected 6 products, got %d", len(cfg.Catalog))
		}
		if cfg.Catalog[0].ID != "rtx5090" || cfg.Catalog[0].FallbackPrice != 32999 {
			t.Errorf("unexpected first product: %+v", cfg.Catalog[0])
		}
	})

	t.Run("default exchange rates", func(t *testing.T) {
		t.Parallel()
		if cfg.ExchangeRates.JPYToCNY != 0.047 {
			t.Errorf("expected JPYToCNY 0.047, got %v", cfg.ExchangeRates.JPYToCNY)
		}
		if cfg.ExchangeRates.USDToCNY != 7.2 {
			t.Errorf("expected USDToCNY 7.2, got %v", cfg.ExchangeRates.USDToCNY)
		}
	})

	t.Run("default delay is [2s, 5s)", func(t *testing.T) {
		t.Parallel()
		if cfg.MinDelay != 2*time.Second || cfg.MaxDelay != 5*time.Second {
			t.Errorf("expected 2s..5s, got %v..%v", cfg.MinDelay, cfg.MaxDelay)
		}
	})

	t.Run("default store is http", func(t *testing.T) {
		t.Parallel()
		if cfg.StoreBackend != StoreHTTP {
			t.Errorf("expected %q, got %q", StoreHTTP, cfg.StoreBackend)
		}
		if cfg.PriceStoreAddress != DefaultPriceStoreAddress {
			t.Errorf("expected %q, got %q", DefaultPriceStoreAddress, cfg.PriceStoreAddress)
		}
	})

	t.Run("notification disabled by default", func(t *testing.T) {
		t.Parallel()
		if cfg.NotifyEnabled() {
			t.Error("expected notification to be disabled")
		}
	})

	t.Run("default config is valid", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

// TestDefaultCatalogIsFresh verifies callers cannot mutate the built-in catalog.
func TestDefaultCatalogIsFresh(t *testing.T) {
	t.Parallel()

	a := DefaultCatalog()
	a[0].Name = "changed"

	b := DefaultCatalog()
	if b[0].Name != "RTX 5090" {
		t.Errorf("expected a fresh catalog, got %q", b[0].Name)
	}
}

// TestConfigValidate tests the Validate method, one rule per case.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"empty catalog", func(c *Config) { c.Catalog = nil }, ErrEmptyCatalog},
		{"duplicate id", func(c *Config) { c.Catalog[1].ID = c.Catalog[0].ID }, ErrDuplicateProductID},
		{"missing id", func(c *Config) { c.Catalog[2].ID = "" }, ErrMissingProductID},
		{"missing query target", func(c *Config) { c.Catalog[0].QueryTarget = "" }, ErrMissingQueryTarget},
		{"zero fallback", func(c *Config) { c.Catalog[0].FallbackPrice = 0 }, ErrInvalidFallbackPrice},
		{"negative rate", func(c *Config) { c.ExchangeRates.USDToCNY = -1 }, ErrInvalidExchangeRate},
		{"unknown store", func(c *Config) { c.StoreBackend = "redis" }, ErrInvalidStoreBackend},
		{"http store without address", func(c *Config) { c.PriceStoreAddress = "" }, ErrMissingPriceStoreAddress},
		{"sqlite store without dir", func(c *Config) { c.StoreBackend = StoreSQLite; c.DBDir = "" }, ErrMissingDBDir},
		{"inverted delay", func(c *Config) { c.MinDelay = 6 * time.Second }, ErrInvalidDelay},
		{"negative delay", func(c *Config) { c.MinDelay = -time.Second }, ErrInvalidDelay},
		{"zero fetch timeout", func(c *Config) { c.FetchTimeout = 0 }, ErrInvalidTimeout},
		{"zero title length", func(c *Config) { c.TitleLength = 0 }, ErrInvalidTitleLength},
		{"empty report path", func(c *Config) { c.ReportFile = "" }, ErrMissingReportFile},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tc.modify(cfg)

			if err := cfg.Validate(); !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}

	t.Run("store none needs no address", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.StoreBackend = StoreNone
		cfg.PriceStoreAddress = ""

		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("zero delay is valid", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.MinDelay = 0
		cfg.MaxDelay = 0

		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

// TestLoadConfigFile tests loading the YAML configuration file.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		f, err := LoadConfigFile("/nonexistent/path/.pricewatch")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if f != nil {
			t.Error("expected nil file when not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".pricewatch")
		content := `products:
  - id: rx9070
    name: RX 9070 XT
    queryTarget: "https://example.com/s?k=rx+9070"
    fallbackPrice: 4599
blocklist: [case, bracket]
currencies:
  "US$": USD
exchangeRates:
  usdToCny: 7.1
store:
  backend: sqlite
  dbDir: /tmp/pw
notify:
  chatId: "12345"
delay:
  min: 1s
  max: 3s
browser:
  fetchTimeout: 45s
report: out/prices.json
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		f, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg := NewConfig()
		cfg.ApplyFile(f)

		if len(cfg.Catalog) != 1 || cfg.Catalog[0].ID != "rx9070" || cfg.Catalog[0].FallbackPrice != 4599 {
			t.Errorf("unexpected catalog: %+v", cfg.Catalog)
		}
		if strings.Join(cfg.Blocklist, ",") != "case,bracket" {
			t.Errorf("unexpected blocklist: %v", cfg.Blocklist)
		}
		if cfg.Currencies["US$"] != "USD" {
			t.Errorf("unexpected currencies: %v", cfg.Currencies)
		}
		if cfg.ExchangeRates.USDToCNY != 7.1 {
			t.Errorf("expected USDToCNY 7.1, got %v", cfg.ExchangeRates.USDToCNY)
		}
		if cfg.ExchangeRates.JPYToCNY != DefaultJPYToCNY {
			t.Errorf("expected JPYToCNY to keep its default, got %v", cfg.ExchangeRates.JPYToCNY)
		}
		if cfg.StoreBackend != StoreSQLite || cfg.DBDir != "/tmp/pw" {
			t.Errorf("unexpected store: %q %q", cfg.StoreBackend, cfg.DBDir)
		}
		if cfg.NotifyDestination != "12345" {
			t.Errorf("expected chat id, got %q", cfg.NotifyDestination)
		}
		if cfg.MinDelay != time.Second || cfg.MaxDelay != 3*time.Second {
			t.Errorf("unexpected delay %v..%v", cfg.MinDelay, cfg.MaxDelay)
		}
		if cfg.FetchTimeout != 45*time.Second {
			t.Errorf("expected fetch timeout 45s, got %v", cfg.FetchTimeout)
		}
		if cfg.ReportFile != "out/prices.json" {
			t.Errorf("unexpected report file %q", cfg.ReportFile)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected valid config, got %v", err)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".pricewatch")
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("nil file leaves config untouched", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ApplyFile(nil)

		if len(cfg.Catalog) != 6 {
			t.Errorf("expected default catalog, got %d products", len(cfg.Catalog))
		}
	})
}

// TestFindConfigFile tests the explicit-path branch of FindConfigFile.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path when it exists", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("report: x.json\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if got := FindConfigFile(configPath); got != configPath {
			t.Errorf("expected %q, got %q", configPath, got)
		}
	})

	t.Run("returns empty for missing explicit path", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile("/nonexistent/custom.yaml"); got != "" {
			t.Errorf("expected empty path, got %q", got)
		}
	})
}

// TestApplyEnv tests the environment overlay.
func TestApplyEnv(t *testing.T) {
	t.Parallel()

	t.Run("overrides endpoints and credentials", func(t *testing.T) {
		t.Parallel()

		env := map[string]string{
			EnvPriceStoreAddress: "http://prices.internal:3001",
			EnvNotifyCredential:  "123456:ABC",
			EnvNotifyDestination: "-1001",
			EnvReportFile:        "/var/lib/prices.json",
		}
		cfg := NewConfig()
		cfg.ApplyEnv(func(k string) (string, bool) {
			v, ok := env[k]
			return v, ok
		})

		if cfg.PriceStoreAddress != "http://prices.internal:3001" {
			t.Errorf("unexpected address %q", cfg.PriceStoreAddress)
		}
		if !cfg.NotifyEnabled() {
			t.Error("expected notification to be enabled")
		}
		if cfg.ReportFile != "/var/lib/prices.json" {
			t.Errorf("unexpected report file %q", cfg.ReportFile)
		}
	})

	t.Run("blank values keep defaults", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ApplyEnv(func(string) (string, bool) { return "", true })

		if cfg.PriceStoreAddress != DefaultPriceStoreAddress {
			t.Errorf("expected default address, got %q", cfg.PriceStoreAddress)
		}
	})
}

// TestReadEnvFile tests reading dotenv files.
func TestReadEnvFile(t *testing.T) {
	t.Parallel()

	t.Run("missing file yields empty map", func(t *testing.T) {
		t.Parallel()

		vars, err := ReadEnvFile(filepath.Join(t.TempDir(), ".env"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(vars) != 0 {
			t.Errorf("expected no variables, got %v", vars)
		}
	})

	t.Run("reads variables", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".env")
		content := "TELEGRAM_CHAT_ID=42\nPRICEWATCH_TEST_ONLY_VAR=from-file\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}

		vars, err := ReadEnvFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if vars["TELEGRAM_CHAT_ID"] != "42" {
			t.Errorf("expected 42, got %q", vars["TELEGRAM_CHAT_ID"])
		}

		v, ok := EnvLookup(vars)("PRICEWATCH_TEST_ONLY_VAR")
		if !ok || v != "from-file" {
			t.Errorf("expected file fallback, got %q %v", v, ok)
		}
	})
}

// TestValidateCatalog tests catalog validation in isolation.
func TestValidateCatalog(t *testing.T) {
	t.Parallel()

	catalog := []model.Product{
		{ID: "a", Name: "A", QueryTarget: "https://example.com/a", FallbackPrice: 1},
		{ID: "b", Name: "B", QueryTarget: "https://example.com/b", FallbackPrice: 2},
	}
	if err := ValidateCatalog(catalog); err != nil {
		t.Errorf("expected valid catalog, got %v", err)
	}
}

// TestXDGDirs tests that XDG paths end with the application name.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if filepath.Base(XDGDataDir()) != AppName {
		t.Errorf("unexpected data dir %q", XDGDataDir())
	}
	if filepath.Base(XDGConfigDir()) != AppName {
		t.Errorf("unexpected config dir %q", XDGConfigDir())
	}
}
