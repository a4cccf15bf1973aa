package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/nao1215/pricewatch/internal/config"
	"github.com/nao1215/pricewatch/internal/fetch"
	"github.com/nao1215/pricewatch/internal/model"
	"github.com/nao1215/pricewatch/internal/store"
	"github.com/spf13/cobra"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// parseRunFlags returns a run command with args parsed.
func parseRunFlags(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := NewRunCmd()
	if err := cmd.Flags().Parse(args); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	return cmd
}

// TestBuildConfig tests the layering of file, environment and flags.
// It changes process environment variables, so it does not run in parallel.
func TestBuildConfig(t *testing.T) {
	dir := t.TempDir()

	configPath := filepath.Join(dir, "pricewatch.yaml")
	configYAML := `products:
  - id: rtx4090
    name: RTX 4090
    queryTarget: https://example.com/s?k=rtx4090
    fallbackPrice: 15999
store:
  backend: sqlite
  address: http://file.example:3001
report: from-file.json
`
	if err := os.WriteFile(configPath, []byte(configYAML), 0600); err != nil {
		t.Fatal(err)
	}

	envPath := filepath.Join(dir, "test.env")
	envContent := "SERVER_URL=http://dotenv.example:3001\nTELEGRAM_CHAT_ID=-100555\nPRICEWATCH_REPORT=from-env.json\n"
	if err := os.WriteFile(envPath, []byte(envContent), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(config.EnvPriceStoreAddress, "http://process.example:3001")
	for _, key := range []string{config.EnvNotifyCredential, config.EnvNotifyDestination, config.EnvReportFile} {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("file then env", func(t *testing.T) {
		cfg, err := buildConfig(parseRunFlags(t, "--config", configPath, "--env-file", envPath))
		if err != nil {
			t.Fatalf("buildConfig() error = %v", err)
		}

		if len(cfg.Catalog) != 1 || cfg.Catalog[0].ID != "rtx4090" {
			t.Errorf("Catalog = %+v", cfg.Catalog)
		}
		if cfg.StoreBackend != config.StoreSQLite {
			t.Errorf("StoreBackend = %q, want sqlite from file", cfg.StoreBackend)
		}
		if cfg.PriceStoreAddress != "http://process.example:3001" {
			t.Errorf("PriceStoreAddress = %q, want process env value", cfg.PriceStoreAddress)
		}
		if cfg.NotifyDestination != "-100555" {
			t.Errorf("NotifyDestination = %q, want dotenv value", cfg.NotifyDestination)
		}
		if cfg.ReportFile != "from-env.json" {
			t.Errorf("ReportFile = %q, want dotenv value over file", cfg.ReportFile)
		}
		if cfg.NotifyEnabled() {
			t.Error("notification needs both chat id and token")
		}
	})

	t.Run("flags win", func(t *testing.T) {
		cfg, err := buildConfig(parseRunFlags(t,
			"--config", configPath,
			"--env-file", envPath,
			"--store", "none",
			"--store-address", "http://flag.example:3001",
			"-o", "from-flag.json",
			"--markdown", "report.md",
			"--no-delay",
		))
		if err != nil {
			t.Fatalf("buildConfig() error = %v", err)
		}
		if cfg.StoreBackend != config.StoreNone {
			t.Errorf("StoreBackend = %q, want none", cfg.StoreBackend)
		}
		if cfg.PriceStoreAddress != "http://flag.example:3001" {
			t.Errorf("PriceStoreAddress = %q", cfg.PriceStoreAddress)
		}
		if cfg.ReportFile != "from-flag.json" {
			t.Errorf("ReportFile = %q", cfg.ReportFile)
		}
		if cfg.MarkdownFile != "report.md" {
			t.Errorf("MarkdownFile = %q", cfg.MarkdownFile)
		}
		if cfg.MinDelay != 0 || cfg.MaxDelay != 0 {
			t.Errorf("delays = %v, %v, want 0", cfg.MinDelay, cfg.MaxDelay)
		}
	})

	t.Run("missing explicit config file", func(t *testing.T) {
		_, err := buildConfig(parseRunFlags(t, "--config", filepath.Join(dir, "missing.yaml")))
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("buildConfig() error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("missing env file is ignored", func(t *testing.T) {
		_, err := buildConfig(parseRunFlags(t, "--config", configPath, "--env-file", filepath.Join(dir, "missing.env")))
		if err != nil {
			t.Errorf("buildConfig() error = %v", err)
		}
	})
}

// fakePages returns a fetcher factory serving canned search results.
func fakePages(pages map[string][]model.ResultEntry) fetcherFactory {
	return func(context.Context, *config.Config, *slog.Logger) (fetch.Fetcher, io.Closer, error) {
		f := fetch.FetcherFunc(func(_ context.Context, target string) ([]model.ResultEntry, error) {
			entries, ok := pages[target]
			if !ok {
				return nil, fetch.ErrFetchFailed
			}
			return entries, nil
		})
		return f, nil, nil
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.NewConfig()
	cfg.Catalog = []model.Product{
		{ID: "rtx4090", Name: "RTX 4090", QueryTarget: "https://example.com/s?k=rtx4090", FallbackPrice: 15999},
		{ID: "rtx4080", Name: "RTX 4080 Super", QueryTarget: "https://example.com/s?k=rtx4080", FallbackPrice: 8999},
		{ID: "rtx4070", Name: "RTX 4070 Super", QueryTarget: "https://example.com/s?k=rtx4070", FallbackPrice: 4999},
	}
	cfg.StoreBackend = config.StoreSQLite
	cfg.DBDir = filepath.Join(t.TempDir(), "db")
	cfg.ReportFile = filepath.Join(t.TempDir(), "prices.json")
	cfg.MinDelay, cfg.MaxDelay = 0, 0
	return cfg
}

var testPages = map[string][]model.ResultEntry{
	"https://example.com/s?k=rtx4090": {
		{Title: "Cooling Fan for RTX 4090", PriceWhole: "29", PriceFraction: "99", CurrencySymbol: "$"},
		{Title: "ASUS TUF RTX 4090 OC", PriceWhole: "1,599", PriceFraction: "99", CurrencySymbol: "$"},
	},
	"https://example.com/s?k=rtx4070": {
		{Title: "MSI RTX 4070 Super", PriceWhole: "90,000", CurrencySymbol: "¥"},
	},
}

// TestRunPrices tests a complete run with fake collaborators.
func TestRunPrices(t *testing.T) {
	t.Parallel()

	t.Run("writes report and stores successful prices", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t)
		cfg.MarkdownFile = filepath.Join(t.TempDir(), "prices.md")

		var out bytes.Buffer
		r := runner{out: &out, logger: discardLogger(), newFetcher: fakePages(testPages)}
		if err := runPrices(context.Background(), cfg, r); err != nil {
			t.Fatalf("runPrices() error = %v", err)
		}

		data, err := os.ReadFile(cfg.ReportFile)
		if err != nil {
			t.Fatalf("report not written: %v", err)
		}
		var got model.RunReport
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("invalid report: %v", err)
		}
		if got.Total() != 3 || got.SuccessCount() != 2 {
			t.Errorf("got %d/%d, want 2/3", got.SuccessCount(), got.Total())
		}
		wantIDs := []string{"rtx4090", "rtx4080", "rtx4070"}
		for i, p := range got.Products {
			if p.ID != wantIDs[i] {
				t.Errorf("Products[%d].ID = %q, want %q", i, p.ID, wantIDs[i])
			}
		}
		if got.Products[0].PriceCNY != 11520 || got.Products[2].PriceCNY != 4230 {
			t.Errorf("prices = %d, %d", got.Products[0].PriceCNY, got.Products[2].PriceCNY)
		}
		if got.Products[1].PriceCNY != 8999 || got.Products[1].Currency != "USD" {
			t.Errorf("fallback = %+v", got.Products[1])
		}

		if _, err := os.Stat(cfg.MarkdownFile); err != nil {
			t.Errorf("markdown report not written: %v", err)
		}
		if !strings.Contains(out.String(), "2/3") {
			t.Errorf("summary missing count:\n%s", out.String())
		}

		db, err := store.OpenSQLite(cfg.DBDir, store.Options{})
		if err != nil {
			t.Fatalf("failed to reopen store: %v", err)
		}
		defer db.Close()
		prices, err := db.List(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if len(prices) != 2 {
			t.Errorf("stored %d prices, want 2 (fallbacks are not dispatched)", len(prices))
		}
	})

	t.Run("sends notification", func(t *testing.T) {
		t.Parallel()

		var (
			mu   sync.Mutex
			body map[string]string
		)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			defer mu.Unlock()
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode body: %v", err)
			}
		}))
		defer srv.Close()

		cfg := testConfig(t)
		cfg.StoreBackend = config.StoreNone
		cfg.NotifyEndpoint = srv.URL
		cfg.NotifyDestination = "-100123"
		cfg.NotifyCredential = "42:token"

		r := runner{out: io.Discard, logger: discardLogger(), newFetcher: fakePages(testPages)}
		if err := runPrices(context.Background(), cfg, r); err != nil {
			t.Fatalf("runPrices() error = %v", err)
		}

		mu.Lock()
		defer mu.Unlock()
		if body["chat_id"] != "-100123" || body["parse_mode"] != "Markdown" {
			t.Errorf("body = %v", body)
		}
		if !strings.Contains(body["text"], "2/3") || !strings.Contains(body["text"], "⚠️ Failed: RTX 4080 Super") {
			t.Errorf("text = %q", body["text"])
		}
	})

	t.Run("notification failure does not fail the run", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		cfg := testConfig(t)
		cfg.StoreBackend = config.StoreNone
		cfg.NotifyEndpoint = srv.URL
		cfg.NotifyDestination = "-100123"
		cfg.NotifyCredential = "42:token"

		r := runner{out: io.Discard, logger: discardLogger(), newFetcher: fakePages(nil)}
		if err := runPrices(context.Background(), cfg, r); err != nil {
			t.Errorf("runPrices() error = %v, want nil", err)
		}
	})

	t.Run("session failure is fatal", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t)
		cfg.StoreBackend = config.StoreNone
		r := runner{
			out:    io.Discard,
			logger: discardLogger(),
			newFetcher: func(context.Context, *config.Config, *slog.Logger) (fetch.Fetcher, io.Closer, error) {
				return nil, nil, fetch.ErrSessionUnavailable
			},
		}
		err := runPrices(context.Background(), cfg, r)
		if !errors.Is(err, fetch.ErrSessionUnavailable) {
			t.Errorf("runPrices() error = %v, want ErrSessionUnavailable", err)
		}
		if _, statErr := os.Stat(cfg.ReportFile); !os.IsNotExist(statErr) {
			t.Error("report should not be written when the session cannot start")
		}
	})

	t.Run("report write failure is returned", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t)
		cfg.StoreBackend = config.StoreNone
		cfg.ReportFile = t.TempDir() // a directory cannot be created as a file

		r := runner{out: io.Discard, logger: discardLogger(), newFetcher: fakePages(testPages)}
		if err := runPrices(context.Background(), cfg, r); err == nil {
			t.Error("expected error")
		}
	})
}

// TestOpenStore tests backend selection.
func TestOpenStore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		backend string
		wantErr bool
		check   func(store.PriceStore) bool
	}{
		{name: "http", backend: config.StoreHTTP, check: func(s store.PriceStore) bool { _, ok := s.(*store.HTTPStore); return ok }},
		{name: "sqlite", backend: config.StoreSQLite, check: func(s store.PriceStore) bool { _, ok := s.(*store.SQLiteStore); return ok }},
		{name: "none", backend: config.StoreNone, check: func(s store.PriceStore) bool { _, ok := s.(store.NopStore); return ok }},
		{name: "unknown", backend: "redis", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.NewConfig()
			cfg.StoreBackend = tt.backend
			cfg.DBDir = t.TempDir()

			s, closeFn, err := openStore(cfg, discardLogger())
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("openStore() error = %v", err)
			}
			defer closeFn()
			if !tt.check(s) {
				t.Errorf("unexpected store type %T", s)
			}
		})
	}
}
