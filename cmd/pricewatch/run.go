package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/pricewatch/internal/config"
	"github.com/nao1215/pricewatch/internal/extract"
	"github.com/nao1215/pricewatch/internal/fetch"
	pwlog "github.com/nao1215/pricewatch/internal/log"
	"github.com/nao1215/pricewatch/internal/model"
	"github.com/nao1215/pricewatch/internal/normalize"
	"github.com/nao1215/pricewatch/internal/notify"
	"github.com/nao1215/pricewatch/internal/pipeline"
	"github.com/nao1215/pricewatch/internal/report"
	"github.com/nao1215/pricewatch/internal/store"
	"github.com/spf13/cobra"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch, normalize and report prices once",
		Long: `Run processes every catalog product once, in order.

For each product the marketplace search page is loaded in a headless
browser, the first listing that is not an accessory is taken, and its
price is converted to CNY and sent to the price store. Products that
cannot be priced keep their fallback price and are not sent.

After the run, prices.json is overwritten with the results and a summary
is sent to Telegram when TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID are set.

Examples:
  # Run with defaults (.pricewatch and .env are picked up if present)
  pricewatch run

  # Keep prices in a local SQLite file instead of the remote store
  pricewatch run --store sqlite

  # Also write a Markdown report
  pricewatch run --markdown prices.md

Environment variables:
  SERVER_URL          price store base URL (default http://127.0.0.1:3001)
  TELEGRAM_BOT_TOKEN  bot token for the run summary
  TELEGRAM_CHAT_ID    chat that receives the run summary
  PRICEWATCH_REPORT   JSON report path (default prices.json)`,
		Args: cobra.NoArgs,
		RunE: runRunCmd,
	}

	addRunFlags(cmd)
	return cmd
}

// addRunFlags registers the flags shared by run and watch.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .pricewatch in current or home directory)")
	cmd.Flags().String("env-file", config.DefaultEnvFile,
		"dotenv file read before the process environment")
	cmd.Flags().StringP("output", "o", config.DefaultReportFile,
		"JSON report path (overwritten on every run)")
	cmd.Flags().StringP("markdown", "m", "",
		"Also write a Markdown report to this path")
	cmd.Flags().String("store", config.StoreHTTP,
		"Price store backend: http, sqlite or none")
	cmd.Flags().String("store-address", config.DefaultPriceStoreAddress,
		"Price store base URL for the http backend")
	cmd.Flags().String("db-dir", "",
		"Directory of the SQLite store (default: XDG data directory)")
	cmd.Flags().Bool("no-delay", false,
		"Do not pause between products")
	cmd.Flags().String("browser-bin", "",
		"Chrome or Chromium binary (default: auto-detect)")
	cmd.Flags().String("remote-browser", "",
		"DevTools URL of a running browser to use instead of launching one")
	cmd.Flags().Bool("json-log", false,
		"Write logs as JSON")
}

func runRunCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runPrices(ctx, cfg, newRunner(cmd.OutOrStdout(), logger))
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the masking logger selected by --verbose and --json-log.
func setupLogger(cmd *cobra.Command) *slog.Logger {
	verbose := getVerboseFlag(cmd)
	if jsonLog, err := cmd.Flags().GetBool("json-log"); err == nil && jsonLog {
		return pwlog.NewSecureJSONLogger(os.Stderr, verbose)
	}
	return pwlog.NewSecureLogger(os.Stderr, verbose)
}

// buildConfig layers defaults, the config file, the environment and
// explicitly set flags, in that order.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.Verbose = getVerboseFlag(cmd)

	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicit path must exist; the default lookup may find nothing.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		f, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(f)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	cfg.EnvFile, err = flags.GetString("env-file")
	if err != nil {
		return nil, err
	}
	envVars, err := config.ReadEnvFile(cfg.EnvFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", cfg.EnvFile, err)
	}
	cfg.ApplyEnv(config.EnvLookup(envVars))

	stringFlags := []struct {
		name string
		dst  *string
	}{
		{"output", &cfg.ReportFile},
		{"markdown", &cfg.MarkdownFile},
		{"store", &cfg.StoreBackend},
		{"store-address", &cfg.PriceStoreAddress},
		{"db-dir", &cfg.DBDir},
		{"browser-bin", &cfg.BrowserBin},
		{"remote-browser", &cfg.RemoteBrowserURL},
	}
	for _, f := range stringFlags {
		if !flags.Changed(f.name) {
			continue
		}
		if *f.dst, err = flags.GetString(f.name); err != nil {
			return nil, err
		}
	}

	noDelay, err := flags.GetBool("no-delay")
	if err != nil {
		return nil, err
	}
	if noDelay {
		cfg.MinDelay, cfg.MaxDelay = 0, 0
	}

	return cfg, nil
}

// fetcherFactory opens the fetch session for one run.
type fetcherFactory func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (fetch.Fetcher, io.Closer, error)

// runner holds the collaborators of a run that tests replace.
type runner struct {
	out        io.Writer
	logger     *slog.Logger
	newFetcher fetcherFactory
}

func newRunner(out io.Writer, logger *slog.Logger) runner {
	return runner{out: out, logger: logger, newFetcher: newBrowserFetcher}
}

func newBrowserFetcher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (fetch.Fetcher, io.Closer, error) {
	f, err := fetch.NewBrowserFetcher(ctx,
		fetch.WithBrowserBin(cfg.BrowserBin),
		fetch.WithRemoteURL(cfg.RemoteBrowserURL),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithFetchTimeout(cfg.FetchTimeout),
		fetch.WithResultsTimeout(cfg.ResultsTimeout),
		fetch.WithBrowserLogger(logger),
	)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

// openStore returns the price store selected by cfg and a function that releases it.
func openStore(cfg *config.Config, logger *slog.Logger) (store.PriceStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StoreBackend {
	case config.StoreHTTP:
		return store.NewHTTPStore(cfg.PriceStoreAddress,
			store.WithTimeout(cfg.RequestTimeout),
			store.WithLogger(logger),
		), noop, nil
	case config.StoreSQLite:
		s, err := store.OpenSQLite(cfg.DBDir, store.DefaultOptions())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open price database: %w", err)
		}
		logger.Info("price database opened", "path", s.Path())
		return s, s.Close, nil
	case config.StoreNone:
		return store.NopStore{}, noop, nil
	default:
		return nil, nil, config.ErrInvalidStoreBackend
	}
}

// runPrices performs one complete run: process the catalog, persist the
// report and deliver the notification. Only a failure to open the fetch
// session or the store, or to write the report, is returned.
func runPrices(ctx context.Context, cfg *config.Config, r runner) error {
	logger := r.logger

	priceStore, closeStore, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("failed to close price store", "error", err)
		}
	}()

	fetcher, session, err := r.newFetcher(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to start browser session: %w", err)
	}
	defer func() {
		if session == nil {
			return
		}
		if err := session.Close(); err != nil {
			logger.Warn("failed to close browser session", "error", err)
		}
	}()

	processor := pipeline.NewProcessor(fetcher,
		pipeline.WithExtractor(extract.New(
			extract.WithBlocklist(cfg.Blocklist),
			extract.WithTitleLength(cfg.TitleLength),
		)),
		pipeline.WithNormalizer(normalize.New(normalize.WithCurrencyTable(cfg.Currencies))),
		pipeline.WithStore(priceStore),
		pipeline.WithProcessorLogger(logger),
	)

	orchestrator := pipeline.New(processor,
		pipeline.WithDelay(cfg.MinDelay, cfg.MaxDelay),
		pipeline.WithProgress(func(done, total int, outcome model.ProductOutcome) {
			logger.Info("product processed",
				"product", outcome.ID,
				"progress", fmt.Sprintf("%d/%d", done, total),
				"success", outcome.Success,
				"price_cny", outcome.PriceCNY,
			)
		}),
		pipeline.WithLogger(logger),
	)

	result := orchestrator.Run(ctx, cfg.Catalog, cfg.ExchangeRates)
	runReport, text := report.Compose(result.Products, result.ExchangeRate, result.LastUpdate)

	// Notification delivery proceeds while the report is written.
	var task *notify.Task
	if cfg.NotifyEnabled() {
		notifier := notify.NewTelegramNotifier(cfg.NotifyDestination, cfg.NotifyCredential,
			notify.WithEndpoint(cfg.NotifyEndpoint),
			notify.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
			notify.WithLogger(logger),
		)
		task = notify.Deliver(context.WithoutCancel(ctx), notifier, text)
	} else {
		logger.Info("notification not configured, skipping")
	}

	writeErr := writeReports(cfg, runReport)
	if writeErr == nil {
		logger.Info("report written", "path", cfg.ReportFile)
	}

	if _, err := report.NewSimpleWriter(r.out, report.WithVerbose(cfg.Verbose)).Write(runReport); err != nil {
		logger.Warn("failed to print summary", "error", err)
	}

	if task != nil {
		if err := task.Wait(); err != nil {
			logger.Warn("notification failed", "error", err)
		} else {
			logger.Info("notification sent")
		}
	}

	return writeErr
}

// writeReports writes the JSON artifact and the optional Markdown report.
func writeReports(cfg *config.Config, runReport *model.RunReport) error {
	if err := report.WriteFile(cfg.ReportFile, runReport, report.NewArtifactWriter); err != nil {
		return err
	}
	if cfg.MarkdownFile == "" {
		return nil
	}
	return report.WriteFile(cfg.MarkdownFile, runReport, func(w io.Writer) report.Writer {
		return report.NewMarkdownWriter(w)
	})
}
