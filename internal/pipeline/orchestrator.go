package pipeline

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/nao1215/pricewatch/internal/model"
	"github.com/nao1215/pricewatch/internal/normalize"
)

// ProductProcessor turns one product into one outcome.
type ProductProcessor interface {
	Process(ctx context.Context, product model.Product, rates model.ExchangeRates) model.ProductOutcome
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// ProgressFunc is called after each product with its 1-based position.
type ProgressFunc func(done, total int, outcome model.ProductOutcome)

// Orchestrator runs a catalog through a ProductProcessor one product at a
// time, pausing a random delay between products.
type Orchestrator struct {
	processor ProductProcessor
	minDelay  time.Duration
	maxDelay  time.Duration
	sleep     SleepFunc
	jitter    func(n int64) int64
	now       func() time.Time
	progress  ProgressFunc
	logger    *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithDelay sets the inter-product delay range [minDelay, maxDelay).
func WithDelay(minDelay, maxDelay time.Duration) Option {
	return func(o *Orchestrator) {
		o.minDelay = minDelay
		o.maxDelay = maxDelay
	}
}

// WithoutDelay disables the inter-product delay.
func WithoutDelay() Option {
	return WithDelay(0, 0)
}

// WithSleep replaces the function used to wait between products.
func WithSleep(sleep SleepFunc) Option {
	return func(o *Orchestrator) {
		if sleep != nil {
			o.sleep = sleep
		}
	}
}

// WithJitter replaces the random source. jitter(n) must return a value in [0, n).
func WithJitter(jitter func(n int64) int64) Option {
	return func(o *Orchestrator) {
		if jitter != nil {
			o.jitter = jitter
		}
	}
}

// WithClock replaces the clock used to stamp the report.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithProgress registers a callback invoked after each product.
func WithProgress(fn ProgressFunc) Option {
	return func(o *Orchestrator) {
		o.progress = fn
	}
}

// WithLogger sets a custom logger for the orchestrator.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// New creates an Orchestrator with a 2s to 5s delay between products.
func New(processor ProductProcessor, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		processor: processor,
		minDelay:  2 * time.Second,
		maxDelay:  5 * time.Second,
		sleep:     sleepContext,
		jitter:    rand.Int63n,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run processes catalog in order and returns a report with one outcome per
// product, in catalog order. Individual failures never abort the run.
//
// If ctx is cancelled, the remaining products are recorded as fallback
// outcomes without being fetched.
func (o *Orchestrator) Run(ctx context.Context, catalog []model.Product, rates model.ExchangeRates) *model.RunReport {
	report := &model.RunReport{
		ExchangeRate: rates,
		Products:     make([]model.ProductOutcome, 0, len(catalog)),
	}

	o.logger.Info("run started", "products", len(catalog))
	start := o.now()

	for i, product := range catalog {
		var outcome model.ProductOutcome
		if ctx.Err() != nil {
			outcome = model.NewFallbackOutcome(product, normalize.FallbackCurrency)
		} else {
			o.logger.Debug("processing product", "product", product.ID, "position", i+1, "total", len(catalog))
			outcome = o.processor.Process(ctx, product, rates)
		}
		report.Products = append(report.Products, outcome)

		if o.progress != nil {
			o.progress(i+1, len(catalog), outcome)
		}

		if i < len(catalog)-1 && ctx.Err() == nil {
			d := o.nextDelay()
			if d > 0 {
				o.logger.Debug("waiting before next product", "delay", d)
				if err := o.sleep(ctx, d); err != nil {
					o.logger.Warn("run cancelled", "reason", err)
				}
			}
		}
	}

	report.LastUpdate = o.now()
	o.logger.Info("run finished",
		"succeeded", report.SuccessCount(),
		"total", report.Total(),
		"duration", report.LastUpdate.Sub(start),
	)
	return report
}

// nextDelay draws a delay uniformly from [minDelay, maxDelay).
func (o *Orchestrator) nextDelay() time.Duration {
	span := int64(o.maxDelay - o.minDelay)
	if span <= 0 {
		return o.minDelay
	}
	return o.minDelay + time.Duration(o.jitter(span))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
