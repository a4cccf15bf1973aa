package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/pricewatch/internal/extract"
	"github.com/nao1215/pricewatch/internal/fetch"
	"github.com/nao1215/pricewatch/internal/model"
	"github.com/nao1215/pricewatch/internal/normalize"
	"github.com/nao1215/pricewatch/internal/store"
)

// Processor prices a single product: fetch, extract, normalize, dispatch.
// It never returns an error; every failure becomes a fallback outcome.
type Processor struct {
	fetcher    fetch.Fetcher
	extractor  *extract.Extractor
	normalizer *normalize.Normalizer
	store      store.PriceStore
	logger     *slog.Logger
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithExtractor replaces the default extractor.
func WithExtractor(e *extract.Extractor) ProcessorOption {
	return func(p *Processor) {
		if e != nil {
			p.extractor = e
		}
	}
}

// WithNormalizer replaces the default normalizer.
func WithNormalizer(n *normalize.Normalizer) ProcessorOption {
	return func(p *Processor) {
		if n != nil {
			p.normalizer = n
		}
	}
}

// WithStore sets the price store that receives successful prices.
func WithStore(s store.PriceStore) ProcessorOption {
	return func(p *Processor) {
		if s != nil {
			p.store = s
		}
	}
}

// WithProcessorLogger sets a custom logger.
func WithProcessorLogger(logger *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		p.logger = logger
	}
}

// NewProcessor creates a Processor that fetches with f.
// Prices are discarded unless a store is set with WithStore.
func NewProcessor(f fetch.Fetcher, opts ...ProcessorOption) *Processor {
	p := &Processor{
		fetcher:    f,
		extractor:  extract.New(),
		normalizer: normalize.New(),
		store:      store.NopStore{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process returns exactly one outcome for product.
//
// A fetch failure, an extraction miss or a non-positive converted price all
// yield a fallback outcome, and nothing is dispatched for them. A successful
// price is dispatched to the store; a dispatch failure is logged and does
// not change the outcome.
func (p *Processor) Process(ctx context.Context, product model.Product, rates model.ExchangeRates) (outcome model.ProductOutcome) {
	logger := p.logger.With("product", product.ID)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("processing panicked", "panic", fmt.Sprint(r))
			outcome = model.NewFallbackOutcome(product, normalize.FallbackCurrency)
		}
	}()

	entries, err := p.fetcher.Fetch(ctx, product.QueryTarget)
	if err != nil {
		logger.Warn("fetch failed, using fallback price", "error", err, "fallback", product.FallbackPrice)
		return model.NewFallbackOutcome(product, normalize.FallbackCurrency)
	}

	listing, err := p.extractor.Extract(entries)
	if err != nil {
		logger.Warn("no qualifying listing, using fallback price", "entries", len(entries), "fallback", product.FallbackPrice)
		return model.NewFallbackOutcome(product, normalize.FallbackCurrency)
	}

	price, err := p.normalizer.Normalize(&listing, rates, product.FallbackPrice)
	if err != nil {
		logger.Warn("price rejected, using fallback price", "error", err, "price", listing.Price, "fallback", product.FallbackPrice)
		return model.NewFallbackOutcome(product, normalize.FallbackCurrency)
	}

	logger.Info("price extracted",
		"title", listing.Title,
		"price", listing.Price,
		"currency", listing.CurrencySymbol,
		"price_cny", price.CNY,
	)

	if err := p.store.Dispatch(ctx, product.ID, price.CNY); err != nil {
		logger.Warn("price dispatch failed", "error", err, "price_cny", price.CNY)
	}

	title := listing.Title
	return model.ProductOutcome{
		ID:            product.ID,
		Name:          product.Name,
		PriceOriginal: price.Original,
		Currency:      price.Currency,
		PriceCNY:      price.CNY,
		Title:         &title,
		Success:       true,
	}
}
