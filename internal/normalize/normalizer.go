// Package normalize converts extracted listing prices into CNY.
package normalize

import (
	"errors"
	"math"
	"strings"

	"github.com/nao1215/pricewatch/internal/model"
)

// Currency codes a symbol can resolve to.
const (
	CodeJPY = "JPY"
	CodeUSD = "USD"
)

// FallbackCurrency labels outcomes that carry the fallback price.
// The fallback price is already CNY; the label is kept as "USD" because
// consumers of prices.json key on it.
const FallbackCurrency = CodeUSD

// MaxPriceCNY is the largest converted price accepted from a listing.
// Larger values are parse artefacts, not prices.
const MaxPriceCNY = math.MaxInt32

var (
	// ErrNonPositivePrice is returned when a converted price rounds to zero or below.
	ErrNonPositivePrice = errors.New("converted price is not positive")

	// ErrPriceOutOfRange is returned when a converted price exceeds MaxPriceCNY.
	ErrPriceOutOfRange = errors.New("converted price out of range")
)

// DefaultCurrencyTable returns the symbol table used when none is configured.
// A new map is returned on every call.
func DefaultCurrencyTable() map[string]string {
	return map[string]string{
		"¥":   CodeJPY,
		"JPY": CodeJPY,
		"$":   CodeUSD,
	}
}

// Price is the normalized price of one product.
type Price struct {
	// Original is the listing price, nil when no listing was found.
	Original *float64

	// Currency is the listing's currency symbol, or FallbackCurrency.
	Currency string

	// CNY is the price in the reference currency. Always positive.
	CNY int
}

// Normalizer converts listing prices using a symbol table.
type Normalizer struct {
	table map[string]string
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithCurrencyTable replaces the symbol table. Values other than "JPY" and
// "USD" are treated as unrecognised. An empty table keeps the default.
func WithCurrencyTable(table map[string]string) Option {
	return func(n *Normalizer) {
		if len(table) == 0 {
			return
		}
		n.table = make(map[string]string, len(table))
		for symbol, code := range table {
			n.table[strings.TrimSpace(symbol)] = strings.ToUpper(strings.TrimSpace(code))
		}
	}
}

// New creates a Normalizer with the default symbol table.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{table: DefaultCurrencyTable()}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize converts listing into CNY.
//
// A nil listing yields the fallback price labelled FallbackCurrency.
// Yen prices use rates.JPYToCNY, dollar prices rates.USDToCNY, and any
// other symbol is taken as CNY already. The result is rounded half away
// from zero. When it is not positive, the fallback Price is returned
// together with ErrNonPositivePrice; above MaxPriceCNY, together with
// ErrPriceOutOfRange.
func (n *Normalizer) Normalize(listing *model.Listing, rates model.ExchangeRates, fallback int) (Price, error) {
	fallbackPrice := Price{Currency: FallbackCurrency, CNY: fallback}
	if listing == nil {
		return fallbackPrice, nil
	}

	var cny float64
	switch n.table[strings.TrimSpace(listing.CurrencySymbol)] {
	case CodeJPY:
		cny = math.Round(listing.Price * rates.JPYToCNY)
	case CodeUSD:
		cny = math.Round(listing.Price * rates.USDToCNY)
	default:
		cny = math.Round(listing.Price)
	}

	if !(cny > 0) {
		return fallbackPrice, ErrNonPositivePrice
	}
	if cny > MaxPriceCNY {
		return fallbackPrice, ErrPriceOutOfRange
	}

	original := listing.Price
	return Price{
		Original: &original,
		Currency: listing.CurrencySymbol,
		CNY:      int(cny),
	}, nil
}
