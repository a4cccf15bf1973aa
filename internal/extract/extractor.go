package extract

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nao1215/pricewatch/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultTitleLength is the number of characters kept from a listing title.
const DefaultTitleLength = 100

// DefaultCurrencySymbol is assumed when a result shows no currency symbol.
const DefaultCurrencySymbol = "$"

// ErrNotFound is returned when no result entry qualifies as a listing.
var ErrNotFound = errors.New("no qualifying listing found")

// errNoPrice marks an entry whose price cannot be formed.
var errNoPrice = errors.New("no price signal")

// DefaultBlocklist returns the accessory keywords skipped by default.
// A new slice is returned on every call.
func DefaultBlocklist() []string {
	return []string{"case", "fan", "cable", "adapter"}
}

// Extractor picks the first relevant, priced entry from a result list.
// An Extractor is a pure function of its input and configuration.
type Extractor struct {
	blocklist   []string
	titleLength int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithBlocklist replaces the accessory keywords. Keywords are matched
// case-insensitively as substrings of the title. An empty list keeps the default.
func WithBlocklist(words []string) Option {
	return func(e *Extractor) {
		if len(words) == 0 {
			return
		}
		e.blocklist = make([]string, 0, len(words))
		for _, w := range words {
			w = strings.TrimSpace(w)
			if w != "" {
				e.blocklist = append(e.blocklist, foldCase(w))
			}
		}
	}
}

// WithTitleLength sets how many characters of the title are kept.
func WithTitleLength(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.titleLength = n
		}
	}
}

// New creates an Extractor with the default blocklist and title length.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		blocklist:   DefaultBlocklist(),
		titleLength: DefaultTitleLength,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Blocklist returns a copy of the keywords in use.
func (e *Extractor) Blocklist() []string {
	return append([]string(nil), e.blocklist...)
}

// Extract returns the first entry that has a title, matches no blocklist
// keyword and carries a parseable price. It returns ErrNotFound when no
// entry qualifies. Malformed prices skip the entry rather than failing.
func (e *Extractor) Extract(entries []model.ResultEntry) (model.Listing, error) {
	for _, entry := range entries {
		title := strings.TrimSpace(entry.Title)
		if title == "" {
			continue
		}
		if e.isBlocked(title) {
			continue
		}

		price, err := ParsePrice(entry.PriceWhole, entry.PriceFraction)
		if err != nil {
			continue
		}

		symbol := strings.TrimSpace(entry.CurrencySymbol)
		if symbol == "" {
			symbol = DefaultCurrencySymbol
		}

		return model.Listing{
			Title:          truncate(title, e.titleLength),
			Price:          price,
			CurrencySymbol: symbol,
		}, nil
	}

	return model.Listing{}, ErrNotFound
}

// isBlocked reports whether the folded title contains any blocklist keyword.
func (e *Extractor) isBlocked(title string) bool {
	folded := foldCase(title)
	for _, word := range e.blocklist {
		if strings.Contains(folded, word) {
			return true
		}
	}
	return false
}

// ParsePrice builds a price from the whole and fraction parts shown on a
// result. Every non-digit is dropped from the whole part, so "1,299." reads
// as 1299. A missing fraction reads as "00".
func ParsePrice(whole, fraction string) (float64, error) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, whole)
	if digits == "" {
		return 0, errNoPrice
	}

	fraction = strings.TrimSpace(fraction)
	if fraction == "" {
		fraction = "00"
	}
	if strings.IndexFunc(fraction, func(r rune) bool { return !unicode.IsDigit(r) }) >= 0 {
		return 0, errNoPrice
	}

	price, err := strconv.ParseFloat(digits+"."+fraction, 64)
	if err != nil {
		return 0, errNoPrice
	}
	return price, nil
}

// foldCase lower-cases s using Unicode case mapping.
func foldCase(s string) string {
	return cases.Lower(language.Und).String(s)
}

// truncate returns at most n characters of s.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
