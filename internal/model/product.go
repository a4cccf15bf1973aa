package model

// Product is one catalog entry to monitor.
// Products are defined at startup and never mutated during a run.
type Product struct {
	// ID is the stable identifier sent to the price store. Unique within a catalog.
	ID string `json:"id" yaml:"id"`

	// Name is the display name used in reports and notifications.
	Name string `json:"name" yaml:"name"`

	// QueryTarget is the search page URL the fetcher navigates to.
	QueryTarget string `json:"query_target" yaml:"queryTarget"`

	// FallbackPrice is the CNY price reported when no listing can be extracted.
	FallbackPrice int `json:"fallback_price" yaml:"fallbackPrice"`
}

// ResultEntry is one raw search result item as returned by a fetcher.
// An empty string means the corresponding element was absent on the page.
type ResultEntry struct {
	Title          string `json:"title"`
	PriceWhole     string `json:"price_whole,omitempty"`
	PriceFraction  string `json:"price_fraction,omitempty"`
	CurrencySymbol string `json:"currency_symbol,omitempty"`
}

// Listing is the candidate chosen by the extractor for a product.
type Listing struct {
	// Title is the listing title truncated to the display length.
	Title string `json:"title"`

	// Price is the listing price in the listing currency. Never negative.
	Price float64 `json:"price"`

	// CurrencySymbol is the currency symbol shown next to the price, e.g. "$".
	CurrencySymbol string `json:"currency"`
}
