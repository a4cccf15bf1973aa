package model

// ProductOutcome is the per-product record of a run.
// Exactly one outcome is produced for every catalog product.
//
// When Success is false, PriceOriginal and Title are nil and PriceCNY holds
// the product's fallback price.
type ProductOutcome struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	PriceOriginal *float64 `json:"price_original"`
	Currency      string   `json:"currency"`
	PriceCNY      int      `json:"price_cny"`
	Title         *string  `json:"title"`
	Success       bool     `json:"success"`
}

// NewFallbackOutcome returns the outcome used when a product could not be priced.
func NewFallbackOutcome(product Product, currency string) ProductOutcome {
	return ProductOutcome{
		ID:       product.ID,
		Name:     product.Name,
		Currency: currency,
		PriceCNY: product.FallbackPrice,
	}
}
