package config

import (
	"fmt"

	"github.com/nao1215/pricewatch/internal/model"
)

// DefaultCatalog returns the built-in list of monitored graphics cards.
// A new slice is returned on every call.
func DefaultCatalog() []model.Product {
	return []model.Product{
		{
			ID:            "rtx5090",
			Name:          "RTX 5090",
			QueryTarget:   "https://www.amazon.com/s?k=RTX+5090+graphics+card&ref=nb_sb_noss",
			FallbackPrice: 32999,
		},
		{
			ID:            "rtx4090",
			Name:          "RTX 4090",
			QueryTarget:   "https://www.amazon.com/s?k=RTX+4090+graphics+card&ref=nb_sb_noss",
			FallbackPrice: 15999,
		},
		{
			ID:            "rtx5080",
			Name:          "RTX 5080",
			QueryTarget:   "https://www.amazon.com/s?k=RTX+5080+graphics+card&ref=nb_sb_noss",
			FallbackPrice: 9999,
		},
		{
			ID:            "rtx4080",
			Name:          "RTX 4080 Super",
			QueryTarget:   "https://www.amazon.com/s?k=RTX+4080+Super+graphics+card&ref=nb_sb_noss",
			FallbackPrice: 8999,
		},
		{
			ID:            "rtx5070",
			Name:          "RTX 5070 Ti",
			QueryTarget:   "https://www.amazon.com/s?k=RTX+5070+Ti+graphics+card&ref=nb_sb_noss",
			FallbackPrice: 5999,
		},
		{
			ID:            "rtx4070",
			Name:          "RTX 4070 Super",
			QueryTarget:   "https://www.amazon.com/s?k=RTX+4070+Super+graphics+card&ref=nb_sb_noss",
			FallbackPrice: 4999,
		},
	}
}

// ValidateCatalog checks that the catalog is non-empty and that every
// product has a unique id, a query target and a positive fallback price.
func ValidateCatalog(catalog []model.Product) error {
	if len(catalog) == 0 {
		return ErrEmptyCatalog
	}

	seen := make(map[string]struct{}, len(catalog))
	for i, p := range catalog {
		if p.ID == "" {
			return fmt.Errorf("product #%d: %w", i+1, ErrMissingProductID)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%s: %w", p.ID, ErrDuplicateProductID)
		}
		seen[p.ID] = struct{}{}

		if p.QueryTarget == "" {
			return fmt.Errorf("%s: %w", p.ID, ErrMissingQueryTarget)
		}
		if p.FallbackPrice <= 0 {
			return fmt.Errorf("%s: %w", p.ID, ErrInvalidFallbackPrice)
		}
	}

	return nil
}
