package config

import "errors"

// Configuration validation errors returned by Config.Validate.
// Callers match them with errors.Is.
var (
	// ErrEmptyCatalog is returned when no product is configured.
	ErrEmptyCatalog = errors.New("empty catalog: at least one product is required")

	// ErrDuplicateProductID is returned when two products share an id.
	ErrDuplicateProductID = errors.New("duplicate product id")

	// ErrMissingProductID is returned when a product has no id.
	ErrMissingProductID = errors.New("product id must not be empty")

	// ErrMissingQueryTarget is returned when a product has no search URL.
	ErrMissingQueryTarget = errors.New("product query target must not be empty")

	// ErrInvalidFallbackPrice is returned when a fallback price is not positive.
	ErrInvalidFallbackPrice = errors.New("invalid fallback price: must be positive")

	// ErrInvalidExchangeRate is returned when an exchange rate is not positive.
	ErrInvalidExchangeRate = errors.New("invalid exchange rate: must be positive")

	// ErrInvalidStoreBackend is returned for an unknown --store value.
	ErrInvalidStoreBackend = errors.New("invalid store backend: must be http, sqlite or none")

	// ErrMissingPriceStoreAddress is returned when the http store has no address.
	ErrMissingPriceStoreAddress = errors.New("price store address must not be empty")

	// ErrMissingDBDir is returned when the sqlite store has no directory.
	ErrMissingDBDir = errors.New("database directory must not be empty")

	// ErrInvalidDelay is returned when the delay bounds are negative or inverted.
	ErrInvalidDelay = errors.New("invalid delay: min must be non-negative and not greater than max")

	// ErrInvalidTimeout is returned when a timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidTitleLength is returned when the title length is not positive.
	ErrInvalidTitleLength = errors.New("invalid title length: must be positive")

	// ErrMissingReportFile is returned when no report path is configured.
	ErrMissingReportFile = errors.New("report file path must not be empty")
)
