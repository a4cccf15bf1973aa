package model

// ExchangeRates holds conversion factors into the reference currency (CNY).
// The rates are constant for the duration of a run.
type ExchangeRates struct {
	JPYToCNY float64 `json:"jpy_to_cny" yaml:"jpyToCny"`
	USDToCNY float64 `json:"usd_to_cny" yaml:"usdToCny"`
}

// Valid reports whether both rates are positive.
func (r ExchangeRates) Valid() bool {
	return r.JPYToCNY > 0 && r.USDToCNY > 0
}
