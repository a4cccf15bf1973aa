package model

import "time"

// RunReport is the structured artifact produced at the end of every run.
// Products are kept in catalog order, one entry per catalog product.
type RunReport struct {
	// LastUpdate is the time the report was composed.
	LastUpdate time.Time `json:"last_update"`

	// ExchangeRate holds the rates used for every conversion in this run.
	ExchangeRate ExchangeRates `json:"exchange_rate"`

	// Products holds one outcome per catalog product, in catalog order.
	Products []ProductOutcome `json:"products"`
}

// SuccessCount returns the number of products priced from a live listing.
func (r *RunReport) SuccessCount() int {
	n := 0
	for _, p := range r.Products {
		if p.Success {
			n++
		}
	}
	return n
}

// Total returns the number of products in the report.
func (r *RunReport) Total() int {
	return len(r.Products)
}

// Succeeded returns the successful outcomes in report order.
func (r *RunReport) Succeeded() []ProductOutcome {
	out := make([]ProductOutcome, 0, len(r.Products))
	for _, p := range r.Products {
		if p.Success {
			out = append(out, p)
		}
	}
	return out
}

// Failed returns the failed outcomes in report order.
func (r *RunReport) Failed() []ProductOutcome {
	out := make([]ProductOutcome, 0)
	for _, p := range r.Products {
		if !p.Success {
			out = append(out, p)
		}
	}
	return out
}

// FailedNames returns the names of failed products in report order.
func (r *RunReport) FailedNames() []string {
	failed := r.Failed()
	names := make([]string, len(failed))
	for i, p := range failed {
		names[i] = p.Name
	}
	return names
}
