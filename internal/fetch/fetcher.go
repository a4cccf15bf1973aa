package fetch

import (
	"context"

	"github.com/nao1215/pricewatch/internal/model"
)

// Fetcher returns the search result entries shown at target.
// Implementations either return entries or fail within a bounded time.
type Fetcher interface {
	Fetch(ctx context.Context, target string) ([]model.ResultEntry, error)
}

// FetcherFunc adapts an ordinary function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, target string) ([]model.ResultEntry, error)

// Fetch calls f(ctx, target).
func (f FetcherFunc) Fetch(ctx context.Context, target string) ([]model.ResultEntry, error) {
	return f(ctx, target)
}
