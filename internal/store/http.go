package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// pricesPath is the store endpoint that accepts price updates.
const pricesPath = "/api/prices"

// priceUpdate is the JSON body posted to the store.
type priceUpdate struct {
	Products []priceEntry `json:"products"`
}

type priceEntry struct {
	ID    string `json:"id"`
	Price int    `json:"price"`
}

// HTTPStore posts prices to a remote price store service.
type HTTPStore struct {
	address string
	client  *http.Client
	logger  *slog.Logger
}

// HTTPOption configures an HTTPStore.
type HTTPOption func(*HTTPStore)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPStore) {
		if c != nil {
			s.client = c
		}
	}
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) HTTPOption {
	return func(s *HTTPStore) {
		if d > 0 {
			s.client = &http.Client{Timeout: d}
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) HTTPOption {
	return func(s *HTTPStore) {
		s.logger = logger
	}
}

// NewHTTPStore creates a store that posts to address, e.g. "http://127.0.0.1:3001".
func NewHTTPStore(address string, opts ...HTTPOption) *HTTPStore {
	s := &HTTPStore{
		address: strings.TrimRight(address, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dispatch posts one price update. Any non-2xx response is a failure.
func (s *HTTPStore) Dispatch(ctx context.Context, id string, price int) error {
	body, err := json.Marshal(priceUpdate{Products: []priceEntry{{ID: id, Price: price}}})
	if err != nil {
		return fmt.Errorf("%w: encode request: %w", ErrDispatchFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.address+pricesPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: create request: %w", ErrDispatchFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDispatchFailed, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // Drain for connection reuse

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s returned %s", ErrDispatchFailed, pricesPath, resp.Status)
	}

	s.logger.Debug("price dispatched", "id", id, "price", price)
	return nil
}
