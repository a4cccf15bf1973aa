package store

import (
	"context"
	"errors"
)

// ErrDispatchFailed is returned when a price could not be delivered to the store.
var ErrDispatchFailed = errors.New("price dispatch failed")

// PriceStore records the latest normalized price for a product id.
type PriceStore interface {
	Dispatch(ctx context.Context, id string, price int) error
}

// NopStore discards every price. It is used when no store is configured.
type NopStore struct{}

// Dispatch does nothing.
func (NopStore) Dispatch(context.Context, string, int) error {
	return nil
}
