// Package store dispatches normalized prices to a price store.
//
// A PriceStore keeps the latest known price per product id. Three backends
// are provided:
//   - HTTPStore posts prices to a remote price store service
//   - SQLiteStore upserts prices into a local SQLite file
//   - NopStore discards prices
//
// Only the latest price per product is kept. Historical tracking is left to
// the service behind the store.
package store
