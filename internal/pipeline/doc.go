// Package pipeline runs the per-product pricing process across a catalog.
//
// Processor handles a single product. It fetches search results, extracts a
// listing, normalizes its price to CNY and dispatches the result to a price
// store. The pure stages (extract, normalize) are kept apart from the
// effectful ones (fetch, dispatch), and every failure is turned into a
// fallback outcome instead of an error.
//
// Orchestrator drives a Processor over the catalog strictly sequentially,
// because the fetcher is a single shared browser page. A random delay is
// inserted between products and the outcomes are collected in catalog order
// into a model.RunReport.
package pipeline
