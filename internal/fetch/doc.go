// Package fetch provides the page fetching capability used by the pipeline.
//
// A Fetcher navigates to a product's query target and returns the raw
// search result entries found there. BrowserFetcher implements it with a
// single headless Chrome page driven through go-rod. The page is reused
// and navigated for every product, so a BrowserFetcher must only be driven
// by one caller at a time.
package fetch
