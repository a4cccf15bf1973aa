// Package extract selects a representative listing from marketplace search results.
//
// Marketplace search is keyword based and returns accessories (cases, fans,
// cables, adapters) next to the product itself. The Extractor walks the
// results in document order and keeps the first entry that has a title,
// is not an accessory, and carries a parseable price. It does not attempt
// fuzzy product matching.
//
// ParseResultsHTML turns a rendered search page into the ResultEntry list
// the Extractor consumes, so the selection logic never touches the DOM.
package extract
