// Package main provides the entry point for the pricewatch CLI.
//
// pricewatch monitors marketplace prices for a catalog of graphics cards,
// converts them to CNY, forwards them to a price store and sends a summary
// notification.
//
// Usage:
//
//	pricewatch run
//	pricewatch watch --schedule "0 0 */6 * * *"
//
// See --help for all available options.
package main

func main() {
	Execute()
}
