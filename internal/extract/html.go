package extract

import (
	"io"
	"strings"

	"github.com/nao1215/pricewatch/internal/model"
	"golang.org/x/net/html"
)

// Marketplace markup used to locate result entries and their fields.
const (
	// ResultSelector matches one search result container.
	ResultSelector = `[data-component-type="s-search-result"]`

	resultAttrKey   = "data-component-type"
	resultAttrValue = "s-search-result"

	classPriceWhole    = "a-price-whole"
	classPriceFraction = "a-price-fraction"
	classPriceSymbol   = "a-price-symbol"
)

// ParseResultsHTML parses a rendered search page and returns its result
// entries in document order. Missing fields are left empty.
func ParseResultsHTML(r io.Reader) ([]model.ResultEntry, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	entries := make([]model.ResultEntry, 0)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && getAttr(n, resultAttrKey) == resultAttrValue {
			entries = append(entries, parseResult(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return entries, nil
}

// parseResult reads the title and price parts of one result container.
func parseResult(n *html.Node) model.ResultEntry {
	entry := model.ResultEntry{}

	if title := findTitle(n); title != nil {
		entry.Title = strings.TrimSpace(textContent(title))
	}
	if whole := findFirst(n, hasClass(classPriceWhole)); whole != nil {
		entry.PriceWhole = textContent(whole)
	}
	if fraction := findFirst(n, hasClass(classPriceFraction)); fraction != nil {
		entry.PriceFraction = textContent(fraction)
	}
	if symbol := findFirst(n, hasClass(classPriceSymbol)); symbol != nil {
		entry.CurrencySymbol = strings.TrimSpace(textContent(symbol))
	}

	return entry
}

// findTitle returns the "h2 a span" element, falling back to "h2 span"
// which newer layouts use.
func findTitle(n *html.Node) *html.Node {
	for _, h2 := range findAll(n, isElement("h2")) {
		for _, a := range findAll(h2, isElement("a")) {
			if span := findFirst(a, isElement("span")); span != nil {
				return span
			}
		}
	}
	for _, h2 := range findAll(n, isElement("h2")) {
		if span := findFirst(h2, isElement("span")); span != nil {
			return span
		}
	}
	return nil
}

// findFirst returns the first descendant of n matching pred, in document order.
func findFirst(n *html.Node, pred func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if pred(c) {
			return c
		}
		if found := findFirst(c, pred); found != nil {
			return found
		}
	}
	return nil
}

// findAll returns every descendant of n matching pred, in document order.
func findAll(n *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if pred(c) {
			out = append(out, c)
		}
		out = append(out, findAll(c, pred)...)
	}
	return out
}

func isElement(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == tag
	}
}

func hasClass(class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		for _, c := range strings.Fields(getAttr(n, "class")) {
			if c == class {
				return true
			}
		}
		return false
	}
}

// textContent concatenates every text node below n, like the DOM property.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// getAttr returns the value of the named attribute, or "" when absent.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
