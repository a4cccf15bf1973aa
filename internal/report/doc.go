// Package report composes and writes run reports.
//
// Compose turns the outcomes of a run into a model.RunReport and the
// notification text. It performs no I/O, so calling it twice on the same
// input yields identical results.
//
// Writers render a RunReport for different destinations:
//   - JSONWriter: the prices.json artifact read by downstream tools
//   - MarkdownWriter: a human-readable report using nao1215/markdown
//   - SimpleWriter: a plain text summary for the terminal
package report
