package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/pricewatch/internal/model"
)

// MarkdownWriter outputs the run report in Markdown format.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.RunReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeProducts(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.RunReport) {
	md.H1("GPU Price Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Last Update", report.LastUpdate.Format("2006-01-02 15:04:05 MST")},
			{"JPY to CNY", strconv.FormatFloat(report.ExchangeRate.JPYToCNY, 'f', -1, 64)},
			{"USD to CNY", strconv.FormatFloat(report.ExchangeRate.USDToCNY, 'f', -1, 64)},
			{"Succeeded", strconv.Itoa(report.SuccessCount()) + "/" + strconv.Itoa(report.Total())},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Summary")
	md.PlainText("")

	if report.Total() > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Extraction Results"),
			piechart.WithShowData(true),
		)
		if n := report.SuccessCount(); n > 0 {
			chart.LabelAndIntValue("Extracted", uint64(n))
		}
		if n := len(report.Failed()); n > 0 {
			chart.LabelAndIntValue("Fallback", uint64(n))
		}
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	switch failed := report.FailedNames(); {
	case report.Total() == 0:
		md.Note("The catalog is empty.")
	case len(failed) == report.Total():
		md.Cautionf("No prices could be extracted. All %d products use fallback prices.", report.Total())
	case len(failed) > 0:
		md.Warningf("%d product(s) use fallback prices.", len(failed))
	default:
		md.Tip("Every product was priced from a live listing.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeProducts(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Products")
	md.PlainText("")

	if report.Total() == 0 {
		md.PlainText("No products in catalog.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Products))
	for i, p := range report.Products {
		status := "✅"
		original := "-"
		title := "-"
		if p.Success {
			if p.PriceOriginal != nil {
				original = p.Currency + strconv.FormatFloat(*p.PriceOriginal, 'f', 2, 64)
			}
			if p.Title != nil {
				title = truncateString(*p.Title, 60)
			}
		} else {
			status = "⚠️ fallback"
		}
		rows[i] = []string{
			p.Name,
			"`" + p.ID + "`",
			original,
			"¥" + strconv.Itoa(p.PriceCNY),
			title,
			status,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Product", "ID", "Listing Price", "Price (CNY)", "Listing", "Status"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [pricewatch](https://github.com/nao1215/pricewatch)*")
}

// truncateString truncates s to maxLen runes with an ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
