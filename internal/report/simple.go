package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/pricewatch/internal/model"
)

// SimpleWriter outputs a plain text summary for the terminal.
type SimpleWriter struct {
	baseWriter

	// verbose adds listing titles to each product line.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables listing titles in the output.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report summary.
func (w *SimpleWriter) Write(report *model.RunReport) (int, error) {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteString("\n")
	sb.WriteString("                    GPU PRICE REPORT\n")
	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Last Update: %s\n", report.LastUpdate.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Rates:       JPY->CNY %g, USD->CNY %g\n",
		report.ExchangeRate.JPYToCNY, report.ExchangeRate.USDToCNY))
	sb.WriteString(fmt.Sprintf("Succeeded:   %d/%d\n\n", report.SuccessCount(), report.Total()))

	for _, p := range report.Products {
		mark := "[OK]      "
		if !p.Success {
			mark = "[FALLBACK]"
		}
		sb.WriteString(fmt.Sprintf("  %s %-22s ¥%d\n", mark, p.Name, p.PriceCNY))
		if w.verbose && p.Title != nil {
			sb.WriteString(fmt.Sprintf("             %s\n", *p.Title))
		}
	}

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 60))
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}
