package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nao1215/pricewatch/internal/model"
)

// Writer renders a run report to a destination.
type Writer interface {
	// Write outputs the report and returns the number of bytes written.
	Write(report *model.RunReport) (int, error)
}

// MultiWriter writes to multiple Writers, stopping on the first error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
func (m *MultiWriter) Write(report *model.RunReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// WriteFile renders report with the writer built by newWriter into path,
// replacing any previous content. Parent directories are created.
func WriteFile(path string, report *model.RunReport, newWriter func(io.Writer) Writer) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}

	if _, err := newWriter(f).Write(report); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close report file: %w", err)
	}
	return nil
}
