package exporter

import (
	"encoding/csv"
	"os"

	"sjsage522/streamyardchat/internal/model"
	"sjsage522/streamyardchat/pkg/errors"
)

// CSVExporter writes records as UTF-8 CSV
type CSVExporter struct{}

// Ensure CSVExporter implements Exporter
var _ Exporter = (*CSVExporter)(nil)

// NewCSVExporter creates a new CSV exporter
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Format returns "csv"
func (e *CSVExporter) Format() string {
	return "csv"
}

// Export writes a header line and one line per record
func (e *CSVExporter) Export(path string, records []model.ChatMessage, includeMessageTime bool) error {
	if err := ensureDir(path); err != nil {
		return errors.NewExport(path, "create output directory", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.NewExport(path, "create file", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Header(includeMessageTime)); err != nil {
		return errors.NewExport(path, "write header", err)
	}
	for _, m := range records {
		if err := w.Write(Row(m, includeMessageTime)); err != nil {
			return errors.NewExport(path, "write row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.NewExport(path, "flush", err)
	}
	if err := f.Close(); err != nil {
		return errors.NewExport(path, "close file", err)
	}
	return nil
}
