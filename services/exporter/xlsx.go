package exporter

import (
	"fmt"
	"unicode/utf8"

	"sjsage522/streamyardchat/internal/model"
	"sjsage522/streamyardchat/pkg/errors"

	"github.com/xuri/excelize/v2"
)

const (
	// SheetName is the name of the single worksheet
	SheetName = "Chat"

	minColumnWidth = 10
	maxColumnWidth = 80
)

// XLSXExporter writes records to an Excel workbook
type XLSXExporter struct{}

// Ensure XLSXExporter implements Exporter
var _ Exporter = (*XLSXExporter)(nil)

// NewXLSXExporter creates a new spreadsheet exporter
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// Format returns "xlsx"
func (e *XLSXExporter) Format() string {
	return "xlsx"
}

// Export writes a header row and one row per record to a single sheet
func (e *XLSXExporter) Export(path string, records []model.ChatMessage, includeMessageTime bool) error {
	if err := ensureDir(path); err != nil {
		return errors.NewExport(path, "create output directory", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return errors.NewExport(path, "name sheet", err)
	}

	header := Header(includeMessageTime)
	widths := make([]int, len(header))

	writeRow := func(rowNum int, cells []string) error {
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		for i, v := range cells {
			if n := utf8.RuneCountInString(v); n > widths[i] {
				widths[i] = n
			}
		}
		return f.SetSheetRow(SheetName, cell, &cells)
	}

	if err := writeRow(1, header); err != nil {
		return errors.NewExport(path, "write header", err)
	}
	for i, m := range records {
		if err := writeRow(i+2, Row(m, includeMessageTime)); err != nil {
			return errors.NewExport(path, fmt.Sprintf("write row %d", i+2), err)
		}
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return errors.NewExport(path, "resolve column", err)
		}
		if err := f.SetColWidth(SheetName, col, col, columnWidth(w)); err != nil {
			return errors.NewExport(path, "set column width", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.NewExport(path, "save workbook", err)
	}
	return nil
}

// columnWidth pads the longest cell and clamps it to a readable range
func columnWidth(longest int) float64 {
	w := longest + 2
	if w < minColumnWidth {
		w = minColumnWidth
	}
	if w > maxColumnWidth {
		w = maxColumnWidth
	}
	return float64(w)
}
