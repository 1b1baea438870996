package exporter

import (
	"os"
	"path/filepath"
	"strings"

	"sjsage522/streamyardchat/internal/model"
)

// Column headers, in output order
const (
	ColumnMessage     = "Message"
	ColumnNickname    = "Nickname"
	ColumnStartTime   = "Start Time"
	ColumnEndTime     = "End Time"
	ColumnMessageTime = "Message Time"
)

// Exporter represents a tabular serializer for the final record sequence
type Exporter interface {
	// Export writes records to path, creating the destination directory
	Export(path string, records []model.ChatMessage, includeMessageTime bool) error

	// Format returns a short name for logging, e.g. "xlsx"
	Format() string
}

// Header returns the column headers
func Header(includeMessageTime bool) []string {
	header := []string{ColumnMessage, ColumnNickname, ColumnStartTime, ColumnEndTime}
	if includeMessageTime {
		header = append(header, ColumnMessageTime)
	}
	return header
}

// Row returns the cells of one record, in header order
func Row(m model.ChatMessage, includeMessageTime bool) []string {
	row := []string{m.Message, m.Nickname, m.StartTime, m.EndTime}
	if includeMessageTime {
		row = append(row, m.MessageTime)
	}
	return row
}

// CSVPath returns the sibling .csv path sharing path's base name
func CSVPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".csv"
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
