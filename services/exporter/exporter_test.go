package exporter

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"sjsage522/streamyardchat/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleRecords() []model.ChatMessage {
	return []model.ChatMessage{
		{Message: "hi", Nickname: "bob", StartTime: "2025-01-01T10:00:00", EndTime: "2025-01-01T10:05:00", MessageTime: "2025-01-01T10:01:00"},
		{Message: "héllo, \"world\"", Nickname: "", StartTime: "2025-01-01T10:00:00", EndTime: "2025-01-01T10:05:00", MessageTime: "2025-01-01T10:02:00"},
		{Message: "0042", Nickname: "ann", StartTime: "2025-01-01T10:00:00", EndTime: "2025-01-01T10:05:00", MessageTime: "2025-01-01T10:03:00"},
	}
}

func TestHeaderAndRow(t *testing.T) {
	assert.Equal(t, []string{"Message", "Nickname", "Start Time", "End Time"}, Header(false))
	assert.Equal(t, []string{"Message", "Nickname", "Start Time", "End Time", "Message Time"}, Header(true))

	m := model.ChatMessage{Message: "hi", Nickname: "bob", StartTime: "2025-01-01T10:00:00", EndTime: "2025-01-01T10:05:00"}
	assert.Equal(t, []string{"hi", "bob", "2025-01-01T10:00:00", "2025-01-01T10:05:00"}, Row(m, false))
	assert.Equal(t, []string{"hi", "bob", "2025-01-01T10:00:00", "2025-01-01T10:05:00", ""}, Row(m, true))
}

func TestCSVPath(t *testing.T) {
	assert.Equal(t, "output/streamyard_chat.csv", CSVPath("output/streamyard_chat.xlsx"))
	assert.Equal(t, "/tmp/a.b/chat.csv", CSVPath("/tmp/a.b/chat.xlsx"))
	assert.Equal(t, "chat.csv", CSVPath("chat"))
}

func TestXLSXRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "chat.xlsx")
	records := sampleRecords()

	require.NoError(t, NewXLSXExporter().Export(path, records, true))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, len(records)+1)
	assert.Equal(t, Header(true), rows[0])
	for i, r := range records {
		assert.Equal(t, Row(r, true), rows[i+1])
	}
}

func TestXLSXWithoutMessageTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.xlsx")
	records := []model.ChatMessage{
		{Message: "hi", Nickname: "bob", StartTime: "2025-01-01T10:00:00", EndTime: "2025-01-01T10:05:00"},
	}

	require.NoError(t, NewXLSXExporter().Export(path, records, false))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Message", "Nickname", "Start Time", "End Time"},
		{"hi", "bob", "2025-01-01T10:00:00", "2025-01-01T10:05:00"},
	}, rows)
}

func TestXLSXEmptySession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.xlsx")
	require.NoError(t, NewXLSXExporter().Export(path, nil, false))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Equal(t, [][]string{Header(false)}, rows)
}

func TestCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "chat.csv")
	records := sampleRecords()

	require.NoError(t, NewCSVExporter().Export(path, records, true))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, len(records)+1)
	assert.Equal(t, Header(true), rows[0])
	for i, r := range records {
		assert.Equal(t, Row(r, true), rows[i+1])
	}
}

func TestExportUnwritablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	// A regular file cannot be used as a directory
	path := filepath.Join(blocker, "chat.xlsx")

	assert.Error(t, NewXLSXExporter().Export(path, sampleRecords(), false))
	assert.Error(t, NewCSVExporter().Export(CSVPath(path), sampleRecords(), false))
}

func TestColumnWidth(t *testing.T) {
	assert.Equal(t, float64(minColumnWidth), columnWidth(0))
	assert.Equal(t, float64(22), columnWidth(20))
	assert.Equal(t, float64(maxColumnWidth), columnWidth(500))
}
