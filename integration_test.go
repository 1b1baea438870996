package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"sjsage522/streamyardchat/internal/browser"
	"sjsage522/streamyardchat/internal/scraper"
	"sjsage522/streamyardchat/internal/session"
	"sjsage522/streamyardchat/logger"
	"sjsage522/streamyardchat/services/exporter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// chatSnapshot renders a studio chat panel holding the given messages.
// Messages without an id get none, so their identity is synthesized.
func chatSnapshot(messages ...[3]string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="ChatMessages_list">`)
	for _, m := range messages {
		attr := ""
		if m[0] != "" {
			attr = fmt.Sprintf(` data-message-id="%s"`, m[0])
		}
		fmt.Fprintf(&b, `<div class="ChatMessage_root_1"%s>
			<span class="ChatMessage_name_2">%s</span>
			<span class="ChatMessage_text_3">%s</span>
		</div>`, attr, m[1], m[2])
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

// StudioPage replays one HTML snapshot per poll and stops the session after the last
type StudioPage struct {
	mu        sync.Mutex
	snapshots []string
	polls     int
	cancel    context.CancelFunc
	closed    bool
}

// Ensure StudioPage implements browser.Page
var _ browser.Page = (*StudioPage)(nil)

func (p *StudioPage) Navigate(ctx context.Context, url string) error { return nil }
func (p *StudioPage) WaitLoad(ctx context.Context) error             { return nil }
func (p *StudioPage) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	return nil
}
func (p *StudioPage) Evaluate(ctx context.Context, script string, args ...interface{}) ([]byte, error) {
	return nil, fmt.Errorf("evaluate is not supported by the snapshot page")
}
func (p *StudioPage) HTML(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	html := p.snapshots[p.polls]
	p.polls++
	if p.polls == len(p.snapshots) {
		p.cancel()
	}
	return html, nil
}
func (p *StudioPage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func TestChatSessionEndToEnd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	page := &StudioPage{
		cancel: cancel,
		snapshots: []string{
			chatSnapshot(),
			chatSnapshot([3]string{"m1", "alice", "hello everyone"}),
			chatSnapshot(
				[3]string{"m1", "alice", "hello everyone"},
				[3]string{"m2", "bob", "hi alice, \"welcome\""},
				[3]string{"m3", "", ""},
			),
			chatSnapshot(
				[3]string{"m2", "bob", "hi alice, \"welcome\""},
				[3]string{"m4", "carol", "  great   stream  "},
			),
		},
	}

	outputPath := filepath.Join(t.TempDir(), "output", "streamyard_chat.xlsx")
	controller := session.NewController(
		session.Options{
			URL:                "https://streamyard.studio/?v=UnchainedPodcasts",
			Selectors:          scraper.Resolve("", "", "", ""),
			PollInterval:       time.Millisecond,
			ReadyTimeout:       time.Millisecond,
			IncludeMessageTime: true,
			OutputPath:         outputPath,
			WriteCSV:           true,
		},
		session.Dependencies{
			Launch: func(ctx context.Context) (browser.Page, error) {
				return page, nil
			},
			Extractor:   &scraper.DocumentExtractor{},
			Spreadsheet: exporter.NewXLSXExporter(),
			CSV:         exporter.NewCSVExporter(),
			Logger:      logger.Nop(),
		},
	)

	result, err := controller.Run(ctx)
	require.NoError(t, err)
	assert.True(t, page.closed)

	require.Len(t, result.Records, 3)
	assert.Equal(t, "hello everyone", result.Records[0].Message)
	assert.Equal(t, "hi alice, \"welcome\"", result.Records[1].Message)
	assert.Equal(t, "great stream", result.Records[2].Message)
	assert.Equal(t, "carol", result.Records[2].Nickname)

	csvPath := exporter.CSVPath(outputPath)
	assert.Equal(t, []string{outputPath, csvPath}, result.Files)

	// Workbook
	f, err := excelize.OpenFile(outputPath)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exporter.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, len(result.Records)+1)
	assert.Equal(t, exporter.Header(true), rows[0])
	for i, r := range result.Records {
		assert.Equal(t, exporter.Row(r, true), rows[i+1])
		assert.Equal(t, result.StartTime, rows[i+1][2])
		assert.Equal(t, result.EndTime, rows[i+1][3])
	}

	// Sibling CSV
	file, err := os.Open(csvPath)
	require.NoError(t, err)
	defer file.Close()

	csvRows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, rows, csvRows, "csv carries the same columns and values as the workbook")
}

func TestChatSessionSynthesizedIdentities(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The same id-less node seen on two polls gets two different identities
	snapshot := chatSnapshot([3]string{"", "dave", "no stable id"})
	page := &StudioPage{cancel: cancel, snapshots: []string{snapshot, snapshot}}

	tick := time.UnixMilli(1700000000000)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		tick = tick.Add(time.Second)
		return tick
	}

	controller := session.NewController(
		session.Options{
			URL:          "https://streamyard.studio/?v=UnchainedPodcasts",
			Selectors:    scraper.DefaultSelectors(),
			PollInterval: time.Millisecond,
			ReadyTimeout: time.Millisecond,
			OutputPath:   filepath.Join(t.TempDir(), "chat.xlsx"),
		},
		session.Dependencies{
			Launch:      func(ctx context.Context) (browser.Page, error) { return page, nil },
			Extractor:   &scraper.DocumentExtractor{Clock: clock},
			Spreadsheet: exporter.NewXLSXExporter(),
			Logger:      logger.Nop(),
		},
	)

	result, err := controller.Run(ctx)
	require.NoError(t, err)
	assert.Len(t, result.Records, 2, "best-effort identities are not merged across polls")
}
