package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"sjsage522/streamyardchat/helpers"
	"sjsage522/streamyardchat/internal/browser"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Extraction modes
const (
	ExtractModeScript   = "script"
	ExtractModeDocument = "document"
)

// NewExtractor returns the extractor for an extraction mode
func NewExtractor(mode string) (Extractor, error) {
	switch mode {
	case "", ExtractModeScript:
		return &ScriptExtractor{}, nil
	case ExtractModeDocument:
		return &DocumentExtractor{}, nil
	default:
		return nil, fmt.Errorf("unknown extract mode: %s", mode)
	}
}

// ScriptExtractor runs the extraction query inside the page
type ScriptExtractor struct{}

// Ensure ScriptExtractor implements Extractor
var _ Extractor = (*ScriptExtractor)(nil)

// Extract evaluates the extraction script against the live DOM
func (e *ScriptExtractor) Extract(ctx context.Context, page browser.Page, sel Selectors) ([]RawMessage, error) {
	raw, err := page.Evaluate(ctx, extractScript, sel.Container, sel.Each, sel.Nickname, sel.Text)
	if err != nil {
		return nil, fmt.Errorf("evaluate extraction script: %w", err)
	}

	var triples [][]string
	if err := json.Unmarshal(raw, &triples); err != nil {
		return nil, fmt.Errorf("decode extraction result: %w", err)
	}

	batch := make([]RawMessage, 0, len(triples))
	for _, t := range triples {
		if len(t) != 3 {
			continue
		}
		batch = append(batch, RawMessage{ID: t[0], Nickname: t[1], Text: t[2]})
	}
	return finalize(batch), nil
}

// DocumentExtractor takes one HTML snapshot of the page and queries it with goquery
type DocumentExtractor struct {
	// Clock is used for synthesized identities; defaults to time.Now
	Clock func() time.Time
}

// Ensure DocumentExtractor implements Extractor
var _ Extractor = (*DocumentExtractor)(nil)

// Extract parses the current document and extracts its messages
func (e *DocumentExtractor) Extract(ctx context.Context, page browser.Page, sel Selectors) ([]RawMessage, error) {
	html, err := page.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("read page html: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse page html: %w", err)
	}
	return e.ExtractDocument(doc, sel)
}

// ExtractDocument runs the extraction query against a parsed document
func (e *DocumentExtractor) ExtractDocument(doc *goquery.Document, sel Selectors) ([]RawMessage, error) {
	// goquery silently matches nothing on a bad selector; a bad message
	// selector must fail the poll like it does in the page.
	if _, err := cascadia.Compile(sel.Each); err != nil {
		return nil, fmt.Errorf("invalid message selector %q: %w", sel.Each, err)
	}

	root := doc.Selection
	if sel.Container != "" {
		if container := doc.Find(sel.Container).First(); container.Length() > 0 {
			root = container
		}
	}

	now := time.Now
	if e.Clock != nil {
		now = e.Clock
	}
	tick := now().UnixMilli()

	var batch []RawMessage
	root.Find(sel.Each).Each(func(i int, s *goquery.Selection) {
		nickname := elementText(s, sel.Nickname)
		text := elementText(s, sel.Text)
		if nickname == "" && text == "" {
			return
		}

		id, _ := s.Attr("data-message-id")
		if id == "" {
			id, _ = s.Attr("id")
		}
		if id == "" {
			id = synthesizeID(tick, i, nickname, text)
		}
		batch = append(batch, RawMessage{ID: id, Nickname: nickname, Text: text})
	})
	return finalize(batch), nil
}

// elementText returns the normalized text of the first match of selector under s
func elementText(s *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	found := s.Find(selector).First()
	if found.Length() == 0 {
		return ""
	}
	return helpers.NormalizeText(found.Text())
}

// synthesizeID builds a best-effort identity for nodes without a stable id.
// It embeds the poll tick, so the same node may get a new identity next poll.
func synthesizeID(tick int64, index int, nickname, text string) string {
	return fmt.Sprintf("%d-%d-%s-%s", tick, index, nickname, text)
}

// finalize normalizes whitespace and drops entries with no nickname and no text
func finalize(batch []RawMessage) []RawMessage {
	out := make([]RawMessage, 0, len(batch))
	for _, m := range batch {
		m.Nickname = helpers.NormalizeText(m.Nickname)
		m.Text = helpers.NormalizeText(m.Text)
		if m.Nickname == "" && m.Text == "" {
			continue
		}
		out = append(out, m)
	}
	return out
}
