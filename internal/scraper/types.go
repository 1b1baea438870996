package scraper

import (
	"context"

	"sjsage522/streamyardchat/internal/browser"
)

// RawMessage is one chat node as seen in a single DOM snapshot
type RawMessage struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Text     string `json:"text"`
}

// Selectors contains CSS selectors for the chat panel
type Selectors struct {
	Container string
	Each      string
	Nickname  string
	Text      string
}

// Extractor reads the chat messages currently present in a page
type Extractor interface {
	// Extract queries the page once and returns its messages in document order
	Extract(ctx context.Context, page browser.Page, sel Selectors) ([]RawMessage, error)
}
