// Package browser exposes the small page surface the chat session needs from
// a browser automation host, and a go-rod backed implementation of it.
package browser

import (
	"context"
	"time"
)

// Page is a navigable browser tab
type Page interface {
	// Navigate loads url in the page
	Navigate(ctx context.Context, url string) error

	// WaitLoad blocks until the page's base document has loaded
	WaitLoad(ctx context.Context) error

	// WaitForSelector fails if selector does not match within timeout
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error

	// Evaluate runs a JavaScript function in the page and returns its JSON result
	Evaluate(ctx context.Context, script string, args ...interface{}) ([]byte, error)

	// HTML returns a snapshot of the current document
	HTML(ctx context.Context) (string, error)

	// Close releases the page and anything the page owns. Safe to call twice.
	Close() error
}

// Options describes how to obtain a browser
type Options struct {
	// ControlURL attaches to an already running browser (ws:// or host:port)
	ControlURL string
	// Bin overrides the browser executable used when launching
	Bin string
	// UserDataDir keeps the browser profile (and the login) between runs
	UserDataDir string
	Headless    bool
}
