package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sjsage522/streamyardchat/logger"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// RodPage implements Page on top of go-rod
type RodPage struct {
	browser  *rod.Browser
	page     *rod.Page
	launcher *launcher.Launcher
	attached bool
	log      *logger.Logger

	closeOnce sync.Once
	closeErr  error
}

// Ensure RodPage implements Page
var _ Page = (*RodPage)(nil)

// Launch connects to the browser described by opts and opens a blank page.
// With a ControlURL the existing browser is reused and only the new tab is
// closed on Close; otherwise a browser process is started and killed on Close.
func Launch(ctx context.Context, opts Options) (*RodPage, error) {
	log := logger.ForBrowser()

	var l *launcher.Launcher
	controlURL := opts.ControlURL
	attached := controlURL != ""

	if attached {
		resolved, err := launcher.ResolveURL(controlURL)
		if err != nil {
			return nil, fmt.Errorf("resolve control url %s: %w", controlURL, err)
		}
		controlURL = resolved
		log.Info().Str("control_url", controlURL).Msg("Attaching to running browser")
	} else {
		l = launcher.New().Headless(opts.Headless)
		if opts.Bin != "" {
			l = l.Bin(opts.Bin)
		}
		if opts.UserDataDir != "" {
			l = l.UserDataDir(opts.UserDataDir)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		controlURL = u
		log.Info().
			Bool("headless", opts.Headless).
			Str("user_data_dir", opts.UserDataDir).
			Msg("Launched browser")
	}

	if err := ctx.Err(); err != nil {
		if l != nil {
			l.Kill()
		}
		return nil, err
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		if l != nil {
			l.Kill()
		}
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		if !attached {
			_ = b.Close()
			l.Kill()
		}
		return nil, fmt.Errorf("open page: %w", err)
	}

	return &RodPage{
		browser:  b,
		page:     page,
		launcher: l,
		attached: attached,
		log:      log,
	}, nil
}

// Navigate loads url in the page
func (r *RodPage) Navigate(ctx context.Context, url string) error {
	if err := r.page.Context(ctx).Navigate(url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

// WaitLoad waits for the document load event
func (r *RodPage) WaitLoad(ctx context.Context) error {
	return r.page.Context(ctx).WaitLoad()
}

// WaitForSelector polls for selector until it matches or timeout elapses
func (r *RodPage) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	p := r.page.Context(ctx).Timeout(timeout)
	defer p.CancelTimeout()

	if _, err := p.Element(selector); err != nil {
		return fmt.Errorf("wait for %q: %w", selector, err)
	}
	return nil
}

// Evaluate runs script with args and returns the result serialized as JSON
func (r *RodPage) Evaluate(ctx context.Context, script string, args ...interface{}) ([]byte, error) {
	res, err := r.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:      script,
		JSArgs:  args,
		ByValue: true,
	})
	if err != nil {
		return nil, err
	}
	if res == nil {
		return []byte("null"), nil
	}
	return res.Value.MarshalJSON()
}

// HTML returns the outer HTML of the current document
func (r *RodPage) HTML(ctx context.Context) (string, error) {
	return r.page.Context(ctx).HTML()
}

// Close closes the tab and, when the browser was launched here, the browser
func (r *RodPage) Close() error {
	r.closeOnce.Do(func() {
		if err := r.page.Close(); err != nil {
			r.closeErr = fmt.Errorf("close page: %w", err)
		}
		if r.attached {
			return
		}
		if err := r.browser.Close(); err != nil && r.closeErr == nil {
			r.closeErr = fmt.Errorf("close browser: %w", err)
		}
		if r.launcher != nil {
			r.launcher.Kill()
		}
		r.log.Debug().Msg("Browser closed")
	})
	return r.closeErr
}
