// Package session runs one chat collection session: it opens the studio
// page, waits for the chat panel, polls it until the context is cancelled,
// stamps the session end on every record and exports the result.
package session

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"sjsage522/streamyardchat/helpers"
	"sjsage522/streamyardchat/internal/browser"
	"sjsage522/streamyardchat/internal/ledger"
	"sjsage522/streamyardchat/internal/model"
	"sjsage522/streamyardchat/internal/scraper"
	"sjsage522/streamyardchat/logger"
	"sjsage522/streamyardchat/pkg/errors"
	"sjsage522/streamyardchat/services/exporter"
	"sjsage522/streamyardchat/services/publisher"

	"github.com/google/uuid"
)

// Launcher opens the page a session runs in
type Launcher func(ctx context.Context) (browser.Page, error)

// Options holds the per-run settings
type Options struct {
	URL                string
	Selectors          scraper.Selectors
	PollInterval       time.Duration
	ReadyTimeout       time.Duration
	IncludeMessageTime bool
	OutputPath         string
	WriteCSV           bool
}

// Dependencies holds the collaborators of a session.
// Publisher and CSV may be nil.
type Dependencies struct {
	Launch      Launcher
	Extractor   scraper.Extractor
	Spreadsheet exporter.Exporter
	CSV         exporter.Exporter
	Publisher   publisher.Publisher
	Logger      *logger.Logger
	Clock       func() time.Time
}

// Result is the outcome of a session
type Result struct {
	SessionID string
	StartTime string
	EndTime   string
	Records   []model.ChatMessage
	Files     []string
}

// Controller drives a session through its states
type Controller struct {
	id    string
	opts  Options
	deps  Dependencies
	log   *logger.Logger
	clock func() time.Time

	mu          sync.Mutex
	transitions []State
}

// NewController creates a controller for a single run
func NewController(opts Options, deps Dependencies) *Controller {
	id := uuid.NewString()

	log := deps.Logger
	if log == nil {
		log = logger.ForSession(id)
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}

	return &Controller{
		id:    id,
		opts:  opts,
		deps:  deps,
		log:   log,
		clock: clock,
	}
}

// ID returns the session id
func (c *Controller) ID() string {
	return c.id
}

// Transitions returns the states entered so far, in order
func (c *Controller) Transitions() []State {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]State, len(c.transitions))
	copy(out, c.transitions)
	return out
}

// Run executes the session. Cancelling ctx is the stop signal: once polling
// has started it moves the session to Terminating and then Exporting. The
// page is closed on every return path.
func (c *Controller) Run(ctx context.Context) (*Result, error) {
	result := &Result{SessionID: c.id}

	c.enter(StateLaunching)
	page, err := c.deps.Launch(ctx)
	if err != nil {
		return result, c.setupError(ctx, "launching", "open page", err)
	}
	release := c.releaser(page)
	defer release()

	if err := page.Navigate(ctx, c.opts.URL); err != nil {
		return result, c.setupError(ctx, "launching", "navigate to "+c.opts.URL, err)
	}
	if err := page.WaitLoad(ctx); err != nil {
		return result, c.setupError(ctx, "launching", "wait for page load", err)
	}

	c.enter(StateAwaitingChatReady)
	if err := c.awaitChatReady(ctx, page); err != nil {
		return result, err
	}

	c.enter(StatePolling)
	l := ledger.New(helpers.FormatTimestamp(c.clock()), c.opts.IncludeMessageTime, c.clock)
	result.StartTime = l.StartTime()
	c.pollUntilStopped(ctx, page, l)

	c.enter(StateTerminating)
	result.EndTime = helpers.FormatTimestamp(c.clock())
	l.Stamp(result.EndTime)
	result.Records = l.Records()
	release()

	c.log.Info().
		Int("total", len(result.Records)).
		Str("start_time", result.StartTime).
		Str("end_time", result.EndTime).
		Msg("Stopped collecting chat messages")

	c.enter(StateExporting)
	files, err := c.export(result.Records)
	result.Files = files
	if err != nil {
		return result, err
	}

	c.enter(StateDone)
	return result, nil
}

func (c *Controller) enter(s State) {
	c.mu.Lock()
	c.transitions = append(c.transitions, s)
	c.mu.Unlock()

	c.log.Debug().Str("state", s.String()).Msg("Session state changed")
}

// releaser closes page at most once
func (c *Controller) releaser(page browser.Page) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			if err := page.Close(); err != nil {
				c.log.Warn().Err(err).Msg("Failed to close page")
			}
		})
	}
}

// setupError classifies a failure before polling. A cancelled context is a
// stop request, anything else is a browser fault.
func (c *Controller) setupError(ctx context.Context, stage, message string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("session stopped during %s: %w", stage, ctxErr)
	}
	return errors.NewBrowser(stage, message, err)
}

// awaitChatReady tries each readiness candidate in priority order. Not
// finding any is logged and tolerated.
func (c *Controller) awaitChatReady(ctx context.Context, page browser.Page) error {
	for _, selector := range scraper.ReadyCandidates(c.opts.Selectors) {
		err := page.WaitForSelector(ctx, selector, c.opts.ReadyTimeout)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("session stopped during awaiting_chat_ready: %w", ctxErr)
		}
		if err == nil {
			c.log.Info().Str("selector", selector).Msg("Chat panel is ready")
			return nil
		}
		c.log.Debug().Str("selector", selector).Err(err).Msg("Readiness candidate not found")
	}

	c.log.Warn().
		Err(errors.NewReadiness("no chat selector matched", nil)).
		Dur("timeout_per_selector", c.opts.ReadyTimeout).
		Msg("Chat panel not detected, polling anyway; custom selectors may be required")
	return nil
}

// pollUntilStopped extracts, offers and waits until ctx is cancelled
func (c *Controller) pollUntilStopped(ctx context.Context, page browser.Page, l *ledger.Ledger) {
	c.log.Info().
		Str("start_time", l.StartTime()).
		Dur("interval", c.opts.PollInterval).
		Msg("Collecting chat messages, press Ctrl+C to stop")

	for iteration := 1; ctx.Err() == nil; iteration++ {
		c.pollOnce(ctx, page, l, iteration)

		select {
		case <-ctx.Done():
		case <-time.After(c.opts.PollInterval):
		}
	}
}

// pollOnce runs one extraction. Failures are logged and the batch skipped.
func (c *Controller) pollOnce(ctx context.Context, page browser.Page, l *ledger.Ledger, iteration int) {
	batch, err := c.deps.Extractor.Extract(ctx, page, c.opts.Selectors)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		c.log.Warn().
			Err(errors.NewExtraction("extract messages", err)).
			Int("iteration", iteration).
			Msg("Skipping poll")
		return
	}

	accepted := l.Offer(batch)
	if len(accepted) == 0 {
		return
	}

	c.log.Debug().
		Int("iteration", iteration).
		Int("batch", len(batch)).
		Int("accepted", len(accepted)).
		Int("total", l.Len()).
		Msg("Accepted new chat messages")

	c.publish(accepted)
}

func (c *Controller) publish(records []model.ChatMessage) {
	if c.deps.Publisher == nil {
		return
	}
	for _, m := range records {
		data, err := json.Marshal(m)
		if err != nil {
			c.log.Error().Err(err).Msg("Failed to encode chat message")
			continue
		}
		if err := c.deps.Publisher.Publish(c.id, data); err != nil {
			c.log.Warn().Err(errors.NewPublisher("publish chat message", err)).Msg("Failed to publish chat message")
		}
	}
}

// export writes the spreadsheet and, when enabled, the sibling CSV
func (c *Controller) export(records []model.ChatMessage) ([]string, error) {
	type target struct {
		exp  exporter.Exporter
		path string
	}
	targets := []target{{c.deps.Spreadsheet, c.opts.OutputPath}}
	if c.opts.WriteCSV {
		targets = append(targets, target{c.deps.CSV, exporter.CSVPath(c.opts.OutputPath)})
	}

	var files []string
	for _, t := range targets {
		if t.exp == nil {
			continue
		}
		if err := t.exp.Export(t.path, records, c.opts.IncludeMessageTime); err != nil {
			var sessionErr *errors.SessionError
			if !stderrors.As(err, &sessionErr) {
				err = errors.NewExport(t.path, "export "+t.exp.Format(), err)
			}
			return files, err
		}
		files = append(files, t.path)
		c.log.Info().
			Str("path", t.path).
			Str("format", t.exp.Format()).
			Int("rows", len(records)).
			Msg("Exported chat messages")
	}
	return files, nil
}
