// Package ledger deduplicates extracted chat messages and accumulates the
// accepted ones, in first-seen order, for the lifetime of one session.
package ledger

import (
	"sync"
	"time"

	"sjsage522/streamyardchat/helpers"
	"sjsage522/streamyardchat/internal/model"
	"sjsage522/streamyardchat/internal/scraper"
)

// Ledger holds the seen identities and the accepted records of a session.
// Records are append-only; the only later mutation is the end-time stamp.
type Ledger struct {
	mu                 sync.Mutex
	seen               map[string]struct{}
	records            []model.ChatMessage
	startTime          string
	endTime            string
	includeMessageTime bool
	clock              func() time.Time
}

// New creates an empty ledger for a session that started at startTime
func New(startTime string, includeMessageTime bool, clock func() time.Time) *Ledger {
	if clock == nil {
		clock = time.Now
	}
	return &Ledger{
		seen:               make(map[string]struct{}),
		startTime:          startTime,
		includeMessageTime: includeMessageTime,
		clock:              clock,
	}
}

// Offer accepts every message whose identity has not been seen yet, in the
// order given, and returns the newly accepted records.
func (l *Ledger) Offer(batch []scraper.RawMessage) []model.ChatMessage {
	l.mu.Lock()
	defer l.mu.Unlock()

	var accepted []model.ChatMessage
	for _, m := range batch {
		if _, ok := l.seen[m.ID]; ok {
			continue
		}
		l.seen[m.ID] = struct{}{}

		record := model.ChatMessage{
			Message:   m.Text,
			Nickname:  m.Nickname,
			StartTime: l.startTime,
		}
		if l.includeMessageTime {
			record.MessageTime = helpers.FormatTimestamp(l.clock())
		}
		l.records = append(l.records, record)
		accepted = append(accepted, record)
	}
	return accepted
}

// Stamp sets endTime on every record. Only the first call has an effect;
// it reports whether this call applied the stamp.
func (l *Ledger) Stamp(endTime string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.endTime != "" {
		return false
	}
	l.endTime = endTime
	for i := range l.records {
		l.records[i].EndTime = endTime
	}
	return true
}

// Records returns a copy of the accepted records in acceptance order
func (l *Ledger) Records() []model.ChatMessage {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]model.ChatMessage, len(l.records))
	copy(out, l.records)
	return out
}

// Len returns the number of accepted records
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// SeenCount returns the number of distinct identities seen
func (l *Ledger) SeenCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.seen)
}

// StartTime returns the session start timestamp shared by all records
func (l *Ledger) StartTime() string {
	return l.startTime
}

// EndTime returns the end timestamp, or "" before Stamp
func (l *Ledger) EndTime() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.endTime
}
