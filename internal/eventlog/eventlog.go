// Package eventlog provides a chain observer that keeps a human-readable
// log of every run, mirrors it to slog and can export it as JSON lines.
package eventlog

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/vk/cartchain/internal/chain"
	"github.com/vk/cartchain/internal/ctxlog"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Record is the exported form of a single event.
type Record struct {
	Time       time.Time `json:"time"`
	Kind       string    `json:"kind"`
	Chain      string    `json:"chain"`
	RunID      string    `json:"run_id"`
	Step       string    `json:"step,omitempty"`
	Index      int       `json:"index"`
	DurationMS float64   `json:"duration_ms,omitempty"`
	Error      string    `json:"error,omitempty"`
	Message    string    `json:"message"`
}

// Log is a concurrency-safe chain.Observer.
type Log struct {
	mu      sync.Mutex
	records []Record
	now     func() time.Time
}

// New creates an empty log.
func New() *Log {
	return &Log{now: time.Now}
}

// Observe implements chain.Observer.
func (l *Log) Observe(ctx context.Context, ev chain.Event) {
	rec := Record{
		Time:       l.now(),
		Kind:       ev.Kind.String(),
		Chain:      ev.Chain,
		RunID:      ev.RunID,
		Step:       ev.Step,
		Index:      ev.Index,
		DurationMS: float64(ev.Duration) / float64(time.Millisecond),
		Message:    Message(ev),
	}
	if ev.Err != nil {
		rec.Error = ev.Err.Error()
	}

	l.mu.Lock()
	l.records = append(l.records, rec)
	l.mu.Unlock()

	ctxlog.FromContext(ctx).Debug(rec.Message, "event", rec.Kind)
}

// Message renders the human-readable line for an event.
func Message(ev chain.Event) string {
	switch ev.Kind {
	case chain.EventRunStarted:
		return "Starting chain execution..."
	case chain.EventStepStarted:
		return fmt.Sprintf("%s: started", ev.Step)
	case chain.EventStepContinued:
		return fmt.Sprintf("%s: continued", ev.Step)
	case chain.EventStepStopped:
		return fmt.Sprintf("%s: stopped the chain", ev.Step)
	case chain.EventStepFailed:
		return fmt.Sprintf("%s: failed: %v", ev.Step, ev.Err)
	case chain.EventChainCommitted:
		return "Chain execution completed!"
	case chain.EventChainStopped:
		return fmt.Sprintf("Chain execution stopped at %s, result unchanged.", ev.Step)
	case chain.EventChainFailed:
		return fmt.Sprintf("Chain execution failed at %s, result unchanged.", ev.Step)
	default:
		return ev.Kind.String()
	}
}

// Lines returns the recorded messages in order.
func (l *Log) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	lines := make([]string, 0, len(l.records))
	for _, r := range l.records {
		lines = append(lines, r.Message)
	}
	return lines
}

// Records returns a copy of the recorded events.
func (l *Log) Records() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.records)
}

// Reset drops every recorded event.
func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = nil
}

// WriteText writes one message per line.
func (l *Log) WriteText(w io.Writer) error {
	for _, line := range l.Lines() {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON writes the recorded events as JSON lines.
func (l *Log) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	for _, r := range l.Records() {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}
