package chain

import (
	"context"
	"time"
)

// EventKind identifies what happened during a run.
type EventKind int

const (
	// EventRunStarted is emitted once before the first step.
	EventRunStarted EventKind = iota
	// EventStepStarted is emitted right before a step's action is called.
	EventStepStarted
	// EventStepContinued is emitted when a step produced a new state.
	EventStepContinued
	// EventStepStopped is emitted when a step asked to stop the chain.
	EventStepStopped
	// EventStepFailed is emitted when a step returned an error.
	EventStepFailed
	// EventChainCommitted closes a run whose final state was committed.
	EventChainCommitted
	// EventChainStopped closes a run that a step stopped.
	EventChainStopped
	// EventChainFailed closes a run that a step failed.
	EventChainFailed
)

// String returns the name of an event kind as used in logs and metrics.
func (k EventKind) String() string {
	switch k {
	case EventRunStarted:
		return "run_started"
	case EventStepStarted:
		return "step_started"
	case EventStepContinued:
		return "step_continued"
	case EventStepStopped:
		return "step_stopped"
	case EventStepFailed:
		return "step_failed"
	case EventChainCommitted:
		return "committed"
	case EventChainStopped:
		return "stopped"
	case EventChainFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the event closes a run.
func (k EventKind) Terminal() bool {
	return k == EventChainCommitted || k == EventChainStopped || k == EventChainFailed
}

// Event describes one observable moment of a run. Step and Index are set for
// step events and for the terminal event of a stopped or failed run; Index is
// -1 otherwise.
type Event struct {
	Kind     EventKind
	Chain    string
	RunID    string
	Step     string
	Index    int
	Duration time.Duration
	Err      error
}

// Observer receives run events. Observers are called synchronously on the
// run's goroutine and cannot influence the outcome of the run.
type Observer interface {
	Observe(ctx context.Context, ev Event)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(ctx context.Context, ev Event)

// Observe calls f(ctx, ev).
func (f ObserverFunc) Observe(ctx context.Context, ev Event) {
	f(ctx, ev)
}
