package chain

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/vk/cartchain/internal/ctxlog"
)

// Executor runs an ordered list of steps and keeps the state produced by the
// last run that went through all of them.
//
// Steps and observers are registered during setup. Registering them while a
// run is in flight is unsupported. Result may be called at any time.
type Executor[S any] struct {
	name      string
	steps     []Step[S]
	observers []Observer

	running   atomic.Bool
	committed atomic.Pointer[S]
}

// New creates an executor with an empty chain and no committed result.
func New[S any](name string) *Executor[S] {
	return &Executor[S]{name: name}
}

// Name returns the chain name given to New.
func (e *Executor[S]) Name() string {
	return e.name
}

// Len returns the number of registered steps.
func (e *Executor[S]) Len() int {
	return len(e.steps)
}

// AddStep appends a step to the chain.
func (e *Executor[S]) AddStep(step Step[S]) {
	e.steps = append(e.steps, step)
}

// Observe registers an observer for all subsequent runs.
func (e *Executor[S]) Observe(o Observer) {
	e.observers = append(e.observers, o)
}

// Result returns the last committed state. ok is false until a run has
// completed all of its steps.
func (e *Executor[S]) Result() (state S, ok bool) {
	p := e.committed.Load()
	if p == nil {
		return state, false
	}
	return *p, true
}

// Run executes the steps in registration order, starting from initial.
//
// A step that stops the chain ends the run without an error and without
// touching the committed result. A step error ends the run the same way and
// is returned wrapped in a *StepError. Only a run that gets through every
// step commits its final state. Run returns ErrBusy if the executor is
// already running.
func (e *Executor[S]) Run(ctx context.Context, initial S) error {
	if !e.running.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer e.running.Store(false)

	runID := uuid.NewString()
	ctx = ctxlog.With(ctx, "chain", e.name, "run_id", runID)
	logger := ctxlog.FromContext(ctx)

	logger.Info("🚀 Starting chain execution", "steps", len(e.steps))
	e.emit(ctx, Event{Kind: EventRunStarted, Chain: e.name, RunID: runID, Index: -1})

	current := initial
	for i, step := range e.steps {
		stepLogger := logger.With("step", step.Name, "index", i)
		stepLogger.Info("▶️ Starting step")
		e.emit(ctx, Event{Kind: EventStepStarted, Chain: e.name, RunID: runID, Step: step.Name, Index: i})

		started := time.Now()
		outcome, err := step.Action(ctx, current)
		elapsed := time.Since(started)

		if err != nil {
			stepLogger.Error("❌ Step failed, chain aborted", "error", err, "duration", elapsed)
			e.emit(ctx, Event{Kind: EventStepFailed, Chain: e.name, RunID: runID, Step: step.Name, Index: i, Duration: elapsed, Err: err})
			e.emit(ctx, Event{Kind: EventChainFailed, Chain: e.name, RunID: runID, Step: step.Name, Index: i, Err: err})
			return &StepError{Chain: e.name, Step: step.Name, Index: i, Err: err}
		}

		next, ok := outcome.State()
		if !ok {
			stepLogger.Info("⏹️ Step stopped the chain, result left untouched", "duration", elapsed)
			e.emit(ctx, Event{Kind: EventStepStopped, Chain: e.name, RunID: runID, Step: step.Name, Index: i, Duration: elapsed})
			e.emit(ctx, Event{Kind: EventChainStopped, Chain: e.name, RunID: runID, Step: step.Name, Index: i})
			return nil
		}

		stepLogger.Info("✅ Finished step", "duration", elapsed)
		e.emit(ctx, Event{Kind: EventStepContinued, Chain: e.name, RunID: runID, Step: step.Name, Index: i, Duration: elapsed})
		current = next
	}

	e.committed.Store(&current)
	logger.Info("🏁 Chain execution completed, result committed")
	e.emit(ctx, Event{Kind: EventChainCommitted, Chain: e.name, RunID: runID, Index: -1})
	return nil
}

func (e *Executor[S]) emit(ctx context.Context, ev Event) {
	for _, o := range e.observers {
		o.Observe(ctx, ev)
	}
}
