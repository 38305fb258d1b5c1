package chain

import "context"

// Action transforms the current state. It returns Continue with the next
// state, Stop to end the chain without committing, or an error.
type Action[S any] func(ctx context.Context, state S) (Outcome[S], error)

// Step is a named unit of work in a chain. The name is only used for
// diagnostics.
type Step[S any] struct {
	Name   string
	Action Action[S]
}

// Outcome is the result of a step: either a replacement state or a stop
// signal. The zero value is a stop.
type Outcome[S any] struct {
	state S
	next  bool
}

// Continue hands state to the next step.
func Continue[S any](state S) Outcome[S] {
	return Outcome[S]{state: state, next: true}
}

// Stop ends the chain without committing anything.
func Stop[S any]() Outcome[S] {
	return Outcome[S]{}
}

// Stopped reports whether the outcome requests termination of the chain.
func (o Outcome[S]) Stopped() bool {
	return !o.next
}

// State returns the carried state and whether there is one.
func (o Outcome[S]) State() (S, bool) {
	return o.state, o.next
}
