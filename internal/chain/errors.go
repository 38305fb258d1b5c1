package chain

import (
	"errors"
	"fmt"
)

// ErrBusy is returned by Run when another run of the same executor is still
// in flight.
var ErrBusy = errors.New("chain is already running")

// StepError reports the failure of a single step. The original error is
// available through errors.Is and errors.As.
type StepError struct {
	Chain string
	Step  string
	Index int
	Err   error
}

// Error implements the error interface for StepError.
func (e *StepError) Error() string {
	return fmt.Sprintf("chain '%s': step '%s' (#%d) failed: %v", e.Chain, e.Step, e.Index, e.Err)
}

// Unwrap returns the error raised by the step.
func (e *StepError) Unwrap() error {
	return e.Err
}
