// Package chain implements a sequential step executor that threads a state
// value through an ordered list of steps.
//
// Each step receives the state produced by the previous one and answers with
// either Continue(next) or Stop(). The executor commits the final state only
// when every step continued. A stopped or failed run leaves the committed
// result exactly as it was, even though the side effects of the steps that
// already ran (remote writes and the like) are not undone.
//
// The executor deliberately has no retries, timeouts, parallelism, rollback or
// persistence of intermediate state. Cancellation is the business of the
// individual steps, which receive the caller's context.
package chain
