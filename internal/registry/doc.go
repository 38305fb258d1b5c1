// Package registry provides the central "glue" for the module system.
//
// The Registry maps the runner type names used in chain files (e.g.
// "min_total_gift") to the compiled Go code that implements them: a
// constructor for the runner's input struct and a builder that turns a
// decoded input into a chain step action.
//
// During application startup, every module registers its runners, and the
// loaded chains are then validated against the registry so that a chain
// referencing an unknown runner is rejected before anything runs.
package registry
