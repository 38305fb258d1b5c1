// Package config defines the format-agnostic model of chain definitions,
// along with the Loader interface implemented by the format-specific
// packages (hcl, yamlcfg).
//
// The `config.Model` is the single source of truth for the `builder`
// package. Step arguments stay as raw cty values until the builder binds
// them to a runner's input struct.
package config
