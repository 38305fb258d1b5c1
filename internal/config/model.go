package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// ErrChainNotFound is returned by Model.Chain for an unknown chain name.
var ErrChainNotFound = errors.New("chain not found")

// Model is the unified, format-agnostic representation of every chain
// definition loaded from disk.
type Model struct {
	Chains []*Chain
}

// Chain is the format-agnostic representation of a `chain` block.
type Chain struct {
	Name        string
	Description string
	Steps       []*Step
	// Source is the file the chain was loaded from, used in error messages.
	Source string
}

// Step is the format-agnostic representation of a `step` block. Arguments
// is an object value, or cty.NilVal when the step has no arguments.
type Step struct {
	Name      string
	Runner    string
	Arguments cty.Value
}

// Merge appends the chains of other to m.
func (m *Model) Merge(other *Model) {
	if other == nil {
		return
	}
	m.Chains = append(m.Chains, other.Chains...)
}

// Chain looks a chain up by name. With an empty name and exactly one chain
// loaded, that chain is returned.
func (m *Model) Chain(name string) (*Chain, error) {
	if name == "" {
		if len(m.Chains) == 1 {
			return m.Chains[0], nil
		}
		return nil, fmt.Errorf("%w: a chain name is required when %d chains are loaded (%s)",
			ErrChainNotFound, len(m.Chains), strings.Join(m.Names(), ", "))
	}
	for _, c := range m.Chains {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: '%s'", ErrChainNotFound, name)
}

// Names returns the chain names in load order.
func (m *Model) Names() []string {
	names := make([]string, 0, len(m.Chains))
	for _, c := range m.Chains {
		names = append(names, c.Name)
	}
	return names
}

// Validate checks the model for structural problems that do not depend on
// which runners are registered.
func (m *Model) Validate() error {
	var errs []string
	seen := make(map[string]string)

	for _, c := range m.Chains {
		if c.Name == "" {
			errs = append(errs, fmt.Sprintf("chain in %s has no name", c.Source))
			continue
		}
		if prev, ok := seen[c.Name]; ok {
			errs = append(errs, fmt.Sprintf("chain '%s' is defined twice (%s and %s)", c.Name, prev, c.Source))
		}
		seen[c.Name] = c.Source

		if len(c.Steps) == 0 {
			errs = append(errs, fmt.Sprintf("chain '%s' has no steps", c.Name))
		}
		for i, s := range c.Steps {
			if s.Runner == "" {
				errs = append(errs, fmt.Sprintf("chain '%s': step '%s' (#%d) has no runner", c.Name, s.Name, i))
			}
			if !s.Arguments.IsNull() && !s.Arguments.Type().IsObjectType() && !s.Arguments.Type().IsMapType() {
				errs = append(errs, fmt.Sprintf("chain '%s': step '%s' (#%d) arguments must be an object, got %s",
					c.Name, s.Name, i, s.Arguments.Type().FriendlyName()))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
