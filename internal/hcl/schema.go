package hcl

import (
	"github.com/hashicorp/hcl/v2"
)

// fileRoot is used to decode the top-level blocks of a chain file.
type fileRoot struct {
	Locals []*localsBlock `hcl:"locals,block"`
	Chains []*chainBlock  `hcl:"chain,block"`
}

// localsBlock holds named values shared by every chain that is loaded.
type localsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// chainBlock represents a `chain` block.
type chainBlock struct {
	Name        string       `hcl:"name,label"`
	Description string       `hcl:"description,optional"`
	Steps       []*stepBlock `hcl:"step,block"`
}

// stepBlock represents a `step` block inside a chain.
type stepBlock struct {
	Name      string     `hcl:"name,label"`
	Runner    string     `hcl:"runner"`
	Arguments *argsBlock `hcl:"arguments,block"`
}

// argsBlock represents the content of the 'arguments' block within a step.
type argsBlock struct {
	Body hcl.Body `hcl:",remain"`
}
