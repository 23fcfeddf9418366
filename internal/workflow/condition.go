// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workflow

import (
	"fmt"
	"strings"
)

// ConditionKind selects how a condition is evaluated.
type ConditionKind string

const (
	// CondEquals holds when the variable's value equals Value exactly.
	CondEquals ConditionKind = "equals"

	// CondContains holds when the variable's value contains Substring.
	CondContains ConditionKind = "contains"

	// CondExists holds when the variable is set, regardless of value.
	CondExists ConditionKind = "exists"
)

// Condition is a predicate over workflow variables.
type Condition struct {
	Kind     ConditionKind `json:"kind" yaml:"kind"`
	Variable string        `json:"variable" yaml:"variable"`

	// Value is the comparison value for equals.
	Value string `json:"value,omitempty" yaml:"value,omitempty"`

	// Substring is the needle for contains.
	Substring string `json:"substring,omitempty" yaml:"substring,omitempty"`
}

func (c *Condition) validate() error {
	switch c.Kind {
	case CondEquals, CondContains, CondExists:
	default:
		return fmt.Errorf("unknown condition kind %q", c.Kind)
	}
	if c.Variable == "" {
		return fmt.Errorf("condition has no variable")
	}
	return nil
}

// Eval reports whether the condition holds over the given variables.
func (c *Condition) Eval(vars map[string]string) (bool, error) {
	if err := c.validate(); err != nil {
		return false, err
	}

	val, ok := vars[c.Variable]
	switch c.Kind {
	case CondExists:
		return ok, nil
	case CondEquals:
		return ok && val == c.Value, nil
	case CondContains:
		return ok && strings.Contains(val, c.Substring), nil
	}
	return false, fmt.Errorf("unknown condition kind %q", c.Kind)
}

// String renders the condition for error messages and progress output.
func (c *Condition) String() string {
	switch c.Kind {
	case CondEquals:
		return fmt.Sprintf("%s == %q", c.Variable, c.Value)
	case CondContains:
		return fmt.Sprintf("%s contains %q", c.Variable, c.Substring)
	case CondExists:
		return fmt.Sprintf("%s exists", c.Variable)
	}
	return string(c.Kind)
}
