// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package workflow defines declarative browse-and-integrate pipelines and
// executes them step by step against the page, graph, and extraction stages.
package workflow

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

// StepType identifies what a workflow step does.
type StepType string

const (
	// StepBrowse fetches a page, stores its semantic snapshot in the graph,
	// and queues its entities for the next kg_update.
	StepBrowse StepType = "browse"

	// StepExtract fetches a page and extracts entities without touching
	// the graph.
	StepExtract StepType = "extract"

	// StepKGUpdate flushes queued entities into the graph as triples.
	StepKGUpdate StepType = "kg_update"

	// StepInference runs rule-based inference over the graph.
	StepInference StepType = "inference"

	// StepSetVariable assigns a value to a workflow variable.
	StepSetVariable StepType = "set_variable"

	// StepWait sleeps for a duration, or polls a condition until it holds.
	StepWait StepType = "wait"

	// StepLoop runs its sub-steps once per item, binding a loop variable.
	StepLoop StepType = "loop"

	// StepBranch evaluates a condition and runs the then or else sub-steps.
	StepBranch StepType = "branch"
)

var validStepTypes = map[StepType]bool{
	StepBrowse:      true,
	StepExtract:     true,
	StepKGUpdate:    true,
	StepInference:   true,
	StepSetVariable: true,
	StepWait:        true,
	StepLoop:        true,
	StepBranch:      true,
}

// Step is one unit of work in a workflow. Which fields apply depends on
// Type; Validate enforces the per-type requirements.
type Step struct {
	// Name labels the step in progress output and results. Optional;
	// unnamed steps report under their type.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Type selects the step behavior.
	Type StepType `json:"type" yaml:"type"`

	// URL is the page address for browse and extract steps. Subject to
	// ${var} expansion.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Query scores text matches during browse extraction.
	Query string `json:"query,omitempty" yaml:"query,omitempty"`

	// Extract names what a browse step is after ("metadata" or "content").
	// Informational; both are always captured.
	Extract string `json:"extract,omitempty" yaml:"extract,omitempty"`

	// Source names the data a kg_update step flushes.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`

	// Model names the inference model for an inference step.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	// Variable is the target of set_variable and the binding of loop.
	Variable string `json:"variable,omitempty" yaml:"variable,omitempty"`

	// Value is the value assigned by set_variable. Subject to ${var} expansion.
	Value string `json:"value,omitempty" yaml:"value,omitempty"`

	// Items is the collection a loop iterates over.
	Items []string `json:"items,omitempty" yaml:"items,omitempty"`

	// MaxIterations caps loop iterations (default 100).
	MaxIterations int `json:"max_iterations,omitempty" yaml:"max_iterations,omitempty"`

	// Steps is the loop body.
	Steps []Step `json:"steps,omitempty" yaml:"steps,omitempty"`

	// Condition gates branch steps and condition-gated waits.
	Condition *Condition `json:"condition,omitempty" yaml:"condition,omitempty"`

	// Then runs when a branch condition holds.
	Then []Step `json:"then,omitempty" yaml:"then,omitempty"`

	// Else runs when a branch condition does not hold.
	Else []Step `json:"else,omitempty" yaml:"else,omitempty"`

	// Duration is the wait sleep time, or the poll timeout when a wait
	// has a condition.
	Duration time.Duration `json:"duration,omitempty" yaml:"duration,omitempty"`

	// Retry overrides the workflow-level retry policy for this step.
	Retry *RetryConfig `json:"retry,omitempty" yaml:"retry,omitempty"`
}

// Label returns the step's display name.
func (s Step) Label() string {
	if s.Name != "" {
		return s.Name
	}
	return string(s.Type)
}

// RetryConfig controls per-step retry behavior.
type RetryConfig struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// Backoff is the delay before the second attempt.
	Backoff time.Duration `json:"backoff" yaml:"backoff"`

	// Exponential doubles the backoff on each further attempt.
	Exponential bool `json:"exponential" yaml:"exponential"`
}

// DefaultRetryConfig matches the engine's built-in policy.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 3, Backoff: time.Second, Exponential: true}
}

// Workflow is a named sequence of steps with initial variables.
type Workflow struct {
	ID          string            `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Steps       []Step            `json:"steps" yaml:"steps"`
	Variables   map[string]string `json:"variables,omitempty" yaml:"variables,omitempty"`

	// MaxRetries is the default MaxAttempts-1 for steps without a Retry
	// override. Zero means use the engine default.
	MaxRetries int `json:"max_retries,omitempty" yaml:"max_retries,omitempty"`

	// Timeout bounds the whole run. Zero means no bound.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// Load reads a workflow definition from a YAML or JSON file, chosen by
// extension, and validates it.
func Load(path string) (*Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workflow %s: %w", path, err)
	}

	var wf Workflow
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &wf); err != nil {
			return nil, fmt.Errorf("parsing workflow %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &wf); err != nil {
			return nil, fmt.Errorf("parsing workflow %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("workflow %s: unsupported extension (want .yaml, .yml, or .json)", path)
	}

	if err := wf.Validate(); err != nil {
		return nil, fmt.Errorf("workflow %s: %w", path, err)
	}
	return &wf, nil
}

// Validate checks that the workflow is runnable: it has a name and steps,
// and every step carries the fields its type requires.
func (w *Workflow) Validate() error {
	if w.Name == "" {
		return fmt.Errorf("workflow has no name")
	}
	if len(w.Steps) == 0 {
		return fmt.Errorf("workflow has no steps")
	}
	return validateSteps(w.Steps, "")
}

func validateSteps(steps []Step, prefix string) error {
	for i, s := range steps {
		at := fmt.Sprintf("%sstep %d (%s)", prefix, i+1, s.Label())

		if !validStepTypes[s.Type] {
			return fmt.Errorf("%s: unknown type %q", at, s.Type)
		}

		switch s.Type {
		case StepBrowse, StepExtract:
			if s.URL == "" {
				return fmt.Errorf("%s: missing url", at)
			}
		case StepSetVariable:
			if s.Variable == "" {
				return fmt.Errorf("%s: missing variable", at)
			}
		case StepLoop:
			if s.Variable == "" {
				return fmt.Errorf("%s: missing loop variable", at)
			}
			if len(s.Steps) == 0 {
				return fmt.Errorf("%s: empty loop body", at)
			}
			if err := validateSteps(s.Steps, at+": "); err != nil {
				return err
			}
		case StepBranch:
			if s.Condition == nil {
				return fmt.Errorf("%s: missing condition", at)
			}
			if err := s.Condition.validate(); err != nil {
				return fmt.Errorf("%s: %w", at, err)
			}
			if len(s.Then) == 0 && len(s.Else) == 0 {
				return fmt.Errorf("%s: branch with no then or else steps", at)
			}
			if err := validateSteps(s.Then, at+" then: "); err != nil {
				return err
			}
			if err := validateSteps(s.Else, at+" else: "); err != nil {
				return err
			}
		case StepWait:
			if s.Duration <= 0 {
				return fmt.Errorf("%s: missing duration", at)
			}
			if s.Condition != nil {
				if err := s.Condition.validate(); err != nil {
					return fmt.Errorf("%s: %w", at, err)
				}
			}
		}

		if s.Retry != nil && s.Retry.MaxAttempts < 1 {
			return fmt.Errorf("%s: retry max_attempts must be at least 1", at)
		}
	}
	return nil
}
