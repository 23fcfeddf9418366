// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workflow

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/semantic-browser/internal/page"
	"github.com/pdiddy/semantic-browser/pkg/types"
)

// defaultLoopCap bounds loop steps that set no MaxIterations.
const defaultLoopCap = 100

// waitPollInterval is how often a condition-gated wait re-checks its condition.
const waitPollInterval = 100 * time.Millisecond

// Status is the lifecycle state of a workflow run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// StepResult records the outcome of one executed step.
type StepResult struct {
	StepName  string        `json:"step_name" yaml:"step_name"`
	Success   bool          `json:"success" yaml:"success"`
	Output    string        `json:"output,omitempty" yaml:"output,omitempty"`
	Err       string        `json:"error,omitempty" yaml:"error,omitempty"`
	Elapsed   time.Duration `json:"elapsed" yaml:"elapsed"`
	Timestamp time.Time     `json:"timestamp" yaml:"timestamp"`
}

// RunState is the accumulated state of one workflow run.
type RunState struct {
	RunID        string            `json:"run_id" yaml:"run_id"`
	WorkflowName string            `json:"workflow_name" yaml:"workflow_name"`
	Status       Status            `json:"status" yaml:"status"`
	CurrentStep  int               `json:"current_step" yaml:"current_step"`
	Variables    map[string]string `json:"variables,omitempty" yaml:"variables,omitempty"`
	StepResults  []StepResult      `json:"step_results" yaml:"step_results"`
	StartTime    time.Time         `json:"start_time" yaml:"start_time"`
	LastUpdate   time.Time         `json:"last_update" yaml:"last_update"`

	// URLsProcessed counts pages fetched by browse and extract steps.
	URLsProcessed int `json:"urls_processed" yaml:"urls_processed"`

	// EntitiesExtracted counts entities found across all steps.
	EntitiesExtracted int `json:"entities_extracted" yaml:"entities_extracted"`

	// TriplesAdded counts graph triples inserted or inferred across all steps.
	TriplesAdded int `json:"triples_added" yaml:"triples_added"`
}

// Browser fetches pages and builds semantic snapshots.
type Browser interface {
	Browse(ctx context.Context, url, query string) (*types.BrowseOutcome, error)
}

// Graph stores triples and runs inference.
type Graph interface {
	InsertSnapshot(ctx context.Context, snap *types.SemanticSnapshot, baseURL string) (int, error)
	InsertEntities(ctx context.Context, entities []types.Entity) (int, error)
	Infer(ctx context.Context) (int, error)
}

// Extractor pulls entities out of fetched page HTML.
type Extractor interface {
	Extract(ctx context.Context, pageID, sourceURL, html string) (*types.ExtractionResult, error)
}

// Executor runs workflows against the page, graph, and extraction stages.
// Any stage may be nil; steps needing a missing stage fail.
type Executor struct {
	browser   Browser
	graph     Graph
	extractor Extractor
	cfg       types.WorkflowConfig
	out       io.Writer

	// sleep is replaced in tests to avoid real backoff and wait delays.
	sleep func(time.Duration)

	// pending accumulates entities from browse steps until a kg_update
	// flushes them into the graph.
	pending []types.Entity
}

// NewExecutor wires an executor. Progress goes to out; pass io.Discard to
// silence it.
func NewExecutor(browser Browser, graph Graph, extractor Extractor, cfg types.WorkflowConfig, out io.Writer) *Executor {
	if out == nil {
		out = os.Stdout
	}
	return &Executor{
		browser:   browser,
		graph:     graph,
		extractor: extractor,
		cfg:       cfg,
		out:       out,
		sleep:     time.Sleep,
	}
}

// Run executes the workflow's steps in order. A step that still fails after
// its retries marks the run failed and stops execution; the returned error
// describes the failing step. The RunState is returned in all cases.
func (e *Executor) Run(ctx context.Context, wf *Workflow) (*RunState, error) {
	if err := wf.Validate(); err != nil {
		return nil, err
	}

	if wf.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, wf.Timeout)
		defer cancel()
	}

	state := &RunState{
		RunID:        uuid.NewString(),
		WorkflowName: wf.Name,
		Status:       StatusRunning,
		Variables:    make(map[string]string, len(wf.Variables)),
		StartTime:    time.Now(),
	}
	for k, v := range wf.Variables {
		state.Variables[k] = v
	}
	state.LastUpdate = state.StartTime

	e.pending = nil

	fmt.Fprintf(e.out, "workflow %s (run %s)\n", wf.Name, state.RunID)

	err := e.runSteps(ctx, wf, wf.Steps, state)
	state.LastUpdate = time.Now()

	switch {
	case err == nil:
		state.Status = StatusCompleted
		e.printSummary(wf, state)
		return state, nil
	case ctx.Err() != nil:
		state.Status = StatusCancelled
		return state, fmt.Errorf("workflow %s cancelled: %w", wf.Name, ctx.Err())
	default:
		state.Status = StatusFailed
		return state, err
	}
}

func (e *Executor) runSteps(ctx context.Context, wf *Workflow, steps []Step, state *RunState) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}

		state.CurrentStep = i
		state.LastUpdate = time.Now()
		fmt.Fprintf(e.out, "step: %s\n", step.Label())

		start := time.Now()
		output, err := e.runStepWithRetry(ctx, wf, step, state)
		result := StepResult{
			StepName:  step.Label(),
			Success:   err == nil,
			Output:    output,
			Elapsed:   time.Since(start),
			Timestamp: start,
		}
		if err != nil {
			result.Err = err.Error()
		}
		state.StepResults = append(state.StepResults, result)

		if err != nil {
			return fmt.Errorf("step %s: %w", step.Label(), err)
		}
		fmt.Fprintf(e.out, "  %s\n", output)
	}
	return nil
}

// retryPolicy resolves the retry configuration for one step.
func (e *Executor) retryPolicy(wf *Workflow, step Step) RetryConfig {
	if step.Retry != nil {
		return *step.Retry
	}
	rc := DefaultRetryConfig()
	if wf.MaxRetries > 0 {
		rc.MaxAttempts = wf.MaxRetries + 1
	} else if e.cfg.MaxRetries > 0 {
		rc.MaxAttempts = e.cfg.MaxRetries + 1
	}
	if e.cfg.RetryBackoff > 0 {
		rc.Backoff = e.cfg.RetryBackoff
	}
	return rc
}

func (e *Executor) runStepWithRetry(ctx context.Context, wf *Workflow, step Step, state *RunState) (string, error) {
	rc := e.retryPolicy(wf, step)

	var lastErr error
	backoff := rc.Backoff
	for attempt := 1; attempt <= rc.MaxAttempts; attempt++ {
		if attempt > 1 {
			fmt.Fprintf(e.out, "  retrying (%d/%d) after %v: %v\n", attempt, rc.MaxAttempts, backoff, lastErr)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			default:
			}
			e.sleep(backoff)
			if rc.Exponential {
				backoff *= 2
			}
		}

		output, err := e.runStep(ctx, wf, step, state)
		if err == nil {
			return output, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d attempts: %w", rc.MaxAttempts, lastErr)
}

func (e *Executor) runStep(ctx context.Context, wf *Workflow, step Step, state *RunState) (string, error) {
	if e.cfg.StepTimeout > 0 && stepIsBounded(step.Type) {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.StepTimeout)
		defer cancel()
	}

	switch step.Type {
	case StepBrowse:
		return e.runBrowse(ctx, step, state, true)
	case StepExtract:
		return e.runBrowse(ctx, step, state, false)
	case StepKGUpdate:
		return e.runKGUpdate(ctx, state)
	case StepInference:
		return e.runInference(ctx, state)
	case StepSetVariable:
		state.Variables[step.Variable] = expandVars(step.Value, state.Variables)
		return fmt.Sprintf("%s = %q", step.Variable, state.Variables[step.Variable]), nil
	case StepWait:
		return e.runWait(ctx, step, state)
	case StepLoop:
		return e.runLoop(ctx, wf, step, state)
	case StepBranch:
		return e.runBranch(ctx, wf, step, state)
	}
	return "", fmt.Errorf("unknown step type %q", step.Type)
}

// stepIsBounded reports whether the per-step timeout applies. Composite and
// waiting steps manage their own time.
func stepIsBounded(t StepType) bool {
	switch t {
	case StepLoop, StepBranch, StepWait:
		return false
	}
	return true
}

// runBrowse fetches the step's URL and extracts entities. When updateGraph
// is set the page snapshot is also stored as triples and the entities are
// queued for the next kg_update.
func (e *Executor) runBrowse(ctx context.Context, step Step, state *RunState, updateGraph bool) (string, error) {
	if e.browser == nil {
		return "", fmt.Errorf("no browser configured")
	}

	url := expandVars(step.URL, state.Variables)
	outcome, err := e.browser.Browse(ctx, url, step.Query)
	if err != nil {
		return "", err
	}
	state.URLsProcessed++

	triples := 0
	if updateGraph && e.graph != nil {
		n, err := e.graph.InsertSnapshot(ctx, &outcome.Snapshot, url)
		if err != nil {
			return "", fmt.Errorf("storing snapshot: %w", err)
		}
		triples = n
		state.TriplesAdded += n
	}

	entities := 0
	if e.extractor != nil {
		result, err := e.extractor.Extract(ctx, page.Slug(url), outcome.Page.FinalURL, outcome.Page.HTML)
		if err != nil {
			return "", fmt.Errorf("extracting entities: %w", err)
		}
		entities = len(result.Entities)
		state.EntitiesExtracted += entities
		if updateGraph {
			e.pending = append(e.pending, result.Entities...)
		}
	}

	return fmt.Sprintf("fetched %s (%d chars, %d entities, %d triples)",
		url, outcome.Page.ContentLength, entities, triples), nil
}

func (e *Executor) runKGUpdate(ctx context.Context, state *RunState) (string, error) {
	if e.graph == nil {
		return "", fmt.Errorf("no graph configured")
	}

	n, err := e.graph.InsertEntities(ctx, e.pending)
	if err != nil {
		return "", err
	}
	flushed := len(e.pending)
	e.pending = nil
	state.TriplesAdded += n

	return fmt.Sprintf("stored %d entities as %d triples", flushed, n), nil
}

func (e *Executor) runInference(ctx context.Context, state *RunState) (string, error) {
	if e.graph == nil {
		return "", fmt.Errorf("no graph configured")
	}

	n, err := e.graph.Infer(ctx)
	if err != nil {
		return "", err
	}
	state.TriplesAdded += n

	return fmt.Sprintf("inferred %d triples", n), nil
}

// runWait sleeps for the step duration. With a condition, it polls the
// condition instead and the duration becomes a timeout.
func (e *Executor) runWait(ctx context.Context, step Step, state *RunState) (string, error) {
	if step.Condition == nil {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}
		e.sleep(step.Duration)
		return fmt.Sprintf("waited %v", step.Duration), nil
	}

	deadline := time.Now().Add(step.Duration)
	for {
		ok, err := step.Condition.Eval(state.Variables)
		if err != nil {
			return "", err
		}
		if ok {
			return fmt.Sprintf("condition %s held", step.Condition), nil
		}
		if time.Now().After(deadline) {
			return "", fmt.Errorf("timed out after %v waiting for %s", step.Duration, step.Condition)
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}
		e.sleep(waitPollInterval)
	}
}

func (e *Executor) runLoop(ctx context.Context, wf *Workflow, step Step, state *RunState) (string, error) {
	limit := step.MaxIterations
	if limit <= 0 {
		limit = defaultLoopCap
	}

	iterations := 0
	for _, item := range step.Items {
		if iterations >= limit {
			break
		}
		iterations++
		state.Variables[step.Variable] = item
		if err := e.runSteps(ctx, wf, step.Steps, state); err != nil {
			return "", fmt.Errorf("iteration %d: %w", iterations, err)
		}
	}
	return fmt.Sprintf("looped %d times", iterations), nil
}

func (e *Executor) runBranch(ctx context.Context, wf *Workflow, step Step, state *RunState) (string, error) {
	ok, err := step.Condition.Eval(state.Variables)
	if err != nil {
		return "", err
	}

	branch := step.Else
	taken := "else"
	if ok {
		branch = step.Then
		taken = "then"
	}
	if err := e.runSteps(ctx, wf, branch, state); err != nil {
		return "", fmt.Errorf("%s branch: %w", taken, err)
	}
	return fmt.Sprintf("condition %s: took %s branch", step.Condition, taken), nil
}

func (e *Executor) printSummary(wf *Workflow, state *RunState) {
	fmt.Fprintf(e.out, "\nWorkflow Summary:\n")
	fmt.Fprintf(e.out, "   Total steps: %d\n", len(wf.Steps))
	fmt.Fprintf(e.out, "   URLs processed: %d\n", state.URLsProcessed)
	fmt.Fprintf(e.out, "   Total entities extracted: %d\n", state.EntitiesExtracted)
	fmt.Fprintf(e.out, "   Total KG triples added: %d\n", state.TriplesAdded)
}

// expandVars substitutes ${name} references with workflow variable values.
// Unknown variables expand to the empty string.
func expandVars(s string, vars map[string]string) string {
	return os.Expand(s, func(name string) string {
		return vars[name]
	})
}
