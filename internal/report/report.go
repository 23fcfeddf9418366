// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders workflow run reports as Markdown.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/semantic-browser/internal/graph"
	"github.com/pdiddy/semantic-browser/internal/workflow"
)

// Render produces a Markdown report for one workflow run. stats may be nil
// when no graph was involved.
func Render(state *workflow.RunState, stats *graph.Stats) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Workflow Run: %s\n\n", state.WorkflowName)
	fmt.Fprintf(&b, "- Run ID: %s\n", state.RunID)
	fmt.Fprintf(&b, "- Status: %s\n", state.Status)
	fmt.Fprintf(&b, "- Started: %s\n", state.StartTime.Format(time.RFC3339))
	fmt.Fprintf(&b, "- Duration: %s\n", state.LastUpdate.Sub(state.StartTime).Round(time.Millisecond))

	fmt.Fprintf(&b, "\n## Steps\n\n")
	fmt.Fprintf(&b, "| Step | Result | Elapsed | Detail |\n")
	fmt.Fprintf(&b, "|------|--------|---------|--------|\n")
	for _, r := range state.StepResults {
		result := "ok"
		detail := r.Output
		if !r.Success {
			result = "failed"
			detail = r.Err
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			r.StepName, result, r.Elapsed.Round(time.Millisecond), escapeCell(detail))
	}

	fmt.Fprintf(&b, "\n## Totals\n\n")
	fmt.Fprintf(&b, "- URLs processed: %d\n", state.URLsProcessed)
	fmt.Fprintf(&b, "- Entities extracted: %d\n", state.EntitiesExtracted)
	fmt.Fprintf(&b, "- KG triples added: %d\n", state.TriplesAdded)

	if stats != nil {
		fmt.Fprintf(&b, "\n## Graph\n\n")
		fmt.Fprintf(&b, "- Triples: %d\n", stats.Triples)
		fmt.Fprintf(&b, "- Inferred: %d\n", stats.Inferred)
		fmt.Fprintf(&b, "- Subjects: %d\n", stats.Subjects)
		fmt.Fprintf(&b, "- Literals: %d\n", stats.Literals)
	}

	return b.String()
}

// Write renders the report and saves it as report-<run-id>.md under dir.
func Write(dir string, state *workflow.RunState, stats *graph.Stats) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}

	path := filepath.Join(dir, "report-"+state.RunID+".md")
	if err := os.WriteFile(path, []byte(Render(state, stats)), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

// escapeCell keeps step detail from breaking the Markdown table.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", "\\|")
}
