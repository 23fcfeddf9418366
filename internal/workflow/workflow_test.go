// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workflow

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWorkflowFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeWorkflowFile(t, "pipeline.yaml", `
name: Content Extraction Pipeline
description: browse two pages and integrate
variables:
  topic: widgets
steps:
  - type: browse
    url: https://example.com
    extract: metadata
  - type: kg_update
    source: extracted_data
  - type: inference
    model: kg_embeddings
`)

	wf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Content Extraction Pipeline", wf.Name)
	assert.Equal(t, "widgets", wf.Variables["topic"])
	require.Len(t, wf.Steps, 3)
	assert.Equal(t, StepBrowse, wf.Steps[0].Type)
	assert.Equal(t, "https://example.com", wf.Steps[0].URL)
	assert.Equal(t, StepKGUpdate, wf.Steps[1].Type)
	assert.Equal(t, StepInference, wf.Steps[2].Type)
}

func TestLoadJSON(t *testing.T) {
	path := writeWorkflowFile(t, "pipeline.json", `{
  "name": "Content Extraction Pipeline",
  "steps": [
    {"type": "browse", "url": "https://example.com", "extract": "metadata"},
    {"type": "browse", "url": "https://httpbin.org/html", "extract": "content"},
    {"type": "kg_update", "source": "extracted_data"},
    {"type": "inference", "model": "kg_embeddings"}
  ]
}`)

	wf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Content Extraction Pipeline", wf.Name)
	require.Len(t, wf.Steps, 4)
	assert.Equal(t, "metadata", wf.Steps[0].Extract)
	assert.Equal(t, "extracted_data", wf.Steps[2].Source)
	assert.Equal(t, "kg_embeddings", wf.Steps[3].Model)
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := writeWorkflowFile(t, "pipeline.toml", "name = 'x'")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported extension")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		wf      Workflow
		wantErr string
	}{
		{
			name:    "no name",
			wf:      Workflow{Steps: []Step{{Type: StepInference}}},
			wantErr: "no name",
		},
		{
			name:    "no steps",
			wf:      Workflow{Name: "x"},
			wantErr: "no steps",
		},
		{
			name:    "unknown step type",
			wf:      Workflow{Name: "x", Steps: []Step{{Type: "teleport"}}},
			wantErr: "unknown type",
		},
		{
			name:    "browse without url",
			wf:      Workflow{Name: "x", Steps: []Step{{Type: StepBrowse}}},
			wantErr: "missing url",
		},
		{
			name:    "set_variable without variable",
			wf:      Workflow{Name: "x", Steps: []Step{{Type: StepSetVariable, Value: "v"}}},
			wantErr: "missing variable",
		},
		{
			name: "loop without body",
			wf: Workflow{Name: "x", Steps: []Step{
				{Type: StepLoop, Variable: "item", Items: []string{"a"}},
			}},
			wantErr: "empty loop body",
		},
		{
			name: "branch without condition",
			wf: Workflow{Name: "x", Steps: []Step{
				{Type: StepBranch, Then: []Step{{Type: StepInference}}},
			}},
			wantErr: "missing condition",
		},
		{
			name: "branch with bad condition kind",
			wf: Workflow{Name: "x", Steps: []Step{
				{Type: StepBranch, Condition: &Condition{Kind: "near", Variable: "v"}, Then: []Step{{Type: StepInference}}},
			}},
			wantErr: "unknown condition kind",
		},
		{
			name:    "wait without duration",
			wf:      Workflow{Name: "x", Steps: []Step{{Type: StepWait}}},
			wantErr: "missing duration",
		},
		{
			name: "invalid nested step",
			wf: Workflow{Name: "x", Steps: []Step{
				{Type: StepLoop, Variable: "item", Items: []string{"a"}, Steps: []Step{{Type: StepBrowse}}},
			}},
			wantErr: "missing url",
		},
		{
			name: "retry with zero attempts",
			wf: Workflow{Name: "x", Steps: []Step{
				{Type: StepInference, Retry: &RetryConfig{MaxAttempts: 0}},
			}},
			wantErr: "max_attempts",
		},
		{
			name: "valid workflow",
			wf: Workflow{Name: "x", Steps: []Step{
				{Type: StepBrowse, URL: "https://example.com"},
				{Type: StepWait, Duration: time.Second},
				{Type: StepKGUpdate},
				{Type: StepInference},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.wf.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStepLabel(t *testing.T) {
	assert.Equal(t, "Fetch Home", Step{Name: "Fetch Home", Type: StepBrowse}.Label())
	assert.Equal(t, "browse", Step{Type: StepBrowse}.Label())
}

func TestDefaultRetryConfig(t *testing.T) {
	rc := DefaultRetryConfig()
	assert.Equal(t, 3, rc.MaxAttempts)
	assert.Equal(t, time.Second, rc.Backoff)
	assert.True(t, rc.Exponential)
}
