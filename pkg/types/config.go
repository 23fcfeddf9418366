package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "semantic-browser/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig holds settings for the page fetching stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxBodyBytes caps the downloaded HTML size (default 10 MiB).
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes"`

	// FetchDelay is the delay between consecutive page fetches (default 1s).
	FetchDelay time.Duration `json:"fetch_delay" yaml:"fetch_delay"`

	// MaxRedirects limits redirect chains (default 10).
	MaxRedirects int `json:"max_redirects" yaml:"max_redirects"`

	// Renderer selects the fetch backend: "http" for plain requests or
	// "chromium" to render pages through a headless-browser container.
	Renderer string `json:"renderer" yaml:"renderer"`

	// PagesDir is the base directory for fetched pages (contains raw/, extracted/).
	PagesDir string `json:"pages_dir" yaml:"pages_dir"`
}

// GraphConfig holds settings for the knowledge graph stage.
type GraphConfig struct {
	// GraphDir is the base directory for the graph (contains index/).
	GraphDir string `json:"graph_dir" yaml:"graph_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// MaxInferencePasses bounds the fixpoint iteration during rule-based
	// inference (default 10).
	MaxInferencePasses int `json:"max_inference_passes" yaml:"max_inference_passes"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// ExtractionConfig holds settings for the entity extraction stage.
type ExtractionConfig struct {
	AIConfig `yaml:",inline"`

	// PagesDir is the base directory for pages (contains raw/, extracted/).
	PagesDir string `json:"pages_dir" yaml:"pages_dir"`

	// MinConfidence drops extracted entities below this threshold (default 0.5).
	MinConfidence float64 `json:"min_confidence" yaml:"min_confidence"`
}

// WorkflowConfig holds settings for the workflow engine.
type WorkflowConfig struct {
	// MaxRetries is the default per-step retry count (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// RetryBackoff is the base delay between step retries (default 1s).
	RetryBackoff time.Duration `json:"retry_backoff" yaml:"retry_backoff"`

	// StepTimeout bounds a single step's execution (default 60s).
	StepTimeout time.Duration `json:"step_timeout" yaml:"step_timeout"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Fetch      FetchConfig      `json:"fetch" yaml:"fetch"`
	Graph      GraphConfig      `json:"graph" yaml:"graph"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Workflow   WorkflowConfig   `json:"workflow" yaml:"workflow"`
}
