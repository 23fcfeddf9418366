package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/semantic-browser/internal/extract"
	"github.com/pdiddy/semantic-browser/internal/graph"
	"github.com/pdiddy/semantic-browser/internal/page"
	"github.com/pdiddy/semantic-browser/internal/report"
	"github.com/pdiddy/semantic-browser/internal/workflow"
	"github.com/pdiddy/semantic-browser/pkg/types"
)

var workflowCmd = &cobra.Command{
	Use:   "workflow",
	Short: "Run declarative browse-and-integrate pipelines",
	Long: `Workflow executes pipelines defined in YAML or JSON files. Steps browse
pages, push snapshots and entities into the knowledge graph, run inference,
set variables, branch, loop, and wait. Failed steps retry with exponential
backoff before the run is marked failed.`,
}

// --- run subcommand ---

var workflowRunCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Execute a workflow definition file",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkflowRun,
}

func runWorkflowRun(cmd *cobra.Command, args []string) error {
	wf, err := workflow.Load(args[0])
	if err != nil {
		return err
	}

	browser, err := page.NewBrowser(fetchConfigFromFlags(cmd))
	if err != nil {
		return err
	}

	store, err := graph.NewStore(graphConfigFromFlags(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	extractionCfg := extractionConfigFromFlags(cmd)
	extractor := &entityExtractor{
		backend: selectBackend(extractionCfg),
		cfg:     extractionCfg,
	}

	maxRetries, _ := cmd.Flags().GetInt("max-retries")
	retryBackoff, _ := cmd.Flags().GetDuration("retry-backoff")
	stepTimeout, _ := cmd.Flags().GetDuration("step-timeout")
	wfCfg := types.WorkflowConfig{
		MaxRetries:   maxRetries,
		RetryBackoff: retryBackoff,
		StepTimeout:  stepTimeout,
	}

	executor := workflow.NewExecutor(browser, store, extractor, wfCfg, os.Stdout)

	state, runErr := executor.Run(context.Background(), wf)

	if reportDir, _ := cmd.Flags().GetString("report-dir"); reportDir != "" && state != nil {
		stats, statsErr := store.CollectStats(context.Background())
		var statsPtr *graph.Stats
		if statsErr == nil {
			statsPtr = &stats
		}
		path, err := report.Write(reportDir, state, statsPtr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Report written to %s\n", path)
		}
	}

	return runErr
}

// entityExtractor adapts the extraction stage to the workflow executor.
type entityExtractor struct {
	backend extract.AIBackend
	cfg     types.ExtractionConfig
}

func (x *entityExtractor) Extract(ctx context.Context, pageID, sourceURL, html string) (*types.ExtractionResult, error) {
	blocks, err := page.Text(html)
	if err != nil {
		return nil, err
	}
	return extract.ExtractPage(ctx, x.backend, pageID, sourceURL, blocks, x.cfg)
}

// --- demo subcommand ---

var workflowDemoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Print the scripted browse-and-integrate demonstration",
	Long: `Demo prints a fixed three-step demonstration of the browse and
knowledge-graph integration pipeline, followed by a summary, the benefits
of workflow orchestration, and a loadable workflow definition in JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		delay, _ := cmd.Flags().GetDuration("delay")
		return workflow.Demo(os.Stdout, delay)
	},
}

func init() {
	workflowRunCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	workflowRunCmd.Flags().String("renderer", "", "fetch backend: http or chromium (default http)")
	workflowRunCmd.Flags().String("pages-dir", "pages", "base directory for fetched pages")
	workflowRunCmd.Flags().String("graph-dir", "graph", "base directory for the knowledge graph (contains index/)")
	workflowRunCmd.Flags().Int("max-results", 20, "maximum number of query results")
	workflowRunCmd.Flags().String("model", "", "AI model identifier for extraction")
	workflowRunCmd.Flags().Float64("min-confidence", 0.5, "drop entities below this confidence")
	workflowRunCmd.Flags().Int("max-retries", 0, "per-step retry count (default 2)")
	workflowRunCmd.Flags().Duration("retry-backoff", 0, "base delay between step retries (default 1s)")
	workflowRunCmd.Flags().Duration("step-timeout", 0, "bound on a single step's execution")
	workflowRunCmd.Flags().String("report-dir", "", "write a Markdown run report to this directory")

	workflowDemoCmd.Flags().Duration("delay", 500*time.Millisecond, "pacing delay between integration lines")

	workflowCmd.AddCommand(workflowRunCmd)
	workflowCmd.AddCommand(workflowDemoCmd)

	rootCmd.AddCommand(workflowCmd)
}
