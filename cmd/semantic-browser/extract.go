package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/semantic-browser/internal/extract"
	"github.com/pdiddy/semantic-browser/internal/page"
	"github.com/pdiddy/semantic-browser/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract [url|file]",
	Short: "Extract named entities from a page",
	Long: `Extract pulls named entities (people, organizations, places, products)
out of page text. The argument is a URL to fetch or a local HTML file.

With an Anthropic API key (from .secrets/anthropic-api-key or the config
file) extraction uses the Claude API; without one, a heuristic scanner runs
offline. Results are written as YAML under the pages directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("model", "", "AI model identifier for extraction")
	extractCmd.Flags().Float64("min-confidence", 0.5, "drop entities below this confidence")
	extractCmd.Flags().String("pages-dir", "pages", "base directory for pages (contains extracted/)")
	extractCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	extractCmd.Flags().Bool("json", false, "print the result as JSON instead of writing YAML")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	target := args[0]
	cfg := extractionConfigFromFlags(cmd)

	pageID, sourceURL, html, err := loadTarget(cmd, target)
	if err != nil {
		return err
	}

	blocks, err := page.Text(html)
	if err != nil {
		return err
	}

	backend := selectBackend(cfg)
	result, err := extract.ExtractPage(context.Background(), backend, pageID, sourceURL, blocks, cfg)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	path, err := extract.WriteResult(cfg.PagesDir, result)
	if err != nil {
		return err
	}
	fmt.Printf("Extracted %d entities to %s\n", len(result.Entities), path)
	return nil
}

// loadTarget resolves the extract argument: URLs are fetched, anything else
// is read as a local HTML file.
func loadTarget(cmd *cobra.Command, target string) (pageID, sourceURL, html string, err error) {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		fetcher := page.NewFetcher(fetchConfigFromFlags(cmd))
		p, err := fetcher.Fetch(context.Background(), target)
		if err != nil {
			return "", "", "", err
		}
		return page.Slug(target), p.FinalURL, p.HTML, nil
	}

	data, err := os.ReadFile(target)
	if err != nil {
		return "", "", "", fmt.Errorf("reading %s: %w", target, err)
	}
	base := strings.TrimSuffix(target, ".html")
	base = strings.TrimSuffix(base, ".htm")
	return page.Slug(base), target, string(data), nil
}

// selectBackend picks the Claude backend when an API key is available and
// falls back to the offline heuristic scanner otherwise.
func selectBackend(cfg types.ExtractionConfig) extract.AIBackend {
	if cfg.APIKey == "" {
		fmt.Fprintln(os.Stderr, "No API key configured; using heuristic extraction")
		return extract.HeuristicBackend{}
	}
	return &extract.ClaudeBackend{
		APIKey: cfg.APIKey,
		Model:  cfg.Model,
		Client: http.DefaultClient,
	}
}
