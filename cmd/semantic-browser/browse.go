package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/semantic-browser/internal/graph"
	"github.com/pdiddy/semantic-browser/internal/page"
	"github.com/pdiddy/semantic-browser/pkg/types"
)

var browseCmd = &cobra.Command{
	Use:   "browse [url]",
	Short: "Fetch a page and extract its semantic structure",
	Long: `Browse downloads a page and builds a semantic snapshot: title, meta
description, language, canonical URL, keywords, Open Graph and Twitter Card
properties, JSON-LD payload count, microdata items, and a text preview.

With --query, matching text excerpts are scored and included. With --kg,
the snapshot is also stored as triples in the knowledge graph.`,
	Args: cobra.ExactArgs(1),
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().String("query", "", "score text excerpts against this query")
	browseCmd.Flags().Bool("kg", false, "store the snapshot in the knowledge graph")
	browseCmd.Flags().Bool("json", false, "output the snapshot as JSON")
	browseCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	browseCmd.Flags().String("renderer", "", "fetch backend: http or chromium (default http)")
	browseCmd.Flags().String("pages-dir", "pages", "base directory for fetched pages")
	browseCmd.Flags().String("graph-dir", "graph", "base directory for the knowledge graph (contains index/)")

	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	query, _ := cmd.Flags().GetString("query")

	browser, err := page.NewBrowser(fetchConfigFromFlags(cmd))
	if err != nil {
		return err
	}

	outcome, err := browser.Browse(context.Background(), args[0], query)
	if err != nil {
		return err
	}

	if useKG, _ := cmd.Flags().GetBool("kg"); useKG {
		store, err := graph.NewStore(graphConfigFromFlags(cmd))
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.InsertSnapshot(context.Background(), &outcome.Snapshot, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Stored %d triples\n", n)
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(outcome.Snapshot)
	}

	printSnapshot(&outcome.Page, &outcome.Snapshot)
	return nil
}

func printSnapshot(p *types.Page, snap *types.SemanticSnapshot) {
	fmt.Printf("URL:         %s\n", p.URL)
	if p.FinalURL != "" && p.FinalURL != p.URL {
		fmt.Printf("Final URL:   %s\n", p.FinalURL)
	}
	fmt.Printf("Status:      %d (%d chars in %s)\n", p.StatusCode, p.ContentLength, p.FetchTime)
	if snap.Title != "" {
		fmt.Printf("Title:       %s\n", snap.Title)
	}
	if snap.Description != "" {
		fmt.Printf("Description: %s\n", snap.Description)
	}
	if snap.Language != "" {
		fmt.Printf("Language:    %s\n", snap.Language)
	}
	if snap.CanonicalURL != "" {
		fmt.Printf("Canonical:   %s\n", snap.CanonicalURL)
	}
	if len(snap.Keywords) > 0 {
		fmt.Printf("Keywords:    %v\n", snap.Keywords)
	}
	fmt.Printf("Structured:  %d Open Graph, %d Twitter Card, %d JSON-LD, %d microdata\n",
		len(snap.OpenGraph), len(snap.TwitterCard), snap.JSONLDCount, len(snap.Microdata))
	fmt.Printf("Text:        %d chars\n", snap.TextLength)
	if snap.TextPreview != "" {
		fmt.Printf("Preview:     %s\n", snap.TextPreview)
	}

	for _, m := range snap.QueryMatches {
		fmt.Printf("Match (%.2f, %s): %s\n", m.Score, m.Element, m.Excerpt)
	}
}
