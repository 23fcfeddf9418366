// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the semantic-browser CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/semantic-browser/internal/secrets"
	"github.com/pdiddy/semantic-browser/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the semantic-browser CLI.
var rootCmd = &cobra.Command{
	Use:   "semantic-browser",
	Short: "Semantic web browsing with knowledge-graph integration",
	Long: `semantic-browser fetches web pages, extracts their semantic structure
(metadata, Open Graph, Twitter Card, JSON-LD, microdata), stores what it
finds as triples in a local knowledge graph, and pulls named entities out
of page text.

Each stage is a subcommand: browse, extract, graph, and workflow. Workflows
compose the stages into declarative browse-and-integrate pipelines.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./semantic-browser.yaml or ~/.config/semantic-browser/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("semantic-browser")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "semantic-browser"))
		}
	}

	viper.SetEnvPrefix("SEMANTIC_BROWSER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// fetchConfigFromFlags builds the fetch configuration shared by browse,
// extract, and workflow commands. Flags win over the config file.
func fetchConfigFromFlags(cmd *cobra.Command) types.FetchConfig {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = viper.GetDuration("fetch.timeout")
	}
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	userAgent := viper.GetString("fetch.user_agent")
	if userAgent == "" {
		if email := secretDefault(secrets.KeyContactEmail, ""); email != "" {
			userAgent = fmt.Sprintf("semantic-browser/0.1 (mailto:%s)", email)
		}
	}
	renderer, _ := cmd.Flags().GetString("renderer")
	if renderer == "" {
		renderer = viper.GetString("fetch.renderer")
	}
	pagesDir, _ := cmd.Flags().GetString("pages-dir")

	return types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: userAgent,
		},
		MaxBodyBytes: viper.GetInt64("fetch.max_body_bytes"),
		Renderer:     renderer,
		PagesDir:     pagesDir,
	}
}

// graphConfigFromFlags builds the graph configuration for commands that
// touch the triple store.
func graphConfigFromFlags(cmd *cobra.Command) types.GraphConfig {
	graphDir, _ := cmd.Flags().GetString("graph-dir")
	if graphDir == "" {
		graphDir = viper.GetString("graph.graph_dir")
	}
	if graphDir == "" {
		graphDir = "graph"
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")

	return types.GraphConfig{
		GraphDir:           graphDir,
		MaxResults:         maxResults,
		MaxInferencePasses: viper.GetInt("graph.max_inference_passes"),
	}
}

// extractionConfigFromFlags builds the entity-extraction configuration.
// The API key comes from the flag, then the config file, then .secrets/.
func extractionConfigFromFlags(cmd *cobra.Command) types.ExtractionConfig {
	model, _ := cmd.Flags().GetString("model")
	if model == "" {
		model = viper.GetString("extraction.model")
	}
	apiKey := secretDefault(secrets.KeyAnthropicAPIKey, viper.GetString("extraction.api_key"))
	minConfidence, _ := cmd.Flags().GetFloat64("min-confidence")
	pagesDir, _ := cmd.Flags().GetString("pages-dir")

	return types.ExtractionConfig{
		AIConfig: types.AIConfig{
			Model:  model,
			APIKey: apiKey,
		},
		PagesDir:      pagesDir,
		MinConfidence: minConfidence,
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
