// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/semantic-browser/internal/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Manage the knowledge graph (insert, query, infer, export, stats)",
	Long: `Graph manages a local SQLite triple store. Subjects and predicates may
use namespace prefixes (og:, twitter:, schema:, dcterms:, rdf:, rdfs:,
xsd:, foaf:, ex:), which are expanded to full IRIs on insert.`,
}

// --- insert subcommand ---

var graphInsertCmd = &cobra.Command{
	Use:   "insert [subject] [predicate] [object]",
	Short: "Insert a triple into the knowledge graph",
	Long: `Insert stores one triple. The object is an IRI by default; use
--literal for a plain string value, optionally typed with --datatype or
language-tagged with --lang. Re-inserting an existing triple is a no-op.`,
	Args: cobra.ExactArgs(3),
	RunE: runGraphInsert,
}

func runGraphInsert(cmd *cobra.Command, args []string) error {
	store, err := graph.NewStore(graphConfigFromFlags(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	subject, predicate, object := args[0], args[1], args[2]
	literal, _ := cmd.Flags().GetBool("literal")
	datatype, _ := cmd.Flags().GetString("datatype")
	lang, _ := cmd.Flags().GetString("lang")

	ctx := context.Background()
	var inserted bool
	switch {
	case datatype != "":
		inserted, err = store.InsertTypedLiteral(ctx, subject, predicate, object, datatype)
	case lang != "":
		inserted, err = store.InsertLanguageLiteral(ctx, subject, predicate, object, lang)
	case literal:
		inserted, err = store.InsertLiteral(ctx, subject, predicate, object)
	default:
		inserted, err = store.Insert(ctx, subject, predicate, object)
	}
	if err != nil {
		return err
	}

	if inserted {
		fmt.Println("Inserted.")
	} else {
		fmt.Println("Already present.")
	}
	return nil
}

// --- query subcommand ---

var graphQueryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Query the knowledge graph with patterns and full-text search",
	Long: `Query searches the triple store. A positional argument runs FTS5
full-text search over literal objects; --subject, --predicate, and --object
match triple components exactly. At least one of these is required.`,
	RunE: runGraphQuery,
}

func runGraphQuery(cmd *cobra.Command, args []string) error {
	store, err := graph.NewStore(graphConfigFromFlags(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide search text, --subject, --predicate, or --object")
	}

	triples, err := store.Query(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatQueryOutput(triples, jsonOutput)
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) graph.QueryOptions {
	subject, _ := cmd.Flags().GetString("subject")
	predicate, _ := cmd.Flags().GetString("predicate")
	object, _ := cmd.Flags().GetString("object")
	excludeInferred, _ := cmd.Flags().GetBool("exclude-inferred")
	limit, _ := cmd.Flags().GetInt("limit")

	text := ""
	if len(args) > 0 {
		text = strings.Join(args, " ")
	}

	return graph.QueryOptions{
		Subject:         subject,
		Predicate:       predicate,
		Object:          object,
		Text:            text,
		ExcludeInferred: excludeInferred,
		MaxResults:      limit,
	}
}

func formatQueryOutput(triples []graph.Triple, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(triples)
	}

	if len(triples) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	for _, t := range triples {
		marker := ""
		if t.Inferred {
			marker = "  (inferred)"
		}
		fmt.Printf("%s  %s  %s%s\n", t.Subject, t.Predicate, formatObject(t), marker)
	}
	return nil
}

func formatObject(t graph.Triple) string {
	switch t.Kind {
	case graph.ObjectLiteral:
		return fmt.Sprintf("%q", t.Object)
	case graph.ObjectTypedLiteral:
		return fmt.Sprintf("%q^^%s", t.Object, t.Datatype)
	case graph.ObjectLangLiteral:
		return fmt.Sprintf("%q@%s", t.Object, t.Lang)
	}
	return t.Object
}

// --- infer subcommand ---

var graphInferCmd = &cobra.Command{
	Use:   "infer",
	Short: "Run rule-based inference over the knowledge graph",
	Long: `Infer applies RDFS rules (subclass transitivity, subproperty
transitivity, type propagation) to the store until no new triples appear.
Inferred triples are marked and can be excluded from queries.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := graph.NewStore(graphConfigFromFlags(cmd))
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Infer(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("Inferred %d new triples\n", n)
		return nil
	},
}

// --- export subcommand ---

var graphExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the knowledge graph to YAML or JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := graph.NewStore(graphConfigFromFlags(cmd))
		if err != nil {
			return err
		}
		defer store.Close()

		opts := queryOptsFromFlags(cmd, args)
		format, _ := cmd.Flags().GetString("format")

		ctx := context.Background()
		switch format {
		case "yaml":
			err = store.ExportYAML(ctx, opts)
		case "json":
			err = store.ExportJSON(ctx, opts)
		default:
			return fmt.Errorf("unknown export format %q (want yaml or json)", format)
		}
		if err != nil {
			return err
		}
		fmt.Printf("Exported graph as %s\n", format)
		return nil
	},
}

// --- stats subcommand ---

var graphStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge graph statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := graph.NewStore(graphConfigFromFlags(cmd))
		if err != nil {
			return err
		}
		defer store.Close()

		stats, err := store.CollectStats(context.Background())
		if err != nil {
			return err
		}

		fmt.Printf("Triples:  %d\n", stats.Triples)
		fmt.Printf("Inferred: %d\n", stats.Inferred)
		fmt.Printf("Subjects: %d\n", stats.Subjects)
		fmt.Printf("Literals: %d\n", stats.Literals)
		return nil
	},
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	graphCmd.PersistentFlags().String("graph-dir", "graph", "base directory for the knowledge graph (contains index/)")
	graphCmd.PersistentFlags().Int("max-results", 20, "maximum number of query results")

	// Insert flags.
	graphInsertCmd.Flags().Bool("literal", false, "store the object as a plain literal instead of an IRI")
	graphInsertCmd.Flags().String("datatype", "", "store the object as a typed literal (e.g. xsd:integer)")
	graphInsertCmd.Flags().String("lang", "", "store the object as a language-tagged literal (e.g. en)")

	// Query flags.
	graphQueryCmd.Flags().String("subject", "", "filter by subject IRI")
	graphQueryCmd.Flags().String("predicate", "", "filter by predicate IRI")
	graphQueryCmd.Flags().String("object", "", "filter by object value")
	graphQueryCmd.Flags().Bool("exclude-inferred", false, "omit inferred triples from results")
	graphQueryCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	graphQueryCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	graphExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	graphExportCmd.Flags().String("subject", "", "filter by subject IRI for partial export")
	graphExportCmd.Flags().String("predicate", "", "filter by predicate IRI for partial export")
	graphExportCmd.Flags().String("object", "", "filter by object value for partial export")
	graphExportCmd.Flags().Bool("exclude-inferred", false, "omit inferred triples from the export")
	graphExportCmd.Flags().Int("limit", 0, "maximum triples to export (0 = all)")

	// Wire subcommands.
	graphCmd.AddCommand(graphInsertCmd)
	graphCmd.AddCommand(graphQueryCmd)
	graphCmd.AddCommand(graphInferCmd)
	graphCmd.AddCommand(graphExportCmd)
	graphCmd.AddCommand(graphStatsCmd)

	rootCmd.AddCommand(graphCmd)
}
