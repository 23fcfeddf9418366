// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workflow

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// demoStep is one entry in the scripted demonstration sequence. Steps
// without a URL are graph-integration steps.
type demoStep struct {
	name   string
	url    string
	action string
}

// demoResult is the mock extraction record printed for each browsed URL.
type demoResult struct {
	url            string
	success        bool
	extractionTime float64
	contentLength  int
	entitiesFound  int
	kgTriplesAdded int
}

var demoSteps = []demoStep{
	{
		name:   "Browse Company Website",
		url:    "https://example.com",
		action: "Extract company information and metadata",
	},
	{
		name:   "Browse News Article",
		url:    "https://httpbin.org/html",
		action: "Extract article content and entities",
	},
	{
		name:   "KG Integration",
		action: "Store extracted information in knowledge graph",
	},
}

var demoKGOperations = []string{
	"INSERT company data triples",
	"INSERT entity relationships",
	"Run inference on new data",
	"Update entity embeddings",
}

var demoBenefits = []string{
	"Automated end-to-end processing",
	"Consistent data extraction",
	"Integrated KG updates",
	"Error handling and retries",
	"Performance monitoring",
}

// demoOutput is the output block of the printed workflow definition. A
// struct keeps the key order of the original demo.
type demoOutput struct {
	KGTriples  string `json:"kg_triples"`
	Entities   string `json:"entities"`
	Embeddings string `json:"embeddings"`
}

// demoDefinition is the workflow definition printed at the end of the demo.
type demoDefinition struct {
	Name   string     `json:"name"`
	Steps  []Step     `json:"steps"`
	Output demoOutput `json:"output"`
}

// demoDef builds the workflow definition the demo prints. The steps are
// real Step values, so the printed definition is loadable by Load.
func demoDef() demoDefinition {
	return demoDefinition{
		Name: "Content Extraction Pipeline",
		Steps: []Step{
			{Type: StepBrowse, URL: "https://example.com", Extract: "metadata"},
			{Type: StepBrowse, URL: "https://httpbin.org/html", Extract: "content"},
			{Type: StepKGUpdate, Source: "extracted_data"},
			{Type: StepInference, Model: "kg_embeddings"},
		},
		Output: demoOutput{
			KGTriples:  "generated",
			Entities:   "extracted",
			Embeddings: "updated",
		},
	}
}

// Demo prints the scripted browse-and-integrate demonstration to w. Every
// printed value is fixed; the summary totals are computed from the
// accumulated mock records. delay paces the graph-integration lines and may
// be zero, in which case the output is produced without sleeping and is
// byte-for-byte deterministic.
func Demo(w io.Writer, delay time.Duration) error {
	fmt.Fprintln(w, "🔄 Browser Automation Workflow Demo")
	fmt.Fprintln(w, strings.Repeat("=", 40))

	var results []demoResult

	for _, step := range demoSteps {
		fmt.Fprintf(w, "\n🎯 Step: %s\n", step.name)

		if step.url != "" {
			fmt.Fprintf(w, "   🌐 URL: %s\n", step.url)
			fmt.Fprintf(w, "   🎬 Action: %s\n", step.action)

			result := demoResult{
				url:            step.url,
				success:        true,
				extractionTime: 2.5,
				contentLength:  15432,
				entitiesFound:  8,
				kgTriplesAdded: 12,
			}
			results = append(results, result)

			fmt.Fprintf(w, "   ✅ Success: %t\n", result.success)
			fmt.Fprintf(w, "   ⏱️  Time: %gs\n", result.extractionTime)
			fmt.Fprintf(w, "   📄 Content: %d chars\n", result.contentLength)
			fmt.Fprintf(w, "   🏷️  Entities: %d\n", result.entitiesFound)
			fmt.Fprintf(w, "   🧠 KG Triples: %d\n", result.kgTriplesAdded)
			continue
		}

		fmt.Fprintf(w, "   🎬 Action: %s\n", step.action)
		for _, op := range demoKGOperations {
			fmt.Fprintf(w, "   🔄 %s...\n", op)
			if delay > 0 {
				time.Sleep(delay)
			}
		}
		fmt.Fprintln(w, "   ✅ KG integration completed")
	}

	urls, entities, triples := 0, 0, 0
	for _, r := range results {
		if r.url != "" {
			urls++
		}
		entities += r.entitiesFound
		triples += r.kgTriplesAdded
	}

	fmt.Fprintln(w, "\n📊 Workflow Summary:")
	fmt.Fprintf(w, "   Total steps: %d\n", len(demoSteps))
	fmt.Fprintf(w, "   URLs processed: %d\n", urls)
	fmt.Fprintf(w, "   Total entities extracted: %d\n", entities)
	fmt.Fprintf(w, "   Total KG triples added: %d\n", triples)

	fmt.Fprintln(w, "\n🎯 Workflow Benefits:")
	for _, b := range demoBenefits {
		fmt.Fprintf(w, "   • %s\n", b)
	}

	def, err := json.MarshalIndent(demoDef(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling workflow definition: %w", err)
	}
	fmt.Fprintln(w, "\n📋 Workflow Definition (JSON):")
	fmt.Fprintln(w, string(def))

	return nil
}
