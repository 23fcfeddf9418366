// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/semantic-browser/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) *Store {
	t.Helper()
	cfg := types.GraphConfig{
		GraphDir:   filepath.Join(t.TempDir(), "graph"),
		MaxResults: 20,
	}
	store, err := NewStore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func mustInsert(t *testing.T, s *Store, subject, predicate, object string) {
	t.Helper()
	if _, err := s.Insert(context.Background(), subject, predicate, object); err != nil {
		t.Fatal(err)
	}
}

// --- tests ---

func TestInsertAndCount(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	inserted, err := s.Insert(ctx, "https://example.com", "rdf:type", "schema:WebPage")
	if err != nil {
		t.Fatal(err)
	}
	if !inserted {
		t.Error("first insert should report true")
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

func TestInsertIdempotent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	mustInsert(t, s, "https://example.com", "rdf:type", "schema:WebPage")

	inserted, err := s.Insert(ctx, "https://example.com", "rdf:type", "schema:WebPage")
	if err != nil {
		t.Fatal(err)
	}
	if inserted {
		t.Error("duplicate insert should report false")
	}

	n, _ := s.Count(ctx)
	if n != 1 {
		t.Errorf("Count = %d, want 1 after duplicate insert", n)
	}
}

func TestInsertExpandsNamespaces(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	mustInsert(t, s, "https://example.com", "og:image", "https://example.com/logo.png")

	results, err := s.Query(ctx, QueryOptions{Predicate: "http://ogp.me/ns#image"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if results[0].Predicate != "http://ogp.me/ns#image" {
		t.Errorf("predicate stored as %q", results[0].Predicate)
	}
}

func TestLiteralKinds(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if _, err := s.InsertLiteral(ctx, "https://example.com", "dcterms:title", "Example"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.InsertTypedLiteral(ctx, "https://example.com", "schema:numberOfItems", "3", "xsd:integer"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.InsertLanguageLiteral(ctx, "https://example.com", "dcterms:description", "Bonjour", "fr"); err != nil {
		t.Fatal(err)
	}

	results, err := s.Query(ctx, QueryOptions{Subject: "https://example.com"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}

	kinds := map[ObjectKind]Triple{}
	for _, r := range results {
		kinds[r.Kind] = r
	}
	if tr, ok := kinds[ObjectTypedLiteral]; !ok || tr.Datatype != "http://www.w3.org/2001/XMLSchema#integer" {
		t.Errorf("typed literal = %+v", tr)
	}
	if tr, ok := kinds[ObjectLangLiteral]; !ok || tr.Lang != "fr" {
		t.Errorf("language literal = %+v", tr)
	}
}

func TestLiteralValueNotExpanded(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	// A literal that happens to look like a prefixed name must be verbatim.
	if _, err := s.InsertLiteral(ctx, "https://example.com", "dcterms:title", "og:title is a prefix"); err != nil {
		t.Fatal(err)
	}

	results, err := s.Query(ctx, QueryOptions{Subject: "https://example.com"})
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Object != "og:title is a prefix" {
		t.Errorf("literal object = %q", results[0].Object)
	}
}

func TestInsertRejectsEmptySubject(t *testing.T) {
	s := testStore(t)
	if _, err := s.Insert(context.Background(), "", "rdf:type", "schema:Thing"); err == nil {
		t.Fatal("expected error for empty subject")
	}
}

func TestQueryPatterns(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	mustInsert(t, s, "ex:a", "rdf:type", "schema:Person")
	mustInsert(t, s, "ex:b", "rdf:type", "schema:Organization")
	mustInsert(t, s, "ex:a", "schema:knows", "ex:b")

	bySubject, err := s.Query(ctx, QueryOptions{Subject: "ex:a"})
	if err != nil {
		t.Fatal(err)
	}
	if len(bySubject) != 2 {
		t.Errorf("subject query = %d results, want 2", len(bySubject))
	}

	byPredicate, err := s.Query(ctx, QueryOptions{Predicate: "rdf:type"})
	if err != nil {
		t.Fatal(err)
	}
	if len(byPredicate) != 2 {
		t.Errorf("predicate query = %d results, want 2", len(byPredicate))
	}

	byObject, err := s.Query(ctx, QueryOptions{Object: "schema:Organization"})
	if err != nil {
		t.Fatal(err)
	}
	if len(byObject) != 1 || byObject[0].Subject != ExpandNamespace("ex:b") {
		t.Errorf("object query = %+v", byObject)
	}
}

func TestQueryFullText(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if _, err := s.InsertLiteral(ctx, "https://example.com", "dcterms:title", "Rocket powered devices"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.InsertLiteral(ctx, "https://other.com", "dcterms:title", "Gardening tips"); err != nil {
		t.Fatal(err)
	}

	results, err := s.Query(ctx, QueryOptions{Text: "rocket"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("full-text query = %d results, want 1", len(results))
	}
	if results[0].Subject != "https://example.com" {
		t.Errorf("subject = %q", results[0].Subject)
	}
}

func TestQueryMaxResults(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for _, obj := range []string{"schema:A", "schema:B", "schema:C"} {
		mustInsert(t, s, "ex:x", "rdf:type", obj)
	}

	results, err := s.Query(ctx, QueryOptions{Subject: "ex:x", MaxResults: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Errorf("results = %d, want 2", len(results))
	}
}

func TestList(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	mustInsert(t, s, "ex:a", "rdf:type", "schema:Person")
	mustInsert(t, s, "ex:b", "rdf:type", "schema:Organization")

	all, err := s.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("List = %d results, want 2", len(all))
	}

	capped, err := s.List(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(capped) != 1 {
		t.Errorf("capped List = %d results, want 1", len(capped))
	}
}

func TestQueryOptionsIsEmpty(t *testing.T) {
	if !(QueryOptions{}).IsEmpty() {
		t.Error("zero options should be empty")
	}
	if (QueryOptions{Subject: "ex:a"}).IsEmpty() {
		t.Error("options with subject should not be empty")
	}
	if (QueryOptions{Text: "rocket"}).IsEmpty() {
		t.Error("options with text should not be empty")
	}
}

func TestContains(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	mustInsert(t, s, "ex:a", "rdf:type", "schema:Person")

	ok, err := s.Contains(ctx, "ex:a", "rdf:type", "schema:Person")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("expected triple to be present")
	}

	ok, err = s.Contains(ctx, "ex:a", "rdf:type", "schema:Robot")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("unexpected triple reported present")
	}
}

func TestCollectStats(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	mustInsert(t, s, "ex:a", "rdf:type", "schema:Person")
	if _, err := s.InsertLiteral(ctx, "ex:a", "schema:name", "Ada"); err != nil {
		t.Fatal(err)
	}

	st, err := s.CollectStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.Triples != 2 || st.Subjects != 1 || st.Literals != 1 || st.Inferred != 0 {
		t.Errorf("stats = %+v", st)
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "graph")
	cfg := types.GraphConfig{GraphDir: dir}

	s1, err := NewStore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	mustInsert(t, s1, "ex:a", "rdf:type", "schema:Person")
	s1.Close()

	s2, err := NewStore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()

	n, err := s2.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Count after reopen = %d, want 1", n)
	}
}

func TestExpandNamespace(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"og:title", "http://ogp.me/ns#title"},
		{"twitter:card", "https://dev.twitter.com/cards/markup#card"},
		{"schema:name", "https://schema.org/name"},
		{"dcterms:description", "http://purl.org/dc/terms/description"},
		{"rdf:type", "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"},
		{"xsd:integer", "http://www.w3.org/2001/XMLSchema#integer"},
		{"unknown:prop", "unknown:prop"},
		{"noprefix", "noprefix"},
		{"https://example.com/page", "https://example.com/page"},
	}
	for _, tt := range tests {
		if got := ExpandNamespace(tt.in); got != tt.want {
			t.Errorf("ExpandNamespace(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExportYAMLAndJSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "graph")
	s, err := NewStore(types.GraphConfig{GraphDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	ctx := context.Background()

	mustInsert(t, s, "ex:a", "rdf:type", "schema:Person")

	if err := s.ExportYAML(ctx, QueryOptions{}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "index", "export.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	var fromYAML []Triple
	if err := yaml.Unmarshal(data, &fromYAML); err != nil {
		t.Fatal(err)
	}
	if len(fromYAML) != 1 || fromYAML[0].Predicate != ExpandNamespace("rdf:type") {
		t.Errorf("YAML export = %+v", fromYAML)
	}

	if err := s.ExportJSON(ctx, QueryOptions{}); err != nil {
		t.Fatal(err)
	}
	data, err = os.ReadFile(filepath.Join(dir, "index", "export.json"))
	if err != nil {
		t.Fatal(err)
	}
	var fromJSON []Triple
	if err := json.Unmarshal(data, &fromJSON); err != nil {
		t.Fatal(err)
	}
	if len(fromJSON) != 1 {
		t.Errorf("JSON export = %+v", fromJSON)
	}
}
