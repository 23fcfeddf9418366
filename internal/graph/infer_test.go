// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"context"
	"testing"
)

func TestInferSubClassTransitivity(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	mustInsert(t, s, "ex:Cat", "rdfs:subClassOf", "ex:Mammal")
	mustInsert(t, s, "ex:Mammal", "rdfs:subClassOf", "ex:Animal")

	n, err := s.Infer(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n == 0 {
		t.Fatal("expected inferred triples")
	}

	ok, err := s.Contains(ctx, "ex:Cat", "rdfs:subClassOf", "ex:Animal")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("Cat subClassOf Animal should be inferred")
	}
}

func TestInferClosesLongChains(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	// A chain of 5 needs multiple passes to close fully.
	mustInsert(t, s, "ex:A", "rdfs:subClassOf", "ex:B")
	mustInsert(t, s, "ex:B", "rdfs:subClassOf", "ex:C")
	mustInsert(t, s, "ex:C", "rdfs:subClassOf", "ex:D")
	mustInsert(t, s, "ex:D", "rdfs:subClassOf", "ex:E")

	if _, err := s.Infer(ctx); err != nil {
		t.Fatal(err)
	}

	ok, err := s.Contains(ctx, "ex:A", "rdfs:subClassOf", "ex:E")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("A subClassOf E should be inferred through the chain")
	}
}

func TestInferSubPropertyTransitivity(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	mustInsert(t, s, "ex:hasMother", "rdfs:subPropertyOf", "ex:hasParent")
	mustInsert(t, s, "ex:hasParent", "rdfs:subPropertyOf", "ex:hasAncestor")

	if _, err := s.Infer(ctx); err != nil {
		t.Fatal(err)
	}

	ok, err := s.Contains(ctx, "ex:hasMother", "rdfs:subPropertyOf", "ex:hasAncestor")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("hasMother subPropertyOf hasAncestor should be inferred")
	}
}

func TestInferTypePropagation(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	mustInsert(t, s, "ex:felix", "rdf:type", "ex:Cat")
	mustInsert(t, s, "ex:Cat", "rdfs:subClassOf", "ex:Animal")

	if _, err := s.Infer(ctx); err != nil {
		t.Fatal(err)
	}

	ok, err := s.Contains(ctx, "ex:felix", "rdf:type", "ex:Animal")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("felix type Animal should be inferred")
	}
}

func TestInferIdempotent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	mustInsert(t, s, "ex:Cat", "rdfs:subClassOf", "ex:Mammal")
	mustInsert(t, s, "ex:Mammal", "rdfs:subClassOf", "ex:Animal")

	first, err := s.Infer(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if first == 0 {
		t.Fatal("expected inferred triples on first run")
	}

	second, err := s.Infer(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if second != 0 {
		t.Errorf("second run inferred %d triples, want 0", second)
	}
}

func TestInferNothingToDo(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	mustInsert(t, s, "ex:a", "schema:knows", "ex:b")

	n, err := s.Infer(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("inferred %d triples from non-RDFS data, want 0", n)
	}
}

func TestInferMarksTriplesInferred(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	mustInsert(t, s, "ex:felix", "rdf:type", "ex:Cat")
	mustInsert(t, s, "ex:Cat", "rdfs:subClassOf", "ex:Animal")

	if _, err := s.Infer(ctx); err != nil {
		t.Fatal(err)
	}

	asserted, err := s.Query(ctx, QueryOptions{Subject: "ex:felix", ExcludeInferred: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(asserted) != 1 {
		t.Errorf("asserted triples for felix = %d, want 1", len(asserted))
	}

	all, err := s.Query(ctx, QueryOptions{Subject: "ex:felix"})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("all triples for felix = %d, want 2", len(all))
	}

	st, err := s.CollectStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.Inferred == 0 {
		t.Error("stats should count inferred triples")
	}
}
