// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"context"
	"fmt"
)

// Infer materializes triples derivable from RDFS reasoning rules:
//
//   - rdfs:subClassOf transitive closure
//   - rdfs:subPropertyOf transitive closure
//   - rdf:type propagation through the class hierarchy
//
// Each rule runs as a set-oriented SQL insert and the pass repeats until
// no rule adds a triple, so chains of any length close. The pass count is
// bounded by MaxInferencePasses to guarantee termination even if the
// store changes underneath us. Returns the number of triples inferred.
func (s *Store) Infer(ctx context.Context) (int, error) {
	total := 0

	for pass := 0; pass < s.maxPasses; pass++ {
		added := 0

		for _, rule := range inferenceRules {
			n, err := s.applyRule(ctx, rule)
			if err != nil {
				return total, fmt.Errorf("inference rule %s: %w", rule.name, err)
			}
			added += n
		}

		total += added
		if added == 0 {
			break
		}
	}

	return total, nil
}

// inferenceRule is one set-oriented derivation: the query selects new
// (subject, predicate, object) rows to insert as inferred IRI triples.
type inferenceRule struct {
	name string
	sql  string
	args func() []any
}

var inferenceRules = []inferenceRule{
	{
		// A subClassOf B, B subClassOf C => A subClassOf C.
		name: "subclass-transitivity",
		sql: `INSERT OR IGNORE INTO triples (subject, predicate, object, object_kind, inferred)
			SELECT a.subject, a.predicate, b.object, 'iri', 1
			FROM triples a
			JOIN triples b ON a.object = b.subject
			WHERE a.predicate = ?1 AND b.predicate = ?1
			  AND a.object_kind = 'iri' AND b.object_kind = 'iri'
			  AND a.subject != b.object`,
		args: func() []any { return []any{iriSubClassOf} },
	},
	{
		// A subPropertyOf B, B subPropertyOf C => A subPropertyOf C.
		name: "subproperty-transitivity",
		sql: `INSERT OR IGNORE INTO triples (subject, predicate, object, object_kind, inferred)
			SELECT a.subject, a.predicate, b.object, 'iri', 1
			FROM triples a
			JOIN triples b ON a.object = b.subject
			WHERE a.predicate = ?1 AND b.predicate = ?1
			  AND a.object_kind = 'iri' AND b.object_kind = 'iri'
			  AND a.subject != b.object`,
		args: func() []any { return []any{iriSubPropertyOf} },
	},
	{
		// X type A, A subClassOf B => X type B.
		name: "type-propagation",
		sql: `INSERT OR IGNORE INTO triples (subject, predicate, object, object_kind, inferred)
			SELECT t.subject, t.predicate, sc.object, 'iri', 1
			FROM triples t
			JOIN triples sc ON t.object = sc.subject
			WHERE t.predicate = ?1 AND sc.predicate = ?2
			  AND t.object_kind = 'iri' AND sc.object_kind = 'iri'`,
		args: func() []any { return []any{iriRDFType, iriSubClassOf} },
	},
}

func (s *Store) applyRule(ctx context.Context, rule inferenceRule) (int, error) {
	res, err := s.db.ExecContext(ctx, rule.sql, rule.args()...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
