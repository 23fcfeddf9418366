// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"context"
	"fmt"
	"strings"
)

// QueryOptions holds parameters for triple queries. Pattern fields match
// exactly after namespace expansion; Text runs an FTS5 search over objects.
type QueryOptions struct {
	// Subject filters by subject IRI.
	Subject string

	// Predicate filters by predicate IRI.
	Predicate string

	// Object filters by exact object value.
	Object string

	// Text is an FTS5 full-text search over object values.
	Text string

	// IncludeInferred keeps rule-derived triples in the results (default
	// behavior); set ExcludeInferred to drop them.
	ExcludeInferred bool

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no pattern or search terms.
func (q QueryOptions) IsEmpty() bool {
	return q.Subject == "" && q.Predicate == "" && q.Object == "" && q.Text == ""
}

// Query returns triples matching the options. Full-text queries are ranked
// by relevance; pattern-only queries come back ordered by subject and
// predicate.
func (s *Store) Query(ctx context.Context, opts QueryOptions) ([]Triple, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Text != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT t.subject, t.predicate, t.object, t.object_kind, t.datatype, t.lang, t.inferred
			FROM triples_fts
			JOIN triples t ON t.rowid = triples_fts.rowid
			WHERE triples_fts MATCH ?`)
		args = append(args, opts.Text)
	} else {
		qb.WriteString(
			`SELECT t.subject, t.predicate, t.object, t.object_kind, t.datatype, t.lang, t.inferred
			FROM triples t
			WHERE 1=1`)
	}

	if opts.Subject != "" {
		qb.WriteString(` AND t.subject = ?`)
		args = append(args, ExpandNamespace(opts.Subject))
	}
	if opts.Predicate != "" {
		qb.WriteString(` AND t.predicate = ?`)
		args = append(args, ExpandNamespace(opts.Predicate))
	}
	if opts.Object != "" {
		qb.WriteString(` AND t.object = ?`)
		args = append(args, ExpandNamespace(opts.Object))
	}
	if opts.ExcludeInferred {
		qb.WriteString(` AND t.inferred = 0`)
	}

	if useFTS {
		qb.WriteString(` ORDER BY triples_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY t.subject, t.predicate, t.object`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying triples: %w", err)
	}
	defer rows.Close()

	var results []Triple
	for rows.Next() {
		var (
			t        Triple
			kind     string
			inferred int
		)
		if err := rows.Scan(&t.Subject, &t.Predicate, &t.Object, &kind, &t.Datatype, &t.Lang, &inferred); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		t.Kind = ObjectKind(kind)
		t.Inferred = inferred != 0
		results = append(results, t)
	}

	return results, rows.Err()
}

// List returns up to max stored triples in subject order. Zero uses the
// store default.
func (s *Store) List(ctx context.Context, max int) ([]Triple, error) {
	return s.Query(ctx, QueryOptions{MaxResults: max})
}

// Contains reports whether an exact IRI triple is present.
func (s *Store) Contains(ctx context.Context, subject, predicate, object string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM triples WHERE subject = ? AND predicate = ? AND object = ? AND object_kind = ?`,
		ExpandNamespace(subject), ExpandNamespace(predicate), ExpandNamespace(object), string(ObjectIRI),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking triple: %w", err)
	}
	return n > 0, nil
}
