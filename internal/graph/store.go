// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graph persists RDF-style triples in SQLite and supports
// pattern queries, full-text search over literals, and rule-based
// inference.
package graph

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/semantic-browser/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "graph.db"
)

// ObjectKind distinguishes how a triple's object is interpreted.
type ObjectKind string

const (
	// ObjectIRI marks the object as a resource identifier.
	ObjectIRI ObjectKind = "iri"

	// ObjectLiteral marks the object as a plain string literal.
	ObjectLiteral ObjectKind = "literal"

	// ObjectTypedLiteral marks the object as a literal with an xsd datatype.
	ObjectTypedLiteral ObjectKind = "typed"

	// ObjectLangLiteral marks the object as a language-tagged literal.
	ObjectLangLiteral ObjectKind = "lang"
)

// Triple is one subject-predicate-object statement.
type Triple struct {
	Subject   string     `json:"subject" yaml:"subject"`
	Predicate string     `json:"predicate" yaml:"predicate"`
	Object    string     `json:"object" yaml:"object"`
	Kind      ObjectKind `json:"kind" yaml:"kind"`

	// Datatype is the xsd datatype IRI for typed literals.
	Datatype string `json:"datatype,omitempty" yaml:"datatype,omitempty"`

	// Lang is the language tag for language-tagged literals.
	Lang string `json:"lang,omitempty" yaml:"lang,omitempty"`

	// Inferred marks triples materialized by rule-based inference rather
	// than asserted directly.
	Inferred bool `json:"inferred,omitempty" yaml:"inferred,omitempty"`
}

// Store manages the triple database.
type Store struct {
	db         *sql.DB
	graphDir   string
	maxResults int
	maxPasses  int
}

// NewStore opens or creates the triple database at graphDir/index/graph.db.
// It creates the schema if it does not exist.
func NewStore(cfg types.GraphConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.GraphDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}
	maxPasses := cfg.MaxInferencePasses
	if maxPasses <= 0 {
		maxPasses = 10
	}

	s := &Store{
		db:         db,
		graphDir:   cfg.GraphDir,
		maxResults: maxResults,
		maxPasses:  maxPasses,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS triples (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			subject TEXT NOT NULL,
			predicate TEXT NOT NULL,
			object TEXT NOT NULL,
			object_kind TEXT NOT NULL DEFAULT 'iri',
			datatype TEXT NOT NULL DEFAULT '',
			lang TEXT NOT NULL DEFAULT '',
			inferred INTEGER NOT NULL DEFAULT 0,
			UNIQUE(subject, predicate, object, object_kind, datatype, lang)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_triples_subject ON triples(subject)`,
		`CREATE INDEX IF NOT EXISTS idx_triples_predicate ON triples(predicate)`,
		`CREATE INDEX IF NOT EXISTS idx_triples_object ON triples(object)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table over objects with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='triples_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE triples_fts USING fts5(object, content=triples, content_rowid=rowid)`,
			`CREATE TRIGGER triples_ai AFTER INSERT ON triples BEGIN
				INSERT INTO triples_fts(rowid, object) VALUES (new.rowid, new.object);
			END`,
			`CREATE TRIGGER triples_ad AFTER DELETE ON triples BEGIN
				INSERT INTO triples_fts(triples_fts, rowid, object) VALUES('delete', old.rowid, old.object);
			END`,
			`CREATE TRIGGER triples_au AFTER UPDATE ON triples BEGIN
				INSERT INTO triples_fts(triples_fts, rowid, object) VALUES('delete', old.rowid, old.object);
				INSERT INTO triples_fts(rowid, object) VALUES (new.rowid, new.object);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Insert adds a triple whose object is an IRI. Prefixed names (og:title)
// are expanded before storage. Returns true when the triple was new;
// re-inserting an existing triple is a no-op.
func (s *Store) Insert(ctx context.Context, subject, predicate, object string) (bool, error) {
	return s.insert(ctx, Triple{
		Subject:   subject,
		Predicate: predicate,
		Object:    object,
		Kind:      ObjectIRI,
	})
}

// InsertLiteral adds a triple whose object is a plain string literal.
func (s *Store) InsertLiteral(ctx context.Context, subject, predicate, value string) (bool, error) {
	return s.insert(ctx, Triple{
		Subject:   subject,
		Predicate: predicate,
		Object:    value,
		Kind:      ObjectLiteral,
	})
}

// InsertTypedLiteral adds a triple whose object is a literal with an xsd
// datatype (e.g. xsd:integer).
func (s *Store) InsertTypedLiteral(ctx context.Context, subject, predicate, value, datatype string) (bool, error) {
	return s.insert(ctx, Triple{
		Subject:   subject,
		Predicate: predicate,
		Object:    value,
		Kind:      ObjectTypedLiteral,
		Datatype:  ExpandNamespace(datatype),
	})
}

// InsertLanguageLiteral adds a triple whose object is a language-tagged
// literal (e.g. "Bonjour"@fr).
func (s *Store) InsertLanguageLiteral(ctx context.Context, subject, predicate, value, lang string) (bool, error) {
	return s.insert(ctx, Triple{
		Subject:   subject,
		Predicate: predicate,
		Object:    value,
		Kind:      ObjectLangLiteral,
		Lang:      lang,
	})
}

func (s *Store) insert(ctx context.Context, t Triple) (bool, error) {
	if t.Subject == "" || t.Predicate == "" {
		return false, fmt.Errorf("triple subject and predicate must be non-empty")
	}

	inferred := 0
	if t.Inferred {
		inferred = 1
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO triples (subject, predicate, object, object_kind, datatype, lang, inferred)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ExpandNamespace(t.Subject), ExpandNamespace(t.Predicate), s.expandObject(t),
		string(t.Kind), t.Datatype, t.Lang, inferred,
	)
	if err != nil {
		return false, fmt.Errorf("inserting triple: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking insert result: %w", err)
	}
	return n > 0, nil
}

// expandObject expands prefixed names only for IRI objects; literal values
// are stored verbatim.
func (s *Store) expandObject(t Triple) string {
	if t.Kind == ObjectIRI {
		return ExpandNamespace(t.Object)
	}
	return t.Object
}

// Count returns the total number of stored triples.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM triples`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting triples: %w", err)
	}
	return n, nil
}

// Stats summarizes the store contents.
type Stats struct {
	Triples  int `json:"triples" yaml:"triples"`
	Inferred int `json:"inferred" yaml:"inferred"`
	Subjects int `json:"subjects" yaml:"subjects"`
	Literals int `json:"literals" yaml:"literals"`
}

// CollectStats computes store-wide counts.
func (s *Store) CollectStats(ctx context.Context) (Stats, error) {
	var st Stats
	row := s.db.QueryRowContext(ctx, `
		SELECT count(*),
			coalesce(sum(inferred), 0),
			count(DISTINCT subject),
			coalesce(sum(CASE WHEN object_kind != 'iri' THEN 1 ELSE 0 END), 0)
		FROM triples`)
	if err := row.Scan(&st.Triples, &st.Inferred, &st.Subjects, &st.Literals); err != nil {
		return Stats{}, fmt.Errorf("collecting stats: %w", err)
	}
	return st, nil
}
