// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pdiddy/semantic-browser/pkg/types"
)

// entityClass maps extraction entity types to schema.org classes.
var entityClass = map[types.EntityType]string{
	types.EntityPerson:       "schema:Person",
	types.EntityOrganization: "schema:Organization",
	types.EntityPlace:        "schema:Place",
	types.EntityProduct:      "schema:Product",
	types.EntityOther:        "schema:Thing",
}

// InsertEntities stores extracted entities as triples. Each entity becomes
// a subject under the ex: namespace with its schema.org class, name,
// mention count, confidence, and a provenance link to the source page.
// Returns the number of triples actually added.
func (s *Store) InsertEntities(ctx context.Context, entities []types.Entity) (int, error) {
	count := 0
	add := func(inserted bool, err error) error {
		if err != nil {
			return err
		}
		if inserted {
			count++
		}
		return nil
	}

	for _, e := range entities {
		if e.ID == "" {
			return count, fmt.Errorf("entity %q has no ID", e.Name)
		}
		subject := "ex:entity-" + e.ID

		class, ok := entityClass[e.Type]
		if !ok {
			class = entityClass[types.EntityOther]
		}

		if err := add(s.Insert(ctx, subject, "rdf:type", class)); err != nil {
			return count, err
		}
		if err := add(s.InsertLiteral(ctx, subject, "schema:name", e.Name)); err != nil {
			return count, err
		}
		if err := add(s.InsertTypedLiteral(ctx, subject, "ex:mentions",
			strconv.Itoa(e.Mentions), "xsd:integer")); err != nil {
			return count, err
		}
		if err := add(s.InsertTypedLiteral(ctx, subject, "ex:confidence",
			strconv.FormatFloat(e.Confidence, 'f', 2, 64), "xsd:decimal")); err != nil {
			return count, err
		}
		if e.SourceURL != "" {
			if err := add(s.Insert(ctx, subject, "dcterms:source", e.SourceURL)); err != nil {
				return count, err
			}
		}
	}

	return count, nil
}
