// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/semantic-browser/pkg/types"
)

// InsertSnapshot maps a semantic snapshot to triples and stores them.
// Page metadata goes to Dublin Core terms, keywords and structured-data
// counts to schema.org, and the Open Graph / Twitter Card maps to their
// own vocabularies. Values that look like http(s) IRIs are stored as
// resources, everything else as literals; title and description carry the
// page language as a tag when it is known.
//
// Returns the number of triples actually added; re-inserting an unchanged
// snapshot adds none.
func (s *Store) InsertSnapshot(ctx context.Context, snap *types.SemanticSnapshot, baseURL string) (int, error) {
	if baseURL == "" {
		return 0, fmt.Errorf("snapshot base URL must be non-empty")
	}

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

	if snap.Title != "" {
		if err := add(s.insertMaybeTagged(ctx, baseURL, "dcterms:title", snap.Title, snap.Language)); err != nil {
			return count, err
		}
	}

	if snap.Description != "" {
		if err := add(s.insertMaybeTagged(ctx, baseURL, "dcterms:description", snap.Description, snap.Language)); err != nil {
			return count, err
		}
	}

	for _, keyword := range snap.Keywords {
		if err := add(s.InsertLiteral(ctx, baseURL, "schema:keywords", keyword)); err != nil {
			return count, err
		}
	}

	if snap.Language != "" {
		if err := add(s.InsertLiteral(ctx, baseURL, "dcterms:language", snap.Language)); err != nil {
			return count, err
		}
	}

	if snap.CanonicalURL != "" {
		if err := add(s.InsertLiteral(ctx, baseURL, "dcterms:identifier", snap.CanonicalURL)); err != nil {
			return count, err
		}
		if err := add(s.Insert(ctx, baseURL, "dcterms:isVersionOf", snap.CanonicalURL)); err != nil {
			return count, err
		}
	}

	if snap.FinalURL != "" && snap.FinalURL != baseURL {
		if err := add(s.InsertLiteral(ctx, baseURL, "dcterms:hasVersion", snap.FinalURL)); err != nil {
			return count, err
		}
	}

	if err := s.insertPropertyMap(ctx, baseURL, "og:", snap.OpenGraph, add); err != nil {
		return count, err
	}
	if err := s.insertPropertyMap(ctx, baseURL, "twitter:", snap.TwitterCard, add); err != nil {
		return count, err
	}

	if snap.JSONLDCount > 0 {
		if err := add(s.InsertTypedLiteral(ctx, baseURL, "schema:numberOfItems",
			strconv.Itoa(snap.JSONLDCount), "xsd:integer")); err != nil {
			return count, err
		}
	}

	for _, item := range snap.Microdata {
		if item.ItemType != "" {
			if err := add(s.InsertLiteral(ctx, baseURL, "schema:itemType", item.ItemType)); err != nil {
				return count, err
			}
		}
		if err := add(s.InsertTypedLiteral(ctx, baseURL, "schema:numberOfProperties",
			strconv.Itoa(len(item.Properties)), "xsd:integer")); err != nil {
			return count, err
		}
	}

	return count, nil
}

// insertMaybeTagged stores a literal with a language tag when lang is known.
func (s *Store) insertMaybeTagged(ctx context.Context, subject, predicate, value, lang string) (bool, error) {
	if lang != "" {
		return s.InsertLanguageLiteral(ctx, subject, predicate, value, lang)
	}
	return s.InsertLiteral(ctx, subject, predicate, value)
}

// insertPropertyMap stores one vocabulary map (og:* or twitter:*) in a
// stable key order. IRI-shaped values become resources.
func (s *Store) insertPropertyMap(ctx context.Context, baseURL, prefix string, props map[string]string, add func(bool, error) error) error {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := props[key]
		predicate := prefix + key
		if isIRI(value) {
			if err := add(s.Insert(ctx, baseURL, predicate, value)); err != nil {
				return err
			}
			continue
		}
		if err := add(s.InsertLiteral(ctx, baseURL, predicate, value)); err != nil {
			return err
		}
	}
	return nil
}

func isIRI(v string) bool {
	return strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://")
}
