// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

const exportLimit = 100000

// ExportYAML writes the triple store to graphDir/index/export.yaml.
// It supports the same filters as Query for partial exports.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) error {
	triples, err := s.exportTriples(ctx, opts)
	if err != nil {
		return err
	}

	path := filepath.Join(s.graphDir, indexDir, "export.yaml")
	data, err := yaml.Marshal(triples)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the triple store to graphDir/index/export.json.
// It supports the same filters as Query for partial exports.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) error {
	triples, err := s.exportTriples(ctx, opts)
	if err != nil {
		return err
	}

	path := filepath.Join(s.graphDir, indexDir, "export.json")
	data, err := json.MarshalIndent(triples, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) exportTriples(ctx context.Context, opts QueryOptions) ([]Triple, error) {
	var (
		triples []Triple
		err     error
	)
	if opts.IsEmpty() {
		triples, err = s.List(ctx, exportLimit)
	} else {
		opts.MaxResults = exportLimit
		triples, err = s.Query(ctx, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("reading triples for export: %w", err)
	}
	if triples == nil {
		triples = []Triple{}
	}
	return triples, nil
}
