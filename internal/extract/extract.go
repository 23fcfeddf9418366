// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract identifies named entities within page text through a
// Generative AI backend, with a heuristic fallback for offline use.
package extract

import (
	"context"
	"crypto/sha256"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/semantic-browser/pkg/types"
)

const extractedDir = "extracted"

// maxChunkRunes bounds the amount of page text sent to the backend in one
// call. Blocks are packed into chunks up to this size.
const maxChunkRunes = 6000

// validEntityTypes is the set of accepted EntityType values.
var validEntityTypes = map[types.EntityType]bool{
	types.EntityPerson:       true,
	types.EntityOrganization: true,
	types.EntityPlace:        true,
	types.EntityProduct:      true,
	types.EntityOther:        true,
}

// AIBackend abstracts the Generative AI API so tests can supply a mock.
// Each implementation handles a single chunk of page text and returns
// the raw response.
type AIBackend interface {
	Extract(ctx context.Context, text string) (AIResponse, error)
}

// AIResponse is the structured response from the AI backend for one chunk.
type AIResponse struct {
	Entities []AIResponseEntity `json:"entities" yaml:"entities"`
}

// AIResponseEntity is a single entity as returned by the AI backend.
type AIResponseEntity struct {
	Name       string  `json:"name" yaml:"name"`
	Type       string  `json:"type" yaml:"type"`
	Mentions   int     `json:"mentions" yaml:"mentions"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// ExtractPage extracts entities from one page's text blocks. Blocks are
// packed into chunks, each chunk goes to the AI backend, and entities that
// recur across chunks are merged into a single record.
func ExtractPage(ctx context.Context, backend AIBackend, pageID, sourceURL string, blocks []string, cfg types.ExtractionConfig) (*types.ExtractionResult, error) {
	chunks := packChunks(blocks, maxChunkRunes)

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var all []types.Entity
	for i, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			continue
		}

		resp, err := callWithRetry(ctx, backend, chunk, maxRetries)
		if err != nil {
			return nil, fmt.Errorf("extracting chunk %d: %w", i, err)
		}

		entities, validationErrors := convertEntities(resp.Entities, pageID, sourceURL)
		if len(validationErrors) > 0 {
			return nil, fmt.Errorf("validation errors in chunk %d: %s", i, strings.Join(validationErrors, "; "))
		}

		all = append(all, entities...)
	}

	merged := mergeEntities(all)
	merged = filterConfidence(merged, cfg.MinConfidence)

	return &types.ExtractionResult{
		PageID:    pageID,
		SourceURL: sourceURL,
		Entities:  merged,
	}, nil
}

// packChunks joins consecutive text blocks into chunks of at most maxRunes.
// A single oversize block becomes its own chunk rather than being split.
func packChunks(blocks []string, maxRunes int) []string {
	var chunks []string
	var cur strings.Builder
	curLen := 0

	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, b := range blocks {
		n := len([]rune(b))
		if curLen > 0 && curLen+n+1 > maxRunes {
			flush()
		}
		if curLen > 0 {
			cur.WriteString("\n")
			curLen++
		}
		cur.WriteString(b)
		curLen += n
	}
	flush()

	return chunks
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// callWithRetry calls the AI backend with exponential backoff.
func callWithRetry(ctx context.Context, backend AIBackend, chunk string, maxRetries int) (AIResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return AIResponse{}, ctx.Err()
			case <-time.After(backoff):
			}
		}

		resp, err := backend.Extract(ctx, chunk)
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}
	return AIResponse{}, fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

// convertEntities validates AI response entities and converts them to Entities.
func convertEntities(entities []AIResponseEntity, pageID, sourceURL string) ([]types.Entity, []string) {
	var result []types.Entity
	var errors []string

	for i, e := range entities {
		entityType := types.EntityType(e.Type)
		if !validEntityTypes[entityType] {
			errors = append(errors, fmt.Sprintf("entity %d: invalid type %q", i, e.Type))
			continue
		}
		if strings.TrimSpace(e.Name) == "" {
			errors = append(errors, fmt.Sprintf("entity %d: empty name", i))
			continue
		}
		if e.Confidence < 0.0 || e.Confidence > 1.0 {
			errors = append(errors, fmt.Sprintf("entity %d: confidence %f out of range [0,1]", i, e.Confidence))
			continue
		}

		mentions := e.Mentions
		if mentions < 1 {
			mentions = 1
		}

		result = append(result, types.Entity{
			ID:         stableID(pageID, e.Name, string(entityType)),
			Name:       e.Name,
			Type:       entityType,
			Mentions:   mentions,
			Confidence: e.Confidence,
			SourceURL:  sourceURL,
		})
	}

	return result, errors
}

// mergeEntities collapses duplicate entities by ID, summing mention counts
// and keeping the highest confidence. The result is ordered by mention count
// descending, then by name.
func mergeEntities(entities []types.Entity) []types.Entity {
	byID := make(map[string]types.Entity, len(entities))
	for _, e := range entities {
		prev, ok := byID[e.ID]
		if !ok {
			byID[e.ID] = e
			continue
		}
		prev.Mentions += e.Mentions
		if e.Confidence > prev.Confidence {
			prev.Confidence = e.Confidence
		}
		byID[e.ID] = prev
	}

	merged := make([]types.Entity, 0, len(byID))
	for _, e := range byID {
		merged = append(merged, e)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Mentions != merged[j].Mentions {
			return merged[i].Mentions > merged[j].Mentions
		}
		return merged[i].Name < merged[j].Name
	})
	return merged
}

// filterConfidence drops entities below the confidence threshold.
func filterConfidence(entities []types.Entity, min float64) []types.Entity {
	if min <= 0 {
		return entities
	}
	var kept []types.Entity
	for _, e := range entities {
		if e.Confidence >= min {
			kept = append(kept, e)
		}
	}
	return kept
}

// stableID generates a deterministic ID from page ID, entity name, and type.
// The ID is the first 12 hex characters of SHA-256(pageID + name + type).
func stableID(pageID, name, entityType string) string {
	h := sha256.New()
	h.Write([]byte(pageID))
	h.Write([]byte(strings.ToLower(name)))
	h.Write([]byte(entityType))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// WriteResult marshals the ExtractionResult to a YAML file under
// pagesDir/extracted/<pageID>-entities.yaml.
func WriteResult(pagesDir string, result *types.ExtractionResult) (string, error) {
	outDir := filepath.Join(pagesDir, extractedDir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	data, err := yaml.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("marshaling result: %w", err)
	}

	path := filepath.Join(outDir, result.PageID+"-entities.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing result: %w", err)
	}
	return path, nil
}

// LoadResult reads a previously written extraction result.
func LoadResult(path string) (*types.ExtractionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result %s: %w", path, err)
	}
	var result types.ExtractionResult
	if err := yaml.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parsing result %s: %w", path, err)
	}
	return &result, nil
}
