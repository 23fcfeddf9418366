// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"sort"
	"strings"
	"unicode"
)

// heuristicConfidence is assigned to every heuristic match. A name-pattern
// scan cannot distinguish strong matches from weak ones.
const heuristicConfidence = 0.6

// orgSuffixes mark a capitalized phrase as an organization name.
var orgSuffixes = map[string]bool{
	"Inc":         true,
	"Inc.":        true,
	"Corp":        true,
	"Corp.":       true,
	"Corporation": true,
	"Ltd":         true,
	"Ltd.":        true,
	"LLC":         true,
	"GmbH":        true,
	"Company":     true,
	"Foundation":  true,
	"University":  true,
	"Institute":   true,
}

// honorifics mark the following capitalized phrase as a person name.
var honorifics = map[string]bool{
	"Mr":    true,
	"Mr.":   true,
	"Mrs":   true,
	"Mrs.":  true,
	"Ms":    true,
	"Ms.":   true,
	"Dr":    true,
	"Dr.":   true,
	"Prof":  true,
	"Prof.": true,
}

// stopwords never start or extend an entity name even when capitalized at a
// sentence boundary.
var stopwords = map[string]bool{
	"The": true, "A": true, "An": true, "This": true, "That": true,
	"These": true, "Those": true, "It": true, "In": true, "On": true,
	"At": true, "For": true, "With": true, "And": true, "But": true,
	"Or": true, "If": true, "When": true, "We": true, "You": true,
	"They": true, "He": true, "She": true, "Our": true, "Their": true,
}

// HeuristicBackend extracts entities without network access by scanning for
// runs of capitalized words. Used when no API key is configured.
type HeuristicBackend struct{}

// Extract scans the text for capitalized phrases and classifies them by
// surface cues. Phrases ending in a company suffix become organizations and
// phrases preceded by an honorific become persons.
func (HeuristicBackend) Extract(_ context.Context, text string) (AIResponse, error) {
	type tally struct {
		entityType string
		mentions   int
	}
	counts := make(map[string]*tally)

	record := func(name, entityType string) {
		t := counts[name]
		if t == nil {
			counts[name] = &tally{entityType: entityType, mentions: 1}
			return
		}
		t.mentions++
		if t.entityType == "other" && entityType != "other" {
			t.entityType = entityType
		}
	}

	words := strings.Fields(text)
	i := 0
	for i < len(words) {
		w, _ := cleanWord(words[i])

		if honorifics[w] {
			if name, next := readCapitalizedRun(words, i+1); name != "" {
				record(name, "person")
				i = next
				continue
			}
			i++
			continue
		}

		if !isCapitalized(w) || stopwords[w] {
			i++
			continue
		}

		name, next := readCapitalizedRun(words, i)
		if name == "" {
			i++
			continue
		}

		entityType := "other"
		parts := strings.Fields(name)
		if orgSuffixes[parts[len(parts)-1]] {
			entityType = "organization"
		}
		record(name, entityType)
		i = next
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	var resp AIResponse
	for _, name := range names {
		t := counts[name]
		resp.Entities = append(resp.Entities, AIResponseEntity{
			Name:       name,
			Type:       t.entityType,
			Mentions:   t.mentions,
			Confidence: heuristicConfidence,
		})
	}
	return resp, nil
}

// readCapitalizedRun collects consecutive capitalized words starting at
// index start. Stopwords, honorifics, and sentence punctuation end the run.
// Returns the joined name and the index after the run.
func readCapitalizedRun(words []string, start int) (string, int) {
	var parts []string
	i := start
	for i < len(words) {
		w, ended := cleanWord(words[i])
		if !isCapitalized(w) || stopwords[w] || honorifics[w] {
			break
		}
		parts = append(parts, w)
		i++
		if ended {
			break
		}
	}
	if len(parts) == 0 {
		return "", start
	}
	return strings.Join(parts, " "), i
}

// cleanWord strips surrounding punctuation from a token. The second return
// reports whether the token carried trailing sentence punctuation, which
// ends a capitalized run. Dotted abbreviations like "Corp." and "Dr." keep
// their dot so suffix and honorific lookups match.
func cleanWord(token string) (string, bool) {
	w := strings.TrimLeftFunc(token, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	trimmed := strings.TrimRightFunc(w, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	ended := trimmed != w

	if orgSuffixes[trimmed+"."] || honorifics[trimmed+"."] {
		if strings.HasPrefix(w, trimmed+".") {
			return trimmed + ".", len(w) > len(trimmed)+1
		}
	}
	return trimmed, ended
}

func isCapitalized(w string) bool {
	if w == "" {
		return false
	}
	runes := []rune(w)
	if !unicode.IsUpper(runes[0]) {
		return false
	}
	for _, r := range runes {
		if !unicode.IsLetter(r) && r != '.' && r != '\'' && r != '-' {
			return false
		}
	}
	return true
}
