// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Page is a fetched web page before semantic extraction.
type Page struct {
	// URL is the originally requested address.
	URL string `json:"url" yaml:"url"`

	// FinalURL is the address after following redirects.
	FinalURL string `json:"final_url" yaml:"final_url"`

	// StatusCode is the HTTP status of the final response.
	StatusCode int `json:"status_code" yaml:"status_code"`

	// HTML is the raw page body.
	HTML string `json:"-" yaml:"-"`

	// ContentLength is the byte length of the downloaded body.
	ContentLength int `json:"content_length" yaml:"content_length"`

	// FetchTime is how long the download took.
	FetchTime time.Duration `json:"fetch_time" yaml:"fetch_time"`

	// FetchedAt is when the download completed.
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`
}

// MicrodataItem is one itemscope element with its itemprop values.
type MicrodataItem struct {
	// ItemType is the itemtype attribute (e.g. "https://schema.org/Person").
	ItemType string `json:"item_type" yaml:"item_type"`

	// Properties maps itemprop names to their text values.
	Properties map[string][]string `json:"properties" yaml:"properties"`
}

// QueryMatch is a text excerpt that satisfied a user query against page content.
type QueryMatch struct {
	// Excerpt is the matching text fragment.
	Excerpt string `json:"excerpt" yaml:"excerpt"`

	// Element names the HTML element context (e.g. "h1", "p").
	Element string `json:"element" yaml:"element"`

	// Score is the token-coverage match score in [0.0, 1.0].
	Score float64 `json:"score" yaml:"score"`
}

// SemanticSnapshot is the structured semantic information extracted from a page.
type SemanticSnapshot struct {
	// Title is the page <title>, if any.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Description is the meta description, if any.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Language is the declared page language (html lang attribute).
	Language string `json:"language,omitempty" yaml:"language,omitempty"`

	// CanonicalURL is the rel=canonical link target, if declared.
	CanonicalURL string `json:"canonical_url,omitempty" yaml:"canonical_url,omitempty"`

	// FinalURL is the address the snapshot was taken from.
	FinalURL string `json:"final_url" yaml:"final_url"`

	// Keywords are the meta keywords, split and trimmed.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`

	// OpenGraph maps og: property suffixes to their content values.
	OpenGraph map[string]string `json:"open_graph,omitempty" yaml:"open_graph,omitempty"`

	// TwitterCard maps twitter: name suffixes to their content values.
	TwitterCard map[string]string `json:"twitter_card,omitempty" yaml:"twitter_card,omitempty"`

	// JSONLDCount is the number of parseable ld+json script payloads.
	JSONLDCount int `json:"json_ld_count" yaml:"json_ld_count"`

	// Microdata summarizes itemscope elements found on the page.
	Microdata []MicrodataItem `json:"microdata,omitempty" yaml:"microdata,omitempty"`

	// TextPreview is a short plain-text excerpt for downstream summarization.
	TextPreview string `json:"text_preview" yaml:"text_preview"`

	// TextLength is the total character count of the extracted text content.
	TextLength int `json:"text_length" yaml:"text_length"`

	// QueryMatches are excerpts matching the user query, best first.
	QueryMatches []QueryMatch `json:"query_matches,omitempty" yaml:"query_matches,omitempty"`
}

// BrowseOutcome bundles the fetched page with its semantic snapshot.
type BrowseOutcome struct {
	Page     Page             `json:"page" yaml:"page"`
	Snapshot SemanticSnapshot `json:"snapshot" yaml:"snapshot"`
}
