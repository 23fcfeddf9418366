// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package page

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/pdiddy/semantic-browser/pkg/types"
)

const (
	previewLength    = 280
	maxQueryMatches  = 10
	maxExcerptLength = 200
)

// Extract parses HTML and builds a SemanticSnapshot. finalURL records where
// the content came from; query, when non-empty, produces scored text matches.
func Extract(rawHTML, finalURL, query string) (*types.SemanticSnapshot, error) {
	if err := ValidateHTML(rawHTML, 0); err != nil {
		return nil, err
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	snap := &types.SemanticSnapshot{
		FinalURL:    finalURL,
		OpenGraph:   map[string]string{},
		TwitterCard: map[string]string{},
	}

	var textBlocks []textBlock
	walk(doc, snap, &textBlocks)

	fullText := joinBlocks(textBlocks)
	snap.TextLength = len([]rune(fullText))
	snap.TextPreview = truncateRunes(fullText, previewLength)

	if query != "" {
		snap.QueryMatches = matchQuery(textBlocks, query)
	}

	if len(snap.OpenGraph) == 0 {
		snap.OpenGraph = nil
	}
	if len(snap.TwitterCard) == 0 {
		snap.TwitterCard = nil
	}

	return snap, nil
}

// Text parses HTML and returns the text of each block-level element in
// document order. Entity extraction chunks these blocks for the AI backend.
func Text(rawHTML string) ([]string, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	snap := &types.SemanticSnapshot{
		OpenGraph:   map[string]string{},
		TwitterCard: map[string]string{},
	}
	var blocks []textBlock
	walk(doc, snap, &blocks)

	texts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		texts = append(texts, b.text)
	}
	return texts, nil
}

// textBlock is the text content of one block-level element, kept separate
// so query matching can attribute excerpts to their element.
type textBlock struct {
	element string
	text    string
}

func walk(n *html.Node, snap *types.SemanticSnapshot, blocks *[]textBlock) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Html:
			if lang := attr(n, "lang"); lang != "" {
				snap.Language = lang
			}
		case atom.Title:
			if snap.Title == "" {
				snap.Title = strings.TrimSpace(nodeText(n))
			}
		case atom.Meta:
			readMeta(n, snap)
		case atom.Link:
			if strings.EqualFold(attr(n, "rel"), "canonical") {
				snap.CanonicalURL = attr(n, "href")
			}
		case atom.Script:
			if strings.EqualFold(attr(n, "type"), "application/ld+json") {
				var v any
				if err := json.Unmarshal([]byte(nodeText(n)), &v); err == nil {
					snap.JSONLDCount++
				}
			}
			return // never descend into script bodies
		case atom.Style:
			return
		}

		if hasAttr(n, "itemscope") {
			snap.Microdata = append(snap.Microdata, readMicrodata(n))
		}

		if isBlockElement(n.DataAtom) {
			if text := strings.TrimSpace(collapseSpace(nodeText(n))); text != "" {
				*blocks = append(*blocks, textBlock{element: n.Data, text: text})
			}
			return // text already collected for the whole block
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, snap, blocks)
	}
}

// readMeta routes one <meta> element into the snapshot: description and
// keywords by name, og:* by property, twitter:* by name.
func readMeta(n *html.Node, snap *types.SemanticSnapshot) {
	content := attr(n, "content")
	if content == "" {
		return
	}

	switch name := strings.ToLower(attr(n, "name")); {
	case name == "description":
		snap.Description = content
	case name == "keywords":
		for _, kw := range strings.Split(content, ",") {
			if kw = strings.TrimSpace(kw); kw != "" {
				snap.Keywords = append(snap.Keywords, kw)
			}
		}
	case strings.HasPrefix(name, "twitter:"):
		snap.TwitterCard[strings.TrimPrefix(name, "twitter:")] = content
	}

	if prop := strings.ToLower(attr(n, "property")); strings.HasPrefix(prop, "og:") {
		snap.OpenGraph[strings.TrimPrefix(prop, "og:")] = content
	}
}

// readMicrodata summarizes one itemscope element: its itemtype and the
// itemprop values of its descendants.
func readMicrodata(n *html.Node) types.MicrodataItem {
	item := types.MicrodataItem{
		ItemType:   attr(n, "itemtype"),
		Properties: map[string][]string{},
	}

	var collect func(*html.Node)
	collect = func(c *html.Node) {
		if c.Type == html.ElementNode {
			if prop := attr(c, "itemprop"); prop != "" {
				value := attr(c, "content")
				if value == "" {
					value = strings.TrimSpace(collapseSpace(nodeText(c)))
				}
				item.Properties[prop] = append(item.Properties[prop], value)
			}
		}
		for gc := c.FirstChild; gc != nil; gc = gc.NextSibling {
			collect(gc)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collect(c)
	}

	return item
}

// matchQuery scores each text block by token coverage of the query and
// returns the best matches. A block matching all query tokens scores 1.0.
func matchQuery(blocks []textBlock, query string) []types.QueryMatch {
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return nil
	}

	var matches []types.QueryMatch
	for _, b := range blocks {
		lower := strings.ToLower(b.text)
		hit := 0
		for _, tok := range tokens {
			if strings.Contains(lower, tok) {
				hit++
			}
		}
		if hit == 0 {
			continue
		}
		matches = append(matches, types.QueryMatch{
			Excerpt: truncateRunes(b.text, maxExcerptLength),
			Element: b.element,
			Score:   float64(hit) / float64(len(tokens)),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > maxQueryMatches {
		matches = matches[:maxQueryMatches]
	}
	return matches
}

func tokenize(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	var tokens []string
	for _, f := range fields {
		f = strings.Trim(f, ".,;:!?\"'()[]")
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func isBlockElement(a atom.Atom) bool {
	switch a {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.P, atom.Li, atom.Td, atom.Th, atom.Blockquote, atom.Pre, atom.Figcaption:
		return true
	}
	return false
}

// nodeText concatenates all text nodes under n, skipping script and style.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var rec func(*html.Node)
	rec = func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
			return
		}
		if c.Type == html.ElementNode && (c.DataAtom == atom.Script || c.DataAtom == atom.Style) {
			return
		}
		for gc := c.FirstChild; gc != nil; gc = gc.NextSibling {
			rec(gc)
		}
	}
	rec(n)
	return b.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func joinBlocks(blocks []textBlock) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		parts = append(parts, b.text)
	}
	return strings.Join(parts, "\n")
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}
