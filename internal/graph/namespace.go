// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import "strings"

// namespaces maps well-known prefixes to their base IRIs. The set follows
// the vocabularies the snapshot mapping emits: Open Graph, Twitter Cards,
// schema.org, Dublin Core, and the RDF/RDFS/XSD core.
var namespaces = map[string]string{
	"og":      "http://ogp.me/ns#",
	"twitter": "https://dev.twitter.com/cards/markup#",
	"schema":  "https://schema.org/",
	"dcterms": "http://purl.org/dc/terms/",
	"rdf":     "http://www.w3.org/1999/02/22-rdf-syntax-ns#",
	"rdfs":    "http://www.w3.org/2000/01/rdf-schema#",
	"xsd":     "http://www.w3.org/2001/XMLSchema#",
	"foaf":    "http://xmlns.com/foaf/0.1/",
	"ex":      "https://semantic-browser.dev/ns#",
}

// Frequently used expanded IRIs.
var (
	iriRDFType       = ExpandNamespace("rdf:type")
	iriSubClassOf    = ExpandNamespace("rdfs:subClassOf")
	iriSubPropertyOf = ExpandNamespace("rdfs:subPropertyOf")
)

// ExpandNamespace rewrites a prefixed name (og:title) to its full IRI
// (http://ogp.me/ns#title). Inputs without a known prefix, full IRIs, and
// plain strings come back unchanged.
func ExpandNamespace(name string) string {
	prefix, local, ok := strings.Cut(name, ":")
	if !ok {
		return name
	}

	// Full IRIs pass through: "https://..." cuts at the scheme.
	base, known := namespaces[prefix]
	if !known {
		return name
	}
	return base + local
}
