// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// EntityType categorizes an entity extracted from a page.
type EntityType string

const (
	EntityPerson       EntityType = "person"
	EntityOrganization EntityType = "organization"
	EntityPlace        EntityType = "place"
	EntityProduct      EntityType = "product"
	EntityOther        EntityType = "other"
)

// Entity is a named entity extracted from a page with provenance.
type Entity struct {
	// ID is a stable identifier for this entity, consistent across
	// re-extractions of unchanged content.
	ID string `json:"id" yaml:"id"`

	// Name is the entity's surface form as it appears on the page.
	Name string `json:"name" yaml:"name"`

	// Type categorizes the entity: person, organization, place, product, other.
	Type EntityType `json:"type" yaml:"type"`

	// Mentions counts occurrences of the entity on the page.
	Mentions int `json:"mentions" yaml:"mentions"`

	// Confidence is the backend's certainty about the classification, in [0, 1].
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// SourceURL links the entity back to the page it was extracted from.
	SourceURL string `json:"source_url" yaml:"source_url"`
}

// ExtractionResult holds all entities extracted from one page.
type ExtractionResult struct {
	// PageID is the slug identifying the source page.
	PageID string `json:"page_id" yaml:"page_id"`

	// SourceURL is the page address the entities came from.
	SourceURL string `json:"source_url" yaml:"source_url"`

	// Entities lists the extracted entities.
	Entities []Entity `json:"entities" yaml:"entities"`
}
