package common

// Batch is the envelope used for both the incoming records and the
// enriched output. A nil Values slice marks a batch without a values list.
type Batch[T any] struct {
	Values []T `json:"values" validate:"required"`
}

// InputRecord is one document submitted for enrichment. RecordID is opaque
// and echoed back unchanged. Records with a nil RecordID are skipped.
type InputRecord struct {
	RecordID *string   `json:"recordId"`
	Data     InputData `json:"data"`
}

// InputData carries the document text of an InputRecord.
type InputData struct {
	Text string `json:"text"`
}

// Document is the single-document payload sent to the entity extractor.
type Document struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// ExtractionRequest wraps the documents of one extractor call. The service
// always sends exactly one document per call.
type ExtractionRequest struct {
	Documents []Document `json:"documents"`
}

// ExtractionDocument is the extractor's result for one document.
//
// Entities and Relations may be null on the wire; both are treated as empty.
type ExtractionDocument struct {
	ID        string     `json:"id"`
	Text      string     `json:"text,omitempty"`
	Entities  []Entity   `json:"entities"`
	Relations []Relation `json:"relations"`
	Warnings  []Message  `json:"warnings,omitempty"`
}

// Entity is a detected span of the document text with a semantic type.
// StartOffset and EndOffset form the half-open rune range [StartOffset, EndOffset).
type Entity struct {
	StartOffset    int             `json:"startOffset"`
	EndOffset      int             `json:"endOffset"`
	Text           string          `json:"text,omitempty"`
	EntityType     string          `json:"entityType"`
	LinkedConcepts []LinkedConcept `json:"linkedConcepts"`
}

// LinkedConcept references an entry of an external vocabulary.
type LinkedConcept struct {
	ConceptID *string `json:"conceptId"`
	SourceTag string  `json:"sourceTag"`
}

// Relation is a detected relationship type between entities.
type Relation struct {
	RelationType *string        `json:"relationType"`
	Entities     []RelationRole `json:"entities,omitempty"`
}

// RelationRole names the role an entity plays inside a relation.
type RelationRole struct {
	Ref  string `json:"ref"`
	Role string `json:"role"`
}

// EnrichmentResult is the normalized summary produced for one record.
type EnrichmentResult struct {
	EntityTypes []string `json:"entityTypes"`
	Concepts    []string `json:"concepts"`
	Relations   []string `json:"relations"`
	Age         int      `json:"age"`
}

// EmptyEnrichment returns a result whose lists serialize as [] instead of null.
func EmptyEnrichment() EnrichmentResult {
	return EnrichmentResult{
		EntityTypes: []string{},
		Concepts:    []string{},
		Relations:   []string{},
	}
}

// Message is a single error or warning attached to an OutputRecord.
type Message struct {
	Message string `json:"message"`
}

// OutputRecord is the enriched result for one InputRecord. Exactly one of
// Data and Errors is set.
type OutputRecord struct {
	RecordID string            `json:"recordId"`
	Data     *EnrichmentResult `json:"data,omitempty"`
	Errors   []Message         `json:"errors,omitempty"`
	Warnings []Message         `json:"warnings,omitempty"`
}
