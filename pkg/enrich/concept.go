package enrich

import (
	"fmt"

	"github.com/OFFIS-RIT/enricher/pkg/common"
)

// ConceptSource is the vocabulary whose links are reported as concepts.
const ConceptSource = "UMLS"

// FormatConcept renders the first UMLS link of entity as
// "UMLS <id> (<span text>)". The boolean is false when the entity carries
// no usable UMLS link.
func FormatConcept(entity common.Entity, text string) (string, bool, error) {
	for _, link := range entity.LinkedConcepts {
		if link.SourceTag != ConceptSource || link.ConceptID == nil || *link.ConceptID == "" {
			continue
		}
		span, err := ExtractSpan(text, entity.StartOffset, entity.EndOffset)
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("%s %s (%s)", ConceptSource, *link.ConceptID, span), true, nil
	}
	return "", false, nil
}
