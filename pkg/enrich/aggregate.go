package enrich

import (
	"context"

	"github.com/OFFIS-RIT/enricher/pkg/age"
	"github.com/OFFIS-RIT/enricher/pkg/common"
)

// AgeEntityType is the entity type whose span is resolved into a numeric age.
const AgeEntityType = "AGE"

// Aggregator derives an EnrichmentResult from one extraction document.
type Aggregator struct {
	ages age.Resolver
}

// NewAggregator creates an Aggregator. A nil resolver leaves every age at 0.
func NewAggregator(ages age.Resolver) *Aggregator {
	return &Aggregator{ages: ages}
}

// Aggregate walks the entities and relations of doc in order. Entity types
// are kept with duplicates. Each AGE entity is resolved and overwrites the
// previous age, so the last AGE mention wins. Spans are cut from text, the
// source document; an out of range span fails with ErrInvalidSpan.
func (a *Aggregator) Aggregate(
	ctx context.Context,
	doc common.ExtractionDocument,
	text string,
) (common.EnrichmentResult, error) {
	res := common.EmptyEnrichment()

	for _, entity := range doc.Entities {
		res.EntityTypes = append(res.EntityTypes, entity.EntityType)

		if entity.EntityType == AgeEntityType {
			span, err := ExtractSpan(text, entity.StartOffset, entity.EndOffset)
			if err != nil {
				return common.EnrichmentResult{}, err
			}
			res.Age = a.resolveAge(ctx, span)
		}

		if entity.LinkedConcepts != nil {
			concept, ok, err := FormatConcept(entity, text)
			if err != nil {
				return common.EnrichmentResult{}, err
			}
			if ok {
				res.Concepts = append(res.Concepts, concept)
			}
		}
	}

	for _, rel := range doc.Relations {
		if rel.RelationType != nil {
			res.Relations = append(res.Relations, *rel.RelationType)
		}
	}

	return res, nil
}

func (a *Aggregator) resolveAge(ctx context.Context, span string) int {
	if a.ages == nil {
		return 0
	}
	return a.ages.Resolve(ctx, span)
}
