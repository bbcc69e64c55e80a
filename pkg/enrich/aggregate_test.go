package enrich

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/OFFIS-RIT/enricher/pkg/common"
)

type stubAges struct {
	ages  map[string]int
	calls []string
}

func (s *stubAges) Resolve(_ context.Context, text string) int {
	s.calls = append(s.calls, text)
	return s.ages[text]
}

func TestAggregate_LastAgeWins(t *testing.T) {
	const text = "5 years ago, now 10 years old"
	ages := &stubAges{ages: map[string]int{"5 years": 5, "10 years old": 10}}
	doc := common.ExtractionDocument{
		Entities: []common.Entity{
			{StartOffset: 0, EndOffset: 7, EntityType: AgeEntityType},
			{StartOffset: 17, EndOffset: 29, EntityType: AgeEntityType},
		},
	}

	res, err := NewAggregator(ages).Aggregate(context.Background(), doc, text)
	if err != nil {
		t.Fatalf("Aggregate() unexpected error: %v", err)
	}
	if res.Age != 10 {
		t.Fatalf("Aggregate() age = %d, want 10", res.Age)
	}
	if !slices.Equal(ages.calls, []string{"5 years", "10 years old"}) {
		t.Fatalf("resolver calls = %q, want one call per AGE entity in order", ages.calls)
	}
	if !slices.Equal(res.EntityTypes, []string{"AGE", "AGE"}) {
		t.Fatalf("Aggregate() entityTypes = %q, want duplicates kept", res.EntityTypes)
	}
}

func TestAggregate_NullArrays(t *testing.T) {
	res, err := NewAggregator(&stubAges{}).Aggregate(context.Background(), common.ExtractionDocument{}, "anything")
	if err != nil {
		t.Fatalf("Aggregate() unexpected error: %v", err)
	}
	if res.EntityTypes == nil || res.Concepts == nil || res.Relations == nil {
		t.Fatalf("Aggregate() returned nil lists: %+v", res)
	}
	if len(res.EntityTypes) != 0 || len(res.Concepts) != 0 || len(res.Relations) != 0 || res.Age != 0 {
		t.Fatalf("Aggregate() = %+v, want empty enrichment", res)
	}
}

func TestAggregate_FullDocument(t *testing.T) {
	const text = "45 year old man with diabetes treated with metformin."
	ages := &stubAges{ages: map[string]int{"45 year old": 45}}
	doc := common.ExtractionDocument{
		Entities: []common.Entity{
			{StartOffset: 0, EndOffset: 11, EntityType: "AGE"},
			{StartOffset: 12, EndOffset: 15, EntityType: "GENDER", LinkedConcepts: []common.LinkedConcept{}},
			{
				StartOffset: 21, EndOffset: 29, EntityType: "DIAGNOSIS",
				LinkedConcepts: []common.LinkedConcept{
					{SourceTag: "MSH", ConceptID: strPtr("D003920")},
					{SourceTag: "UMLS", ConceptID: strPtr("C0011849")},
				},
			},
			{
				StartOffset: 43, EndOffset: 52, EntityType: "MEDICATION_NAME",
				LinkedConcepts: []common.LinkedConcept{{SourceTag: "UMLS", ConceptID: strPtr("C0025598")}},
			},
		},
		Relations: []common.Relation{
			{RelationType: strPtr("TimeOfCondition")},
			{},
			{RelationType: strPtr("DosageOfMedication")},
		},
	}

	res, err := NewAggregator(ages).Aggregate(context.Background(), doc, text)
	if err != nil {
		t.Fatalf("Aggregate() unexpected error: %v", err)
	}
	if res.Age != 45 {
		t.Fatalf("Aggregate() age = %d, want 45", res.Age)
	}
	wantTypes := []string{"AGE", "GENDER", "DIAGNOSIS", "MEDICATION_NAME"}
	if !slices.Equal(res.EntityTypes, wantTypes) {
		t.Fatalf("Aggregate() entityTypes = %q, want %q", res.EntityTypes, wantTypes)
	}
	wantConcepts := []string{"UMLS C0011849 (diabetes)", "UMLS C0025598 (metformin)"}
	if !slices.Equal(res.Concepts, wantConcepts) {
		t.Fatalf("Aggregate() concepts = %q, want %q", res.Concepts, wantConcepts)
	}
	wantRelations := []string{"TimeOfCondition", "DosageOfMedication"}
	if !slices.Equal(res.Relations, wantRelations) {
		t.Fatalf("Aggregate() relations = %q, want %q", res.Relations, wantRelations)
	}
}

func TestAggregate_AgeSpanOutOfRange(t *testing.T) {
	ages := &stubAges{}
	doc := common.ExtractionDocument{
		Entities: []common.Entity{{StartOffset: 2, EndOffset: 40, EntityType: AgeEntityType}},
	}
	_, err := NewAggregator(ages).Aggregate(context.Background(), doc, "short")
	if !errors.Is(err, ErrInvalidSpan) {
		t.Fatalf("Aggregate() error = %v, want ErrInvalidSpan", err)
	}
	if len(ages.calls) != 0 {
		t.Fatalf("resolver called %d times for an invalid span", len(ages.calls))
	}
}

func TestAggregate_NilResolver(t *testing.T) {
	doc := common.ExtractionDocument{
		Entities: []common.Entity{{StartOffset: 0, EndOffset: 2, EntityType: AgeEntityType}},
	}
	res, err := NewAggregator(nil).Aggregate(context.Background(), doc, "45 years")
	if err != nil {
		t.Fatalf("Aggregate() unexpected error: %v", err)
	}
	if res.Age != 0 {
		t.Fatalf("Aggregate() age = %d, want 0 without resolver", res.Age)
	}
}
