package extractor

import (
	"context"

	"github.com/OFFIS-RIT/enricher/pkg/common"
)

// EntityExtractor sends a single document to an entity extraction service.
//
// Extract returns the service's documents array as received. A nil slice
// means the service answered with null; callers only consult element 0.
type EntityExtractor interface {
	Extract(ctx context.Context, doc common.Document) ([]common.ExtractionDocument, error)
}
