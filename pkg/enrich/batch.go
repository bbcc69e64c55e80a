package enrich

import (
	"context"
	"errors"
	"fmt"

	"github.com/OFFIS-RIT/enricher/pkg/age"
	"github.com/OFFIS-RIT/enricher/pkg/common"
	"github.com/OFFIS-RIT/enricher/pkg/extractor"
	"github.com/OFFIS-RIT/enricher/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// Processor enriches a batch of records, isolating failures per record.
//
// A Processor should be created using NewProcessor.
type Processor struct {
	extractor       extractor.EntityExtractor
	aggregator      *Aggregator
	parallelRecords int
}

// NewProcessorParams defines the collaborators and limits of a Processor.
//
// Extractor is required. AgeResolver may be nil, in which case every age is 0.
// ParallelRecords caps how many records are in flight at once and defaults
// to 1, which processes records strictly one after another.
type NewProcessorParams struct {
	Extractor       extractor.EntityExtractor
	AgeResolver     age.Resolver
	ParallelRecords int
}

// NewProcessor creates a Processor from params.
func NewProcessor(params NewProcessorParams) (*Processor, error) {
	if params.Extractor == nil {
		return nil, errors.New("extractor is required")
	}
	parallel := params.ParallelRecords
	if parallel <= 0 {
		parallel = 1
	}
	return &Processor{
		extractor:       params.Extractor,
		aggregator:      NewAggregator(params.AgeResolver),
		parallelRecords: parallel,
	}, nil
}

type recordResult struct {
	data     common.EnrichmentResult
	warnings []common.Message
	err      error
}

func (r recordResult) output(id string) common.OutputRecord {
	if r.err != nil {
		return common.OutputRecord{
			RecordID: id,
			Errors:   []common.Message{{Message: r.err.Error()}},
		}
	}
	data := r.data
	return common.OutputRecord{
		RecordID: id,
		Data:     &data,
		Warnings: r.warnings,
	}
}

// Process enriches every record of batch and returns one output per record
// with a non-nil id, in input order. Records that are nil or have no id are
// dropped. Per-record failures end up in that record's errors; only a
// missing batch or values list (ErrMalformedBatch) or a cancelled ctx fail
// the whole call.
func (p *Processor) Process(
	ctx context.Context,
	batch *common.Batch[*common.InputRecord],
) (*common.Batch[common.OutputRecord], error) {
	if batch == nil || batch.Values == nil {
		return nil, fmt.Errorf("%w: no values list", ErrMalformedBatch)
	}

	slots := make([]*common.OutputRecord, len(batch.Values))

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(p.parallelRecords)

	for i, record := range batch.Values {
		if record == nil || record.RecordID == nil {
			logger.Debug("[Enrich] Skipping record without id", "index", i)
			continue
		}
		eg.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			id := *record.RecordID
			res := p.enrichRecord(gCtx, id, record.Data.Text)
			if res.err != nil {
				logger.Warn("[Enrich] Record failed", "record_id", id, "err", res.err)
			}
			out := res.output(id)
			slots[i] = &out
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	values := make([]common.OutputRecord, 0, len(slots))
	for _, out := range slots {
		if out != nil {
			values = append(values, *out)
		}
	}
	return &common.Batch[common.OutputRecord]{Values: values}, nil
}

func (p *Processor) enrichRecord(ctx context.Context, id string, text string) recordResult {
	docs, err := p.extractor.Extract(ctx, common.Document{ID: id, Text: text})
	if err != nil {
		return recordResult{err: err}
	}
	if docs == nil {
		return recordResult{data: common.EmptyEnrichment()}
	}
	if len(docs) == 0 {
		return recordResult{err: fmt.Errorf("%w: extractor returned no documents", ErrExtractionFailure)}
	}

	doc := docs[0]
	data, err := p.aggregator.Aggregate(ctx, doc, text)
	if err != nil {
		return recordResult{err: err}
	}
	return recordResult{data: data, warnings: doc.Warnings}
}
