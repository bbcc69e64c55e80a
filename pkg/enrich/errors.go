package enrich

import "errors"

var (
	// ErrMalformedBatch means the batch envelope itself is unusable. It is
	// the only error that fails a whole request.
	ErrMalformedBatch = errors.New("malformed batch")
	// ErrInvalidSpan means an entity span lies outside the document text.
	ErrInvalidSpan = errors.New("invalid span")
	// ErrExtractionFailure means the extractor call failed or returned an
	// unusable payload.
	ErrExtractionFailure = errors.New("extraction failure")
)
