package engine

import "errors"

// Pipeline errors.
//
// Design decision: We use package-level sentinel errors so callers can
// distinguish programmer errors (aggregator misuse) from per-item
// validation failures with errors.Is().
var (
	// ErrAggregatorFinalized is returned when Record or ObserveVerdict is
	// called after Finalize. This is a programmer error in the pipeline
	// wiring, not a recoverable runtime condition.
	ErrAggregatorFinalized = errors.New("aggregator already finalized")

	// ErrInvalidLocation is returned by the normalizer for text nodes
	// without a page name. The offending item is dropped; the run
	// continues.
	ErrInvalidLocation = errors.New("text node has no page name")
)
