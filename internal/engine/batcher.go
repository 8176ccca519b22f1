package engine

import "github.com/locascan/locascan/internal/model"

// Default batch limits. The defaults follow common language detection
// service quotas: a bounded item count per call and a bounded payload
// size, whichever is reached first.
const (
	// DefaultBatchItems is the maximum number of snippets per batch.
	DefaultBatchItems = 25

	// DefaultBatchChars is the maximum total character length per batch.
	DefaultBatchChars = 4000
)

// Batch is an ephemeral group of snippets submitted together to the
// remote classifier. It exists only for the duration of one call.
type Batch struct {
	// Snippets are the batch members in traversal order.
	Snippets []*model.Snippet
}

// Texts returns the normalized text of each snippet in order.
func (b Batch) Texts() []string {
	texts := make([]string, len(b.Snippets))
	for i, s := range b.Snippets {
		texts[i] = s.Text
	}
	return texts
}

// Len returns the number of snippets in the batch.
func (b Batch) Len() int {
	return len(b.Snippets)
}

// Batcher groups an incoming snippet stream into batches bounded by item
// count and total character length. It holds at most one partial batch at
// a time and never buffers the whole run.
//
// Ordering: snippets are never reordered, within a batch or across
// batches, so findings can be traced back to traversal order.
type Batcher struct {
	maxItems int
	maxChars int

	current []*model.Snippet
	chars   int
}

// NewBatcher creates a Batcher with the given limits.
// Non-positive limits fall back to the defaults.
func NewBatcher(maxItems, maxChars int) *Batcher {
	if maxItems <= 0 {
		maxItems = DefaultBatchItems
	}
	if maxChars <= 0 {
		maxChars = DefaultBatchChars
	}
	return &Batcher{
		maxItems: maxItems,
		maxChars: maxChars,
	}
}

// Add appends a snippet to the current batch and returns a completed
// batch when a limit trips.
//
// A snippet that would push the current batch past the character limit
// closes the current batch first and starts the next one, so a single
// oversized snippet travels in its own batch rather than splitting. At
// most one batch is emitted per call: the character pre-check only fires
// when the current batch is non-empty, which cannot happen when the item
// limit is 1.
func (b *Batcher) Add(s *model.Snippet) (Batch, bool) {
	var out Batch
	emitted := false

	if len(b.current) > 0 && b.chars+len(s.Text) > b.maxChars {
		out = b.take()
		emitted = true
	}

	b.current = append(b.current, s)
	b.chars += len(s.Text)

	if !emitted && (len(b.current) >= b.maxItems || b.chars >= b.maxChars) {
		return b.take(), true
	}

	return out, emitted
}

// Flush returns the pending partial batch, if any.
// Called once when the traversal source is exhausted.
func (b *Batcher) Flush() (Batch, bool) {
	if len(b.current) == 0 {
		return Batch{}, false
	}
	return b.take(), true
}

// take hands off the current batch and resets the accumulator.
func (b *Batcher) take() Batch {
	out := Batch{Snippets: b.current}
	b.current = nil
	b.chars = 0
	return out
}
