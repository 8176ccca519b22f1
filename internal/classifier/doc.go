// Package classifier provides language detection for UI text snippets.
// It contains a remote batch classifier backed by an HTTP language
// detection service and a local heuristic fallback that works with zero
// network access. The two produce verdicts tagged with their source so
// downstream consumers can apply source-specific confidence thresholds.
package classifier
