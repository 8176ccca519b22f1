// Package engine implements the localization gap detection pipeline.
// It normalizes raw text collected from UI surfaces, groups snippets into
// size-bounded batches, classifies them with a remote service and a local
// heuristic fallback, applies the gap policy, and aggregates unique
// findings into a session report.
//
// Data flow: Normalizer -> Batcher -> classifier -> Evaluator -> Aggregator.
// A single traversal goroutine produces snippets; classification of
// independent batches runs concurrently up to a bounded limit. The
// aggregator is the only state shared across the run.
package engine
