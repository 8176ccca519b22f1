package model

import (
	"sort"
	"time"
)

// SessionReport is the aggregate result of one scan session.
// It is created at run start, filled incrementally by the aggregator, and
// frozen when the traversal ends. Report writers consume the frozen value.
//
// Design decision: We keep a single flat struct rather than nested
// sub-reports because every writer (HTML, CSV, JSON, Markdown, SQLite)
// needs the same fields and a flat shape serializes cleanly.
type SessionReport struct {
	// TargetLanguage is the language the UI is expected to display.
	TargetLanguage string `json:"target_language"`

	// ForeignLanguage is the untranslated language being searched for.
	ForeignLanguage string `json:"foreign_language"`

	// StartedAt is when the scan session began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the session was finalized.
	FinishedAt time.Time `json:"finished_at"`

	// Gaps is the ordered list of unique findings, sorted by first-seen
	// traversal order.
	Gaps []Gap `json:"gaps"`

	// === Summary statistics ===

	// SnippetsScanned is the number of snippets that entered classification.
	SnippetsScanned int `json:"snippets_scanned"`

	// SnippetsDropped is the number of raw text nodes discarded by the
	// normalizer (empty, too short, ignored, code-like, or invalid).
	SnippetsDropped int `json:"snippets_dropped"`

	// RemoteVerdicts counts verdicts produced by the remote classifier.
	RemoteVerdicts int `json:"remote_verdicts"`

	// HeuristicVerdicts counts verdicts produced by the local fallback.
	// A fully offline run has HeuristicVerdicts == SnippetsScanned.
	HeuristicVerdicts int `json:"heuristic_verdicts"`

	// TargetLanguageCount counts snippets detected as the target language.
	TargetLanguageCount int `json:"target_language_count"`

	// OtherLanguageCount counts snippets detected as neither the target
	// nor the foreign language. These never become gaps but are counted
	// so coverage is visible.
	OtherLanguageCount int `json:"other_language_count"`

	// GapsByPage maps location labels to the number of unique gaps found
	// there.
	GapsByPage map[string]int `json:"gaps_by_page,omitempty"`

	// GapRate is unique gaps divided by snippets scanned, in [0, 1].
	GapRate float64 `json:"gap_rate"`

	// AverageConfidence is the mean confidence across all gaps.
	AverageConfidence float64 `json:"average_confidence"`

	// Cancelled is true if the traversal was aborted before completion.
	// The report still contains every gap recorded up to that point.
	Cancelled bool `json:"cancelled"`
}

// Row is the flat, writer-friendly representation of one gap.
// Field order matches the CSV column order.
type Row struct {
	// Page is the location label ("Page" or "Page > Modal").
	Page string `json:"page"`

	// Element is the UI element hint.
	Element string `json:"element"`

	// Text is the offending snippet text.
	Text string `json:"text"`

	// Language is the detected language code.
	Language string `json:"language"`

	// Confidence is the classification confidence in [0, 1].
	Confidence float64 `json:"confidence"`

	// Source is the verdict source ("remote" or "heuristic").
	Source string `json:"source"`
}

// TotalGaps returns the number of unique gaps in the report.
func (r *SessionReport) TotalGaps() int {
	return len(r.Gaps)
}

// HighConfidenceGaps returns the number of gaps with confidence >= 0.8.
func (r *SessionReport) HighConfidenceGaps() int {
	n := 0
	for _, g := range r.Gaps {
		if g.Bucket >= BucketHigh {
			n++
		}
	}
	return n
}

// BucketCounts returns gap counts keyed by confidence bucket.
func (r *SessionReport) BucketCounts() map[ConfidenceBucket]int {
	counts := make(map[ConfidenceBucket]int, 4)
	for _, g := range r.Gaps {
		counts[g.Bucket]++
	}
	return counts
}

// Rows returns the gaps as flat rows sorted by confidence descending,
// ties broken by traversal order. This is the representation consumed by
// the CSV and HTML writers.
func (r *SessionReport) Rows() []Row {
	gaps := make([]Gap, len(r.Gaps))
	copy(gaps, r.Gaps)
	sort.SliceStable(gaps, func(i, j int) bool {
		if gaps[i].Confidence != gaps[j].Confidence {
			return gaps[i].Confidence > gaps[j].Confidence
		}
		return gaps[i].Seq < gaps[j].Seq
	})

	rows := make([]Row, 0, len(gaps))
	for _, g := range gaps {
		rows = append(rows, Row{
			Page:       g.Location.Label(),
			Element:    g.Location.Element,
			Text:       g.Text,
			Language:   g.Language,
			Confidence: g.Confidence,
			Source:     string(g.Source),
		})
	}
	return rows
}
