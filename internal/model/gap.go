package model

import "strings"

// ConfidenceBucket groups gap confidence scores into the ranges used
// by report summaries and charts.
//
// Design decision: We use iota-based constants rather than string
// constants for efficient comparison and sorting. The String() method
// provides the human-readable range label.
type ConfidenceBucket int

const (
	// BucketLow is confidence below 0.70.
	BucketLow ConfidenceBucket = iota

	// BucketMedium is confidence in [0.70, 0.80).
	BucketMedium

	// BucketHigh is confidence in [0.80, 0.90).
	BucketHigh

	// BucketVeryHigh is confidence in [0.90, 1.00].
	BucketVeryHigh
)

// String returns the percentage range label for the bucket.
func (b ConfidenceBucket) String() string {
	switch b {
	case BucketVeryHigh:
		return "90-100%"
	case BucketHigh:
		return "80-90%"
	case BucketMedium:
		return "70-80%"
	case BucketLow:
		return "<70%"
	default:
		return "UNKNOWN"
	}
}

// BucketFor returns the confidence bucket for a score in [0, 1].
func BucketFor(confidence float64) ConfidenceBucket {
	switch {
	case confidence >= 0.9:
		return BucketVeryHigh
	case confidence >= 0.8:
		return BucketHigh
	case confidence >= 0.7:
		return BucketMedium
	default:
		return BucketLow
	}
}

// Gap is a localization gap finding: a UI text snippet believed to be in
// the wrong (foreign) language for its locale context.
//
// Gaps are created by the evaluator only when the gap policy triggers and
// are never mutated after creation except by the aggregator's duplicate
// merge, which may raise confidence and move the first-seen location.
type Gap struct {
	// Location is where the gap was found.
	Location Location `json:"location"`

	// Text is the offending snippet text with original casing.
	Text string `json:"text"`

	// Language is the detected language code (the foreign language).
	Language string `json:"language"`

	// Confidence is the classification confidence in [0, 1]. After a
	// duplicate merge this is the maximum across merged occurrences.
	Confidence float64 `json:"confidence"`

	// Source identifies the classifier that produced the verdict.
	Source VerdictSource `json:"source"`

	// Bucket is the confidence bucket derived from Confidence.
	Bucket ConfidenceBucket `json:"bucket"`

	// BucketText is the human-readable bucket label for serialization.
	BucketText string `json:"bucket_text"`

	// Seq is the traversal sequence index of the first occurrence.
	// First-occurrence resolution uses this index, not arrival time, so
	// results are reproducible under concurrent batch completion.
	Seq int `json:"seq"`
}

// NewGap creates a gap from a snippet and its verdict.
func NewGap(s *Snippet, v LanguageVerdict) Gap {
	bucket := BucketFor(v.Confidence)
	return Gap{
		Location:   s.Location,
		Text:       s.Text,
		Language:   v.Language,
		Confidence: v.Confidence,
		Source:     v.Source,
		Bucket:     bucket,
		BucketText: bucket.String(),
		Seq:        s.Seq,
	}
}

// DedupKey returns the deduplication key: location plus lowercased text.
// The aggregator never holds two gaps with the same key.
func (g *Gap) DedupKey() string {
	return g.Location.Key() + "\x00" + strings.ToLower(g.Text)
}

// Merge folds a duplicate occurrence into this gap.
// Confidence becomes the maximum of the two, and the occurrence with the
// smaller sequence index supplies the location label and index.
func (g *Gap) Merge(other Gap) {
	if other.Confidence > g.Confidence {
		g.Confidence = other.Confidence
		g.Source = other.Source
		g.Language = other.Language
		g.Bucket = BucketFor(g.Confidence)
		g.BucketText = g.Bucket.String()
	}
	if other.Seq < g.Seq {
		g.Seq = other.Seq
		g.Location = other.Location
		g.Text = other.Text
	}
}
