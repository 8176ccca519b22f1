package engine

import "github.com/locascan/locascan/internal/model"

// Default confidence thresholds for the gap policy.
//
// Design decision: The heuristic default is higher than the remote one
// because heuristic scores are less trustworthy than remote probabilities
// of the same magnitude. Fallback mode intentionally trades recall for
// fewer false positives.
const (
	// DefaultRemoteThreshold is the minimum remote confidence for a gap.
	DefaultRemoteThreshold = 0.8

	// DefaultHeuristicThreshold is the minimum heuristic confidence for
	// a gap.
	DefaultHeuristicThreshold = 0.85
)

// Evaluator applies the gap policy to classified snippets.
//
// Policy: a gap is emitted if and only if the detected language equals
// the configured foreign language and the confidence meets the threshold
// for the verdict's source (inclusive bound). Snippets detected as the
// target language or any third language are never gaps; this tool flags
// the specific foreign-language leak, not all non-target text.
type Evaluator struct {
	// foreign is the language gaps are expected to leak from.
	foreign string

	// remoteThreshold is the minimum confidence for remote verdicts.
	remoteThreshold float64

	// heuristicThreshold is the minimum confidence for heuristic verdicts.
	heuristicThreshold float64
}

// NewEvaluator creates an evaluator for the given foreign language.
// Thresholds outside (0, 1] fall back to the defaults.
func NewEvaluator(foreign string, remoteThreshold, heuristicThreshold float64) *Evaluator {
	if remoteThreshold <= 0 || remoteThreshold > 1 {
		remoteThreshold = DefaultRemoteThreshold
	}
	if heuristicThreshold <= 0 || heuristicThreshold > 1 {
		heuristicThreshold = DefaultHeuristicThreshold
	}
	return &Evaluator{
		foreign:            foreign,
		remoteThreshold:    remoteThreshold,
		heuristicThreshold: heuristicThreshold,
	}
}

// Threshold returns the confidence threshold for a verdict source.
func (e *Evaluator) Threshold(source model.VerdictSource) float64 {
	if source == model.SourceHeuristic {
		return e.heuristicThreshold
	}
	return e.remoteThreshold
}

// Evaluate decides whether a classified snippet is a localization gap.
func (e *Evaluator) Evaluate(s *model.Snippet, v model.LanguageVerdict) (model.Gap, bool) {
	if v.Language != e.foreign {
		return model.Gap{}, false
	}
	if v.Confidence < e.Threshold(v.Source) {
		return model.Gap{}, false
	}
	return model.NewGap(s, v), true
}
