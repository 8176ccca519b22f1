package model

// VerdictSource identifies which classifier produced a language verdict.
//
// Design decision: We tag verdicts with their source rather than forcing
// remote probabilities and heuristic scores onto one numeric scale because
// the two have different reliability guarantees. Consumers must interpret
// Confidence together with Source; the gap evaluator applies a separate
// threshold per source.
type VerdictSource string

const (
	// SourceRemote marks verdicts produced by the remote language
	// detection service. Confidence is the service's probability score.
	SourceRemote VerdictSource = "remote"

	// SourceHeuristic marks verdicts produced by the local fallback
	// classifier. Confidence is a heuristic score and is generally less
	// trustworthy than a remote probability of the same magnitude.
	SourceHeuristic VerdictSource = "heuristic"
)

// LanguageVerdict is the result of classifying one snippet.
// Exactly one verdict is produced per snippet per run.
type LanguageVerdict struct {
	// Language is the detected dominant language as an ISO 639-1 code
	// (e.g., "en", "fr").
	Language string `json:"language"`

	// Confidence is the classifier's confidence in [0, 1].
	Confidence float64 `json:"confidence"`

	// Source identifies the classifier that produced this verdict.
	Source VerdictSource `json:"source"`

	// FallbackReason records why the remote path failed when a heuristic
	// verdict substituted for a remote one. Empty for verdicts that took
	// their intended path.
	FallbackReason string `json:"fallback_reason,omitempty"`
}

// Valid reports whether the verdict is well-formed: a non-empty language
// code and a confidence within [0, 1].
func (v LanguageVerdict) Valid() bool {
	return v.Language != "" && v.Confidence >= 0 && v.Confidence <= 1
}
