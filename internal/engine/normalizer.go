package engine

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/locascan/locascan/internal/model"
)

// DefaultMinSnippetLength is the minimum normalized length for a snippet
// to be worth classifying. Single glyphs and two-character fragments
// carry no usable language signal.
const DefaultMinSnippetLength = 2

// codePatterns match text that is source code or markup rather than UI
// copy. Script fragments and inline templates leak into extracted text on
// some pages and would otherwise be classified as English.
var codePatterns = []*regexp.Regexp{
	regexp.MustCompile(`function\s+\w+\s*\(`),
	regexp.MustCompile(`\b(?:var|let|const)\s+\w+\s*=`),
	regexp.MustCompile(`\b(?:if|for|while)\s*\(`),
	regexp.MustCompile(`\bclass\s+\w+\s*\{`),
	regexp.MustCompile(`\{\s*\w+\s*:`),
	regexp.MustCompile(`<\w+[^>]*>.*</\w+>`),
}

// whitespaceRun matches internal runs of whitespace for collapsing.
var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalizer cleans raw text nodes before classification and discards
// the ones that cannot constitute a localization gap.
//
// Discard rules: empty or whitespace-only text, text below the minimum
// meaningful length, text without letters (numbers, punctuation, currency
// amounts), code-like text, and entries on the configured ignore list
// (brand names and other strings that are intentionally untranslated).
//
// Normalization is a pure function: trim, collapse whitespace runs.
// Original casing is preserved; lowercasing happens only in dedup keys.
type Normalizer struct {
	// minLength is the minimum normalized text length to keep.
	minLength int

	// ignore holds lowercased exact-match strings to discard.
	ignore map[string]struct{}
}

// NormalizerOption configures a Normalizer.
type NormalizerOption func(*Normalizer)

// WithMinLength sets the minimum meaningful snippet length.
func WithMinLength(n int) NormalizerOption {
	return func(nm *Normalizer) {
		if n > 0 {
			nm.minLength = n
		}
	}
}

// WithIgnoreList sets the strings to discard. Matching is
// case-insensitive against the whole normalized text.
func WithIgnoreList(entries []string) NormalizerOption {
	return func(nm *Normalizer) {
		for _, e := range entries {
			e = strings.ToLower(strings.TrimSpace(e))
			if e != "" {
				nm.ignore[e] = struct{}{}
			}
		}
	}
}

// NewNormalizer creates a Normalizer with the given options.
func NewNormalizer(opts ...NormalizerOption) *Normalizer {
	nm := &Normalizer{
		minLength: DefaultMinSnippetLength,
		ignore:    make(map[string]struct{}),
	}

	for _, opt := range opts {
		opt(nm)
	}

	return nm
}

// Normalize turns a raw text node into a Snippet or discards it.
//
// Returns (nil, ErrInvalidLocation) for nodes without a page name,
// (nil, nil) for benign discards, and a Snippet with the given sequence
// index otherwise.
func (nm *Normalizer) Normalize(node model.TextNode, seq int) (*model.Snippet, error) {
	if !node.Location.Valid() {
		return nil, ErrInvalidLocation
	}

	text := strings.TrimSpace(node.Text)
	if text == "" {
		return nil, nil
	}
	text = whitespaceRun.ReplaceAllString(text, " ")

	if len([]rune(text)) < nm.minLength {
		return nil, nil
	}
	if !containsLetter(text) {
		return nil, nil
	}
	if _, ok := nm.ignore[strings.ToLower(text)]; ok {
		return nil, nil
	}
	if looksLikeCode(text) {
		return nil, nil
	}

	return &model.Snippet{
		Raw:      node.Text,
		Text:     text,
		Location: node.Location,
		Seq:      seq,
	}, nil
}

// containsLetter reports whether the text has at least one letter rune.
func containsLetter(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// looksLikeCode reports whether the text matches a code pattern.
func looksLikeCode(text string) bool {
	for _, p := range codePatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
