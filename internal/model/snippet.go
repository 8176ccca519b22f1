package model

import "strings"

// Location identifies where a text snippet was found in the scanned UI.
// It is collected by the traversal source and carried unchanged through
// the pipeline so findings can be traced back to a page and element.
type Location struct {
	// Page is the human-readable name of the page being scanned
	// (e.g., "Dashboard"). Required; snippets without a page name are
	// rejected by the normalizer.
	Page string `json:"page"`

	// Element is a hint identifying the UI element the text came from,
	// typically a CSS-selector-like path (e.g., "button.save-button").
	// May be empty when the source cannot attribute text to an element.
	Element string `json:"element,omitempty"`

	// Modal is an optional label for a modal or overlay opened on the page.
	// When set, the location label becomes "Page > Modal".
	Modal string `json:"modal,omitempty"`
}

// Valid reports whether the location carries the minimum metadata
// required to enter the pipeline.
func (l Location) Valid() bool {
	return strings.TrimSpace(l.Page) != ""
}

// Label returns the display label for this location.
// Modal locations are rendered as "Page > Modal" to match how
// the traversal reports modal content.
func (l Location) Label() string {
	if l.Modal != "" {
		return l.Page + " > " + l.Modal
	}
	return l.Page
}

// Key returns a stable identifier for this location used in dedup keys.
func (l Location) Key() string {
	return l.Label() + "/" + l.Element
}

// TextNode is one raw (text, location) tuple produced by a traversal
// source. It is the input boundary of the pipeline: nodes have not yet
// been normalized, deduplicated, or assigned a sequence index.
type TextNode struct {
	// Text is the raw visible text as extracted from the UI.
	Text string `json:"text"`

	// Location is where the text was found.
	Location Location `json:"location"`
}

// Snippet is one unit of extracted text after normalization.
// Snippets are immutable once constructed and owned by the pipeline
// run that produced them.
type Snippet struct {
	// Raw is the original text exactly as extracted.
	Raw string `json:"raw"`

	// Text is the normalized form: trimmed, with internal whitespace
	// runs collapsed. Original casing is preserved; lowercasing happens
	// only inside dedup keys.
	Text string `json:"text"`

	// Location is where the snippet was found.
	Location Location `json:"location"`

	// Seq is the snippet's position in traversal order. It is used to
	// resolve "first occurrence" deterministically even when batches
	// complete out of order.
	Seq int `json:"seq"`
}

// DedupKey returns the deduplication key for this snippet.
// Two snippets with the same location and the same normalized text
// (case-insensitive) are considered duplicates.
func (s *Snippet) DedupKey() string {
	return s.Location.Key() + "\x00" + strings.ToLower(s.Text)
}
