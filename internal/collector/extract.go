package collector

import (
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/locascan/locascan/internal/model"
)

// Attributes whose values are user-visible text even though they never
// render as a DOM text node.
var textAttributes = []string{"placeholder", "alt", "title", "aria-label"}

// Elements whose subtrees never contain user-visible text.
var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"head":     true,
	"svg":      true,
}

// ExtractTextNodes parses rendered HTML and returns every user-visible
// text fragment with a location hint.
//
// Design decision: We use golang.org/x/net/html rather than querying the
// browser element by element because:
//  1. One HTML snapshot per page keeps browser round-trips constant
//  2. The parser tolerates the malformed markup real applications emit
//  3. Extraction becomes a pure function, testable without a browser
//
// The base location supplies the page and modal labels; the element hint
// of each node is derived from its nearest identifiable ancestor.
func ExtractTextNodes(r io.Reader, base model.Location) ([]model.TextNode, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var nodes []model.TextNode

	emit := func(text, element string) {
		if strings.TrimSpace(text) == "" {
			return
		}
		loc := base
		loc.Element = element
		nodes = append(nodes, model.TextNode{Text: text, Location: loc})
	}

	var walk func(n *html.Node, hint string)
	walk = func(n *html.Node, hint string) {
		switch n.Type {
		case html.ElementNode:
			if skippedElements[n.Data] || isHidden(n) {
				return
			}
			if h := elementHint(n); h != "" {
				hint = h
			}
			for _, attr := range n.Attr {
				for _, name := range textAttributes {
					if attr.Key == name {
						emit(attr.Val, hint)
					}
				}
			}
			// Button-like inputs render their value attribute as label.
			if n.Data == "input" {
				switch getAttr(n, "type") {
				case "button", "submit", "reset":
					emit(getAttr(n, "value"), hint)
				}
			}
		case html.TextNode:
			emit(n.Data, hint)
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, hint)
		}
	}

	walk(doc, "")
	return nodes, nil
}

// elementHint builds a short selector-like identifier for an element.
// Preference order mirrors how a developer would locate the element:
// id, then first class, then bare tag name for structural elements.
func elementHint(n *html.Node) string {
	if id := getAttr(n, "id"); id != "" {
		return "#" + id
	}
	if class := getAttr(n, "class"); class != "" {
		if first, _, _ := strings.Cut(strings.TrimSpace(class), " "); first != "" {
			return "." + first
		}
	}
	switch n.Data {
	case "button", "a", "label", "option", "th", "td", "li",
		"h1", "h2", "h3", "h4", "h5", "h6":
		return n.Data
	}
	return ""
}

// isHidden reports whether an element is explicitly hidden from users.
// Computed styles are out of reach in a static snapshot; only the
// declarative hiding mechanisms are honored.
func isHidden(n *html.Node) bool {
	for _, attr := range n.Attr {
		switch attr.Key {
		case "hidden":
			return true
		case "aria-hidden":
			if attr.Val == "true" {
				return true
			}
		case "style":
			style := strings.ReplaceAll(strings.ToLower(attr.Val), " ", "")
			if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
				return true
			}
		}
	}
	return false
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
