package collector

import (
	"context"

	"github.com/locascan/locascan/internal/model"
)

// SliceSource serves a fixed, pre-collected set of text nodes in order.
// It is the source to use when the caller already holds the UI text,
// for example from a DOM snapshot saved earlier or assembled in tests.
type SliceSource struct {
	nodes []model.TextNode
	pos   int
}

// NewSliceSource creates a source over the given nodes.
// The slice is not copied; the caller must not mutate it during a run.
func NewSliceSource(nodes []model.TextNode) *SliceSource {
	return &SliceSource{nodes: nodes}
}

// Next returns the next node, honoring context cancellation.
func (s *SliceSource) Next(ctx context.Context) (model.TextNode, bool, error) {
	if err := ctx.Err(); err != nil {
		return model.TextNode{}, false, err
	}
	if s.pos >= len(s.nodes) {
		return model.TextNode{}, false, nil
	}
	node := s.nodes[s.pos]
	s.pos++
	return node, true, nil
}

// PageSpec describes one page of the product UI to scan.
type PageSpec struct {
	// Name labels the page in gap reports.
	Name string

	// URL is the address to navigate to.
	URL string

	// Modals are dialogs reachable from this page that should be
	// scanned as well.
	Modals []ModalSpec
}

// ModalSpec describes a dialog opened from a page.
type ModalSpec struct {
	// Name labels the modal; gap locations read "Page > Modal".
	Name string

	// Trigger is the CSS selector of the element that opens the modal.
	Trigger string
}

// pageLoader fetches the text nodes of one page, all of its modal
// surfaces included. The browser implements this against a live page;
// tests substitute a fake.
type pageLoader interface {
	load(ctx context.Context, page PageSpec) ([]model.TextNode, error)
}

// PageSource walks pages lazily through a loader. A page is only loaded
// when iteration reaches it, so a cancelled run never touches the pages
// it did not get to.
type PageSource struct {
	loader pageLoader
	pages  []PageSpec

	pending []model.TextNode
	next    int
}

func newPageSource(loader pageLoader, pages []PageSpec) *PageSource {
	return &PageSource{loader: loader, pages: pages}
}

// Next yields nodes from the current page, advancing to the next page
// when the current one is exhausted.
func (s *PageSource) Next(ctx context.Context) (model.TextNode, bool, error) {
	for len(s.pending) == 0 {
		if err := ctx.Err(); err != nil {
			return model.TextNode{}, false, err
		}
		if s.next >= len(s.pages) {
			return model.TextNode{}, false, nil
		}
		page := s.pages[s.next]
		s.next++

		nodes, err := s.loader.load(ctx, page)
		if err != nil {
			return model.TextNode{}, false, err
		}
		s.pending = nodes
	}

	node := s.pending[0]
	s.pending = s.pending[1:]
	return node, true, nil
}
