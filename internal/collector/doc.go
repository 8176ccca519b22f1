// Package collector gathers raw text nodes from a running product UI.
//
// The collector is the traversal side of a scan: it knows how to reach
// pages, open modals, and pull visible text out of rendered HTML, but it
// performs no language analysis. Everything it yields is a raw text node
// with a location; normalization and classification happen downstream.
//
// Two sources are provided. Browser drives a real headless browser so
// client-rendered applications are scanned as the user sees them.
// SliceSource serves a pre-collected set of nodes, which is what library
// callers and tests use.
package collector
