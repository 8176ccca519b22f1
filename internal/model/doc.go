// Package model defines the core data structures for locascan.
// It contains the snippet, language verdict, gap, and session report types
// that flow through the gap detection pipeline.
package model
