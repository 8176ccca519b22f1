// Package main provides the entry point for the locascan CLI.
//
// locascan scans a product UI in one locale and reports text snippets
// that leaked through in another language (localization gaps).
//
// Usage:
//
//	locascan scan
//	locascan scan -c myconfig.yaml
//	locascan history --list
//
// See --help for all available options.
package main

// main is the entry point for locascan.
func main() {
	Execute()
}
