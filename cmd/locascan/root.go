// Package main provides the entry point for the locascan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for locascan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locascan",
		Short: "Localization gap detection for product UIs",
		Long: `locascan scans a product UI rendered in one locale and reports text
snippets that leaked through in another language (localization gaps).

It drives a real browser across the configured pages and modals, extracts
every visible text snippet, classifies each snippet's language, and
aggregates confident foreign-language findings into a session report.

Run 'locascan init' to create a starter configuration file, then
'locascan scan' to scan the pages it describes.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
