package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/locascan/locascan/internal/config"
	"github.com/locascan/locascan/internal/database"
	"github.com/locascan/locascan/internal/model"
	"github.com/locascan/locascan/internal/report"
)

// NewHistoryCmd creates the history command.
// This command browses scan sessions stored in the database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse past scan sessions",
		Long: `History lists the scan sessions saved in the database and renders
past session reports.

Every 'locascan scan' run saves its finalized report, so progress of a
localization effort is visible over time: gaps found, high-confidence
gaps, and whether a session was interrupted.

Examples:
  # List all saved sessions
  locascan history

  # Show the report of a specific session by ID
  locascan history --session-id 5

  # Show the most recent session report
  locascan history --latest

  # Show how the latest session compares to the one before it
  locascan history --diff

  # Output a session report as JSON
  locascan history --latest --json`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	// Session selection flags
	cmd.Flags().Int64P("session-id", "i", 0,
		"Show the report of a specific session (use the plain command to see IDs)")
	cmd.Flags().BoolP("latest", "l", false,
		"Show the most recent session report")
	cmd.Flags().BoolP("diff", "d", false,
		"Compare the latest session with the previous one")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output the session report in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output the session report in Markdown format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	sessionID, err := cmd.Flags().GetInt64("session-id")
	if err != nil {
		return err
	}
	latest, err := cmd.Flags().GetBool("latest")
	if err != nil {
		return err
	}
	diff, err := cmd.Flags().GetBool("diff")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return config.ErrConflictingReportFormats
	}

	// Use XDG data directory for database
	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	switch {
	case sessionID > 0:
		return showSession(ctx, db, sessionID, jsonOutput, markdownOutput)
	case latest:
		return showLatestSession(ctx, db, jsonOutput, markdownOutput)
	case diff:
		return diffLatestSessions(ctx, db)
	default:
		return listSessions(ctx, db)
	}
}

// listSessions lists all saved scan sessions.
func listSessions(ctx context.Context, db *database.SessionDB) error {
	sessions, err := db.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Println("No scan sessions found in the database.")
		fmt.Println("\nUse 'locascan scan' to scan your product UI.")
		return nil
	}

	fmt.Printf("Scan sessions (%d):\n\n", len(sessions))
	fmt.Printf("  %-6s  %-20s  %-9s  %8s  %6s  %9s\n",
		"ID", "Date", "Languages", "Scanned", "Gaps", "High-conf")
	fmt.Println("  " + strings.Repeat("-", 68))

	for _, meta := range sessions {
		status := ""
		if meta.Cancelled {
			status = "  (interrupted)"
		}
		fmt.Printf("  %-6d  %-20s  %-9s  %8d  %6d  %9d%s\n",
			meta.ID,
			meta.StartedAt.Local().Format("2006-01-02 15:04:05"),
			meta.TargetLanguage+"/"+meta.ForeignLanguage,
			meta.SnippetsScanned,
			meta.GapsFound,
			meta.HighConfidenceGaps,
			status,
		)
	}

	fmt.Println("\nUse 'locascan history --session-id <id>' to see a full report.")
	fmt.Println("Use 'locascan history --diff' to compare the latest two sessions.")

	return nil
}

// showSession renders the report of one saved session.
func showSession(ctx context.Context, db *database.SessionDB, id int64, jsonOutput, markdownOutput bool) error {
	sessionReport, err := db.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrSessionNotFound) {
			return fmt.Errorf("session %d not found (use 'locascan history' to see available IDs)", id)
		}
		return fmt.Errorf("failed to load session: %w", err)
	}
	return renderSession(sessionReport, jsonOutput, markdownOutput)
}

// showLatestSession renders the most recent saved session report.
func showLatestSession(ctx context.Context, db *database.SessionDB, jsonOutput, markdownOutput bool) error {
	sessionReport, err := db.GetLatestSession(ctx)
	if err != nil {
		if errors.Is(err, database.ErrSessionNotFound) {
			return errors.New("no scan sessions found (use 'locascan scan' first)")
		}
		return fmt.Errorf("failed to load session: %w", err)
	}
	return renderSession(sessionReport, jsonOutput, markdownOutput)
}

// renderSession writes a saved report to stdout in the chosen format.
func renderSession(sessionReport *model.SessionReport, jsonOutput, markdownOutput bool) error {
	var writer report.Writer
	switch {
	case jsonOutput:
		writer = report.NewJSONWriter(os.Stdout, report.WithPrettyPrint())
	case markdownOutput:
		writer = report.NewMarkdownWriter(os.Stdout)
	default:
		writer = report.NewSimpleWriter(os.Stdout)
	}
	_, err := writer.Write(sessionReport)
	return err
}

// diffLatestSessions compares the two most recent sessions and prints
// which gaps are new and which were resolved.
func diffLatestSessions(ctx context.Context, db *database.SessionDB) error {
	sessions, err := db.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(sessions) < 2 {
		return fmt.Errorf("at least 2 sessions are required for comparison (found %d)", len(sessions))
	}

	// ListSessions returns newest first.
	current, err := db.GetSession(ctx, sessions[0].ID)
	if err != nil {
		return fmt.Errorf("failed to load session %d: %w", sessions[0].ID, err)
	}
	previous, err := db.GetSession(ctx, sessions[1].ID)
	if err != nil {
		return fmt.Errorf("failed to load session %d: %w", sessions[1].ID, err)
	}

	newGaps, resolvedGaps := diffGaps(previous, current)

	fmt.Printf("Comparing session %d (%s) with session %d (%s):\n\n",
		sessions[1].ID, sessions[1].StartedAt.Local().Format("2006-01-02 15:04"),
		sessions[0].ID, sessions[0].StartedAt.Local().Format("2006-01-02 15:04"))

	fmt.Printf("  Gaps before:   %d\n", previous.TotalGaps())
	fmt.Printf("  Gaps now:      %d\n", current.TotalGaps())
	fmt.Printf("  New:           %d\n", len(newGaps))
	fmt.Printf("  Resolved:      %d\n\n", len(resolvedGaps))

	printGapList("New gaps", newGaps)
	printGapList("Resolved gaps", resolvedGaps)

	switch {
	case len(newGaps) == 0 && len(resolvedGaps) > 0:
		fmt.Println("Localization coverage improved.")
	case len(newGaps) > 0 && len(resolvedGaps) == 0:
		fmt.Println("Localization coverage regressed.")
	case len(newGaps) == 0 && len(resolvedGaps) == 0:
		fmt.Println("No changes between sessions.")
	}

	return nil
}

// diffGaps returns the gaps present only in the current session and the
// gaps present only in the previous one, keyed by location and text.
func diffGaps(previous, current *model.SessionReport) (newGaps, resolvedGaps []model.Gap) {
	prevKeys := make(map[string]struct{}, len(previous.Gaps))
	for _, gap := range previous.Gaps {
		prevKeys[gap.DedupKey()] = struct{}{}
	}
	currKeys := make(map[string]struct{}, len(current.Gaps))
	for _, gap := range current.Gaps {
		currKeys[gap.DedupKey()] = struct{}{}
	}

	for _, gap := range current.Gaps {
		if _, ok := prevKeys[gap.DedupKey()]; !ok {
			newGaps = append(newGaps, gap)
		}
	}
	for _, gap := range previous.Gaps {
		if _, ok := currKeys[gap.DedupKey()]; !ok {
			resolvedGaps = append(resolvedGaps, gap)
		}
	}
	return newGaps, resolvedGaps
}

// printGapList prints a titled list of gaps, or nothing when empty.
func printGapList(title string, gaps []model.Gap) {
	if len(gaps) == 0 {
		return
	}
	fmt.Printf("%s:\n", title)
	for _, gap := range gaps {
		fmt.Printf("  - [%s] %q (%.0f%%)\n",
			gap.Location.Label(), gap.Text, gap.Confidence*100)
	}
	fmt.Println()
}
