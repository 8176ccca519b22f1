package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/locascan/locascan/internal/model"
)

// timeRounding is the precision used when printing scan durations.
const timeRounding = time.Second

// languageName renders a language code with its English display name,
// e.g. "fr (French)". Unparseable codes are shown as-is.
func languageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return code
	}
	return fmt.Sprintf("%s (%s)", code, name)
}

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no gaps are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.SessionReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeGaps(&sb, report)
	w.writeFooter(&sb, report)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with session information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.SessionReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                    LOCALIZATION GAP REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("UI Language:      %s\n", languageName(report.TargetLanguage)))
	sb.WriteString(fmt.Sprintf("Leak Language:    %s\n", languageName(report.ForeignLanguage)))
	sb.WriteString(fmt.Sprintf("Scan Date:        %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:         %s\n", report.FinishedAt.Sub(report.StartedAt).Round(timeRounding)))

	if report.Cancelled {
		sb.WriteString("Status:           CANCELLED (partial results)\n")
	} else {
		sb.WriteString("Status:           Complete\n")
	}

	sb.WriteString("\n")
}

// writeSummary writes the classification and gap statistics.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.SessionReport) {
	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("Snippets scanned:   %d\n", report.SnippetsScanned))
	sb.WriteString(fmt.Sprintf("Snippets dropped:   %d\n", report.SnippetsDropped))
	sb.WriteString(fmt.Sprintf("Gaps found:         %d (%.1f%% of scanned)\n",
		report.TotalGaps(), report.GapRate*100))
	sb.WriteString(fmt.Sprintf("High confidence:    %d\n", report.HighConfidenceGaps()))

	if w.verbose {
		sb.WriteString(fmt.Sprintf("Remote verdicts:    %d\n", report.RemoteVerdicts))
		sb.WriteString(fmt.Sprintf("Heuristic verdicts: %d\n", report.HeuristicVerdicts))
		sb.WriteString(fmt.Sprintf("In %s:              %d\n", report.TargetLanguage, report.TargetLanguageCount))
		sb.WriteString(fmt.Sprintf("Other languages:    %d\n", report.OtherLanguageCount))
	}

	if report.TotalGaps() > 0 {
		sb.WriteString("\nConfidence distribution:\n")
		counts := report.BucketCounts()
		for _, bucket := range []model.ConfidenceBucket{
			model.BucketVeryHigh, model.BucketHigh, model.BucketMedium, model.BucketLow,
		} {
			n := counts[bucket]
			if n == 0 && !w.showEmpty {
				continue
			}
			sb.WriteString(fmt.Sprintf("  %-8s %s\n", bucket.String(), strings.Repeat("#", n)))
		}
	}

	sb.WriteString("\n")
}

// writeGaps writes the gap table, sorted by confidence descending.
func (w *SimpleWriter) writeGaps(sb *strings.Builder, report *model.SessionReport) {
	if report.TotalGaps() == 0 {
		if w.showEmpty {
			sb.WriteString("No localization gaps found.\n\n")
		}
		return
	}

	sb.WriteString("GAPS (highest confidence first)\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")

	for i, row := range report.Rows() {
		sb.WriteString(fmt.Sprintf("%3d. [%3.0f%%] %q\n", i+1, row.Confidence*100, row.Text))
		sb.WriteString(fmt.Sprintf("     %s", row.Page))
		if row.Element != "" {
			sb.WriteString(fmt.Sprintf("  (%s)", row.Element))
		}
		sb.WriteString(fmt.Sprintf("  [%s, %s]\n", row.Language, row.Source))
	}

	sb.WriteString("\n")
}

// writeFooter writes per-page counts and the closing line.
func (w *SimpleWriter) writeFooter(sb *strings.Builder, report *model.SessionReport) {
	if len(report.GapsByPage) > 0 && w.verbose {
		sb.WriteString("GAPS BY PAGE\n")
		sb.WriteString(strings.Repeat("-", 70))
		sb.WriteString("\n")
		for page, count := range report.GapsByPage {
			sb.WriteString(fmt.Sprintf("  %-40s %d\n", page, count))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
