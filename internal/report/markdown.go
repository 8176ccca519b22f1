package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/locascan/locascan/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing, for example
// pasting a scan result into an issue or release checklist.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.SessionReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeGaps(md, report)
	w.writePages(md, report)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with session information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.SessionReport) {
	md.H1("Localization Gap Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"UI Language", "`" + report.TargetLanguage + "`"},
			{"Leak Language", "`" + report.ForeignLanguage + "`"},
			{"Scan Date", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", report.FinishedAt.Sub(report.StartedAt).Round(timeRounding).String()},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.SessionReport) string {
	if report.Cancelled {
		return "⚠️ Cancelled (partial results)"
	}
	return "✅ Complete"
}

// writeSummary writes the statistics section with a confidence chart.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.SessionReport) {
	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Snippets scanned", strconv.Itoa(report.SnippetsScanned)},
			{"Snippets dropped", strconv.Itoa(report.SnippetsDropped)},
			{"Remote verdicts", strconv.Itoa(report.RemoteVerdicts)},
			{"Heuristic verdicts", strconv.Itoa(report.HeuristicVerdicts)},
			{"Gaps found", "**" + strconv.Itoa(report.TotalGaps()) + "**"},
			{"Gap rate", fmt.Sprintf("%.1f%%", report.GapRate*100)},
		},
	})
	md.PlainText("")

	if report.TotalGaps() > 0 {
		w.writePieChart(md, report)
	}

	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart of the confidence distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.SessionReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Gap Confidence Distribution"),
		piechart.WithShowData(true),
	)

	counts := report.BucketCounts()
	for _, bucket := range []model.ConfidenceBucket{
		model.BucketVeryHigh, model.BucketHigh, model.BucketMedium, model.BucketLow,
	} {
		if n := counts[bucket]; n > 0 {
			chart.LabelAndIntValue(bucket.String(), uint64(n))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the gap counts.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.SessionReport) {
	switch {
	case report.HighConfidenceGaps() > 0:
		md.Warningf(
			"%d high-confidence localization gap(s) found. These are very likely untranslated strings visible to users.",
			report.HighConfidenceGaps(),
		)
	case report.TotalGaps() > 0:
		md.Notef(
			"%d possible localization gap(s) found. Review the table below; lower-confidence findings may be false positives.",
			report.TotalGaps(),
		)
	default:
		md.Tipf("No localization gaps found in %d scanned snippets.", report.SnippetsScanned)
	}
	md.PlainText("")
}

// writeGaps writes the gap table, sorted by confidence descending.
func (w *MarkdownWriter) writeGaps(md *markdown.Markdown, report *model.SessionReport) {
	if report.TotalGaps() == 0 {
		return
	}

	md.H2("Gaps")
	md.PlainText("")

	rows := make([][]string, 0, report.TotalGaps())
	for _, row := range report.Rows() {
		rows = append(rows, []string{
			row.Page,
			"`" + row.Element + "`",
			row.Text,
			row.Language,
			fmt.Sprintf("%.0f%%", row.Confidence*100),
			row.Source,
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Page", "Element", "Text", "Language", "Confidence", "Source"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writePages writes per-page gap counts.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, report *model.SessionReport) {
	if len(report.GapsByPage) == 0 {
		return
	}

	md.H2("Gaps by Page")
	md.PlainText("")

	rows := make([][]string, 0, len(report.GapsByPage))
	for _, page := range sortedPages(report.GapsByPage) {
		rows = append(rows, []string{page, strconv.Itoa(report.GapsByPage[page])})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Page", "Gaps"},
		Rows:   rows,
	})
	md.PlainText("")
}
