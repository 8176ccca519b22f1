package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/locascan/locascan/internal/model"
)

// csvHeader is the fixed column order of the CSV report.
var csvHeader = []string{"Page", "Element", "Text", "Language", "Confidence", "Source"}

// CSVWriter outputs the gap table as CSV for spreadsheet triage.
// Summary statistics are omitted: the CSV exists so a localization team
// can sort, filter, and annotate the raw findings.
//
// Design decision: We use the standard encoding/csv package because it
// handles quoting and embedded newlines correctly, which matters here
// since gap text is arbitrary UI content.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the gap rows as CSV, highest confidence first.
func (w *CSVWriter) Write(report *model.SessionReport) (int, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	if err := cw.Write(csvHeader); err != nil {
		return 0, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range report.Rows() {
		record := []string{
			row.Page,
			row.Element,
			row.Text,
			row.Language,
			strconv.FormatFloat(row.Confidence, 'f', 2, 64),
			row.Source,
		}
		if err := cw.Write(record); err != nil {
			return 0, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, err
	}
	return w.output.Write(buf.Bytes())
}
