package report

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/locascan/locascan/internal/model"
)

// HTMLWriter outputs a self-contained HTML report page.
// This is the format to hand to localization teams: it opens in any
// browser, needs no server, and has no external assets.
//
// Design decision: We use html/template rather than string concatenation
// because the report embeds scanned UI text, which is attacker-adjacent
// input. Automatic contextual escaping prevents a snippet containing
// markup from breaking or scripting the report itself.
type HTMLWriter struct {
	baseWriter
}

// NewHTMLWriter creates an HTMLWriter that outputs to the given writer.
func NewHTMLWriter(output io.Writer) *HTMLWriter {
	return &HTMLWriter{
		baseWriter: newBaseWriter(output),
	}
}

// htmlReport is the template context. The template only sees derived,
// display-ready values, keeping formatting logic out of the template.
type htmlReport struct {
	Report  *model.SessionReport
	Rows    []model.Row
	Buckets []htmlBucket
	Pages   []htmlPage
}

type htmlBucket struct {
	Label   string
	Count   int
	Percent float64
}

type htmlPage struct {
	Name  string
	Count int
}

// Write outputs the report as a standalone HTML page.
func (w *HTMLWriter) Write(report *model.SessionReport) (int, error) {
	ctx := htmlReport{
		Report: report,
		Rows:   report.Rows(),
	}

	counts := report.BucketCounts()
	for _, bucket := range []model.ConfidenceBucket{
		model.BucketVeryHigh, model.BucketHigh, model.BucketMedium, model.BucketLow,
	} {
		b := htmlBucket{Label: bucket.String(), Count: counts[bucket]}
		if total := report.TotalGaps(); total > 0 {
			b.Percent = float64(b.Count) / float64(total) * 100
		}
		ctx.Buckets = append(ctx.Buckets, b)
	}

	for _, page := range sortedPages(report.GapsByPage) {
		ctx.Pages = append(ctx.Pages, htmlPage{Name: page, Count: report.GapsByPage[page]})
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, ctx); err != nil {
		return 0, fmt.Errorf("failed to render HTML report: %w", err)
	}
	return w.output.Write(buf.Bytes())
}

// percent formats a [0, 1] confidence as a whole percentage.
func percent(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"percent": percent,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Localization Gap Report</title>
<style>
  body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 2rem auto; max-width: 64rem; color: #1c2733; }
  h1 { border-bottom: 2px solid #2b6cb0; padding-bottom: .3rem; }
  .boxes { display: flex; gap: 1rem; flex-wrap: wrap; margin: 1.5rem 0; }
  .box { flex: 1 1 10rem; border: 1px solid #d4dde6; border-radius: .5rem; padding: 1rem; text-align: center; }
  .box .value { font-size: 2rem; font-weight: 700; color: #2b6cb0; }
  .box .label { color: #5a6b7b; font-size: .85rem; }
  .cancelled { background: #fff5e6; border-color: #e8b24a; }
  .bar { display: flex; align-items: center; gap: .5rem; margin: .25rem 0; }
  .bar .range { width: 6rem; font-size: .85rem; color: #5a6b7b; }
  .bar .fill { background: #2b6cb0; height: 1rem; border-radius: .2rem; }
  table { border-collapse: collapse; width: 100%; margin: 1rem 0; }
  th, td { border: 1px solid #d4dde6; padding: .45rem .6rem; text-align: left; font-size: .9rem; }
  th { background: #f2f6fa; }
  td.conf { text-align: right; font-variant-numeric: tabular-nums; }
  code { background: #f2f6fa; padding: .1rem .3rem; border-radius: .2rem; font-size: .85em; }
</style>
</head>
<body>
<h1>Localization Gap Report</h1>
<p>
  UI language <code>{{.Report.TargetLanguage}}</code>,
  scanning for <code>{{.Report.ForeignLanguage}}</code> leaks.
  Scanned {{.Report.StartedAt.Format "2006-01-02 15:04 MST"}}.
  {{if .Report.Cancelled}}<strong>Scan was cancelled; results are partial.</strong>{{end}}
</p>

<div class="boxes">
  <div class="box{{if .Report.Cancelled}} cancelled{{end}}">
    <div class="value">{{.Report.TotalGaps}}</div>
    <div class="label">Gaps found</div>
  </div>
  <div class="box">
    <div class="value">{{.Report.SnippetsScanned}}</div>
    <div class="label">Snippets scanned</div>
  </div>
  <div class="box">
    <div class="value">{{.Report.HighConfidenceGaps}}</div>
    <div class="label">High confidence</div>
  </div>
  <div class="box">
    <div class="value">{{percent .Report.GapRate}}</div>
    <div class="label">Gap rate</div>
  </div>
</div>

{{if .Rows}}
<h2>Confidence distribution</h2>
{{range .Buckets}}
<div class="bar">
  <span class="range">{{.Label}}</span>
  <div class="fill" style="width: {{printf "%.0f" .Percent}}%"></div>
  <span>{{.Count}}</span>
</div>
{{end}}

<h2>Gaps</h2>
<table>
  <thead>
    <tr><th>Page</th><th>Element</th><th>Text</th><th>Language</th><th>Confidence</th><th>Source</th></tr>
  </thead>
  <tbody>
    {{range .Rows}}
    <tr>
      <td>{{.Page}}</td>
      <td><code>{{.Element}}</code></td>
      <td>{{.Text}}</td>
      <td>{{.Language}}</td>
      <td class="conf">{{percent .Confidence}}</td>
      <td>{{.Source}}</td>
    </tr>
    {{end}}
  </tbody>
</table>

{{if .Pages}}
<h2>Gaps by page</h2>
<table>
  <thead><tr><th>Page</th><th>Gaps</th></tr></thead>
  <tbody>
    {{range .Pages}}
    <tr><td>{{.Name}}</td><td>{{.Count}}</td></tr>
    {{end}}
  </tbody>
</table>
{{end}}
{{else}}
<p>No localization gaps found.</p>
{{end}}
</body>
</html>
`))
