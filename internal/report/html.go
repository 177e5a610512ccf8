package report

import (
	"html/template"
	"io"

	"github.com/ppiankov/hostprint/internal/model"
)

var htmlTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"render": renderValue,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>hostprint report — {{.Hostname}}</title>
<style>
  body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2rem; color: #222; }
  h1 { font-size: 1.3rem; }
  table { border-collapse: collapse; width: 100%; margin-top: 1rem; }
  th, td { text-align: left; padding: 0.4rem 0.6rem; border-bottom: 1px solid #ddd; font-size: 0.9rem; }
  code { font-family: ui-monospace, monospace; font-size: 0.85rem; }
  .badge { display: inline-block; padding: 0.1rem 0.5rem; border-radius: 3px; color: #fff; font-size: 0.75rem; }
  .critical { background: #c0392b; }
  .high { background: #d68910; }
  .medium { background: #2471a3; }
  .low { background: #7f8c8d; }
  .summary { margin-top: 1rem; color: #555; }
</style>
</head>
<body>
<h1>Configuration changes on {{.Hostname}}</h1>
<p>Baseline {{.BaselineCreated.Format "2006-01-02 15:04:05"}} → current {{.CurrentCreated.Format "2006-01-02 15:04:05"}}{{if .Hashed}} (sensitive fields hashed){{end}}</p>
{{if .Entries}}
<table>
<tr><th>Severity</th><th>Kind</th><th>Collector</th><th>Path</th><th>Old</th><th>New</th></tr>
{{range .Entries}}
<tr>
  <td><span class="badge {{.Severity}}">{{.Severity}}</span></td>
  <td>{{.Kind}}</td>
  <td><code>{{.Collector}}</code></td>
  <td><code>{{.Path}}</code></td>
  <td><code>{{render .Old}}</code></td>
  <td><code>{{render .New}}</code></td>
</tr>
{{end}}
</table>
<p class="summary">{{len .Entries}} change(s): {{.Critical}} critical, {{.High}} high, {{.Medium}} medium, {{.Low}} low.</p>
{{else}}
<p>No changes detected.</p>
{{end}}
</body>
</html>
`))

// htmlData flattens the summary counts; template index cannot key the
// Severity-typed map with a string literal.
type htmlData struct {
	*model.Diff
	Critical, High, Medium, Low int
}

// HTML renders the diff as a standalone document.
func HTML(w io.Writer, d *model.Diff) error {
	return htmlTmpl.Execute(w, htmlData{
		Diff:     d,
		Critical: d.Summary[model.SeverityCritical],
		High:     d.Summary[model.SeverityHigh],
		Medium:   d.Summary[model.SeverityMedium],
		Low:      d.Summary[model.SeverityLow],
	})
}
