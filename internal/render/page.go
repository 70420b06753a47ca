package render

import (
	"html/template"
	"io"
	"time"

	"github.com/web3-frozen/whirlpool-monitor/internal/dashboard"
)

// PageData is the template input for the dashboard page.
type PageData struct {
	State          dashboard.State
	Charts         []Chart
	Notice         string
	RefreshSeconds int
}

var pageTmpl = template.Must(template.New("page").Funcs(template.FuncMap{
	"ts": func(t time.Time) string { return t.UTC().Format("2006-01-02 15:04:05 UTC") },
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}).Parse(pageHTML))

// Page writes the dashboard for st. notice is shown above the charts when
// non-empty.
func Page(w io.Writer, st dashboard.State, notice string, refresh time.Duration) error {
	data := PageData{
		State:          st,
		Charts:         Charts(st.Series),
		Notice:         notice,
		RefreshSeconds: int(refresh.Seconds()),
	}
	return pageTmpl.Execute(w, data)
}

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Whirlpool position monitor</title>
{{- if gt .RefreshSeconds 0}}
<meta http-equiv="refresh" content="{{.RefreshSeconds}}">
{{- end}}
<style>
body{font-family:system-ui,sans-serif;margin:2rem;background:#f8fafc;color:#0f172a}
.banner{padding:.75rem 1rem;border-radius:6px;margin-bottom:1rem}
.error{background:#fee2e2;color:#991b1b}
.notice{background:#fef9c3;color:#854d0e}
.card{background:#fff;border:1px solid #e2e8f0;border-radius:8px;padding:1rem;margin-bottom:1rem}
.stats{display:grid;grid-template-columns:repeat(auto-fill,minmax(180px,1fr));gap:.5rem}
.stats dt{font-size:.8rem;color:#64748b}
.stats dd{margin:0;font-weight:600}
svg{background:#fff;border:1px solid #e2e8f0}
.legend span{margin-right:1rem;font-size:.85rem}
</style>
</head>
<body>
<h1>Whirlpool position monitor</h1>
{{- with .State.Error}}
<div class="banner error" role="alert">Failed to load position data: {{.}}</div>
{{- end}}
{{- with .Notice}}
<div class="banner notice">{{.}}</div>
{{- end}}
{{- if .State.Loading}}
<p class="loading">Loading…</p>
{{- end}}
{{- if .State.NoData}}
<div class="card no-data">No whirlpool position data found.</div>
{{- else}}
<form class="card" method="get" action="/">
<label for="position">Position</label>
<select id="position" name="position" onchange="this.form.submit()">
{{- $sel := .State.Selected}}
{{- range .State.Positions}}
<option value="{{.}}"{{if and $sel (eq . (deref $sel))}} selected{{end}}>{{.}}</option>
{{- end}}
</select>
<noscript><button type="submit">Show</button></noscript>
</form>
{{- with .State.Latest}}
<section class="card">
<h2>Latest statistics</h2>
<dl class="stats">
<div><dt>Recorded</dt><dd>{{ts .Timestamp}}</dd></div>
<div><dt>Price</dt><dd>{{.WhirlpoolPrice}}</dd></div>
<div><dt>Token A</dt><dd>{{.TokenAAmount}}</dd></div>
<div><dt>Token B</dt><dd>{{.TokenBAmount}}</dd></div>
<div><dt>Fees A</dt><dd>{{.TokenAFees}}</dd></div>
<div><dt>Fees B</dt><dd>{{.TokenBFees}}</dd></div>
<div><dt>Locked value</dt><dd>{{.LockedValue}}</dd></div>
<div><dt>Pending yield</dt><dd>{{.PendingYield}}</dd></div>
</dl>
</section>
{{- end}}
{{- range .Charts}}
<section class="card chart">
<h2>{{.Title}}</h2>
{{- if .Lines}}
<svg viewBox="0 0 {{.Width}} {{.Height}}" width="{{.Width}}" height="{{.Height}}" role="img" aria-label="{{.Title}}">
{{- range .Lines}}
<polyline fill="none" stroke="{{.Color}}" stroke-width="2" points="{{.Points}}"/>
{{- end}}
</svg>
<div class="legend">{{range .Lines}}<span style="color:{{.Color}}">{{.Label}}: {{.Last}}</span>{{end}}<span>range {{.Min}} to {{.Max}}</span></div>
{{- else}}
<p>No points for this position.</p>
{{- end}}
</section>
{{- end}}
{{- if .State.Skipped}}
<details class="card">
<summary>{{len .State.Skipped}} record(s) excluded: unparsable numeric field</summary>
<ul>{{range .State.Skipped}}<li>#{{.ID}} {{.Field}} = {{printf "%q" .Value}}</li>{{end}}</ul>
</details>
{{- end}}
{{- end}}
{{- with .State.RefreshedAt}}
<footer>Last refreshed {{ts .}}</footer>
{{- end}}
</body>
</html>
`
