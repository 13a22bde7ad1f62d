package visuals

import (
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"burndown-gen/internal/burndown"
)

// Report is the full data set embedded into the generated chart page:
// one series per sprint per algorithm, so switching selections never
// requires a refetch.
type Report struct {
	Title    string
	Sprints  []string
	Selected string
	Series   map[string]map[string][]burndown.Point // sprint -> algorithm -> points
}

// RenderHTML renders the self-contained burndown chart page.
func RenderHTML(report Report) (string, error) {
	data, err := json.Marshal(report.Series)
	if err != nil {
		return "", fmt.Errorf("encoding series: %w", err)
	}

	algorithms := make([]string, 0, len(burndown.Algorithms))
	for _, alg := range burndown.Algorithms {
		algorithms = append(algorithms, alg.String())
	}

	var sb strings.Builder
	err = pageTemplate.Execute(&sb, struct {
		Title      string
		Sprints    []string
		Selected   string
		Algorithms []string
		SeriesJSON template.JS
	}{
		Title:      report.Title,
		Sprints:    report.Sprints,
		Selected:   report.Selected,
		Algorithms: algorithms,
		SeriesJSON: template.JS(data),
	})
	if err != nil {
		return "", fmt.Errorf("rendering chart page: %w", err)
	}
	return sb.String(), nil
}

// WriteHTML renders the report and writes it into the output directory.
func WriteHTML(report Report, outputDir, filename string) (string, error) {
	html, err := RenderHTML(report)
	if err != nil {
		return "", err
	}
	path := filepath.Join(outputDir, filename)
	if err := os.WriteFile(path, []byte(html), 0644); err != nil {
		return "", fmt.Errorf("writing chart page: %w", err)
	}
	return path, nil
}

var pageTemplate = template.Must(template.New("chart").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="https://cdn.jsdelivr.net/npm/chart.js@4"></script>
<style>
  body { font-family: sans-serif; margin: 2rem; color: #24292f; }
  .controls { margin-bottom: 1rem; }
  .controls select { margin-right: 1rem; padding: 0.25rem; }
  #placeholder-note { color: #9a6700; display: none; }
  #no-data { color: #57606a; display: none; }
  .chart-wrap { max-width: 960px; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="controls">
  <label>Sprint
    <select id="sprint">
      {{- range .Sprints}}
      <option value="{{.}}"{{if eq . $.Selected}} selected{{end}}>{{.}}</option>
      {{- end}}
    </select>
  </label>
  <label>Algorithm
    <select id="algorithm">
      {{- range .Algorithms}}
      <option value="{{.}}">{{.}}</option>
      {{- end}}
    </select>
  </label>
</div>
<p id="placeholder-note">No estimated work found for this selection; the total shown is a placeholder scale.</p>
<p id="no-data">No data for the selected parameters.</p>
<div class="chart-wrap"><canvas id="burndown"></canvas></div>
<script>
const series = {{.SeriesJSON}};
let chart = null;

function render() {
  const sprint = document.getElementById('sprint').value;
  const algorithm = document.getElementById('algorithm').value;
  const points = (series[sprint] || {})[algorithm] || [];

  const noData = document.getElementById('no-data');
  const note = document.getElementById('placeholder-note');
  noData.style.display = points.length ? 'none' : 'block';
  note.style.display = 'none';

  if (chart) { chart.destroy(); chart = null; }
  if (!points.length) { return; }

  const total = points[0].totalPoints;
  if (total === 100 && points.every(p => p.remainingPoints === 100)) {
    note.style.display = 'block';
  }

  const labels = points.map(p => p.date);
  const remaining = points.map(p => p.remainingPoints);
  const n = points.length;
  const ideal = points.map((p, i) => n > 1 ? total * (1 - i / (n - 1)) : total);

  chart = new Chart(document.getElementById('burndown'), {
    type: 'line',
    data: {
      labels: labels,
      datasets: [
        { label: 'Remaining', data: remaining, borderColor: '#cf222e', fill: false, tension: 0.1 },
        { label: 'Ideal', data: ideal, borderColor: '#57606a', borderDash: [6, 4], fill: false, pointRadius: 0 }
      ]
    },
    options: {
      scales: { y: { beginAtZero: true, suggestedMax: total } },
      plugins: { tooltip: { mode: 'index', intersect: false } }
    }
  });
}

document.getElementById('sprint').addEventListener('change', render);
document.getElementById('algorithm').addEventListener('change', render);
render();
</script>
</body>
</html>
`))
