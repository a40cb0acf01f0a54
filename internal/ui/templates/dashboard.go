package templates

import (
	"encoding/json"
	"html/template"
	"slices"

	"github.com/a-h/templ"

	"visit-dashboard/internal/models"
	"visit-dashboard/internal/table"
)

const (
	Title    = "Restaurant Dashboard"
	Subtitle = "Complete History of Scans - Filter Using Custom Input or Arrows"
	Summary  = "Scans and Avg Reviews Filtered"

	ScansChartID   = "scans-chart"
	ReviewsChartID = "reviews-chart"

	datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"
	plotlyScript   = "https://cdn.jsdelivr.net/npm/plotly.js-dist-min@2.35.2/plotly.min.js"
)

// DatePicker bounds the range inputs. Dates are YYYY-MM-DD.
type DatePicker struct {
	Min          string
	Max          string
	InitialMonth string
}

// DashboardProps is the first render of the page. Signals seeds the
// browser-side state; the rest is the markup that state produces.
type DashboardProps struct {
	Signals     any
	Picker      DatePicker
	Query       table.Query
	Visits      table.View[models.VisitRecord]
	Monthly     table.View[models.MonthlyAggregate]
	MonthlySort []table.SortBy
}

var pageTemplates = template.Must(template.Must(gridTemplates.Clone()).New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<script type="module" src="` + datastarScript + `"></script>
<script src="` + plotlyScript + `"></script>
<style>` + styles + `</style>
<script>` + figureScript + `</script>
</head>
<body data-signals="{{.Signals}}">
<main class="container">
<header><h1>{{.Title}}</h1><h4>{{.Subtitle}}</h4></header>
<section class="date-picker">
{{- range .DateInputs}}
<label>{{.Label}} <input type="date" id="{{.ID}}" min="{{$.Picker.Min}}" max="{{$.Picker.Max}}" data-initial-month="{{$.Picker.InitialMonth}}" data-bind="{{.Signal}}" data-on:change="$page = 0; {{$.Refresh}}"></label>
{{- end}}
<button type="button" class="clear-dates" data-on:click="$startDate = ''; $endDate = ''; $page = 0; {{.Refresh}}">&times;</button>
</section>
<section class="column-toggles">
{{- range .Toggles}}
<button type="button" class="column-toggle{{if .Hidden}} hidden-column{{end}}" data-class:hidden-column="$hiddenColumns.includes('{{.Name}}')" data-on:click="$columnToggle = '{{.Name}}'; {{$.Refresh}}">{{.Name}}</button>
{{- end}}
</section>
{{template "grid" .Visits}}
<br><br><h2>{{.Summary}}</h2><br>
<section class="summary-row">
{{template "chart" .ScansChart}}
{{template "grid" .Monthly}}
{{template "chart" .ReviewsChart}}
</section>
</main>
</body>
</html>
{{define "chart"}}<div class="chart-panel"><div id="{{.ID}}" data-effect="renderFigure('{{.ID}}', ${{.Signal}})"></div></div>{{end}}`))

type dateInput struct {
	ID     string
	Signal string
	Label  string
}

type columnToggle struct {
	Name   string
	Hidden bool
}

type chartPanel struct {
	ID     string
	Signal string
}

type pageData struct {
	Title      string
	Subtitle   string
	Summary    string
	Signals    string
	Picker     DatePicker
	DateInputs []dateInput
	Toggles    []columnToggle
	Refresh    template.JS

	Visits       gridData
	Monthly      gridData
	ScansChart   chartPanel
	ReviewsChart chartPanel
}

func Dashboard(p DashboardProps) templ.Component {
	signals, err := json.Marshal(p.Signals)
	if err != nil {
		signals = []byte("{}")
	}

	data := pageData{
		Title:    Title,
		Subtitle: Subtitle,
		Summary:  Summary,
		Signals:  string(signals),
		Picker:   p.Picker,
		DateInputs: []dateInput{
			{ID: "start-date", Signal: "startDate", Label: "Start date"},
			{ID: "end-date", Signal: "endDate", Label: "End date"},
		},
		Refresh:      sseGet(visitsEndpoint),
		Visits:       visitsGrid(p.Visits, p.Query),
		Monthly:      monthlyGrid(p.Monthly, p.MonthlySort),
		ScansChart:   chartPanel{ID: ScansChartID, Signal: "_scansFigure"},
		ReviewsChart: chartPanel{ID: ReviewsChartID, Signal: "_reviewsFigure"},
	}
	for _, col := range models.VisitColumns {
		data.Toggles = append(data.Toggles, columnToggle{Name: col, Hidden: slices.Contains(p.Query.Hidden, col)})
	}
	return fromTemplate(pageTemplates, "dashboard", data)
}

// ChartPanel is an empty Plotly target redrawn whenever its figure signal
// changes.
func ChartPanel(id, signal string) templ.Component {
	return fromTemplate(pageTemplates, "chart", chartPanel{ID: id, Signal: signal})
}

const figureScript = `
window.renderFigure = function (id, figure) {
  if (!figure || !window.Plotly) { return; }
  Plotly.react(id, figure.data, figure.layout, {displayModeBar: false});
};`

const styles = `
body { background: #272b30; color: #c8c8c8; font-family: system-ui, sans-serif; margin: 0; }
.container { max-width: 1400px; margin: 0 auto; padding: 1rem; }
header { text-align: center; }
.date-picker, .column-toggles { display: flex; gap: .5rem; flex-wrap: wrap; margin: .75rem 0; }
.column-toggle { background: #3a3f44; color: #fff; border: 1px solid #555; padding: .25rem .5rem; cursor: pointer; }
.column-toggle.hidden-column { opacity: .4; text-decoration: line-through; }
.data-table table { border-collapse: collapse; width: 100%; }
.data-table th { background: rgb(30, 30, 30); }
.data-table td { background: rgb(50, 50, 50); color: #fff; white-space: normal; padding: .25rem .5rem; text-align: right; }
.data-table td.left { text-align: left; }
.sort-button { background: none; border: none; color: #fff; cursor: pointer; font-weight: bold; }
.filter-input { width: 100%; box-sizing: border-box; background: #222; color: #fff; border: 1px solid #444; }
.pager { display: flex; gap: .25rem; align-items: center; justify-content: flex-end; margin: .5rem 0; }
.summary-row { display: grid; grid-template-columns: 1fr 1fr 1fr; gap: 1rem; align-items: start; }
`
