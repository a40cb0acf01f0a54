package templates

import (
	"html/template"
	"slices"
	"strconv"

	"github.com/a-h/templ"

	"visit-dashboard/internal/models"
	"visit-dashboard/internal/table"
)

const (
	VisitsTableID  = "visits-table"
	MonthlyTableID = "monthly-table"

	visitsEndpoint  = "/sse/visits"
	monthlyEndpoint = "/sse/monthly"
)

// Text columns are left aligned, everything else right aligned.
var leftAligned = []string{models.ColGuestTags, models.ColRequestStatus}

// Signal references such as SortSig are fixed identifiers owned by this
// package, so they are passed as template.JS; column names and row values
// go through the contextual escaper.
var gridTemplates = template.Must(template.New("grid").Parse(`
<div id="{{.ID}}" class="data-table">
<table>
<thead><tr>
{{- if .Selectable}}<th class="select-col"></th>{{end}}
{{- range .Columns}}<th style="min-width:{{$.CellWidth}}px;max-width:{{$.CellWidth}}px"><button type="button" class="sort-button" data-on:click="{{$.SortSig}} = '{{.Name}}'; {{$.Get}}">{{.Name}}
{{- if .Asc}} <span class="sort-indicator">&#9650;</span>{{else if .Desc}} <span class="sort-indicator">&#9660;</span>{{end -}}
</button></th>{{end -}}
</tr>
{{- if .Filterable}}
<tr class="filter-row">
{{- if .Selectable}}<th></th>{{end}}
{{- range .Columns}}<th><input type="text" class="filter-input" placeholder="filter data..." value="{{.Filter}}" data-bind="{{$.FilterSig}}.{{.Name}}" data-on:input__debounce.300ms="{{$.PageSig}} = 0; {{$.Get}}"></th>{{end -}}
</tr>
{{- end}}
</thead>
<tbody>
{{- range .Rows}}
<tr>
{{- if $.Selectable}}<td class="select-col"><input type="checkbox" data-on:change="$selectToggle = {{.ID}}; {{$.Get}}"{{if .Checked}} checked{{end}}></td>{{end}}
{{- range .Cells}}<td{{if .Left}} class="left"{{end}}>{{.Text}}</td>{{end -}}
</tr>
{{- end}}
</tbody>
</table>
<div class="pager">
<button type="button" data-on:click="{{.PageSig}} = 0; {{.Get}}"{{if .First}} disabled{{end}}>&laquo;</button>
<button type="button" data-on:click="{{.PageSig}} = {{.Prev}}; {{.Get}}"{{if .First}} disabled{{end}}>&lsaquo;</button>
<span class="page-label">{{.PageLabel}}</span>
<button type="button" data-on:click="{{.PageSig}} = {{.Next}}; {{.Get}}"{{if .Last}} disabled{{end}}>&rsaquo;</button>
<button type="button" data-on:click="{{.PageSig}} = {{.LastPage}}; {{.Get}}"{{if .Last}} disabled{{end}}>&raquo;</button>
<span class="row-count">{{.Total}} rows</span>
</div>
</div>`))

type gridColumn struct {
	Name   string
	Asc    bool
	Desc   bool
	Filter string
}

type gridCell struct {
	Text string
	Left bool
}

type gridRow struct {
	ID      int
	Checked bool
	Cells   []gridCell
}

type gridData struct {
	ID         string
	Columns    []gridColumn
	Rows       []gridRow
	Selectable bool
	Filterable bool
	CellWidth  int

	Get       template.JS
	SortSig   template.JS
	PageSig   template.JS
	FilterSig string

	PageLabel string
	Total     int
	First     bool
	Last      bool
	Prev      int
	Next      int
	LastPage  int
}

type gridOptions[R table.Row] struct {
	id        string
	columns   []string
	view      table.View[R]
	sortBy    []table.SortBy
	endpoint  string
	sortSig   string
	pageSig   string
	filters   map[string]string
	filterSig string
	selected  []int
	rowID     func(R) int
	cellWidth int
}

func newGrid[R table.Row](o gridOptions[R]) gridData {
	v := o.view
	g := gridData{
		ID:         o.id,
		Selectable: o.rowID != nil,
		Filterable: o.filterSig != "",
		CellWidth:  o.cellWidth,
		Get:        sseGet(o.endpoint),
		SortSig:    template.JS("$" + o.sortSig),
		PageSig:    template.JS("$" + o.pageSig),
		FilterSig:  o.filterSig,
		PageLabel:  strconv.Itoa(v.Page+1) + " / " + strconv.Itoa(v.PageCount),
		Total:      v.Total,
		First:      v.Page == 0,
		Last:       v.Page >= v.PageCount-1,
		Prev:       max(v.Page-1, 0),
		Next:       min(v.Page+1, max(v.PageCount-1, 0)),
		LastPage:   max(v.PageCount-1, 0),
	}

	for _, col := range o.columns {
		dir := table.SortDirection(o.sortBy, col)
		g.Columns = append(g.Columns, gridColumn{
			Name:   col,
			Asc:    dir == table.Asc,
			Desc:   dir == table.Desc,
			Filter: o.filters[col],
		})
	}

	for _, row := range v.Rows {
		r := gridRow{Cells: make([]gridCell, 0, len(o.columns))}
		if o.rowID != nil {
			r.ID = o.rowID(row)
			r.Checked = slices.Contains(o.selected, r.ID)
		}
		for _, col := range o.columns {
			r.Cells = append(r.Cells, gridCell{
				Text: row.Cell(col).String(),
				Left: slices.Contains(leftAligned, col),
			})
		}
		g.Rows = append(g.Rows, r)
	}
	return g
}

func visitsGrid(view table.View[models.VisitRecord], q table.Query) gridData {
	return newGrid(gridOptions[models.VisitRecord]{
		id:        VisitsTableID,
		columns:   table.VisibleColumns(models.VisitColumns, q.Hidden),
		view:      view,
		sortBy:    q.SortBy,
		endpoint:  visitsEndpoint,
		sortSig:   "sortToggle",
		pageSig:   "page",
		filters:   q.Filters,
		filterSig: "filters",
		selected:  q.Selected,
		rowID:     func(r models.VisitRecord) int { return r.RowID },
		cellWidth: 130,
	})
}

func monthlyGrid(view table.View[models.MonthlyAggregate], sortBy []table.SortBy) gridData {
	return newGrid(gridOptions[models.MonthlyAggregate]{
		id:        MonthlyTableID,
		columns:   models.MonthlyColumns,
		view:      view,
		sortBy:    sortBy,
		endpoint:  monthlyEndpoint,
		sortSig:   "monthlySortToggle",
		pageSig:   "monthlyPage",
		cellWidth: 90,
	})
}

// VisitsTable renders the interactive visits table for the current page.
func VisitsTable(view table.View[models.VisitRecord], q table.Query) templ.Component {
	return fromTemplate(gridTemplates, "grid", visitsGrid(view, q))
}

// MonthlyTable renders the read-only monthly summary; it sorts but does not
// filter or select.
func MonthlyTable(view table.View[models.MonthlyAggregate], sortBy []table.SortBy) templ.Component {
	return fromTemplate(gridTemplates, "grid", monthlyGrid(view, sortBy))
}
