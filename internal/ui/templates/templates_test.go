package templates

import (
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"visit-dashboard/internal/models"
	"visit-dashboard/internal/table"
)

func mustRender(t *testing.T, c templ.Component) string {
	t.Helper()
	html, err := RenderString(context.Background(), c)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return html
}

func count(n int) *int {
	return &n
}

func visitsView() table.View[models.VisitRecord] {
	rows := []models.VisitRecord{
		{RowID: 7, PartySize: count(2), SpaceID: "101", GuestTags: `<script>alert("x")</script>`, DaysPassed: 5},
		{RowID: 8, PartySize: count(4), SpaceID: "102", DaysPassed: 6},
	}
	return table.View[models.VisitRecord]{Virtual: rows, Rows: rows, Total: 12, Page: 0, PageSize: 2, PageCount: 6}
}

func TestVisitsTable(t *testing.T) {
	q := table.Query{
		Filters:  map[string]string{models.ColPartySize: ">=2"},
		SortBy:   []table.SortBy{{ColumnID: models.ColSpaceID, Direction: table.Desc}},
		Hidden:   []string{models.ColDaysPassed},
		Selected: []int{8},
	}
	html := mustRender(t, VisitsTable(visitsView(), q))

	for _, want := range []string{
		`id="visits-table"`,
		`<table>`,
		`>PartySize`,
		`&#9660;`,
		`value="&gt;=2"`,
		`data-bind="filters.PartySize"`,
		`$selectToggle =  8 ;`,
		`$sortToggle = 'SpaceId'`,
		` checked></td>`,
		`1 / 6`,
		`12 rows`,
		`&lt;script&gt;`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("visits table missing %q", want)
		}
	}

	if strings.Contains(html, `<script>`) {
		t.Error("cell text must be escaped")
	}
	if strings.Contains(html, ">DaysPassed") {
		t.Error("hidden column should not be rendered")
	}
	if strings.Count(html, " checked") != 1 {
		t.Errorf("exactly one row should be checked, got %d", strings.Count(html, " checked"))
	}
}

func TestVisitsTable_PagerBounds(t *testing.T) {
	view := visitsView()
	view.Page = 5
	html := mustRender(t, VisitsTable(view, table.Query{}))

	if !strings.Contains(html, "6 / 6") {
		t.Error("expected last page label")
	}
	// The two forward buttons are disabled on the last page, the back ones are not.
	if got := strings.Count(html, " disabled"); got != 2 {
		t.Errorf("disabled buttons = %d, want 2", got)
	}
}

func TestMonthlyTable(t *testing.T) {
	avg := 7.67
	rows := []models.MonthlyAggregate{
		{MonthsPassed: 0, Scans: 12, AvgRating: &avg},
		{MonthsPassed: 1, Scans: 3},
	}
	view := table.View[models.MonthlyAggregate]{Virtual: rows, Rows: rows, Total: 2, PageCount: 1}
	html := mustRender(t, MonthlyTable(view, []table.SortBy{{ColumnID: models.ColScans, Direction: table.Asc}}))

	for _, want := range []string{
		`id="monthly-table"`,
		`>Avg Rating`,
		`<td>7.67</td>`,
		`<td></td>`,
		`&#9650;`,
		`monthlySortToggle`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("monthly table missing %q", want)
		}
	}

	if strings.Contains(html, "filter-input") || strings.Contains(html, "checkbox") {
		t.Error("monthly table should not filter or select")
	}
}

func TestDashboard(t *testing.T) {
	props := DashboardProps{
		Signals: map[string]any{"endDate": "2021-12-01", "page": 0},
		Picker:  DatePicker{Min: "2021-03-01", Max: "2022-01-01", InitialMonth: "2021-01-01"},
		Query:   table.Query{Hidden: []string{models.ColGuestTags}},
		Visits:  visitsView(),
		Monthly: table.View[models.MonthlyAggregate]{PageCount: 1},
	}
	html := mustRender(t, Dashboard(props))

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>Restaurant Dashboard</title>",
		Subtitle,
		Summary,
		`min="2021-03-01"`,
		`max="2022-01-01"`,
		`data-initial-month="2021-01-01"`,
		`data-signals="{&#34;endDate&#34;:&#34;2021-12-01&#34;,&#34;page&#34;:0}"`,
		`id="scans-chart"`,
		`id="reviews-chart"`,
		`$_scansFigure`,
		`column-toggle hidden-column`,
		datastarScript,
		plotlyScript,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}

	// Summary row order: scans chart, monthly table, reviews chart.
	scans := strings.Index(html, `id="scans-chart"`)
	monthly := strings.Index(html, `id="monthly-table"`)
	reviews := strings.Index(html, `id="reviews-chart"`)
	if !(scans < monthly && monthly < reviews) {
		t.Errorf("summary order = %d %d %d", scans, monthly, reviews)
	}
}

func TestVisitsTable_EscapesFilterValues(t *testing.T) {
	q := table.Query{Filters: map[string]string{models.ColGuestTags: `contains "x" onmouseover='y'`}}
	html := mustRender(t, VisitsTable(visitsView(), q))

	want := `value="contains &#34;x&#34; onmouseover=&#39;y&#39;"`
	if !strings.Contains(html, want) {
		t.Errorf("filter value not attribute-escaped, want %q", want)
	}
}

func TestChartPanel(t *testing.T) {
	html := mustRender(t, ChartPanel(ScansChartID, "_scansFigure"))

	want := `<div id="scans-chart" data-effect="renderFigure('scans-chart', $_scansFigure)">`
	if !strings.Contains(html, want) {
		t.Errorf("chart panel = %s", html)
	}
}
