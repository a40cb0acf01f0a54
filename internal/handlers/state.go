package handlers

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"visit-dashboard/internal/config"
	"visit-dashboard/internal/models"
	"visit-dashboard/internal/table"
)

const pickerLayout = "2006-01-02"

// Signals mirrors the Datastar signal store of the dashboard page. The
// *Toggle fields carry a single pending UI action and are cleared after the
// server applies it. Signals starting with an underscore stay in the
// browser and are not listed here.
type Signals struct {
	StartDate         string            `json:"startDate"`
	EndDate           string            `json:"endDate"`
	Filters           map[string]string `json:"filters"`
	SortBy            []table.SortBy    `json:"sortBy"`
	Page              int               `json:"page"`
	HiddenColumns     []string          `json:"hiddenColumns"`
	SelectedRows      []int             `json:"selectedRows"`
	SortToggle        string            `json:"sortToggle"`
	ColumnToggle      string            `json:"columnToggle"`
	SelectToggle      *int              `json:"selectToggle"`
	MonthlySort       []table.SortBy    `json:"monthlySort"`
	MonthlyPage       int               `json:"monthlyPage"`
	MonthlySortToggle string            `json:"monthlySortToggle"`
}

// InitialSignals is the state the page opens with: no start date, the
// configured end date, nothing filtered or sorted.
func InitialSignals(cfg config.DashboardConfig) Signals {
	filters := make(map[string]string, len(models.VisitColumns))
	for _, col := range models.VisitColumns {
		filters[col] = ""
	}
	return Signals{
		EndDate:       cfg.InitialEnd.Format(pickerLayout),
		Filters:       filters,
		SortBy:        []table.SortBy{},
		HiddenColumns: slices.Clone(cfg.HiddenColumns),
		SelectedRows:  []int{},
		MonthlySort:   []table.SortBy{},
	}
}

// applyToggles folds the pending UI actions into the persistent state.
func (s *Signals) applyToggles() {
	if s.SortToggle != "" && slices.Contains(models.VisitColumns, s.SortToggle) {
		s.SortBy = table.ToggleSort(s.SortBy, s.SortToggle)
	}
	if s.ColumnToggle != "" && slices.Contains(models.VisitColumns, s.ColumnToggle) {
		s.HiddenColumns = table.ToggleHidden(s.HiddenColumns, s.ColumnToggle)
	}
	if s.SelectToggle != nil {
		s.SelectedRows = table.ToggleSelected(s.SelectedRows, *s.SelectToggle)
	}
	if s.MonthlySortToggle != "" && slices.Contains(models.MonthlyColumns, s.MonthlySortToggle) {
		s.MonthlySort = table.ToggleSort(s.MonthlySort, s.MonthlySortToggle)
	}
	s.SortToggle, s.ColumnToggle, s.SelectToggle, s.MonthlySortToggle = "", "", nil, ""

	if s.Filters == nil {
		s.Filters = map[string]string{}
	}
	if s.SortBy == nil {
		s.SortBy = []table.SortBy{}
	}
	if s.HiddenColumns == nil {
		s.HiddenColumns = []string{}
	}
	if s.SelectedRows == nil {
		s.SelectedRows = []int{}
	}
	if s.MonthlySort == nil {
		s.MonthlySort = []table.SortBy{}
	}
}

func (s Signals) visitsQuery(pageSize int) table.Query {
	return table.Query{
		Filters:  s.Filters,
		SortBy:   s.SortBy,
		Page:     s.Page,
		PageSize: pageSize,
		Hidden:   s.HiddenColumns,
		Selected: s.SelectedRows,
	}
}

func (s Signals) monthlyQuery(pageSize int) table.Query {
	return table.Query{
		SortBy:   s.MonthlySort,
		Page:     s.MonthlyPage,
		PageSize: pageSize,
	}
}

// parseVisitsQuery reads the REST form of the table state:
//
//	?start=2021-06-01&end=2021-06-30&filter.PartySize=>2&sort=DaysPassed:desc&page=1
func parseVisitsQuery(values url.Values, pageSize int) (start, end string, q table.Query, err error) {
	q = table.Query{Filters: map[string]string{}, PageSize: pageSize}

	for key, vals := range values {
		col, ok := strings.CutPrefix(key, "filter.")
		if !ok || len(vals) == 0 {
			continue
		}
		if !slices.Contains(models.VisitColumns, col) {
			return "", "", table.Query{}, fmt.Errorf("unknown filter column %q", col)
		}
		q.Filters[col] = vals[0]
	}

	if raw := values.Get("sort"); raw != "" {
		q.SortBy, err = parseSort(raw, models.VisitColumns)
		if err != nil {
			return "", "", table.Query{}, err
		}
	}

	if raw := values.Get("page"); raw != "" {
		q.Page, err = strconv.Atoi(raw)
		if err != nil || q.Page < 0 {
			return "", "", table.Query{}, fmt.Errorf("invalid page %q", raw)
		}
	}

	return values.Get("start"), values.Get("end"), q, nil
}

func parseSort(raw string, columns []string) ([]table.SortBy, error) {
	var by []table.SortBy
	for _, part := range strings.Split(raw, ",") {
		col, dir, found := strings.Cut(strings.TrimSpace(part), ":")
		if !found {
			dir = string(table.Asc)
		}
		if !slices.Contains(columns, col) {
			return nil, fmt.Errorf("unknown sort column %q", col)
		}
		switch table.Direction(strings.ToLower(dir)) {
		case table.Asc:
			by = append(by, table.SortBy{ColumnID: col, Direction: table.Asc})
		case table.Desc:
			by = append(by, table.SortBy{ColumnID: col, Direction: table.Desc})
		default:
			return nil, fmt.Errorf("invalid sort direction %q", dir)
		}
	}
	return by, nil
}

func formatPickerDate(t time.Time) string {
	return t.Format(pickerLayout)
}
