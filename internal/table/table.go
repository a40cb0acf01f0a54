// Package table implements the interactive table behaviour of the dashboard:
// per-column filter expressions, multi-column sorting, pagination, column
// hiding and row selection.
package table

import (
	"slices"
	"strings"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

type SortBy struct {
	ColumnID  string    `json:"column_id"`
	Direction Direction `json:"direction"`
}

// Query is the table state reported by the browser.
type Query struct {
	Filters  map[string]string `json:"filters"`
	SortBy   []SortBy          `json:"sortBy"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
	Hidden   []string          `json:"hiddenColumns"`
	Selected []int             `json:"selectedRows"`
}

// View is the outcome of applying a Query. Virtual holds every row that
// survives filtering, in sorted order, across all pages; Rows is the
// current page of it.
type View[R Row] struct {
	Virtual   []R
	Rows      []R
	Total     int
	Page      int
	PageSize  int
	PageCount int
}

func Apply[R Row](rows []R, q Query) View[R] {
	virtual := Filter(rows, q.Filters)
	Sort(virtual, q.SortBy)

	v := View[R]{
		Virtual:  virtual,
		Total:    len(virtual),
		PageSize: q.PageSize,
	}

	if q.PageSize <= 0 {
		v.PageCount = 1
		v.Rows = virtual
		return v
	}

	v.PageCount = max(1, (len(virtual)+q.PageSize-1)/q.PageSize)
	v.Page = min(max(q.Page, 0), v.PageCount-1)

	start := v.Page * q.PageSize
	end := min(start+q.PageSize, len(virtual))
	if start < end {
		v.Rows = virtual[start:end]
	} else {
		v.Rows = virtual[:0]
	}
	return v
}

// Filter returns the rows matching every column filter, in input order.
// The input slice is not modified.
func Filter[R Row](rows []R, filters map[string]string) []R {
	compiled := make([]filter, 0, len(filters))
	for column, expr := range filters {
		if f, ok := parseFilter(column, expr); ok {
			compiled = append(compiled, f)
		}
	}

	out := make([]R, 0, len(rows))
	for _, row := range rows {
		if matchAll(row, compiled) {
			out = append(out, row)
		}
	}
	return out
}

func matchAll[R Row](row R, filters []filter) bool {
	for _, f := range filters {
		if !f.match(row.Cell(f.column)) {
			return false
		}
	}
	return true
}

// Sort orders rows in place by each SortBy in turn. Equal rows keep their
// relative order; nulls sort last in either direction.
func Sort[R Row](rows []R, by []SortBy) {
	if len(by) == 0 {
		return
	}
	slices.SortStableFunc(rows, func(a, b R) int {
		for _, s := range by {
			ca, cb := a.Cell(s.ColumnID), b.Cell(s.ColumnID)
			if ca.Null || cb.Null {
				switch {
				case ca.Null && cb.Null:
					continue
				case ca.Null:
					return 1
				default:
					return -1
				}
			}
			c := compareCells(ca, cb)
			if s.Direction == Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
}

func compareCells(a, b Cell) int {
	if a.Numeric && b.Numeric {
		switch {
		case a.Num < b.Num:
			return -1
		case a.Num > b.Num:
			return 1
		}
		return 0
	}
	return strings.Compare(a.Text, b.Text)
}

// ToggleSort cycles column through ascending, descending and unsorted,
// keeping the other sort keys in place.
func ToggleSort(by []SortBy, column string) []SortBy {
	out := make([]SortBy, 0, len(by)+1)
	found := false
	for _, s := range by {
		if s.ColumnID != column {
			out = append(out, s)
			continue
		}
		found = true
		if s.Direction == Asc {
			out = append(out, SortBy{ColumnID: column, Direction: Desc})
		}
	}
	if !found {
		out = append(out, SortBy{ColumnID: column, Direction: Asc})
	}
	return out
}

// SortDirection reports how column is currently sorted, or "" when it is not.
func SortDirection(by []SortBy, column string) Direction {
	for _, s := range by {
		if s.ColumnID == column {
			return s.Direction
		}
	}
	return ""
}

func ToggleHidden(hidden []string, column string) []string {
	return toggle(hidden, column)
}

func ToggleSelected(selected []int, rowID int) []int {
	out := toggle(selected, rowID)
	slices.Sort(out)
	return out
}

func toggle[T comparable](set []T, item T) []T {
	if i := slices.Index(set, item); i >= 0 {
		return slices.Delete(slices.Clone(set), i, i+1)
	}
	return append(slices.Clone(set), item)
}

// VisibleColumns returns columns minus the hidden ones, preserving order.
func VisibleColumns(columns, hidden []string) []string {
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		if !slices.Contains(hidden, c) {
			out = append(out, c)
		}
	}
	return out
}
