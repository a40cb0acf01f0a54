package table

import (
	"strconv"
	"strings"
)

// Cell is a single table value as seen by filtering and sorting.
type Cell struct {
	Text    string
	Num     float64
	Numeric bool
	Null    bool
}

// Row is anything that can be displayed as a table row.
type Row interface {
	Cell(column string) Cell
}

func Null() Cell {
	return Cell{Null: true}
}

func Text(s string) Cell {
	if s == "" {
		return Null()
	}
	return Cell{Text: s}
}

func Int(n int) Cell {
	return Cell{Text: strconv.Itoa(n), Num: float64(n), Numeric: true}
}

func Float(f float64) Cell {
	return Cell{Text: strconv.FormatFloat(f, 'f', -1, 64), Num: f, Numeric: true}
}

func IntPtr(n *int) Cell {
	if n == nil {
		return Null()
	}
	return Int(*n)
}

func FloatPtr(f *float64) Cell {
	if f == nil {
		return Null()
	}
	return Float(*f)
}

// Auto types a raw string: numeric when it parses as a float, text otherwise.
func Auto(s string) Cell {
	s = strings.TrimSpace(s)
	if s == "" {
		return Null()
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Cell{Text: s, Num: f, Numeric: true}
	}
	return Cell{Text: s}
}

// String renders the cell for display; nulls render empty.
func (c Cell) String() string {
	if c.Null {
		return ""
	}
	return c.Text
}
