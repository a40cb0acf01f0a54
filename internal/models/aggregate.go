package models

import "visit-dashboard/internal/table"

const (
	ColScans     = "Scans"
	ColAvgRating = "Avg Rating"
)

var MonthlyColumns = []string{ColMonthsPassed, ColScans, ColAvgRating}

// MonthlyAggregate summarises the visits sharing one MonthsPassed value.
// AvgRating is nil when no visit in the bucket carries a rating.
type MonthlyAggregate struct {
	MonthsPassed int      `json:"MonthsPassed"`
	Scans        int      `json:"Scans"`
	AvgRating    *float64 `json:"Avg Rating"`
}

func (m MonthlyAggregate) Cell(column string) table.Cell {
	switch column {
	case ColMonthsPassed:
		return table.Int(m.MonthsPassed)
	case ColScans:
		return table.Int(m.Scans)
	case ColAvgRating:
		return table.FloatPtr(m.AvgRating)
	}
	return table.Null()
}
