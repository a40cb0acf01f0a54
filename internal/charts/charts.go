// Package charts derives chart specifications from the rows currently
// visible in the visits table. Every function is pure and recomputes from
// its input alone.
package charts

import (
	"math"
	"slices"

	"visit-dashboard/internal/models"
)

const (
	ScansTitle   = "Scans per Day from Filtered Data"
	ReviewsTitle = "Reviews from Filtered Data"

	DarkTemplate = "plotly_dark"
	ChartHeight  = 300
)

var (
	reviewTickVals = []float64{1, 5, 10}
	reviewTickText = []string{"One", "Five", "Ten"}
)

// ScansPerDay counts, per DaysPassed, the rows that have a seated timestamp.
// Days whose rows were never seated still appear with a zero count.
func ScansPerDay(rows []models.VisitRecord) models.ChartSpec {
	counts := make(map[int]int)
	for _, r := range rows {
		if r.LastSeatedAt.Raw != "" {
			counts[r.DaysPassed]++
		} else if _, ok := counts[r.DaysPassed]; !ok {
			counts[r.DaysPassed] = 0
		}
	}

	days := make([]int, 0, len(counts))
	for d := range counts {
		days = append(days, d)
	}
	slices.Sort(days)

	points := make([]models.Point, 0, len(days))
	for _, d := range days {
		points = append(points, models.Point{X: float64(d), Y: float64(counts[d])})
	}

	return models.ChartSpec{
		Kind:     models.ChartLine,
		Title:    ScansTitle,
		XField:   models.ColDaysPassed,
		YField:   models.ColScans,
		Points:   points,
		Values:   []float64{},
		Bins:     []models.Bin{},
		XAxis:    models.Axis{Title: models.ColDaysPassed},
		Template: DarkTemplate,
		Height:   ChartHeight,
	}
}

// ReviewHistogram bins the ratings of rows into unit-wide buckets. Tick
// labels stay at 1, 5 and 10 whatever the data.
func ReviewHistogram(rows []models.VisitRecord) models.ChartSpec {
	values := make([]float64, 0, len(rows))
	for _, r := range rows {
		if r.LastVisitRating != nil {
			values = append(values, *r.LastVisitRating)
		}
	}

	return models.ChartSpec{
		Kind:   models.ChartHistogram,
		Title:  ReviewsTitle,
		XField: models.ColLastVisitRating,
		YField: "count",
		Points: []models.Point{},
		Values: values,
		Bins:   unitBins(values),
		XAxis: models.Axis{
			Title:    models.ColLastVisitRating,
			TickVals: slices.Clone(reviewTickVals),
			TickText: slices.Clone(reviewTickText),
		},
		Template: DarkTemplate,
		Height:   ChartHeight,
	}
}

func unitBins(values []float64) []models.Bin {
	counts := make(map[float64]int)
	for _, v := range values {
		counts[math.Floor(v)]++
	}

	starts := make([]float64, 0, len(counts))
	for s := range counts {
		starts = append(starts, s)
	}
	slices.Sort(starts)

	bins := make([]models.Bin, 0, len(starts))
	for _, s := range starts {
		bins = append(bins, models.Bin{Start: s, End: s + 1, Count: counts[s]})
	}
	return bins
}
