package services

import (
	"slices"

	"github.com/shopspring/decimal"

	"visit-dashboard/internal/models"
)

type monthBucket struct {
	scans int
	rated int
	sum   float64
}

var hundred = decimal.NewFromInt(100)

// roundHalfEven scales by 100 in float64 and rounds half to even, so a mean
// such as 2.675 (stored just below) becomes 2.67 and 7.125 becomes 7.12.
func roundHalfEven(v float64) float64 {
	return decimal.NewFromFloat(v * 100).RoundBank(0).Div(hundred).InexactFloat64()
}

// AggregateMonthly groups records by MonthsPassed, ascending. Scans counts
// every record in the bucket; the average only covers rated visits and is
// rounded to two decimals.
func AggregateMonthly(records []models.VisitRecord) []models.MonthlyAggregate {
	buckets := make(map[int]*monthBucket)
	for _, rec := range records {
		b := buckets[rec.MonthsPassed]
		if b == nil {
			b = &monthBucket{}
			buckets[rec.MonthsPassed] = b
		}
		b.scans++
		if rec.LastVisitRating != nil {
			b.rated++
			b.sum += *rec.LastVisitRating
		}
	}

	keys := make([]int, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	result := make([]models.MonthlyAggregate, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		agg := models.MonthlyAggregate{MonthsPassed: k, Scans: b.scans}
		if b.rated > 0 {
			avg := roundHalfEven(b.sum / float64(b.rated))
			agg.AvgRating = &avg
		}
		result = append(result, agg)
	}
	return result
}
