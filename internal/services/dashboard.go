package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"visit-dashboard/internal/charts"
	"visit-dashboard/internal/dataset"
	"visit-dashboard/internal/models"
	"visit-dashboard/internal/table"
)

// Recompute rule names, used as metric labels.
const (
	RuleDateRange   = "date_range"
	RuleTable       = "table"
	RuleScansPerDay = "scans_per_day"
	RuleReviews     = "reviews"
)

// Observer receives timings for each recomputation rule.
type Observer interface {
	ObserveRecompute(rule string, duration time.Duration, rows int)
}

// ViewState is everything the browser reports about the visits table.
type ViewState struct {
	Range models.DateRange
	Query table.Query
}

// View is a full recomputation of the visits table and both charts.
type View struct {
	Table       table.View[models.VisitRecord]
	ScansPerDay models.ChartSpec
	Reviews     models.ChartSpec
}

// Dashboard holds the loaded visit history and derives every view from it.
// The records are read-only once loaded.
type Dashboard struct {
	mu       sync.RWMutex
	records  []models.VisitRecord
	monthly  []models.MonthlyAggregate
	source   string
	loadedAt time.Time
	observer Observer
	logger   *slog.Logger
}

func NewDashboard() *Dashboard {
	return &Dashboard{
		records: []models.VisitRecord{},
		monthly: []models.MonthlyAggregate{},
		logger:  slog.Default(),
	}
}

func (d *Dashboard) SetObserver(o Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observer = o
}

// SetData replaces the dataset and recomputes the monthly summary.
func (d *Dashboard) SetData(records []models.VisitRecord) {
	monthly := AggregateMonthly(records)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.records = records
	d.monthly = monthly
	d.loadedAt = time.Now()
}

func (d *Dashboard) LoadFromFile(ctx context.Context, path string) error {
	records, err := dataset.NewLoader(d.logger).Load(ctx, path)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	d.SetData(records)

	d.mu.Lock()
	d.source = path
	d.mu.Unlock()

	d.logger.Info("monthly summary computed",
		"records", len(records),
		"months", len(d.MonthlyAggregates()),
	)
	return nil
}

// Records returns the full dataset in file order. Callers must not modify it.
func (d *Dashboard) Records() []models.VisitRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.records
}

func (d *Dashboard) MonthlyAggregates() []models.MonthlyAggregate {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.monthly
}

// InRange returns the records whose LastDepartedAt lies within r, bounds
// included. Unless both bounds are set the full dataset is returned.
func (d *Dashboard) InRange(r models.DateRange) []models.VisitRecord {
	records := d.Records()
	if !r.Complete() {
		return records
	}

	out := make([]models.VisitRecord, 0, len(records))
	for _, rec := range records {
		t := rec.LastDepartedAt.Time
		if t == nil {
			continue
		}
		if !t.Before(*r.Start) && !t.After(*r.End) {
			out = append(out, rec)
		}
	}
	return out
}

// Recompute derives the visible table and both charts from scratch. The
// charts are built from the filtered and sorted rows of every page.
func (d *Dashboard) Recompute(state ViewState) View {
	var rows []models.VisitRecord
	d.timed(RuleDateRange, func() int {
		rows = d.InRange(state.Range)
		return len(rows)
	})

	var tv table.View[models.VisitRecord]
	d.timed(RuleTable, func() int {
		tv = table.Apply(rows, state.Query)
		return len(tv.Virtual)
	})

	view := View{Table: tv}
	d.timed(RuleScansPerDay, func() int {
		view.ScansPerDay = charts.ScansPerDay(tv.Virtual)
		return len(view.ScansPerDay.Points)
	})
	d.timed(RuleReviews, func() int {
		view.Reviews = charts.ReviewHistogram(tv.Virtual)
		return len(view.Reviews.Values)
	})
	return view
}

// MonthlyView sorts and pages the monthly summary. Filters are ignored;
// that table is sort-only.
func (d *Dashboard) MonthlyView(q table.Query) table.View[models.MonthlyAggregate] {
	q.Filters = nil
	return table.Apply(d.MonthlyAggregates(), q)
}

func (d *Dashboard) timed(rule string, fn func() int) {
	d.mu.RLock()
	o := d.observer
	d.mu.RUnlock()

	start := time.Now()
	n := fn()
	if o != nil {
		o.ObserveRecompute(rule, time.Since(start), n)
	}
}

// ParseDateRange reads the two picker values. An empty value leaves that
// bound unset.
func ParseDateRange(start, end string) (models.DateRange, error) {
	var r models.DateRange
	if s := strings.TrimSpace(start); s != "" {
		t, err := dataset.ParseTime(s)
		if err != nil {
			return models.DateRange{}, fmt.Errorf("parse start date %q: %w", s, err)
		}
		r.Start = &t
	}
	if e := strings.TrimSpace(end); e != "" {
		t, err := dataset.ParseTime(e)
		if err != nil {
			return models.DateRange{}, fmt.Errorf("parse end date %q: %w", e, err)
		}
		r.End = &t
	}
	return r, nil
}

// Utility method for monitoring
func (d *Dashboard) Stats() map[string]any {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return map[string]any{
		"record_count": len(d.records),
		"months":       len(d.monthly),
		"source":       d.source,
		"loaded_at":    d.loadedAt,
	}
}
