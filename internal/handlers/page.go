package handlers

import (
	"context"
	"io"
	"log/slog"

	"visit-dashboard/internal/charts"
	"visit-dashboard/internal/config"
	"visit-dashboard/internal/services"
	"visit-dashboard/internal/ui/templates"
)

// PageHandlers renders the dashboard in its initial state, so the page is
// complete before the first SSE round trip.
type PageHandlers struct {
	dashboard *services.Dashboard
	cfg       config.DashboardConfig
	logger    *slog.Logger
}

// pageSignals adds the browser-only figure signals to the initial store.
type pageSignals struct {
	Signals
	VisibleRows   int           `json:"visibleRows"`
	ScansFigure   charts.Figure `json:"_scansFigure"`
	ReviewsFigure charts.Figure `json:"_reviewsFigure"`
}

func NewPageHandlers(dashboard *services.Dashboard, cfg config.DashboardConfig, logger *slog.Logger) *PageHandlers {
	return &PageHandlers{
		dashboard: dashboard,
		cfg:       cfg,
		logger:    logger,
	}
}

func (h *PageHandlers) Props() templates.DashboardProps {
	s := InitialSignals(h.cfg)

	// The initial end date alone leaves the range incomplete, so every row
	// is shown until a start date is picked.
	rng, err := services.ParseDateRange(s.StartDate, s.EndDate)
	if err != nil {
		h.logger.Warn("ignoring unparseable initial date range", "error", err)
	}

	q := s.visitsQuery(h.cfg.PageSize)
	view := h.dashboard.Recompute(services.ViewState{Range: rng, Query: q})
	monthly := h.dashboard.MonthlyView(s.monthlyQuery(h.cfg.PageSize))

	return templates.DashboardProps{
		Signals: pageSignals{
			Signals:       s,
			VisibleRows:   view.Table.Total,
			ScansFigure:   charts.NewFigure(view.ScansPerDay),
			ReviewsFigure: charts.NewFigure(view.Reviews),
		},
		Picker: templates.DatePicker{
			Min:          formatPickerDate(h.cfg.MinDate),
			Max:          formatPickerDate(h.cfg.MaxDate),
			InitialMonth: formatPickerDate(h.cfg.InitialMonth),
		},
		Query:       q,
		Visits:      view.Table,
		Monthly:     monthly,
		MonthlySort: s.MonthlySort,
	}
}

func (h *PageHandlers) Render(ctx context.Context, w io.Writer) error {
	return templates.Dashboard(h.Props()).Render(ctx, w)
}
