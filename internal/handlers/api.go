package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"visit-dashboard/internal/charts"
	"visit-dashboard/internal/config"
	"visit-dashboard/internal/errors"
	"visit-dashboard/internal/models"
	"visit-dashboard/internal/observability"
	"visit-dashboard/internal/services"
)

type APIHandlers struct {
	dashboard *services.Dashboard
	cfg       config.DashboardConfig
	logger    *slog.Logger
}

func NewAPIHandlers(dashboard *services.Dashboard, cfg config.DashboardConfig, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		dashboard: dashboard,
		cfg:       cfg,
		logger:    logger,
	}
}

// VisitsPage is one page of the filtered and sorted visits.
type VisitsPage struct {
	Rows      []models.VisitRecord `json:"rows"`
	Total     int                  `json:"total"`
	Page      int                  `json:"page"`
	PageSize  int                  `json:"page_size"`
	PageCount int                  `json:"page_count"`
}

func (h *APIHandlers) HandleVisits(w http.ResponseWriter, r *http.Request) {
	view, ok := h.recompute(w, r)
	if !ok {
		return
	}

	rows := view.Table.Rows
	if rows == nil {
		rows = []models.VisitRecord{}
	}

	errors.WriteSuccess(w, VisitsPage{
		Rows:      rows,
		Total:     view.Table.Total,
		Page:      view.Table.Page,
		PageSize:  view.Table.PageSize,
		PageCount: view.Table.PageCount,
	})
}

func (h *APIHandlers) HandleMonthly(w http.ResponseWriter, r *http.Request) {
	data := h.dashboard.MonthlyAggregates()

	headers := map[string]string{
		"Cache-Control": "public, max-age=300",
	}

	errors.WriteSuccessWithHeaders(w, data, headers)
}

func (h *APIHandlers) HandleScansPerDay(w http.ResponseWriter, r *http.Request) {
	view, ok := h.recompute(w, r)
	if !ok {
		return
	}
	h.writeChart(w, r, view.ScansPerDay)
}

func (h *APIHandlers) HandleReviews(w http.ResponseWriter, r *http.Request) {
	view, ok := h.recompute(w, r)
	if !ok {
		return
	}
	h.writeChart(w, r, view.Reviews)
}

// writeChart answers with the ChartSpec, or with the Plotly figure when
// format=plotly is requested.
func (h *APIHandlers) writeChart(w http.ResponseWriter, r *http.Request, spec models.ChartSpec) {
	if r.URL.Query().Get("format") == "plotly" {
		errors.WriteSuccess(w, charts.NewFigure(spec))
		return
	}
	errors.WriteSuccess(w, spec)
}

func (h *APIHandlers) recompute(w http.ResponseWriter, r *http.Request) (services.View, bool) {
	requestID := observability.GetRequestID(r.Context())

	start, end, q, err := parseVisitsQuery(r.URL.Query(), h.cfg.PageSize)
	if err != nil {
		errors.WriteError(w, h.logger, errors.BadRequestWrap(err, "invalid table query"), requestID)
		return services.View{}, false
	}

	rng, err := services.ParseDateRange(start, end)
	if err != nil {
		errors.WriteError(w, h.logger, errors.BadRequestWrap(err, "invalid date range"), requestID)
		return services.View{}, false
	}

	return h.dashboard.Recompute(services.ViewState{Range: rng, Query: q}), true
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {

	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {

	stats := h.dashboard.Stats()

	errors.WriteSuccess(w, stats)
}
