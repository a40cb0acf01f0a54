package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"visit-dashboard/internal/charts"
	"visit-dashboard/internal/config"
	"visit-dashboard/internal/errors"
	"visit-dashboard/internal/models"
	"visit-dashboard/internal/observability"
	"visit-dashboard/internal/services"
	"visit-dashboard/internal/table"
	"visit-dashboard/internal/ui/templates"
)

// SSEHandlers answer the Datastar requests the page sends whenever the date
// range or table state changes. Each request carries the full signal store
// and is recomputed from scratch.
type SSEHandlers struct {
	dashboard *services.Dashboard
	cfg       config.DashboardConfig
	logger    *slog.Logger
}

func NewSSEHandlers(dashboard *services.Dashboard, cfg config.DashboardConfig, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		dashboard: dashboard,
		cfg:       cfg,
		logger:    logger,
	}
}

func (h *SSEHandlers) HandleVisits(w http.ResponseWriter, r *http.Request) {
	s, ok := h.readSignals(w, r)
	if !ok {
		return
	}

	view := h.recomputeVisits(&s)

	sse := datastar.NewSSE(w, r)
	if err := h.patchVisits(r.Context(), sse, s, view); err != nil {
		h.logger.Error("patch visits", "error", err, "request_id", observability.GetRequestID(r.Context()))
		return
	}

	flush(w)
}

func (h *SSEHandlers) HandleMonthly(w http.ResponseWriter, r *http.Request) {
	s, ok := h.readSignals(w, r)
	if !ok {
		return
	}

	monthly := h.dashboard.MonthlyView(s.monthlyQuery(h.cfg.PageSize))
	s.MonthlyPage = monthly.Page

	sse := datastar.NewSSE(w, r)
	if err := h.patchMonthly(r.Context(), sse, s, monthly); err != nil {
		h.logger.Error("patch monthly", "error", err, "request_id", observability.GetRequestID(r.Context()))
		return
	}

	flush(w)
}

func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	s, ok := h.readSignals(w, r)
	if !ok {
		return
	}

	view := h.recomputeVisits(&s)
	monthly := h.dashboard.MonthlyView(s.monthlyQuery(h.cfg.PageSize))
	s.MonthlyPage = monthly.Page

	sse := datastar.NewSSE(w, r)
	if err := h.patchVisits(r.Context(), sse, s, view); err != nil {
		h.logger.Error("patch visits", "error", err)
		return
	}
	if err := h.patchMonthly(r.Context(), sse, s, monthly); err != nil {
		h.logger.Error("patch monthly", "error", err)
		return
	}

	flush(w)
}

// readSignals decodes the signal store on top of the initial state, so a
// request without signals behaves like a fresh page, then applies any
// pending toggle.
func (h *SSEHandlers) readSignals(w http.ResponseWriter, r *http.Request) (Signals, bool) {
	s := InitialSignals(h.cfg)
	if err := datastar.ReadSignals(r, &s); err != nil {
		errors.WriteError(w, h.logger, errors.BadRequestWrap(err, "invalid signals"), observability.GetRequestID(r.Context()))
		return s, false
	}
	s.applyToggles()
	return s, true
}

func (h *SSEHandlers) recomputeVisits(s *Signals) services.View {
	rng, err := services.ParseDateRange(s.StartDate, s.EndDate)
	if err != nil {
		// The picker only produces valid dates; anything else shows everything.
		h.logger.Warn("ignoring unparseable date range", "error", err)
		rng = models.DateRange{}
	}

	view := h.dashboard.Recompute(services.ViewState{
		Range: rng,
		Query: s.visitsQuery(h.cfg.PageSize),
	})
	s.Page = view.Table.Page

	h.logger.Debug("recomputed visits view",
		"visible_rows", view.Table.Total,
		"page", view.Table.Page,
		"scan_points", len(view.ScansPerDay.Points),
		"ratings", len(view.Reviews.Values),
	)
	return view
}

func (h *SSEHandlers) patchVisits(ctx context.Context, sse *datastar.ServerSentEventGenerator, s Signals, view services.View) error {
	html, err := templates.RenderString(ctx, templates.VisitsTable(view.Table, s.visitsQuery(h.cfg.PageSize)))
	if err != nil {
		return fmt.Errorf("render visits table: %w", err)
	}
	if err := sse.PatchElements(html); err != nil {
		return err
	}

	signals, err := json.Marshal(map[string]any{
		"page":           s.Page,
		"sortBy":         s.SortBy,
		"hiddenColumns":  s.HiddenColumns,
		"selectedRows":   s.SelectedRows,
		"sortToggle":     "",
		"columnToggle":   "",
		"selectToggle":   nil,
		"visibleRows":    view.Table.Total,
		"_scansFigure":   charts.NewFigure(view.ScansPerDay),
		"_reviewsFigure": charts.NewFigure(view.Reviews),
	})
	if err != nil {
		return fmt.Errorf("marshal visits signals: %w", err)
	}
	return sse.PatchSignals(signals)
}

func (h *SSEHandlers) patchMonthly(ctx context.Context, sse *datastar.ServerSentEventGenerator, s Signals, view table.View[models.MonthlyAggregate]) error {
	html, err := templates.RenderString(ctx, templates.MonthlyTable(view, s.MonthlySort))
	if err != nil {
		return fmt.Errorf("render monthly table: %w", err)
	}
	if err := sse.PatchElements(html); err != nil {
		return err
	}

	signals, err := json.Marshal(map[string]any{
		"monthlySort":       s.MonthlySort,
		"monthlyPage":       s.MonthlyPage,
		"monthlySortToggle": "",
	})
	if err != nil {
		return fmt.Errorf("marshal monthly signals: %w", err)
	}
	return sse.PatchSignals(signals)
}

func flush(w http.ResponseWriter) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
