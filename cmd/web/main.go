package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"visit-dashboard/internal/config"
	"visit-dashboard/internal/handlers"
	"visit-dashboard/internal/middleware"
	"visit-dashboard/internal/observability"
	"visit-dashboard/internal/server"
	"visit-dashboard/internal/services"
)

const renderTimeout = 10 * time.Second

// dashboardHandler renders the page in its initial state. Debug mode turns
// off caching entirely so template edits show on reload.
func dashboardHandler(page *handlers.PageHandlers, logger *slog.Logger, debug bool) http.HandlerFunc {
	cacheControl := "no-cache"
	if debug {
		cacheControl = "no-store"
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
		defer cancel()

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", cacheControl)
		if err := page.Render(ctx, w); err != nil {
			logger.Error("render dashboard", "error", err, "request_id", observability.GetRequestID(r.Context()))
			http.Error(w, "render error", http.StatusInternalServerError)
		}
	}
}

func newHandler(cfg *config.Config, dashboard *services.Dashboard, metrics *observability.Metrics, logger *slog.Logger) http.Handler {
	page := handlers.NewPageHandlers(dashboard, cfg.Dashboard, logger)
	templateHandlers := &server.TemplateHandlers{
		Dashboard: dashboardHandler(page, logger, cfg.Server.Debug),
	}

	srv := server.NewServer(dashboard, cfg.Dashboard, metrics, logger, templateHandlers)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger, cfg.Server.Debug),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
		middleware.Metrics(metrics),
	)

	return middlewareChain(srv)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"addr", cfg.Address(),
		"dataset", cfg.Dataset.Path,
		"debug", cfg.Server.Debug,
	)

	metrics := observability.NewMetrics()

	dashboard := services.NewDashboard()
	dashboard.SetObserver(metrics)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Dataset.LoadTimeout)
	start := time.Now()
	err = dashboard.LoadFromFile(ctx, cfg.Dataset.Path)
	cancel()
	if err != nil {
		logger.Error("failed to load dataset", "path", cfg.Dataset.Path, "error", err)
		os.Exit(1)
	}
	records := len(dashboard.Records())
	metrics.SetDatasetRecords(records)
	logger.Info("dataset loaded", "records", records, "duration", time.Since(start))

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      newHandler(cfg, dashboard, metrics, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg.Server)

	gracefulServer.RegisterShutdownHook("dashboard", func(ctx context.Context) error {
		logger.Info("shutting down dashboard", "stats", dashboard.Stats())
		return nil
	})

	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
