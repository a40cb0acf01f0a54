package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"visit-dashboard/internal/config"
	"visit-dashboard/internal/observability"
	"visit-dashboard/internal/services"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(metrics *observability.Metrics) *Server {
	templateHandlers := &TemplateHandlers{
		Dashboard: func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			io.WriteString(w, "<html></html>")
		},
	}
	return NewServer(services.NewDashboard(), config.Default().Dashboard, metrics, discardLogger(), templateHandlers)
}

func TestServer_RoutesOnEmptyDataset(t *testing.T) {
	srv := newTestServer(observability.NewMetrics())

	for _, path := range []string{
		"/",
		"/health",
		"/admin/stats",
		"/metrics",
		"/api/visits",
		"/api/monthly",
		"/api/charts/scans-per-day",
		"/api/charts/reviews",
		"/sse/visits",
		"/sse/monthly",
		"/sse/refresh-all",
	} {
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, w.Code)
		}
	}
}

func TestServer_WithoutMetrics(t *testing.T) {
	srv := newTestServer(nil)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 when metrics are disabled", w.Code)
	}
}

func TestServer_RootOnlyMatchesExactly(t *testing.T) {
	srv := newTestServer(nil)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("GET", "/favicon.ico", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := l.Addr().String()
	l.Close()
	return addr
}

func TestGracefulServer_Run(t *testing.T) {
	addr := freeAddr(t)
	httpServer := &http.Server{
		Addr: addr,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "ok")
		}),
	}

	cfg := config.Default().Server
	cfg.ShutdownTimeout = 5 * time.Second
	gs := NewGracefulServer(httpServer, discardLogger(), cfg)

	var hookRan atomic.Bool
	gs.RegisterShutdownHook("flag", func(ctx context.Context) error {
		hookRan.Store(true)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gs.Run(ctx) }()

	var resp *http.Response
	var err error
	for range 50 {
		resp, err = http.Get("http://" + addr)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("server never came up: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Errorf("body = %q", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
	if !hookRan.Load() {
		t.Error("shutdown hook did not run")
	}
}

func TestGracefulServer_HookError(t *testing.T) {
	gs := NewGracefulServer(&http.Server{}, discardLogger(), config.Default().Server)
	gs.RegisterShutdownHook("broken", func(ctx context.Context) error {
		return errors.New("flush failed")
	})

	err := gs.Shutdown(context.Background())
	if err == nil || !strings.Contains(err.Error(), "broken") {
		t.Errorf("Shutdown() error = %v, want hook failure", err)
	}
}

func TestGracefulServer_ListenError(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	gs := NewGracefulServer(&http.Server{Addr: l.Addr().String()}, discardLogger(), config.Default().Server)
	if err := gs.Run(context.Background()); err == nil {
		t.Error("expected error when the address is taken")
	}
}
