package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"leadreport/internal/config"
)

func TestNewServer_RoutesAndCORS(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.DevMode = true
	srv, err := NewServer(cfg, t.TempDir())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() { _ = srv.Close() })

	for _, path := range []string{"/api/status", "/api/v1/status", "/api/runs"} {
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status=%d body=%s", path, w.Code, w.Body.String())
		}
		if w.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Fatalf("%s: missing CORS header", path)
		}
	}

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/run", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("OPTIONS status=%d", w.Code)
	}

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("NoRoute status=%d", w.Code)
	}
}

func TestNewServer_ScheduleNeedsSource(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Schedule.Enabled = true
	srv, err := NewServer(cfg, t.TempDir())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() { _ = srv.Close() })
	if srv.scheduler != nil {
		t.Fatalf("scheduler should stay off without source.path")
	}

	cfg.Source.Path = "leads.xlsx"
	srv2, err := NewServer(cfg, t.TempDir())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() { _ = srv2.Close() })
	if srv2.scheduler == nil {
		t.Fatalf("scheduler should be configured")
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.DevMode = true
	srv, err := NewServer(cfg, t.TempDir())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() { _ = srv.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, "127.0.0.1:0") }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not stop after cancel")
	}
}
