package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mchmarny/sidebar/pkg/metric"
)

type readiness struct{ err error }

func (r readiness) Ready(context.Context) error { return r.err }

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealthAndReadiness(t *testing.T) {
	tests := []struct {
		name   string
		ready  error
		status int
	}{
		{"ready", nil, http.StatusOK},
		{"not ready", errors.New("widget not attached"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(WithSimpleHealth(), WithReadiness(readiness{tt.ready}))

			if w := get(t, s.Handler(), "/healthz"); w.Code != http.StatusOK || w.Body.String() != "ok" {
				t.Errorf("healthz: %d %q", w.Code, w.Body.String())
			}
			if w := get(t, s.Handler(), "/readyz"); w.Code != tt.status {
				t.Errorf("readyz: expected %d, got %d", tt.status, w.Code)
			}
		})
	}
}

func TestMetricsAndHandlers(t *testing.T) {
	reg := prometheus.NewRegistry()
	metric.NewRecorder(reg).Commands.Increment("collapse", "applied")

	s := New(
		WithMetrics(reg),
		WithHandler("/menu", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeText(w, http.StatusOK, "menu")
		})),
	)

	if w := get(t, s.Handler(), "/metrics"); !strings.Contains(w.Body.String(), "sidebar_commands_total") {
		t.Errorf("metrics missing counter:\n%s", w.Body.String())
	}
	if w := get(t, s.Handler(), "/menu"); w.Body.String() != "menu" {
		t.Errorf("unexpected menu body %q", w.Body.String())
	}
}

func TestServeShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	s := New(WithPort(port), WithShutdownTimeout(time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for !s.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("server never started")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
	if s.IsRunning() {
		t.Error("server still reports running")
	}
}
