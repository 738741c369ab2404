package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/l3lasx/poc-barcodescanner/camera"
	"github.com/l3lasx/poc-barcodescanner/config"
	"github.com/l3lasx/poc-barcodescanner/scanner"
	"github.com/l3lasx/poc-barcodescanner/sink"
)

type idleBackend struct{}

func (idleBackend) Probe(ctx context.Context) error { return nil }

func (idleBackend) Enumerate(ctx context.Context) ([]camera.Device, error) {
	return []camera.Device{{ID: "cam0", Label: "Back Camera"}}, nil
}

func (idleBackend) Open(ctx context.Context, req camera.OpenRequest) (camera.Stream, error) {
	return nil, camera.ErrNoDevice
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	svc, err := scanner.New(config.Default(), scanner.Options{
		Backend: idleBackend{},
		Decoder: nil,
		Sinks:   map[string]sink.Sink{},
	})
	if err != nil {
		t.Fatalf("scanner.New failed: %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	return NewHandler(svc).SetupRoutes()
}

func TestDevices_EmptyBeforePermission(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/devices", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	// No grant yet: an empty JSON array, never null.
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("Expected [], got %q", body)
	}
}

func TestHealthz_UnavailableWithoutSession(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", rec.Code)
	}
}

func TestStats_ReturnsJSON(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/stats", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected application/json, got %q", ct)
	}
}
