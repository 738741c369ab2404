// Package api exposes the scanner's status surface over HTTP.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/l3lasx/poc-barcodescanner/scanner"
)

type Handler struct {
	svc *scanner.Scanner
}

func NewHandler(svc *scanner.Scanner) *Handler {
	return &Handler{svc: svc}
}

// Healthz reports whether a scan session is live.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if !h.svc.Running() {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("no active session"))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// Stats returns the aggregated service counters as JSON.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.svc.Stats()); err != nil {
		slog.Error("api: encode stats", "error", err)
	}
}

// Devices returns the device snapshot from the last permission grant.
func (h *Handler) Devices(w http.ResponseWriter, r *http.Request) {
	type device struct {
		ID     string `json:"id"`
		Label  string `json:"label"`
		Facing string `json:"facing"`
	}
	out := []device{}
	for _, d := range h.svc.Devices() {
		out = append(out, device{ID: d.ID, Label: d.Label, Facing: d.Facing.String()})
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		slog.Error("api: encode devices", "error", err)
	}
}

// SetupRoutes configures all API routes
func (h *Handler) SetupRoutes() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", h.Healthz).Methods("GET")
	router.HandleFunc("/api/stats", h.Stats).Methods("GET")
	router.HandleFunc("/api/devices", h.Devices).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return router
}
