package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/telhawk-systems/logrelay/internal/handlers"
	"github.com/telhawk-systems/logrelay/internal/middleware"
)

// NewRouter constructs a ServeMux with the relay API routes registered.
func NewRouter(h *handlers.EventHandler) http.Handler {
	mux := http.NewServeMux()

	// Event ingestion endpoint
	mux.HandleFunc("/api/v1/events", h.HandleEvent)

	// Health endpoints
	mux.HandleFunc("/healthz", h.Health)
	mux.HandleFunc("/readyz", h.Ready)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	return middleware.RequestID(mux)
}
