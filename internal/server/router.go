package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/telhawk-systems/telhawk-notify/internal/handlers"
	"github.com/telhawk-systems/telhawk-notify/internal/middleware"
)

// NewRouter constructs a ServeMux with the notify API routes registered.
func NewRouter(h *handlers.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", h.HealthCheck)
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/api/v1/notify", h.Notify)

	return middleware.RequestID(mux)
}
