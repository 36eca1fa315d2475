package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes attaches the full API surface to the router.
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/validate-path", h.ValidatePath).Methods(http.MethodPost)
	api.HandleFunc("/scan", h.Scan).Methods(http.MethodPost)
	api.HandleFunc("/search", h.Search).Methods(http.MethodPost)
	api.HandleFunc("/recent-paths", h.RecentPaths).Methods(http.MethodGet)

	api.HandleFunc("/serve-thumbnail/{filename}", h.ServeThumbnail).Methods(http.MethodGet)
	api.HandleFunc("/serve-video-thumbnail/{filename}", h.ServeVideoThumbnail).Methods(http.MethodGet)

	api.HandleFunc("/cache-status", h.CacheStatus).Methods(http.MethodGet)
	api.HandleFunc("/cache-cleanup", h.CacheCleanup).Methods(http.MethodPost)

	api.HandleFunc("/gpu-status", h.GPUStatus).Methods(http.MethodGet)
	api.HandleFunc("/gpu-reset", h.GPUReset).Methods(http.MethodPost)

	api.HandleFunc("/system-info", h.SystemInfo).Methods(http.MethodGet)

	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	if h.config.MetricsEnabled {
		router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}
}
