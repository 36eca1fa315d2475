package handlers

import (
	"encoding/json"
	"net/http"

	"media-explorer/internal/accel"
	"media-explorer/internal/logging"
	"media-explorer/internal/scanner"
	"media-explorer/internal/startup"
	"media-explorer/internal/thumbcache"
	"media-explorer/internal/thumbnail"
)

// Handlers carries the services the HTTP API dispatches into.
type Handlers struct {
	scanner  *scanner.Scanner
	thumbs   *thumbnail.Generator
	cache    *thumbcache.Cache
	accel    *accel.Service
	config   *startup.Config
	maxDepth int
}

// New wires the handler set. accelSvc may be nil when ffmpeg is unavailable.
func New(scan *scanner.Scanner, thumbs *thumbnail.Generator, cache *thumbcache.Cache,
	accelSvc *accel.Service, config *startup.Config) *Handlers {
	return &Handlers{
		scanner:  scan,
		thumbs:   thumbs,
		cache:    cache,
		accel:    accelSvc,
		config:   config,
		maxDepth: config.ScanMaxDepth,
	}
}

// writeJSON encodes v as JSON. Encoding errors are logged; there is no way to
// recover mid-response.
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONError writes an error response as JSON with the given status code.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, map[string]string{"status": "error", "error": message})
}

// decodeJSON parses a request body into dst, answering 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}
