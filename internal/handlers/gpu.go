package handlers

import "net/http"

// GPUStatus reports the capability cache record: optimal method, benchmark
// timings and detection metadata.
func (h *Handlers) GPUStatus(w http.ResponseWriter, _ *http.Request) {
	if h.accel == nil {
		writeJSON(w, map[string]interface{}{
			"status":    "success",
			"available": false,
			"message":   "ffmpeg not found, hardware acceleration unavailable",
		})
		return
	}

	rec := h.accel.Status()
	writeJSON(w, map[string]interface{}{
		"status":             "success",
		"available":          h.accel.Available(),
		"optimalMethod":      rec.OptimalMethod,
		"performanceMetrics": rec.Benchmarks,
		"lastDetection":      formatEpochMs(rec.LastDetection),
		"detectionCount":     rec.DetectionCount,
		"systemFingerprint":  rec.SystemFingerprint,
	})
}

// GPUReset clears the capability cache; the next video thumbnail re-probes.
func (h *Handlers) GPUReset(w http.ResponseWriter, _ *http.Request) {
	if h.accel == nil {
		writeJSONError(w, "hardware acceleration unavailable", http.StatusConflict)
		return
	}
	h.accel.Reset()
	writeJSON(w, map[string]string{
		"status":  "success",
		"message": "GPU performance cache reset, next scan will re-detect",
	})
}
