package handlers

import (
	"net/http"
	"time"
)

// CacheStatus reports artifact cache totals, ceilings and the accelerator
// summary in one call.
func (h *Handlers) CacheStatus(w http.ResponseWriter, _ *http.Request) {
	st := h.cache.Status()

	resp := map[string]interface{}{
		"status": "success",
		"cache": map[string]interface{}{
			"totalFiles":     st.FileCount,
			"totalSizeBytes": st.TotalSize,
			"totalSizeMB":    float64(st.TotalSize) / (1 << 20),
			"maxSizeBytes":   st.MaxSizeBytes,
			"maxFiles":       st.MaxFiles,
			"lastCleanup":    formatEpochMs(st.LastCleanup),
		},
	}

	if h.accel != nil {
		rec := h.accel.Status()
		resp["accelerator"] = map[string]interface{}{
			"available":     h.accel.Available(),
			"optimalMethod": rec.OptimalMethod,
			"detections":    rec.DetectionCount,
		}
	}

	writeJSON(w, resp)
}

// CacheCleanup runs a forced cleanup pass and reports what it removed.
func (h *Handlers) CacheCleanup(w http.ResponseWriter, _ *http.Request) {
	result := h.cache.Cleanup(true)
	writeJSON(w, map[string]interface{}{
		"status":       "success",
		"message":      "Cache cleanup completed",
		"removedCount": result.RemovedCount,
		"freedBytes":   result.FreedBytes,
	})
}

func formatEpochMs(ms int64) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
