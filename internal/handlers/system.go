package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"media-explorer/internal/scanner"
	"media-explorer/internal/startup"
)

var startedAt = time.Now()

// SystemInfo reports platform details and the default media directories, used
// by the frontend's folder picker.
func (h *Handlers) SystemInfo(w http.ResponseWriter, _ *http.Request) {
	home, _ := os.UserHomeDir()

	writeJSON(w, map[string]interface{}{
		"platform":     runtime.GOOS,
		"platformName": platformName(),
		"homeDir":      home,
		"separator":    string(filepath.Separator),
		"defaultPaths": scanner.DefaultPaths(),
		"build":        startup.GetBuildInfo(),
	})
}

func platformName() string {
	switch runtime.GOOS {
	case "windows":
		return "Windows"
	case "darwin":
		return "macOS"
	case "linux":
		return "Linux"
	default:
		return runtime.GOOS
	}
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	Uptime       string `json:"uptime"`
	FFmpeg       bool   `json:"ffmpegAvailable"`
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck reports liveness. The server has no async warmup, so it is
// healthy as soon as it serves.
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, HealthResponse{
		Status:       "healthy",
		Version:      startup.Version,
		Uptime:       time.Since(startedAt).Round(time.Second).String(),
		FFmpeg:       h.accel.Available(),
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	})
}
