package accel

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"media-explorer/internal/logging"
)

// ErrFFmpegNotFound indicates no usable ffmpeg binary could be located,
// neither on PATH nor in the bundled runtime directory. Video thumbnails are
// unavailable in this state; callers surface it as a capability flag, not a
// crash.
var ErrFFmpegNotFound = errors.New("ffmpeg not found: install ffmpeg or place a build under the runtime directory")

// LocateFFmpeg finds the ffmpeg executable to use.
//
// Search order: an explicit override path, the system PATH, then a bundled
// runtime directory (runtimeDir/ffmpeg*/bin, runtimeDir/ffmpeg*, runtimeDir
// itself). Returns ErrFFmpegNotFound when nothing usable exists.
func LocateFFmpeg(override, runtimeDir string) (string, error) {
	if override != "" {
		if _, err := os.Stat(override); err == nil {
			return override, nil
		}
		logging.Warn("Configured FFMPEG_PATH %s does not exist, falling back to search", override)
	}

	if path, err := exec.LookPath("ffmpeg"); err == nil {
		logging.Debug("Using system ffmpeg: %s", path)
		return path, nil
	}

	if path := findRuntimeFFmpeg(runtimeDir); path != "" {
		logging.Info("Using bundled runtime ffmpeg: %s", path)
		return path, nil
	}

	return "", ErrFFmpegNotFound
}

// findRuntimeFFmpeg searches a bundled runtime directory for an ffmpeg
// executable matching the platform naming convention.
func findRuntimeFFmpeg(runtimeDir string) string {
	if runtimeDir == "" {
		return ""
	}
	if _, err := os.Stat(runtimeDir); err != nil {
		return ""
	}

	executable := "ffmpeg"
	if runtime.GOOS == "windows" {
		executable = "ffmpeg.exe"
	}

	candidates := []string{
		filepath.Join(runtimeDir, "ffmpeg", "bin", executable),
		filepath.Join(runtimeDir, executable),
		filepath.Join(runtimeDir, "ffmpeg", executable),
	}

	// Release archives unpack to versioned directories (ffmpeg-7.0-essentials
	// and similar), so also search any ffmpeg* entry.
	if entries, err := os.ReadDir(runtimeDir); err == nil {
		for _, entry := range entries {
			if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "ffmpeg") {
				continue
			}
			candidates = append(candidates,
				filepath.Join(runtimeDir, entry.Name(), "bin", executable),
				filepath.Join(runtimeDir, entry.Name(), executable),
			)
		}
	}

	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}
