package thumbnail

import (
	"context"
	"crypto/md5" //nolint:gosec // cache key, not security
	"fmt"
	"os"
	"path/filepath"
	"time"

	"media-explorer/internal/accel"
	"media-explorer/internal/logging"
	"media-explorer/internal/metrics"
)

// ffmpegTimeout bounds one thumbnail extraction. A wedged decode on a corrupt
// file must not hold a scan worker forever.
const ffmpegTimeout = 30 * time.Second

// VideoThumbnail returns the serve handle for a video thumbnail, extracting a
// frame via ffmpeg on a cache miss. An empty return means generation failed
// or ffmpeg is unavailable; never an error.
//
// The cache key comes from the file's stat identity (inode and device where
// the platform has them, size otherwise) plus mtime, so a re-encoded file
// gets a fresh thumbnail while renames keep the old one.
func (g *Generator) VideoThumbnail(ctx context.Context, path string) string {
	if g.accel == nil || !g.accel.Available() {
		return ""
	}

	sig, err := fileSignature(path)
	if err != nil {
		logging.Debug("Cannot stat %s for thumbnail key: %v", path, err)
		return ""
	}
	key := fmt.Sprintf("%x", md5.Sum([]byte(sig))) //nolint:gosec
	artifact := filepath.Join(g.cache.Dir(), key+".jpg")

	if info, err := os.Stat(artifact); err == nil && info.Size() > 0 {
		g.cache.Touch(artifact)
		metrics.ThumbnailCacheHits.WithLabelValues("video").Inc()
		return VideoHandlePrefix + key + ".jpg"
	}

	started := time.Now()
	cap := g.accel.Capability(ctx)
	args := accel.BuildThumbnailArgs(path, artifact, cap)

	runCtx, cancel := context.WithTimeout(ctx, ffmpegTimeout)
	err = g.runner.Run(runCtx, g.accel.FFmpegPath(), args...)
	cancel()

	if err != nil || !validArtifact(artifact) {
		if err != nil {
			logging.Debug("Optimized thumbnail command failed for %s (%s): %v",
				filepath.Base(path), cap.Method, err)
		}
		// One degraded retry with the plain software command. Covers both
		// flaky accelerators and codecs the hardware path cannot decode.
		runCtx, cancel = context.WithTimeout(ctx, ffmpegTimeout)
		err = g.runner.Run(runCtx, g.accel.FFmpegPath(), accel.FallbackArgs(path, artifact)...)
		cancel()

		if err != nil || !validArtifact(artifact) {
			logging.Warn("Video thumbnail failed for %s: %v", path, err)
			metrics.ThumbnailsGenerated.WithLabelValues("video", "failure").Inc()
			return ""
		}
	}

	g.cache.Record(artifact, 0)
	elapsed := time.Since(started)
	metrics.ThumbnailsGenerated.WithLabelValues("video", "success").Inc()
	metrics.ThumbnailDuration.WithLabelValues("video").Observe(elapsed.Seconds())
	logging.Debug("Generated video thumbnail for %s via %s in %s (%s)",
		filepath.Base(path), cap.Method, elapsed.Round(time.Millisecond), perfBucket(elapsed))

	return VideoHandlePrefix + key + ".jpg"
}

// validArtifact checks that ffmpeg actually produced content. ffmpeg can exit
// zero after writing an empty file on some demux errors; an empty artifact
// must not be cached or it would 404 forever.
func validArtifact(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if info.Size() == 0 {
		os.Remove(path)
		return false
	}
	return true
}

// Resolve maps a serve-handle filename back to the artifact path, rejecting
// anything that could escape the cache directory. The returned path is only
// valid if the artifact exists.
func (g *Generator) Resolve(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) {
		return "", fmt.Errorf("invalid artifact name %q", filename)
	}
	return filepath.Join(g.cache.Dir(), filename), nil
}

// TouchArtifact bumps the artifact's access time for LRU ordering.
func (g *Generator) TouchArtifact(path string) {
	g.cache.Touch(path)
}
