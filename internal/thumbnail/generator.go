package thumbnail

import (
	"context"
	"crypto/md5" //nolint:gosec // cache key, not security
	"fmt"
	"image"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"media-explorer/internal/accel"
	"media-explorer/internal/logging"
	"media-explorer/internal/metrics"
	"media-explorer/internal/thumbcache"

	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Size is the thumbnail edge length in pixels.
const Size = 200

// jpegQuality for written thumbnails.
const jpegQuality = 85

// ImageHandlePrefix and VideoHandlePrefix are the URL prefixes under which
// the handlers serve generated artifacts.
const (
	ImageHandlePrefix = "/api/serve-thumbnail/"
	VideoHandlePrefix = "/api/serve-video-thumbnail/"
)

// Generator produces thumbnail artifacts into the cache directory and
// registers them with the artifact cache.
type Generator struct {
	cache  *thumbcache.Cache
	accel  *accel.Service
	runner accel.CommandRunner
}

// NewGenerator wires a Generator. accelSvc may be nil when ffmpeg is missing;
// video thumbnails then always return an empty handle.
func NewGenerator(cache *thumbcache.Cache, accelSvc *accel.Service, runner accel.CommandRunner) *Generator {
	return &Generator{
		cache:  cache,
		accel:  accelSvc,
		runner: runner,
	}
}

// ImageThumbnail returns the serve handle for an image thumbnail, generating
// it on a cache miss. An empty return means no thumbnail could be produced;
// the file itself is still valid scan output.
//
// The cache key is derived from the absolute path, so a file replaced
// in-place keeps serving its old thumbnail until the artifact expires.
func (g *Generator) ImageThumbnail(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	key := fmt.Sprintf("%x", md5.Sum([]byte(abs))) //nolint:gosec
	artifact := filepath.Join(g.cache.Dir(), key+".jpg")

	if _, err := os.Stat(artifact); err == nil {
		g.cache.Touch(artifact)
		metrics.ThumbnailCacheHits.WithLabelValues("image").Inc()
		return ImageHandlePrefix + key + ".jpg"
	}

	started := time.Now()
	img, err := g.decodeImage(path)
	if err != nil {
		logging.Warn("Failed to decode %s: %v", path, err)
		metrics.ThumbnailsGenerated.WithLabelValues("image", "failure").Inc()
		return ""
	}

	thumb := imaging.Fill(img, Size, Size, imaging.Center, imaging.Lanczos)
	if err := imaging.Save(thumb, artifact, imaging.JPEGQuality(jpegQuality)); err != nil {
		logging.Warn("Failed to write thumbnail for %s: %v", path, err)
		metrics.ThumbnailsGenerated.WithLabelValues("image", "failure").Inc()
		return ""
	}

	g.cache.Record(artifact, 0)
	elapsed := time.Since(started)
	metrics.ThumbnailsGenerated.WithLabelValues("image", "success").Inc()
	metrics.ThumbnailDuration.WithLabelValues("image").Observe(elapsed.Seconds())
	logging.Debug("Generated image thumbnail for %s in %s (%s)",
		filepath.Base(path), elapsed.Round(time.Millisecond), perfBucket(elapsed))

	return ImageHandlePrefix + key + ".jpg"
}

// decodeImage opens an image using the registered decoders, with libvips for
// the HEIC/HEIF formats the Go decoders cannot read and a sips fallback on
// macOS when vips is unavailable.
func (g *Generator) decodeImage(path string) (image.Image, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".heic" || ext == ".heif" {
		return g.decodeHEIC(path)
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err == nil {
		return img, nil
	}
	logging.Debug("imaging.Open failed for %s: %v, trying vips", path, err)

	if IsVipsAvailable() {
		return loadWithVips(path, Size, Size)
	}
	return nil, err
}

// decodeHEIC decodes HEIC/HEIF via libvips, falling back to the system sips
// converter on macOS.
func (g *Generator) decodeHEIC(path string) (image.Image, error) {
	if IsVipsAvailable() {
		img, err := loadWithVips(path, Size, Size)
		if err == nil {
			return img, nil
		}
		logging.Debug("vips HEIC decode failed for %s: %v", path, err)
	}

	if runtime.GOOS == "darwin" {
		return g.decodeWithSips(path)
	}
	return nil, fmt.Errorf("no HEIC decoder available for %s", path)
}

// decodeWithSips converts a HEIC file to a temporary JPEG using the macOS
// sips tool, then decodes that.
func (g *Generator) decodeWithSips(path string) (image.Image, error) {
	tmp, err := os.CreateTemp("", "heic-*.jpg")
	if err != nil {
		return nil, err
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := g.runner.Run(ctx, "sips", "-s", "format", "jpeg", path, "--out", tmpPath); err != nil {
		return nil, fmt.Errorf("sips conversion failed: %w", err)
	}
	return imaging.Open(tmpPath, imaging.AutoOrientation(true))
}

// perfBucket labels a generation duration for log readability.
func perfBucket(d time.Duration) string {
	switch {
	case d < 50*time.Millisecond:
		return "ultra fast"
	case d < 200*time.Millisecond:
		return "fast"
	case d < time.Second:
		return "good"
	case d < 3*time.Second:
		return "moderate"
	default:
		return "slow"
	}
}
