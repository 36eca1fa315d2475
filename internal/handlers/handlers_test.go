package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"media-explorer/internal/accel"
	"media-explorer/internal/scanner"
	"media-explorer/internal/startup"
	"media-explorer/internal/thumbcache"
	"media-explorer/internal/thumbnail"

	"github.com/gorilla/mux"
)

// countingRunner fakes ffmpeg for the full HTTP stack: every Run writes its
// output artifact and is counted, so tests can assert on process spawns.
type countingRunner struct {
	mu     sync.Mutex
	spawns int
	fail   bool
}

func (r *countingRunner) Run(_ context.Context, _ string, args ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spawns++
	if r.fail {
		return errors.New("encoder error")
	}
	return os.WriteFile(args[len(args)-1], []byte("jpeg-bytes"), 0o644)
}

func (r *countingRunner) Output(context.Context, string, ...string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spawns++
	return "", errors.New("not scripted")
}

func (r *countingRunner) spawnCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.spawns
}

// newTestServer wires the full stack against temp directories and a fake
// process runner.
func newTestServer(t *testing.T, runner accel.CommandRunner) (*mux.Router, *Handlers) {
	t.Helper()
	cacheDir := t.TempDir()

	config := &startup.Config{
		Port:                 "0",
		CacheDir:             cacheDir,
		ScanMaxDepth:         3,
		CacheMaxSizeGB:       5,
		CacheMaxFiles:        10000,
		CacheCleanupInterval: 30 * time.Minute,
		CacheMaxAge:          7 * 24 * time.Hour,
		ProbeCacheTTL:        time.Hour,
		MetricsEnabled:       true,
	}

	cache, err := thumbcache.New(thumbcache.Config{
		Dir:             cacheDir,
		MaxSizeBytes:    config.CacheMaxSizeBytes(),
		MaxFiles:        config.CacheMaxFiles,
		CleanupInterval: config.CacheCleanupInterval,
		MaxAge:          config.CacheMaxAge,
	})
	if err != nil {
		t.Fatal(err)
	}

	capCache := accel.NewCapabilityCache(cacheDir, config.ProbeCacheTTL)
	capCache.RecordResult(accel.ProbeResult{
		Capability: accel.Capability{Method: accel.MethodCPU, Vendor: "CPU"},
	})
	accelSvc := accel.NewService("ffmpeg", runner, capCache)

	thumbs := thumbnail.NewGenerator(cache, accelSvc, runner)
	scan := scanner.New(thumbs)

	h := New(scan, thumbs, cache, accelSvc, config)
	router := mux.NewRouter()
	h.RegisterRoutes(router)
	return router, h
}

func postJSON(t *testing.T, router *mux.Router, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data)))
	return rec
}

func get(router *mux.Router, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("invalid JSON response %q: %v", rec.Body.String(), err)
	}
}

// mediaDir builds a scan root with one image and one video.
func mediaDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for i := 0; i < 32*32; i++ {
		img.Set(i%32, i/32, color.RGBA{R: uint8(i), A: 255})
	}
	f, err := os.Create(filepath.Join(dir, "photo.png"))
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	if err := os.WriteFile(filepath.Join(dir, "clip.mp4"), []byte("fake video"), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestValidatePathEndpoint(t *testing.T) {
	router, _ := newTestServer(t, &countingRunner{})
	dir := t.TempDir()

	rec := postJSON(t, router, "/api/validate-path", map[string]string{"path": dir})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var v scanner.Validation
	decodeBody(t, rec, &v)
	if !v.Valid {
		t.Errorf("validation = %+v, want valid", v)
	}

	rec = postJSON(t, router, "/api/validate-path", map[string]string{"path": filepath.Join(dir, "nope")})
	var invalid scanner.Validation
	decodeBody(t, rec, &invalid)
	if invalid.Valid || invalid.Status != scanner.ValidationNotFound {
		t.Errorf("validation = %+v, want not-found", invalid)
	}

	if rec := postJSON(t, router, "/api/validate-path", map[string]string{}); rec.Code != http.StatusBadRequest {
		t.Errorf("missing path returned %d, want 400", rec.Code)
	}
}

func TestScanSearchAndServeFlow(t *testing.T) {
	runner := &countingRunner{}
	router, _ := newTestServer(t, runner)
	dir := mediaDir(t)

	// Scan.
	rec := postJSON(t, router, "/api/scan", map[string]interface{}{
		"path":      dir,
		"sessionId": "sess-1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("scan status = %d: %s", rec.Code, rec.Body.String())
	}
	var scanResp ScanResponse
	decodeBody(t, rec, &scanResp)
	if scanResp.TotalFiles != 2 || scanResp.MediaCounts.Image != 1 || scanResp.MediaCounts.Video != 1 {
		t.Fatalf("scan response = %+v", scanResp)
	}
	if !scanResp.FFmpeg.Available {
		t.Error("ffmpeg must be reported available")
	}
	// Exactly one ffmpeg invocation: the video thumbnail.
	if got := runner.spawnCount(); got != 1 {
		t.Errorf("scan spawned %d processes, want 1", got)
	}

	// Search within the session.
	rec = postJSON(t, router, "/api/search", map[string]interface{}{
		"sessionId": "sess-1",
		"query":     "photo",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("search status = %d", rec.Code)
	}
	var searchResp struct {
		Status string             `json:"status"`
		Files  []scanner.FileInfo `json:"files"`
	}
	decodeBody(t, rec, &searchResp)
	if len(searchResp.Files) != 1 || searchResp.Files[0].Filename != "photo.png" {
		t.Fatalf("search files = %+v", searchResp.Files)
	}

	// Serve the image thumbnail returned by the scan.
	thumbURL := searchResp.Files[0].ThumbnailURL
	if thumbURL == "" {
		t.Fatal("scan produced no image thumbnail URL")
	}
	rec = get(router, thumbURL)
	if rec.Code != http.StatusOK {
		t.Fatalf("serve thumbnail status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("content type = %q", ct)
	}
	if cc := rec.Header().Get("Cache-Control"); cc == "" {
		t.Error("missing cache headers on artifact response")
	}

	// Re-scan: both thumbnails are cache hits, no new processes.
	before := runner.spawnCount()
	rec = postJSON(t, router, "/api/scan", map[string]interface{}{
		"path":      dir,
		"sessionId": "sess-1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("rescan status = %d", rec.Code)
	}
	if got := runner.spawnCount(); got != before {
		t.Errorf("rescan spawned %d extra processes", got-before)
	}
}

func TestScanRejectsBadRequests(t *testing.T) {
	router, _ := newTestServer(t, &countingRunner{})

	if rec := postJSON(t, router, "/api/scan", map[string]string{"path": "/tmp"}); rec.Code != http.StatusBadRequest {
		t.Errorf("missing sessionId returned %d, want 400", rec.Code)
	}
	rec := postJSON(t, router, "/api/scan", map[string]string{
		"path":      filepath.Join(t.TempDir(), "missing"),
		"sessionId": "s",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid path returned %d, want 400", rec.Code)
	}
}

func TestSearchUnknownSession(t *testing.T) {
	router, _ := newTestServer(t, &countingRunner{})
	rec := postJSON(t, router, "/api/search", map[string]string{"sessionId": "ghost"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown session returned %d, want 404", rec.Code)
	}
}

func TestServeThumbnailMissing(t *testing.T) {
	router, _ := newTestServer(t, &countingRunner{})
	if rec := get(router, "/api/serve-thumbnail/doesnotexist.jpg"); rec.Code != http.StatusNotFound {
		t.Errorf("missing artifact returned %d, want 404", rec.Code)
	}
}

func TestRecentPathsEndpoint(t *testing.T) {
	router, _ := newTestServer(t, &countingRunner{})
	dir := mediaDir(t)

	postJSON(t, router, "/api/scan", map[string]interface{}{"path": dir, "sessionId": "s"})

	rec := get(router, "/api/recent-paths")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Paths []string `json:"paths"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.Paths) == 0 || resp.Paths[0] != dir {
		t.Errorf("recent paths = %v, want %s first", resp.Paths, dir)
	}
}

func TestCacheStatusAndCleanupEndpoints(t *testing.T) {
	router, _ := newTestServer(t, &countingRunner{})
	dir := mediaDir(t)
	postJSON(t, router, "/api/scan", map[string]interface{}{"path": dir, "sessionId": "s"})

	rec := get(router, "/api/cache-status")
	if rec.Code != http.StatusOK {
		t.Fatalf("cache-status = %d", rec.Code)
	}
	var status struct {
		Cache struct {
			TotalFiles int `json:"totalFiles"`
		} `json:"cache"`
		Accelerator map[string]interface{} `json:"accelerator"`
	}
	decodeBody(t, rec, &status)
	if status.Cache.TotalFiles != 2 {
		t.Errorf("totalFiles = %d, want 2 artifacts", status.Cache.TotalFiles)
	}
	if status.Accelerator == nil {
		t.Error("cache-status must include the accelerator summary")
	}

	rec = postJSON(t, router, "/api/cache-cleanup", map[string]string{})
	if rec.Code != http.StatusOK {
		t.Fatalf("cache-cleanup = %d", rec.Code)
	}
	var cleanup struct {
		Status       string `json:"status"`
		RemovedCount int    `json:"removedCount"`
	}
	decodeBody(t, rec, &cleanup)
	if cleanup.Status != "success" {
		t.Errorf("cleanup = %+v", cleanup)
	}
}

func TestGPUStatusAndReset(t *testing.T) {
	router, _ := newTestServer(t, &countingRunner{})

	rec := get(router, "/api/gpu-status")
	if rec.Code != http.StatusOK {
		t.Fatalf("gpu-status = %d", rec.Code)
	}
	var status struct {
		OptimalMethod string `json:"optimalMethod"`
	}
	decodeBody(t, rec, &status)
	if status.OptimalMethod != "cpu" {
		t.Errorf("optimalMethod = %q, want cpu", status.OptimalMethod)
	}

	if rec := postJSON(t, router, "/api/gpu-reset", map[string]string{}); rec.Code != http.StatusOK {
		t.Fatalf("gpu-reset = %d", rec.Code)
	}

	rec = get(router, "/api/gpu-status")
	decodeBody(t, rec, &status)
	if status.OptimalMethod != "" {
		t.Errorf("optimalMethod after reset = %q, want empty", status.OptimalMethod)
	}
}

func TestSystemInfoAndHealth(t *testing.T) {
	router, _ := newTestServer(t, &countingRunner{})

	rec := get(router, "/api/system-info")
	if rec.Code != http.StatusOK {
		t.Fatalf("system-info = %d", rec.Code)
	}
	var info struct {
		Platform  string `json:"platform"`
		Separator string `json:"separator"`
	}
	decodeBody(t, rec, &info)
	if info.Platform == "" || info.Separator == "" {
		t.Errorf("system info = %+v", info)
	}

	rec = get(router, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("health = %d", rec.Code)
	}
	var health HealthResponse
	decodeBody(t, rec, &health)
	if health.Status != "healthy" || !health.FFmpeg {
		t.Errorf("health = %+v", health)
	}
}

func TestMetricsEndpointRegistered(t *testing.T) {
	router, _ := newTestServer(t, &countingRunner{})
	rec := get(router, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics = %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("media_explorer_")) {
		t.Error("metrics output missing application metric families")
	}
}

func TestScanThumbnailFailuresDegrade(t *testing.T) {
	// Every ffmpeg invocation fails: the scan still succeeds, the video
	// entry just has no thumbnail.
	router, _ := newTestServer(t, &countingRunner{fail: true})
	dir := mediaDir(t)

	rec := postJSON(t, router, "/api/scan", map[string]interface{}{
		"path":      dir,
		"sessionId": "sess-1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("scan status = %d", rec.Code)
	}

	recSearch := postJSON(t, router, "/api/search", map[string]interface{}{
		"sessionId": "sess-1",
		"mediaType": "video",
	})
	var searchResp struct {
		Files []scanner.FileInfo `json:"files"`
	}
	decodeBody(t, recSearch, &searchResp)
	if len(searchResp.Files) != 1 {
		t.Fatalf("video files = %d, want 1", len(searchResp.Files))
	}
	if searchResp.Files[0].ThumbnailURL != "" {
		t.Errorf("failed generation left thumbnail URL %q", searchResp.Files[0].ThumbnailURL)
	}
}

func TestServeVideoThumbnailFlow(t *testing.T) {
	runner := &countingRunner{}
	router, _ := newTestServer(t, runner)
	dir := mediaDir(t)

	postJSON(t, router, "/api/scan", map[string]interface{}{"path": dir, "sessionId": "s"})

	rec := postJSON(t, router, "/api/search", map[string]interface{}{
		"sessionId": "s", "mediaType": "video",
	})
	var searchResp struct {
		Files []scanner.FileInfo `json:"files"`
	}
	decodeBody(t, rec, &searchResp)
	if len(searchResp.Files) != 1 || searchResp.Files[0].ThumbnailURL == "" {
		t.Fatalf("video file = %+v", searchResp.Files)
	}

	recServe := get(router, searchResp.Files[0].ThumbnailURL)
	if recServe.Code != http.StatusOK {
		t.Fatalf("serve video thumbnail = %d", recServe.Code)
	}
	if got := recServe.Body.String(); got != "jpeg-bytes" {
		t.Errorf("artifact body = %q", got)
	}
}

func TestConcurrentScansSameSession(t *testing.T) {
	router, h := newTestServer(t, &countingRunner{})

	dirs := make([]string, 3)
	for i := range dirs {
		dir := t.TempDir()
		name := fmt.Sprintf("file-%d.mp3", i)
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		dirs[i] = dir
	}

	var wg sync.WaitGroup
	for _, dir := range dirs {
		wg.Add(1)
		go func(d string) {
			defer wg.Done()
			rec := postJSON(t, router, "/api/scan", map[string]interface{}{
				"path": d, "sessionId": "shared",
			})
			if rec.Code != http.StatusOK {
				t.Errorf("concurrent scan returned %d", rec.Code)
			}
		}(dir)
	}
	wg.Wait()

	// All scans completed; one of them owns the session.
	session := h.scanner.Session("shared")
	if session == nil || session.TotalFiles != 1 {
		t.Fatalf("session = %+v", session)
	}
	found := false
	for _, dir := range dirs {
		if session.CurrentPath == dir {
			found = true
		}
	}
	if !found {
		t.Errorf("session path %q is not one of the scanned roots", session.CurrentPath)
	}
}
