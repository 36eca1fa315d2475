package accel

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"media-explorer/internal/logging"
)

// recordFileName is the capability record snapshot under the cache root.
const recordFileName = "gpu-performance.json"

// DefaultProbeTTL is how long a probe result stays fresh before the next
// video thumbnail triggers a re-probe.
const DefaultProbeTTL = time.Hour

// Record is the persisted shape of the capability cache. Times are epoch
// milliseconds for compatibility with the on-disk format.
type Record struct {
	LastDetection     int64                `json:"lastDetection"`
	OptimalMethod     Method               `json:"optimalMethod,omitempty"`
	Benchmarks        map[Method]Benchmark `json:"performanceMetrics,omitempty"`
	SystemFingerprint string               `json:"systemFingerprint,omitempty"`
	DetectionCount    int                  `json:"detectionCount"`
}

// CapabilityCache persists probe outcomes so the expensive detection cycle
// runs at most once per freshness window on unchanged hardware. The in-memory
// record is authoritative; disk writes are best effort.
type CapabilityCache struct {
	mu     sync.Mutex
	record Record

	path        string
	ttl         time.Duration
	fingerprint func() string
	now         func() time.Time
}

// NewCapabilityCache loads any existing record from cacheDir. A missing or
// corrupt snapshot starts empty; it is never a startup failure.
func NewCapabilityCache(cacheDir string, ttl time.Duration) *CapabilityCache {
	if ttl <= 0 {
		ttl = DefaultProbeTTL
	}
	c := &CapabilityCache{
		path:        filepath.Join(cacheDir, recordFileName),
		ttl:         ttl,
		fingerprint: Fingerprint,
		now:         time.Now,
	}
	c.load()
	return c
}

func (c *CapabilityCache) load() {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn("Failed to read capability record %s: %v", c.path, err)
		}
		return
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		logging.Warn("Corrupt capability record %s, starting fresh: %v", c.path, err)
		return
	}
	c.record = rec
	logging.Debug("Loaded capability record: method=%s detections=%d",
		rec.OptimalMethod, rec.DetectionCount)
}

// ShouldSkipProbe reports whether the cached result is still trustworthy:
// same hardware fingerprint and detected within the freshness window.
func (c *CapabilityCache) ShouldSkipProbe() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.record.OptimalMethod == "" || c.record.SystemFingerprint == "" {
		return false
	}
	if c.record.SystemFingerprint != c.fingerprint() {
		logging.Info("System fingerprint changed, capability cache invalid")
		return false
	}
	age := c.now().UnixMilli() - c.record.LastDetection
	return age >= 0 && age < c.ttl.Milliseconds()
}

// CachedMethod returns the stored optimal method, or "" when none is cached.
func (c *CapabilityCache) CachedMethod() Method {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.record.OptimalMethod
}

// RecordResult stores a completed probe cycle: the winning method plus the
// timings of every benchmarked candidate. Persist failures are logged only.
func (c *CapabilityCache) RecordResult(result ProbeResult) {
	c.mu.Lock()

	if c.record.Benchmarks == nil {
		c.record.Benchmarks = make(map[Method]Benchmark)
	}
	c.record.OptimalMethod = result.Capability.Method
	if result.Benchmark != nil {
		c.record.Benchmarks[result.Capability.Method] = *result.Benchmark
	}
	for _, alt := range result.Alternatives {
		if alt.Benchmark != nil {
			c.record.Benchmarks[alt.Method] = *alt.Benchmark
		}
	}
	c.record.SystemFingerprint = c.fingerprint()
	c.record.LastDetection = c.now().UnixMilli()
	c.record.DetectionCount++
	snapshot := c.record

	c.mu.Unlock()

	c.persist(snapshot)
}

// Reset clears the record and persists the empty state. The next video
// thumbnail re-probes from scratch.
func (c *CapabilityCache) Reset() {
	c.mu.Lock()
	c.record = Record{}
	snapshot := c.record
	c.mu.Unlock()

	c.persist(snapshot)
	logging.Info("Capability cache reset")
}

// Status returns a copy of the current record for the status endpoint.
func (c *CapabilityCache) Status() Record {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec := c.record
	if rec.Benchmarks != nil {
		benchmarks := make(map[Method]Benchmark, len(rec.Benchmarks))
		for k, v := range rec.Benchmarks {
			benchmarks[k] = v
		}
		rec.Benchmarks = benchmarks
	}
	return rec
}

func (c *CapabilityCache) persist(rec Record) {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		logging.Warn("Failed to encode capability record: %v", err)
		return
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		logging.Warn("Failed to write capability record: %v", err)
		return
	}
	if err := os.Rename(tmp, c.path); err != nil {
		logging.Warn("Failed to replace capability record: %v", err)
	}
}
