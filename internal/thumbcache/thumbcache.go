package thumbcache

import (
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"media-explorer/internal/logging"
	"media-explorer/internal/metrics"
)

// snapshotFileName is the index snapshot stored alongside the artifacts.
const snapshotFileName = "cache-metadata.json"

// evictionTarget is the fraction of each ceiling the LRU pass evicts down to,
// so the cache does not thrash at the boundary.
const evictionTarget = 0.8

// Entry is the bookkeeping record for one cached artifact. Times are epoch
// milliseconds to match the snapshot format.
type Entry struct {
	Path        string `json:"path"`
	Size        int64  `json:"size"`
	CreatedTime int64  `json:"createdTime"`
	AccessTime  int64  `json:"accessTime"`
}

// Config holds the cache ceilings and cleanup cadence.
type Config struct {
	Dir             string
	MaxSizeBytes    int64
	MaxFiles        int
	CleanupInterval time.Duration
	MaxAge          time.Duration
}

// DefaultConfig returns the stock ceilings: 5 GB, 10000 files, cleanup every
// 30 minutes, artifacts expire after 7 days.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:             dir,
		MaxSizeBytes:    5 << 30,
		MaxFiles:        10000,
		CleanupInterval: 30 * time.Minute,
		MaxAge:          7 * 24 * time.Hour,
	}
}

// CleanupResult reports what a cleanup pass removed.
type CleanupResult struct {
	RemovedCount int   `json:"removedCount"`
	FreedBytes   int64 `json:"freedBytes"`
}

// Status is the point-in-time view served by the cache status endpoint.
type Status struct {
	FileCount    int   `json:"fileCount"`
	TotalSize    int64 `json:"totalSize"`
	MaxSizeBytes int64 `json:"maxSizeBytes"`
	MaxFiles     int   `json:"maxFiles"`
	LastCleanup  int64 `json:"lastCleanup"`
}

// Cache is the disk artifact cache. Safe for concurrent use.
type Cache struct {
	cfg Config

	mu          sync.Mutex
	files       map[string]*Entry
	totalSize   int64
	lastCleanup int64

	now func() time.Time

	started  bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// New creates the cache directory if needed and loads any existing snapshot.
// A missing or corrupt snapshot starts the index empty.
func New(cfg Config) (*Cache, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir %s: %w", cfg.Dir, err)
	}
	c := &Cache{
		cfg:   cfg,
		files: make(map[string]*Entry),
		now:   time.Now,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	c.load()
	c.publishGauges()
	return c, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.cfg.Dir
}

// Record inserts or overwrites the entry for path. When sizeHint is zero the
// file is stat'd. The snapshot save is fired asynchronously; callers on the
// thumbnail hot path never wait on disk bookkeeping.
func (c *Cache) Record(path string, sizeHint int64) {
	size := sizeHint
	if size <= 0 {
		if info, err := os.Stat(path); err == nil {
			size = info.Size()
		}
	}
	nowMs := c.now().UnixMilli()

	c.mu.Lock()
	if prev, ok := c.files[path]; ok {
		c.totalSize -= prev.Size
	}
	c.files[path] = &Entry{
		Path:        path,
		Size:        size,
		CreatedTime: nowMs,
		AccessTime:  nowMs,
	}
	c.totalSize += size
	c.clampLocked()
	c.publishGaugesLocked()
	c.mu.Unlock()

	go c.save()
}

// Touch bumps the access time for LRU ordering. No snapshot save; access
// times are allowed to be slightly stale on disk.
func (c *Cache) Touch(path string) {
	c.mu.Lock()
	if e, ok := c.files[path]; ok {
		e.AccessTime = c.now().UnixMilli()
	}
	c.mu.Unlock()
}

// Contains reports whether path is indexed.
func (c *Cache) Contains(path string) bool {
	c.mu.Lock()
	_, ok := c.files[path]
	c.mu.Unlock()
	return ok
}

// Cleanup runs the two-pass eviction. Throttled to the configured interval
// unless force is set (the manual cleanup endpoint always forces).
func (c *Cache) Cleanup(force bool) CleanupResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	nowMs := c.now().UnixMilli()
	if !force && c.lastCleanup > 0 &&
		nowMs-c.lastCleanup < c.cfg.CleanupInterval.Milliseconds() {
		return CleanupResult{}
	}
	c.lastCleanup = nowMs

	var result CleanupResult

	// Pass 1: drop entries not accessed within max age. Entries whose file
	// already vanished are purged from the index at the same time.
	maxAgeMs := c.cfg.MaxAge.Milliseconds()
	for path, e := range c.files {
		if nowMs-e.AccessTime < maxAgeMs {
			if _, err := os.Stat(path); os.IsNotExist(err) {
				c.removeLocked(path, e, &result)
			}
			continue
		}
		c.removeLocked(path, e, &result)
		metrics.CacheEvictionsTotal.WithLabelValues("expired").Inc()
	}

	// Pass 2: LRU-evict down to 80% of the ceilings.
	sizeCeiling := int64(float64(c.cfg.MaxSizeBytes) * evictionTarget)
	countCeiling := int(float64(c.cfg.MaxFiles) * evictionTarget)
	if c.totalSize > c.cfg.MaxSizeBytes || len(c.files) > c.cfg.MaxFiles {
		for _, e := range c.entriesByAccessLocked() {
			if c.totalSize <= sizeCeiling && len(c.files) <= countCeiling {
				break
			}
			c.removeLocked(e.Path, e, &result)
			metrics.CacheEvictionsTotal.WithLabelValues("lru").Inc()
		}
	}

	c.publishGaugesLocked()
	metrics.CacheCleanupsTotal.Inc()
	if result.RemovedCount > 0 {
		logging.Info("Cache cleanup removed %d files, freed %.1f MB",
			result.RemovedCount, float64(result.FreedBytes)/(1<<20))
	}

	snapshot := c.snapshotLocked()
	go c.writeSnapshot(snapshot)
	return result
}

// removeLocked deletes the file and the index entry. Unlink failures are
// tolerated: a file we cannot delete is still dropped from bookkeeping so the
// index never wedges on a bad artifact.
func (c *Cache) removeLocked(path string, e *Entry, result *CleanupResult) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logging.Warn("Failed to remove cached artifact %s: %v", path, err)
	}
	delete(c.files, path)
	c.totalSize -= e.Size
	c.clampLocked()
	result.RemovedCount++
	result.FreedBytes += e.Size
}

// entriesByAccessLocked returns entries in ascending access time.
func (c *Cache) entriesByAccessLocked() []*Entry {
	entries := make([]*Entry, 0, len(c.files))
	for _, e := range c.files {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].AccessTime < entries[j].AccessTime
	})
	return entries
}

func (c *Cache) clampLocked() {
	if c.totalSize < 0 {
		c.totalSize = 0
	}
}

// Status returns current totals and ceilings.
func (c *Cache) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		FileCount:    len(c.files),
		TotalSize:    c.totalSize,
		MaxSizeBytes: c.cfg.MaxSizeBytes,
		MaxFiles:     c.cfg.MaxFiles,
		LastCleanup:  c.lastCleanup,
	}
}

// Start launches the periodic cleanup loop. Call Stop to halt it.
func (c *Cache) Start() {
	interval := c.cfg.CleanupInterval
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	c.mu.Lock()
	c.started = true
	c.mu.Unlock()
	go func() {
		defer close(c.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.Cleanup(false)
			case <-c.stop:
				return
			}
		}
	}()
}

// Stop halts the periodic loop and waits for it to exit. Safe to call when
// Start was never invoked.
func (c *Cache) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
	c.mu.Lock()
	started := c.started
	c.mu.Unlock()
	if started {
		<-c.done
	}
}

func (c *Cache) publishGauges() {
	c.mu.Lock()
	c.publishGaugesLocked()
	c.mu.Unlock()
}

func (c *Cache) publishGaugesLocked() {
	metrics.CacheFiles.Set(float64(len(c.files)))
	metrics.CacheSizeBytes.Set(float64(c.totalSize))
}
