package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_explorer_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_explorer_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_explorer_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Scanner metrics
var (
	ScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_explorer_scans_total",
			Help: "Total number of directory scans",
		},
		[]string{"status"},
	)

	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_explorer_scan_duration_seconds",
			Help:    "Directory scan duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	ScanFilesFound = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_explorer_scan_files_found",
			Help:    "Number of media files found per scan",
			Buckets: []float64{0, 10, 50, 100, 500, 1000, 5000, 10000},
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_explorer_active_sessions",
			Help: "Number of scan sessions currently held in memory",
		},
	)
)

// Thumbnail metrics
var (
	ThumbnailsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_explorer_thumbnails_generated_total",
			Help: "Total number of thumbnails generated",
		},
		[]string{"kind", "status"},
	)

	ThumbnailCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_explorer_thumbnail_cache_hits_total",
			Help: "Total number of thumbnail cache hits",
		},
		[]string{"kind"},
	)

	ThumbnailDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_explorer_thumbnail_duration_seconds",
			Help:    "Thumbnail generation duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.2, 0.5, 1, 3, 10, 30},
		},
		[]string{"kind"},
	)
)

// Artifact cache metrics
var (
	CacheFiles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_explorer_cache_files",
			Help: "Number of files tracked by the thumbnail cache index",
		},
	)

	CacheSizeBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_explorer_cache_size_bytes",
			Help: "Total size of cached thumbnail artifacts in bytes",
		},
	)

	CacheEvictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_explorer_cache_evictions_total",
			Help: "Total number of cache entries removed by cleanup",
		},
		[]string{"reason"}, // "expired", "lru"
	)

	CacheCleanupsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_explorer_cache_cleanups_total",
			Help: "Total number of cache cleanup passes executed",
		},
	)
)

// Accelerator probe metrics
var (
	ProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_explorer_accel_probes_total",
			Help: "Total number of hardware acceleration probe cycles",
		},
		[]string{"outcome"}, // "hardware", "cpu", "cached"
	)

	CandidateTestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_explorer_accel_candidate_tests_total",
			Help: "Total number of accelerator candidate tests executed",
		},
		[]string{"method", "status"},
	)
)
