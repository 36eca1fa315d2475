package accel

import (
	"context"
	"runtime"
	"sync"
	"time"

	"media-explorer/internal/logging"
	"media-explorer/internal/metrics"
)

// Service ties the prober and the capability cache together behind one
// question: "what acceleration should the next ffmpeg invocation use?".
type Service struct {
	ffmpegPath string
	prober     *Prober
	cache      *CapabilityCache

	// probeMu serializes probe cycles so concurrent video thumbnails at boot
	// do not each spawn a full detection run.
	probeMu sync.Mutex
}

// NewService wires a Service from an already-located ffmpeg path. Pass the
// runner your process policy dictates (ExecRunner in production).
func NewService(ffmpegPath string, runner CommandRunner, cache *CapabilityCache) *Service {
	return &Service{
		ffmpegPath: ffmpegPath,
		prober:     NewProber(ffmpegPath, runner),
		cache:      cache,
	}
}

// FFmpegPath returns the resolved ffmpeg binary path, or "" when video
// support is disabled.
func (s *Service) FFmpegPath() string {
	if s == nil {
		return ""
	}
	return s.ffmpegPath
}

// Available reports whether ffmpeg was located at all.
func (s *Service) Available() bool {
	return s != nil && s.ffmpegPath != ""
}

// Capability returns the acceleration capability to use for the next
// invocation, probing only when the cached result is stale or the hardware
// fingerprint changed.
func (s *Service) Capability(ctx context.Context) Capability {
	s.probeMu.Lock()
	defer s.probeMu.Unlock()

	if s.cache.ShouldSkipProbe() {
		metrics.ProbesTotal.WithLabelValues("cached").Inc()
		return s.cachedCapability()
	}

	started := time.Now()
	result := s.prober.Probe(ctx)
	s.cache.RecordResult(result)
	logging.Debug("Probe cycle completed in %s", time.Since(started).Round(time.Millisecond))
	return result.Capability
}

// cachedCapability reconstructs a Capability from the stored record. Only the
// method survives persistence; the rest is recomputed for this host.
func (s *Service) cachedCapability() Capability {
	method := s.cache.CachedMethod()
	if method == "" || method == MethodCPU {
		return Capability{
			Available: false,
			Method:    MethodCPU,
			Vendor:    "CPU",
			Threads:   runtime.NumCPU(),
			Platform:  runtime.GOOS,
			CPU:       InferCPUFeatures(CPUModel()),
		}
	}
	return Capability{
		Available: true,
		Method:    method,
		Vendor:    vendorForMethod(method),
		Threads:   runtime.NumCPU(),
		Platform:  runtime.GOOS,
		CPU:       InferCPUFeatures(CPUModel()),
	}
}

// Reset drops the cached probe result. The next Capability call re-probes.
func (s *Service) Reset() {
	s.cache.Reset()
}

// Status exposes the capability cache record for the status endpoint.
func (s *Service) Status() Record {
	return s.cache.Status()
}

// vendorForMethod maps a method back to its vendor for display purposes when
// rebuilding a capability from the cache.
func vendorForMethod(m Method) string {
	switch m {
	case MethodCUDA, MethodNVENC:
		return "NVIDIA"
	case MethodQSV:
		return "Intel"
	case MethodAMF:
		return "AMD"
	case MethodVideoToolbox:
		return "Apple"
	case MethodVAAPI, MethodDXVA2, MethodD3D11VA, MethodOpenCL:
		return "Generic"
	default:
		return "CPU"
	}
}
