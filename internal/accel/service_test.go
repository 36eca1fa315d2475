package accel

import (
	"context"
	"testing"
	"time"
)

func TestServiceCapabilityUsesCacheWhenFresh(t *testing.T) {
	cache := testCache(t)
	cache.RecordResult(sampleResult())

	runner := &fakeRunner{}
	svc := NewService("ffmpeg", runner, cache)
	svc.prober.platform = "linux"

	cap := svc.Capability(context.Background())
	if cap.Method != MethodVAAPI || !cap.Available {
		t.Errorf("capability = %+v, want cached vaapi", cap)
	}
	if got := runner.spawnCount(); got != 0 {
		t.Errorf("fresh cache must not spawn processes, spawned %d", got)
	}
}

func TestServiceCapabilityProbesWhenStale(t *testing.T) {
	cache := testCache(t)
	cache.RecordResult(sampleResult())
	cache.now = func() time.Time { return time.UnixMilli(1_000_000).Add(2 * time.Hour) }

	runner := &fakeRunner{outputs: map[string]string{
		"lspci": "VGA: Intel Corporation UHD Graphics",
	}}
	svc := NewService("ffmpeg", runner, cache)
	svc.prober.platform = "linux"

	cap := svc.Capability(context.Background())
	if runner.spawnCount() == 0 {
		t.Error("stale cache must trigger a probe")
	}
	if !cap.Available {
		t.Errorf("working candidates must yield a hardware capability: %+v", cap)
	}

	// The probe result is recorded; the next call comes from the cache.
	before := runner.spawnCount()
	svc.Capability(context.Background())
	if got := runner.spawnCount(); got != before {
		t.Errorf("second call spawned %d extra processes", got-before)
	}
}

func TestServiceCachedCPUMethod(t *testing.T) {
	cache := testCache(t)
	cache.RecordResult(ProbeResult{Capability: Capability{Method: MethodCPU, Vendor: "CPU"}})

	svc := NewService("ffmpeg", &fakeRunner{}, cache)
	cap := svc.Capability(context.Background())
	if cap.Available || cap.Method != MethodCPU {
		t.Errorf("capability = %+v, want CPU-only", cap)
	}
}

func TestServiceAvailability(t *testing.T) {
	var nilSvc *Service
	if nilSvc.Available() {
		t.Error("nil service must report unavailable")
	}
	if nilSvc.FFmpegPath() != "" {
		t.Error("nil service must report empty path")
	}

	svc := NewService("/usr/bin/ffmpeg", &fakeRunner{}, testCache(t))
	if !svc.Available() {
		t.Error("service with a path must be available")
	}
}
