package accel

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

// fakeRunner scripts process outcomes per method and counts every spawn.
type fakeRunner struct {
	mu       sync.Mutex
	spawns   int
	failures map[Method]bool // candidate tests for these methods fail
	outputs  map[string]string
}

func (f *fakeRunner) methodOf(args []string) Method {
	joined := strings.Join(args, " ")
	switch {
	case strings.Contains(joined, "h264_nvenc"):
		return MethodCUDA
	case strings.Contains(joined, "h264_qsv"):
		return MethodQSV
	case strings.Contains(joined, "h264_vaapi"):
		return MethodVAAPI
	case strings.Contains(joined, "h264_amf"):
		return MethodAMF
	case strings.Contains(joined, "h264_videotoolbox"):
		return MethodVideoToolbox
	case strings.Contains(joined, "dxva2"):
		return MethodDXVA2
	case strings.Contains(joined, "d3d11va"):
		return MethodD3D11VA
	case strings.Contains(joined, "opencl"):
		return MethodOpenCL
	default:
		return MethodCPU
	}
}

func (f *fakeRunner) Run(_ context.Context, _ string, args ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spawns++
	if f.failures[f.methodOf(args)] {
		return errors.New("encoder not available")
	}
	return nil
}

func (f *fakeRunner) Output(_ context.Context, name string, args ...string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spawns++
	key := name + " " + strings.Join(args, " ")
	for k, v := range f.outputs {
		if strings.Contains(key, k) {
			return v, nil
		}
	}
	return "", errors.New("command not found")
}

func (f *fakeRunner) spawnCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.spawns
}

func newLinuxProber(r CommandRunner) *Prober {
	p := NewProber("ffmpeg", r)
	p.platform = "linux"
	return p
}

func TestDetectVendorsLinux(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"lspci": "00:02.0 VGA compatible controller: Intel Corporation UHD Graphics\n01:00.0 3D controller: NVIDIA Corporation GP107M",
	}}
	v := newLinuxProber(runner).DetectVendors(context.Background())
	if !v.Intel || !v.NVIDIA {
		t.Errorf("expected intel and nvidia, got %+v", v)
	}
	if v.AMD || v.Apple {
		t.Errorf("unexpected vendors: %+v", v)
	}
}

func TestDetectVendorsNeverFails(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{}} // every command errors
	v := newLinuxProber(runner).DetectVendors(context.Background())
	// CPU model hints may fill something in; either way we got an answer.
	_ = v
}

func TestProbePicksFastestCandidate(t *testing.T) {
	runner := &fakeRunner{
		outputs: map[string]string{
			"lspci":    "VGA: Intel Corporation UHD Graphics",
			"hwaccels": "",
		},
		failures: map[Method]bool{},
	}
	result := newLinuxProber(runner).Probe(context.Background())
	if !result.Capability.Available {
		t.Fatalf("expected hardware capability, got %+v", result.Capability)
	}
	if result.Capability.Method != MethodQSV && result.Capability.Method != MethodVAAPI &&
		result.Capability.Method != MethodOpenCL {
		t.Errorf("unexpected method %s for intel/linux", result.Capability.Method)
	}
	if result.Benchmark == nil {
		t.Error("selected capability must carry a benchmark")
	}
}

func TestProbeTotalFailureFallsBackToCPU(t *testing.T) {
	runner := &fakeRunner{
		outputs: map[string]string{"lspci": "VGA: Intel Corporation UHD Graphics"},
		failures: map[Method]bool{
			MethodCUDA: true, MethodQSV: true, MethodVAAPI: true,
			MethodAMF: true, MethodOpenCL: true, MethodDXVA2: true,
			MethodD3D11VA: true, MethodVideoToolbox: true, MethodCPU: true,
		},
	}
	result := newLinuxProber(runner).Probe(context.Background())
	if result.Capability.Available {
		t.Fatalf("expected CPU fallback, got %+v", result.Capability)
	}
	if result.Capability.Method != MethodCPU {
		t.Errorf("method = %s, want cpu", result.Capability.Method)
	}
	if result.Capability.Threads <= 0 {
		t.Error("CPU capability must set thread count")
	}
}

func TestProbeStopsAfterEnoughSuccesses(t *testing.T) {
	runner := &fakeRunner{
		outputs: map[string]string{
			"lspci": "NVIDIA GeForce, Intel UHD, AMD Radeon",
		},
	}
	newLinuxProber(runner).Probe(context.Background())

	// Spawn budget: vendor detection + hwaccel listing + at most
	// maxBenchmarked candidates, each a test run plus a benchmark run.
	maxSpawns := 2 + maxBenchmarked*2
	if got := runner.spawnCount(); got > maxSpawns {
		t.Errorf("probe spawned %d processes, budget is %d", got, maxSpawns)
	}
}

func TestMethodSupportedFiltersAgainstHwaccels(t *testing.T) {
	hwaccels := map[string]bool{"vaapi": true}
	if methodSupported(MethodCUDA, hwaccels) {
		t.Error("cuda should be filtered when ffmpeg lacks the hwaccel")
	}
	if !methodSupported(MethodVAAPI, hwaccels) {
		t.Error("vaapi should pass the filter")
	}
	// Encoder-only methods are not hwaccels and must not be filtered.
	if !methodSupported(MethodAMF, hwaccels) {
		t.Error("amf must pass regardless of hwaccel list")
	}
	// An empty list disables the filter.
	if !methodSupported(MethodCUDA, nil) {
		t.Error("empty hwaccel list must not filter anything")
	}
}

func TestCandidateListVendorOrdering(t *testing.T) {
	list := candidateList("linux", Vendors{Intel: true})
	if len(list) == 0 {
		t.Fatal("empty candidate list")
	}
	if list[0].method != MethodQSV {
		t.Errorf("first candidate = %s, want qsv for intel/linux", list[0].method)
	}
	seen := make(map[Method]bool)
	for i, c := range list {
		if seen[c.method] {
			t.Errorf("duplicate method %s", c.method)
		}
		seen[c.method] = true
		if c.priority != i+1 {
			t.Errorf("priority %d at position %d", c.priority, i)
		}
	}
}

func TestCandidateListNoVendorUsesUniversal(t *testing.T) {
	list := candidateList("linux", Vendors{})
	if len(list) == 0 {
		t.Fatal("no-vendor list must still offer candidates")
	}
	if list[0].method != MethodVAAPI {
		t.Errorf("first universal candidate = %s, want vaapi", list[0].method)
	}
}

func TestCandidateListUnknownPlatform(t *testing.T) {
	list := candidateList("plan9", Vendors{NVIDIA: true})
	if len(list) == 0 {
		t.Fatal("unknown platform must fall back to the linux table")
	}
	if list[0].method != MethodCUDA {
		t.Errorf("first candidate = %s, want cuda for nvidia", list[0].method)
	}
}
