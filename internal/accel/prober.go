package accel

import (
	"context"
	"os"
	"runtime"
	"strings"
	"time"

	"media-explorer/internal/logging"
	"media-explorer/internal/metrics"
)

// candidateTestTimeout bounds each synthetic encode test. A hung driver must
// not stall the first video thumbnail of a scan.
const candidateTestTimeout = 5 * time.Second

// benchmarkTimeout bounds the comparative timing run for a working method.
const benchmarkTimeout = 10 * time.Second

// maxBenchmarked is how many working candidates are timed before picking the
// fastest. More adds probe latency for little signal.
const maxBenchmarked = 3

// Prober discovers the best hardware acceleration method for this machine by
// actually test-encoding with each candidate, not by trusting driver
// inventory alone.
type Prober struct {
	ffmpegPath string
	runner     CommandRunner
	platform   string
}

// NewProber returns a Prober that runs candidate tests through the given
// runner. ffmpegPath must already be resolved via LocateFFmpeg.
func NewProber(ffmpegPath string, runner CommandRunner) *Prober {
	return &Prober{
		ffmpegPath: ffmpegPath,
		runner:     runner,
		platform:   runtime.GOOS,
	}
}

// DetectVendors performs best-effort GPU vendor detection for the current
// platform. It never fails: when every probe errors out the zero Vendors
// value sends the caller to the platform-generic candidate list.
func (p *Prober) DetectVendors(ctx context.Context) Vendors {
	var v Vendors

	switch p.platform {
	case "windows":
		out, err := p.runner.Output(ctx, "wmic", "path", "win32_VideoController", "get", "name")
		if err != nil {
			out, err = p.runner.Output(ctx, "powershell", "-NoProfile", "-Command",
				"Get-CimInstance win32_VideoController | Select-Object -ExpandProperty Name")
		}
		if err == nil {
			v = vendorsFromGPUNames(out)
		}

	case "linux":
		if out, err := p.runner.Output(ctx, "lspci", "-nn"); err == nil {
			v = vendorsFromGPUNames(out)
		}
		// A render node means VAAPI has something to open even when lspci is
		// unavailable (common in containers).
		if !v.Any() {
			if _, err := os.Stat("/dev/dri/renderD128"); err == nil {
				v.Intel = true
			}
		}

	case "darwin":
		if out, err := p.runner.Output(ctx, "system_profiler", "SPDisplaysDataType"); err == nil {
			v = vendorsFromGPUNames(out)
		}
		// Every supported Mac has VideoToolbox regardless of what the
		// profiler reports.
		v.Apple = true
	}

	if !v.Any() {
		// CPU model strings often name the integrated GPU vendor.
		model := strings.ToLower(CPUModel())
		if strings.Contains(model, "intel") {
			v.Intel = true
		}
		if strings.Contains(model, "amd") || strings.Contains(model, "ryzen") {
			v.AMD = true
		}
	}

	logging.Debug("GPU vendor detection: nvidia=%v intel=%v amd=%v apple=%v",
		v.NVIDIA, v.Intel, v.AMD, v.Apple)
	return v
}

// vendorsFromGPUNames scans tool output for vendor markers.
func vendorsFromGPUNames(out string) Vendors {
	s := strings.ToLower(out)
	return Vendors{
		NVIDIA: strings.Contains(s, "nvidia") || strings.Contains(s, "geforce") || strings.Contains(s, "quadro"),
		Intel:  strings.Contains(s, "intel"),
		AMD:    strings.Contains(s, "amd") || strings.Contains(s, "radeon"),
		Apple:  strings.Contains(s, "apple"),
	}
}

// hwaccelNames returns the set ffmpeg reports via -hwaccels, lowercased.
// Errors yield an empty set, which disables the pre-filter rather than the
// probe.
func (p *Prober) hwaccelNames(ctx context.Context) map[string]bool {
	out, err := p.runner.Output(ctx, p.ffmpegPath, "-hide_banner", "-hwaccels")
	if err != nil {
		logging.Debug("ffmpeg -hwaccels failed: %v", err)
		return nil
	}

	names := make(map[string]bool)
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(strings.ToLower(line))
		if line == "" || strings.HasPrefix(line, "hardware acceleration") {
			continue
		}
		names[line] = true
	}
	return names
}

// methodSupported filters candidates against ffmpeg's advertised hwaccels.
// Encoder-only methods (amf, nvenc) are not hwaccels, so they always pass and
// are settled by the test encode itself.
func methodSupported(m Method, hwaccels map[string]bool) bool {
	if len(hwaccels) == 0 {
		return true
	}
	switch m {
	case MethodCUDA:
		return hwaccels["cuda"]
	case MethodQSV:
		return hwaccels["qsv"]
	case MethodVAAPI:
		return hwaccels["vaapi"]
	case MethodVideoToolbox:
		return hwaccels["videotoolbox"]
	case MethodDXVA2:
		return hwaccels["dxva2"]
	case MethodD3D11VA:
		return hwaccels["d3d11va"]
	case MethodOpenCL:
		return hwaccels["opencl"]
	default:
		return true
	}
}

// probeSuccess is one candidate that passed its test encode.
type probeSuccess struct {
	candidate candidate
	benchmark *Benchmark
}

// Probe runs the full detection cycle: vendor detection, candidate filtering,
// test encodes, comparative benchmarks, selection. It never returns an error;
// total failure produces the CPU capability with inferred SIMD flags.
func (p *Prober) Probe(ctx context.Context) ProbeResult {
	started := time.Now()
	vendors := p.DetectVendors(ctx)
	hwaccels := p.hwaccelNames(ctx)
	candidates := candidateList(p.platform, vendors)

	var successes []probeSuccess
	for _, c := range candidates {
		if len(successes) >= maxBenchmarked {
			break
		}
		if !methodSupported(c.method, hwaccels) {
			logging.Debug("Skipping %s: not in ffmpeg hwaccel list", c.method)
			continue
		}
		bench, err := p.runCandidateTest(ctx, c.method)
		if err != nil {
			metrics.CandidateTestsTotal.WithLabelValues(string(c.method), "failure").Inc()
			logging.Debug("Candidate %s failed: %v", c.method, err)
			continue
		}
		metrics.CandidateTestsTotal.WithLabelValues(string(c.method), "success").Inc()
		logging.Debug("Candidate %s passed in %dms", c.method, bench.DurationMs)
		successes = append(successes, probeSuccess{candidate: c, benchmark: bench})
	}

	if len(successes) == 0 {
		logging.Info("No hardware acceleration available, using CPU (probe took %s)",
			time.Since(started).Round(time.Millisecond))
		metrics.ProbesTotal.WithLabelValues("cpu").Inc()
		return ProbeResult{Capability: p.cpuCapability()}
	}

	best := successes[0]
	for _, s := range successes[1:] {
		if s.benchmark.DurationMs < best.benchmark.DurationMs {
			best = s
		}
	}

	var alternatives []Alternative
	for _, s := range successes {
		if s.candidate.method == best.candidate.method {
			continue
		}
		alternatives = append(alternatives, Alternative{
			Method:    s.candidate.method,
			Benchmark: s.benchmark,
		})
	}

	logging.Info("Selected %s acceleration (%s, %dms benchmark, probe took %s)",
		best.candidate.method, best.candidate.vendor, best.benchmark.DurationMs,
		time.Since(started).Round(time.Millisecond))
	metrics.ProbesTotal.WithLabelValues("hardware").Inc()

	return ProbeResult{
		Capability: Capability{
			Available: true,
			Method:    best.candidate.method,
			Vendor:    best.candidate.vendor,
			Priority:  best.candidate.priority,
			Threads:   runtime.NumCPU(),
			Platform:  p.platform,
			CPU:       InferCPUFeatures(CPUModel()),
		},
		Benchmark:    best.benchmark,
		Alternatives: alternatives,
	}
}

// runCandidateTest is the uniform per-candidate cycle: a cheap synthetic
// encode to establish that the method works at all, then a heavier timed run.
func (p *Prober) runCandidateTest(ctx context.Context, method Method) (*Benchmark, error) {
	testCtx, cancel := context.WithTimeout(ctx, candidateTestTimeout)
	defer cancel()
	if err := p.runner.Run(testCtx, p.ffmpegPath, testArgs(method)...); err != nil {
		return nil, err
	}

	benchCtx, cancel := context.WithTimeout(ctx, benchmarkTimeout)
	defer cancel()
	started := time.Now()
	if err := p.runner.Run(benchCtx, p.ffmpegPath, benchmarkArgs(method)...); err != nil {
		return nil, err
	}
	return &Benchmark{DurationMs: time.Since(started).Milliseconds()}, nil
}

// cpuCapability builds the software fallback capability.
func (p *Prober) cpuCapability() Capability {
	return Capability{
		Available: false,
		Method:    MethodCPU,
		Vendor:    "CPU",
		Threads:   runtime.NumCPU(),
		Platform:  p.platform,
		CPU:       InferCPUFeatures(CPUModel()),
	}
}
