package accel

// Method identifies an ffmpeg decode/encode backend.
type Method string

const (
	// MethodCUDA is NVIDIA CUDA hardware acceleration.
	MethodCUDA Method = "cuda"
	// MethodNVENC is the NVIDIA NVENC encoder.
	MethodNVENC Method = "nvenc"
	// MethodQSV is Intel Quick Sync Video.
	MethodQSV Method = "qsv"
	// MethodVAAPI is the Linux Video Acceleration API.
	MethodVAAPI Method = "vaapi"
	// MethodAMF is the AMD Advanced Media Framework encoder.
	MethodAMF Method = "amf"
	// MethodVideoToolbox is Apple VideoToolbox.
	MethodVideoToolbox Method = "videotoolbox"
	// MethodDXVA2 is DirectX Video Acceleration 2 (Windows).
	MethodDXVA2 Method = "dxva2"
	// MethodD3D11VA is Direct3D 11 Video Acceleration (Windows).
	MethodD3D11VA Method = "d3d11va"
	// MethodOpenCL is the generic OpenCL filter path.
	MethodOpenCL Method = "opencl"
	// MethodCPU is the software fallback.
	MethodCPU Method = "cpu"
)

// Vendors reports which GPU vendors were detected on the host.
// Detection is best-effort: a false flag means "not seen", not "absent".
type Vendors struct {
	NVIDIA bool `json:"nvidia"`
	Intel  bool `json:"intel"`
	AMD    bool `json:"amd"`
	Apple  bool `json:"apple"`
}

// Any returns true if at least one vendor was detected.
func (v Vendors) Any() bool {
	return v.NVIDIA || v.Intel || v.AMD || v.Apple
}

// CPUFeatures holds SIMD capabilities inferred from the CPU model string.
// This is a heuristic, not a cpuid probe; it only influences which scaling
// filter flags the command builder picks.
type CPUFeatures struct {
	AVX    bool `json:"avx"`
	AVX2   bool `json:"avx2"`
	AVX512 bool `json:"avx512"`
}

// Capability describes the acceleration path selected for this machine.
// Immutable once produced by a probe cycle.
type Capability struct {
	Available bool        `json:"available"` // false means CPU-only
	Method    Method      `json:"method"`
	Vendor    string      `json:"vendor"`
	Priority  int         `json:"priority"`
	Threads   int         `json:"threads"`
	Platform  string      `json:"platform"`
	CPU       CPUFeatures `json:"cpuOptimizations"`
}

// Benchmark holds the measured duration of a candidate test encode.
type Benchmark struct {
	DurationMs int64 `json:"durationMs"`
}

// Alternative is a working-but-not-selected accelerator from a probe cycle.
type Alternative struct {
	Method    Method     `json:"method"`
	Benchmark *Benchmark `json:"benchmark,omitempty"`
}

// ProbeResult carries the selected capability plus the comparative timings
// collected during the probe, for recording into the capability cache.
type ProbeResult struct {
	Capability   Capability
	Benchmark    *Benchmark
	Alternatives []Alternative
}
