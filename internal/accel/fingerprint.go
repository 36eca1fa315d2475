package accel

import (
	"crypto/md5" //nolint:gosec // fingerprint for change detection, not security
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

var (
	hostInfoOnce sync.Once
	hostCPUModel string
	hostMemGiB   uint64
)

// hostInfo reads the CPU model and total RAM once per process. Failures
// degrade to empty/zero values; the fingerprint still works, just with less
// discriminating input.
func hostInfo() (cpuModel string, memGiB uint64) {
	hostInfoOnce.Do(func() {
		if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
			hostCPUModel = infos[0].ModelName
		}
		if vm, err := mem.VirtualMemory(); err == nil {
			hostMemGiB = vm.Total / (1 << 30)
		}
	})
	return hostCPUModel, hostMemGiB
}

// CPUModel returns the host CPU model string, or "" if unavailable.
func CPUModel() string {
	model, _ := hostInfo()
	return model
}

// Fingerprint hashes coarse hardware/OS identifiers. A change in the
// fingerprint means cached probe results can no longer be trusted (driver
// update, VM migration, new hardware).
func Fingerprint() string {
	model, memGiB := hostInfo()

	id := fmt.Sprintf("%s|%s|%s|%d|%d|%s",
		runtime.GOOS,
		runtime.GOARCH,
		model,
		runtime.NumCPU(),
		memGiB,
		runtime.Version(),
	)
	return fmt.Sprintf("%x", md5.Sum([]byte(id))) //nolint:gosec
}

// InferCPUFeatures estimates SIMD support from the CPU model string. Rough
// by design: only the scale filter flags depend on it.
func InferCPUFeatures(model string) CPUFeatures {
	m := strings.ToLower(model)
	var f CPUFeatures

	switch {
	case strings.Contains(m, "xeon"), strings.Contains(m, "i9"),
		strings.Contains(m, "i7"), strings.Contains(m, "ryzen"):
		f.AVX = true
		f.AVX2 = true
		if strings.Contains(m, "xeon") || strings.Contains(m, "i9") {
			f.AVX512 = true
		}
	case strings.Contains(m, "i5"), strings.Contains(m, "i3"):
		f.AVX = true
		f.AVX2 = true
	}

	return f
}
