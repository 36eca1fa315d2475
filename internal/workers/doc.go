// Package workers provides helpers for sizing worker pools in containerized
// environments. runtime.NumCPU() reports the host CPU count and ignores
// cgroup limits; GOMAXPROCS (set automatically from container limits since
// Go 1.19) is the right basis for pool sizing, so these helpers use it.
//
// The scanner uses ForMixed to size its thumbnail-generation pool; the count
// can be pinned with the SCAN_WORKERS environment variable.
package workers
