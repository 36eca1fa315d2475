// Package accel selects the fastest working ffmpeg invocation strategy for
// the host machine.
//
// A probe cycle detects GPU vendors, walks a static per-platform candidate
// table, runs a short synthetic encode test per candidate, benchmarks the
// survivors, and picks the fastest. Results are cached on disk keyed by a
// coarse system fingerprint so the (slow, process-spawning) probe is skipped
// while the hardware is unchanged and the result is fresh.
//
// The package also owns the pure command builder that maps a selected method
// to concrete ffmpeg arguments for single-frame thumbnail extraction.
package accel
