// Package metrics defines the Prometheus metrics exposed on /metrics.
// All metrics are registered via promauto at package load time.
package metrics
