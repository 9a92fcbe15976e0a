// Package metrics provides the Prometheus registry shared by localfs's
// metrics collaborators and its HTTP exposition server.
//
// Metrics collection is optional - if InitRegistry is never called, IsEnabled
// reports false and callers fall back to a no-op collaborator with zero
// overhead.
//
// Usage:
//
//	// Initialize global registry (typically in main.go)
//	metrics.InitRegistry()
//
//	// Build a concrete collaborator against it
//	storeMetrics := prometheus.NewStoreMetrics()
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// registry is the global Prometheus registry for all localfs metrics.
	// Protected by registryOnce for a write-once, read-many pattern.
	registry     *prometheus.Registry
	registryOnce sync.Once
)

// InitRegistry initializes the global Prometheus registry.
//
// This must be called before creating any metrics instances. It's safe to call
// multiple times - subsequent calls are ignored.
//
// If not called, GetRegistry() will return nil and metrics constructors
// return nil, leaving callers on their own no-op fallback.
//
// Thread safety:
// sync.Once provides the necessary memory barriers to ensure the registry
// write is visible to all subsequent reads.
func InitRegistry() {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()
	})
}

// GetRegistry returns the global Prometheus registry.
//
// Returns nil if InitRegistry() has not been called, indicating metrics
// are disabled.
//
// Thread safety:
// Safe to call concurrently. The sync.Once in InitRegistry() provides
// a happens-before relationship ensuring the registry value is visible.
func GetRegistry() *prometheus.Registry {
	return registry
}

// IsEnabled returns true if metrics collection is enabled.
//
// Metrics are enabled if InitRegistry() has been called.
func IsEnabled() bool {
	return GetRegistry() != nil
}
