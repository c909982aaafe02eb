// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about pipeline resolution and HTTP request handling.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetResolutionHooks(&myResolutionHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Resolution().OnProbeStart(ctx, device)
//	// ... run the probe ...
//	observability.Resolution().OnProbeComplete(ctx, device, matches, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Resolution Hooks
// =============================================================================

// ResolutionHooks receives events from the topology resolution pipeline.
type ResolutionHooks interface {
	// Load events
	OnLoadStart(ctx context.Context, manifest string)
	OnLoadComplete(ctx context.Context, manifest string, nodeCount int, duration time.Duration, err error)

	// Probe events
	OnProbeStart(ctx context.Context, device string)
	OnProbeComplete(ctx context.Context, device string, matches int, duration time.Duration, err error)

	// Resolve events
	OnResolveComplete(ctx context.Context, device string, encoders, deferred int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopResolutionHooks is a no-op implementation of ResolutionHooks.
type NoopResolutionHooks struct{}

func (NoopResolutionHooks) OnLoadStart(context.Context, string) {}
func (NoopResolutionHooks) OnLoadComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopResolutionHooks) OnProbeStart(context.Context, string) {}
func (NoopResolutionHooks) OnProbeComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopResolutionHooks) OnResolveComplete(context.Context, string, int, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	resolutionHooks ResolutionHooks = NoopResolutionHooks{}
	hooksMu         sync.RWMutex
)

// SetResolutionHooks registers custom resolution hooks.
// This should be called once at application startup before any pipeline operations.
func SetResolutionHooks(h ResolutionHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		resolutionHooks = h
	}
}

// Resolution returns the registered resolution hooks.
func Resolution() ResolutionHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return resolutionHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	resolutionHooks = NoopResolutionHooks{}
}
