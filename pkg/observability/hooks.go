// Package observability lets the binary attach metrics or tracing to the
// card pipeline without the libraries depending on a backend.
//
// Libraries emit events through the accessors [Generation], [Cache] and
// [Storage]. Until main registers something else, every accessor returns a
// no-op implementation.
//
//	func main() {
//	    hooks := observability.NewLogHooks(logger)
//	    observability.SetGenerationHooks(hooks)
//	    observability.SetCacheHooks(hooks)
//	    observability.SetStorageHooks(hooks)
//	}
//
// Emitting an event:
//
//	start := time.Now()
//	observability.Generation().OnGenerateStart(ctx, templateID)
//	// ... composite ...
//	observability.Generation().OnGenerateComplete(ctx, templateID, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Generation Hooks
// =============================================================================

// GenerationHooks receives events from layout and compositing.
type GenerationHooks interface {
	OnGenerateStart(ctx context.Context, templateID string)
	OnGenerateComplete(ctx context.Context, templateID string, duration time.Duration, err error)

	// OnLayout reports the outcome of one layout computation.
	OnLayout(ctx context.Context, templateID string, lines int, fontSize float64)

	OnPreview(ctx context.Context, templateID string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache lookups.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Storage Hooks
// =============================================================================

// StorageHooks receives events from artifact retention and the record keeper.
type StorageHooks interface {
	// OnSweep reports one retention pass.
	OnSweep(ctx context.Context, removed int, duration time.Duration, err error)

	// OnRecord reports one persistence attempt.
	OnRecord(ctx context.Context, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopGenerationHooks ignores every event.
type NoopGenerationHooks struct{}

func (NoopGenerationHooks) OnGenerateStart(context.Context, string)                          {}
func (NoopGenerationHooks) OnGenerateComplete(context.Context, string, time.Duration, error) {}
func (NoopGenerationHooks) OnLayout(context.Context, string, int, float64)                   {}
func (NoopGenerationHooks) OnPreview(context.Context, string, time.Duration, error)          {}

// NoopCacheHooks ignores every event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopStorageHooks ignores every event.
type NoopStorageHooks struct{}

func (NoopStorageHooks) OnSweep(context.Context, int, time.Duration, error) {}
func (NoopStorageHooks) OnRecord(context.Context, error)                    {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	generationHooks GenerationHooks = NoopGenerationHooks{}
	cacheHooks      CacheHooks      = NoopCacheHooks{}
	storageHooks    StorageHooks    = NoopStorageHooks{}
	hooksMu         sync.RWMutex
)

// SetGenerationHooks registers h. A nil h is ignored.
func SetGenerationHooks(h GenerationHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		generationHooks = h
	}
}

// SetCacheHooks registers h. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetStorageHooks registers h. A nil h is ignored.
func SetStorageHooks(h StorageHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storageHooks = h
	}
}

// Generation returns the registered generation hooks.
func Generation() GenerationHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return generationHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Storage returns the registered storage hooks.
func Storage() StorageHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storageHooks
}

// Reset restores the no-op defaults. Tests use it between cases.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	generationHooks = NoopGenerationHooks{}
	cacheHooks = NoopCacheHooks{}
	storageHooks = NoopStorageHooks{}
}
