package offgate

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The gateway calls them on hot paths.
type Hooks interface {
	// An entry was deleted by the gateway on read.
	// reason ∈ {"corrupt", "expired", "value_decode"}
	SelfHeal(storageKey, reason string)

	// Store returned ok=false on Set (backpressure/eviction).
	StoreSetRejected(storageKey string)

	// Network failed and a prior runtime copy was served instead.
	FallbackServed(key string)

	// Network failed with nothing cached; the offline page was served
	// (navigation requests only).
	OfflinePageServed(key string)

	// Network failed with nothing cached and no offline page; a generic
	// 503 offline response was synthesized.
	OfflineSynthesized(key string)

	// A generation and all its entries were purged.
	GenerationDropped(generation string, entries int)

	// One precache fetch failed during install.
	PrecacheFailed(url string, err error)

	// A background sync was requested (reserved; no retry logic exists).
	SyncRequested(tag string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) SelfHeal(string, string)       {}
func (NopHooks) StoreSetRejected(string)       {}
func (NopHooks) FallbackServed(string)         {}
func (NopHooks) OfflinePageServed(string)      {}
func (NopHooks) OfflineSynthesized(string)     {}
func (NopHooks) GenerationDropped(string, int) {}
func (NopHooks) PrecacheFailed(string, error)  {}
func (NopHooks) SyncRequested(string)          {}
