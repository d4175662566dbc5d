package linkpreview

// Hooks are lightweight callbacks for high-signal pipeline events.
// Implementations MUST be cheap and non-blocking; the cache and queue call
// them on hot paths. Wrap with hooks/async when a consumer does real work.
type Hooks interface {
	// A fetch settled successfully and the preview is now cached.
	// Consumers typically re-render the affected item.
	PreviewReady(url string, source Source)

	// A fetch gave up after exhausting its retries.
	FetchFailed(url string, attempts int, err error)

	// A single persisted entry was deleted by the cache on read.
	// reason is "corrupt" (broken frame) or "decode" (codec rejected payload).
	SelfHeal(storageKey, reason string)

	// The persistent layer rejected a write even after an eviction pass;
	// the entry stays memory-only.
	StoreSetRejected(storageKey string)

	// An eviction pass finished, having removed this many entries.
	EvictionPass(removed int)
}

// NopHooks is the default no-op.
type NopHooks struct{}

func (NopHooks) PreviewReady(string, Source)    {}
func (NopHooks) FetchFailed(string, int, error) {}
func (NopHooks) SelfHeal(string, string)        {}
func (NopHooks) StoreSetRejected(string)        {}
func (NopHooks) EvictionPass(int)               {}
