// Package linkpreview implements a link-preview acquisition pipeline: given a
// URL it returns enriched metadata (title, description, thumbnail, favicon)
// while minimizing redundant network calls, bounding fetch concurrency,
// tolerating failures and respecting a persistent storage budget.
//
// Components:
//   - cache: dual-layer metadata store - strict-LRU memory map in front of an
//     optional store.Store (e.g. Redis, BigCache) with TTL expiry and
//     size-bounded eviction.
//   - requestQueue: deduplicating dispatcher with a concurrency ceiling,
//     per-attempt timeouts and front-of-queue retries. Concurrent callers for
//     one URL share a single in-flight fetch and its outcome.
//   - preloader: budgeted, delayed warm-up driven by the host's viewport
//     signal.
//   - Stats: atomic counters with derived hit rate and average load time.
//
// Keys:
//
//	<ns>:<host>:<hash16>  - persisted entries (namespace default "preview")
//
// Typical use:
//
//	p, err := linkpreview.New(linkpreview.Options{
//		Endpoint: "https://preview.example.com/v1",
//		Store:    rs, // optional persistence
//	})
//	...
//	if meta, ok := p.Peek(ctx, url); ok { render(meta) }
//	res := p.Resolve(ctx, url) // cache or shared fetch
//	if res.OK { render(res.Meta) }
//
// No failure inside the pipeline ever reaches the consumer as an error: the
// worst observable outcome of Resolve is a Result with OK=false.
package linkpreview
