package linkpreview

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	c "github.com/unkn0wn-root/linkpreview/codec"
	st "github.com/unkn0wn-root/linkpreview/store"
)

// Pipeline is the link-preview acquisition pipeline: a dual-layer metadata
// cache fed by a deduplicating, concurrency-limited fetch queue, with
// viewport-driven warm-up on the side. Construct one per application and pass
// it to consumers; fresh instances per test keep state isolated.
type Pipeline interface {
	Enabled() bool
	Close(context.Context) error

	// Peek is the synchronous cache check: no fetch is ever triggered.
	Peek(ctx context.Context, url string) (Metadata, bool)

	// Resolve returns cached metadata or joins the (possibly already
	// in-flight) fetch for url. It never returns a Go error; the worst
	// outcome is a Result with OK=false.
	Resolve(ctx context.Context, url string) Result

	// Observe registers url as approaching the viewport so the preloader
	// may warm it up.
	Observe(url string)

	// Rebind replaces the observed item set after the consumer rebuilt its
	// list: the preload cycle is reset, then every URL is re-registered.
	Rebind(urls []string)

	// Stats snapshots the pipeline counters.
	Stats() Stats
}

// Options tune the pipeline. Only the remote endpoint (or a custom Fetcher)
// is required; everything else has defaults. Fields noting "negative
// disables" treat 0 as the default and any negative value as off.
type Options struct {
	// Required unless Fetcher is set: the metadata-extraction endpoint.
	Endpoint string
	// Fetcher overrides Endpoint with a custom metadata source.
	Fetcher Fetcher

	// Store persists entries across restarts. nil => memory-only pipeline.
	Store st.Store
	// Codec serializes entries for the Store. nil => codec.JSON.
	Codec c.Codec[Metadata]

	Logger Logger // if nil, NopLogger is used
	// Hooks receive high-signal events (preview ready, fetch gave up,
	// self-heal, eviction). nil => NopHooks. See hooks/async for decoupled
	// delivery.
	Hooks     Hooks
	Namespace string // storage key prefix; "" => "preview"

	TTL             time.Duration // entry freshness; 0 => 7d
	MemoryCapacity  int           // memory layer entries; 0 => 50
	StoreMaxEntries int           // persisted entries before bulk eviction; 0 => 200
	StoreEvictSlack int           // eviction headroom below StoreMaxEntries; 0 => 20
	StoreByteBudget int64         // approximated persisted bytes; 0 => 5 MiB
	SweepInterval   time.Duration // background size checks; 0 => 1h, negative disables

	Concurrency  int           // in-flight fetch ceiling; 0 => 2
	FetchTimeout time.Duration // per attempt; 0 => 5s
	MaxRetries   int           // re-queues after a failed attempt; 0 => 2, negative disables

	// RateLimit adds a client-side politeness gate in front of the endpoint.
	// 0 => unlimited.
	RateLimit rate.Limit
	RateBurst int // 0 => 1

	PreloadBudget int           // warm-ups per observation cycle; 0 => 5, negative disables
	PreloadDelay  time.Duration // scheduling delay; 0 => 500ms

	HTTPClient *http.Client // used by the built-in HTTP fetcher; nil => http.DefaultClient
	Disabled   bool         // default false (enabled)
}

func New(opts Options) (Pipeline, error) {
	return newPipeline(opts)
}
