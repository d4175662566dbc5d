package linkpreview

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/unkn0wn-root/linkpreview/codec"
)

const (
	defaultNamespace       = "preview"
	defaultTTL             = 7 * 24 * time.Hour
	defaultMemoryCapacity  = 50
	defaultStoreMaxEntries = 200
	defaultStoreEvictSlack = 20
	defaultStoreByteBudget = 5 << 20
	defaultSweep           = time.Hour
	defaultConcurrency     = 2
	defaultFetchTimeout    = 5 * time.Second
	defaultMaxRetries      = 2
	defaultPreloadBudget   = 5
	defaultPreloadDelay    = 500 * time.Millisecond
)

type pipeline struct {
	cache   *cache
	queue   *requestQueue
	pre     *preloader
	stats   *counters
	log     Logger
	enabled bool
}

var _ Pipeline = (*pipeline)(nil)

func newPipeline(opts Options) (*pipeline, error) {
	if opts.Fetcher == nil && opts.Endpoint == "" {
		return nil, fmt.Errorf("linkpreview: endpoint or fetcher is required")
	}

	log := coalesce[Logger](opts.Logger, NopLogger{})
	hooks := coalesce[Hooks](opts.Hooks, NopHooks{})

	cdc := opts.Codec
	if cdc == nil {
		cdc = codec.JSON[Metadata]{}
	}

	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = &HTTPFetcher{Endpoint: opts.Endpoint, Client: opts.HTTPClient}
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(opts.RateLimit, coalesce(opts.RateBurst, 1))
	}

	sweep := coalesce(opts.SweepInterval, defaultSweep)
	if opts.SweepInterval < 0 || opts.Disabled {
		sweep = 0
	}
	retries := coalesce(opts.MaxRetries, defaultMaxRetries)
	if opts.MaxRetries < 0 {
		retries = 0
	}
	budget := coalesce(opts.PreloadBudget, defaultPreloadBudget)
	if opts.PreloadBudget < 0 {
		budget = 0
	}

	stats := &counters{}

	cc, err := newCache(cacheConfig{
		store:      opts.Store,
		codec:      cdc,
		log:        log,
		stats:      stats,
		hooks:      hooks,
		namespace:  coalesce(opts.Namespace, defaultNamespace),
		ttl:        coalesce(opts.TTL, defaultTTL),
		capacity:   coalesce(opts.MemoryCapacity, defaultMemoryCapacity),
		maxEntries: coalesce(opts.StoreMaxEntries, defaultStoreMaxEntries),
		slack:      coalesce(opts.StoreEvictSlack, defaultStoreEvictSlack),
		byteBudget: coalesce(opts.StoreByteBudget, defaultStoreByteBudget),
		sweep:      sweep,
	})
	if err != nil {
		return nil, err
	}

	q := newRequestQueue(queueConfig{
		fetcher:     fetcher,
		cache:       cc,
		stats:       stats,
		log:         log,
		hooks:       hooks,
		limiter:     limiter,
		concurrency: coalesce(opts.Concurrency, defaultConcurrency),
		timeout:     coalesce(opts.FetchTimeout, defaultFetchTimeout),
		maxRetries:  retries,
	})

	pre := newPreloader(preloadConfig{
		queue:  q,
		cache:  cc,
		log:    log,
		budget: budget,
		delay:  coalesce(opts.PreloadDelay, defaultPreloadDelay),
	})

	return &pipeline{
		cache:   cc,
		queue:   q,
		pre:     pre,
		stats:   stats,
		log:     log,
		enabled: !opts.Disabled,
	}, nil
}

func (p *pipeline) Enabled() bool { return p.enabled }

func (p *pipeline) Peek(ctx context.Context, url string) (Metadata, bool) {
	if !p.enabled {
		return Metadata{}, false
	}
	meta, _, ok := p.cache.get(ctx, url)
	return meta, ok
}

func (p *pipeline) Resolve(ctx context.Context, url string) Result {
	if !p.enabled {
		return Result{Err: ErrDisabled}
	}
	if meta, src, ok := p.cache.get(ctx, url); ok {
		return Result{Meta: meta, OK: true, Source: src}
	}
	t := p.queue.enqueue(url)
	return t.wait(ctx)
}

func (p *pipeline) Observe(url string) {
	if !p.enabled {
		return
	}
	p.pre.observe(url)
}

func (p *pipeline) Rebind(urls []string) {
	if !p.enabled {
		return
	}
	p.pre.reset()
	for _, u := range urls {
		p.pre.observe(u)
	}
}

func (p *pipeline) Stats() Stats { return p.stats.snapshot() }

func (p *pipeline) Close(ctx context.Context) error {
	p.pre.close()
	if err := p.queue.close(ctx); err != nil {
		return err
	}
	return p.cache.close(ctx)
}
