package linkpreview

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/unkn0wn-root/linkpreview/codec"
	"github.com/unkn0wn-root/linkpreview/internal/urlkey"
	"github.com/unkn0wn-root/linkpreview/internal/wire"
	"github.com/unkn0wn-root/linkpreview/store"
)

// entry is the unit held by the memory layer. The persisted copy carries the
// same insertedAt and the hit count as of its last write, framed by
// internal/wire.
type entry struct {
	meta       Metadata
	insertedAt time.Time
	hits       uint32
}

type cacheConfig struct {
	store      store.Store // nil => memory-only
	codec      codec.Codec[Metadata]
	log        Logger
	stats      *counters
	hooks      Hooks
	namespace  string
	ttl        time.Duration
	capacity   int           // memory layer, entries
	maxEntries int           // persistent layer, entries
	slack      int           // eviction safety margin below maxEntries
	byteBudget int64         // persistent layer, approximated bytes
	sweep      time.Duration // 0 => no background sweeps
	now        func() time.Time
}

// cache is the dual-layer store for preview metadata: a strict-LRU memory map
// in front of an optional persisted layer. The memory layer answers hot reads
// and tracks recency; the persisted layer survives restarts and is bounded by
// entry count and byte budget rather than recency.
type cache struct {
	store store.Store
	codec codec.Codec[Metadata]
	log   Logger
	stats *counters
	hooks Hooks
	ns    string

	ttl        time.Duration
	maxEntries int
	slack      int
	byteBudget int64

	now func() time.Time

	mu  sync.Mutex
	lru *simplelru.LRU[string, *entry]

	// background size sweep
	ticker    *time.Ticker
	stopCh    chan struct{}
	closeWg   sync.WaitGroup
	closeOnce sync.Once
}

func newCache(cfg cacheConfig) (*cache, error) {
	lru, err := simplelru.NewLRU[string, *entry](cfg.capacity, nil)
	if err != nil {
		return nil, err
	}

	c := &cache{
		store:      cfg.store,
		codec:      cfg.codec,
		log:        cfg.log,
		stats:      cfg.stats,
		hooks:      cfg.hooks,
		ns:         cfg.namespace,
		ttl:        cfg.ttl,
		maxEntries: cfg.maxEntries,
		slack:      cfg.slack,
		byteBudget: cfg.byteBudget,
		now:        cfg.now,
		lru:        lru,
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.hooks == nil {
		c.hooks = NopHooks{}
	}

	if c.store != nil && cfg.sweep > 0 {
		c.ticker = time.NewTicker(cfg.sweep)
		c.stopCh = make(chan struct{})
		c.closeWg.Add(1)
		go c.sweepLoop()
	}
	return c, nil
}

// get checks memory first; a fresh hit refreshes recency. Stale memory entries
// are dropped and the persistent layer is consulted, promoting fresh entries
// back into memory. Every call counts exactly one hit or miss.
func (c *cache) get(ctx context.Context, url string) (Metadata, Source, bool) {
	c.stats.requests.Add(1)

	c.mu.Lock()
	if e, ok := c.lru.Get(url); ok {
		if c.now().Sub(e.insertedAt) < c.ttl {
			e.hits++
			meta := e.meta
			c.mu.Unlock()
			c.stats.hits.Add(1)
			return meta, SourceMemory, true
		}
		c.lru.Remove(url)
	}
	c.mu.Unlock()

	if c.store == nil {
		c.stats.misses.Add(1)
		return Metadata{}, SourceNone, false
	}

	key := c.key(url)
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil || !ok {
		if err != nil {
			c.log.Debug("store read failed", Fields{"url": url, "err": err})
		}
		c.stats.misses.Add(1)
		return Metadata{}, SourceNone, false
	}

	insertedMs, hits, payload, err := wire.Decode(raw)
	if err != nil {
		_ = c.store.Del(ctx, key) // self-heal corrupt
		c.log.Debug("dropped corrupt entry", Fields{"url": url})
		c.hooks.SelfHeal(key, "corrupt")
		c.stats.misses.Add(1)
		return Metadata{}, SourceNone, false
	}
	insertedAt := time.UnixMilli(insertedMs)
	if c.now().Sub(insertedAt) >= c.ttl {
		_ = c.store.Del(ctx, key) // expired; reclaim now
		c.stats.misses.Add(1)
		return Metadata{}, SourceNone, false
	}
	meta, err := c.codec.Decode(payload)
	if err != nil {
		_ = c.store.Del(ctx, key) // self-heal undecodable payload
		c.log.Debug("dropped undecodable entry", Fields{"url": url, "err": err})
		c.hooks.SelfHeal(key, "decode")
		c.stats.misses.Add(1)
		return Metadata{}, SourceNone, false
	}

	// promote into memory, keeping the original age so TTL is continuous
	c.mu.Lock()
	c.lru.Add(url, &entry{meta: meta, insertedAt: insertedAt, hits: hits + 1})
	c.mu.Unlock()
	c.stats.hits.Add(1)
	return meta, SourceStore, true
}

// set inserts into memory (LRU evicting at capacity) and writes through to the
// persistent layer. Persistence is best-effort: a failed write triggers one
// eviction pass and one retry, then the entry stays memory-only.
func (c *cache) set(ctx context.Context, url string, meta Metadata) {
	insertedAt := c.now()

	c.mu.Lock()
	c.lru.Add(url, &entry{meta: meta, insertedAt: insertedAt})
	c.mu.Unlock()

	if c.store == nil {
		return
	}
	payload, err := c.codec.Encode(meta)
	if err != nil {
		c.log.Debug("encode failed; entry stays memory-only", Fields{"url": url, "err": err})
		return
	}
	// the entry is shared with readers once in the LRU, so the frame is
	// built from locals. A fresh write persists a zero hit count.
	frame := wire.Encode(insertedAt.UnixMilli(), 0, payload)
	key := c.key(url)

	err = c.store.Set(ctx, key, frame)
	if err == nil {
		return
	}
	c.log.Debug("store write failed; running eviction", Fields{"url": url, "err": err})
	c.evict(ctx)
	if err := c.store.Set(ctx, key, frame); err != nil {
		c.log.Debug("store write dropped after eviction", Fields{"url": url, "err": err})
		c.hooks.StoreSetRejected(key)
	}
}

// evict reclaims persistent space in two phases: expired entries go first
// (corrupt frames are healed along the way); if the live count still exceeds
// maxEntries, the oldest-inserted entries are removed until slack entries of
// headroom exist. Insertion order, not access order, decides the bulk phase.
func (c *cache) evict(ctx context.Context) {
	if c.store == nil {
		return
	}
	keys, err := c.store.Keys(ctx, c.ns+":")
	if err != nil {
		c.log.Debug("eviction scan failed", Fields{"err": err})
		return
	}

	type aged struct {
		key        string
		insertedMs int64
	}
	now := c.now()
	live := make([]aged, 0, len(keys))
	removed := 0

	for _, k := range keys {
		raw, ok, err := c.store.Get(ctx, k)
		if err != nil || !ok {
			continue
		}
		insertedMs, _, err := wire.DecodeHeader(raw)
		if err != nil {
			_ = c.store.Del(ctx, k) // corrupt frame
			removed++
			continue
		}
		if now.Sub(time.UnixMilli(insertedMs)) >= c.ttl {
			_ = c.store.Del(ctx, k)
			removed++
			continue
		}
		live = append(live, aged{key: k, insertedMs: insertedMs})
	}

	if len(live) > c.maxEntries {
		sort.Slice(live, func(i, j int) bool { return live[i].insertedMs < live[j].insertedMs })
		target := c.maxEntries - c.slack
		if target < 0 {
			target = 0
		}
		for _, a := range live[:len(live)-target] {
			_ = c.store.Del(ctx, a.key)
			removed++
		}
	}

	if removed > 0 {
		c.log.Debug("eviction pass finished", Fields{"removed": removed})
		c.hooks.EvictionPass(removed)
	}
}

// checkSize estimates the persisted footprint as (key+value length) x 2 -
// the UTF-16 cost the original storage backend bills for - and triggers an
// eviction pass when the byte budget is exceeded. The pass is count-based, so
// one sweep is not guaranteed to land under budget.
func (c *cache) checkSize(ctx context.Context) {
	if c.store == nil {
		return
	}
	keys, err := c.store.Keys(ctx, c.ns+":")
	if err != nil {
		c.log.Debug("size scan failed", Fields{"err": err})
		return
	}
	var total int64
	for _, k := range keys {
		raw, ok, err := c.store.Get(ctx, k)
		if err != nil || !ok {
			continue
		}
		total += int64(len(k)+len(raw)) * 2
	}
	if total > c.byteBudget {
		c.log.Debug("byte budget exceeded", Fields{"bytes": total, "budget": c.byteBudget})
		c.evict(ctx)
	}
}

func (c *cache) key(url string) string {
	return urlkey.Key(c.ns, url)
}

func (c *cache) sweepLoop() {
	defer c.closeWg.Done()
	for {
		select {
		case <-c.ticker.C:
			c.checkSize(context.Background())
		case <-c.stopCh:
			return
		}
	}
}

// close stops the sweep loop and shuts the store down. The store's Close runs
// exactly once; repeat calls return nil so adapters that tear down real
// resources (bigcache) are never closed twice.
func (c *cache) close(ctx context.Context) error {
	var err error
	c.closeOnce.Do(func() {
		if c.stopCh != nil {
			close(c.stopCh)
			c.closeWg.Wait()
			c.ticker.Stop()
		}
		if c.store != nil {
			err = c.store.Close(ctx)
		}
	})
	return err
}
