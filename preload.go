package linkpreview

import (
	"context"
	"sync"
	"time"
)

type preloadConfig struct {
	queue  *requestQueue
	cache  *cache
	log    Logger
	budget int
	delay  time.Duration
}

// preloader warms the cache for items approaching the viewport. Scheduling is
// budgeted per observation cycle and delayed so warm-ups never contend with
// user-triggered, latency-sensitive requests.
type preloader struct {
	queue  *requestQueue
	cache  *cache
	log    Logger
	budget int
	delay  time.Duration

	mu     sync.Mutex
	seen   map[string]struct{}
	timers map[string]*time.Timer
	used   int
	closed bool
}

func newPreloader(cfg preloadConfig) *preloader {
	return &preloader{
		queue:  cfg.queue,
		cache:  cfg.cache,
		log:    cfg.log,
		budget: cfg.budget,
		delay:  cfg.delay,
		seen:   make(map[string]struct{}),
		timers: make(map[string]*time.Timer),
	}
}

// observe registers url as near-visible. Within one cycle each URL is
// considered once; cached URLs and observations past the budget are dropped
// without consuming it. A scheduled warm-up fires after the configured delay.
func (p *preloader) observe(url string) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	if _, dup := p.seen[url]; dup {
		p.mu.Unlock()
		return
	}
	p.seen[url] = struct{}{}
	if p.used >= p.budget {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	// cache peek outside the lock; store reads may do I/O
	if _, _, ok := p.cache.get(context.Background(), url); ok {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.used >= p.budget {
		return
	}
	if _, exists := p.timers[url]; exists {
		return
	}
	p.used++
	p.timers[url] = time.AfterFunc(p.delay, func() { p.fire(url) })
}

func (p *preloader) fire(url string) {
	p.mu.Lock()
	delete(p.timers, url)
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return
	}
	p.log.Debug("preload dispatch", Fields{"url": url})
	p.queue.enqueue(url)
}

// reset starts a new observation cycle: pending warm-ups are cancelled, the
// seen set is cleared and the budget is restored. Must run whenever the
// observed item set is rebuilt, or stale registrations would go on absorbing
// the budget.
func (p *preloader) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopTimersLocked()
	p.seen = make(map[string]struct{})
	p.used = 0
}

func (p *preloader) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.stopTimersLocked()
	p.seen = make(map[string]struct{})
	p.used = 0
}

func (p *preloader) stopTimersLocked() {
	for url, tm := range p.timers {
		tm.Stop()
		delete(p.timers, url)
	}
}
