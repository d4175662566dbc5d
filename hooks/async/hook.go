// Package asynchook decouples hook consumers from the pipeline hot paths.
// Events are handed to a small worker pool through a bounded queue; when the
// queue is full events are dropped rather than ever blocking the caller.
//
// Usage:
//
//	raw := sloghook.New(slog.Default(), sloghook.Options{
//	    SelfHealEvery: 10, // sample: ~every 10th self-heal
//	})
//
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue of 1000 events
//	defer hooks.Close()
//
//	p, _ := linkpreview.New(linkpreview.Options{
//	    Endpoint: endpoint,
//	    Hooks:    hooks, // or `raw` if inline delivery is fine
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/linkpreview"
)

type Hooks struct {
	inner linkpreview.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ linkpreview.Hooks = (*Hooks)(nil)

func New(inner linkpreview.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close stops the workers after draining queued events. The pipeline must be
// closed first; events must not arrive once Close has run.
func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) PreviewReady(url string, src linkpreview.Source) {
	h.try(func() { h.inner.PreviewReady(url, src) })
}

func (h *Hooks) FetchFailed(url string, attempts int, err error) {
	h.try(func() { h.inner.FetchFailed(url, attempts, err) })
}

func (h *Hooks) SelfHeal(key, reason string) {
	h.try(func() { h.inner.SelfHeal(key, reason) })
}

func (h *Hooks) StoreSetRejected(key string) {
	h.try(func() { h.inner.StoreSetRejected(key) })
}

func (h *Hooks) EvictionPass(removed int) {
	h.try(func() { h.inner.EvictionPass(removed) })
}
