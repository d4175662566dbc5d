package asynchook

import (
	"sync"
	"testing"

	"github.com/unkn0wn-root/linkpreview"
)

// countingHooks tallies deliveries; block, when set, stalls the worker until
// released so the queue can be filled up.
type countingHooks struct {
	linkpreview.Hooks // NopHooks for the events a test ignores

	block chan struct{}

	mu    sync.Mutex
	ready int
}

func newCountingHooks(block chan struct{}) *countingHooks {
	return &countingHooks{Hooks: linkpreview.NopHooks{}, block: block}
}

func (h *countingHooks) PreviewReady(string, linkpreview.Source) {
	if h.block != nil {
		<-h.block
	}
	h.mu.Lock()
	h.ready++
	h.mu.Unlock()
}

func (h *countingHooks) delivered() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ready
}

func TestAsyncDeliversBeforeClose(t *testing.T) {
	inner := newCountingHooks(nil)
	h := New(inner, 2, 16)

	for i := 0; i < 10; i++ {
		h.PreviewReady("https://example.com/x", linkpreview.SourceRemote)
	}
	h.Close() // drains the queue

	if got := inner.delivered(); got != 10 {
		t.Fatalf("delivered %d events, want 10", got)
	}
}

func TestAsyncDropsInsteadOfBlocking(t *testing.T) {
	block := make(chan struct{})
	inner := newCountingHooks(block)
	h := New(inner, 1, 1)

	// one event may be held by the worker, one may sit in the queue;
	// the rest must be dropped without ever blocking this goroutine
	for i := 0; i < 8; i++ {
		h.PreviewReady("https://example.com/x", linkpreview.SourceRemote)
	}
	close(block)
	h.Close()

	if got := inner.delivered(); got > 2 {
		t.Fatalf("delivered %d events, want at most 2", got)
	}
	if got := inner.delivered(); got == 0 {
		t.Fatalf("at least one event should survive")
	}
}

func TestAsyncCloseIsIdempotent(t *testing.T) {
	h := New(newCountingHooks(nil), 1, 4)
	h.Close()
	h.Close()
}
