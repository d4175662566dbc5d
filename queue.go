package linkpreview

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/unkn0wn-root/linkpreview/youtube"
)

// task is one deduplicated unit of fetch work. All callers asking for the
// same URL before settlement share the same task and therefore the same
// outcome. States: queued -> in-flight -> settled, with in-flight -> queued
// again on a retryable failure.
type task struct {
	url     string
	retries int

	done    chan struct{} // closed exactly once, at settlement
	res     Result
	settled bool // guarded by the queue mutex
}

// wait blocks until the task settles or the caller gives up. Abandoning a
// wait does not cancel the shared fetch; other callers may still want it.
func (t *task) wait(ctx context.Context) Result {
	select {
	case <-t.done:
		return t.res
	case <-ctx.Done():
		return Result{Err: ctx.Err()}
	}
}

type queueConfig struct {
	fetcher Fetcher
	cache   *cache
	stats   *counters
	log     Logger
	hooks   Hooks
	limiter *rate.Limiter // nil => no client-side rate gate

	concurrency int
	timeout     time.Duration
	maxRetries  int
	now         func() time.Time
}

// requestQueue turns URLs into at most one outstanding fetch each, bounded by
// a fixed concurrency ceiling. Failed attempts re-queue at the FRONT so
// retries finish before fresh low-priority work; exhausted tasks settle as a
// soft miss, never as an error to the caller.
type requestQueue struct {
	fetcher Fetcher
	cache   *cache
	stats   *counters
	log     Logger
	hooks   Hooks
	limiter *rate.Limiter

	concurrency int
	timeout     time.Duration
	maxRetries  int
	now         func() time.Time

	baseCtx context.Context
	cancel  context.CancelFunc

	mu       sync.Mutex
	index    map[string]*task // queued or in-flight tasks by URL
	pending  []*task
	inFlight int
	closed   bool

	wg sync.WaitGroup
}

func newRequestQueue(cfg queueConfig) *requestQueue {
	ctx, cancel := context.WithCancel(context.Background())
	q := &requestQueue{
		fetcher:     cfg.fetcher,
		cache:       cfg.cache,
		stats:       cfg.stats,
		log:         cfg.log,
		hooks:       cfg.hooks,
		limiter:     cfg.limiter,
		concurrency: cfg.concurrency,
		timeout:     cfg.timeout,
		maxRetries:  cfg.maxRetries,
		now:         cfg.now,
		baseCtx:     ctx,
		cancel:      cancel,
		index:       make(map[string]*task),
	}
	if q.now == nil {
		q.now = time.Now
	}
	if q.hooks == nil {
		q.hooks = NopHooks{}
	}
	return q
}

// enqueue registers url for fetching and returns the shared task. A task that
// is already queued or in-flight for the same URL is returned as-is - true
// dedup, all callers observe one outcome.
func (q *requestQueue) enqueue(url string) *task {
	q.mu.Lock()
	defer q.mu.Unlock()

	if t, ok := q.index[url]; ok {
		return t
	}
	t := &task{url: url, done: make(chan struct{})}
	if q.closed {
		t.res = Result{Err: ErrClosed}
		t.settled = true
		close(t.done)
		return t
	}
	q.index[url] = t
	q.pending = append(q.pending, t)
	q.drainLocked()
	return t
}

// drainLocked launches pending tasks while execution slots are free.
// Callers must hold q.mu.
func (q *requestQueue) drainLocked() {
	if q.closed {
		return
	}
	for q.inFlight < q.concurrency && len(q.pending) > 0 {
		t := q.pending[0]
		q.pending = q.pending[1:]
		q.inFlight++
		q.wg.Add(1)
		go q.run(t)
	}
}

func (q *requestQueue) run(t *task) {
	defer q.wg.Done()

	meta, err := q.attempt(t)

	// hook callbacks run after the critical section; consumers may re-enter
	// the pipeline
	var notify func()

	q.mu.Lock()
	q.inFlight--
	switch {
	case err == nil:
		q.settleLocked(t, Result{Meta: meta, OK: true, Source: SourceRemote})
		notify = func() { q.hooks.PreviewReady(t.url, SourceRemote) }
	case q.closed:
		// explicit cancellation: settle without retrying
		q.settleLocked(t, Result{Err: ErrClosed})
	case t.retries < q.maxRetries:
		t.retries++
		q.pending = append(q.pending, nil)
		copy(q.pending[1:], q.pending)
		q.pending[0] = t // retries jump the line
		q.log.Debug("fetch retrying", Fields{"url": t.url, "attempt": t.retries, "err": err})
	default:
		attempts := t.retries + 1
		q.stats.errors.Add(1)
		q.log.Warn("fetch gave up", Fields{"url": t.url, "attempts": attempts, "err": err})
		q.settleLocked(t, Result{Err: err})
		notify = func() { q.hooks.FetchFailed(t.url, attempts, err) }
	}
	q.drainLocked()
	q.mu.Unlock()

	if notify != nil {
		notify()
	}
}

// attempt performs one fetch with the per-attempt timeout, then finalizes and
// caches a successful result. Runs without the queue mutex.
func (q *requestQueue) attempt(t *task) (Metadata, error) {
	if q.limiter != nil {
		if err := q.limiter.Wait(q.baseCtx); err != nil {
			return Metadata{}, err
		}
	}

	ctx, cancel := context.WithTimeout(q.baseCtx, q.timeout)
	defer cancel()

	start := q.now()
	meta, err := q.fetcher.Fetch(ctx, t.url)
	if err != nil {
		return Metadata{}, err
	}

	meta = applyHeuristics(t.url, meta)
	q.cache.set(q.baseCtx, t.url, meta)
	q.stats.recordLoad(q.now().Sub(start))
	return meta, nil
}

// settleLocked finalizes t exactly once: publishes the shared result and drops
// the dedup index entry. Late completions after an earlier settlement are
// discarded here rather than double-settling. Callers must hold q.mu.
func (q *requestQueue) settleLocked(t *task, res Result) {
	if t.settled {
		return
	}
	t.settled = true
	t.res = res
	close(t.done)
	delete(q.index, t.url)
}

// close cancels outstanding fetches, settles every queued task with ErrClosed
// and waits (bounded by ctx) for in-flight goroutines to finish.
func (q *requestQueue) close(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	q.cancel()
	for _, t := range q.pending {
		q.settleLocked(t, Result{Err: ErrClosed})
	}
	q.pending = nil
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// applyHeuristics merges URL-shape knowledge into fetched metadata: a direct
// video thumbnail beats whatever image the endpoint scraped, and channel or
// listing pages carry no image at all (the endpoint tends to return a banner
// that misrepresents the link).
func applyHeuristics(rawURL string, meta Metadata) Metadata {
	if meta.Domain == "" {
		if u, err := url.Parse(rawURL); err == nil {
			meta.Domain = u.Hostname()
		}
	}
	if thumb, ok := youtube.ThumbnailURL(rawURL); ok {
		meta.Image = thumb
	}
	if youtube.IsChannelURL(rawURL) {
		meta.Image = ""
		meta.ChannelPage = true
	}
	return meta
}
