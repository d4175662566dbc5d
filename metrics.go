package linkpreview

import (
	"sync/atomic"
	"time"
)

// counters aggregates the pipeline's observability signals. All fields are
// updated atomically from the cache and queue hot paths; reads take a
// point-in-time snapshot.
type counters struct {
	requests  atomic.Uint64
	hits      atomic.Uint64
	misses    atomic.Uint64
	errors    atomic.Uint64
	loads     atomic.Uint64
	loadNanos atomic.Uint64
}

func (c *counters) recordLoad(d time.Duration) {
	c.loads.Add(1)
	c.loadNanos.Add(uint64(d.Nanoseconds()))
}

func (c *counters) snapshot() Stats {
	return Stats{
		Requests: c.requests.Load(),
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Errors:   c.errors.Load(),
		Loads:    c.loads.Load(),
		LoadTime: time.Duration(c.loadNanos.Load()),
	}
}

// Stats is a snapshot of the pipeline counters.
//
//	Requests - cache lookups (each is either a hit or a miss)
//	Hits     - lookups served from memory or the persistent store
//	Misses   - lookups that fell through to the queue
//	Errors   - fetches that failed after exhausting their retries
//	Loads    - successful remote fetches
//	LoadTime - cumulative latency across Loads
type Stats struct {
	Requests uint64
	Hits     uint64
	Misses   uint64
	Errors   uint64
	Loads    uint64
	LoadTime time.Duration
}

// HitRate is derived at call time so it can never drift from the counters.
func (s Stats) HitRate() float64 {
	if s.Requests == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Requests)
}

// AvgLoadTime is the mean latency of successful fetches.
func (s Stats) AvgLoadTime() time.Duration {
	if s.Loads == 0 {
		return 0
	}
	return s.LoadTime / time.Duration(s.Loads)
}
