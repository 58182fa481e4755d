package metrics

import (
	"sync"
	"time"
)

// Counter names published by the snapshot.
const (
	RequestsTotal    = "requests_total"
	CacheHitsTotal   = "cache_hits_total"
	CacheMissesTotal = "cache_misses_total"
	DBErrorsTotal    = "db_errors_total"
)

// Store holds in-process counters behind a mutex. One instance is created by
// the composition root and handed to everything that records into it; the
// counters reset when the process restarts.
type Store struct {
	mu       sync.Mutex
	counters map[string]int64
	started  time.Time
}

func NewStore() *Store {
	return &Store{
		counters: map[string]int64{
			RequestsTotal:    0,
			CacheHitsTotal:   0,
			CacheMissesTotal: 0,
			DBErrorsTotal:    0,
		},
		started: time.Now(),
	}
}

func (s *Store) Increment(name string) {
	s.Add(name, 1)
}

func (s *Store) Add(name string, amount int64) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.counters[name] += amount
	s.mu.Unlock()
}

// Snapshot copies the counters and appends process uptime in seconds.
func (s *Store) Snapshot() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]any, len(s.counters)+1)
	for name, value := range s.counters {
		out[name] = value
	}
	out["uptime_seconds"] = time.Since(s.started).Seconds()
	return out
}
