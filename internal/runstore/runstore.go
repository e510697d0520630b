// Package runstore keeps each analysis run's numeric baseline and per-date
// forecast cache behind an opaque run ID, so interactive operations are
// scoped to the run they address instead of whichever analysis ran last.
package runstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"shipcast/internal/aggregate"
	"shipcast/internal/ingest"
	"shipcast/internal/series"
)

var (
	ErrNoBaseline  = errors.New("no baseline available, run an analysis first")
	ErrRunNotFound = errors.New("run not found or expired")
)

// DailyPoint is one group-date forecast value. Initial caches the unscaled
// value from the original analysis so repeated growth overrides rescale
// from the same base every time.
type DailyPoint struct {
	Date     time.Time
	Forecast float64
	Initial  float64
}

// GroupDaily is one group's forecast-period daily series.
type GroupDaily struct {
	Key    series.GroupKey
	Points []DailyPoint
}

// Run is the cached outcome of one analysis. Baseline holds the numeric
// result rows exactly as the aggregator produced them; overrides derive
// from Baseline and write to Current, never the other way around.
type Run struct {
	ID        string
	CreatedAt time.Time

	Measure    ingest.Measure
	Year       int
	KeyColumns []string

	Baseline []aggregate.Result
	Current  []aggregate.Result
	Daily    []GroupDaily

	// Actuals holds uploaded actual volumes per group key per date, set by
	// a comparison upload.
	Actuals map[string]map[time.Time]float64
}

// Store is an in-memory run registry with TTL-based garbage collection.
type Store struct {
	mu   sync.RWMutex
	runs map[string]*Run
	ttl  time.Duration
	now  func() time.Time
}

func New(ttl time.Duration) *Store {
	return &Store{
		runs: make(map[string]*Run),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Put registers a run and returns its new ID.
func (s *Store) Put(run *Run) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	run.ID = uuid.NewString()
	run.CreatedAt = s.now()
	s.runs[run.ID] = run
	return run.ID
}

// Get returns the run for an ID. An empty ID means the caller never ran an
// analysis; an unknown ID means the run expired or never existed.
func (s *Store) Get(id string) (*Run, error) {
	if id == "" {
		return nil, ErrNoBaseline
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	run, exists := s.runs[id]
	if !exists {
		return nil, ErrRunNotFound
	}
	return run, nil
}

// Update applies fn to the run under the write lock, serializing
// interactive operations against the same run.
func (s *Store) Update(id string, fn func(*Run) error) error {
	if id == "" {
		return ErrNoBaseline
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	run, exists := s.runs[id]
	if !exists {
		return ErrRunNotFound
	}
	return fn(run)
}

// Len reports the number of live runs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}

// Sweep blocks, deleting runs older than the TTL at the given interval,
// until the context is canceled.
func (s *Store) Sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.evictExpired()
		}
	}
}

func (s *Store) evictExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	for id, run := range s.runs {
		if run.CreatedAt.Before(cutoff) {
			delete(s.runs, id)
		}
	}
}
