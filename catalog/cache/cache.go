package cache

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/simili/catalog"
	"github.com/hupe1980/simili/model"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a List result is served before reloading.
const DefaultTTL = time.Minute

// DefaultCapacity is the number of individually fetched tracks kept.
const DefaultCapacity = 1024

// Options configures a Source.
type Options struct {
	// TTL of the cached listing. 0 means DefaultTTL.
	TTL time.Duration
	// Capacity of the Get LRU. 0 means DefaultCapacity, negative disables it.
	Capacity int
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Stats reports cache effectiveness.
type Stats struct {
	Hits    int64
	Misses  int64
	Reloads int64
}

// Source is a caching catalog.Source.
type Source struct {
	src  catalog.Source
	ttl  time.Duration
	now  func() time.Time
	gets *lru[string, fetched]

	group singleflight.Group

	mu       sync.RWMutex
	tracks   []model.Track
	byID     map[string]int
	loadedAt time.Time

	hits    atomic.Int64
	misses  atomic.Int64
	reloads atomic.Int64
}

// fetched is a track read through Get, stamped with its load time.
type fetched struct {
	track model.Track
	at    time.Time
}

var (
	_ catalog.Source   = (*Source)(nil)
	_ catalog.Searcher = (*Source)(nil)
)

// New wraps src.
func New(src catalog.Source, optFns ...func(*Options)) *Source {
	opts := Options{
		TTL:      DefaultTTL,
		Capacity: DefaultCapacity,
		Now:      time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Capacity == 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Source{
		src:  src,
		ttl:  opts.TTL,
		now:  opts.Now,
		gets: newLRU[string, fetched](opts.Capacity),
	}
}

// Unwrap returns the wrapped source.
func (s *Source) Unwrap() catalog.Source {
	return s.src
}

// Get returns the track from the fresh listing, the LRU, or the wrapped
// source, in that order. LRU entries expire after the TTL like the listing.
// Misses are not cached.
func (s *Source) Get(ctx context.Context, id string) (model.Track, error) {
	s.mu.RLock()
	if s.freshLocked() {
		if i, ok := s.byID[id]; ok {
			t := s.tracks[i]
			s.mu.RUnlock()
			s.hits.Add(1)
			return t, nil
		}
	}
	s.mu.RUnlock()

	if f, ok := s.gets.Get(id); ok && s.now().Sub(f.at) < s.ttl {
		s.hits.Add(1)
		return f.track, nil
	}

	s.misses.Add(1)
	t, err := s.src.Get(ctx, id)
	if err != nil {
		return model.Track{}, err
	}
	s.gets.Set(id, fetched{track: t, at: s.now()})
	return t, nil
}

// List returns the cached listing, reloading it once the TTL has passed.
// The returned slice is owned by the caller.
//
// Concurrent callers share one reload. The reload is detached from the
// cancellation of whichever caller started it; each caller stops waiting
// when its own ctx is done.
func (s *Source) List(ctx context.Context) ([]model.Track, error) {
	s.mu.RLock()
	if s.freshLocked() {
		tracks := slices.Clone(s.tracks)
		s.mu.RUnlock()
		s.hits.Add(1)
		return tracks, nil
	}
	s.mu.RUnlock()

	s.misses.Add(1)
	ch := s.group.DoChan("list", func() (any, error) {
		return s.reload(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]model.Track)), nil
	}
}

// Search matches q against the cached listing.
func (s *Source) Search(ctx context.Context, q string, limit int) ([]model.Track, error) {
	tracks, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Match(tracks, q, limit), nil
}

// Invalidate drops every cached entry.
func (s *Source) Invalidate() {
	s.mu.Lock()
	s.tracks = nil
	s.byID = nil
	s.loadedAt = time.Time{}
	s.mu.Unlock()

	s.gets.Purge()
}

// Stats returns hit and miss counters.
func (s *Source) Stats() Stats {
	return Stats{
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
		Reloads: s.reloads.Load(),
	}
}

func (s *Source) freshLocked() bool {
	return s.byID != nil && s.now().Sub(s.loadedAt) < s.ttl
}

func (s *Source) reload(ctx context.Context) ([]model.Track, error) {
	tracks, err := s.src.List(ctx)
	if err != nil {
		return nil, err
	}
	s.reloads.Add(1)

	byID := make(map[string]int, len(tracks))
	for i, t := range tracks {
		byID[t.ID] = i
	}

	s.mu.Lock()
	s.tracks = tracks
	s.byID = byID
	s.loadedAt = s.now()
	s.mu.Unlock()

	s.gets.Purge()
	return tracks, nil
}
