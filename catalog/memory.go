package catalog

import (
	"context"
	"slices"
	"sync"

	"github.com/hupe1980/simili/model"
)

// Memory is an in-memory catalog. It keeps insertion order.
// Thread-safe for concurrent reads and writes.
type Memory struct {
	mu     sync.RWMutex
	tracks []model.Track
	index  map[string]int
}

var (
	_ Source   = (*Memory)(nil)
	_ Searcher = (*Memory)(nil)
)

// NewMemory creates a catalog holding tracks. Later duplicates replace
// earlier ones in place.
func NewMemory(tracks ...model.Track) *Memory {
	m := &Memory{
		tracks: make([]model.Track, 0, len(tracks)),
		index:  make(map[string]int, len(tracks)),
	}
	for _, t := range tracks {
		m.put(t)
	}
	return m
}

// NewMock creates a catalog holding MockTracks.
func NewMock() *Memory {
	return NewMemory(MockTracks()...)
}

// Get returns the track with the given id.
func (m *Memory) Get(_ context.Context, id string) (model.Track, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.index[id]
	if !ok {
		return model.Track{}, ErrNotFound
	}
	return m.tracks[i], nil
}

// List returns all tracks in insertion order.
func (m *Memory) List(_ context.Context) ([]model.Track, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Clone(m.tracks), nil
}

// Search matches q against titles and artists.
func (m *Memory) Search(_ context.Context, q string, limit int) ([]model.Track, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Match(m.tracks, q, limit), nil
}

// Put inserts or replaces a track.
func (m *Memory) Put(t model.Track) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.put(t)
}

func (m *Memory) put(t model.Track) {
	if i, ok := m.index[t.ID]; ok {
		m.tracks[i] = t
		return
	}
	m.index[t.ID] = len(m.tracks)
	m.tracks = append(m.tracks, t)
}

// Delete removes a track. Deleting a missing id is a no-op.
func (m *Memory) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.index[id]
	if !ok {
		return
	}
	m.tracks = slices.Delete(m.tracks, i, i+1)
	delete(m.index, id)
	for j := i; j < len(m.tracks); j++ {
		m.index[m.tracks[j].ID] = j
	}
}

// Len returns the number of tracks.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.tracks)
}
