package catalog

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/simili/model"
	"github.com/hupe1980/simili/rank"
)

// Pool is a candidate pool with the tracks it was built from.
// Candidates[i] belongs to Tracks[i], so rank.Result.Index maps straight back
// to a track.
type Pool struct {
	Candidates []rank.Candidate
	Tracks     []model.Track
}

// Len returns the number of candidates.
func (p Pool) Len() int {
	return len(p.Candidates)
}

// PoolBuilder builds a Pool from a track list, skipping excluded rows.
// Excluded rows are tracked by catalog position in a roaring bitmap.
type PoolBuilder struct {
	tracks   []model.Track
	excluded *roaring.Bitmap
}

// NewPoolBuilder creates a builder over tracks. tracks is not modified.
func NewPoolBuilder(tracks []model.Track) *PoolBuilder {
	return &PoolBuilder{
		tracks:   tracks,
		excluded: roaring.New(),
	}
}

// Exclude drops every track whose id is in ids.
func (b *PoolBuilder) Exclude(ids ...string) *PoolBuilder {
	if len(ids) == 0 {
		return b
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return b.ExcludeFunc(func(t model.Track) bool {
		_, ok := set[t.ID]
		return ok
	})
}

// ExcludeFunc drops every track for which fn returns true.
func (b *PoolBuilder) ExcludeFunc(fn func(model.Track) bool) *PoolBuilder {
	for i, t := range b.tracks {
		if fn(t) {
			b.excluded.Add(uint32(i))
		}
	}
	return b
}

// Excluded returns the number of distinct excluded rows.
func (b *PoolBuilder) Excluded() int {
	return int(b.excluded.GetCardinality())
}

// Build vectorizes the remaining tracks in catalog order.
func (b *PoolBuilder) Build() Pool {
	n := len(b.tracks) - b.Excluded()
	p := Pool{
		Candidates: make([]rank.Candidate, 0, n),
		Tracks:     make([]model.Track, 0, n),
	}
	for i, t := range b.tracks {
		if b.excluded.Contains(uint32(i)) {
			continue
		}
		p.Candidates = append(p.Candidates, rank.Candidate{ID: t.ID, Vector: t.FeatureVector()})
		p.Tracks = append(p.Tracks, t)
	}
	return p
}
