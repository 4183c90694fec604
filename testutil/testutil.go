package testutil

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/hupe1980/simili/distance"
	"github.com/hupe1980/simili/features"
	"github.com/hupe1980/simili/model"
)

// Scored is an exact ranking entry.
type Scored struct {
	Index int
	Score float64
}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Record returns a feature record with every attribute set to a value in its
// upstream range: unit attributes in [0,1), loudness in [-60,0) dB and tempo
// in [60,200) BPM.
func (r *RNG) Record() features.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recordLocked()
}

func (r *RNG) recordLocked() features.Record {
	rec := make(features.Record, features.Dimension)
	for _, attr := range features.Attributes() {
		v := r.rand.Float64()
		switch attr {
		case features.Loudness:
			v = -60 * v
		case features.Tempo:
			v = 60 + 140*v
		}
		rec[attr.String()] = v
	}
	return rec
}

// SparseRecord is like Record but drops each attribute with probability
// missingRate, so Vectorize has to fall back to defaults.
func (r *RNG) SparseRecord(missingRate float64) features.Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := r.recordLocked()
	for name := range rec {
		if r.rand.Float64() < missingRate {
			delete(rec, name)
		}
	}
	return rec
}

// Tracks returns n tracks with random features and ids t00000, t00001, ...
func (r *RNG) Tracks(n int) []model.Track {
	r.mu.Lock()
	defer r.mu.Unlock()

	tracks := make([]model.Track, n)
	for i := range tracks {
		tracks[i] = model.Track{
			ID:       fmt.Sprintf("t%05d", i),
			Title:    fmt.Sprintf("Track %d", i),
			Artist:   fmt.Sprintf("Artist %d", i%17),
			Features: r.recordLocked(),
		}
	}
	return tracks
}

// Vectors returns n vectorized random records.
func (r *RNG) Vectors(n int) []features.Vector {
	r.mu.Lock()
	defer r.mu.Unlock()

	vectors := make([]features.Vector, n)
	for i := range vectors {
		vectors[i] = features.Vectorize(r.recordLocked())
	}
	return vectors
}

// UniformVectors generates random vectors of any dimension with values in
// range [0, 1). Uses a single backing array for efficiency.
func (r *RNG) UniformVectors(num int, dimensions int) []features.Vector {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dimensions)
	vectors := make([]features.Vector, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = r.rand.Float64()
		}
		vectors[i] = vec
	}

	return vectors
}

// ExactTopK ranks vectors against query by cosine similarity and returns the
// best k, ties in input order. k <= 0 returns all.
func ExactTopK(query features.Vector, vectors []features.Vector, k int) []Scored {
	out := make([]Scored, len(vectors))
	for i, v := range vectors {
		out[i] = Scored{Index: i, Score: distance.Cosine(query, v)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if k > 0 && k < len(out) {
		out = out[:k]
	}
	return out
}

// ComputeRecall computes recall@k by comparing approximate results against
// ground truth, by index.
func ComputeRecall(groundTruth, approximate []Scored) float64 {
	if len(groundTruth) == 0 || len(approximate) == 0 {
		if len(groundTruth) == 0 && len(approximate) == 0 {
			return 1.0
		}
		return 0.0
	}

	k := min(len(approximate), len(groundTruth))

	truthSet := make(map[int]struct{}, k)
	for i := range k {
		truthSet[groundTruth[i].Index] = struct{}{}
	}

	hits := 0
	for _, r := range approximate[:k] {
		if _, ok := truthSet[r.Index]; ok {
			hits++
		}
	}

	return float64(hits) / float64(k)
}
