package rank

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/hupe1980/simili/features"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unitAt returns a 2-d vector whose cosine with [1 0] is s.
func unitAt(s float64) features.Vector {
	return features.Vector{s, math.Sqrt(1 - s*s)}
}

func ids(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.ID
	}
	return out
}

func TestRank_Ordering(t *testing.T) {
	query := features.Vector{1, 0}
	candidates := []Candidate{
		{ID: "idx0", Vector: unitAt(0.9)},
		{ID: "idx1", Vector: unitAt(0.3)},
		{ID: "idx2", Vector: unitAt(0.9)},
		{ID: "idx3", Vector: unitAt(0.6)},
	}

	results, err := Rank(query, candidates)
	require.NoError(t, err)
	assert.Equal(t, []string{"idx0", "idx2", "idx3", "idx1"}, ids(results))
	assert.Equal(t, []int{0, 2, 3, 1}, []int{results[0].Index, results[1].Index, results[2].Index, results[3].Index})
	assert.InDelta(t, 0.9, results[0].Score, 1e-12)
	assert.InDelta(t, 0.3, results[3].Score, 1e-12)
}

func TestRank_Empty(t *testing.T) {
	results, err := Rank(features.Vectorize(nil), nil)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestRank_ZeroQuery(t *testing.T) {
	query := make(features.Vector, features.Dimension)
	candidates := []Candidate{{ID: "a", Vector: features.Vectorize(features.Record{"energy": 0.5})}}

	results, err := Rank(query, candidates)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0.0, results[0].Score)
	assert.False(t, math.IsNaN(results[0].Score))
}

func TestRank_ZeroCandidate(t *testing.T) {
	query := features.Vectorize(features.Record{"energy": 0.5})
	candidates := []Candidate{
		{ID: "zero", Vector: make(features.Vector, features.Dimension)},
		{ID: "self", Vector: query},
	}

	results, err := Rank(query, candidates)
	require.NoError(t, err)
	assert.Equal(t, []string{"self", "zero"}, ids(results))
	assert.Equal(t, 0.0, results[1].Score)
}

func TestRank_DimensionMismatch(t *testing.T) {
	query := features.Vectorize(nil)
	candidates := []Candidate{
		{ID: "ok", Vector: features.Vectorize(nil)},
		{ID: "short", Vector: features.Vector{1, 2, 3, 4, 5}},
	}

	results, err := Rank(query, candidates)
	assert.Nil(t, results)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPrecondition)

	var dm *ErrDimensionMismatch
	require.True(t, errors.As(err, &dm))
	assert.Equal(t, 9, dm.Expected)
	assert.Equal(t, 5, dm.Actual)
	assert.Equal(t, 1, dm.Index)
	assert.Equal(t, "short", dm.ID)
}

func TestRank_SelfSimilarity(t *testing.T) {
	vec := features.Vectorize(features.Record{"energy": 0.8, "tempo": 125, "valence": 0.7})
	results, err := Rank(vec, []Candidate{{ID: "self", Vector: vec}})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, results[0].Score, 1e-12)
}

func TestRank_NaNSortsLast(t *testing.T) {
	query := features.Vector{1, 0}
	candidates := []Candidate{
		{ID: "nan", Vector: features.Vector{math.NaN(), 1}},
		{ID: "low", Vector: unitAt(0.1)},
		{ID: "high", Vector: unitAt(0.8)},
	}

	results, err := Rank(query, candidates)
	require.NoError(t, err)
	assert.Equal(t, []string{"high", "low", "nan"}, ids(results))
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	query := features.Vector{1, 0}
	candidates := []Candidate{{ID: "a", Vector: unitAt(0.2)}, {ID: "b", Vector: unitAt(0.7)}}
	before := fmt.Sprint(candidates)

	_, err := Rank(query, candidates)
	require.NoError(t, err)
	assert.Equal(t, before, fmt.Sprint(candidates))
}

// tiedPool builds a pool whose scores collide often.
func tiedPool(rng *rand.Rand, n int) []Candidate {
	pool := make([]Candidate, n)
	for i := range pool {
		vec := make(features.Vector, features.Dimension)
		for j := range vec {
			vec[j] = float64(rng.Intn(3)) / 2
		}
		pool[i] = Candidate{ID: fmt.Sprintf("t%d", i), Vector: vec}
	}
	return pool
}

func TestRanker_ParallelMatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	pool := tiedPool(rng, 5000)
	query := features.Vectorize(features.Record{"energy": 0.5, "danceability": 1})

	sequential, err := New(func(o *Options) { o.Parallelism = 1 }).Rank(query, pool)
	require.NoError(t, err)

	for _, workers := range []int{2, 3, 7, 16} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			parallel, err := New(func(o *Options) {
				o.Parallelism = workers
				o.MinPartitionSize = 100
			}).Rank(query, pool)
			require.NoError(t, err)
			assert.Equal(t, sequential, parallel)
		})
	}
}

func TestRanker_Limit(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pool := tiedPool(rng, 1200)
	query := features.Vectorize(features.Record{"valence": 1, "tempo": 90})

	full, err := Rank(query, pool)
	require.NoError(t, err)

	for _, limit := range []int{1, 10, 500, 5000} {
		t.Run(fmt.Sprintf("limit=%d", limit), func(t *testing.T) {
			for _, workers := range []int{1, 4} {
				top, err := New(func(o *Options) {
					o.Limit = limit
					o.Parallelism = workers
					o.MinPartitionSize = 64
				}).Rank(query, pool)
				require.NoError(t, err)
				assert.Equal(t, full[:min(limit, len(full))], top)
			}
		})
	}
}

func TestRanker_Partitions(t *testing.T) {
	r := New(func(o *Options) {
		o.Parallelism = 4
		o.MinPartitionSize = 10
	})

	assert.Equal(t, [][2]int{{0, 5}}, r.partitions(5))
	assert.Equal(t, [][2]int{{0, 11}, {11, 21}}, r.partitions(21))
	assert.Equal(t, [][2]int{{0, 26}, {26, 51}, {51, 76}, {76, 101}}, r.partitions(101))
}

func TestMergeRuns(t *testing.T) {
	left := []Result{{ID: "a", Score: 0.9, Index: 0}, {ID: "b", Score: 0.5, Index: 1}}
	right := []Result{{ID: "c", Score: 0.9, Index: 2}, {ID: "d", Score: 0.7, Index: 3}}
	tail := []Result{{ID: "e", Score: 0.5, Index: 4}}

	merged := mergeRuns([][]Result{left, right, tail})
	assert.Equal(t, []string{"a", "c", "d", "b", "e"}, ids(merged))
	assert.Empty(t, mergeRuns(nil))
}

func TestBoundedQueue(t *testing.T) {
	q := newBoundedQueue(3)
	for i, s := range []float64{0.2, 0.9, 0.5, 0.9, 0.1, 0.7} {
		q.Push(Result{ID: fmt.Sprint(i), Score: s, Index: i})
	}
	assert.Equal(t, 3, q.Len())
	assert.Equal(t, []string{"1", "3", "5"}, ids(q.Sorted()))
	assert.Equal(t, 0, q.Len())
}
