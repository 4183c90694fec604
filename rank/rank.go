package rank

import (
	"cmp"
	"runtime"
	"slices"

	"github.com/hupe1980/simili/distance"
	"github.com/hupe1980/simili/features"
	"golang.org/x/sync/errgroup"
)

// Candidate is one entry of a candidate pool.
type Candidate struct {
	ID     string
	Vector features.Vector
}

// Result is a scored candidate.
type Result struct {
	ID    string
	Score float64
	// Index is the candidate's position in the pool passed to Rank.
	Index int
}

// Interface is implemented by anything that can rank a candidate pool.
type Interface interface {
	Rank(query features.Vector, candidates []Candidate) ([]Result, error)
}

// DefaultMinPartitionSize is the smallest partition worth a goroutine.
const DefaultMinPartitionSize = 4096

// Options configures a Ranker.
type Options struct {
	// Parallelism caps the number of partitions scored concurrently.
	// 0 means runtime.GOMAXPROCS(0); 1 disables partitioning.
	Parallelism int

	// MinPartitionSize is the minimum number of candidates per partition.
	// 0 means DefaultMinPartitionSize.
	MinPartitionSize int

	// Limit keeps only the best Limit results. 0 returns the whole pool.
	Limit int
}

// Ranker ranks pools by brute-force cosine similarity.
// The zero value is ready to use. Ranker holds no mutable state and is safe
// for concurrent use.
type Ranker struct {
	opts Options
}

var _ Interface = Ranker{}

// New creates a Ranker.
func New(optFns ...func(*Options)) Ranker {
	var o Options
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return Ranker{opts: o}
}

// Options returns the configuration of r.
func (r Ranker) Options() Options {
	return r.opts
}

// Rank scores candidates against query and returns them ordered by
// descending similarity, ties in input order.
func Rank(query features.Vector, candidates []Candidate) ([]Result, error) {
	return Ranker{}.Rank(query, candidates)
}

// Rank implements Interface.
func (r Ranker) Rank(query features.Vector, candidates []Candidate) ([]Result, error) {
	for i, c := range candidates {
		if len(c.Vector) != len(query) {
			return nil, &ErrDimensionMismatch{Expected: len(query), Actual: len(c.Vector), Index: i, ID: c.ID}
		}
	}
	if len(candidates) == 0 {
		return []Result{}, nil
	}

	queryNorm := distance.Norm(query)
	parts := r.partitions(len(candidates))
	if len(parts) == 1 {
		return r.rankRange(query, queryNorm, candidates, 0, len(candidates)), nil
	}

	runs := make([][]Result, len(parts))
	var g errgroup.Group
	for i, p := range parts {
		g.Go(func() error {
			runs[i] = r.rankRange(query, queryNorm, candidates, p[0], p[1])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := mergeRuns(runs)
	if r.opts.Limit > 0 && len(merged) > r.opts.Limit {
		merged = merged[:r.opts.Limit]
	}
	return merged, nil
}

// partitions splits [0,n) into contiguous ranges, in pool order.
func (r Ranker) partitions(n int) [][2]int {
	workers := r.opts.Parallelism
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	minSize := r.opts.MinPartitionSize
	if minSize <= 0 {
		minSize = DefaultMinPartitionSize
	}

	count := min(workers, n/minSize)
	if count <= 1 {
		return [][2]int{{0, n}}
	}

	parts := make([][2]int, 0, count)
	size, rem := n/count, n%count
	lo := 0
	for i := range count {
		hi := lo + size
		if i < rem {
			hi++
		}
		parts = append(parts, [2]int{lo, hi})
		lo = hi
	}
	return parts
}

// rankRange scores candidates[lo:hi] and returns them ordered.
func (r Ranker) rankRange(query features.Vector, queryNorm float64, candidates []Candidate, lo, hi int) []Result {
	if limit := r.opts.Limit; limit > 0 && limit < hi-lo {
		q := newBoundedQueue(limit)
		for i := lo; i < hi; i++ {
			q.Push(score(query, queryNorm, candidates[i], i))
		}
		return q.Sorted()
	}

	out := make([]Result, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, score(query, queryNorm, candidates[i], i))
	}
	slices.SortStableFunc(out, compare)
	return out
}

func score(query features.Vector, queryNorm float64, c Candidate, index int) Result {
	return Result{
		ID:    c.ID,
		Score: distance.CosineWithNorm(query, queryNorm, c.Vector),
		Index: index,
	}
}

// compare orders results by descending score. NaN sorts last.
func compare(a, b Result) int {
	return cmp.Compare(b.Score, a.Score)
}
