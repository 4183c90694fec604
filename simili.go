package simili

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/simili/catalog"
	"github.com/hupe1980/simili/features"
	"github.com/hupe1980/simili/model"
	"github.com/hupe1980/simili/rank"
)

// Vectorize converts a feature record into its normalized feature vector.
func Vectorize(r features.Record) features.Vector {
	return features.Vectorize(r)
}

// Rank orders candidates by descending cosine similarity to query, ties in
// input order.
func Rank(query features.Vector, candidates []rank.Candidate) ([]rank.Result, error) {
	results, err := rank.Rank(query, candidates)
	return results, translateError(err)
}

// Recommender finds similar tracks in a catalog.
// It is safe for concurrent use when its source is.
type Recommender struct {
	source       catalog.Source
	ranker       rank.Interface
	metrics      MetricsCollector
	logger       *Logger
	defaultLimit int
	strict       bool
}

// New creates a Recommender over source.
func New(source catalog.Source, optFns ...Option) (*Recommender, error) {
	if source == nil {
		return nil, ErrNilSource
	}

	o := applyOptions(optFns)

	return &Recommender{
		source:       source,
		ranker:       o.ranker,
		metrics:      o.metricsCollector,
		logger:       o.logger,
		defaultLimit: o.defaultLimit,
		strict:       o.strictFeatures,
	}, nil
}

// Source returns the catalog source of r.
func (r *Recommender) Source() catalog.Source {
	return r.source
}

// Track returns the track with the given id.
func (r *Recommender) Track(ctx context.Context, id string) (model.Track, error) {
	t, err := r.source.Get(ctx, id)
	if err != nil {
		return model.Track{}, translateError(err)
	}
	return t, nil
}

// Recommend returns up to k tracks most similar to the track with the given
// id, best first. The seed itself is never recommended.
//
// k == 0 uses the default limit (see WithDefaultLimit); k < 0 returns
// ErrInvalidK.
func (r *Recommender) Recommend(ctx context.Context, id string, k int) (recs []model.Recommendation, err error) {
	start := time.Now()
	defer func() {
		r.metrics.RecordRecommend(len(recs), time.Since(start), err)
		r.logger.LogRecommend(ctx, id, k, len(recs), err)
	}()

	limit, err := r.limit(k)
	if err != nil {
		return nil, err
	}

	seed, err := r.source.Get(ctx, id)
	if err != nil {
		return nil, translateError(err)
	}
	if verr := features.Validate(seed.Features); verr != nil {
		r.logger.LogInvalidFeatures(ctx, seed.ID, verr, false)
		if r.strict {
			return nil, fmt.Errorf("seed %s: %w", seed.ID, verr)
		}
	}

	tracks, err := r.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	pool := catalog.NewPoolBuilder(tracks).
		Exclude(seed.ID).
		ExcludeFunc(func(t model.Track) bool { return t.ID != seed.ID && r.skip(ctx, t) }).
		Build()

	results, err := r.rankerFor(limit).Rank(seed.FeatureVector(), pool.Candidates)
	if err != nil {
		return nil, translateError(err)
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	recs = make([]model.Recommendation, 0, len(results))
	for _, res := range results {
		if res.Index < 0 || res.Index >= pool.Len() {
			return nil, fmt.Errorf("ranker returned index %d for pool of %d", res.Index, pool.Len())
		}
		recs = append(recs, model.Recommendation{
			Track:      pool.Tracks[res.Index],
			Similarity: res.Score,
		})
	}
	return recs, nil
}

// Search returns up to limit tracks whose title or artist contains q,
// ignoring case. The source's own search is used when it implements
// catalog.Searcher.
//
// limit == 0 uses the default limit; limit < 0 returns ErrInvalidK.
func (r *Recommender) Search(ctx context.Context, q string, limit int) (tracks []model.Track, err error) {
	start := time.Now()
	defer func() {
		r.metrics.RecordSearch(len(tracks), time.Since(start), err)
		r.logger.LogSearch(ctx, q, limit, len(tracks), err)
	}()

	if strings.TrimSpace(q) == "" {
		return nil, ErrEmptyQuery
	}
	n, err := r.limit(limit)
	if err != nil {
		return nil, err
	}

	if s, ok := r.source.(catalog.Searcher); ok {
		tracks, err = s.Search(ctx, q, n)
		return tracks, translateError(err)
	}

	all, err := r.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Match(all, q, n), nil
}

func (r *Recommender) limit(k int) (int, error) {
	switch {
	case k < 0:
		return 0, ErrInvalidK
	case k == 0:
		return r.defaultLimit, nil
	default:
		return k, nil
	}
}

func (r *Recommender) loadCatalog(ctx context.Context) ([]model.Track, error) {
	start := time.Now()
	tracks, err := r.source.List(ctx)
	r.metrics.RecordCatalogLoad(len(tracks), time.Since(start), err)
	r.logger.LogCatalogLoad(ctx, fmt.Sprintf("%T", r.source), len(tracks), time.Since(start), err)
	if err != nil {
		return nil, translateError(err)
	}
	return tracks, nil
}

// skip reports whether t is dropped from the candidate pool.
func (r *Recommender) skip(ctx context.Context, t model.Track) bool {
	err := features.Validate(t.Features)
	if err == nil {
		return false
	}
	r.logger.LogInvalidFeatures(ctx, t.ID, err, r.strict)
	return r.strict
}

// rankerFor pushes the limit into the default ranker so it keeps only the
// best results per partition.
func (r *Recommender) rankerFor(limit int) rank.Interface {
	rr, ok := r.ranker.(rank.Ranker)
	if !ok || limit <= 0 {
		return r.ranker
	}
	return rank.New(func(o *rank.Options) {
		*o = rr.Options()
		o.Limit = limit
	})
}
