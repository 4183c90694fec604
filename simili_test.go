package simili

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/hupe1980/simili/catalog"
	"github.com/hupe1980/simili/features"
	"github.com/hupe1980/simili/model"
	"github.com/hupe1980/simili/rank"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(recs []model.Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func trackIDs(tracks []model.Track) []string {
	out := make([]string, len(tracks))
	for i, t := range tracks {
		out[i] = t.ID
	}
	return out
}

// listOnly hides the Searcher implementation of a source.
type listOnly struct {
	catalog.Source
}

type stubRanker struct {
	results []rank.Result
	err     error
}

func (s stubRanker) Rank(features.Vector, []rank.Candidate) ([]rank.Result, error) {
	return s.results, s.err
}

func TestNew(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNilSource)

	r, err := New(catalog.NewMock(), nil)
	require.NoError(t, err)
	assert.NotNil(t, r.Source())
}

func TestRecommend(t *testing.T) {
	ctx := context.Background()
	r, err := New(catalog.NewMock())
	require.NoError(t, err)

	t.Run("All", func(t *testing.T) {
		recs, err := r.Recommend(ctx, "1", 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"5", "3", "4", "2"}, ids(recs))
		for i, rec := range recs {
			assert.LessOrEqual(t, rec.Similarity, 1.0)
			assert.Greater(t, rec.Similarity, 0.9)
			if i > 0 {
				assert.GreaterOrEqual(t, recs[i-1].Similarity, rec.Similarity)
			}
		}
		assert.Equal(t, "Instant Crush", recs[0].Title)
		assert.Equal(t, "Daft Punk", recs[0].Artist)
	})

	t.Run("TopK", func(t *testing.T) {
		recs, err := r.Recommend(ctx, "1", 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"5", "3"}, ids(recs))
	})

	t.Run("KLargerThanCatalog", func(t *testing.T) {
		recs, err := r.Recommend(ctx, "1", 100)
		require.NoError(t, err)
		assert.Len(t, recs, 4)
	})

	t.Run("InvalidK", func(t *testing.T) {
		_, err := r.Recommend(ctx, "1", -1)
		assert.ErrorIs(t, err, ErrInvalidK)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := r.Recommend(ctx, "42", 3)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, err, catalog.ErrNotFound)
	})

	t.Run("SingleTrackCatalog", func(t *testing.T) {
		r, err := New(catalog.NewMemory(catalog.MockTracks()[0]))
		require.NoError(t, err)

		recs, err := r.Recommend(ctx, "1", 3)
		require.NoError(t, err)
		assert.Empty(t, recs)
	})
}

func TestRecommend_DefaultLimit(t *testing.T) {
	r, err := New(catalog.NewMock(), WithDefaultLimit(1))
	require.NoError(t, err)

	recs, err := r.Recommend(context.Background(), "1", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"5"}, ids(recs))

	recs, err = r.Recommend(context.Background(), "1", 3)
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestRecommend_InvalidFeatures(t *testing.T) {
	ctx := context.Background()
	tracks := append(catalog.MockTracks(),
		model.Track{ID: "6", Title: "Too Loud", Artist: "Nobody", Features: features.Record{"energy": 1.5, "tempo": 125, "valence": 0.7}},
	)

	t.Run("Lenient", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

		r, err := New(catalog.NewMemory(tracks...), WithLogger(logger))
		require.NoError(t, err)

		recs, err := r.Recommend(ctx, "1", 0)
		require.NoError(t, err)
		assert.Contains(t, ids(recs), "6")
		assert.Contains(t, buf.String(), "invalid track features")
		assert.Contains(t, buf.String(), `"track_id":"6"`)

		_, err = r.Recommend(ctx, "6", 0)
		assert.NoError(t, err)
	})

	t.Run("Strict", func(t *testing.T) {
		r, err := New(catalog.NewMemory(tracks...), WithStrictFeatures(true))
		require.NoError(t, err)

		recs, err := r.Recommend(ctx, "1", 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"5", "3", "4", "2"}, ids(recs))

		_, err = r.Recommend(ctx, "6", 0)
		var rangeErr *features.RangeError
		require.True(t, errors.As(err, &rangeErr))
		assert.Equal(t, features.Energy, rangeErr.Violations[0].Attribute)
	})
}

func TestRecommend_CustomRanker(t *testing.T) {
	ctx := context.Background()

	r, err := New(catalog.NewMock(), WithRanker(stubRanker{
		results: []rank.Result{{ID: "4", Score: 0.5, Index: 2}},
	}))
	require.NoError(t, err)

	recs, err := r.Recommend(ctx, "1", 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "4", recs[0].ID)
	assert.Equal(t, 0.5, recs[0].Similarity)

	r, err = New(catalog.NewMock(), WithRanker(stubRanker{
		results: []rank.Result{{ID: "x", Index: 99}},
	}))
	require.NoError(t, err)
	_, err = r.Recommend(ctx, "1", 0)
	assert.Error(t, err)

	r, err = New(catalog.NewMock(), WithRanker(stubRanker{
		err: &rank.ErrDimensionMismatch{Expected: 9, Actual: 3, ID: "2"},
	}))
	require.NoError(t, err)
	_, err = r.Recommend(ctx, "1", 0)
	var dm *ErrDimensionMismatch
	require.True(t, errors.As(err, &dm))
	assert.Equal(t, "2", dm.ID)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	sources := map[string]catalog.Source{
		"Searcher": catalog.NewMock(),
		"Fallback": listOnly{catalog.NewMock()},
	}

	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			r, err := New(src)
			require.NoError(t, err)

			found, err := r.Search(ctx, "WEEKND", 0)
			require.NoError(t, err)
			assert.Equal(t, []string{"2", "4"}, trackIDs(found))

			found, err = r.Search(ctx, "night", 1)
			require.NoError(t, err)
			assert.Equal(t, []string{"1"}, trackIDs(found))

			found, err = r.Search(ctx, "zzz", 0)
			require.NoError(t, err)
			assert.Empty(t, found)

			_, err = r.Search(ctx, "  ", 0)
			assert.ErrorIs(t, err, ErrEmptyQuery)

			_, err = r.Search(ctx, "night", -1)
			assert.ErrorIs(t, err, ErrInvalidK)
		})
	}
}

func TestTrack(t *testing.T) {
	r, err := New(catalog.NewMock())
	require.NoError(t, err)

	tr, err := r.Track(context.Background(), "3")
	require.NoError(t, err)
	assert.Equal(t, "Nightcall", tr.Title)

	_, err = r.Track(context.Background(), "0")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMetrics(t *testing.T) {
	ctx := context.Background()
	metrics := &BasicMetricsCollector{}

	r, err := New(listOnly{catalog.NewMock()}, WithMetricsCollector(metrics))
	require.NoError(t, err)

	_, err = r.Recommend(ctx, "1", 2)
	require.NoError(t, err)
	_, err = r.Recommend(ctx, "missing", 2)
	require.Error(t, err)
	_, err = r.Search(ctx, "weeknd", 0)
	require.NoError(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(2), stats.RecommendCount)
	assert.Equal(t, int64(1), stats.RecommendErrors)
	assert.Equal(t, int64(2), stats.RecommendResults)
	assert.Equal(t, int64(1), stats.SearchCount)
	assert.Equal(t, int64(0), stats.SearchErrors)
	assert.Equal(t, int64(2), stats.CatalogLoadCount)
	assert.Equal(t, int64(10), stats.CatalogLoadTracks)
}

func TestVectorizeAndRank(t *testing.T) {
	q := Vectorize(features.Record{"energy": 0.8, "tempo": 125, "valence": 0.7})
	assert.Len(t, q, features.Dimension)

	results, err := Rank(q, []rank.Candidate{
		{ID: "a", Vector: Vectorize(features.Record{"energy": 0.4, "tempo": 91, "valence": 0.3})},
		{ID: "b", Vector: Vectorize(features.Record{"energy": 0.8, "tempo": 125, "valence": 0.7})},
	})
	require.NoError(t, err)
	assert.Equal(t, "b", results[0].ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-12)

	_, err = Rank(q, []rank.Candidate{{ID: "short", Vector: features.Vector{1, 2, 3, 4, 5}}})
	var dm *ErrDimensionMismatch
	require.True(t, errors.As(err, &dm))
	assert.Equal(t, 9, dm.Expected)
	assert.Equal(t, 5, dm.Actual)
	assert.ErrorIs(t, err, rank.ErrPrecondition)
}

func TestTranslateError(t *testing.T) {
	assert.Nil(t, translateError(nil))

	other := errors.New("boom")
	assert.Equal(t, other, translateError(other))
}
