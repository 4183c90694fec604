package catalog

import (
	"context"
	"sync"
	"testing"

	"github.com/hupe1980/simili/features"
	"github.com/hupe1980/simili/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trackIDs(tracks []model.Track) []string {
	out := make([]string, len(tracks))
	for i, t := range tracks {
		out[i] = t.ID
	}
	return out
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMock()
	require.Equal(t, 5, m.Len())

	t.Run("Get", func(t *testing.T) {
		tr, err := m.Get(ctx, "3")
		require.NoError(t, err)
		assert.Equal(t, "Nightcall", tr.Title)

		_, err = m.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("List", func(t *testing.T) {
		tracks, err := m.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "2", "3", "4", "5"}, trackIDs(tracks))

		tracks[0] = model.Track{ID: "x"}
		again, _ := m.List(ctx)
		assert.Equal(t, "1", again[0].ID)
	})

	t.Run("PutReplacesInPlace", func(t *testing.T) {
		m := NewMock()
		m.Put(model.Track{ID: "2", Title: "Starboy (Remix)"})
		m.Put(model.Track{ID: "6", Title: "One More Time", Artist: "Daft Punk"})

		tracks, _ := m.List(ctx)
		assert.Equal(t, []string{"1", "2", "3", "4", "5", "6"}, trackIDs(tracks))
		assert.Equal(t, "Starboy (Remix)", tracks[1].Title)
	})

	t.Run("Delete", func(t *testing.T) {
		m := NewMock()
		m.Delete("2")
		m.Delete("missing")

		tracks, _ := m.List(ctx)
		assert.Equal(t, []string{"1", "3", "4", "5"}, trackIDs(tracks))
		tr, err := m.Get(ctx, "5")
		require.NoError(t, err)
		assert.Equal(t, "Instant Crush", tr.Title)
	})

	t.Run("Concurrent", func(t *testing.T) {
		m := NewMock()
		var wg sync.WaitGroup
		for i := range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				m.Put(model.Track{ID: string(rune('a' + i))})
				_, _ = m.List(ctx)
				_, _ = m.Search(ctx, "the", 0)
			}()
		}
		wg.Wait()
		assert.Equal(t, 13, m.Len())
	})
}

func TestMatch(t *testing.T) {
	tracks := MockTracks()

	tests := []struct {
		name     string
		q        string
		limit    int
		expected []string
	}{
		{"Artist", "weeknd", 0, []string{"2", "4"}},
		{"TitleCaseInsensitive", "NIGHT", 0, []string{"1", "3"}},
		{"Limit", "the weeknd", 1, []string{"2"}},
		{"NoMatch", "metallica", 0, []string{}},
		{"Blank", "  ", 0, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, trackIDs(Match(tracks, tt.q, tt.limit)))
		})
	}
}

func TestPoolBuilder(t *testing.T) {
	tracks := MockTracks()

	t.Run("ExcludeSeed", func(t *testing.T) {
		b := NewPoolBuilder(tracks).Exclude("1")
		p := b.Build()

		assert.Equal(t, 1, b.Excluded())
		assert.Equal(t, 4, p.Len())
		assert.Equal(t, []string{"2", "3", "4", "5"}, trackIDs(p.Tracks))
		for i, c := range p.Candidates {
			assert.Equal(t, p.Tracks[i].ID, c.ID)
			assert.Equal(t, features.Vectorize(p.Tracks[i].Features), c.Vector)
		}
	})

	t.Run("ExcludeFuncOverlaps", func(t *testing.T) {
		b := NewPoolBuilder(tracks).
			Exclude("2", "missing").
			ExcludeFunc(func(t model.Track) bool { return t.Artist == "The Weeknd" })

		assert.Equal(t, 2, b.Excluded())
		assert.Equal(t, []string{"1", "3", "5"}, trackIDs(b.Build().Tracks))
	})

	t.Run("Empty", func(t *testing.T) {
		p := NewPoolBuilder(nil).Exclude("1").Build()
		assert.Equal(t, 0, p.Len())
		assert.NotNil(t, p.Candidates)
	})
}
