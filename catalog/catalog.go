package catalog

import (
	"context"
	"errors"

	"github.com/hupe1980/simili/model"
)

// ErrNotFound is returned when a track id is not in the catalog.
var ErrNotFound = errors.New("track not found")

// Source provides tracks to the recommender.
// Implementations must be safe for concurrent use.
type Source interface {
	// Get returns the track with the given id or ErrNotFound.
	Get(ctx context.Context, id string) (model.Track, error)

	// List returns every track in a stable order.
	List(ctx context.Context) ([]model.Track, error)
}

// Searcher is implemented by sources that can search by title or artist.
type Searcher interface {
	// Search returns up to limit tracks matching q. limit <= 0 means no limit.
	Search(ctx context.Context, q string, limit int) ([]model.Track, error)
}
