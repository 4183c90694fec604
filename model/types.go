package model

import (
	"fmt"

	"github.com/hupe1980/simili/features"
)

// Track is a catalog entry.
type Track struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Artist   string          `json:"artist"`
	Features features.Record `json:"features"`

	// Vector is an optional precomputed feature vector. It is ignored unless
	// its length is features.Dimension.
	Vector features.Vector `json:"vector,omitempty"`
}

// String returns a short human-readable form of the track.
func (t Track) String() string {
	return fmt.Sprintf("%s - %s (%s)", t.Artist, t.Title, t.ID)
}

// FeatureVector returns the precomputed vector when usable, otherwise it
// vectorizes the track's features.
func (t Track) FeatureVector() features.Vector {
	if len(t.Vector) == features.Dimension {
		return t.Vector
	}
	return features.Vectorize(t.Features)
}

// Recommendation is a track ranked against a seed.
type Recommendation struct {
	Track
	Similarity float64 `json:"similarity"`
}
