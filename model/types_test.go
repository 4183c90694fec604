package model

import (
	"testing"

	"github.com/hupe1980/simili/features"
	"github.com/stretchr/testify/assert"
)

func TestTrack_FeatureVector(t *testing.T) {
	tr := Track{ID: "1", Features: features.Record{"energy": 0.8, "tempo": 125, "valence": 0.7}}
	assert.Equal(t, features.Vectorize(tr.Features), tr.FeatureVector())

	pre := make(features.Vector, features.Dimension)
	pre[0] = 1
	tr.Vector = pre
	assert.Equal(t, pre, tr.FeatureVector())

	tr.Vector = features.Vector{1, 2}
	assert.Equal(t, features.Vectorize(tr.Features), tr.FeatureVector())
}

func TestTrack_String(t *testing.T) {
	tr := Track{ID: "1", Title: "Midnight City", Artist: "M83"}
	assert.Equal(t, "M83 - Midnight City (1)", tr.String())
}
