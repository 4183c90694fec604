package catalog

import (
	"github.com/hupe1980/simili/features"
	"github.com/hupe1980/simili/model"
)

// MockTracks returns a small fixed catalog for demos and tests.
func MockTracks() []model.Track {
	return []model.Track{
		{ID: "1", Title: "Midnight City", Artist: "M83", Features: features.Record{"energy": 0.8, "tempo": 125, "valence": 0.7}},
		{ID: "2", Title: "Starboy", Artist: "The Weeknd", Features: features.Record{"energy": 0.6, "tempo": 186, "valence": 0.5}},
		{ID: "3", Title: "Nightcall", Artist: "Kavinsky", Features: features.Record{"energy": 0.4, "tempo": 91, "valence": 0.3}},
		{ID: "4", Title: "Blinding Lights", Artist: "The Weeknd", Features: features.Record{"energy": 0.7, "tempo": 171, "valence": 0.6}},
		{ID: "5", Title: "Instant Crush", Artist: "Daft Punk", Features: features.Record{"energy": 0.6, "tempo": 110, "valence": 0.5}},
	}
}
