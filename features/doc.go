// Package features turns raw audio-feature records into fixed-length vectors.
//
// A Record is a loose mapping of attribute names to values as delivered by an
// upstream music-data source. Any attribute may be missing. Vectorize maps a
// Record onto a Vector with one slot per recognized attribute, in this order:
//
//	0 danceability
//	1 energy
//	2 loudness         (divided by -60)
//	3 speechiness
//	4 acousticness
//	5 instrumentalness
//	6 liveness
//	7 valence
//	8 tempo            (divided by 200)
//
// Missing attributes default to 0, except tempo which defaults to 120 BPM.
// Defaults are applied before normalization, so an empty record yields
// [0 0 0 0 0 0 0 0 0.6].
//
// # Usage
//
//	rec := features.Record{"energy": 0.8, "tempo": 125, "valence": 0.7}
//	vec := features.Vectorize(rec) // [0 0.8 0 0 0 0 0 0.7 0.625]
//
// Vectorize never clamps. Use Validate to detect values outside the expected
// ranges before they reach the ranker.
package features
