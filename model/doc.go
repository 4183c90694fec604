// Package model defines the track types shared by catalogs, the recommender
// and the HTTP layer.
//
//   - Track: catalog entry with its raw audio features
//   - Recommendation: a track paired with its similarity to a seed
package model
