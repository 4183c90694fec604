// Package catalog supplies tracks and their audio features to the recommender.
//
// A Source looks tracks up by id and enumerates the whole catalog. Sources
// that can search natively also implement Searcher. Implementations live in
// subpackages:
//
//   - catalog.Memory: in-process catalog, also used for snapshots
//   - catalog/snapshot: compressed catalog blobs on a blobstore
//   - catalog/postgres: the songs table in PostgreSQL
//   - catalog/dynamo: a DynamoDB table
//
// PoolBuilder turns a track list into a rank candidate pool, excluding the
// seed and any other rows the caller filters out.
package catalog
