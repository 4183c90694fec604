// Package cache wraps a catalog.Source with an in-process cache.
//
// Remote sources such as Postgres and DynamoDB read the whole table on every
// List. Source keeps the last List result for a TTL and answers Get and
// Search from it while it is fresh. Individual Get lookups that miss the
// listing are kept in a bounded LRU. Concurrent reloads are collapsed into a
// single call to the wrapped source.
package cache
