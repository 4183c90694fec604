// Package rank orders a candidate pool by cosine similarity to a query vector.
//
// Rank scores every candidate, then returns results sorted by descending
// similarity. Candidates with equal scores keep their relative input order,
// so the output is fully determined by the input.
//
// # Preconditions
//
//   - Every candidate vector must have the query's length. A mismatch returns
//     *ErrDimensionMismatch (errors.Is(err, ErrPrecondition)) and no results.
//   - The query's own identity is not filtered out. Callers exclude it from
//     the pool before ranking.
//
// Zero-magnitude vectors score 0 and an empty pool yields an empty result.
//
// # Scaling
//
// Large pools are split into partitions that are scored and sorted
// concurrently, then combined with a stable merge. The result is identical to
// the sequential path. Setting Options.Limit keeps only the best results
// through a bounded heap instead of sorting the whole pool.
//
// Ranker is the brute-force implementation of Interface. Approximate indexes
// can implement Interface without changing callers.
package rank
