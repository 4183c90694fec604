// Package testutil provides testing utilities for simili.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random feature records, tracks and
// vectors, computing exact rankings, and verifying recall.
//
// # Random Data
//
//	rng := testutil.NewRNG(seed)
//	rec := rng.Record()            // plausible audio features
//	tracks := rng.Tracks(1000)     // ids t00000 ... t00999
//
// # Exact Ranking (Ground Truth)
//
//	truth := testutil.ExactTopK(query, vectors, k)
//
// # Recall Verification
//
//	recall := testutil.ComputeRecall(truth, approx)
package testutil
