// Package distance provides the vector similarity kernels used by the ranker.
//
// # Supported Functions
//
//   - Dot: inner product
//   - Norm: Euclidean (L2) magnitude
//   - Cosine: cosine similarity with an explicit zero-magnitude policy
//
// # Usage
//
//	sim := distance.Cosine(a, b) // in [-1, 1]; 0 when either vector is all zeros
package distance
