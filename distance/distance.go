package distance

import "math"

// Func is a function type for similarity calculation.
type Func func(a, b []float64) float64

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Norm calculates the L2 magnitude of v.
func Norm(v []float64) float64 {
	return math.Sqrt(Dot(v, v))
}

// Cosine calculates the cosine similarity dot(a,b) / (|a| * |b|).
// Assumes vectors are the same length (caller's responsibility).
//
// Cosine similarity is undefined for zero-magnitude vectors. Cosine returns 0
// for such pairs instead of NaN.
func Cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// CosineWithNorm is Cosine for a query whose magnitude was computed up front.
// queryNorm must equal Norm(query).
func CosineWithNorm(query []float64, queryNorm float64, b []float64) float64 {
	var dot, nb float64
	for i := range query {
		dot += query[i] * b[i]
		nb += b[i] * b[i]
	}
	if queryNorm == 0 || nb == 0 {
		return 0
	}
	return dot / (queryNorm * math.Sqrt(nb))
}
