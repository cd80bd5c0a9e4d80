package learner

import "math"

// MetricKind selects the distance function used for node matching.
// The kind also fixes the preprocessing mode of the Vectorizer:
// cosine pairs with pattern features, euclidean with magnitude features.
type MetricKind string

const (
	MetricCosine    MetricKind = "cosine"
	MetricEuclidean MetricKind = "euclidean"
)

// Normalize maps an unrecognized selection to the cosine fallback.
func (k MetricKind) Normalize() MetricKind {
	if k == MetricEuclidean {
		return MetricEuclidean
	}
	return MetricCosine
}

// CosineDistance returns 1 - cos(a,b) with the denominator floored at eps.
// Whenever either norm is at or below eps the result is 1.0: zero vectors
// are defined maximally dissimilar from everything.
func CosineDistance(a, b []float64, eps float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	na = math.Sqrt(na)
	nb = math.Sqrt(nb)
	if na <= eps || nb <= eps {
		return 1.0
	}
	denom := na * nb
	if denom < eps {
		denom = eps
	}
	return 1.0 - dot/denom
}

// SquaredEuclidean returns the sum of squared component differences.
// No square root: only the ordering of distances matters to the map.
func SquaredEuclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// Distance dispatches on the configured metric kind.
func Distance(kind MetricKind, a, b []float64, eps float64) float64 {
	if kind.Normalize() == MetricEuclidean {
		return SquaredEuclidean(a, b)
	}
	return CosineDistance(a, b, eps)
}

func normL2(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
