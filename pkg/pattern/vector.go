package pattern

import (
	"math"

	"github.com/axontrace/spikenet/pkg/errs"
	"github.com/axontrace/spikenet/pkg/pattern/simd"
)

// Vector is a variable-length real-valued pattern: the sparse-timeline
// representation, holding either raw spike-time offsets or any other
// equal-length real-valued sample a neuron's rolling buffer produces. Unlike
// Binned, similarity and blend/merge here compare vectors directly without
// first normalizing them into a fixed-width histogram, since the bank only
// ever matches patterns captured from buffers of the same configured length.
type Vector []float64

// FromInt64 copies a slice of millisecond spike times into a Vector, value
// for value, with no offset normalization — the bank compares learned
// buffers to current buffers as captured.
func FromInt64(times []int64) Vector {
	v := make(Vector, len(times))
	for i, t := range times {
		v[i] = float64(t)
	}
	return v
}

// CosineV returns the cosine similarity between two equal-length vectors, 0
// if either vector has zero norm or the lengths differ. Delegates to
// pattern/simd, the same dot/norm path Binned's Cosine uses.
func CosineV(a, b Vector) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var sim float64
	simd.Cosine(&sim, toFloat32V(a), toFloat32V(b))
	return clamp01(sim)
}

func toFloat32V(v Vector) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

// HistogramIntersectionV mirrors HistogramIntersection for variable-length
// non-negative vectors.
func HistogramIntersectionV(a, b Vector) float64 {
	if len(a) != len(b) {
		return 0
	}
	var sumMin, sumMax float64
	for i := range a {
		if a[i] < b[i] {
			sumMin += a[i]
			sumMax += b[i]
		} else {
			sumMin += b[i]
			sumMax += a[i]
		}
	}
	if sumMax == 0 {
		return 0
	}
	return clamp01(sumMin / sumMax)
}

// EuclideanInverseV mirrors EuclideanInverse for variable-length vectors.
func EuclideanInverseV(a, b Vector) float64 {
	if len(a) != len(b) {
		return 0
	}
	var sumSq float64
	for i := range a {
		d := a[i] - b[i]
		sumSq += d * d
	}
	return clamp01(1 / (1 + math.Sqrt(sumSq)))
}

// PearsonShiftedV mirrors PearsonShifted for variable-length vectors.
func PearsonShiftedV(a, b Vector) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	n := float64(len(a))
	var sumA, sumB float64
	for i := range a {
		sumA += a[i]
		sumB += b[i]
	}
	meanA, meanB := sumA/n, sumB/n

	var cov, varA, varB float64
	for i := range a {
		da, db := a[i]-meanA, b[i]-meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0.5
	}
	return clamp01((cov/math.Sqrt(varA*varB) + 1) / 2)
}

// BlendV updates target in place: t <- (1-alpha)*t + alpha*source.
func BlendV(target *Vector, source Vector, alpha float64) error {
	return weightedUpdateV(target, source, alpha)
}

// MergeV updates target in place: t <- (1-w)*t + w*source.
func MergeV(target *Vector, source Vector, w float64) error {
	return weightedUpdateV(target, source, w)
}

func weightedUpdateV(target *Vector, source Vector, w float64) error {
	if len(*target) != len(source) {
		return errs.ErrSizeMismatch
	}
	for i := range *target {
		(*target)[i] = (1-w)*(*target)[i] + w*source[i]
	}
	return nil
}

// SimilarityV is the shared signature every Vector metric above satisfies.
type SimilarityV func(a, b Vector) float64
