// Package pattern implements the fixed-width binned spike pattern, its
// similarity metrics, and the blend/merge operators the pattern-update
// strategies build on.
package pattern

import (
	"math"

	"github.com/axontrace/spikenet/pkg/errs"
	"github.com/axontrace/spikenet/pkg/pattern/simd"
)

// NumBins is the fixed width of a Binned pattern: one bin per millisecond
// offset from the earliest spike in the window.
const NumBins = 200

// Binned is a fixed-length spike-count vector. Index i holds the (saturating)
// count of spikes observed at millisecond offset i from the pattern's start.
type Binned [NumBins]byte

// FromSpikeTimes builds a Binned pattern from a list of absolute spike times
// (milliseconds). Times are normalized to the earliest spike, rounded to the
// nearest millisecond, and incremented into the corresponding bin, saturating
// at 255. Spikes whose normalized offset falls outside [0, NumBins) are
// silently dropped.
func FromSpikeTimes(times []int64) Binned {
	var b Binned
	if len(times) == 0 {
		return b
	}

	earliest := times[0]
	for _, t := range times {
		if t < earliest {
			earliest = t
		}
	}

	for _, t := range times {
		offset := t - earliest
		if offset < 0 || offset >= NumBins {
			continue
		}
		if b[offset] < 255 {
			b[offset]++
		}
	}
	return b
}

// ToSpikeTimes expands a Binned pattern back into an ascending list of
// spike-time offsets (one entry per unit count in a bin, measured from bin 0).
func (b Binned) ToSpikeTimes() []int64 {
	var out []int64
	for i, count := range b {
		for c := byte(0); c < count; c++ {
			out = append(out, int64(i))
		}
	}
	return out
}

// Cosine returns the cosine similarity between a and b, in [0, 1]. Returns 0
// if either pattern has zero norm, never NaN. Delegates the dot/norm
// arithmetic to pattern/simd, a hardware-probing cosine path of the kind
// used for embedding comparisons.
func Cosine(a, b Binned) float64 {
	var sim float64
	simd.Cosine(&sim, toFloat32(a), toFloat32(b))
	return clamp01(sim)
}

func toFloat32(b Binned) []float32 {
	out := make([]float32, NumBins)
	for i, v := range b {
		out[i] = float32(v)
	}
	return out
}

// HistogramIntersection returns Σ min(a_i, b_i) / Σ max(a_i, b_i), 0 when both
// patterns are all-zero.
func HistogramIntersection(a, b Binned) float64 {
	var sumMin, sumMax float64
	for i := range a {
		av, bv := float64(a[i]), float64(b[i])
		if av < bv {
			sumMin += av
			sumMax += bv
		} else {
			sumMin += bv
			sumMax += av
		}
	}
	if sumMax == 0 {
		return 0
	}
	return clamp01(sumMin / sumMax)
}

// EuclideanInverse returns 1 / (1 + L2(a, b)).
func EuclideanInverse(a, b Binned) float64 {
	var sumSq float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sumSq += d * d
	}
	return clamp01(1 / (1 + math.Sqrt(sumSq)))
}

// PearsonShifted returns (corr(a, b) + 1) / 2, mapping Pearson correlation's
// [-1, 1] range into [0, 1].
func PearsonShifted(a, b Binned) float64 {
	var sumA, sumB float64
	for i := range a {
		sumA += float64(a[i])
		sumB += float64(b[i])
	}
	meanA := sumA / NumBins
	meanB := sumB / NumBins

	var cov, varA, varB float64
	for i := range a {
		da := float64(a[i]) - meanA
		db := float64(b[i]) - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0.5
	}
	corr := cov / math.Sqrt(varA*varB)
	return clamp01((corr + 1) / 2)
}

// GaussianWaveform convolves both patterns with a Gaussian kernel of width
// sigma milliseconds, then returns the max normalized cross-correlation over
// lags in [-maxLag, +maxLag].
func GaussianWaveform(a, b Binned, sigma float64, maxLag int) float64 {
	ga := gaussianSmooth(a, sigma)
	gb := gaussianSmooth(b, sigma)

	var best float64
	for lag := -maxLag; lag <= maxLag; lag++ {
		c := normalizedCrossCorrAtLag(ga, gb, lag)
		if c > best {
			best = c
		}
	}
	return clamp01(best)
}

func gaussianSmooth(b Binned, sigma float64) []float64 {
	if sigma <= 0 {
		out := make([]float64, NumBins)
		for i, v := range b {
			out[i] = float64(v)
		}
		return out
	}

	radius := int(3 * sigma)
	kernel := make([]float64, 2*radius+1)
	var ksum float64
	for i := -radius; i <= radius; i++ {
		w := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		kernel[i+radius] = w
		ksum += w
	}
	for i := range kernel {
		kernel[i] /= ksum
	}

	out := make([]float64, NumBins)
	for i := 0; i < NumBins; i++ {
		var sum float64
		for k := -radius; k <= radius; k++ {
			j := i + k
			if j < 0 || j >= NumBins {
				continue
			}
			sum += float64(b[j]) * kernel[k+radius]
		}
		out[i] = sum
	}
	return out
}

func normalizedCrossCorrAtLag(a, b []float64, lag int) float64 {
	var dot, na, nb float64
	for i := range a {
		j := i + lag
		if j < 0 || j >= len(b) {
			continue
		}
		dot += a[i] * b[j]
		na += a[i] * a[i]
		nb += b[j] * b[j]
	}
	denom := math.Sqrt(na * nb)
	if denom == 0 {
		return 0
	}
	return dot / denom
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Blend updates target in place: t <- (1-alpha)*t + alpha*source, element-wise.
// A length mismatch (never possible for the fixed-size Binned type, but kept
// for symmetry with Merge) is a no-op reporting errs.ErrSizeMismatch.
func Blend(target *Binned, source Binned, alpha float64) error {
	return weightedUpdate(target, source, alpha)
}

// Merge updates target in place: t <- (1-w)*t + w*source, element-wise.
func Merge(target *Binned, source Binned, w float64) error {
	return weightedUpdate(target, source, w)
}

func weightedUpdate(target *Binned, source Binned, w float64) error {
	if len(target) != len(source) {
		return errs.ErrSizeMismatch
	}
	for i := range target {
		v := (1-w)*float64(target[i]) + w*float64(source[i])
		target[i] = saturate(v)
	}
	return nil
}

func saturate(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(math.Round(v))
}

// Similarity is the shared signature every metric above satisfies.
type Similarity func(a, b Binned) float64
