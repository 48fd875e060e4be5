// Package simd computes cosine similarity and dot product over float32
// vectors, probing CPU features the way a hardware-accelerated vector-search
// SIMD path would.
//
// A vector-search SIMD path typically dispatches to hand-written AVX2/ASIMD
// assembly kernels behind a cpuid feature probe, falling back to a portable
// Go loop on any CPU lacking those instruction sets. This package keeps the
// feature probe and the portable loop — a binned spike pattern or
// rolling-window vector is a few hundred float32s at most, not the batched
// embedding comparisons assembly kernels of that kind are written for — and
// always takes the portable path, the same path such a pipeline falls back
// to on most CPUs anyway.
package simd

import (
	"log"
	"math"
	"sync"

	"github.com/klauspost/cpuid/v2"
)

var (
	avx2 = cpuid.CPU.Supports(cpuid.AVX2) && cpuid.CPU.Supports(cpuid.FMA3)
	neon = cpuid.CPU.Supports(cpuid.ASIMD)
)

var logOnce sync.Once

// HardwareAccelerated reports whether the running CPU exposes the
// instruction sets an assembly cosine kernel would target. Diagnostic only;
// Cosine and DotProduct always run the portable path below.
func HardwareAccelerated() bool {
	return avx2 || neon
}

// Cosine computes the cosine similarity between a and b into dst. Returns
// 0 for unequal lengths, empty vectors, or a zero-norm operand.
func Cosine(dst *float64, a, b []float32) {
	logOnce.Do(func() {
		log.Printf("pattern/simd: cpu features avx2=%v neon=%v (portable path)", avx2, neon)
	})
	if len(a) != len(b) || len(a) == 0 {
		*dst = 0
		return
	}
	dot := dotProduct(a, b)
	na := dotProduct(a, a)
	nb := dotProduct(b, b)
	denom := math.Sqrt(na) * math.Sqrt(nb)
	if denom == 0 {
		*dst = 0
		return
	}
	*dst = dot / denom
}

// DotProduct computes the dot product of a and b into dst. Returns 0 for
// unequal lengths or empty vectors.
func DotProduct(dst *float64, a, b []float32) {
	if len(a) != len(b) || len(a) == 0 {
		*dst = 0
		return
	}
	*dst = dotProduct(a, b)
}

func dotProduct(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
