package simd

import (
	"math"
	"testing"
)

func TestCosine_Identical(t *testing.T) {
	a := []float32{1, 2, 3, 4}
	b := []float32{1, 2, 3, 4}
	var result float64
	Cosine(&result, a, b)
	if math.Abs(result-1.0) > 1e-6 {
		t.Fatalf("expected ~1.0 for identical vectors, got %f", result)
	}
}

func TestCosine_Orthogonal(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{0, 1, 0}
	var result float64
	Cosine(&result, a, b)
	if math.Abs(result) > 1e-6 {
		t.Fatalf("expected ~0.0 for orthogonal vectors, got %f", result)
	}
}

func TestCosine_ZeroVector(t *testing.T) {
	a := []float32{0, 0, 0}
	b := []float32{1, 2, 3}
	var result float64
	Cosine(&result, a, b)
	if result != 0 {
		t.Fatalf("expected 0 for zero vector, got %f", result)
	}
}

func TestCosine_LengthMismatch(t *testing.T) {
	a := []float32{1, 2}
	b := []float32{1, 2, 3}
	var result float64
	Cosine(&result, a, b)
	if result != 0 {
		t.Fatalf("expected 0 for length mismatch, got %f", result)
	}
}

func TestDotProduct(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{4, 5, 6}
	var result float64
	DotProduct(&result, a, b)
	expected := 1.0*4 + 2.0*5 + 3.0*6
	if math.Abs(result-expected) > 1e-6 {
		t.Fatalf("expected %f, got %f", expected, result)
	}
}

func BenchmarkCosine_200(b *testing.B) {
	a := make([]float32, 200)
	c := make([]float32, 200)
	for i := range a {
		a[i] = float32(i) * 0.01
		c[i] = float32(i) * 0.02
	}
	var dst float64
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Cosine(&dst, a, c)
	}
}
