package strategy

import (
	"testing"

	"github.com/axontrace/spikenet/pkg/pattern"
)

func allStrategies(t *testing.T, capacity int, threshold float64) map[string]func() (Strategy, *Bank) {
	return map[string]func() (Strategy, *Bank){
		"append": func() (Strategy, *Bank) {
			s, b, err := New(Config{Name: "append", MaxPatterns: capacity, SimilarityThreshold: threshold})
			if err != nil {
				t.Fatalf("New(append): %v", err)
			}
			return s, b
		},
		"replace_worst": func() (Strategy, *Bank) {
			s, b, err := New(Config{Name: "replaceworst", MaxPatterns: capacity, SimilarityThreshold: threshold})
			if err != nil {
				t.Fatalf("New(replace_worst): %v", err)
			}
			return s, b
		},
		"merge_similar": func() (Strategy, *Bank) {
			s, b, err := New(Config{Name: "merge_similar", MaxPatterns: capacity, SimilarityThreshold: threshold})
			if err != nil {
				t.Fatalf("New(merge_similar): %v", err)
			}
			return s, b
		},
		"hybrid": func() (Strategy, *Bank) {
			s, b, err := New(Config{Name: "hybrid", MaxPatterns: capacity, SimilarityThreshold: threshold})
			if err != nil {
				t.Fatalf("New(hybrid): %v", err)
			}
			return s, b
		},
	}
}

func TestUnknownStrategyNameFails(t *testing.T) {
	if _, _, err := New(Config{Name: "not-a-real-strategy"}); err == nil {
		t.Fatalf("expected UnknownStrategy error")
	}
}

func TestCapacityNeverExceeded(t *testing.T) {
	for name, build := range allStrategies(t, 4, 0.9) {
		s, bank := build()
		for i := 0; i < 50; i++ {
			p := pattern.Vector{float64(i), float64(i + 1), float64(i + 2)}
			s.Update(bank, p, pattern.CosineV)
			if len(bank.Slots) > bank.Capacity {
				t.Fatalf("%s: bank size %d exceeds capacity %d", name, len(bank.Slots), bank.Capacity)
			}
		}
	}
}

func TestIdempotenceOnExactRepeat(t *testing.T) {
	// Fill each bank to capacity (mutually dissimilar seeds, all below the
	// 0.9 threshold against one another) so repeated updates take the
	// blend/merge path against the exact match rather than pushing.
	seeds := []pattern.Vector{{1, 2, 3, 4}, {10, 1, 1, 1}, {1, 10, 1, 1}, {1, 1, 10, 1}}
	for name, build := range allStrategies(t, 4, 0.9) {
		s, bank := build()
		for _, q := range seeds {
			s.Update(bank, q, pattern.CosineV)
		}
		p := pattern.Vector{1, 2, 3, 4}
		s.Update(bank, p, pattern.CosineV)
		sizeBefore := len(bank.Slots)
		s.Update(bank, p, pattern.CosineV)
		if len(bank.Slots) != sizeBefore {
			t.Fatalf("%s: size changed from %d to %d on identical repeat", name, sizeBefore, len(bank.Slots))
		}
	}
}

func TestMostSimilarEmptyBank(t *testing.T) {
	bank := NewBank(4)
	i, sim := MostSimilar(bank, pattern.Vector{1, 2}, pattern.CosineV)
	if i != -1 || sim != 0 {
		t.Fatalf("MostSimilar on empty bank = (%d, %v), want (-1, 0)", i, sim)
	}
}

func TestHybridMergeThresholdClamped(t *testing.T) {
	h := NewHybrid(0.9, 0.92, 0.2, 0.3)
	if h.MergeThreshold < h.SimilarityThreshold+0.1 {
		t.Fatalf("merge threshold %v not clamped above similarity threshold %v", h.MergeThreshold, h.SimilarityThreshold)
	}
}
