// Package strategy implements the four pluggable pattern-update strategies
// (append, replace-worst, merge-similar, hybrid) that govern how a neuron's
// reference-pattern bank absorbs newly learned patterns.
package strategy

import "github.com/axontrace/spikenet/pkg/pattern"

// Slot is one bank entry: a reference pattern plus the per-slot counters the
// strategies maintain. Strategies are not internally locked — the neuron
// owning the bank serializes access to it.
type Slot struct {
	Pattern    pattern.Vector
	UseCount   int
	MergeCount int
}

// Bank is the per-neuron collection of reference patterns. Capacity bounds
// the number of slots a strategy is allowed to keep.
type Bank struct {
	Slots    []Slot
	Capacity int
}

// NewBank creates an empty bank with the given capacity.
func NewBank(capacity int) *Bank {
	return &Bank{Capacity: capacity}
}

// MostSimilar returns the index of, and similarity score to, the bank slot
// most similar to p. Returns (-1, 0) on an empty bank or when no slot has
// p's length: slots whose pattern length differs from p's are skipped
// rather than scored.
func MostSimilar(bank *Bank, p pattern.Vector, sim pattern.SimilarityV) (int, float64) {
	best := -1
	bestSim := 0.0
	for i, s := range bank.Slots {
		if len(s.Pattern) != len(p) {
			continue
		}
		v := sim(s.Pattern, p)
		if best == -1 || v > bestSim {
			best = i
			bestSim = v
		}
	}
	return best, bestSim
}

// LeastRepresentative returns the index of the slot with the lowest mean
// similarity to every other slot in the bank (the argmin "outlier"). Returns
// 0 for a single-slot bank and -1 for an empty one.
func LeastRepresentative(bank *Bank, sim pattern.SimilarityV) int {
	n := len(bank.Slots)
	if n < 2 {
		if n == 1 {
			return 0
		}
		return -1
	}

	worst := -1
	worstMean := 2.0 // above the [0,1] range any real mean can take
	for i := range bank.Slots {
		var sum float64
		count := 0
		for j := range bank.Slots {
			if i == j {
				continue
			}
			if len(bank.Slots[i].Pattern) != len(bank.Slots[j].Pattern) {
				continue
			}
			sum += sim(bank.Slots[i].Pattern, bank.Slots[j].Pattern)
			count++
		}
		mean := 0.0
		if count > 0 {
			mean = sum / float64(count)
		}
		if worst == -1 || mean < worstMean {
			worst = i
			worstMean = mean
		}
	}
	return worst
}

// RecordUse increments a slot's use-count, called by the owning neuron on
// inference-time hits against that slot.
func RecordUse(bank *Bank, index int) {
	if index < 0 || index >= len(bank.Slots) {
		return
	}
	bank.Slots[index].UseCount++
}

// leastUsed returns the index of the slot with the minimum use-count.
func leastUsed(bank *Bank) int {
	if len(bank.Slots) == 0 {
		return -1
	}
	worst := 0
	for i, s := range bank.Slots {
		if s.UseCount < bank.Slots[worst].UseCount {
			worst = i
		}
	}
	return worst
}

func copyVector(v pattern.Vector) pattern.Vector {
	out := make(pattern.Vector, len(v))
	copy(out, v)
	return out
}

// Strategy is the shared contract every pattern-update policy implements.
type Strategy interface {
	// Update applies the strategy's bank-mutation rule for a newly observed
	// pattern and reports whether the bank was modified.
	Update(bank *Bank, newPattern pattern.Vector, sim pattern.SimilarityV) bool
	// Name returns the strategy's canonical (lower-case) name.
	Name() string
}
