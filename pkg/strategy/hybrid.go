package strategy

import "github.com/axontrace/spikenet/pkg/pattern"

// Hybrid combines consolidation, strengthening, and pruning behind two
// thresholds: merge_threshold >= similarity_threshold. Below capacity it
// behaves like Append. At capacity: a close-enough match above
// MergeThreshold consolidates (merge); a match above SimilarityThreshold but
// below MergeThreshold strengthens (blend, with use-count bump); anything
// else prunes the least-used slot.
type Hybrid struct {
	SimilarityThreshold float64
	MergeThreshold      float64
	Alpha               float64
	MergeWeight         float64

	Merges int
	Prunes int
	Blends int
	Adds   int
}

// NewHybrid builds a Hybrid strategy. mergeThreshold is clamped up to at
// least similarityThreshold+0.1 per the strategy configuration contract.
func NewHybrid(similarityThreshold, mergeThreshold, alpha, mergeWeight float64) *Hybrid {
	if mergeThreshold < similarityThreshold+0.1 {
		mergeThreshold = similarityThreshold + 0.1
	}
	return &Hybrid{
		SimilarityThreshold: similarityThreshold,
		MergeThreshold:      mergeThreshold,
		Alpha:                alpha,
		MergeWeight:          mergeWeight,
	}
}

func (s *Hybrid) Name() string { return "hybrid" }

func (s *Hybrid) Update(bank *Bank, newPattern pattern.Vector, sim pattern.SimilarityV) bool {
	if len(bank.Slots) < bank.Capacity {
		bank.Slots = append(bank.Slots, Slot{Pattern: copyVector(newPattern)})
		s.Adds++
		return true
	}

	i, best := MostSimilar(bank, newPattern, sim)
	switch {
	case i >= 0 && best >= s.MergeThreshold:
		pattern.MergeV(&bank.Slots[i].Pattern, newPattern, s.MergeWeight)
		bank.Slots[i].MergeCount++
		s.Merges++
	case i >= 0 && best >= s.SimilarityThreshold:
		pattern.BlendV(&bank.Slots[i].Pattern, newPattern, s.Alpha)
		bank.Slots[i].UseCount++
		s.Blends++
	default:
		victim := leastUsed(bank)
		bank.Slots[victim] = Slot{Pattern: copyVector(newPattern)}
		s.Prunes++
	}
	return true
}
