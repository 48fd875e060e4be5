package strategy

import "github.com/axontrace/spikenet/pkg/pattern"

// MergeSimilar folds new patterns into existing prototypes whenever they are
// similar enough, growing the bank only while there is spare capacity, and
// otherwise evicting the least-representative (outlier) slot.
type MergeSimilar struct {
	Threshold   float64
	MergeWeight float64
}

func NewMergeSimilar(threshold, mergeWeight float64) *MergeSimilar {
	return &MergeSimilar{Threshold: threshold, MergeWeight: mergeWeight}
}

func (s *MergeSimilar) Name() string { return "merge_similar" }

func (s *MergeSimilar) Update(bank *Bank, newPattern pattern.Vector, sim pattern.SimilarityV) bool {
	if len(bank.Slots) == 0 {
		bank.Slots = append(bank.Slots, Slot{Pattern: copyVector(newPattern)})
		return true
	}

	i, best := MostSimilar(bank, newPattern, sim)
	if i >= 0 && best >= s.Threshold {
		pattern.MergeV(&bank.Slots[i].Pattern, newPattern, s.MergeWeight)
		bank.Slots[i].MergeCount++
		return true
	}

	if len(bank.Slots) < bank.Capacity {
		bank.Slots = append(bank.Slots, Slot{Pattern: copyVector(newPattern)})
		return true
	}

	victim := LeastRepresentative(bank, sim)
	bank.Slots[victim] = Slot{Pattern: copyVector(newPattern)}
	return true
}
