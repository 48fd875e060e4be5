package strategy

import "github.com/axontrace/spikenet/pkg/pattern"

// ReplaceWorst behaves like Append below capacity. At capacity it blends into
// the most similar slot (bumping its use-count) when similarity clears the
// threshold, otherwise it replaces the least-used slot and resets its
// use-count. RecordUse (called externally on inference-time hits) is what
// keeps use-counts meaningful between Update calls.
type ReplaceWorst struct {
	Threshold float64
	Alpha     float64
}

func NewReplaceWorst(threshold, alpha float64) *ReplaceWorst {
	return &ReplaceWorst{Threshold: threshold, Alpha: alpha}
}

func (s *ReplaceWorst) Name() string { return "replace_worst" }

func (s *ReplaceWorst) Update(bank *Bank, newPattern pattern.Vector, sim pattern.SimilarityV) bool {
	if len(bank.Slots) < bank.Capacity {
		bank.Slots = append(bank.Slots, Slot{Pattern: copyVector(newPattern)})
		return true
	}

	i, best := MostSimilar(bank, newPattern, sim)
	if i >= 0 && best >= s.Threshold {
		pattern.BlendV(&bank.Slots[i].Pattern, newPattern, s.Alpha)
		bank.Slots[i].UseCount++
		return true
	}

	victim := leastUsed(bank)
	bank.Slots[victim] = Slot{Pattern: copyVector(newPattern)}
	return true
}
