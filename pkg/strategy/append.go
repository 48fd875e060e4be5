package strategy

import (
	"math/rand"

	"github.com/axontrace/spikenet/pkg/pattern"
)

// Append pushes new patterns until capacity, then either blends into the
// most similar slot or replaces a uniformly random one.
type Append struct {
	Threshold float64
	Alpha     float64
	rng       *rand.Rand
}

// NewAppend builds an Append strategy. threshold gates blend-vs-replace;
// alpha controls the blend rate.
func NewAppend(threshold, alpha float64) *Append {
	return &Append{Threshold: threshold, Alpha: alpha, rng: rand.New(rand.NewSource(1))}
}

func (s *Append) Name() string { return "append" }

func (s *Append) Update(bank *Bank, newPattern pattern.Vector, sim pattern.SimilarityV) bool {
	if len(bank.Slots) < bank.Capacity {
		bank.Slots = append(bank.Slots, Slot{Pattern: copyVector(newPattern)})
		return true
	}

	i, best := MostSimilar(bank, newPattern, sim)
	if i >= 0 && best >= s.Threshold {
		pattern.BlendV(&bank.Slots[i].Pattern, newPattern, s.Alpha)
		return true
	}

	victim := s.rng.Intn(len(bank.Slots))
	bank.Slots[victim] = Slot{Pattern: copyVector(newPattern)}
	return true
}
