package entity

import (
	"sync"

	"github.com/axontrace/spikenet/pkg/idalloc"
)

const (
	// WeightMin and WeightMax bound every synapse weight the STDP rule
	// applies to.
	WeightMin = 0.0
	WeightMax = 2.0
)

// Synapse connects an upstream axon to a downstream dendrite with a weight
// and a transmission delay. Weight is kept clamped to [WeightMin, WeightMax]
// at every mutation; delay must stay positive.
type Synapse struct {
	ID         idalloc.ID `msgpack:"id"`
	AxonID     idalloc.ID `msgpack:"axon_id"`
	DendriteID idalloc.ID `msgpack:"dendrite_id"`
	Weight     float64    `msgpack:"weight"`
	DelayMS    int64      `msgpack:"delay_ms"`

	mu sync.Mutex `msgpack:"-"`
}

func (s *Synapse) EntityID() idalloc.ID { return s.ID }
func (s *Synapse) TypeTag() string      { return TagSynapse }

// CurrentWeight returns the weight under the synapse's lock, so readers
// racing a retrograde delivery see either the old or the new value, never
// a torn one.
func (s *Synapse) CurrentWeight() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Weight
}

// ApplyDelta adds delta to the synapse's weight, clamping the result into
// [WeightMin, WeightMax], and returns the new weight. Locked so that
// concurrent retrograde deliveries to the same synapse compose rather
// than race.
func (s *Synapse) ApplyDelta(delta float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.Weight + delta
	if w < WeightMin {
		w = WeightMin
	}
	if w > WeightMax {
		w = WeightMax
	}
	s.Weight = w
	return s.Weight
}
