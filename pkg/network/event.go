// Package network holds the live in-memory topology (neurons, axons,
// dendrites, synapses) the scheduler delivers spike events against, plus
// the event types those deliveries carry and the STDP rule retrograde
// events apply. This is distinct from pkg/store's persisted object
// population: the network registries hold the entities participating in
// the active simulation, while the store is the durable, cold-capacity-bound
// home for the full population.
package network

import "github.com/axontrace/spikenet/pkg/idalloc"

// EventType tags an Event's variant without requiring a type assertion.
type EventType int

const (
	EventForward EventType = iota
	EventRetrograde
)

func (t EventType) String() string {
	if t == EventRetrograde {
		return "retrograde"
	}
	return "forward"
}

// Event is satisfied by both spike variants the scheduler delivers.
type Event interface {
	Kind() EventType
	ScheduledTime() int64
}

// ForwardSpike excites a dendrite at a future simulation time, carrying the
// weight captured from its originating synapse at emission time.
type ForwardSpike struct {
	Time       int64
	DendriteID idalloc.ID
	Weight     float64
}

func (e ForwardSpike) Kind() EventType      { return EventForward }
func (e ForwardSpike) ScheduledTime() int64 { return e.Time }

// RetrogradeSpike carries a temporal offset back to a synapse so STDP can
// update its weight. TemporalOffsetMS is post-neuron last-fire minus
// dispatch time: positive means LTP, negative means LTD.
type RetrogradeSpike struct {
	Time             int64
	SynapseID        idalloc.ID
	TemporalOffsetMS int64
}

func (e RetrogradeSpike) Kind() EventType      { return EventRetrograde }
func (e RetrogradeSpike) ScheduledTime() int64 { return e.Time }
