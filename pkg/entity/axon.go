package entity

import "github.com/axontrace/spikenet/pkg/idalloc"

// Axon is the outgoing fiber of exactly one neuron, feeding zero or more
// synapses. Invariant: SourceNeuronID's axon ID equals this axon's ID
// (enforced by whoever constructs the pair — the object layer does not
// cross-check back-links on every mutation).
type Axon struct {
	ID             idalloc.ID   `msgpack:"id"`
	SourceNeuronID idalloc.ID   `msgpack:"source_neuron_id"`
	SynapseIDs     []idalloc.ID `msgpack:"synapse_ids"`
}

func (a *Axon) EntityID() idalloc.ID { return a.ID }
func (a *Axon) TypeTag() string      { return TagAxon }

// AddSynapse appends id if not already present, deduplicating on insertion.
func (a *Axon) AddSynapse(id idalloc.ID) {
	for _, existing := range a.SynapseIDs {
		if existing == id {
			return
		}
	}
	a.SynapseIDs = append(a.SynapseIDs, id)
}

// RemoveSynapse removes id and reports whether it was present.
func (a *Axon) RemoveSynapse(id idalloc.ID) bool {
	for i, existing := range a.SynapseIDs {
		if existing == id {
			a.SynapseIDs = append(a.SynapseIDs[:i], a.SynapseIDs[i+1:]...)
			return true
		}
	}
	return false
}
