package entity

import "github.com/axontrace/spikenet/pkg/idalloc"

// Dendrite is an incoming fiber targeting exactly one neuron. Invariant: the
// target neuron's dendrite set contains this dendrite's ID.
type Dendrite struct {
	ID             idalloc.ID `msgpack:"id"`
	TargetNeuronID idalloc.ID `msgpack:"target_neuron_id"`
}

func (d *Dendrite) EntityID() idalloc.ID { return d.ID }
func (d *Dendrite) TypeTag() string      { return TagDendrite }
