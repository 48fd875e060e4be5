// Package topology generates the synapse/dendrite population between two
// neuron populations according to a connectivity pattern, then realizes that
// population as registered entities.
package topology

import (
	"math/rand"

	"github.com/axontrace/spikenet/pkg/entity"
	"github.com/axontrace/spikenet/pkg/idalloc"
	"github.com/axontrace/spikenet/pkg/network"
)

// Connection describes one edge a Pattern wants built between a source and
// a target neuron, before IDs are minted for the axon/dendrite/synapse that
// will carry it.
type Connection struct {
	SourceNeuronID idalloc.ID
	TargetNeuronID idalloc.ID
	Weight         float64
	DelayMS        int64
}

// Pattern generates the connections between a source and a target neuron
// population. Implementations only decide which (source, target) pairs get
// wired; Build turns the result into registered entities.
type Pattern interface {
	Generate(sources, targets []idalloc.ID) []Connection
}

// RandomSparse wires each (source, target) pair independently with the
// given probability, every wired edge carrying the same weight and delay.
type RandomSparse struct {
	Probability float64
	Weight      float64
	DelayMS     int64
	Rand        *rand.Rand // nil uses a new source seeded with 1 on each Generate call
}

// Generate considers every source×target pair once, including the
// pair where a source ID equals a target ID — callers that want no
// self-loops should exclude a population from appearing in both slices.
func (p RandomSparse) Generate(sources, targets []idalloc.ID) []Connection {
	r := p.Rand
	if r == nil {
		r = rand.New(rand.NewSource(1))
	}
	var out []Connection
	for _, src := range sources {
		for _, tgt := range targets {
			if r.Float64() < p.Probability {
				out = append(out, Connection{SourceNeuronID: src, TargetNeuronID: tgt, Weight: p.Weight, DelayMS: p.DelayMS})
			}
		}
	}
	return out
}

// AllToAll wires every source neuron to every target neuron.
type AllToAll struct {
	Weight  float64
	DelayMS int64
}

func (p AllToAll) Generate(sources, targets []idalloc.ID) []Connection {
	out := make([]Connection, 0, len(sources)*len(targets))
	for _, src := range sources {
		for _, tgt := range targets {
			out = append(out, Connection{SourceNeuronID: src, TargetNeuronID: tgt, Weight: p.Weight, DelayMS: p.DelayMS})
		}
	}
	return out
}

// OneToOne wires sources[i] to targets[i]; the shorter slice's length bounds
// the number of connections, matching the indices that exist on both sides.
type OneToOne struct {
	Weight  float64
	DelayMS int64
}

func (p OneToOne) Generate(sources, targets []idalloc.ID) []Connection {
	n := len(sources)
	if len(targets) < n {
		n = len(targets)
	}
	out := make([]Connection, n)
	for i := 0; i < n; i++ {
		out[i] = Connection{SourceNeuronID: sources[i], TargetNeuronID: targets[i], Weight: p.Weight, DelayMS: p.DelayMS}
	}
	return out
}

// ManyToOne wires every source neuron to every target neuron, same edge set
// as AllToAll but named for the convergent reading: many presynaptic
// neurons converging onto each postsynaptic neuron.
type ManyToOne struct {
	Weight  float64
	DelayMS int64
}

func (p ManyToOne) Generate(sources, targets []idalloc.ID) []Connection {
	return AllToAll(p).Generate(sources, targets)
}

// Build realizes pattern's connections into axon/dendrite/synapse entities:
// one axon per distinct source neuron (reused across that source's edges),
// one dendrite and one synapse per connection. It mints every ID through
// alloc and registers every entity with net, maintaining the back-links
// (axon.SourceNeuronID's neuron.AxonID, dendrite.TargetNeuronID's
// neuron.DendriteIDs) those entities' own invariants expect. Source and
// target neurons must already be registered with net via RegisterNeuron.
func Build(alloc *idalloc.Allocator, net *network.Network, pattern Pattern, sources, targets []idalloc.ID) ([]Connection, error) {
	conns := pattern.Generate(sources, targets)

	axons := make(map[idalloc.ID]*entity.Axon, len(sources))
	for _, c := range conns {
		axon, ok := axons[c.SourceNeuronID]
		if !ok {
			axonID, err := alloc.Next(idalloc.KindAxon)
			if err != nil {
				return nil, err
			}
			axon = &entity.Axon{ID: axonID, SourceNeuronID: c.SourceNeuronID}
			axons[c.SourceNeuronID] = axon
			if n, ok := net.Neuron(c.SourceNeuronID); ok {
				n.AxonID = axonID
			}
		}

		dendriteID, err := alloc.Next(idalloc.KindDendrite)
		if err != nil {
			return nil, err
		}
		dendrite := &entity.Dendrite{ID: dendriteID, TargetNeuronID: c.TargetNeuronID}
		if n, ok := net.Neuron(c.TargetNeuronID); ok {
			n.AddDendrite(dendriteID)
		}

		synapseID, err := alloc.Next(idalloc.KindSynapse)
		if err != nil {
			return nil, err
		}
		axon.AddSynapse(synapseID)
		synapse := &entity.Synapse{
			ID:         synapseID,
			AxonID:     axon.ID,
			DendriteID: dendriteID,
			Weight:     c.Weight,
			DelayMS:    c.DelayMS,
		}

		if err := net.RegisterDendrite(dendrite); err != nil {
			return nil, err
		}
		if err := net.RegisterSynapse(synapse); err != nil {
			return nil, err
		}
	}
	for _, axon := range axons {
		if err := net.RegisterAxon(axon); err != nil {
			return nil, err
		}
	}

	return conns, nil
}
