package network

import (
	"fmt"
	"math"
	"sync"

	"github.com/axontrace/spikenet/pkg/assert"
	"github.com/axontrace/spikenet/pkg/entity"
	"github.com/axontrace/spikenet/pkg/errs"
	"github.com/axontrace/spikenet/pkg/idalloc"
)

// FireHandler is invoked whenever InsertSpike reports a fired neuron,
// carrying the neuron's own ID and the simulation time of the firing spike.
// The driver layer wires this to forward-propagation; Network itself stays
// agnostic to what firing triggers downstream.
type FireHandler func(neuronID idalloc.ID, firedAt int64)

// Network is the live in-memory topology the scheduler delivers spike
// events against: the subset of the entity population currently
// participating in a running simulation, registered here separately from
// pkg/store's durable, capacity-bound population. Each entity kind is
// guarded by its own mutex so a forward delivery into one neuron never
// blocks a retrograde delivery into an unrelated synapse.
type Network struct {
	neuronMu sync.RWMutex
	neurons  map[idalloc.ID]*entity.Neuron

	dendriteMu sync.RWMutex
	dendrites  map[idalloc.ID]*entity.Dendrite

	synapseMu sync.RWMutex
	synapses  map[idalloc.ID]*entity.Synapse

	axonMu sync.RWMutex
	axons  map[idalloc.ID]*entity.Axon

	handlerMu sync.RWMutex
	onFire    FireHandler
}

// New returns an empty Network.
func New() *Network {
	return &Network{
		neurons:   make(map[idalloc.ID]*entity.Neuron),
		dendrites: make(map[idalloc.ID]*entity.Dendrite),
		synapses:  make(map[idalloc.ID]*entity.Synapse),
		axons:     make(map[idalloc.ID]*entity.Axon),
	}
}

// SetFireHandler installs the callback invoked on every fired spike. A nil
// handler disables the callback.
func (net *Network) SetFireHandler(h FireHandler) {
	net.handlerMu.Lock()
	defer net.handlerMu.Unlock()
	net.onFire = h
}

func (net *Network) RegisterNeuron(n *entity.Neuron) {
	net.neuronMu.Lock()
	defer net.neuronMu.Unlock()
	net.neurons[n.ID] = n
}

// RegisterDendrite records d and, if its target neuron is already known,
// checks the back-link invariant: the target neuron's dendrite set must
// contain this dendrite's ID. A non-nil error only surfaces in strict
// mode (pkg/assert); the registration itself always succeeds.
func (net *Network) RegisterDendrite(d *entity.Dendrite) error {
	net.dendriteMu.Lock()
	net.dendrites[d.ID] = d
	net.dendriteMu.Unlock()

	n, ok := net.Neuron(d.TargetNeuronID)
	if !ok {
		return nil
	}
	linked := false
	for _, id := range n.DendriteIDs {
		if id == d.ID {
			linked = true
			break
		}
	}
	return assert.Require(linked,
		"dendrite %d target neuron %d missing back-link", d.ID, d.TargetNeuronID)
}

// RegisterSynapse records s and checks the synapse entity invariants:
// delay strictly positive, weight finite. A non-nil error only
// surfaces in strict mode; the registration itself always succeeds.
func (net *Network) RegisterSynapse(s *entity.Synapse) error {
	net.synapseMu.Lock()
	net.synapses[s.ID] = s
	net.synapseMu.Unlock()

	if err := assert.Require(s.DelayMS > 0,
		"synapse %d delay %dms must be positive", s.ID, s.DelayMS); err != nil {
		return err
	}
	return assert.Require(!math.IsNaN(s.Weight) && !math.IsInf(s.Weight, 0),
		"synapse %d weight %v must be finite", s.ID, s.Weight)
}

// RegisterAxon records a and, if its source neuron is already known,
// checks the back-link invariant: the source neuron's axon ID must equal
// this axon's ID. A non-nil error only surfaces in strict mode; the
// registration itself always succeeds.
func (net *Network) RegisterAxon(a *entity.Axon) error {
	net.axonMu.Lock()
	net.axons[a.ID] = a
	net.axonMu.Unlock()

	n, ok := net.Neuron(a.SourceNeuronID)
	if !ok {
		return nil
	}
	return assert.Require(n.AxonID == a.ID,
		"axon %d source neuron %d axon_id %d back-link mismatch", a.ID, a.SourceNeuronID, n.AxonID)
}

func (net *Network) Neuron(id idalloc.ID) (*entity.Neuron, bool) {
	net.neuronMu.RLock()
	defer net.neuronMu.RUnlock()
	n, ok := net.neurons[id]
	return n, ok
}

func (net *Network) Dendrite(id idalloc.ID) (*entity.Dendrite, bool) {
	net.dendriteMu.RLock()
	defer net.dendriteMu.RUnlock()
	d, ok := net.dendrites[id]
	return d, ok
}

func (net *Network) Synapse(id idalloc.ID) (*entity.Synapse, bool) {
	net.synapseMu.RLock()
	defer net.synapseMu.RUnlock()
	s, ok := net.synapses[id]
	return s, ok
}

func (net *Network) Axon(id idalloc.ID) (*entity.Axon, bool) {
	net.axonMu.RLock()
	defer net.axonMu.RUnlock()
	a, ok := net.axons[id]
	return a, ok
}

// DeliverForward routes a forward spike to its target dendrite's neuron,
// inserting the event time into that neuron's rolling window. If the
// neuron fires as a result, the installed FireHandler (if any) is invoked
// with the neuron's ID and the firing time.
func (net *Network) DeliverForward(ev ForwardSpike) error {
	d, ok := net.Dendrite(ev.DendriteID)
	if !ok {
		return fmt.Errorf("%w: dendrite %d", errs.ErrUnknownEntity, ev.DendriteID)
	}
	n, ok := net.Neuron(d.TargetNeuronID)
	if !ok {
		return fmt.Errorf("%w: neuron %d", errs.ErrUnknownEntity, d.TargetNeuronID)
	}

	fired := n.InsertSpike(ev.Time)
	if fired {
		net.handlerMu.RLock()
		h := net.onFire
		net.handlerMu.RUnlock()
		if h != nil {
			h(n.ID, ev.Time)
		}
	}
	return nil
}

// DeliverRetrograde routes a retrograde spike to its synapse and applies
// the STDP weight delta computed from its temporal offset.
func (net *Network) DeliverRetrograde(ev RetrogradeSpike, params STDPParams) error {
	s, ok := net.Synapse(ev.SynapseID)
	if !ok {
		return fmt.Errorf("%w: synapse %d", errs.ErrUnknownEntity, ev.SynapseID)
	}
	delta := params.Delta(float64(ev.TemporalOffsetMS))
	s.ApplyDelta(delta)
	return nil
}
