// Package driver wires a fired neuron to downstream scheduling.
// Neuron.InsertSpike only reports whether the neuron fired; something
// outside the entity layer must turn that into newly scheduled events.
// Driver is that something, installed as the network's FireHandler.
package driver

import (
	"log"

	"github.com/axontrace/spikenet/pkg/idalloc"
	"github.com/axontrace/spikenet/pkg/network"
)

// scheduler is the subset of *scheduler.Scheduler the driver depends on.
// Declared locally so the driver does not import pkg/scheduler; tests
// substitute a recording fake.
type scheduler interface {
	ScheduleForward(ev network.ForwardSpike) error
}

// Driver propagates a fired neuron's spike along its axon to every
// downstream synapse, scheduling one forward spike per synapse delayed by
// the synapse's transmission delay and weighted by its current weight.
type Driver struct {
	net *network.Network
	sch scheduler
}

// New returns a Driver that schedules downstream events against sch using
// net's axon/synapse registries, and installs itself as net's FireHandler.
func New(net *network.Network, sch scheduler) *Driver {
	d := &Driver{net: net, sch: sch}
	net.SetFireHandler(d.onFire)
	return d
}

// onFire is invoked synchronously from within a delivery chunk whenever
// InsertSpike reports a fired neuron. It must not block for long: pool
// delivery capacity is shared, so scheduling failures are logged and
// dropped rather than retried.
func (d *Driver) onFire(neuronID idalloc.ID, firedAt int64) {
	n, ok := d.net.Neuron(neuronID)
	if !ok {
		return
	}
	axon, ok := d.net.Axon(n.AxonID)
	if !ok {
		return
	}

	for _, synID := range axon.SynapseIDs {
		syn, ok := d.net.Synapse(synID)
		if !ok {
			log.Printf("driver: axon %d references unknown synapse %d", axon.ID, synID)
			continue
		}
		ev := network.ForwardSpike{
			Time:       firedAt + syn.DelayMS,
			DendriteID: syn.DendriteID,
			Weight:     syn.CurrentWeight(),
		}
		if err := d.sch.ScheduleForward(ev); err != nil {
			log.Printf("driver: dropping downstream spike via synapse %d: %v", synID, err)
		}
	}
}
