package topology

import (
	"math/rand"
	"testing"

	"github.com/axontrace/spikenet/pkg/entity"
	"github.com/axontrace/spikenet/pkg/idalloc"
	"github.com/axontrace/spikenet/pkg/network"
	"github.com/axontrace/spikenet/pkg/strategy"
)

func newTestNeuron(t *testing.T, id idalloc.ID) *entity.Neuron {
	t.Helper()
	cfg := strategy.Config{Name: "append", MaxPatterns: 4, SimilarityThreshold: 0.5}
	n, err := entity.NewNeuron(id, 100, 0.1, cfg)
	if err != nil {
		t.Fatalf("NewNeuron: %v", err)
	}
	return n
}

func TestAllToAllGeneratesEveryPair(t *testing.T) {
	sources := []idalloc.ID{1, 2}
	targets := []idalloc.ID{10, 20, 30}

	conns := AllToAll{Weight: 0.5, DelayMS: 3}.Generate(sources, targets)
	if len(conns) != len(sources)*len(targets) {
		t.Fatalf("len(conns) = %d, want %d", len(conns), len(sources)*len(targets))
	}
	for _, c := range conns {
		if c.Weight != 0.5 || c.DelayMS != 3 {
			t.Fatalf("connection %+v does not carry configured weight/delay", c)
		}
	}
}

func TestOneToOneBoundsOnShorterSlice(t *testing.T) {
	sources := []idalloc.ID{1, 2, 3}
	targets := []idalloc.ID{10, 20}

	conns := OneToOne{Weight: 1, DelayMS: 1}.Generate(sources, targets)
	if len(conns) != 2 {
		t.Fatalf("len(conns) = %d, want 2", len(conns))
	}
	if conns[0].SourceNeuronID != 1 || conns[0].TargetNeuronID != 10 {
		t.Fatalf("conns[0] = %+v, want source=1 target=10", conns[0])
	}
	if conns[1].SourceNeuronID != 2 || conns[1].TargetNeuronID != 20 {
		t.Fatalf("conns[1] = %+v, want source=2 target=20", conns[1])
	}
}

func TestManyToOneMatchesAllToAll(t *testing.T) {
	sources := []idalloc.ID{1, 2}
	targets := []idalloc.ID{10}

	got := ManyToOne{Weight: 1, DelayMS: 2}.Generate(sources, targets)
	want := AllToAll{Weight: 1, DelayMS: 2}.Generate(sources, targets)
	if len(got) != len(want) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(want))
	}
}

func TestRandomSparseRespectsProbabilityZeroAndOne(t *testing.T) {
	sources := []idalloc.ID{1, 2, 3}
	targets := []idalloc.ID{10, 20, 30}

	none := RandomSparse{Probability: 0, Weight: 1, DelayMS: 1}.Generate(sources, targets)
	if len(none) != 0 {
		t.Fatalf("probability 0 produced %d connections, want 0", len(none))
	}

	all := RandomSparse{Probability: 1, Weight: 1, DelayMS: 1}.Generate(sources, targets)
	if len(all) != len(sources)*len(targets) {
		t.Fatalf("probability 1 produced %d connections, want %d", len(all), len(sources)*len(targets))
	}
}

func TestRandomSparseDeterministicWithSeededRand(t *testing.T) {
	sources := []idalloc.ID{1, 2, 3, 4, 5}
	targets := []idalloc.ID{10, 20, 30, 40, 50}
	pattern := RandomSparse{Probability: 0.4, Weight: 1, DelayMS: 1, Rand: rand.New(rand.NewSource(7))}

	first := pattern.Generate(sources, targets)
	pattern.Rand = rand.New(rand.NewSource(7))
	second := pattern.Generate(sources, targets)

	if len(first) != len(second) {
		t.Fatalf("len(first) = %d, len(second) = %d, want equal for the same seed", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("connection %d differs between identically seeded runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestBuildWiresAxonDendriteSynapseBackLinks(t *testing.T) {
	alloc := idalloc.New()
	net := network.New()

	src := newTestNeuron(t, mustNext(t, alloc, idalloc.KindNeuron))
	tgt1 := newTestNeuron(t, mustNext(t, alloc, idalloc.KindNeuron))
	tgt2 := newTestNeuron(t, mustNext(t, alloc, idalloc.KindNeuron))
	net.RegisterNeuron(src)
	net.RegisterNeuron(tgt1)
	net.RegisterNeuron(tgt2)

	conns, err := Build(alloc, net, AllToAll{Weight: 0.75, DelayMS: 5},
		[]idalloc.ID{src.ID}, []idalloc.ID{tgt1.ID, tgt2.ID})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(conns) != 2 {
		t.Fatalf("len(conns) = %d, want 2", len(conns))
	}

	if src.AxonID == 0 {
		t.Fatal("source neuron's AxonID was never set")
	}
	axon, ok := net.Axon(src.AxonID)
	if !ok {
		t.Fatal("axon was not registered")
	}
	if len(axon.SynapseIDs) != 2 {
		t.Fatalf("axon carries %d synapses, want 2", len(axon.SynapseIDs))
	}

	for _, tgt := range []*entity.Neuron{tgt1, tgt2} {
		if len(tgt.DendriteIDs) != 1 {
			t.Fatalf("target neuron %d has %d dendrites, want 1", tgt.ID, len(tgt.DendriteIDs))
		}
		d, ok := net.Dendrite(tgt.DendriteIDs[0])
		if !ok {
			t.Fatalf("dendrite %d was not registered", tgt.DendriteIDs[0])
		}
		if d.TargetNeuronID != tgt.ID {
			t.Fatalf("dendrite target = %d, want %d", d.TargetNeuronID, tgt.ID)
		}
	}

	for _, c := range conns {
		found := false
		for _, sid := range axon.SynapseIDs {
			s, ok := net.Synapse(sid)
			if !ok {
				continue
			}
			if s.Weight == c.Weight && s.DelayMS == c.DelayMS {
				found = true
			}
		}
		if !found {
			t.Fatalf("no registered synapse matches connection %+v", c)
		}
	}
}

func TestBuildReusesOneAxonPerSource(t *testing.T) {
	alloc := idalloc.New()
	net := network.New()

	src := newTestNeuron(t, mustNext(t, alloc, idalloc.KindNeuron))
	tgt1 := newTestNeuron(t, mustNext(t, alloc, idalloc.KindNeuron))
	tgt2 := newTestNeuron(t, mustNext(t, alloc, idalloc.KindNeuron))
	net.RegisterNeuron(src)
	net.RegisterNeuron(tgt1)
	net.RegisterNeuron(tgt2)

	before := alloc.Count(idalloc.KindAxon)
	if _, err := Build(alloc, net, AllToAll{Weight: 1, DelayMS: 1}, []idalloc.ID{src.ID}, []idalloc.ID{tgt1.ID, tgt2.ID}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	after := alloc.Count(idalloc.KindAxon)
	if after-before != 1 {
		t.Fatalf("minted %d axons for one source neuron across two edges, want 1", after-before)
	}
}

func mustNext(t *testing.T, alloc *idalloc.Allocator, kind idalloc.Kind) idalloc.ID {
	t.Helper()
	id, err := alloc.Next(kind)
	if err != nil {
		t.Fatalf("Next(%v): %v", kind, err)
	}
	return id
}
