package entity

import (
	"testing"

	"github.com/axontrace/spikenet/pkg/idalloc"
	"github.com/axontrace/spikenet/pkg/strategy"
)

func newTestNeuron(t *testing.T, windowMS int64, threshold float64, capacity int) *Neuron {
	t.Helper()
	n, err := NewNeuron(idalloc.ID(100_000_000_000_001), windowMS, threshold, strategy.Config{
		Name:        "append",
		MaxPatterns: capacity,
	})
	if err != nil {
		t.Fatalf("NewNeuron: %v", err)
	}
	return n
}

func TestRollingWindowEvictsOldSpikes(t *testing.T) {
	n := newTestNeuron(t, 50, 0.95, 20)
	n.InsertSpike(10)
	n.InsertSpike(20)
	n.InsertSpike(30)
	fired := n.InsertSpike(85)

	if len(n.SpikeBuffer) != 1 || n.SpikeBuffer[0] != 85 {
		t.Fatalf("buffer = %v, want [85]", n.SpikeBuffer)
	}
	if fired {
		t.Fatalf("expected no fire with an empty bank")
	}
}

func TestPatternMatchFires(t *testing.T) {
	n := newTestNeuron(t, 50, 0.94, 20)
	n.InsertSpike(10)
	n.InsertSpike(20)
	n.InsertSpike(30)
	n.LearnCurrentPattern()

	n.InsertSpike(160)
	n.InsertSpike(170)
	fired := n.InsertSpike(180)

	if !fired {
		t.Fatalf("expected neuron to fire on third spike of matching pattern")
	}
}

func TestShouldFireEmptyBufferFalse(t *testing.T) {
	n := newTestNeuron(t, 50, 0.5, 4)
	if n.ShouldFire() {
		t.Fatalf("ShouldFire on empty buffer should be false")
	}
}

func TestEncodeDecodeRoundTripNeuron(t *testing.T) {
	n := newTestNeuron(t, 50, 0.9, 4)
	n.InsertSpike(1)
	n.InsertSpike(2)
	n.LearnCurrentPattern()

	rec, err := Encode(n)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if rec.Type != TagNeuron {
		t.Fatalf("Type = %q, want %q", rec.Type, TagNeuron)
	}

	reg := NewRegistry()
	decoded, err := reg.Decode(rec)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got := decoded.(*Neuron)
	if got.ID != n.ID || len(got.SpikeBuffer) != len(n.SpikeBuffer) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, n)
	}
}

func TestEncodeDecodeRoundTripSynapse(t *testing.T) {
	s := &Synapse{ID: 400_000_000_000_001, AxonID: 200_000_000_000_001, DendriteID: 300_000_000_000_001, Weight: 0.5, DelayMS: 3}
	rec, err := Encode(s)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	reg := NewRegistry()
	decoded, err := reg.Decode(rec)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got := decoded.(*Synapse)
	if *got != *s {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, s)
	}
}

func TestDecodeUnknownTagFails(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Decode(Record{Type: "NotARealTag"}); err == nil {
		t.Fatalf("expected unknown type tag error")
	}
}

func TestAxonSynapseDedup(t *testing.T) {
	a := &Axon{ID: 200_000_000_000_001}
	a.AddSynapse(1)
	a.AddSynapse(1)
	if len(a.SynapseIDs) != 1 {
		t.Fatalf("expected dedup, got %v", a.SynapseIDs)
	}
	if !a.RemoveSynapse(1) {
		t.Fatalf("expected removal to report success")
	}
	if a.RemoveSynapse(1) {
		t.Fatalf("expected second removal to report failure")
	}
}

func TestSynapseApplyDeltaClamps(t *testing.T) {
	s := &Synapse{Weight: 0.003}
	s.ApplyDelta(-1)
	if s.Weight != 0 {
		t.Fatalf("weight = %v, want clamped to 0", s.Weight)
	}
	s.Weight = 1.99
	s.ApplyDelta(1)
	if s.Weight != 2 {
		t.Fatalf("weight = %v, want clamped to 2", s.Weight)
	}
}
