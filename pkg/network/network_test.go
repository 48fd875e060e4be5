package network

import (
	"errors"
	"math"
	"testing"

	"github.com/axontrace/spikenet/pkg/entity"
	"github.com/axontrace/spikenet/pkg/errs"
	"github.com/axontrace/spikenet/pkg/idalloc"
	"github.com/axontrace/spikenet/pkg/strategy"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

// LTP: w=0.5, dt=+10ms, APlus=0.01, TauPlus=20 -> delta ~= +0.00607.
func TestDeliverRetrogradeLTP(t *testing.T) {
	net := New()
	syn := &entity.Synapse{ID: idalloc.ID(1), Weight: 0.5}
	net.RegisterSynapse(syn)

	params := STDPParams{APlus: 0.01, AMinus: 0.012, TauPlus: 20, TauMinus: 20}
	err := net.DeliverRetrograde(RetrogradeSpike{SynapseID: idalloc.ID(1), TemporalOffsetMS: 10}, params)
	if err != nil {
		t.Fatalf("DeliverRetrograde: %v", err)
	}

	want := 0.5 + 0.01*math.Exp(-10.0/20.0)
	if !almostEqual(syn.Weight, want, 1e-5) {
		t.Fatalf("weight = %.6f, want ~%.6f", syn.Weight, want)
	}
	if !almostEqual(syn.Weight, 0.50607, 1e-4) {
		t.Fatalf("weight = %.6f, want ~0.50607", syn.Weight)
	}
}

// LTD with clamp: w=0.003, dt=-5ms, AMinus=0.012, TauMinus=20 ->
// delta ~= -0.00934, which drives the weight below WeightMin and must clamp
// to 0.
func TestDeliverRetrogradeLTDClampsAtZero(t *testing.T) {
	net := New()
	syn := &entity.Synapse{ID: idalloc.ID(2), Weight: 0.003}
	net.RegisterSynapse(syn)

	params := STDPParams{APlus: 0.01, AMinus: 0.012, TauPlus: 20, TauMinus: 20}
	err := net.DeliverRetrograde(RetrogradeSpike{SynapseID: idalloc.ID(2), TemporalOffsetMS: -5}, params)
	if err != nil {
		t.Fatalf("DeliverRetrograde: %v", err)
	}

	if syn.Weight != entity.WeightMin {
		t.Fatalf("weight = %.6f, want clamped to %v", syn.Weight, entity.WeightMin)
	}
}

func TestSTDPDeltaZeroAtSimultaneity(t *testing.T) {
	p := DefaultSTDPParams()
	if d := p.Delta(0); d != 0 {
		t.Fatalf("Delta(0) = %v, want exactly 0", d)
	}
}

func TestDeliverRetrogradeUnknownSynapse(t *testing.T) {
	net := New()
	err := net.DeliverRetrograde(RetrogradeSpike{SynapseID: idalloc.ID(99)}, DefaultSTDPParams())
	if !errors.Is(err, errs.ErrUnknownEntity) {
		t.Fatalf("err = %v, want wrapping ErrUnknownEntity", err)
	}
}

func TestDeliverForwardUnknownDendrite(t *testing.T) {
	net := New()
	err := net.DeliverForward(ForwardSpike{DendriteID: idalloc.ID(42)})
	if !errors.Is(err, errs.ErrUnknownEntity) {
		t.Fatalf("err = %v, want wrapping ErrUnknownEntity", err)
	}
}

func TestDeliverForwardInsertsSpikeWithoutFiringOnEmptyBank(t *testing.T) {
	net := New()

	cfg := strategy.Config{Name: "append", MaxPatterns: 4, SimilarityThreshold: 0.5}
	n, err := entity.NewNeuron(idalloc.ID(1), 100, 0.1, cfg)
	if err != nil {
		t.Fatalf("NewNeuron: %v", err)
	}
	net.RegisterNeuron(n)

	d := &entity.Dendrite{ID: idalloc.ID(10), TargetNeuronID: idalloc.ID(1)}
	net.RegisterDendrite(d)

	var firedID idalloc.ID
	var firedAt int64
	fireCount := 0
	net.SetFireHandler(func(neuronID idalloc.ID, at int64) {
		fireCount++
		firedID = neuronID
		firedAt = at
	})

	if err := net.DeliverForward(ForwardSpike{Time: 5, DendriteID: idalloc.ID(10), Weight: 1}); err != nil {
		t.Fatalf("DeliverForward: %v", err)
	}

	if len(n.SpikeBuffer) != 1 || n.SpikeBuffer[0] != 5 {
		t.Fatalf("SpikeBuffer = %v, want [5]", n.SpikeBuffer)
	}

	// An empty bank never matches, so shouldFireLocked reports false and the
	// handler must not have run.
	if fireCount != 0 {
		t.Fatalf("fireCount = %d, want 0 with an empty pattern bank (firedID=%d firedAt=%d)", fireCount, firedID, firedAt)
	}
}
