package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/axontrace/spikenet/pkg/entity"
	"github.com/axontrace/spikenet/pkg/errs"
	"github.com/axontrace/spikenet/pkg/idalloc"
	"github.com/axontrace/spikenet/pkg/network"
	"github.com/axontrace/spikenet/pkg/strategy"
	"github.com/axontrace/spikenet/pkg/workerpool"
)

func newTestScheduler(t *testing.T, numSlots int, dt int64) (*Scheduler, *network.Network, *workerpool.Pool) {
	t.Helper()
	net := network.New()
	pool := workerpool.New(2, 16)
	s := New(Config{
		NumSlots:        numSlots,
		DtMS:            dt,
		DeliveryThreads: 2,
		STDP:            network.DefaultSTDPParams(),
	}, net, pool)
	t.Cleanup(pool.Stop)
	return s, net, pool
}

func TestScheduleForwardOutOfWindow(t *testing.T) {
	s, _, _ := newTestScheduler(t, 10, 1)

	if err := s.ScheduleForward(network.ForwardSpike{Time: -1}); !errors.Is(err, errs.ErrOutOfWindow) {
		t.Fatalf("err = %v, want ErrOutOfWindow for negative time", err)
	}
	if err := s.ScheduleForward(network.ForwardSpike{Time: 100}); !errors.Is(err, errs.ErrOutOfWindow) {
		t.Fatalf("err = %v, want ErrOutOfWindow beyond the window", err)
	}
}

func TestScheduleForwardWithinWindowIsPending(t *testing.T) {
	s, _, _ := newTestScheduler(t, 10, 1)

	if err := s.ScheduleForward(network.ForwardSpike{Time: 5, DendriteID: idalloc.ID(1)}); err != nil {
		t.Fatalf("ScheduleForward: %v", err)
	}
	if got := s.PendingCount(); got != 1 {
		t.Fatalf("PendingCount() = %d, want 1", got)
	}
	if got := s.PendingInSlot(5); got != 1 {
		t.Fatalf("PendingInSlot(5) = %d, want 1", got)
	}
}

func TestStartStopLifecycle(t *testing.T) {
	s, _, _ := newTestScheduler(t, 10, 1)

	if s.State() != Idle {
		t.Fatalf("initial state = %v, want Idle", s.State())
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Start(); !errors.Is(err, errs.ErrAlreadyRunning) {
		t.Fatalf("second Start err = %v, want ErrAlreadyRunning", err)
	}

	s.Stop()
	if s.State() != Idle {
		t.Fatalf("state after Stop = %v, want Idle", s.State())
	}
}

// End-to-end: a forward spike scheduled two slots ahead is delivered to its
// dendrite's neuron once the tick loop advances past that slot.
func TestTickLoopDeliversForwardSpike(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping real-time tick loop test in short mode")
	}

	s, net, _ := newTestScheduler(t, 20, 1)

	d := &entity.Dendrite{ID: idalloc.ID(1), TargetNeuronID: idalloc.ID(10)}
	net.RegisterDendrite(d)

	n, err := entity.NewNeuron(idalloc.ID(10), 1000, 0.9, strategy.Config{
		Name:                "append",
		MaxPatterns:         4,
		SimilarityThreshold: 0.9,
	})
	if err != nil {
		t.Fatalf("NewNeuron: %v", err)
	}
	net.RegisterNeuron(n)

	if err := s.ScheduleForward(network.ForwardSpike{Time: 2, DendriteID: idalloc.ID(1)}); err != nil {
		t.Fatalf("ScheduleForward: %v", err)
	}

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	deadline := time.After(2 * time.Second)
	for {
		nd, _ := net.Dendrite(idalloc.ID(1))
		tn, ok := net.Neuron(nd.TargetNeuronID)
		if ok && len(tn.SpikeTimes()) > 0 {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for forward spike delivery")
		case <-time.After(5 * time.Millisecond):
		}
	}
}
