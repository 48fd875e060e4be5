// Package scheduler implements the spike scheduler: a circular time-wheel
// of event slots, a background tick thread advancing simulation time, and
// fan-out of each slot's events to a worker pool for delivery and STDP
// application. The tick-loop/daemon shape uses a context-cancel lifecycle,
// a ctx.Done()-guarded interval loop, and mutex-protected stats.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/axontrace/spikenet/pkg/errs"
	"github.com/axontrace/spikenet/pkg/network"
	"github.com/axontrace/spikenet/pkg/workerpool"
)

// State is the scheduler's lifecycle state.
type State int

const (
	Idle State = iota
	Running
	Stopping
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	default:
		return "idle"
	}
}

// activeThreadCeiling bounds the in-flight delivery-goroutine bookkeeping
// deque; once it grows past this, the tick loop joins the oldest handles
// synchronously rather than letting the deque grow unbounded.
const activeThreadCeiling = 100

// Config configures a new Scheduler.
type Config struct {
	NumSlots        int
	DtMS            int64
	DeliveryThreads int
	RealTime        bool
	STDP            network.STDPParams
}

// Scheduler is the rotating time-bucketed event wheel:
// a circular buffer of NumSlots slots covering
// [now, now+NumSlots*dt) of simulation time, with one tick goroutine
// advancing time and a worker pool performing delivery.
type Scheduler struct {
	net  *network.Network
	pool *workerpool.Pool

	dtMS            int64
	deliveryThreads int
	realTime        bool

	queueMu          sync.Mutex
	slots            [][]network.Event
	currentTime      int64
	currentSlotIndex int

	stdpMu sync.RWMutex
	stdp   network.STDPParams

	lifecycleState State
	stateMu        sync.Mutex

	startWall time.Time

	activeMu sync.Mutex
	active   []chan struct{}

	timingMu   sync.Mutex
	totalIterUS int64
	maxIterUS   int64
	iterCount   int64
	driftMS     int64

	ctx    context.Context
	cancel context.CancelFunc
	tickWG sync.WaitGroup
}

// New constructs a Scheduler bound to net and pool. The scheduler does not
// own pool's lifecycle; callers start/stop it independently.
func New(cfg Config, net *network.Network, pool *workerpool.Pool) *Scheduler {
	if cfg.NumSlots < 1 {
		cfg.NumSlots = 1
	}
	if cfg.DtMS < 1 {
		cfg.DtMS = 1
	}
	if cfg.DeliveryThreads < 1 {
		cfg.DeliveryThreads = 1
	}
	return &Scheduler{
		net:             net,
		pool:            pool,
		dtMS:            cfg.DtMS,
		deliveryThreads: cfg.DeliveryThreads,
		realTime:        cfg.RealTime,
		slots:           make([][]network.Event, cfg.NumSlots),
		stdp:            cfg.STDP,
		lifecycleState:  Idle,
	}
}

// State reports the current lifecycle state.
func (s *Scheduler) State() State {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.lifecycleState
}

// Start transitions Idle -> Running and launches the tick goroutine.
func (s *Scheduler) Start() error {
	s.stateMu.Lock()
	if s.lifecycleState == Running {
		s.stateMu.Unlock()
		return errs.ErrAlreadyRunning
	}
	s.lifecycleState = Running
	s.stateMu.Unlock()

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.startWall = time.Now()
	s.tickWG.Add(1)
	go s.tickLoop()
	return nil
}

// Stop transitions Running -> Stopping, cancels the tick loop, joins it and
// every outstanding delivery-goroutine handle, then settles in Idle.
func (s *Scheduler) Stop() {
	s.stateMu.Lock()
	if s.lifecycleState != Running {
		s.stateMu.Unlock()
		return
	}
	s.lifecycleState = Stopping
	s.stateMu.Unlock()

	s.cancel()
	s.tickWG.Wait()

	s.activeMu.Lock()
	pending := s.active
	s.active = nil
	s.activeMu.Unlock()
	for _, done := range pending {
		<-done
	}

	s.queueMu.Lock()
	for i := range s.slots {
		s.slots[i] = nil
	}
	s.queueMu.Unlock()

	s.stateMu.Lock()
	s.lifecycleState = Idle
	s.stateMu.Unlock()
}

// ScheduleForward schedules a forward spike delivery.
func (s *Scheduler) ScheduleForward(ev network.ForwardSpike) error {
	return s.schedule(ev)
}

// ScheduleRetrograde schedules a retrograde (STDP) delivery.
func (s *Scheduler) ScheduleRetrograde(ev network.RetrogradeSpike) error {
	return s.schedule(ev)
}

func (s *Scheduler) schedule(ev network.Event) error {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()

	n := int64(len(s.slots))
	delta := ev.ScheduledTime() - s.currentTime
	if delta < 0 {
		return errs.ErrOutOfWindow
	}
	slot := delta / s.dtMS
	if slot >= n {
		return errs.ErrOutOfWindow
	}

	idx := (int64(s.currentSlotIndex) + slot) % n
	s.slots[idx] = append(s.slots[idx], ev)
	return nil
}

// PendingCount sums the lengths of every slot.
func (s *Scheduler) PendingCount() int {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()
	total := 0
	for _, slot := range s.slots {
		total += len(slot)
	}
	return total
}

// PendingInSlot reports the queue length of one specific slot index.
func (s *Scheduler) PendingInSlot(i int) int {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()
	if i < 0 || i >= len(s.slots) {
		return 0
	}
	return len(s.slots[i])
}

// SetSTDPParams updates the STDP constants applied to future retrograde
// deliveries.
func (s *Scheduler) SetSTDPParams(p network.STDPParams) {
	s.stdpMu.Lock()
	defer s.stdpMu.Unlock()
	s.stdp = p
}

// STDPParams returns the currently configured STDP constants.
func (s *Scheduler) STDPParams() network.STDPParams {
	s.stdpMu.RLock()
	defer s.stdpMu.RUnlock()
	return s.stdp
}

// TimingStats returns the average and max per-iteration wall duration in
// microseconds, plus the most recently observed real-time drift in ms.
func (s *Scheduler) TimingStats() (avgIterUS, maxIterUS, driftMS int64) {
	s.timingMu.Lock()
	defer s.timingMu.Unlock()
	if s.iterCount == 0 {
		return 0, 0, s.driftMS
	}
	return s.totalIterUS / s.iterCount, s.maxIterUS, s.driftMS
}

// tickLoop is the scheduler's single background tick thread.
func (s *Scheduler) tickLoop() {
	defer s.tickWG.Done()

	ticks := int64(0)
	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		start := time.Now()

		s.reapActive()

		batch := s.takeCurrentSlot()
		if len(batch) > 0 {
			s.dispatch(batch)
		}

		s.advance()

		elapsed := time.Since(start)
		s.recordIteration(elapsed)

		if s.realTime {
			s.syncRealTime(ticks)
		} else if elapsed < time.Microsecond {
			time.Sleep(10 * time.Microsecond)
		}

		ticks++
		if s.realTime && ticks%1000 == 0 {
			avg, max, drift := s.TimingStats()
			log.Printf("scheduler: tick %d avg_iter_us=%d max_iter_us=%d drift_ms=%d", ticks, avg, max, drift)
		}

		select {
		case <-s.ctx.Done():
			return
		default:
		}
	}
}

func (s *Scheduler) takeCurrentSlot() []network.Event {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()
	idx := s.currentSlotIndex
	batch := s.slots[idx]
	s.slots[idx] = nil
	return batch
}

func (s *Scheduler) advance() {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()
	s.currentTime += s.dtMS
	s.currentSlotIndex = (s.currentSlotIndex + 1) % len(s.slots)
}

func (s *Scheduler) recordIteration(elapsed time.Duration) {
	us := elapsed.Microseconds()
	s.timingMu.Lock()
	defer s.timingMu.Unlock()
	s.totalIterUS += us
	s.iterCount++
	if us > s.maxIterUS {
		s.maxIterUS = us
	}
}

func (s *Scheduler) syncRealTime(tick int64) {
	wallNow := time.Now()
	targetWall := s.startWall.Add(time.Duration(s.currentTime) * time.Millisecond)
	drift := wallNow.Sub(targetWall)

	s.timingMu.Lock()
	s.driftMS = drift.Milliseconds()
	s.timingMu.Unlock()

	if drift < 0 {
		time.Sleep(-drift)
		return
	}
	if drift > 10*time.Millisecond {
		s.activeMu.Lock()
		n := len(s.active)
		s.activeMu.Unlock()
		log.Printf("scheduler: drift %s exceeds 10ms, %d delivery goroutines active", drift, n)
	}
}

// dispatch spawns a fresh delivery goroutine for the slot's batch so the
// tick thread never blocks on pool contention. That goroutine chunks the
// batch across deliveryThreads pool tasks and waits for all chunks before
// signalling done.
func (s *Scheduler) dispatch(batch []network.Event) {
	done := make(chan struct{})
	s.trackActive(done)

	go func() {
		defer close(done)

		chunks := chunk(batch, s.deliveryThreads)
		futures := make([]*workerpool.Future, 0, len(chunks))
		stdp := s.STDPParams()
		for _, c := range chunks {
			c := c
			futures = append(futures, s.pool.Enqueue(func() (any, error) {
				s.deliverChunk(c, stdp)
				return nil, nil
			}))
		}
		for _, f := range futures {
			f.Wait()
		}
	}()
}

func (s *Scheduler) deliverChunk(events []network.Event, stdp network.STDPParams) {
	for _, ev := range events {
		switch e := ev.(type) {
		case network.ForwardSpike:
			if err := s.net.DeliverForward(e); err != nil {
				log.Printf("scheduler: dropping forward spike: %v", err)
			}
		case network.RetrogradeSpike:
			if err := s.net.DeliverRetrograde(e, stdp); err != nil {
				log.Printf("scheduler: dropping retrograde spike: %v", err)
			}
		default:
			log.Printf("scheduler: dropping event of unknown type %T", ev)
		}
	}
}

// trackActive appends done to the active-delivery bookkeeping deque,
// joining the oldest handles synchronously once the ceiling is exceeded.
func (s *Scheduler) trackActive(done chan struct{}) {
	s.activeMu.Lock()
	s.active = append(s.active, done)
	var stale []chan struct{}
	if len(s.active) > activeThreadCeiling {
		overflow := len(s.active) - activeThreadCeiling
		stale = append(stale, s.active[:overflow]...)
		s.active = s.active[overflow:]
	}
	s.activeMu.Unlock()

	for _, d := range stale {
		<-d
	}
}

// reapActive drops handles for delivery goroutines that have already
// terminated, keeping the bookkeeping deque from growing on idle ticks.
func (s *Scheduler) reapActive() {
	s.activeMu.Lock()
	defer s.activeMu.Unlock()

	live := s.active[:0]
	for _, d := range s.active {
		select {
		case <-d:
		default:
			live = append(live, d)
		}
	}
	s.active = live
}

func chunk(events []network.Event, n int) [][]network.Event {
	if n < 1 {
		n = 1
	}
	if len(events) == 0 {
		return nil
	}
	if n > len(events) {
		n = len(events)
	}
	chunks := make([][]network.Event, 0, n)
	base := len(events) / n
	rem := len(events) % n
	start := 0
	for i := 0; i < n; i++ {
		size := base
		if i < rem {
			size++
		}
		if size == 0 {
			continue
		}
		chunks = append(chunks, events[start:start+size])
		start += size
	}
	return chunks
}
