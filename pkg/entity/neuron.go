package entity

import (
	"sync"

	"github.com/axontrace/spikenet/pkg/assert"
	"github.com/axontrace/spikenet/pkg/idalloc"
	"github.com/axontrace/spikenet/pkg/pattern"
	"github.com/axontrace/spikenet/pkg/strategy"
)

// Neuron holds a rolling spike window and a bank of reference patterns
// compared against that window to decide when to fire. Pattern-bank mutation
// is delegated to a configured strategy.Strategy; the neuron itself only
// owns the buffer, the bank storage, and the locking around both.
type Neuron struct {
	ID                  idalloc.ID     `msgpack:"id"`
	WindowSizeMS        int64          `msgpack:"window_size_ms"`
	SimilarityThreshold float64        `msgpack:"similarity_threshold"`
	AxonID              idalloc.ID     `msgpack:"axon_id"`
	DendriteIDs         []idalloc.ID   `msgpack:"dendrite_ids"`
	SpikeBuffer         []int64        `msgpack:"spike_buffer"`
	Bank                *strategy.Bank `msgpack:"bank"`
	StrategyCfg         strategy.Config `msgpack:"strategy_cfg"`

	mu   sync.Mutex       `msgpack:"-"`
	strat strategy.Strategy `msgpack:"-"`
}

func (n *Neuron) EntityID() idalloc.ID { return n.ID }
func (n *Neuron) TypeTag() string      { return TagNeuron }

// NewNeuron constructs a neuron whose bank is governed by the strategy
// described in cfg (cfg.MaxPatterns becomes the bank capacity).
func NewNeuron(id idalloc.ID, windowSizeMS int64, similarityThreshold float64, cfg strategy.Config) (*Neuron, error) {
	cfg.SimilarityThreshold = similarityThreshold
	strat, bank, err := strategy.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Neuron{
		ID:                  id,
		WindowSizeMS:        windowSizeMS,
		SimilarityThreshold: similarityThreshold,
		Bank:                bank,
		StrategyCfg:         cfg,
		strat:               strat,
	}, nil
}

// ensureStrategy lazily reconstructs the live strategy after deserialization,
// since strategy.Strategy values (closures, RNG state) are not themselves
// serialized — only the config that reproduces them is.
func (n *Neuron) ensureStrategy() strategy.Strategy {
	if n.strat == nil {
		n.strat, _, _ = strategy.New(n.StrategyCfg)
	}
	return n.strat
}

// AddDendrite records an incoming dendrite, deduplicating on insertion.
func (n *Neuron) AddDendrite(id idalloc.ID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, existing := range n.DendriteIDs {
		if existing == id {
			return
		}
	}
	n.DendriteIDs = append(n.DendriteIDs, id)
}

// RemoveDendrite removes id and reports whether it was present.
func (n *Neuron) RemoveDendrite(id idalloc.ID) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, existing := range n.DendriteIDs {
		if existing == id {
			n.DendriteIDs = append(n.DendriteIDs[:i], n.DendriteIDs[i+1:]...)
			return true
		}
	}
	return false
}

// InsertSpike appends t to the rolling buffer (callers must insert
// non-decreasing times), drops every prefix element older than
// t - WindowSizeMS, and reports whether the neuron fires as a result. The
// neuron never enqueues downstream events itself; that coupling belongs to
// the driver holding the fired signal.
func (n *Neuron) InsertSpike(t int64) (fired bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.SpikeBuffer = append(n.SpikeBuffer, t)
	cutoff := t - n.WindowSizeMS
	drop := 0
	for drop < len(n.SpikeBuffer) && n.SpikeBuffer[drop] < cutoff {
		drop++
	}
	if drop > 0 {
		n.SpikeBuffer = append([]int64{}, n.SpikeBuffer[drop:]...)
	}

	return n.shouldFireLocked()
}

// SpikeTimes returns a copy of the rolling buffer's current contents.
func (n *Neuron) SpikeTimes() []int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]int64(nil), n.SpikeBuffer...)
}

// ShouldFire reports whether the current buffer matches a same-length
// reference pattern at or above SimilarityThreshold. Empty buffers and
// zero-norm patterns never fire.
func (n *Neuron) ShouldFire() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.shouldFireLocked()
}

func (n *Neuron) shouldFireLocked() bool {
	if len(n.SpikeBuffer) == 0 || n.Bank == nil {
		return false
	}
	current := pattern.FromInt64(n.SpikeBuffer)
	_, sim := strategy.MostSimilar(n.Bank, current, pattern.CosineV)
	return sim >= n.SimilarityThreshold
}

// LearnCurrentPattern delegates to the configured strategy with the current
// buffer contents as the newly observed pattern. The returned error is
// non-nil only in strict mode (pkg/assert), when the strategy broke the
// bank-capacity invariant.
func (n *Neuron) LearnCurrentPattern() (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.SpikeBuffer) == 0 {
		return false, nil
	}
	current := pattern.FromInt64(n.SpikeBuffer)
	modified := n.ensureStrategy().Update(n.Bank, current, pattern.CosineV)
	err := assert.Require(len(n.Bank.Slots) <= n.Bank.Capacity,
		"neuron %d bank holds %d slots over capacity %d", n.ID, len(n.Bank.Slots), n.Bank.Capacity)
	return modified, err
}
