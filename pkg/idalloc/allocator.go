// Package idalloc mints typed 64-bit identifiers partitioned into disjoint
// per-kind ranges, one monotonic counter per kind behind a single mutex.
package idalloc

import (
	"fmt"
	"sync"

	"github.com/axontrace/spikenet/pkg/errs"
)

// Kind identifies an entity type that owns a contiguous ID range.
type Kind int

const (
	KindUnknown Kind = iota
	KindNeuron
	KindAxon
	KindDendrite
	KindSynapse
	KindCluster
	KindLayer
	KindColumn
	KindNucleus
	KindRegion
	KindLobe
	KindHemisphere
	KindBrain
)

func (k Kind) String() string {
	switch k {
	case KindNeuron:
		return "Neuron"
	case KindAxon:
		return "Axon"
	case KindDendrite:
		return "Dendrite"
	case KindSynapse:
		return "Synapse"
	case KindCluster:
		return "Cluster"
	case KindLayer:
		return "Layer"
	case KindColumn:
		return "Column"
	case KindNucleus:
		return "Nucleus"
	case KindRegion:
		return "Region"
	case KindLobe:
		return "Lobe"
	case KindHemisphere:
		return "Hemisphere"
	case KindBrain:
		return "Brain"
	default:
		return "Unknown"
	}
}

// rangeSpan is 10^14, the width every kind's ID range owns.
const rangeSpan uint64 = 100_000_000_000_000

type span struct {
	start, end uint64 // inclusive
}

// ranges maps each Kind to its span; KindUnknown has no entry.
var ranges = map[Kind]span{
	KindNeuron:     {100_000_000_000_000, 199_999_999_999_999},
	KindAxon:       {200_000_000_000_000, 299_999_999_999_999},
	KindDendrite:   {300_000_000_000_000, 399_999_999_999_999},
	KindSynapse:    {400_000_000_000_000, 499_999_999_999_999},
	KindCluster:    {500_000_000_000_000, 599_999_999_999_999},
	KindLayer:      {600_000_000_000_000, 699_999_999_999_999},
	KindColumn:     {700_000_000_000_000, 799_999_999_999_999},
	KindNucleus:    {800_000_000_000_000, 899_999_999_999_999},
	KindRegion:     {900_000_000_000_000, 999_999_999_999_999},
	KindLobe:       {1_000_000_000_000_000, 1_099_999_999_999_999},
	KindHemisphere: {1_100_000_000_000_000, 1_199_999_999_999_999},
	KindBrain:      {1_200_000_000_000_000, 1_299_999_999_999_999},
}

// ID is the concrete 64-bit identifier minted by Allocator.
type ID uint64

// KindOf recovers an ID's kind by range test. Returns KindUnknown if the
// value falls outside every registered range.
func KindOf(id ID) Kind {
	v := uint64(id)
	for k, s := range ranges {
		if v >= s.start && v <= s.end {
			return k
		}
	}
	return KindUnknown
}

// Allocator mints monotonically increasing IDs per kind under one mutex.
type Allocator struct {
	mu      sync.Mutex
	current map[Kind]uint64 // next value to hand out; an absent key means "start of range"
}

// New creates an allocator with every counter at its range start.
func New() *Allocator {
	return &Allocator{current: make(map[Kind]uint64, len(ranges))}
}

// Next mints the next ID for kind, O(1) under the allocator's single lock.
func (a *Allocator) Next(kind Kind) (ID, error) {
	s, ok := ranges[kind]
	if !ok {
		return 0, fmt.Errorf("%w: %v", errs.ErrUnknownKind, kind)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	next, seen := a.current[kind]
	if !seen {
		next = s.start
	}
	if next > s.end {
		return 0, fmt.Errorf("%w: kind %v", errs.ErrIDSpaceExhausted, kind)
	}
	a.current[kind] = next + 1
	return ID(next), nil
}

// Count returns how many IDs have been minted for kind so far.
func (a *Allocator) Count(kind Kind) uint64 {
	s, ok := ranges[kind]
	if !ok {
		return 0
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	next, seen := a.current[kind]
	if !seen {
		return 0
	}
	return next - s.start
}

// Current returns the next ID that Next(kind) would mint, without minting it.
func (a *Allocator) Current(kind Kind) (ID, bool) {
	s, ok := ranges[kind]
	if !ok {
		return 0, false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	next, seen := a.current[kind]
	if !seen {
		return ID(s.start), true
	}
	return ID(next), true
}

// Reset returns every counter to its kind's range start. For test use only:
// it leaves previously minted IDs in collision territory, so callers must
// purge all dependent state (store, registries) alongside a Reset.
func (a *Allocator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = make(map[Kind]uint64, len(ranges))
}

// RangeOf returns the inclusive [start, end] range owned by kind.
func RangeOf(kind Kind) (start, end uint64, ok bool) {
	s, ok := ranges[kind]
	return s.start, s.end, ok
}
