// Package store implements the durable K->record map fronted by a bounded
// LRU write-back cache: ObjectStore composes Cache (recency +
// dirty tracking), Backing (the on-disk WAL'd data files), and an
// entity.Registry (type-tag dispatch) into the single public surface
// clients use to read and write neural objects.
package store

import (
	"log"
	"os"
	"time"

	"github.com/axontrace/spikenet/pkg/entity"
	"github.com/axontrace/spikenet/pkg/idalloc"
	"github.com/axontrace/spikenet/pkg/profiler"
)

// ObjectStore is the public object persistence surface: put, get,
// mark_dirty, remove, register_factory, cache_stats, cache_size, flush.
type ObjectStore struct {
	backing  *Backing
	cache    *Cache
	registry *entity.Registry
	profiler *profiler.Profiler
}

// NewObjectStore opens a backing store rooted at basePath and wraps it in a
// cache bounded to cacheCapacity entries, pre-registered with the four
// built-in entity factories.
func NewObjectStore(basePath string, cacheCapacity int, compress bool) (*ObjectStore, error) {
	b, err := NewBacking(basePath, compress)
	if err != nil {
		return nil, err
	}
	return &ObjectStore{
		backing:  b,
		cache:    NewCache(cacheCapacity),
		registry: entity.NewRegistry(),
		profiler: profiler.New(),
	}, nil
}

// Profiler returns the store's operation-timing profiler (store.get,
// store.put, store.flush), read by the inspection surface.
func (s *ObjectStore) Profiler() *profiler.Profiler {
	return s.profiler
}

// RegisterFactory adds or replaces the deserialization factory for a type
// tag. Expected to happen at startup, before concurrent Get traffic begins.
func (s *ObjectStore) RegisterFactory(tag string, f entity.Factory) {
	s.registry.Register(tag, f)
}

// Put inserts (or replaces) e in the cache, marked dirty. An LRU eviction
// triggered by the insert is flushed to the backing store before it is
// dropped.
func (s *ObjectStore) Put(e entity.Entity) error {
	defer s.profiler.Track("store.put")()

	evicted := s.cache.Insert(e.EntityID(), e, true)
	if evicted == nil {
		return nil
	}
	return s.flushNode(evicted)
}

// Get returns the entity stored under id, or (nil, nil) if it does not
// exist anywhere (cache miss followed by a backing-store miss). On a cache
// hit the entry is promoted to most-recently-used and the hit counter
// advances; on a miss, the record is read from the backing store,
// deserialized by dispatching on its type tag, and inserted into the cache
// not-dirty (any consequent LRU eviction is flushed first). An unknown type
// tag or malformed record is logged and treated as "not found" rather than
// an error, per the read-path contract.
func (s *ObjectStore) Get(id idalloc.ID) (entity.Entity, error) {
	defer s.profiler.Track("store.get")()

	if v, ok := s.cache.Get(id); ok {
		return v, nil
	}

	rec, err := s.backing.Read(id)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		log.Printf("⚠ store: read %d: %v", id, err)
		return nil, nil
	}

	e, err := s.registry.Decode(rec)
	if err != nil {
		log.Printf("⚠ store: decode %d: %v", id, err)
		return nil, nil
	}

	if evicted := s.cache.Insert(id, e, false); evicted != nil {
		if err := s.flushNode(evicted); err != nil {
			log.Printf("⚠ store: evict-flush %d: %v", evicted.id, err)
		}
	}
	return e, nil
}

// MarkDirty flags id's cached entry dirty, a no-op if it is not cached.
func (s *ObjectStore) MarkDirty(id idalloc.ID) {
	s.cache.MarkDirty(id)
}

// Remove deletes id from both the cache and the backing store. Ordinary LRU
// eviction always flushes first (Put/Get above); this whole-entity Remove
// instead discards any cached copy outright, since the backing record is
// deleted in the same call regardless of what a flush would have written.
func (s *ObjectStore) Remove(id idalloc.ID) error {
	s.cache.Remove(id)
	return s.backing.Delete(id)
}

// Flush walks every dirty cache entry and writes it to the backing store
// without evicting it. After Flush returns successfully, no entry is dirty.
func (s *ObjectStore) Flush() error {
	defer s.profiler.Track("store.flush")()

	var firstErr error
	for _, n := range s.cache.DirtySnapshot() {
		if err := s.flushNode(n); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// CacheStats returns cumulative cache hit/miss counters.
func (s *ObjectStore) CacheStats() (hits, misses uint64) {
	return s.cache.Stats()
}

// CacheSize returns the current number of cached entries.
func (s *ObjectStore) CacheSize() int {
	return s.cache.Len()
}

// StartFlushWorker launches a ticker-driven background goroutine that calls
// Flush every interval. Sending on (or closing) the returned channel stops
// it; the caller should follow with a final synchronous Flush to cover
// anything dirtied between the last tick and shutdown.
func (s *ObjectStore) StartFlushWorker(interval time.Duration) chan struct{} {
	stop := make(chan struct{})
	if interval <= 0 {
		return stop
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if err := s.Flush(); err != nil {
					log.Printf("⚠ store: background flush: %v", err)
				}
			}
		}
	}()
	return stop
}

// StartChecksumValidationWorker launches a ticker-driven background
// goroutine that re-validates every on-disk record every interval, logging
// (but not repairing) any corrupt IDs found.
func (s *ObjectStore) StartChecksumValidationWorker(interval time.Duration) chan struct{} {
	stop := make(chan struct{})
	if interval <= 0 {
		return stop
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				checked, corrupt, err := s.backing.ValidateAll()
				if err != nil {
					log.Printf("⚠ store: checksum validation: %v", err)
					continue
				}
				if len(corrupt) > 0 {
					log.Printf("⚠ store: checksum validation found %d corrupt record(s) of %d checked: %v", len(corrupt), checked, corrupt)
				}
			}
		}
	}()
	return stop
}

// flushNode encodes and writes n's current value to the backing store,
// clearing its dirty flag on success.
func (s *ObjectStore) flushNode(n *cacheNode) error {
	rec, err := entity.Encode(n.value)
	if err != nil {
		return err
	}
	if err := s.backing.Write(n.id, rec); err != nil {
		return err
	}
	s.cache.ClearDirty(n.id)
	return nil
}
