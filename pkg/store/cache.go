package store

import (
	"sync"

	"github.com/axontrace/spikenet/pkg/entity"
	"github.com/axontrace/spikenet/pkg/idalloc"
)

// cacheNode is one entry in the LRU recency chain: the cached entity, its
// dirty flag, and the doubly-linked-list pointers that track access order.
type cacheNode struct {
	id    idalloc.ID
	value entity.Entity
	dirty bool

	prev, next *cacheNode
}

// Cache is the bounded LRU recency structure fronting the backing store.
// Promote-on-access is O(1) via the id->node map; eviction always drops the
// tail (least-recently-used) node. Callers (ObjectStore) own flushing a
// dirty node to the backing store before it is discarded.
type Cache struct {
	mu       sync.Mutex
	capacity int
	nodes    map[idalloc.ID]*cacheNode
	head     *cacheNode // most recently used
	tail     *cacheNode // least recently used

	hits, misses uint64
}

// NewCache builds an empty cache bounded to capacity entries.
func NewCache(capacity int) *Cache {
	return &Cache{
		capacity: capacity,
		nodes:    make(map[idalloc.ID]*cacheNode),
	}
}

// Get returns the cached value for id, promoting it to most-recently-used
// and incrementing the hit counter. A miss increments the miss counter and
// returns ok=false.
func (c *Cache) Get(id idalloc.ID) (entity.Entity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.nodes[id]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	c.promote(n)
	return n.value, true
}

// Insert adds or replaces the cached value for id, marking it dirty if
// dirty is true (an existing dirty flag is never cleared by Insert — only
// an explicit flush does that). It always promotes to most-recently-used.
// If the insert pushes the cache over capacity, the evicted node is
// returned so the caller can flush it before it is gone for good.
func (c *Cache) Insert(id idalloc.ID, value entity.Entity, dirty bool) (evicted *cacheNode) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.nodes[id]; ok {
		n.value = value
		if dirty {
			n.dirty = true
		}
		c.promote(n)
		return nil
	}

	n := &cacheNode{id: id, value: value, dirty: dirty}
	c.nodes[id] = n
	c.pushFront(n)

	if c.capacity > 0 && len(c.nodes) > c.capacity {
		evicted = c.tail
		c.unlinkAndDrop(evicted)
	}
	return evicted
}

// MarkDirty flags id's cached entry dirty, reporting whether it was present.
func (c *Cache) MarkDirty(id idalloc.ID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.nodes[id]
	if !ok {
		return false
	}
	n.dirty = true
	return true
}

// Remove drops id from the cache unconditionally (no implicit flush — a
// caller that wants flush-then-drop semantics reads the returned value and
// dirty flag and writes it back itself).
func (c *Cache) Remove(id idalloc.ID) (value entity.Entity, dirty bool, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.nodes[id]
	if !ok {
		return nil, false, false
	}
	c.unlinkAndDrop(n)
	return n.value, n.dirty, true
}

// ClearDirty resets id's dirty flag after a successful flush.
func (c *Cache) ClearDirty(id idalloc.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.nodes[id]; ok {
		n.dirty = false
	}
}

// DirtySnapshot returns every currently dirty node. The slice is a
// point-in-time copy of the node pointers; mutating a node's dirty flag
// through ClearDirty is still reflected since the pointers are shared.
func (c *Cache) DirtySnapshot() []*cacheNode {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []*cacheNode
	for _, n := range c.nodes {
		if n.dirty {
			out = append(out, n)
		}
	}
	return out
}

// Len reports the current number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.nodes)
}

// Stats returns cumulative hit/miss counters.
func (c *Cache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// promote moves n to the head of the recency list. Caller holds c.mu.
func (c *Cache) promote(n *cacheNode) {
	if c.head == n {
		return
	}
	c.unlink(n)
	c.pushFront(n)
}

// unlink removes n from the recency list without touching the node map.
// Caller holds c.mu.
func (c *Cache) unlink(n *cacheNode) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}
	n.prev, n.next = nil, nil
}

// pushFront inserts n as the new most-recently-used node. Caller holds c.mu.
func (c *Cache) pushFront(n *cacheNode) {
	n.prev = nil
	n.next = c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
}

// unlinkAndDrop removes n from both the recency list and the node map.
// Caller holds c.mu.
func (c *Cache) unlinkAndDrop(n *cacheNode) {
	c.unlink(n)
	delete(c.nodes, n.id)
}
