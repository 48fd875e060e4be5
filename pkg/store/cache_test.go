package store

import (
	"testing"

	"github.com/axontrace/spikenet/pkg/entity"
	"github.com/axontrace/spikenet/pkg/idalloc"
)

func TestCacheBoundByCapacity(t *testing.T) {
	c := NewCache(2)
	c.Insert(1, &entity.Dendrite{ID: 1}, false)
	c.Insert(2, &entity.Dendrite{ID: 2}, false)
	c.Insert(3, &entity.Dendrite{ID: 3}, false)

	if got := c.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}
}

func TestCacheLRUEvictsOldest(t *testing.T) {
	c := NewCache(2)
	c.Insert(1, &entity.Dendrite{ID: 1}, false)
	c.Insert(2, &entity.Dendrite{ID: 2}, false)

	// Touch 1 so 2 becomes the least-recently-used.
	c.Get(1)

	evicted := c.Insert(3, &entity.Dendrite{ID: 3}, false)
	if evicted == nil || evicted.id != idalloc.ID(2) {
		t.Fatalf("expected id 2 evicted, got %+v", evicted)
	}
	if _, ok := c.Get(1); !ok {
		t.Fatalf("id 1 should still be cached")
	}
	if _, ok := c.Get(2); ok {
		t.Fatalf("id 2 should have been evicted")
	}
}

func TestCacheDirtyEvictionReportedForFlush(t *testing.T) {
	c := NewCache(1)
	c.Insert(1, &entity.Dendrite{ID: 1}, true)
	evicted := c.Insert(2, &entity.Dendrite{ID: 2}, false)
	if evicted == nil || !evicted.dirty {
		t.Fatalf("expected dirty eviction of id 1, got %+v", evicted)
	}
}

func TestCacheHitMissCounters(t *testing.T) {
	c := NewCache(4)
	c.Insert(1, &entity.Dendrite{ID: 1}, false)

	c.Get(1)
	c.Get(99)

	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Fatalf("Stats() = (%d, %d), want (1, 1)", hits, misses)
	}
}

func TestCacheMarkDirtyAndClear(t *testing.T) {
	c := NewCache(4)
	c.Insert(1, &entity.Dendrite{ID: 1}, false)

	if !c.MarkDirty(1) {
		t.Fatalf("MarkDirty(1) should report present")
	}
	if c.MarkDirty(99) {
		t.Fatalf("MarkDirty(99) should report absent")
	}

	snap := c.DirtySnapshot()
	if len(snap) != 1 || snap[0].id != idalloc.ID(1) {
		t.Fatalf("DirtySnapshot() = %+v, want one entry for id 1", snap)
	}

	c.ClearDirty(1)
	if len(c.DirtySnapshot()) != 0 {
		t.Fatalf("expected no dirty entries after ClearDirty")
	}
}

func TestCacheRemove(t *testing.T) {
	c := NewCache(4)
	c.Insert(1, &entity.Dendrite{ID: 1}, true)

	value, dirty, ok := c.Remove(1)
	if !ok || !dirty || value.EntityID() != idalloc.ID(1) {
		t.Fatalf("Remove(1) = (%+v, %v, %v), want present+dirty", value, dirty, ok)
	}
	if c.Len() != 0 {
		t.Fatalf("Len() = %d after remove, want 0", c.Len())
	}
	if _, _, ok := c.Remove(1); ok {
		t.Fatalf("second Remove(1) should report absent")
	}
}
