package store

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// absent is the sentinel DataCache stores in place of a real item to
// remember that a key is known not to exist remotely, matching the
// teacher's use of a dedicated "not found" marker value in its cache path
// (db.Get) rather than simply omitting the entry.
type absentMarker struct{}

var absent = &absentMarker{}

// DataCache stores items by key with single-flight construction and LRU
// eviction keyed on last-reference order. The single-flight guarantee
// ("invoke ctor at most once per key across concurrent callers") is
// golang.org/x/sync/singleflight.Group, keyed on the string form of K;
// eviction is github.com/hashicorp/golang-lru/v2, whose Add/Get naturally
// bump an entry's recency on every touch, reproducing "LRU keyed on
// last_reference_time" without hand-rolled bookkeeping.
type DataCache[K comparable, T any] struct {
	items *lru.Cache[K, interface{}] // value is *DataItem[K,T] or absent
	sf    singleflight.Group
}

// NewDataCache creates a cache bounded to size entries. size must be > 0.
func NewDataCache[K comparable, T any](size int) (*DataCache[K, T], error) {
	l, err := lru.New[K, interface{}](size)
	if err != nil {
		return nil, err
	}
	return &DataCache[K, T]{items: l}, nil
}

func keyToken[K comparable](k K) string {
	return fmt.Sprintf("%v", k)
}

// GetOrCompute returns the cached item for k, constructing it with ctor at
// most once across concurrent callers (single-flight), and bumping its LRU
// recency either way.
func (c *DataCache[K, T]) GetOrCompute(k K, ctor func() *DataItem[K, T]) *DataItem[K, T] {
	if v, ok := c.items.Get(k); ok {
		if it, ok := v.(*DataItem[K, T]); ok {
			return it
		}
		// Known-absent marker: still resolve to a real (valueless) item via
		// the single-flight path below so callers always get a handle.
	}

	v, _, _ := c.sf.Do(keyToken(k), func() (interface{}, error) {
		if existing, ok := c.items.Get(k); ok {
			if it, ok := existing.(*DataItem[K, T]); ok {
				return it, nil
			}
		}
		it := ctor()
		c.items.Add(k, it)
		return it, nil
	})
	return v.(*DataItem[K, T])
}

// GetOrNull returns the cached item for k without constructing one.
func (c *DataCache[K, T]) GetOrNull(k K) *DataItem[K, T] {
	v, ok := c.items.Get(k)
	if !ok {
		return nil
	}
	it, _ := v.(*DataItem[K, T])
	return it
}

// MarkAbsent records that k is known not to exist remotely, unless an
// entry for k is already cached. IsKnownAbsent reports the mark;
// FindOneCached and FindOne do not consult it, so a later find_one for k
// still queries the table.
func (c *DataCache[K, T]) MarkAbsent(k K) {
	if _, ok := c.items.Get(k); ok {
		return
	}
	c.items.Add(k, absent)
}

// IsKnownAbsent reports whether k was previously marked absent and has not
// since been superseded by a real item.
func (c *DataCache[K, T]) IsKnownAbsent(k K) bool {
	v, ok := c.items.Peek(k)
	if !ok {
		return false
	}
	_, isAbsent := v.(*absentMarker)
	return isAbsent
}

// Remove evicts k from the cache unconditionally.
func (c *DataCache[K, T]) Remove(k K) {
	c.items.Remove(k)
}

// Range iterates all present (non-absent) items for a linear scan, in
// least-recently-used-first order as reported by the underlying LRU.
func (c *DataCache[K, T]) Range(fn func(k K, it *DataItem[K, T]) bool) {
	for _, k := range c.items.Keys() {
		v, ok := c.items.Peek(k)
		if !ok {
			continue
		}
		it, ok := v.(*DataItem[K, T])
		if !ok {
			continue
		}
		if !fn(k, it) {
			return
		}
	}
}

// Len returns the number of entries currently tracked, including
// known-absent markers.
func (c *DataCache[K, T]) Len() int {
	return c.items.Len()
}
