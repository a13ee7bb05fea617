package store

import (
	"testing"
)

func TestDataCacheGetOrComputeInvokesCtorOnce(t *testing.T) {
	ds := newTestDatastore(newFakeTable())
	calls := 0
	ctor := func() *DataItem[string, *record] {
		calls++
		return newDataItem(ds, "x", now())
	}
	a := ds.cache.GetOrCompute("x", ctor)
	b := ds.cache.GetOrCompute("x", ctor)
	if a != b {
		t.Fatal("expected the same item both times")
	}
	if calls != 1 {
		t.Fatalf("expected ctor invoked exactly once, got %d", calls)
	}
}

func TestDataCacheGetOrNullMissReturnsNil(t *testing.T) {
	cache, err := NewDataCache[string, *record](8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if it := cache.GetOrNull("missing"); it != nil {
		t.Errorf("expected nil for an absent key, got %v", it)
	}
}

func TestDataCacheMarkAbsentThenSupersededByReal(t *testing.T) {
	ds := newTestDatastore(newFakeTable())
	ds.cache.MarkAbsent("y")
	if !ds.cache.IsKnownAbsent("y") {
		t.Fatal("expected y to be known-absent")
	}
	it := ds.cache.GetOrCompute("y", func() *DataItem[string, *record] {
		return newDataItem(ds, "y", now())
	})
	if it == nil {
		t.Fatal("expected a real item after GetOrCompute supersedes the absent marker")
	}
	if ds.cache.IsKnownAbsent("y") {
		t.Error("expected y to no longer be known-absent once a real item exists")
	}
}

func TestDataCacheRemove(t *testing.T) {
	ds := newTestDatastore(newFakeTable())
	it := ds.GetOrReference("z")
	ds.cache.Remove("z")
	if ds.cache.GetOrNull("z") == it && it != nil {
		t.Error("expected the entry to be gone after Remove")
	}
	if ds.cache.Len() != 0 {
		t.Errorf("expected an empty cache after Remove, got len %d", ds.cache.Len())
	}
}

func TestDataCacheRangeSkipsAbsentMarkers(t *testing.T) {
	ds := newTestDatastore(newFakeTable())
	ds.GetOrReference("handle") // a real handle, value not yet populated
	ds.cache.MarkAbsent("marked-absent")

	seen := map[string]bool{}
	ds.cache.Range(func(k string, it *DataItem[string, *record]) bool {
		seen[k] = true
		return true
	})
	if !seen["handle"] {
		t.Error("expected Range to visit the real item's key")
	}
	if seen["marked-absent"] {
		t.Error("expected Range to skip the known-absent marker")
	}
}
