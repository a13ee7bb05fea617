package store

import (
	"sync"
	"time"
)

// QueryCache caches find_all's result key set by a query's canonical
// string form for a fixed TTL, grounded on QuerySupport's
// safestore.Item-backed query cache (db/datastore.go): there, a cached
// entry is a slice of app.Key under a "QueryCacheKeyPfx+qString" key,
// aged out by tm.InstanceCacheTimeout and re-validated by kind/shape on
// read; here the entry is a slice of K under q.String(), re-validated by
// nothing beyond the TTL since a Query is already narrowed to one
// Datastore[K,T]. Layered entirely on top of DataCache: it remembers
// which keys matched, not the decoded values themselves.
type QueryCache[K comparable] struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]queryCacheEntry[K]
}

type queryCacheEntry[K comparable] struct {
	keys    []K
	expires time.Time
}

// NewQueryCache returns a QueryCache whose entries age out after ttl.
func NewQueryCache[K comparable](ttl time.Duration) *QueryCache[K] {
	return &QueryCache[K]{ttl: ttl, entries: make(map[string]queryCacheEntry[K])}
}

func (qc *QueryCache[K]) get(qString string) ([]K, bool) {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	e, ok := qc.entries[qString]
	if !ok || time.Now().After(e.expires) {
		return nil, false
	}
	return e.keys, true
}

func (qc *QueryCache[K]) put(qString string, keys []K) {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	qc.entries[qString] = queryCacheEntry[K]{keys: keys, expires: time.Now().Add(qc.ttl)}
}
