package store

import (
	"context"
	"time"

	"github.com/slatepowered/store/codec"
	"github.com/slatepowered/store/document"
	"github.com/slatepowered/store/logging"
	"github.com/slatepowered/store/zerror"
)

// Datastore is a typed facade over one remote DataTable plus its local
// cache, generalizing db.Get/db.Gets's cache-first-with-fallback and
// db.Load/db.LoadOne's query-driven load.
type Datastore[K comparable, T any] struct {
	codec      DataCodec[K, T]
	cache      *DataCache[K, T]
	table      DataTable
	registry   *codec.Registry
	executor   *Executor
	queryCache *QueryCache[K]
}

// DatastoreConfig names the pieces a datastore is built with: key_class
// (implicit in K), source_table, data_codec, data_cache, data_manager
// (the shared codec registry).
type DatastoreConfig[K comparable, T any] struct {
	Codec    DataCodec[K, T]
	Table    DataTable
	Cache    *DataCache[K, T]
	Registry *codec.Registry
	Executor *Executor
}

func NewDatastore[K comparable, T any](cfg DatastoreConfig[K, T]) *Datastore[K, T] {
	ex := cfg.Executor
	if ex == nil {
		ex = NewExecutor(8)
	}
	return &Datastore[K, T]{
		codec:    cfg.Codec,
		cache:    cfg.Cache,
		table:    cfg.Table,
		registry: cfg.Registry,
		executor: ex,
	}
}

func now() int64 { return time.Now().UnixNano() }

// WithQueryCache opts this datastore into caching find_all's result key
// set per canonical query string for ttl, grounded on QuerySupport's
// instance-cache-backed query cache (db/datastore.go). Returns ds for
// chaining. NewQueryCache accepts any ttl; with a zero or negative ttl
// every entry has already expired when it is read back.
func (ds *Datastore[K, T]) WithQueryCache(ttl time.Duration) *Datastore[K, T] {
	ds.queryCache = NewQueryCache[K](ttl)
	return ds
}

// GetOrReference returns a never-null item for key that may have no value
// yet, constructing it at most once across concurrent callers.
func (ds *Datastore[K, T]) GetOrReference(key K) *DataItem[K, T] {
	return ds.cache.GetOrCompute(key, func() *DataItem[K, T] {
		return newDataItem(ds, key, now())
	})
}

// GetOrCreate returns the referenced item with a default value populated
// if it was absent.
func (ds *Datastore[K, T]) GetOrCreate(key K) *DataItem[K, T] {
	it := ds.GetOrReference(key)
	it.DefaultIfAbsent()
	return it
}

// FindOneCached probes the cache directly for a keyed query, or linear
// scans using the codec's compiled predicate otherwise; any returned item
// is marked referenced_now.
func (ds *Datastore[K, T]) FindOneCached(q *Query) (*DataItem[K, T], bool, error) {
	n := now()
	if q.HasKey() {
		key, ok := q.Key.(K)
		if !ok {
			return nil, false, nil
		}
		it := ds.cache.GetOrNull(key)
		if it != nil && it.IsPresent() {
			it.referencedNow(n)
			return it, true, nil
		}
		return nil, false, nil
	}

	pred, err := ds.codec.QueryComparator(q)
	if err != nil {
		return nil, false, err
	}
	var found *DataItem[K, T]
	ds.cache.Range(func(_ K, it *DataItem[K, T]) bool {
		if v, present := it.Optional(); present && pred(v) {
			it.referencedNow(n)
			found = it
			return false
		}
		return true
	})
	return found, found != nil, nil
}

// FindAllCached linear scans for all matches, pre-allocating roughly
// cache_size / (constraint_count + 1) capacity as a heuristic.
func (ds *Datastore[K, T]) FindAllCached(q *Query) ([]*DataItem[K, T], error) {
	pred, err := ds.codec.QueryComparator(q)
	if err != nil {
		return nil, err
	}
	n := now()
	capHint := ds.cache.Len() / (len(q.Constraints) + 1)
	if capHint < 0 {
		capHint = 0
	}
	out := make([]*DataItem[K, T], 0, capHint)
	ds.cache.Range(func(_ K, it *DataItem[K, T]) bool {
		if v, present := it.Optional(); present && pred(v) {
			it.referencedNow(n)
			out = append(out, it)
		}
		return true
	})
	return out, nil
}

// findOneByKey is the internal entry point DataItem.FetchSync/FetchAsync
// use to re-fetch a single known key from the remote table. Unlike FindOne
// it never answers from the cache.
func (ds *Datastore[K, T]) findOneByKey(ctx context.Context, key K) *FindStatus[K, T] {
	status := newFindStatus[K, T]()
	q := ByKey(key)
	resultCh := ds.table.FindOneAsync(ctx, q)
	go func() {
		select {
		case res, ok := <-resultCh:
			if !ok {
				status.complete(FindFailed, nil, zerror.NewRich("find_one", ErrRemoteFailure))
				return
			}
			ds.completeFind(ctx, status, q, res)
		case <-ctx.Done():
		}
	}()
	return status
}

// FindOne first tries FindOneCached; on a hit it completes synchronously
// as Cached without invoking the remote table. Otherwise it issues
// find_one_async on the table and completes Fetched, Absent or Failed
// exactly once.
func (ds *Datastore[K, T]) FindOne(ctx context.Context, q *Query) *FindStatus[K, T] {
	status := newFindStatus[K, T]()

	if it, hit, err := ds.FindOneCached(q); err != nil {
		status.complete(FindFailed, nil, err)
		return status
	} else if hit {
		logging.Trace(ctx, "store: find_one(%v) hit cache", q)
		status.complete(FindCached, it, nil)
		return status
	}

	logging.Trace(ctx, "store: find_one(%v) miss, querying table", q)
	resultCh := ds.table.FindOneAsync(ctx, q)
	go func() {
		select {
		case res, ok := <-resultCh:
			if !ok {
				status.complete(FindFailed, nil, zerror.NewRich("find_one", ErrRemoteFailure))
				return
			}
			ds.completeFind(ctx, status, q, res)
		case <-ctx.Done():
			// Cancellation only stops delivery to this caller; the
			// in-flight remote call is opaque and keeps running.
		}
	}()
	return status
}

func (ds *Datastore[K, T]) completeFind(ctx context.Context, status *FindStatus[K, T], q *Query, res TableResult) {
	if res.Err != nil {
		status.complete(FindFailed, nil, res.Err)
		return
	}
	if res.Doc.IsNull() {
		if q.HasKey() {
			if key, ok := q.Key.(K); ok {
				ds.cache.MarkAbsent(key)
			}
		}
		status.complete(FindAbsent, nil, nil)
		return
	}

	key, err := ExtractKey[K](ds.codec.PrimaryKeyFieldName(), document.NewDecodeInput(res.Doc))
	if err != nil {
		status.complete(FindFailed, nil, err)
		return
	}
	item := ds.GetOrReference(key)
	cctx := codec.NewContext(ds.registry)
	if err := item.Decode(cctx, res.Doc, now()); err != nil {
		status.complete(FindFailed, nil, err)
		return
	}
	status.complete(FindFetched, item, nil)
}

// FindAll delegates to the table and exposes a bulk iterable status; each
// decoded row is published into the cache as it arrives. A query naming
// an ancestor routes to the table's AncestorScanner when it implements
// one; a query-cache hit (see WithQueryCache) skips the table entirely
// and replays the remembered key set straight from the cache.
func (ds *Datastore[K, T]) FindAll(ctx context.Context, q *Query) *FindAllStatus[T] {
	status := newFindAllStatus[T](16)

	if ds.queryCache != nil && q != nil {
		if keys, hit := ds.queryCache.get(q.String()); hit {
			go ds.streamCachedKeys(ctx, status, keys)
			return status
		}
	}

	var rows <-chan TableResult
	if q.HasAncestor() {
		if scanner, ok := ds.table.(AncestorScanner); ok {
			rows = scanner.FindByAncestorAsync(ctx, q.Ancestor)
		} else {
			rows = ds.table.FindAllAsync(ctx, q)
		}
	} else {
		rows = ds.table.FindAllAsync(ctx, q)
	}

	go func() {
		var keys []K
		for res := range rows {
			if res.Err != nil {
				status.finish(res.Err)
				return
			}
			key, err := ExtractKey[K](ds.codec.PrimaryKeyFieldName(), document.NewDecodeInput(res.Doc))
			if err != nil {
				status.finish(err)
				return
			}
			item := ds.GetOrReference(key)
			cctx := codec.NewContext(ds.registry)
			if err := item.Decode(cctx, res.Doc, now()); err != nil {
				status.finish(err)
				return
			}
			keys = append(keys, key)
			select {
			case status.Results <- item.Get():
			case <-ctx.Done():
				status.finish(ErrCancelled)
				return
			}
		}
		if ds.queryCache != nil && q != nil {
			ds.queryCache.put(q.String(), keys)
		}
		status.finish(nil)
	}()
	return status
}

// streamCachedKeys replays a remembered query-cache key set straight from
// DataCache without touching the table; a key evicted since the original
// scan simply yields a fresh, valueless item rather than a fetch.
func (ds *Datastore[K, T]) streamCachedKeys(ctx context.Context, status *FindAllStatus[T], keys []K) {
	for _, k := range keys {
		item := ds.GetOrReference(k)
		select {
		case status.Results <- item.Get():
		case <-ctx.Done():
			status.finish(ErrCancelled)
			return
		}
	}
	status.finish(nil)
}

// Save encodes and replaces value for key in both cache and remote table.
func (ds *Datastore[K, T]) Save(ctx context.Context, key K, value T) (err error) {
	defer zerror.OnErrorf(1, &err, "saving %v", key)

	item := ds.GetOrReference(key)
	item.mu.Lock()
	item.value = value
	item.present = true
	item.mu.Unlock()
	return item.SaveSync(ctx)
}

