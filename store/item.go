package store

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/slatepowered/store/codec"
	"github.com/slatepowered/store/document"
	"github.com/slatepowered/store/zerror"
)

const maxOffset = int64(^uint64(0) >> 1)

// DataItem is an identity-bearing handle (datastore, key) with a possibly
// absent value. Equality and hash are (datastore, key); two handles
// returned for the same key by the same datastore are always the same
// pointer (DataCache.GetOrCompute's single-flight guarantee), so pointer
// identity doubles as handle identity.
//
// The construct->decode->fetched_now->publish ordering required of
// item.value is kept as a single mutex guarding the value and its fetch
// timestamp together, in the narrow single-invariant style of
// db_setup.go's structMetasMutex rather than a package-wide lock.
type DataItem[K comparable, T any] struct {
	ds  *Datastore[K, T]
	key K

	mu      sync.RWMutex
	value   T
	present bool

	lastFetchNs     atomic.Int64
	lastReferenceNs atomic.Int64

	start int64 // wall-clock reference point for the offsets above, ns
}

func newDataItem[K comparable, T any](ds *Datastore[K, T], key K, now int64) *DataItem[K, T] {
	it := &DataItem[K, T]{ds: ds, key: key, start: now}
	it.referencedNow(now)
	return it
}

// Key returns the item's identity key.
func (it *DataItem[K, T]) Key() K { return it.key }

// IsPresent reports whether the item currently holds a value.
func (it *DataItem[K, T]) IsPresent() bool {
	it.mu.RLock()
	defer it.mu.RUnlock()
	return it.present
}

// Get returns the current value, or the zero value if absent.
func (it *DataItem[K, T]) Get() T {
	it.mu.RLock()
	defer it.mu.RUnlock()
	return it.value
}

// Optional returns (value, true) if present, else (zero, false).
func (it *DataItem[K, T]) Optional() (T, bool) {
	it.mu.RLock()
	defer it.mu.RUnlock()
	return it.value, it.present
}

// DefaultIfAbsent sets value = codec.create_default() only if currently
// absent; a no-op otherwise.
func (it *DataItem[K, T]) DefaultIfAbsent() {
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.present {
		return
	}
	it.value = it.ds.codec.CreateDefault()
	it.present = true
}

// ResetToDefaults unconditionally replaces the value with a fresh default.
func (it *DataItem[K, T]) ResetToDefaults() {
	it.mu.Lock()
	defer it.mu.Unlock()
	it.value = it.ds.codec.CreateDefault()
	it.present = true
}

// Dispose removes this item from its owning cache.
func (it *DataItem[K, T]) Dispose() {
	it.ds.cache.Remove(it.key)
}

func (it *DataItem[K, T]) saturatingOffset(now int64) int64 {
	off := now - it.start
	if off < 0 {
		return 0
	}
	if off > maxOffset {
		return maxOffset
	}
	return off
}

// referencedNow records last_reference_time, saturating at the maximum
// representable offset; races against concurrent readers are benign.
func (it *DataItem[K, T]) referencedNow(now int64) {
	it.lastReferenceNs.Store(it.saturatingOffset(now))
}

// fetchedNow records last_fetch_time the same way.
func (it *DataItem[K, T]) fetchedNow(now int64) {
	it.lastFetchNs.Store(it.saturatingOffset(now))
}

// LastReferenceTime returns the saturating offset-from-creation of the most
// recent referencedNow call.
func (it *DataItem[K, T]) LastReferenceTime() int64 { return it.lastReferenceNs.Load() }

// LastFetchTime returns the saturating offset-from-creation of the most
// recent fetchedNow call.
func (it *DataItem[K, T]) LastFetchTime() int64 { return it.lastFetchNs.Load() }

// Decode maps a freshly fetched document into this item's value. A nil
// input is a no-op returning self unchanged (the fetch found nothing).
// Construction and field decode are split so a codec context can resolve
// cyclic back-references against the in-progress value.
func (it *DataItem[K, T]) Decode(ctx *codec.Context, raw *document.Document, now int64) (err error) {
	defer zerror.OnErrorf(1, &err, "decoding item %v", it.key)

	if raw == nil || raw.IsNull() {
		return nil
	}

	in := document.NewDecodeInput(raw)
	constructed, err := it.ds.codec.Construct(ctx, in)
	if err != nil {
		return err
	}
	ctx.Remember(raw, constructed)
	if err := it.ds.codec.Decode(ctx, constructed, in); err != nil {
		return err
	}

	value, ok := constructed.(T)
	if !ok {
		return fmt.Errorf("codec constructed %T, item wants %T", constructed, value)
	}

	it.mu.Lock()
	it.fetchedNow(now)
	it.value = value
	it.present = true
	it.mu.Unlock()
	return nil
}

// FetchSync issues find_one(by_key(self.key)) against the source table and
// blocks until it completes, decoding the result into this item.
func (it *DataItem[K, T]) FetchSync(ctx context.Context) error {
	res, err := it.ds.findOneByKey(ctx, it.key).Wait(ctx)
	if err != nil {
		return err
	}
	return res.Err
}

// FetchAsync is the non-blocking counterpart; the returned status
// completes exactly once.
func (it *DataItem[K, T]) FetchAsync(ctx context.Context) *FindStatus[K, T] {
	return it.ds.findOneByKey(ctx, it.key)
}

// SaveSync encodes the current value (if present) and replaces it in the
// source table, blocking until the remote write completes. A no-op when
// the item is absent.
func (it *DataItem[K, T]) SaveSync(ctx context.Context) (err error) {
	defer zerror.OnErrorf(1, &err, "saving item %v", it.key)

	value, present := it.Optional()
	if !present {
		return nil
	}
	cctx := codec.NewContext(it.ds.registry)
	out := document.NewEncodeOutput()
	if err := it.ds.codec.Encode(cctx, value, out); err != nil {
		return err
	}
	keyStr, err := document.KeyToString(reflect.ValueOf(it.key))
	if err != nil {
		return err
	}
	out.Root().Set(it.ds.codec.PrimaryKeyFieldName(), document.NewScalar(keyStr))
	if ak, ok := interface{}(it.key).(AncestorKey); ok {
		if parent, has := ak.ParentKey(); has {
			parentStr, err := document.KeyToString(reflect.ValueOf(parent))
			if err != nil {
				return err
			}
			out.Root().Set(AncestorFieldName, document.NewScalar(parentStr))
		}
	}
	return it.ds.table.ReplaceOne(ctx, out.Root())
}

// SaveAsync runs SaveSync on the datastore's bounded executor.
func (it *DataItem[K, T]) SaveAsync(ctx context.Context) *Future[error] {
	f := NewFuture[error]()
	it.ds.executor.Submit(ctx, func(ctx context.Context) (interface{}, error) {
		err := it.SaveSync(ctx)
		f.Complete(err, nil)
		return nil, err
	})
	return f
}
