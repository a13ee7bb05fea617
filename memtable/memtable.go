// Package memtable provides an in-process store.DataTable, grounded on
// safestore.T's map-plus-mutex shape: the remote table this datastore
// layer fronts is otherwise always opaque, but tests and the demo command
// need a concrete one to run against.
package memtable

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"sync"

	"github.com/slatepowered/store/document"
	"github.com/slatepowered/store/store"
)

// T is an in-memory store.DataTable. Documents are snapshotted through
// encoding/gob on every write, matching db.Codec's gobCodec byte-codec
// pattern, so callers can never observe a live alias of what they wrote.
//
// Rows are additionally grouped by the store.AncestorFieldName value, if
// any, grounded on QuerySupport's kind/shape scan (db/datastore.go)
// generalized to an ancestor-prefix scan, so FindByAncestorAsync never
// needs to walk the whole table.
type T struct {
	mu         sync.RWMutex
	rows       map[string]*document.Document
	ancestorOf map[string]string            // row key -> ancestor key string
	byAncestor map[string]map[string]struct{} // ancestor key string -> row keys
}

func New() *T {
	return &T{
		rows:       make(map[string]*document.Document),
		ancestorOf: make(map[string]string),
		byAncestor: make(map[string]map[string]struct{}),
	}
}

func init() {
	// gob requires every concrete type that can occupy Document.Scalar
	// (an interface{} field) to be registered up front.
	for _, v := range []interface{}{
		"", false,
		int(0), int8(0), int16(0), int32(0), int64(0),
		uint(0), uint8(0), uint16(0), uint32(0), uint64(0),
		float32(0), float64(0),
	} {
		gob.Register(v)
	}
}

func snapshot(doc *document.Document) (*document.Document, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, err
	}
	var out document.Document
	if err := gob.NewDecoder(&buf).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func primaryKeyString(doc *document.Document, field string) (string, bool) {
	f, ok := doc.Get(field)
	if !ok || f.Kind != document.KindScalar {
		return "", false
	}
	s, ok := f.Scalar.(string)
	return s, ok
}

// Put inserts or replaces a row directly, bypassing the store.DataTable
// interface; used to seed fixtures and the demo command.
func (t *T) Put(keyField string, doc *document.Document) error {
	snap, err := snapshot(doc)
	if err != nil {
		return err
	}
	key, ok := primaryKeyString(snap, keyField)
	if !ok {
		return fmt.Errorf("memtable: document has no string %q field", keyField)
	}
	ancestor, hasAncestor := primaryKeyString(snap, store.AncestorFieldName)

	t.mu.Lock()
	t.rows[key] = snap
	if prev, ok := t.ancestorOf[key]; ok {
		if set := t.byAncestor[prev]; set != nil {
			delete(set, key)
			if len(set) == 0 {
				delete(t.byAncestor, prev)
			}
		}
		delete(t.ancestorOf, key)
	}
	if hasAncestor {
		t.ancestorOf[key] = ancestor
		set, ok := t.byAncestor[ancestor]
		if !ok {
			set = make(map[string]struct{})
			t.byAncestor[ancestor] = set
		}
		set[key] = struct{}{}
	}
	t.mu.Unlock()
	return nil
}

// ReplaceOne implements store.DataTable, assuming the primary key is
// written under "id" (matching this package's demo/test fixtures).
func (t *T) ReplaceOne(ctx context.Context, out *document.Document) error {
	return t.Put("id", out)
}

// FindOneAsync implements store.DataTable. A keyed query probes the row
// map directly; an unkeyed query is not supported by this minimal table
// and always misses (queries without a key belong to the cache's linear
// scan, not the remote backend, in this demo's scope).
func (t *T) FindOneAsync(ctx context.Context, q *store.Query) <-chan store.TableResult {
	out := make(chan store.TableResult, 1)
	go func() {
		defer close(out)
		if !q.HasKey() {
			out <- store.TableResult{Doc: document.Null()}
			return
		}
		key := fmt.Sprintf("%v", q.Key)
		t.mu.RLock()
		row, ok := t.rows[key]
		t.mu.RUnlock()
		select {
		case <-ctx.Done():
			out <- store.TableResult{Err: ctx.Err()}
			return
		default:
		}
		if !ok {
			out <- store.TableResult{Doc: document.Null()}
			return
		}
		out <- store.TableResult{Doc: row}
	}()
	return out
}

// FindAllAsync streams every row currently in the table; q's constraints
// are not applied, since this table has no index to push them into, and
// Datastore.FindAll passes the rows on without filtering them either.
func (t *T) FindAllAsync(ctx context.Context, q *store.Query) <-chan store.TableResult {
	out := make(chan store.TableResult, 8)
	go func() {
		defer close(out)
		t.mu.RLock()
		rows := make([]*document.Document, 0, len(t.rows))
		for _, row := range t.rows {
			rows = append(rows, row)
		}
		t.mu.RUnlock()
		for _, row := range rows {
			select {
			case out <- store.TableResult{Doc: row}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// FindByAncestorAsync implements store.AncestorScanner, streaming only
// the rows previously saved under the given ancestor key.
func (t *T) FindByAncestorAsync(ctx context.Context, ancestor interface{}) <-chan store.TableResult {
	out := make(chan store.TableResult, 8)
	go func() {
		defer close(out)
		ancestorStr := fmt.Sprintf("%v", ancestor)
		t.mu.RLock()
		keys := t.byAncestor[ancestorStr]
		rows := make([]*document.Document, 0, len(keys))
		for key := range keys {
			rows = append(rows, t.rows[key])
		}
		t.mu.RUnlock()
		for _, row := range rows {
			select {
			case out <- store.TableResult{Doc: row}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len reports the current row count.
func (t *T) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}
