package store

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/slatepowered/store/codec"
	"github.com/slatepowered/store/document"
)

// record is a minimal registered value used across store package tests.
type record struct {
	ID    string
	Name  string
	Score int64
}

type recordCodec struct{}

func (recordCodec) ClassName() string    { return "test.Record" }
func (recordCodec) GoType() reflect.Type { return reflect.TypeOf(&record{}) }

func (recordCodec) Construct(ctx *codec.Context, in document.DecodeInput) (interface{}, error) {
	return &record{}, nil
}

func (recordCodec) Decode(ctx *codec.Context, value interface{}, in document.DecodeInput) error {
	r := value.(*record)
	if f, ok := in.Read("id"); ok {
		rv, err := codec.DecodeValue(ctx, codec.ScalarOf(reflect.TypeOf("")), f)
		if err != nil {
			return err
		}
		r.ID = rv.Interface().(string)
	}
	if f, ok := in.Read("name"); ok {
		rv, err := codec.DecodeValue(ctx, codec.ScalarOf(reflect.TypeOf("")), f)
		if err != nil {
			return err
		}
		r.Name = rv.Interface().(string)
	}
	if f, ok := in.Read("score"); ok {
		rv, err := codec.DecodeValue(ctx, codec.ScalarOf(reflect.TypeOf(int64(0))), f)
		if err != nil {
			return err
		}
		r.Score = rv.Interface().(int64)
	}
	return nil
}

func (recordCodec) Encode(ctx *codec.Context, value interface{}, out document.EncodeOutput) error {
	r := value.(*record)
	out.Write("id", document.NewScalar(r.ID))
	out.Write("name", document.NewScalar(r.Name))
	out.Write("score", document.NewScalar(r.Score))
	return nil
}

func (recordCodec) CreateDefault() *record { return &record{} }

func (recordCodec) PrimaryKeyFieldName() string { return "id" }

func (recordCodec) QueryComparator(q *Query) (func(v *record) bool, error) {
	return func(v *record) bool {
		for _, c := range q.Constraints {
			switch c.Field {
			case "name":
				if c.Op == "==" && v.Name != c.Value {
					return false
				}
			case "score":
				score, _ := c.Value.(int64)
				if c.Op == "==" && v.Score != score {
					return false
				}
			}
		}
		return true
	}, nil
}

func newRecordRegistry() *codec.Registry {
	r := codec.NewRegistry()
	r.RegisterObject(recordCodec{})
	return r
}

// fakeTable is an in-memory DataTable test double. FindOneAsync/FindAllAsync
// count their calls synchronously, then deliver from a goroutine through a
// buffered channel per the DataTable contract.
type fakeTable struct {
	mu   sync.Mutex
	docs map[string]*document.Document

	findOneCalls int
	findAllCalls int
}

func newFakeTable() *fakeTable {
	return &fakeTable{docs: make(map[string]*document.Document)}
}

func (t *fakeTable) put(id string, name string, score int64) {
	doc := document.NewMap()
	doc.Set("id", document.NewScalar(id))
	doc.Set("name", document.NewScalar(name))
	doc.Set("score", document.NewScalar(score))
	t.mu.Lock()
	t.docs[id] = doc
	t.mu.Unlock()
}

func (t *fakeTable) FindOneAsync(ctx context.Context, q *Query) <-chan TableResult {
	out := make(chan TableResult, 1)
	t.mu.Lock()
	t.findOneCalls++
	t.mu.Unlock()
	go func() {
		if q.HasKey() {
			key := fmt.Sprintf("%v", q.Key)
			t.mu.Lock()
			doc, ok := t.docs[key]
			t.mu.Unlock()
			if !ok {
				out <- TableResult{Doc: document.Null()}
			} else {
				out <- TableResult{Doc: doc}
			}
			close(out)
			return
		}
		t.mu.Lock()
		defer t.mu.Unlock()
		for _, doc := range t.docs {
			out <- TableResult{Doc: doc}
			close(out)
			return
		}
		out <- TableResult{Doc: document.Null()}
		close(out)
	}()
	return out
}

func (t *fakeTable) FindAllAsync(ctx context.Context, q *Query) <-chan TableResult {
	t.mu.Lock()
	t.findAllCalls++
	t.mu.Unlock()
	out := make(chan TableResult, 8)
	go func() {
		t.mu.Lock()
		docs := make([]*document.Document, 0, len(t.docs))
		for _, doc := range t.docs {
			docs = append(docs, doc)
		}
		t.mu.Unlock()
		for _, doc := range docs {
			out <- TableResult{Doc: doc}
		}
		close(out)
	}()
	return out
}

func (t *fakeTable) ReplaceOne(ctx context.Context, out *document.Document) error {
	idDoc, _ := out.Get("id")
	id, _ := idDoc.Scalar.(string)
	t.mu.Lock()
	t.docs[id] = out
	t.mu.Unlock()
	return nil
}

func newTestDatastore(table *fakeTable) *Datastore[string, *record] {
	cache, _ := NewDataCache[string, *record](64)
	return NewDatastore(DatastoreConfig[string, *record]{
		Codec:    recordCodec{},
		Table:    table,
		Cache:    cache,
		Registry: newRecordRegistry(),
		Executor: NewExecutor(4),
	})
}
