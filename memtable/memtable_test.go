package memtable

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/slatepowered/store/codec"
	"github.com/slatepowered/store/document"
	"github.com/slatepowered/store/store"
)

func seedDoc(id, name string) *document.Document {
	doc := document.NewMap()
	doc.Set("id", document.NewScalar(id))
	doc.Set("name", document.NewScalar(name))
	return doc
}

func seedChildDoc(id, name, parent string) *document.Document {
	doc := seedDoc(id, name)
	doc.Set(store.AncestorFieldName, document.NewScalar(parent))
	return doc
}

func TestPutThenFindOneAsyncByKey(t *testing.T) {
	tbl := New()
	if err := tbl.Put("id", seedDoc("k1", "alice")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	res := <-tbl.FindOneAsync(ctx, store.ByKey("k1"))
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	nameDoc, ok := res.Doc.Get("name")
	if !ok || nameDoc.Scalar != "alice" {
		t.Errorf("expected name=alice, got %v", res.Doc)
	}
}

func TestFindOneAsyncMissReturnsNullDoc(t *testing.T) {
	tbl := New()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	res := <-tbl.FindOneAsync(ctx, store.ByKey("missing"))
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if !res.Doc.IsNull() {
		t.Errorf("expected a null document for a miss, got %v", res.Doc)
	}
}

func TestReplaceOneThenFindAllAsync(t *testing.T) {
	tbl := New()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := tbl.ReplaceOne(ctx, seedDoc("a", "one")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tbl.ReplaceOne(ctx, seedDoc("b", "two")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	count := 0
	for res := range tbl.FindAllAsync(ctx, &store.Query{}) {
		if res.Err != nil {
			t.Fatalf("unexpected error: %v", res.Err)
		}
		count++
	}
	if count != 2 {
		t.Errorf("expected 2 rows, got %d", count)
	}
	if tbl.Len() != 2 {
		t.Errorf("expected Len()==2, got %d", tbl.Len())
	}
}

func TestFindByAncestorAsyncGroupsByParent(t *testing.T) {
	tbl := New()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := tbl.Put("id", seedChildDoc("c1", "first", "p1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tbl.Put("id", seedChildDoc("c2", "second", "p1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tbl.Put("id", seedChildDoc("c3", "other", "p2")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var scanner store.AncestorScanner = tbl
	names := map[string]bool{}
	for res := range scanner.FindByAncestorAsync(ctx, "p1") {
		if res.Err != nil {
			t.Fatalf("unexpected error: %v", res.Err)
		}
		nameDoc, _ := res.Doc.Get("name")
		names[nameDoc.Scalar.(string)] = true
	}
	if len(names) != 2 || !names["first"] || !names["second"] {
		t.Errorf("expected {first, second} under p1, got %v", names)
	}
}

// Re-Put-ing a row under a new parent moves it out of the old parent's
// ancestor bucket instead of leaving a stale entry behind.
func TestFindByAncestorAsyncMovesRowOnReparent(t *testing.T) {
	tbl := New()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := tbl.Put("id", seedChildDoc("c1", "first", "p1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tbl.Put("id", seedChildDoc("c1", "first", "p2")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	count := 0
	for range tbl.FindByAncestorAsync(ctx, "p1") {
		count++
	}
	if count != 0 {
		t.Errorf("expected c1 to have moved out of p1's bucket, still saw %d row(s)", count)
	}

	count = 0
	for range tbl.FindByAncestorAsync(ctx, "p2") {
		count++
	}
	if count != 1 {
		t.Errorf("expected c1 under p2, got %d row(s)", count)
	}
}

func TestPutSnapshotsRatherThanAliasing(t *testing.T) {
	tbl := New()
	doc := seedDoc("s1", "original")
	if err := tbl.Put("id", doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc.Set("name", document.NewScalar("mutated-after-put"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	res := <-tbl.FindOneAsync(ctx, store.ByKey("s1"))
	nameDoc, _ := res.Doc.Get("name")
	if nameDoc.Scalar != "original" {
		t.Errorf("expected the stored snapshot to be unaffected by later mutation, got %v", nameDoc.Scalar)
	}
}

// testRow/testRowCodec wire a minimal store.DataCodec against this
// package's table so store.Datastore.FindAll's ancestor-scanner routing
// can be exercised end to end (store's own tests cannot import memtable,
// since memtable already imports store).
type testRow struct {
	ID   string
	Name string
}

type testRowCodec struct{}

func (testRowCodec) ClassName() string    { return "memtable.testRow" }
func (testRowCodec) GoType() reflect.Type { return reflect.TypeOf(&testRow{}) }

func (testRowCodec) Construct(ctx *codec.Context, in document.DecodeInput) (interface{}, error) {
	return &testRow{}, nil
}

func (testRowCodec) Decode(ctx *codec.Context, value interface{}, in document.DecodeInput) error {
	r := value.(*testRow)
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
	return nil
}

func (testRowCodec) Encode(ctx *codec.Context, value interface{}, out document.EncodeOutput) error {
	r := value.(*testRow)
	out.Write("id", document.NewScalar(r.ID))
	out.Write("name", document.NewScalar(r.Name))
	return nil
}

func (testRowCodec) CreateDefault() *testRow     { return &testRow{} }
func (testRowCodec) PrimaryKeyFieldName() string { return "id" }
func (testRowCodec) QueryComparator(q *store.Query) (func(v *testRow) bool, error) {
	return func(v *testRow) bool { return true }, nil
}

// A query naming an ancestor routes find_all to memtable's
// AncestorScanner implementation instead of a full-table scan, so rows
// under a different (or no) ancestor never reach the caller.
func TestDatastoreFindAllRoutesToAncestorScanner(t *testing.T) {
	tbl := New()
	if err := tbl.Put("id", seedChildDoc("c1", "first", "p1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tbl.Put("id", seedChildDoc("c2", "second", "p1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tbl.Put("id", seedDoc("other", "unrelated")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cache, err := store.NewDataCache[string, *testRow](64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reg := codec.NewRegistry()
	reg.RegisterObject(testRowCodec{})
	ds := store.NewDatastore(store.DatastoreConfig[string, *testRow]{
		Codec:    testRowCodec{},
		Table:    tbl,
		Cache:    cache,
		Registry: reg,
		Executor: store.NewExecutor(4),
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	q := (&store.Query{}).WithAncestor("p1")
	status := ds.FindAll(ctx, q)

	var names []string
	for v := range status.Results {
		names = append(names, v.Name)
	}
	<-status.Done()
	if err := status.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 2 {
		t.Errorf("expected exactly the 2 rows under ancestor p1, got %v", names)
	}
}
