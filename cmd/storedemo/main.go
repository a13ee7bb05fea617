// Command storedemo wires a Datastore to an in-process memtable and runs a
// few representative operations, printing what each one observed.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/slatepowered/store/codec"
	"github.com/slatepowered/store/document"
	"github.com/slatepowered/store/flagutil"
	"github.com/slatepowered/store/logging"
	"github.com/slatepowered/store/memtable"
	"github.com/slatepowered/store/store"
)

type widget struct {
	ID    string
	Name  string
	Count int64
}

type widgetCodec struct{}

func (widgetCodec) ClassName() string    { return "demo.Widget" }
func (widgetCodec) GoType() reflect.Type { return reflect.TypeOf(&widget{}) }

func (widgetCodec) Construct(ctx *codec.Context, in document.DecodeInput) (interface{}, error) {
	return &widget{}, nil
}

func (widgetCodec) Decode(ctx *codec.Context, value interface{}, in document.DecodeInput) error {
	w := value.(*widget)
	if f, ok := in.Read("id"); ok {
		rv, err := codec.DecodeValue(ctx, codec.ScalarOf(reflect.TypeOf("")), f)
		if err != nil {
			return err
		}
		w.ID = rv.Interface().(string)
	}
	if f, ok := in.Read("name"); ok {
		rv, err := codec.DecodeValue(ctx, codec.ScalarOf(reflect.TypeOf("")), f)
		if err != nil {
			return err
		}
		w.Name = rv.Interface().(string)
	}
	if f, ok := in.Read("count"); ok {
		rv, err := codec.DecodeValue(ctx, codec.ScalarOf(reflect.TypeOf(int64(0))), f)
		if err != nil {
			return err
		}
		w.Count = rv.Interface().(int64)
	}
	return nil
}

func (widgetCodec) Encode(ctx *codec.Context, value interface{}, out document.EncodeOutput) error {
	w := value.(*widget)
	out.Write("id", document.NewScalar(w.ID))
	out.Write("name", document.NewScalar(w.Name))
	out.Write("count", document.NewScalar(w.Count))
	return nil
}

func (widgetCodec) CreateDefault() *widget         { return &widget{} }
func (widgetCodec) PrimaryKeyFieldName() string    { return "id" }
func (widgetCodec) QueryComparator(q *store.Query) (func(v *widget) bool, error) {
	return func(v *widget) bool {
		for _, c := range q.Constraints {
			if c.Field == "name" && c.Op == "==" && v.Name != c.Value {
				return false
			}
		}
		return true
	}, nil
}

var (
	classFilter   flagutil.SetStringFlagValue
	bypassCache   flagutil.BoolFlagValue
	seedCount     = flag.Int("seed", 3, "number of demo widgets to seed")
	cacheCapacity = flag.Int("cache-size", 256, "data cache capacity")
)

func main() {
	flag.Var(&classFilter, "class", "restrict seeded records to this widget name, e.g. widget-0 (repeatable)")
	flag.Var(&bypassCache, "bypass-cache", "force every lookup through the table")
	flag.Parse()

	table := memtable.New()
	registry := codec.NewRegistry()
	registry.RegisterObject(widgetCodec{})
	cache, err := store.NewDataCache[string, *widget](*cacheCapacity)
	if err != nil {
		logging.Severe(nil, "storedemo: failed to build cache: %v", err)
		os.Exit(1)
	}
	ds := store.NewDatastore(store.DatastoreConfig[string, *widget]{
		Codec:    widgetCodec{},
		Table:    table,
		Cache:    cache,
		Registry: registry,
		Executor: store.NewExecutor(4),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	allowedNames := classFilter.SetString()

	ids := make([]string, 0, *seedCount)
	for i := 0; i < *seedCount; i++ {
		name := fmt.Sprintf("widget-%d", i)
		if len(allowedNames) > 0 {
			if _, ok := allowedNames[name]; !ok {
				continue
			}
		}
		id := uuid.NewString()
		ids = append(ids, id)
		if err := ds.Save(ctx, id, &widget{ID: id, Name: name, Count: int64(i)}); err != nil {
			logging.Error(nil, "storedemo: save failed for %s: %v", id, err)
			continue
		}
		fmt.Printf("saved %s (%s)\n", id, name)
	}

	forceRemote := bypassCache.Bool() != nil && *bypassCache.Bool()
	for _, id := range ids {
		if forceRemote {
			ds.GetOrReference(id).Dispose()
		}
		status := ds.FindOne(ctx, store.ByKey(id))
		res, err := status.Wait(ctx)
		if err != nil {
			fmt.Printf("find(%s): wait error: %v\n", id, err)
			continue
		}
		if res.Err != nil {
			fmt.Printf("find(%s): %v (%v)\n", id, res.Outcome, res.Err)
			continue
		}
		fmt.Printf("find(%s): %v value=%+v\n", id, res.Outcome, res.Item.Get())
	}

	all := ds.FindAll(ctx, &store.Query{})
	n := 0
	for w := range all.Results {
		n++
		_ = w
	}
	<-all.Done()
	fmt.Printf("find_all: %d widgets, err=%v\n", n, all.Err())
}
