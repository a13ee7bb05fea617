package codec

import (
	"reflect"
	"testing"

	"github.com/slatepowered/store/document"
)

// point is a minimal registered object used to exercise the
// construct/decode split and class-tag fallback.
type point struct {
	X int64
	Y int64
}

type pointCodec struct{}

func (pointCodec) ClassName() string    { return "pkg.Point" }
func (pointCodec) GoType() reflect.Type { return reflect.TypeOf(&point{}) }
func (pointCodec) Construct(ctx *Context, in document.DecodeInput) (interface{}, error) {
	return &point{}, nil
}
func (pointCodec) Decode(ctx *Context, value interface{}, in document.DecodeInput) (err error) {
	p := value.(*point)
	if f, ok := in.Read("x"); ok {
		rv, derr := DecodeValue(ctx, ScalarOf(reflect.TypeOf(int64(0))), f)
		if derr != nil {
			return derr
		}
		p.X = rv.Interface().(int64)
	}
	if f, ok := in.Read("y"); ok {
		rv, derr := DecodeValue(ctx, ScalarOf(reflect.TypeOf(int64(0))), f)
		if derr != nil {
			return derr
		}
		p.Y = rv.Interface().(int64)
	}
	return nil
}
func (pointCodec) Encode(ctx *Context, value interface{}, out document.EncodeOutput) error {
	p := value.(*point)
	out.Write("x", document.NewScalar(p.X))
	out.Write("y", document.NewScalar(p.Y))
	return nil
}

func newPointRegistry() *Registry {
	r := NewRegistry()
	r.RegisterObject(pointCodec{})
	return r
}

func TestDecodeObjectByClassTag(t *testing.T) {
	ctx := NewContext(newPointRegistry())
	desc := ObjectOf("pkg.Point", reflect.TypeOf(&point{}), true)
	raw := document.NewMap()
	raw.SetClass("pkg.Point")
	raw.Set("x", document.NewScalar(int64(3)))
	raw.Set("y", document.NewScalar(int64(4)))

	rv, err := DecodeValue(ctx, desc, raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := rv.Interface().(*point)
	if p.X != 3 || p.Y != 4 {
		t.Errorf("expected {3,4}, got %+v", p)
	}
}

// Class-tag miss falls back to the statically expected type instead
// of failing.
func TestDecodeObjectClassTagMissFallsBack(t *testing.T) {
	ctx := NewContext(newPointRegistry())
	desc := ObjectOf("pkg.Point", reflect.TypeOf(&point{}), false)
	raw := document.NewMap()
	raw.SetClass("pkg.Nonexistent")
	raw.Set("x", document.NewScalar(int64(1)))
	raw.Set("y", document.NewScalar(int64(2)))

	rv, err := DecodeValue(ctx, desc, raw)
	if err != nil {
		t.Fatalf("expected fallback, not an error: %v", err)
	}
	p := rv.Interface().(*point)
	if p.X != 1 || p.Y != 2 {
		t.Errorf("expected {1,2}, got %+v", p)
	}
}

func TestDecodeObjectMissingCodecFails(t *testing.T) {
	ctx := NewContext(NewRegistry())
	desc := ObjectOf("pkg.Point", reflect.TypeOf(&point{}), false)
	raw := document.NewMap()
	raw.Set("x", document.NewScalar(int64(1)))

	_, err := DecodeValue(ctx, desc, raw)
	if !IsCodecMissingErr(err) {
		t.Fatalf("expected ErrCodecMissing, got %v", err)
	}
}

// shapedPoint is a second point-like type registered under the same
// class ("pkg.Point") but a distinct shape, exercising the registry's
// (kind, shape) index and the "<class>:<shape>" class-tag convention.
type shapedPoint struct {
	X, Y int64
	Z    int64
}

type shapedPointCodec struct{}

func (shapedPointCodec) ClassName() string    { return "pkg.Point" }
func (shapedPointCodec) Shape() string        { return "3d" }
func (shapedPointCodec) GoType() reflect.Type { return reflect.TypeOf(&shapedPoint{}) }
func (shapedPointCodec) Construct(ctx *Context, in document.DecodeInput) (interface{}, error) {
	return &shapedPoint{}, nil
}
func (shapedPointCodec) Decode(ctx *Context, value interface{}, in document.DecodeInput) error {
	p := value.(*shapedPoint)
	for field, dst := range map[string]*int64{"x": &p.X, "y": &p.Y, "z": &p.Z} {
		if f, ok := in.Read(field); ok {
			rv, err := DecodeValue(ctx, ScalarOf(reflect.TypeOf(int64(0))), f)
			if err != nil {
				return err
			}
			*dst = rv.Interface().(int64)
		}
	}
	return nil
}
func (shapedPointCodec) Encode(ctx *Context, value interface{}, out document.EncodeOutput) error {
	p := value.(*shapedPoint)
	out.Write("x", document.NewScalar(p.X))
	out.Write("y", document.NewScalar(p.Y))
	out.Write("z", document.NewScalar(p.Z))
	return nil
}

func newShapedPointRegistry() *Registry {
	r := NewRegistry()
	r.RegisterObject(pointCodec{})
	r.RegisterObject(shapedPointCodec{})
	return r
}

func TestRegistryFindObjectByShape(t *testing.T) {
	r := newShapedPointRegistry()
	c, ok := r.FindObjectByShape("pkg.Point", "3d")
	if !ok {
		t.Fatal("expected shapedPointCodec to resolve by (kind, shape)")
	}
	if c.GoType() != reflect.TypeOf(&shapedPoint{}) {
		t.Errorf("resolved wrong codec: %v", c.GoType())
	}
	if _, ok := r.FindObjectByShape("pkg.Point", "unknown"); ok {
		t.Error("expected a miss for an unregistered shape")
	}
}

// A "<class>:<shape>" class tag resolves to the shaped codec, not the
// bare-class one, even though both share the same ClassName().
func TestDecodeObjectByShapeTag(t *testing.T) {
	ctx := NewContext(newShapedPointRegistry())
	desc := ObjectOf("pkg.Point", reflect.TypeOf(&shapedPoint{}), true)
	raw := document.NewMap()
	raw.SetClass("pkg.Point:3d")
	raw.Set("x", document.NewScalar(int64(1)))
	raw.Set("y", document.NewScalar(int64(2)))
	raw.Set("z", document.NewScalar(int64(3)))

	rv, err := DecodeValue(ctx, desc, raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := rv.Interface().(*shapedPoint)
	if p.X != 1 || p.Y != 2 || p.Z != 3 {
		t.Errorf("expected {1,2,3}, got %+v", p)
	}
}

// Encoding a shaped codec's value stamps "<class>:<shape>", and decoding
// that tag back round-trips to the same concrete type.
func TestEncodeObjectStampsShapeTag(t *testing.T) {
	ctx := NewContext(newShapedPointRegistry())
	desc := ObjectOf("pkg.Point", reflect.TypeOf(&shapedPoint{}), true)
	p := &shapedPoint{X: 4, Y: 5, Z: 6}

	doc, err := EncodeValue(ctx, desc, reflect.ValueOf(p))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	class, ok := doc.Class()
	if !ok || class != "pkg.Point:3d" {
		t.Fatalf("expected class tag %q, got %q (ok=%v)", "pkg.Point:3d", class, ok)
	}

	rv, err := DecodeValue(ctx, desc, doc)
	if err != nil {
		t.Fatalf("unexpected error decoding back: %v", err)
	}
	got := rv.Interface().(*shapedPoint)
	if *got != *p {
		t.Errorf("round-trip mismatch: got %+v, want %+v", got, p)
	}
}

func TestEncodeObjectRoundTrip(t *testing.T) {
	ctx := NewContext(newPointRegistry())
	desc := ObjectOf("pkg.Point", reflect.TypeOf(&point{}), false)
	p := &point{X: 7, Y: 8}

	doc, err := EncodeValue(ctx, desc, reflect.ValueOf(p))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rv, err := DecodeValue(ctx, desc, doc)
	if err != nil {
		t.Fatalf("unexpected error decoding back: %v", err)
	}
	got := rv.Interface().(*point)
	if *got != *p {
		t.Errorf("round-trip mismatch: got %+v, want %+v", got, p)
	}
}
