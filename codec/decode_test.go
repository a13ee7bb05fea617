package codec

import (
	"errors"
	"reflect"
	"testing"

	"github.com/slatepowered/store/document"
	"github.com/slatepowered/store/zerror"
)

type shapeKind int

const (
	shapeUnknown shapeKind = iota
	shapeCircle
	shapeSquare
)

func newShapeRegistry() *Registry {
	r := NewRegistry()
	e := NewEnum("pkg.Shape", reflect.TypeOf(shapeCircle))
	e.Add("Circle", shapeCircle)
	e.Add("Square", shapeSquare)
	r.RegisterEnum(e)
	return r
}

// Scenario: round-trip of a polymorphic enumeration.
func TestDecodePolymorphicEnum(t *testing.T) {
	ctx := NewContext(newShapeRegistry())
	desc := EnumOf("pkg.Shape", reflect.TypeOf(shapeCircle), true)
	rv, err := DecodeValue(ctx, desc, document.NewScalar("pkg.Shape:Circle"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rv.Interface().(shapeKind) != shapeCircle {
		t.Errorf("expected shapeCircle, got %v", rv.Interface())
	}
}

func TestDecodeSimpleEnumBareConstant(t *testing.T) {
	ctx := NewContext(newShapeRegistry())
	desc := EnumOf("pkg.Shape", reflect.TypeOf(shapeCircle), false)
	rv, err := DecodeValue(ctx, desc, document.NewScalar("square"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rv.Interface().(shapeKind) != shapeSquare {
		t.Errorf("expected shapeSquare, got %v", rv.Interface())
	}
}

func TestDecodeEnumUnresolved(t *testing.T) {
	ctx := NewContext(newShapeRegistry())
	desc := EnumOf("pkg.Shape", reflect.TypeOf(shapeCircle), false)
	_, err := DecodeValue(ctx, desc, document.NewScalar("triangle"))
	if !errors.Is(zerror.Base(err), ErrEnumResolution) {
		t.Fatalf("expected ErrEnumResolution, got %v", err)
	}
}

// Scenario: map with integer keys.
func TestDecodeMapIntegerKeysFromPairs(t *testing.T) {
	ctx := NewContext(NewRegistry())
	desc := MapOf(ScalarOf(reflect.TypeOf(int32(0))), ScalarOf(reflect.TypeOf(int32(0))))
	raw := document.NewList(
		document.NewList(document.NewScalar("1"), document.NewScalar(int32(10))),
		document.NewList(document.NewScalar("2"), document.NewScalar(int32(20))),
	)
	rv, err := DecodeValue(ctx, desc, raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := rv.Interface().(map[int32]int32)
	if m[1] != 10 || m[2] != 20 {
		t.Errorf("expected {1:10, 2:20}, got %v", m)
	}
}

// Scenario: map with float keys round-trips exactly through the bit
// pattern chosen by the encoder.
func TestDecodeMapFloatKeys(t *testing.T) {
	ctx := NewContext(NewRegistry())
	desc := MapOf(ScalarOf(reflect.TypeOf(float64(0))), ScalarOf(reflect.TypeOf("")))
	raw := document.NewList(
		document.NewList(document.NewScalar("4609434218613702656"), document.NewScalar("a")),
	)
	rv, err := DecodeValue(ctx, desc, raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := rv.Interface().(map[float64]string)
	if m[1.5] != "a" {
		t.Errorf("expected {1.5: a}, got %v", m)
	}
}

// Scenario: a null list field decodes to empty list, never null.
func TestDecodeNullListField(t *testing.T) {
	ctx := NewContext(NewRegistry())
	desc := ListOf(ScalarOf(reflect.TypeOf(int64(0))))
	rv, err := DecodeValue(ctx, desc, document.Null())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rv.Kind() != reflect.Slice || rv.Len() != 0 {
		t.Errorf("expected empty slice, got %#v", rv)
	}
}

func TestDecodeNullMapField(t *testing.T) {
	ctx := NewContext(NewRegistry())
	desc := MapOf(ScalarOf(reflect.TypeOf("")), ScalarOf(reflect.TypeOf(int64(0))))
	rv, err := DecodeValue(ctx, desc, document.Null())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rv.Kind() != reflect.Map || rv.Len() != 0 {
		t.Errorf("expected empty map, got %#v", rv)
	}
}

// The array-from-list decode branch must feed each element, not the
// whole list, to the recursive call.
func TestDecodeArrayFeedsElementNotWholeList(t *testing.T) {
	ctx := NewContext(NewRegistry())
	desc := ArrayOf(ScalarOf(reflect.TypeOf(int64(0))))
	raw := document.NewList(document.NewScalar(int64(1)), document.NewScalar(int64(2)), document.NewScalar(int64(3)))
	rv, err := DecodeValue(ctx, desc, raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := rv.Interface().([]int64)
	want := []int64{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestDecodeScalarPassthrough(t *testing.T) {
	ctx := NewContext(NewRegistry())
	desc := ScalarOf(reflect.TypeOf("x"))
	rv, err := DecodeValue(ctx, desc, document.NewScalar("hello"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rv.Interface().(string) != "hello" {
		t.Errorf("expected hello, got %v", rv.Interface())
	}
}

func TestDecodeScalarCoercion(t *testing.T) {
	ctx := NewContext(NewRegistry())
	desc := ScalarOf(reflect.TypeOf(int64(0)))
	rv, err := DecodeValue(ctx, desc, document.NewScalar(float64(7)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rv.Interface().(int64) != 7 {
		t.Errorf("expected 7, got %v", rv.Interface())
	}
}

func TestDecodeReadKeyModeRejectsNestedInput(t *testing.T) {
	desc := ScalarOf(reflect.TypeOf(int64(0)))
	_, err := DecodeValue(nil, desc, document.NewList(document.NewScalar(int64(1))))
	if !errors.Is(zerror.Base(err), document.ErrNonPrimitiveKey) {
		t.Fatalf("expected ErrNonPrimitiveKey, got %v", err)
	}
}
