package document

import (
	"math"
	"reflect"
	"testing"
)

func TestKeyToStringString(t *testing.T) {
	s, err := KeyToString(reflect.ValueOf("hello"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != "hello" {
		t.Errorf("expected hello, got %q", s)
	}
}

func TestKeyToStringInt(t *testing.T) {
	s, err := KeyToString(reflect.ValueOf(int32(-42)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != "-42" {
		t.Errorf("expected -42, got %q", s)
	}
}

// Scenario: map with float keys — encode 1.5, decode restores it exactly.
func TestKeyFloatRoundTrip(t *testing.T) {
	s, err := KeyToString(reflect.ValueOf(1.5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "4609434218613702656" // decimal of doubleToLongBits(1.5)
	if s != want {
		t.Errorf("expected %s, got %s", want, s)
	}
	rv, err := StringToKey(s, reflect.TypeOf(float64(0)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rv.Float() != 1.5 {
		t.Errorf("expected 1.5, got %v", rv.Float())
	}
}

func TestKeyFloat32Narrowing(t *testing.T) {
	s, err := KeyToString(reflect.ValueOf(float32(2.5)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rv, err := StringToKey(s, reflect.TypeOf(float32(0)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rv.Float() != 2.5 {
		t.Errorf("expected 2.5, got %v", rv.Float())
	}
}

func TestStringToKeyUnsupportedTarget(t *testing.T) {
	_, err := StringToKey("x", reflect.TypeOf(struct{}{}))
	if err == nil {
		t.Fatalf("expected ErrUnsupportedKey for struct target")
	}
}

func TestKeyToStringUnsupportedSource(t *testing.T) {
	_, err := KeyToString(reflect.ValueOf([]int{1, 2}))
	if err == nil {
		t.Fatalf("expected ErrUnsupportedKey for slice source")
	}
}

func TestKeyNaNBitsPreserved(t *testing.T) {
	nan := math.NaN()
	s, err := KeyToString(reflect.ValueOf(nan))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rv, err := StringToKey(s, reflect.TypeOf(float64(0)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !math.IsNaN(rv.Float()) {
		t.Errorf("expected NaN preserved, got %v", rv.Float())
	}
}
