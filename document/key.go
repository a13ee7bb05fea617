package document

import (
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/slatepowered/store/zerror"
)

// ErrNonPrimitiveKey is returned when a nested structure appears where
// only a scalar primary key was allowed.
var ErrNonPrimitiveKey = zerror.String("non-primitive key")

// ErrUnsupportedKey is returned when a map key decodes to a type the
// key decoder does not support.
var ErrUnsupportedKey = zerror.String("unsupported key type")

// KeyToString renders a primary-key or map-key value as its canonical
// string form, per the external encoding contract:
//   - string: identity.
//   - integer: decimal text of the signed 64-bit value.
//   - float: decimal text of the IEEE-754 bit pattern reinterpreted as
//     a signed 64-bit integer, to preserve NaN bits and signed zero; a
//     float32 is widened to float64 first.
//   - anything else: ErrUnsupportedKey.
func KeyToString(rv reflect.Value) (s string, err error) {
	defer zerror.OnErrorf(1, &err, nil)
	switch rv.Kind() {
	case reflect.String:
		s = rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		s = strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		s = strconv.FormatInt(int64(rv.Uint()), 10)
	case reflect.Float32, reflect.Float64:
		s = strconv.FormatInt(int64(math.Float64bits(rv.Float())), 10)
	default:
		return "", fmt.Errorf("%w: kind %v", ErrUnsupportedKey, rv.Kind())
	}
	return
}

// StringToKey parses a key's string form back into a reflect.Value of
// the given target type, the mirror of KeyToString:
//   - target string: returned as-is.
//   - target floating point: parsed as a signed 64-bit integer bit
//     pattern, reinterpreted as a double, narrowed if the target is
//     float32.
//   - target integer: parsed as a signed 64-bit integer, narrowed to
//     the target width.
//   - anything else: ErrUnsupportedKey.
func StringToKey(s string, rt reflect.Type) (rv reflect.Value, err error) {
	defer zerror.OnErrorf(1, &err, nil)
	switch rt.Kind() {
	case reflect.String:
		rv = reflect.ValueOf(s).Convert(rt)
	case reflect.Float32, reflect.Float64:
		bits, perr := strconv.ParseInt(s, 10, 64)
		if perr != nil {
			return reflect.Value{}, fmt.Errorf("%w: %v", ErrUnsupportedKey, perr)
		}
		f := math.Float64frombits(uint64(bits))
		rv = reflect.New(rt).Elem()
		rv.SetFloat(f)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, perr := strconv.ParseInt(s, 10, 64)
		if perr != nil {
			return reflect.Value{}, fmt.Errorf("%w: %v", ErrUnsupportedKey, perr)
		}
		rv = reflect.New(rt).Elem()
		rv.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, perr := strconv.ParseInt(s, 10, 64)
		if perr != nil {
			return reflect.Value{}, fmt.Errorf("%w: %v", ErrUnsupportedKey, perr)
		}
		rv = reflect.New(rt).Elem()
		rv.SetUint(uint64(n))
	default:
		return reflect.Value{}, fmt.Errorf("%w: kind %v", ErrUnsupportedKey, rt.Kind())
	}
	return
}
