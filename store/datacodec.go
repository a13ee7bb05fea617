// Package store wires the document/codec machinery into identity-preserving
// per-key caches (DataCache), handles (DataItem) and the orchestration layer
// that ties a cache to a remote DataTable (Datastore).
package store

import (
	"reflect"

	"github.com/slatepowered/store/codec"
	"github.com/slatepowered/store/document"
)

// DataCodec adapts a codec.ObjectCodec to a specific (K, T) datastore: it
// adds the three responsibilities a plain object codec has no use for —
// producing a zero value, naming the primary-key field, and compiling a
// Query into a predicate over T.
type DataCodec[K comparable, T any] interface {
	codec.ObjectCodec

	// CreateDefault returns a freshly constructed zero value for T, used by
	// DataItem.default_if_absent and reset_to_defaults.
	CreateDefault() T

	// PrimaryKeyFieldName names the document field the key is written to
	// and read from.
	PrimaryKeyFieldName() string

	// QueryComparator compiles q into a predicate over a decoded value.
	// Called once per find_one_cached/find_all_cached operation.
	QueryComparator(q *Query) (func(v T) bool, error)
}

// KeyDescriptor declares the Go type of K for string<->key conversions
// performed outside of a full codec context (e.g. ReadKey on a raw document).
func KeyDescriptor[K comparable]() reflect.Type {
	var zero K
	return reflect.TypeOf(zero)
}

// ExtractKey reads the named primary-key field out of a raw document
// without requiring a codec context: nested structures are rejected with
// document.ErrNonPrimitiveKey, and a missing field is ErrMissingPrimaryKey.
func ExtractKey[K comparable](fieldName string, in document.DecodeInput) (key K, err error) {
	raw, err := in.ReadKey(fieldName)
	if err != nil {
		return key, err
	}
	if raw == nil {
		return key, ErrMissingPrimaryKey
	}
	rv, err := document.StringToKey(scalarAsString(raw), KeyDescriptor[K]())
	if err != nil {
		return key, err
	}
	return rv.Interface().(K), nil
}

func scalarAsString(d *document.Document) string {
	if d.Kind != document.KindScalar {
		return ""
	}
	if s, ok := d.Scalar.(string); ok {
		return s
	}
	return ""
}
