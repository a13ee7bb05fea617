package codec

import (
	"fmt"
	"reflect"

	"github.com/slatepowered/store/document"
	"github.com/slatepowered/store/logging"
	"github.com/slatepowered/store/reflectutil"
	"github.com/slatepowered/store/zerror"
)

// DecodeValue maps a raw document value to a target declared type, as
// a type-directed dispatch over an explicit TypeDescriptor. The order
// of the checks below matters for correctness, since document-like
// encodings flatten certain structures: null, then list-shaped input
// (because maps may be serialized as lists of pairs), then same-type
// passthrough, then enum resolution, then nested-document/object
// decode, and finally scalar numeric coercion.
//
// ctx may be nil to request the privileged "key only" mode used when
// extracting a primary key before a codec context exists: in that
// mode a map node, or a list whose target is not a list, array or map,
// fails with document.ErrNonPrimitiveKey.
func DecodeValue(ctx *Context, desc *TypeDescriptor, raw *document.Document) (rv reflect.Value, err error) {
	defer zerror.OnErrorf(1, &err, nil)

	if desc == nil {
		desc = AnyDescriptor()
	}

	// Any short-circuits to a generic passthrough: with no declared
	// shape, the rules below would always land on identity/coercion
	// anyway once parameterized-container type information is erased.
	if desc.Kind == DescAny {
		return decodeAny(raw), nil
	}

	// 1. Null.
	if raw.IsNull() {
		return emptyForDescriptor(desc)
	}

	// 2. List input — checked before scalar identity, since maps may
	// be serialized as a list of [k, v] pairs.
	if raw.Kind == document.KindList {
		switch desc.Kind {
		case DescMapOf:
			return decodeMapFromPairs(ctx, desc, raw.List)
		case DescArrayOf, DescListOf:
			return decodeList(ctx, desc, raw.List)
		default:
			if ctx == nil {
				return reflect.Value{}, document.ErrNonPrimitiveKey
			}
			return reflect.Value{}, fmt.Errorf("%w: list input for %v", ErrCodecMissing, desc.Kind)
		}
	}

	// 3. Same-type passthrough.
	if raw.Kind == document.KindScalar && desc.Go != nil {
		srv := reflect.ValueOf(raw.Scalar)
		if srv.IsValid() && srv.Type().AssignableTo(desc.Go) {
			return srv, nil
		}
	}

	// 4/5. Enumeration (simple and polymorphic share the same parse).
	if desc.Kind == DescEnum {
		if s, ok := scalarString(raw); ok {
			return decodeEnum(ctx, desc, s)
		}
	}

	// 6. Document (nested object) input.
	if raw.Kind == document.KindMap {
		if ctx == nil {
			return reflect.Value{}, document.ErrNonPrimitiveKey
		}
		if desc.Kind == DescMapOf {
			return decodeMapFromDocument(ctx, desc, raw)
		}
		return decodeObject(ctx, desc, raw)
	}

	// 7. Scalar primitive coercion.
	if raw.Kind == document.KindScalar {
		return coerceScalar(desc, raw.Scalar)
	}

	return reflect.Value{}, fmt.Errorf("codec: cannot decode %v into %v", raw.Kind, desc.Kind)
}

func scalarString(raw *document.Document) (string, bool) {
	if raw == nil || raw.Kind != document.KindScalar {
		return "", false
	}
	s, ok := raw.Scalar.(string)
	return s, ok
}

// emptyForDescriptor implements rule 1: null decodes to a
// type-appropriate empty container, or an invalid (zero) Value
// meaning "no value" for anything else.
func emptyForDescriptor(desc *TypeDescriptor) (reflect.Value, error) {
	switch desc.Kind {
	case DescListOf, DescArrayOf:
		return reflect.MakeSlice(desc.Go, 0, 0), nil
	case DescMapOf:
		return reflect.MakeMap(desc.Go), nil
	default:
		return reflect.Value{}, nil
	}
}

// decodeList implements rule 2's array/list branches. Each element is fed
// to the recursive decode individually (list.List[i]), never the whole
// list.
func decodeList(ctx *Context, desc *TypeDescriptor, items []*document.Document) (reflect.Value, error) {
	out := reflect.MakeSlice(desc.Go, len(items), len(items))
	for i, item := range items {
		ev, err := DecodeValue(ctx, desc.Elem, item)
		if err != nil {
			return reflect.Value{}, err
		}
		out.Index(i).Set(convertTo(ev, desc.Go.Elem()))
	}
	return out, nil
}

// decodeMapFromPairs implements rule 2's map branch: a list is
// interpreted as [[k,v], [k,v], ...]. Keys are always the string form
// produced by the external encoding contract (§6), so they are parsed
// with the dedicated string->key rules rather than the general
// dispatch — a bare numeric target has no other way to accept a
// string scalar (see rule 3's identity check and rule 7's coercion
// table, neither of which parses strings into numbers).
func decodeMapFromPairs(ctx *Context, desc *TypeDescriptor, pairs []*document.Document) (reflect.Value, error) {
	out := reflect.MakeMap(desc.Go)
	for _, pair := range pairs {
		if pair.Kind != document.KindList || len(pair.List) != 2 {
			return reflect.Value{}, fmt.Errorf("codec: expected [key, value] pair, got %v", pair.Kind)
		}
		keyStr, ok := scalarString(pair.List[0])
		if !ok {
			return reflect.Value{}, fmt.Errorf("%w: pair key is not a string scalar", document.ErrUnsupportedKey)
		}
		kv, err := document.StringToKey(keyStr, desc.Go.Key())
		if err != nil {
			return reflect.Value{}, err
		}
		vv, err := DecodeValue(ctx, desc.Value, pair.List[1])
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetMapIndex(kv, convertTo(vv, desc.Go.Elem()))
	}
	return out, nil
}

// decodeMapFromDocument implements rule 6's map branch: a document's
// own (key_string, value) entries become the map, with the key string
// run through the string->key conversion rules.
func decodeMapFromDocument(ctx *Context, desc *TypeDescriptor, raw *document.Document) (reflect.Value, error) {
	out := reflect.MakeMap(desc.Go)
	keyGoType := desc.Go.Key()
	for field, sub := range raw.Map {
		if field == document.ClassField {
			continue
		}
		kv, err := document.StringToKey(field, keyGoType)
		if err != nil {
			return reflect.Value{}, err
		}
		vv, err := DecodeValue(ctx, desc.Value, sub)
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetMapIndex(kv, convertTo(vv, desc.Go.Elem()))
	}
	return out, nil
}

// decodeEnum implements rules 4 and 5: a string either bare
// ("CONST") or class-tagged ("<class>:<CONST>"), matched
// case-insensitively.
func decodeEnum(ctx *Context, desc *TypeDescriptor, s string) (reflect.Value, error) {
	class, constant := splitTagged(s)
	var enum *Enum
	var ok bool
	if class != "" {
		if ctx == nil || ctx.Registry == nil {
			return reflect.Value{}, fmt.Errorf("%w: class %q needs a registry", ErrEnumResolution, class)
		}
		enum, ok = ctx.Registry.FindEnumByClass(class)
	} else if ctx != nil && ctx.Registry != nil {
		enum, ok = ctx.Registry.FindEnumByGoType(desc.Go)
	}
	if !ok || enum == nil {
		return reflect.Value{}, fmt.Errorf("%w: %q", ErrEnumResolution, s)
	}
	v, ok := enum.Resolve(constant)
	if !ok {
		return reflect.Value{}, fmt.Errorf("%w: %q", ErrEnumResolution, s)
	}
	return convertTo(reflect.ValueOf(v), desc.Go), nil
}

// splitTagged splits "<class>:<constant>" into its parts; if s has no
// ':', class is "" and constant is s unchanged.
func splitTagged(s string) (class, constant string) {
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			return s[:i], s[i+1:]
		}
	}
	return "", s
}

// decodeObject implements rule 6's non-map branch: honor a __class
// tag when the registry resolves it, else fall back to the statically
// expected type's codec. A class-tag miss is swallowed, not fatal.
func decodeObject(ctx *Context, desc *TypeDescriptor, raw *document.Document) (reflect.Value, error) {
	codecImpl, err := resolveObjectCodec(ctx, desc, raw)
	if err != nil {
		return reflect.Value{}, err
	}
	if existing, ok := ctx.Resolved(raw); ok {
		return reflect.ValueOf(existing), nil
	}
	in := document.NewDecodeInput(raw)
	value, err := codecImpl.Construct(ctx, in)
	if err != nil {
		return reflect.Value{}, err
	}
	ctx.Remember(raw, value)
	if err := codecImpl.Decode(ctx, value, in); err != nil {
		return reflect.Value{}, err
	}
	return reflect.ValueOf(value), nil
}

func resolveObjectCodec(ctx *Context, desc *TypeDescriptor, raw *document.Document) (ObjectCodec, error) {
	if class, ok := raw.Class(); ok {
		if kind, shape := splitTagged(class); shape != "" {
			if c, found := ctx.Registry.FindObjectByShape(kind, shape); found {
				return c, nil
			}
		}
		if c, found := ctx.Registry.FindObjectByClass(class); found {
			return c, nil
		}
		logging.Debug(nil, "codec: class tag %q not resolved, falling back to %v", class, desc.Go)
	}
	if c, found := ctx.Registry.FindObjectByGoType(desc.Go); found {
		return c, nil
	}
	if desc.Class != "" {
		if c, found := ctx.Registry.FindObjectByClass(desc.Class); found {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrCodecMissing, desc.Go)
}

// coerceScalar implements rule 7, delegating to reflectutil's
// cross-kind numeric/bool/string coercion table.
func coerceScalar(desc *TypeDescriptor, v interface{}) (reflect.Value, error) {
	if desc.Go == nil {
		return reflect.ValueOf(v), nil
	}
	rv, err := reflectutil.CoerceRV(reflect.ValueOf(v), desc.Go)
	if err != nil {
		return reflect.Value{}, err
	}
	return rv, nil
}

// decodeAny walks a Document into plain Go containers
// (map[string]interface{}, []interface{}, scalar) with no declared
// shape.
func decodeAny(raw *document.Document) reflect.Value {
	if raw.IsNull() {
		return reflect.Zero(emptyInterfaceType)
	}
	switch raw.Kind {
	case document.KindScalar:
		return reflect.ValueOf(raw.Scalar)
	case document.KindList:
		out := make([]interface{}, len(raw.List))
		for i, item := range raw.List {
			out[i] = decodeAny(item).Interface()
		}
		return reflect.ValueOf(out)
	case document.KindMap:
		out := make(map[string]interface{}, len(raw.Map))
		for k, v := range raw.Map {
			if k == document.ClassField {
				continue
			}
			out[k] = decodeAny(v).Interface()
		}
		return reflect.ValueOf(out)
	default:
		return reflect.Zero(emptyInterfaceType)
	}
}

func convertTo(rv reflect.Value, rt reflect.Type) reflect.Value {
	if !rv.IsValid() {
		return reflect.Zero(rt)
	}
	if rv.Type() == rt {
		return rv
	}
	if rv.Type().ConvertibleTo(rt) {
		return rv.Convert(rt)
	}
	return rv
}
