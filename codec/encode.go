package codec

import (
	"fmt"
	"reflect"

	"github.com/slatepowered/store/document"
	"github.com/slatepowered/store/zerror"
)

// EncodeValue is the mirror of DecodeValue. Values are written as
// scalars where possible; lists and maps follow the external encoding
// contract; polymorphic targets (an enum/object descriptor marked
// RequiresClassTag, or whose concrete Go type differs from the
// declared one) receive a __class field.
func EncodeValue(ctx *Context, desc *TypeDescriptor, value reflect.Value) (doc *document.Document, err error) {
	defer zerror.OnErrorf(1, &err, nil)

	if desc == nil {
		desc = AnyDescriptor()
	}
	if !value.IsValid() || reflectutilIsNilable(value) && value.IsNil() {
		return emptyDocFor(desc), nil
	}

	switch desc.Kind {
	case DescAny:
		return encodeAny(value), nil
	case DescScalar:
		return document.NewScalar(value.Interface()), nil
	case DescListOf, DescArrayOf:
		return encodeList(ctx, desc, value)
	case DescMapOf:
		return encodeMap(ctx, desc, value)
	case DescEnum:
		return encodeEnum(ctx, desc, value)
	case DescObject:
		return encodeObject(ctx, desc, value)
	default:
		return nil, fmt.Errorf("codec: cannot encode descriptor kind %v", desc.Kind)
	}
}

func reflectutilIsNilable(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return true
	default:
		return false
	}
}

func emptyDocFor(desc *TypeDescriptor) *document.Document {
	switch desc.Kind {
	case DescListOf, DescArrayOf:
		return document.NewList()
	case DescMapOf:
		return document.NewMap()
	default:
		return document.Null()
	}
}

func encodeList(ctx *Context, desc *TypeDescriptor, value reflect.Value) (*document.Document, error) {
	out := document.NewList()
	for i := 0; i < value.Len(); i++ {
		ev, err := EncodeValue(ctx, desc.Elem, value.Index(i))
		if err != nil {
			return nil, err
		}
		out.Append(ev)
	}
	return out, nil
}

// encodeMap: string-keyed maps encode as document map nodes directly;
// maps with non-string keys encode as a list of two-element [k, v]
// lists, with the key rendered through KeyToString.
func encodeMap(ctx *Context, desc *TypeDescriptor, value reflect.Value) (*document.Document, error) {
	if desc.Go.Key().Kind() == reflect.String {
		out := document.NewMap()
		iter := value.MapRange()
		for iter.Next() {
			vv, err := EncodeValue(ctx, desc.Value, iter.Value())
			if err != nil {
				return nil, err
			}
			out.Set(iter.Key().String(), vv)
		}
		return out, nil
	}

	out := document.NewList()
	iter := value.MapRange()
	for iter.Next() {
		ks, err := document.KeyToString(iter.Key())
		if err != nil {
			return nil, err
		}
		vv, err := EncodeValue(ctx, desc.Value, iter.Value())
		if err != nil {
			return nil, err
		}
		out.Append(document.NewList(document.NewScalar(ks), vv))
	}
	return out, nil
}

// encodeEnum renders the enum's canonical constant name, tagging it
// with the registry class identifier when the descriptor requires
// polymorphic resolution on decode.
func encodeEnum(ctx *Context, desc *TypeDescriptor, value reflect.Value) (*document.Document, error) {
	if ctx == nil || ctx.Registry == nil {
		return nil, fmt.Errorf("%w: no registry to resolve enum name", ErrEnumResolution)
	}
	enum, ok := ctx.Registry.FindEnumByGoType(desc.Go)
	if !ok {
		return nil, fmt.Errorf("%w: no enum registered for %v", ErrEnumResolution, desc.Go)
	}
	name, ok := enum.Name(value.Interface())
	if !ok {
		return nil, fmt.Errorf("%w: no constant name for value %v", ErrEnumResolution, value.Interface())
	}
	if desc.RequiresClassTag {
		name = enum.Class() + ":" + name
	}
	return document.NewScalar(name), nil
}

func encodeObject(ctx *Context, desc *TypeDescriptor, value reflect.Value) (*document.Document, error) {
	var codecImpl ObjectCodec
	var ok bool
	if value.CanInterface() {
		if c, found := ctx.Registry.FindObjectByGoType(value.Type()); found {
			codecImpl, ok = c, true
		}
	}
	if !ok {
		c, found := ctx.Registry.FindObjectByGoType(desc.Go)
		if !found {
			return nil, fmt.Errorf("%w: %v", ErrCodecMissing, desc.Go)
		}
		codecImpl = c
	}

	out := document.NewMap()
	if desc.RequiresClassTag || codecImpl.GoType() != desc.Go {
		class := codecImpl.ClassName()
		if sc, ok := codecImpl.(ShapedCodec); ok && sc.Shape() != "" {
			class = kindShapeKey(class, sc.Shape())
		}
		out.SetClass(class)
	}
	if err := codecImpl.Encode(ctx, value.Interface(), document.NewEncodeOutputInto(out)); err != nil {
		return nil, err
	}
	return out, nil
}

func encodeAny(value reflect.Value) *document.Document {
	if !value.IsValid() {
		return document.Null()
	}
	v := value.Interface()
	switch vv := v.(type) {
	case map[string]interface{}:
		out := document.NewMap()
		for k, e := range vv {
			out.Set(k, encodeAny(reflect.ValueOf(e)))
		}
		return out
	case []interface{}:
		out := document.NewList()
		for _, e := range vv {
			out.Append(encodeAny(reflect.ValueOf(e)))
		}
		return out
	default:
		return document.NewScalar(v)
	}
}
