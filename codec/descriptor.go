// Package codec implements the type-directed decode/encode dispatch
// described for the datastore layer: translating between document.Document
// trees and Go values via an explicit TypeDescriptor, rather than by
// reflecting over parameterized Go types (which erases at compile time
// anyway). See Registry and Context for the codec-lookup and
// cycle-resolution machinery that dispatch depends on.
package codec

import "reflect"

// DescriptorKind discriminates the shape a TypeDescriptor describes.
type DescriptorKind uint8

const (
	// DescAny means "no static shape known"; used when parameterized
	// container erasure leaves no element/key/value type information.
	DescAny DescriptorKind = iota
	DescScalar
	DescListOf
	DescArrayOf
	DescMapOf
	DescEnum
	DescObject
)

func (k DescriptorKind) String() string {
	switch k {
	case DescAny:
		return "any"
	case DescScalar:
		return "scalar"
	case DescListOf:
		return "list"
	case DescArrayOf:
		return "array"
	case DescMapOf:
		return "map"
	case DescEnum:
		return "enum"
	case DescObject:
		return "object"
	default:
		return "unknown"
	}
}

// TypeDescriptor is the explicit, passed-through replacement for
// parameterized-type reflection. One is built per declared field/value
// type and threaded through Decode/Encode instead of discovered via
// generics at each call.
type TypeDescriptor struct {
	Kind DescriptorKind

	// Go is the concrete Go type this descriptor targets. Nil for
	// DescAny.
	Go reflect.Type

	// Elem is the element descriptor for DescListOf/DescArrayOf.
	Elem *TypeDescriptor
	// Key/Value are the parameter descriptors for DescMapOf.
	Key   *TypeDescriptor
	Value *TypeDescriptor

	// Class is the registry identifier for DescEnum/DescObject.
	Class string
	// RequiresClassTag marks an object/enum descriptor as polymorphic:
	// its concrete class may differ from the declared static type, so
	// encode must stamp a __class field and decode must honor one.
	RequiresClassTag bool
}

// AnyDescriptor returns the descriptor used when parameter info is
// absent for a container's element/key/value type (erasure case).
func AnyDescriptor() *TypeDescriptor {
	return &TypeDescriptor{Kind: DescAny}
}

// ScalarOf describes a primitive or passthrough Go type (string, bool,
// any numeric kind, or any type accepted as-is from the document).
func ScalarOf(rt reflect.Type) *TypeDescriptor {
	return &TypeDescriptor{Kind: DescScalar, Go: rt}
}

// ListOf describes a dynamically sized, ordered Go slice. elem may be
// AnyDescriptor() when unparameterized.
func ListOf(elem *TypeDescriptor) *TypeDescriptor {
	if elem == nil {
		elem = AnyDescriptor()
	}
	return &TypeDescriptor{Kind: DescListOf, Elem: elem, Go: reflect.SliceOf(goTypeOf(elem))}
}

// ArrayOf describes a fixed-component-type, variable-length sequence.
// Go has no runtime-extensible array type, so — matching how
// encoding/json and similar idiomatic decoders treat "array" targets —
// this decodes into a Go slice of the component type; callers that
// truly need a fixed-length [N]T should declare DescScalar and coerce
// themselves.
func ArrayOf(elem *TypeDescriptor) *TypeDescriptor {
	if elem == nil {
		elem = AnyDescriptor()
	}
	return &TypeDescriptor{Kind: DescArrayOf, Elem: elem, Go: reflect.SliceOf(goTypeOf(elem))}
}

// MapOf describes a Go map. key/value may be AnyDescriptor() when
// unparameterized.
func MapOf(key, value *TypeDescriptor) *TypeDescriptor {
	if key == nil {
		key = AnyDescriptor()
	}
	if value == nil {
		value = AnyDescriptor()
	}
	return &TypeDescriptor{Kind: DescMapOf, Key: key, Value: value, Go: reflect.MapOf(goTypeOf(key), goTypeOf(value))}
}

// EnumOf describes an enumeration resolved through the registry by
// class identifier. polymorphic marks it as requiring a class tag on
// write.
func EnumOf(class string, rt reflect.Type, polymorphic bool) *TypeDescriptor {
	return &TypeDescriptor{Kind: DescEnum, Class: class, Go: rt, RequiresClassTag: polymorphic}
}

// ObjectOf describes a nested document decoded through an
// ObjectCodec registered under class. polymorphic marks it as
// requiring a __class tag (the concrete type may differ from the
// statically declared one).
func ObjectOf(class string, rt reflect.Type, polymorphic bool) *TypeDescriptor {
	return &TypeDescriptor{Kind: DescObject, Class: class, Go: rt, RequiresClassTag: polymorphic}
}

var emptyInterfaceType = reflect.TypeOf((*interface{})(nil)).Elem()

func goTypeOf(d *TypeDescriptor) reflect.Type {
	if d == nil || d.Go == nil {
		return emptyInterfaceType
	}
	return d.Go
}
