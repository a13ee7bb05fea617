package codec

import (
	"reflect"
	"sync"

	"github.com/slatepowered/store/document"
)

// ObjectCodec knows how to construct and populate one Go type from a
// nested document, and the reverse. Construction is split from
// decoding so that cyclic or self-referential objects can be
// registered in the active Context before their fields are filled,
// and so polymorphic classes can resolve their concrete type before
// decode proceeds.
type ObjectCodec interface {
	// ClassName is the stable string identifier stored in a __class
	// tag; it replaces ABI-dependent type-name resolution.
	ClassName() string
	// GoType is the concrete Go type this codec populates.
	GoType() reflect.Type
	// Construct allocates a bare value, reading only what is needed
	// to choose a concrete class (e.g. for a polymorphic base type).
	Construct(ctx *Context, in document.DecodeInput) (interface{}, error)
	// Decode populates fields on an already-constructed value.
	Decode(ctx *Context, value interface{}, in document.DecodeInput) error
	// Encode emits fields from value to out.
	Encode(ctx *Context, value interface{}, out document.EncodeOutput) error
}

// ShapedCodec is an ObjectCodec that additionally declares a shape: a
// polymorphic-kind extension on top of its class name, grounded on
// TypeMeta.Shape/ShapeField in db/db_setup.go. A class name shared by
// several shapes (e.g. a "widget" kind with "basic"/"premium" shapes)
// resolves to a different concrete codec per shape, the same way
// StructMetaKinds maps a (kind, shape) pair to a distinct reflect.Type.
type ShapedCodec interface {
	ObjectCodec
	Shape() string
}

// kindShapeKey builds the same "kind" or "kind:shape" composite string
// db_setup.go's getStructMetaKindKey does, reusing the ':' convention
// splitTagged already expects for enum "<class>:<constant>" tags.
func kindShapeKey(kind, shape string) string {
	if shape == "" {
		return kind
	}
	return kind + ":" + shape
}

// Registry is find_codec(type) -> DataCodec: a by-class-name, by-Go-type
// and by-(kind,shape) index of registered ObjectCodecs, plus a
// by-class-name and by-Go-type index of Enums. Grounded on
// db.StructMetas/db.StructMetaKinds (safestore-backed registries
// populated once from struct tags); here codecs are registered
// explicitly by the application instead of discovered by reflecting
// over tags. Safe for concurrent reads; intended to be populated once
// at startup and treated as read-only thereafter.
type Registry struct {
	mu          sync.RWMutex
	byClass     map[string]ObjectCodec
	byGoType    map[reflect.Type]ObjectCodec
	byKindShape map[string]ObjectCodec
	enums       map[string]*Enum
	enumByType  map[reflect.Type]*Enum
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byClass:     make(map[string]ObjectCodec),
		byGoType:    make(map[reflect.Type]ObjectCodec),
		byKindShape: make(map[string]ObjectCodec),
		enums:       make(map[string]*Enum),
		enumByType:  make(map[reflect.Type]*Enum),
	}
}

// RegisterObject adds an ObjectCodec under both its class name and its
// Go type, and additionally under its (kind, shape) pair when c also
// implements ShapedCodec.
func (r *Registry) RegisterObject(c ObjectCodec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byClass[c.ClassName()] = c
	r.byGoType[c.GoType()] = c
	if sc, ok := c.(ShapedCodec); ok {
		r.byKindShape[kindShapeKey(sc.ClassName(), sc.Shape())] = c
	}
}

// RegisterEnum adds an Enum table under both its class name and its
// Go type.
func (r *Registry) RegisterEnum(e *Enum) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enums[e.Class()] = e
	r.enumByType[e.GoType()] = e
}

// FindObjectByClass resolves a __class tag value to its ObjectCodec.
// The bool is false on a class-tag miss; callers fall back to the
// statically expected type rather than treating this as fatal.
func (r *Registry) FindObjectByClass(class string) (ObjectCodec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byClass[class]
	return c, ok
}

// FindObjectByGoType resolves the statically declared Go type to its
// registered codec.
func (r *Registry) FindObjectByGoType(rt reflect.Type) (ObjectCodec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byGoType[rt]
	return c, ok
}

// FindObjectByShape resolves a (kind, shape) pair — the class tag's
// "<kind>:<shape>" form — to its registered ShapedCodec. The bool is
// false on a miss; DecodeValue then tries FindObjectByClass with the
// whole tag and, failing that, the statically expected type, rather
// than treating this as fatal.
func (r *Registry) FindObjectByShape(kind, shape string) (ObjectCodec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byKindShape[kindShapeKey(kind, shape)]
	return c, ok
}

// FindEnumByClass resolves an enum class identifier (the part before
// ':' in a tagged "<class>:<constant>" string).
func (r *Registry) FindEnumByClass(class string) (*Enum, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.enums[class]
	return e, ok
}

// FindEnumByGoType resolves the statically declared enum Go type.
func (r *Registry) FindEnumByGoType(rt reflect.Type) (*Enum, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.enumByType[rt]
	return e, ok
}
