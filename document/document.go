// Package document defines the untyped recursive value exchanged with a
// storage layer: a tree of scalars, ordered lists and string-keyed maps.
// Nothing here knows about Go struct types, codecs or registries; those
// live one layer up, in package codec.
package document

// Kind discriminates the shape of a Document node.
type Kind uint8

const (
	KindNull Kind = iota
	KindScalar
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindScalar:
		return "scalar"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// ClassField is the reserved map-node field carrying a polymorphic
// class identifier.
const ClassField = "__class"

// Document is a recursive tagged-union value: null, a scalar, an
// ordered list of Documents, or a string-keyed map of Documents. A map
// node may additionally carry a ClassField entry for polymorphism.
type Document struct {
	Kind   Kind
	Scalar interface{}
	List   []*Document
	Map    map[string]*Document
}

// Null returns the null Document.
func Null() *Document {
	return &Document{Kind: KindNull}
}

// NewScalar wraps a primitive value (string, bool, any numeric kind)
// as a scalar Document. A nil value is normalized to Null().
func NewScalar(v interface{}) *Document {
	if v == nil {
		return Null()
	}
	return &Document{Kind: KindScalar, Scalar: v}
}

// NewList returns a list Document containing the given elements in
// order.
func NewList(items ...*Document) *Document {
	return &Document{Kind: KindList, List: items}
}

// NewMap returns an empty map Document.
func NewMap() *Document {
	return &Document{Kind: KindMap, Map: make(map[string]*Document)}
}

// IsNull reports whether d is nil or the null Document.
func (d *Document) IsNull() bool {
	return d == nil || d.Kind == KindNull
}

// Class returns the map node's class tag, if this is a map carrying
// one.
func (d *Document) Class() (string, bool) {
	if d == nil || d.Kind != KindMap {
		return "", false
	}
	c, ok := d.Map[ClassField]
	if !ok || c.Kind != KindScalar {
		return "", false
	}
	s, ok := c.Scalar.(string)
	return s, ok
}

// SetClass tags a map Document with a polymorphic class identifier.
// Panics if d is not a map node, since a caller should never attempt
// to tag anything else.
func (d *Document) SetClass(name string) {
	if d.Kind != KindMap {
		panic("document: SetClass on non-map node")
	}
	d.Map[ClassField] = NewScalar(name)
}

// Get returns the field's value within a map node, or (nil, false) if
// absent or d is not a map.
func (d *Document) Get(field string) (*Document, bool) {
	if d == nil || d.Kind != KindMap {
		return nil, false
	}
	v, ok := d.Map[field]
	return v, ok
}

// Set stores a field's value on a map node. Panics if d is not a map
// node.
func (d *Document) Set(field string, v *Document) {
	if d.Kind != KindMap {
		panic("document: Set on non-map node")
	}
	if v == nil {
		v = Null()
	}
	d.Map[field] = v
}

// Append adds an element to a list node. Panics if d is not a list
// node.
func (d *Document) Append(v *Document) {
	if d.Kind != KindList {
		panic("document: Append on non-list node")
	}
	d.List = append(d.List, v)
}

// Len returns the number of elements (list) or fields (map); zero for
// scalar and null nodes.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	switch d.Kind {
	case KindList:
		return len(d.List)
	case KindMap:
		return len(d.Map)
	default:
		return 0
	}
}

// AsPairs returns a map node's (key, value) entries as pairs in no
// particular order, skipping the class tag. The pairs have the same
// shape as the [k, v] lists used for maps with non-string keys; the
// codec package's map encoder builds those lists from the Go map
// directly and does not call AsPairs.
func (d *Document) AsPairs() [][2]*Document {
	if d == nil || d.Kind != KindMap {
		return nil
	}
	pairs := make([][2]*Document, 0, len(d.Map))
	for k, v := range d.Map {
		if k == ClassField {
			continue
		}
		pairs = append(pairs, [2]*Document{NewScalar(k), v})
	}
	return pairs
}
