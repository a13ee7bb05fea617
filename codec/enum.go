package codec

import (
	"reflect"
	"strings"
)

// Enum is a case-insensitive constant-name <-> value table for one
// registered enumeration class. Constant matching is always
// case-insensitive.
type Enum struct {
	class string
	goTyp reflect.Type
	names map[string]interface{} // lowercased name -> value
	vals  map[interface{}]string // value -> canonical name
}

// NewEnum creates an empty enum table for the given registry class
// identifier and backing Go type.
func NewEnum(class string, goTyp reflect.Type) *Enum {
	return &Enum{
		class: class,
		goTyp: goTyp,
		names: make(map[string]interface{}),
		vals:  make(map[interface{}]string),
	}
}

// Add registers one constant under its canonical name.
func (e *Enum) Add(name string, value interface{}) *Enum {
	e.names[strings.ToLower(name)] = value
	e.vals[value] = name
	return e
}

// Class returns the registry identifier this enum is keyed by.
func (e *Enum) Class() string { return e.class }

// GoType returns the backing Go type of the enum's values.
func (e *Enum) GoType() reflect.Type { return e.goTyp }

// Resolve looks up a constant case-insensitively.
func (e *Enum) Resolve(name string) (interface{}, bool) {
	v, ok := e.names[strings.ToLower(name)]
	return v, ok
}

// Name returns the canonical constant name for a value, for encode.
func (e *Enum) Name(value interface{}) (string, bool) {
	n, ok := e.vals[value]
	return n, ok
}
