package codec

import "github.com/slatepowered/store/document"

// Context is per-operation scratch carrying a back-reference to the
// codec registry and cycle-resolution state; it lives only for one
// encode or decode invocation tree. Grounded on the `ctx app.Context`
// parameter threaded through every db function, narrowed here to exactly
// the registry-lookup and already-constructed-object bookkeeping
// decode/encode need.
type Context struct {
	Registry *Registry

	// constructed resolves cyclic/self-referential object references:
	// Decode registers a freshly Construct-ed value here, keyed by the
	// document node it was constructed from, before populating its
	// fields, so a back-reference encountered mid-decode resolves to
	// the same instance.
	constructed map[*document.Document]interface{}
}

// NewContext returns a fresh Context bound to a registry.
func NewContext(r *Registry) *Context {
	return &Context{Registry: r, constructed: make(map[*document.Document]interface{})}
}

// Remember registers a just-constructed value under the document node
// it came from.
func (c *Context) Remember(node *document.Document, value interface{}) {
	c.constructed[node] = value
}

// Resolved returns a previously constructed value for a document node,
// if decode has already visited it in this operation.
func (c *Context) Resolved(node *document.Document) (interface{}, bool) {
	v, ok := c.constructed[node]
	return v, ok
}
