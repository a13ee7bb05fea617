package document

// DecodeInput reads typed fields by name from a Document being
// decoded. ReadKey is privileged: it is used to extract the primary
// key field when no codec context is available yet (e.g. from a raw
// query result prior to locating the target codec) and therefore
// accepts scalar values only.
type DecodeInput interface {
	// Read returns the sub-document bound to field, or (nil, false)
	// if the field is absent from the backing map node.
	Read(field string) (*Document, bool)
	// ReadKey returns the scalar sub-document bound to field, failing
	// with ErrNonPrimitiveKey if it resolves to a list or map.
	ReadKey(field string) (*Document, error)
	// Root returns the Document this input is bound to, for callers
	// that need to iterate a map or list wholesale (e.g. the decode
	// dispatch's list/map rules).
	Root() *Document
}

// EncodeOutput writes typed fields by name into a document-in-progress.
type EncodeOutput interface {
	// Write stores v under field on the backing map node.
	Write(field string, v *Document)
	// Root returns the Document under construction.
	Root() *Document
}

type docInput struct {
	d *Document
}

// NewDecodeInput binds a DecodeInput to an existing Document. d must
// be a map node for Read/ReadKey to resolve fields; a nil or null d is
// treated as an empty map (every Read/ReadKey call misses).
func NewDecodeInput(d *Document) DecodeInput {
	return docInput{d: d}
}

func (in docInput) Root() *Document { return in.d }

func (in docInput) Read(field string) (*Document, bool) {
	return in.d.Get(field)
}

func (in docInput) ReadKey(field string) (*Document, error) {
	v, ok := in.d.Get(field)
	if !ok {
		return nil, nil
	}
	switch v.Kind {
	case KindList, KindMap:
		return nil, ErrNonPrimitiveKey
	default:
		return v, nil
	}
}

type docOutput struct {
	d *Document
}

// NewEncodeOutput returns an EncodeOutput backed by a fresh map
// Document.
func NewEncodeOutput() EncodeOutput {
	return docOutput{d: NewMap()}
}

// NewEncodeOutputInto binds an EncodeOutput to an already-allocated
// map Document, for codecs that need to pre-seed fields (e.g. a
// __class tag) before delegating field-by-field encoding.
func NewEncodeOutputInto(d *Document) EncodeOutput {
	if d.Kind != KindMap {
		panic("document: NewEncodeOutputInto requires a map node")
	}
	return docOutput{d: d}
}

func (out docOutput) Root() *Document { return out.d }

func (out docOutput) Write(field string, v *Document) {
	out.d.Set(field, v)
}
