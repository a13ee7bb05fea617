package store

import (
	"fmt"
	"strings"
)

// FieldConstraint is one conjunct of a Query: a named field compared against
// a value using op. The comparator a DataCodec compiles for a Query is a
// conjunction (AND) of all of its constraints, in the spirit of the
// multi-checker conjunction db's ORM layer runs per field (fvc).
type FieldConstraint struct {
	Field string
	Op    string // "==", "!=", "<", "<=", ">", ">="
	Value interface{}
}

// Query is an optional key plus a conjunction of field constraints,
// compilable by a DataCodec into a value predicate.
type Query struct {
	Key         interface{}
	Ancestor    interface{}
	Constraints []FieldConstraint
	Limit       int
}

// HasKey reports whether the query names a specific key, letting
// find_one_cached/find_one take the direct-probe fast path instead of a
// linear scan.
func (q *Query) HasKey() bool {
	return q != nil && q.Key != nil
}

// HasAncestor reports whether the query restricts to rows under a given
// ancestor key, letting find_all route to a DataTable's AncestorScanner
// instead of a full scan.
func (q *Query) HasAncestor() bool {
	return q != nil && q.Ancestor != nil
}

func (q *Query) And(field, op string, value interface{}) *Query {
	q.Constraints = append(q.Constraints, FieldConstraint{Field: field, Op: op, Value: value})
	return q
}

// WithAncestor restricts the query to rows under the given ancestor key,
// grounded on db's ParentKeyField/pkind=/pshape= struct-tag family
// (datastore.go's DatastoreKey/DatastoreKeyFromKey). Mutates q in place
// and returns it for chaining.
func (q *Query) WithAncestor(key interface{}) *Query {
	q.Ancestor = key
	return q
}

// String renders a canonical form suitable as a cache key for query
// results, grounded on db.QueryAsString's "join everything with a
// delimiter unlikely to appear in a field name" approach, including the
// parent key first when one is set.
func (q *Query) String() string {
	if q == nil {
		return ""
	}
	parts := make([]string, 0, len(q.Constraints)+3)
	if q.Ancestor != nil {
		parts = append(parts, fmt.Sprintf("ancestor=%v", q.Ancestor))
	}
	if q.Key != nil {
		parts = append(parts, fmt.Sprintf("key=%v", q.Key))
	}
	for _, c := range q.Constraints {
		parts = append(parts, fmt.Sprintf("%s%s%v", c.Field, c.Op, c.Value))
	}
	if q.Limit > 0 {
		parts = append(parts, fmt.Sprintf("limit=%d", q.Limit))
	}
	return strings.Join(parts, "^^")
}

func ByKey(k interface{}) *Query {
	return &Query{Key: k}
}

// AncestorKey is implemented by a key type that has a parent/ancestor
// key, grounded on db's ParentKeyField convention (a struct field
// resolved through the driver's ParentKey(ctx, key) in
// DatastoreKeyFromKey, db/datastore.go). SaveSync checks for it on the
// item's key and, when present, writes the parent under
// AncestorFieldName so a DataTable can group rows by ancestor the way
// memtable does.
type AncestorKey interface {
	ParentKey() (parent interface{}, ok bool)
}

// AncestorFieldName is the conventional document field an ancestor key is
// encoded into on save.
const AncestorFieldName = "__parent"
