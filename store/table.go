package store

import (
	"context"

	"github.com/slatepowered/store/document"
)

// DataTable is the opaque remote backend a Datastore fronts, in the spirit
// of app.Driver's registered-backend abstraction: the core never names a
// concrete implementation, only this interface.
type DataTable interface {
	// FindOneAsync looks up a single document matching q and delivers the
	// result on the returned channel exactly once. A null document (nil or
	// document.Null()) with a nil error means "not found".
	FindOneAsync(ctx context.Context, q *Query) <-chan TableResult

	// FindAllAsync streams every document matching q; the channel is
	// closed when the scan completes or ctx is cancelled.
	FindAllAsync(ctx context.Context, q *Query) <-chan TableResult

	// ReplaceOne upserts a single encoded document, keyed by the primary
	// key field already present in out.
	ReplaceOne(ctx context.Context, out *document.Document) error
}

// TableResult is one row (or terminal error) delivered by a DataTable scan.
type TableResult struct {
	Doc *document.Document
	Err error
}

// AncestorScanner is an optional DataTable extension for backends that
// index rows by ancestor key (see AncestorFieldName), grounded on
// QuerySupport's kind/shape-filtered scan (db/datastore.go) generalized
// from "filter by kind and shape" to "filter by ancestor". find_all
// prefers this over a full FindAllAsync scan when a query names an
// ancestor and the table implements it.
type AncestorScanner interface {
	FindByAncestorAsync(ctx context.Context, ancestor interface{}) <-chan TableResult
}
