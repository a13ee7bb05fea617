package store

import (
	"errors"

	"github.com/slatepowered/store/zerror"
)

// ErrMissingPrimaryKey is returned when a remote query returned a document
// with no primary-key field.
var ErrMissingPrimaryKey = zerror.String("document has no primary key field")

// ErrRemoteFailure is reported when a DataTable's result channel closes
// without delivering a result. Errors a DataTable does deliver are
// propagated to the caller unchanged, not wrapped in ErrRemoteFailure, and
// are never retried or recovered from here.
var ErrRemoteFailure = zerror.String("remote table operation failed")

// ErrCancelled is returned by a Future/FindStatus when the caller cancelled
// before completion was delivered; it does not abort the underlying
// in-flight remote operation.
var ErrCancelled = zerror.String("find cancelled")

// IsMissingPrimaryKeyErr reports whether err is (or wraps) ErrMissingPrimaryKey.
func IsMissingPrimaryKeyErr(err error) bool {
	return errors.Is(zerror.Base(err), ErrMissingPrimaryKey)
}

// IsRemoteFailureErr reports whether err is (or wraps) ErrRemoteFailure.
func IsRemoteFailureErr(err error) bool {
	return errors.Is(zerror.Base(err), ErrRemoteFailure)
}
