package codec

import (
	"errors"

	"github.com/slatepowered/store/zerror"
)

// ErrEnumResolution is returned when no constant in the target
// enumeration matched the encoded string.
var ErrEnumResolution = zerror.String("enum constant not resolved")

// ErrClassResolution names the case where a __class tag was present
// but the registry could not resolve it. DecodeValue never returns it:
// it logs a debug trace and falls back to the statically expected
// type.
var ErrClassResolution = zerror.String("class tag not resolved")

// ErrCodecMissing is returned when find_codec(type) produced no codec
// for a type decode required; fatal to the decode operation it occurs
// in.
var ErrCodecMissing = zerror.String("no codec registered for type")

// IsClassResolutionErr reports whether err is (or wraps) ErrClassResolution.
func IsClassResolutionErr(err error) bool {
	return errors.Is(zerror.Base(err), ErrClassResolution)
}

// IsCodecMissingErr reports whether err is (or wraps) ErrCodecMissing.
func IsCodecMissingErr(err error) bool {
	return errors.Is(zerror.Base(err), ErrCodecMissing)
}
