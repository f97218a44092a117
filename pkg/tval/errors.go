package tval

import "errors"

// Error kinds surfaced by the value model and the packages built on it.
// All failures wrap one of these sentinels so callers can branch with
// errors.Is regardless of the message detail.
var (
    // ErrUnsupportedType is returned by strict classification when a Go
    // value has no representation in the model.
    ErrUnsupportedType = errors.New("unsupported type")

    // ErrDecode is returned when wire bytes are malformed or truncated.
    ErrDecode = errors.New("decode error")

    // ErrKeyNotFound is returned when reading an absent mapping key.
    ErrKeyNotFound = errors.New("key not found")

    // ErrIndexOutOfRange is returned for an out-of-range sequence index.
    ErrIndexOutOfRange = errors.New("index out of range")

    // ErrCoerce is returned when a constrained sequence rejects a value
    // that cannot be coerced to its declared element type.
    ErrCoerce = errors.New("cannot coerce value")
)
