// Package dtypes ships reference domain types for the tval capability:
// a microsecond-precision Datetime, a normalized resource URN, and a
// typed string usable as a constrained array element type. Each registers
// itself with the default registry at init.
package dtypes

import (
    "fmt"
    "strconv"
    "strings"
    "time"

    "tvwire/pkg/tval"
)

// Datetime is a point in time with microsecond precision, serialized as
// decimal microseconds since epoch.
type Datetime struct {
    us uint64
}

// Now returns the current time truncated to microseconds.
func Now() Datetime { return Datetime{us: uint64(time.Now().UnixMicro())} }

// FromMicros builds a Datetime from µs since epoch.
func FromMicros(us uint64) Datetime { return Datetime{us: us} }

// FromTime converts a time.Time, truncating to microseconds.
func FromTime(t time.Time) Datetime { return Datetime{us: uint64(t.UnixMicro())} }

// Micros returns µs since epoch.
func (d Datetime) Micros() uint64 { return d.us }

// Time converts back to a time.Time.
func (d Datetime) Time() time.Time { return time.UnixMicro(int64(d.us)) }

// Sub returns the duration between two Datetimes.
func (d Datetime) Sub(o Datetime) time.Duration {
    return time.Duration(int64(d.us)-int64(o.us)) * time.Microsecond
}

func (d Datetime) String() string { return d.Time().UTC().Format(time.RFC3339Nano) }

// TypeName implements the domain capability.
func (d Datetime) TypeName() string { return "Datetime" }

// MarshalValue serializes as decimal µs since epoch.
func (d Datetime) MarshalValue() ([]byte, error) {
    return strconv.AppendUint(nil, d.us, 10), nil
}

func decodeDatetime(payload []byte) (tval.Typed, error) {
    us, err := strconv.ParseUint(string(payload), 10, 64)
    if err != nil {
        return nil, fmt.Errorf("dtypes: bad datetime payload %q: %w", payload, err)
    }
    return Datetime{us: us}, nil
}

// URN is a hierarchical resource name. Trailing slashes are not
// significant and are trimmed on construction, so "ns:/users/" and
// "ns:/users" name the same resource.
type URN struct {
    path string
}

// NewURN builds a normalized URN.
func NewURN(s string) URN {
    for len(s) > 1 && strings.HasSuffix(s, "/") {
        s = s[:len(s)-1]
    }
    return URN{path: s}
}

func (u URN) String() string { return u.path }

// TypeName implements the domain capability.
func (u URN) TypeName() string { return "URN" }

// MarshalValue serializes the normalized path.
func (u URN) MarshalValue() ([]byte, error) { return []byte(u.path), nil }

func decodeURN(payload []byte) (tval.Typed, error) {
    return NewURN(string(payload)), nil
}

// Str is a typed string. Unlike a plain string it keeps its domain
// identity through a round trip, and it backs constrained arrays: plain
// strings and byte slices coerce to it, anything else is rejected.
type Str string

func (s Str) String() string { return string(s) }

// TypeName implements the domain capability.
func (s Str) TypeName() string { return "Str" }

// MarshalValue serializes the raw string bytes.
func (s Str) MarshalValue() ([]byte, error) { return []byte(s), nil }

func decodeStr(payload []byte) (tval.Typed, error) {
    return Str(payload), nil
}

func coerceStr(v any) (tval.Typed, error) {
    switch x := v.(type) {
    case Str:
        return x, nil
    case string:
        return Str(x), nil
    case []byte:
        return Str(x), nil
    default:
        return nil, fmt.Errorf("value of type %T is not text", v)
    }
}

func init() {
    tval.Register("Datetime", decodeDatetime)
    tval.Register("URN", decodeURN)
    tval.RegisterCoercible("Str", decodeStr, coerceStr)
}
