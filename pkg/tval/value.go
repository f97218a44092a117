// Package tval implements a closed tagged-union value model for carrying
// heterogeneous, dynamically typed data across a serialization boundary.
// A Value is one of a fixed set of kinds; classification of arbitrary Go
// values into the model and materialization back out live in classify.go.
package tval

import (
    "bytes"
    "fmt"
)

// Kind identifies the shape held by a Value.
type Kind uint8

const (
    KindNull Kind = iota
    KindBool
    KindInt
    KindText
    KindBytes
    KindDomain      // externally defined typed value, opaque payload
    KindMapping     // string-keyed, insertion-ordered
    KindSequence    // ordered
    KindUnsupported // lossy fallback marker
)

func (k Kind) String() string {
    switch k {
    case KindNull:
        return "null"
    case KindBool:
        return "bool"
    case KindInt:
        return "int"
    case KindText:
        return "text"
    case KindBytes:
        return "bytes"
    case KindDomain:
        return "domain"
    case KindMapping:
        return "mapping"
    case KindSequence:
        return "sequence"
    case KindUnsupported:
        return "unsupported"
    default:
        return "unknown"
    }
}

// Entry is one key/value pair of a Mapping.
type Entry struct {
    Key string
    Val Value
}

// Value is the closed union of every encodable shape. Only the fields
// matching the kind are meaningful; the zero Value is Null.
type Value struct {
    kind Kind

    b   bool
    i   int64
    s   string // text, domain type name, or unsupported description
    raw []byte // bytes or domain payload
    ts  uint64 // domain creation timestamp, µs since epoch; 0 = unset

    entries []Entry // mapping
    elems   []Value // sequence
}

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns an integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Text returns a unicode string value.
func Text(s string) Value { return Value{kind: KindText, s: s} }

// Bytes returns a raw byte string value.
func Bytes(b []byte) Value { return Value{kind: KindBytes, raw: b} }

// Domain returns an externally typed value without a timestamp.
func Domain(typeName string, payload []byte) Value {
    return Value{kind: KindDomain, s: typeName, raw: payload}
}

// DomainAt returns an externally typed value with a creation timestamp
// in microseconds since epoch (0 means unset).
func DomainAt(typeName string, payload []byte, ts uint64) Value {
    return Value{kind: KindDomain, s: typeName, raw: payload, ts: ts}
}

// Mapping returns a string-keyed ordered mapping from entries.
// Duplicate keys overwrite the value but keep the first key's position.
func Mapping(entries ...Entry) Value {
    v := Value{kind: KindMapping}
    for _, e := range entries {
        v.setEntry(e.Key, e.Val)
    }
    return v
}

// Sequence returns an ordered sequence value.
func Sequence(elems ...Value) Value { return Value{kind: KindSequence, elems: elems} }

// Unsupported returns the lossy fallback marker with a description of the
// origin type. The description always carries the "Unsupported type" prefix
// so consumers can detect the marker textually as well as by kind.
func Unsupported(desc string) Value { return Value{kind: KindUnsupported, s: desc} }

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean payload.
func (v Value) AsBool() (bool, error) {
    if v.kind != KindBool {
        return false, fmt.Errorf("tval: expected bool, got %s", v.kind)
    }
    return v.b, nil
}

// AsInt returns the integer payload.
func (v Value) AsInt() (int64, error) {
    if v.kind != KindInt {
        return 0, fmt.Errorf("tval: expected int, got %s", v.kind)
    }
    return v.i, nil
}

// AsText returns the text payload.
func (v Value) AsText() (string, error) {
    if v.kind != KindText {
        return "", fmt.Errorf("tval: expected text, got %s", v.kind)
    }
    return v.s, nil
}

// AsBytes returns the byte payload.
func (v Value) AsBytes() ([]byte, error) {
    if v.kind != KindBytes {
        return nil, fmt.Errorf("tval: expected bytes, got %s", v.kind)
    }
    return v.raw, nil
}

// AsDomain returns the domain type name and opaque payload.
func (v Value) AsDomain() (string, []byte, error) {
    if v.kind != KindDomain {
        return "", nil, fmt.Errorf("tval: expected domain, got %s", v.kind)
    }
    return v.s, v.raw, nil
}

// DomainTimestamp returns the domain creation timestamp in µs (0 = unset).
func (v Value) DomainTimestamp() uint64 { return v.ts }

// Entries returns the mapping entries in insertion order.
func (v Value) Entries() ([]Entry, error) {
    if v.kind != KindMapping {
        return nil, fmt.Errorf("tval: expected mapping, got %s", v.kind)
    }
    return v.entries, nil
}

// Elems returns the sequence elements in order.
func (v Value) Elems() ([]Value, error) {
    if v.kind != KindSequence {
        return nil, fmt.Errorf("tval: expected sequence, got %s", v.kind)
    }
    return v.elems, nil
}

// Description returns the unsupported marker's description.
func (v Value) Description() (string, error) {
    if v.kind != KindUnsupported {
        return "", fmt.Errorf("tval: expected unsupported, got %s", v.kind)
    }
    return v.s, nil
}

// Len returns the element count of a mapping or sequence, otherwise 0.
func (v Value) Len() int {
    switch v.kind {
    case KindMapping:
        return len(v.entries)
    case KindSequence:
        return len(v.elems)
    default:
        return 0
    }
}

// Get returns the mapping value for key and whether it was present.
func (v Value) Get(key string) (Value, bool) {
    if v.kind != KindMapping {
        return Value{}, false
    }
    for _, e := range v.entries {
        if e.Key == key {
            return e.Val, true
        }
    }
    return Value{}, false
}

// setEntry overwrites an existing key in place or appends a new one.
func (v *Value) setEntry(key string, val Value) {
    for i := range v.entries {
        if v.entries[i].Key == key {
            v.entries[i].Val = val
            return
        }
    }
    v.entries = append(v.entries, Entry{Key: key, Val: val})
}

// Equal reports semantic equality. Mapping comparison is key-set based
// (iteration order does not affect equality); sequences compare elementwise
// in order. The domain timestamp is auxiliary metadata, not part of the
// value, and is excluded.
func Equal(a, b Value) bool {
    if a.kind != b.kind {
        return false
    }
    switch a.kind {
    case KindNull:
        return true
    case KindBool:
        return a.b == b.b
    case KindInt:
        return a.i == b.i
    case KindText, KindUnsupported:
        return a.s == b.s
    case KindBytes:
        return bytes.Equal(a.raw, b.raw)
    case KindDomain:
        return a.s == b.s && bytes.Equal(a.raw, b.raw)
    case KindSequence:
        if len(a.elems) != len(b.elems) {
            return false
        }
        for i := range a.elems {
            if !Equal(a.elems[i], b.elems[i]) {
                return false
            }
        }
        return true
    case KindMapping:
        if len(a.entries) != len(b.entries) {
            return false
        }
        for _, e := range a.entries {
            ov, ok := b.Get(e.Key)
            if !ok || !Equal(e.Val, ov) {
                return false
            }
        }
        return true
    default:
        return false
    }
}
