// Package dict provides the containers built on the tval model: an
// insertion-ordered string-keyed Dict, an optionally type-constrained
// Array, and an Embedded wrapper preserving creation timestamps across
// serialization. All containers are single-owner: concurrent mutation of
// one instance must be synchronized by the caller.
package dict

import (
    "fmt"
    "iter"
    "time"

    "tvwire/pkg/tval"
    "tvwire/pkg/tval/wire"
)

func nowMicros() uint64 { return uint64(time.Now().UnixMicro()) }

// Pair is one key/value argument for FromPairs.
type Pair struct {
    Key string
    Val any
}

// Dict is a string-keyed container that preserves insertion order through
// any number of encode/decode round trips. Values are classified on Set
// and materialized on read.
type Dict struct {
    entries []entry
    ts      uint64 // creation time, µs since epoch
}

type entry struct {
    key string
    val tval.Value
}

// New returns an empty Dict stamped with the current time.
func New() *Dict { return &Dict{ts: nowMicros()} }

// FromPairs builds a Dict from explicit key/value arguments, classifying
// strictly. Later duplicates overwrite earlier values in place.
func FromPairs(pairs ...Pair) (*Dict, error) {
    d := New()
    for _, p := range pairs {
        if err := d.Set(p.Key, p.Val); err != nil {
            return nil, err
        }
    }
    return d, nil
}

// FromMap builds a Dict from a plain map, classifying strictly. Keys are
// inserted in sorted order so construction is deterministic.
func FromMap(m map[string]any) (*Dict, error) {
    v, err := tval.Classify(m)
    if err != nil {
        return nil, err
    }
    return fromMapping(v)
}

// FromBytes reconstructs a Dict from bytes produced by Bytes.
func FromBytes(b []byte) (*Dict, error) {
    v, err := wire.DecodeFrame(b)
    if err != nil {
        return nil, err
    }
    return fromMapping(v)
}

func fromMapping(v tval.Value) (*Dict, error) {
    entries, err := v.Entries()
    if err != nil {
        return nil, fmt.Errorf("%w: not a mapping: %v", tval.ErrDecode, err)
    }
    d := New()
    for _, e := range entries {
        d.setValue(e.Key, e.Val)
    }
    return d, nil
}

// Set classifies v strictly and stores it under key. Overwriting keeps the
// key's original position.
func (d *Dict) Set(key string, v any) error {
    tv, err := tval.Classify(v)
    if err != nil {
        return err
    }
    d.setValue(key, tv)
    return nil
}

// SetLenient stores like Set but degrades unclassifiable values to an
// Unsupported marker instead of failing.
func (d *Dict) SetLenient(key string, v any) {
    d.setValue(key, tval.ClassifyLenient(v))
}

func (d *Dict) setValue(key string, tv tval.Value) {
    for i := range d.entries {
        if d.entries[i].key == key {
            d.entries[i].val = tv
            return
        }
    }
    d.entries = append(d.entries, entry{key: key, val: tv})
}

// Get materializes and returns the value stored under key.
func (d *Dict) Get(key string) (any, error) {
    for _, e := range d.entries {
        if e.key == key {
            return tval.Materialize(e.val)
        }
    }
    return nil, fmt.Errorf("%w: %q", tval.ErrKeyNotFound, key)
}

// GetValue returns the stored Value without materializing.
func (d *Dict) GetValue(key string) (tval.Value, bool) {
    for _, e := range d.entries {
        if e.key == key {
            return e.val, true
        }
    }
    return tval.Value{}, false
}

// Delete removes key and reports whether it was present.
func (d *Dict) Delete(key string) bool {
    for i := range d.entries {
        if d.entries[i].key == key {
            d.entries = append(d.entries[:i], d.entries[i+1:]...)
            return true
        }
    }
    return false
}

// Len returns the number of keys.
func (d *Dict) Len() int { return len(d.entries) }

// Items iterates key/value pairs in insertion order. Each call starts a
// fresh pass. Values that cannot materialize degrade to *tval.Opaque
// rather than being dropped.
func (d *Dict) Items() iter.Seq2[string, any] {
    return func(yield func(string, any) bool) {
        for _, e := range d.entries {
            if !yield(e.key, tval.MaterializeLenient(e.val)) {
                return
            }
        }
    }
}

// Keys iterates keys in insertion order.
func (d *Dict) Keys() iter.Seq[string] {
    return func(yield func(string) bool) {
        for _, e := range d.entries {
            if !yield(e.key) {
                return
            }
        }
    }
}

// ToMap recursively materializes the whole structure into plain Go values:
// nested mappings become map[string]any, sequences become []any.
func (d *Dict) ToMap() map[string]any {
    out, _ := tval.MaterializeLenient(d.AsValue()).(map[string]any)
    return out
}

// Bytes serializes the Dict to its framed wire form.
func (d *Dict) Bytes() []byte {
    return wire.EncodeFrame(d.AsValue(), wire.FrameOptions{})
}

// AsValue folds the Dict into a Mapping value. Implements tval.Valuer, so
// a Dict nested inside another container classifies structurally.
func (d *Dict) AsValue() tval.Value {
    entries := make([]tval.Entry, len(d.entries))
    for i, e := range d.entries {
        entries[i] = tval.Entry{Key: e.key, Val: e.val}
    }
    return tval.Mapping(entries...)
}

// Equal reports key-set and per-key value equality; iteration order does
// not participate.
func (d *Dict) Equal(o *Dict) bool {
    if d == nil || o == nil {
        return d == o
    }
    return tval.Equal(d.AsValue(), o.AsValue())
}

// EqualMap compares against a plain map by classifying it leniently and
// comparing values per key.
func (d *Dict) EqualMap(m map[string]any) bool {
    return tval.Equal(d.AsValue(), tval.ClassifyLenient(m))
}

// TypeName implements the domain capability.
func (d *Dict) TypeName() string { return "Dict" }

// MarshalValue serializes the Dict's mapping without framing.
func (d *Dict) MarshalValue() ([]byte, error) { return wire.Encode(d.AsValue()), nil }

// Timestamp returns the creation time in µs since epoch.
func (d *Dict) Timestamp() uint64 { return d.ts }

// SetTimestamp overrides the creation time.
func (d *Dict) SetTimestamp(ts uint64) { d.ts = ts }

func init() {
    tval.Register("Dict", func(payload []byte) (tval.Typed, error) {
        v, err := wire.Decode(payload)
        if err != nil {
            return nil, err
        }
        return fromMapping(v)
    })
}
