package dict

import (
    "fmt"
    "iter"

    "tvwire/pkg/tval"
    "tvwire/pkg/tval/wire"
)

// Array is an ordered, index-accessible sequence. An Array may declare an
// element type name; appends are then coerced to that domain type through
// the registry and rejected with a wrapped tval.ErrCoerce on failure.
type Array struct {
    elems    []tval.Value
    elemType string // "" = unconstrained
    ts       uint64 // creation time, µs since epoch
}

// NewArray returns an empty unconstrained Array.
func NewArray() *Array { return &Array{ts: nowMicros()} }

// NewTypedArray returns an empty Array whose appends coerce to the named
// domain type.
func NewTypedArray(elemType string) *Array {
    return &Array{elemType: elemType, ts: nowMicros()}
}

// FromSlice builds an unconstrained Array by strictly classifying each
// element, recursing into nested collections.
func FromSlice(items []any) (*Array, error) {
    a := NewArray()
    for _, it := range items {
        if err := a.Append(it); err != nil {
            return nil, err
        }
    }
    return a, nil
}

// Append classifies v and stores it. With a declared element type the
// value is coerced instead; on coercion failure the Array is unchanged.
func (a *Array) Append(v any) error {
    if a.elemType != "" {
        t, err := tval.DefaultRegistry().Coerce(a.elemType, v)
        if err != nil {
            return err
        }
        tv, err := tval.FromTyped(t)
        if err != nil {
            return err
        }
        a.elems = append(a.elems, tv)
        return nil
    }
    tv, err := tval.Classify(v)
    if err != nil {
        return err
    }
    a.elems = append(a.elems, tv)
    return nil
}

// AppendLenient appends like Append on an unconstrained Array but degrades
// unclassifiable values to an Unsupported marker. On a constrained Array
// it behaves exactly like Append, since coercion failure is a rejection,
// not a classification gap.
func (a *Array) AppendLenient(v any) error {
    if a.elemType != "" {
        return a.Append(v)
    }
    a.elems = append(a.elems, tval.ClassifyLenient(v))
    return nil
}

// Pop removes and returns the last element.
func (a *Array) Pop() (any, error) {
    return a.PopIndex(len(a.elems) - 1)
}

// PopIndex removes and returns the materialized element at i.
func (a *Array) PopIndex(i int) (any, error) {
    if i < 0 || i >= len(a.elems) {
        return nil, fmt.Errorf("%w: %d (len %d)", tval.ErrIndexOutOfRange, i, len(a.elems))
    }
    out, err := tval.Materialize(a.elems[i])
    if err != nil {
        return nil, err
    }
    a.elems = append(a.elems[:i], a.elems[i+1:]...)
    return out, nil
}

// At materializes the element at i without removing it.
func (a *Array) At(i int) (any, error) {
    if i < 0 || i >= len(a.elems) {
        return nil, fmt.Errorf("%w: %d (len %d)", tval.ErrIndexOutOfRange, i, len(a.elems))
    }
    return tval.Materialize(a.elems[i])
}

// Len returns the element count.
func (a *Array) Len() int { return len(a.elems) }

// Values iterates materialized elements in order. Each call starts a fresh
// pass; each element keeps its own runtime type identity (a domain value
// comes back as its domain type, not as a plain scalar).
func (a *Array) Values() iter.Seq[any] {
    return func(yield func(any) bool) {
        for _, e := range a.elems {
            if !yield(tval.MaterializeLenient(e)) {
                return
            }
        }
    }
}

// Bytes serializes the Array to its framed wire form.
func (a *Array) Bytes() []byte {
    return wire.EncodeFrame(a.AsValue(), wire.FrameOptions{})
}

// ArrayFromBytes reconstructs an Array from bytes produced by Bytes.
func ArrayFromBytes(b []byte) (*Array, error) {
    v, err := wire.DecodeFrame(b)
    if err != nil {
        return nil, err
    }
    return fromSequence(v)
}

func fromSequence(v tval.Value) (*Array, error) {
    elems, err := v.Elems()
    if err != nil {
        return nil, fmt.Errorf("%w: not a sequence: %v", tval.ErrDecode, err)
    }
    a := NewArray()
    a.elems = append(a.elems, elems...)
    return a, nil
}

// AsValue folds the Array into a Sequence value. Implements tval.Valuer.
func (a *Array) AsValue() tval.Value {
    elems := make([]tval.Value, len(a.elems))
    copy(elems, a.elems)
    return tval.Sequence(elems...)
}

// Equal reports ordered elementwise equality.
func (a *Array) Equal(o *Array) bool {
    if a == nil || o == nil {
        return a == o
    }
    return tval.Equal(a.AsValue(), o.AsValue())
}

// TypeName implements the domain capability.
func (a *Array) TypeName() string { return "Array" }

// MarshalValue serializes the Array's sequence without framing.
func (a *Array) MarshalValue() ([]byte, error) { return wire.Encode(a.AsValue()), nil }

// Timestamp returns the creation time in µs since epoch.
func (a *Array) Timestamp() uint64 { return a.ts }

// SetTimestamp overrides the creation time.
func (a *Array) SetTimestamp(ts uint64) { a.ts = ts }

func init() {
    tval.Register("Array", func(payload []byte) (tval.Typed, error) {
        v, err := wire.Decode(payload)
        if err != nil {
            return nil, err
        }
        return fromSequence(v)
    })
}
