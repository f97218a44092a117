package dict

import (
    "fmt"

    "tvwire/pkg/tval"
    "tvwire/pkg/tval/wire"
)

// Embedded is a single-slot wrapper that pins a value's creation timestamp
// at wrap time. The timestamp survives serialization because Embedded
// itself rides the wire as a domain value, and re-wrapping an Embedded
// forwards the originally captured timestamp instead of taking a new one.
type Embedded struct {
    payload tval.Value
    ts      uint64 // captured timestamp, µs since epoch; 0 = payload had none
}

// Wrap captures v's current timestamp (when its type carries one) and
// stores the value. Wrapping an *Embedded forwards its captured timestamp
// unchanged.
func Wrap(v any) (*Embedded, error) {
    if e, ok := v.(*Embedded); ok {
        return &Embedded{payload: e.payload, ts: e.ts}, nil
    }
    var ts uint64
    if tt, ok := v.(tval.Timestamped); ok {
        ts = tt.Timestamp()
    }
    var pv tval.Value
    if t, ok := v.(tval.Typed); ok {
        // keep the domain identity so Unwrap returns the same type
        var err error
        pv, err = tval.FromTyped(t)
        if err != nil {
            return nil, err
        }
    } else {
        var err error
        pv, err = tval.Classify(v)
        if err != nil {
            return nil, err
        }
    }
    return &Embedded{payload: pv, ts: ts}, nil
}

// Unwrap materializes the inner value with its timestamp attribute
// restored to the captured one.
func (e *Embedded) Unwrap() (any, error) {
    out, err := tval.Materialize(e.payload)
    if err != nil {
        return nil, err
    }
    if e.ts != 0 {
        if tt, ok := out.(tval.Timestamped); ok {
            tt.SetTimestamp(e.ts)
        }
    }
    return out, nil
}

// Timestamp returns the captured timestamp in µs since epoch.
func (e *Embedded) Timestamp() uint64 { return e.ts }

// SetTimestamp overrides the captured timestamp. Called by materialization
// to restore the value read from the wire.
func (e *Embedded) SetTimestamp(ts uint64) { e.ts = ts }

// TypeName implements the domain capability.
func (e *Embedded) TypeName() string { return "Embedded" }

// MarshalValue serializes the inner value; the captured timestamp travels
// as the enclosing domain value's timestamp attribute.
func (e *Embedded) MarshalValue() ([]byte, error) { return wire.Encode(e.payload), nil }

// Bytes serializes the Embedded to framed wire form.
func (e *Embedded) Bytes() ([]byte, error) {
    v, err := tval.FromTyped(e)
    if err != nil {
        return nil, err
    }
    return wire.EncodeFrame(v, wire.FrameOptions{}), nil
}

// EmbeddedFromBytes reconstructs an Embedded from bytes produced by Bytes.
func EmbeddedFromBytes(b []byte) (*Embedded, error) {
    v, err := wire.DecodeFrame(b)
    if err != nil {
        return nil, err
    }
    out, err := tval.Materialize(v)
    if err != nil {
        return nil, err
    }
    e, ok := out.(*Embedded)
    if !ok {
        return nil, fmt.Errorf("%w: not an embedded value: %T", tval.ErrDecode, out)
    }
    return e, nil
}

func init() {
    tval.Register("Embedded", func(payload []byte) (tval.Typed, error) {
        v, err := wire.Decode(payload)
        if err != nil {
            return nil, err
        }
        return &Embedded{payload: v}, nil
    })
}
