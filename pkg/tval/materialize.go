package tval

import "fmt"

// Materialize converts a Value back into a plain Go value. It is the exact
// inverse of Classify for every kind except Unsupported, which yields its
// description string (the loss is by contract, and visible). Domain values
// reconstruct through the default registry; an unregistered type name
// yields an *Opaque carrying the original name, payload and timestamp.
func Materialize(v Value) (any, error) {
    return materialize(v, DefaultRegistry(), false)
}

// MaterializeLenient converts like Materialize but never fails: a domain
// payload its registered decoder rejects degrades to *Opaque instead of
// propagating the error. Containers degrade per element.
func MaterializeLenient(v Value) any {
    out, _ := materialize(v, DefaultRegistry(), true)
    return out
}

func materialize(v Value, reg *Registry, lenient bool) (any, error) {
    switch v.kind {
    case KindNull:
        return nil, nil
    case KindBool:
        return v.b, nil
    case KindInt:
        return v.i, nil
    case KindText:
        return v.s, nil
    case KindBytes:
        return v.raw, nil
    case KindUnsupported:
        return v.s, nil
    case KindDomain:
        return materializeDomain(v, reg, lenient)
    case KindSequence:
        out := make([]any, len(v.elems))
        for i, e := range v.elems {
            mv, err := materialize(e, reg, lenient)
            if err != nil {
                return nil, err
            }
            out[i] = mv
        }
        return out, nil
    case KindMapping:
        out := make(map[string]any, len(v.entries))
        for _, e := range v.entries {
            mv, err := materialize(e.Val, reg, lenient)
            if err != nil {
                return nil, err
            }
            out[e.Key] = mv
        }
        return out, nil
    default:
        return nil, fmt.Errorf("tval: materialize: unknown kind %d", v.kind)
    }
}

func materializeDomain(v Value, reg *Registry, lenient bool) (any, error) {
    dec := reg.Decoder(v.s)
    if dec == nil {
        return &Opaque{Name: v.s, Payload: v.raw, ts: v.ts}, nil
    }
    t, err := dec(v.raw)
    if err != nil {
        if lenient {
            return &Opaque{Name: v.s, Payload: v.raw, ts: v.ts}, nil
        }
        return nil, fmt.Errorf("tval: decode domain %q: %w", v.s, err)
    }
    if v.ts != 0 {
        if tt, ok := t.(Timestamped); ok {
            tt.SetTimestamp(v.ts)
        }
    }
    return t, nil
}
