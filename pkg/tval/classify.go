package tval

import (
    "fmt"
    "math"
    "reflect"
    "sort"
)

// Classify converts an arbitrary Go value into a Value, failing with
// ErrUnsupportedType for anything outside the model. Dispatch is
// most-specific first; see classify for the exact order.
func Classify(v any) (Value, error) {
    return classify(v, false)
}

// ClassifyLenient converts like Classify but never fails: values outside
// the model become an Unsupported marker naming the origin type.
func ClassifyLenient(v any) Value {
    tv, _ := classify(v, true)
    return tv
}

func classify(v any, lenient bool) (Value, error) {
    switch x := v.(type) {
    case nil:
        return Null(), nil
    case Value:
        return x, nil
    case bool:
        // checked before the integer cases so a bool never collapses to int
        return Bool(x), nil
    case int:
        return Int(int64(x)), nil
    case int8:
        return Int(int64(x)), nil
    case int16:
        return Int(int64(x)), nil
    case int32:
        return Int(int64(x)), nil
    case int64:
        return Int(x), nil
    case uint:
        return uintValue(uint64(x), v, lenient)
    case uint8:
        return Int(int64(x)), nil
    case uint16:
        return Int(int64(x)), nil
    case uint32:
        return Int(int64(x)), nil
    case uint64:
        return uintValue(x, v, lenient)
    case string:
        return Text(x), nil
    case []byte:
        return Bytes(x), nil
    }

    // Containers built on this model fold in structurally.
    if vr, ok := v.(Valuer); ok {
        return vr.AsValue(), nil
    }

    switch x := v.(type) {
    case map[string]any:
        return classifyStringMap(x, lenient)
    case []any:
        return classifySlice(x, lenient)
    }

    // Externally defined typed values via the domain capability.
    if t, ok := v.(Typed); ok {
        return FromTyped(t)
    }

    // Named scalar and container types fall through to reflection. The
    // symbolic name of enum-like integer types is discarded: only the
    // numeric value is kept.
    rv := reflect.ValueOf(v)
    switch rv.Kind() {
    case reflect.Bool:
        return Bool(rv.Bool()), nil
    case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
        return Int(rv.Int()), nil
    case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
        return uintValue(rv.Uint(), v, lenient)
    case reflect.String:
        return Text(rv.String()), nil
    case reflect.Slice, reflect.Array:
        if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
            return Bytes(rv.Bytes()), nil
        }
        elems := make([]Value, rv.Len())
        for i := 0; i < rv.Len(); i++ {
            ev, err := classify(rv.Index(i).Interface(), lenient)
            if err != nil {
                return Value{}, err
            }
            elems[i] = ev
        }
        return Sequence(elems...), nil
    case reflect.Map:
        if rv.Type().Key().Kind() == reflect.String {
            return classifyReflectMap(rv, lenient)
        }
    case reflect.Pointer:
        if !rv.IsNil() {
            return classify(rv.Elem().Interface(), lenient)
        }
        return Null(), nil
    }

    return unsupported(v, lenient)
}

func unsupported(v any, lenient bool) (Value, error) {
    if lenient {
        return Unsupported(fmt.Sprintf("Unsupported type %T", v)), nil
    }
    return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
}

func uintValue(u uint64, orig any, lenient bool) (Value, error) {
    if u > math.MaxInt64 {
        // no unsigned variant in the model; an overflowing value cannot be
        // represented faithfully
        return unsupported(orig, lenient)
    }
    return Int(int64(u)), nil
}

func classifyStringMap(m map[string]any, lenient bool) (Value, error) {
    keys := make([]string, 0, len(m))
    for k := range m {
        keys = append(keys, k)
    }
    // Go map iteration is randomized; sort so classification of the same
    // plain map is deterministic
    sort.Strings(keys)
    entries := make([]Entry, 0, len(m))
    for _, k := range keys {
        ev, err := classify(m[k], lenient)
        if err != nil {
            return Value{}, err
        }
        entries = append(entries, Entry{Key: k, Val: ev})
    }
    return Mapping(entries...), nil
}

func classifySlice(s []any, lenient bool) (Value, error) {
    elems := make([]Value, len(s))
    for i, e := range s {
        ev, err := classify(e, lenient)
        if err != nil {
            return Value{}, err
        }
        elems[i] = ev
    }
    return Sequence(elems...), nil
}

func classifyReflectMap(rv reflect.Value, lenient bool) (Value, error) {
    keys := make([]string, 0, rv.Len())
    iter := rv.MapRange()
    for iter.Next() {
        keys = append(keys, iter.Key().String())
    }
    sort.Strings(keys)
    entries := make([]Entry, 0, len(keys))
    for _, k := range keys {
        mv := rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key()))
        ev, err := classify(mv.Interface(), lenient)
        if err != nil {
            return Value{}, err
        }
        entries = append(entries, Entry{Key: k, Val: ev})
    }
    return Mapping(entries...), nil
}
