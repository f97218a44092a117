// Package pbbridge converts tval values to and from structpb for callers
// exchanging payloads with protobuf APIs. The mapping is lossy at the
// edges structpb cannot express: integers ride as float64 numbers (exact
// up to 2^53), mapping order is not preserved, and bytes, domain values
// and unsupported markers are encoded as tagged objects.
package pbbridge

import (
    "encoding/base64"
    "fmt"
    "math"

    "google.golang.org/protobuf/types/known/structpb"

    "tvwire/pkg/tval"
)

// Tagged-object marker key for kinds structpb has no native slot for.
const kindKey = "@kind"

// ToStruct converts a value tree into a structpb.Value.
func ToStruct(v tval.Value) (*structpb.Value, error) {
    switch v.Kind() {
    case tval.KindNull:
        return structpb.NewNullValue(), nil
    case tval.KindBool:
        b, _ := v.AsBool()
        return structpb.NewBoolValue(b), nil
    case tval.KindInt:
        i, _ := v.AsInt()
        if i > 1<<53 || i < -(1<<53) {
            return nil, fmt.Errorf("pbbridge: integer %d exceeds float64 exact range", i)
        }
        return structpb.NewNumberValue(float64(i)), nil
    case tval.KindText:
        s, _ := v.AsText()
        return structpb.NewStringValue(s), nil
    case tval.KindBytes:
        raw, _ := v.AsBytes()
        return taggedObject("bytes", map[string]*structpb.Value{
            "data": structpb.NewStringValue(base64.StdEncoding.EncodeToString(raw)),
        }), nil
    case tval.KindDomain:
        name, payload, _ := v.AsDomain()
        fields := map[string]*structpb.Value{
            "type":    structpb.NewStringValue(name),
            "payload": structpb.NewStringValue(base64.StdEncoding.EncodeToString(payload)),
        }
        if ts := v.DomainTimestamp(); ts != 0 {
            fields["ts"] = structpb.NewNumberValue(float64(ts))
        }
        return taggedObject("domain", fields), nil
    case tval.KindUnsupported:
        desc, _ := v.Description()
        return taggedObject("unsupported", map[string]*structpb.Value{
            "desc": structpb.NewStringValue(desc),
        }), nil
    case tval.KindSequence:
        elems, _ := v.Elems()
        vals := make([]*structpb.Value, len(elems))
        for i, e := range elems {
            pv, err := ToStruct(e)
            if err != nil {
                return nil, err
            }
            vals[i] = pv
        }
        return structpb.NewListValue(&structpb.ListValue{Values: vals}), nil
    case tval.KindMapping:
        entries, _ := v.Entries()
        fields := make(map[string]*structpb.Value, len(entries))
        for _, e := range entries {
            pv, err := ToStruct(e.Val)
            if err != nil {
                return nil, err
            }
            fields[e.Key] = pv
        }
        return structpb.NewStructValue(&structpb.Struct{Fields: fields}), nil
    default:
        return nil, fmt.Errorf("pbbridge: unknown kind %s", v.Kind())
    }
}

func taggedObject(kind string, fields map[string]*structpb.Value) *structpb.Value {
    fields[kindKey] = structpb.NewStringValue(kind)
    return structpb.NewStructValue(&structpb.Struct{Fields: fields})
}

// FromStruct converts a structpb.Value back into the value model,
// recognizing the tagged objects ToStruct produces. Numbers must be
// integral; structpb has no separate integer kind and this model has no
// float kind.
func FromStruct(pv *structpb.Value) (tval.Value, error) {
    switch k := pv.GetKind().(type) {
    case *structpb.Value_NullValue, nil:
        return tval.Null(), nil
    case *structpb.Value_BoolValue:
        return tval.Bool(k.BoolValue), nil
    case *structpb.Value_NumberValue:
        if k.NumberValue != math.Trunc(k.NumberValue) {
            return tval.Value{}, fmt.Errorf("pbbridge: non-integral number %v", k.NumberValue)
        }
        return tval.Int(int64(k.NumberValue)), nil
    case *structpb.Value_StringValue:
        return tval.Text(k.StringValue), nil
    case *structpb.Value_ListValue:
        vals := k.ListValue.GetValues()
        elems := make([]tval.Value, len(vals))
        for i, lv := range vals {
            ev, err := FromStruct(lv)
            if err != nil {
                return tval.Value{}, err
            }
            elems[i] = ev
        }
        return tval.Sequence(elems...), nil
    case *structpb.Value_StructValue:
        fields := k.StructValue.GetFields()
        if tag, ok := fields[kindKey]; ok {
            return fromTagged(tag.GetStringValue(), fields)
        }
        entries := make([]tval.Entry, 0, len(fields))
        for key, fv := range fields {
            ev, err := FromStruct(fv)
            if err != nil {
                return tval.Value{}, err
            }
            entries = append(entries, tval.Entry{Key: key, Val: ev})
        }
        return tval.Mapping(entries...), nil
    default:
        return tval.Value{}, fmt.Errorf("pbbridge: unknown structpb kind %T", k)
    }
}

func fromTagged(kind string, fields map[string]*structpb.Value) (tval.Value, error) {
    switch kind {
    case "bytes":
        raw, err := base64.StdEncoding.DecodeString(fields["data"].GetStringValue())
        if err != nil {
            return tval.Value{}, fmt.Errorf("pbbridge: bad bytes payload: %w", err)
        }
        return tval.Bytes(raw), nil
    case "domain":
        payload, err := base64.StdEncoding.DecodeString(fields["payload"].GetStringValue())
        if err != nil {
            return tval.Value{}, fmt.Errorf("pbbridge: bad domain payload: %w", err)
        }
        var ts uint64
        if tsv, ok := fields["ts"]; ok {
            ts = uint64(tsv.GetNumberValue())
        }
        return tval.DomainAt(fields["type"].GetStringValue(), payload, ts), nil
    case "unsupported":
        return tval.Unsupported(fields["desc"].GetStringValue()), nil
    default:
        return tval.Value{}, fmt.Errorf("pbbridge: unknown tagged kind %q", kind)
    }
}
