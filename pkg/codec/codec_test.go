package codec

import (
    "testing"

    "google.golang.org/protobuf/types/known/structpb"
)

func TestJSONCodec(t *testing.T) {
    c := JSON()
    in := map[string]any{"a": 1, "b": "x"}
    b, err := c.Marshal(in)
    if err != nil { t.Fatalf("marshal: %v", err) }
    var out map[string]any
    if err := c.Unmarshal(b, &out); err != nil { t.Fatalf("unmarshal: %v", err) }
    if out["a"].(float64) != 1 || out["b"].(string) != "x" {
        t.Fatalf("roundtrip mismatch: %#v", out)
    }
}

func TestCBORCodec(t *testing.T) {
    c, err := CBOR()
    if err != nil { t.Fatalf("new cbor: %v", err) }
    in := map[string]any{"n": 42}
    b, err := c.Marshal(in)
    if err != nil { t.Fatalf("marshal: %v", err) }
    var out map[string]any
    if err := c.Unmarshal(b, &out); err != nil { t.Fatalf("unmarshal: %v", err) }
    if int(out["n"].(uint64)) != 42 && int(out["n"].(float64)) != 42 { // decoder may choose num type
        t.Fatalf("roundtrip mismatch: %#v", out)
    }
}

func TestCBORDeterministic(t *testing.T) {
    c, err := CBOR()
    if err != nil { t.Fatalf("new cbor: %v", err) }
    in := map[string]any{"z": 1, "a": 2, "m": 3}
    b1, err := c.Marshal(in)
    if err != nil { t.Fatalf("marshal: %v", err) }
    b2, err := c.Marshal(in)
    if err != nil { t.Fatalf("marshal: %v", err) }
    if string(b1) != string(b2) { t.Fatalf("canonical encoding not stable") }
}

func TestProtoCodec(t *testing.T) {
    c := Proto()
    s, err := structpb.NewStruct(map[string]any{"k": "v"})
    if err != nil { t.Fatalf("struct: %v", err) }
    b, err := c.Marshal(s)
    if err != nil { t.Fatalf("marshal: %v", err) }
    var out structpb.Struct
    if err := c.Unmarshal(b, &out); err != nil { t.Fatalf("unmarshal: %v", err) }
    if out.Fields["k"].GetStringValue() != "v" { t.Fatalf("roundtrip mismatch") }
}

func TestProtoRejectsNonMessage(t *testing.T) {
    c := Proto()
    if _, err := c.Marshal(map[string]any{"k": "v"}); err == nil { t.Fatalf("non-message accepted") }
    var out map[string]any
    if err := c.Unmarshal([]byte{}, &out); err == nil { t.Fatalf("non-message target accepted") }
}

func TestRegistryForName(t *testing.T) {
    r, err := NewRegistry()
    if err != nil { t.Fatalf("new registry: %v", err) }
    for name, ct := range map[string]string{"json": ContentJSON, "cbor": ContentCBOR, "proto": ContentProto} {
        c, err := r.ForName(name)
        if err != nil { t.Fatalf("for name %s: %v", name, err) }
        if c.ContentType() != ct { t.Fatalf("%s content type: %s", name, c.ContentType()) }
    }
    if _, err := r.ForName("xml"); err == nil { t.Fatalf("unknown format accepted") }
}
