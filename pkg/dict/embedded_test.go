package dict

import (
    "testing"
)

func TestWrapCapturesContainerTimestamp(t *testing.T) {
    a := NewArray()
    if err := a.Append("x"); err != nil { t.Fatalf("append: %v", err) }
    a.SetTimestamp(1234567890)

    e, err := Wrap(a)
    if err != nil { t.Fatalf("wrap: %v", err) }
    if e.Timestamp() != 1234567890 { t.Fatalf("captured %d", e.Timestamp()) }

    out, err := e.Unwrap()
    if err != nil { t.Fatalf("unwrap: %v", err) }
    ua, ok := out.(*Array)
    if !ok { t.Fatalf("unwrap got %T", out) }
    if ua.Timestamp() != 1234567890 { t.Fatalf("unwrapped timestamp %d", ua.Timestamp()) }
    if !a.Equal(ua) { t.Fatalf("unwrapped array differs") }
}

func TestTimestampSurvivesSerialization(t *testing.T) {
    d := New()
    if err := d.Set("k", "v"); err != nil { t.Fatalf("set: %v", err) }
    d.SetTimestamp(42424242)

    e, err := Wrap(d)
    if err != nil { t.Fatalf("wrap: %v", err) }
    b, err := e.Bytes()
    if err != nil { t.Fatalf("bytes: %v", err) }
    re, err := EmbeddedFromBytes(b)
    if err != nil { t.Fatalf("from bytes: %v", err) }
    if re.Timestamp() != 42424242 { t.Fatalf("timestamp after round trip: %d", re.Timestamp()) }

    out, err := re.Unwrap()
    if err != nil { t.Fatalf("unwrap: %v", err) }
    rd, ok := out.(*Dict)
    if !ok { t.Fatalf("unwrap got %T", out) }
    if rd.Timestamp() != 42424242 { t.Fatalf("inner timestamp: %d", rd.Timestamp()) }
    if !d.Equal(rd) { t.Fatalf("inner dict differs") }
}

func TestRewrapForwardsTimestamp(t *testing.T) {
    a := NewArray()
    a.SetTimestamp(777)
    e1, err := Wrap(a)
    if err != nil { t.Fatalf("wrap: %v", err) }
    e2, err := Wrap(e1)
    if err != nil { t.Fatalf("rewrap: %v", err) }
    if e2.Timestamp() != 777 { t.Fatalf("rewrap timestamp: %d", e2.Timestamp()) }

    // two full serialization cycles keep the original instant
    b, err := e2.Bytes()
    if err != nil { t.Fatalf("bytes: %v", err) }
    r1, err := EmbeddedFromBytes(b)
    if err != nil { t.Fatalf("from bytes: %v", err) }
    r2, err := Wrap(r1)
    if err != nil { t.Fatalf("rewrap decoded: %v", err) }
    b2, err := r2.Bytes()
    if err != nil { t.Fatalf("bytes: %v", err) }
    final, err := EmbeddedFromBytes(b2)
    if err != nil { t.Fatalf("from bytes: %v", err) }
    if final.Timestamp() != 777 { t.Fatalf("timestamp after two cycles: %d", final.Timestamp()) }
}

func TestWrapPlainValue(t *testing.T) {
    e, err := Wrap("payload")
    if err != nil { t.Fatalf("wrap: %v", err) }
    if e.Timestamp() != 0 { t.Fatalf("plain value has timestamp %d", e.Timestamp()) }
    out, err := e.Unwrap()
    if err != nil { t.Fatalf("unwrap: %v", err) }
    if out.(string) != "payload" { t.Fatalf("got %v", out) }
}

func TestEmbeddedInsideDict(t *testing.T) {
    a := NewArray()
    if err := a.Append(int64(1)); err != nil { t.Fatalf("append: %v", err) }
    a.SetTimestamp(555)
    e, err := Wrap(a)
    if err != nil { t.Fatalf("wrap: %v", err) }

    d := New()
    if err := d.Set("payload", e); err != nil { t.Fatalf("set: %v", err) }
    out, err := FromBytes(d.Bytes())
    if err != nil { t.Fatalf("from bytes: %v", err) }

    got, err := out.Get("payload")
    if err != nil { t.Fatalf("get: %v", err) }
    re, ok := got.(*Embedded)
    if !ok { t.Fatalf("got %T", got) }
    if re.Timestamp() != 555 { t.Fatalf("timestamp: %d", re.Timestamp()) }
    inner, err := re.Unwrap()
    if err != nil { t.Fatalf("unwrap: %v", err) }
    if inner.(*Array).Timestamp() != 555 { t.Fatalf("inner timestamp: %d", inner.(*Array).Timestamp()) }
}
