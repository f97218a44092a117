package wire

import (
    "errors"
    "math"
    "testing"

    "tvwire/pkg/tval"
)

func roundTrip(t *testing.T, v tval.Value) tval.Value {
    t.Helper()
    out, err := Decode(Encode(v))
    if err != nil { t.Fatalf("decode: %v", err) }
    if !tval.Equal(out, v) { t.Fatalf("round trip mismatch: %s", v.Kind()) }
    return out
}

func TestRoundTripScalars(t *testing.T) {
    roundTrip(t, tval.Null())
    roundTrip(t, tval.Bool(true))
    roundTrip(t, tval.Bool(false))
    roundTrip(t, tval.Int(0))
    roundTrip(t, tval.Int(-1))
    roundTrip(t, tval.Int(math.MaxInt64))
    roundTrip(t, tval.Int(math.MinInt64))
    roundTrip(t, tval.Text(""))
    roundTrip(t, tval.Text("héllo, wörld"))
    roundTrip(t, tval.Bytes(nil))
    roundTrip(t, tval.Bytes([]byte{0x00, 0xff, 0x7f}))
    roundTrip(t, tval.Unsupported("Unsupported type main.widget"))
}

func TestRoundTripDomain(t *testing.T) {
    v := tval.DomainAt("Datetime", []byte("1724500000000000"), 1724500000000000)
    out := roundTrip(t, v)
    if out.DomainTimestamp() != 1724500000000000 { t.Fatalf("timestamp lost: %d", out.DomainTimestamp()) }
    // zero timestamp stays zero
    out = roundTrip(t, tval.Domain("URN", []byte("ns:/x")))
    if out.DomainTimestamp() != 0 { t.Fatalf("unset timestamp became %d", out.DomainTimestamp()) }
}

func TestRoundTripContainersPreserveOrder(t *testing.T) {
    m := tval.Mapping(
        tval.Entry{Key: "zulu", Val: tval.Int(1)},
        tval.Entry{Key: "alfa", Val: tval.Sequence(tval.Text("a"), tval.Null())},
        tval.Entry{Key: "mike", Val: tval.Mapping(tval.Entry{Key: "inner", Val: tval.Bool(true)})},
    )
    out := roundTrip(t, m)
    entries, _ := out.Entries()
    if entries[0].Key != "zulu" || entries[1].Key != "alfa" || entries[2].Key != "mike" {
        t.Fatalf("key order not preserved: %v", entries)
    }
}

func TestRoundTripEmptyContainers(t *testing.T) {
    roundTrip(t, tval.Mapping())
    roundTrip(t, tval.Sequence())
}

func TestDecodeErrors(t *testing.T) {
    cases := [][]byte{
        nil,                      // empty input
        {0xff},                   // unknown tag
        {0x03},                   // int with no varint
        {0x04, 0x05, 'a', 'b'},   // text length past end
        {0x08, 0x02, 0x00},       // sequence missing second element
        {0x07, 0x01, 0x01, 'k'},  // mapping missing value
        {0x06, 0x01, 'T', 0x00},  // domain missing timestamp
    }
    for _, b := range cases {
        if _, err := Decode(b); !errors.Is(err, tval.ErrDecode) {
            t.Fatalf("input % x: want ErrDecode, got %v", b, err)
        }
    }
}

func TestDecodeTrailingBytes(t *testing.T) {
    b := append(Encode(tval.Int(5)), 0x00)
    if _, err := Decode(b); !errors.Is(err, tval.ErrDecode) { t.Fatalf("trailing bytes accepted: %v", err) }
}

func TestDecodeMaxDepth(t *testing.T) {
    v := tval.Int(1)
    for i := 0; i < 5; i++ {
        v = tval.Sequence(v)
    }
    b := Encode(v)
    if _, err := (Decoder{MaxDepth: 3}).Decode(b); !errors.Is(err, tval.ErrDecode) {
        t.Fatalf("depth 5 accepted with bound 3: %v", err)
    }
    if _, err := (Decoder{MaxDepth: 10}).Decode(b); err != nil { t.Fatalf("depth 5 rejected with bound 10: %v", err) }
    if _, err := (Decoder{}).Decode(b); err != nil { t.Fatalf("unbounded decode failed: %v", err) }
}

func TestFrameRoundTrip(t *testing.T) {
    v := tval.Mapping(tval.Entry{Key: "k", Val: tval.Text("v")})
    frame := EncodeFrame(v, FrameOptions{})
    out, err := DecodeFrame(frame)
    if err != nil { t.Fatalf("decode frame: %v", err) }
    if !tval.Equal(out, v) { t.Fatalf("frame round trip mismatch") }
}

func TestFrameCompressed(t *testing.T) {
    elems := make([]tval.Value, 512)
    for i := range elems {
        elems[i] = tval.Text("repetitive payload body")
    }
    v := tval.Sequence(elems...)
    plain := EncodeFrame(v, FrameOptions{})
    packed := EncodeFrame(v, FrameOptions{Compress: true})
    if len(packed) >= len(plain) { t.Fatalf("compression did not shrink: %d >= %d", len(packed), len(plain)) }
    out, err := DecodeFrame(packed)
    if err != nil { t.Fatalf("decode compressed: %v", err) }
    if !tval.Equal(out, v) { t.Fatalf("compressed round trip mismatch") }
}

func TestFrameHeaderValidation(t *testing.T) {
    frame := EncodeFrame(tval.Null(), FrameOptions{})
    short := frame[:3]
    if _, err := DecodeFrame(short); !errors.Is(err, tval.ErrDecode) { t.Fatalf("short frame: %v", err) }

    badMagic := append([]byte(nil), frame...)
    badMagic[0] ^= 0xff
    if _, err := DecodeFrame(badMagic); !errors.Is(err, tval.ErrDecode) { t.Fatalf("bad magic: %v", err) }

    badVersion := append([]byte(nil), frame...)
    badVersion[2] = 99
    if _, err := DecodeFrame(badVersion); !errors.Is(err, tval.ErrDecode) { t.Fatalf("bad version: %v", err) }

    badBody := append([]byte(nil), frame...)
    badBody[3] |= FlagCompressed // body is not valid s2
    badBody = append(badBody, 0xde, 0xad)
    if _, err := DecodeFrame(badBody); !errors.Is(err, tval.ErrDecode) { t.Fatalf("bad compressed body: %v", err) }
}
