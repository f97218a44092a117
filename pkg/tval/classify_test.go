package tval

import (
    "errors"
    "fmt"
    "math"
    "reflect"
    "strings"
    "testing"
)

// token is a minimal domain type used across the tests.
type token struct {
    id string
    ts uint64
}

func (tk *token) TypeName() string              { return "token" }
func (tk *token) MarshalValue() ([]byte, error) { return []byte(tk.id), nil }
func (tk *token) Timestamp() uint64             { return tk.ts }
func (tk *token) SetTimestamp(ts uint64)        { tk.ts = ts }

func init() {
    Register("token", func(payload []byte) (Typed, error) {
        return &token{id: string(payload)}, nil
    })
    Register("flaky", func(payload []byte) (Typed, error) {
        return nil, fmt.Errorf("bad payload")
    })
}

func TestClassifyScalars(t *testing.T) {
    cases := []struct {
        in   any
        kind Kind
    }{
        {nil, KindNull},
        {true, KindBool},
        {false, KindBool},
        {int(3), KindInt},
        {int8(-3), KindInt},
        {int64(1 << 40), KindInt},
        {uint16(9), KindInt},
        {uint64(42), KindInt},
        {"hi", KindText},
        {[]byte{1, 2}, KindBytes},
    }
    for _, c := range cases {
        v, err := Classify(c.in)
        if err != nil { t.Fatalf("classify %#v: %v", c.in, err) }
        if v.Kind() != c.kind { t.Fatalf("classify %#v: kind %s, want %s", c.in, v.Kind(), c.kind) }
    }
}

func TestClassifyBoolIsNotInt(t *testing.T) {
    v, err := Classify(true)
    if err != nil { t.Fatalf("classify: %v", err) }
    if v.Kind() != KindBool { t.Fatalf("true classified as %s", v.Kind()) }
    // the string "true" is text, never a bool
    v, err = Classify("true")
    if err != nil { t.Fatalf("classify: %v", err) }
    if v.Kind() != KindText { t.Fatalf("\"true\" classified as %s", v.Kind()) }
}

func TestClassifyNamedIntDropsName(t *testing.T) {
    type severity int
    const critical severity = 3
    v, err := Classify(critical)
    if err != nil { t.Fatalf("classify: %v", err) }
    if v.Kind() != KindInt { t.Fatalf("named int classified as %s", v.Kind()) }
    if i, _ := v.AsInt(); i != 3 { t.Fatalf("got %d, want 3", i) }
}

func TestClassifyNamedString(t *testing.T) {
    type label string
    v, err := Classify(label("x"))
    if err != nil { t.Fatalf("classify: %v", err) }
    if v.Kind() != KindText { t.Fatalf("named string classified as %s", v.Kind()) }
}

func TestClassifyUintOverflow(t *testing.T) {
    _, err := Classify(uint64(math.MaxUint64))
    if !errors.Is(err, ErrUnsupportedType) { t.Fatalf("want ErrUnsupportedType, got %v", err) }
    v := ClassifyLenient(uint64(math.MaxUint64))
    if v.Kind() != KindUnsupported { t.Fatalf("lenient overflow kind: %s", v.Kind()) }
}

func TestClassifyStrictRejects(t *testing.T) {
    _, err := Classify(struct{ X int }{1})
    if !errors.Is(err, ErrUnsupportedType) { t.Fatalf("want ErrUnsupportedType, got %v", err) }
    _, err = Classify(make(chan int))
    if !errors.Is(err, ErrUnsupportedType) { t.Fatalf("want ErrUnsupportedType, got %v", err) }
}

func TestClassifyLenientMarker(t *testing.T) {
    v := ClassifyLenient(struct{ X int }{1})
    if v.Kind() != KindUnsupported { t.Fatalf("kind: %s", v.Kind()) }
    desc, _ := v.Description()
    if !strings.Contains(desc, "Unsupported type") { t.Fatalf("marker missing prefix: %q", desc) }
}

func TestClassifyLenientNestedMixture(t *testing.T) {
    in := []any{1, struct{}{}, 3, []any{1, 2, []any{3}}}
    v := ClassifyLenient(in)
    elems, err := v.Elems()
    if err != nil { t.Fatalf("elems: %v", err) }
    if len(elems) != 4 { t.Fatalf("want 4 elems, got %d", len(elems)) }
    if elems[0].Kind() != KindInt || elems[2].Kind() != KindInt { t.Fatalf("good elements degraded") }
    if elems[1].Kind() != KindUnsupported { t.Fatalf("bad element kind: %s", elems[1].Kind()) }
    if elems[3].Kind() != KindSequence { t.Fatalf("nested list kind: %s", elems[3].Kind()) }
    // strict classification of the same input fails as a whole
    if _, err := Classify(in); !errors.Is(err, ErrUnsupportedType) { t.Fatalf("strict: %v", err) }
}

func TestClassifyTypedCapturesTimestamp(t *testing.T) {
    tk := &token{id: "abc", ts: 12345}
    v, err := Classify(tk)
    if err != nil { t.Fatalf("classify: %v", err) }
    name, payload, err := v.AsDomain()
    if err != nil { t.Fatalf("as domain: %v", err) }
    if name != "token" || string(payload) != "abc" { t.Fatalf("domain %s %q", name, payload) }
    if v.DomainTimestamp() != 12345 { t.Fatalf("timestamp: %d", v.DomainTimestamp()) }
}

func TestClassifyValuePassthrough(t *testing.T) {
    orig := Sequence(Int(1))
    v, err := Classify(orig)
    if err != nil { t.Fatalf("classify: %v", err) }
    if !Equal(v, orig) { t.Fatalf("Value did not pass through") }
}

func TestClassifyPointerDeref(t *testing.T) {
    n := 7
    v, err := Classify(&n)
    if err != nil { t.Fatalf("classify: %v", err) }
    if i, _ := v.AsInt(); i != 7 { t.Fatalf("got %d", i) }
    var p *int
    v, err = Classify(p)
    if err != nil { t.Fatalf("classify nil ptr: %v", err) }
    if !v.IsNull() { t.Fatalf("nil pointer should classify as null") }
}

func TestClassifyTypedSlice(t *testing.T) {
    v, err := Classify([]string{"a", "b"})
    if err != nil { t.Fatalf("classify: %v", err) }
    elems, _ := v.Elems()
    if len(elems) != 2 || elems[0].Kind() != KindText { t.Fatalf("typed slice: %v", elems) }
    v, err = Classify(map[string]int{"b": 2, "a": 1})
    if err != nil { t.Fatalf("classify: %v", err) }
    entries, _ := v.Entries()
    if len(entries) != 2 || entries[0].Key != "a" { t.Fatalf("typed map keys not sorted: %v", entries) }
}

func TestMaterializeRoundTrip(t *testing.T) {
    in := map[string]any{
        "n":    int64(-5),
        "s":    "text",
        "b":    true,
        "raw":  []byte{0x1},
        "null": nil,
        "list": []any{int64(1), "two"},
        "sub":  map[string]any{"k": int64(9)},
    }
    v, err := Classify(in)
    if err != nil { t.Fatalf("classify: %v", err) }
    out, err := Materialize(v)
    if err != nil { t.Fatalf("materialize: %v", err) }
    if !reflect.DeepEqual(out, in) { t.Fatalf("round trip mismatch:\n in: %#v\nout: %#v", in, out) }
}

func TestMaterializeDomain(t *testing.T) {
    v := DomainAt("token", []byte("xyz"), 777)
    out, err := Materialize(v)
    if err != nil { t.Fatalf("materialize: %v", err) }
    tk, ok := out.(*token)
    if !ok { t.Fatalf("got %T", out) }
    if tk.id != "xyz" { t.Fatalf("id: %q", tk.id) }
    if tk.ts != 777 { t.Fatalf("timestamp not restored: %d", tk.ts) }
}

func TestMaterializeUnregisteredDomain(t *testing.T) {
    v := DomainAt("NoSuchType", []byte("p"), 42)
    out, err := Materialize(v)
    if err != nil { t.Fatalf("materialize: %v", err) }
    op, ok := out.(*Opaque)
    if !ok { t.Fatalf("got %T, want *Opaque", out) }
    if op.Name != "NoSuchType" || string(op.Payload) != "p" { t.Fatalf("opaque lost data: %+v", op) }
    if op.Timestamp() != 42 { t.Fatalf("opaque timestamp: %d", op.Timestamp()) }
    // an opaque re-classifies losslessly
    rv, err := Classify(op)
    if err != nil { t.Fatalf("reclassify: %v", err) }
    if !Equal(rv, v) { t.Fatalf("opaque round trip lost information") }
    if rv.DomainTimestamp() != 42 { t.Fatalf("reclassified timestamp: %d", rv.DomainTimestamp()) }
}

func TestMaterializeDecoderFailure(t *testing.T) {
    v := Domain("flaky", []byte("anything"))
    if _, err := Materialize(v); err == nil { t.Fatalf("strict materialize should surface decoder failure") }
    out := MaterializeLenient(v)
    op, ok := out.(*Opaque)
    if !ok { t.Fatalf("lenient got %T, want *Opaque", out) }
    if op.Name != "flaky" { t.Fatalf("opaque name: %q", op.Name) }
}

func TestMaterializeUnsupportedYieldsDescription(t *testing.T) {
    out, err := Materialize(Unsupported("Unsupported type main.widget"))
    if err != nil { t.Fatalf("materialize: %v", err) }
    s, ok := out.(string)
    if !ok || !strings.Contains(s, "Unsupported type") { t.Fatalf("got %#v", out) }
}

func TestCoercePassthroughAndFailure(t *testing.T) {
    tk := &token{id: "x"}
    got, err := DefaultRegistry().Coerce("token", tk)
    if err != nil { t.Fatalf("coerce passthrough: %v", err) }
    if got != Typed(tk) { t.Fatalf("passthrough returned different instance") }
    // token registered without a coercion: anything else is rejected
    if _, err := DefaultRegistry().Coerce("token", "x"); !errors.Is(err, ErrCoerce) {
        t.Fatalf("want ErrCoerce, got %v", err)
    }
    if _, err := DefaultRegistry().Coerce("NoSuchType", 1); !errors.Is(err, ErrCoerce) {
        t.Fatalf("want ErrCoerce for unknown type, got %v", err)
    }
}
