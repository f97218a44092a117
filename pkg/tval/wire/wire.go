// Package wire serializes tval.Value trees to a self-describing binary
// form: every value is prefixed with a tag byte, integers use zigzag
// varints, and variable-length payloads carry a varint length prefix, so
// decoding needs no external schema.
package wire

import (
    "encoding/binary"
    "fmt"

    "tvwire/pkg/tval"
)

// Wire tags, one per value kind.
const (
    tagNull     = 0x00
    tagFalse    = 0x01
    tagTrue     = 0x02
    tagInt      = 0x03
    tagText     = 0x04
    tagBytes    = 0x05
    tagDomain   = 0x06
    tagMapping  = 0x07
    tagSequence = 0x08
    tagUnsupp   = 0x09
)

// Encode serializes a value tree depth-first. Encoding cannot fail for any
// value the model can represent, so no error is returned.
func Encode(v tval.Value) []byte {
    return appendValue(nil, v)
}

func appendValue(b []byte, v tval.Value) []byte {
    switch v.Kind() {
    case tval.KindNull:
        return append(b, tagNull)
    case tval.KindBool:
        bv, _ := v.AsBool()
        if bv {
            return append(b, tagTrue)
        }
        return append(b, tagFalse)
    case tval.KindInt:
        iv, _ := v.AsInt()
        b = append(b, tagInt)
        return binary.AppendUvarint(b, zigzag(iv))
    case tval.KindText:
        s, _ := v.AsText()
        b = append(b, tagText)
        return appendString(b, s)
    case tval.KindBytes:
        raw, _ := v.AsBytes()
        b = append(b, tagBytes)
        return appendBytes(b, raw)
    case tval.KindDomain:
        name, payload, _ := v.AsDomain()
        b = append(b, tagDomain)
        b = appendString(b, name)
        b = appendBytes(b, payload)
        return binary.LittleEndian.AppendUint64(b, v.DomainTimestamp())
    case tval.KindMapping:
        entries, _ := v.Entries()
        b = append(b, tagMapping)
        b = binary.AppendUvarint(b, uint64(len(entries)))
        for _, e := range entries {
            b = appendString(b, e.Key)
            b = appendValue(b, e.Val)
        }
        return b
    case tval.KindSequence:
        elems, _ := v.Elems()
        b = append(b, tagSequence)
        b = binary.AppendUvarint(b, uint64(len(elems)))
        for _, e := range elems {
            b = appendValue(b, e)
        }
        return b
    case tval.KindUnsupported:
        desc, _ := v.Description()
        b = append(b, tagUnsupp)
        return appendString(b, desc)
    default:
        // the union is closed; an unknown kind can only come from memory
        // corruption, encode it as null rather than emitting garbage
        return append(b, tagNull)
    }
}

func appendString(b []byte, s string) []byte {
    b = binary.AppendUvarint(b, uint64(len(s)))
    return append(b, s...)
}

func appendBytes(b, raw []byte) []byte {
    b = binary.AppendUvarint(b, uint64(len(raw)))
    return append(b, raw...)
}

func zigzag(i int64) uint64 { return uint64(i<<1) ^ uint64(i>>63) }

func unzigzag(u uint64) int64 { return int64(u>>1) ^ -int64(u&1) }

// Decoder decodes wire bytes. MaxDepth bounds container nesting when
// decoding untrusted input; 0 means unbounded, which is safe only for
// bytes this process produced itself.
type Decoder struct {
    MaxDepth int
}

// Decode parses a complete value from b. Trailing bytes, truncation or a
// malformed tree fail with a wrapped tval.ErrDecode; no partially built
// container is ever returned.
func (d Decoder) Decode(b []byte) (tval.Value, error) {
    v, n, err := d.readValue(b, 0, 0)
    if err != nil {
        return tval.Value{}, err
    }
    if n != len(b) {
        return tval.Value{}, fmt.Errorf("%w: %d trailing bytes", tval.ErrDecode, len(b)-n)
    }
    return v, nil
}

// Decode parses with an unbounded default Decoder.
func Decode(b []byte) (tval.Value, error) {
    return Decoder{}.Decode(b)
}

func (d Decoder) readValue(b []byte, off, depth int) (tval.Value, int, error) {
    if d.MaxDepth > 0 && depth > d.MaxDepth {
        return tval.Value{}, 0, fmt.Errorf("%w: nesting exceeds max depth %d", tval.ErrDecode, d.MaxDepth)
    }
    if off >= len(b) {
        return tval.Value{}, 0, fmt.Errorf("%w: truncated at offset %d", tval.ErrDecode, off)
    }
    tag := b[off]
    off++
    switch tag {
    case tagNull:
        return tval.Null(), off, nil
    case tagFalse:
        return tval.Bool(false), off, nil
    case tagTrue:
        return tval.Bool(true), off, nil
    case tagInt:
        u, n, err := readUvarint(b, off)
        if err != nil {
            return tval.Value{}, 0, err
        }
        return tval.Int(unzigzag(u)), n, nil
    case tagText:
        s, n, err := readString(b, off)
        if err != nil {
            return tval.Value{}, 0, err
        }
        return tval.Text(s), n, nil
    case tagBytes:
        raw, n, err := readBytes(b, off)
        if err != nil {
            return tval.Value{}, 0, err
        }
        return tval.Bytes(raw), n, nil
    case tagDomain:
        name, n, err := readString(b, off)
        if err != nil {
            return tval.Value{}, 0, err
        }
        payload, n, err := readBytes(b, n)
        if err != nil {
            return tval.Value{}, 0, err
        }
        if n+8 > len(b) {
            return tval.Value{}, 0, fmt.Errorf("%w: truncated domain timestamp", tval.ErrDecode)
        }
        ts := binary.LittleEndian.Uint64(b[n : n+8])
        return tval.DomainAt(name, payload, ts), n + 8, nil
    case tagMapping:
        count, n, err := readUvarint(b, off)
        if err != nil {
            return tval.Value{}, 0, err
        }
        if count > uint64(len(b)) {
            return tval.Value{}, 0, fmt.Errorf("%w: mapping count %d exceeds input", tval.ErrDecode, count)
        }
        entries := make([]tval.Entry, 0, count)
        for i := uint64(0); i < count; i++ {
            var key string
            key, n, err = readString(b, n)
            if err != nil {
                return tval.Value{}, 0, err
            }
            var ev tval.Value
            ev, n, err = d.readValue(b, n, depth+1)
            if err != nil {
                return tval.Value{}, 0, err
            }
            entries = append(entries, tval.Entry{Key: key, Val: ev})
        }
        return tval.Mapping(entries...), n, nil
    case tagSequence:
        count, n, err := readUvarint(b, off)
        if err != nil {
            return tval.Value{}, 0, err
        }
        if count > uint64(len(b)) {
            return tval.Value{}, 0, fmt.Errorf("%w: sequence count %d exceeds input", tval.ErrDecode, count)
        }
        elems := make([]tval.Value, 0, count)
        for i := uint64(0); i < count; i++ {
            var ev tval.Value
            ev, n, err = d.readValue(b, n, depth+1)
            if err != nil {
                return tval.Value{}, 0, err
            }
            elems = append(elems, ev)
        }
        return tval.Sequence(elems...), n, nil
    case tagUnsupp:
        desc, n, err := readString(b, off)
        if err != nil {
            return tval.Value{}, 0, err
        }
        return tval.Unsupported(desc), n, nil
    default:
        return tval.Value{}, 0, fmt.Errorf("%w: unknown tag 0x%02x at offset %d", tval.ErrDecode, tag, off-1)
    }
}

func readUvarint(b []byte, off int) (uint64, int, error) {
    u, n := binary.Uvarint(b[off:])
    if n <= 0 {
        return 0, 0, fmt.Errorf("%w: bad varint at offset %d", tval.ErrDecode, off)
    }
    return u, off + n, nil
}

func readString(b []byte, off int) (string, int, error) {
    raw, n, err := readBytes(b, off)
    if err != nil {
        return "", 0, err
    }
    return string(raw), n, nil
}

func readBytes(b []byte, off int) ([]byte, int, error) {
    l, n, err := readUvarint(b, off)
    if err != nil {
        return nil, 0, err
    }
    if l > uint64(len(b)-n) {
        return nil, 0, fmt.Errorf("%w: length %d exceeds remaining %d", tval.ErrDecode, l, len(b)-n)
    }
    end := n + int(l)
    if l == 0 {
        return nil, end, nil
    }
    out := make([]byte, l)
    copy(out, b[n:end])
    return out, end, nil
}
