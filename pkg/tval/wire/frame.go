package wire

import (
    "encoding/binary"
    "fmt"

    "github.com/klauspost/compress/s2"

    "tvwire/pkg/tval"
)

// Framed form for persisted or transported bytes.
//
//  0 ..1  Magic   'T''V' (0x5654 little-endian)
//  2      Version u8
//  3      Flags   u8
//  4 ..   Value encoding (s2-compressed when FlagCompressed is set)
const (
    frameHeaderSize = 4
    frameMagic      = uint16(0x5654) // 'T''V'
    frameVersion    = 1
)

// Frame flags.
const (
    FlagCompressed uint8 = 1 << 0
)

// FrameOptions configures framed encoding.
type FrameOptions struct {
    Compress bool // s2-compress the value bytes
}

// EncodeFrame wraps the value encoding in a magic/version/flags header.
func EncodeFrame(v tval.Value, opts FrameOptions) []byte {
    body := Encode(v)
    var flags uint8
    if opts.Compress {
        body = s2.Encode(nil, body)
        flags |= FlagCompressed
    }
    out := make([]byte, frameHeaderSize+len(body))
    binary.LittleEndian.PutUint16(out[0:2], frameMagic)
    out[2] = frameVersion
    out[3] = flags
    copy(out[frameHeaderSize:], body)
    return out
}

// DecodeFrame validates the header and decodes the framed value. The
// decoder's depth bound applies to the embedded value encoding.
func (d Decoder) DecodeFrame(b []byte) (tval.Value, error) {
    if len(b) < frameHeaderSize {
        return tval.Value{}, fmt.Errorf("%w: short frame", tval.ErrDecode)
    }
    if binary.LittleEndian.Uint16(b[0:2]) != frameMagic {
        return tval.Value{}, fmt.Errorf("%w: bad frame magic", tval.ErrDecode)
    }
    if b[2] != frameVersion {
        return tval.Value{}, fmt.Errorf("%w: unsupported frame version %d", tval.ErrDecode, b[2])
    }
    flags := b[3]
    body := b[frameHeaderSize:]
    if flags&FlagCompressed != 0 {
        dec, err := s2.Decode(nil, body)
        if err != nil {
            return tval.Value{}, fmt.Errorf("%w: decompress frame: %v", tval.ErrDecode, err)
        }
        body = dec
    }
    return d.Decode(body)
}

// DecodeFrame decodes with an unbounded default Decoder.
func DecodeFrame(b []byte) (tval.Value, error) {
    return Decoder{}.DecodeFrame(b)
}
