// Package codec provides pluggable export encodings for materialized
// container trees (plain maps, slices and scalars), used by the CLI tools
// to emit decoded wire files in interchange formats.
package codec

import "fmt"

// Codec marshals materialized values for export. Implementations should
// be deterministic so repeated exports of the same tree are comparable.
type Codec interface {
    ContentType() string
    Marshal(v any) ([]byte, error)
    Unmarshal(data []byte, v any) error
}

// Content types of the built-in codecs.
const (
    ContentJSON  = "application/json"
    ContentCBOR  = "application/cbor"
    ContentProto = "application/x-protobuf"
)

// Registry maps content types to codecs.
type Registry struct{ byType map[string]Codec }

// NewRegistry constructs a registry preloaded with the built-in codecs.
func NewRegistry() (*Registry, error) {
    r := &Registry{byType: make(map[string]Codec)}
    r.Register(JSON())
    r.Register(Proto())
    c, err := CBOR()
    if err != nil {
        return nil, err
    }
    r.Register(c)
    return r, nil
}

// Register adds a codec, replacing any previous one for its content type.
func (r *Registry) Register(c Codec) { r.byType[c.ContentType()] = c }

// Get returns a codec by content type, or nil.
func (r *Registry) Get(contentType string) Codec { return r.byType[contentType] }

// ForName resolves a short format name ("json", "cbor", "proto") used on
// command lines to a registered codec.
func (r *Registry) ForName(name string) (Codec, error) {
    var ct string
    switch name {
    case "json":
        ct = ContentJSON
    case "cbor":
        ct = ContentCBOR
    case "proto":
        ct = ContentProto
    default:
        return nil, fmt.Errorf("unknown format: %q", name)
    }
    if c := r.Get(ct); c != nil {
        return c, nil
    }
    return nil, fmt.Errorf("no codec registered for %s", ct)
}
