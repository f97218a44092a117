package tval

import (
    "fmt"
    "sync"
)

// Typed is the capability a host type must expose to participate as a
// domain value: a stable type name and a byte serialization. The model
// never looks at a domain type's internals beyond this contract.
type Typed interface {
    TypeName() string
    MarshalValue() ([]byte, error)
}

// Timestamped is the optional half of the capability: a creation timestamp
// in microseconds since epoch. 0 means unset. The timestamp rides along as
// domain metadata and survives any number of encode/decode cycles.
type Timestamped interface {
    Timestamp() uint64
    SetTimestamp(uint64)
}

// Valuer is implemented by container types built on this model (ordered
// dicts, typed arrays) so classification can fold them in structurally
// instead of treating them as opaque domain values.
type Valuer interface {
    AsValue() Value
}

// DecodeFunc reconstructs a domain type instance from its payload.
type DecodeFunc func(payload []byte) (Typed, error)

// CoerceFunc converts an arbitrary Go value into a domain type instance,
// or fails if no sensible conversion exists.
type CoerceFunc func(v any) (Typed, error)

// Registry maps domain type names to their decode and coerce functions.
type Registry struct {
    mu    sync.RWMutex
    types map[string]regEntry
}

type regEntry struct {
    decode DecodeFunc
    coerce CoerceFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
    return &Registry{types: make(map[string]regEntry)}
}

// Register adds a decode function for a type name. Registering the same
// name again replaces the previous entry.
func (r *Registry) Register(name string, dec DecodeFunc) {
    r.mu.Lock()
    r.types[name] = regEntry{decode: dec}
    r.mu.Unlock()
}

// RegisterCoercible adds a decode function plus a coercion used by
// constrained sequences declaring this element type.
func (r *Registry) RegisterCoercible(name string, dec DecodeFunc, co CoerceFunc) {
    r.mu.Lock()
    r.types[name] = regEntry{decode: dec, coerce: co}
    r.mu.Unlock()
}

// Decoder returns the decode function for name, or nil if unregistered.
func (r *Registry) Decoder(name string) DecodeFunc {
    r.mu.RLock()
    e := r.types[name]
    r.mu.RUnlock()
    return e.decode
}

// Coerce converts v into an instance of the named type. A value that is
// already of that type passes through unchanged.
func (r *Registry) Coerce(name string, v any) (Typed, error) {
    if t, ok := v.(Typed); ok && t.TypeName() == name {
        return t, nil
    }
    r.mu.RLock()
    e, ok := r.types[name]
    r.mu.RUnlock()
    if !ok || e.coerce == nil {
        return nil, fmt.Errorf("%w: no coercion to %q for %T", ErrCoerce, name, v)
    }
    t, err := e.coerce(v)
    if err != nil {
        return nil, fmt.Errorf("%w: to %q from %T: %v", ErrCoerce, name, v, err)
    }
    return t, nil
}

// defaultRegistry backs the package-level helpers. Domain type packages
// register themselves here in their init.
var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry { return defaultRegistry }

// Register adds a decode function to the default registry.
func Register(name string, dec DecodeFunc) { defaultRegistry.Register(name, dec) }

// RegisterCoercible adds decode and coerce functions to the default registry.
func RegisterCoercible(name string, dec DecodeFunc, co CoerceFunc) {
    defaultRegistry.RegisterCoercible(name, dec, co)
}

// FromTyped folds a domain capability instance into a Value, capturing the
// creation timestamp when the type carries one.
func FromTyped(t Typed) (Value, error) {
    payload, err := t.MarshalValue()
    if err != nil {
        return Value{}, fmt.Errorf("tval: marshal %q: %w", t.TypeName(), err)
    }
    var ts uint64
    if tt, ok := t.(Timestamped); ok {
        ts = tt.Timestamp()
    }
    return DomainAt(t.TypeName(), payload, ts), nil
}

// Opaque stands in for a domain value whose type name has no registered
// decoder on this side. It keeps the name, payload and timestamp intact so
// the value re-classifies and re-encodes without loss.
type Opaque struct {
    Name    string
    Payload []byte
    ts      uint64
}

func (o *Opaque) TypeName() string              { return o.Name }
func (o *Opaque) MarshalValue() ([]byte, error) { return o.Payload, nil }
func (o *Opaque) Timestamp() uint64             { return o.ts }
func (o *Opaque) SetTimestamp(ts uint64)        { o.ts = ts }
