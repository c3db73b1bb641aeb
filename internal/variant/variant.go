package variant

import (
	"fmt"
	"sync"
)

// Encodable is the contract a payload type implements to cross the variant
// boundary. TypeName must be stable and unique among all registered payload
// kinds; Encode/Decode externalize and reconstruct the payload through Data.
type Encodable interface {
	TypeName() string
	DebugString() string
	Encode(data *Data)
	Decode(data *Data) error
}

// MaxInlineSize is the capacity of the dispatch layer's inline payload
// buffer. Payload types no larger than this are stored inline rather than
// behind a heap indirection.
const MaxInlineSize = 64

// CanInline reports whether a payload of the given size fits the inline
// buffer.
func CanInline(size uintptr) bool {
	return size <= MaxInlineSize
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func() Encodable)
)

// Register records a factory for the payload type with the given stable
// name. It is intended to be called from package init functions and panics
// on duplicate registration.
func Register(name string, factory func() Encodable) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := registry[name]; ok {
		panic(fmt.Sprintf("variant: type %q registered twice", name))
	}
	registry[name] = factory
}

// New wraps a payload in a Variant.
func New(value Encodable) Variant {
	return Variant{value: value}
}

// Variant is a type-erased holder for a registered payload.
type Variant struct {
	value Encodable
}

// Get returns the wrapped payload, or nil for an empty Variant.
func (v Variant) Get() Encodable {
	return v.value
}

// TypeName returns the wrapped payload's stable type name.
func (v Variant) TypeName() string {
	if v.value == nil {
		return ""
	}
	return v.value.TypeName()
}

// DebugString returns the wrapped payload's debug summary.
func (v Variant) DebugString() string {
	if v.value == nil {
		return "Variant<empty>"
	}
	return v.value.DebugString()
}

// Encode externalizes the wrapped payload into a Data carrying its type
// name.
func (v Variant) Encode() *Data {
	data := &Data{TypeName: v.TypeName()}
	if v.value != nil {
		v.value.Encode(data)
	}
	return data
}

// FromData reconstructs a Variant from a Data by dispatching on its type
// name. The type must have been registered.
func FromData(data *Data) (Variant, error) {
	registryMu.RLock()
	factory, ok := registry[data.TypeName]
	registryMu.RUnlock()
	if !ok {
		return Variant{}, fmt.Errorf("%w: %q", ErrUnknownTypeName, data.TypeName)
	}
	value := factory()
	if err := value.Decode(data); err != nil {
		return Variant{}, fmt.Errorf("failed to decode %q: %w", data.TypeName, err)
	}
	return Variant{value: value}, nil
}
