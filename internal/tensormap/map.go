// Package tensormap implements a reference-counted, copy-on-write map of
// tensors that flows through the variant boundary as a single unit.
//
// A TensorMap handle holds its header fields (element shape, element dtype,
// max size bound) by value and shares its entry table with every handle
// cloned from it. Clone is cheap regardless of table size: it bumps a
// reference count instead of duplicating entries, so mutations through one
// handle are visible through its siblings. Copy produces independent
// storage.
//
// A consumer that wants to reuse a map's storage in place must first check
// RefCountIsOne; only an exclusively-owned table may be mutated without the
// change being observable through another handle.
package tensormap

import (
	"fmt"
	"unsafe"

	"github.com/stormlilian/tensormap/internal/refmap"
	"github.com/stormlilian/tensormap/internal/tensor"
	"github.com/stormlilian/tensormap/internal/variant"
)

// MapTypeName is the stable type name identifying TensorMap at the variant
// boundary.
const MapTypeName = "tensormap.TensorMap"

// Unbounded marks a map whose size is not limited.
const Unbounded int64 = -1

// TensorMap is a handle to a shared table of tensor entries.
//
// The header fields are per-handle: mutating ElementShape on one handle does
// not affect a sibling sharing the same table. MaxNumElements is advisory
// metadata only; no operation enforces it.
//
// TensorMap must be constructed with New. A handle that has been Released
// must not be used again.
type TensorMap struct {
	// ElementShape is a hint for the shape of the map's values; some
	// dimensions may be unknown.
	ElementShape tensor.PartialShape

	// ElementDType describes what kind of values the map is intended to
	// hold. It is not enforced on insert.
	ElementDType tensor.DataType

	// MaxNumElements bounds the table size; Unbounded (-1) means no limit.
	// Callers needing a bounded map must check it themselves before
	// inserting.
	MaxNumElements int64

	entries refmap.Map[tensor.Key, *tensor.RawTensor]
}

// TensorMap is stored inline in a Variant's fixed-size buffer.
const _ = variant.MaxInlineSize - unsafe.Sizeof(TensorMap{})

func init() {
	variant.Register(MapTypeName, func() variant.Encodable { return New() })
}

// New creates an empty TensorMap owning fresh storage (refcount 1).
func New() *TensorMap {
	return &TensorMap{
		MaxNumElements: Unbounded,
		entries:        refmap.New[tensor.Key, *tensor.RawTensor](),
	}
}

// Clone returns a handle sharing this handle's table. Header fields are
// copied by value; inserting through either handle is observable through the
// other.
func (m *TensorMap) Clone() *TensorMap {
	return &TensorMap{
		ElementShape:   m.ElementShape.Clone(),
		ElementDType:   m.ElementDType,
		MaxNumElements: m.MaxNumElements,
		entries:        m.entries.Retain(),
	}
}

// Release drops this handle's reference to the table. The table is
// reclaimed when the last referencing handle releases it.
func (m *TensorMap) Release() {
	m.entries.Release()
}

// RefCountIsOne reports whether this handle is the only live reference to
// the table. Only then is in-place mutation guaranteed not to be observable
// by any other handle; kernels reusing an input map as their output must
// check this first. The answer is a point-in-time snapshot.
func (m *TensorMap) RefCountIsOne() bool {
	return m.entries.Exclusive()
}

// Insert adds key→value only if key is absent and reports whether the
// insertion happened. An existing entry is never overwritten.
func (m *TensorMap) Insert(key tensor.Key, value *tensor.RawTensor) bool {
	return m.entries.Insert(key, value)
}

// Replace unconditionally sets key→value, inserting if absent.
func (m *TensorMap) Replace(key tensor.Key, value *tensor.RawTensor) {
	m.entries.Replace(key, value)
}

// Find returns the value for key and whether the key is present.
func (m *TensorMap) Find(key tensor.Key) (*tensor.RawTensor, bool) {
	return m.entries.Find(key)
}

// Lookup returns the value for a key known to be present. Callers must
// check presence with Find first; for an absent key the result is nil.
func (m *TensorMap) Lookup(key tensor.Key) *tensor.RawTensor {
	return m.entries.Lookup(key)
}

// Erase removes the entry for key if present and returns the number of
// entries removed (0 or 1).
func (m *TensorMap) Erase(key tensor.Key) int {
	return m.entries.Erase(key)
}

// Size returns the current number of entries.
func (m *TensorMap) Size() int {
	return m.entries.Len()
}

// Keys returns all current keys in unspecified order.
func (m *TensorMap) Keys() []tensor.Key {
	return m.entries.Keys()
}

// Copy returns a TensorMap owning fresh storage holding a structural
// duplicate of this map's entries. Values are copied shallowly: each entry's
// tensor shares its byte buffer with the original via reference counting.
// Mutating the copy's table is never observable through the original.
func (m *TensorMap) Copy() *TensorMap {
	return &TensorMap{
		ElementShape:   m.ElementShape.Clone(),
		ElementDType:   m.ElementDType,
		MaxNumElements: m.MaxNumElements,
		entries: m.entries.Fill(func(_ tensor.Key, v *tensor.RawTensor) *tensor.RawTensor {
			return v.Clone()
		}),
	}
}

// Zeros returns a TensorMap with the same header fields and key set, every
// value replaced by the value type's zero element, backed by fresh storage.
func (m *TensorMap) Zeros() *TensorMap {
	return &TensorMap{
		ElementShape:   m.ElementShape.Clone(),
		ElementDType:   m.ElementDType,
		MaxNumElements: m.MaxNumElements,
		entries: m.entries.Fill(func(tensor.Key, *tensor.RawTensor) *tensor.RawTensor {
			return tensor.Zero()
		}),
	}
}

// TypeName returns the stable type name used at the variant boundary.
func (m *TensorMap) TypeName() string {
	return MapTypeName
}

// DebugString returns a human-readable summary.
func (m *TensorMap) DebugString() string {
	return fmt.Sprintf("TensorMap[size=%d, dtype=%s, shape=%s]",
		m.Size(), m.ElementDType, m.ElementShape)
}
