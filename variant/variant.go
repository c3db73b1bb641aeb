// Copyright 2026 The TensorMap Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package variant provides the type-erased payload boundary used to pass
// containers through generic runtime slots.
//
// A payload type implements Encodable and registers a decoder factory under
// its stable type name; a transmitted Data can then be turned back into the
// payload by name alone:
//
//	data := variant.New(payload).Encode()
//	raw, _ := data.Marshal()
//	...
//	var back variant.Data
//	if err := back.Unmarshal(raw); err != nil { ... }
//	v, err := variant.FromData(&back)
package variant

import (
	"github.com/stormlilian/tensormap/internal/variant"
)

// Data is the structured byte-oriented representation a payload encodes
// into: a type name, an opaque metadata blob, and a sequence of tensor
// sub-payloads.
type Data = variant.Data

// Encodable is the contract a payload type implements to cross the variant
// boundary.
type Encodable = variant.Encodable

// Variant is a type-erased holder for a registered payload.
type Variant = variant.Variant

// MaxInlineSize is the capacity of the dispatch layer's inline payload
// buffer.
const MaxInlineSize = variant.MaxInlineSize

// Decode errors.
var (
	ErrInvalidMagic       = variant.ErrInvalidMagic
	ErrUnsupportedVersion = variant.ErrUnsupportedVersion
	ErrTruncated          = variant.ErrTruncated
	ErrFrameTooLarge      = variant.ErrFrameTooLarge
	ErrTrailingBytes      = variant.ErrTrailingBytes
	ErrInvalidDType       = variant.ErrInvalidDType
	ErrInvalidShape       = variant.ErrInvalidShape
	ErrUnknownTypeName    = variant.ErrUnknownTypeName
)

// New wraps a payload in a Variant.
func New(value Encodable) Variant {
	return variant.New(value)
}

// Register records a decoder factory for the payload type with the given
// stable name. Intended for package init functions; panics on duplicate
// registration.
func Register(name string, factory func() Encodable) {
	variant.Register(name, factory)
}

// FromData reconstructs a Variant from a Data by dispatching on its type
// name.
func FromData(data *Data) (Variant, error) {
	return variant.FromData(data)
}

// CanInline reports whether a payload of the given size fits the dispatch
// layer's inline buffer.
func CanInline(size uintptr) bool {
	return variant.CanInline(size)
}
