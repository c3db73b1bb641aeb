// Copyright 2026 The TensorMap Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/stormlilian/tensormap/internal/tensor"
)

// Type aliases for public API

// DType is a constraint for tensor data types.
// Supported types: float32, float64, int32, int64, uint8, bool.
type DType = tensor.DType

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Uint8   DataType = tensor.Uint8
	Bool    DataType = tensor.Bool
)

// PartialShape represents tensor dimensions, some of which may be unknown.
// A dimension of UnknownDim (-1) is unspecified.
// Example: PartialShape{2, -1, 3} is a 3D shape with an unknown middle
// dimension.
type PartialShape = tensor.PartialShape

// UnknownDim marks a dimension whose extent is not yet known.
const UnknownDim = tensor.UnknownDim

// RawTensor is an opaque tensor value.
//
// RawTensor provides:
//   - Shape and type information via Shape(), DType()
//   - Type-safe data access via AsFloat32(), AsInt64(), etc.
//   - Copy-on-Write semantics via Clone()
//   - Reference counting for efficient memory management
//
// Example:
//
//	raw, _ := tensor.NewRaw(tensor.PartialShape{2, 3}, tensor.Float32)
//	data := raw.AsFloat32() // Type-safe access
//	clone := raw.Clone()    // Shares buffer via reference counting
type RawTensor = tensor.RawTensor

// Key is a comparable identity wrapper around a tensor, used purely for
// lookup in a tensormap.
type Key = tensor.Key

// Creation functions

// NewRaw creates a new zero-initialized tensor with the given shape and
// dtype. The shape must be fully defined.
func NewRaw(shape PartialShape, dtype DataType) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype)
}

// FromSlice creates a tensor from a Go slice.
//
// Example:
//
//	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.PartialShape{2, 3})
func FromSlice[T DType](data []T, shape PartialShape) (*RawTensor, error) {
	return tensor.FromSlice(data, shape)
}

// Scalar creates a rank-0 tensor holding a single value.
func Scalar[T DType](value T) *RawTensor {
	return tensor.Scalar(value)
}

// Zero returns the value type's zero element: a scalar int32 tensor
// holding 0. Zeros-maps are filled with this value.
func Zero() *RawTensor {
	return tensor.Zero()
}

// KeyFromTensor captures a tensor's identity as a Key.
func KeyFromTensor(r *RawTensor) Key {
	return tensor.KeyFromTensor(r)
}

// ScalarKey builds a Key from a single scalar value.
//
// Example:
//
//	k := tensor.ScalarKey[int64](42)
func ScalarKey[T DType](value T) Key {
	return tensor.ScalarKey(value)
}
