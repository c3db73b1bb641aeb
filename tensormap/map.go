// Copyright 2026 The TensorMap Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensormap

import (
	"github.com/stormlilian/tensormap/internal/tensormap"
)

// TensorMap is a handle to a shared, reference-counted table of tensor
// entries. See the package documentation for the sharing and aliasing
// contract.
type TensorMap = tensormap.TensorMap

// MapTypeName is the stable type name identifying TensorMap at the variant
// boundary.
const MapTypeName = tensormap.MapTypeName

// Unbounded marks a map whose size is not limited.
const Unbounded = tensormap.Unbounded

// Decode errors.
var (
	ErrTypeMismatch       = tensormap.ErrTypeMismatch
	ErrMalformedMetadata  = tensormap.ErrMalformedMetadata
	ErrEntryCountMismatch = tensormap.ErrEntryCountMismatch
	ErrDuplicateKey       = tensormap.ErrDuplicateKey
)

// New creates an empty TensorMap owning fresh storage.
//
// Example:
//
//	m := tensormap.New()
//	m.Insert(tensor.ScalarKey[int64](1), value)
func New() *TensorMap {
	return tensormap.New()
}
