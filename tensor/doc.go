// Copyright 2026 The TensorMap Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the opaque tensor value and key types stored in a
// tensormap.
//
// # Overview
//
// This package defines:
//   - RawTensor: an opaque value holding a dtype, a fully-defined shape and
//     a reference-counted byte buffer
//   - Key: a comparable identity wrapper around a tensor, used for lookup
//   - PartialShape, DataType: shape and type descriptors
//
// # Basic Usage
//
//	v, _ := tensor.FromSlice([]float32{1, 2, 3}, tensor.PartialShape{3})
//	k := tensor.ScalarKey[int64](42)
//
//	clone := v.Clone() // shares the buffer via reference counting
//
// The container never inspects tensor contents; values are copied
// structurally and compared only where a caller asks for it via Equal.
package tensor
