// Copyright 2026 The TensorMap Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensormap provides a reference-counted, copy-on-write map of
// tensors that can be passed through type-erased runtime slots as a single
// self-describing unit.
//
// # Sharing vs copying
//
// Clone shares the underlying table and is cheap regardless of map size:
//
//	a := tensormap.New()
//	b := a.Clone()
//	b.Insert(k, v) // WARNING: observable through a as well
//
// For independent storage, use Copy:
//
//	b := a.Copy()
//	b.Insert(k, v) // not observable through a
//
// Copy duplicates the table structure only; each value tensor still shares
// its byte buffer with the original via reference counting.
//
// # Aliasing safety
//
// A consumer that wants to mutate or recycle a map's storage in place must
// hold the only reference:
//
//	if m.RefCountIsOne() {
//	    // safe to reuse m's table as the output
//	}
//
// # Serialization
//
// TensorMap implements the variant.Encodable contract and registers itself
// with the variant registry, so an encoded map can be reconstructed by type
// name alone:
//
//	data := variant.New(m).Encode()
//	raw, _ := data.Marshal()
//	...
//	var back variant.Data
//	_ = back.Unmarshal(raw)
//	v, _ := variant.FromData(&back)
//	restored := v.Get().(*tensormap.TensorMap)
package tensormap
