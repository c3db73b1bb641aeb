package tensor

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Key is a comparable value wrapper around a tensor, used purely for
// identity and lookup in a tensormap. The wrapped dtype, shape and contents
// are captured as immutable strings so Go's built-in map machinery supplies
// equality and hashing.
type Key struct {
	dtype DataType
	dims  string // little-endian packed dimensions
	data  string // raw element bytes
}

// KeyFromTensor captures a tensor's identity as a Key. The tensor's bytes
// are copied; later mutation of the tensor does not affect the key.
func KeyFromTensor(r *RawTensor) Key {
	dims := make([]byte, 8*len(r.shape))
	for i, dim := range r.shape {
		binary.LittleEndian.PutUint64(dims[8*i:], uint64(dim))
	}
	return Key{
		dtype: r.dtype,
		dims:  string(dims),
		data:  string(r.Data()),
	}
}

// ScalarKey builds a Key from a single scalar value.
func ScalarKey[T DType](value T) Key {
	return KeyFromTensor(Scalar(value))
}

// Tensor reconstructs the tensor the key was captured from.
func (k Key) Tensor() (*RawTensor, error) {
	shape := make(PartialShape, len(k.dims)/8)
	for i := range shape {
		shape[i] = int64(binary.LittleEndian.Uint64([]byte(k.dims[8*i : 8*i+8])))
	}
	raw, err := NewRaw(shape, k.dtype)
	if err != nil {
		return nil, fmt.Errorf("invalid key: %w", err)
	}
	if len(k.data) != len(raw.Data()) {
		return nil, fmt.Errorf("invalid key: %d data bytes for %s", len(k.data), raw)
	}
	copy(raw.Data(), k.data)
	return raw, nil
}

// DType returns the data type of the wrapped tensor.
func (k Key) DType() DataType {
	return k.dtype
}

// Fingerprint returns a 64-bit content digest of the key. Fingerprints give
// keys a stable, content-derived order independent of map iteration order.
func (k Key) Fingerprint() uint64 {
	d := xxhash.New()
	_ = binary.Write(d, binary.LittleEndian, k.dtype)
	_, _ = d.WriteString(k.dims)
	_, _ = d.WriteString(k.data)
	return d.Sum64()
}

// Less orders keys by fingerprint, breaking ties on the raw contents.
func (k Key) Less(other Key) bool {
	kf, of := k.Fingerprint(), other.Fingerprint()
	if kf != of {
		return kf < of
	}
	if k.dtype != other.dtype {
		return k.dtype < other.dtype
	}
	if k.dims != other.dims {
		return k.dims < other.dims
	}
	return k.data < other.data
}

// String returns a short debug form like "key(int32, fp=a1b2c3...)".
func (k Key) String() string {
	return fmt.Sprintf("key(%s, fp=%016x)", k.dtype, k.Fingerprint())
}
