package tensor

import (
	"bytes"
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"
)

// tensorBuffer is a reference-counted shared buffer for Copy-on-Write
// semantics. This enables cheap cloning and inplace optimizations when
// refCount == 1.
type tensorBuffer struct {
	data     []byte
	refCount atomic.Int32
	mu       sync.Mutex // For safe deallocation
}

// newTensorBuffer creates a new reference-counted buffer with refCount = 1.
func newTensorBuffer(size int) *tensorBuffer {
	buf := &tensorBuffer{
		data: make([]byte, size),
	}
	buf.refCount.Store(1)
	return buf
}

// addRef increments the reference count (for Clone operations).
func (tb *tensorBuffer) addRef() {
	tb.refCount.Add(1)
}

// release decrements the reference count and deallocates if it reaches 0.
func (tb *tensorBuffer) release() {
	if tb.refCount.Add(-1) == 0 {
		tb.mu.Lock()
		defer tb.mu.Unlock()
		tb.data = nil
	}
}

// isUnique returns true if this buffer has only one reference.
func (tb *tensorBuffer) isUnique() bool {
	return tb.refCount.Load() == 1
}

// RawTensor is the opaque tensor value stored in a tensormap. It holds a
// fully-defined shape, runtime type information, and a reference-counted
// byte buffer shared between clones.
type RawTensor struct {
	buffer *tensorBuffer
	shape  PartialShape
	dtype  DataType
}

// NewRaw creates a new RawTensor with the given shape and type.
// The shape must be fully defined. Memory is zero-initialized.
func NewRaw(shape PartialShape, dtype DataType) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if !shape.FullyDefined() {
		return nil, fmt.Errorf("shape %s is not fully defined", shape)
	}

	byteSize := int(shape.NumElements()) * dtype.Size()

	return &RawTensor{
		buffer: newTensorBuffer(byteSize),
		shape:  shape.Clone(),
		dtype:  dtype,
	}, nil
}

// FromSlice creates a RawTensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice[T DType](data []T, shape PartialShape) (*RawTensor, error) {
	if shape.NumElements() != int64(len(data)) {
		return nil, fmt.Errorf("shape %s requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}

	var dummy T
	raw, err := NewRaw(shape, inferDataType(dummy))
	if err != nil {
		return nil, err
	}
	copy(raw.buffer.data, unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(data))), len(raw.buffer.data)))
	return raw, nil
}

// Scalar creates a rank-0 RawTensor holding a single value.
func Scalar[T DType](value T) *RawTensor {
	raw, err := FromSlice([]T{value}, PartialShape{})
	if err != nil {
		panic(err) // scalar shape is always valid
	}
	return raw
}

// Zero returns the value type's zero element: a scalar int32 tensor holding 0.
func Zero() *RawTensor {
	return Scalar[int32](0)
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() PartialShape {
	return r.shape
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return int(r.shape.NumElements())
}

// ByteSize returns the total memory size in bytes.
func (r *RawTensor) ByteSize() int {
	return r.NumElements() * r.dtype.Size()
}

// Data returns the raw byte slice.
// WARNING: Direct access to underlying memory. Use with caution.
func (r *RawTensor) Data() []byte {
	return r.buffer.data
}

// AsFloat32 interprets the data as []float32.
// Panics if the tensor's dtype is not Float32.
func (r *RawTensor) AsFloat32() []float32 {
	if r.dtype != Float32 {
		panic(fmt.Sprintf("tensor dtype is %s, not float32", r.dtype))
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(unsafe.SliceData(r.buffer.data))), r.NumElements())
}

// AsFloat64 interprets the data as []float64.
// Panics if the tensor's dtype is not Float64.
func (r *RawTensor) AsFloat64() []float64 {
	if r.dtype != Float64 {
		panic(fmt.Sprintf("tensor dtype is %s, not float64", r.dtype))
	}
	return unsafe.Slice((*float64)(unsafe.Pointer(unsafe.SliceData(r.buffer.data))), r.NumElements())
}

// AsInt32 interprets the data as []int32.
// Panics if the tensor's dtype is not Int32.
func (r *RawTensor) AsInt32() []int32 {
	if r.dtype != Int32 {
		panic(fmt.Sprintf("tensor dtype is %s, not int32", r.dtype))
	}
	return unsafe.Slice((*int32)(unsafe.Pointer(unsafe.SliceData(r.buffer.data))), r.NumElements())
}

// AsInt64 interprets the data as []int64.
// Panics if the tensor's dtype is not Int64.
func (r *RawTensor) AsInt64() []int64 {
	if r.dtype != Int64 {
		panic(fmt.Sprintf("tensor dtype is %s, not int64", r.dtype))
	}
	return unsafe.Slice((*int64)(unsafe.Pointer(unsafe.SliceData(r.buffer.data))), r.NumElements())
}

// AsUint8 interprets the data as []uint8.
// Panics if the tensor's dtype is not Uint8.
func (r *RawTensor) AsUint8() []uint8 {
	if r.dtype != Uint8 {
		panic(fmt.Sprintf("tensor dtype is %s, not uint8", r.dtype))
	}
	return r.buffer.data // Already []byte = []uint8
}

// AsBool interprets the data as []bool.
// Panics if the tensor's dtype is not Bool.
func (r *RawTensor) AsBool() []bool {
	if r.dtype != Bool {
		panic(fmt.Sprintf("tensor dtype is %s, not bool", r.dtype))
	}
	return unsafe.Slice((*bool)(unsafe.Pointer(unsafe.SliceData(r.buffer.data))), r.NumElements())
}

// Clone creates a shallow copy of the RawTensor. The byte buffer is shared
// via reference counting, so clones are cheap regardless of tensor size.
func (r *RawTensor) Clone() *RawTensor {
	r.buffer.addRef()
	return &RawTensor{
		buffer: r.buffer,
		shape:  r.shape.Clone(),
		dtype:  r.dtype,
	}
}

// Release decrements the buffer reference count and deallocates if it
// reaches 0.
func (r *RawTensor) Release() {
	r.buffer.release()
}

// IsUnique returns true if this tensor is the only reference to the buffer.
func (r *RawTensor) IsUnique() bool {
	return r.buffer.isUnique()
}

// Equal reports whether two tensors hold the same dtype, shape and bytes.
func (r *RawTensor) Equal(other *RawTensor) bool {
	if r == other {
		return true
	}
	if other == nil {
		return false
	}
	return r.dtype == other.dtype &&
		r.shape.Equal(other.shape) &&
		bytes.Equal(r.buffer.data, other.buffer.data)
}

// String returns a short description like "float32[2,3]".
func (r *RawTensor) String() string {
	return fmt.Sprintf("%s%s", r.dtype, r.shape)
}
