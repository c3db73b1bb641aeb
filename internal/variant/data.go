// Package variant provides the type-erased payload boundary used to pass
// containers such as tensormap.TensorMap through generic runtime slots.
//
// A payload type implements Encodable and registers a decoder under its
// stable type name. Data is the structured byte-oriented representation a
// payload encodes into: a type name, an opaque metadata blob, and a sequence
// of tensor sub-payloads. Data itself marshals to a self-describing binary
// form for persistence or transmission.
package variant

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/stormlilian/tensormap/internal/tensor"
)

// Format constants.
const (
	MagicBytes    = "VRNT"
	FormatVersion = 1
	MaxRank       = 255     // sanity bound on tensor rank
	MaxFrameSize  = 1 << 30 // 1 GiB bound on a single frame
)

// Data is the structured representation a payload type encodes into and
// decodes from. Metadata carries the payload's own header bytes; Tensors
// carries the payload's tensor sub-payloads in the order the payload wrote
// them.
type Data struct {
	TypeName string
	Metadata []byte
	Tensors  []*tensor.RawTensor
}

// AddTensor appends a tensor sub-payload.
func (d *Data) AddTensor(r *tensor.RawTensor) {
	d.Tensors = append(d.Tensors, r)
}

// NumTensors returns the number of tensor sub-payloads.
func (d *Data) NumTensors() int {
	return len(d.Tensors)
}

// Marshal serializes the Data to its binary form.
//
// Layout (all integers little-endian):
//
//	magic "VRNT" | version u32 | type name (u32 len + bytes) |
//	metadata (u64 len + bytes) | tensor count u32 | tensors...
//
// Each tensor is dtype u32 | rank u32 | dims int64... | data u64 len + bytes.
func (d *Data) Marshal() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(MagicBytes)
	if err := binary.Write(&buf, binary.LittleEndian, uint32(FormatVersion)); err != nil {
		return nil, fmt.Errorf("failed to write version: %w", err)
	}

	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(d.TypeName))); err != nil {
		return nil, fmt.Errorf("failed to write type name length: %w", err)
	}
	buf.WriteString(d.TypeName)

	if err := binary.Write(&buf, binary.LittleEndian, uint64(len(d.Metadata))); err != nil {
		return nil, fmt.Errorf("failed to write metadata length: %w", err)
	}
	buf.Write(d.Metadata)

	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(d.Tensors))); err != nil {
		return nil, fmt.Errorf("failed to write tensor count: %w", err)
	}
	for i, r := range d.Tensors {
		if err := writeTensor(&buf, r); err != nil {
			return nil, fmt.Errorf("failed to write tensor %d: %w", i, err)
		}
	}

	return buf.Bytes(), nil
}

// Unmarshal parses the binary form produced by Marshal, fully overwriting d.
// A structurally malformed payload is reported as an error; d is left in an
// unspecified state and must not be used without being reset.
func (d *Data) Unmarshal(raw []byte) error {
	r := bytes.NewReader(raw)

	magic := make([]byte, 4)
	if _, err := io.ReadFull(r, magic); err != nil {
		return fmt.Errorf("failed to read magic bytes: %w", errTruncated(err))
	}
	if string(magic) != MagicBytes {
		return ErrInvalidMagic
	}

	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return fmt.Errorf("failed to read version: %w", errTruncated(err))
	}
	if version != FormatVersion {
		return fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}

	var nameLen uint32
	if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
		return fmt.Errorf("failed to read type name length: %w", errTruncated(err))
	}
	name, err := readFrame(r, uint64(nameLen))
	if err != nil {
		return fmt.Errorf("failed to read type name: %w", err)
	}
	d.TypeName = string(name)

	var metaLen uint64
	if err := binary.Read(r, binary.LittleEndian, &metaLen); err != nil {
		return fmt.Errorf("failed to read metadata length: %w", errTruncated(err))
	}
	if d.Metadata, err = readFrame(r, metaLen); err != nil {
		return fmt.Errorf("failed to read metadata: %w", err)
	}

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return fmt.Errorf("failed to read tensor count: %w", errTruncated(err))
	}
	d.Tensors = make([]*tensor.RawTensor, 0, count)
	for i := uint32(0); i < count; i++ {
		t, err := readTensor(r)
		if err != nil {
			return fmt.Errorf("failed to read tensor %d: %w", i, err)
		}
		d.Tensors = append(d.Tensors, t)
	}

	if r.Len() != 0 {
		return fmt.Errorf("%w: %d bytes", ErrTrailingBytes, r.Len())
	}
	return nil
}

// writeTensor frames a single tensor sub-payload.
func writeTensor(buf *bytes.Buffer, r *tensor.RawTensor) error {
	if err := binary.Write(buf, binary.LittleEndian, uint32(r.DType())); err != nil {
		return fmt.Errorf("failed to write dtype: %w", err)
	}
	shape := r.Shape()
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(shape))); err != nil {
		return fmt.Errorf("failed to write rank: %w", err)
	}
	for _, dim := range shape {
		if err := binary.Write(buf, binary.LittleEndian, dim); err != nil {
			return fmt.Errorf("failed to write dimension: %w", err)
		}
	}
	data := r.Data()
	if err := binary.Write(buf, binary.LittleEndian, uint64(len(data))); err != nil {
		return fmt.Errorf("failed to write data length: %w", err)
	}
	buf.Write(data)
	return nil
}

// readTensor parses a single framed tensor sub-payload.
func readTensor(r *bytes.Reader) (*tensor.RawTensor, error) {
	var dtype uint32
	if err := binary.Read(r, binary.LittleEndian, &dtype); err != nil {
		return nil, fmt.Errorf("failed to read dtype: %w", errTruncated(err))
	}
	if !tensor.DataType(dtype).Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDType, dtype)
	}

	var rank uint32
	if err := binary.Read(r, binary.LittleEndian, &rank); err != nil {
		return nil, fmt.Errorf("failed to read rank: %w", errTruncated(err))
	}
	if rank > MaxRank {
		return nil, fmt.Errorf("%w: rank %d", ErrInvalidShape, rank)
	}
	shape := make(tensor.PartialShape, rank)
	for i := range shape {
		if err := binary.Read(r, binary.LittleEndian, &shape[i]); err != nil {
			return nil, fmt.Errorf("failed to read dimension: %w", errTruncated(err))
		}
	}
	if !shape.FullyDefined() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidShape, shape)
	}

	var dataLen uint64
	if err := binary.Read(r, binary.LittleEndian, &dataLen); err != nil {
		return nil, fmt.Errorf("failed to read data length: %w", errTruncated(err))
	}
	// The declared dims are untrusted: validate the size they imply against
	// the data frame before allocating anything.
	want, ok := shapeByteSize(shape, tensor.DataType(dtype))
	if !ok || want != dataLen {
		return nil, fmt.Errorf("%w: shape %s with %d data bytes", ErrInvalidShape, shape, dataLen)
	}
	data, err := readFrame(r, dataLen)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}

	raw, err := tensor.NewRaw(shape, tensor.DataType(dtype))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidShape, err)
	}
	copy(raw.Data(), data)
	return raw, nil
}

// shapeByteSize computes the buffer size a shape and dtype imply, rejecting
// products that overflow or exceed MaxFrameSize. The shape must already be
// fully defined.
func shapeByteSize(shape tensor.PartialShape, dtype tensor.DataType) (uint64, bool) {
	size := uint64(dtype.Size())
	for _, dim := range shape {
		d := uint64(dim)
		if d != 0 && size > MaxFrameSize/d {
			return 0, false
		}
		size *= d
	}
	return size, true
}

// readFrame reads a length-prefixed frame body, bounding the allocation by
// the bytes actually remaining.
func readFrame(r *bytes.Reader, length uint64) ([]byte, error) {
	if length > MaxFrameSize || length > uint64(r.Len()) {
		return nil, fmt.Errorf("%w: %d bytes, %d remain", ErrFrameTooLarge, length, r.Len())
	}
	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, errTruncated(err)
	}
	return body, nil
}

// errTruncated maps io read errors onto the package's truncation sentinel.
func errTruncated(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return ErrTruncated
	}
	return err
}
