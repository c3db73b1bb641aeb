package tensormap

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/stormlilian/tensormap/internal/refmap"
	"github.com/stormlilian/tensormap/internal/tensor"
	"github.com/stormlilian/tensormap/internal/variant"
)

// Decode errors.
var (
	ErrTypeMismatch       = errors.New("payload is not a tensormap")
	ErrMalformedMetadata  = errors.New("malformed tensormap metadata")
	ErrEntryCountMismatch = errors.New("entry count does not match sub-payloads")
	ErrDuplicateKey       = errors.New("duplicate key in encoded tensormap")
)

// Encode externalizes the map into data: the header fields and entry count
// go into the metadata blob, and each entry contributes a key tensor
// followed by its value tensor to the sub-payload list. Entries are written
// in a stable order derived from key fingerprints, so encoding the same map
// twice yields identical payloads.
func (m *TensorMap) Encode(data *variant.Data) {
	data.TypeName = MapTypeName

	var meta bytes.Buffer
	writeMeta(&meta, uint32(len(m.ElementShape)))
	for _, dim := range m.ElementShape {
		writeMeta(&meta, dim)
	}
	writeMeta(&meta, uint32(m.ElementDType))
	writeMeta(&meta, m.MaxNumElements)
	writeMeta(&meta, uint64(m.Size()))
	data.Metadata = meta.Bytes()

	type entry struct {
		key   tensor.Key
		value *tensor.RawTensor
	}
	sorted := make([]entry, 0, m.Size())
	m.entries.Range(func(k tensor.Key, v *tensor.RawTensor) bool {
		sorted = append(sorted, entry{key: k, value: v})
		return true
	})
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].key.Less(sorted[j].key)
	})

	for _, e := range sorted {
		kt, err := e.key.Tensor()
		if err != nil {
			panic(fmt.Sprintf("tensormap: corrupt key %v: %v", e.key, err))
		}
		data.AddTensor(kt)
		data.AddTensor(e.value)
	}
}

// Decode reconstructs the map from data, fully overwriting the destination's
// header fields and table. The previous storage reference is released. A
// malformed payload is reported as an error and leaves the destination
// unchanged.
func (m *TensorMap) Decode(data *variant.Data) error {
	if data.TypeName != MapTypeName {
		return fmt.Errorf("%w: got type name %q", ErrTypeMismatch, data.TypeName)
	}
	r := bytes.NewReader(data.Metadata)

	var rank uint32
	if err := readMeta(r, &rank); err != nil {
		return err
	}
	if rank > variant.MaxRank {
		return fmt.Errorf("%w: rank %d", ErrMalformedMetadata, rank)
	}
	shape := make(tensor.PartialShape, rank)
	for i := range shape {
		if err := readMeta(r, &shape[i]); err != nil {
			return err
		}
	}
	if err := shape.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMetadata, err)
	}

	var dtype uint32
	if err := readMeta(r, &dtype); err != nil {
		return err
	}
	if !tensor.DataType(dtype).Valid() {
		return fmt.Errorf("%w: dtype %d", ErrMalformedMetadata, dtype)
	}

	var maxNumElements int64
	if err := readMeta(r, &maxNumElements); err != nil {
		return err
	}

	var count uint64
	if err := readMeta(r, &count); err != nil {
		return err
	}
	if r.Len() != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrMalformedMetadata, r.Len())
	}
	if count > uint64(data.NumTensors()) || uint64(data.NumTensors()) != 2*count {
		return fmt.Errorf("%w: metadata declares %d entries, payload has %d tensors",
			ErrEntryCountMismatch, count, data.NumTensors())
	}

	entries := refmap.New[tensor.Key, *tensor.RawTensor]()
	for i := uint64(0); i < count; i++ {
		key := tensor.KeyFromTensor(data.Tensors[2*i])
		if !entries.Insert(key, data.Tensors[2*i+1]) {
			entries.Release()
			return fmt.Errorf("%w: %v", ErrDuplicateKey, key)
		}
	}

	m.ElementShape = shape
	m.ElementDType = tensor.DataType(dtype)
	m.MaxNumElements = maxNumElements
	m.entries.Release()
	m.entries = entries
	return nil
}

// writeMeta appends one fixed-width little-endian value to the metadata
// buffer. Writes to a bytes.Buffer cannot fail.
func writeMeta(buf *bytes.Buffer, v any) {
	_ = binary.Write(buf, binary.LittleEndian, v)
}

// readMeta reads one fixed-width little-endian value from the metadata
// buffer, mapping truncation onto ErrMalformedMetadata.
func readMeta(r *bytes.Reader, v any) error {
	if err := binary.Read(r, binary.LittleEndian, v); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return fmt.Errorf("%w: truncated", ErrMalformedMetadata)
		}
		return fmt.Errorf("%w: %v", ErrMalformedMetadata, err)
	}
	return nil
}
