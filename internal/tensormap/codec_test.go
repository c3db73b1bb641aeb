package tensormap

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stormlilian/tensormap/internal/tensor"
	"github.com/stormlilian/tensormap/internal/variant"
)

func populated(t *testing.T, n int) *TensorMap {
	t.Helper()
	m := New()
	m.ElementShape = tensor.PartialShape{tensor.UnknownDim, 4}
	m.ElementDType = tensor.Float32
	m.MaxNumElements = 16
	for i := 0; i < n; i++ {
		v, err := tensor.FromSlice([]float32{float32(i), float32(i + 1)}, tensor.PartialShape{2})
		require.NoError(t, err)
		require.True(t, m.Insert(tensor.ScalarKey[int64](int64(i)), v))
	}
	return m
}

func requireValueEqual(t *testing.T, want, got *TensorMap) {
	t.Helper()
	assert.Equal(t, want.ElementShape, got.ElementShape)
	assert.Equal(t, want.ElementDType, got.ElementDType)
	assert.Equal(t, want.MaxNumElements, got.MaxNumElements)
	require.Equal(t, want.Size(), got.Size())
	for _, k := range want.Keys() {
		gv, ok := got.Find(k)
		require.True(t, ok, "missing key %v", k)
		assert.True(t, want.Lookup(k).Equal(gv), "value mismatch for %v", k)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 5} {
		m := populated(t, n)

		var data variant.Data
		m.Encode(&data)
		assert.Equal(t, MapTypeName, data.TypeName)
		assert.Equal(t, 2*n, data.NumTensors())

		out := New()
		require.NoError(t, out.Decode(&data))
		requireValueEqual(t, m, out)
		assert.True(t, out.RefCountIsOne(), "decoded map should own fresh storage")
	}
}

func TestEncodeDecodeThroughWire(t *testing.T) {
	m := populated(t, 3)

	raw, err := variant.New(m).Encode().Marshal()
	require.NoError(t, err)

	var back variant.Data
	require.NoError(t, back.Unmarshal(raw))

	v, err := variant.FromData(&back)
	require.NoError(t, err)
	out, ok := v.Get().(*TensorMap)
	require.True(t, ok)
	requireValueEqual(t, m, out)
}

func TestEncodeIsDeterministic(t *testing.T) {
	m := populated(t, 8)

	var d1, d2 variant.Data
	m.Encode(&d1)
	m.Encode(&d2)

	raw1, err := d1.Marshal()
	require.NoError(t, err)
	raw2, err := d2.Marshal()
	require.NoError(t, err)
	assert.Equal(t, raw1, raw2, "encoding the same map twice should be byte-identical")
}

func TestDecodeOverwritesDestination(t *testing.T) {
	src := populated(t, 2)
	var data variant.Data
	src.Encode(&data)

	dst := New()
	dst.ElementDType = tensor.Int64
	dst.MaxNumElements = 99
	dst.Replace(tensor.ScalarKey[int64](1000), tensor.Zero())
	dst.Replace(tensor.ScalarKey[int64](1001), tensor.Zero())
	dst.Replace(tensor.ScalarKey[int64](1002), tensor.Zero())

	require.NoError(t, dst.Decode(&data))
	requireValueEqual(t, src, dst)
	_, ok := dst.Find(tensor.ScalarKey[int64](1000))
	assert.False(t, ok, "stale entry survived decode")
}

func TestDecodeRejectsForeignTypeName(t *testing.T) {
	m := populated(t, 1)
	var data variant.Data
	m.Encode(&data)
	data.TypeName = "other.Payload"

	err := New().Decode(&data)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestDecodeRejectsEntryCountMismatch(t *testing.T) {
	m := populated(t, 2)
	var data variant.Data
	m.Encode(&data)

	data.Tensors = data.Tensors[:len(data.Tensors)-1]

	err := New().Decode(&data)
	assert.ErrorIs(t, err, ErrEntryCountMismatch)
}

func TestDecodeRejectsTruncatedMetadata(t *testing.T) {
	m := populated(t, 1)
	var data variant.Data
	m.Encode(&data)

	for cut := 0; cut < len(data.Metadata); cut++ {
		trimmed := data
		trimmed.Metadata = data.Metadata[:cut]
		err := New().Decode(&trimmed)
		assert.ErrorIs(t, err, ErrMalformedMetadata, "metadata prefix of %d bytes", cut)
	}
}

func TestDecodeRejectsTrailingMetadata(t *testing.T) {
	m := populated(t, 1)
	var data variant.Data
	m.Encode(&data)
	data.Metadata = append(data.Metadata, 0x00)

	err := New().Decode(&data)
	assert.ErrorIs(t, err, ErrMalformedMetadata)
}

func TestDecodeRejectsBadDType(t *testing.T) {
	m := populated(t, 0)
	var data variant.Data
	m.Encode(&data)

	// dtype sits after rank(4) + 2 dims(16) in the metadata.
	data.Metadata[20] = 0xff

	err := New().Decode(&data)
	assert.ErrorIs(t, err, ErrMalformedMetadata)
}

func TestDecodeRejectsDuplicateKeys(t *testing.T) {
	m := populated(t, 2)
	var data variant.Data
	m.Encode(&data)

	// Overwrite the second entry's key tensor with a copy of the first's.
	data.Tensors[2] = data.Tensors[0].Clone()

	err := New().Decode(&data)
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestDecodeFailureLeavesDestinationUntouched(t *testing.T) {
	m := populated(t, 2)
	var data variant.Data
	m.Encode(&data)
	data.Tensors = data.Tensors[:1]

	dst := New()
	k := tensor.ScalarKey[int64](7)
	dst.Replace(k, tensor.Zero())

	require.Error(t, dst.Decode(&data))
	_, ok := dst.Find(k)
	assert.True(t, ok, "failed decode should not clobber the destination")
}

func TestEncodeDecodeProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("Decode(Encode(m)) is value-equal to m", prop.ForAll(
		func(entries map[int64]float32, dims []int64, maxElems int64) bool {
			m := New()
			m.ElementShape = tensor.PartialShape(dims)
			m.MaxNumElements = maxElems
			for k, v := range entries {
				raw, err := tensor.FromSlice([]float32{v}, tensor.PartialShape{1})
				if err != nil {
					return false
				}
				m.Insert(tensor.ScalarKey[int64](k), raw)
			}

			var data variant.Data
			m.Encode(&data)
			wire, err := data.Marshal()
			if err != nil {
				return false
			}
			var back variant.Data
			if err := back.Unmarshal(wire); err != nil {
				return false
			}
			out := New()
			if err := out.Decode(&back); err != nil {
				return false
			}

			if out.Size() != m.Size() ||
				!out.ElementShape.Equal(m.ElementShape) ||
				out.MaxNumElements != m.MaxNumElements {
				return false
			}
			for _, k := range m.Keys() {
				v, ok := out.Find(k)
				if !ok || !v.Equal(m.Lookup(k)) {
					return false
				}
			}
			return true
		},
		gen.MapOf(gen.Int64(), gen.Float32()),
		gen.SliceOfN(2, gen.Int64Range(-1, 8)),
		gen.Int64Range(-1, 1024),
	))

	properties.TestingRun(t)
}
