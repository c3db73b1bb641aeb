package variant

import (
	"fmt"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blobPayload is a minimal Encodable used to exercise the registry.
type blobPayload struct {
	body []byte
}

func (p *blobPayload) TypeName() string    { return "variant.test.Blob" }
func (p *blobPayload) DebugString() string { return fmt.Sprintf("Blob[%d bytes]", len(p.body)) }

func (p *blobPayload) Encode(data *Data) {
	data.TypeName = p.TypeName()
	data.Metadata = append([]byte(nil), p.body...)
}

func (p *blobPayload) Decode(data *Data) error {
	if data.NumTensors() != 0 {
		return fmt.Errorf("blob payload carries no tensors, got %d", data.NumTensors())
	}
	p.body = append([]byte(nil), data.Metadata...)
	return nil
}

func init() {
	Register("variant.test.Blob", func() Encodable { return &blobPayload{} })
}

func TestVariantRoundTripThroughRegistry(t *testing.T) {
	v := New(&blobPayload{body: []byte("hello")})

	data := v.Encode()
	assert.Equal(t, "variant.test.Blob", data.TypeName)

	back, err := FromData(data)
	require.NoError(t, err)
	got, ok := back.Get().(*blobPayload)
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), got.body)
}

func TestFromDataUnknownType(t *testing.T) {
	_, err := FromData(&Data{TypeName: "no.such.Type"})
	assert.ErrorIs(t, err, ErrUnknownTypeName)
}

func TestFromDataDecodeFailure(t *testing.T) {
	data := &Data{TypeName: "variant.test.Blob"}
	data.AddTensor(nil)

	_, err := FromData(data)
	assert.Error(t, err)
}

func TestRegisterDuplicatePanics(t *testing.T) {
	assert.Panics(t, func() {
		Register("variant.test.Blob", func() Encodable { return &blobPayload{} })
	})
}

func TestEmptyVariant(t *testing.T) {
	var v Variant
	assert.Empty(t, v.TypeName())
	assert.Equal(t, "Variant<empty>", v.DebugString())
	assert.Nil(t, v.Get())
}

func TestCanInline(t *testing.T) {
	assert.True(t, CanInline(unsafe.Sizeof(Variant{})))
	assert.False(t, CanInline(MaxInlineSize+1))
}
