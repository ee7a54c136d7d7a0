package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 5, Coalesce(0, 5, 7))
	assert.Equal(t, "a", Coalesce("", "a"))
	assert.Equal(t, 0, Coalesce(0, 0))
}

func TestFloat4BytesSkyBlue(t *testing.T) {
	// The default sky color, checked byte for byte against the IEEE-754
	// little-endian encoding an RGBA32Float texel upload expects.
	got := Float4Bytes([4]float32{0.529, 0.808, 0.980, 1.0})

	want := []byte{
		0x8b, 0x6c, 0x07, 0x3f, // 0.529
		0x17, 0xd9, 0x4e, 0x3f, // 0.808
		0x48, 0xe1, 0x7a, 0x3f, // 0.980
		0x00, 0x00, 0x80, 0x3f, // 1.0
	}
	assert.Equal(t, want, got)
}

func TestFloat4BytesZeroAndOne(t *testing.T) {
	got := Float4Bytes([4]float32{0, 1, 0, 1})
	want := []byte{
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x80, 0x3f,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x80, 0x3f,
	}
	assert.Equal(t, want, got)
}

func TestPutFloat32Offset(t *testing.T) {
	buf := make([]byte, 12)
	PutFloat32(buf, 4, 1.0)
	assert.Equal(t, []byte{0, 0, 0, 0, 0x00, 0x00, 0x80, 0x3f, 0, 0, 0, 0}, buf)
}

func TestFloat3Bits(t *testing.T) {
	bits := Float3Bits([3]float32{1.0, -1.0, 0.5})
	assert.Equal(t, [3]uint32{0x3f800000, 0xbf800000, 0x3f000000}, bits)
}
