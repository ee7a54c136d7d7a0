package model

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGPUVertexMarshal(t *testing.T) {
	v := GPUVertex{
		Position: [3]float32{1, 2, 3},
		Normal:   [3]float32{0, 1, 0},
		TexCoord: [2]float32{0.5, 0.25},
		Tangent:  [4]float32{1, 0, 0, -1},
	}
	buf := v.Marshal()
	require.Len(t, buf, 48)

	at := func(offset int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset : offset+4]))
	}
	assert.Equal(t, float32(1), at(0))
	assert.Equal(t, float32(2), at(4))
	assert.Equal(t, float32(3), at(8))
	assert.Equal(t, float32(0), at(12))
	assert.Equal(t, float32(1), at(16))
	assert.Equal(t, float32(0.5), at(24))
	assert.Equal(t, float32(0.25), at(28))
	assert.Equal(t, float32(1), at(32))
	assert.Equal(t, float32(-1), at(44))
}

func TestGPUVertexSizeMatchesMarshal(t *testing.T) {
	var v GPUVertex
	assert.Equal(t, len(v.Marshal()), v.Size())

	var s GPUSkyVertex
	assert.Equal(t, len(s.Marshal()), s.Size())
}

func TestComputeBoundingRadius(t *testing.T) {
	verts := []GPUVertex{
		{Position: [3]float32{0, 0, 0}},
		{Position: [3]float32{3, 4, 0}},
		{Position: [3]float32{1, 1, 1}},
	}
	assert.InDelta(t, 5.0, ComputeBoundingRadius(verts), 1e-6)
	assert.Equal(t, float32(0), ComputeBoundingRadius(nil))
}
