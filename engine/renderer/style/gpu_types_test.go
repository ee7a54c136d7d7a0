package style

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parallax3d/parallax/common"
	"github.com/parallax3d/parallax/engine/vr"
)

func f32At(t *testing.T, buf []byte, offset int) float32 {
	t.Helper()
	require.LessOrEqual(t, offset+4, len(buf))
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset : offset+4]))
}

func TestGPUTransformBlockMarshalOffsets(t *testing.T) {
	block := GPUTransformBlock{
		EyePos:     [4]float32{1.5, -2.5, 3.5, 1},
		ClipOffset: 0.25,
	}
	for i := range block.Model {
		block.Model[i] = float32(i)
		block.View[i] = float32(100 + i)
		block.Proj[i] = float32(200 + i)
	}

	buf := block.Marshal()
	require.Len(t, buf, GPUTransformBlockSize)
	assert.Equal(t, GPUTransformBlockSize, block.Size())

	assert.Equal(t, float32(0), f32At(t, buf, 0))
	assert.Equal(t, float32(15), f32At(t, buf, 60))
	assert.Equal(t, float32(100), f32At(t, buf, 64))
	assert.Equal(t, float32(115), f32At(t, buf, 124))
	assert.Equal(t, float32(200), f32At(t, buf, 128))
	assert.Equal(t, float32(215), f32At(t, buf, 188))
	assert.Equal(t, float32(1.5), f32At(t, buf, 192))
	assert.Equal(t, float32(-2.5), f32At(t, buf, 196))
	assert.Equal(t, float32(3.5), f32At(t, buf, 200))
	assert.Equal(t, float32(1), f32At(t, buf, 204))
	assert.Equal(t, float32(0.25), f32At(t, buf, 208))

	// Tail padding stays zero.
	for i := 212; i < GPUTransformBlockSize; i++ {
		assert.Zero(t, buf[i])
	}
}

func TestGPUParamsBlockMarshalOffsets(t *testing.T) {
	block := GPUParamsBlock{
		SunColor:       [4]float32{1, 0.9, 0.8, 2},
		SunInEnv:       1,
		RadianceLevels: 6,
		Gamma:          2.2,
		Exposure:       1.5,
	}
	common.Identity(block.SunMatrix[:])

	buf := block.Marshal()
	require.Len(t, buf, GPUParamsBlockSize)
	assert.Equal(t, GPUParamsBlockSize, block.Size())

	assert.Equal(t, float32(1), f32At(t, buf, 0))
	assert.Equal(t, float32(1), f32At(t, buf, 20))
	assert.Equal(t, float32(1), f32At(t, buf, 40))
	assert.Equal(t, float32(1), f32At(t, buf, 60))
	assert.Equal(t, float32(0.9), f32At(t, buf, 68))
	assert.Equal(t, float32(2), f32At(t, buf, 76))
	assert.Equal(t, float32(1), f32At(t, buf, 80))
	assert.Equal(t, int32(6), int32(binary.LittleEndian.Uint32(buf[84:88])))
	assert.Equal(t, float32(2.2), f32At(t, buf, 88))
	assert.Equal(t, float32(1.5), f32At(t, buf, 92))
}

func TestNewEyeTransform(t *testing.T) {
	eye := vr.EyeDescriptor{
		EyePos:     [4]float32{1, 2, 3, 1},
		ClipOffset: -0.1,
	}
	common.Identity(eye.View[:])
	common.Perspective(eye.Proj[:], 1.2, 16.0/9.0, 0.1, 100)

	model := make([]float32, 16)
	common.Identity(model)
	model[12] = 5

	withModel := NewEyeTransform(eye, model)
	assert.Equal(t, eye.View, withModel.View)
	assert.Equal(t, eye.Proj, withModel.Proj)
	assert.Equal(t, eye.EyePos, withModel.EyePos)
	assert.Equal(t, float32(-0.1), withModel.ClipOffset)
	assert.Equal(t, float32(5), withModel.Model[12])

	var identity [16]float32
	common.Identity(identity[:])
	withoutModel := NewEyeTransform(eye, nil)
	assert.Equal(t, identity, withoutModel.Model)
}
