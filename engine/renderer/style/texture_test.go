package style

import (
	"errors"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parallax3d/parallax/common"
)

func TestUniformValueStagingExactRoundTrip(t *testing.T) {
	color := [4]float32{0.529, 0.808, 0.980, 1}
	staging := UniformValueStaging(color)

	assert.Equal(t, uint32(1), staging.Width)
	assert.Equal(t, uint32(1), staging.Height)
	assert.Equal(t, wgpu.TextureFormatRGBA32Float, staging.Format)
	assert.Equal(t, uint32(16), staging.BytesPerPixel)
	require.Len(t, staging.Pixels, 16)

	// The texel holds the bit-exact IEEE-754 encoding of the input: a read
	// back in the shader returns the color with no quantization.
	assert.Equal(t, common.Float4Bytes(color), staging.Pixels)
	for i := 0; i < 4; i++ {
		assert.Equal(t, color[i], f32At(t, staging.Pixels, i*4))
	}
}

func TestUniformValue(t *testing.T) {
	r := newFakeRenderer()
	tex, err := UniformValue(r, "solid_red", [4]float32{1, 0, 0, 1})
	require.NoError(t, err)
	assert.True(t, tex.Valid())

	staging, ok := r.textures["solid_red/0"]
	require.True(t, ok)
	assert.Equal(t, UniformValueStaging([4]float32{1, 0, 0, 1}), staging)

	sampler := r.samplers["solid_red/0"]
	assert.Equal(t, wgpu.AddressModeClampToEdge, sampler.AddressModeU)
	assert.Equal(t, wgpu.FilterModeNearest, sampler.MagFilter)
}

func TestUniformValueCubeSixIdenticalFaces(t *testing.T) {
	r := newFakeRenderer()
	tex, err := UniformValueCube(r, "sky", SkyBlue)
	require.NoError(t, err)
	assert.True(t, tex.Valid())

	faces, ok := r.cubeTextures["sky/0"]
	require.True(t, ok)
	for _, face := range faces {
		assert.Equal(t, UniformValueStaging(SkyBlue), face)
	}
}

func TestUniformValueCreationFailureIsTyped(t *testing.T) {
	r := newFakeRenderer()
	r.failTexture = errors.New("device lost")

	_, err := UniformValue(r, "solid", [4]float32{1, 1, 1, 1})
	require.Error(t, err)

	var styleErr *Error
	require.ErrorAs(t, err, &styleErr)
	assert.Equal(t, ErrorKindResourceCreation, styleErr.Kind)
	assert.ErrorContains(t, err, "device lost")
}

func TestTextureValid(t *testing.T) {
	assert.False(t, Texture{}.Valid())
	assert.False(t, Texture{View: dummyView()}.Valid())
	assert.False(t, Texture{Sampler: dummySampler()}.Valid())
	assert.True(t, Texture{View: dummyView(), Sampler: dummySampler()}.Valid())
}
