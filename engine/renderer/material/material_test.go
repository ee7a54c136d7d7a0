package material

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/parallax3d/parallax/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMaterial_Defaults(t *testing.T) {
	m := NewMaterial()

	assert.Empty(t, m.Name())
	assert.Equal(t, [4]float32{1, 1, 1, 1}, m.BaseColor())
	assert.Zero(t, m.Metalness())
	assert.Equal(t, float32(1), m.Roughness())
	assert.Nil(t, m.NormalTexture())
	assert.Nil(t, m.AlbedoTexture())
	assert.Nil(t, m.KnobsTexture())
}

func TestNewMaterial_Options(t *testing.T) {
	tex := &common.ImportedTexture{Name: "bricks_normal"}
	m := NewMaterial(
		WithName("bricks"),
		WithBaseColor([4]float32{0.8, 0.2, 0.1, 1}),
		WithMetalness(0.25),
		WithRoughness(0.6),
		WithNormalTexture(tex),
		WithPipelineKey("uber"),
	)

	assert.Equal(t, "bricks", m.Name())
	assert.Equal(t, [4]float32{0.8, 0.2, 0.1, 1}, m.BaseColor())
	assert.Equal(t, float32(0.25), m.Metalness())
	assert.Equal(t, float32(0.6), m.Roughness())
	assert.Same(t, tex, m.NormalTexture())
	assert.Equal(t, "uber", m.PipelineKey())
}

func TestNewMaterialFromImported(t *testing.T) {
	albedo := &common.ImportedTexture{Name: "crate_albedo"}
	imported := common.ImportedMaterial{
		Name:          "crate",
		BaseColor:     [4]float32{0.5, 0.5, 0.5, 1},
		Metalness:     1,
		Roughness:     0.3,
		AlbedoTexture: albedo,
	}

	m := NewMaterialFromImported(imported)
	assert.Equal(t, "crate", m.Name())
	assert.Equal(t, float32(1), m.Metalness())
	assert.Equal(t, float32(0.3), m.Roughness())
	assert.Same(t, albedo, m.AlbedoTexture())
	assert.Nil(t, m.NormalTexture())
	assert.Nil(t, m.KnobsTexture())
}

func TestMaterial_AlbedoStaging_Solid(t *testing.T) {
	m := NewMaterial(WithBaseColor([4]float32{1, 0, 0.5, 1}))

	staging, err := m.AlbedoStaging()
	require.NoError(t, err)

	assert.Equal(t, uint32(1), staging.Width)
	assert.Equal(t, uint32(1), staging.Height)
	assert.Equal(t, wgpu.TextureFormatRGBA8UnormSrgb, staging.Format)
	assert.Equal(t, []byte{255, 0, 128, 255}, staging.Pixels)
}

func TestMaterial_NormalStaging_Flat(t *testing.T) {
	m := NewMaterial()

	staging, err := m.NormalStaging()
	require.NoError(t, err)

	// Flat normal (0.5, 0.5, 1) in linear RGBA8.
	assert.Equal(t, wgpu.TextureFormatRGBA8Unorm, staging.Format)
	assert.Equal(t, []byte{128, 128, 255, 255}, staging.Pixels)
}

func TestMaterial_KnobsStaging_Flatness(t *testing.T) {
	tests := []struct {
		name     string
		options  []MaterialBuilderOption
		expected []byte
	}{
		{
			name:     "no normal map bakes flatness 1",
			options:  []MaterialBuilderOption{WithMetalness(1), WithRoughness(0.5)},
			expected: []byte{255, 128, 255, 255},
		},
		{
			name: "normal map bakes flatness 0",
			options: []MaterialBuilderOption{
				WithMetalness(0),
				WithRoughness(1),
				WithNormalTexture(&common.ImportedTexture{Name: "n"}),
			},
			expected: []byte{0, 255, 0, 255},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMaterial(tt.options...)
			staging, err := m.KnobsStaging()
			require.NoError(t, err)
			assert.Equal(t, wgpu.TextureFormatRGBA8Unorm, staging.Format)
			assert.Equal(t, tt.expected, staging.Pixels)
		})
	}
}

func TestMaterial_KnobsStaging_ClampsFactors(t *testing.T) {
	m := NewMaterial(WithMetalness(2), WithRoughness(-1))

	staging, err := m.KnobsStaging()
	require.NoError(t, err)
	assert.Equal(t, byte(255), staging.Pixels[0])
	assert.Equal(t, byte(0), staging.Pixels[1])
}

func TestMaterial_StagingDecodeError(t *testing.T) {
	// An assigned texture with no data or path cannot be decoded.
	m := NewMaterial(WithAlbedoTexture(&common.ImportedTexture{Name: "missing"}))

	_, err := m.AlbedoStaging()
	assert.Error(t, err)
}
