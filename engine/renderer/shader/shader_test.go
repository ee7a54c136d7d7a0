package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const litVertexSource = `
struct TransformBlock {
    model: mat4x4<f32>,
    view: mat4x4<f32>,
    proj: mat4x4<f32>,
    eye_pos: vec4<f32>,
    clip_offset: f32,
};

//#include vertex

struct VertexOutput {
    @builtin(position) clip_position: vec4<f32>,
    @location(0) world_pos: vec3<f32>,
};

@group(0) @binding(0) var<uniform> transform: TransformBlock;

@vertex
fn vs_main(input: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.clip_position = transform.proj * transform.view * transform.model * vec4<f32>(input.position, 1.0);
    out.world_pos = input.position;
    return out;
}
`

const litFragmentSource = `
struct ParamsBlock {
    sun_matrix: mat4x4<f32>,
    sun_color: vec4<f32>,
    sun_in_env: f32,
    radiance_levels: i32,
    gamma: f32,
    exposure: f32,
};

@group(0) @binding(1) var<uniform> params: ParamsBlock;
@group(1) @binding(0) var irradiance_map: texture_cube<f32>;
@group(1) @binding(1) var irradiance_sampler: sampler;
@group(1) @binding(2) var shadow_map: texture_depth_2d;
@group(1) @binding(3) var shadow_sampler: sampler_comparison;

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(0.0);
}
`

func TestNewShaderFromSourceVertex(t *testing.T) {
	s, err := NewShaderFromSource("lit_vertex", ShaderTypeVertex, litVertexSource)
	require.NoError(t, err)

	assert.Equal(t, "lit_vertex", s.Key())
	assert.Equal(t, "vs_main", s.EntryPoint())
	assert.Equal(t, ShaderTypeVertex, s.ShaderType())
	require.NotNil(t, s.Module())
	assert.Equal(t, "lit_vertex", s.Module().Label)

	layouts := s.VertexLayout(0)
	require.Len(t, layouts, 1)
	layout := layouts[0]
	assert.Equal(t, uint64(48), layout.ArrayStride)
	require.Len(t, layout.Attributes, 4)
	assert.Equal(t, wgpu.VertexFormatFloat32x3, layout.Attributes[0].Format)
	assert.Equal(t, uint64(0), layout.Attributes[0].Offset)
	assert.Equal(t, wgpu.VertexFormatFloat32x2, layout.Attributes[2].Format)
	assert.Equal(t, uint64(24), layout.Attributes[2].Offset)
	assert.Equal(t, wgpu.VertexFormatFloat32x4, layout.Attributes[3].Format)
	assert.Equal(t, uint64(32), layout.Attributes[3].Offset)
}

func TestNewShaderFromSourceUniformReflection(t *testing.T) {
	s, err := NewShaderFromSource("lit_vertex", ShaderTypeVertex, litVertexSource)
	require.NoError(t, err)

	desc := s.BindGroupLayoutDescriptor(0)
	require.Len(t, desc.Entries, 1)
	entry := desc.Entries[0]
	assert.Equal(t, uint32(0), entry.Binding)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, entry.Buffer.Type)
	// mat4 ×3 + vec4 + f32, rounded up to 16-byte struct alignment.
	assert.Equal(t, uint64(224), entry.Buffer.MinBindingSize)

	assert.Equal(t, "transform", s.BindGroupVarName(0, 0))
	binding, ok := s.BindGroupFromVarName(0, "transform")
	require.True(t, ok)
	assert.Equal(t, 0, binding)
}

func TestNewShaderFromSourceFragmentReflection(t *testing.T) {
	s, err := NewShaderFromSource("lit_fragment", ShaderTypeFragment, litFragmentSource)
	require.NoError(t, err)

	assert.Equal(t, "fs_main", s.EntryPoint())
	assert.Empty(t, s.VertexLayouts())

	group0 := s.BindGroupLayoutDescriptor(0)
	require.Len(t, group0.Entries, 1)
	// mat4 + vec4 + f32 + i32 + f32 + f32 = 96 bytes, 16-byte aligned.
	assert.Equal(t, uint64(96), group0.Entries[0].Buffer.MinBindingSize)

	group1 := s.BindGroupLayoutDescriptor(1)
	require.Len(t, group1.Entries, 4)
	assert.Equal(t, wgpu.TextureViewDimensionCube, group1.Entries[0].Texture.ViewDimension)
	assert.Equal(t, wgpu.TextureSampleTypeFloat, group1.Entries[0].Texture.SampleType)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, group1.Entries[1].Sampler.Type)
	assert.Equal(t, wgpu.TextureSampleTypeDepth, group1.Entries[2].Texture.SampleType)
	assert.Equal(t, wgpu.SamplerBindingTypeComparison, group1.Entries[3].Sampler.Type)

	assert.Equal(t, "shadow_sampler", s.BindGroupVarName(1, 3))
}

func TestNewShaderFromSourceMissingEntryPoint(t *testing.T) {
	_, err := NewShaderFromSource("broken", ShaderTypeFragment, litVertexSource)
	assert.ErrorContains(t, err, "no entry point")
}

func TestNewShaderFromSourceConditionalBinding(t *testing.T) {
	source := `
//#if SHADOW
@group(1) @binding(0) var shadow_map: texture_depth_2d;
//#end

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(0.0);
}
`
	with, err := NewShaderFromSource("with_shadow", ShaderTypeFragment, source, Define{Name: "SHADOW"})
	require.NoError(t, err)
	assert.Len(t, with.BindGroupLayoutDescriptor(1).Entries, 1)

	without, err := NewShaderFromSource("without_shadow", ShaderTypeFragment, source)
	require.NoError(t, err)
	assert.Empty(t, without.BindGroupLayoutDescriptor(1).Entries)
}
