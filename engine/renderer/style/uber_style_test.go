package style

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parallax3d/parallax/common"
	"github.com/parallax3d/parallax/engine/renderer/bind_group_provider"
	"github.com/parallax3d/parallax/engine/renderer/material"
	"github.com/parallax3d/parallax/engine/renderer/pipeline"
)

func newTestStyle(t *testing.T) (UberStyle, *fakeRenderer) {
	t.Helper()
	r := newFakeRenderer()
	s, err := NewUberStyle(r)
	require.NoError(t, err)
	return s, r
}

func TestNewUberStyleRegistersPipelines(t *testing.T) {
	s, r := newTestStyle(t)

	require.Len(t, r.registered, 3)
	keys := map[string]pipeline.Pipeline{}
	for _, p := range r.registered {
		keys[p.PipelineKey()] = p
	}
	require.Contains(t, keys, "uber")
	require.Contains(t, keys, "uber_background")
	require.Contains(t, keys, "uber_shadow")

	assert.Equal(t, pipeline.PipelineTypeRender, keys["uber"].Type())
	assert.True(t, keys["uber"].DepthTestEnabled())
	assert.True(t, keys["uber"].DepthWriteEnabled())

	// The backdrop passes depth everywhere and never writes it.
	assert.False(t, keys["uber_background"].DepthTestEnabled())
	assert.False(t, keys["uber_background"].DepthWriteEnabled())

	assert.Equal(t, pipeline.PipelineTypeShadow, keys["uber_shadow"].Type())

	assert.Equal(t, "uber", s.PipelineKey())
	assert.Equal(t, "uber_background", s.BackgroundPipelineKey())
	assert.Equal(t, "uber_shadow", s.ShadowPipelineKey())
	assert.Equal(t, "uber", s.Name())
	assert.Len(t, s.Pipelines(), 3)
}

func TestNewUberStyleDefaultResources(t *testing.T) {
	s, _ := newTestStyle(t)

	inputs := s.Inputs()
	require.NotNil(t, inputs)
	assert.True(t, inputs.ParamsDirty())
	assert.False(t, inputs.TransformEverSet())
	assert.Equal(t, DefaultExposure, inputs.Exposure())
	assert.Equal(t, DefaultGamma, inputs.Gamma())

	env := inputs.Environment()
	require.NotNil(t, env)
	assert.True(t, env.Irradiance().Valid())
	assert.True(t, env.Radiance().Valid())
	assert.Equal(t, DefaultSunColor, env.SunColor())

	assert.NotNil(t, s.Background())
	assert.NotNil(t, s.ShadowDepthView())
}

func TestDrawRequiresTransform(t *testing.T) {
	s, _ := newTestStyle(t)

	mesh := bind_group_provider.NewBindGroupProvider("mesh")
	mat := material.NewMaterial(material.WithName("plain"))
	require.NoError(t, s.InitMaterial(mat))

	err := s.Draw(s.Inputs(), mesh, mat, common.IndexRange{}, common.Rect{W: 640, H: 720})
	require.Error(t, err)
	assert.ErrorContains(t, err, "transform")
}

func TestDrawFlushesAndRecords(t *testing.T) {
	s, r := newTestStyle(t)

	mesh := bind_group_provider.NewBindGroupProvider("mesh")
	mat := material.NewMaterial(material.WithName("plain"))
	require.NoError(t, s.InitMaterial(mat))

	inputs := s.Inputs()
	inputs.SetTransform(GPUTransformBlock{ClipOffset: 0.1})

	viewport := common.Rect{X: 0, Y: 0, W: 640, H: 720}
	indexRange := common.IndexRange{First: 12, Count: 24}
	require.NoError(t, s.Draw(inputs, mesh, mat, indexRange, viewport))

	require.Len(t, r.writes, 1, "the pending transform and dirty params flushed in one batch")
	require.Len(t, r.writes[0], 2)

	require.Len(t, r.draws, 1)
	draw := r.draws[0]
	assert.Equal(t, "uber", draw.pipelineKey)
	assert.Same(t, mesh, draw.meshProvider)
	require.Len(t, draw.bindGroups, 3)
	assert.Same(t, inputs.UniformProvider(), draw.bindGroups[0])
	assert.Same(t, mat.BindGroupProvider(), draw.bindGroups[1])
	assert.Same(t, inputs.EnvironmentProvider(), draw.bindGroups[2])
	assert.Equal(t, indexRange, draw.indexRange)
	assert.Equal(t, viewport, draw.viewport)
	assert.Equal(t, viewport, draw.scissor)

	// A second draw with clean inputs uploads nothing new.
	require.NoError(t, s.Draw(inputs, mesh, mat, indexRange, viewport))
	assert.Len(t, r.writes, 1)
	assert.Len(t, r.draws, 2)
}

func TestDrawRejectsUninitializedMaterial(t *testing.T) {
	s, _ := newTestStyle(t)

	inputs := s.Inputs()
	inputs.SetTransform(GPUTransformBlock{})

	mesh := bind_group_provider.NewBindGroupProvider("mesh")
	mat := material.NewMaterial(material.WithName("raw"))

	err := s.Draw(inputs, mesh, mat, common.IndexRange{}, common.Rect{W: 640, H: 720})
	require.Error(t, err)
	assert.ErrorContains(t, err, "raw")
}

func TestDrawEnvironmentThroughStyle(t *testing.T) {
	s, r := newTestStyle(t)

	require.NoError(t, s.DrawEnvironment(s.Inputs(), testEyes()))

	require.Len(t, r.draws, 2)
	assert.Equal(t, "uber_background", r.draws[0].pipelineKey)
	assert.Equal(t, "uber_background", r.draws[1].pipelineKey)
}

func TestInitMaterialStampsMaterial(t *testing.T) {
	s, r := newTestStyle(t)

	mat := material.NewMaterial(
		material.WithName("brushed_metal"),
		material.WithMetalness(1),
		material.WithRoughness(0.3),
	)
	require.NoError(t, s.InitMaterial(mat))

	assert.Equal(t, "uber", mat.PipelineKey())
	require.NotNil(t, mat.BindGroupProvider())
	assert.Equal(t, "brushed_metal_material", mat.BindGroupProvider().Label())

	// Three textures with paired samplers were uploaded.
	count := 0
	for key := range r.textures {
		if len(key) > len("brushed_metal_material") && key[:len("brushed_metal_material")] == "brushed_metal_material" {
			count++
		}
	}
	assert.Equal(t, 3, count)
}

func TestNewInputsIndependentState(t *testing.T) {
	s, _ := newTestStyle(t)

	second, err := s.NewInputs("prop_7")
	require.NoError(t, err)

	second.SetTransform(GPUTransformBlock{})
	assert.True(t, second.TransformEverSet())
	assert.False(t, s.Inputs().TransformEverSet(), "instances do not share pending state")
	assert.NotSame(t, s.Inputs().UniformProvider(), second.UniformProvider(),
		"each instance owns its uniform buffers so one frame can carry both")
}

func TestNewShadowTransform(t *testing.T) {
	s, _ := newTestStyle(t)

	provider, binding, err := s.NewShadowTransform("prop_7")
	require.NoError(t, err)
	require.NotNil(t, provider)
	assert.Equal(t, 0, binding)
	assert.Equal(t, "prop_7_shadow_uniforms", provider.Label())
}

func TestMergedGroupDescriptorVisibility(t *testing.T) {
	s, _ := newTestStyle(t)
	impl := s.(*uberStyle)

	require.Len(t, impl.uniformDescriptor.Entries, 2)
	for _, entry := range impl.uniformDescriptor.Entries {
		assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, entry.Visibility,
			"uniforms declared in both stages merge to both visibilities")
	}
	assert.Less(t, impl.uniformDescriptor.Entries[0].Binding, impl.uniformDescriptor.Entries[1].Binding)

	// The reflected uniform sizes match the CPU-side marshal sizes.
	assert.Equal(t, uint64(GPUTransformBlockSize), impl.uniformDescriptor.Entries[0].Buffer.MinBindingSize)
	assert.Equal(t, uint64(GPUParamsBlockSize), impl.uniformDescriptor.Entries[1].Buffer.MinBindingSize)
}

func TestWithStyleNamePrefixesKeys(t *testing.T) {
	r := newFakeRenderer()
	s, err := NewUberStyle(r, WithStyleName("pbr"))
	require.NoError(t, err)

	assert.Equal(t, "pbr", s.PipelineKey())
	assert.Equal(t, "pbr_background", s.BackgroundPipelineKey())
	assert.Equal(t, "pbr_shadow", s.ShadowPipelineKey())
}
