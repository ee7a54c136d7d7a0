package pipeline

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parallax3d/parallax/engine/renderer/shader"
)

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("lit", PipelineTypeRender)

	assert.Equal(t, "lit", p.PipelineKey())
	assert.Equal(t, PipelineTypeRender, p.Type())
	assert.True(t, p.DepthTestEnabled())
	assert.True(t, p.DepthWriteEnabled())
	assert.Equal(t, wgpu.CompareFunctionLessEqual, p.DepthCompare())
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, p.Topology())
	assert.Equal(t, wgpu.FrontFaceCCW, p.FrontFace())
	assert.False(t, p.BlendEnabled())
	assert.Nil(t, p.Pipeline())
}

func TestNewPipelineBackgroundConfig(t *testing.T) {
	p := NewPipeline("sky", PipelineTypeRender,
		WithDepthCompare(wgpu.CompareFunctionAlways),
		WithDepthWriteEnabled(false),
	)

	assert.Equal(t, wgpu.CompareFunctionAlways, p.DepthCompare())
	assert.False(t, p.DepthWriteEnabled())
	assert.True(t, p.DepthTestEnabled())
}

func TestNewPipelineShaders(t *testing.T) {
	vs, err := shader.NewShaderFromSource("vs", shader.ShaderTypeVertex,
		"@vertex\nfn vs_main() -> @builtin(position) vec4<f32> { return vec4<f32>(0.0); }")
	require.NoError(t, err)
	fs, err := shader.NewShaderFromSource("fs", shader.ShaderTypeFragment,
		"@fragment\nfn fs_main() -> @location(0) vec4<f32> { return vec4<f32>(0.0); }")
	require.NoError(t, err)

	p := NewPipeline("lit", PipelineTypeRender,
		WithVertexShader(vs),
		WithFragmentShader(fs),
	)
	assert.Equal(t, vs, p.Shader(shader.ShaderTypeVertex))
	assert.Equal(t, fs, p.Shader(shader.ShaderTypeFragment))

	depthOnly := NewPipeline("shadow", PipelineTypeShadow,
		WithVertexShader(vs),
		WithDepthBias(2, 2.0),
	)
	assert.Nil(t, depthOnly.Shader(shader.ShaderTypeFragment))
	assert.Equal(t, int32(2), depthOnly.DepthBias())
	assert.Equal(t, float32(2.0), depthOnly.DepthBiasSlopeScale())
}
