package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parallax3d/parallax/common"
	"github.com/parallax3d/parallax/engine/renderer/bind_group_provider"
	"github.com/parallax3d/parallax/engine/vr"
)

func testEyes() [2]vr.EyeDescriptor {
	rig := vr.NewRig(vr.WithSurfaceSize(1600, 900), vr.WithClipOffset(0.05))
	var view, proj [16]float32
	common.Identity(view[:])
	common.Perspective(proj[:], 1.2, 8.0/9.0, 0.1, 100)
	return rig.Eyes(view[:], proj[:], [3]float32{0, 1.7, 0})
}

func newTestBackground() (Background, *fakeRenderer, [2]bind_group_provider.BindGroupProvider) {
	r := newFakeRenderer()
	mesh := bind_group_provider.NewBindGroupProvider("cube")
	eyeUniforms := [2]bind_group_provider.BindGroupProvider{
		bind_group_provider.NewBindGroupProvider("left"),
		bind_group_provider.NewBindGroupProvider("right"),
	}
	radiance := bind_group_provider.NewBindGroupProvider("radiance")
	return NewBackground("sky", mesh, eyeUniforms, 0, 1, radiance), r, eyeUniforms
}

func TestDrawEnvironmentTwoDrawsLeftThenRight(t *testing.T) {
	bg, r, eyeUniforms := newTestBackground()
	eyes := testEyes()

	inputs := NewUberInputs(WithInputEnvironment(NewEnvironment()))
	require.NoError(t, bg.DrawEnvironment(r, inputs, eyes))

	require.Len(t, r.draws, 2)
	assert.Equal(t, "sky", r.draws[0].pipelineKey)
	assert.Equal(t, "sky", r.draws[1].pipelineKey)
	assert.Same(t, eyeUniforms[0], r.draws[0].bindGroups[0])
	assert.Same(t, eyeUniforms[1], r.draws[1].bindGroups[0])
	assert.Equal(t, eyes[0].Clip, r.draws[0].scissor)
	assert.Equal(t, eyes[1].Clip, r.draws[1].scissor)
	assert.Equal(t, eyes[0].Clip, r.draws[0].viewport)
	assert.Equal(t, eyes[1].Clip, r.draws[1].viewport)
}

func TestDrawEnvironmentUploadsPerEyeUniforms(t *testing.T) {
	bg, r, eyeUniforms := newTestBackground()
	eyes := testEyes()

	inputs := NewUberInputs(WithInputEnvironment(NewEnvironment()))
	require.NoError(t, bg.DrawEnvironment(r, inputs, eyes))

	require.Len(t, r.writes, 1, "all uploads are staged in one batch before the draws")
	writes := r.writes[0]
	require.Len(t, writes, 4)

	// Transform then params for the left eye, then the right eye, into
	// distinct providers so the draws cannot clobber each other.
	assert.Same(t, eyeUniforms[0], writes[0].Provider)
	assert.Same(t, eyeUniforms[0], writes[1].Provider)
	assert.Same(t, eyeUniforms[1], writes[2].Provider)
	assert.Same(t, eyeUniforms[1], writes[3].Provider)
	assert.Len(t, writes[0].Data, GPUTransformBlockSize)
	assert.Len(t, writes[1].Data, GPUParamsBlockSize)

	// The model matrix is identity: the sky is attached to the viewer.
	left := writes[0].Data
	assert.Equal(t, float32(1), f32At(t, left, 0))
	assert.Equal(t, float32(0), f32At(t, left, 4))
	assert.Equal(t, float32(1), f32At(t, left, 20))

	// Per-eye clip offsets are mirrored.
	assert.Equal(t, -f32At(t, writes[0].Data, 208), f32At(t, writes[2].Data, 208))
}

func TestDrawEnvironmentAlwaysDerivesParams(t *testing.T) {
	bg, r, _ := newTestBackground()
	eyes := testEyes()

	inputs := NewUberInputs(WithInputEnvironment(NewEnvironment()))
	inputs.TakePendingWrites()
	require.False(t, inputs.ParamsDirty())

	inputs.SetExposure(0.75)
	require.NoError(t, bg.DrawEnvironment(r, inputs, eyes))

	params := r.writes[0][1].Data
	assert.Equal(t, float32(0.75), f32At(t, params, 92), "the backdrop re-derives params even when nothing flushed them yet")
	assert.True(t, inputs.ParamsDirty(), "the backdrop never consumes the inputs' dirty state")
}
