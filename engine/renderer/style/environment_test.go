package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parallax3d/parallax/common"
)

func TestNewEnvironmentDefaults(t *testing.T) {
	env := NewEnvironment()

	assert.False(t, env.SunInEnvironment())
	assert.Equal(t, DefaultSunColor, env.SunColor())
	assert.Equal(t, common.QuatIdentity(), env.SunRotation())
	assert.Equal(t, int32(1), env.RadianceLevels())
	assert.False(t, env.Irradiance().Valid())
	assert.False(t, env.Radiance().Valid())
}

func TestNewDefaultEnvironment(t *testing.T) {
	r := newFakeRenderer()
	env, err := NewDefaultEnvironment(r)
	require.NoError(t, err)

	assert.True(t, env.Irradiance().Valid())
	assert.True(t, env.Radiance().Valid())
	assert.Equal(t, int32(1), env.RadianceLevels())
	assert.Equal(t, DefaultSunColor, env.SunColor())

	// Both cube maps are single sky-blue texels.
	require.Len(t, r.cubeTextures, 2)
	for _, faces := range r.cubeTextures {
		for _, face := range faces {
			assert.Equal(t, UniformValueStaging(SkyBlue), face)
		}
	}

	// The default sun shines straight down: the forward axis -Z maps to -Y.
	down := env.SunRotation().Rotate([3]float32{0, 0, -1})
	assert.InDelta(t, 0, down[0], 1e-6)
	assert.InDelta(t, -1, down[1], 1e-6)
	assert.InDelta(t, 0, down[2], 1e-6)
}

func TestEnvironmentSetters(t *testing.T) {
	env := NewEnvironment()

	env.SetRadianceLevels(7)
	assert.Equal(t, int32(7), env.RadianceLevels())

	env.SetSunInEnvironment(true)
	assert.True(t, env.SunInEnvironment())

	color := [4]float32{0.9, 0.8, 0.7, 3}
	env.SetSunColor(color)
	assert.Equal(t, color, env.SunColor())

	rotation, err := common.RotationBetween([3]float32{0, 0, -1}, [3]float32{1, 0, 0})
	require.NoError(t, err)
	env.SetSunRotation(rotation)
	assert.Equal(t, rotation, env.SunRotation())

	tex := Texture{View: dummyView(), Sampler: dummySampler()}
	env.SetIrradiance(tex)
	env.SetRadiance(tex)
	assert.True(t, env.Irradiance().Valid())
	assert.True(t, env.Radiance().Valid())
}
