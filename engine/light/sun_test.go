package light

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parallax3d/parallax/common"
	"github.com/parallax3d/parallax/engine/renderer/style"
)

func TestNewSunDefaults(t *testing.T) {
	s := NewSun()

	dir := s.Direction()
	assert.InDelta(t, 0, dir[0], 1e-6)
	assert.InDelta(t, -1, dir[1], 1e-6)
	assert.InDelta(t, 0, dir[2], 1e-6)

	assert.Equal(t, style.DefaultSunColor, s.Color())
	assert.True(t, s.CastsShadows())
	assert.Equal(t, DefaultShadowHalfExtent, s.HalfExtent())
}

func TestNewSunFromEnvironment(t *testing.T) {
	rotation, err := common.RotationBetween([3]float32{0, 0, -1}, [3]float32{1, 0, 0})
	require.NoError(t, err)

	env := style.NewEnvironment(
		style.WithSunRotation(rotation),
		style.WithSunColor([4]float32{1, 0.5, 0, 4}),
	)
	s := NewSunFromEnvironment(env, WithCastsShadows(false))

	assert.Equal(t, rotation, s.Rotation())
	assert.Equal(t, [4]float32{1, 0.5, 0, 4}, s.Color())
	assert.False(t, s.CastsShadows())

	dir := s.Direction()
	assert.InDelta(t, 1, dir[0], 1e-6)
}

func TestShadowTransform(t *testing.T) {
	s := NewSun()

	model := make([]float32, 16)
	common.Identity(model)
	model[12] = 3

	block := s.ShadowTransform(model)
	assert.Equal(t, float32(3), block.Model[12])
	assert.Zero(t, block.EyePos)
	assert.Zero(t, block.ClipOffset)

	var view, proj [16]float32
	s.ViewMatrix(view[:])
	s.ProjMatrix(proj[:])
	assert.Equal(t, view, block.View)
	assert.Equal(t, proj, block.Proj)

	var identity [16]float32
	common.Identity(identity[:])
	assert.Equal(t, identity, s.ShadowTransform(nil).Model)
}

func TestShadowProjectionCoversFrustum(t *testing.T) {
	s := NewSun(WithHalfExtent(10), WithShadowRange(1, 50))

	var view, proj, vp [16]float32
	s.ViewMatrix(view[:])
	s.ProjMatrix(proj[:])
	common.Mul4(vp[:], proj[:], view[:])

	// With the default downward sun, a point on the ground below the light
	// camera projects inside the clip volume.
	transform := func(p [4]float32) [4]float32 {
		var out [4]float32
		for row := 0; row < 4; row++ {
			out[row] = vp[row]*p[0] + vp[4+row]*p[1] + vp[8+row]*p[2] + vp[12+row]*p[3]
		}
		return out
	}

	origin := transform([4]float32{0, 0, 0, 1})
	assert.InDelta(t, 0, origin[0], 1e-4)
	assert.InDelta(t, 0, origin[1], 1e-4)
	assert.Greater(t, origin[2], float32(0))
	assert.LessOrEqual(t, origin[2], float32(1))

	// A point outside the half-extent lands outside the clip volume.
	outside := transform([4]float32{15, 0, 0, 1})
	assert.Greater(t, absf(outside[0]), float32(1))
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func TestApplyToEnvironment(t *testing.T) {
	rotation, err := common.RotationBetween([3]float32{0, 0, -1}, [3]float32{0, 0, 1})
	require.Error(t, err, "anti-parallel axes are degenerate")

	rotation, err = common.RotationBetween([3]float32{0, 0, -1}, [3]float32{0, 1, 0})
	require.NoError(t, err)

	s := NewSun(WithRotation(rotation), WithColor([4]float32{0.9, 0.9, 1, 3}))
	env := style.NewEnvironment()
	s.ApplyToEnvironment(env)

	assert.Equal(t, rotation, env.SunRotation())
	assert.Equal(t, [4]float32{0.9, 0.9, 1, 3}, env.SunColor())
}
