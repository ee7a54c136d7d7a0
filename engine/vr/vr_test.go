package vr

import (
	"testing"

	"github.com/parallax3d/parallax/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRigDefaults(t *testing.T) {
	r := NewRig()

	assert.Equal(t, DefaultIPD, r.IPD())
	assert.Equal(t, float32(0), r.ClipOffset())

	w, h := r.SurfaceSize()
	assert.Equal(t, uint32(1280), w)
	assert.Equal(t, uint32(720), h)
}

func TestNewRigOptions(t *testing.T) {
	r := NewRig(
		WithIPD(0.07),
		WithClipOffset(0.02),
		WithSurfaceSize(1920, 1080),
	)

	assert.Equal(t, float32(0.07), r.IPD())
	assert.Equal(t, float32(0.02), r.ClipOffset())

	w, h := r.SurfaceSize()
	assert.Equal(t, uint32(1920), w)
	assert.Equal(t, uint32(1080), h)
}

func TestEyesMirroredOffsets(t *testing.T) {
	r := NewRig(WithIPD(0.064), WithClipOffset(0.01))

	var view, proj [16]float32
	common.Identity(view[:])
	common.Perspective(proj[:], 1.0, 16.0/9.0, 0.1, 100)

	pos := [3]float32{1, 2, 3}
	eyes := r.Eyes(view[:], proj[:], pos)

	left := eyes[EyeLeft]
	right := eyes[EyeRight]

	// With an identity view the world right axis is +X, so the eyes straddle
	// the mono position along x by half the IPD each.
	assert.InDelta(t, pos[0]-0.032, left.EyePos[0], 1e-6)
	assert.InDelta(t, pos[0]+0.032, right.EyePos[0], 1e-6)
	for _, e := range eyes {
		assert.InDelta(t, pos[1], e.EyePos[1], 1e-6)
		assert.InDelta(t, pos[2], e.EyePos[2], 1e-6)
		assert.Equal(t, float32(1), e.EyePos[3])
	}

	// Eye positions average back to the mono camera position.
	for i := 0; i < 3; i++ {
		assert.InDelta(t, pos[i], (left.EyePos[i]+right.EyePos[i])/2, 1e-6)
	}

	// View translation shifts opposite ways, clip offsets mirror.
	assert.InDelta(t, float64(left.View[12]), 0.032, 1e-6)
	assert.InDelta(t, float64(right.View[12]), -0.032, 1e-6)
	assert.Equal(t, -right.ClipOffset, left.ClipOffset)
	assert.Equal(t, float32(0.01), right.ClipOffset)

	// Projection passes through untouched.
	assert.Equal(t, proj, left.Proj)
	assert.Equal(t, proj, right.Proj)
}

func TestEyesDisjointClipRects(t *testing.T) {
	r := NewRig(WithSurfaceSize(1600, 900))

	var view, proj [16]float32
	common.Identity(view[:])
	common.Identity(proj[:])

	eyes := r.Eyes(view[:], proj[:], [3]float32{})

	left := eyes[EyeLeft].Clip
	right := eyes[EyeRight].Clip

	assert.Equal(t, common.Rect{X: 0, Y: 0, W: 800, H: 900}, left)
	assert.Equal(t, common.Rect{X: 800, Y: 0, W: 800, H: 900}, right)

	// Halves cover the surface without overlapping.
	require.Equal(t, left.X+left.W, right.X)
	assert.Equal(t, uint32(1600), right.X+right.W)
}

func TestEyesRotatedCamera(t *testing.T) {
	r := NewRig(WithIPD(0.1))

	// Camera looking down -X: world right axis is -Z.
	var view, proj [16]float32
	common.LookAt(view[:], 0, 0, 0, -1, 0, 0, 0, 1, 0)
	common.Identity(proj[:])

	eyes := r.Eyes(view[:], proj[:], [3]float32{0, 0, 0})

	assert.InDelta(t, 0.05, float64(eyes[EyeLeft].EyePos[2]), 1e-5)
	assert.InDelta(t, -0.05, float64(eyes[EyeRight].EyePos[2]), 1e-5)
	assert.InDelta(t, 0, float64(eyes[EyeLeft].EyePos[0]), 1e-5)
	assert.InDelta(t, 0, float64(eyes[EyeLeft].EyePos[1]), 1e-5)
}
