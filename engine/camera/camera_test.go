package camera

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCameraDefaults(t *testing.T) {
	c := NewCamera()

	x, y, z := c.Up()
	assert.Equal(t, [3]float32{0, 1, 0}, [3]float32{x, y, z})
	assert.Equal(t, float32(1.0), c.Aspect())
	assert.Equal(t, float32(0.1), c.Near())
	assert.Equal(t, float32(100.0), c.Far())
	assert.Nil(t, c.Controller())
	assert.Equal(t, [3]float32{}, c.Position())

	// Without a controller the matrices stay identity.
	view := c.ViewMatrix()
	assert.Equal(t, float32(1), view[0])
	assert.Equal(t, float32(0), view[12])
}

func TestNewCameraControllerDefaults(t *testing.T) {
	ctrl := NewCameraController()

	// Room-scale defaults: pivot at standing eye height, head a few meters back.
	tx, ty, tz := ctrl.Target()
	assert.Equal(t, [3]float32{0, 1.6, 0}, [3]float32{tx, ty, tz})
	assert.Equal(t, float32(4.0), ctrl.Radius())
	assert.Equal(t, float32(0.5), ctrl.MinRadius())
	assert.Equal(t, float32(100.0), ctrl.MaxRadius())

	// Zooming all the way in stops at the minimum radius instead of passing
	// through the pivot.
	ctrl.Zoom(1000)
	assert.Equal(t, ctrl.MinRadius(), ctrl.Radius())
}

func TestCameraUpdateFromController(t *testing.T) {
	ctrl := NewCameraController(
		WithTarget(0, 0, 0),
		WithRadius(5),
	)
	c := NewCamera(WithController(ctrl), WithAspect(16.0/9.0))

	pos := c.Position()
	px, py, pz := ctrl.Position()
	assert.Equal(t, [3]float32{px, py, pz}, pos)

	before := c.ViewMatrix()
	ctrl.OrbitLeft()
	c.Update()
	after := c.ViewMatrix()
	assert.NotEqual(t, before, after, "orbiting the controller moves the view")

	// View-projection is the product of the two parts.
	proj := c.ProjectionMatrix()
	require.NotEqual(t, proj, c.ViewMatrix())
	vp := c.ViewProjectionMatrix()
	assert.NotEqual(t, [16]float32{}, vp)
}

func TestCameraSettersRecompute(t *testing.T) {
	ctrl := NewCameraController(WithRadius(3))
	c := NewCamera(WithController(ctrl))

	before := c.ProjectionMatrix()
	c.SetFov(1.2)
	c.SetAspect(2.0)
	after := c.ProjectionMatrix()
	assert.NotEqual(t, before, after)
	assert.Equal(t, float32(1.2), c.Fov())
	assert.Equal(t, float32(2.0), c.Aspect())
}
