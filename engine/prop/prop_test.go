package prop

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/parallax3d/parallax/engine/model"
)

func TestNewPropDefaults(t *testing.T) {
	p := NewProp()

	assert.Equal(t, uint64(0), p.ID())
	assert.True(t, p.Enabled())
	assert.Nil(t, p.Model())

	x, y, z := p.Position()
	assert.Equal(t, [3]float32{0, 0, 0}, [3]float32{x, y, z})

	sx, sy, sz := p.Scale()
	assert.Equal(t, [3]float32{1, 1, 1}, [3]float32{sx, sy, sz})
}

func TestNewPropWithOptions(t *testing.T) {
	mdl := model.NewModel(model.WithName("crate"), model.WithBoundingRadius(2))
	p := NewProp(
		WithModel(mdl),
		WithPosition(1, 2, 3),
		WithRotation(0.1, 0.2, 0.3),
		WithRotationSpeed(0, 1, 0),
		WithScale(2, 2, 2),
		WithEnabled(false),
	)

	assert.Same(t, mdl, p.Model())
	assert.False(t, p.Enabled())

	x, y, z := p.Position()
	assert.Equal(t, [3]float32{1, 2, 3}, [3]float32{x, y, z})

	rx, ry, rz := p.Rotation()
	assert.InDelta(t, 0.1, rx, 1e-6)
	assert.InDelta(t, 0.2, ry, 1e-6)
	assert.InDelta(t, 0.3, rz, 1e-6)
}

func TestPropAdvance(t *testing.T) {
	p := NewProp(WithRotationSpeed(0, 2, 0))

	p.Advance(0.5)
	_, ry, _ := p.Rotation()
	assert.InDelta(t, 1.0, ry, 1e-6)

	p.Advance(0.25)
	_, ry, _ = p.Rotation()
	assert.InDelta(t, 1.5, ry, 1e-6)
}

func TestPropModelMatrixTranslationOnly(t *testing.T) {
	p := NewProp(WithPosition(4, 5, 6))

	out := make([]float32, 16)
	p.ModelMatrix(out)

	// Column-major: translation lives in the last column.
	assert.InDelta(t, 4.0, out[12], 1e-6)
	assert.InDelta(t, 5.0, out[13], 1e-6)
	assert.InDelta(t, 6.0, out[14], 1e-6)
	assert.InDelta(t, 1.0, out[0], 1e-6)
	assert.InDelta(t, 1.0, out[5], 1e-6)
	assert.InDelta(t, 1.0, out[10], 1e-6)
}

func TestPropModelMatrixScale(t *testing.T) {
	p := NewProp(WithScale(2, 3, 4))

	out := make([]float32, 16)
	p.ModelMatrix(out)

	assert.InDelta(t, 2.0, out[0], 1e-6)
	assert.InDelta(t, 3.0, out[5], 1e-6)
	assert.InDelta(t, 4.0, out[10], 1e-6)
}

func TestPropBoundingSphere(t *testing.T) {
	mdl := model.NewModel(model.WithBoundingRadius(3))
	p := NewProp(WithModel(mdl), WithPosition(1, 0, -2), WithScale(1, 2, 1.5))

	center, radius := p.BoundingSphere()
	assert.Equal(t, [3]float32{1, 0, -2}, center)
	assert.InDelta(t, 6.0, radius, 1e-6)
}

func TestPropBoundingSphereNoModel(t *testing.T) {
	p := NewProp()

	_, radius := p.BoundingSphere()
	assert.Equal(t, float32(0), radius)
}

func TestPropSetters(t *testing.T) {
	p := NewProp()

	p.SetID(42)
	assert.Equal(t, uint64(42), p.ID())

	p.SetEnabled(false)
	assert.False(t, p.Enabled())

	p.SetPosition(7, 8, 9)
	x, y, z := p.Position()
	assert.Equal(t, [3]float32{7, 8, 9}, [3]float32{x, y, z})

	p.SetRotationSpeed(1, 0, 0)
	rx, _, _ := p.RotationSpeed()
	assert.Equal(t, float32(1), rx)

	p.SetScale(0.5, 0.5, 0.5)
	sx, _, _ := p.Scale()
	assert.Equal(t, float32(0.5), sx)
}
