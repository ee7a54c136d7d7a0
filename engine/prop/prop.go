// Package prop models the scene entities drawn by the foreground pipeline:
// a model plus a world transform. Props own no GPU state; the scene pairs
// each prop with the uniform resources its draws consume.
package prop

import (
	"sync"
	"sync/atomic"

	"github.com/parallax3d/parallax/common"
	"github.com/parallax3d/parallax/engine/model"
)

type propImpl struct {
	id      uint64
	enabled atomic.Bool
	mdl     model.Model

	mu            sync.Mutex
	position      [3]float32
	rotation      [3]float32
	rotationSpeed [3]float32
	scale         [3]float32
}

// Prop defines the interface for a drawable scene entity. Position, rotation,
// and scale are CPU-side state folded into a model matrix per frame; the
// bounding sphere feeds frustum culling.
type Prop interface {
	// ID returns the prop's scene-assigned identifier. Zero until the prop
	// is added to a scene.
	//
	// Returns:
	//   - uint64: the prop ID
	ID() uint64

	// SetID assigns the prop's identifier. Called by the owning scene.
	//
	// Parameters:
	//   - id: the new identifier
	SetID(id uint64)

	// Enabled returns whether this prop is drawn.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// SetEnabled enables or disables drawing of this prop.
	//
	// Parameters:
	//   - enabled: the new flag value
	SetEnabled(enabled bool)

	// Model returns the model this prop draws, or nil if not set.
	//
	// Returns:
	//   - model.Model: the associated model or nil
	Model() model.Model

	// SetModel sets the model this prop draws.
	//
	// Parameters:
	//   - m: the model to associate
	SetModel(m model.Model)

	// Position returns the prop's world-space position.
	//
	// Returns:
	//   - x, y, z: world-space position components
	Position() (x, y, z float32)

	// SetPosition sets the prop's world-space position.
	//
	// Parameters:
	//   - x, y, z: world-space position components
	SetPosition(x, y, z float32)

	// Rotation returns the prop's Euler rotation in radians.
	//
	// Returns:
	//   - rx, ry, rz: rotation about each axis in radians
	Rotation() (rx, ry, rz float32)

	// SetRotation sets the prop's Euler rotation in radians.
	//
	// Parameters:
	//   - rx, ry, rz: rotation about each axis in radians
	SetRotation(rx, ry, rz float32)

	// RotationSpeed returns the prop's angular velocity in radians per second.
	//
	// Returns:
	//   - rx, ry, rz: angular velocity about each axis
	RotationSpeed() (rx, ry, rz float32)

	// SetRotationSpeed sets the prop's angular velocity in radians per second.
	//
	// Parameters:
	//   - rx, ry, rz: angular velocity about each axis
	SetRotationSpeed(rx, ry, rz float32)

	// Scale returns the prop's per-axis scale factors.
	//
	// Returns:
	//   - sx, sy, sz: scale factors
	Scale() (sx, sy, sz float32)

	// SetScale sets the prop's per-axis scale factors.
	//
	// Parameters:
	//   - sx, sy, sz: scale factors
	SetScale(sx, sy, sz float32)

	// Advance integrates the rotation speed over the elapsed time.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	Advance(dt float32)

	// ModelMatrix writes the prop's model matrix composed from scale,
	// rotation, and translation.
	//
	// Parameters:
	//   - out: the destination matrix (column-major, at least 16 elements)
	ModelMatrix(out []float32)

	// BoundingSphere returns the prop's world-space bounding sphere: the
	// model's bounding radius scaled by the largest scale factor, centered
	// at the prop's position.
	//
	// Returns:
	//   - [3]float32: the sphere center
	//   - float32: the sphere radius
	BoundingSphere() ([3]float32, float32)
}

var _ Prop = &propImpl{}

// NewProp creates a prop with the provided options applied over the defaults:
// enabled, at the origin, unrotated, unit scale.
//
// Parameters:
//   - options: a variadic list of PropBuilderOption functions
//
// Returns:
//   - Prop: a new prop instance
func NewProp(options ...PropBuilderOption) Prop {
	p := &propImpl{
		scale: [3]float32{1, 1, 1},
	}
	p.enabled.Store(true)
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *propImpl) ID() uint64 {
	return p.id
}

func (p *propImpl) SetID(id uint64) {
	p.id = id
}

func (p *propImpl) Enabled() bool {
	return p.enabled.Load()
}

func (p *propImpl) SetEnabled(enabled bool) {
	p.enabled.Store(enabled)
}

func (p *propImpl) Model() model.Model {
	return p.mdl
}

func (p *propImpl) SetModel(m model.Model) {
	p.mdl = m
}

func (p *propImpl) Position() (x, y, z float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position[0], p.position[1], p.position[2]
}

func (p *propImpl) SetPosition(x, y, z float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.position = [3]float32{x, y, z}
}

func (p *propImpl) Rotation() (rx, ry, rz float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rotation[0], p.rotation[1], p.rotation[2]
}

func (p *propImpl) SetRotation(rx, ry, rz float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rotation = [3]float32{rx, ry, rz}
}

func (p *propImpl) RotationSpeed() (rx, ry, rz float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rotationSpeed[0], p.rotationSpeed[1], p.rotationSpeed[2]
}

func (p *propImpl) SetRotationSpeed(rx, ry, rz float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rotationSpeed = [3]float32{rx, ry, rz}
}

func (p *propImpl) Scale() (sx, sy, sz float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scale[0], p.scale[1], p.scale[2]
}

func (p *propImpl) SetScale(sx, sy, sz float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scale = [3]float32{sx, sy, sz}
}

func (p *propImpl) Advance(dt float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rotation[0] += p.rotationSpeed[0] * dt
	p.rotation[1] += p.rotationSpeed[1] * dt
	p.rotation[2] += p.rotationSpeed[2] * dt
}

func (p *propImpl) ModelMatrix(out []float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	common.BuildModelMatrix(out,
		p.position[0], p.position[1], p.position[2],
		p.rotation[0], p.rotation[1], p.rotation[2],
		p.scale[0], p.scale[1], p.scale[2],
	)
}

func (p *propImpl) BoundingSphere() ([3]float32, float32) {
	p.mu.Lock()
	defer p.mu.Unlock()

	radius := float32(0)
	if p.mdl != nil {
		radius = p.mdl.BoundingRadius()
	}
	maxScale := p.scale[0]
	if p.scale[1] > maxScale {
		maxScale = p.scale[1]
	}
	if p.scale[2] > maxScale {
		maxScale = p.scale[2]
	}
	return p.position, radius * maxScale
}
