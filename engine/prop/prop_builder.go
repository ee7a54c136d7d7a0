package prop

import "github.com/parallax3d/parallax/engine/model"

// PropBuilderOption is a function that configures a propImpl during construction.
type PropBuilderOption func(*propImpl)

// WithModel is an option builder that sets the model this prop draws.
//
// Parameters:
//   - m: the model to associate
//
// Returns:
//   - PropBuilderOption: a function that applies the model to the prop
func WithModel(m model.Model) PropBuilderOption {
	return func(p *propImpl) {
		p.mdl = m
	}
}

// WithPosition is an option builder that sets the prop's world-space position.
//
// Parameters:
//   - x, y, z: world-space position components
//
// Returns:
//   - PropBuilderOption: a function that applies the position to the prop
func WithPosition(x, y, z float32) PropBuilderOption {
	return func(p *propImpl) {
		p.position = [3]float32{x, y, z}
	}
}

// WithRotation is an option builder that sets the prop's Euler rotation in radians.
//
// Parameters:
//   - rx, ry, rz: rotation about each axis in radians
//
// Returns:
//   - PropBuilderOption: a function that applies the rotation to the prop
func WithRotation(rx, ry, rz float32) PropBuilderOption {
	return func(p *propImpl) {
		p.rotation = [3]float32{rx, ry, rz}
	}
}

// WithRotationSpeed is an option builder that sets the prop's angular velocity
// in radians per second.
//
// Parameters:
//   - rx, ry, rz: angular velocity about each axis
//
// Returns:
//   - PropBuilderOption: a function that applies the rotation speed to the prop
func WithRotationSpeed(rx, ry, rz float32) PropBuilderOption {
	return func(p *propImpl) {
		p.rotationSpeed = [3]float32{rx, ry, rz}
	}
}

// WithScale is an option builder that sets the prop's per-axis scale factors.
//
// Parameters:
//   - sx, sy, sz: scale factors
//
// Returns:
//   - PropBuilderOption: a function that applies the scale to the prop
func WithScale(sx, sy, sz float32) PropBuilderOption {
	return func(p *propImpl) {
		p.scale = [3]float32{sx, sy, sz}
	}
}

// WithEnabled is an option builder that sets whether the prop starts enabled.
//
// Parameters:
//   - enabled: the initial flag value
//
// Returns:
//   - PropBuilderOption: a function that applies the flag to the prop
func WithEnabled(enabled bool) PropBuilderOption {
	return func(p *propImpl) {
		p.enabled.Store(enabled)
	}
}
