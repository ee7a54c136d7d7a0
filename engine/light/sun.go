// Package light models the scene's single directional sun and derives the
// matrices its shadow pass renders with. The sun's orientation and color live
// on the rendering environment; this package turns that orientation into an
// orthographic light camera.
package light

import (
	"github.com/parallax3d/parallax/common"
	"github.com/parallax3d/parallax/engine/renderer/style"
)

// sun is the implementation of the Sun interface.
type sun struct {
	rotation     common.Quat
	color        [4]float32
	castsShadows bool

	halfExtent float32
	near       float32
	far        float32
}

// Sun is the scene's directional light. Its rotation maps the light's
// forward axis -Z onto the direction the light shines; the default
// orientation points it straight down. The sun owns the orthographic shadow
// frustum that the depth-only shadow pass renders with.
type Sun interface {
	// Rotation retrieves the sun's orientation.
	//
	// Returns:
	//   - common.Quat: the orientation quaternion
	Rotation() common.Quat

	// SetRotation sets the sun's orientation.
	//
	// Parameters:
	//   - q: the new orientation quaternion
	SetRotation(q common.Quat)

	// Direction retrieves the normalized world-space direction the sun
	// shines in.
	//
	// Returns:
	//   - [3]float32: the light direction
	Direction() [3]float32

	// Color retrieves the sun color; RGB in xyz, intensity in w.
	//
	// Returns:
	//   - [4]float32: the color and intensity
	Color() [4]float32

	// SetColor sets the sun color and intensity.
	//
	// Parameters:
	//   - color: the new color; RGB in xyz, intensity in w
	SetColor(color [4]float32)

	// CastsShadows reports whether the shadow pass runs for this sun.
	//
	// Returns:
	//   - bool: true when shadows are rendered
	CastsShadows() bool

	// SetCastsShadows enables or disables the shadow pass.
	//
	// Parameters:
	//   - casts: the new flag value
	SetCastsShadows(casts bool)

	// HalfExtent retrieves the orthographic half-extent of the shadow
	// frustum in world units.
	//
	// Returns:
	//   - float32: the half-extent
	HalfExtent() float32

	// SetHalfExtent sets the orthographic half-extent of the shadow frustum.
	//
	// Parameters:
	//   - extent: the new half-extent in world units
	SetHalfExtent(extent float32)

	// ViewMatrix writes the light's view matrix: world space into the sun's
	// camera space, looking along the light direction toward the origin.
	//
	// Parameters:
	//   - out: the destination matrix (column-major, at least 16 elements)
	ViewMatrix(out []float32)

	// ProjMatrix writes the light's orthographic projection matrix.
	//
	// Parameters:
	//   - out: the destination matrix (column-major, at least 16 elements)
	ProjMatrix(out []float32)

	// ShadowTransform assembles the uniform block for one shadow draw: the
	// object's model matrix with the light's view and projection in the
	// camera slots. Eye position and clip offset stay zero, the shadow pass
	// reads neither.
	//
	// Parameters:
	//   - model: the object's model matrix, or nil for identity
	//
	// Returns:
	//   - style.GPUTransformBlock: the assembled shadow uniform block
	ShadowTransform(model []float32) style.GPUTransformBlock

	// ApplyToEnvironment copies the sun's orientation and color onto the
	// rendering environment so the lit pass and the shadow pass agree.
	//
	// Parameters:
	//   - env: the environment to update
	ApplyToEnvironment(env style.Environment)
}

var _ Sun = &sun{}

// NewSun creates a sun with the provided options applied over the defaults:
// shining straight down, style.DefaultSunColor, shadows enabled, and the
// default orthographic shadow frustum.
//
// Parameters:
//   - options: a variadic list of SunOption functions
//
// Returns:
//   - Sun: a new sun instance
func NewSun(options ...SunOption) Sun {
	rotation, err := common.RotationBetween([3]float32{0, 0, -1}, [3]float32{0, -1, 0})
	if err != nil {
		// The axes are fixed and non-degenerate.
		rotation = common.QuatIdentity()
	}
	s := &sun{
		rotation:     rotation,
		color:        style.DefaultSunColor,
		castsShadows: true,
		halfExtent:   DefaultShadowHalfExtent,
		near:         DefaultShadowNear,
		far:          DefaultShadowFar,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// NewSunFromEnvironment creates a sun whose orientation and color are taken
// from the rendering environment.
//
// Parameters:
//   - env: the environment supplying sun rotation and color
//   - options: a variadic list of SunOption functions applied afterwards
//
// Returns:
//   - Sun: a new sun instance
func NewSunFromEnvironment(env style.Environment, options ...SunOption) Sun {
	opts := append([]SunOption{
		WithRotation(env.SunRotation()),
		WithColor(env.SunColor()),
	}, options...)
	return NewSun(opts...)
}

func (s *sun) Rotation() common.Quat {
	return s.rotation
}

func (s *sun) SetRotation(q common.Quat) {
	s.rotation = q
}

func (s *sun) Direction() [3]float32 {
	return s.rotation.Rotate([3]float32{0, 0, -1})
}

func (s *sun) Color() [4]float32 {
	return s.color
}

func (s *sun) SetColor(color [4]float32) {
	s.color = color
}

func (s *sun) CastsShadows() bool {
	return s.castsShadows
}

func (s *sun) SetCastsShadows(casts bool) {
	s.castsShadows = casts
}

func (s *sun) HalfExtent() float32 {
	return s.halfExtent
}

func (s *sun) SetHalfExtent(extent float32) {
	s.halfExtent = extent
}

func (s *sun) ViewMatrix(out []float32) {
	dir := s.Direction()
	up := s.rotation.Rotate([3]float32{0, 1, 0})

	// Back the light camera off far enough that the whole frustum depth
	// range sits in front of it.
	distance := (s.near + s.far) / 2
	eye := [3]float32{-dir[0] * distance, -dir[1] * distance, -dir[2] * distance}

	common.LookAt(out,
		eye[0], eye[1], eye[2],
		0, 0, 0,
		up[0], up[1], up[2])
}

func (s *sun) ProjMatrix(out []float32) {
	common.Orthographic(out, -s.halfExtent, s.halfExtent, -s.halfExtent, s.halfExtent, s.near, s.far)
}

func (s *sun) ShadowTransform(model []float32) style.GPUTransformBlock {
	var t style.GPUTransformBlock
	if model == nil {
		common.Identity(t.Model[:])
	} else {
		copy(t.Model[:], model)
	}
	s.ViewMatrix(t.View[:])
	s.ProjMatrix(t.Proj[:])
	return t
}

func (s *sun) ApplyToEnvironment(env style.Environment) {
	env.SetSunRotation(s.rotation)
	env.SetSunColor(s.color)
}
