package light

import (
	"github.com/parallax3d/parallax/common"
)

// SunOption defines a functional option for configuring a Sun during creation.
type SunOption func(*sun)

// WithRotation sets the sun's orientation.
//
// Parameters:
//   - q: the orientation quaternion
//
// Returns:
//   - SunOption: a functional option for configuring the sun
func WithRotation(q common.Quat) SunOption {
	return func(s *sun) {
		s.rotation = q
	}
}

// WithColor sets the sun color and intensity.
//
// Parameters:
//   - color: the color; RGB in xyz, intensity in w
//
// Returns:
//   - SunOption: a functional option for configuring the sun
func WithColor(color [4]float32) SunOption {
	return func(s *sun) {
		s.color = color
	}
}

// WithCastsShadows enables or disables the shadow pass.
//
// Parameters:
//   - casts: the flag value
//
// Returns:
//   - SunOption: a functional option for configuring the sun
func WithCastsShadows(casts bool) SunOption {
	return func(s *sun) {
		s.castsShadows = casts
	}
}

// WithHalfExtent sets the orthographic half-extent of the shadow frustum.
//
// Parameters:
//   - extent: the half-extent in world units
//
// Returns:
//   - SunOption: a functional option for configuring the sun
func WithHalfExtent(extent float32) SunOption {
	return func(s *sun) {
		s.halfExtent = extent
	}
}

// WithShadowRange sets the near and far planes of the shadow projection.
//
// Parameters:
//   - near: the near plane distance
//   - far: the far plane distance
//
// Returns:
//   - SunOption: a functional option for configuring the sun
func WithShadowRange(near, far float32) SunOption {
	return func(s *sun) {
		s.near = near
		s.far = far
	}
}
