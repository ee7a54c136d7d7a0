package style

import "github.com/parallax3d/parallax/common"

// EnvironmentBuilderOption defines a functional option for configuring an
// Environment during creation.
type EnvironmentBuilderOption func(*environment)

// WithIrradiance sets the irradiance cube texture.
//
// Parameters:
//   - t: the irradiance view/sampler pair
//
// Returns:
//   - EnvironmentBuilderOption: a functional option for configuring the environment
func WithIrradiance(t Texture) EnvironmentBuilderOption {
	return func(e *environment) {
		e.irradiance = t
	}
}

// WithRadiance sets the radiance cube texture.
//
// Parameters:
//   - t: the radiance view/sampler pair
//
// Returns:
//   - EnvironmentBuilderOption: a functional option for configuring the environment
func WithRadiance(t Texture) EnvironmentBuilderOption {
	return func(e *environment) {
		e.radiance = t
	}
}

// WithRadianceLevels sets the mip level count of the radiance map.
//
// Parameters:
//   - levels: the mip level count
//
// Returns:
//   - EnvironmentBuilderOption: a functional option for configuring the environment
func WithRadianceLevels(levels int32) EnvironmentBuilderOption {
	return func(e *environment) {
		e.radianceLevels = levels
	}
}

// WithSunInEnvironment sets whether the sun's contribution is already baked
// into the environment maps.
//
// Parameters:
//   - inEnv: the flag value
//
// Returns:
//   - EnvironmentBuilderOption: a functional option for configuring the environment
func WithSunInEnvironment(inEnv bool) EnvironmentBuilderOption {
	return func(e *environment) {
		e.sunInEnv = inEnv
	}
}

// WithSunColor sets the sun color; RGB in xyz, intensity in w.
//
// Parameters:
//   - color: the sun color and intensity
//
// Returns:
//   - EnvironmentBuilderOption: a functional option for configuring the environment
func WithSunColor(color [4]float32) EnvironmentBuilderOption {
	return func(e *environment) {
		e.sunColor = color
	}
}

// WithSunRotation sets the sun orientation.
//
// Parameters:
//   - q: the sun orientation quaternion
//
// Returns:
//   - EnvironmentBuilderOption: a functional option for configuring the environment
func WithSunRotation(q common.Quat) EnvironmentBuilderOption {
	return func(e *environment) {
		e.sunRotation = q
	}
}
