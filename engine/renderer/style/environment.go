package style

import (
	"github.com/parallax3d/parallax/common"
)

// SkyBlue is the color both environment maps are initialized to when no
// environment has been loaded: a single sky-blue texel for irradiance and
// radiance alike.
var SkyBlue = [4]float32{0.529, 0.808, 0.980, 1}

// DefaultSunColor is the default sun color: white at intensity 2.0 carried in
// the w component.
var DefaultSunColor = [4]float32{1, 1, 1, 2}

// environment is the implementation of the Environment interface.
type environment struct {
	irradiance     Texture
	radiance       Texture
	radianceLevels int32
	sunInEnv       bool
	sunColor       [4]float32
	sunRotation    common.Quat
}

// Environment is the lighting description consumed by both the sky background
// and the foreground material shading: image-based lighting maps, the sun's
// orientation and color, and whether the sun's contribution is already baked
// into the environment maps.
//
// The environment is owned by the style's input state. Mutating it through
// these setters does not notify the owner; callers go through the input
// state's SetEnvironment / MutateEnvironment operations so the params block is
// re-derived and texture bindings are refreshed.
type Environment interface {
	// Irradiance retrieves the irradiance (diffuse IBL) cube texture.
	//
	// Returns:
	//   - Texture: the irradiance view/sampler pair
	Irradiance() Texture

	// SetIrradiance sets the irradiance cube texture.
	//
	// Parameters:
	//   - t: the new irradiance view/sampler pair
	SetIrradiance(t Texture)

	// Radiance retrieves the radiance (specular IBL) cube texture. The map
	// carries RadianceLevels mip levels of increasing roughness.
	//
	// Returns:
	//   - Texture: the radiance view/sampler pair
	Radiance() Texture

	// SetRadiance sets the radiance cube texture.
	//
	// Parameters:
	//   - t: the new radiance view/sampler pair
	SetRadiance(t Texture)

	// RadianceLevels retrieves the mip level count of the radiance map.
	//
	// Returns:
	//   - int32: the radiance mip level count
	RadianceLevels() int32

	// SetRadianceLevels sets the mip level count of the radiance map.
	//
	// Parameters:
	//   - levels: the new mip level count
	SetRadianceLevels(levels int32)

	// SunInEnvironment reports whether the sun's contribution is already baked
	// into the environment maps. When true the analytic sun term is skipped.
	//
	// Returns:
	//   - bool: true when the sun is baked into the maps
	SunInEnvironment() bool

	// SetSunInEnvironment sets the sun-baked-into-environment flag.
	//
	// Parameters:
	//   - inEnv: the new flag value
	SetSunInEnvironment(inEnv bool)

	// SunColor retrieves the sun color; RGB in xyz, intensity in w.
	//
	// Returns:
	//   - [4]float32: the sun color and intensity
	SunColor() [4]float32

	// SetSunColor sets the sun color and intensity.
	//
	// Parameters:
	//   - color: the new sun color; RGB in xyz, intensity in w
	SetSunColor(color [4]float32)

	// SunRotation retrieves the sun orientation as a rotation applied to the
	// default forward axis.
	//
	// Returns:
	//   - common.Quat: the sun orientation
	SunRotation() common.Quat

	// SetSunRotation sets the sun orientation.
	//
	// Parameters:
	//   - q: the new sun orientation
	SetSunRotation(q common.Quat)
}

var _ Environment = &environment{}

// NewEnvironment creates a new Environment with the provided options applied
// over the defaults: sun excluded, DefaultSunColor, identity sun rotation,
// radiance level count 1, and zero-value textures.
//
// Parameters:
//   - options: a variadic list of EnvironmentBuilderOption functions
//
// Returns:
//   - Environment: a new Environment instance
func NewEnvironment(options ...EnvironmentBuilderOption) Environment {
	e := &environment{
		radianceLevels: 1,
		sunColor:       DefaultSunColor,
		sunRotation:    common.QuatIdentity(),
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

// NewDefaultEnvironment creates the environment every style starts with:
// irradiance and radiance both a single sky-blue texel, sun excluded from the
// maps, sun color white at intensity 2.0, and the sun oriented by the
// shortest-arc rotation mapping the forward axis (-Z) onto straight down (-Y).
//
// Parameters:
//   - r: the renderer creating the default map textures
//
// Returns:
//   - Environment: the default environment
//   - error: a typed Error if texture creation fails or the sun rotation is degenerate
func NewDefaultEnvironment(r Renderer) (Environment, error) {
	irradiance, err := UniformValueCube(r, "environment_irradiance", SkyBlue)
	if err != nil {
		return nil, err
	}
	radiance, err := UniformValueCube(r, "environment_radiance", SkyBlue)
	if err != nil {
		return nil, err
	}
	sunRotation, err := common.RotationBetween([3]float32{0, 0, -1}, [3]float32{0, -1, 0})
	if err != nil {
		return nil, newError(ErrorKindUnsupportedRotation, "derive default sun orientation", err)
	}
	return NewEnvironment(
		WithIrradiance(irradiance),
		WithRadiance(radiance),
		WithRadianceLevels(1),
		WithSunInEnvironment(false),
		WithSunColor(DefaultSunColor),
		WithSunRotation(sunRotation),
	), nil
}

func (e *environment) Irradiance() Texture {
	return e.irradiance
}

func (e *environment) SetIrradiance(t Texture) {
	e.irradiance = t
}

func (e *environment) Radiance() Texture {
	return e.radiance
}

func (e *environment) SetRadiance(t Texture) {
	e.radiance = t
}

func (e *environment) RadianceLevels() int32 {
	return e.radianceLevels
}

func (e *environment) SetRadianceLevels(levels int32) {
	e.radianceLevels = levels
}

func (e *environment) SunInEnvironment() bool {
	return e.sunInEnv
}

func (e *environment) SetSunInEnvironment(inEnv bool) {
	e.sunInEnv = inEnv
}

func (e *environment) SunColor() [4]float32 {
	return e.sunColor
}

func (e *environment) SetSunColor(color [4]float32) {
	e.sunColor = color
}

func (e *environment) SunRotation() common.Quat {
	return e.sunRotation
}

func (e *environment) SetSunRotation(q common.Quat) {
	e.sunRotation = q
}
