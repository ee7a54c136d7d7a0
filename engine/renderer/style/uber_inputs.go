package style

import (
	"github.com/parallax3d/parallax/common"
	"github.com/parallax3d/parallax/engine/renderer/bind_group_provider"
)

// DefaultExposure is the exposure multiplier input state starts with.
const DefaultExposure float32 = 1.0

// DefaultGamma is the display gamma input state starts with.
const DefaultGamma float32 = 2.2

// uberInputs is the implementation of the UberInputs interface.
type uberInputs struct {
	// pendingTransform is the transform value awaiting upload, or nil when
	// none is pending. Setting a new value overwrites a pending one; the
	// flush consumes it back to nil.
	pendingTransform *GPUTransformBlock

	// transformEverSet tracks whether a transform was ever supplied, so the
	// first draw can reject an uninitialized transform buffer.
	transformEverSet bool

	// paramsDirty marks that the params block must be re-derived and
	// re-uploaded before the next draw that reads it.
	paramsDirty bool

	env      Environment
	exposure float32
	gamma    float32

	// uniformProvider holds the transform and params GPU buffers plus the
	// bind group the shaders read them through.
	uniformProvider  bind_group_provider.BindGroupProvider
	transformBinding int
	paramsBinding    int

	// envProvider holds the environment/shadow/BRDF texture bind group.
	envProvider bind_group_provider.BindGroupProvider

	// envBinder re-installs the environment's texture handles into the GPU
	// bind groups after the environment is replaced or mutated. Nil when the
	// input state is used without GPU resources.
	envBinder func(Environment) error
}

// UberInputs is the mutable input state consumed by the uber style's draws:
// the pending per-eye transform, the params derivation inputs (environment,
// exposure, gamma) with their dirty flag, and the GPU bind groups carrying the
// uploaded values.
//
// The state machine is pure: mutations never touch the GPU. Uploads happen
// only through TakePendingWrites, which the style invokes immediately before
// every draw that reads the buffers — the single flush-if-dirty point.
type UberInputs interface {
	// SetTransform stores the value as the pending transform. At most one
	// transform is pending at a time: a second set before a draw overwrites
	// the first, never queues behind it. The GPU buffer is not touched.
	//
	// Parameters:
	//   - t: the transform block for the next draw
	SetTransform(t GPUTransformBlock)

	// PendingTransform retrieves the pending transform, if any.
	//
	// Returns:
	//   - GPUTransformBlock: the pending value, or the zero value if none
	//   - bool: true if a transform is pending
	PendingTransform() (GPUTransformBlock, bool)

	// TransformEverSet reports whether SetTransform has ever been called.
	// A foreground draw before the first transform is a caller error: the
	// transform buffer would hold undefined contents.
	//
	// Returns:
	//   - bool: true once a transform has been supplied
	TransformEverSet() bool

	// SetEnvironment replaces the environment wholesale, refreshes the GPU
	// texture bindings, and marks the params block dirty.
	//
	// Parameters:
	//   - env: the new environment
	//
	// Returns:
	//   - error: an error if rebinding the environment textures fails
	SetEnvironment(env Environment) error

	// MutateEnvironment hands the current environment to the callback for
	// in-place mutation. The params block is pessimistically marked dirty and
	// the texture bindings refreshed even if the callback mutates nothing.
	//
	// Parameters:
	//   - mutate: the callback receiving the environment
	//
	// Returns:
	//   - error: an error if rebinding the environment textures fails
	MutateEnvironment(mutate func(Environment)) error

	// Environment retrieves the current environment.
	//
	// Returns:
	//   - Environment: the current environment
	Environment() Environment

	// SetExposure sets the exposure multiplier and marks the params block dirty.
	//
	// Parameters:
	//   - exposure: the new exposure multiplier
	SetExposure(exposure float32)

	// Exposure retrieves the exposure multiplier.
	//
	// Returns:
	//   - float32: the exposure multiplier
	Exposure() float32

	// SetGamma sets the display gamma and marks the params block dirty.
	//
	// Parameters:
	//   - gamma: the new display gamma
	SetGamma(gamma float32)

	// Gamma retrieves the display gamma.
	//
	// Returns:
	//   - float32: the display gamma
	Gamma() float32

	// ParamsDirty reports whether the params block will be re-uploaded by the
	// next flush.
	//
	// Returns:
	//   - bool: the dirty flag
	ParamsDirty() bool

	// DeriveParams re-derives the whole params block from the current
	// environment, exposure, and gamma. The block is always regenerated
	// wholesale, never partially patched. Does not clear the dirty flag.
	//
	// Returns:
	//   - GPUParamsBlock: the derived params block
	DeriveParams() GPUParamsBlock

	// TakePendingWrites flushes the dirty state into staged buffer writes, in
	// the fixed order transform-then-params. A pending transform is consumed
	// (set back to absent); a dirty params flag is cleared after the block is
	// re-derived. Clean state yields no writes.
	//
	// Returns:
	//   - []bind_group_provider.BufferWrite: the staged writes, possibly empty
	TakePendingWrites() []bind_group_provider.BufferWrite

	// UniformProvider retrieves the provider holding the transform/params
	// buffers and their bind group.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the uniform provider
	UniformProvider() bind_group_provider.BindGroupProvider

	// EnvironmentProvider retrieves the provider holding the environment,
	// shadow, and BRDF texture bind group.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the environment provider
	EnvironmentProvider() bind_group_provider.BindGroupProvider
}

var _ UberInputs = &uberInputs{}

// NewUberInputs creates input state with the provided options applied over
// the defaults: no pending transform, params dirty (forcing the first-frame
// derivation), exposure 1.0, gamma 2.2, and no environment.
//
// Parameters:
//   - options: a variadic list of UberInputsOption functions
//
// Returns:
//   - UberInputs: a new input state instance
func NewUberInputs(options ...UberInputsOption) UberInputs {
	u := &uberInputs{
		paramsDirty: true,
		exposure:    DefaultExposure,
		gamma:       DefaultGamma,
	}
	for _, opt := range options {
		opt(u)
	}
	return u
}

// UberInputsOption defines a functional option for configuring UberInputs
// during creation.
type UberInputsOption func(*uberInputs)

// WithUniformProvider sets the provider holding the transform/params buffers
// and the binding indices the two blocks occupy within it.
//
// Parameters:
//   - provider: the uniform provider
//   - transformBinding: the transform buffer's binding index
//   - paramsBinding: the params buffer's binding index
//
// Returns:
//   - UberInputsOption: a functional option for configuring the input state
func WithUniformProvider(provider bind_group_provider.BindGroupProvider, transformBinding, paramsBinding int) UberInputsOption {
	return func(u *uberInputs) {
		u.uniformProvider = provider
		u.transformBinding = transformBinding
		u.paramsBinding = paramsBinding
	}
}

// WithEnvironmentProvider sets the provider holding the environment texture
// bind group.
//
// Parameters:
//   - provider: the environment provider
//
// Returns:
//   - UberInputsOption: a functional option for configuring the input state
func WithEnvironmentProvider(provider bind_group_provider.BindGroupProvider) UberInputsOption {
	return func(u *uberInputs) {
		u.envProvider = provider
	}
}

// WithInputEnvironment sets the initial environment.
//
// Parameters:
//   - env: the environment
//
// Returns:
//   - UberInputsOption: a functional option for configuring the input state
func WithInputEnvironment(env Environment) UberInputsOption {
	return func(u *uberInputs) {
		u.env = env
	}
}

// WithEnvironmentBinder sets the callback that re-installs environment texture
// handles into the GPU bind groups after an environment change.
//
// Parameters:
//   - binder: the rebinding callback
//
// Returns:
//   - UberInputsOption: a functional option for configuring the input state
func WithEnvironmentBinder(binder func(Environment) error) UberInputsOption {
	return func(u *uberInputs) {
		u.envBinder = binder
	}
}

func (u *uberInputs) SetTransform(t GPUTransformBlock) {
	u.pendingTransform = &t
	u.transformEverSet = true
}

func (u *uberInputs) PendingTransform() (GPUTransformBlock, bool) {
	if u.pendingTransform == nil {
		return GPUTransformBlock{}, false
	}
	return *u.pendingTransform, true
}

func (u *uberInputs) TransformEverSet() bool {
	return u.transformEverSet
}

func (u *uberInputs) SetEnvironment(env Environment) error {
	u.env = env
	u.paramsDirty = true
	if u.envBinder != nil {
		return u.envBinder(env)
	}
	return nil
}

func (u *uberInputs) MutateEnvironment(mutate func(Environment)) error {
	// Dirty before the callback runs: even a callback that ends up not
	// mutating leaves the flag set.
	u.paramsDirty = true
	if mutate != nil {
		mutate(u.env)
	}
	if u.envBinder != nil {
		return u.envBinder(u.env)
	}
	return nil
}

func (u *uberInputs) Environment() Environment {
	return u.env
}

func (u *uberInputs) SetExposure(exposure float32) {
	u.exposure = exposure
	u.paramsDirty = true
}

func (u *uberInputs) Exposure() float32 {
	return u.exposure
}

func (u *uberInputs) SetGamma(gamma float32) {
	u.gamma = gamma
	u.paramsDirty = true
}

func (u *uberInputs) Gamma() float32 {
	return u.gamma
}

func (u *uberInputs) ParamsDirty() bool {
	return u.paramsDirty
}

func (u *uberInputs) DeriveParams() GPUParamsBlock {
	block := GPUParamsBlock{
		Gamma:          u.gamma,
		Exposure:       u.exposure,
		RadianceLevels: 1,
	}
	if u.env != nil {
		u.env.SunRotation().Mat4(block.SunMatrix[:])
		block.SunColor = u.env.SunColor()
		block.RadianceLevels = u.env.RadianceLevels()
		if u.env.SunInEnvironment() {
			block.SunInEnv = 1
		}
	} else {
		common.Identity(block.SunMatrix[:])
	}
	return block
}

func (u *uberInputs) TakePendingWrites() []bind_group_provider.BufferWrite {
	writes := make([]bind_group_provider.BufferWrite, 0, 2)
	if u.pendingTransform != nil {
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: u.uniformProvider,
			Binding:  u.transformBinding,
			Offset:   0,
			Data:     u.pendingTransform.Marshal(),
		})
		u.pendingTransform = nil
	}
	if u.paramsDirty {
		block := u.DeriveParams()
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: u.uniformProvider,
			Binding:  u.paramsBinding,
			Offset:   0,
			Data:     block.Marshal(),
		})
		u.paramsDirty = false
	}
	return writes
}

func (u *uberInputs) UniformProvider() bind_group_provider.BindGroupProvider {
	return u.uniformProvider
}

func (u *uberInputs) EnvironmentProvider() bind_group_provider.BindGroupProvider {
	return u.envProvider
}
