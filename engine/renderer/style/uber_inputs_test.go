package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parallax3d/parallax/common"
	"github.com/parallax3d/parallax/engine/renderer/bind_group_provider"
)

func TestNewUberInputsDefaults(t *testing.T) {
	inputs := NewUberInputs()

	_, pending := inputs.PendingTransform()
	assert.False(t, pending)
	assert.False(t, inputs.TransformEverSet())
	assert.True(t, inputs.ParamsDirty(), "params start dirty so the first flush uploads them")
	assert.Equal(t, DefaultExposure, inputs.Exposure())
	assert.Equal(t, DefaultGamma, inputs.Gamma())
	assert.Nil(t, inputs.Environment())
}

func TestSetTransformOverwritesPending(t *testing.T) {
	inputs := NewUberInputs()

	first := GPUTransformBlock{ClipOffset: 0.1}
	second := GPUTransformBlock{ClipOffset: 0.2}
	inputs.SetTransform(first)
	inputs.SetTransform(second)

	got, pending := inputs.PendingTransform()
	require.True(t, pending)
	assert.Equal(t, float32(0.2), got.ClipOffset, "a second set replaces the pending value, it never queues")
	assert.True(t, inputs.TransformEverSet())
}

func TestTakePendingWritesConsumesState(t *testing.T) {
	provider := bind_group_provider.NewBindGroupProvider("uniforms")
	inputs := NewUberInputs(WithUniformProvider(provider, 0, 1))

	inputs.SetTransform(GPUTransformBlock{ClipOffset: 0.3})

	writes := inputs.TakePendingWrites()
	require.Len(t, writes, 2, "pending transform plus initially dirty params")
	assert.Equal(t, 0, writes[0].Binding, "transform flushes before params")
	assert.Len(t, writes[0].Data, GPUTransformBlockSize)
	assert.Equal(t, 1, writes[1].Binding)
	assert.Len(t, writes[1].Data, GPUParamsBlockSize)
	assert.Same(t, provider, writes[0].Provider)

	_, pending := inputs.PendingTransform()
	assert.False(t, pending, "the flush consumed the pending transform")
	assert.False(t, inputs.ParamsDirty())
	assert.True(t, inputs.TransformEverSet(), "ever-set survives the flush")

	assert.Empty(t, inputs.TakePendingWrites(), "clean state flushes nothing")
}

func TestParamsDirtyOnEveryDerivationInput(t *testing.T) {
	inputs := NewUberInputs(WithInputEnvironment(NewEnvironment()))
	inputs.TakePendingWrites()
	require.False(t, inputs.ParamsDirty())

	inputs.SetExposure(0.5)
	assert.True(t, inputs.ParamsDirty())
	inputs.TakePendingWrites()

	inputs.SetGamma(1.8)
	assert.True(t, inputs.ParamsDirty())
	inputs.TakePendingWrites()

	require.NoError(t, inputs.SetEnvironment(NewEnvironment()))
	assert.True(t, inputs.ParamsDirty())
	inputs.TakePendingWrites()

	// Pessimistic: the callback does not mutate, the flag is still set.
	require.NoError(t, inputs.MutateEnvironment(func(Environment) {}))
	assert.True(t, inputs.ParamsDirty())
}

func TestDeriveParamsFromEnvironment(t *testing.T) {
	rotation, err := common.RotationBetween([3]float32{0, 0, -1}, [3]float32{1, 0, 0})
	require.NoError(t, err)

	env := NewEnvironment(
		WithRadianceLevels(6),
		WithSunColor([4]float32{1, 0.5, 0.25, 3}),
		WithSunRotation(rotation),
	)
	inputs := NewUberInputs(WithInputEnvironment(env))
	inputs.SetExposure(1.5)
	inputs.SetGamma(2.4)

	params := inputs.DeriveParams()
	assert.Equal(t, [4]float32{1, 0.5, 0.25, 3}, params.SunColor)
	assert.Equal(t, int32(6), params.RadianceLevels)
	assert.Equal(t, float32(1.5), params.Exposure)
	assert.Equal(t, float32(2.4), params.Gamma)
	assert.Equal(t, float32(0), params.SunInEnv)

	var expected [16]float32
	rotation.Mat4(expected[:])
	assert.Equal(t, expected, params.SunMatrix)

	// DeriveParams is a pure read: it never clears the dirty flag.
	assert.True(t, inputs.ParamsDirty())
}

func TestDeriveParamsSunInEnvToggle(t *testing.T) {
	env := NewEnvironment()
	inputs := NewUberInputs(WithInputEnvironment(env))

	assert.Equal(t, float32(0), inputs.DeriveParams().SunInEnv)

	err := inputs.MutateEnvironment(func(e Environment) {
		e.SetSunInEnvironment(true)
	})
	require.NoError(t, err)
	assert.Equal(t, float32(1), inputs.DeriveParams().SunInEnv)
}

func TestEnvironmentBinderInvoked(t *testing.T) {
	var bound []Environment
	binder := func(env Environment) error {
		bound = append(bound, env)
		return nil
	}
	inputs := NewUberInputs(
		WithInputEnvironment(NewEnvironment()),
		WithEnvironmentBinder(binder),
	)

	replacement := NewEnvironment()
	require.NoError(t, inputs.SetEnvironment(replacement))
	require.NoError(t, inputs.MutateEnvironment(nil))

	require.Len(t, bound, 2)
	assert.Same(t, replacement, bound[0])
	assert.Same(t, replacement, bound[1])
}
