package style

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/parallax3d/parallax/common"
	"github.com/parallax3d/parallax/engine/renderer/bind_group_provider"
)

// Texture is a named pair of {sampled image view, sampler}. The two handles
// are always bound together and never rebound independently. Handles are
// shared: every consumer that binds the texture this frame holds the same
// underlying GPU objects, and binding for a draw never transfers ownership.
type Texture struct {
	// View is the sampled image view.
	View *wgpu.TextureView

	// Sampler is the sampler paired with the view.
	Sampler *wgpu.Sampler
}

// Valid reports whether both handles of the pair are set.
//
// Returns:
//   - bool: true when both the view and the sampler are non-nil
func (t Texture) Valid() bool {
	return t.View != nil && t.Sampler != nil
}

// UniformValueStaging builds the staging data for a 1x1 uniform-value texture
// whose single texel equals the input color exactly. The texel is stored as
// RGBA32Float so no quantization occurs; the byte payload is the little-endian
// IEEE-754 encoding of the four components.
//
// Parameters:
//   - color: the RGBA color value of the single texel
//
// Returns:
//   - common.TextureStagingData: 1x1 RGBA32Float staging data
func UniformValueStaging(color [4]float32) common.TextureStagingData {
	return common.TextureStagingData{
		Pixels:        common.Float4Bytes(color),
		Width:         1,
		Height:        1,
		Format:        wgpu.TextureFormatRGBA32Float,
		BytesPerPixel: 16,
	}
}

// uniformValueSampler returns the sampler configuration for uniform-value
// textures. The image is a single texel, so addressing clamps and filtering
// is nearest.
func uniformValueSampler() common.SamplerStagingData {
	return common.SamplerStagingData{
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeNearest,
		MinFilter:     wgpu.FilterModeNearest,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0,
		LodMaxClamp:   0,
		MaxAnisotropy: 1,
	}
}

// UniformValue creates a brand-new 1x1 2D texture holding exactly the given
// color, paired with a clamping nearest sampler.
//
// Parameters:
//   - r: the renderer creating the GPU resources
//   - label: a debug label for the created resources
//   - color: the RGBA color value of the single texel
//
// Returns:
//   - Texture: the created view/sampler pair
//   - error: a resource-creation Error if the GPU objects could not be created
func UniformValue(r Renderer, label string, color [4]float32) (Texture, error) {
	provider := bind_group_provider.NewBindGroupProvider(label)
	if err := r.InitTextureView(provider, 0, UniformValueStaging(color)); err != nil {
		return Texture{}, newError(ErrorKindResourceCreation, "create uniform-value texture "+label, err)
	}
	if err := r.InitSampler(provider, 0, uniformValueSampler()); err != nil {
		return Texture{}, newError(ErrorKindResourceCreation, "create uniform-value sampler "+label, err)
	}
	return Texture{View: provider.TextureView(0), Sampler: provider.Sampler(0)}, nil
}

// textureFromStaging creates a 2D texture from arbitrary staging data, paired
// with a clamping linear sampler. Used for lookup tables.
func textureFromStaging(r Renderer, label string, staging common.TextureStagingData) (Texture, error) {
	provider := bind_group_provider.NewBindGroupProvider(label)
	if err := r.InitTextureView(provider, 0, staging); err != nil {
		return Texture{}, newError(ErrorKindResourceCreation, "create texture "+label, err)
	}
	sampler := common.SamplerStagingData{
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		MaxAnisotropy: 1,
	}
	if err := r.InitSampler(provider, 0, sampler); err != nil {
		return Texture{}, newError(ErrorKindResourceCreation, "create sampler "+label, err)
	}
	return Texture{View: provider.TextureView(0), Sampler: provider.Sampler(0)}, nil
}

// UniformValueCube creates a brand-new 1x1 cube texture with all six faces
// holding exactly the given color, paired with a clamping nearest sampler.
// Used for the default environment's irradiance and radiance maps.
//
// Parameters:
//   - r: the renderer creating the GPU resources
//   - label: a debug label for the created resources
//   - color: the RGBA color value of every face's single texel
//
// Returns:
//   - Texture: the created view/sampler pair
//   - error: a resource-creation Error if the GPU objects could not be created
func UniformValueCube(r Renderer, label string, color [4]float32) (Texture, error) {
	var faces [6]common.TextureStagingData
	for i := range faces {
		faces[i] = UniformValueStaging(color)
	}
	provider := bind_group_provider.NewBindGroupProvider(label)
	if err := r.InitCubeTextureView(provider, 0, faces); err != nil {
		return Texture{}, newError(ErrorKindResourceCreation, "create uniform-value cube texture "+label, err)
	}
	if err := r.InitSampler(provider, 0, uniformValueSampler()); err != nil {
		return Texture{}, newError(ErrorKindResourceCreation, "create uniform-value cube sampler "+label, err)
	}
	return Texture{View: provider.TextureView(0), Sampler: provider.Sampler(0)}, nil
}
