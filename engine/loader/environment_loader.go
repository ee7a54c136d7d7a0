package loader

import (
	"fmt"
	"image"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
	xdraw "golang.org/x/image/draw"

	_ "image/jpeg"
	_ "image/png"

	"github.com/parallax3d/parallax/common"
	"github.com/parallax3d/parallax/engine/renderer"
	"github.com/parallax3d/parallax/engine/renderer/bind_group_provider"
	"github.com/parallax3d/parallax/engine/renderer/style"
)

// CubeFaces names the six cube map face image files in the +X, -X, +Y, -Y,
// +Z, -Z order the GPU expects.
type CubeFaces [6]string

// LoadEnvironment builds a lighting environment from pre-filtered cube map
// images on disk: a diffuse irradiance cube and a specular radiance cube. The
// radiance cube gets a CPU-built mip chain so rough surfaces can sample
// progressively blurrier reflections; radianceLevels controls its depth.
//
// Parameters:
//   - r: the renderer creating the GPU resources
//   - name: a debug label prefix for the created resources
//   - irradiance: the six irradiance face image paths
//   - radiance: the six radiance face image paths
//   - radianceLevels: the mip level count for the radiance cube (minimum 1)
//
// Returns:
//   - style.Environment: the loaded environment, sun left at defaults
//   - error: an error if decoding or GPU resource creation fails
func LoadEnvironment(r renderer.Renderer, name string, irradiance, radiance CubeFaces, radianceLevels int32) (style.Environment, error) {
	if radianceLevels < 1 {
		radianceLevels = 1
	}

	irradianceTex, err := loadCubeTexture(r, name+"_irradiance", irradiance, 1)
	if err != nil {
		return nil, fmt.Errorf("irradiance cube: %w", err)
	}
	radianceTex, err := loadCubeTexture(r, name+"_radiance", radiance, radianceLevels)
	if err != nil {
		return nil, fmt.Errorf("radiance cube: %w", err)
	}

	return style.NewEnvironment(
		style.WithIrradiance(irradianceTex),
		style.WithRadiance(radianceTex),
		style.WithRadianceLevels(radianceLevels),
		style.WithSunInEnvironment(true),
	), nil
}

// loadCubeTexture decodes six face images, builds each face's mip chain, and
// creates the GPU cube texture with a trilinear clamping sampler.
func loadCubeTexture(r renderer.Renderer, label string, paths CubeFaces, mipLevels int32) (style.Texture, error) {
	var faces [6]common.TextureStagingData
	for i, path := range paths {
		face, err := loadFaceStaging(path, mipLevels)
		if err != nil {
			return style.Texture{}, fmt.Errorf("face %d (%s): %w", i, path, err)
		}
		faces[i] = face
	}

	// All faces must agree on dimensions for a cube texture.
	for i := 1; i < 6; i++ {
		if faces[i].Width != faces[0].Width || faces[i].Height != faces[0].Height {
			return style.Texture{}, fmt.Errorf("face %d is %dx%d, face 0 is %dx%d",
				i, faces[i].Width, faces[i].Height, faces[0].Width, faces[0].Height)
		}
	}

	provider := bind_group_provider.NewBindGroupProvider(label)
	if err := r.InitCubeTextureView(provider, 0, faces); err != nil {
		return style.Texture{}, fmt.Errorf("create cube texture: %w", err)
	}

	sampler := common.SamplerStagingData{
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMinClamp:   0,
		LodMaxClamp:   float32(mipLevels),
		MaxAnisotropy: 1,
	}
	if err := r.InitSampler(provider, 0, sampler); err != nil {
		return style.Texture{}, fmt.Errorf("create cube sampler: %w", err)
	}

	return style.Texture{View: provider.TextureView(0), Sampler: provider.Sampler(0)}, nil
}

// LoadBRDFLookup decodes a pre-integrated BRDF lookup table image into
// staging data for the style's split-sum specular term. The table holds scale
// and bias factors, so the texture is linear rather than sRGB.
//
// Parameters:
//   - path: the lookup table image path
//
// Returns:
//   - common.TextureStagingData: the decoded single-level staging data
//   - error: an error if reading or decoding fails
func LoadBRDFLookup(path string) (common.TextureStagingData, error) {
	file, err := os.Open(path)
	if err != nil {
		return common.TextureStagingData{}, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return common.TextureStagingData{}, fmt.Errorf("decode brdf lookup: %w", err)
	}

	bounds := img.Bounds()
	base := image.NewRGBA(bounds)
	xdraw.Draw(base, bounds, img, bounds.Min, xdraw.Src)

	return common.TextureStagingData{
		Pixels:        base.Pix,
		Width:         uint32(bounds.Dx()),
		Height:        uint32(bounds.Dy()),
		Format:        wgpu.TextureFormatRGBA8Unorm,
		BytesPerPixel: 4,
	}, nil
}

// loadFaceStaging decodes one face image into RGBA8 staging data and
// downscales it into the requested number of mip levels.
func loadFaceStaging(path string, mipLevels int32) (common.TextureStagingData, error) {
	file, err := os.Open(path)
	if err != nil {
		return common.TextureStagingData{}, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return common.TextureStagingData{}, fmt.Errorf("decode: %w", err)
	}

	bounds := img.Bounds()
	base := image.NewRGBA(bounds)
	xdraw.Draw(base, bounds, img, bounds.Min, xdraw.Src)

	staging := common.TextureStagingData{
		Pixels:        base.Pix,
		Width:         uint32(bounds.Dx()),
		Height:        uint32(bounds.Dy()),
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		BytesPerPixel: 4,
	}

	prev := base
	for level := int32(1); level < mipLevels; level++ {
		w := max(prev.Bounds().Dx()/2, 1)
		h := max(prev.Bounds().Dy()/2, 1)

		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), prev, prev.Bounds(), xdraw.Src, nil)

		staging.MipPixels = append(staging.MipPixels, dst.Pix)
		prev = dst
	}

	return staging, nil
}
