package material

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/parallax3d/parallax/common"
)

func (m *material) NormalStaging() (common.TextureStagingData, error) {
	if m.normalTexture != nil {
		return decodeStaging(m.normalTexture, wgpu.TextureFormatRGBA8Unorm)
	}
	// Flat tangent-space normal pointing straight out of the surface.
	return solidStaging([4]float32{0.5, 0.5, 1, 1}, wgpu.TextureFormatRGBA8Unorm), nil
}

func (m *material) AlbedoStaging() (common.TextureStagingData, error) {
	if m.albedoTexture != nil {
		return decodeStaging(m.albedoTexture, wgpu.TextureFormatRGBA8UnormSrgb)
	}
	return solidStaging(m.baseColor, wgpu.TextureFormatRGBA8UnormSrgb), nil
}

func (m *material) KnobsStaging() (common.TextureStagingData, error) {
	if m.knobsTexture != nil {
		return decodeStaging(m.knobsTexture, wgpu.TextureFormatRGBA8Unorm)
	}
	// Flatness 1 suppresses normal mapping when no normal map is assigned.
	flatness := float32(1)
	if m.normalTexture != nil {
		flatness = 0
	}
	return solidStaging([4]float32{m.metalness, m.roughness, flatness, 1}, wgpu.TextureFormatRGBA8Unorm), nil
}

// decodeStaging decodes an imported texture into RGBA8 staging data with the given format.
func decodeStaging(tex *common.ImportedTexture, format wgpu.TextureFormat) (common.TextureStagingData, error) {
	pixels, width, height, err := tex.Decode()
	if err != nil {
		return common.TextureStagingData{}, fmt.Errorf("failed to decode texture %q: %w", tex.Name, err)
	}
	return common.TextureStagingData{
		Pixels:        pixels,
		Width:         width,
		Height:        height,
		Format:        format,
		BytesPerPixel: 4,
	}, nil
}

// solidStaging bakes an RGBA color into 1x1 RGBA8 staging data.
// Channels are clamped to [0, 1] before quantization.
func solidStaging(color [4]float32, format wgpu.TextureFormat) common.TextureStagingData {
	pixels := make([]byte, 4)
	for i, c := range color {
		if c < 0 {
			c = 0
		} else if c > 1 {
			c = 1
		}
		pixels[i] = byte(c*255 + 0.5)
	}
	return common.TextureStagingData{
		Pixels:        pixels,
		Width:         1,
		Height:        1,
		Format:        format,
		BytesPerPixel: 4,
	}
}
