package loader

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestPNG writes a solid-color PNG of the given size and returns its path.
func writeTestPNG(t *testing.T, dir, name string, size int, c color.RGBA) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestLoadFaceStagingSingleLevel(t *testing.T) {
	path := writeTestPNG(t, t.TempDir(), "face.png", 8, color.RGBA{200, 100, 50, 255})

	staging, err := loadFaceStaging(path, 1)
	require.NoError(t, err)

	assert.Equal(t, uint32(8), staging.Width)
	assert.Equal(t, uint32(8), staging.Height)
	assert.Equal(t, wgpu.TextureFormatRGBA8UnormSrgb, staging.Format)
	assert.Len(t, staging.Pixels, 8*8*4)
	assert.Empty(t, staging.MipPixels)
	assert.Equal(t, uint32(1), staging.MipLevelCount())
}

func TestLoadFaceStagingMipChain(t *testing.T) {
	path := writeTestPNG(t, t.TempDir(), "face.png", 8, color.RGBA{200, 100, 50, 255})

	staging, err := loadFaceStaging(path, 4)
	require.NoError(t, err)

	// Levels 1..3 at 4x4, 2x2, 1x1.
	require.Len(t, staging.MipPixels, 3)
	assert.Len(t, staging.MipPixels[0], 4*4*4)
	assert.Len(t, staging.MipPixels[1], 2*2*4)
	assert.Len(t, staging.MipPixels[2], 1*1*4)
	assert.Equal(t, uint32(4), staging.MipLevelCount())

	// Downscaling a solid color keeps the color.
	assert.Equal(t, byte(50), staging.MipPixels[2][2])
}

func TestLoadFaceStagingMissingFile(t *testing.T) {
	_, err := loadFaceStaging(filepath.Join(t.TempDir(), "absent.png"), 1)
	assert.Error(t, err)
}

func TestLoadBRDFLookup(t *testing.T) {
	path := writeTestPNG(t, t.TempDir(), "brdf.png", 16, color.RGBA{255, 0, 0, 255})

	staging, err := LoadBRDFLookup(path)
	require.NoError(t, err)

	assert.Equal(t, uint32(16), staging.Width)
	assert.Equal(t, uint32(16), staging.Height)
	// Scale/bias factors are linear data, never sRGB.
	assert.Equal(t, wgpu.TextureFormatRGBA8Unorm, staging.Format)
	assert.Len(t, staging.Pixels, 16*16*4)
}
