package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parallax3d/parallax/common"
)

// triangleGLTF builds a minimal glTF JSON document with one right triangle,
// one material, and an embedded base64 buffer.
func triangleGLTF(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	for _, p := range [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}} {
		for _, c := range p {
			require.NoError(t, binary.Write(&buf, binary.LittleEndian, math.Float32bits(c)))
		}
	}
	for _, idx := range []uint16{0, 1, 2} {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, idx))
	}
	payload := base64.StdEncoding.EncodeToString(buf.Bytes())

	doc := fmt.Sprintf(`{
		"asset": {"version": "2.0"},
		"scene": 0,
		"scenes": [{"name": "triangle", "nodes": [0]}],
		"nodes": [{"mesh": 0}],
		"meshes": [{"name": "tri", "primitives": [
			{"attributes": {"POSITION": 0}, "indices": 1, "material": 0}
		]}],
		"materials": [{"name": "basic", "pbrMetallicRoughness": {
			"baseColorFactor": [1, 0, 0, 1],
			"metallicFactor": 0.0,
			"roughnessFactor": 0.5
		}}],
		"accessors": [
			{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3",
			 "min": [0, 0, 0], "max": [1, 1, 0]},
			{"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
		],
		"bufferViews": [
			{"buffer": 0, "byteOffset": 0, "byteLength": 36},
			{"buffer": 0, "byteOffset": 36, "byteLength": 6}
		],
		"buffers": [{"byteLength": 42,
			"uri": "data:application/octet-stream;base64,%s"}]
	}`, payload)

	return []byte(doc)
}

func TestLoadReaderBuildsModel(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)

	mdl, err := l.LoadReader("tri", bytes.NewReader(triangleGLTF(t)))
	require.NoError(t, err)

	assert.Equal(t, "triangle", mdl.Name())
	assert.Equal(t, 3, mdl.IndexCount())
	// 3 vertices at 48 bytes each.
	assert.Len(t, mdl.VertexData(), 144)
	assert.Len(t, mdl.IndexData(), 12)
	// Furthest vertex is distance 1 from the origin.
	assert.InDelta(t, 1.0, mdl.BoundingRadius(), 1e-6)

	prims := mdl.Primitives()
	require.Len(t, prims, 1)
	assert.Equal(t, common.IndexRange{First: 0, Count: 3}, prims[0].Indices)
	assert.Equal(t, 0, prims[0].MaterialIndex)

	mats := mdl.RenderMaterials()
	require.Len(t, mats, 1)
	assert.Equal(t, "basic", mats[0].Name())
	assert.Equal(t, [4]float32{1, 0, 0, 1}, mats[0].BaseColor())
	assert.Equal(t, float32(0), mats[0].Metalness())
	assert.Equal(t, float32(0.5), mats[0].Roughness())
	// GPU init is deferred to the style.
	assert.Nil(t, mats[0].BindGroupProvider())
}

// twoMaterialGLTF builds a document whose mesh has two primitives sharing the
// same triangle data but referencing different materials.
func twoMaterialGLTF(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	for _, p := range [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}} {
		for _, c := range p {
			require.NoError(t, binary.Write(&buf, binary.LittleEndian, math.Float32bits(c)))
		}
	}
	for _, idx := range []uint16{0, 1, 2} {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, idx))
	}
	payload := base64.StdEncoding.EncodeToString(buf.Bytes())

	doc := fmt.Sprintf(`{
		"asset": {"version": "2.0"},
		"scene": 0,
		"scenes": [{"name": "lantern", "nodes": [0]}],
		"nodes": [{"mesh": 0}],
		"meshes": [{"name": "lantern", "primitives": [
			{"attributes": {"POSITION": 0}, "indices": 1, "material": 0},
			{"attributes": {"POSITION": 0}, "indices": 1, "material": 1}
		]}],
		"materials": [{"name": "wood"}, {"name": "steel"}],
		"accessors": [
			{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3",
			 "min": [0, 0, 0], "max": [1, 1, 0]},
			{"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
		],
		"bufferViews": [
			{"buffer": 0, "byteOffset": 0, "byteLength": 36},
			{"buffer": 0, "byteOffset": 36, "byteLength": 6}
		],
		"buffers": [{"byteLength": 42,
			"uri": "data:application/octet-stream;base64,%s"}]
	}`, payload)

	return []byte(doc)
}

func TestLoadReaderMultiMaterialRanges(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)

	mdl, err := l.LoadReader("lantern", bytes.NewReader(twoMaterialGLTF(t)))
	require.NoError(t, err)

	require.Len(t, mdl.RenderMaterials(), 2)
	assert.Equal(t, 6, mdl.IndexCount())

	// Each primitive keeps its own slice of the merged index buffer and its
	// own material, so neither region draws with the other's textures.
	prims := mdl.Primitives()
	require.Len(t, prims, 2)
	assert.Equal(t, common.IndexRange{First: 0, Count: 3}, prims[0].Indices)
	assert.Equal(t, 0, prims[0].MaterialIndex)
	assert.Equal(t, common.IndexRange{First: 3, Count: 3}, prims[1].Indices)
	assert.Equal(t, 1, prims[1].MaterialIndex)
}

func TestLoadReaderCaches(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)

	first, err := l.LoadReader("tri", bytes.NewReader(triangleGLTF(t)))
	require.NoError(t, err)

	// Second call never touches the (exhausted) reader.
	second, err := l.LoadReader("tri", bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Same(t, first, l.Get("tri"))
	assert.Len(t, l.Models(), 1)
}

func TestLoadUnsupportedFormat(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)

	_, err := l.Load("model.obj")
	assert.ErrorContains(t, err, "unsupported model format")
}

func TestLoadAllFromDisk(t *testing.T) {
	dir := t.TempDir()
	paths := make([]string, 3)
	for i := range paths {
		paths[i] = filepath.Join(dir, fmt.Sprintf("tri_%d.gltf", i))
		require.NoError(t, os.WriteFile(paths[i], triangleGLTF(t), 0o644))
	}

	l := NewLoader(BackendTypeGLTF, WithWorkers(2))
	models, err := l.LoadAll(paths)
	require.NoError(t, err)
	require.Len(t, models, 3)
	for i, mdl := range models {
		require.NotNil(t, mdl, "model %d", i)
		assert.Equal(t, 3, mdl.IndexCount())
	}
	assert.Len(t, l.Models(), 3)
}

func TestLoadAllPropagatesErrors(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)

	_, err := l.LoadAll([]string{filepath.Join(t.TempDir(), "missing.glb")})
	assert.Error(t, err)
}

func TestKnobsFromMetallicRoughness(t *testing.T) {
	// glTF packs roughness in G and metalness in B.
	src := image.NewRGBA(image.Rect(0, 0, 1, 1))
	src.Pix[0], src.Pix[1], src.Pix[2], src.Pix[3] = 10, 200, 30, 255

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))
	tex := &common.ImportedTexture{Name: "mr", Data: buf.Bytes(), MimeType: "image/png"}

	knobs, err := knobsFromMetallicRoughness(tex, false)
	require.NoError(t, err)

	pixels, w, h, err := knobs.Decode()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), w)
	assert.Equal(t, uint32(1), h)
	assert.Equal(t, byte(30), pixels[0], "metalness moves to red")
	assert.Equal(t, byte(200), pixels[1], "roughness stays in green")
	assert.Equal(t, byte(255), pixels[2], "flatness saturated without a normal map")

	withNormal, err := knobsFromMetallicRoughness(tex, true)
	require.NoError(t, err)
	pixels, _, _, err = withNormal.Decode()
	require.NoError(t, err)
	assert.Equal(t, byte(0), pixels[2], "flatness cleared when a normal map is present")
}
