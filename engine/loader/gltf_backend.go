package loader

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"path/filepath"

	_ "image/jpeg"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/parallax3d/parallax/common"
	"github.com/parallax3d/parallax/engine/model"
)

// gltfBackend is a loaderBackend implementation for glTF/GLB files built on
// qmuntal/gltf. It extracts mesh primitives into GPUVertex data and maps glTF
// PBR metallic-roughness materials onto the engine's material model.
type gltfBackend struct{}

var _ loaderBackend = &gltfBackend{}

// newGLTFBackend creates a new glTF loader backend.
//
// Returns:
//   - loaderBackend: the loader backend for glTF/GLB files
func newGLTFBackend() loaderBackend {
	return &gltfBackend{}
}

func (b *gltfBackend) Load(path string) (*model.ImportedModel, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	return b.extract(doc, filepath.Dir(path), path)
}

func (b *gltfBackend) LoadReader(r io.Reader) (*model.ImportedModel, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("gltf decode: %w", err)
	}
	return b.extract(doc, "", "")
}

// extract walks the document and produces the CPU-side imported model:
// every mesh primitive becomes an ImportedMesh, every material an
// ImportedMaterial with its textures resolved to bytes or file paths.
func (b *gltfBackend) extract(doc *gltf.Document, baseDir, fallbackPath string) (*model.ImportedModel, error) {
	textures, err := b.extractTextures(doc, baseDir)
	if err != nil {
		return nil, err
	}

	materials, err := b.extractMaterials(doc, textures)
	if err != nil {
		return nil, err
	}

	var meshes []model.ImportedMesh
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			mesh, err := b.extractPrimitive(doc, gm.Name, mi, pi, prim)
			if err != nil {
				return nil, fmt.Errorf("mesh %d primitive %d: %w", mi, pi, err)
			}
			meshes = append(meshes, mesh)
		}
	}

	return &model.ImportedModel{
		Name:      gltfModelName(doc, fallbackPath),
		Meshes:    meshes,
		Materials: materials,
	}, nil
}

// extractTextures resolves each glTF texture to an ImportedTexture holding
// either in-memory image bytes (GLB buffer views, embedded data URIs) or an
// on-disk path. Entries stay nil for textures without a usable source.
func (b *gltfBackend) extractTextures(doc *gltf.Document, baseDir string) ([]*common.ImportedTexture, error) {
	textures := make([]*common.ImportedTexture, len(doc.Textures))
	for i, gt := range doc.Textures {
		if gt.Source == nil || int(*gt.Source) >= len(doc.Images) {
			continue
		}
		img := doc.Images[*gt.Source]

		name := img.Name
		if name == "" {
			name = fmt.Sprintf("texture_%d", i)
		}

		tex := &common.ImportedTexture{
			Name:     name,
			MimeType: img.MimeType,
		}

		switch {
		case img.BufferView != nil:
			raw, err := modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
			if err != nil {
				return nil, fmt.Errorf("texture %d buffer view: %w", i, err)
			}
			tex.Data = raw
		case img.IsEmbeddedResource():
			raw, err := img.MarshalData()
			if err != nil {
				return nil, fmt.Errorf("texture %d embedded data: %w", i, err)
			}
			tex.Data = raw
		case img.URI != "":
			tex.Path = filepath.Join(baseDir, img.URI)
		default:
			continue
		}

		textures[i] = tex
	}
	return textures, nil
}

// extractMaterials maps glTF PBR metallic-roughness materials onto
// ImportedMaterial. The metallic-roughness texture is repacked into the
// engine's knobs channel layout.
func (b *gltfBackend) extractMaterials(doc *gltf.Document, textures []*common.ImportedTexture) ([]common.ImportedMaterial, error) {
	lookup := func(idx int) *common.ImportedTexture {
		if idx < 0 || idx >= len(textures) {
			return nil
		}
		return textures[idx]
	}

	materials := make([]common.ImportedMaterial, len(doc.Materials))
	for i, gm := range doc.Materials {
		mat := common.ImportedMaterial{
			Name:      gm.Name,
			BaseColor: [4]float32{1, 1, 1, 1},
			Metalness: 1,
			Roughness: 1,
		}
		if mat.Name == "" {
			mat.Name = fmt.Sprintf("material_%d", i)
		}

		if gm.NormalTexture != nil && gm.NormalTexture.Index != nil {
			mat.NormalTexture = lookup(*gm.NormalTexture.Index)
		}

		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			cf := pbr.BaseColorFactorOrDefault()
			mat.BaseColor = [4]float32{
				float32(cf[0]), float32(cf[1]), float32(cf[2]), float32(cf[3]),
			}
			mat.Metalness = float32(pbr.MetallicFactorOrDefault())
			mat.Roughness = float32(pbr.RoughnessFactorOrDefault())

			if pbr.BaseColorTexture != nil {
				mat.AlbedoTexture = lookup(pbr.BaseColorTexture.Index)
			}
			if pbr.MetallicRoughnessTexture != nil {
				if src := lookup(pbr.MetallicRoughnessTexture.Index); src != nil {
					knobs, err := knobsFromMetallicRoughness(src, mat.NormalTexture != nil)
					if err != nil {
						return nil, fmt.Errorf("material %q knobs: %w", mat.Name, err)
					}
					mat.KnobsTexture = knobs
				}
			}
		}

		materials[i] = mat
	}
	return materials, nil
}

// extractPrimitive converts one glTF mesh primitive into an ImportedMesh.
// Positions are required; missing normals default to +Y and missing tangents
// to +X so the vertex layout stays uniform.
func (b *gltfBackend) extractPrimitive(doc *gltf.Document, meshName string, meshIdx, primIdx int, prim *gltf.Primitive) (model.ImportedMesh, error) {
	name := meshName
	if name == "" {
		name = fmt.Sprintf("mesh_%d", meshIdx)
	}
	name = fmt.Sprintf("%s_p%d", name, primIdx)

	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return model.ImportedMesh{}, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return model.ImportedMesh{}, fmt.Errorf("positions: %w", err)
	}
	if len(positions) == 0 {
		return model.ImportedMesh{}, fmt.Errorf("empty POSITION accessor")
	}

	var normals [][3]float32
	var uvs [][2]float32
	var tangents [][4]float32

	if idx, ok := prim.Attributes["NORMAL"]; ok {
		normals, _ = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
	}
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, _ = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
	}
	if idx, ok := prim.Attributes["TANGENT"]; ok {
		tangents, _ = modeler.ReadTangent(doc, doc.Accessors[idx], nil)
	}

	boundsMin := [3]float32{positions[0][0], positions[0][1], positions[0][2]}
	boundsMax := boundsMin

	vertices := make([]model.GPUVertex, len(positions))
	for i, p := range positions {
		v := model.GPUVertex{
			Position: p,
			Normal:   [3]float32{0, 1, 0},
			Tangent:  [4]float32{1, 0, 0, 1},
		}
		if i < len(normals) {
			v.Normal = normals[i]
		}
		if i < len(uvs) {
			v.TexCoord = uvs[i]
		}
		if i < len(tangents) {
			v.Tangent = tangents[i]
		}
		vertices[i] = v

		for axis := 0; axis < 3; axis++ {
			if p[axis] < boundsMin[axis] {
				boundsMin[axis] = p[axis]
			}
			if p[axis] > boundsMax[axis] {
				boundsMax[axis] = p[axis]
			}
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return model.ImportedMesh{}, fmt.Errorf("indices: %w", err)
		}
	} else {
		// Non-indexed primitive: synthesize a trivial index list.
		indices = make([]uint32, len(vertices))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	materialIndex := 0
	if prim.Material != nil {
		materialIndex = *prim.Material
	}

	return model.ImportedMesh{
		Name:          name,
		Vertices:      vertices,
		Indices:       indices,
		MaterialIndex: materialIndex,
		BoundingMin:   boundsMin,
		BoundingMax:   boundsMax,
	}, nil
}

// knobsFromMetallicRoughness repacks a glTF metallic-roughness texture
// (roughness in G, metallic in B) into the engine's knobs layout: metalness
// in R, roughness in G, flatness in B. Flatness is cleared when the material
// carries a normal map and saturated otherwise.
func knobsFromMetallicRoughness(src *common.ImportedTexture, hasNormalMap bool) (*common.ImportedTexture, error) {
	pixels, width, height, err := src.Decode()
	if err != nil {
		return nil, err
	}

	flatness := byte(255)
	if hasNormalMap {
		flatness = 0
	}

	rgba := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	for i := 0; i+3 < len(pixels); i += 4 {
		rgba.Pix[i+0] = pixels[i+2] // metalness from glTF blue
		rgba.Pix[i+1] = pixels[i+1] // roughness stays in green
		rgba.Pix[i+2] = flatness
		rgba.Pix[i+3] = 255
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, rgba); err != nil {
		return nil, fmt.Errorf("encode knobs texture: %w", err)
	}

	return &common.ImportedTexture{
		Name:     src.Name + "_knobs",
		Data:     buf.Bytes(),
		MimeType: "image/png",
	}, nil
}

// gltfModelName derives a model name from the document's default scene or a
// file path fallback.
func gltfModelName(doc *gltf.Document, fallbackPath string) string {
	if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
		if name := doc.Scenes[*doc.Scene].Name; name != "" {
			return name
		}
	}
	if fallbackPath != "" {
		return fallbackPath
	}
	return "unnamed_model"
}
