package model

import (
	"github.com/parallax3d/parallax/common"
)

// --- Import Types ---

// ImportedModel represents a 3D model loaded from an external format.
// This is the universal format that importers (glTF, etc.) produce.
type ImportedModel struct {
	// Name is the model identifier.
	Name string

	// Meshes contains all mesh data (may have multiple meshes/submeshes).
	Meshes []ImportedMesh

	// Materials are referenced materials (indices into a material library).
	Materials []common.ImportedMaterial
}

// ImportedMesh represents a single mesh within an imported model.
type ImportedMesh struct {
	// Name is the mesh identifier.
	Name string

	// Vertices are the mesh vertices.
	Vertices []GPUVertex

	// Indices are the triangle indices.
	Indices []uint32

	// MaterialIndex references ImportedModel.Materials.
	MaterialIndex int

	// BoundingMin is the minimum corner of the axis-aligned bounding box.
	BoundingMin [3]float32

	// BoundingMax is the maximum corner of the axis-aligned bounding box.
	BoundingMax [3]float32
}
