package model

import (
	"github.com/parallax3d/parallax/common"
	"github.com/parallax3d/parallax/engine/renderer/bind_group_provider"
	"github.com/parallax3d/parallax/engine/renderer/material"
)

// Primitive is one contiguous slice of a model's merged index buffer drawn
// with a single material. Loaders record one per imported mesh primitive so
// multi-material models draw each region with its own material.
type Primitive struct {
	// Indices selects the primitive's slice of the merged index buffer.
	Indices common.IndexRange

	// MaterialIndex references Model.RenderMaterials.
	MaterialIndex int
}

// model is the implementation of the Model interface.
type model struct {
	name                  string
	importedMaterials     []common.ImportedMaterial
	renderMaterials       []material.Material
	primitives            []Primitive
	meshProvider          bind_group_provider.BindGroupProvider
	boundingRadius        float32
	vertexData, indexData []byte
	indexCount            int
}

// Model defines the interface for a loaded 3D model.
// A Model is a GPU-ready container holding mesh data via a BindGroupProvider
// and material properties. It is produced by the Loader after importing and
// processing a model file.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// ImportedMaterials retrieves the raw material properties imported from the model file.
	//
	// Returns:
	//   - []common.ImportedMaterial: the imported materials
	ImportedMaterials() []common.ImportedMaterial

	// MeshProvider retrieves the BindGroupProvider holding GPU mesh resources.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the mesh provider
	MeshProvider() bind_group_provider.BindGroupProvider

	// VertexData returns the raw vertex data for this model's mesh.
	//
	// Returns:
	//   - []byte: the vertex data
	VertexData() []byte

	// IndexData returns the raw index data for this model's mesh.
	//
	// Returns:
	//   - []byte: the index data
	IndexData() []byte

	// IndexCount returns the number of indices in the model's mesh.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// RenderMaterials retrieves the render-ready materials for this model.
	// These are GPU-configured Material instances used during DrawCalls,
	// as opposed to the raw common.ImportedMaterial data from the loader.
	//
	// Returns:
	//   - []material.Material: the render-ready materials
	RenderMaterials() []material.Material

	// SetRenderMaterials replaces the render-ready material list for this model.
	//
	// Parameters:
	//   - mats: the render-ready materials to set
	SetRenderMaterials(mats []material.Material)

	// Primitives retrieves the per-material index ranges of the merged mesh.
	// Empty for single-material models built without submesh structure; such
	// models draw their whole index buffer with each render material.
	//
	// Returns:
	//   - []Primitive: the primitives in draw order
	Primitives() []Primitive

	// SetPrimitives replaces the per-material index range list.
	//
	// Parameters:
	//   - primitives: the primitives to set, in draw order
	SetPrimitives(primitives []Primitive)

	// BoundingRadius returns the bounding sphere radius for this model, measured as
	// the maximum vertex distance from the origin. Used by frustum culling.
	//
	// Returns:
	//   - float32: the bounding radius
	BoundingRadius() float32

	// SetVertexData sets the raw vertex data for this model's mesh.
	//
	// Parameters:
	//   - data: the vertex data to set
	SetVertexData(data []byte)

	// SetIndexData sets the raw index data for this model's mesh.
	//
	// Parameters:
	//   - data: the index data to set
	SetIndexData(data []byte)

	// SetIndexCount sets the number of indices in the model's mesh.
	//
	// Parameters:
	//   - count: the index count to set
	SetIndexCount(count int)
}

var _ Model = &model{}

// NewModel creates a new Model instance with the specified options applied.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: a new instance of Model configured with the provided options
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) ImportedMaterials() []common.ImportedMaterial {
	return m.importedMaterials
}

func (m *model) MeshProvider() bind_group_provider.BindGroupProvider {
	return m.meshProvider
}

func (m *model) VertexData() []byte {
	return m.vertexData
}

func (m *model) SetVertexData(data []byte) {
	m.vertexData = data
}

func (m *model) IndexData() []byte {
	return m.indexData
}

func (m *model) SetIndexData(data []byte) {
	m.indexData = data
}

func (m *model) IndexCount() int {
	return m.indexCount
}

func (m *model) SetIndexCount(count int) {
	m.indexCount = count
}

func (m *model) RenderMaterials() []material.Material {
	return m.renderMaterials
}

func (m *model) SetRenderMaterials(mats []material.Material) {
	m.renderMaterials = mats
}

func (m *model) Primitives() []Primitive {
	return m.primitives
}

func (m *model) SetPrimitives(primitives []Primitive) {
	m.primitives = primitives
}

func (m *model) BoundingRadius() float32 {
	return m.boundingRadius
}
