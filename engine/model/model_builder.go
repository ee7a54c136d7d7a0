package model

import (
	"github.com/parallax3d/parallax/common"
	"github.com/parallax3d/parallax/engine/renderer/bind_group_provider"
	"github.com/parallax3d/parallax/engine/renderer/material"
)

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithImportedMaterials is an option builder that sets the raw imported materials of the Model.
//
// Parameters:
//   - materials: the imported materials to set
//
// Returns:
//   - ModelBuilderOption: a function that applies the imported materials option to a model
func WithImportedMaterials(materials []common.ImportedMaterial) ModelBuilderOption {
	return func(m *model) {
		m.importedMaterials = materials
	}
}

// WithMeshProvider is an option builder that sets the BindGroupProvider for mesh GPU resources.
//
// Parameters:
//   - provider: the BindGroupProvider holding vertex/index buffers and bind group data
//
// Returns:
//   - ModelBuilderOption: a function that applies the mesh provider option to a model
func WithMeshProvider(provider bind_group_provider.BindGroupProvider) ModelBuilderOption {
	return func(m *model) {
		m.meshProvider = provider
	}
}

// WithBoundingRadius is an option builder that manually sets the bounding sphere radius.
// Use this to override the auto-computed value from ComputeBoundingRadius when a manually
// tuned conservative bound is preferred.
//
// Parameters:
//   - radius: the bounding radius to set
//
// Returns:
//   - ModelBuilderOption: a function that applies the bounding radius option to a model
func WithBoundingRadius(radius float32) ModelBuilderOption {
	return func(m *model) {
		m.boundingRadius = radius
	}
}

// WithRenderMaterials is an option builder that sets the render-ready materials for the Model.
// These are GPU-configured Material instances used during DrawCalls.
//
// Parameters:
//   - mats: the render-ready materials to set
//
// Returns:
//   - ModelBuilderOption: a function that applies the render materials option to a model
func WithRenderMaterials(mats ...material.Material) ModelBuilderOption {
	return func(m *model) {
		m.renderMaterials = mats
	}
}

// WithPrimitives is an option builder that sets the per-material index ranges
// of the merged mesh.
//
// Parameters:
//   - primitives: the primitives to set, in draw order
//
// Returns:
//   - ModelBuilderOption: a function that applies the primitives option to a model
func WithPrimitives(primitives []Primitive) ModelBuilderOption {
	return func(m *model) {
		m.primitives = primitives
	}
}

// WithVertexData is an option builder that sets the raw vertex data for this model's mesh.
//
// Parameters:
//   - data: the vertex data to set
//
// Returns:
//   - ModelBuilderOption: a function that applies the vertex data option to a model
func WithVertexData(data []byte) ModelBuilderOption {
	return func(m *model) {
		m.vertexData = data
	}
}

// WithIndexData is an option builder that sets the raw index data for this model's mesh.
//
// Parameters:
//   - data: the index data to set
//
// Returns:
//   - ModelBuilderOption: a function that applies the index data option to a model
func WithIndexData(data []byte) ModelBuilderOption {
	return func(m *model) {
		m.indexData = data
	}
}

// WithIndexCount is an option builder that sets the number of indices in the model's mesh.
//
// Parameters:
//   - count: the index count to set
//
// Returns:
//   - ModelBuilderOption: a function that applies the index count option to a model
func WithIndexCount(count int) ModelBuilderOption {
	return func(m *model) {
		m.indexCount = count
	}
}
