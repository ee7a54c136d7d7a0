package material

import (
	"github.com/parallax3d/parallax/common"
	"github.com/parallax3d/parallax/engine/renderer/bind_group_provider"
)

// material is the implementation of the Material interface.
type material struct {
	name              string
	baseColor         [4]float32
	metalness         float32
	roughness         float32
	normalTexture     *common.ImportedTexture
	albedoTexture     *common.ImportedTexture
	knobsTexture      *common.ImportedTexture
	pipelineKey       string
	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Material defines the interface for a render material, encapsulating surface
// properties, texture references, and GPU resource bindings needed for draw calls.
//
// A material always resolves to three surface maps: a normal map, an albedo map,
// and a knobs map packing metalness (R), roughness (G), and flatness (B). When a
// texture reference is absent, the corresponding map is baked from the material's
// scalar properties as a 1x1 solid texture during GPU initialization.
//
// Surface properties (name, base color, metalness, roughness, textures) are set at
// load time and are read-only through this interface. GPU resource references
// (pipeline key, bind group provider) are mutable so they can be configured after
// construction during the Loader GPU-init phase.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// BaseColor retrieves the albedo RGBA color of the material.
	//
	// Returns:
	//   - [4]float32: the base color as RGBA values
	BaseColor() [4]float32

	// Metalness retrieves the metalness factor of the material.
	// A value of 0.0 represents a dielectric surface, 1.0 represents a fully metallic surface.
	//
	// Returns:
	//   - float32: the metalness factor
	Metalness() float32

	// Roughness retrieves the roughness factor of the material.
	// A value of 0.0 represents a perfectly smooth surface, 1.0 represents a fully rough surface.
	//
	// Returns:
	//   - float32: the roughness factor
	Roughness() float32

	// NormalTexture retrieves the tangent-space normal map reference, or nil if none is set.
	//
	// Returns:
	//   - *common.ImportedTexture: the normal texture, or nil
	NormalTexture() *common.ImportedTexture

	// AlbedoTexture retrieves the albedo texture reference, or nil if none is set.
	//
	// Returns:
	//   - *common.ImportedTexture: the albedo texture, or nil
	AlbedoTexture() *common.ImportedTexture

	// KnobsTexture retrieves the packed metalness/roughness/flatness texture reference, or nil if none is set.
	//
	// Returns:
	//   - *common.ImportedTexture: the knobs texture, or nil
	KnobsTexture() *common.ImportedTexture

	// NormalStaging resolves the normal map to texture staging data, decoding the
	// assigned texture or baking a 1x1 flat normal when none is set.
	//
	// Returns:
	//   - common.TextureStagingData: linear RGBA8 staging data for the normal map
	//   - error: an error if an assigned texture could not be decoded
	NormalStaging() (common.TextureStagingData, error)

	// AlbedoStaging resolves the albedo map to texture staging data, decoding the
	// assigned texture or baking the base color as a 1x1 solid when none is set.
	//
	// Returns:
	//   - common.TextureStagingData: sRGB RGBA8 staging data for the albedo map
	//   - error: an error if an assigned texture could not be decoded
	AlbedoStaging() (common.TextureStagingData, error)

	// KnobsStaging resolves the knobs map to texture staging data, decoding the
	// assigned texture or baking the metalness/roughness factors as a 1x1 solid
	// when none is set. The baked flatness channel is 0 when a normal map is
	// assigned and 1 otherwise.
	//
	// Returns:
	//   - common.TextureStagingData: linear RGBA8 staging data for the knobs map
	//   - error: an error if an assigned texture could not be decoded
	KnobsStaging() (common.TextureStagingData, error)

	// PipelineKey retrieves the key identifying the render pipeline this material uses.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// BindGroupProvider retrieves the bind group provider holding GPU-side resources for this material.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the bind group provider, or nil if not yet initialized
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// SetPipelineKey sets the render pipeline key for this material.
	//
	// Parameters:
	//   - key: the pipeline key to associate with this material
	SetPipelineKey(key string)

	// SetBindGroupProvider sets the bind group provider for this material.
	//
	// Parameters:
	//   - provider: the bind group provider containing GPU resources for this material
	SetBindGroupProvider(provider bind_group_provider.BindGroupProvider)
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided options.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		baseColor: [4]float32{1, 1, 1, 1},
		metalness: 0.0,
		roughness: 1.0,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// NewMaterialFromImported creates a Material from imported material data produced
// by the asset loader, carrying over the scalar factors and texture references.
//
// Parameters:
//   - imported: the imported material data
//
// Returns:
//   - Material: a new Material instance mirroring the imported data
func NewMaterialFromImported(imported common.ImportedMaterial) Material {
	return NewMaterial(
		WithName(imported.Name),
		WithBaseColor(imported.BaseColor),
		WithMetalness(imported.Metalness),
		WithRoughness(imported.Roughness),
		WithNormalTexture(imported.NormalTexture),
		WithAlbedoTexture(imported.AlbedoTexture),
		WithKnobsTexture(imported.KnobsTexture),
	)
}

func (m *material) Name() string {
	return m.name
}

func (m *material) BaseColor() [4]float32 {
	return m.baseColor
}

func (m *material) Metalness() float32 {
	return m.metalness
}

func (m *material) Roughness() float32 {
	return m.roughness
}

func (m *material) NormalTexture() *common.ImportedTexture {
	return m.normalTexture
}

func (m *material) AlbedoTexture() *common.ImportedTexture {
	return m.albedoTexture
}

func (m *material) KnobsTexture() *common.ImportedTexture {
	return m.knobsTexture
}

func (m *material) PipelineKey() string {
	return m.pipelineKey
}

func (m *material) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return m.bindGroupProvider
}

func (m *material) SetPipelineKey(key string) {
	m.pipelineKey = key
}

func (m *material) SetBindGroupProvider(provider bind_group_provider.BindGroupProvider) {
	m.bindGroupProvider = provider
}
