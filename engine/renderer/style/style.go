// Package style implements the rendering-style orchestration layer: compiled
// pipeline-state objects per pipeline family, the dirty-tracked uniform block
// update protocol, material and environment binding, the sky background
// renderer, and stereo draw sequencing. It sits between the scene layer
// (which decides what to draw) and the renderer facade (which records GPU
// commands).
package style

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/parallax3d/parallax/common"
	"github.com/parallax3d/parallax/engine/renderer/bind_group_provider"
	"github.com/parallax3d/parallax/engine/renderer/pipeline"
)

// Style defines the capability interface over interchangeable pipeline
// families. Each implementation compiles its own pipeline-state objects at
// construction, constructs the default input state its draws consume, and
// exposes a typed draw surface. Callers hold a Style (or a concrete style
// interface embedding it) and never downcast to the implementation.
type Style interface {
	// Name retrieves the style identifier, used as the prefix for pipeline keys
	// and GPU resource labels.
	//
	// Returns:
	//   - string: the style name
	Name() string

	// Pipelines retrieves every pipeline-state object this style compiled and
	// registered during construction.
	//
	// Returns:
	//   - []pipeline.Pipeline: the registered pipelines
	Pipelines() []pipeline.Pipeline
}

// DrawRecorder is the subset of the renderer surface the style layer uses at
// draw time: staged uniform uploads ordered before the frame's submission,
// per-eye viewport/scissor restriction, and indexed draw recording.
type DrawRecorder interface {
	// WriteBuffers writes all staged buffer writes to the GPU queue, ordered
	// before any command buffer submitted afterwards in the same frame.
	//
	// Parameters:
	//   - writes: a slice of BufferWrite structs describing the data to write
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// SetViewport restricts subsequent draws in the current pass to the given
	// surface region. A zero-size rect restores the full surface.
	//
	// Parameters:
	//   - rect: the viewport region in surface pixels
	SetViewport(rect common.Rect)

	// SetScissor restricts rasterization in the current pass to the given
	// surface region. A zero-size rect restores the full surface.
	//
	// Parameters:
	//   - rect: the scissor region in surface pixels
	SetScissor(rect common.Rect)

	// DrawCall records a single instanced draw command in the current pass.
	//
	// Parameters:
	//   - pipelineKey: the key of the registered pipeline to draw with
	//   - meshProvider: the provider holding vertex and index buffers
	//   - indexRange: the slice of the index buffer to draw; zero value draws all indices
	//   - instanceCount: the number of instances to draw
	//   - bindGroups: providers whose bind groups are set in slice order
	//
	// Returns:
	//   - error: an error if the pipeline is not registered
	DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, indexRange common.IndexRange, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error
}

// Renderer is the subset of the engine renderer surface the style layer
// depends on: DrawRecorder plus pipeline registration and GPU resource
// creation. The engine's renderer facade satisfies it; tests substitute a
// recording fake.
type Renderer interface {
	DrawRecorder

	// RegisterPipelines compiles and caches the given pipelines.
	//
	// Parameters:
	//   - pipelines: the pipelines to register
	//
	// Returns:
	//   - error: an error if pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// InitMeshBuffers creates GPU vertex and index buffers on the provider.
	//
	// Parameters:
	//   - provider: the provider to store the created buffers on
	//   - vertexData: the raw vertex bytes
	//   - indexData: the raw index bytes
	//   - indexCount: the number of indices
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup creates GPU buffers and a bind group on the provider from
	// a layout descriptor.
	//
	// Parameters:
	//   - provider: the provider to store the created bind group on
	//   - descriptor: the layout descriptor defining the bind group entries
	//   - bufferUsageOverrides: extra buffer usage flags keyed by binding (nil safe)
	//   - bufferSizeOverrides: buffer size overrides keyed by binding (nil safe)
	//
	// Returns:
	//   - error: an error if bind group creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error

	// InitTextureView creates a GPU texture from staging data and stores its
	// view on the provider at the given binding.
	//
	// Parameters:
	//   - provider: the provider to store the created view on
	//   - bindingKey: the binding index for this texture
	//   - stagingData: the pixel data, format, and mip chain
	//
	// Returns:
	//   - error: an error if texture creation fails
	InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error

	// InitCubeTextureView creates a GPU cube texture from six face staging
	// datas and stores a cube-dimension view on the provider.
	//
	// Parameters:
	//   - provider: the provider to store the created view on
	//   - bindingKey: the binding index for this texture
	//   - faces: the six face staging datas in +X,-X,+Y,-Y,+Z,-Z order
	//
	// Returns:
	//   - error: an error if texture creation fails
	InitCubeTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, faces [6]common.TextureStagingData) error

	// InitSampler creates a GPU sampler and stores it on the provider at the
	// given binding.
	//
	// Parameters:
	//   - provider: the provider to store the created sampler on
	//   - bindingKey: the binding index for this sampler
	//   - samplerStagingData: the sampler configuration
	//
	// Returns:
	//   - error: an error if sampler creation fails
	InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error

	// CreateShadowDepthTexture creates a single-sample Depth32Float texture
	// and view for shadow mapping.
	//
	// Parameters:
	//   - width: shadow map width in texels
	//   - height: shadow map height in texels
	//
	// Returns:
	//   - *wgpu.TextureView: the depth texture view
	//   - *wgpu.Texture: the underlying texture
	//   - error: an error if texture creation fails
	CreateShadowDepthTexture(width, height int) (*wgpu.TextureView, *wgpu.Texture, error)

	// CreateComparisonSampler creates a comparison sampler for PCF shadow reads.
	//
	// Returns:
	//   - *wgpu.Sampler: the comparison sampler
	//   - error: an error if sampler creation fails
	CreateComparisonSampler() (*wgpu.Sampler, error)
}
