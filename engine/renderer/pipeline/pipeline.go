package pipeline

import (
	"github.com/parallax3d/parallax/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineType identifies whether a pipeline renders to color targets or is a
// depth-only shadow pipeline.
type PipelineType int

const (
	// PipelineTypeRender indicates a render pipeline with vertex and fragment shader entry points.
	PipelineTypeRender PipelineType = iota

	// PipelineTypeShadow indicates a depth-only pipeline with a vertex shader and no color targets.
	PipelineTypeShadow
)

// pipeline is the implementation of the Pipeline interface.
// It holds the underlying WebGPU pipeline object and related data.
type pipeline struct {
	// pipelineType indicates the type of pipeline this is; render or shadow
	pipelineType PipelineType
	// pipelineKey is the unique identifier for this pipeline, used for caching and lookups
	pipelineKey string

	// the following shader references are used for pipeline creation and material binding.
	// Render pipelines require both; shadow pipelines only set the vertex shader.

	vertexShader, fragmentShader shader.Shader

	// renderPipeline is the compiled WebGPU pipeline, set by the renderer backend after creation
	renderPipeline *wgpu.RenderPipeline

	// The following properties configure fixed-function state during pipeline creation
	// and can be set with the builder options.

	depthTestEnabled    bool
	depthWriteEnabled   bool
	depthCompare        wgpu.CompareFunction
	depthBias           int32
	depthBiasSlopeScale float32
	blendEnabled        bool
	cullMode            wgpu.CullMode
	topology            wgpu.PrimitiveTopology
	frontFace           wgpu.FrontFace
	writeMask           wgpu.ColorWriteMask
	blendState          *wgpu.BlendState
}

// Pipeline defines the interface for an immutable GPU pipeline-state object: shaders plus
// all fixed-function configuration (depth, blend, cull, topology) captured at creation.
// Once the backend has compiled the underlying wgpu pipeline, the state is never mutated;
// per-draw variation is limited to bind groups, vertex buffers, and viewport/scissor rects.
type Pipeline interface {
	// Type returns the type of the pipeline
	//
	// Returns:
	//   - PipelineType: the type of the pipeline (render or shadow)
	Type() PipelineType

	// PipelineKey returns the unique key associated with this pipeline, used for caching and lookups.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Shader retrieves the shader associated with the specified type if it exists, nil otherwise.
	//
	// Parameters:
	//   - shaderType: the type of shader to retrieve (vertex or fragment)
	//
	// Returns:
	//   - shader.Shader: the shader associated with the specified type, or nil if not set
	Shader(shaderType shader.ShaderType) shader.Shader

	// Pipeline returns the underlying compiled pipeline object, or nil before the
	// renderer backend has created it.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the underlying pipeline object.
	Pipeline() *wgpu.RenderPipeline

	// DepthTestEnabled returns whether depth testing is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if depth testing is enabled, false otherwise
	DepthTestEnabled() bool

	// DepthWriteEnabled returns whether depth writing is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if depth writing is enabled, false otherwise
	DepthWriteEnabled() bool

	// DepthCompare returns the depth comparison function for this pipeline.
	// Ignored when depth testing is disabled.
	//
	// Returns:
	//   - wgpu.CompareFunction: the depth comparison function
	DepthCompare() wgpu.CompareFunction

	// DepthBias returns the depth bias value configured for this pipeline.
	//
	// Returns:
	//   - int32: the depth bias value for this pipeline
	DepthBias() int32

	// DepthBiasSlopeScale returns the depth bias slope scale configured for this pipeline.
	//
	// Returns:
	//   - float32: the depth bias slope scale for this pipeline
	DepthBiasSlopeScale() float32

	// BlendEnabled returns whether blending is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if blending is enabled, false otherwise
	BlendEnabled() bool

	// CullMode returns the cull mode configured for this pipeline.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode for this pipeline (e.g., wgpu.CullModeNone, wgpu.CullModeFront, wgpu.CullModeBack)
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology configured for this pipeline.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: the primitive topology for this pipeline (e.g., wgpu.PrimitiveTopologyTriangleList)
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order configured for this pipeline.
	//
	// Returns:
	//   - wgpu.FrontFace: the front face winding order for this pipeline (e.g., wgpu.FrontFaceCCW, wgpu.FrontFaceCW)
	FrontFace() wgpu.FrontFace

	// WriteMask returns the color write mask configured for this pipeline.
	//
	// Returns:
	//   - wgpu.ColorWriteMask: the color write mask for this pipeline (e.g., wgpu.ColorWriteMaskAll)
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the blend state configured for this pipeline.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state for this pipeline, or nil if blending is not enabled
	BlendState() *wgpu.BlendState

	// SetRenderPipeline sets the compiled pipeline object. Called once by the
	// renderer backend after creation.
	//
	// Parameters:
	//   - p: the WebGPU render pipeline to set
	SetRenderPipeline(p *wgpu.RenderPipeline)
}

var _ Pipeline = &pipeline{}

// NewPipeline is the entry point to create a new Pipeline interface. A PipelineType must be specified and provided upon creation.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - pipelineType: the type of pipeline to create (render or shadow)
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance with the specified type and configuration
func NewPipeline(pipelineKey string, pipelineType PipelineType, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:       pipelineKey,
		pipelineType:      pipelineType,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		depthCompare:      wgpu.CompareFunctionLessEqual,
		blendEnabled:      false,
		cullMode:          wgpu.CullModeNone,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) Type() PipelineType {
	return p.pipelineType
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Pipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) DepthCompare() wgpu.CompareFunction {
	return p.depthCompare
}

func (p *pipeline) DepthBias() int32 {
	return p.depthBias
}

func (p *pipeline) DepthBiasSlopeScale() float32 {
	return p.depthBiasSlopeScale
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	default:
		return nil
	}
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}
