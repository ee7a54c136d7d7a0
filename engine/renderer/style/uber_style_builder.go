package style

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/parallax3d/parallax/common"
	"github.com/parallax3d/parallax/engine/renderer/pipeline"
	"github.com/parallax3d/parallax/engine/renderer/shader"
)

// uberStyleConfig collects the construction-time options for NewUberStyle.
type uberStyleConfig struct {
	name          string
	shadowMapSize int
	defines       []shader.Define
	brdfLookup    *common.TextureStagingData
	pipelineOpts  []pipeline.PipelineBuilderOption
}

// UberStyleOption defines a functional option for configuring the uber style
// during creation.
type UberStyleOption func(*uberStyleConfig)

// WithStyleName overrides the style name, which prefixes pipeline keys and
// GPU resource labels.
//
// Parameters:
//   - name: the style name
//
// Returns:
//   - UberStyleOption: a functional option for configuring the style
func WithStyleName(name string) UberStyleOption {
	return func(cfg *uberStyleConfig) {
		cfg.name = name
	}
}

// WithShadowMapSize overrides the shadow map edge length in texels.
//
// Parameters:
//   - size: the shadow map width and height
//
// Returns:
//   - UberStyleOption: a functional option for configuring the style
func WithShadowMapSize(size int) UberStyleOption {
	return func(cfg *uberStyleConfig) {
		cfg.shadowMapSize = size
	}
}

// WithShaderDefines adds pre-processor defines applied to every shader the
// style compiles.
//
// Parameters:
//   - defines: the defines to add
//
// Returns:
//   - UberStyleOption: a functional option for configuring the style
func WithShaderDefines(defines ...shader.Define) UberStyleOption {
	return func(cfg *uberStyleConfig) {
		cfg.defines = append(cfg.defines, defines...)
	}
}

// WithBRDFLookup supplies a precomputed split-sum BRDF lookup table instead
// of the built-in single-texel fallback.
//
// Parameters:
//   - staging: the lookup table's staging data
//
// Returns:
//   - UberStyleOption: a functional option for configuring the style
func WithBRDFLookup(staging common.TextureStagingData) UberStyleOption {
	return func(cfg *uberStyleConfig) {
		cfg.brdfLookup = &staging
	}
}

// WithForegroundTopology overrides the foreground pipeline's primitive
// topology.
//
// Parameters:
//   - topology: the primitive topology
//
// Returns:
//   - UberStyleOption: a functional option for configuring the style
func WithForegroundTopology(topology wgpu.PrimitiveTopology) UberStyleOption {
	return func(cfg *uberStyleConfig) {
		cfg.pipelineOpts = append(cfg.pipelineOpts, pipeline.WithTopology(topology))
	}
}

// WithForegroundCullMode overrides the foreground pipeline's cull mode.
//
// Parameters:
//   - mode: the cull mode
//
// Returns:
//   - UberStyleOption: a functional option for configuring the style
func WithForegroundCullMode(mode wgpu.CullMode) UberStyleOption {
	return func(cfg *uberStyleConfig) {
		cfg.pipelineOpts = append(cfg.pipelineOpts, pipeline.WithCullMode(mode))
	}
}

// WithForegroundFrontFace overrides the foreground pipeline's front-face
// winding.
//
// Parameters:
//   - frontFace: the front-face winding
//
// Returns:
//   - UberStyleOption: a functional option for configuring the style
func WithForegroundFrontFace(frontFace wgpu.FrontFace) UberStyleOption {
	return func(cfg *uberStyleConfig) {
		cfg.pipelineOpts = append(cfg.pipelineOpts, pipeline.WithFrontFace(frontFace))
	}
}
