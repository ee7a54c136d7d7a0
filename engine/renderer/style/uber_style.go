package style

import (
	_ "embed"
	"fmt"
	"sort"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/parallax3d/parallax/common"
	"github.com/parallax3d/parallax/engine/model"
	"github.com/parallax3d/parallax/engine/renderer/bind_group_provider"
	"github.com/parallax3d/parallax/engine/renderer/material"
	"github.com/parallax3d/parallax/engine/renderer/pipeline"
	"github.com/parallax3d/parallax/engine/renderer/shader"
	"github.com/parallax3d/parallax/engine/vr"
)

//go:embed assets/uber_vertex.wgsl
var uberVertexSource string

//go:embed assets/uber_fragment.wgsl
var uberFragmentSource string

//go:embed assets/sky_vertex.wgsl
var skyVertexSource string

//go:embed assets/sky_fragment.wgsl
var skyFragmentSource string

//go:embed assets/shadow_vertex.wgsl
var shadowVertexSource string

// DefaultShadowMapSize is the shadow map edge length in texels when no
// override is configured.
const DefaultShadowMapSize = 512

// uberStyle is the implementation of the UberStyle interface.
type uberStyle struct {
	renderer Renderer
	name     string

	pipelines []pipeline.Pipeline

	// Merged group-0 descriptor: the transform/params uniforms are declared
	// in both shader stages, so provider bind groups need the OR'd
	// visibility the pipeline layout was built with.
	uniformDescriptor  wgpu.BindGroupLayoutDescriptor
	materialDescriptor wgpu.BindGroupLayoutDescriptor
	envDescriptor      wgpu.BindGroupLayoutDescriptor
	skyDescriptor      wgpu.BindGroupLayoutDescriptor
	shadowDescriptor   wgpu.BindGroupLayoutDescriptor

	transformBinding       int
	paramsBinding          int
	shadowTransformBinding int

	materialBindings materialBindings
	envBindings      envBindings
	skyCubeBinding   int
	skySamplerBinding int

	// cubeMesh is the unit cube shared by the background draws.
	cubeMesh bind_group_provider.BindGroupProvider

	shadowView    *wgpu.TextureView
	shadowTexture *wgpu.Texture
	shadowSampler *wgpu.Sampler

	// brdf is the split-sum BRDF lookup shared by every environment bind group.
	brdf Texture

	inputs     UberInputs
	background Background
}

// materialBindings holds the group-1 binding indices resolved from the
// fragment shader by variable name.
type materialBindings struct {
	normalTex     int
	normalSampler int
	albedoTex     int
	albedoSampler int
	knobsTex      int
	knobsSampler  int
}

// envBindings holds the group-2 binding indices resolved from the fragment
// shader by variable name.
type envBindings struct {
	irradianceMap     int
	irradianceSampler int
	radianceMap       int
	radianceSampler   int
	brdfMap           int
	brdfSampler       int
	shadowDepth       int
	shadowSampler     int
}

// UberStyle is the physically-based rendering style: one lit foreground
// pipeline, one sky background pipeline, and one depth-only shadow pipeline,
// all compiled and registered at construction together with their default GPU
// resources. Construction either succeeds completely or fails with a typed
// Error and leaves nothing behind to use.
type UberStyle interface {
	Style

	// Inputs retrieves the default input state created at construction.
	//
	// Returns:
	//   - UberInputs: the default input state
	Inputs() UberInputs

	// NewInputs creates an additional input state with its own uniform
	// buffers and bind groups. Draw consumers that must not share uniform
	// buffers within one frame (every upload in a frame lands before the
	// frame's single submission) each take their own instance.
	//
	// Parameters:
	//   - label: the GPU resource label prefix
	//
	// Returns:
	//   - UberInputs: the new input state
	//   - error: an error if GPU resource creation fails
	NewInputs(label string) (UberInputs, error)

	// Background retrieves the sky background renderer.
	//
	// Returns:
	//   - Background: the background renderer
	Background() Background

	// Draw records one foreground draw: flushes the input state's pending
	// uniform writes, restricts the viewport and scissor to the given region,
	// and issues the draw with the uniform, material, and environment bind
	// groups. A transform must have been set on the inputs at least once
	// before the first draw.
	//
	// Parameters:
	//   - inputs: the input state supplying transform and params
	//   - mesh: the provider holding the mesh's vertex and index buffers
	//   - mat: the material, previously initialized via InitMaterial
	//   - indexRange: the slice of the mesh's index buffer this material
	//     covers; the zero value draws the whole mesh
	//   - viewport: the surface region to draw into
	//
	// Returns:
	//   - error: an error if the inputs or material are unusable, or the
	//     draw cannot be recorded
	Draw(inputs UberInputs, mesh bind_group_provider.BindGroupProvider, mat material.Material, indexRange common.IndexRange, viewport common.Rect) error

	// DrawEnvironment records the stereo sky backdrop: exactly two draws,
	// left eye then right eye. See Background.DrawEnvironment.
	//
	// Parameters:
	//   - inputs: the input state supplying the params derivation inputs
	//   - eyes: the per-eye view descriptors, left first
	//
	// Returns:
	//   - error: an error if recording a draw fails
	DrawEnvironment(inputs UberInputs, eyes [2]vr.EyeDescriptor) error

	// InitMaterial uploads the material's textures, creates its samplers and
	// bind group, and stamps the material with this style's pipeline key.
	//
	// Parameters:
	//   - mat: the material to initialize
	//
	// Returns:
	//   - error: an error if texture or bind group creation fails
	InitMaterial(mat material.Material) error

	// NewShadowTransform creates a transform-only uniform provider for the
	// shadow pipeline, whose view and proj slots carry the light's matrices.
	//
	// Parameters:
	//   - label: the GPU resource label prefix
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the shadow uniform provider
	//   - int: the transform buffer's binding index
	//   - error: an error if GPU resource creation fails
	NewShadowTransform(label string) (bind_group_provider.BindGroupProvider, int, error)

	// PipelineKey retrieves the foreground pipeline's registered key.
	//
	// Returns:
	//   - string: the foreground pipeline key
	PipelineKey() string

	// BackgroundPipelineKey retrieves the sky pipeline's registered key.
	//
	// Returns:
	//   - string: the background pipeline key
	BackgroundPipelineKey() string

	// ShadowPipelineKey retrieves the depth-only shadow pipeline's key.
	//
	// Returns:
	//   - string: the shadow pipeline key
	ShadowPipelineKey() string

	// ShadowDepthView retrieves the shadow map depth view the shadow pass
	// renders into and the foreground pass samples from.
	//
	// Returns:
	//   - *wgpu.TextureView: the shadow depth view
	ShadowDepthView() *wgpu.TextureView
}

var _ UberStyle = &uberStyle{}

// NewUberStyle compiles the style's shaders, registers its three pipelines,
// and creates the default GPU resources its draws depend on: the background
// cube mesh, the shadow map and comparison sampler, the BRDF lookup, the
// sky-blue default environment, and the default input state. Any failure is
// returned as a typed Error and no partially constructed style is returned.
//
// Parameters:
//   - r: the renderer the pipelines and resources are created on
//   - options: a variadic list of UberStyleOption functions
//
// Returns:
//   - UberStyle: the constructed style, or nil on error
//   - error: a *Error describing the failed construction step
func NewUberStyle(r Renderer, options ...UberStyleOption) (UberStyle, error) {
	cfg := uberStyleConfig{
		name:          "uber",
		shadowMapSize: DefaultShadowMapSize,
	}
	for _, opt := range options {
		opt(&cfg)
	}

	s := &uberStyle{
		renderer: r,
		name:     cfg.name,
	}

	if err := s.compilePipelines(cfg); err != nil {
		return nil, err
	}
	if err := s.createResources(cfg); err != nil {
		return nil, err
	}

	return s, nil
}

// compilePipelines compiles the five shader modules, resolves every binding
// index the style addresses by variable name, and registers the three
// pipelines.
func (s *uberStyle) compilePipelines(cfg uberStyleConfig) error {
	vert, err := shader.NewShaderFromSource(s.name+"_vertex", shader.ShaderTypeVertex, uberVertexSource, cfg.defines...)
	if err != nil {
		return newError(ErrorKindPipelineCompile, "compile vertex shader", err)
	}
	frag, err := shader.NewShaderFromSource(s.name+"_fragment", shader.ShaderTypeFragment, uberFragmentSource, cfg.defines...)
	if err != nil {
		return newError(ErrorKindPipelineCompile, "compile fragment shader", err)
	}
	skyVert, err := shader.NewShaderFromSource(s.name+"_sky_vertex", shader.ShaderTypeVertex, skyVertexSource, cfg.defines...)
	if err != nil {
		return newError(ErrorKindPipelineCompile, "compile sky vertex shader", err)
	}
	skyFrag, err := shader.NewShaderFromSource(s.name+"_sky_fragment", shader.ShaderTypeFragment, skyFragmentSource, cfg.defines...)
	if err != nil {
		return newError(ErrorKindPipelineCompile, "compile sky fragment shader", err)
	}
	shadowVert, err := shader.NewShaderFromSource(s.name+"_shadow_vertex", shader.ShaderTypeVertex, shadowVertexSource, cfg.defines...)
	if err != nil {
		return newError(ErrorKindPipelineCompile, "compile shadow vertex shader", err)
	}

	if err := s.resolveBindings(vert, frag, skyFrag, shadowVert); err != nil {
		return err
	}

	s.uniformDescriptor = mergedGroupDescriptor(s.name+"_uniforms", 0, vert, frag)
	s.materialDescriptor = frag.BindGroupLayoutDescriptor(1)
	s.envDescriptor = frag.BindGroupLayoutDescriptor(2)
	s.skyDescriptor = skyFrag.BindGroupLayoutDescriptor(1)
	s.shadowDescriptor = shadowVert.BindGroupLayoutDescriptor(0)

	renderOpts := []pipeline.PipelineBuilderOption{
		pipeline.WithVertexShader(vert),
		pipeline.WithFragmentShader(frag),
	}
	renderOpts = append(renderOpts, cfg.pipelineOpts...)

	s.pipelines = []pipeline.Pipeline{
		pipeline.NewPipeline(s.name, pipeline.PipelineTypeRender, renderOpts...),
		pipeline.NewPipeline(s.name+"_background", pipeline.PipelineTypeRender,
			pipeline.WithVertexShader(skyVert),
			pipeline.WithFragmentShader(skyFrag),
			pipeline.WithDepthTestEnabled(false),
			pipeline.WithDepthWriteEnabled(false),
			pipeline.WithCullMode(wgpu.CullModeNone),
		),
		pipeline.NewPipeline(s.name+"_shadow", pipeline.PipelineTypeShadow,
			pipeline.WithVertexShader(shadowVert),
			pipeline.WithDepthBias(2, 2.0),
		),
	}

	if err := s.renderer.RegisterPipelines(s.pipelines...); err != nil {
		return newError(ErrorKindPipelineCompile, "register pipelines", err)
	}
	return nil
}

// resolveBindings looks up every binding index the style addresses by WGSL
// variable name. A missing name means the shader sources and the style code
// disagree.
func (s *uberStyle) resolveBindings(vert, frag, skyFrag, shadowVert shader.Shader) error {
	lookup := func(sh shader.Shader, group int, name string, out *int) error {
		binding, ok := sh.BindGroupFromVarName(group, name)
		if !ok {
			return newError(ErrorKindPipelineCompile, "resolve bindings",
				fmt.Errorf("no binding named %q in group %d", name, group))
		}
		*out = binding
		return nil
	}

	steps := []error{
		lookup(vert, 0, "transform", &s.transformBinding),
		lookup(vert, 0, "params", &s.paramsBinding),
		lookup(shadowVert, 0, "transform", &s.shadowTransformBinding),
		lookup(frag, 1, "normal_tex", &s.materialBindings.normalTex),
		lookup(frag, 1, "normal_sampler", &s.materialBindings.normalSampler),
		lookup(frag, 1, "albedo_tex", &s.materialBindings.albedoTex),
		lookup(frag, 1, "albedo_sampler", &s.materialBindings.albedoSampler),
		lookup(frag, 1, "knobs_tex", &s.materialBindings.knobsTex),
		lookup(frag, 1, "knobs_sampler", &s.materialBindings.knobsSampler),
		lookup(frag, 2, "irradiance_map", &s.envBindings.irradianceMap),
		lookup(frag, 2, "irradiance_sampler", &s.envBindings.irradianceSampler),
		lookup(frag, 2, "radiance_map", &s.envBindings.radianceMap),
		lookup(frag, 2, "radiance_sampler", &s.envBindings.radianceSampler),
		lookup(frag, 2, "integrated_brdf_map", &s.envBindings.brdfMap),
		lookup(frag, 2, "brdf_sampler", &s.envBindings.brdfSampler),
		lookup(frag, 2, "shadow_depth", &s.envBindings.shadowDepth),
		lookup(frag, 2, "shadow_sampler", &s.envBindings.shadowSampler),
		lookup(skyFrag, 1, "cube_map", &s.skyCubeBinding),
		lookup(skyFrag, 1, "cube_sampler", &s.skySamplerBinding),
	}
	for _, err := range steps {
		if err != nil {
			return err
		}
	}
	return nil
}

// createResources creates the GPU resources the style's draws depend on and
// assembles the default input state and background renderer.
func (s *uberStyle) createResources(cfg uberStyleConfig) error {
	vertexData, indexData, indexCount := model.SkyCubeVertexData()
	s.cubeMesh = bind_group_provider.NewBindGroupProvider(s.name + "_background_cube")
	if err := s.renderer.InitMeshBuffers(s.cubeMesh, vertexData, indexData, indexCount); err != nil {
		return newError(ErrorKindResourceCreation, "create background cube mesh", err)
	}

	view, tex, err := s.renderer.CreateShadowDepthTexture(cfg.shadowMapSize, cfg.shadowMapSize)
	if err != nil {
		return newError(ErrorKindResourceCreation, "create shadow depth texture", err)
	}
	s.shadowView, s.shadowTexture = view, tex

	s.shadowSampler, err = s.renderer.CreateComparisonSampler()
	if err != nil {
		return newError(ErrorKindResourceCreation, "create shadow comparison sampler", err)
	}

	brdfStaging := cfg.brdfLookup
	if brdfStaging == nil {
		// Scale 1, bias 0: ambient specular reduces to the prefiltered
		// radiance times Fresnel until a real lookup table is loaded.
		fallback := common.TextureStagingData{
			Pixels:        []byte{255, 0, 0, 255},
			Width:         1,
			Height:        1,
			Format:        wgpu.TextureFormatRGBA8Unorm,
			BytesPerPixel: 4,
		}
		brdfStaging = &fallback
	}
	s.brdf, err = textureFromStaging(s.renderer, s.name+"_brdf_lookup", *brdfStaging)
	if err != nil {
		return newError(ErrorKindResourceCreation, "create brdf lookup texture", err)
	}

	env, err := NewDefaultEnvironment(s.renderer)
	if err != nil {
		return err
	}

	s.inputs, err = s.newInputs(s.name+"_inputs", env)
	if err != nil {
		return err
	}

	eyeLabels := [2]string{s.name + "_background_left", s.name + "_background_right"}
	var eyeUniforms [2]bind_group_provider.BindGroupProvider
	for i, label := range eyeLabels {
		provider := bind_group_provider.NewBindGroupProvider(label)
		if err := s.renderer.InitBindGroup(provider, s.uniformDescriptor, nil, nil); err != nil {
			return newError(ErrorKindResourceCreation, "create background uniforms", err)
		}
		eyeUniforms[i] = provider
	}

	radianceProvider := bind_group_provider.NewBindGroupProvider(s.name + "_background_radiance")
	if err := s.bindSkyRadiance(radianceProvider, env); err != nil {
		return err
	}

	s.background = NewBackground(s.name+"_background", s.cubeMesh, eyeUniforms, s.transformBinding, s.paramsBinding, radianceProvider)
	return nil
}

// newInputs assembles an input state instance: its transform/params uniform
// bind group, its environment texture bind group, and the binder that
// refreshes the texture bindings when the environment changes.
func (s *uberStyle) newInputs(label string, env Environment) (UberInputs, error) {
	uniformProvider := bind_group_provider.NewBindGroupProvider(label + "_uniforms")
	if err := s.renderer.InitBindGroup(uniformProvider, s.uniformDescriptor, nil, nil); err != nil {
		return nil, newError(ErrorKindResourceCreation, "create uniform bind group", err)
	}

	envProvider := bind_group_provider.NewBindGroupProvider(label + "_environment")

	binder := func(env Environment) error {
		irr, rad := env.Irradiance(), env.Radiance()
		envProvider.SetTextureView(s.envBindings.irradianceMap, irr.View)
		envProvider.SetSampler(s.envBindings.irradianceSampler, irr.Sampler)
		envProvider.SetTextureView(s.envBindings.radianceMap, rad.View)
		envProvider.SetSampler(s.envBindings.radianceSampler, rad.Sampler)
		envProvider.SetTextureView(s.envBindings.brdfMap, s.brdf.View)
		envProvider.SetSampler(s.envBindings.brdfSampler, s.brdf.Sampler)
		envProvider.SetTextureView(s.envBindings.shadowDepth, s.shadowView)
		envProvider.SetSampler(s.envBindings.shadowSampler, s.shadowSampler)
		if err := s.renderer.InitBindGroup(envProvider, s.envDescriptor, nil, nil); err != nil {
			return newError(ErrorKindResourceCreation, "bind environment textures", err)
		}
		// The sky backdrop samples the same environment's radiance map.
		if s.background != nil {
			return s.bindSkyRadiance(s.background.RadianceProvider(), env)
		}
		return nil
	}

	if err := binder(env); err != nil {
		return nil, err
	}

	return NewUberInputs(
		WithUniformProvider(uniformProvider, s.transformBinding, s.paramsBinding),
		WithEnvironmentProvider(envProvider),
		WithInputEnvironment(env),
		WithEnvironmentBinder(binder),
	), nil
}

// bindSkyRadiance installs the environment's radiance cube map into the sky
// pipeline's bind group.
func (s *uberStyle) bindSkyRadiance(provider bind_group_provider.BindGroupProvider, env Environment) error {
	rad := env.Radiance()
	provider.SetTextureView(s.skyCubeBinding, rad.View)
	provider.SetSampler(s.skySamplerBinding, rad.Sampler)
	if err := s.renderer.InitBindGroup(provider, s.skyDescriptor, nil, nil); err != nil {
		return newError(ErrorKindResourceCreation, "bind sky radiance", err)
	}
	return nil
}

func (s *uberStyle) Name() string {
	return s.name
}

func (s *uberStyle) Pipelines() []pipeline.Pipeline {
	return s.pipelines
}

func (s *uberStyle) Inputs() UberInputs {
	return s.inputs
}

func (s *uberStyle) NewInputs(label string) (UberInputs, error) {
	return s.newInputs(label, s.inputs.Environment())
}

func (s *uberStyle) Background() Background {
	return s.background
}

func (s *uberStyle) Draw(inputs UberInputs, mesh bind_group_provider.BindGroupProvider, mat material.Material, indexRange common.IndexRange, viewport common.Rect) error {
	if !inputs.TransformEverSet() {
		return fmt.Errorf("%s style: draw requested before any transform was set", s.name)
	}
	matProvider := mat.BindGroupProvider()
	if matProvider == nil {
		return fmt.Errorf("%s style: material %q was not initialized", s.name, mat.Name())
	}

	if writes := inputs.TakePendingWrites(); len(writes) > 0 {
		s.renderer.WriteBuffers(writes)
	}

	s.renderer.SetViewport(viewport)
	s.renderer.SetScissor(viewport)
	return s.renderer.DrawCall(s.name, mesh, indexRange, 1, []bind_group_provider.BindGroupProvider{
		inputs.UniformProvider(),
		matProvider,
		inputs.EnvironmentProvider(),
	})
}

func (s *uberStyle) DrawEnvironment(inputs UberInputs, eyes [2]vr.EyeDescriptor) error {
	return s.background.DrawEnvironment(s.renderer, inputs, eyes)
}

func (s *uberStyle) InitMaterial(mat material.Material) error {
	provider := bind_group_provider.NewBindGroupProvider(mat.Name() + "_material")

	normal, err := mat.NormalStaging()
	if err != nil {
		return newError(ErrorKindResourceCreation, "decode normal texture", err)
	}
	albedo, err := mat.AlbedoStaging()
	if err != nil {
		return newError(ErrorKindResourceCreation, "decode albedo texture", err)
	}
	knobs, err := mat.KnobsStaging()
	if err != nil {
		return newError(ErrorKindResourceCreation, "decode knobs texture", err)
	}

	textures := []struct {
		texBinding     int
		samplerBinding int
		staging        common.TextureStagingData
	}{
		{s.materialBindings.normalTex, s.materialBindings.normalSampler, normal},
		{s.materialBindings.albedoTex, s.materialBindings.albedoSampler, albedo},
		{s.materialBindings.knobsTex, s.materialBindings.knobsSampler, knobs},
	}
	for _, t := range textures {
		if err := s.renderer.InitTextureView(provider, t.texBinding, t.staging); err != nil {
			return newError(ErrorKindResourceCreation, "create material texture", err)
		}
		if err := s.renderer.InitSampler(provider, t.samplerBinding, materialSampler()); err != nil {
			return newError(ErrorKindResourceCreation, "create material sampler", err)
		}
	}

	if err := s.renderer.InitBindGroup(provider, s.materialDescriptor, nil, nil); err != nil {
		return newError(ErrorKindResourceCreation, "create material bind group", err)
	}

	mat.SetBindGroupProvider(provider)
	mat.SetPipelineKey(s.name)
	return nil
}

func (s *uberStyle) NewShadowTransform(label string) (bind_group_provider.BindGroupProvider, int, error) {
	provider := bind_group_provider.NewBindGroupProvider(label + "_shadow_uniforms")
	if err := s.renderer.InitBindGroup(provider, s.shadowDescriptor, nil, nil); err != nil {
		return nil, 0, newError(ErrorKindResourceCreation, "create shadow uniform bind group", err)
	}
	return provider, s.shadowTransformBinding, nil
}

func (s *uberStyle) PipelineKey() string {
	return s.name
}

func (s *uberStyle) BackgroundPipelineKey() string {
	return s.name + "_background"
}

func (s *uberStyle) ShadowPipelineKey() string {
	return s.name + "_shadow"
}

func (s *uberStyle) ShadowDepthView() *wgpu.TextureView {
	return s.shadowView
}

// materialSampler returns the sampler configuration for material textures:
// repeat addressing with trilinear filtering.
func materialSampler() common.SamplerStagingData {
	return common.SamplerStagingData{
		AddressModeU: wgpu.AddressModeRepeat,
		AddressModeV: wgpu.AddressModeRepeat,
		AddressModeW: wgpu.AddressModeRepeat,
		MagFilter:    wgpu.FilterModeLinear,
		MinFilter:    wgpu.FilterModeLinear,
		MipmapFilter: wgpu.MipmapFilterModeLinear,
	}
}

// mergedGroupDescriptor merges one bind group's layout entries across shader
// stages, OR-ing visibility for bindings both stages declare. The pipeline
// layout is built the same way, and bind groups must be created against a
// layout with matching visibility.
func mergedGroupDescriptor(label string, group int, shaders ...shader.Shader) wgpu.BindGroupLayoutDescriptor {
	byBinding := map[uint32]wgpu.BindGroupLayoutEntry{}
	for _, sh := range shaders {
		desc := sh.BindGroupLayoutDescriptor(group)
		for _, entry := range desc.Entries {
			if existing, ok := byBinding[entry.Binding]; ok {
				existing.Visibility |= entry.Visibility
				byBinding[entry.Binding] = existing
				continue
			}
			byBinding[entry.Binding] = entry
		}
	}

	entries := make([]wgpu.BindGroupLayoutEntry, 0, len(byBinding))
	for _, entry := range byBinding {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Binding < entries[j].Binding })

	return wgpu.BindGroupLayoutDescriptor{
		Label:   label,
		Entries: entries,
	}
}
