package style

import (
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/parallax3d/parallax/common"
	"github.com/parallax3d/parallax/engine/renderer/bind_group_provider"
	"github.com/parallax3d/parallax/engine/renderer/pipeline"
)

// recordedDraw captures one DrawCall invocation on the fake renderer.
type recordedDraw struct {
	pipelineKey  string
	meshProvider bind_group_provider.BindGroupProvider
	indexRange   common.IndexRange
	bindGroups   []bind_group_provider.BindGroupProvider
	viewport     common.Rect
	scissor      common.Rect
}

// fakeRenderer is a recording implementation of the Renderer interface. GPU
// handles are non-nil dummies so code that checks for initialized resources
// behaves as it would against a live device.
type fakeRenderer struct {
	registered []pipeline.Pipeline

	writes   [][]bind_group_provider.BufferWrite
	draws    []recordedDraw
	viewport common.Rect
	scissor  common.Rect

	// staged texture uploads keyed by "label/binding" for inspection.
	textures     map[string]common.TextureStagingData
	cubeTextures map[string][6]common.TextureStagingData
	samplers     map[string]common.SamplerStagingData

	failRegister  error
	failTexture   error
	failBindGroup error
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{
		textures:     map[string]common.TextureStagingData{},
		cubeTextures: map[string][6]common.TextureStagingData{},
		samplers:     map[string]common.SamplerStagingData{},
	}
}

// dummy handle values: never dereferenced, only compared against nil.
var (
	dummyViewMem    byte
	dummySamplerMem byte
	dummyTexMem     byte
)

func dummyView() *wgpu.TextureView { return (*wgpu.TextureView)(unsafe.Pointer(&dummyViewMem)) }
func dummySampler() *wgpu.Sampler  { return (*wgpu.Sampler)(unsafe.Pointer(&dummySamplerMem)) }
func dummyTexture() *wgpu.Texture  { return (*wgpu.Texture)(unsafe.Pointer(&dummyTexMem)) }

func stagingKey(provider bind_group_provider.BindGroupProvider, binding int) string {
	return fmt.Sprintf("%s/%d", provider.Label(), binding)
}

func (f *fakeRenderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	f.writes = append(f.writes, writes)
}

func (f *fakeRenderer) SetViewport(rect common.Rect) {
	f.viewport = rect
}

func (f *fakeRenderer) SetScissor(rect common.Rect) {
	f.scissor = rect
}

func (f *fakeRenderer) DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, indexRange common.IndexRange, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error {
	f.draws = append(f.draws, recordedDraw{
		pipelineKey:  pipelineKey,
		meshProvider: meshProvider,
		indexRange:   indexRange,
		bindGroups:   bindGroups,
		viewport:     f.viewport,
		scissor:      f.scissor,
	})
	return nil
}

func (f *fakeRenderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	if f.failRegister != nil {
		return f.failRegister
	}
	f.registered = append(f.registered, pipelines...)
	return nil
}

func (f *fakeRenderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	return nil
}

func (f *fakeRenderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	return f.failBindGroup
}

func (f *fakeRenderer) InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error {
	if f.failTexture != nil {
		return f.failTexture
	}
	f.textures[stagingKey(provider, bindingKey)] = stagingData
	provider.SetTextureView(bindingKey, dummyView())
	return nil
}

func (f *fakeRenderer) InitCubeTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, faces [6]common.TextureStagingData) error {
	if f.failTexture != nil {
		return f.failTexture
	}
	f.cubeTextures[stagingKey(provider, bindingKey)] = faces
	provider.SetTextureView(bindingKey, dummyView())
	return nil
}

func (f *fakeRenderer) InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error {
	f.samplers[stagingKey(provider, bindingKey)] = samplerStagingData
	provider.SetSampler(bindingKey, dummySampler())
	return nil
}

func (f *fakeRenderer) CreateShadowDepthTexture(width, height int) (*wgpu.TextureView, *wgpu.Texture, error) {
	return dummyView(), dummyTexture(), nil
}

func (f *fakeRenderer) CreateComparisonSampler() (*wgpu.Sampler, error) {
	return dummySampler(), nil
}

var _ Renderer = &fakeRenderer{}
