package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/parallax3d/parallax/common"
	"github.com/parallax3d/parallax/engine/renderer/bind_group_provider"
	"github.com/parallax3d/parallax/engine/renderer/pipeline"
	"github.com/parallax3d/parallax/engine/renderer/shader"
)

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat        *wgpu.TextureFormat
	msaaTextureView      *wgpu.TextureView
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	presentMode wgpu.PresentMode // defaults to PresentModeImmediate (Uncapped)
	sampleCount MSAASampleCount  // MSAA sample count for the main render pass

	// Frame state for batched rendering across multiple draw calls
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
	frameWidth   uint32
	frameHeight  uint32

	// Shadow pass state for rendering depth-only passes from a light's perspective.
	// Shadow passes use their own command encoder, a Depth32Float texture (no color),
	// sample count 1 (no MSAA), and front-face culling to reduce self-shadowing.
	shadowFrameEncoder *wgpu.CommandEncoder
	shadowPass         *wgpu.RenderPassEncoder
}

type wgpuRendererBackend interface {
	Device() *wgpu.Device
	Queue() *wgpu.Queue
	Instance() *wgpu.Instance
	Adapter() *wgpu.Adapter
	Surface() *wgpu.Surface
	SetDevice(device *wgpu.Device)
	SetQueue(queue *wgpu.Queue)
	SetInstance(instance *wgpu.Instance)
	SetAdapter(adapter *wgpu.Adapter)
	SetSurface(surface *wgpu.Surface)

	// ConfigureSurface is a wrapper for boilerplate logic required when calling ConfigureSurface on a surface.
	// This is required when the surface size changes, such as when the window is resized.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	ConfigureSurface(width, height int)

	// SetPresentMode sets the surface present mode which controls how frames are delivered to the display.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// RegisterRenderPipeline is a high-level function that creates a render pipeline based on the provided pipeline.
	// It handles creating the shader module, pipeline layout, and render pipeline based on the pipeline's configuration.
	//
	// Parameters:
	//   - p: the pipeline object containing the source code and configuration for the pipeline
	//
	// Returns:
	//   - error: an error if the pipeline could not be created, otherwise nil
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// RegisterShadowPipeline creates a depth-only render pipeline for shadow map generation.
	// Unlike RegisterRenderPipeline, shadow pipelines have no fragment shader, no color
	// target, sample count 1, Depth32Float format, and a depth bias.
	// The pipeline is stored on the Pipeline via SetRenderPipeline.
	//
	// Parameters:
	//   - p: the pipeline object containing the vertex shader and depth bias configuration
	//
	// Returns:
	//   - error: an error if pipeline creation fails
	RegisterShadowPipeline(p pipeline.Pipeline) error

	// InitMeshBuffers inits the vertex and index buffers for a mesh based on the provided vertex and index data, and stores them on the given BindGroupProvider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created vertex and index buffers on
	//   - vertexData: the raw vertex data bytes to upload to the GPU
	//   - indexData: the raw index data bytes to upload to the GPU
	//   - indexCount: the number of indices represented in the indexData, used for draw calls
	//
	// Returns:
	//   - error: an error if the buffers could not be created or initialized, otherwise nil
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup is a high-level function that creates GPU buffers and a bind group based on a BindGroupProvider's layout entries.
	// It handles creating the necessary GPU resources and storing them back on the provider for later use.
	//
	// Parameters:
	//   - provider: the BindGroupProvider describing the layout entries and storage for the bind group
	//   - descriptor: the BindGroupLayoutDescriptor describing the layout of the bind group
	//   - bufferUsageOverrides: a map of binding indices to buffer usage flags, allowing customization of buffer usage
	//   - bufferSizeOverrides: a map of binding indices to buffer sizes, allowing customization of buffer sizes
	//
	// Returns:
	//   - error: an error if the bind group could not be initialized, otherwise nil
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error

	// InitTextureView creates a GPU 2D texture and texture view based on the provided staging data, and stores the view on the given BindGroupProvider.
	// The staging data's format and mip chain are honored; a zero format defaults to RGBA8UnormSrgb.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created texture view on
	//   - bindingKey: the integer key identifying the bind group layout entry for this texture
	//   - stagingData: the TextureStagingData containing the raw texture data and metadata for creating the texture
	//
	// Returns:
	//   - error: an error if the texture view could not be created or initialized, otherwise nil
	InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error

	// InitCubeTextureView creates a GPU cube texture from six face staging datas and stores a
	// cube-dimension view on the given BindGroupProvider. All faces must share dimensions,
	// format, and mip level count. Faces are ordered +X, -X, +Y, -Y, +Z, -Z.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created texture view on
	//   - bindingKey: the integer key identifying the bind group layout entry for this texture
	//   - faces: the six face staging datas in array layer order
	//
	// Returns:
	//   - error: an error if the texture view could not be created or initialized, otherwise nil
	InitCubeTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, faces [6]common.TextureStagingData) error

	// InitSampler creates a GPU sampler based on the provided staging data, and stores it on the given BindGroupProvider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created sampler on
	//   - bindingKey: the integer key identifying the bind group layout entry for this sampler
	//   - stagingData: the SamplerStagingData containing the configuration for creating the sampler
	//
	// Returns:
	//   - error: an error if the sampler could not be created or initialized, otherwise nil
	InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	// Writes land on the queue before any command buffer submitted afterwards in the same
	// frame, so uniform data staged here is visible to every subsequent draw.
	//
	// Parameters:
	//   - writes: a slice of BufferWrite structs describing the data to write
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the next swapchain texture, creates a command encoder, and begins
	// the main render pass. Must be paired with EndFrame after all DrawCall invocations.
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	BeginFrame() error

	// SetViewport restricts subsequent draw calls in the current render pass to the given
	// surface region. Used to target one eye's half of a stereo surface. A zero-size rect
	// restores the full surface viewport.
	//
	// Parameters:
	//   - rect: the viewport region in surface pixels
	SetViewport(rect common.Rect)

	// SetScissor restricts rasterization in the current render pass to the given surface
	// region. A zero-size rect restores the full surface scissor.
	//
	// Parameters:
	//   - rect: the scissor region in surface pixels
	SetScissor(rect common.Rect)

	// DrawCall encodes a single instanced draw command within the current render pass started by BeginFrame.
	// Multiple DrawCall invocations can be made between BeginFrame and EndFrame.
	//
	// Parameters:
	//   - p: the cached Pipeline containing the render pipeline to use
	//   - meshProvider: the BindGroupProvider holding vertex and index buffers
	//   - indexRange: the slice of the index buffer to draw; zero value draws all indices
	//   - instanceCount: the number of instances to draw
	//   - bindGroups: a slice of BindGroupProviders whose BindGroups will be set on the render pass
	DrawCall(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, indexRange common.IndexRange, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider)

	// EndFrame ends the current render pass and submits the command buffer to the GPU.
	// Does not present the surface — call Present() after EndFrame to display the frame.
	// Must be called after BeginFrame and all DrawCall invocations.
	EndFrame()

	// Present presents the surface to the display and releases the swapchain texture.
	// Must be called once per frame after EndFrame.
	Present()

	// CreateShadowDepthTexture creates a Depth32Float texture and view for shadow mapping.
	// The texture has sample count 1 (no MSAA) and can be sampled as a depth texture
	// in the lit fragment shader.
	//
	// Parameters:
	//   - width: shadow map width in texels
	//   - height: shadow map height in texels
	//
	// Returns:
	//   - *wgpu.TextureView: the depth texture view for the shadow render pass
	//   - *wgpu.Texture: the underlying texture (caller must release when done)
	//   - error: an error if texture creation fails
	CreateShadowDepthTexture(width, height int) (*wgpu.TextureView, *wgpu.Texture, error)

	// CreateComparisonSampler creates a comparison sampler suitable for PCF shadow mapping.
	// Uses CompareFunction Less for standard shadow depth comparison.
	//
	// Returns:
	//   - *wgpu.Sampler: the comparison sampler
	//   - error: an error if sampler creation fails
	CreateComparisonSampler() (*wgpu.Sampler, error)

	// BeginShadowFrame creates a command encoder for batching all shadow depth passes
	// within a frame. Must be paired with EndShadowFrame after all shadow passes.
	//
	// Returns:
	//   - error: an error if the command encoder could not be created
	BeginShadowFrame() error

	// BeginShadowPass starts a depth-only render pass targeting the given shadow depth
	// texture view. Must be called between BeginShadowFrame and EndShadowFrame.
	//
	// Parameters:
	//   - depthView: the shadow map depth texture view to render into
	BeginShadowPass(depthView *wgpu.TextureView)

	// ShadowDrawCall encodes a single instanced draw command within the current shadow pass.
	//
	// Parameters:
	//   - p: the cached shadow Pipeline
	//   - meshProvider: the BindGroupProvider holding vertex and index buffers
	//   - indexRange: the slice of the index buffer to draw; zero value draws all indices
	//   - instanceCount: the number of instances to draw
	//   - bindGroups: bind group providers for the shadow pass (shadow uniform + instance buffer)
	ShadowDrawCall(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, indexRange common.IndexRange, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider)

	// EndShadowPass ends the current shadow depth render pass.
	EndShadowPass()

	// EndShadowFrame finishes the shadow command encoder and submits to the GPU queue.
	EndShadowFrame()
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount) wgpuRendererBackend {
	runtime.LockOSThread()
	w := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeImmediate,
		sampleCount: sampleCount,
	}
	w.SetSurface(w.instance.CreateSurface(surfaceDescriptor))

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		panic(err)
	}
	w.SetAdapter(a)

	// Start from the WebGPU spec default limits and raise MaxBindGroups to 8
	// so the lit fragment shader's 6 bind groups (0–5) are allowed.
	limits := wgpu.DefaultLimits()
	limits.MaxBindGroups = 8

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		panic(err)
	}
	w.SetDevice(d)
	w.SetQueue(d.GetQueue())

	return w
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = &capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	b.frameWidth = uint32(width)
	b.frameHeight = uint32(height)

	count := uint32(b.sampleCount)
	msaaEnabled := count > 1

	if msaaEnabled {
		// Create the MSAA texture that the render pass draws into; the resolved
		// result is written to the swapchain view as the ResolveTarget.
		msaaTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label: "MSAA Texture",
			Size: wgpu.Extent3D{
				Width:              uint32(width),
				Height:             uint32(height),
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        *b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			panic(err)
		}
		b.msaaTextureView, err = msaaTexture.CreateView(nil)
		if err != nil {
			panic(err)
		}
	} else {
		// No MSAA — the render pass draws directly to the swapchain view.
		b.msaaTextureView = nil
	}

	// Depth texture sample count must match the color attachment.
	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(err)
	}
	b.depthTextureView, err = depthTexture.CreateView(nil)
	if err != nil {
		panic(err)
	}

	// Build the cached render pass descriptor for the main render target.
	// When MSAA is enabled, View is the MSAA texture and ResolveTarget is
	// set per-frame to the swapchain view. When disabled, View is set
	// per-frame to the swapchain view and ResolveTarget remains nil.
	storeOp := wgpu.StoreOpStore
	if msaaEnabled {
		storeOp = wgpu.StoreOpDiscard // Don't store MSAA data, just resolve
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:          b.msaaTextureView, // nil when MSAA is off; set in BeginFrame
				ResolveTarget: nil,               // set per-frame when MSAA is on
				LoadOp:        wgpu.LoadOpClear,
				StoreOp:       storeOp,
				ClearValue: wgpu.Color{
					R: 0.1, G: 0.1, B: 0.1, A: 1.0,
				},
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView, // Persistent until resize
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard, // Depth not needed after resolving
			DepthClearValue: 1.0,
		},
	}
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeVSync:
		b.presentMode = wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeImmediate
	}
}

func (b *wgpuRendererBackendImpl) RegisterRenderPipeline(p pipeline.Pipeline) error {
	if p.Shader(shader.ShaderTypeVertex) == nil || p.Shader(shader.ShaderTypeFragment) == nil {
		return errors.New("both vertex and fragment shaders must be set to create a render pipeline")
	}

	vertexShader := p.Shader(shader.ShaderTypeVertex)
	fragmentShader := p.Shader(shader.ShaderTypeFragment)

	vs, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: vertexShader.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: vertexShader.Source(),
		},
	})
	if err != nil {
		return err
	}
	fs, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: fragmentShader.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: fragmentShader.Source(),
		},
	})
	if err != nil {
		return err
	}

	merged := mergeBindGroupLayouts(vertexShader.BindGroupLayoutDescriptors(), fragmentShader.BindGroupLayoutDescriptors())
	maxGroup := -1
	for g := range merged {
		if g > maxGroup {
			maxGroup = g
		}
	}
	bindGroupLayouts := make([]*wgpu.BindGroupLayout, maxGroup+1)
	for g, desc := range merged {
		layout, layoutErr := b.device.CreateBindGroupLayout(&desc)
		if layoutErr != nil {
			return fmt.Errorf("failed to create bind group layout for group %d: %w", g, layoutErr)
		}
		bindGroupLayouts[g] = layout
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: bindGroupLayouts,
	})
	if err != nil {
		return err
	}

	vertexLayouts := make([]wgpu.VertexBufferLayout, 0, len(vertexShader.VertexLayouts()))
	for i := range vertexShader.VertexLayouts() {
		vertexLayouts = append(vertexLayouts, vertexShader.VertexLayout(i)...)
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexShader.EntryPoint(),
			Buffers:    vertexLayouts,
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragmentShader.EntryPoint(),
			Targets: []wgpu.ColorTargetState{
				func() wgpu.ColorTargetState {
					state := wgpu.ColorTargetState{
						Format:    *b.surfaceFormat,
						WriteMask: p.WriteMask(),
					}
					if p.BlendEnabled() {
						state.Blend = p.BlendState()
					}
					return state
				}(),
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: func() *wgpu.DepthStencilState {
			depthCompare := p.DepthCompare()
			if !p.DepthTestEnabled() {
				depthCompare = wgpu.CompareFunctionAlways
			}
			return &wgpu.DepthStencilState{
				Format:              wgpu.TextureFormatDepth24Plus,
				DepthWriteEnabled:   p.DepthWriteEnabled(),
				DepthCompare:        depthCompare,
				DepthBias:           p.DepthBias(),
				DepthBiasSlopeScale: p.DepthBiasSlopeScale(),
				StencilFront: wgpu.StencilFaceState{
					Compare: wgpu.CompareFunctionAlways,
				},
				StencilBack: wgpu.StencilFaceState{
					Compare: wgpu.CompareFunctionAlways,
				},
			}
		}(),
	})
	if err != nil {
		return err
	}

	p.SetRenderPipeline(created)

	return nil
}

func (b *wgpuRendererBackendImpl) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(vertexData) > 0 {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            provider.Label() + " Vertex Buffer",
			Size:             uint64(len(vertexData)),
			Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if err != nil {
			return err
		}
		b.queue.WriteBuffer(buf, 0, vertexData)
		provider.SetVertexBuffer(buf)
	}

	if len(indexData) > 0 {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            provider.Label() + " Index Buffer",
			Size:             uint64(len(indexData)),
			Usage:            wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if err != nil {
			return err
		}
		b.queue.WriteBuffer(buf, 0, indexData)
		provider.SetIndexBuffer(buf)
	}

	provider.SetIndexCount(indexCount)

	return nil
}

func (b *wgpuRendererBackendImpl) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(descriptor.Entries) == 0 {
		return nil
	}

	layout := provider.BindGroupLayout()
	if layout == nil {
		var err error
		layout, err = b.device.CreateBindGroupLayout(&descriptor)
		if err != nil {
			return err
		}
		provider.SetBindGroupLayout(layout)
	}

	bindGroupEntries := make([]wgpu.BindGroupEntry, len(descriptor.Entries))
	for i, entry := range descriptor.Entries {
		binding := int(entry.Binding)

		isTexture := entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined
		isSampler := entry.Sampler.Type != wgpu.SamplerBindingTypeUndefined

		if isTexture {
			tv := provider.TextureView(binding)
			if tv == nil {
				return fmt.Errorf("texture binding %d has no texture view — call InitTextureView first", binding)
			}
			bindGroupEntries[i] = wgpu.BindGroupEntry{
				Binding:     entry.Binding,
				TextureView: tv,
			}
		} else if isSampler {
			samp := provider.Sampler(binding)
			if samp == nil {
				return fmt.Errorf("sampler binding %d has no sampler — call InitSampler first", binding)
			}
			bindGroupEntries[i] = wgpu.BindGroupEntry{
				Binding: entry.Binding,
				Sampler: samp,
			}
		} else {
			// Buffer binding — create if not already present
			var usage wgpu.BufferUsage
			switch entry.Buffer.Type {
			case wgpu.BufferBindingTypeUniform:
				usage = wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
			case wgpu.BufferBindingTypeStorage:
				usage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
			case wgpu.BufferBindingTypeReadOnlyStorage:
				usage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
			}
			if overrideUsage, ok := bufferUsageOverrides[binding]; ok {
				usage |= overrideUsage
			}

			buf := provider.Buffer(binding)
			if buf == nil {
				var bufErr error
				bufSize := entry.Buffer.MinBindingSize
				if overrideSize, ok := bufferSizeOverrides[binding]; ok {
					bufSize = overrideSize
				}
				buf, bufErr = b.device.CreateBuffer(&wgpu.BufferDescriptor{
					Label: provider.Label() + " Buffer",
					Size:  bufSize,
					Usage: usage,
				})
				if bufErr != nil {
					return bufErr
				}
				provider.SetBuffer(binding, buf)
			}
			bindGroupEntries[i] = wgpu.BindGroupEntry{
				Binding: entry.Binding,
				Buffer:  buf,
				Offset:  0,
				Size:    wgpu.WholeSize,
			}
		}
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: bindGroupEntries,
	})
	if err != nil {
		return err
	}
	provider.SetBindGroup(bindGroup)

	return nil
}

func (b *wgpuRendererBackendImpl) InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	format := stagingData.Format
	if format == wgpu.TextureFormatUndefined {
		format = wgpu.TextureFormatRGBA8UnormSrgb
	}
	bytesPerPixel := stagingData.BytesPerPixel
	if bytesPerPixel == 0 {
		bytesPerPixel = 4
	}
	mipCount := stagingData.MipLevelCount()

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     provider.Label() + " Texture",
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              stagingData.Width,
			Height:             stagingData.Height,
			DepthOrArrayLayers: 1,
		},
		Format:        format,
		MipLevelCount: uint32(mipCount),
		SampleCount:   1,
	})
	if err != nil {
		return err
	}

	b.writeTextureLevels(tex, 0, stagingData, bytesPerPixel)

	view, err := tex.CreateView(nil)
	if err != nil {
		return err
	}
	provider.SetTextureView(bindingKey, view)

	return nil
}

func (b *wgpuRendererBackendImpl) InitCubeTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, faces [6]common.TextureStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	base := faces[0]
	format := base.Format
	if format == wgpu.TextureFormatUndefined {
		format = wgpu.TextureFormatRGBA8UnormSrgb
	}
	bytesPerPixel := base.BytesPerPixel
	if bytesPerPixel == 0 {
		bytesPerPixel = 4
	}
	mipCount := base.MipLevelCount()

	for i := 1; i < 6; i++ {
		if faces[i].Width != base.Width || faces[i].Height != base.Height {
			return fmt.Errorf("cube face %d dimensions %dx%d do not match face 0 (%dx%d)",
				i, faces[i].Width, faces[i].Height, base.Width, base.Height)
		}
		if faces[i].MipLevelCount() != mipCount {
			return fmt.Errorf("cube face %d has %d mip levels, face 0 has %d", i, faces[i].MipLevelCount(), mipCount)
		}
	}

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     provider.Label() + " Cube Texture",
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              base.Width,
			Height:             base.Height,
			DepthOrArrayLayers: 6,
		},
		Format:        format,
		MipLevelCount: uint32(mipCount),
		SampleCount:   1,
	})
	if err != nil {
		return err
	}

	for layer, face := range faces {
		b.writeTextureLevels(tex, uint32(layer), face, bytesPerPixel)
	}

	view, err := tex.CreateView(&wgpu.TextureViewDescriptor{
		Label:           provider.Label() + " Cube View",
		Format:          format,
		Dimension:       wgpu.TextureViewDimensionCube,
		BaseMipLevel:    0,
		MipLevelCount:   uint32(mipCount),
		BaseArrayLayer:  0,
		ArrayLayerCount: 6,
		Aspect:          wgpu.TextureAspectAll,
	})
	if err != nil {
		return err
	}
	provider.SetTextureView(bindingKey, view)

	return nil
}

// writeTextureLevels uploads the base level and any staged mip levels of a single
// array layer. Mip dimensions halve per level with a floor of 1.
func (b *wgpuRendererBackendImpl) writeTextureLevels(tex *wgpu.Texture, layer uint32, stagingData common.TextureStagingData, bytesPerPixel uint32) {
	width := stagingData.Width
	height := stagingData.Height
	levels := append([][]byte{stagingData.Pixels}, stagingData.MipPixels...)

	for level, pixels := range levels {
		b.queue.WriteTexture(
			&wgpu.ImageCopyTexture{
				Texture:  tex,
				MipLevel: uint32(level),
				Origin:   wgpu.Origin3D{Z: layer},
				Aspect:   wgpu.TextureAspectAll,
			},
			pixels,
			&wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  width * bytesPerPixel,
				RowsPerImage: height,
			},
			&wgpu.Extent3D{
				Width:              width,
				Height:             height,
				DepthOrArrayLayers: 1,
			},
		)
		if width > 1 {
			width /= 2
		}
		if height > 1 {
			height /= 2
		}
	}
}

func (b *wgpuRendererBackendImpl) InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         provider.Label() + " Sampler",
		AddressModeU:  common.Coalesce(samplerStagingData.AddressModeU, wgpu.AddressModeRepeat),
		AddressModeV:  common.Coalesce(samplerStagingData.AddressModeV, wgpu.AddressModeRepeat),
		AddressModeW:  common.Coalesce(samplerStagingData.AddressModeW, wgpu.AddressModeRepeat),
		MagFilter:     common.Coalesce(samplerStagingData.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(samplerStagingData.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(samplerStagingData.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   common.Coalesce(samplerStagingData.LodMinClamp, 0.0),
		LodMaxClamp:   common.Coalesce(samplerStagingData.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(samplerStagingData.MaxAnisotropy, 1),
		Compare:       samplerStagingData.Compare,
	})
	if err != nil {
		return err
	}
	provider.SetSampler(bindingKey, samp)

	return nil
}

func (b *wgpuRendererBackendImpl) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			continue
		}
		b.queue.WriteBuffer(buf, w.Offset, w.Data)
	}
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Defensive: if a previous frame's surface texture is still held, avoid
	// attempting to acquire another one. This prevents wgpu-native validation
	// errors like "Surface image is already acquired" when frames overlap.
	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	// When MSAA is enabled, the MSAA texture is the color attachment View and
	// the swapchain view is the ResolveTarget. When MSAA is off, the swapchain
	// view is the color attachment View directly and ResolveTarget is nil.
	if b.sampleCount > 1 {
		b.renderPassDescriptor.ColorAttachments[0].ResolveTarget = view
	} else {
		b.renderPassDescriptor.ColorAttachments[0].View = view
	}
	pass := encoder.BeginRenderPass(b.renderPassDescriptor)

	b.frameEncoder = encoder
	b.framePass = pass
	b.frameSurface = surfaceTexture
	b.frameView = view

	return nil
}

func (b *wgpuRendererBackendImpl) SetViewport(rect common.Rect) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}
	if rect.W == 0 || rect.H == 0 {
		rect = common.Rect{X: 0, Y: 0, W: b.frameWidth, H: b.frameHeight}
	}
	b.framePass.SetViewport(float32(rect.X), float32(rect.Y), float32(rect.W), float32(rect.H), 0, 1)
}

func (b *wgpuRendererBackendImpl) SetScissor(rect common.Rect) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}
	if rect.W == 0 || rect.H == 0 {
		rect = common.Rect{X: 0, Y: 0, W: b.frameWidth, H: b.frameHeight}
	}
	b.framePass.SetScissorRect(rect.X, rect.Y, rect.W, rect.H)
}

func (b *wgpuRendererBackendImpl) DrawCall(
	p pipeline.Pipeline,
	meshProvider bind_group_provider.BindGroupProvider,
	indexRange common.IndexRange,
	instanceCount uint32,
	bindGroups []bind_group_provider.BindGroupProvider,
) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.framePass.SetPipeline(p.Pipeline())

	for i, bg := range bindGroups {
		b.framePass.SetBindGroup(uint32(i), bg.BindGroup(), nil)
	}

	b.framePass.SetVertexBuffer(0, meshProvider.VertexBuffer(), 0, wgpu.WholeSize)
	b.framePass.SetIndexBuffer(meshProvider.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	count := indexRange.Resolve(uint32(meshProvider.IndexCount()))
	b.framePass.DrawIndexed(count, instanceCount, indexRange.First, 0, 0)
}

func (b *wgpuRendererBackendImpl) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.framePass.End()

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		b.frameEncoder.Release()
		b.frameView.Release()
		b.frameSurface.Release()
		b.frameEncoder = nil
		b.framePass = nil
		b.frameSurface = nil
		b.frameView = nil
		return
	}

	b.queue.Submit(commandBuffer)

	commandBuffer.Release()
	b.frameEncoder.Release()
	b.frameEncoder = nil
	b.framePass = nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	// If no frame surface is held, nothing to present.
	if b.frameSurface == nil {
		return
	}

	// Present the acquired surface image and release local references.
	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func (b *wgpuRendererBackendImpl) Device() *wgpu.Device {
	return b.device
}

func (b *wgpuRendererBackendImpl) Queue() *wgpu.Queue {
	return b.queue
}

func (b *wgpuRendererBackendImpl) Instance() *wgpu.Instance {
	return b.instance
}

func (b *wgpuRendererBackendImpl) Adapter() *wgpu.Adapter {
	return b.adapter
}

func (b *wgpuRendererBackendImpl) Surface() *wgpu.Surface {
	return b.surface
}

func (b *wgpuRendererBackendImpl) SetDevice(device *wgpu.Device) {
	b.device = device
}

func (b *wgpuRendererBackendImpl) SetQueue(queue *wgpu.Queue) {
	b.queue = queue
}

func (b *wgpuRendererBackendImpl) SetInstance(instance *wgpu.Instance) {
	b.instance = instance
}

func (b *wgpuRendererBackendImpl) SetAdapter(adapter *wgpu.Adapter) {
	b.adapter = adapter
}

func (b *wgpuRendererBackendImpl) SetSurface(surface *wgpu.Surface) {
	b.surface = surface
}

func (b *wgpuRendererBackendImpl) CreateShadowDepthTexture(width, height int) (*wgpu.TextureView, *wgpu.Texture, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Shadow Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth32Float,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create shadow depth texture: %w", err)
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, fmt.Errorf("failed to create shadow depth texture view: %w", err)
	}

	return view, tex, nil
}

func (b *wgpuRendererBackendImpl) CreateComparisonSampler() (*wgpu.Sampler, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Shadow Comparison Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		Compare:       wgpu.CompareFunctionLess,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create comparison sampler: %w", err)
	}

	return samp, nil
}

func (b *wgpuRendererBackendImpl) RegisterShadowPipeline(p pipeline.Pipeline) error {
	vertexShader := p.Shader(shader.ShaderTypeVertex)
	if vertexShader == nil {
		return errors.New("vertex shader must be set to create a shadow pipeline")
	}

	vs, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: vertexShader.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: vertexShader.Source(),
		},
	})
	if err != nil {
		return err
	}

	descriptors := vertexShader.BindGroupLayoutDescriptors()
	maxGroup := -1
	for g := range descriptors {
		if g > maxGroup {
			maxGroup = g
		}
	}
	bindGroupLayouts := make([]*wgpu.BindGroupLayout, maxGroup+1)
	for g, desc := range descriptors {
		layout, layoutErr := b.device.CreateBindGroupLayout(&desc)
		if layoutErr != nil {
			return fmt.Errorf("shadow: failed to create bind group layout for group %d: %w", g, layoutErr)
		}
		bindGroupLayouts[g] = layout
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: bindGroupLayouts,
	})
	if err != nil {
		return err
	}

	vertexLayouts := make([]wgpu.VertexBufferLayout, 0, len(vertexShader.VertexLayouts()))
	for i := range vertexShader.VertexLayouts() {
		vertexLayouts = append(vertexLayouts, vertexShader.VertexLayout(i)...)
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Shadow Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexShader.EntryPoint(),
			Buffers:    vertexLayouts,
		},
		// No fragment shader — depth-only pass
		Fragment: nil,
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  p.CullMode(), // Configurable: CullModeFront for closed meshes, CullModeNone for flat geometry
		},
		Multisample: wgpu.MultisampleState{
			Count: 1, // No MSAA for shadow maps
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:              wgpu.TextureFormatDepth32Float,
			DepthWriteEnabled:   true,
			DepthCompare:        wgpu.CompareFunctionLess,
			DepthBias:           p.DepthBias(),
			DepthBiasSlopeScale: p.DepthBiasSlopeScale(),
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return err
	}

	p.SetRenderPipeline(created)
	return nil
}

func (b *wgpuRendererBackendImpl) BeginShadowFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	b.shadowFrameEncoder = encoder
	return nil
}

func (b *wgpuRendererBackendImpl) BeginShadowPass(depthView *wgpu.TextureView) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.shadowFrameEncoder == nil {
		return
	}

	pass := b.shadowFrameEncoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		// No color attachments — depth-only pass
		ColorAttachments: nil,
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore, // Must store — this is the shadow map
			DepthClearValue: 1.0,
		},
	})
	b.shadowPass = pass
}

func (b *wgpuRendererBackendImpl) ShadowDrawCall(
	p pipeline.Pipeline,
	meshProvider bind_group_provider.BindGroupProvider,
	indexRange common.IndexRange,
	instanceCount uint32,
	bindGroups []bind_group_provider.BindGroupProvider,
) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.shadowPass == nil {
		return
	}

	b.shadowPass.SetPipeline(p.Pipeline())

	for i, bg := range bindGroups {
		b.shadowPass.SetBindGroup(uint32(i), bg.BindGroup(), nil)
	}

	b.shadowPass.SetVertexBuffer(0, meshProvider.VertexBuffer(), 0, wgpu.WholeSize)
	b.shadowPass.SetIndexBuffer(meshProvider.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	count := indexRange.Resolve(uint32(meshProvider.IndexCount()))
	b.shadowPass.DrawIndexed(count, instanceCount, indexRange.First, 0, 0)
}

func (b *wgpuRendererBackendImpl) EndShadowPass() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.shadowPass == nil {
		return
	}

	b.shadowPass.End()
	b.shadowPass = nil
}

func (b *wgpuRendererBackendImpl) EndShadowFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.shadowFrameEncoder == nil {
		return
	}

	commandBuffer, err := b.shadowFrameEncoder.Finish(nil)
	if err != nil {
		b.shadowFrameEncoder.Release()
		b.shadowFrameEncoder = nil
		return
	}

	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	b.shadowFrameEncoder.Release()
	b.shadowFrameEncoder = nil
}

// mergeBindGroupLayouts merges the bind group layout descriptors from a vertex and fragment shader
// into a unified set of descriptors suitable for a render pipeline layout.
//
// For each group index present in either shader:
//   - Entries with the same binding number have their Visibility flags ORed together
//   - Entries unique to one shader are included with their original visibility
//
// Parameters:
//   - vertexLayouts: bind group layout descriptors from the vertex shader
//   - fragmentLayouts: bind group layout descriptors from the fragment shader
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: the merged descriptors keyed by group index
func mergeBindGroupLayouts(
	vertexLayouts, fragmentLayouts map[int]wgpu.BindGroupLayoutDescriptor,
) map[int]wgpu.BindGroupLayoutDescriptor {
	merged := make(map[int]wgpu.BindGroupLayoutDescriptor)

	// collect all group indices from both maps
	groupIndices := make(map[int]bool)
	for g := range vertexLayouts {
		groupIndices[g] = true
	}
	for g := range fragmentLayouts {
		groupIndices[g] = true
	}

	for g := range groupIndices {
		vDesc, hasV := vertexLayouts[g]
		fDesc, hasF := fragmentLayouts[g]

		switch {
		case hasV && !hasF:
			// group only in vertex shader — use as-is
			merged[g] = vDesc
		case hasF && !hasV:
			// group only in fragment shader — use as-is
			merged[g] = fDesc
		default:
			// group in both — merge entries by binding number
			entryMap := make(map[uint32]wgpu.BindGroupLayoutEntry)
			for _, e := range vDesc.Entries {
				entryMap[e.Binding] = e
			}
			for _, e := range fDesc.Entries {
				if existing, ok := entryMap[e.Binding]; ok {
					// same binding in both stages — OR the visibility
					existing.Visibility |= e.Visibility
					entryMap[e.Binding] = existing
				} else {
					entryMap[e.Binding] = e
				}
			}

			// flatten back to a sorted slice
			entries := make([]wgpu.BindGroupLayoutEntry, 0, len(entryMap))
			for _, e := range entryMap {
				entries = append(entries, e)
			}
			// sort by binding for deterministic layout
			sort.Slice(entries, func(i, j int) bool {
				return entries[i].Binding < entries[j].Binding
			})

			merged[g] = wgpu.BindGroupLayoutDescriptor{
				Label:   vDesc.Label, // or generate a composite label
				Entries: entries,
			}
		}
	}

	return merged
}
