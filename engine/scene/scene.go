// Package scene ties the engine's pieces together: a camera, a stereo rig, a
// render style, a sun, and a set of props. Each frame the engine asks the
// active scenes for a shadow pass and then a stereo draw pass.
package scene

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/parallax3d/parallax/common"
	"github.com/parallax3d/parallax/engine/camera"
	"github.com/parallax3d/parallax/engine/light"
	"github.com/parallax3d/parallax/engine/prop"
	"github.com/parallax3d/parallax/engine/renderer"
	"github.com/parallax3d/parallax/engine/renderer/bind_group_provider"
	"github.com/parallax3d/parallax/engine/renderer/style"
	"github.com/parallax3d/parallax/engine/vr"
)

// Scene manages a collection of Props (registered via Add) plus the shared
// frame state they draw against: the camera pose, the stereo rig, the sun,
// and the style's environment. Scenes can be hot-swapped via the Active flag
// to switch between different views or levels.
// Thread-safe for concurrent access.
type Scene interface {
	// Name retrieves the scene's name.
	//
	// Returns:
	//   - string: the scene name
	Name() string

	// SetName sets the scene's name.
	//
	// Parameters:
	//   - name: the new name
	SetName(name string)

	// Active reports whether this scene participates in the frame loop.
	//
	// Returns:
	//   - bool: true if active
	Active() bool

	// SetActive enables or disables this scene in the frame loop.
	//
	// Parameters:
	//   - active: the new flag value
	SetActive(active bool)

	// Camera retrieves the scene's camera.
	//
	// Returns:
	//   - camera.Camera: the attached camera
	Camera() camera.Camera

	// SetCamera replaces the scene's camera.
	//
	// Parameters:
	//   - cam: the camera to attach
	SetCamera(cam camera.Camera)

	// Rig retrieves the stereo rig that splits the camera pose into per-eye
	// views.
	//
	// Returns:
	//   - vr.Rig: the stereo rig
	Rig() vr.Rig

	// Renderer retrieves the scene's renderer.
	//
	// Returns:
	//   - renderer.Renderer: the attached renderer
	Renderer() renderer.Renderer

	// Style retrieves the render style all props in this scene draw with.
	//
	// Returns:
	//   - style.UberStyle: the render style
	Style() style.UberStyle

	// Sun retrieves the scene's sun, or nil if none is set.
	//
	// Returns:
	//   - light.Sun: the sun or nil
	Sun() light.Sun

	// SetSun installs a sun and pushes its rotation and color into the
	// environment of every uniform set in the scene, so the next flush
	// re-derives the shading params from it.
	//
	// Parameters:
	//   - sun: the sun to install
	//
	// Returns:
	//   - error: an error if refreshing the environment bindings fails
	SetSun(sun light.Sun) error

	// CullingDisabled reports whether frustum culling is bypassed.
	//
	// Returns:
	//   - bool: true if culling is disabled
	CullingDisabled() bool

	// SetCullingDisabled enables or disables frustum culling.
	//
	// Parameters:
	//   - disabled: true to bypass culling
	SetCullingDisabled(disabled bool)

	// Add registers a prop with the scene. The prop must carry a model. Add
	// creates the prop's per-eye uniform sets and its shadow-pass uniform,
	// and initializes GPU resources for any of the model's render materials
	// that have not been bound yet.
	//
	// Parameters:
	//   - p: the prop to add
	//
	// Returns:
	//   - uint64: the ID assigned to the prop
	//   - error: an error if GPU resource creation fails
	Add(p prop.Prop) (uint64, error)

	// Get retrieves a prop by ID, or nil if not present.
	//
	// Parameters:
	//   - id: the prop ID
	//
	// Returns:
	//   - prop.Prop: the prop or nil
	Get(id uint64) prop.Prop

	// Remove unregisters a prop by ID. No-op if the ID is unknown.
	//
	// Parameters:
	//   - id: the prop ID
	Remove(id uint64)

	// Clear unregisters all props.
	Clear()

	// Count returns the number of registered props.
	//
	// Returns:
	//   - int: the prop count
	Count() int

	// Update advances the scene's CPU state for one tick: the camera pose
	// and each prop's rotation.
	//
	// Parameters:
	//   - deltaTime: elapsed time in seconds
	Update(deltaTime float32)

	// SetExposure sets the exposure multiplier on every uniform set in the
	// scene.
	//
	// Parameters:
	//   - exposure: the new exposure multiplier
	SetExposure(exposure float32)

	// SetGamma sets the display gamma on every uniform set in the scene.
	//
	// Parameters:
	//   - gamma: the new display gamma
	SetGamma(gamma float32)

	// SetEnvironment replaces the environment on every uniform set in the
	// scene, refreshing all texture bindings.
	//
	// Parameters:
	//   - env: the new environment
	//
	// Returns:
	//   - error: an error if rebinding fails
	SetEnvironment(env style.Environment) error

	// PrepareShadows renders the shadow depth pass: every enabled prop is
	// drawn into the style's shadow map from the sun's point of view. No-op
	// when the scene has no shadow-casting sun.
	PrepareShadows()

	// DrawCalls issues the frame's draws: the sky backdrop for both eyes,
	// then every visible prop once per eye, left eye first. Props outside
	// the camera frustum are skipped unless culling is disabled.
	//
	// Returns:
	//   - error: an error if any draw fails
	DrawCalls() error
}

// propEntry pairs a prop with the GPU resources its draws consume. Each eye
// gets its own uniform set so the two draws of a stereo frame do not collapse
// into one buffer write.
type propEntry struct {
	p         prop.Prop
	eyeInputs [2]style.UberInputs

	shadowProvider bind_group_provider.BindGroupProvider
	shadowBinding  int

	modelMatrix [16]float32 // scratch, rebuilt each frame
}

type scene struct {
	mu *sync.RWMutex

	name   string
	active bool

	cam camera.Camera
	r   renderer.Renderer
	st  style.UberStyle
	rig vr.Rig
	sun light.Sun

	cullingDisabled bool

	registry map[uint64]*propEntry
	order    []uint64 // insertion order, keeps draws deterministic
	nextID   uint64

	// Pre-allocated slice reused each shadow pass to avoid per-frame allocations.
	writePool []bind_group_provider.BufferWrite
}

// Ensure scene implements Scene interface.
var _ Scene = &scene{}

// NewScene creates a new Scene with the given camera, renderer, and style.
// All three are required and NewScene panics if any of them is nil. The
// stereo rig defaults to a fresh vr.NewRig() unless overridden with WithRig.
//
// Parameters:
//   - name: the name of the scene
//   - cam: the camera to attach (must not be nil)
//   - r: the renderer to attach (must not be nil)
//   - st: the render style all props draw with (must not be nil)
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
//   - error: an error if an option's GPU setup fails
func NewScene(name string, cam camera.Camera, r renderer.Renderer, st style.UberStyle, options ...SceneBuilderOption) (Scene, error) {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}
	if r == nil {
		panic("scene: NewScene requires a non-nil Renderer")
	}
	if st == nil {
		panic("scene: NewScene requires a non-nil style")
	}

	s := &scene{
		mu:       &sync.RWMutex{},
		name:     name,
		active:   false,
		cam:      cam,
		r:        r,
		st:       st,
		rig:      vr.NewRig(),
		registry: make(map[uint64]*propEntry),
		nextID:   1,
	}

	for _, option := range options {
		option(s)
	}

	if s.sun != nil {
		if err := s.applySun(s.sun); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) SetCamera(cam camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cam = cam
}

func (s *scene) Rig() vr.Rig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rig
}

func (s *scene) Renderer() renderer.Renderer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.r
}

func (s *scene) Style() style.UberStyle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st
}

func (s *scene) Sun() light.Sun {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sun
}

func (s *scene) SetSun(sun light.Sun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sun = sun
	return s.applySun(sun)
}

// applySun pushes the sun's rotation and color into the environment shared by
// every uniform set and marks each set dirty. Caller must hold s.mu.
func (s *scene) applySun(sun light.Sun) error {
	for _, inputs := range s.allInputs() {
		if err := inputs.MutateEnvironment(sun.ApplyToEnvironment); err != nil {
			return fmt.Errorf("scene %q: apply sun: %w", s.name, err)
		}
	}
	return nil
}

// allInputs collects the style's primary uniform set plus every prop's
// per-eye sets, in draw order. Caller must hold s.mu.
func (s *scene) allInputs() []style.UberInputs {
	all := make([]style.UberInputs, 0, 1+2*len(s.order))
	all = append(all, s.st.Inputs())
	for _, id := range s.order {
		e := s.registry[id]
		all = append(all, e.eyeInputs[0], e.eyeInputs[1])
	}
	return all
}

func (s *scene) CullingDisabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cullingDisabled
}

func (s *scene) SetCullingDisabled(disabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cullingDisabled = disabled
}

func (s *scene) Add(p prop.Prop) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mdl := p.Model()
	if mdl == nil {
		return 0, fmt.Errorf("scene %q: cannot add a prop without a model", s.name)
	}

	if p.ID() == 0 {
		p.SetID(atomic.AddUint64(&s.nextID, 1) - 1)
	}
	id := p.ID()

	// One uniform set per eye: both eye draws of a frame land before the
	// frame's single submit, so sharing a buffer would leave both eyes
	// reading the last-written transform.
	label := fmt.Sprintf("%s_prop_%d", s.name, id)
	left, err := s.st.NewInputs(label + "_left")
	if err != nil {
		return 0, fmt.Errorf("scene %q: create left-eye uniforms for prop %d: %w", s.name, id, err)
	}
	right, err := s.st.NewInputs(label + "_right")
	if err != nil {
		return 0, fmt.Errorf("scene %q: create right-eye uniforms for prop %d: %w", s.name, id, err)
	}

	shadowProvider, shadowBinding, err := s.st.NewShadowTransform(label)
	if err != nil {
		return 0, fmt.Errorf("scene %q: create shadow uniforms for prop %d: %w", s.name, id, err)
	}

	// Bind any materials the loader left uninitialized.
	for _, mat := range mdl.RenderMaterials() {
		if mat.BindGroupProvider() != nil {
			continue
		}
		if err := s.st.InitMaterial(mat); err != nil {
			return 0, fmt.Errorf("scene %q: init material for prop %d: %w", s.name, id, err)
		}
	}

	s.registry[id] = &propEntry{
		p:              p,
		eyeInputs:      [2]style.UberInputs{left, right},
		shadowProvider: shadowProvider,
		shadowBinding:  shadowBinding,
	}
	s.order = append(s.order, id)

	return id, nil
}

func (s *scene) Get(id uint64) prop.Prop {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.registry[id]; ok {
		return e.p
	}
	return nil
}

func (s *scene) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.registry[id]; !exists {
		return
	}
	delete(s.registry, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry = make(map[uint64]*propEntry)
	s.order = nil
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registry)
}

func (s *scene) Update(deltaTime float32) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cam != nil {
		s.cam.Update()
	}
	for _, id := range s.order {
		s.registry[id].p.Advance(deltaTime)
	}
}

func (s *scene) SetExposure(exposure float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inputs := range s.allInputs() {
		inputs.SetExposure(exposure)
	}
}

func (s *scene) SetGamma(gamma float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inputs := range s.allInputs() {
		inputs.SetGamma(gamma)
	}
}

func (s *scene) SetEnvironment(env style.Environment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inputs := range s.allInputs() {
		if err := inputs.SetEnvironment(env); err != nil {
			return fmt.Errorf("scene %q: set environment: %w", s.name, err)
		}
	}
	return nil
}

func (s *scene) PrepareShadows() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.r == nil || s.sun == nil || !s.sun.CastsShadows() {
		return
	}
	depthView := s.st.ShadowDepthView()
	if depthView == nil {
		return
	}

	// Write every prop's light-space transform in one batch, then record the
	// depth pass. The transform's view/proj slots carry the sun's matrices.
	writes := s.writePool[:0]
	for _, id := range s.order {
		e := s.registry[id]
		if !e.p.Enabled() || e.p.Model() == nil || e.shadowProvider == nil {
			continue
		}
		e.p.ModelMatrix(e.modelMatrix[:])
		block := s.sun.ShadowTransform(e.modelMatrix[:])
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: e.shadowProvider,
			Binding:  e.shadowBinding,
			Offset:   0,
			Data:     block.Marshal(),
		})
	}
	s.writePool = writes
	if len(writes) == 0 {
		return
	}
	s.r.WriteBuffers(writes)

	if err := s.r.BeginShadowFrame(); err != nil {
		return
	}
	s.r.BeginShadowPass(depthView)

	for _, id := range s.order {
		e := s.registry[id]
		if !e.p.Enabled() {
			continue
		}
		mdl := e.p.Model()
		if mdl == nil {
			continue
		}
		meshProvider := mdl.MeshProvider()
		if meshProvider == nil || e.shadowProvider == nil {
			continue
		}
		// The depth pass ignores materials, so the whole mesh draws at once.
		_ = s.r.ShadowDrawCall(s.st.ShadowPipelineKey(), meshProvider, common.IndexRange{}, 1,
			[]bind_group_provider.BindGroupProvider{e.shadowProvider})
	}

	s.r.EndShadowPass()
	s.r.EndShadowFrame()
}

func (s *scene) DrawCalls() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.r == nil {
		return fmt.Errorf("scene %q has no renderer attached", s.name)
	}

	view := s.cam.ViewMatrix()
	proj := s.cam.ProjectionMatrix()
	eyes := s.rig.Eyes(view[:], proj[:], s.cam.Position())

	// Sky backdrop first: depth writes are off in the sky pipeline, so the
	// props drawn after it overwrite it wherever they cover it.
	if err := s.st.DrawEnvironment(s.st.Inputs(), eyes); err != nil {
		return fmt.Errorf("backdrop draw failed in scene %q: %w", s.name, err)
	}

	var frustum common.Frustum
	culling := !s.cullingDisabled
	if culling {
		vp := s.cam.ViewProjectionMatrix()
		frustum = common.ExtractFrustumFromMatrix(vp[:])
	}

	for _, id := range s.order {
		e := s.registry[id]
		if !e.p.Enabled() {
			continue
		}
		mdl := e.p.Model()
		if mdl == nil {
			continue
		}
		meshProvider := mdl.MeshProvider()
		if meshProvider == nil {
			continue
		}
		mats := mdl.RenderMaterials()
		if len(mats) == 0 {
			continue
		}

		if culling {
			center, radius := e.p.BoundingSphere()
			if !frustum.TestSphere(center, radius) {
				continue
			}
		}

		e.p.ModelMatrix(e.modelMatrix[:])
		for i := range eyes {
			e.eyeInputs[i].SetTransform(style.NewEyeTransform(eyes[i], e.modelMatrix[:]))
			if prims := mdl.Primitives(); len(prims) > 0 {
				// Imported models carry per-material index ranges; each
				// region draws once with its own material.
				for _, prim := range prims {
					mat := mats[0]
					if prim.MaterialIndex >= 0 && prim.MaterialIndex < len(mats) {
						mat = mats[prim.MaterialIndex]
					}
					if err := s.st.Draw(e.eyeInputs[i], meshProvider, mat, prim.Indices, eyes[i].Clip); err != nil {
						return fmt.Errorf("draw call failed for prop %d in scene %q: %w", id, s.name, err)
					}
				}
				continue
			}
			for _, mat := range mats {
				if err := s.st.Draw(e.eyeInputs[i], meshProvider, mat, common.IndexRange{}, eyes[i].Clip); err != nil {
					return fmt.Errorf("draw call failed for prop %d in scene %q: %w", id, s.name, err)
				}
			}
		}
	}

	return nil
}
