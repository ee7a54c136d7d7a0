package scene

import (
	"fmt"
	"testing"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parallax3d/parallax/common"
	"github.com/parallax3d/parallax/engine/camera"
	"github.com/parallax3d/parallax/engine/light"
	"github.com/parallax3d/parallax/engine/model"
	"github.com/parallax3d/parallax/engine/prop"
	"github.com/parallax3d/parallax/engine/renderer"
	"github.com/parallax3d/parallax/engine/renderer/bind_group_provider"
	"github.com/parallax3d/parallax/engine/renderer/material"
	"github.com/parallax3d/parallax/engine/renderer/style"
	"github.com/parallax3d/parallax/engine/vr"
)

var dummyViewMem byte

func dummyView() *wgpu.TextureView { return (*wgpu.TextureView)(unsafe.Pointer(&dummyViewMem)) }

// fakeRenderer records the shadow-pass calls the scene issues. The embedded
// interface panics on any method the scene should not touch in these tests.
type fakeRenderer struct {
	renderer.Renderer

	writes       [][]bind_group_provider.BufferWrite
	shadowFrames int
	shadowPasses []*wgpu.TextureView
	shadowDraws  []fakeShadowDraw
	passesEnded  int
	framesEnded  int
}

type fakeShadowDraw struct {
	pipelineKey  string
	meshProvider bind_group_provider.BindGroupProvider
	bindGroups   []bind_group_provider.BindGroupProvider
}

func (f *fakeRenderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	batch := make([]bind_group_provider.BufferWrite, len(writes))
	copy(batch, writes)
	f.writes = append(f.writes, batch)
}

func (f *fakeRenderer) BeginShadowFrame() error {
	f.shadowFrames++
	return nil
}

func (f *fakeRenderer) BeginShadowPass(depthView *wgpu.TextureView) {
	f.shadowPasses = append(f.shadowPasses, depthView)
}

func (f *fakeRenderer) ShadowDrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, indexRange common.IndexRange, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error {
	f.shadowDraws = append(f.shadowDraws, fakeShadowDraw{
		pipelineKey:  pipelineKey,
		meshProvider: meshProvider,
		bindGroups:   append([]bind_group_provider.BindGroupProvider{}, bindGroups...),
	})
	return nil
}

func (f *fakeRenderer) EndShadowPass()  { f.passesEnded++ }
func (f *fakeRenderer) EndShadowFrame() { f.framesEnded++ }

// fakeStyle hands out real CPU-side uniform sets and records draws.
type fakeStyle struct {
	style.UberStyle

	env        style.Environment
	inputs     style.UberInputs
	draws      []fakeDraw
	bgDraws    int
	initedMats []material.Material
	failInputs bool
}

type fakeDraw struct {
	inputs     style.UberInputs
	mesh       bind_group_provider.BindGroupProvider
	mat        material.Material
	indexRange common.IndexRange
	viewport   common.Rect
}

func newFakeStyle() *fakeStyle {
	env := style.NewEnvironment()
	return &fakeStyle{
		env:    env,
		inputs: style.NewUberInputs(style.WithInputEnvironment(env)),
	}
}

func (f *fakeStyle) Inputs() style.UberInputs { return f.inputs }

func (f *fakeStyle) NewInputs(label string) (style.UberInputs, error) {
	if f.failInputs {
		return nil, fmt.Errorf("no device for %s", label)
	}
	return style.NewUberInputs(style.WithInputEnvironment(f.env)), nil
}

func (f *fakeStyle) NewShadowTransform(label string) (bind_group_provider.BindGroupProvider, int, error) {
	return bind_group_provider.NewBindGroupProvider(label + "_shadow_uniforms"), 0, nil
}

func (f *fakeStyle) InitMaterial(mat material.Material) error {
	mat.SetBindGroupProvider(bind_group_provider.NewBindGroupProvider(mat.Name() + "_material"))
	f.initedMats = append(f.initedMats, mat)
	return nil
}

func (f *fakeStyle) Draw(inputs style.UberInputs, mesh bind_group_provider.BindGroupProvider, mat material.Material, indexRange common.IndexRange, viewport common.Rect) error {
	f.draws = append(f.draws, fakeDraw{inputs: inputs, mesh: mesh, mat: mat, indexRange: indexRange, viewport: viewport})
	return nil
}

func (f *fakeStyle) DrawEnvironment(inputs style.UberInputs, eyes [2]vr.EyeDescriptor) error {
	f.bgDraws++
	return nil
}

func (f *fakeStyle) ShadowDepthView() *wgpu.TextureView { return dummyView() }
func (f *fakeStyle) ShadowPipelineKey() string          { return "uber_shadow" }

func testModel(name string) model.Model {
	mat := material.NewMaterial(material.WithName(name + "_mat"))
	mdl := model.NewModel(
		model.WithName(name),
		model.WithBoundingRadius(1),
		model.WithMeshProvider(bind_group_provider.NewBindGroupProvider(name+"_mesh")),
	)
	mdl.SetRenderMaterials([]material.Material{mat})
	return mdl
}

func newTestScene(t *testing.T) (Scene, *fakeRenderer, *fakeStyle) {
	t.Helper()
	r := &fakeRenderer{}
	st := newFakeStyle()
	cam := camera.NewCamera()
	s, err := NewScene("test", cam, r, st,
		WithRig(vr.NewRig(vr.WithSurfaceSize(1600, 900))))
	require.NoError(t, err)
	return s, r, st
}

func TestNewSceneDefaults(t *testing.T) {
	s, _, _ := newTestScene(t)

	assert.Equal(t, "test", s.Name())
	assert.False(t, s.Active())
	assert.False(t, s.CullingDisabled())
	assert.Nil(t, s.Sun())
	assert.Equal(t, 0, s.Count())
	assert.NotNil(t, s.Rig())
}

func TestSceneAddAssignsIDAndResources(t *testing.T) {
	s, _, st := newTestScene(t)

	p := prop.NewProp(prop.WithModel(testModel("crate")))
	id, err := s.Add(p)
	require.NoError(t, err)

	assert.NotZero(t, id)
	assert.Equal(t, 1, s.Count())
	assert.Same(t, p, s.Get(id))
	// The prop's material had no bind group, so Add initialized it.
	require.Len(t, st.initedMats, 1)
	assert.NotNil(t, st.initedMats[0].BindGroupProvider())
}

func TestSceneAddRequiresModel(t *testing.T) {
	s, _, _ := newTestScene(t)

	_, err := s.Add(prop.NewProp())
	assert.Error(t, err)
	assert.Equal(t, 0, s.Count())
}

func TestSceneAddPropagatesInputFailure(t *testing.T) {
	s, _, st := newTestScene(t)
	st.failInputs = true

	_, err := s.Add(prop.NewProp(prop.WithModel(testModel("crate"))))
	assert.Error(t, err)
	assert.Equal(t, 0, s.Count())
}

func TestSceneRemoveAndClear(t *testing.T) {
	s, _, _ := newTestScene(t)

	id1, err := s.Add(prop.NewProp(prop.WithModel(testModel("a"))))
	require.NoError(t, err)
	id2, err := s.Add(prop.NewProp(prop.WithModel(testModel("b"))))
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	s.Remove(id1)
	assert.Equal(t, 1, s.Count())
	assert.Nil(t, s.Get(id1))
	assert.NotNil(t, s.Get(id2))

	s.Remove(id1) // already gone, no-op
	s.Clear()
	assert.Equal(t, 0, s.Count())
}

func TestSceneUpdateAdvancesProps(t *testing.T) {
	s, _, _ := newTestScene(t)

	p := prop.NewProp(
		prop.WithModel(testModel("spinner")),
		prop.WithRotationSpeed(0, 1, 0),
	)
	_, err := s.Add(p)
	require.NoError(t, err)

	s.Update(0.5)
	_, ry, _ := p.Rotation()
	assert.InDelta(t, 0.5, ry, 1e-6)
}

func TestSceneDrawCallsStereo(t *testing.T) {
	s, _, st := newTestScene(t)
	s.SetCullingDisabled(true)

	_, err := s.Add(prop.NewProp(prop.WithModel(testModel("crate"))))
	require.NoError(t, err)

	require.NoError(t, s.DrawCalls())

	// Backdrop first, then one draw per eye.
	assert.Equal(t, 1, st.bgDraws)
	require.Len(t, st.draws, 2)
	// Left and right eye use distinct uniform sets and clip rects.
	assert.NotSame(t, st.draws[0].inputs, st.draws[1].inputs)
	assert.Equal(t, uint32(0), st.draws[0].viewport.X)
	assert.Equal(t, uint32(800), st.draws[1].viewport.X)
	// Each eye draw got its own transform for this frame.
	_, pending := st.draws[0].inputs.PendingTransform()
	assert.True(t, pending || st.draws[0].inputs.TransformEverSet())
}

func TestSceneDrawCallsMultiMaterialPrimitives(t *testing.T) {
	s, _, st := newTestScene(t)
	s.SetCullingDisabled(true)

	wood := material.NewMaterial(material.WithName("wood"))
	steel := material.NewMaterial(material.WithName("steel"))
	mdl := model.NewModel(
		model.WithName("lantern"),
		model.WithBoundingRadius(1),
		model.WithMeshProvider(bind_group_provider.NewBindGroupProvider("lantern_mesh")),
		model.WithPrimitives([]model.Primitive{
			{Indices: common.IndexRange{First: 0, Count: 36}, MaterialIndex: 0},
			{Indices: common.IndexRange{First: 36, Count: 12}, MaterialIndex: 1},
		}),
	)
	mdl.SetRenderMaterials([]material.Material{wood, steel})

	_, err := s.Add(prop.NewProp(prop.WithModel(mdl)))
	require.NoError(t, err)
	require.NoError(t, s.DrawCalls())

	// Two primitives per eye, each region with its own material.
	require.Len(t, st.draws, 4)
	assert.Same(t, wood, st.draws[0].mat)
	assert.Equal(t, common.IndexRange{First: 0, Count: 36}, st.draws[0].indexRange)
	assert.Same(t, steel, st.draws[1].mat)
	assert.Equal(t, common.IndexRange{First: 36, Count: 12}, st.draws[1].indexRange)
	assert.Same(t, wood, st.draws[2].mat)
	assert.Same(t, steel, st.draws[3].mat)
}

func TestSceneDrawCallsPrimitiveMaterialOutOfRange(t *testing.T) {
	s, _, st := newTestScene(t)
	s.SetCullingDisabled(true)

	base := material.NewMaterial(material.WithName("base"))
	mdl := model.NewModel(
		model.WithName("orphan"),
		model.WithBoundingRadius(1),
		model.WithMeshProvider(bind_group_provider.NewBindGroupProvider("orphan_mesh")),
		model.WithPrimitives([]model.Primitive{
			{Indices: common.IndexRange{First: 0, Count: 6}, MaterialIndex: 7},
		}),
	)
	mdl.SetRenderMaterials([]material.Material{base})

	_, err := s.Add(prop.NewProp(prop.WithModel(mdl)))
	require.NoError(t, err)
	require.NoError(t, s.DrawCalls())

	// A dangling material reference falls back to the first material.
	require.Len(t, st.draws, 2)
	assert.Same(t, base, st.draws[0].mat)
}

func TestSceneDrawCallsSkipsDisabledProps(t *testing.T) {
	s, _, st := newTestScene(t)
	s.SetCullingDisabled(true)

	p := prop.NewProp(prop.WithModel(testModel("crate")))
	_, err := s.Add(p)
	require.NoError(t, err)
	p.SetEnabled(false)

	require.NoError(t, s.DrawCalls())
	assert.Equal(t, 1, st.bgDraws)
	assert.Empty(t, st.draws)
}

func TestSceneDrawCallsCullsOutOfFrustum(t *testing.T) {
	s, _, st := newTestScene(t)

	// Without a controller the camera matrices stay identity, so the frustum
	// is the clip-space cube. A prop at z=500 sits far past the far plane.
	outside := prop.NewProp(prop.WithModel(testModel("outside")), prop.WithPosition(0, 0, 500))
	visible := prop.NewProp(prop.WithModel(testModel("visible")))
	_, err := s.Add(outside)
	require.NoError(t, err)
	_, err = s.Add(visible)
	require.NoError(t, err)

	require.NoError(t, s.DrawCalls())

	// Only the visible prop drew: two eye draws, not four.
	assert.Len(t, st.draws, 2)
}

func TestScenePrepareShadowsNoSun(t *testing.T) {
	s, r, _ := newTestScene(t)

	_, err := s.Add(prop.NewProp(prop.WithModel(testModel("crate"))))
	require.NoError(t, err)

	s.PrepareShadows()
	assert.Zero(t, r.shadowFrames)
	assert.Empty(t, r.writes)
}

func TestScenePrepareShadowsRecordsPass(t *testing.T) {
	s, r, _ := newTestScene(t)
	require.NoError(t, s.SetSun(light.NewSun()))

	_, err := s.Add(prop.NewProp(prop.WithModel(testModel("a"))))
	require.NoError(t, err)
	_, err = s.Add(prop.NewProp(prop.WithModel(testModel("b"))))
	require.NoError(t, err)

	s.PrepareShadows()

	// One batched upload with a transform per prop.
	require.Len(t, r.writes, 1)
	assert.Len(t, r.writes[0], 2)
	for _, w := range r.writes[0] {
		assert.Len(t, w.Data, 224)
	}

	assert.Equal(t, 1, r.shadowFrames)
	require.Len(t, r.shadowPasses, 1)
	assert.Equal(t, dummyView(), r.shadowPasses[0])
	require.Len(t, r.shadowDraws, 2)
	assert.Equal(t, "uber_shadow", r.shadowDraws[0].pipelineKey)
	assert.Len(t, r.shadowDraws[0].bindGroups, 1)
	assert.Equal(t, 1, r.passesEnded)
	assert.Equal(t, 1, r.framesEnded)
}

func TestScenePrepareShadowsSunNotCasting(t *testing.T) {
	s, r, _ := newTestScene(t)
	require.NoError(t, s.SetSun(light.NewSun(light.WithCastsShadows(false))))

	_, err := s.Add(prop.NewProp(prop.WithModel(testModel("crate"))))
	require.NoError(t, err)

	s.PrepareShadows()
	assert.Zero(t, r.shadowFrames)
}

func TestSceneSetSunDirtiesAllInputs(t *testing.T) {
	s, _, st := newTestScene(t)

	_, err := s.Add(prop.NewProp(prop.WithModel(testModel("crate"))))
	require.NoError(t, err)

	// Drop the construction-time dirty flags first.
	for _, inputs := range []style.UberInputs{st.inputs} {
		inputs.TakePendingWrites()
	}

	sun := light.NewSun(light.WithColor([4]float32{1, 0.9, 0.8, 3}))
	require.NoError(t, s.SetSun(sun))

	assert.Same(t, sun, s.Sun())
	assert.True(t, st.inputs.ParamsDirty())
	assert.Equal(t, [4]float32{1, 0.9, 0.8, 3}, st.env.SunColor())
	assert.Equal(t, sun.Rotation(), st.env.SunRotation())
}

func TestSceneSetExposureAndGamma(t *testing.T) {
	s, _, st := newTestScene(t)

	_, err := s.Add(prop.NewProp(prop.WithModel(testModel("crate"))))
	require.NoError(t, err)

	s.SetExposure(0.75)
	s.SetGamma(2.4)

	assert.Equal(t, float32(0.75), st.inputs.Exposure())
	assert.Equal(t, float32(2.4), st.inputs.Gamma())
}

func TestSceneSetEnvironmentReplacesEverywhere(t *testing.T) {
	s, _, st := newTestScene(t)

	_, err := s.Add(prop.NewProp(prop.WithModel(testModel("crate"))))
	require.NoError(t, err)

	env := style.NewEnvironment(style.WithRadianceLevels(5))
	require.NoError(t, s.SetEnvironment(env))

	assert.Same(t, env, st.inputs.Environment())
	assert.True(t, st.inputs.ParamsDirty())
}
