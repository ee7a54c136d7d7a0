package style

import (
	"github.com/parallax3d/parallax/common"
	"github.com/parallax3d/parallax/engine/renderer/bind_group_provider"
	"github.com/parallax3d/parallax/engine/vr"
)

// background is the implementation of the Background interface.
type background struct {
	pipelineKey string

	// mesh holds the unit cube rendered at maximum depth behind the scene.
	mesh bind_group_provider.BindGroupProvider

	// eyeUniforms holds one transform/params uniform provider per eye. The
	// two draws of a frame land in one queue submit, so they cannot share a
	// uniform buffer: the second eye's upload would overwrite the first
	// before either draw executes.
	eyeUniforms [2]bind_group_provider.BindGroupProvider

	transformBinding int
	paramsBinding    int

	// radianceProvider holds the cube map and sampler the sky is sampled from.
	radianceProvider bind_group_provider.BindGroupProvider
}

// Background renders the environment's radiance cube map as the scene
// backdrop, once per eye. The cube is drawn with depth testing disabled and
// depth writes off, so it appears behind all foreground geometry without
// disturbing the depth buffer.
type Background interface {
	// DrawEnvironment records the stereo background: exactly two draws, left
	// eye then right eye, each scissored to its half of the surface. The
	// model transform is identity (the sky is attached to the viewer), and
	// the params block is re-derived from the inputs unconditionally, so sun
	// and tone-mapping changes always reach the backdrop.
	//
	// The inputs' own dirty state is left untouched; the background uploads
	// into its per-eye buffers, never into the foreground uniform buffers.
	//
	// Parameters:
	//   - rec: the draw recorder the commands are recorded into
	//   - inputs: the input state the params block is derived from
	//   - eyes: the per-eye view descriptors, left first
	//
	// Returns:
	//   - error: an error if recording a draw fails
	DrawEnvironment(rec DrawRecorder, inputs UberInputs, eyes [2]vr.EyeDescriptor) error

	// RadianceProvider retrieves the provider holding the sky cube map
	// bind group, so the owning style can rebind it on environment changes.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the radiance provider
	RadianceProvider() bind_group_provider.BindGroupProvider
}

var _ Background = &background{}

// NewBackground creates a background renderer from its GPU resources.
//
// Parameters:
//   - pipelineKey: the registered key of the background pipeline
//   - mesh: the cube mesh provider
//   - eyeUniforms: the per-eye uniform providers, left first
//   - transformBinding: the transform buffer's binding index
//   - paramsBinding: the params buffer's binding index
//   - radianceProvider: the provider holding the sky cube map bind group
//
// Returns:
//   - Background: a new background renderer
func NewBackground(pipelineKey string, mesh bind_group_provider.BindGroupProvider, eyeUniforms [2]bind_group_provider.BindGroupProvider, transformBinding, paramsBinding int, radianceProvider bind_group_provider.BindGroupProvider) Background {
	return &background{
		pipelineKey:      pipelineKey,
		mesh:             mesh,
		eyeUniforms:      eyeUniforms,
		transformBinding: transformBinding,
		paramsBinding:    paramsBinding,
		radianceProvider: radianceProvider,
	}
}

func (b *background) DrawEnvironment(rec DrawRecorder, inputs UberInputs, eyes [2]vr.EyeDescriptor) error {
	paramsBlock := inputs.DeriveParams()
	params := paramsBlock.Marshal()

	writes := make([]bind_group_provider.BufferWrite, 0, 4)
	for i := range eyes {
		transform := NewEyeTransform(eyes[i], nil)
		writes = append(writes,
			bind_group_provider.BufferWrite{
				Provider: b.eyeUniforms[i],
				Binding:  b.transformBinding,
				Offset:   0,
				Data:     transform.Marshal(),
			},
			bind_group_provider.BufferWrite{
				Provider: b.eyeUniforms[i],
				Binding:  b.paramsBinding,
				Offset:   0,
				Data:     params,
			},
		)
	}
	rec.WriteBuffers(writes)

	for i := range eyes {
		rec.SetViewport(eyes[i].Clip)
		rec.SetScissor(eyes[i].Clip)
		if err := rec.DrawCall(b.pipelineKey, b.mesh, common.IndexRange{}, 1, []bind_group_provider.BindGroupProvider{b.eyeUniforms[i], b.radianceProvider}); err != nil {
			return err
		}
	}
	return nil
}

func (b *background) RadianceProvider() bind_group_provider.BindGroupProvider {
	return b.radianceProvider
}
