package scene

import (
	"github.com/parallax3d/parallax/engine/light"
	"github.com/parallax3d/parallax/engine/vr"
)

// SceneBuilderOption is a function that configures a scene during construction.
type SceneBuilderOption func(*scene)

// WithRig is an option builder that sets the stereo rig used to split the
// camera pose into per-eye views.
//
// Parameters:
//   - rig: the rig to attach
//
// Returns:
//   - SceneBuilderOption: a function that applies the rig to the scene
func WithRig(rig vr.Rig) SceneBuilderOption {
	return func(s *scene) {
		if rig != nil {
			s.rig = rig
		}
	}
}

// WithSun is an option builder that installs a sun at construction time. Its
// rotation and color are pushed into the style's environment before NewScene
// returns.
//
// Parameters:
//   - sun: the sun to install
//
// Returns:
//   - SceneBuilderOption: a function that applies the sun to the scene
func WithSun(sun light.Sun) SceneBuilderOption {
	return func(s *scene) {
		s.sun = sun
	}
}

// WithActive is an option builder that sets whether the scene starts active.
//
// Parameters:
//   - active: the initial flag value
//
// Returns:
//   - SceneBuilderOption: a function that applies the flag to the scene
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithCullingDisabled is an option builder that bypasses frustum culling for
// every prop in the scene.
//
// Returns:
//   - SceneBuilderOption: a function that disables culling on the scene
func WithCullingDisabled() SceneBuilderOption {
	return func(s *scene) {
		s.cullingDisabled = true
	}
}
