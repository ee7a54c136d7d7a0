package vr

// RigBuilderOption defines a functional option for configuring a Rig during creation.
type RigBuilderOption func(*rig)

// WithIPD sets the interpupillary distance in world units.
//
// Parameters:
//   - ipd: the interpupillary distance to set
//
// Returns:
//   - RigBuilderOption: a functional option for configuring the rig
func WithIPD(ipd float32) RigBuilderOption {
	return func(r *rig) {
		r.ipd = ipd
	}
}

// WithClipOffset sets the magnitude of the per-eye horizontal clip-space shift.
//
// Parameters:
//   - offset: the clip offset magnitude to set
//
// Returns:
//   - RigBuilderOption: a functional option for configuring the rig
func WithClipOffset(offset float32) RigBuilderOption {
	return func(r *rig) {
		r.clipOffset = offset
	}
}

// WithSurfaceSize sets the render surface dimensions in pixels.
//
// Parameters:
//   - width: the surface width in pixels
//   - height: the surface height in pixels
//
// Returns:
//   - RigBuilderOption: a functional option for configuring the rig
func WithSurfaceSize(width, height uint32) RigBuilderOption {
	return func(r *rig) {
		r.surfaceWidth = width
		r.surfaceHeight = height
	}
}
