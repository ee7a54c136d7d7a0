// Package vr provides the stereo rig surface: per-eye camera descriptors and a
// Rig that derives left/right eye parameters from a mono camera the way a
// headset pose service would, using an interpupillary offset and a split
// surface viewport.
package vr

import (
	"github.com/parallax3d/parallax/common"
)

// EyeIndex identifies one of the two stereo eyes.
type EyeIndex int

const (
	// EyeLeft is the left eye, always drawn first.
	EyeLeft EyeIndex = iota

	// EyeRight is the right eye, always drawn second.
	EyeRight
)

// EyeDescriptor holds one eye's camera parameters for a single frame. The
// style layer consumes these verbatim when building per-eye transform blocks:
// view/proj/eye position feed the uniform block directly and Clip bounds the
// draw to that eye's half of the surface.
type EyeDescriptor struct {
	// View is the eye's world-to-view matrix (column-major, 16 elements).
	View [16]float32

	// Proj is the eye's projection matrix (column-major, 16 elements).
	Proj [16]float32

	// EyePos is the eye's world-space position as a homogeneous point (w = 1).
	EyePos [4]float32

	// ClipOffset is the horizontal clip-space shift applied in the vertex
	// stage, mirrored between eyes (negative for the left eye, positive for
	// the right).
	ClipOffset float32

	// Clip is the region of the render surface this eye draws into.
	Clip common.Rect
}

// rig is the implementation of the Rig interface.
type rig struct {
	// ipd is the interpupillary distance in world units.
	ipd float32

	// clipOffset is the magnitude of the per-eye horizontal clip-space shift.
	clipOffset float32

	// surfaceWidth and surfaceHeight are the render surface dimensions in
	// pixels, split vertically into left/right halves.
	surfaceWidth, surfaceHeight uint32
}

// Rig defines the interface for a desktop stereo rig. It stands in for a
// headset pose service: given a mono camera's view matrix, projection matrix,
// and world position, it produces the pair of eye descriptors the renderer
// draws each frame. The left eye is offset half the interpupillary distance
// toward the camera's -X (right-handed view space), the right eye mirrored,
// and each eye owns one vertical half of the surface.
type Rig interface {
	// IPD retrieves the configured interpupillary distance in world units.
	//
	// Returns:
	//   - float32: the interpupillary distance
	IPD() float32

	// SetIPD sets the interpupillary distance in world units.
	//
	// Parameters:
	//   - ipd: the new interpupillary distance
	SetIPD(ipd float32)

	// ClipOffset retrieves the magnitude of the per-eye horizontal clip-space
	// shift. The left eye receives the negated value.
	//
	// Returns:
	//   - float32: the clip offset magnitude
	ClipOffset() float32

	// SetClipOffset sets the magnitude of the per-eye horizontal clip-space shift.
	//
	// Parameters:
	//   - offset: the new clip offset magnitude
	SetClipOffset(offset float32)

	// SurfaceSize retrieves the render surface dimensions the clip rectangles
	// are derived from.
	//
	// Returns:
	//   - uint32: the surface width in pixels
	//   - uint32: the surface height in pixels
	SurfaceSize() (uint32, uint32)

	// SetSurfaceSize sets the render surface dimensions. Call on window resize
	// so each eye's clip rectangle tracks the surface.
	//
	// Parameters:
	//   - width: the surface width in pixels
	//   - height: the surface height in pixels
	SetSurfaceSize(width, height uint32)

	// Eyes derives the left and right eye descriptors from a mono camera.
	// The returned pair is indexed by EyeLeft and EyeRight; the renderer draws
	// them in that order.
	//
	// Parameters:
	//   - view: the camera's world-to-view matrix (column-major, at least 16 elements)
	//   - proj: the camera's projection matrix (column-major, at least 16 elements)
	//   - eyePos: the camera's world-space position
	//
	// Returns:
	//   - [2]EyeDescriptor: the left and right eye descriptors
	Eyes(view, proj []float32, eyePos [3]float32) [2]EyeDescriptor
}

var _ Rig = &rig{}

// DefaultIPD is the default interpupillary distance in world units,
// approximating the average human IPD of 64mm at a 1 unit = 1 meter scale.
const DefaultIPD float32 = 0.064

// NewRig creates a new Rig with the provided options applied over defaults:
// DefaultIPD, zero clip offset, and a 1280x720 surface.
//
// Parameters:
//   - options: a variadic list of RigBuilderOption functions to configure the rig
//
// Returns:
//   - Rig: a new Rig instance
func NewRig(options ...RigBuilderOption) Rig {
	r := &rig{
		ipd:           DefaultIPD,
		surfaceWidth:  1280,
		surfaceHeight: 720,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *rig) IPD() float32 {
	return r.ipd
}

func (r *rig) SetIPD(ipd float32) {
	r.ipd = ipd
}

func (r *rig) ClipOffset() float32 {
	return r.clipOffset
}

func (r *rig) SetClipOffset(offset float32) {
	r.clipOffset = offset
}

func (r *rig) SurfaceSize() (uint32, uint32) {
	return r.surfaceWidth, r.surfaceHeight
}

func (r *rig) SetSurfaceSize(width, height uint32) {
	r.surfaceWidth = width
	r.surfaceHeight = height
}

func (r *rig) Eyes(view, proj []float32, eyePos [3]float32) [2]EyeDescriptor {
	halfWidth := r.surfaceWidth / 2

	// The camera's world-space right axis is row 0 of the column-major view
	// matrix; eye positions are displaced along it by half the IPD each.
	right := [3]float32{view[0], view[4], view[8]}
	half := r.ipd / 2

	var eyes [2]EyeDescriptor
	for i := range eyes {
		// -1 for the left eye, +1 for the right.
		side := float32(2*i - 1)

		copy(eyes[i].View[:], view)
		copy(eyes[i].Proj[:], proj)

		// Moving the eye by side*half*right in world space shifts geometry the
		// opposite way in view space, which for a view matrix means adding
		// -side*half to the x translation component.
		eyes[i].View[12] -= side * half

		eyes[i].EyePos = [4]float32{
			eyePos[0] + side*half*right[0],
			eyePos[1] + side*half*right[1],
			eyePos[2] + side*half*right[2],
			1,
		}
		eyes[i].ClipOffset = side * r.clipOffset
		eyes[i].Clip = common.Rect{
			X: uint32(i) * halfWidth,
			Y: 0,
			W: halfWidth,
			H: r.surfaceHeight,
		}
	}
	return eyes
}
