package style

import (
	"encoding/binary"

	"github.com/parallax3d/parallax/common"
	"github.com/parallax3d/parallax/engine/vr"
)

// GPUTransformBlockSize is the byte size of the TransformBlock uniform struct
// in WGSL, including the 12 bytes of tail padding that round the struct up to
// its 16-byte alignment.
const GPUTransformBlockSize = 224

// GPUTransformBlock is the CPU-side value of the per-eye "transform" uniform
// block. One instance represents one eye's camera state for one draw. Matches
// the WGSL TransformBlock struct layout exactly.
type GPUTransformBlock struct {
	Model      [16]float32 // offset   0: model matrix, column-major (64 bytes)
	View       [16]float32 // offset  64: view matrix, column-major (64 bytes)
	Proj       [16]float32 // offset 128: projection matrix, column-major (64 bytes)
	EyePos     [4]float32  // offset 192: eye world position, homogeneous (16 bytes)
	ClipOffset float32     // offset 208: horizontal clip-space shift (4 bytes)
}

// Size returns the size of the GPU-side struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (224)
func (g *GPUTransformBlock) Size() int {
	return GPUTransformBlockSize
}

// Marshal serializes the block into a byte buffer suitable for GPU upload.
// Bytes 212..224 are WGSL struct tail padding and stay zero.
//
// Returns:
//   - []byte: 224-byte buffer ready for GPU upload
func (g *GPUTransformBlock) Marshal() []byte {
	buf := make([]byte, GPUTransformBlockSize)
	for i, v := range g.Model {
		common.PutFloat32(buf, i*4, v)
	}
	for i, v := range g.View {
		common.PutFloat32(buf, 64+i*4, v)
	}
	for i, v := range g.Proj {
		common.PutFloat32(buf, 128+i*4, v)
	}
	for i, v := range g.EyePos {
		common.PutFloat32(buf, 192+i*4, v)
	}
	common.PutFloat32(buf, 208, g.ClipOffset)
	return buf
}

// NewEyeTransform builds a transform block for one eye. The view, projection,
// eye position, and clip offset are taken verbatim from the eye descriptor;
// the model matrix is copied from model, or set to identity when model is nil
// (the background cube is drawn untransformed).
//
// Parameters:
//   - eye: the eye descriptor supplying the camera state
//   - model: the model matrix (column-major, at least 16 elements), or nil for identity
//
// Returns:
//   - GPUTransformBlock: the assembled transform block
func NewEyeTransform(eye vr.EyeDescriptor, model []float32) GPUTransformBlock {
	t := GPUTransformBlock{
		View:       eye.View,
		Proj:       eye.Proj,
		EyePos:     eye.EyePos,
		ClipOffset: eye.ClipOffset,
	}
	if model == nil {
		common.Identity(t.Model[:])
	} else {
		copy(t.Model[:], model)
	}
	return t
}

// GPUParamsBlockSize is the byte size of the ParamsBlock uniform struct in WGSL.
const GPUParamsBlockSize = 96

// GPUParamsBlock is the CPU-side value of the shared "params" uniform block.
// It is derived wholesale from the current environment plus exposure/gamma and
// never partially patched. Matches the WGSL ParamsBlock struct layout exactly.
type GPUParamsBlock struct {
	SunMatrix      [16]float32 // offset  0: sun orientation matrix, column-major (64 bytes)
	SunColor       [4]float32  // offset 64: sun RGB color + intensity in w (16 bytes)
	SunInEnv       float32     // offset 80: 1.0 when the sun is baked into the environment maps, else 0.0
	RadianceLevels int32       // offset 84: mip level count of the radiance map
	Gamma          float32     // offset 88: display gamma
	Exposure       float32     // offset 92: exposure multiplier
}

// Size returns the size of the GPU-side struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (96)
func (g *GPUParamsBlock) Size() int {
	return GPUParamsBlockSize
}

// Marshal serializes the block into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 96-byte buffer ready for GPU upload
func (g *GPUParamsBlock) Marshal() []byte {
	buf := make([]byte, GPUParamsBlockSize)
	for i, v := range g.SunMatrix {
		common.PutFloat32(buf, i*4, v)
	}
	for i, v := range g.SunColor {
		common.PutFloat32(buf, 64+i*4, v)
	}
	common.PutFloat32(buf, 80, g.SunInEnv)
	binary.LittleEndian.PutUint32(buf[84:88], uint32(g.RadianceLevels))
	common.PutFloat32(buf, 88, g.Gamma)
	common.PutFloat32(buf, 92, g.Exposure)
	return buf
}
