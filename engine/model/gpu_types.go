package model

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUVertexSource is the canonical WGSL definition of the VertexInput struct for lit mesh pipelines.
// Matches GPUVertex layout exactly (48 bytes, std430 aligned).
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// GPUVertex is the GPU-aligned representation of a single lit mesh vertex.
// Matches the WGSL VertexInput struct layout exactly (see GPUVertexSource).
// Size: 48 bytes (std430 aligned, no padding required).
type GPUVertex struct {
	Position [3]float32 // offset  0: vertex position in model space (12 bytes)
	Normal   [3]float32 // offset 12: vertex normal for lighting (12 bytes)
	TexCoord [2]float32 // offset 24: UV texture coordinate (8 bytes)
	Tangent  [4]float32 // offset 32: tangent vector (xyz) + handedness (w) for normal mapping (16 bytes)
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload.
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, 48)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Position[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.Normal[0]))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.Normal[1]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.Normal[2]))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(g.TexCoord[0]))
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(g.TexCoord[1]))
	binary.LittleEndian.PutUint32(buf[32:36], math.Float32bits(g.Tangent[0]))
	binary.LittleEndian.PutUint32(buf[36:40], math.Float32bits(g.Tangent[1]))
	binary.LittleEndian.PutUint32(buf[40:44], math.Float32bits(g.Tangent[2]))
	binary.LittleEndian.PutUint32(buf[44:48], math.Float32bits(g.Tangent[3]))
	return buf
}

// GPUSkyVertexSource is the canonical WGSL definition of the VertexInput struct for the sky background pipeline.
// Matches GPUSkyVertex layout exactly (12 bytes).
//
//go:embed assets/sky_vertex.wgsl
var GPUSkyVertexSource string

// GPUSkyVertex is the GPU-aligned representation of a position-only vertex used
// by the sky background cube. Size: 12 bytes.
type GPUSkyVertex struct {
	Position [3]float32 // offset 0: vertex position in model space (12 bytes)
}

// Size returns the size of the GPUSkyVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUSkyVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUSkyVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 12-byte buffer ready for GPU upload.
func (g *GPUSkyVertex) Marshal() []byte {
	buf := make([]byte, 12)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Position[2]))
	return buf
}

// ComputeBoundingRadius calculates the bounding sphere radius from a slice of
// GPUVertex positions. The radius is the maximum distance from the origin
// across all vertices in the slice.
//
// Parameters:
//   - vertices: the vertex data to compute the bounding radius from
//
// Returns:
//   - float32: the maximum distance from the origin
func ComputeBoundingRadius(vertices []GPUVertex) float32 {
	var maxDistSq float32
	for _, v := range vertices {
		p := v.Position
		distSq := p[0]*p[0] + p[1]*p[1] + p[2]*p[2]
		if distSq > maxDistSq {
			maxDistSq = distSq
		}
	}
	return float32(math.Sqrt(float64(maxDistSq)))
}
