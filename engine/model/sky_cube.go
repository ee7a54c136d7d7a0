package model

// SkyCubeExtent is the half-size of the sky background cube in model units.
// The cube only needs to survive near-plane clipping; the vertex stage pins it
// to the far plane, so the absolute size is arbitrary beyond that.
const SkyCubeExtent float32 = 10.0

// SkyCubeMesh constructs the position-only cube mesh used by the sky
// background renderer. The cube spans ±SkyCubeExtent on every axis and its 12
// triangles wind inward, so the interior faces are the front faces when the
// camera sits inside the cube.
//
// Returns:
//   - []GPUSkyVertex: the 8 cube corners
//   - []uint32: 36 triangle indices
func SkyCubeMesh() ([]GPUSkyVertex, []uint32) {
	e := SkyCubeExtent
	verts := []GPUSkyVertex{
		{Position: [3]float32{-e, -e, e}},
		{Position: [3]float32{-e, e, e}},
		{Position: [3]float32{-e, -e, -e}},
		{Position: [3]float32{-e, e, -e}},
		{Position: [3]float32{e, -e, e}},
		{Position: [3]float32{e, e, e}},
		{Position: [3]float32{e, -e, -e}},
		{Position: [3]float32{e, e, -e}},
	}
	inds := []uint32{
		0, 2, 1,
		2, 6, 3,
		6, 4, 7,
		4, 0, 5,
		2, 0, 6,
		7, 5, 3,
		2, 3, 1,
		6, 7, 3,
		4, 5, 7,
		0, 1, 5,
		0, 4, 6,
		5, 1, 3,
	}
	return verts, inds
}

// SkyCubeVertexData returns the sky cube mesh serialized for GPU upload.
//
// Returns:
//   - []byte: marshaled vertex data (8 × 12 bytes)
//   - []byte: little-endian uint32 index data (36 × 4 bytes)
//   - int: the index count (36)
func SkyCubeVertexData() ([]byte, []byte, int) {
	verts, inds := SkyCubeMesh()
	vertexData := make([]byte, 0, len(verts)*12)
	for i := range verts {
		vertexData = append(vertexData, verts[i].Marshal()...)
	}
	indexData := make([]byte, len(inds)*4)
	for i, idx := range inds {
		indexData[i*4] = byte(idx)
		indexData[i*4+1] = byte(idx >> 8)
		indexData[i*4+2] = byte(idx >> 16)
		indexData[i*4+3] = byte(idx >> 24)
	}
	return vertexData, indexData, len(inds)
}
