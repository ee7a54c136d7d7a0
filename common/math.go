package common

import (
	"errors"
	"unsafe"

	"github.com/chewxy/math32"
)

// ErrDegenerateRotation is returned by RotationBetween when the two input
// directions are anti-parallel with no unique rotation axis, or when either
// input has zero length.
var ErrDegenerateRotation = errors.New("degenerate axis pair cannot be expressed as a rotation")

// Identity resets a 4x4 matrix (flat slice) to the identity matrix.
// The matrix is stored in column-major order.
//
// Parameters:
//   - m: destination slice (must be at least 16 elements)
func Identity(m []float32) {
	for i := range m {
		m[i] = 0
	}
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// Mul4 multiplies two 4x4 matrices and stores the result in out.
// All matrices are stored in column-major order (WebGPU convention).
// Result: out = a * b
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - a: left-hand matrix (16 elements)
//   - b: right-hand matrix (16 elements)
func Mul4(out, a, b []float32) {
	var buf [16]float32
	for i := 0; i < 4; i++ { // column of B
		for j := 0; j < 4; j++ { // row of A
			sum := float32(0)
			for k := 0; k < 4; k++ {
				sum += a[k*4+j] * b[i*4+k]
			}
			buf[i*4+j] = sum
		}
	}
	copy(out, buf[:])
}

// Perspective creates a perspective projection matrix targeting the WebGPU
// clip space convention (depth in [0, 1]).
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
func Perspective(out []float32, fovY, aspect, near, far float32) {
	f := 1.0 / math32.Tan(fovY/2.0)
	Identity(out)

	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	out[15] = 0.0
}

// Orthographic creates an orthographic projection matrix targeting the WebGPU
// clip space convention (depth in [0, 1]). Used for directional shadow passes.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - left, right, bottom, top: extents of the view volume
//   - near, far: depth extents of the view volume
func Orthographic(out []float32, left, right, bottom, top, near, far float32) {
	Identity(out)
	out[0] = 2 / (right - left)
	out[5] = 2 / (top - bottom)
	out[10] = 1 / (near - far)
	out[12] = (left + right) / (left - right)
	out[13] = (bottom + top) / (bottom - top)
	out[14] = near / (near - far)
}

// Translate writes a translation matrix into out.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - x, y, z: translation components
func Translate(out []float32, x, y, z float32) {
	Identity(out)
	out[12], out[13], out[14] = x, y, z
}

// BuildModelMatrix constructs a 4x4 model matrix from position, Euler rotation, and scale.
// The rotation order is Y * X * Z (yaw-pitch-roll). All matrices are column-major.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - posX, posY, posZ: translation in world space
//   - rotX, rotY, rotZ: rotation angles in radians around each axis
//   - scaleX, scaleY, scaleZ: scale factors along each axis
func BuildModelMatrix(out []float32, posX, posY, posZ, rotX, rotY, rotZ, scaleX, scaleY, scaleZ float32) {
	cx := math32.Cos(rotX)
	sx := math32.Sin(rotX)
	cy := math32.Cos(rotY)
	sy := math32.Sin(rotY)
	cz := math32.Cos(rotZ)
	sz := math32.Sin(rotZ)

	// R = Ry * Rx * Rz, column-major
	out[0] = (cy*cz + sy*sx*sz) * scaleX
	out[1] = (cx * sz) * scaleX
	out[2] = (-sy*cz + cy*sx*sz) * scaleX
	out[3] = 0

	out[4] = (cy*-sz + sy*sx*cz) * scaleY
	out[5] = (cx * cz) * scaleY
	out[6] = (sy*sz + cy*sx*cz) * scaleY
	out[7] = 0

	out[8] = (sy * cx) * scaleZ
	out[9] = (-sx) * scaleZ
	out[10] = (cy * cx) * scaleZ
	out[11] = 0

	out[12] = posX
	out[13] = posY
	out[14] = posZ
	out[15] = 1
}

// LookAt creates a view matrix that positions and orients the camera.
// The resulting matrix transforms world coordinates to view/camera space.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - eyeX, eyeY, eyeZ: camera position in world space
//   - centerX, centerY, centerZ: target point the camera looks at
//   - upX, upY, upZ: up vector defining camera orientation (typically 0,1,0)
func LookAt(out []float32, eyeX, eyeY, eyeZ, centerX, centerY, centerZ, upX, upY, upZ float32) {
	z0 := eyeX - centerX
	z1 := eyeY - centerY
	z2 := eyeZ - centerZ
	val := z0*z0 + z1*z1 + z2*z2
	if val == 0 {
		val = 1
	}
	invLen := 1.0 / math32.Sqrt(val)
	z0 *= invLen
	z1 *= invLen
	z2 *= invLen

	x0 := upY*z2 - upZ*z1
	x1 := upZ*z0 - upX*z2
	x2 := upX*z1 - upY*z0
	val = x0*x0 + x1*x1 + x2*x2
	if val == 0 {
		val = 1
	}
	invLen = 1.0 / math32.Sqrt(val)
	x0 *= invLen
	x1 *= invLen
	x2 *= invLen

	y0 := z1*x2 - z2*x1
	y1 := z2*x0 - z0*x2
	y2 := z0*x1 - z1*x0

	out[0], out[4], out[8], out[12] = x0, x1, x2, -(x0*eyeX + x1*eyeY + x2*eyeZ)
	out[1], out[5], out[9], out[13] = y0, y1, y2, -(y0*eyeX + y1*eyeY + y2*eyeZ)
	out[2], out[6], out[10], out[14] = z0, z1, z2, -(z0*eyeX + z1*eyeY + z2*eyeZ)
	out[3], out[7], out[11], out[15] = 0, 0, 0, 1
}

// Invert4 computes the inverse of a 4x4 column-major matrix using the Laplace
// expansion (cofactor) method. If the matrix is singular (determinant ≈ 0) the
// output is left unchanged and the function returns false.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - m: source matrix (16 elements, column-major)
//
// Returns:
//   - bool: true if the matrix was successfully inverted, false if singular
func Invert4(out, m []float32) bool {
	s0 := m[0]*m[5] - m[4]*m[1]
	s1 := m[0]*m[6] - m[4]*m[2]
	s2 := m[0]*m[7] - m[4]*m[3]
	s3 := m[1]*m[6] - m[5]*m[2]
	s4 := m[1]*m[7] - m[5]*m[3]
	s5 := m[2]*m[7] - m[6]*m[3]

	c5 := m[10]*m[15] - m[14]*m[11]
	c4 := m[9]*m[15] - m[13]*m[11]
	c3 := m[9]*m[14] - m[13]*m[10]
	c2 := m[8]*m[15] - m[12]*m[11]
	c1 := m[8]*m[14] - m[12]*m[10]
	c0 := m[8]*m[13] - m[12]*m[9]

	det := s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0
	if det == 0 {
		return false
	}

	invDet := 1.0 / det

	out[0] = (m[5]*c5 - m[6]*c4 + m[7]*c3) * invDet
	out[1] = (-m[1]*c5 + m[2]*c4 - m[3]*c3) * invDet
	out[2] = (m[13]*s5 - m[14]*s4 + m[15]*s3) * invDet
	out[3] = (-m[9]*s5 + m[10]*s4 - m[11]*s3) * invDet

	out[4] = (-m[4]*c5 + m[6]*c2 - m[7]*c1) * invDet
	out[5] = (m[0]*c5 - m[2]*c2 + m[3]*c1) * invDet
	out[6] = (-m[12]*s5 + m[14]*s2 - m[15]*s1) * invDet
	out[7] = (m[8]*s5 - m[10]*s2 + m[11]*s1) * invDet

	out[8] = (m[4]*c4 - m[5]*c2 + m[7]*c0) * invDet
	out[9] = (-m[0]*c4 + m[1]*c2 - m[3]*c0) * invDet
	out[10] = (m[12]*s4 - m[13]*s2 + m[15]*s0) * invDet
	out[11] = (-m[8]*s4 + m[9]*s2 - m[11]*s0) * invDet

	out[12] = (-m[4]*c3 + m[5]*c1 - m[6]*c0) * invDet
	out[13] = (m[0]*c3 - m[1]*c1 + m[2]*c0) * invDet
	out[14] = (-m[12]*s3 + m[13]*s1 - m[14]*s0) * invDet
	out[15] = (m[8]*s3 - m[9]*s1 + m[10]*s0) * invDet

	return true
}

// Quat is a unit quaternion (x, y, z, w) representing a 3-D rotation.
type Quat [4]float32

// QuatIdentity returns the identity rotation.
//
// Returns:
//   - Quat: the identity quaternion (0, 0, 0, 1)
func QuatIdentity() Quat {
	return Quat{0, 0, 0, 1}
}

// RotationBetween computes the shortest-arc rotation mapping the direction
// `from` onto the direction `to`. Inputs need not be normalized.
//
// Parameters:
//   - from: the starting direction
//   - to: the target direction
//
// Returns:
//   - Quat: the unit quaternion rotating from onto to
//   - error: ErrDegenerateRotation if the directions are anti-parallel or zero-length
func RotationBetween(from, to [3]float32) (Quat, error) {
	f, ok := normalize3(from)
	if !ok {
		return QuatIdentity(), ErrDegenerateRotation
	}
	t, ok := normalize3(to)
	if !ok {
		return QuatIdentity(), ErrDegenerateRotation
	}

	d := dot3(f, t)
	if d >= 1.0-1e-6 {
		return QuatIdentity(), nil
	}
	if d <= -1.0+1e-6 {
		// Anti-parallel: every axis perpendicular to `from` is a valid
		// rotation axis, so no unique shortest arc exists.
		return QuatIdentity(), ErrDegenerateRotation
	}

	axis := cross3(f, t)
	s := math32.Sqrt((1 + d) * 2)
	inv := 1 / s
	q := Quat{axis[0] * inv, axis[1] * inv, axis[2] * inv, s * 0.5}
	return q.normalized(), nil
}

// Mat4 writes the homogeneous 4x4 rotation matrix for q into out (column-major).
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
func (q Quat) Mat4(out []float32) {
	x, y, z, w := q[0], q[1], q[2], q[3]

	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	out[0] = 1 - 2*(yy+zz)
	out[1] = 2 * (xy + wz)
	out[2] = 2 * (xz - wy)
	out[3] = 0

	out[4] = 2 * (xy - wz)
	out[5] = 1 - 2*(xx+zz)
	out[6] = 2 * (yz + wx)
	out[7] = 0

	out[8] = 2 * (xz + wy)
	out[9] = 2 * (yz - wx)
	out[10] = 1 - 2*(xx+yy)
	out[11] = 0

	out[12], out[13], out[14], out[15] = 0, 0, 0, 1
}

// Rotate applies the rotation to a direction vector.
//
// Parameters:
//   - v: the direction to rotate
//
// Returns:
//   - [3]float32: the rotated direction
func (q Quat) Rotate(v [3]float32) [3]float32 {
	// v' = v + 2w(u × v) + 2(u × (u × v)) where u = (x, y, z)
	u := [3]float32{q[0], q[1], q[2]}
	uv := cross3(u, v)
	uuv := cross3(u, uv)
	return [3]float32{
		v[0] + 2*(q[3]*uv[0]+uuv[0]),
		v[1] + 2*(q[3]*uv[1]+uuv[1]),
		v[2] + 2*(q[3]*uv[2]+uuv[2]),
	}
}

func (q Quat) normalized() Quat {
	l := math32.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
	if l == 0 {
		return QuatIdentity()
	}
	inv := 1 / l
	return Quat{q[0] * inv, q[1] * inv, q[2] * inv, q[3] * inv}
}

func normalize3(v [3]float32) ([3]float32, bool) {
	l := math32.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if l == 0 {
		return v, false
	}
	inv := 1 / l
	return [3]float32{v[0] * inv, v[1] * inv, v[2] * inv}, true
}

func dot3(a, b [3]float32) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func cross3(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}
