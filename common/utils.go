package common

import (
	"encoding/binary"
	"math"
)

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// PutFloat32 writes the IEEE-754 bit pattern of v into buf at the given byte
// offset, little-endian. This is the single sanctioned float→byte conversion
// for GPU payloads; raw same-size reinterpretation is deliberately avoided so
// the byte layout stays explicit and testable.
//
// Parameters:
//   - buf: destination buffer (must have at least offset+4 bytes)
//   - offset: byte offset to write at
//   - v: the float value to encode
func PutFloat32(buf []byte, offset int, v float32) {
	binary.LittleEndian.PutUint32(buf[offset:offset+4], math.Float32bits(v))
}

// Float4Bytes encodes four float32 values as 16 little-endian bytes, the texel
// payload layout for an RGBA32Float texture.
//
// Parameters:
//   - v: the four components to encode
//
// Returns:
//   - []byte: a fresh 16-byte buffer holding the encoded components
func Float4Bytes(v [4]float32) []byte {
	buf := make([]byte, 16)
	for i, c := range v {
		PutFloat32(buf, i*4, c)
	}
	return buf
}

// Float3Bits returns the IEEE-754 bit patterns of three float32 values.
// Exposed for callers that need the integer representation of a color
// payload rather than its byte serialization.
//
// Parameters:
//   - v: the three components to convert
//
// Returns:
//   - [3]uint32: the bit pattern of each component
func Float3Bits(v [3]float32) [3]uint32 {
	return [3]uint32{
		math.Float32bits(v[0]),
		math.Float32bits(v[1]),
		math.Float32bits(v[2]),
	}
}
