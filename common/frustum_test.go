package common

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

func TestFrustumTestSphere(t *testing.T) {
	// View is identity, so the frustum looks down -Z from the origin.
	proj := make([]float32, 16)
	Perspective(proj, math32.Pi/2, 1.0, 0.1, 100.0)
	f := ExtractFrustumFromMatrix(proj)

	tests := []struct {
		name   string
		center [3]float32
		radius float32
		want   bool
	}{
		{"center of view", [3]float32{0, 0, -50}, 1, true},
		{"behind camera", [3]float32{0, 0, 50}, 1, false},
		{"beyond far plane", [3]float32{0, 0, -200}, 1, false},
		{"far to the left", [3]float32{-1000, 0, -50}, 1, false},
		{"straddling near plane", [3]float32{0, 0, 0}, 1, true},
		{"big sphere outside but overlapping", [3]float32{0, 0, -150}, 60, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.TestSphere(tt.center, tt.radius))
		})
	}
}

func TestFrustumPlanesNormalized(t *testing.T) {
	proj := make([]float32, 16)
	Perspective(proj, math32.Pi/3, 16.0/9.0, 0.5, 500.0)
	f := ExtractFrustumFromMatrix(proj)

	for i, p := range f.Planes {
		length := math32.Sqrt(p.Normal[0]*p.Normal[0] + p.Normal[1]*p.Normal[1] + p.Normal[2]*p.Normal[2])
		assert.InDelta(t, 1.0, length, epsilon, "plane %d", i)
	}
}
