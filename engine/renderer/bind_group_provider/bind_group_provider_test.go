package bind_group_provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBindGroupProvider(t *testing.T) {
	p := NewBindGroupProvider("Test Provider")
	require.NotNil(t, p)

	assert.Equal(t, "Test Provider", p.Label())
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.BindGroupLayout())
	assert.NotNil(t, p.Buffers())
	assert.NotNil(t, p.TextureViews())
	assert.NotNil(t, p.Samplers())
	assert.Nil(t, p.VertexBuffer())
	assert.Nil(t, p.IndexBuffer())
	assert.Zero(t, p.IndexCount())
}

func TestBindGroupProvider_IndexCount(t *testing.T) {
	p := NewBindGroupProvider("Mesh")
	p.SetIndexCount(36)
	assert.Equal(t, 36, p.IndexCount())
}

func TestBindGroupProvider_ReleaseEmpty(t *testing.T) {
	p := NewBindGroupProvider("Empty")
	// Release with no GPU resources allocated must be a no-op.
	assert.NotPanics(t, func() { p.Release() })
}
