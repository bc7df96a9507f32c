package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoncaloFDS/tracer/render"
)

func TestVertexFormatSize(t *testing.T) {
	assert.Equal(t, uint32(4), Float32.Size())
	assert.Equal(t, uint32(12), Float32x3.Size())
	assert.Equal(t, uint32(16), Uint32x4.Size())
	assert.Equal(t, uint32(2), Unorm8x2.Size())
	assert.Equal(t, uint32(4), Snorm16x2.Size())
	assert.Equal(t, uint32(8), Unorm16x4.Size())
}

func TestVertexFormatRenderFormat(t *testing.T) {
	assert.Equal(t, render.FormatR32G32B32Sfloat, Float32x3.RenderFormat())
	assert.Equal(t, render.FormatR8G8B8A8Unorm, Unorm8x4.RenderFormat())
	assert.Equal(t, render.FormatR32Uint, Uint32.RenderFormat())
	assert.Equal(t, render.FormatR16G16B16A16Snorm, Snorm16x4.RenderFormat())
}

func TestAttributeCount(t *testing.T) {
	a := Attribute{Format: Float32x3, Data: make([]byte, 36)}
	assert.Equal(t, uint32(3), a.Count())

	bad := Attribute{Format: Float32x3, Data: make([]byte, 35)}
	assert.Panics(t, func() { bad.Count() })
}

func TestIndicesCount(t *testing.T) {
	assert.Equal(t, uint32(3), Indices{Type: render.IndexUint16, Data: make([]byte, 6)}.Count())
	assert.Equal(t, uint32(3), Indices{Type: render.IndexUint32, Data: make([]byte, 12)}.Count())
	assert.Panics(t, func() { Indices{Type: render.IndexNone, Data: make([]byte, 4)}.Count() })
}

func TestSetAttributeCountMismatch(t *testing.T) {
	m := New()
	m.SetAttribute(Position, Attribute{Format: Float32x3, Data: make([]byte, 36)})
	assert.Panics(t, func() {
		m.SetAttribute("normal", Attribute{Format: Float32x3, Data: make([]byte, 48)})
	})
	// Replacing an attribute with a different count for the same name is
	// fine while it is the only one.
	solo := New()
	solo.SetAttribute(Position, Attribute{Format: Float32x3, Data: make([]byte, 36)})
	solo.SetAttribute(Position, Attribute{Format: Float32x3, Data: make([]byte, 48)})
	assert.Equal(t, uint32(4), solo.VertexCount())
}

func TestMeshAccessors(t *testing.T) {
	m := New()
	require.Equal(t, render.TopologyTriangleList, m.Topology)
	assert.Equal(t, uint32(0), m.VertexCount())

	_, ok := m.Indices()
	assert.False(t, ok)

	m.SetIndices(Indices{Type: render.IndexUint32, Data: make([]byte, 12)})
	ix, ok := m.Indices()
	require.True(t, ok)
	assert.Equal(t, uint32(3), ix.Count())
}
