package ui

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeVertices(t *testing.T) {
	d := DrawData{Meshes: []Mesh{
		{Vertices: []Vertex{
			{Pos: [2]float32{1, 2}, UV: [2]float32{0.5, 0.25}, Color: [4]uint8{10, 20, 30, 40}},
		}},
		{Vertices: []Vertex{
			{Pos: [2]float32{3, 4}},
		}},
	}}
	require.Equal(t, 2, d.VertexCount())

	b := d.EncodeVertices()
	require.Len(t, b, 2*VertexSize)

	at := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
	}
	assert.Equal(t, float32(1), at(0))
	assert.Equal(t, float32(2), at(4))
	assert.Equal(t, float32(0.5), at(8))
	assert.Equal(t, float32(0.25), at(12))
	assert.Equal(t, []byte{10, 20, 30, 40}, b[16:20])
	assert.Equal(t, float32(3), at(VertexSize))
}

func TestEncodeIndices(t *testing.T) {
	d := DrawData{Meshes: []Mesh{
		{Indices: []uint32{0, 1, 2}},
		{Indices: []uint32{0, 2, 3}},
	}}
	require.Equal(t, 6, d.IndexCount())

	b := d.EncodeIndices()
	require.Len(t, b, 24)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(b[8:]))
	// Indices stay mesh relative across the boundary.
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(b[12:]))
}

func TestFontAtlas(t *testing.T) {
	a, err := NewFontAtlas(14)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), a.Version())

	ext := a.Extent()
	assert.Equal(t, uint32(atlasWidth), ext.Width)
	assert.Positive(t, ext.Height)

	g, ok := a.Glyph('A')
	require.True(t, ok)
	assert.Positive(t, g.Size[0])
	assert.Positive(t, g.Size[1])
	assert.Positive(t, g.Advance)
	assert.LessOrEqual(t, g.UVMax[0], float32(1))
	assert.LessOrEqual(t, g.UVMax[1], float32(1))
	assert.Less(t, g.UVMin[0], g.UVMax[0])
	assert.Less(t, g.UVMin[1], g.UVMax[1])

	rgba := a.RGBA()
	assert.Len(t, rgba, int(ext.Width)*int(ext.Height)*4)
	for i := 0; i < len(rgba); i += 4 {
		if rgba[i] != rgba[i+1] || rgba[i] != rgba[i+2] || rgba[i] != rgba[i+3] {
			t.Fatalf("pixel %d not expanded uniformly: % x", i/4, rgba[i:i+4])
		}
	}

	require.NoError(t, a.SetSize(18))
	assert.Equal(t, uint64(2), a.Version())
}

func TestFontAtlasText(t *testing.T) {
	a, err := NewFontAtlas(14)
	require.NoError(t, err)

	m := a.Text("Hi", 10, 20, [4]uint8{255, 255, 255, 255})
	assert.Equal(t, FontTexture, m.Texture)
	assert.Len(t, m.Vertices, 8)
	assert.Len(t, m.Indices, 12)

	// Space advances the pen without emitting a quad.
	sp := a.Text(" ", 0, 0, [4]uint8{})
	assert.Empty(t, sp.Vertices)

	wide := a.Text("a a", 0, 0, [4]uint8{})
	narrow := a.Text("aa", 0, 0, [4]uint8{})
	assert.Len(t, wide.Vertices, len(narrow.Vertices))
	if len(wide.Vertices) == 8 {
		assert.Greater(t, wide.Vertices[4].Pos[0], narrow.Vertices[4].Pos[0])
	}
}
