// Package ui defines the immediate-mode overlay contract the renderer
// consumes: meshes of screen-space vertices with clip rectangles and a
// texture id, plus a font atlas with a version counter that tells the
// renderer when to re-upload the texture.
package ui

import (
	"encoding/binary"
	"math"

	"github.com/GoncaloFDS/tracer/render"
)

// VertexSize is the packed byte size of one vertex.
const VertexSize = 20

// Vertex is one overlay vertex: screen position in pixels, atlas UV and
// an RGBA color.
type Vertex struct {
	Pos   [2]float32
	UV    [2]float32
	Color [4]uint8
}

// TextureID names the texture a mesh samples. The font atlas is texture
// zero.
type TextureID uint32

// FontTexture is the atlas texture id.
const FontTexture TextureID = 0

// Mesh is one scissored indexed draw of the overlay.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	ClipRect render.Rect2D
	Texture  TextureID
}

// DrawData is everything the overlay wants drawn this frame.
type DrawData struct {
	Meshes []Mesh
}

// VertexCount returns the total vertex count across meshes.
func (d *DrawData) VertexCount() int {
	n := 0
	for i := range d.Meshes {
		n += len(d.Meshes[i].Vertices)
	}
	return n
}

// IndexCount returns the total index count across meshes.
func (d *DrawData) IndexCount() int {
	n := 0
	for i := range d.Meshes {
		n += len(d.Meshes[i].Indices)
	}
	return n
}

// EncodeVertices packs every mesh's vertices back to back, little
// endian, VertexSize bytes apiece.
func (d *DrawData) EncodeVertices() []byte {
	out := make([]byte, 0, d.VertexCount()*VertexSize)
	for i := range d.Meshes {
		for _, v := range d.Meshes[i].Vertices {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v.Pos[0]))
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v.Pos[1]))
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v.UV[0]))
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v.UV[1]))
			out = append(out, v.Color[0], v.Color[1], v.Color[2], v.Color[3])
		}
	}
	return out
}

// EncodeIndices packs every mesh's indices back to back, little endian
// 32 bit. Indices stay mesh relative; draws apply the running vertex
// offset.
func (d *DrawData) EncodeIndices() []byte {
	out := make([]byte, 0, d.IndexCount()*4)
	for i := range d.Meshes {
		for _, ix := range d.Meshes[i].Indices {
			out = binary.LittleEndian.AppendUint32(out, ix)
		}
	}
	return out
}
