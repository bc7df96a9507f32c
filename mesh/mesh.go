// Package mesh holds CPU-side triangle mesh data in the shape the
// renderer consumes: named typed vertex attributes plus optional 16 or
// 32 bit indices. A mesh with a position attribute and indices can be
// turned into a bottom-level acceleration structure.
package mesh

import (
	"fmt"

	"github.com/GoncaloFDS/tracer/render"
)

// VertexFormat is the element type of one vertex attribute.
type VertexFormat int

const (
	Float32 VertexFormat = iota
	Float32x2
	Float32x3
	Float32x4
	Sint32
	Sint32x2
	Sint32x3
	Sint32x4
	Uint32
	Uint32x2
	Uint32x3
	Uint32x4
	Unorm8x2
	Unorm8x4
	Snorm8x2
	Snorm8x4
	Unorm16x2
	Unorm16x4
	Snorm16x2
	Snorm16x4
)

// Size returns the byte size of one element.
func (f VertexFormat) Size() uint32 {
	switch f {
	case Float32, Sint32, Uint32:
		return 4
	case Float32x2, Sint32x2, Uint32x2:
		return 8
	case Float32x3, Sint32x3, Uint32x3:
		return 12
	case Float32x4, Sint32x4, Uint32x4:
		return 16
	case Unorm8x2, Snorm8x2:
		return 2
	case Unorm8x4, Snorm8x4, Unorm16x2, Snorm16x2:
		return 4
	case Unorm16x4, Snorm16x4:
		return 8
	}
	panic("mesh: unknown vertex format")
}

// RenderFormat returns the device format of the attribute.
func (f VertexFormat) RenderFormat() render.Format {
	switch f {
	case Float32:
		return render.FormatR32Sfloat
	case Float32x2:
		return render.FormatR32G32Sfloat
	case Float32x3:
		return render.FormatR32G32B32Sfloat
	case Float32x4:
		return render.FormatR32G32B32A32Sfloat
	case Sint32:
		return render.FormatR32Sint
	case Sint32x2:
		return render.FormatR32G32Sint
	case Sint32x3:
		return render.FormatR32G32B32Sint
	case Sint32x4:
		return render.FormatR32G32B32A32Sint
	case Uint32:
		return render.FormatR32Uint
	case Uint32x2:
		return render.FormatR32G32Uint
	case Uint32x3:
		return render.FormatR32G32B32Uint
	case Uint32x4:
		return render.FormatR32G32B32A32Uint
	case Unorm8x2:
		return render.FormatR8G8Unorm
	case Unorm8x4:
		return render.FormatR8G8B8A8Unorm
	case Snorm8x2:
		return render.FormatR8G8Snorm
	case Snorm8x4:
		return render.FormatR8G8B8A8Snorm
	case Unorm16x2:
		return render.FormatR16G16Unorm
	case Unorm16x4:
		return render.FormatR16G16B16A16Unorm
	case Snorm16x2:
		return render.FormatR16G16Snorm
	case Snorm16x4:
		return render.FormatR16G16B16A16Snorm
	}
	panic("mesh: unknown vertex format")
}

// Position is the attribute name acceleration-structure builds require,
// with format Float32x3.
const Position = "position"

// Conventional names for the other attributes loaders produce.
const (
	Normal   = "normal"
	TexCoord = "texcoord"
)

// Attribute is one uniformly typed vertex stream.
type Attribute struct {
	Format VertexFormat
	Data   []byte
}

// Count returns the number of elements in the stream.
// It panics if the data length is not a multiple of the element size.
func (a Attribute) Count() uint32 {
	size := a.Format.Size()
	if uint32(len(a.Data))%size != 0 {
		panic("mesh: attribute data not a multiple of its element size")
	}
	return uint32(len(a.Data)) / size
}

// Indices is an index stream of 16 or 32 bit elements.
type Indices struct {
	Type render.IndexType
	Data []byte
}

// Count returns the number of indices.
func (ix Indices) Count() uint32 {
	var size uint32
	switch ix.Type {
	case render.IndexUint16:
		size = 2
	case render.IndexUint32:
		size = 4
	default:
		panic("mesh: unknown index type")
	}
	if uint32(len(ix.Data))%size != 0 {
		panic("mesh: index data not a multiple of its element size")
	}
	return uint32(len(ix.Data)) / size
}

// Mesh is indexed triangle geometry with named vertex attributes.
// All attributes of one mesh describe the same vertices and must agree
// on the element count.
type Mesh struct {
	Topology render.PrimitiveTopology

	attrs   map[string]Attribute
	indices *Indices
}

// New returns an empty triangle-list mesh.
func New() *Mesh {
	return &Mesh{
		Topology: render.TopologyTriangleList,
		attrs:    make(map[string]Attribute),
	}
}

// SetAttribute adds or replaces a named vertex stream. It panics when the
// stream's element count disagrees with attributes already present.
func (m *Mesh) SetAttribute(name string, a Attribute) {
	n := a.Count()
	for have, b := range m.attrs {
		if have != name && b.Count() != n {
			panic(fmt.Sprintf("mesh: attribute %q has %d vertices, %q has %d",
				name, n, have, b.Count()))
		}
	}
	m.attrs[name] = a
}

// Attribute returns a named vertex stream.
func (m *Mesh) Attribute(name string) (Attribute, bool) {
	a, ok := m.attrs[name]
	return a, ok
}

// SetIndices sets the index stream.
func (m *Mesh) SetIndices(ix Indices) {
	m.indices = &ix
}

// Indices returns the index stream, or false when the mesh is not
// indexed.
func (m *Mesh) Indices() (Indices, bool) {
	if m.indices == nil {
		return Indices{}, false
	}
	return *m.indices, true
}

// VertexCount returns the vertex count shared by all attributes, zero
// for an empty mesh.
func (m *Mesh) VertexCount() uint32 {
	for _, a := range m.attrs {
		return a.Count()
	}
	return 0
}
