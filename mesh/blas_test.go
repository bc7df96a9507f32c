package mesh

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoncaloFDS/tracer/render"
)

// triangle returns the canonical single-triangle mesh.
func triangle() *Mesh {
	verts := [][3]float32{
		{-0.5, -0.5, 0},
		{0.5, -0.5, 0},
		{0, 0.5, 0},
	}
	pos := make([]byte, 0, len(verts)*12)
	for _, v := range verts {
		for _, f := range v {
			pos = binary.LittleEndian.AppendUint32(pos, math.Float32bits(f))
		}
	}
	ix := make([]byte, 0, 12)
	for _, i := range []uint32{0, 1, 2} {
		ix = binary.LittleEndian.AppendUint32(ix, i)
	}

	m := New()
	m.SetAttribute(Position, Attribute{Format: Float32x3, Data: pos})
	m.SetIndices(Indices{Type: render.IndexUint32, Data: ix})
	return m
}

func TestAccelInputTriangle(t *testing.T) {
	in, err := accelInputFor(triangle())
	require.NoError(t, err)
	assert.Equal(t, uint32(3), in.vertexCount)
	assert.Equal(t, uint64(12), in.vertexStride)
	assert.Equal(t, uint32(1), in.triangleCount)
	assert.Equal(t, render.IndexUint32, in.indexType)
}

func TestAccelInputErrors(t *testing.T) {
	m := New()
	_, err := accelInputFor(m)
	assert.ErrorIs(t, err, ErrNoPosition)

	m.SetAttribute(Position, Attribute{Format: Float32x3, Data: make([]byte, 36)})
	_, err = accelInputFor(m)
	assert.ErrorIs(t, err, ErrNoIndices)

	m.SetIndices(Indices{Type: render.IndexUint16, Data: make([]byte, 8)})
	_, err = accelInputFor(m)
	assert.Error(t, err, "partial triangle must be rejected")

	strip := triangle()
	strip.Topology = render.TopologyTriangleStrip
	_, err = accelInputFor(strip)
	assert.Error(t, err)

	flat := New()
	flat.SetAttribute(Position, Attribute{Format: Float32x2, Data: make([]byte, 24)})
	flat.SetIndices(Indices{Type: render.IndexUint32, Data: make([]byte, 12)})
	_, err = accelInputFor(flat)
	assert.Error(t, err, "2-component positions must be rejected")
}
