package mesh

import (
	"errors"
	"fmt"

	"github.com/GoncaloFDS/tracer/render"
)

var (
	// ErrNoPosition reports a mesh without the position attribute.
	ErrNoPosition = errors.New("mesh: no position attribute")
	// ErrNoIndices reports a mesh without index data.
	ErrNoIndices = errors.New("mesh: no index data")
)

// accelInput is everything an acceleration-structure build derives from a
// mesh before any device object exists.
type accelInput struct {
	vertexCount   uint32
	vertexStride  uint64
	triangleCount uint32
	indexType     render.IndexType
}

// accelInputFor validates a mesh for triangle builds. The mesh must be a
// triangle list with a Float32x3 position attribute and indices whose
// count is a multiple of three.
func accelInputFor(m *Mesh) (accelInput, error) {
	if m.Topology != render.TopologyTriangleList {
		return accelInput{}, fmt.Errorf("mesh: topology %d not buildable, want triangle list", m.Topology)
	}
	pos, ok := m.Attribute(Position)
	if !ok {
		return accelInput{}, ErrNoPosition
	}
	if pos.Format != Float32x3 {
		return accelInput{}, fmt.Errorf("mesh: position format %d, want Float32x3", pos.Format)
	}
	ix, ok := m.Indices()
	if !ok {
		return accelInput{}, ErrNoIndices
	}
	n := ix.Count()
	if n%3 != 0 {
		return accelInput{}, fmt.Errorf("mesh: %d indices do not form whole triangles", n)
	}
	return accelInput{
		vertexCount:   pos.Count(),
		vertexStride:  uint64(pos.Format.Size()),
		triangleCount: n / 3,
		indexType:     ix.Type,
	}, nil
}

// BLAS is a built bottom-level acceleration structure together with the
// device buffers backing it.
type BLAS struct {
	structure render.AccelerationStructure
	vertices  render.Buffer
	indices   render.Buffer
	backing   render.Buffer
}

// Structure returns the built acceleration structure.
func (b *BLAS) Structure() render.AccelerationStructure { return b.structure }

// Address returns the structure's device address, used in instance
// records of top-level builds.
func (b *BLAS) Address() render.DeviceAddress { return b.structure.Address() }

// Destroy releases the structure and its buffers.
func (b *BLAS) Destroy(dev *render.Device) {
	dev.DestroyAccelerationStructure(b.structure)
	dev.DestroyBuffer(b.backing)
	dev.DestroyBuffer(b.indices)
	dev.DestroyBuffer(b.vertices)
}

const accelVertexUsage = render.BufferUsageAccelBuildInput |
	render.BufferUsageVertex |
	render.BufferUsageStorage |
	render.BufferUsageDeviceAddress

const accelIndexUsage = render.BufferUsageAccelBuildInput |
	render.BufferUsageIndex |
	render.BufferUsageStorage |
	render.BufferUsageDeviceAddress

// BuildBLAS uploads the mesh's position and index streams, sizes and
// creates the structure, and records and submits the build. It blocks
// until the device finishes building.
func BuildBLAS(dev *render.Device, q *render.Queue, m *Mesh) (*BLAS, error) {
	in, err := accelInputFor(m)
	if err != nil {
		return nil, err
	}

	sizes, err := dev.AccelerationStructureBuildSizes(render.LevelBottom, render.BuildPreferFastTrace,
		[]render.GeometrySizeInfo{{
			Kind:          render.GeometryTriangles,
			MaxPrimitives: in.triangleCount,
			MaxVertices:   in.vertexCount,
			VertexFormat:  render.FormatR32G32B32Sfloat,
			VertexStride:  in.vertexStride,
			IndexType:     in.indexType,
		}})
	if err != nil {
		return nil, err
	}

	b := &BLAS{}
	undo := func(err error) (*BLAS, error) {
		b.Destroy(dev)
		return nil, err
	}

	pos, _ := m.Attribute(Position)
	ix, _ := m.Indices()
	if b.vertices, err = dev.CreateBufferWithData(accelVertexUsage, pos.Data); err != nil {
		return undo(err)
	}
	if b.indices, err = dev.CreateBufferWithData(accelIndexUsage, ix.Data); err != nil {
		return undo(err)
	}
	if b.backing, err = dev.CreateBuffer(render.BufferInfo{
		Size:  sizes.AccelerationStructure,
		Usage: render.BufferUsageAccelStorage | render.BufferUsageDeviceAddress,
	}); err != nil {
		return undo(err)
	}
	if b.structure, err = dev.CreateAccelerationStructure(render.AccelerationStructureInfo{
		Level:  render.LevelBottom,
		Region: render.WholeBuffer(b.backing),
	}); err != nil {
		return undo(err)
	}

	scratch, err := dev.CreateBuffer(render.BufferInfo{
		Size:  sizes.BuildScratch,
		Usage: render.BufferUsageStorage | render.BufferUsageDeviceAddress,
	})
	if err != nil {
		return undo(err)
	}
	defer dev.DestroyBuffer(scratch)

	enc, err := q.CreateEncoder()
	if err != nil {
		return undo(err)
	}
	enc.BuildAccelerationStructures([]render.AccelerationStructureBuild{{
		Dst:   b.structure,
		Flags: render.BuildPreferFastTrace,
		Geometries: []render.AccelerationStructureGeometry{{
			Kind:           render.GeometryTriangles,
			Flags:          render.GeometryOpaque,
			VertexFormat:   render.FormatR32G32B32Sfloat,
			VertexData:     b.vertices.Address(),
			VertexStride:   in.vertexStride,
			MaxVertex:      in.vertexCount - 1,
			IndexType:      in.indexType,
			IndexData:      b.indices.Address(),
			PrimitiveCount: in.triangleCount,
		}},
		Scratch: scratch.Address(),
	}})
	cb, err := enc.Finish(dev)
	if err != nil {
		return undo(err)
	}

	fence, err := dev.CreateFence(false)
	if err != nil {
		return undo(err)
	}
	defer dev.DestroyFence(fence)
	if err := q.Submit(cb, nil, nil, fence); err != nil {
		return undo(err)
	}
	if err := dev.WaitFences([]render.Fence{fence}, true); err != nil {
		return undo(err)
	}
	q.Free(cb)
	return b, nil
}
