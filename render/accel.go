package render

// #include <stdlib.h>
// #include "vkrt.h"
import "C"

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// AccelerationStructureLevel distinguishes bottom-level (geometry) from
// top-level (instance) structures.
type AccelerationStructureLevel uint32

const (
	LevelTop    AccelerationStructureLevel = C.VK_ACCELERATION_STRUCTURE_TYPE_TOP_LEVEL_KHR
	LevelBottom AccelerationStructureLevel = C.VK_ACCELERATION_STRUCTURE_TYPE_BOTTOM_LEVEL_KHR
)

// GeometryKind selects the payload of an acceleration structure geometry.
type GeometryKind uint32

const (
	GeometryTriangles GeometryKind = iota
	GeometryInstances
)

// BuildSizes reports how much memory a build needs.
type BuildSizes struct {
	AccelerationStructure uint64
	UpdateScratch         uint64
	BuildScratch          uint64
}

// GeometrySizeInfo is the shape of one geometry for a size query. Only
// counts and formats matter; no addresses are involved.
type GeometrySizeInfo struct {
	Kind          GeometryKind
	MaxPrimitives uint32

	// Triangles only.
	MaxVertices  uint32
	VertexFormat Format
	VertexStride uint64
	IndexType    IndexType
}

// AccelerationStructureBuildSizes queries the sizes a build of the given
// shape will need. Size queries are monotonic in the primitive counts:
// growing a count never shrinks the result.
func (d *Device) AccelerationStructureBuildSizes(level AccelerationStructureLevel, flags BuildFlags, geoms []GeometrySizeInfo) (BuildSizes, error) {
	var mem carena
	defer mem.release()

	n := len(geoms)
	cg := (*C.VkAccelerationStructureGeometryKHR)(mem.alloc(C.size_t(n) * C.sizeof_VkAccelerationStructureGeometryKHR))
	gs := unsafe.Slice(cg, n)
	counts := (*C.uint32_t)(mem.alloc(C.size_t(n) * C.sizeof_uint32_t))
	cs := unsafe.Slice(counts, n)
	for i, g := range geoms {
		switch g.Kind {
		case GeometryTriangles:
			C.vkrtSetGeometryTriangles(&gs[i], 0, C.VkFormat(g.VertexFormat),
				0, C.VkDeviceSize(g.VertexStride), C.uint32_t(g.MaxVertices),
				C.VkIndexType(g.IndexType), 0, 0)
		case GeometryInstances:
			C.vkrtSetGeometryInstances(&gs[i], 0, 0)
		}
		cs[i] = C.uint32_t(g.MaxPrimitives)
	}

	info := (*C.VkAccelerationStructureBuildGeometryInfoKHR)(mem.alloc(C.sizeof_VkAccelerationStructureBuildGeometryInfoKHR))
	*info = C.VkAccelerationStructureBuildGeometryInfoKHR{
		sType:         C.VK_STRUCTURE_TYPE_ACCELERATION_STRUCTURE_BUILD_GEOMETRY_INFO_KHR,
		_type:         C.VkAccelerationStructureTypeKHR(level),
		flags:         C.VkBuildAccelerationStructureFlagsKHR(flags),
		mode:          C.VK_BUILD_ACCELERATION_STRUCTURE_MODE_BUILD_KHR,
		geometryCount: C.uint32_t(n),
		pGeometries:   cg,
	}

	sizes := (*C.VkAccelerationStructureBuildSizesInfoKHR)(mem.alloc(C.sizeof_VkAccelerationStructureBuildSizesInfoKHR))
	*sizes = C.VkAccelerationStructureBuildSizesInfoKHR{
		sType: C.VK_STRUCTURE_TYPE_ACCELERATION_STRUCTURE_BUILD_SIZES_INFO_KHR,
	}
	C.vkrtGetAccelerationStructureBuildSizesKHR(d.h, info, counts, sizes)

	return BuildSizes{
		AccelerationStructure: uint64(sizes.accelerationStructureSize),
		UpdateScratch:         uint64(sizes.updateScratchSize),
		BuildScratch:          uint64(sizes.buildScratchSize),
	}, nil
}

// AccelerationStructureInfo describes a structure to create. Region is
// the span of the storage buffer the structure lives in; the buffer must
// carry BufferUsageAccelStorage.
type AccelerationStructureInfo struct {
	Level  AccelerationStructureLevel
	Region BufferRegion
}

type accelInner struct {
	info AccelerationStructureInfo
	h    C.VkAccelerationStructureKHR
	key  int
	addr DeviceAddress
}

// AccelerationStructure is a handle to an acceleration structure.
type AccelerationStructure struct {
	inner *accelInner
}

// Valid reports whether the handle refers to a live structure.
func (a AccelerationStructure) Valid() bool { return a.inner != nil && a.inner.h != nil }

// Level returns the structure's level.
func (a AccelerationStructure) Level() AccelerationStructureLevel { return a.inner.info.Level }

// Address returns the structure's device address, as referenced from
// instance records and shaders.
func (a AccelerationStructure) Address() DeviceAddress { return a.inner.addr }

// CreateAccelerationStructure creates an acceleration structure inside
// its storage region.
func (d *Device) CreateAccelerationStructure(info AccelerationStructureInfo) (AccelerationStructure, error) {
	cinfo := C.VkAccelerationStructureCreateInfoKHR{
		sType:  C.VK_STRUCTURE_TYPE_ACCELERATION_STRUCTURE_CREATE_INFO_KHR,
		buffer: info.Region.Buffer.inner.h,
		offset: C.VkDeviceSize(info.Region.Offset),
		size:   C.VkDeviceSize(info.Region.Size),
		_type:  C.VkAccelerationStructureTypeKHR(info.Level),
	}
	inner := &accelInner{info: info}
	if err := checkResult(C.vkrtCreateAccelerationStructureKHR(d.h, &cinfo, &inner.h)); err != nil {
		return AccelerationStructure{}, err
	}
	inner.addr = DeviceAddress(C.vkrtGetAccelerationStructureDeviceAddressKHR(d.h, inner.h))
	inner.key = d.accels.insert(inner.h)
	return AccelerationStructure{inner: inner}, nil
}

// DestroyAccelerationStructure destroys the structure early. Its storage
// buffer is untouched.
func (d *Device) DestroyAccelerationStructure(a AccelerationStructure) {
	if !a.Valid() {
		return
	}
	d.accels.take(a.inner.key)
	C.vkrtDestroyAccelerationStructureKHR(d.h, a.inner.h)
	a.inner.h = nil
}

// AccelerationStructureGeometry is one geometry of a build command.
// Triangles reference vertex/index data by device address; instances
// reference an array of packed instance records.
type AccelerationStructureGeometry struct {
	Kind  GeometryKind
	Flags GeometryFlags

	// Triangles.
	VertexFormat Format
	VertexData   DeviceAddress
	VertexStride uint64
	MaxVertex    uint32
	IndexType    IndexType
	IndexData    DeviceAddress

	// Instances.
	InstanceData DeviceAddress

	// Build range.
	PrimitiveCount  uint32
	PrimitiveOffset uint32
	FirstVertex     uint32
}

// AccelerationStructureBuild describes one structure build recorded on an
// encoder.
type AccelerationStructureBuild struct {
	Dst        AccelerationStructure
	Flags      BuildFlags
	Geometries []AccelerationStructureGeometry
	Scratch    DeviceAddress
}

// Instance record flags.
type InstanceFlags uint8

const (
	InstanceTriangleFacingCullDisable InstanceFlags = 1 << iota
	InstanceTriangleFlipFacing
	InstanceForceOpaque
	InstanceForceNoOpaque
)

// InstanceSize is the byte size of a packed instance record.
const InstanceSize = 64

// AccelerationStructureInstance is one record of a top-level build,
// placing a bottom-level structure in the scene.
type AccelerationStructureInstance struct {
	// Transform is a row-major 3x4 object-to-world matrix.
	Transform [3][4]float32

	CustomIndex uint32 // low 24 bits used
	Mask        uint8
	SBTOffset   uint32 // low 24 bits used
	Flags       InstanceFlags
	Reference   DeviceAddress
}

// IdentityTransform is the no-op instance transform.
var IdentityTransform = [3][4]float32{
	{1, 0, 0, 0},
	{0, 1, 0, 0},
	{0, 0, 1, 0},
}

func (in AccelerationStructureInstance) encode(dst []byte) {
	off := 0
	for r := 0; r < 3; r++ {
		for c := 0; c < 4; c++ {
			binary.LittleEndian.PutUint32(dst[off:], math.Float32bits(in.Transform[r][c]))
			off += 4
		}
	}
	binary.LittleEndian.PutUint32(dst[off:], in.CustomIndex&0xffffff|uint32(in.Mask)<<24)
	binary.LittleEndian.PutUint32(dst[off+4:], in.SBTOffset&0xffffff|uint32(in.Flags)<<24)
	binary.LittleEndian.PutUint64(dst[off+8:], uint64(in.Reference))
}

// EncodeInstances packs instances into the layout the device consumes
// during a top-level build.
func EncodeInstances(instances []AccelerationStructureInstance) []byte {
	out := make([]byte, len(instances)*InstanceSize)
	for i, in := range instances {
		in.encode(out[i*InstanceSize:])
	}
	return out
}
