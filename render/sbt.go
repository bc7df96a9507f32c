package render

import "math"

// ShaderBindingTable addresses the shader group records a trace command
// consumes. Absent sections stay nil.
type ShaderBindingTable struct {
	Raygen   *BufferRegion
	Miss     *BufferRegion
	Hit      *BufferRegion
	Callable *BufferRegion
}

// ShaderBindingTableInfo selects pipeline groups, by index, for each
// section of the table.
type ShaderBindingTableInfo struct {
	Raygen   *uint32
	Miss     []uint32
	Hit      []uint32
	Callable []uint32
}

type sbtSection struct {
	offset uint64
	count  uint64
}

func (s sbtSection) size(stride uint64) uint64 { return s.count * stride }

// sbtLayout is the arithmetic of a shader binding table: a record stride
// rounded up to the group base alignment and the byte offsets of the four
// sections.
type sbtLayout struct {
	stride   uint64
	raygen   sbtSection
	miss     sbtSection
	hit      sbtSection
	callable sbtSection
	total    uint64
}

// computeSBTLayout lays out the table. handleSize is the opaque group
// handle size and baseAlign the group base alignment, a power of two.
// All arithmetic is overflow checked.
func computeSBTLayout(handleSize, baseAlign uint32, nRaygen, nMiss, nHit, nCallable uint64) (sbtLayout, error) {
	stride, ok := alignUp(uint64(baseAlign)-1, uint64(handleSize))
	if !ok {
		return sbtLayout{}, ErrFatal
	}
	var l sbtLayout
	l.stride = stride
	off := uint64(0)
	place := func(s *sbtSection, count uint64) bool {
		s.offset = off
		s.count = count
		if stride != 0 && count > math.MaxUint64/stride {
			return false
		}
		size := count * stride
		if off > math.MaxUint64-size {
			return false
		}
		off += size
		return true
	}
	if !place(&l.raygen, nRaygen) || !place(&l.miss, nMiss) ||
		!place(&l.hit, nHit) || !place(&l.callable, nCallable) {
		return sbtLayout{}, ErrFatal
	}
	l.total = off
	return l, nil
}

// CreateShaderBindingTable builds a table for the pipeline's groups in a
// fresh host-visible buffer. Each selected group's handle is copied to a
// stride-aligned record; the raygen region reports its stride as its
// size, as trace commands require.
func (d *Device) CreateShaderBindingTable(p RayTracingPipeline, info ShaderBindingTableInfo) (ShaderBindingTable, error) {
	var nRaygen uint64
	if info.Raygen != nil {
		nRaygen = 1
	}
	layout, err := computeSBTLayout(
		d.phys.info.ShaderGroupHandleSize,
		d.phys.info.ShaderGroupBaseAlignment,
		nRaygen, uint64(len(info.Miss)), uint64(len(info.Hit)), uint64(len(info.Callable)),
	)
	if err != nil {
		return ShaderBindingTable{}, err
	}
	if layout.total == 0 {
		return ShaderBindingTable{}, nil
	}

	data := make([]byte, layout.total)
	fill := func(s sbtSection, groups []uint32) {
		for i, g := range groups {
			off := s.offset + uint64(i)*layout.stride
			copy(data[off:], p.GroupHandle(int(g)))
		}
	}
	if info.Raygen != nil {
		fill(layout.raygen, []uint32{*info.Raygen})
	}
	fill(layout.miss, info.Miss)
	fill(layout.hit, info.Hit)
	fill(layout.callable, info.Callable)

	buf, err := d.CreateBuffer(BufferInfo{
		Size:  layout.total,
		Usage: BufferUsageShaderBindingTable | BufferUsageDeviceAddress,
		Alloc: AllocHostAccess,
	})
	if err != nil {
		return ShaderBindingTable{}, err
	}
	d.WriteBuffer(buf, 0, data)

	var sbt ShaderBindingTable
	region := func(s sbtSection, raygen bool) *BufferRegion {
		if s.count == 0 {
			return nil
		}
		size := s.size(layout.stride)
		if raygen {
			size = layout.stride
		}
		return &BufferRegion{
			Buffer: buf,
			Offset: s.offset,
			Size:   size,
			Stride: layout.stride,
		}
	}
	sbt.Raygen = region(layout.raygen, true)
	sbt.Miss = region(layout.miss, false)
	sbt.Hit = region(layout.hit, false)
	sbt.Callable = region(layout.callable, false)
	return sbt, nil
}
