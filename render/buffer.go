package render

// #include "vkrt.h"
import "C"

// BufferInfo describes a buffer to create.
type BufferInfo struct {
	Size  uint64
	Usage BufferUsage
	Alloc AllocFlags
}

type bufferInner struct {
	info BufferInfo
	h    C.VkBuffer
	key  int
	mem  *memory
	addr DeviceAddress
}

// Buffer is a handle to a device buffer. Copies refer to the same native
// object; the device keeps it alive until DestroyBuffer or Cleanup.
type Buffer struct {
	inner *bufferInner
}

// Valid reports whether the buffer refers to a live native object.
func (b Buffer) Valid() bool { return b.inner != nil && b.inner.h != nil }

// Info returns the creation parameters.
func (b Buffer) Info() BufferInfo { return b.inner.info }

// Address returns the buffer's device address. The buffer must have been
// created with BufferUsageDeviceAddress.
func (b Buffer) Address() DeviceAddress {
	if b.inner.addr == 0 {
		panic("render: buffer has no device address")
	}
	return b.inner.addr
}

// BufferRegion is a span of a buffer, optionally strided.
type BufferRegion struct {
	Buffer Buffer
	Offset uint64
	Size   uint64
	Stride uint64
}

// WholeBuffer returns a region covering all of b.
func WholeBuffer(b Buffer) BufferRegion {
	return BufferRegion{Buffer: b, Size: b.Info().Size}
}

// Address returns the device address of the region's start.
func (r BufferRegion) Address() DeviceAddress {
	return r.Buffer.Address().Offset(r.Offset)
}

// CreateBuffer creates a buffer and binds dedicated memory to it.
// Buffers whose usage includes BufferUsageDeviceAddress get an address
// assigned at creation.
func (d *Device) CreateBuffer(info BufferInfo) (Buffer, error) {
	cinfo := C.VkBufferCreateInfo{
		sType:       C.VK_STRUCTURE_TYPE_BUFFER_CREATE_INFO,
		size:        C.VkDeviceSize(info.Size),
		usage:       C.VkBufferUsageFlags(info.Usage),
		sharingMode: C.VK_SHARING_MODE_EXCLUSIVE,
	}
	inner := &bufferInner{info: info}
	if err := checkResult(C.vkCreateBuffer(d.h, &cinfo, nil, &inner.h)); err != nil {
		return Buffer{}, err
	}

	var req C.VkMemoryRequirements
	C.vkGetBufferMemoryRequirements(d.h, inner.h, &req)

	alloc := info.Alloc
	if info.Usage&BufferUsageDeviceAddress != 0 {
		alloc |= AllocDeviceAddress
	}
	mem, err := d.alloc(req, alloc)
	if err != nil {
		C.vkDestroyBuffer(d.h, inner.h, nil)
		return Buffer{}, err
	}
	inner.mem = mem

	if err := checkResult(C.vkBindBufferMemory(d.h, inner.h, mem.mem, 0)); err != nil {
		d.freeMem(mem)
		C.vkDestroyBuffer(d.h, inner.h, nil)
		return Buffer{}, err
	}

	if info.Usage&BufferUsageDeviceAddress != 0 {
		ainfo := C.VkBufferDeviceAddressInfo{
			sType:  C.VK_STRUCTURE_TYPE_BUFFER_DEVICE_ADDRESS_INFO,
			buffer: inner.h,
		}
		inner.addr = DeviceAddress(C.vkGetBufferDeviceAddress(d.h, &ainfo))
	}

	inner.key = d.buffers.insert(inner.h)
	return Buffer{inner: inner}, nil
}

// CreateBufferWithData creates a host-visible buffer holding data.
func (d *Device) CreateBufferWithData(usage BufferUsage, data []byte) (Buffer, error) {
	b, err := d.CreateBuffer(BufferInfo{
		Size:  uint64(len(data)),
		Usage: usage,
		Alloc: AllocHostAccess,
	})
	if err != nil {
		return Buffer{}, err
	}
	d.WriteBuffer(b, 0, data)
	return b, nil
}

// WriteBuffer copies data into the buffer at off. The buffer must be
// host visible; misuse panics. Writes to a buffer the GPU may currently
// read are the caller's responsibility to order.
func (d *Device) WriteBuffer(b Buffer, off uint64, data []byte) {
	copy(b.inner.mem.bytes()[off:], data)
}

// DestroyBuffer destroys the buffer and frees its memory early.
func (d *Device) DestroyBuffer(b Buffer) {
	if !b.Valid() {
		return
	}
	d.buffers.take(b.inner.key)
	C.vkDestroyBuffer(d.h, b.inner.h, nil)
	d.freeMem(b.inner.mem)
	b.inner.h = nil
}
