package render

// #include <stdlib.h>
// #include "vkrt.h"
import "C"

import "unsafe"

// memory is a dedicated device memory allocation backing one buffer or
// image. Host-visible allocations stay mapped for their whole lifetime.
type memory struct {
	size uint64
	typ  int
	mem  C.VkDeviceMemory
	p    unsafe.Pointer
	key  int
}

// visible reports whether the memory can be written from the host.
func (m *memory) visible() bool { return m.p != nil }

// bytes returns the mapped contents.
// It panics if the memory is not host visible.
func (m *memory) bytes() []byte {
	if m.p == nil {
		panic("render: memory is not host visible")
	}
	return unsafe.Slice((*byte)(m.p), m.size)
}

// selectMemory finds a memory type within typeBits carrying every flag in
// want. It returns a negative value on failure.
func (d *Device) selectMemory(typeBits uint32, want C.VkMemoryPropertyFlags) int {
	for i := 0; i < int(d.memProps.memoryTypeCount); i++ {
		if typeBits&(1<<i) == 0 {
			continue
		}
		if d.memProps.memoryTypes[i].propertyFlags&want == want {
			return i
		}
	}
	return -1
}

// alloc makes a dedicated allocation satisfying req. HostAccess memory is
// mapped before returning.
func (d *Device) alloc(req C.VkMemoryRequirements, flags AllocFlags) (*memory, error) {
	want := C.VkMemoryPropertyFlags(0)
	if flags&AllocHostAccess != 0 {
		want |= C.VK_MEMORY_PROPERTY_HOST_VISIBLE_BIT | C.VK_MEMORY_PROPERTY_HOST_COHERENT_BIT
	}
	if flags&AllocFastDeviceAccess != 0 {
		want |= C.VK_MEMORY_PROPERTY_DEVICE_LOCAL_BIT
	}
	typ := d.selectMemory(uint32(req.memoryTypeBits), want)
	if typ < 0 && flags&(AllocHostAccess|AllocFastDeviceAccess) == (AllocHostAccess|AllocFastDeviceAccess) {
		// Not every device has host-visible device-local memory.
		want &^= C.VK_MEMORY_PROPERTY_DEVICE_LOCAL_BIT
		typ = d.selectMemory(uint32(req.memoryTypeBits), want)
	}
	if typ < 0 {
		return nil, ErrNoDeviceMemory
	}

	info := (*C.VkMemoryAllocateInfo)(C.malloc(C.sizeof_VkMemoryAllocateInfo))
	flagsInfo := (*C.VkMemoryAllocateFlagsInfo)(C.malloc(C.sizeof_VkMemoryAllocateFlagsInfo))
	defer C.free(unsafe.Pointer(info))
	defer C.free(unsafe.Pointer(flagsInfo))
	*info = C.VkMemoryAllocateInfo{
		sType:           C.VK_STRUCTURE_TYPE_MEMORY_ALLOCATE_INFO,
		allocationSize:  req.size,
		memoryTypeIndex: C.uint32_t(typ),
	}
	if flags&AllocDeviceAddress != 0 {
		*flagsInfo = C.VkMemoryAllocateFlagsInfo{
			sType: C.VK_STRUCTURE_TYPE_MEMORY_ALLOCATE_FLAGS_INFO,
			flags: C.VK_MEMORY_ALLOCATE_DEVICE_ADDRESS_BIT,
		}
		info.pNext = unsafe.Pointer(flagsInfo)
	}

	m := &memory{size: uint64(req.size), typ: typ}
	if err := checkResult(C.vkAllocateMemory(d.h, info, nil, &m.mem)); err != nil {
		return nil, err
	}
	if flags&AllocHostAccess != 0 {
		res := C.vkMapMemory(d.h, m.mem, 0, C.VK_WHOLE_SIZE, 0, &m.p)
		if err := checkResult(res); err != nil {
			C.vkFreeMemory(d.h, m.mem, nil)
			return nil, err
		}
	}
	m.key = d.memories.insert(m.mem)
	return m, nil
}

// freeMem releases a memory allocation early.
func (d *Device) freeMem(m *memory) {
	if m == nil || m.mem == nil {
		return
	}
	d.memories.take(m.key)
	C.vkFreeMemory(d.h, m.mem, nil)
	m.mem = nil
	m.p = nil
}
