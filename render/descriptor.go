package render

// #include <stdlib.h>
// #include "vkrt.h"
import "C"

import "unsafe"

// DescriptorType is a dense index over the descriptor types the renderer
// uses, so per-type counters can live in a flat array.
type DescriptorType int

const (
	DescriptorSampler DescriptorType = iota
	DescriptorCombinedImageSampler
	DescriptorSampledImage
	DescriptorStorageImage
	DescriptorUniformTexelBuffer
	DescriptorStorageTexelBuffer
	DescriptorUniformBuffer
	DescriptorStorageBuffer
	DescriptorUniformBufferDynamic
	DescriptorStorageBufferDynamic
	DescriptorInputAttachment
	DescriptorAccelerationStructure

	numDescriptorTypes int = iota
)

func (t DescriptorType) vk() C.VkDescriptorType {
	switch t {
	case DescriptorSampler:
		return C.VK_DESCRIPTOR_TYPE_SAMPLER
	case DescriptorCombinedImageSampler:
		return C.VK_DESCRIPTOR_TYPE_COMBINED_IMAGE_SAMPLER
	case DescriptorSampledImage:
		return C.VK_DESCRIPTOR_TYPE_SAMPLED_IMAGE
	case DescriptorStorageImage:
		return C.VK_DESCRIPTOR_TYPE_STORAGE_IMAGE
	case DescriptorUniformTexelBuffer:
		return C.VK_DESCRIPTOR_TYPE_UNIFORM_TEXEL_BUFFER
	case DescriptorStorageTexelBuffer:
		return C.VK_DESCRIPTOR_TYPE_STORAGE_TEXEL_BUFFER
	case DescriptorUniformBuffer:
		return C.VK_DESCRIPTOR_TYPE_UNIFORM_BUFFER
	case DescriptorStorageBuffer:
		return C.VK_DESCRIPTOR_TYPE_STORAGE_BUFFER
	case DescriptorUniformBufferDynamic:
		return C.VK_DESCRIPTOR_TYPE_UNIFORM_BUFFER_DYNAMIC
	case DescriptorStorageBufferDynamic:
		return C.VK_DESCRIPTOR_TYPE_STORAGE_BUFFER_DYNAMIC
	case DescriptorInputAttachment:
		return C.VK_DESCRIPTOR_TYPE_INPUT_ATTACHMENT
	case DescriptorAccelerationStructure:
		return C.VK_DESCRIPTOR_TYPE_ACCELERATION_STRUCTURE_KHR
	}
	panic("render: unknown descriptor type")
}

// DescriptorSetLayoutBinding describes one binding of a set layout.
type DescriptorSetLayoutBinding struct {
	Binding uint32
	Type    DescriptorType
	Count   uint32
	Stages  ShaderStage
}

// DescriptorSetLayoutInfo describes a set layout to create. When
// UpdateAfterBind is set the layout and any pool created for it allow
// descriptor updates while a recorded command buffer is in flight.
type DescriptorSetLayoutInfo struct {
	Bindings        []DescriptorSetLayoutBinding
	UpdateAfterBind bool
}

// DescriptorSizes counts descriptors per type. A pool sized from it fits
// the bindings it was accumulated from exactly.
type DescriptorSizes [numDescriptorTypes]uint32

// AddBindings accumulates the descriptor counts of bindings.
func (s *DescriptorSizes) AddBindings(bindings []DescriptorSetLayoutBinding) {
	for _, b := range bindings {
		s[b.Type] += b.Count
	}
}

// PoolSize is a per-type descriptor count.
type PoolSize struct {
	Type  DescriptorType
	Count uint32
}

// PoolSizes returns the non-zero entries in type order.
func (s DescriptorSizes) PoolSizes() []PoolSize {
	var out []PoolSize
	for t, n := range s {
		if n > 0 {
			out = append(out, PoolSize{Type: DescriptorType(t), Count: n})
		}
	}
	return out
}

// DescriptorSetLayout is a handle to a set layout plus the pool sizing
// derived from its bindings.
type DescriptorSetLayout struct {
	inner *setLayoutInner
}

type setLayoutInner struct {
	h               C.VkDescriptorSetLayout
	key             int
	sizes           DescriptorSizes
	updateAfterBind bool
}

// Sizes returns the per-type descriptor counts of the layout.
func (l DescriptorSetLayout) Sizes() DescriptorSizes { return l.inner.sizes }

// CreateDescriptorSetLayout creates a set layout.
func (d *Device) CreateDescriptorSetLayout(info DescriptorSetLayoutInfo) (DescriptorSetLayout, error) {
	n := len(info.Bindings)
	cb := (*C.VkDescriptorSetLayoutBinding)(C.malloc(C.size_t(n) * C.sizeof_VkDescriptorSetLayoutBinding))
	defer C.free(unsafe.Pointer(cb))
	bs := unsafe.Slice(cb, n)
	for i, b := range info.Bindings {
		bs[i] = C.VkDescriptorSetLayoutBinding{
			binding:         C.uint32_t(b.Binding),
			descriptorType:  b.Type.vk(),
			descriptorCount: C.uint32_t(b.Count),
			stageFlags:      C.VkShaderStageFlags(b.Stages),
		}
	}
	cinfo := C.VkDescriptorSetLayoutCreateInfo{
		sType:        C.VK_STRUCTURE_TYPE_DESCRIPTOR_SET_LAYOUT_CREATE_INFO,
		bindingCount: C.uint32_t(n),
		pBindings:    cb,
	}
	if info.UpdateAfterBind {
		cinfo.flags = C.VK_DESCRIPTOR_SET_LAYOUT_CREATE_UPDATE_AFTER_BIND_POOL_BIT
	}

	inner := &setLayoutInner{updateAfterBind: info.UpdateAfterBind}
	if err := checkResult(C.vkCreateDescriptorSetLayout(d.h, &cinfo, nil, &inner.h)); err != nil {
		return DescriptorSetLayout{}, err
	}
	inner.sizes.AddBindings(info.Bindings)
	inner.key = d.setLayouts.insert(inner.h)
	return DescriptorSetLayout{inner: inner}, nil
}

// DescriptorSet is a descriptor set backed by its own exactly-sized pool.
type DescriptorSet struct {
	h    C.VkDescriptorSet
	pool C.VkDescriptorPool
}

// CreateDescriptorSet allocates one set from a fresh pool sized exactly
// for the layout.
func (d *Device) CreateDescriptorSet(layout DescriptorSetLayout) (DescriptorSet, error) {
	sizes := layout.Sizes().PoolSizes()
	n := len(sizes)
	cs := (*C.VkDescriptorPoolSize)(C.malloc(C.size_t(n) * C.sizeof_VkDescriptorPoolSize))
	defer C.free(unsafe.Pointer(cs))
	ss := unsafe.Slice(cs, n)
	for i, s := range sizes {
		ss[i] = C.VkDescriptorPoolSize{
			_type:           s.Type.vk(),
			descriptorCount: C.uint32_t(s.Count),
		}
	}
	pinfo := C.VkDescriptorPoolCreateInfo{
		sType:         C.VK_STRUCTURE_TYPE_DESCRIPTOR_POOL_CREATE_INFO,
		maxSets:       1,
		poolSizeCount: C.uint32_t(n),
		pPoolSizes:    cs,
	}
	if layout.inner.updateAfterBind {
		pinfo.flags = C.VK_DESCRIPTOR_POOL_CREATE_UPDATE_AFTER_BIND_BIT
	}

	var set DescriptorSet
	if err := checkResult(C.vkCreateDescriptorPool(d.h, &pinfo, nil, &set.pool)); err != nil {
		return DescriptorSet{}, err
	}
	d.descPools.insert(set.pool)

	layouts := (*C.VkDescriptorSetLayout)(C.malloc(C.sizeof_VkDescriptorSetLayout))
	defer C.free(unsafe.Pointer(layouts))
	*layouts = layout.inner.h
	ainfo := C.VkDescriptorSetAllocateInfo{
		sType:              C.VK_STRUCTURE_TYPE_DESCRIPTOR_SET_ALLOCATE_INFO,
		descriptorPool:     set.pool,
		descriptorSetCount: 1,
		pSetLayouts:        layouts,
	}
	if err := checkResult(C.vkAllocateDescriptorSets(d.h, &ainfo, &set.h)); err != nil {
		return DescriptorSet{}, err
	}
	return set, nil
}

// CombinedImageSampler is a sampled image with its sampler.
type CombinedImageSampler struct {
	Sampler Sampler
	View    ImageView
	Layout  ImageLayout
}

// StorageImage is a storage image binding.
type StorageImage struct {
	View   ImageView
	Layout ImageLayout
}

// WriteDescriptorSet updates descriptors starting at Element of Binding.
// Exactly one of the payload slices must be non-empty.
type WriteDescriptorSet struct {
	Set     DescriptorSet
	Binding uint32
	Element uint32

	CombinedImageSamplers  []CombinedImageSampler
	StorageImages          []StorageImage
	UniformBuffers         []BufferRegion
	StorageBuffers         []BufferRegion
	AccelerationStructures []AccelerationStructure
}

// UpdateDescriptorSets applies the writes in order.
func (d *Device) UpdateDescriptorSets(writes []WriteDescriptorSet) {
	if len(writes) == 0 {
		return
	}
	cw := (*C.VkWriteDescriptorSet)(C.malloc(C.size_t(len(writes)) * C.sizeof_VkWriteDescriptorSet))
	defer C.free(unsafe.Pointer(cw))
	ws := unsafe.Slice(cw, len(writes))

	var frees []unsafe.Pointer
	defer func() {
		for _, p := range frees {
			C.free(p)
		}
	}()
	calloc := func(size C.size_t) unsafe.Pointer {
		p := C.malloc(size)
		frees = append(frees, p)
		return p
	}

	for i, w := range writes {
		ws[i] = C.VkWriteDescriptorSet{
			sType:           C.VK_STRUCTURE_TYPE_WRITE_DESCRIPTOR_SET,
			dstSet:          w.Set.h,
			dstBinding:      C.uint32_t(w.Binding),
			dstArrayElement: C.uint32_t(w.Element),
		}
		switch {
		case len(w.CombinedImageSamplers) > 0:
			n := len(w.CombinedImageSamplers)
			p := (*C.VkDescriptorImageInfo)(calloc(C.size_t(n) * C.sizeof_VkDescriptorImageInfo))
			infos := unsafe.Slice(p, n)
			for j, im := range w.CombinedImageSamplers {
				infos[j] = C.VkDescriptorImageInfo{
					sampler:     im.Sampler.h,
					imageView:   im.View.inner.h,
					imageLayout: C.VkImageLayout(im.Layout),
				}
			}
			ws[i].descriptorType = C.VK_DESCRIPTOR_TYPE_COMBINED_IMAGE_SAMPLER
			ws[i].descriptorCount = C.uint32_t(n)
			ws[i].pImageInfo = p
		case len(w.StorageImages) > 0:
			n := len(w.StorageImages)
			p := (*C.VkDescriptorImageInfo)(calloc(C.size_t(n) * C.sizeof_VkDescriptorImageInfo))
			infos := unsafe.Slice(p, n)
			for j, im := range w.StorageImages {
				infos[j] = C.VkDescriptorImageInfo{
					imageView:   im.View.inner.h,
					imageLayout: C.VkImageLayout(im.Layout),
				}
			}
			ws[i].descriptorType = C.VK_DESCRIPTOR_TYPE_STORAGE_IMAGE
			ws[i].descriptorCount = C.uint32_t(n)
			ws[i].pImageInfo = p
		case len(w.UniformBuffers) > 0:
			ws[i].descriptorType = C.VK_DESCRIPTOR_TYPE_UNIFORM_BUFFER
			ws[i].descriptorCount, ws[i].pBufferInfo = bufferInfos(calloc, w.UniformBuffers)
		case len(w.StorageBuffers) > 0:
			ws[i].descriptorType = C.VK_DESCRIPTOR_TYPE_STORAGE_BUFFER
			ws[i].descriptorCount, ws[i].pBufferInfo = bufferInfos(calloc, w.StorageBuffers)
		case len(w.AccelerationStructures) > 0:
			n := len(w.AccelerationStructures)
			hp := (*C.VkAccelerationStructureKHR)(calloc(C.size_t(n) * C.sizeof_VkAccelerationStructureKHR))
			hs := unsafe.Slice(hp, n)
			for j, as := range w.AccelerationStructures {
				hs[j] = as.inner.h
			}
			ap := (*C.VkWriteDescriptorSetAccelerationStructureKHR)(calloc(C.sizeof_VkWriteDescriptorSetAccelerationStructureKHR))
			*ap = C.VkWriteDescriptorSetAccelerationStructureKHR{
				sType:                      C.VK_STRUCTURE_TYPE_WRITE_DESCRIPTOR_SET_ACCELERATION_STRUCTURE_KHR,
				accelerationStructureCount: C.uint32_t(n),
				pAccelerationStructures:    hp,
			}
			ws[i].pNext = unsafe.Pointer(ap)
			ws[i].descriptorType = C.VK_DESCRIPTOR_TYPE_ACCELERATION_STRUCTURE_KHR
			ws[i].descriptorCount = C.uint32_t(n)
		default:
			panic("render: descriptor write has no payload")
		}
	}
	C.vkUpdateDescriptorSets(d.h, C.uint32_t(len(writes)), cw, 0, nil)
}

func bufferInfos(calloc func(C.size_t) unsafe.Pointer, regions []BufferRegion) (C.uint32_t, *C.VkDescriptorBufferInfo) {
	p := (*C.VkDescriptorBufferInfo)(calloc(C.size_t(len(regions)) * C.sizeof_VkDescriptorBufferInfo))
	infos := unsafe.Slice(p, len(regions))
	for j, r := range regions {
		size := r.Size
		if size == 0 {
			size = WholeSize
		}
		infos[j] = C.VkDescriptorBufferInfo{
			buffer: r.Buffer.inner.h,
			offset: C.VkDeviceSize(r.Offset),
			_range: C.VkDeviceSize(size),
		}
	}
	return C.uint32_t(len(regions)), p
}
