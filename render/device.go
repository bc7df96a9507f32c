package render

// #include <stdlib.h>
// #include "vkrt.h"
import "C"

import (
	"log"
	"sync"
	"unsafe"
)

// slab tracks every native handle of one kind that the device created.
// Entries are zeroed when a resource is destroyed early; whatever is left
// is destroyed in bulk by Device.Cleanup.
type slab[T comparable] struct {
	mu    sync.Mutex
	items []T
}

func (s *slab[T]) insert(v T) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, v)
	return len(s.items) - 1
}

func (s *slab[T]) take(i int) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	v := s.items[i]
	s.items[i] = zero
	return v
}

func (s *slab[T]) drain(destroy func(T)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	for _, v := range s.items {
		if v != zero {
			destroy(v)
		}
	}
	s.items = nil
}

// Device owns a native device and records every object created through it,
// so teardown never leaks a handle regardless of what callers forget to
// destroy.
type Device struct {
	phys     *PhysicalDevice
	h        C.VkDevice
	memProps C.VkPhysicalDeviceMemoryProperties

	buffers      slab[C.VkBuffer]
	images       slab[C.VkImage]
	views        slab[C.VkImageView]
	samplers     slab[C.VkSampler]
	renderPasses slab[C.VkRenderPass]
	framebuffers slab[C.VkFramebuffer]
	shaders      slab[C.VkShaderModule]
	setLayouts   slab[C.VkDescriptorSetLayout]
	descPools    slab[C.VkDescriptorPool]
	pipeLayouts  slab[C.VkPipelineLayout]
	pipelines    slab[C.VkPipeline]
	accels       slab[C.VkAccelerationStructureKHR]
	fences       slab[C.VkFence]
	semaphores   slab[C.VkSemaphore]
	swapchains   slab[C.VkSwapchainKHR]
	memories     slab[C.VkDeviceMemory]
}

// Info returns the physical device capabilities.
func (d *Device) Info() DeviceInfo { return d.phys.info }

// CreateDevice creates the logical device and its single graphics queue.
// The returned device has the ray tracing entry points resolved.
func (pd *PhysicalDevice) CreateDevice() (*Device, *Queue, error) {
	// The feature chain lives in C memory so pNext never stores a Go
	// pointer.
	f12 := (*C.VkPhysicalDeviceVulkan12Features)(C.malloc(C.sizeof_VkPhysicalDeviceVulkan12Features))
	fAccel := (*C.VkPhysicalDeviceAccelerationStructureFeaturesKHR)(C.malloc(C.sizeof_VkPhysicalDeviceAccelerationStructureFeaturesKHR))
	fRT := (*C.VkPhysicalDeviceRayTracingPipelineFeaturesKHR)(C.malloc(C.sizeof_VkPhysicalDeviceRayTracingPipelineFeaturesKHR))
	prio := (*C.float)(C.malloc(C.sizeof_float))
	defer C.free(unsafe.Pointer(f12))
	defer C.free(unsafe.Pointer(fAccel))
	defer C.free(unsafe.Pointer(fRT))
	defer C.free(unsafe.Pointer(prio))

	*f12 = C.VkPhysicalDeviceVulkan12Features{
		sType:                           C.VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_VULKAN_1_2_FEATURES,
		pNext:                           unsafe.Pointer(fAccel),
		bufferDeviceAddress:             C.VK_TRUE,
		runtimeDescriptorArray:          C.VK_TRUE,
		hostQueryReset:                  C.VK_TRUE,
		descriptorBindingPartiallyBound: C.VK_TRUE,
		descriptorBindingSampledImageUpdateAfterBind:  C.VK_TRUE,
		descriptorBindingStorageImageUpdateAfterBind:  C.VK_TRUE,
		descriptorBindingStorageBufferUpdateAfterBind: C.VK_TRUE,
		descriptorBindingUniformBufferUpdateAfterBind: C.VK_TRUE,
	}
	*fAccel = C.VkPhysicalDeviceAccelerationStructureFeaturesKHR{
		sType:                 C.VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_ACCELERATION_STRUCTURE_FEATURES_KHR,
		pNext:                 unsafe.Pointer(fRT),
		accelerationStructure: C.VK_TRUE,
	}
	*fRT = C.VkPhysicalDeviceRayTracingPipelineFeaturesKHR{
		sType:              C.VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_RAY_TRACING_PIPELINE_FEATURES_KHR,
		rayTracingPipeline: C.VK_TRUE,
	}
	*prio = 1

	queueInfo := (*C.VkDeviceQueueCreateInfo)(C.malloc(C.sizeof_VkDeviceQueueCreateInfo))
	defer C.free(unsafe.Pointer(queueInfo))
	*queueInfo = C.VkDeviceQueueCreateInfo{
		sType:            C.VK_STRUCTURE_TYPE_DEVICE_QUEUE_CREATE_INFO,
		queueFamilyIndex: C.uint32_t(pd.info.QueueFamily),
		queueCount:       1,
		pQueuePriorities: prio,
	}

	cExts, freeExts := cStrings(deviceExtensions)
	defer freeExts()

	info := C.VkDeviceCreateInfo{
		sType:                   C.VK_STRUCTURE_TYPE_DEVICE_CREATE_INFO,
		pNext:                   unsafe.Pointer(f12),
		queueCreateInfoCount:    1,
		pQueueCreateInfos:       queueInfo,
		enabledExtensionCount:   C.uint32_t(len(deviceExtensions)),
		ppEnabledExtensionNames: cExts,
	}

	d := &Device{phys: pd}
	if err := checkResult(C.vkCreateDevice(pd.h, &info, nil, &d.h)); err != nil {
		return nil, nil, err
	}
	if missing := C.vkrtLoadDeviceProcs(d.h); missing != 0 {
		log.Printf("[!] render: %d ray tracing procs missing", missing)
		C.vkDestroyDevice(d.h, nil)
		return nil, nil, ErrFatal
	}
	C.vkGetPhysicalDeviceMemoryProperties(pd.h, &d.memProps)

	q, err := d.newQueue(pd.info.QueueFamily)
	if err != nil {
		C.vkDestroyDevice(d.h, nil)
		return nil, nil, err
	}
	return d, q, nil
}

// WaitIdle blocks until the device finishes all submitted work.
func (d *Device) WaitIdle() error {
	return checkResult(C.vkDeviceWaitIdle(d.h))
}

// Cleanup destroys everything the device still tracks and then the device
// itself. Dependents go before their dependencies: pipelines before
// layouts, views before images, acceleration structures before the
// buffers that back them, and all resources before their memory.
func (d *Device) Cleanup() {
	if d.h == nil {
		return
	}
	if err := d.WaitIdle(); err != nil {
		log.Printf("[!] render: wait before cleanup: %v", err)
	}
	d.pipelines.drain(func(h C.VkPipeline) { C.vkDestroyPipeline(d.h, h, nil) })
	d.pipeLayouts.drain(func(h C.VkPipelineLayout) { C.vkDestroyPipelineLayout(d.h, h, nil) })
	d.descPools.drain(func(h C.VkDescriptorPool) { C.vkDestroyDescriptorPool(d.h, h, nil) })
	d.setLayouts.drain(func(h C.VkDescriptorSetLayout) { C.vkDestroyDescriptorSetLayout(d.h, h, nil) })
	d.framebuffers.drain(func(h C.VkFramebuffer) { C.vkDestroyFramebuffer(d.h, h, nil) })
	d.renderPasses.drain(func(h C.VkRenderPass) { C.vkDestroyRenderPass(d.h, h, nil) })
	d.views.drain(func(h C.VkImageView) { C.vkDestroyImageView(d.h, h, nil) })
	d.samplers.drain(func(h C.VkSampler) { C.vkDestroySampler(d.h, h, nil) })
	d.images.drain(func(h C.VkImage) { C.vkDestroyImage(d.h, h, nil) })
	d.shaders.drain(func(h C.VkShaderModule) { C.vkDestroyShaderModule(d.h, h, nil) })
	d.accels.drain(func(h C.VkAccelerationStructureKHR) { C.vkrtDestroyAccelerationStructureKHR(d.h, h) })
	d.buffers.drain(func(h C.VkBuffer) { C.vkDestroyBuffer(d.h, h, nil) })
	d.swapchains.drain(func(h C.VkSwapchainKHR) { C.vkDestroySwapchainKHR(d.h, h, nil) })
	d.semaphores.drain(func(h C.VkSemaphore) { C.vkDestroySemaphore(d.h, h, nil) })
	d.fences.drain(func(h C.VkFence) { C.vkDestroyFence(d.h, h, nil) })
	d.memories.drain(func(h C.VkDeviceMemory) { C.vkFreeMemory(d.h, h, nil) })
	C.vkDestroyDevice(d.h, nil)
	d.h = nil
}
