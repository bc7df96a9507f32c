package render

// #include <stdlib.h>
// #include "vkrt.h"
import "C"

import (
	"log"
	"unsafe"
)

// deviceExtensions lists the device extensions the renderer cannot run
// without.
var deviceExtensions = []string{
	"VK_KHR_swapchain",
	"VK_KHR_deferred_host_operations",
	"VK_KHR_acceleration_structure",
	"VK_KHR_ray_tracing_pipeline",
}

// DeviceInfo describes the selected physical device. It is captured once
// at selection time; surface capabilities change with the window and are
// queried separately (see PhysicalDevice.SurfaceCaps).
type DeviceInfo struct {
	Name              string
	QueueFamily       uint32
	SurfaceFormat     Format
	SurfaceColorSpace ColorSpace
	PresentMode       PresentMode

	// Ray tracing pipeline and acceleration structure limits.
	ShaderGroupHandleSize    uint32
	ShaderGroupBaseAlignment uint32
	MaxRayRecursionDepth     uint32
	ScratchOffsetAlignment   uint32
}

// SurfaceCaps is a point-in-time snapshot of the surface capabilities.
type SurfaceCaps struct {
	MinImageCount uint32
	MaxImageCount uint32
	CurrentExtent Extent2D

	transform C.VkSurfaceTransformFlagBitsKHR
}

// PhysicalDevice is a selected physical device plus its captured info.
type PhysicalDevice struct {
	h    C.VkPhysicalDevice
	info DeviceInfo
}

// Info returns the capabilities captured at selection time.
func (pd *PhysicalDevice) Info() DeviceInfo { return pd.info }

// SelectPhysicalDevice picks the physical device to render with. Discrete
// GPUs win over integrated ones; within a tier the first suitable device
// wins. A device is suitable when it carries the ray tracing extensions
// and has a queue family that can both draw and present to sf.
func SelectPhysicalDevice(in *Instance, sf Surface) (*PhysicalDevice, error) {
	var n C.uint32_t
	if err := checkResult(C.vkEnumeratePhysicalDevices(in.h, &n, nil)); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNoDevice
	}
	devs := make([]C.VkPhysicalDevice, n)
	if err := checkResult(C.vkEnumeratePhysicalDevices(in.h, &n, &devs[0])); err != nil {
		return nil, err
	}

	var best *PhysicalDevice
	var bestWeight int
	for _, d := range devs {
		pd, weight, ok := suitable(d, sf)
		if ok && (best == nil || weight > bestWeight) {
			best, bestWeight = pd, weight
		}
	}
	if best == nil {
		return nil, ErrNoDevice
	}
	log.Printf("render: using device %q", best.info.Name)
	return best, nil
}

func suitable(d C.VkPhysicalDevice, sf Surface) (*PhysicalDevice, int, bool) {
	if !hasExtensions(d, deviceExtensions) {
		return nil, 0, false
	}
	fam, ok := presentableFamily(d, sf)
	if !ok {
		return nil, 0, false
	}
	format, colorSpace, ok := pickSurfaceFormat(d, sf)
	if !ok {
		return nil, 0, false
	}

	pd := &PhysicalDevice{h: d}
	pd.info.QueueFamily = fam
	pd.info.SurfaceFormat = format
	pd.info.SurfaceColorSpace = colorSpace
	pd.info.PresentMode = pickPresentMode(d, sf)

	// Chained limits queries go through C memory so the pNext chain
	// never holds Go pointers.
	props := (*C.VkPhysicalDeviceProperties2)(C.malloc(C.sizeof_VkPhysicalDeviceProperties2))
	rt := (*C.VkPhysicalDeviceRayTracingPipelinePropertiesKHR)(C.malloc(C.sizeof_VkPhysicalDeviceRayTracingPipelinePropertiesKHR))
	as := (*C.VkPhysicalDeviceAccelerationStructurePropertiesKHR)(C.malloc(C.sizeof_VkPhysicalDeviceAccelerationStructurePropertiesKHR))
	defer C.free(unsafe.Pointer(props))
	defer C.free(unsafe.Pointer(rt))
	defer C.free(unsafe.Pointer(as))
	*props = C.VkPhysicalDeviceProperties2{
		sType: C.VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_PROPERTIES_2,
		pNext: unsafe.Pointer(rt),
	}
	*rt = C.VkPhysicalDeviceRayTracingPipelinePropertiesKHR{
		sType: C.VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_RAY_TRACING_PIPELINE_PROPERTIES_KHR,
		pNext: unsafe.Pointer(as),
	}
	*as = C.VkPhysicalDeviceAccelerationStructurePropertiesKHR{
		sType: C.VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_ACCELERATION_STRUCTURE_PROPERTIES_KHR,
	}
	C.vkGetPhysicalDeviceProperties2(d, props)

	pd.info.Name = C.GoString(&props.properties.deviceName[0])
	pd.info.ShaderGroupHandleSize = uint32(rt.shaderGroupHandleSize)
	pd.info.ShaderGroupBaseAlignment = uint32(rt.shaderGroupBaseAlignment)
	pd.info.MaxRayRecursionDepth = uint32(rt.maxRayRecursionDepth)
	pd.info.ScratchOffsetAlignment = uint32(as.minAccelerationStructureScratchOffsetAlignment)

	weight := 0
	switch props.properties.deviceType {
	case C.VK_PHYSICAL_DEVICE_TYPE_DISCRETE_GPU:
		weight = 2
	case C.VK_PHYSICAL_DEVICE_TYPE_INTEGRATED_GPU:
		weight = 1
	}
	return pd, weight, true
}

func hasExtensions(d C.VkPhysicalDevice, want []string) bool {
	var n C.uint32_t
	if C.vkEnumerateDeviceExtensionProperties(d, nil, &n, nil) != C.VK_SUCCESS || n == 0 {
		return false
	}
	props := make([]C.VkExtensionProperties, n)
	if C.vkEnumerateDeviceExtensionProperties(d, nil, &n, &props[0]) != C.VK_SUCCESS {
		return false
	}
	have := make(map[string]bool, n)
	for i := range props {
		have[C.GoString(&props[i].extensionName[0])] = true
	}
	for _, w := range want {
		if !have[w] {
			return false
		}
	}
	return true
}

func presentableFamily(d C.VkPhysicalDevice, sf Surface) (uint32, bool) {
	var n C.uint32_t
	C.vkGetPhysicalDeviceQueueFamilyProperties(d, &n, nil)
	if n == 0 {
		return 0, false
	}
	props := make([]C.VkQueueFamilyProperties, n)
	C.vkGetPhysicalDeviceQueueFamilyProperties(d, &n, &props[0])
	for i := range props {
		if props[i].queueFlags&C.VK_QUEUE_GRAPHICS_BIT == 0 {
			continue
		}
		var sup C.VkBool32
		res := C.vkGetPhysicalDeviceSurfaceSupportKHR(d, C.uint32_t(i), sf.h, &sup)
		if res == C.VK_SUCCESS && sup == C.VK_TRUE {
			return uint32(i), true
		}
	}
	return 0, false
}

func pickSurfaceFormat(d C.VkPhysicalDevice, sf Surface) (Format, ColorSpace, bool) {
	var n C.uint32_t
	if C.vkGetPhysicalDeviceSurfaceFormatsKHR(d, sf.h, &n, nil) != C.VK_SUCCESS || n == 0 {
		return 0, 0, false
	}
	formats := make([]C.VkSurfaceFormatKHR, n)
	if C.vkGetPhysicalDeviceSurfaceFormatsKHR(d, sf.h, &n, &formats[0]) != C.VK_SUCCESS {
		return 0, 0, false
	}
	for _, f := range formats {
		if Format(f.format) == FormatB8G8R8A8Srgb && ColorSpace(f.colorSpace) == ColorSpaceSrgbNonlinear {
			return Format(f.format), ColorSpace(f.colorSpace), true
		}
	}
	return Format(formats[0].format), ColorSpace(formats[0].colorSpace), true
}

func pickPresentMode(d C.VkPhysicalDevice, sf Surface) PresentMode {
	var n C.uint32_t
	if C.vkGetPhysicalDeviceSurfacePresentModesKHR(d, sf.h, &n, nil) != C.VK_SUCCESS || n == 0 {
		return PresentModeFifo
	}
	modes := make([]C.VkPresentModeKHR, n)
	if C.vkGetPhysicalDeviceSurfacePresentModesKHR(d, sf.h, &n, &modes[0]) != C.VK_SUCCESS {
		return PresentModeFifo
	}
	for _, m := range modes {
		if PresentMode(m) == PresentModeMailbox {
			return PresentModeMailbox
		}
	}
	// FIFO support is mandatory.
	return PresentModeFifo
}

// SurfaceCaps queries the current surface capabilities. The extent tracks
// the window, so callers re-query after a resize.
func (pd *PhysicalDevice) SurfaceCaps(sf Surface) (SurfaceCaps, error) {
	var caps C.VkSurfaceCapabilitiesKHR
	res := C.vkGetPhysicalDeviceSurfaceCapabilitiesKHR(pd.h, sf.h, &caps)
	if err := checkResult(res); err != nil {
		return SurfaceCaps{}, err
	}
	return SurfaceCaps{
		MinImageCount: uint32(caps.minImageCount),
		MaxImageCount: uint32(caps.maxImageCount),
		CurrentExtent: Extent2D{
			Width:  uint32(caps.currentExtent.width),
			Height: uint32(caps.currentExtent.height),
		},
		transform: caps.currentTransform,
	}, nil
}
