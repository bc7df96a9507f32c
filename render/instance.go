package render

// #cgo LDFLAGS: -lvulkan
//
// #include <stdlib.h>
// #include "vkrt.h"
import "C"

import (
	"log"
	"unsafe"
)

// Vulkan 1.2 is the minimum the ray tracing extensions build on.
const apiVersion = uint32(1)<<22 | uint32(2)<<12

const validationLayer = "VK_LAYER_KHRONOS_validation"

// InstanceConfig configures NewInstance.
type InstanceConfig struct {
	// AppName is reported to the driver.
	AppName string

	// Extensions lists instance extensions to enable, typically the
	// surface extensions the window system requires.
	Extensions []string

	// Validation enables the Khronos validation layer and a debug
	// messenger that forwards driver messages to the log.
	Validation bool
}

// Instance wraps a native instance and its optional debug messenger.
type Instance struct {
	h   C.VkInstance
	msg C.VkDebugUtilsMessengerEXT
}

// NewInstance creates a native instance.
func NewInstance(cfg InstanceConfig) (*Instance, error) {
	name := C.CString(cfg.AppName)
	defer C.free(unsafe.Pointer(name))

	// The app info is referenced from another struct, so it lives in C
	// memory to satisfy the cgo pointer rules.
	appInfo := (*C.VkApplicationInfo)(C.malloc(C.sizeof_VkApplicationInfo))
	defer C.free(unsafe.Pointer(appInfo))
	*appInfo = C.VkApplicationInfo{
		sType:            C.VK_STRUCTURE_TYPE_APPLICATION_INFO,
		pApplicationName: name,
		apiVersion:       C.uint32_t(apiVersion),
	}

	exts := cfg.Extensions
	if cfg.Validation {
		exts = append(append([]string{}, exts...), "VK_EXT_debug_utils")
	}
	cExts, freeExts := cStrings(exts)
	defer freeExts()

	var layers []string
	if cfg.Validation {
		layers = []string{validationLayer}
	}
	cLayers, freeLayers := cStrings(layers)
	defer freeLayers()

	info := C.VkInstanceCreateInfo{
		sType:                   C.VK_STRUCTURE_TYPE_INSTANCE_CREATE_INFO,
		pApplicationInfo:        appInfo,
		enabledLayerCount:       C.uint32_t(len(layers)),
		ppEnabledLayerNames:     cLayers,
		enabledExtensionCount:   C.uint32_t(len(exts)),
		ppEnabledExtensionNames: cExts,
	}

	var inst Instance
	if err := checkResult(C.vkCreateInstance(&info, nil, &inst.h)); err != nil {
		return nil, err
	}

	if cfg.Validation {
		res := C.vkrtCreateDebugMessenger(inst.h,
			C.VK_DEBUG_UTILS_MESSAGE_SEVERITY_WARNING_BIT_EXT|
				C.VK_DEBUG_UTILS_MESSAGE_SEVERITY_ERROR_BIT_EXT,
			&inst.msg)
		if err := checkResult(res); err != nil {
			log.Printf("[!] render: debug messenger unavailable: %v", err)
		}
	}
	return &inst, nil
}

// Handle exposes the native instance for surface creation by the window
// layer.
func (in *Instance) Handle() uintptr {
	return uintptr(unsafe.Pointer(in.h))
}

// DestroySurface destroys a surface created against this instance.
func (in *Instance) DestroySurface(sf Surface) {
	if sf.h != nil {
		C.vkDestroySurfaceKHR(in.h, sf.h, nil)
	}
}

// Destroy destroys the instance. The caller must have destroyed every
// device and surface created from it first.
func (in *Instance) Destroy() {
	if in.h == nil {
		return
	}
	if in.msg != nil {
		C.vkrtDestroyDebugMessenger(in.h, in.msg)
	}
	C.vkDestroyInstance(in.h, nil)
	in.h = nil
}

// Surface wraps a native presentation surface. The window layer creates
// it (e.g. through GLFW) and hands the raw handle over.
type Surface struct {
	h C.VkSurfaceKHR
}

// SurfaceFromRaw wraps a surface handle produced by the window layer.
func SurfaceFromRaw(h uintptr) Surface {
	return Surface{h: C.VkSurfaceKHR(unsafe.Pointer(h))}
}

// cStrings copies ss into a C array of C strings. The returned function
// frees everything.
func cStrings(ss []string) (**C.char, func()) {
	if len(ss) == 0 {
		return nil, func() {}
	}
	arr := (**C.char)(C.malloc(C.size_t(len(ss)) * C.size_t(unsafe.Sizeof(uintptr(0)))))
	s := unsafe.Slice(arr, len(ss))
	for i := range ss {
		s[i] = C.CString(ss[i])
	}
	return arr, func() {
		for i := range s {
			C.free(unsafe.Pointer(s[i]))
		}
		C.free(unsafe.Pointer(arr))
	}
}

//export tracerDebugMessage
func tracerDebugMessage(severity C.int, message *C.char) {
	if severity >= C.VK_DEBUG_UTILS_MESSAGE_SEVERITY_ERROR_BIT_EXT {
		log.Printf("[!] vk: %s", C.GoString(message))
	} else {
		log.Printf("vk: %s", C.GoString(message))
	}
}
