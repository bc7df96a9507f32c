package render

import "errors"

// Errors returned by render operations. Native failure codes are mapped
// onto this set; anything Vulkan reports that has no recovery path at all
// maps to ErrFatal.
var (
	// ErrNoDevice means no physical device suits the renderer.
	ErrNoDevice = errors.New("render: no suitable device found")

	// ErrNoHostMemory means a host memory allocation failed.
	ErrNoHostMemory = errors.New("render: no host memory")

	// ErrNoDeviceMemory means a device memory allocation failed.
	ErrNoDeviceMemory = errors.New("render: no device memory")

	// ErrDeviceLost means the device was lost and must be recreated.
	ErrDeviceLost = errors.New("render: device lost")

	// ErrSurfaceLost means the presentation surface was lost.
	ErrSurfaceLost = errors.New("render: surface lost")

	// ErrOutOfDate means the swapchain no longer matches the surface and
	// must be reconfigured before the next acquire.
	ErrOutOfDate = errors.New("render: swapchain out of date")

	// ErrShaderFormat means a shader blob is not valid SPIR-V.
	ErrShaderFormat = errors.New("render: invalid shader code")

	// ErrFatal means an unrecoverable failure.
	ErrFatal = errors.New("render: unrecoverable error")
)
