package render

// #include "vkrt.h"
import "C"

// checkResult converts a native result code into one of the package's
// error values. Non-error codes yield nil.
func checkResult(res C.VkResult) error {
	switch res {
	case C.VK_SUCCESS, C.VK_NOT_READY, C.VK_TIMEOUT, C.VK_EVENT_SET,
		C.VK_EVENT_RESET, C.VK_INCOMPLETE, C.VK_SUBOPTIMAL_KHR:
		return nil
	case C.VK_ERROR_OUT_OF_HOST_MEMORY:
		return ErrNoHostMemory
	case C.VK_ERROR_OUT_OF_DEVICE_MEMORY, C.VK_ERROR_OUT_OF_POOL_MEMORY,
		C.VK_ERROR_FRAGMENTED_POOL, C.VK_ERROR_FRAGMENTATION:
		return ErrNoDeviceMemory
	case C.VK_ERROR_DEVICE_LOST:
		return ErrDeviceLost
	case C.VK_ERROR_SURFACE_LOST_KHR:
		return ErrSurfaceLost
	case C.VK_ERROR_OUT_OF_DATE_KHR:
		return ErrOutOfDate
	default:
		return ErrFatal
	}
}
