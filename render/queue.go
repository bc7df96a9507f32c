package render

// #include <stdlib.h>
// #include "vkrt.h"
import "C"

import (
	"sync"
	"unsafe"
)

// Queue is the device's graphics/present queue plus the command pool its
// command buffers come from. Submission and presentation are serialized
// internally.
type Queue struct {
	dev    *Device
	h      C.VkQueue
	pool   C.VkCommandPool
	family uint32
	mu     sync.Mutex
}

func (d *Device) newQueue(family uint32) (*Queue, error) {
	q := &Queue{dev: d, family: family}
	C.vkGetDeviceQueue(d.h, C.uint32_t(family), 0, &q.h)

	info := C.VkCommandPoolCreateInfo{
		sType:            C.VK_STRUCTURE_TYPE_COMMAND_POOL_CREATE_INFO,
		flags:            C.VK_COMMAND_POOL_CREATE_TRANSIENT_BIT,
		queueFamilyIndex: C.uint32_t(family),
	}
	if err := checkResult(C.vkCreateCommandPool(d.h, &info, nil, &q.pool)); err != nil {
		return nil, err
	}
	return q, nil
}

// CreateEncoder allocates a fresh command buffer and wraps it in an
// encoder.
func (q *Queue) CreateEncoder() (*Encoder, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	info := C.VkCommandBufferAllocateInfo{
		sType:              C.VK_STRUCTURE_TYPE_COMMAND_BUFFER_ALLOCATE_INFO,
		commandPool:        q.pool,
		level:              C.VK_COMMAND_BUFFER_LEVEL_PRIMARY,
		commandBufferCount: 1,
	}
	var cb CommandBuffer
	if err := checkResult(C.vkAllocateCommandBuffers(q.dev.h, &info, &cb.h)); err != nil {
		return nil, err
	}
	return &Encoder{cb: cb}, nil
}

// Free returns a command buffer to the pool. The buffer must have
// finished executing.
func (q *Queue) Free(cb CommandBuffer) {
	if cb.h == nil {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	C.vkFreeCommandBuffers(q.dev.h, q.pool, 1, &cb.h)
}

// Submit submits cb, waiting on waits, signaling signals and the
// optional fence.
func (q *Queue) Submit(cb CommandBuffer, waits []WaitSemaphore, signals []Semaphore, fence Fence) error {
	var mem carena
	defer mem.release()

	info := (*C.VkSubmitInfo)(mem.alloc(C.sizeof_VkSubmitInfo))
	*info = C.VkSubmitInfo{sType: C.VK_STRUCTURE_TYPE_SUBMIT_INFO}

	if n := len(waits); n > 0 {
		sems := (*C.VkSemaphore)(mem.alloc(C.size_t(n) * C.sizeof_VkSemaphore))
		stages := (*C.VkPipelineStageFlags)(mem.alloc(C.size_t(n) * C.sizeof_VkPipelineStageFlags))
		ss := unsafe.Slice(sems, n)
		ps := unsafe.Slice(stages, n)
		for i, w := range waits {
			ss[i] = w.Semaphore.h
			ps[i] = C.VkPipelineStageFlags(w.Stages)
		}
		info.waitSemaphoreCount = C.uint32_t(n)
		info.pWaitSemaphores = sems
		info.pWaitDstStageMask = stages
	}
	if n := len(signals); n > 0 {
		sems := (*C.VkSemaphore)(mem.alloc(C.size_t(n) * C.sizeof_VkSemaphore))
		ss := unsafe.Slice(sems, n)
		for i, s := range signals {
			ss[i] = s.h
		}
		info.signalSemaphoreCount = C.uint32_t(n)
		info.pSignalSemaphores = sems
	}
	cbp := (*C.VkCommandBuffer)(mem.alloc(C.sizeof_VkCommandBuffer))
	*cbp = cb.h
	info.commandBufferCount = 1
	info.pCommandBuffers = cbp

	q.mu.Lock()
	defer q.mu.Unlock()
	return checkResult(C.vkQueueSubmit(q.h, 1, info, fence.h))
}

// Present hands a presentable image back to the presentation engine,
// waiting on the image's render-finished semaphore. ErrOutOfDate means
// the swapchain must be reconfigured.
func (q *Queue) Present(img *SwapchainImage) error {
	var mem carena
	defer mem.release()

	sem := (*C.VkSemaphore)(mem.alloc(C.sizeof_VkSemaphore))
	*sem = img.signal.h
	sc := (*C.VkSwapchainKHR)(mem.alloc(C.sizeof_VkSwapchainKHR))
	*sc = img.chain.h
	idx := (*C.uint32_t)(mem.alloc(C.sizeof_uint32_t))
	*idx = C.uint32_t(img.index)

	info := (*C.VkPresentInfoKHR)(mem.alloc(C.sizeof_VkPresentInfoKHR))
	*info = C.VkPresentInfoKHR{
		sType:              C.VK_STRUCTURE_TYPE_PRESENT_INFO_KHR,
		waitSemaphoreCount: 1,
		pWaitSemaphores:    sem,
		swapchainCount:     1,
		pSwapchains:        sc,
		pImageIndices:      idx,
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	res := C.vkQueuePresentKHR(q.h, info)
	if res == C.VK_ERROR_OUT_OF_DATE_KHR {
		return ErrOutOfDate
	}
	return checkResult(res)
}

// WaitIdle blocks until the queue drains.
func (q *Queue) WaitIdle() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return checkResult(C.vkQueueWaitIdle(q.h))
}

// Destroy destroys the command pool and every command buffer still
// allocated from it.
func (q *Queue) Destroy() {
	if q.pool == nil {
		return
	}
	C.vkDestroyCommandPool(q.dev.h, q.pool, nil)
	q.pool = nil
}
