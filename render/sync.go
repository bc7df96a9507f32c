package render

// #include "vkrt.h"
import "C"

import "math"

// Fence is a host-visible signal that a submission finished.
type Fence struct {
	h   C.VkFence
	key int
}

// Semaphore orders submissions against each other and the presentation
// engine.
type Semaphore struct {
	h   C.VkSemaphore
	key int
}

// WaitSemaphore pairs a semaphore with the stages that wait on it.
type WaitSemaphore struct {
	Semaphore Semaphore
	Stages    PipelineStage
}

// CreateFence creates a fence, signaled or not.
func (d *Device) CreateFence(signaled bool) (Fence, error) {
	info := C.VkFenceCreateInfo{sType: C.VK_STRUCTURE_TYPE_FENCE_CREATE_INFO}
	if signaled {
		info.flags = C.VK_FENCE_CREATE_SIGNALED_BIT
	}
	var f Fence
	if err := checkResult(C.vkCreateFence(d.h, &info, nil, &f.h)); err != nil {
		return Fence{}, err
	}
	f.key = d.fences.insert(f.h)
	return f, nil
}

// CreateSemaphore creates a binary semaphore.
func (d *Device) CreateSemaphore() (Semaphore, error) {
	info := C.VkSemaphoreCreateInfo{sType: C.VK_STRUCTURE_TYPE_SEMAPHORE_CREATE_INFO}
	var s Semaphore
	if err := checkResult(C.vkCreateSemaphore(d.h, &info, nil, &s.h)); err != nil {
		return Semaphore{}, err
	}
	s.key = d.semaphores.insert(s.h)
	return s, nil
}

// WaitFences blocks until all (or any, if all is false) of the fences
// signal.
func (d *Device) WaitFences(fences []Fence, all bool) error {
	if len(fences) == 0 {
		return nil
	}
	hs := make([]C.VkFence, len(fences))
	for i, f := range fences {
		hs[i] = f.h
	}
	wait := C.VkBool32(C.VK_FALSE)
	if all {
		wait = C.VK_TRUE
	}
	res := C.vkWaitForFences(d.h, C.uint32_t(len(hs)), &hs[0], wait, C.uint64_t(math.MaxUint64))
	return checkResult(res)
}

// ResetFences returns the fences to the unsignaled state.
func (d *Device) ResetFences(fences []Fence) error {
	if len(fences) == 0 {
		return nil
	}
	hs := make([]C.VkFence, len(fences))
	for i, f := range fences {
		hs[i] = f.h
	}
	return checkResult(C.vkResetFences(d.h, C.uint32_t(len(hs)), &hs[0]))
}

// DestroyFence destroys the fence early.
func (d *Device) DestroyFence(f Fence) {
	if f.h != nil {
		d.fences.take(f.key)
		C.vkDestroyFence(d.h, f.h, nil)
	}
}

// DestroySemaphore destroys the semaphore early.
func (d *Device) DestroySemaphore(s Semaphore) {
	if s.h != nil {
		d.semaphores.take(s.key)
		C.vkDestroySemaphore(d.h, s.h, nil)
	}
}
