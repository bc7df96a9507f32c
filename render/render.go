// Package render is a thin, typed layer over the Vulkan API.
//
// It wraps the raw handles the tracer needs (buffers, images, pipelines,
// acceleration structures, swapchains) in small value types, funnels all
// creation through a Device that tracks every native object it hands out,
// and records GPU work on an Encoder whose command list is replayed into a
// native command buffer exactly once.
//
// The package does not try to hide Vulkan's execution model. Callers still
// choose layouts, stages and access masks; render only removes the
// boilerplate and the lifetime bookkeeping.
package render

import "math"

// Extent2D is a width/height pair in pixels.
type Extent2D struct {
	Width  uint32
	Height uint32
}

// Offset2D is a signed pixel offset.
type Offset2D struct {
	X int32
	Y int32
}

// Rect2D is an offset plus an extent.
type Rect2D struct {
	Offset Offset2D
	Extent Extent2D
}

// Viewport matches VkViewport.
type Viewport struct {
	X        float32
	Y        float32
	Width    float32
	Height   float32
	MinDepth float32
	MaxDepth float32
}

// Range is a half-open [Start, End) interval of vertices, indices or
// instances.
type Range struct {
	Start uint32
	End   uint32
}

// Count returns the number of elements in the range.
func (r Range) Count() uint32 {
	if r.End < r.Start {
		panic("render: inverted range")
	}
	return r.End - r.Start
}

// ClearValue selects either a color clear or a depth/stencil clear for an
// attachment.
type ClearValue struct {
	Color      [4]float32
	Depth      float32
	Stencil    uint32
	HasDepth   bool
	HasStencil bool
}

// ClearColor returns a color clear value.
func ClearColor(r, g, b, a float32) ClearValue {
	return ClearValue{Color: [4]float32{r, g, b, a}}
}

// ClearDepthStencil returns a depth/stencil clear value.
func ClearDepthStencil(depth float32, stencil uint32) ClearValue {
	return ClearValue{Depth: depth, Stencil: stencil, HasDepth: true, HasStencil: true}
}

// DeviceAddress is a GPU virtual address obtained from a buffer or an
// acceleration structure.
type DeviceAddress uint64

// Offset returns the address advanced by off bytes.
// It panics if the addition overflows.
func (a DeviceAddress) Offset(off uint64) DeviceAddress {
	if uint64(a) > math.MaxUint64-off {
		panic("render: device address overflow")
	}
	return a + DeviceAddress(off)
}

// alignUp rounds value up to the alignment whose mask is mask
// (i.e. alignment-1). It reports false when the rounding overflows.
func alignUp(mask, value uint64) (uint64, bool) {
	if value > math.MaxUint64-mask {
		return 0, false
	}
	return (value + mask) &^ mask, true
}
