package render

// The enum and flag types below mirror their Vulkan counterparts bit for
// bit, so crossing the cgo boundary is a plain conversion. Their constants
// are declared in const.go against the C headers. DescriptorType is the
// one exception: it is a dense index (see descriptor.go).

// Format identifies a pixel or vertex attribute format.
type Format uint32

// ColorSpace identifies a surface color space.
type ColorSpace uint32

// PresentMode selects how presentation requests are queued.
type PresentMode uint32

// BufferUsage is a set of buffer usage flags.
type BufferUsage uint32

// ImageUsage is a set of image usage flags.
type ImageUsage uint32

// ImageLayout is a native image layout.
type ImageLayout uint32

// ImageAspect selects the color or depth aspect of an image.
type ImageAspect uint32

// ImageViewType selects the dimensionality of an image view.
type ImageViewType uint32

// SampleCount is a sample count flag (only one bit set).
type SampleCount uint32

// PipelineStage is a set of pipeline stage flags.
type PipelineStage uint32

// Access is a set of memory access flags.
type Access uint32

// ShaderStage is a set of shader stage flags.
type ShaderStage uint32

// IndexType identifies the width of index buffer entries.
type IndexType uint32

// BindPoint selects the pipeline type a bind applies to.
type BindPoint uint32

// LoadOp selects what happens to an attachment when a pass begins.
type LoadOp uint32

// StoreOp selects what happens to an attachment when a pass ends.
type StoreOp uint32

// PrimitiveTopology selects how vertices assemble into primitives.
type PrimitiveTopology uint32

// FrontFace selects the winding considered front-facing.
type FrontFace uint32

// CullMode is a set of triangle culling flags.
type CullMode uint32

// PolygonMode selects fill or wireframe rasterization.
type PolygonMode uint32

// Filter selects a sampler filter.
type Filter uint32

// SamplerAddressMode selects sampler wrapping behavior.
type SamplerAddressMode uint32

// GeometryFlags is a set of acceleration structure geometry flags.
type GeometryFlags uint32

// BuildFlags is a set of acceleration structure build flags.
type BuildFlags uint32

// AllocFlags steers where a resource's memory comes from.
type AllocFlags uint32

// Memory placement requests. FastDeviceAccess without HostAccess picks
// device-local memory; HostAccess picks host-visible, host-coherent
// memory; DeviceAddress additionally makes the allocation addressable
// from shaders.
const (
	AllocHostAccess AllocFlags = 1 << iota
	AllocFastDeviceAccess
	AllocDeviceAddress
)
