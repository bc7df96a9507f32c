package render

// #include "vkrt.h"
import "C"

// Formats. Vertex formats cover what mesh attributes can carry; the
// remainder are the texture and attachment formats the renderer uses.
const (
	FormatUndefined          Format = C.VK_FORMAT_UNDEFINED
	FormatR8Unorm            Format = C.VK_FORMAT_R8_UNORM
	FormatR8Snorm            Format = C.VK_FORMAT_R8_SNORM
	FormatR8Uint             Format = C.VK_FORMAT_R8_UINT
	FormatR8Sint             Format = C.VK_FORMAT_R8_SINT
	FormatR8G8Unorm          Format = C.VK_FORMAT_R8G8_UNORM
	FormatR8G8Snorm          Format = C.VK_FORMAT_R8G8_SNORM
	FormatR8G8Uint           Format = C.VK_FORMAT_R8G8_UINT
	FormatR8G8Sint           Format = C.VK_FORMAT_R8G8_SINT
	FormatR8G8B8A8Unorm      Format = C.VK_FORMAT_R8G8B8A8_UNORM
	FormatR8G8B8A8Snorm      Format = C.VK_FORMAT_R8G8B8A8_SNORM
	FormatR8G8B8A8Uint       Format = C.VK_FORMAT_R8G8B8A8_UINT
	FormatR8G8B8A8Sint       Format = C.VK_FORMAT_R8G8B8A8_SINT
	FormatR8G8B8A8Srgb       Format = C.VK_FORMAT_R8G8B8A8_SRGB
	FormatB8G8R8A8Unorm      Format = C.VK_FORMAT_B8G8R8A8_UNORM
	FormatB8G8R8A8Srgb       Format = C.VK_FORMAT_B8G8R8A8_SRGB
	FormatR16Uint            Format = C.VK_FORMAT_R16_UINT
	FormatR16Sint            Format = C.VK_FORMAT_R16_SINT
	FormatR16Sfloat          Format = C.VK_FORMAT_R16_SFLOAT
	FormatR16G16Unorm        Format = C.VK_FORMAT_R16G16_UNORM
	FormatR16G16Snorm        Format = C.VK_FORMAT_R16G16_SNORM
	FormatR16G16Uint         Format = C.VK_FORMAT_R16G16_UINT
	FormatR16G16Sint         Format = C.VK_FORMAT_R16G16_SINT
	FormatR16G16Sfloat       Format = C.VK_FORMAT_R16G16_SFLOAT
	FormatR16G16B16A16Unorm  Format = C.VK_FORMAT_R16G16B16A16_UNORM
	FormatR16G16B16A16Snorm  Format = C.VK_FORMAT_R16G16B16A16_SNORM
	FormatR16G16B16A16Uint   Format = C.VK_FORMAT_R16G16B16A16_UINT
	FormatR16G16B16A16Sint   Format = C.VK_FORMAT_R16G16B16A16_SINT
	FormatR16G16B16A16Sfloat Format = C.VK_FORMAT_R16G16B16A16_SFLOAT
	FormatR32Uint            Format = C.VK_FORMAT_R32_UINT
	FormatR32Sint            Format = C.VK_FORMAT_R32_SINT
	FormatR32Sfloat          Format = C.VK_FORMAT_R32_SFLOAT
	FormatR32G32Uint         Format = C.VK_FORMAT_R32G32_UINT
	FormatR32G32Sint         Format = C.VK_FORMAT_R32G32_SINT
	FormatR32G32Sfloat       Format = C.VK_FORMAT_R32G32_SFLOAT
	FormatR32G32B32Uint      Format = C.VK_FORMAT_R32G32B32_UINT
	FormatR32G32B32Sint      Format = C.VK_FORMAT_R32G32B32_SINT
	FormatR32G32B32Sfloat    Format = C.VK_FORMAT_R32G32B32_SFLOAT
	FormatR32G32B32A32Uint   Format = C.VK_FORMAT_R32G32B32A32_UINT
	FormatR32G32B32A32Sint   Format = C.VK_FORMAT_R32G32B32A32_SINT
	FormatR32G32B32A32Sfloat Format = C.VK_FORMAT_R32G32B32A32_SFLOAT
	FormatD32Sfloat          Format = C.VK_FORMAT_D32_SFLOAT
)

const (
	ColorSpaceSrgbNonlinear ColorSpace = C.VK_COLOR_SPACE_SRGB_NONLINEAR_KHR
)

const (
	PresentModeImmediate PresentMode = C.VK_PRESENT_MODE_IMMEDIATE_KHR
	PresentModeMailbox   PresentMode = C.VK_PRESENT_MODE_MAILBOX_KHR
	PresentModeFifo      PresentMode = C.VK_PRESENT_MODE_FIFO_KHR
)

const (
	BufferUsageTransferSrc        BufferUsage = C.VK_BUFFER_USAGE_TRANSFER_SRC_BIT
	BufferUsageTransferDst        BufferUsage = C.VK_BUFFER_USAGE_TRANSFER_DST_BIT
	BufferUsageUniform            BufferUsage = C.VK_BUFFER_USAGE_UNIFORM_BUFFER_BIT
	BufferUsageStorage            BufferUsage = C.VK_BUFFER_USAGE_STORAGE_BUFFER_BIT
	BufferUsageIndex              BufferUsage = C.VK_BUFFER_USAGE_INDEX_BUFFER_BIT
	BufferUsageVertex             BufferUsage = C.VK_BUFFER_USAGE_VERTEX_BUFFER_BIT
	BufferUsageDeviceAddress      BufferUsage = C.VK_BUFFER_USAGE_SHADER_DEVICE_ADDRESS_BIT
	BufferUsageAccelStorage       BufferUsage = C.VK_BUFFER_USAGE_ACCELERATION_STRUCTURE_STORAGE_BIT_KHR
	BufferUsageAccelBuildInput    BufferUsage = C.VK_BUFFER_USAGE_ACCELERATION_STRUCTURE_BUILD_INPUT_READ_ONLY_BIT_KHR
	BufferUsageShaderBindingTable BufferUsage = C.VK_BUFFER_USAGE_SHADER_BINDING_TABLE_BIT_KHR
)

const (
	ImageUsageTransferSrc  ImageUsage = C.VK_IMAGE_USAGE_TRANSFER_SRC_BIT
	ImageUsageTransferDst  ImageUsage = C.VK_IMAGE_USAGE_TRANSFER_DST_BIT
	ImageUsageSampled      ImageUsage = C.VK_IMAGE_USAGE_SAMPLED_BIT
	ImageUsageStorage      ImageUsage = C.VK_IMAGE_USAGE_STORAGE_BIT
	ImageUsageColor        ImageUsage = C.VK_IMAGE_USAGE_COLOR_ATTACHMENT_BIT
	ImageUsageDepthStencil ImageUsage = C.VK_IMAGE_USAGE_DEPTH_STENCIL_ATTACHMENT_BIT
)

const (
	LayoutUndefined       ImageLayout = C.VK_IMAGE_LAYOUT_UNDEFINED
	LayoutGeneral         ImageLayout = C.VK_IMAGE_LAYOUT_GENERAL
	LayoutColorAttachment ImageLayout = C.VK_IMAGE_LAYOUT_COLOR_ATTACHMENT_OPTIMAL
	LayoutDepthStencil    ImageLayout = C.VK_IMAGE_LAYOUT_DEPTH_STENCIL_ATTACHMENT_OPTIMAL
	LayoutShaderReadOnly  ImageLayout = C.VK_IMAGE_LAYOUT_SHADER_READ_ONLY_OPTIMAL
	LayoutTransferSrc     ImageLayout = C.VK_IMAGE_LAYOUT_TRANSFER_SRC_OPTIMAL
	LayoutTransferDst     ImageLayout = C.VK_IMAGE_LAYOUT_TRANSFER_DST_OPTIMAL
	LayoutPresent         ImageLayout = C.VK_IMAGE_LAYOUT_PRESENT_SRC_KHR
)

const (
	AspectColor ImageAspect = C.VK_IMAGE_ASPECT_COLOR_BIT
	AspectDepth ImageAspect = C.VK_IMAGE_ASPECT_DEPTH_BIT
)

const (
	ViewType2D ImageViewType = C.VK_IMAGE_VIEW_TYPE_2D
)

const (
	Samples1 SampleCount = C.VK_SAMPLE_COUNT_1_BIT
)

const (
	StageTopOfPipe        PipelineStage = C.VK_PIPELINE_STAGE_TOP_OF_PIPE_BIT
	StageVertexInput      PipelineStage = C.VK_PIPELINE_STAGE_VERTEX_INPUT_BIT
	StageFragmentShader   PipelineStage = C.VK_PIPELINE_STAGE_FRAGMENT_SHADER_BIT
	StageColorOutput      PipelineStage = C.VK_PIPELINE_STAGE_COLOR_ATTACHMENT_OUTPUT_BIT
	StageTransfer         PipelineStage = C.VK_PIPELINE_STAGE_TRANSFER_BIT
	StageBottomOfPipe     PipelineStage = C.VK_PIPELINE_STAGE_BOTTOM_OF_PIPE_BIT
	StageAllCommands      PipelineStage = C.VK_PIPELINE_STAGE_ALL_COMMANDS_BIT
	StageRayTracingShader PipelineStage = C.VK_PIPELINE_STAGE_RAY_TRACING_SHADER_BIT_KHR
	StageAccelBuild       PipelineStage = C.VK_PIPELINE_STAGE_ACCELERATION_STRUCTURE_BUILD_BIT_KHR
)

const (
	AccessMemoryRead    Access = C.VK_ACCESS_MEMORY_READ_BIT
	AccessMemoryWrite   Access = C.VK_ACCESS_MEMORY_WRITE_BIT
	AccessShaderRead    Access = C.VK_ACCESS_SHADER_READ_BIT
	AccessShaderWrite   Access = C.VK_ACCESS_SHADER_WRITE_BIT
	AccessColorWrite    Access = C.VK_ACCESS_COLOR_ATTACHMENT_WRITE_BIT
	AccessTransferRead  Access = C.VK_ACCESS_TRANSFER_READ_BIT
	AccessTransferWrite Access = C.VK_ACCESS_TRANSFER_WRITE_BIT
	AccessAccelRead     Access = C.VK_ACCESS_ACCELERATION_STRUCTURE_READ_BIT_KHR
	AccessAccelWrite    Access = C.VK_ACCESS_ACCELERATION_STRUCTURE_WRITE_BIT_KHR
)

const (
	StageVertex     ShaderStage = C.VK_SHADER_STAGE_VERTEX_BIT
	StageFragment   ShaderStage = C.VK_SHADER_STAGE_FRAGMENT_BIT
	StageCompute    ShaderStage = C.VK_SHADER_STAGE_COMPUTE_BIT
	StageRaygen     ShaderStage = C.VK_SHADER_STAGE_RAYGEN_BIT_KHR
	StageAnyHit     ShaderStage = C.VK_SHADER_STAGE_ANY_HIT_BIT_KHR
	StageClosestHit ShaderStage = C.VK_SHADER_STAGE_CLOSEST_HIT_BIT_KHR
	StageMiss       ShaderStage = C.VK_SHADER_STAGE_MISS_BIT_KHR
	StageCallable   ShaderStage = C.VK_SHADER_STAGE_CALLABLE_BIT_KHR
	StageAllShaders ShaderStage = C.VK_SHADER_STAGE_ALL
)

const (
	IndexUint16 IndexType = C.VK_INDEX_TYPE_UINT16
	IndexUint32 IndexType = C.VK_INDEX_TYPE_UINT32
	IndexNone   IndexType = C.VK_INDEX_TYPE_NONE_KHR
)

const (
	BindGraphics   BindPoint = C.VK_PIPELINE_BIND_POINT_GRAPHICS
	BindCompute    BindPoint = C.VK_PIPELINE_BIND_POINT_COMPUTE
	BindRayTracing BindPoint = C.VK_PIPELINE_BIND_POINT_RAY_TRACING_KHR
)

const (
	LoadOpLoad     LoadOp = C.VK_ATTACHMENT_LOAD_OP_LOAD
	LoadOpClear    LoadOp = C.VK_ATTACHMENT_LOAD_OP_CLEAR
	LoadOpDontCare LoadOp = C.VK_ATTACHMENT_LOAD_OP_DONT_CARE
)

const (
	StoreOpStore    StoreOp = C.VK_ATTACHMENT_STORE_OP_STORE
	StoreOpDontCare StoreOp = C.VK_ATTACHMENT_STORE_OP_DONT_CARE
)

const (
	TopologyPointList     PrimitiveTopology = C.VK_PRIMITIVE_TOPOLOGY_POINT_LIST
	TopologyLineList      PrimitiveTopology = C.VK_PRIMITIVE_TOPOLOGY_LINE_LIST
	TopologyLineStrip     PrimitiveTopology = C.VK_PRIMITIVE_TOPOLOGY_LINE_STRIP
	TopologyTriangleList  PrimitiveTopology = C.VK_PRIMITIVE_TOPOLOGY_TRIANGLE_LIST
	TopologyTriangleStrip PrimitiveTopology = C.VK_PRIMITIVE_TOPOLOGY_TRIANGLE_STRIP
)

const (
	FrontFaceCCW FrontFace = C.VK_FRONT_FACE_COUNTER_CLOCKWISE
	FrontFaceCW  FrontFace = C.VK_FRONT_FACE_CLOCKWISE
)

const (
	CullNone  CullMode = C.VK_CULL_MODE_NONE
	CullBack  CullMode = C.VK_CULL_MODE_BACK_BIT
	CullFront CullMode = C.VK_CULL_MODE_FRONT_BIT
)

const (
	PolygonFill PolygonMode = C.VK_POLYGON_MODE_FILL
	PolygonLine PolygonMode = C.VK_POLYGON_MODE_LINE
)

const (
	FilterNearest Filter = C.VK_FILTER_NEAREST
	FilterLinear  Filter = C.VK_FILTER_LINEAR
)

const (
	AddressRepeat      SamplerAddressMode = C.VK_SAMPLER_ADDRESS_MODE_REPEAT
	AddressClampToEdge SamplerAddressMode = C.VK_SAMPLER_ADDRESS_MODE_CLAMP_TO_EDGE
)

const (
	GeometryOpaque GeometryFlags = C.VK_GEOMETRY_OPAQUE_BIT_KHR
)

const (
	BuildPreferFastTrace BuildFlags = C.VK_BUILD_ACCELERATION_STRUCTURE_PREFER_FAST_TRACE_BIT_KHR
	BuildPreferFastBuild BuildFlags = C.VK_BUILD_ACCELERATION_STRUCTURE_PREFER_FAST_BUILD_BIT_KHR
	BuildAllowUpdate     BuildFlags = C.VK_BUILD_ACCELERATION_STRUCTURE_ALLOW_UPDATE_BIT_KHR
)

// WholeSize selects the remainder of a buffer in ranges that take a size.
const WholeSize = uint64(C.VK_WHOLE_SIZE)
