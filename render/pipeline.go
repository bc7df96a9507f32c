package render

// #include <stdlib.h>
// #include "vkrt.h"
import "C"

import "unsafe"

// PushConstantRange declares a span of push constant bytes visible to
// stages.
type PushConstantRange struct {
	Stages ShaderStage
	Offset uint32
	Size   uint32
}

// PipelineLayoutInfo describes a pipeline layout to create.
type PipelineLayoutInfo struct {
	SetLayouts    []DescriptorSetLayout
	PushConstants []PushConstantRange
}

type pipeLayoutInner struct {
	h   C.VkPipelineLayout
	key int
}

// PipelineLayout is a handle to a pipeline layout.
type PipelineLayout struct {
	inner *pipeLayoutInner
}

// CreatePipelineLayout creates a pipeline layout.
func (d *Device) CreatePipelineLayout(info PipelineLayoutInfo) (PipelineLayout, error) {
	var mem carena
	defer mem.release()

	cinfo := C.VkPipelineLayoutCreateInfo{
		sType: C.VK_STRUCTURE_TYPE_PIPELINE_LAYOUT_CREATE_INFO,
	}
	if n := len(info.SetLayouts); n > 0 {
		p := (*C.VkDescriptorSetLayout)(mem.alloc(C.size_t(n) * C.sizeof_VkDescriptorSetLayout))
		ls := unsafe.Slice(p, n)
		for i, l := range info.SetLayouts {
			ls[i] = l.inner.h
		}
		cinfo.setLayoutCount = C.uint32_t(n)
		cinfo.pSetLayouts = p
	}
	if n := len(info.PushConstants); n > 0 {
		p := (*C.VkPushConstantRange)(mem.alloc(C.size_t(n) * C.sizeof_VkPushConstantRange))
		rs := unsafe.Slice(p, n)
		for i, r := range info.PushConstants {
			rs[i] = C.VkPushConstantRange{
				stageFlags: C.VkShaderStageFlags(r.Stages),
				offset:     C.uint32_t(r.Offset),
				size:       C.uint32_t(r.Size),
			}
		}
		cinfo.pushConstantRangeCount = C.uint32_t(n)
		cinfo.pPushConstantRanges = p
	}

	inner := &pipeLayoutInner{}
	if err := checkResult(C.vkCreatePipelineLayout(d.h, &cinfo, nil, &inner.h)); err != nil {
		return PipelineLayout{}, err
	}
	inner.key = d.pipeLayouts.insert(inner.h)
	return PipelineLayout{inner: inner}, nil
}

// VertexBinding declares a per-vertex input binding.
type VertexBinding struct {
	Binding uint32
	Stride  uint32
}

// VertexAttribute declares one attribute within a binding.
type VertexAttribute struct {
	Location uint32
	Binding  uint32
	Format   Format
	Offset   uint32
}

// Rasterizer holds the fragment side of a graphics pipeline. A nil
// Rasterizer in GraphicsPipelineInfo discards primitives after the
// vertex stage.
type Rasterizer struct {
	FrontFace      FrontFace
	CullMode       CullMode
	PolygonMode    PolygonMode
	FragmentShader *Shader
	DepthTest      bool
	DepthWrite     bool
	AlphaBlend     bool
}

// GraphicsPipelineInfo describes a graphics pipeline to create. Viewport
// and scissor are always dynamic.
type GraphicsPipelineInfo struct {
	VertexBindings   []VertexBinding
	VertexAttributes []VertexAttribute
	Topology         PrimitiveTopology
	VertexShader     Shader
	Rasterizer       *Rasterizer
	Layout           PipelineLayout
	RenderPass       RenderPass
	Subpass          uint32

	// ColorAttachments is the color attachment count of the subpass.
	// Zero means one.
	ColorAttachments uint32
}

type pipelineInner struct {
	h      C.VkPipeline
	key    int
	layout PipelineLayout
}

// GraphicsPipeline is a handle to a graphics pipeline.
type GraphicsPipeline struct {
	inner *pipelineInner
}

// Layout returns the layout the pipeline was created with.
func (p GraphicsPipeline) Layout() PipelineLayout { return p.inner.layout }

// CreateGraphicsPipeline creates a graphics pipeline.
func (d *Device) CreateGraphicsPipeline(info GraphicsPipelineInfo) (GraphicsPipeline, error) {
	var mem carena
	defer mem.release()

	entry := C.CString("main")
	defer C.free(unsafe.Pointer(entry))

	nstages := 1
	if info.Rasterizer != nil && info.Rasterizer.FragmentShader != nil {
		nstages = 2
	}
	stages := (*C.VkPipelineShaderStageCreateInfo)(mem.alloc(C.size_t(nstages) * C.sizeof_VkPipelineShaderStageCreateInfo))
	sts := unsafe.Slice(stages, nstages)
	sts[0] = C.VkPipelineShaderStageCreateInfo{
		sType:  C.VK_STRUCTURE_TYPE_PIPELINE_SHADER_STAGE_CREATE_INFO,
		stage:  C.VkShaderStageFlagBits(info.VertexShader.Stage),
		module: info.VertexShader.Module.h,
		pName:  entry,
	}
	if nstages == 2 {
		fs := info.Rasterizer.FragmentShader
		sts[1] = C.VkPipelineShaderStageCreateInfo{
			sType:  C.VK_STRUCTURE_TYPE_PIPELINE_SHADER_STAGE_CREATE_INFO,
			stage:  C.VkShaderStageFlagBits(fs.Stage),
			module: fs.Module.h,
			pName:  entry,
		}
	}

	vertexInput := (*C.VkPipelineVertexInputStateCreateInfo)(mem.alloc(C.sizeof_VkPipelineVertexInputStateCreateInfo))
	*vertexInput = C.VkPipelineVertexInputStateCreateInfo{
		sType: C.VK_STRUCTURE_TYPE_PIPELINE_VERTEX_INPUT_STATE_CREATE_INFO,
	}
	if n := len(info.VertexBindings); n > 0 {
		p := (*C.VkVertexInputBindingDescription)(mem.alloc(C.size_t(n) * C.sizeof_VkVertexInputBindingDescription))
		bs := unsafe.Slice(p, n)
		for i, b := range info.VertexBindings {
			bs[i] = C.VkVertexInputBindingDescription{
				binding:   C.uint32_t(b.Binding),
				stride:    C.uint32_t(b.Stride),
				inputRate: C.VK_VERTEX_INPUT_RATE_VERTEX,
			}
		}
		vertexInput.vertexBindingDescriptionCount = C.uint32_t(n)
		vertexInput.pVertexBindingDescriptions = p
	}
	if n := len(info.VertexAttributes); n > 0 {
		p := (*C.VkVertexInputAttributeDescription)(mem.alloc(C.size_t(n) * C.sizeof_VkVertexInputAttributeDescription))
		as := unsafe.Slice(p, n)
		for i, a := range info.VertexAttributes {
			as[i] = C.VkVertexInputAttributeDescription{
				location: C.uint32_t(a.Location),
				binding:  C.uint32_t(a.Binding),
				format:   C.VkFormat(a.Format),
				offset:   C.uint32_t(a.Offset),
			}
		}
		vertexInput.vertexAttributeDescriptionCount = C.uint32_t(n)
		vertexInput.pVertexAttributeDescriptions = p
	}

	inputAssembly := (*C.VkPipelineInputAssemblyStateCreateInfo)(mem.alloc(C.sizeof_VkPipelineInputAssemblyStateCreateInfo))
	*inputAssembly = C.VkPipelineInputAssemblyStateCreateInfo{
		sType:    C.VK_STRUCTURE_TYPE_PIPELINE_INPUT_ASSEMBLY_STATE_CREATE_INFO,
		topology: C.VkPrimitiveTopology(info.Topology),
	}

	viewport := (*C.VkPipelineViewportStateCreateInfo)(mem.alloc(C.sizeof_VkPipelineViewportStateCreateInfo))
	*viewport = C.VkPipelineViewportStateCreateInfo{
		sType:         C.VK_STRUCTURE_TYPE_PIPELINE_VIEWPORT_STATE_CREATE_INFO,
		viewportCount: 1,
		scissorCount:  1,
	}

	raster := (*C.VkPipelineRasterizationStateCreateInfo)(mem.alloc(C.sizeof_VkPipelineRasterizationStateCreateInfo))
	*raster = C.VkPipelineRasterizationStateCreateInfo{
		sType:     C.VK_STRUCTURE_TYPE_PIPELINE_RASTERIZATION_STATE_CREATE_INFO,
		lineWidth: 1,
	}
	if r := info.Rasterizer; r != nil {
		raster.frontFace = C.VkFrontFace(r.FrontFace)
		raster.cullMode = C.VkCullModeFlags(r.CullMode)
		raster.polygonMode = C.VkPolygonMode(r.PolygonMode)
	} else {
		raster.rasterizerDiscardEnable = C.VK_TRUE
	}

	multisample := (*C.VkPipelineMultisampleStateCreateInfo)(mem.alloc(C.sizeof_VkPipelineMultisampleStateCreateInfo))
	*multisample = C.VkPipelineMultisampleStateCreateInfo{
		sType:                C.VK_STRUCTURE_TYPE_PIPELINE_MULTISAMPLE_STATE_CREATE_INFO,
		rasterizationSamples: C.VK_SAMPLE_COUNT_1_BIT,
	}

	depth := (*C.VkPipelineDepthStencilStateCreateInfo)(mem.alloc(C.sizeof_VkPipelineDepthStencilStateCreateInfo))
	*depth = C.VkPipelineDepthStencilStateCreateInfo{
		sType:          C.VK_STRUCTURE_TYPE_PIPELINE_DEPTH_STENCIL_STATE_CREATE_INFO,
		depthCompareOp: C.VK_COMPARE_OP_LESS_OR_EQUAL,
		maxDepthBounds: 1,
	}
	if r := info.Rasterizer; r != nil {
		if r.DepthTest {
			depth.depthTestEnable = C.VK_TRUE
		}
		if r.DepthWrite {
			depth.depthWriteEnable = C.VK_TRUE
		}
	}

	nAttach := info.ColorAttachments
	if nAttach == 0 {
		nAttach = 1
	}
	blendAttach := (*C.VkPipelineColorBlendAttachmentState)(mem.alloc(C.size_t(nAttach) * C.sizeof_VkPipelineColorBlendAttachmentState))
	bas := unsafe.Slice(blendAttach, nAttach)
	for i := range bas {
		bas[i] = C.VkPipelineColorBlendAttachmentState{
			colorWriteMask: C.VK_COLOR_COMPONENT_R_BIT | C.VK_COLOR_COMPONENT_G_BIT |
				C.VK_COLOR_COMPONENT_B_BIT | C.VK_COLOR_COMPONENT_A_BIT,
		}
		if info.Rasterizer != nil && info.Rasterizer.AlphaBlend {
			bas[i].blendEnable = C.VK_TRUE
			bas[i].srcColorBlendFactor = C.VK_BLEND_FACTOR_SRC_ALPHA
			bas[i].dstColorBlendFactor = C.VK_BLEND_FACTOR_ONE_MINUS_SRC_ALPHA
			bas[i].colorBlendOp = C.VK_BLEND_OP_ADD
			bas[i].srcAlphaBlendFactor = C.VK_BLEND_FACTOR_ONE
			bas[i].dstAlphaBlendFactor = C.VK_BLEND_FACTOR_ONE_MINUS_SRC_ALPHA
			bas[i].alphaBlendOp = C.VK_BLEND_OP_ADD
		}
	}
	blend := (*C.VkPipelineColorBlendStateCreateInfo)(mem.alloc(C.sizeof_VkPipelineColorBlendStateCreateInfo))
	*blend = C.VkPipelineColorBlendStateCreateInfo{
		sType:           C.VK_STRUCTURE_TYPE_PIPELINE_COLOR_BLEND_STATE_CREATE_INFO,
		attachmentCount: C.uint32_t(nAttach),
		pAttachments:    blendAttach,
	}

	dynStates := (*C.VkDynamicState)(mem.alloc(2 * C.sizeof_VkDynamicState))
	ds := unsafe.Slice(dynStates, 2)
	ds[0] = C.VK_DYNAMIC_STATE_VIEWPORT
	ds[1] = C.VK_DYNAMIC_STATE_SCISSOR
	dynamic := (*C.VkPipelineDynamicStateCreateInfo)(mem.alloc(C.sizeof_VkPipelineDynamicStateCreateInfo))
	*dynamic = C.VkPipelineDynamicStateCreateInfo{
		sType:             C.VK_STRUCTURE_TYPE_PIPELINE_DYNAMIC_STATE_CREATE_INFO,
		dynamicStateCount: 2,
		pDynamicStates:    dynStates,
	}

	cinfo := (*C.VkGraphicsPipelineCreateInfo)(mem.alloc(C.sizeof_VkGraphicsPipelineCreateInfo))
	*cinfo = C.VkGraphicsPipelineCreateInfo{
		sType:               C.VK_STRUCTURE_TYPE_GRAPHICS_PIPELINE_CREATE_INFO,
		stageCount:          C.uint32_t(nstages),
		pStages:             stages,
		pVertexInputState:   vertexInput,
		pInputAssemblyState: inputAssembly,
		pViewportState:      viewport,
		pRasterizationState: raster,
		pMultisampleState:   multisample,
		pDepthStencilState:  depth,
		pColorBlendState:    blend,
		pDynamicState:       dynamic,
		layout:              info.Layout.inner.h,
		renderPass:          info.RenderPass.inner.h,
		subpass:             C.uint32_t(info.Subpass),
	}

	inner := &pipelineInner{layout: info.Layout}
	res := C.vkCreateGraphicsPipelines(d.h, nil, 1, cinfo, nil, &inner.h)
	if err := checkResult(res); err != nil {
		return GraphicsPipeline{}, err
	}
	inner.key = d.pipelines.insert(inner.h)
	return GraphicsPipeline{inner: inner}, nil
}

// unusedShader marks an absent member of a shader group.
const unusedShader = ^uint32(0)

// ShaderGroup maps ray tracing pipeline stages into one shader binding
// table record.
type ShaderGroup struct {
	general    uint32
	closestHit uint32
	anyHit     uint32
	triangles  bool
}

// RaygenGroup returns a general group for a raygen stage index.
func RaygenGroup(stage uint32) ShaderGroup {
	return ShaderGroup{general: stage, closestHit: unusedShader, anyHit: unusedShader}
}

// MissGroup returns a general group for a miss stage index.
func MissGroup(stage uint32) ShaderGroup {
	return ShaderGroup{general: stage, closestHit: unusedShader, anyHit: unusedShader}
}

// TriangleHitGroup returns a triangles hit group. nil leaves the member
// unused.
func TriangleHitGroup(closestHit, anyHit *uint32) ShaderGroup {
	g := ShaderGroup{general: unusedShader, closestHit: unusedShader, anyHit: unusedShader, triangles: true}
	if closestHit != nil {
		g.closestHit = *closestHit
	}
	if anyHit != nil {
		g.anyHit = *anyHit
	}
	return g
}

// RayTracingPipelineInfo describes a ray tracing pipeline to create.
type RayTracingPipelineInfo struct {
	Shaders           []Shader
	Groups            []ShaderGroup
	MaxRecursionDepth uint32
	Layout            PipelineLayout
}

// RayTracingPipeline is a handle to a ray tracing pipeline plus the
// shader group handles read back after creation.
type RayTracingPipeline struct {
	inner *rtPipelineInner
}

type rtPipelineInner struct {
	pipelineInner
	groupHandles []byte
	groupCount   int
	handleSize   int
}

// Layout returns the layout the pipeline was created with.
func (p RayTracingPipeline) Layout() PipelineLayout { return p.inner.layout }

// GroupCount returns the number of shader groups.
func (p RayTracingPipeline) GroupCount() int { return p.inner.groupCount }

// HandleSize returns the driver's opaque group handle size.
func (p RayTracingPipeline) HandleSize() int { return p.inner.handleSize }

// GroupHandle returns the opaque handle of group i.
func (p RayTracingPipeline) GroupHandle(i int) []byte {
	hs := p.inner.handleSize
	return p.inner.groupHandles[i*hs : (i+1)*hs]
}

// CreateRayTracingPipeline creates a ray tracing pipeline and reads back
// its shader group handles.
func (d *Device) CreateRayTracingPipeline(info RayTracingPipelineInfo) (RayTracingPipeline, error) {
	var mem carena
	defer mem.release()

	entry := C.CString("main")
	defer C.free(unsafe.Pointer(entry))

	ns := len(info.Shaders)
	stages := (*C.VkPipelineShaderStageCreateInfo)(mem.alloc(C.size_t(ns) * C.sizeof_VkPipelineShaderStageCreateInfo))
	sts := unsafe.Slice(stages, ns)
	for i, s := range info.Shaders {
		sts[i] = C.VkPipelineShaderStageCreateInfo{
			sType:  C.VK_STRUCTURE_TYPE_PIPELINE_SHADER_STAGE_CREATE_INFO,
			stage:  C.VkShaderStageFlagBits(s.Stage),
			module: s.Module.h,
			pName:  entry,
		}
	}

	ng := len(info.Groups)
	groups := (*C.VkRayTracingShaderGroupCreateInfoKHR)(mem.alloc(C.size_t(ng) * C.sizeof_VkRayTracingShaderGroupCreateInfoKHR))
	gs := unsafe.Slice(groups, ng)
	for i, g := range info.Groups {
		typ := C.VkRayTracingShaderGroupTypeKHR(C.VK_RAY_TRACING_SHADER_GROUP_TYPE_GENERAL_KHR)
		if g.triangles {
			typ = C.VK_RAY_TRACING_SHADER_GROUP_TYPE_TRIANGLES_HIT_GROUP_KHR
		}
		gs[i] = C.VkRayTracingShaderGroupCreateInfoKHR{
			sType:              C.VK_STRUCTURE_TYPE_RAY_TRACING_SHADER_GROUP_CREATE_INFO_KHR,
			_type:              typ,
			generalShader:      C.uint32_t(g.general),
			closestHitShader:   C.uint32_t(g.closestHit),
			anyHitShader:       C.uint32_t(g.anyHit),
			intersectionShader: C.uint32_t(unusedShader),
		}
	}

	cinfo := (*C.VkRayTracingPipelineCreateInfoKHR)(mem.alloc(C.sizeof_VkRayTracingPipelineCreateInfoKHR))
	*cinfo = C.VkRayTracingPipelineCreateInfoKHR{
		sType:                        C.VK_STRUCTURE_TYPE_RAY_TRACING_PIPELINE_CREATE_INFO_KHR,
		stageCount:                   C.uint32_t(ns),
		pStages:                      stages,
		groupCount:                   C.uint32_t(ng),
		pGroups:                      groups,
		maxPipelineRayRecursionDepth: C.uint32_t(info.MaxRecursionDepth),
		layout:                       info.Layout.inner.h,
	}

	inner := &rtPipelineInner{pipelineInner: pipelineInner{layout: info.Layout}}
	if err := checkResult(C.vkrtCreateRayTracingPipelinesKHR(d.h, 1, cinfo, &inner.h)); err != nil {
		return RayTracingPipeline{}, err
	}
	inner.key = d.pipelines.insert(inner.h)

	inner.groupCount = ng
	inner.handleSize = int(d.phys.info.ShaderGroupHandleSize)
	inner.groupHandles = make([]byte, ng*inner.handleSize)
	res := C.vkrtGetRayTracingShaderGroupHandlesKHR(d.h, inner.h, 0, C.uint32_t(ng),
		C.size_t(len(inner.groupHandles)), unsafe.Pointer(&inner.groupHandles[0]))
	if err := checkResult(res); err != nil {
		return RayTracingPipeline{}, err
	}
	return RayTracingPipeline{inner: inner}, nil
}
