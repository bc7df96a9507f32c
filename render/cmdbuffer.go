package render

// #include <stdlib.h>
// #include "vkrt.h"
import "C"

import "unsafe"

// CommandBuffer is a native command buffer holding one replayed command
// list. It is single use: record once, submit once, then free it through
// its queue.
type CommandBuffer struct {
	h C.VkCommandBuffer
}

// record begins the native buffer, replays the list into it in recording
// order and ends it.
func (cb CommandBuffer) record(d *Device, l *cmdList) error {
	begin := C.VkCommandBufferBeginInfo{
		sType: C.VK_STRUCTURE_TYPE_COMMAND_BUFFER_BEGIN_INFO,
		flags: C.VK_COMMAND_BUFFER_USAGE_ONE_TIME_SUBMIT_BIT,
	}
	if err := checkResult(C.vkBeginCommandBuffer(cb.h, &begin)); err != nil {
		return err
	}
	for _, ref := range l.refs {
		switch ref.kind {
		case cmdBeginRenderPass:
			cb.beginRenderPass(&l.beginPass[ref.index])
		case cmdEndRenderPass:
			C.vkCmdEndRenderPass(cb.h)
		case cmdBindGraphicsPipeline:
			C.vkCmdBindPipeline(cb.h, C.VK_PIPELINE_BIND_POINT_GRAPHICS, l.bindGraphics[ref.index].inner.h)
		case cmdBindRayTracingPipeline:
			C.vkCmdBindPipeline(cb.h, C.VK_PIPELINE_BIND_POINT_RAY_TRACING_KHR, l.bindRayTracing[ref.index].inner.h)
		case cmdBindDescriptorSets:
			cb.bindDescriptorSets(&l.bindSets[ref.index])
		case cmdSetViewport:
			v := l.viewports[ref.index]
			cv := C.VkViewport{
				x:        C.float(v.X),
				y:        C.float(v.Y),
				width:    C.float(v.Width),
				height:   C.float(v.Height),
				minDepth: C.float(v.MinDepth),
				maxDepth: C.float(v.MaxDepth),
			}
			C.vkCmdSetViewport(cb.h, 0, 1, &cv)
		case cmdSetScissor:
			cr := vkRect2D(l.scissors[ref.index])
			C.vkCmdSetScissor(cb.h, 0, 1, &cr)
		case cmdDraw:
			c := l.draws[ref.index]
			C.vkCmdDraw(cb.h, C.uint32_t(c.vertices.Count()), C.uint32_t(c.instances.Count()),
				C.uint32_t(c.vertices.Start), C.uint32_t(c.instances.Start))
		case cmdDrawIndexed:
			c := l.drawsIndexed[ref.index]
			C.vkCmdDrawIndexed(cb.h, C.uint32_t(c.indices.Count()), C.uint32_t(c.instances.Count()),
				C.uint32_t(c.indices.Start), C.int32_t(c.vertexOffset), C.uint32_t(c.instances.Start))
		case cmdUpdateBuffer:
			c := l.updates[ref.index]
			C.vkCmdUpdateBuffer(cb.h, c.buffer.inner.h, C.VkDeviceSize(c.offset),
				C.VkDeviceSize(len(c.data)), unsafe.Pointer(&c.data[0]))
		case cmdBindVertexBuffers:
			c := l.bindVertex[ref.index]
			bufs := make([]C.VkBuffer, len(c.bindings))
			offs := make([]C.VkDeviceSize, len(c.bindings))
			for i, b := range c.bindings {
				bufs[i] = b.Buffer.inner.h
				offs[i] = C.VkDeviceSize(b.Offset)
			}
			C.vkCmdBindVertexBuffers(cb.h, C.uint32_t(c.firstBinding), C.uint32_t(len(bufs)),
				&bufs[0], &offs[0])
		case cmdBindIndexBuffer:
			c := l.bindIndex[ref.index]
			C.vkCmdBindIndexBuffer(cb.h, c.buffer.inner.h, C.VkDeviceSize(c.offset), C.VkIndexType(c.typ))
		case cmdBuildAccelerationStructures:
			cb.buildAccelerationStructures(l.builds[ref.index])
		case cmdTraceRays:
			cb.traceRays(&l.traces[ref.index])
		case cmdPipelineBarrier:
			cb.pipelineBarrier(&l.barriers[ref.index])
		case cmdPushConstants:
			c := l.pushes[ref.index]
			C.vkCmdPushConstants(cb.h, c.layout.inner.h, C.VkShaderStageFlags(c.stages),
				C.uint32_t(c.offset), C.uint32_t(len(c.data)), unsafe.Pointer(&c.data[0]))
		case cmdCopyBufferToImage:
			cb.copyBufferToImage(&l.copies[ref.index])
		}
	}
	return checkResult(C.vkEndCommandBuffer(cb.h))
}

func vkRect2D(r Rect2D) C.VkRect2D {
	return C.VkRect2D{
		offset: C.VkOffset2D{x: C.int32_t(r.Offset.X), y: C.int32_t(r.Offset.Y)},
		extent: C.VkExtent2D{width: C.uint32_t(r.Extent.Width), height: C.uint32_t(r.Extent.Height)},
	}
}

func (cb CommandBuffer) beginRenderPass(c *beginPassCmd) {
	var mem carena
	defer mem.release()

	n := len(c.clears)
	var pClears *C.VkClearValue
	if n > 0 {
		pClears = (*C.VkClearValue)(mem.alloc(C.size_t(n) * C.sizeof_VkClearValue))
		cs := unsafe.Slice(pClears, n)
		for i, cv := range c.clears {
			if cv.HasDepth || cv.HasStencil {
				C.vkrtSetClearDepthStencil(&cs[i], C.float(cv.Depth), C.uint32_t(cv.Stencil))
			} else {
				C.vkrtSetClearColor(&cs[i], C.float(cv.Color[0]), C.float(cv.Color[1]),
					C.float(cv.Color[2]), C.float(cv.Color[3]))
			}
		}
	}
	ext := c.framebuffer.Info().Extent
	info := C.VkRenderPassBeginInfo{
		sType:       C.VK_STRUCTURE_TYPE_RENDER_PASS_BEGIN_INFO,
		renderPass:  c.pass.inner.h,
		framebuffer: c.framebuffer.inner.h,
		renderArea: C.VkRect2D{
			extent: C.VkExtent2D{width: C.uint32_t(ext.Width), height: C.uint32_t(ext.Height)},
		},
		clearValueCount: C.uint32_t(n),
		pClearValues:    pClears,
	}
	C.vkCmdBeginRenderPass(cb.h, &info, C.VK_SUBPASS_CONTENTS_INLINE)
}

func (cb CommandBuffer) bindDescriptorSets(c *bindSetsCmd) {
	sets := make([]C.VkDescriptorSet, len(c.sets))
	for i, s := range c.sets {
		sets[i] = s.h
	}
	var pOffsets *C.uint32_t
	if len(c.dynamicOffsets) > 0 {
		offs := make([]C.uint32_t, len(c.dynamicOffsets))
		for i, o := range c.dynamicOffsets {
			offs[i] = C.uint32_t(o)
		}
		pOffsets = &offs[0]
	}
	C.vkCmdBindDescriptorSets(cb.h, C.VkPipelineBindPoint(c.bindPoint), c.layout.inner.h,
		C.uint32_t(c.firstSet), C.uint32_t(len(sets)), &sets[0],
		C.uint32_t(len(c.dynamicOffsets)), pOffsets)
}

func (cb CommandBuffer) buildAccelerationStructures(builds []AccelerationStructureBuild) {
	var mem carena
	defer mem.release()

	n := len(builds)
	infos := make([]C.VkAccelerationStructureBuildGeometryInfoKHR, n)
	rangePtrs := make([]*C.VkAccelerationStructureBuildRangeInfoKHR, n)
	for i, b := range builds {
		ng := len(b.Geometries)
		geoms := (*C.VkAccelerationStructureGeometryKHR)(mem.alloc(C.size_t(ng) * C.sizeof_VkAccelerationStructureGeometryKHR))
		gs := unsafe.Slice(geoms, ng)
		ranges := (*C.VkAccelerationStructureBuildRangeInfoKHR)(mem.alloc(C.size_t(ng) * C.sizeof_VkAccelerationStructureBuildRangeInfoKHR))
		rs := unsafe.Slice(ranges, ng)
		for j, g := range b.Geometries {
			switch g.Kind {
			case GeometryTriangles:
				C.vkrtSetGeometryTriangles(&gs[j], C.VkGeometryFlagsKHR(g.Flags),
					C.VkFormat(g.VertexFormat), C.VkDeviceAddress(g.VertexData),
					C.VkDeviceSize(g.VertexStride), C.uint32_t(g.MaxVertex),
					C.VkIndexType(g.IndexType), C.VkDeviceAddress(g.IndexData), 0)
			case GeometryInstances:
				C.vkrtSetGeometryInstances(&gs[j], C.VkGeometryFlagsKHR(g.Flags),
					C.VkDeviceAddress(g.InstanceData))
			}
			rs[j] = C.VkAccelerationStructureBuildRangeInfoKHR{
				primitiveCount:  C.uint32_t(g.PrimitiveCount),
				primitiveOffset: C.uint32_t(g.PrimitiveOffset),
				firstVertex:     C.uint32_t(g.FirstVertex),
			}
		}
		infos[i] = C.VkAccelerationStructureBuildGeometryInfoKHR{
			sType:                    C.VK_STRUCTURE_TYPE_ACCELERATION_STRUCTURE_BUILD_GEOMETRY_INFO_KHR,
			_type:                    C.VkAccelerationStructureTypeKHR(b.Dst.Level()),
			flags:                    C.VkBuildAccelerationStructureFlagsKHR(b.Flags),
			mode:                     C.VK_BUILD_ACCELERATION_STRUCTURE_MODE_BUILD_KHR,
			dstAccelerationStructure: b.Dst.inner.h,
			geometryCount:            C.uint32_t(ng),
			pGeometries:              geoms,
		}
		infos[i].scratchData.deviceAddress = C.VkDeviceAddress(b.Scratch)
		rangePtrs[i] = ranges
	}
	C.vkrtCmdBuildAccelerationStructuresKHR(cb.h, C.uint32_t(n), &infos[0], &rangePtrs[0])
}

func (cb CommandBuffer) traceRays(c *traceCmd) {
	region := func(r *BufferRegion) C.VkStridedDeviceAddressRegionKHR {
		if r == nil {
			return C.VkStridedDeviceAddressRegionKHR{}
		}
		return C.VkStridedDeviceAddressRegionKHR{
			deviceAddress: C.VkDeviceAddress(r.Address()),
			stride:        C.VkDeviceSize(r.Stride),
			size:          C.VkDeviceSize(r.Size),
		}
	}
	raygen := region(c.sbt.Raygen)
	miss := region(c.sbt.Miss)
	hit := region(c.sbt.Hit)
	callable := region(c.sbt.Callable)
	C.vkrtCmdTraceRaysKHR(cb.h, &raygen, &miss, &hit, &callable,
		C.uint32_t(c.extent.Width), C.uint32_t(c.extent.Height), 1)
}

func (cb CommandBuffer) pipelineBarrier(c *barrierCmd) {
	memBarrier := C.VkMemoryBarrier{
		sType:         C.VK_STRUCTURE_TYPE_MEMORY_BARRIER,
		srcAccessMask: C.VkAccessFlags(c.srcAccess),
		dstAccessMask: C.VkAccessFlags(c.dstAccess),
	}
	var pImages *C.VkImageMemoryBarrier
	if n := len(c.images); n > 0 {
		imgs := make([]C.VkImageMemoryBarrier, n)
		for i, b := range c.images {
			imgs[i] = C.VkImageMemoryBarrier{
				sType:               C.VK_STRUCTURE_TYPE_IMAGE_MEMORY_BARRIER,
				srcAccessMask:       C.VkAccessFlags(b.SrcAccess),
				dstAccessMask:       C.VkAccessFlags(b.DstAccess),
				oldLayout:           C.VkImageLayout(b.OldLayout),
				newLayout:           C.VkImageLayout(b.NewLayout),
				srcQueueFamilyIndex: C.VK_QUEUE_FAMILY_IGNORED,
				dstQueueFamilyIndex: C.VK_QUEUE_FAMILY_IGNORED,
				image:               b.Image.inner.h,
				subresourceRange: C.VkImageSubresourceRange{
					aspectMask:     C.VkImageAspectFlags(b.Range.Aspect),
					baseMipLevel:   C.uint32_t(b.Range.BaseMipLevel),
					levelCount:     C.uint32_t(b.Range.LevelCount),
					baseArrayLayer: C.uint32_t(b.Range.BaseArrayLayer),
					layerCount:     C.uint32_t(b.Range.LayerCount),
				},
			}
		}
		pImages = &imgs[0]
	}
	C.vkCmdPipelineBarrier(cb.h,
		C.VkPipelineStageFlags(c.srcStage), C.VkPipelineStageFlags(c.dstStage), 0,
		1, &memBarrier, 0, nil,
		C.uint32_t(len(c.images)), pImages)
}

func (cb CommandBuffer) copyBufferToImage(c *copyBufferToImageCmd) {
	info := c.dst.Info()
	region := C.VkBufferImageCopy{
		imageSubresource: C.VkImageSubresourceLayers{
			aspectMask: C.VkImageAspectFlags(c.aspect),
			layerCount: C.uint32_t(info.ArrayLayers),
		},
		imageExtent: C.VkExtent3D{
			width:  C.uint32_t(info.Extent.Width),
			height: C.uint32_t(info.Extent.Height),
			depth:  1,
		},
	}
	C.vkCmdCopyBufferToImage(cb.h, c.src.inner.h, c.dst.inner.h,
		C.VkImageLayout(c.layout), 1, &region)
}
