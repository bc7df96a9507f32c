package render

// Encoder records typed commands into an in-memory list instead of a
// native command buffer. The list is replayed natively exactly once by
// Finish, so recording itself never touches the driver and stays cheap
// to test and reorder.

type cmdKind int

const (
	cmdBeginRenderPass cmdKind = iota
	cmdEndRenderPass
	cmdBindGraphicsPipeline
	cmdBindRayTracingPipeline
	cmdBindDescriptorSets
	cmdSetViewport
	cmdSetScissor
	cmdDraw
	cmdDrawIndexed
	cmdUpdateBuffer
	cmdBindVertexBuffers
	cmdBindIndexBuffer
	cmdBuildAccelerationStructures
	cmdTraceRays
	cmdPipelineBarrier
	cmdPushConstants
	cmdCopyBufferToImage
)

// cmdRef points into the typed array holding the command's payload.
type cmdRef struct {
	kind  cmdKind
	index int
}

type beginPassCmd struct {
	pass        RenderPass
	framebuffer Framebuffer
	clears      []ClearValue
}

type bindSetsCmd struct {
	bindPoint      BindPoint
	layout         PipelineLayout
	firstSet       uint32
	sets           []DescriptorSet
	dynamicOffsets []uint32
}

type drawCmd struct {
	vertices  Range
	instances Range
}

type drawIndexedCmd struct {
	indices      Range
	vertexOffset int32
	instances    Range
}

type updateBufferCmd struct {
	buffer Buffer
	offset uint64
	data   []byte
}

// VertexBufferBinding pairs a vertex buffer with its start offset.
type VertexBufferBinding struct {
	Buffer Buffer
	Offset uint64
}

type bindVertexCmd struct {
	firstBinding uint32
	bindings     []VertexBufferBinding
}

type bindIndexCmd struct {
	buffer Buffer
	offset uint64
	typ    IndexType
}

type traceCmd struct {
	sbt    ShaderBindingTable
	extent Extent2D
}

type barrierCmd struct {
	srcStage  PipelineStage
	dstStage  PipelineStage
	srcAccess Access
	dstAccess Access
	images    []ImageMemoryBarrier
}

type pushCmd struct {
	layout PipelineLayout
	stages ShaderStage
	offset uint32
	data   []byte
}

type copyBufferToImageCmd struct {
	src    Buffer
	dst    Image
	layout ImageLayout
	aspect ImageAspect
}

// cmdList is the recorded tape. Payloads live in per-kind arrays and
// refs preserves the recording order.
type cmdList struct {
	refs []cmdRef

	beginPass      []beginPassCmd
	bindGraphics   []GraphicsPipeline
	bindRayTracing []RayTracingPipeline
	bindSets       []bindSetsCmd
	viewports      []Viewport
	scissors       []Rect2D
	draws          []drawCmd
	drawsIndexed   []drawIndexedCmd
	updates        []updateBufferCmd
	bindVertex     []bindVertexCmd
	bindIndex      []bindIndexCmd
	builds         [][]AccelerationStructureBuild
	traces         []traceCmd
	barriers       []barrierCmd
	pushes         []pushCmd
	copies         []copyBufferToImageCmd
}

func (l *cmdList) push(kind cmdKind, index int) {
	l.refs = append(l.refs, cmdRef{kind: kind, index: index})
}

// Encoder records commands for a single native command buffer.
// It is not safe for concurrent use.
type Encoder struct {
	cb       CommandBuffer
	list     cmdList
	inPass   bool
	finished bool
}

func (e *Encoder) check() {
	if e.finished {
		panic("render: encoder already finished")
	}
}

// BeginRenderPass starts a render pass instance. clears must hold one
// value per attachment of the pass; a mismatch panics at record time.
func (e *Encoder) BeginRenderPass(rp RenderPass, fb Framebuffer, clears []ClearValue) {
	e.check()
	if e.inPass {
		panic("render: render pass already begun")
	}
	if len(clears) != rp.AttachmentCount() {
		panic("render: clear value count does not match render pass attachments")
	}
	e.inPass = true
	e.list.beginPass = append(e.list.beginPass, beginPassCmd{
		pass:        rp,
		framebuffer: fb,
		clears:      clears,
	})
	e.list.push(cmdBeginRenderPass, len(e.list.beginPass)-1)
}

// EndRenderPass ends the current render pass instance.
func (e *Encoder) EndRenderPass() {
	e.check()
	if !e.inPass {
		panic("render: no render pass to end")
	}
	e.inPass = false
	e.list.push(cmdEndRenderPass, 0)
}

// BindGraphicsPipeline binds a graphics pipeline.
func (e *Encoder) BindGraphicsPipeline(p GraphicsPipeline) {
	e.check()
	e.list.bindGraphics = append(e.list.bindGraphics, p)
	e.list.push(cmdBindGraphicsPipeline, len(e.list.bindGraphics)-1)
}

// BindRayTracingPipeline binds a ray tracing pipeline.
func (e *Encoder) BindRayTracingPipeline(p RayTracingPipeline) {
	e.check()
	e.list.bindRayTracing = append(e.list.bindRayTracing, p)
	e.list.push(cmdBindRayTracingPipeline, len(e.list.bindRayTracing)-1)
}

// BindDescriptorSets binds sets starting at firstSet.
func (e *Encoder) BindDescriptorSets(bindPoint BindPoint, layout PipelineLayout, firstSet uint32, sets []DescriptorSet, dynamicOffsets []uint32) {
	e.check()
	e.list.bindSets = append(e.list.bindSets, bindSetsCmd{
		bindPoint:      bindPoint,
		layout:         layout,
		firstSet:       firstSet,
		sets:           sets,
		dynamicOffsets: dynamicOffsets,
	})
	e.list.push(cmdBindDescriptorSets, len(e.list.bindSets)-1)
}

// SetViewport sets the dynamic viewport.
func (e *Encoder) SetViewport(v Viewport) {
	e.check()
	e.list.viewports = append(e.list.viewports, v)
	e.list.push(cmdSetViewport, len(e.list.viewports)-1)
}

// SetScissor sets the dynamic scissor rect.
func (e *Encoder) SetScissor(r Rect2D) {
	e.check()
	e.list.scissors = append(e.list.scissors, r)
	e.list.push(cmdSetScissor, len(e.list.scissors)-1)
}

// Draw draws a vertex range for an instance range.
func (e *Encoder) Draw(vertices, instances Range) {
	e.check()
	e.list.draws = append(e.list.draws, drawCmd{vertices: vertices, instances: instances})
	e.list.push(cmdDraw, len(e.list.draws)-1)
}

// DrawIndexed draws an index range for an instance range. vertexOffset
// is added to each index before vertex lookup.
func (e *Encoder) DrawIndexed(indices Range, vertexOffset int32, instances Range) {
	e.check()
	e.list.drawsIndexed = append(e.list.drawsIndexed, drawIndexedCmd{
		indices:      indices,
		vertexOffset: vertexOffset,
		instances:    instances,
	})
	e.list.push(cmdDrawIndexed, len(e.list.drawsIndexed)-1)
}

// UpdateBuffer writes data into buffer at offset from within the command
// stream. data is captured at record time.
func (e *Encoder) UpdateBuffer(buffer Buffer, offset uint64, data []byte) {
	e.check()
	cp := make([]byte, len(data))
	copy(cp, data)
	e.list.updates = append(e.list.updates, updateBufferCmd{
		buffer: buffer,
		offset: offset,
		data:   cp,
	})
	e.list.push(cmdUpdateBuffer, len(e.list.updates)-1)
}

// BindVertexBuffers binds vertex buffers starting at firstBinding.
func (e *Encoder) BindVertexBuffers(firstBinding uint32, bindings []VertexBufferBinding) {
	e.check()
	e.list.bindVertex = append(e.list.bindVertex, bindVertexCmd{
		firstBinding: firstBinding,
		bindings:     bindings,
	})
	e.list.push(cmdBindVertexBuffers, len(e.list.bindVertex)-1)
}

// BindIndexBuffer binds the index buffer.
func (e *Encoder) BindIndexBuffer(buffer Buffer, offset uint64, typ IndexType) {
	e.check()
	e.list.bindIndex = append(e.list.bindIndex, bindIndexCmd{
		buffer: buffer,
		offset: offset,
		typ:    typ,
	})
	e.list.push(cmdBindIndexBuffer, len(e.list.bindIndex)-1)
}

// BuildAccelerationStructures records one or more structure builds.
// Recording nothing is a no-op.
func (e *Encoder) BuildAccelerationStructures(builds []AccelerationStructureBuild) {
	e.check()
	if len(builds) == 0 {
		return
	}
	e.list.builds = append(e.list.builds, builds)
	e.list.push(cmdBuildAccelerationStructures, len(e.list.builds)-1)
}

// TraceRays launches the bound ray tracing pipeline over extent.
func (e *Encoder) TraceRays(sbt ShaderBindingTable, extent Extent2D) {
	e.check()
	e.list.traces = append(e.list.traces, traceCmd{sbt: sbt, extent: extent})
	e.list.push(cmdTraceRays, len(e.list.traces)-1)
}

// PipelineBarrier records a global memory barrier plus image layout
// transitions.
func (e *Encoder) PipelineBarrier(srcStage, dstStage PipelineStage, srcAccess, dstAccess Access, images []ImageMemoryBarrier) {
	e.check()
	e.list.barriers = append(e.list.barriers, barrierCmd{
		srcStage:  srcStage,
		dstStage:  dstStage,
		srcAccess: srcAccess,
		dstAccess: dstAccess,
		images:    images,
	})
	e.list.push(cmdPipelineBarrier, len(e.list.barriers)-1)
}

// PushConstants updates a push constant range. data is captured at
// record time.
func (e *Encoder) PushConstants(layout PipelineLayout, stages ShaderStage, offset uint32, data []byte) {
	e.check()
	cp := make([]byte, len(data))
	copy(cp, data)
	e.list.pushes = append(e.list.pushes, pushCmd{
		layout: layout,
		stages: stages,
		offset: offset,
		data:   cp,
	})
	e.list.push(cmdPushConstants, len(e.list.pushes)-1)
}

// CopyBufferToImage copies tightly packed texel data from src into every
// texel of dst, which must be in layout.
func (e *Encoder) CopyBufferToImage(src Buffer, dst Image, layout ImageLayout, aspect ImageAspect) {
	e.check()
	e.list.copies = append(e.list.copies, copyBufferToImageCmd{
		src:    src,
		dst:    dst,
		layout: layout,
		aspect: aspect,
	})
	e.list.push(cmdCopyBufferToImage, len(e.list.copies)-1)
}

// Finish replays the recorded commands into the native command buffer
// and returns it ready for submission. The encoder cannot be reused.
func (e *Encoder) Finish(dev *Device) (CommandBuffer, error) {
	e.check()
	if e.inPass {
		panic("render: render pass still open at finish")
	}
	e.finished = true
	if err := e.cb.record(dev, &e.list); err != nil {
		return CommandBuffer{}, err
	}
	return e.cb, nil
}
