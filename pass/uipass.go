package pass

import (
	"encoding/binary"
	"math"

	"github.com/GoncaloFDS/tracer/render"
	"github.com/GoncaloFDS/tracer/ui"
)

type uiSlot struct {
	vertices  render.Buffer
	indices   render.Buffer
	vertexCap uint64
	indexCap  uint64
}

// UIPass draws the overlay on top of the tonemapped frame and moves the
// target to the present layout. Vertex and index data stream through a
// double-buffered pair of host-visible buffers; the font texture is
// re-uploaded whenever the atlas version moves past the bound one.
type UIPass struct {
	pass      render.RenderPass
	pipeline  render.GraphicsPipeline
	setLayout render.DescriptorSetLayout
	set       render.DescriptorSet
	sampler   render.Sampler
	fbs       *FramebufferCache

	fontImage    render.Image
	fontView     render.ImageView
	boundVersion uint64

	slots [frameSlots]uiSlot
}

// NewUIPass builds the overlay pass for targets of the given format.
func NewUIPass(ctx *Context, targetFormat render.Format) (*UIPass, error) {
	dev := ctx.Device

	p := &UIPass{}
	var err error
	p.pass, err = dev.CreateRenderPass(render.RenderPassInfo{
		Attachments: []render.AttachmentInfo{{
			Format:        targetFormat,
			LoadOp:        render.LoadOpLoad,
			StoreOp:       render.StoreOpStore,
			InitialLayout: render.LayoutColorAttachment,
			FinalLayout:   render.LayoutPresent,
		}},
		Subpasses: []render.SubpassInfo{{ColorAttachments: []uint32{0}}},
	})
	if err != nil {
		return nil, err
	}

	// Update-after-bind lets the font descriptor change while earlier
	// frames still reference the set.
	p.setLayout, err = dev.CreateDescriptorSetLayout(render.DescriptorSetLayoutInfo{
		Bindings: []render.DescriptorSetLayoutBinding{
			{Binding: 0, Type: render.DescriptorCombinedImageSampler, Count: 1, Stages: render.StageFragment},
		},
		UpdateAfterBind: true,
	})
	if err != nil {
		return nil, err
	}
	layout, err := dev.CreatePipelineLayout(render.PipelineLayoutInfo{
		SetLayouts: []render.DescriptorSetLayout{p.setLayout},
		PushConstants: []render.PushConstantRange{
			{Stages: render.StageVertex, Offset: 0, Size: 8},
		},
	})
	if err != nil {
		return nil, err
	}

	vert, err := dev.LoadShader(ctx.ShaderDir, "ui.vert.spv", render.StageVertex)
	if err != nil {
		return nil, err
	}
	frag, err := dev.LoadShader(ctx.ShaderDir, "ui.frag.spv", render.StageFragment)
	if err != nil {
		return nil, err
	}
	p.pipeline, err = dev.CreateGraphicsPipeline(render.GraphicsPipelineInfo{
		VertexBindings: []render.VertexBinding{{Binding: 0, Stride: ui.VertexSize}},
		VertexAttributes: []render.VertexAttribute{
			{Location: 0, Binding: 0, Format: render.FormatR32G32Sfloat, Offset: 0},
			{Location: 1, Binding: 0, Format: render.FormatR32G32Sfloat, Offset: 8},
			{Location: 2, Binding: 0, Format: render.FormatR8G8B8A8Unorm, Offset: 16},
		},
		Topology:     render.TopologyTriangleList,
		VertexShader: vert,
		Rasterizer: &render.Rasterizer{
			FrontFace:      render.FrontFaceCCW,
			CullMode:       render.CullNone,
			PolygonMode:    render.PolygonFill,
			FragmentShader: &frag,
			AlphaBlend:     true,
		},
		Layout:     layout,
		RenderPass: p.pass,
	})
	if err != nil {
		return nil, err
	}

	p.sampler, err = dev.CreateSampler(render.SamplerInfo{
		MagFilter:   render.FilterLinear,
		MinFilter:   render.FilterLinear,
		AddressMode: render.AddressClampToEdge,
	})
	if err != nil {
		return nil, err
	}
	p.set, err = dev.CreateDescriptorSet(p.setLayout)
	if err != nil {
		return nil, err
	}
	p.fbs, err = NewFramebufferCache(p.pass, nil)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// bindFont re-uploads the atlas texture when its version moved past the
// bound one.
func (p *UIPass) bindFont(ctx *Context, atlas *ui.FontAtlas) error {
	if atlas == nil || atlas.Version() == p.boundVersion {
		return nil
	}
	dev := ctx.Device
	if p.fontImage.Valid() {
		// Rebuilds are rare; draining the queue keeps the old texture's
		// teardown trivial.
		if err := ctx.Queue.WaitIdle(); err != nil {
			return err
		}
		dev.DestroyImageView(p.fontView)
		dev.DestroyImage(p.fontImage)
	}

	var err error
	p.fontImage, err = dev.CreateImageWithData(ctx.Queue, render.ImageInfo{
		Extent: atlas.Extent(),
		Format: render.FormatR8G8B8A8Unorm,
		Usage:  render.ImageUsageSampled,
	}, atlas.RGBA(), render.LayoutShaderReadOnly, render.AccessShaderRead)
	if err != nil {
		return err
	}
	p.fontView, err = dev.CreateImageView(render.NewImageViewInfo(p.fontImage, render.AspectColor))
	if err != nil {
		return err
	}
	dev.UpdateDescriptorSets([]render.WriteDescriptorSet{{
		Set:     p.set,
		Binding: 0,
		CombinedImageSamplers: []render.CombinedImageSampler{{
			Sampler: p.sampler,
			View:    p.fontView,
			Layout:  render.LayoutShaderReadOnly,
		}},
	}})
	p.boundVersion = atlas.Version()
	return nil
}

// ensureStreams grows the slot's vertex and index buffers to fit the
// frame's draw data.
func (p *UIPass) ensureStreams(dev *render.Device, s *uiSlot, vbytes, ibytes uint64) error {
	if vbytes > s.vertexCap {
		dev.DestroyBuffer(s.vertices)
		size := growth(vbytes)
		b, err := dev.CreateBuffer(render.BufferInfo{
			Size:  size,
			Usage: render.BufferUsageVertex,
			Alloc: render.AllocHostAccess,
		})
		if err != nil {
			return err
		}
		s.vertices, s.vertexCap = b, size
	}
	if ibytes > s.indexCap {
		dev.DestroyBuffer(s.indices)
		size := growth(ibytes)
		b, err := dev.CreateBuffer(render.BufferInfo{
			Size:  size,
			Usage: render.BufferUsageIndex,
			Alloc: render.AllocHostAccess,
		})
		if err != nil {
			return err
		}
		s.indices, s.indexCap = b, size
	}
	return nil
}

// growth rounds a byte size up with headroom so stream buffers are not
// recreated every time the overlay gains a quad.
func growth(n uint64) uint64 {
	const min = 4 << 10
	c := uint64(min)
	for c < n {
		c *= 2
	}
	return c
}

// Record draws the overlay into the frame's target and transitions it
// for presentation. A nil or empty overlay still runs the pass so the
// layout transition happens.
func (p *UIPass) Record(ctx *Context, enc *render.Encoder, f Frame, atlas *ui.FontAtlas) error {
	dev := ctx.Device
	if err := p.bindFont(ctx, atlas); err != nil {
		return err
	}

	fb, err := p.fbs.Get(dev, f.Target, f.Counter)
	if err != nil {
		return err
	}
	ext := f.Target.Info().Extent

	var dd *ui.DrawData
	if f.Overlay != nil && len(f.Overlay.Meshes) > 0 {
		dd = f.Overlay
	}
	s := &p.slots[f.slot()]
	if dd != nil {
		vb := dd.EncodeVertices()
		ib := dd.EncodeIndices()
		if err := p.ensureStreams(dev, s, uint64(len(vb)), uint64(len(ib))); err != nil {
			return err
		}
		dev.WriteBuffer(s.vertices, 0, vb)
		dev.WriteBuffer(s.indices, 0, ib)
	}

	enc.BeginRenderPass(p.pass, fb, []render.ClearValue{render.ClearColor(0, 0, 0, 1)})
	if dd != nil && p.fontView.Valid() {
		enc.SetViewport(render.Viewport{
			Width:    float32(ext.Width),
			Height:   float32(ext.Height),
			MaxDepth: 1,
		})
		enc.BindGraphicsPipeline(p.pipeline)
		enc.BindDescriptorSets(render.BindGraphics, p.pipeline.Layout(), 0,
			[]render.DescriptorSet{p.set}, nil)

		screen := make([]byte, 0, 8)
		screen = binary.LittleEndian.AppendUint32(screen, math.Float32bits(float32(ext.Width)))
		screen = binary.LittleEndian.AppendUint32(screen, math.Float32bits(float32(ext.Height)))
		enc.PushConstants(p.pipeline.Layout(), render.StageVertex, 0, screen)

		enc.BindVertexBuffers(0, []render.VertexBufferBinding{{Buffer: s.vertices}})
		enc.BindIndexBuffer(s.indices, 0, render.IndexUint32)

		firstIndex := uint32(0)
		vertexOffset := int32(0)
		for i := range dd.Meshes {
			m := &dd.Meshes[i]
			clip := m.ClipRect
			if clip.Extent.Width == 0 || clip.Extent.Height == 0 {
				clip = render.Rect2D{Extent: ext}
			}
			enc.SetScissor(clip)
			n := uint32(len(m.Indices))
			enc.DrawIndexed(
				render.Range{Start: firstIndex, End: firstIndex + n},
				vertexOffset,
				render.Range{Start: 0, End: 1},
			)
			firstIndex += n
			vertexOffset += int32(len(m.Vertices))
		}
	}
	enc.EndRenderPass()
	return nil
}

// Invalidate drops cached framebuffers, for swapchain reconfigures.
func (p *UIPass) Invalidate() { p.fbs.Purge() }

// Collect runs deferred framebuffer destruction.
func (p *UIPass) Collect(ctx *Context, frame uint64) { p.fbs.Collect(ctx.Device, frame) }

// Destroy releases the streams, the font texture and the framebuffer
// cache.
func (p *UIPass) Destroy(ctx *Context) {
	dev := ctx.Device
	for i := range p.slots {
		dev.DestroyBuffer(p.slots[i].vertices)
		dev.DestroyBuffer(p.slots[i].indices)
	}
	dev.DestroyImageView(p.fontView)
	dev.DestroyImage(p.fontImage)
	p.fbs.Destroy(dev)
}
