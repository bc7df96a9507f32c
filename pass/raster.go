package pass

import (
	"github.com/GoncaloFDS/tracer/camera"
	"github.com/GoncaloFDS/tracer/render"
)

const depthFormat = render.FormatD32Sfloat

// RasterDrawable is one mesh's device-resident streams for the raster
// path.
type RasterDrawable struct {
	Vertices   render.Buffer
	Indices    render.Buffer
	IndexType  render.IndexType
	IndexCount uint32
}

type rasterSlot struct {
	camera render.Buffer
	set    render.DescriptorSet
}

// RasterPass renders meshes with plain rasterization into one color and
// one depth attachment. It is the debug alternative to the path tracer.
type RasterPass struct {
	pass      render.RenderPass
	pipeline  render.GraphicsPipeline
	setLayout render.DescriptorSetLayout
	fbs       *FramebufferCache

	depthImage render.Image
	depthView  render.ImageView

	slots [frameSlots]rasterSlot
}

// NewRasterPass builds the pass for targets of the given format and
// extent.
func NewRasterPass(ctx *Context, targetFormat render.Format, extent render.Extent2D) (*RasterPass, error) {
	dev := ctx.Device

	p := &RasterPass{}
	var err error
	depthAtt := uint32(1)
	p.pass, err = dev.CreateRenderPass(render.RenderPassInfo{
		Attachments: []render.AttachmentInfo{
			{
				Format:        targetFormat,
				LoadOp:        render.LoadOpClear,
				StoreOp:       render.StoreOpStore,
				InitialLayout: render.LayoutUndefined,
				FinalLayout:   render.LayoutColorAttachment,
			},
			{
				Format:        depthFormat,
				LoadOp:        render.LoadOpClear,
				StoreOp:       render.StoreOpDontCare,
				InitialLayout: render.LayoutUndefined,
				FinalLayout:   render.LayoutDepthStencil,
			},
		},
		Subpasses: []render.SubpassInfo{{
			ColorAttachments: []uint32{0},
			DepthAttachment:  &depthAtt,
		}},
	})
	if err != nil {
		return nil, err
	}

	p.setLayout, err = dev.CreateDescriptorSetLayout(render.DescriptorSetLayoutInfo{
		Bindings: []render.DescriptorSetLayoutBinding{
			{Binding: 0, Type: render.DescriptorUniformBuffer, Count: 1, Stages: render.StageVertex},
		},
	})
	if err != nil {
		return nil, err
	}
	layout, err := dev.CreatePipelineLayout(render.PipelineLayoutInfo{
		SetLayouts: []render.DescriptorSetLayout{p.setLayout},
	})
	if err != nil {
		return nil, err
	}

	vert, err := dev.LoadShader(ctx.ShaderDir, "raster.vert.spv", render.StageVertex)
	if err != nil {
		return nil, err
	}
	frag, err := dev.LoadShader(ctx.ShaderDir, "raster.frag.spv", render.StageFragment)
	if err != nil {
		return nil, err
	}
	p.pipeline, err = dev.CreateGraphicsPipeline(render.GraphicsPipelineInfo{
		VertexBindings: []render.VertexBinding{{Binding: 0, Stride: 12}},
		VertexAttributes: []render.VertexAttribute{
			{Location: 0, Binding: 0, Format: render.FormatR32G32B32Sfloat, Offset: 0},
		},
		Topology:     render.TopologyTriangleList,
		VertexShader: vert,
		Rasterizer: &render.Rasterizer{
			FrontFace:      render.FrontFaceCCW,
			CullMode:       render.CullBack,
			PolygonMode:    render.PolygonFill,
			FragmentShader: &frag,
			DepthTest:      true,
			DepthWrite:     true,
		},
		Layout:     layout,
		RenderPass: p.pass,
	})
	if err != nil {
		return nil, err
	}

	for i := range p.slots {
		s := &p.slots[i]
		s.camera, err = dev.CreateBuffer(render.BufferInfo{
			Size:  camera.UniformSize,
			Usage: render.BufferUsageUniform,
			Alloc: render.AllocHostAccess,
		})
		if err != nil {
			return nil, err
		}
		s.set, err = dev.CreateDescriptorSet(p.setLayout)
		if err != nil {
			return nil, err
		}
		dev.UpdateDescriptorSets([]render.WriteDescriptorSet{{
			Set:            s.set,
			Binding:        0,
			UniformBuffers: []render.BufferRegion{render.WholeBuffer(s.camera)},
		}})
	}
	if err := p.Resize(ctx, extent); err != nil {
		return nil, err
	}
	return p, nil
}

// Resize recreates the depth attachment and rebuilds the framebuffer
// cache around its new view. Callers must have drained in-flight frames.
func (p *RasterPass) Resize(ctx *Context, extent render.Extent2D) error {
	dev := ctx.Device
	if p.fbs != nil {
		p.fbs.Destroy(dev)
	}
	dev.DestroyImageView(p.depthView)
	dev.DestroyImage(p.depthImage)

	var err error
	p.depthImage, err = dev.CreateImage(render.ImageInfo{
		Extent: extent,
		Format: depthFormat,
		Usage:  render.ImageUsageDepthStencil,
	})
	if err != nil {
		return err
	}
	p.depthView, err = dev.CreateImageView(render.NewImageViewInfo(p.depthImage, render.AspectDepth))
	if err != nil {
		return err
	}
	p.fbs, err = NewFramebufferCache(p.pass, &p.depthView)
	return err
}

// Record draws the drawables into the frame's target.
func (p *RasterPass) Record(ctx *Context, enc *render.Encoder, f Frame, drawables []RasterDrawable) error {
	dev := ctx.Device
	s := &p.slots[f.slot()]
	dev.WriteBuffer(s.camera, 0, f.Camera.Bytes())

	fb, err := p.fbs.Get(dev, f.Target, f.Counter)
	if err != nil {
		return err
	}
	ext := f.Target.Info().Extent

	enc.BeginRenderPass(p.pass, fb, []render.ClearValue{
		render.ClearColor(0.01, 0.01, 0.02, 1),
		render.ClearDepthStencil(1, 0),
	})
	enc.SetViewport(render.Viewport{
		Width:    float32(ext.Width),
		Height:   float32(ext.Height),
		MaxDepth: 1,
	})
	enc.SetScissor(render.Rect2D{Extent: ext})
	enc.BindGraphicsPipeline(p.pipeline)
	enc.BindDescriptorSets(render.BindGraphics, p.pipeline.Layout(), 0,
		[]render.DescriptorSet{s.set}, nil)
	for _, d := range drawables {
		enc.BindVertexBuffers(0, []render.VertexBufferBinding{{Buffer: d.Vertices}})
		enc.BindIndexBuffer(d.Indices, 0, d.IndexType)
		enc.DrawIndexed(render.Range{Start: 0, End: d.IndexCount}, 0, render.Range{Start: 0, End: 1})
	}
	enc.EndRenderPass()
	return nil
}

// Collect runs deferred framebuffer destruction.
func (p *RasterPass) Collect(ctx *Context, frame uint64) { p.fbs.Collect(ctx.Device, frame) }

// Destroy releases the depth attachment, per-slot buffers and the
// framebuffer cache.
func (p *RasterPass) Destroy(ctx *Context) {
	dev := ctx.Device
	for i := range p.slots {
		dev.DestroyBuffer(p.slots[i].camera)
	}
	p.fbs.Destroy(dev)
	dev.DestroyImageView(p.depthView)
	dev.DestroyImage(p.depthImage)
}
