package pass

import "github.com/GoncaloFDS/tracer/render"

type tonemapSlot struct {
	set   render.DescriptorSet
	bound render.ImageView
}

// TonemapPass samples the tracer's output image and resolves it into the
// presentable target with a fullscreen triangle. The input descriptor is
// bound lazily per slot the first time that slot sees a given view.
type TonemapPass struct {
	pass      render.RenderPass
	pipeline  render.GraphicsPipeline
	setLayout render.DescriptorSetLayout
	sampler   render.Sampler
	fbs       *FramebufferCache
	slots     [frameSlots]tonemapSlot
}

// NewTonemapPass builds the pass for targets of the given format.
func NewTonemapPass(ctx *Context, targetFormat render.Format) (*TonemapPass, error) {
	dev := ctx.Device

	p := &TonemapPass{}
	var err error
	p.pass, err = dev.CreateRenderPass(render.RenderPassInfo{
		Attachments: []render.AttachmentInfo{{
			Format:        targetFormat,
			LoadOp:        render.LoadOpDontCare,
			StoreOp:       render.StoreOpStore,
			InitialLayout: render.LayoutUndefined,
			FinalLayout:   render.LayoutColorAttachment,
		}},
		Subpasses: []render.SubpassInfo{{ColorAttachments: []uint32{0}}},
	})
	if err != nil {
		return nil, err
	}

	p.setLayout, err = dev.CreateDescriptorSetLayout(render.DescriptorSetLayoutInfo{
		Bindings: []render.DescriptorSetLayoutBinding{
			{Binding: 0, Type: render.DescriptorCombinedImageSampler, Count: 1, Stages: render.StageFragment},
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

	vert, err := dev.LoadShader(ctx.ShaderDir, "tonemap.vert.spv", render.StageVertex)
	if err != nil {
		return nil, err
	}
	frag, err := dev.LoadShader(ctx.ShaderDir, "tonemap.frag.spv", render.StageFragment)
	if err != nil {
		return nil, err
	}
	p.pipeline, err = dev.CreateGraphicsPipeline(render.GraphicsPipelineInfo{
		Topology:     render.TopologyTriangleList,
		VertexShader: vert,
		Rasterizer: &render.Rasterizer{
			FrontFace:      render.FrontFaceCCW,
			CullMode:       render.CullNone,
			PolygonMode:    render.PolygonFill,
			FragmentShader: &frag,
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
	for i := range p.slots {
		p.slots[i].set, err = dev.CreateDescriptorSet(p.setLayout)
		if err != nil {
			return nil, err
		}
	}
	p.fbs, err = NewFramebufferCache(p.pass, nil)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Record draws the fullscreen resolve of input into the frame's target.
func (p *TonemapPass) Record(ctx *Context, enc *render.Encoder, f Frame, input render.ImageView) error {
	dev := ctx.Device
	s := &p.slots[f.slot()]
	if s.bound != input {
		dev.UpdateDescriptorSets([]render.WriteDescriptorSet{{
			Set:     s.set,
			Binding: 0,
			CombinedImageSamplers: []render.CombinedImageSampler{{
				Sampler: p.sampler,
				View:    input,
				Layout:  render.LayoutShaderReadOnly,
			}},
		}})
		s.bound = input
	}

	fb, err := p.fbs.Get(dev, f.Target, f.Counter)
	if err != nil {
		return err
	}
	ext := f.Target.Info().Extent

	enc.BeginRenderPass(p.pass, fb, []render.ClearValue{render.ClearColor(0, 0, 0, 1)})
	enc.SetViewport(render.Viewport{
		Width:    float32(ext.Width),
		Height:   float32(ext.Height),
		MaxDepth: 1,
	})
	enc.SetScissor(render.Rect2D{Extent: ext})
	enc.BindGraphicsPipeline(p.pipeline)
	enc.BindDescriptorSets(render.BindGraphics, p.pipeline.Layout(), 0,
		[]render.DescriptorSet{s.set}, nil)
	enc.Draw(render.Range{Start: 0, End: 3}, render.Range{Start: 0, End: 1})
	enc.EndRenderPass()
	return nil
}

// Invalidate drops cached framebuffers, for swapchain reconfigures.
func (p *TonemapPass) Invalidate() { p.fbs.Purge() }

// Collect runs deferred framebuffer destruction.
func (p *TonemapPass) Collect(ctx *Context, frame uint64) { p.fbs.Collect(ctx.Device, frame) }

// Destroy releases the framebuffer cache. Remaining objects fall to the
// device teardown sweep.
func (p *TonemapPass) Destroy(ctx *Context) { p.fbs.Destroy(ctx.Device) }
