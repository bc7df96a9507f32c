package pass

import (
	"github.com/GoncaloFDS/tracer/render"
	"github.com/GoncaloFDS/tracer/ui"
)

// Waiter blocks on fences; satisfied by render.Device.
type Waiter interface {
	WaitFences(fences []render.Fence, all bool) error
	ResetFences(fences []render.Fence) error
}

type frameSlot struct {
	fence     render.Fence
	cb        render.CommandBuffer
	hasCB     bool
	submitted bool
}

// framePacer bounds in-flight frames to the slot count. A slot is only
// handed out once the submission that last used it has signaled its
// fence; slots that never submitted skip the wait.
type framePacer struct {
	slots [frameSlots]frameSlot
}

func newFramePacer(dev *render.Device) (*framePacer, error) {
	p := &framePacer{}
	for i := range p.slots {
		f, err := dev.CreateFence(false)
		if err != nil {
			return nil, err
		}
		p.slots[i].fence = f
	}
	return p, nil
}

// acquire returns counter's slot, waiting out and resetting its previous
// submission first.
func (p *framePacer) acquire(w Waiter, counter uint64) (*frameSlot, error) {
	s := &p.slots[counter%frameSlots]
	if s.submitted {
		if err := w.WaitFences([]render.Fence{s.fence}, true); err != nil {
			return nil, err
		}
		if err := w.ResetFences([]render.Fence{s.fence}); err != nil {
			return nil, err
		}
		s.submitted = false
	}
	return s, nil
}

func (p *framePacer) destroy(dev *render.Device, q *render.Queue) {
	for i := range p.slots {
		if p.slots[i].hasCB {
			q.Free(p.slots[i].cb)
		}
		dev.DestroyFence(p.slots[i].fence)
	}
}

// PathTracingPipeline composes the per-frame work: top-level build and
// trace, tonemap resolve, overlay, one submission. The tracer's output
// feeds the tonemap pass directly; barriers inside the submission order
// the two, so no semaphore sits between them. The swapchain image's own
// semaphore pair bounds the whole chain.
type PathTracingPipeline struct {
	tracer  *RayTracingPass
	tonemap *TonemapPass
	overlay *UIPass
	pacer   *framePacer
}

// NewPathTracingPipeline builds the three passes for the given target
// format and extent.
func NewPathTracingPipeline(ctx *Context, targetFormat render.Format, extent render.Extent2D) (*PathTracingPipeline, error) {
	tracer, err := NewRayTracingPass(ctx, extent)
	if err != nil {
		return nil, err
	}
	tonemap, err := NewTonemapPass(ctx, targetFormat)
	if err != nil {
		return nil, err
	}
	overlay, err := NewUIPass(ctx, targetFormat)
	if err != nil {
		return nil, err
	}
	pacer, err := newFramePacer(ctx.Device)
	if err != nil {
		return nil, err
	}
	return &PathTracingPipeline{
		tracer:  tracer,
		tonemap: tonemap,
		overlay: overlay,
		pacer:   pacer,
	}, nil
}

// Draw records and submits one frame into the acquired swapchain image.
func (p *PathTracingPipeline) Draw(ctx *Context, f Frame, img *render.SwapchainImage, instances []render.AccelerationStructureInstance, atlas *ui.FontAtlas) error {
	slot, err := p.pacer.acquire(ctx.Device, f.Counter)
	if err != nil {
		return err
	}
	if slot.hasCB {
		ctx.Queue.Free(slot.cb)
		slot.hasCB = false
	}

	enc, err := ctx.Queue.CreateEncoder()
	if err != nil {
		return err
	}
	traced, err := p.tracer.Record(ctx, enc, f, instances)
	if err != nil {
		return err
	}
	if err := p.tonemap.Record(ctx, enc, f, traced); err != nil {
		return err
	}
	if err := p.overlay.Record(ctx, enc, f, atlas); err != nil {
		return err
	}
	cb, err := enc.Finish(ctx.Device)
	if err != nil {
		return err
	}

	err = ctx.Queue.Submit(cb,
		[]render.WaitSemaphore{{Semaphore: img.Wait(), Stages: render.StageColorOutput}},
		[]render.Semaphore{img.Signal()},
		slot.fence,
	)
	if err != nil {
		return err
	}
	slot.cb, slot.hasCB, slot.submitted = cb, true, true

	p.tonemap.Collect(ctx, f.Counter)
	p.overlay.Collect(ctx, f.Counter)
	return nil
}

// Resize adapts the passes to a new target extent. The caller must have
// idled the device.
func (p *PathTracingPipeline) Resize(ctx *Context, extent render.Extent2D) error {
	p.tonemap.Invalidate()
	p.overlay.Invalidate()
	return p.tracer.Resize(ctx, extent)
}

// Destroy drains and releases the pipeline.
func (p *PathTracingPipeline) Destroy(ctx *Context) {
	p.pacer.destroy(ctx.Device, ctx.Queue)
	p.overlay.Destroy(ctx)
	p.tonemap.Destroy(ctx)
	p.tracer.Destroy(ctx)
}

// RasterPipeline is the raster debug composition: mesh rasterization
// plus the overlay, paced the same way as the path tracer.
type RasterPipeline struct {
	raster  *RasterPass
	overlay *UIPass
	pacer   *framePacer
}

// NewRasterPipeline builds the raster composition.
func NewRasterPipeline(ctx *Context, targetFormat render.Format, extent render.Extent2D) (*RasterPipeline, error) {
	raster, err := NewRasterPass(ctx, targetFormat, extent)
	if err != nil {
		return nil, err
	}
	overlay, err := NewUIPass(ctx, targetFormat)
	if err != nil {
		return nil, err
	}
	pacer, err := newFramePacer(ctx.Device)
	if err != nil {
		return nil, err
	}
	return &RasterPipeline{raster: raster, overlay: overlay, pacer: pacer}, nil
}

// Draw records and submits one raster frame.
func (p *RasterPipeline) Draw(ctx *Context, f Frame, img *render.SwapchainImage, drawables []RasterDrawable, atlas *ui.FontAtlas) error {
	slot, err := p.pacer.acquire(ctx.Device, f.Counter)
	if err != nil {
		return err
	}
	if slot.hasCB {
		ctx.Queue.Free(slot.cb)
		slot.hasCB = false
	}

	enc, err := ctx.Queue.CreateEncoder()
	if err != nil {
		return err
	}
	if err := p.raster.Record(ctx, enc, f, drawables); err != nil {
		return err
	}
	if err := p.overlay.Record(ctx, enc, f, atlas); err != nil {
		return err
	}
	cb, err := enc.Finish(ctx.Device)
	if err != nil {
		return err
	}

	err = ctx.Queue.Submit(cb,
		[]render.WaitSemaphore{{Semaphore: img.Wait(), Stages: render.StageColorOutput}},
		[]render.Semaphore{img.Signal()},
		slot.fence,
	)
	if err != nil {
		return err
	}
	slot.cb, slot.hasCB, slot.submitted = cb, true, true

	p.raster.Collect(ctx, f.Counter)
	p.overlay.Collect(ctx, f.Counter)
	return nil
}

// Resize adapts the passes to a new target extent. The caller must have
// idled the device.
func (p *RasterPipeline) Resize(ctx *Context, extent render.Extent2D) error {
	p.overlay.Invalidate()
	return p.raster.Resize(ctx, extent)
}

// Destroy drains and releases the pipeline.
func (p *RasterPipeline) Destroy(ctx *Context) {
	p.pacer.destroy(ctx.Device, ctx.Queue)
	p.overlay.Destroy(ctx)
	p.raster.Destroy(ctx)
}
