// Package renderer is the host-facing surface of the tracer: it owns the
// device, the swapchain and the path-tracing pipeline, keeps the registry
// of built bottom-level structures, and turns one Draw call into one
// presented frame.
package renderer

import (
	"errors"
	"fmt"
	"log"

	"github.com/GoncaloFDS/tracer/camera"
	"github.com/GoncaloFDS/tracer/mesh"
	"github.com/GoncaloFDS/tracer/pass"
	"github.com/GoncaloFDS/tracer/render"
	"github.com/GoncaloFDS/tracer/ui"
)

// Config selects startup options.
type Config struct {
	// AppName is reported to the driver.
	AppName string
	// ShaderDir overrides the shader directory, default assets/shaders.
	ShaderDir string
	// Validation enables the validation layer and the debug messenger.
	Validation bool
	// FontSize is the overlay font pixel size, default 14.
	FontSize float32
}

// Window is the narrow contract the host's windowing layer fulfills.
type Window interface {
	// GetRequiredInstanceExtensions names the instance extensions the
	// window system needs for surface creation.
	GetRequiredInstanceExtensions() []string
	// CreateSurface creates a native surface on the instance and returns
	// its raw handle.
	CreateSurface(instance uintptr) (uintptr, error)
}

// MeshHandle identifies one loaded mesh in the scene registry.
type MeshHandle uint64

// Renderer is the top-level orchestrator.
type Renderer struct {
	instance *render.Instance
	surface  render.Surface
	phys     *render.PhysicalDevice
	dev      *render.Device
	queue    *render.Queue
	ctx      *pass.Context
	swap     *render.Swapchain
	pipeline *pass.PathTracingPipeline
	atlas    *ui.FontAtlas

	blas       map[MeshHandle]*mesh.BLAS
	transforms map[MeshHandle][3][4]float32
	order      []MeshHandle

	frame uint64
}

// New brings up the device and the frame pipeline on the host's window.
func New(cfg Config, win Window) (*Renderer, error) {
	if cfg.ShaderDir == "" {
		cfg.ShaderDir = "assets/shaders"
	}
	if cfg.FontSize == 0 {
		cfg.FontSize = 14
	}

	in, err := render.NewInstance(render.InstanceConfig{
		AppName:    cfg.AppName,
		Extensions: win.GetRequiredInstanceExtensions(),
		Validation: cfg.Validation,
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: create instance: %w", err)
	}
	r := &Renderer{
		instance:   in,
		blas:       make(map[MeshHandle]*mesh.BLAS),
		transforms: make(map[MeshHandle][3][4]float32),
	}
	fail := func(err error) (*Renderer, error) {
		r.Destroy()
		return nil, err
	}

	raw, err := win.CreateSurface(in.Handle())
	if err != nil {
		return fail(fmt.Errorf("renderer: create surface: %w", err))
	}
	r.surface = render.SurfaceFromRaw(raw)

	if r.phys, err = render.SelectPhysicalDevice(in, r.surface); err != nil {
		return fail(fmt.Errorf("renderer: select device: %w", err))
	}
	log.Printf("renderer: using %s", r.phys.Info().Name)

	if r.dev, r.queue, err = r.phys.CreateDevice(); err != nil {
		return fail(fmt.Errorf("renderer: create device: %w", err))
	}
	r.ctx = &pass.Context{Device: r.dev, Queue: r.queue, ShaderDir: cfg.ShaderDir}

	r.swap = render.NewSwapchain(r.surface)
	if err := r.swap.Configure(r.dev); err != nil {
		return fail(fmt.Errorf("renderer: configure swapchain: %w", err))
	}
	extent := r.swap.Extent()
	if extent.Width == 0 || extent.Height == 0 {
		// Minimized at startup; size the passes for something sane and
		// let the first acquire reconfigure.
		extent = render.Extent2D{Width: 1280, Height: 720}
	}
	if r.pipeline, err = pass.NewPathTracingPipeline(r.ctx, r.phys.Info().SurfaceFormat, extent); err != nil {
		return fail(fmt.Errorf("renderer: build pipeline: %w", err))
	}
	if r.atlas, err = ui.NewFontAtlas(cfg.FontSize); err != nil {
		return fail(err)
	}
	return r, nil
}

// LoadMesh synchronously builds the mesh's bottom-level structure and
// registers it under handle, replacing any previous build.
func (r *Renderer) LoadMesh(handle MeshHandle, m *mesh.Mesh) error {
	b, err := mesh.BuildBLAS(r.dev, r.queue, m)
	if err != nil {
		return err
	}
	if old, ok := r.blas[handle]; ok {
		// The old structure may back an in-flight top-level build.
		if err := r.dev.WaitIdle(); err != nil {
			b.Destroy(r.dev)
			return err
		}
		old.Destroy(r.dev)
	} else {
		r.order = append(r.order, handle)
	}
	r.blas[handle] = b
	return nil
}

// SetTransform places the mesh's instance in the world. Meshes without
// a set transform are placed at the origin.
func (r *Renderer) SetTransform(handle MeshHandle, t [3][4]float32) {
	r.transforms[handle] = t
}

// instances assembles this frame's top-level instance list, one placed
// instance per registered mesh, in load order.
func (r *Renderer) instances() []render.AccelerationStructureInstance {
	out := make([]render.AccelerationStructureInstance, 0, len(r.order))
	for i, h := range r.order {
		b, ok := r.blas[h]
		if !ok {
			continue
		}
		xf, ok := r.transforms[h]
		if !ok {
			xf = render.IdentityTransform
		}
		out = append(out, render.AccelerationStructureInstance{
			Transform:   xf,
			CustomIndex: uint32(i),
			Mask:        0xff,
			Reference:   b.Address(),
		})
	}
	return out
}

// reconfigure drains the device, rebuilds the swapchain and resizes the
// pipeline to the new extent.
func (r *Renderer) reconfigure() error {
	if err := r.dev.WaitIdle(); err != nil {
		return err
	}
	if err := r.swap.Configure(r.dev); err != nil {
		return err
	}
	ext := r.swap.Extent()
	if ext.Width == 0 || ext.Height == 0 {
		return nil
	}
	return r.pipeline.Resize(r.ctx, ext)
}

// acquireAttempts bounds the acquire/reconfigure retry loop.
const acquireAttempts = 3

// Draw renders and presents one frame. A minimized surface is a quiet
// no-op; an out-of-date swapchain reconfigures and retries.
func (r *Renderer) Draw(cam camera.Uniform, overlay *ui.DrawData) error {
	var img *render.SwapchainImage
	for attempt := 0; ; attempt++ {
		var err error
		img, err = r.swap.AcquireImage(r.dev)
		if err == nil && img != nil {
			break
		}
		if err != nil && !errors.Is(err, render.ErrOutOfDate) {
			return err
		}
		if attempt+1 >= acquireAttempts {
			if err != nil {
				return err
			}
			return nil
		}
		if err := r.reconfigure(); err != nil {
			return err
		}
		if r.swap.Extent().Width == 0 || r.swap.Extent().Height == 0 {
			return nil
		}
	}

	r.frame++
	f := pass.Frame{
		Counter: r.frame,
		Target:  img.Image(),
		Camera:  cam,
		Overlay: overlay,
	}
	if err := r.pipeline.Draw(r.ctx, f, img, r.instances(), r.atlas); err != nil {
		return err
	}
	if err := r.queue.Present(img); err != nil {
		if errors.Is(err, render.ErrOutOfDate) {
			return r.reconfigure()
		}
		return err
	}
	r.swap.CollectRetired(r.dev)
	return nil
}

// Resize tells the renderer the surface changed size. The next frame
// rebuilds the swapchain.
func (r *Renderer) Resize() error {
	return r.reconfigure()
}

// Extent returns the current presentable extent, zero while minimized.
func (r *Renderer) Extent() render.Extent2D {
	return r.swap.Extent()
}

// Atlas returns the overlay font atlas for draw-data building.
func (r *Renderer) Atlas() *ui.FontAtlas { return r.atlas }

// Destroy tears everything down in dependency order. Safe on a
// partially constructed renderer.
func (r *Renderer) Destroy() {
	if r.dev != nil {
		if err := r.dev.WaitIdle(); err != nil {
			log.Printf("[!] renderer: wait before teardown: %v", err)
		}
	}
	if r.pipeline != nil {
		r.pipeline.Destroy(r.ctx)
		r.pipeline = nil
	}
	for _, b := range r.blas {
		b.Destroy(r.dev)
	}
	r.blas = nil
	if r.swap != nil {
		r.swap.Destroy(r.dev)
		r.swap = nil
	}
	if r.queue != nil {
		r.queue.Destroy()
		r.queue = nil
	}
	if r.dev != nil {
		r.dev.Cleanup()
		r.dev = nil
	}
	if r.instance != nil {
		r.instance.DestroySurface(r.surface)
		r.instance.Destroy()
		r.instance = nil
	}
}
