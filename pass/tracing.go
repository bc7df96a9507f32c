package pass

import (
	"github.com/GoncaloFDS/tracer/camera"
	"github.com/GoncaloFDS/tracer/render"
)

// outputFormat is the path tracer's accumulation format; the tonemap
// pass resolves it to the presentable format.
const outputFormat = render.FormatR16G16B16A16Sfloat

// tracingSlot is one in-flight frame's worth of tracer state. Slots are
// only touched after their fence has been waited, so rebuilding the
// top-level structure in place is safe.
type tracingSlot struct {
	output render.Image
	view   render.ImageView
	camera render.Buffer
	set    render.DescriptorSet

	instances   render.Buffer
	tlasBacking render.Buffer
	scratch     render.Buffer
	tlas        render.AccelerationStructure
	capacity    uint32
}

// RayTracingPass traces the scene into a storage image. Each frame it
// rewrites its slot's instance buffer, rebuilds the slot's top-level
// acceleration structure on the device and dispatches rays over the full
// output extent.
type RayTracingPass struct {
	pipeline  render.RayTracingPipeline
	sbt       render.ShaderBindingTable
	setLayout render.DescriptorSetLayout
	extent    render.Extent2D
	slots     [frameSlots]tracingSlot
}

// NewRayTracingPass loads the ray-tracing shaders, builds the pipeline
// and its shader binding table and prepares one state slot per in-flight
// frame.
func NewRayTracingPass(ctx *Context, extent render.Extent2D) (*RayTracingPass, error) {
	dev := ctx.Device

	raygen, err := dev.LoadShader(ctx.ShaderDir, "raygen.spv", render.StageRaygen)
	if err != nil {
		return nil, err
	}
	miss, err := dev.LoadShader(ctx.ShaderDir, "miss.spv", render.StageMiss)
	if err != nil {
		return nil, err
	}
	hit, err := dev.LoadShader(ctx.ShaderDir, "closest_hit.spv", render.StageClosestHit)
	if err != nil {
		return nil, err
	}

	p := &RayTracingPass{}
	p.setLayout, err = dev.CreateDescriptorSetLayout(render.DescriptorSetLayoutInfo{
		Bindings: []render.DescriptorSetLayoutBinding{
			{Binding: 0, Type: render.DescriptorAccelerationStructure, Count: 1, Stages: render.StageRaygen},
			{Binding: 1, Type: render.DescriptorStorageImage, Count: 1, Stages: render.StageRaygen},
			{Binding: 2, Type: render.DescriptorUniformBuffer, Count: 1, Stages: render.StageRaygen | render.StageMiss | render.StageClosestHit},
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

	depth := uint32(2)
	if max := dev.Info().MaxRayRecursionDepth; depth > max {
		depth = max
	}
	hitIdx := uint32(2)
	p.pipeline, err = dev.CreateRayTracingPipeline(render.RayTracingPipelineInfo{
		Shaders: []render.Shader{raygen, miss, hit},
		Groups: []render.ShaderGroup{
			render.RaygenGroup(0),
			render.MissGroup(1),
			render.TriangleHitGroup(&hitIdx, nil),
		},
		MaxRecursionDepth: depth,
		Layout:            layout,
	})
	if err != nil {
		return nil, err
	}

	raygenGroup := uint32(0)
	p.sbt, err = dev.CreateShaderBindingTable(p.pipeline, render.ShaderBindingTableInfo{
		Raygen: &raygenGroup,
		Miss:   []uint32{1},
		Hit:    []uint32{2},
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
			Binding:        2,
			UniformBuffers: []render.BufferRegion{render.WholeBuffer(s.camera)},
		}})
	}
	if err := p.Resize(ctx, extent); err != nil {
		return nil, err
	}
	return p, nil
}

// Resize recreates the per-slot output images for a new extent. Callers
// must have drained in-flight frames first.
func (p *RayTracingPass) Resize(ctx *Context, extent render.Extent2D) error {
	dev := ctx.Device
	p.extent = extent
	for i := range p.slots {
		s := &p.slots[i]
		dev.DestroyImageView(s.view)
		dev.DestroyImage(s.output)

		var err error
		s.output, err = dev.CreateImage(render.ImageInfo{
			Extent: extent,
			Format: outputFormat,
			Usage:  render.ImageUsageStorage | render.ImageUsageSampled,
		})
		if err != nil {
			return err
		}
		s.view, err = dev.CreateImageView(render.NewImageViewInfo(s.output, render.AspectColor))
		if err != nil {
			return err
		}
		dev.UpdateDescriptorSets([]render.WriteDescriptorSet{{
			Set:     s.set,
			Binding: 1,
			StorageImages: []render.StorageImage{{
				View:   s.view,
				Layout: render.LayoutGeneral,
			}},
		}})
	}
	return nil
}

// ensureCapacity sizes the slot's top-level structure for at least n
// instances, recreating its buffers when it grows.
func (p *RayTracingPass) ensureCapacity(dev *render.Device, s *tracingSlot, n uint32) error {
	if n == 0 {
		n = 1
	}
	if s.tlas.Valid() && n <= s.capacity {
		return nil
	}

	dev.DestroyAccelerationStructure(s.tlas)
	dev.DestroyBuffer(s.scratch)
	dev.DestroyBuffer(s.tlasBacking)
	dev.DestroyBuffer(s.instances)
	s.capacity = 0

	sizes, err := dev.AccelerationStructureBuildSizes(render.LevelTop, render.BuildPreferFastBuild,
		[]render.GeometrySizeInfo{{
			Kind:          render.GeometryInstances,
			MaxPrimitives: n,
		}})
	if err != nil {
		return err
	}
	if s.instances, err = dev.CreateBuffer(render.BufferInfo{
		Size:  uint64(n) * render.InstanceSize,
		Usage: render.BufferUsageAccelBuildInput | render.BufferUsageDeviceAddress,
		Alloc: render.AllocHostAccess,
	}); err != nil {
		return err
	}
	if s.tlasBacking, err = dev.CreateBuffer(render.BufferInfo{
		Size:  sizes.AccelerationStructure,
		Usage: render.BufferUsageAccelStorage | render.BufferUsageDeviceAddress,
	}); err != nil {
		return err
	}
	if s.scratch, err = dev.CreateBuffer(render.BufferInfo{
		Size:  sizes.BuildScratch,
		Usage: render.BufferUsageStorage | render.BufferUsageDeviceAddress,
	}); err != nil {
		return err
	}
	if s.tlas, err = dev.CreateAccelerationStructure(render.AccelerationStructureInfo{
		Level:  render.LevelTop,
		Region: render.WholeBuffer(s.tlasBacking),
	}); err != nil {
		return err
	}
	s.capacity = n

	dev.UpdateDescriptorSets([]render.WriteDescriptorSet{{
		Set:                    s.set,
		Binding:                0,
		AccelerationStructures: []render.AccelerationStructure{s.tlas},
	}})
	return nil
}

// Record rebuilds the slot's top-level structure from instances and
// traces the frame, returning the view the tonemap pass samples. The
// returned view is in shader-read-only layout once the commands execute.
func (p *RayTracingPass) Record(ctx *Context, enc *render.Encoder, f Frame, instances []render.AccelerationStructureInstance) (render.ImageView, error) {
	dev := ctx.Device
	s := &p.slots[f.slot()]

	n := uint32(len(instances))
	if err := p.ensureCapacity(dev, s, n); err != nil {
		return render.ImageView{}, err
	}
	if n > 0 {
		dev.WriteBuffer(s.instances, 0, render.EncodeInstances(instances))
	}
	dev.WriteBuffer(s.camera, 0, f.Camera.Bytes())

	enc.BuildAccelerationStructures([]render.AccelerationStructureBuild{{
		Dst:   s.tlas,
		Flags: render.BuildPreferFastBuild,
		Geometries: []render.AccelerationStructureGeometry{{
			Kind:           render.GeometryInstances,
			InstanceData:   s.instances.Address(),
			PrimitiveCount: n,
		}},
		Scratch: s.scratch.Address(),
	}})

	// Build writes become visible to the trace, and the output image
	// moves to the layout the raygen shader stores to.
	enc.PipelineBarrier(render.StageAccelBuild, render.StageAccelBuild,
		render.AccessAccelWrite, render.AccessAccelRead, nil)
	enc.PipelineBarrier(render.StageAccelBuild, render.StageRayTracingShader,
		render.AccessAccelWrite, render.AccessAccelRead,
		[]render.ImageMemoryBarrier{
			render.InitializeImage(s.output, render.LayoutGeneral, render.AccessShaderWrite, render.AspectColor),
		})

	enc.BindRayTracingPipeline(p.pipeline)
	enc.BindDescriptorSets(render.BindRayTracing, p.pipeline.Layout(), 0,
		[]render.DescriptorSet{s.set}, nil)
	enc.TraceRays(p.sbt, p.extent)

	enc.PipelineBarrier(render.StageRayTracingShader, render.StageFragmentShader,
		render.AccessShaderWrite, render.AccessShaderRead,
		[]render.ImageMemoryBarrier{
			render.TransitionImage(s.output, render.LayoutGeneral, render.LayoutShaderReadOnly,
				render.AccessShaderWrite, render.AccessShaderRead, render.AspectColor),
		})
	return s.view, nil
}

// Destroy releases the per-slot device objects.
func (p *RayTracingPass) Destroy(ctx *Context) {
	dev := ctx.Device
	for i := range p.slots {
		s := &p.slots[i]
		dev.DestroyAccelerationStructure(s.tlas)
		dev.DestroyBuffer(s.scratch)
		dev.DestroyBuffer(s.tlasBacking)
		dev.DestroyBuffer(s.instances)
		dev.DestroyImageView(s.view)
		dev.DestroyImage(s.output)
		dev.DestroyBuffer(s.camera)
	}
}

// Extent returns the current output extent.
func (p *RayTracingPass) Extent() render.Extent2D { return p.extent }
