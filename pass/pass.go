// Package pass composes the renderer's frame out of fixed functional
// units: a path-tracing pass writing a storage image, a tonemap pass
// resolving it to the presentable target, an overlay pass on top, and a
// raster alternative. Passes record onto a shared encoder; the pipeline
// types own frame pacing and submission.
package pass

import (
	"github.com/GoncaloFDS/tracer/camera"
	"github.com/GoncaloFDS/tracer/render"
	"github.com/GoncaloFDS/tracer/ui"
)

// Context carries the device-side state every pass records against.
type Context struct {
	Device    *render.Device
	Queue     *render.Queue
	ShaderDir string
}

// Frame is the per-draw input shared by the pipelines.
type Frame struct {
	// Counter is the monotonically increasing draw index.
	Counter uint64
	// Target is the image the frame resolves into.
	Target render.Image
	// Camera is this frame's camera block.
	Camera camera.Uniform
	// Overlay is the UI draw list, may be nil.
	Overlay *ui.DrawData
}

// frameSlots is the number of CPU frames allowed in flight.
const frameSlots = 2

func (f Frame) slot() int { return int(f.Counter % frameSlots) }
