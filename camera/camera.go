// Package camera provides the orbit camera and the uniform block the
// ray-generation and raster shaders read.
package camera

import (
	"encoding/binary"
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// UniformSize is the byte size of the packed uniform block.
const UniformSize = 4 * 64

// Uniform is the per-frame camera block: view and projection with their
// inverses, std140 layout (four column-major 4x4 matrices).
type Uniform struct {
	View        mgl32.Mat4
	Proj        mgl32.Mat4
	ViewInverse mgl32.Mat4
	ProjInverse mgl32.Mat4
}

// Bytes packs the block little endian for a uniform buffer write.
func (u Uniform) Bytes() []byte {
	out := make([]byte, 0, UniformSize)
	for _, m := range [4]mgl32.Mat4{u.View, u.Proj, u.ViewInverse, u.ProjInverse} {
		for _, f := range m {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(f))
		}
	}
	return out
}

// Orbit is a camera circling a target point. Angles are radians; the
// pitch is clamped short of the poles so the view basis never collapses.
type Orbit struct {
	Target   mgl32.Vec3
	Distance float32
	Yaw      float32
	Pitch    float32

	FOV  float32 // vertical, radians
	Near float32
	Far  float32

	MinDistance float32
	MaxDistance float32
}

// NewOrbit returns an orbit looking at the origin from a short distance.
func NewOrbit() *Orbit {
	return &Orbit{
		Distance:    3,
		Pitch:       0.3,
		FOV:         math32.Pi / 4,
		Near:        0.05,
		Far:         1000,
		MinDistance: 0.2,
		MaxDistance: 100,
	}
}

const pitchLimit = math32.Pi/2 - 0.01

// Rotate advances the yaw and pitch by the given deltas.
func (o *Orbit) Rotate(dYaw, dPitch float32) {
	o.Yaw = math32.Mod(o.Yaw+dYaw, 2*math32.Pi)
	o.Pitch += dPitch
	if o.Pitch > pitchLimit {
		o.Pitch = pitchLimit
	}
	if o.Pitch < -pitchLimit {
		o.Pitch = -pitchLimit
	}
}

// Zoom moves the camera along the view ray, clamped to the distance
// limits.
func (o *Orbit) Zoom(delta float32) {
	o.Distance -= delta
	if o.Distance < o.MinDistance {
		o.Distance = o.MinDistance
	}
	if o.Distance > o.MaxDistance {
		o.Distance = o.MaxDistance
	}
}

// Position returns the camera's world position.
func (o *Orbit) Position() mgl32.Vec3 {
	cp := math32.Cos(o.Pitch)
	dir := mgl32.Vec3{
		cp * math32.Sin(o.Yaw),
		math32.Sin(o.Pitch),
		cp * math32.Cos(o.Yaw),
	}
	return o.Target.Add(dir.Mul(o.Distance))
}

// Uniform builds the uniform block for the given aspect ratio.
func (o *Orbit) Uniform(aspect float32) Uniform {
	view := mgl32.LookAtV(o.Position(), o.Target, mgl32.Vec3{0, 1, 0})
	proj := mgl32.Perspective(o.FOV, aspect, o.Near, o.Far)
	// Flip Y to move from GL clip space conventions to Vulkan's.
	proj[5] *= -1
	return Uniform{
		View:        view,
		Proj:        proj,
		ViewInverse: view.Inv(),
		ProjInverse: proj.Inv(),
	}
}
