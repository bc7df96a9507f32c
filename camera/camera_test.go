package camera

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniformBytes(t *testing.T) {
	u := Uniform{
		View:        mgl32.Ident4(),
		Proj:        mgl32.Ident4(),
		ViewInverse: mgl32.Ident4(),
		ProjInverse: mgl32.Ident4(),
	}
	b := u.Bytes()
	require.Len(t, b, UniformSize)

	// Each matrix starts with 1.0 on the diagonal of column 0.
	for m := 0; m < 4; m++ {
		f := math.Float32frombits(binary.LittleEndian.Uint32(b[m*64:]))
		assert.Equal(t, float32(1), f, "matrix %d element 0", m)
	}
}

func TestOrbitPitchClamp(t *testing.T) {
	o := NewOrbit()
	o.Rotate(0, 10)
	assert.Less(t, o.Pitch, math32.Pi/2)
	o.Rotate(0, -20)
	assert.Greater(t, o.Pitch, -math32.Pi/2)
}

func TestOrbitZoomClamp(t *testing.T) {
	o := NewOrbit()
	o.Zoom(1e6)
	assert.Equal(t, o.MinDistance, o.Distance)
	o.Zoom(-1e6)
	assert.Equal(t, o.MaxDistance, o.Distance)
}

func TestOrbitPosition(t *testing.T) {
	o := NewOrbit()
	o.Pitch = 0
	o.Yaw = 0
	o.Distance = 2
	p := o.Position()
	assert.InDelta(t, 0, p.X(), 1e-6)
	assert.InDelta(t, 0, p.Y(), 1e-6)
	assert.InDelta(t, 2, p.Z(), 1e-6)

	o.Yaw = math32.Pi / 2
	p = o.Position()
	assert.InDelta(t, 2, p.X(), 1e-6)
	assert.InDelta(t, 0, p.Z(), 1e-6)
}

func TestUniformInverses(t *testing.T) {
	o := NewOrbit()
	o.Rotate(1.1, 0.4)
	u := o.Uniform(16.0 / 9.0)

	round := u.View.Mul4(u.ViewInverse)
	ident := mgl32.Ident4()
	for i := range round {
		assert.InDelta(t, ident[i], round[i], 1e-4)
	}

	// Vulkan clip space points Y down.
	assert.Negative(t, u.Proj[5])
}
