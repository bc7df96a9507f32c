package render

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestEncodeInstances(t *testing.T) {
	in := AccelerationStructureInstance{
		Transform:   IdentityTransform,
		CustomIndex: 0x123456,
		Mask:        0xff,
		SBTOffset:   2,
		Flags:       InstanceTriangleFacingCullDisable,
		Reference:   DeviceAddress(0xdeadbeefcafe),
	}
	out := EncodeInstances([]AccelerationStructureInstance{in})
	if len(out) != InstanceSize {
		t.Fatalf("encoded size:\nhave %d\nwant %d", len(out), InstanceSize)
	}

	// Row-major 3x4 transform occupies the first 48 bytes.
	for r := 0; r < 3; r++ {
		for c := 0; c < 4; c++ {
			bits := binary.LittleEndian.Uint32(out[(r*4+c)*4:])
			if have := math.Float32frombits(bits); have != IdentityTransform[r][c] {
				t.Fatalf("transform[%d][%d]:\nhave %v\nwant %v", r, c, have, IdentityTransform[r][c])
			}
		}
	}

	w0 := binary.LittleEndian.Uint32(out[48:])
	if have := w0 & 0xffffff; have != 0x123456 {
		t.Fatalf("custom index:\nhave %#x\nwant 0x123456", have)
	}
	if have := w0 >> 24; have != 0xff {
		t.Fatalf("mask:\nhave %#x\nwant 0xff", have)
	}
	w1 := binary.LittleEndian.Uint32(out[52:])
	if have := w1 & 0xffffff; have != 2 {
		t.Fatalf("sbt offset:\nhave %d\nwant 2", have)
	}
	if have := w1 >> 24; have != uint32(InstanceTriangleFacingCullDisable) {
		t.Fatalf("flags:\nhave %#x\nwant %#x", have, uint32(InstanceTriangleFacingCullDisable))
	}
	if have := binary.LittleEndian.Uint64(out[56:]); have != 0xdeadbeefcafe {
		t.Fatalf("reference:\nhave %#x\nwant 0xdeadbeefcafe", have)
	}
}

func TestEncodeInstancesTruncates(t *testing.T) {
	// Bits above the low 24 must not leak into the mask or flags.
	in := AccelerationStructureInstance{
		Transform:   IdentityTransform,
		CustomIndex: 0xff000001,
		SBTOffset:   0xff000002,
		Mask:        1,
	}
	out := EncodeInstances([]AccelerationStructureInstance{in})
	w0 := binary.LittleEndian.Uint32(out[48:])
	w1 := binary.LittleEndian.Uint32(out[52:])
	if w0 != 1|1<<24 {
		t.Fatalf("word 0:\nhave %#x\nwant %#x", w0, 1|1<<24)
	}
	if w1 != 2 {
		t.Fatalf("word 1:\nhave %#x\nwant 2", w1)
	}
}

func TestEncodeInstancesStride(t *testing.T) {
	ins := make([]AccelerationStructureInstance, 3)
	for i := range ins {
		ins[i].Transform = IdentityTransform
		ins[i].CustomIndex = uint32(i + 1)
	}
	out := EncodeInstances(ins)
	if len(out) != 3*InstanceSize {
		t.Fatalf("encoded size:\nhave %d\nwant %d", len(out), 3*InstanceSize)
	}
	for i := range ins {
		w := binary.LittleEndian.Uint32(out[i*InstanceSize+48:])
		if w&0xffffff != uint32(i+1) {
			t.Fatalf("instance %d custom index:\nhave %d\nwant %d", i, w&0xffffff, i+1)
		}
	}
}
