package render

import (
	"math"
	"testing"
)

func TestAlignUp(t *testing.T) {
	for _, c := range [...]struct {
		mask  uint64
		value uint64
		want  uint64
		ok    bool
	}{
		{0, 0, 0, true},
		{0, 17, 17, true},
		{3, 0, 0, true},
		{3, 1, 4, true},
		{3, 4, 4, true},
		{63, 64, 64, true},
		{63, 65, 128, true},
		{255, 32, 256, true},
		{255, math.MaxUint64 - 254, 0, false},
		{0, math.MaxUint64, math.MaxUint64, true},
	} {
		have, ok := alignUp(c.mask, c.value)
		if ok != c.ok {
			t.Fatalf("alignUp(%d, %d):\nhave ok %v\nwant ok %v", c.mask, c.value, ok, c.ok)
		}
		if ok && have != c.want {
			t.Fatalf("alignUp(%d, %d):\nhave %d\nwant %d", c.mask, c.value, have, c.want)
		}
	}
}

func TestRangeCount(t *testing.T) {
	for _, c := range [...]struct {
		r    Range
		want uint32
	}{
		{Range{}, 0},
		{Range{0, 1}, 1},
		{Range{4, 4}, 0},
		{Range{100, 164}, 64},
	} {
		if have := c.r.Count(); have != c.want {
			t.Fatalf("Range%+v.Count:\nhave %d\nwant %d", c.r, have, c.want)
		}
	}
}

func TestRangeCountInverted(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Range{2, 1}.Count: no panic")
		}
	}()
	Range{Start: 2, End: 1}.Count()
}

func TestDeviceAddressOffset(t *testing.T) {
	a := DeviceAddress(0x1000)
	if have := a.Offset(0x40); have != 0x1040 {
		t.Fatalf("DeviceAddress.Offset:\nhave %#x\nwant %#x", have, 0x1040)
	}
	defer func() {
		if recover() == nil {
			t.Fatal("DeviceAddress.Offset overflow: no panic")
		}
	}()
	DeviceAddress(math.MaxUint64).Offset(1)
}

func TestClearValues(t *testing.T) {
	c := ClearColor(0.1, 0.2, 0.3, 1)
	if c.HasDepth || c.HasStencil {
		t.Fatalf("ClearColor: unexpected depth/stencil flags in %+v", c)
	}
	if c.Color != [4]float32{0.1, 0.2, 0.3, 1} {
		t.Fatalf("ClearColor:\nhave %v\nwant [0.1 0.2 0.3 1]", c.Color)
	}
	d := ClearDepthStencil(1, 0)
	if !d.HasDepth || !d.HasStencil {
		t.Fatalf("ClearDepthStencil: missing depth/stencil flags in %+v", d)
	}
	if d.Depth != 1 || d.Stencil != 0 {
		t.Fatalf("ClearDepthStencil:\nhave %v/%v\nwant 1/0", d.Depth, d.Stencil)
	}
}
