package render

import (
	"math"
	"testing"
)

func TestComputeSBTLayout(t *testing.T) {
	// handleSize 32, baseAlign 64: records round up to 64 bytes.
	l, err := computeSBTLayout(32, 64, 1, 2, 3, 0)
	if err != nil {
		t.Fatalf("computeSBTLayout: %v", err)
	}
	if l.stride != 64 {
		t.Fatalf("stride:\nhave %d\nwant 64", l.stride)
	}
	for _, c := range [...]struct {
		name    string
		section sbtSection
		offset  uint64
		count   uint64
	}{
		{"raygen", l.raygen, 0, 1},
		{"miss", l.miss, 64, 2},
		{"hit", l.hit, 192, 3},
		{"callable", l.callable, 384, 0},
	} {
		if c.section.offset != c.offset || c.section.count != c.count {
			t.Fatalf("%s section:\nhave %+v\nwant offset %d count %d",
				c.name, c.section, c.offset, c.count)
		}
	}
	if l.total != 384 {
		t.Fatalf("total:\nhave %d\nwant 384", l.total)
	}
}

func TestComputeSBTLayoutExactStride(t *testing.T) {
	// A handle size that is already aligned must not grow.
	l, err := computeSBTLayout(64, 64, 1, 1, 1, 1)
	if err != nil {
		t.Fatalf("computeSBTLayout: %v", err)
	}
	if l.stride != 64 || l.total != 256 {
		t.Fatalf("layout:\nhave stride %d total %d\nwant stride 64 total 256", l.stride, l.total)
	}
}

func TestComputeSBTLayoutOverflow(t *testing.T) {
	if _, err := computeSBTLayout(32, 64, 1, math.MaxUint64/32, 0, 0); err == nil {
		t.Fatal("section overflow: no error")
	}
	if _, err := computeSBTLayout(32, 64, math.MaxUint64/64, math.MaxUint64/64, 0, 0); err == nil {
		t.Fatal("total overflow: no error")
	}
}

func TestSectionSize(t *testing.T) {
	s := sbtSection{offset: 128, count: 3}
	if have := s.size(64); have != 192 {
		t.Fatalf("size:\nhave %d\nwant 192", have)
	}
}
