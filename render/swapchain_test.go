package render

import "testing"

// The spare/slot rotation must never hand out a value that an earlier
// acquire of a different slot is still using.
func TestRotateSpare(t *testing.T) {
	spare := 0
	slots := []int{1, 2, 3}

	have := rotateSpare(&spare, &slots[1])
	if have != 0 {
		t.Fatalf("first rotation:\nhave %d\nwant 0", have)
	}
	if spare != 2 || slots[1] != 0 {
		t.Fatalf("state after first rotation: spare %d slots %v", spare, slots)
	}

	// Rotating through every slot keeps the four values a permutation.
	for i := range slots {
		rotateSpare(&spare, &slots[i])
	}
	seen := map[int]int{}
	for _, v := range append(slots, spare) {
		seen[v]++
	}
	for v := 0; v <= 3; v++ {
		if seen[v] == 0 {
			t.Fatalf("value %d lost during rotation: spare %d slots %v", v, spare, slots)
		}
	}
}

func TestRotateSpareReacquire(t *testing.T) {
	// Acquiring the same slot twice in a row alternates between two
	// values, so the in-flight one is never reused immediately.
	spare := 10
	slot := 20
	a := rotateSpare(&spare, &slot)
	b := rotateSpare(&spare, &slot)
	if a == b {
		t.Fatalf("consecutive acquires reused value %d", a)
	}
	if c := rotateSpare(&spare, &slot); c != a {
		t.Fatalf("third acquire:\nhave %d\nwant %d", c, a)
	}
}
