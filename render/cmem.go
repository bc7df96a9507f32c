package render

// #include <stdlib.h>
import "C"

import "unsafe"

// carena batches C allocations that share a lifetime, typically the
// nested arrays of a create info struct.
type carena struct {
	ptrs []unsafe.Pointer
}

func (a *carena) alloc(size C.size_t) unsafe.Pointer {
	p := C.malloc(size)
	a.ptrs = append(a.ptrs, p)
	return p
}

func (a *carena) release() {
	for _, p := range a.ptrs {
		C.free(p)
	}
	a.ptrs = nil
}
