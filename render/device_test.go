package render

import "testing"

// TestInstanceBringup exercises the native loader path end to end.
// Hosts without a Vulkan implementation skip it.
func TestInstanceBringup(t *testing.T) {
	in, err := NewInstance(InstanceConfig{AppName: "render.test"})
	if err != nil {
		t.Skipf("no usable Vulkan instance: %v", err)
	}
	if in.Handle() == 0 {
		t.Fatal("Instance.Handle:\nwant non-zero\nhave 0")
	}
	in.Destroy()
}
