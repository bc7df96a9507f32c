package render

import (
	"reflect"
	"testing"
)

// record runs the same command sequence against a fresh encoder and
// returns its tape.
func record(rp RenderPass, fb Framebuffer) cmdList {
	e := &Encoder{}
	e.PipelineBarrier(StageTopOfPipe, StageTransfer, 0, AccessTransferWrite, nil)
	e.UpdateBuffer(Buffer{}, 64, []byte{1, 2, 3, 4})
	e.BeginRenderPass(rp, fb, []ClearValue{ClearColor(0, 0, 0, 1), ClearDepthStencil(1, 0)})
	e.SetViewport(Viewport{Width: 800, Height: 600, MaxDepth: 1})
	e.SetScissor(Rect2D{Extent: Extent2D{Width: 800, Height: 600}})
	e.BindVertexBuffers(0, []VertexBufferBinding{{}})
	e.BindIndexBuffer(Buffer{}, 0, IndexUint32)
	e.DrawIndexed(Range{0, 36}, 0, Range{0, 1})
	e.Draw(Range{0, 3}, Range{0, 1})
	e.EndRenderPass()
	return e.list
}

func TestEncoderDeterministic(t *testing.T) {
	rp := RenderPass{inner: &renderPassInner{attachments: 2}}
	var fb Framebuffer
	a := record(rp, fb)
	b := record(rp, fb)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("identical recordings differ:\nhave %+v\nwant %+v", b, a)
	}
}

func TestEncoderOrder(t *testing.T) {
	rp := RenderPass{inner: &renderPassInner{attachments: 2}}
	l := record(rp, Framebuffer{})
	want := []cmdKind{
		cmdPipelineBarrier,
		cmdUpdateBuffer,
		cmdBeginRenderPass,
		cmdSetViewport,
		cmdSetScissor,
		cmdBindVertexBuffers,
		cmdBindIndexBuffer,
		cmdDrawIndexed,
		cmdDraw,
		cmdEndRenderPass,
	}
	if len(l.refs) != len(want) {
		t.Fatalf("tape length:\nhave %d\nwant %d", len(l.refs), len(want))
	}
	for i, r := range l.refs {
		if r.kind != want[i] {
			t.Fatalf("refs[%d].kind:\nhave %d\nwant %d", i, r.kind, want[i])
		}
	}
}

func TestDrawIndexedRanges(t *testing.T) {
	e := &Encoder{}
	e.DrawIndexed(Range{6, 42}, -3, Range{2, 7})
	if n := len(e.list.drawsIndexed); n != 1 {
		t.Fatalf("drawsIndexed length:\nhave %d\nwant 1", n)
	}
	d := e.list.drawsIndexed[0]
	if d.indices != (Range{6, 42}) || d.vertexOffset != -3 || d.instances != (Range{2, 7}) {
		t.Fatalf("unexpected draw payload %+v", d)
	}
	// The index and instance ranges must stay independent.
	if d.indices.Count() == d.instances.Count() {
		t.Fatal("test ranges must have distinct counts")
	}
	if have, want := d.instances.Count(), uint32(5); have != want {
		t.Fatalf("instance count:\nhave %d\nwant %d", have, want)
	}
}

func TestEncoderUpdateBufferCopies(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	e := &Encoder{}
	e.UpdateBuffer(Buffer{}, 0, data)
	data[0] = 99
	if e.list.updates[0].data[0] != 1 {
		t.Fatal("UpdateBuffer aliases caller data")
	}
}

func TestEncoderPushConstantsCopies(t *testing.T) {
	data := []byte{5, 6, 7, 8}
	e := &Encoder{}
	e.PushConstants(PipelineLayout{}, StageRaygen, 0, data)
	data[3] = 0
	if e.list.pushes[0].data[3] != 8 {
		t.Fatal("PushConstants aliases caller data")
	}
}

func TestEncoderEmptyBuildIsNoOp(t *testing.T) {
	e := &Encoder{}
	e.BuildAccelerationStructures(nil)
	if len(e.list.refs) != 0 {
		t.Fatalf("empty build recorded %d commands", len(e.list.refs))
	}
}

func mustPanic(t *testing.T, name string, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("%s: no panic", name)
		}
	}()
	f()
}

func TestEncoderStatePanics(t *testing.T) {
	rp := RenderPass{inner: &renderPassInner{attachments: 1}}
	clears := []ClearValue{ClearColor(0, 0, 0, 1)}

	mustPanic(t, "clear count mismatch", func() {
		e := &Encoder{}
		e.BeginRenderPass(rp, Framebuffer{}, nil)
	})
	mustPanic(t, "nested begin", func() {
		e := &Encoder{}
		e.BeginRenderPass(rp, Framebuffer{}, clears)
		e.BeginRenderPass(rp, Framebuffer{}, clears)
	})
	mustPanic(t, "end without begin", func() {
		e := &Encoder{}
		e.EndRenderPass()
	})
	mustPanic(t, "finish inside pass", func() {
		e := &Encoder{}
		e.BeginRenderPass(rp, Framebuffer{}, clears)
		e.Finish(nil)
	})
	mustPanic(t, "record after finish", func() {
		e := &Encoder{finished: true}
		e.Draw(Range{0, 3}, Range{0, 1})
	})
}
