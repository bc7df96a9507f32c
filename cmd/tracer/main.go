// Command tracer is a demo host for the renderer: a GLFW window, an
// orbit camera on the mouse, a glTF scene or a single builtin triangle,
// and a frame-time overlay.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"math"
	"runtime"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/GoncaloFDS/tracer/camera"
	"github.com/GoncaloFDS/tracer/gltf"
	"github.com/GoncaloFDS/tracer/mesh"
	"github.com/GoncaloFDS/tracer/render"
	"github.com/GoncaloFDS/tracer/renderer"
	"github.com/GoncaloFDS/tracer/ui"
)

func init() {
	// GLFW event handling must run on the main OS thread.
	runtime.LockOSThread()
}

// hostWindow adapts a GLFW window to the renderer's window contract.
type hostWindow struct {
	*glfw.Window
}

func (w hostWindow) CreateSurface(instance uintptr) (uintptr, error) {
	return w.Window.CreateWindowSurface(instance, nil)
}

func main() {
	validation := flag.Bool("validation", false, "enable the validation layer")
	shaderDir := flag.String("shaders", "assets/shaders", "shader binary directory")
	model := flag.String("model", "", "glTF scene to trace (.gltf or .glb)")
	flag.Parse()

	if err := glfw.Init(); err != nil {
		log.Fatalf("tracer: init glfw: %v", err)
	}
	defer glfw.Terminate()
	if !glfw.VulkanSupported() {
		log.Fatal("tracer: no vulkan loader available")
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	win, err := glfw.CreateWindow(1280, 720, "tracer", nil, nil)
	if err != nil {
		log.Fatalf("tracer: create window: %v", err)
	}
	defer win.Destroy()

	r, err := renderer.New(renderer.Config{
		AppName:    "tracer",
		ShaderDir:  *shaderDir,
		Validation: *validation,
	}, hostWindow{win})
	if err != nil {
		log.Fatalf("tracer: %v", err)
	}
	defer r.Destroy()

	if err := loadScene(r, *model); err != nil {
		log.Fatalf("tracer: load scene: %v", err)
	}

	orbit := camera.NewOrbit()
	var (
		dragging      bool
		lastX, lastY  float64
		resizePending bool
	)
	win.SetMouseButtonCallback(func(_ *glfw.Window, b glfw.MouseButton, a glfw.Action, _ glfw.ModifierKey) {
		if b == glfw.MouseButtonLeft {
			dragging = a == glfw.Press
			lastX, lastY = win.GetCursorPos()
		}
	})
	win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		if dragging {
			orbit.Rotate(float32(x-lastX)*0.005, float32(y-lastY)*0.005)
		}
		lastX, lastY = x, y
	})
	win.SetScrollCallback(func(_ *glfw.Window, _, dy float64) {
		orbit.Zoom(float32(dy) * 0.2)
	})
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, _, _ int) {
		resizePending = true
	})

	frameTime := time.Duration(0)
	for !win.ShouldClose() {
		glfw.PollEvents()
		if resizePending {
			resizePending = false
			if err := r.Resize(); err != nil {
				log.Fatalf("tracer: resize: %v", err)
			}
		}

		ext := r.Extent()
		if ext.Width == 0 || ext.Height == 0 {
			glfw.WaitEvents()
			continue
		}
		aspect := float32(ext.Width) / float32(ext.Height)

		start := time.Now()
		overlay := &ui.DrawData{Meshes: []ui.Mesh{
			r.Atlas().Text(
				fmt.Sprintf("%5.2f ms", float64(frameTime.Microseconds())/1000),
				8, 20, [4]uint8{255, 255, 255, 255},
			),
		}}
		if err := r.Draw(orbit.Uniform(aspect), overlay); err != nil {
			log.Fatalf("tracer: draw: %v", err)
		}
		frameTime = time.Since(start)
	}
}

// loadScene registers the instances of a glTF file, or the builtin
// triangle when no model is given.
func loadScene(r *renderer.Renderer, model string) error {
	if model == "" {
		return r.LoadMesh(0, triangle())
	}
	insts, err := gltf.LoadFile(model)
	if err != nil {
		return err
	}
	if len(insts) == 0 {
		return fmt.Errorf("%s: no triangle meshes in scene", model)
	}
	for i, in := range insts {
		h := renderer.MeshHandle(i)
		if err := r.LoadMesh(h, in.Mesh); err != nil {
			return err
		}
		r.SetTransform(h, in.Transform)
	}
	log.Printf("tracer: %s: %d instances", model, len(insts))
	return nil
}

// triangle builds the demo scene's single triangle.
func triangle() *mesh.Mesh {
	verts := [][3]float32{
		{-0.5, -0.5, 0},
		{0.5, -0.5, 0},
		{0, 0.5, 0},
	}
	pos := make([]byte, 0, len(verts)*12)
	for _, v := range verts {
		for _, f := range v {
			pos = binary.LittleEndian.AppendUint32(pos, math.Float32bits(f))
		}
	}
	ix := make([]byte, 0, 12)
	for _, i := range []uint32{0, 1, 2} {
		ix = binary.LittleEndian.AppendUint32(ix, i)
	}

	m := mesh.New()
	m.SetAttribute(mesh.Position, mesh.Attribute{Format: mesh.Float32x3, Data: pos})
	m.SetIndices(mesh.Indices{Type: render.IndexUint32, Data: ix})
	return m
}
