package gltf

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/GoncaloFDS/tracer/mesh"
	"github.com/GoncaloFDS/tracer/render"
)

// Instance is a placed triangle mesh extracted from an asset's scene.
type Instance struct {
	Name string
	Mesh *mesh.Mesh

	// Transform is the node's row-major 3x4 object-to-world matrix.
	Transform [3][4]float32
}

// LoadFile loads the scene of a .gltf or .glb file. Buffer URIs are
// resolved relative to the file's directory.
func LoadFile(path string) ([]Instance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return load(data, filepath.Dir(path))
}

// Load loads the scene of an in-memory asset, either a GLB blob or
// plain glTF JSON. External buffer URIs are not resolved.
func Load(data []byte) ([]Instance, error) {
	return load(data, "")
}

func load(data []byte, dir string) ([]Instance, error) {
	var bin []byte
	doc := data
	if IsGLB(data) {
		var err error
		if doc, bin, err = splitGLB(data); err != nil {
			return nil, err
		}
	}
	f, err := Decode(bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("gltf: %w", err)
	}
	if err := f.Check(); err != nil {
		return nil, err
	}
	bufs, err := resolveBuffers(f, dir, bin)
	if err != nil {
		return nil, err
	}
	ld := &loader{f: f, bufs: bufs, meshes: make([][]*mesh.Mesh, len(f.Meshes))}
	var out []Instance
	for _, root := range f.roots() {
		if out, err = ld.visit(root, mgl32.Ident4(), out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// roots returns the node indices scene traversal starts from: the
// default scene's nodes, or every unparented node when the asset
// declares no scenes.
func (f *GLTF) roots() []int64 {
	if len(f.Scenes) > 0 {
		s := int64(0)
		if f.Scene != nil {
			s = *f.Scene
		}
		return f.Scenes[s].Nodes
	}
	child := make(map[int64]bool)
	for i := range f.Nodes {
		for _, c := range f.Nodes[i].Children {
			child[c] = true
		}
	}
	var roots []int64
	for i := range f.Nodes {
		if !child[int64(i)] {
			roots = append(roots, int64(i))
		}
	}
	return roots
}

func resolveBuffers(f *GLTF, dir string, bin []byte) ([][]byte, error) {
	bufs := make([][]byte, len(f.Buffers))
	for i, b := range f.Buffers {
		var data []byte
		switch {
		case b.URI == "":
			if bin == nil {
				return nil, newErr("buffer has no URI and no BIN chunk is present")
			}
			data = bin
		case strings.HasPrefix(b.URI, "data:"):
			j := strings.Index(b.URI, ";base64,")
			if j < 0 {
				return nil, newErr("unsupported data URI encoding")
			}
			var err error
			if data, err = base64.StdEncoding.DecodeString(b.URI[j+len(";base64,"):]); err != nil {
				return nil, fmt.Errorf("gltf: buffer %d: %w", i, err)
			}
		default:
			name, err := url.PathUnescape(b.URI)
			if err != nil {
				return nil, fmt.Errorf("gltf: buffer %d: %w", i, err)
			}
			if data, err = os.ReadFile(filepath.Join(dir, name)); err != nil {
				return nil, fmt.Errorf("gltf: buffer %d: %w", i, err)
			}
		}
		if int64(len(data)) < b.ByteLength {
			return nil, fmt.Errorf("gltf: buffer %d: got %d bytes, declared %d", i, len(data), b.ByteLength)
		}
		bufs[i] = data
	}
	return bufs, nil
}

type loader struct {
	f    *GLTF
	bufs [][]byte

	// Built primitives per glTF mesh, shared between the nodes that
	// reference the same mesh.
	meshes [][]*mesh.Mesh
}

func (ld *loader) visit(idx int64, parent mgl32.Mat4, out []Instance) ([]Instance, error) {
	n := &ld.f.Nodes[idx]
	world := parent.Mul4(localMatrix(n))
	if n.Mesh != nil {
		prims, err := ld.meshPrims(*n.Mesh)
		if err != nil {
			return nil, err
		}
		var xf [3][4]float32
		for r := 0; r < 3; r++ {
			for c := 0; c < 4; c++ {
				xf[r][c] = world.At(r, c)
			}
		}
		for _, m := range prims {
			out = append(out, Instance{Name: n.Name, Mesh: m, Transform: xf})
		}
	}
	for _, c := range n.Children {
		var err error
		if out, err = ld.visit(c, world, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func localMatrix(n *Node) mgl32.Mat4 {
	if n.Matrix != nil {
		// glTF matrices are column-major, as are mgl32's.
		return mgl32.Mat4(*n.Matrix)
	}
	m := mgl32.Ident4()
	if t := n.Translation; t != nil {
		m = mgl32.Translate3D(t[0], t[1], t[2])
	}
	if r := n.Rotation; r != nil {
		q := mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}
		m = m.Mul4(q.Normalize().Mat4())
	}
	if s := n.Scale; s != nil {
		m = m.Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
	}
	return m
}

func (ld *loader) meshPrims(idx int64) ([]*mesh.Mesh, error) {
	if ld.meshes[idx] != nil {
		return ld.meshes[idx], nil
	}
	gm := &ld.f.Meshes[idx]
	prims := make([]*mesh.Mesh, 0, len(gm.Primitives))
	for i := range gm.Primitives {
		m, err := ld.loadPrimitive(&gm.Primitives[i])
		if err != nil {
			return nil, fmt.Errorf("gltf: mesh %q primitive %d: %w", gm.Name, i, err)
		}
		prims = append(prims, m)
	}
	ld.meshes[idx] = prims
	return prims, nil
}

func (ld *loader) loadPrimitive(p *Primitive) (*mesh.Mesh, error) {
	if p.Mode != nil && *p.Mode != TRIANGLES {
		return nil, newErr("primitive is not a triangle list")
	}
	pos, ok := p.Attributes[POSITION]
	if !ok {
		return nil, newErr("primitive has no POSITION attribute")
	}
	m := mesh.New()
	data, err := ld.accessorData(pos, FLOAT, VEC3)
	if err != nil {
		return nil, err
	}
	m.SetAttribute(mesh.Position, mesh.Attribute{Format: mesh.Float32x3, Data: data})
	// Non-float encodings of these are legal glTF; they are skipped
	// rather than converted since nothing downstream samples them yet.
	count := ld.f.Accessors[pos].Count
	if idx, ok := p.Attributes[NORMAL]; ok &&
		ld.f.Accessors[idx].ComponentType == FLOAT && ld.f.Accessors[idx].Count == count {
		if data, err = ld.accessorData(idx, FLOAT, VEC3); err != nil {
			return nil, err
		}
		m.SetAttribute(mesh.Normal, mesh.Attribute{Format: mesh.Float32x3, Data: data})
	}
	if idx, ok := p.Attributes[TEXCOORD_0]; ok &&
		ld.f.Accessors[idx].ComponentType == FLOAT && ld.f.Accessors[idx].Count == count {
		if data, err = ld.accessorData(idx, FLOAT, VEC2); err != nil {
			return nil, err
		}
		m.SetAttribute(mesh.TexCoord, mesh.Attribute{Format: mesh.Float32x2, Data: data})
	}
	ix, err := ld.primitiveIndices(p, m.VertexCount())
	if err != nil {
		return nil, err
	}
	m.SetIndices(ix)
	return m, nil
}

func (ld *loader) primitiveIndices(p *Primitive, vertexCount uint32) (mesh.Indices, error) {
	if p.Indices == nil {
		// Acceleration builds want indexed geometry; synthesize the
		// trivial index stream.
		data := make([]byte, 4*vertexCount)
		for i := uint32(0); i < vertexCount; i++ {
			binary.LittleEndian.PutUint32(data[4*i:], i)
		}
		return mesh.Indices{Type: render.IndexUint32, Data: data}, nil
	}
	a := &ld.f.Accessors[*p.Indices]
	data, err := ld.accessorData(*p.Indices, a.ComponentType, SCALAR)
	if err != nil {
		return mesh.Indices{}, err
	}
	switch a.ComponentType {
	case UNSIGNED_SHORT:
		return mesh.Indices{Type: render.IndexUint16, Data: data}, nil
	case UNSIGNED_INT:
		return mesh.Indices{Type: render.IndexUint32, Data: data}, nil
	case UNSIGNED_BYTE:
		wide := make([]byte, 2*len(data))
		for i, b := range data {
			binary.LittleEndian.PutUint16(wide[2*i:], uint16(b))
		}
		return mesh.Indices{Type: render.IndexUint16, Data: wide}, nil
	}
	return mesh.Indices{}, newErr("invalid index component type")
}

func componentSize(ct int64) int64 {
	switch ct {
	case BYTE, UNSIGNED_BYTE:
		return 1
	case SHORT, UNSIGNED_SHORT:
		return 2
	default:
		return 4
	}
}

func componentCount(t string) int64 {
	switch t {
	case SCALAR:
		return 1
	case VEC2:
		return 2
	case VEC3:
		return 3
	case VEC4, MAT2:
		return 4
	case MAT3:
		return 9
	default:
		return 16
	}
}

// accessorData reads an accessor's elements as a tightly packed,
// little-endian byte stream.
func (ld *loader) accessorData(idx, wantComponent int64, wantType string) ([]byte, error) {
	a := &ld.f.Accessors[idx]
	if a.ComponentType != wantComponent || a.Type != wantType {
		return nil, fmt.Errorf("gltf: accessor %d: got %s/%d, want %s/%d",
			idx, a.Type, a.ComponentType, wantType, wantComponent)
	}
	elem := componentSize(a.ComponentType) * componentCount(a.Type)
	if a.BufferView == nil {
		// Zero-filled per the format.
		return make([]byte, elem*a.Count), nil
	}
	v := &ld.f.BufferViews[*a.BufferView]
	stride := v.ByteStride
	if stride == 0 {
		stride = elem
	}
	base := v.ByteOffset + a.ByteOffset
	end := base + stride*(a.Count-1) + elem
	if a.ByteOffset+stride*(a.Count-1)+elem > v.ByteLength {
		return nil, fmt.Errorf("gltf: accessor %d exceeds its buffer view", idx)
	}
	buf := ld.bufs[v.Buffer]
	if end > int64(len(buf)) {
		return nil, fmt.Errorf("gltf: accessor %d exceeds its buffer", idx)
	}
	out := make([]byte, elem*a.Count)
	for i := int64(0); i < a.Count; i++ {
		copy(out[i*elem:(i+1)*elem], buf[base+i*stride:])
	}
	return out, nil
}
