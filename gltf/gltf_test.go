package gltf

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"testing"

	"github.com/GoncaloFDS/tracer/mesh"
	"github.com/GoncaloFDS/tracer/render"
)

// triangleBytes packs three float32x3 positions followed by three
// uint16 indices, padded to 4 bytes.
func triangleBytes() []byte {
	var buf bytes.Buffer
	for _, v := range [][3]float32{{-0.5, -0.5, 0}, {0.5, -0.5, 0}, {0, 0.5, 0}} {
		binary.Write(&buf, binary.LittleEndian, v[:])
	}
	binary.Write(&buf, binary.LittleEndian, []uint16{0, 1, 2})
	buf.Write([]byte{0, 0})
	return buf.Bytes()
}

func triangleDoc(buffer string) []byte {
	return []byte(fmt.Sprintf(`{
		"asset": {"version": "2.0"},
		"buffers": [%s],
		"bufferViews": [
			{"buffer": 0, "byteOffset": 0, "byteLength": 36},
			{"buffer": 0, "byteOffset": 36, "byteLength": 6}
		],
		"accessors": [
			{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
			{"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
		],
		"meshes": [{"primitives": [{"attributes": {"POSITION": 0}, "indices": 1}]}],
		"nodes": [{"mesh": 0, "translation": [1, 2, 3]}],
		"scenes": [{"nodes": [0]}],
		"scene": 0
	}`, buffer))
}

func embeddedTriangle() []byte {
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(triangleBytes())
	return triangleDoc(fmt.Sprintf(`{"uri": %q, "byteLength": 42}`, uri))
}

func TestLoadTriangle(t *testing.T) {
	insts, err := Load(embeddedTriangle())
	if err != nil {
		t.Fatal(err)
	}
	if len(insts) != 1 {
		t.Fatalf("len(insts):\nwant 1\nhave %d", len(insts))
	}
	m := insts[0].Mesh
	if n := m.VertexCount(); n != 3 {
		t.Fatalf("VertexCount:\nwant 3\nhave %d", n)
	}
	pos, ok := m.Attribute(mesh.Position)
	if !ok {
		t.Fatal("mesh has no position attribute")
	}
	if !bytes.Equal(pos.Data, triangleBytes()[:36]) {
		t.Fatal("position data differs from the source buffer")
	}
	ix, ok := m.Indices()
	if !ok {
		t.Fatal("mesh has no indices")
	}
	if ix.Type != render.IndexUint16 || ix.Count() != 3 {
		t.Fatalf("indices:\nwant 3 uint16\nhave %d elements of type %d", ix.Count(), ix.Type)
	}
	xf := insts[0].Transform
	want := [3][4]float32{{1, 0, 0, 1}, {0, 1, 0, 2}, {0, 0, 1, 3}}
	if xf != want {
		t.Fatalf("Transform:\nwant %v\nhave %v", want, xf)
	}
}

func TestLoadGLB(t *testing.T) {
	doc := triangleDoc(`{"byteLength": 42}`)
	for len(doc)%4 != 0 {
		doc = append(doc, ' ')
	}
	bin := triangleBytes()
	var blob bytes.Buffer
	total := glbHeaderLen + 2*glbChunkLen + len(doc) + len(bin)
	binary.Write(&blob, binary.LittleEndian, []uint32{glbMagic, 2, uint32(total)})
	binary.Write(&blob, binary.LittleEndian, []uint32{uint32(len(doc)), chunkJSON})
	blob.Write(doc)
	binary.Write(&blob, binary.LittleEndian, []uint32{uint32(len(bin)), chunkBIN})
	blob.Write(bin)

	if !IsGLB(blob.Bytes()) {
		t.Fatal("IsGLB:\nwant true\nhave false")
	}
	if IsGLB([]byte(`{"asset": {"version": "2.0"}}`)) {
		t.Fatal("IsGLB on JSON:\nwant false\nhave true")
	}
	insts, err := Load(blob.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if len(insts) != 1 || insts[0].Mesh.VertexCount() != 3 {
		t.Fatalf("unexpected scene: %+v", insts)
	}
}

func TestLoadInterleaved(t *testing.T) {
	// Positions interleaved with normals, 24-byte stride.
	var buf bytes.Buffer
	for _, v := range [][3]float32{{-0.5, -0.5, 0}, {0.5, -0.5, 0}, {0, 0.5, 0}} {
		binary.Write(&buf, binary.LittleEndian, v[:])
		binary.Write(&buf, binary.LittleEndian, []float32{0, 0, 1})
	}
	uri := "data:;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
	doc := []byte(fmt.Sprintf(`{
		"asset": {"version": "2.0"},
		"buffers": [{"uri": %q, "byteLength": 72}],
		"bufferViews": [{"buffer": 0, "byteLength": 72, "byteStride": 24}],
		"accessors": [
			{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
			{"bufferView": 0, "byteOffset": 12, "componentType": 5126, "count": 3, "type": "VEC3"}
		],
		"meshes": [{"primitives": [{"attributes": {"POSITION": 0, "NORMAL": 1}}]}],
		"nodes": [{"mesh": 0}]
	}`, uri))
	insts, err := Load(doc)
	if err != nil {
		t.Fatal(err)
	}
	m := insts[0].Mesh
	pos, _ := m.Attribute(mesh.Position)
	if len(pos.Data) != 36 {
		t.Fatalf("len(pos.Data):\nwant 36\nhave %d", len(pos.Data))
	}
	y := math.Float32frombits(binary.LittleEndian.Uint32(pos.Data[16:]))
	if y != -0.5 {
		t.Fatalf("vertex 1 y:\nwant -0.5\nhave %v", y)
	}
	nrm, ok := m.Attribute(mesh.Normal)
	if !ok {
		t.Fatal("mesh has no normal attribute")
	}
	z := math.Float32frombits(binary.LittleEndian.Uint32(nrm.Data[8:]))
	if z != 1 {
		t.Fatalf("normal 0 z:\nwant 1\nhave %v", z)
	}
	// No index accessor; the loader synthesizes the trivial stream.
	ix, _ := m.Indices()
	if ix.Type != render.IndexUint32 || ix.Count() != 3 {
		t.Fatalf("indices:\nwant 3 uint32\nhave %d elements of type %d", ix.Count(), ix.Type)
	}
	if v := binary.LittleEndian.Uint32(ix.Data[8:]); v != 2 {
		t.Fatalf("index 2:\nwant 2\nhave %d", v)
	}
}

func TestLoadHierarchy(t *testing.T) {
	uri := "data:;base64," + base64.StdEncoding.EncodeToString(triangleBytes())
	doc := []byte(fmt.Sprintf(`{
		"asset": {"version": "2.0"},
		"buffers": [{"uri": %q, "byteLength": 42}],
		"bufferViews": [
			{"buffer": 0, "byteLength": 36},
			{"buffer": 0, "byteOffset": 36, "byteLength": 6}
		],
		"accessors": [
			{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
			{"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
		],
		"meshes": [{"primitives": [{"attributes": {"POSITION": 0}, "indices": 1}]}],
		"nodes": [
			{"children": [1], "translation": [10, 0, 0]},
			{"mesh": 0, "translation": [0, 5, 0], "scale": [2, 2, 2]}
		]
	}`, uri))
	insts, err := Load(doc)
	if err != nil {
		t.Fatal(err)
	}
	if len(insts) != 1 {
		t.Fatalf("len(insts):\nwant 1\nhave %d", len(insts))
	}
	xf := insts[0].Transform
	want := [3][4]float32{{2, 0, 0, 10}, {0, 2, 0, 5}, {0, 0, 2, 0}}
	if xf != want {
		t.Fatalf("Transform:\nwant %v\nhave %v", want, xf)
	}
}

func TestCheck(t *testing.T) {
	for _, tc := range []struct {
		doc  string
		want bool
	}{
		{`{"asset": {"version": "2.0"}}`, true},
		{`{"asset": {"version": "2.0"}, "scene": 1}`, false},
		{`{"asset": {"version": "2.0"}, "accessors": [{"componentType": 1234, "count": 3, "type": "VEC3"}]}`, false},
		{`{"asset": {"version": "2.0"}, "accessors": [{"componentType": 5126, "count": 0, "type": "VEC3"}]}`, false},
		{`{"asset": {"version": "2.0"}, "nodes": [{"mesh": 0}]}`, false},
		{`{"asset": {"version": "2.0"}, "buffers": [{"byteLength": 8}], "bufferViews": [{"buffer": 0, "byteLength": 16}]}`, false},
	} {
		f, err := Decode(bytes.NewReader([]byte(tc.doc)))
		if err != nil {
			t.Fatal(err)
		}
		if got := f.Check() == nil; got != tc.want {
			t.Fatalf("Check of %s:\nwant ok=%t\nhave ok=%t", tc.doc, tc.want, got)
		}
	}
}
