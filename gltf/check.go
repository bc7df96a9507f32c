package gltf

import "errors"

func newErr(reason string) error {
	return errors.New("gltf: " + reason)
}

// Check checks the index references and accessor descriptions that the
// loader is about to chase.
func (f *GLTF) Check() error {
	if s := f.Scene; s != nil && (*s < 0 || *s >= int64(len(f.Scenes))) {
		return newErr("invalid GLTF.Scene index")
	}
	for i := range f.Scenes {
		for _, n := range f.Scenes[i].Nodes {
			if n < 0 || n >= int64(len(f.Nodes)) {
				return newErr("invalid Scene.Nodes index")
			}
		}
	}
	for i := range f.BufferViews {
		v := &f.BufferViews[i]
		if v.Buffer < 0 || v.Buffer >= int64(len(f.Buffers)) {
			return newErr("invalid BufferView.Buffer index")
		}
		if v.ByteOffset < 0 || v.ByteLength < 1 || v.ByteStride < 0 {
			return newErr("invalid BufferView range")
		}
		if n := f.Buffers[v.Buffer].ByteLength; v.ByteOffset+v.ByteLength > n {
			return newErr("BufferView range exceeds its buffer")
		}
	}
	for i := range f.Accessors {
		if err := f.Accessors[i].Check(f); err != nil {
			return err
		}
	}
	for i := range f.Meshes {
		for j := range f.Meshes[i].Primitives {
			p := &f.Meshes[i].Primitives[j]
			for _, a := range p.Attributes {
				if a < 0 || a >= int64(len(f.Accessors)) {
					return newErr("invalid Primitive.Attributes index")
				}
			}
			if ix := p.Indices; ix != nil && (*ix < 0 || *ix >= int64(len(f.Accessors))) {
				return newErr("invalid Primitive.Indices index")
			}
		}
	}
	for i := range f.Nodes {
		n := &f.Nodes[i]
		if n.Mesh != nil && (*n.Mesh < 0 || *n.Mesh >= int64(len(f.Meshes))) {
			return newErr("invalid Node.Mesh index")
		}
		for _, c := range n.Children {
			if c < 0 || c >= int64(len(f.Nodes)) {
				return newErr("invalid Node.Children index")
			}
		}
	}
	return nil
}

// Check checks that a is a valid glTF.accessors' element.
func (a *Accessor) Check(gltf *GLTF) error {
	if a.BufferView != nil {
		idx := *a.BufferView
		if idx < 0 || idx >= int64(len(gltf.BufferViews)) {
			return newErr("invalid Accessor.BufferView index")
		}
	}
	if a.ByteOffset < 0 {
		return newErr("invalid Accessor.ByteOffset value")
	}
	switch a.ComponentType {
	case BYTE, UNSIGNED_BYTE, SHORT, UNSIGNED_SHORT, UNSIGNED_INT, FLOAT:
	default:
		return newErr("invalid Accessor.ComponentType value")
	}
	if a.Count < 1 {
		return newErr("invalid Accessor.Count value")
	}
	switch a.Type {
	case SCALAR, VEC2, VEC3, VEC4, MAT2, MAT3, MAT4:
	default:
		return newErr("invalid Accessor.Type value")
	}
	if a.Sparse != nil {
		return newErr("sparse accessors are not supported")
	}
	return nil
}
