package gltf

import (
	"encoding/binary"
	"errors"
)

// GLB container layout: a 12-byte header followed by chunks, each a
// 8-byte {length, type} prefix plus payload.
const (
	glbHeaderLen = 12
	glbChunkLen  = 8

	glbMagic = 0x46546c67

	chunkJSON = 0x4e4f534a
	chunkBIN  = 0x004e4942
)

// IsGLB returns whether data starts with a binary glTF (version 2)
// header.
func IsGLB(data []byte) bool {
	if len(data) < glbHeaderLen {
		return false
	}
	magic := binary.LittleEndian.Uint32(data)
	version := binary.LittleEndian.Uint32(data[4:])
	return magic == glbMagic && version == 2
}

// splitGLB splits a GLB blob into its JSON chunk and its optional BIN
// chunk.
func splitGLB(data []byte) (doc, bin []byte, err error) {
	if !IsGLB(data) {
		return nil, nil, errors.New("gltf: not a GLB blob")
	}
	total := binary.LittleEndian.Uint32(data[8:])
	if uint64(total) > uint64(len(data)) {
		return nil, nil, errors.New("gltf: truncated GLB blob")
	}
	for off := uint32(glbHeaderLen); off < total; {
		if total-off < glbChunkLen {
			return nil, nil, errors.New("gltf: invalid GLB chunk")
		}
		length := binary.LittleEndian.Uint32(data[off:])
		typ := binary.LittleEndian.Uint32(data[off+4:])
		off += glbChunkLen
		if length > total-off {
			return nil, nil, errors.New("gltf: invalid GLB chunk")
		}
		payload := data[off : off+length]
		switch typ {
		case chunkJSON:
			doc = payload
		case chunkBIN:
			bin = payload
		}
		off += length
	}
	if doc == nil {
		return nil, nil, errors.New("gltf: GLB blob has no JSON chunk")
	}
	return doc, bin, nil
}
