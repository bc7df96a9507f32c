package render

// #include <stdlib.h>
// #include "vkrt.h"
import "C"

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"unsafe"
)

const spirvMagic = 0x07230203

// ShaderModule is a handle to a compiled shader module.
type ShaderModule struct {
	h   C.VkShaderModule
	key int
}

// Shader pairs a module with the stage it runs at.
type Shader struct {
	Module ShaderModule
	Stage  ShaderStage
}

// LoadShaderCode reads a SPIR-V blob named name from dir and validates
// its framing.
func LoadShaderCode(dir, name string) ([]byte, error) {
	code, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("render: read shader %s: %w", name, err)
	}
	if len(code) < 4 || len(code)%4 != 0 {
		return nil, fmt.Errorf("render: shader %s: %w", name, ErrShaderFormat)
	}
	if binary.LittleEndian.Uint32(code) != spirvMagic {
		return nil, fmt.Errorf("render: shader %s: %w", name, ErrShaderFormat)
	}
	return code, nil
}

// CreateShaderModule creates a module from SPIR-V code.
func (d *Device) CreateShaderModule(code []byte) (ShaderModule, error) {
	p := C.CBytes(code)
	defer C.free(p)
	info := C.VkShaderModuleCreateInfo{
		sType:    C.VK_STRUCTURE_TYPE_SHADER_MODULE_CREATE_INFO,
		codeSize: C.size_t(len(code)),
		pCode:    (*C.uint32_t)(p),
	}
	var m ShaderModule
	if err := checkResult(C.vkCreateShaderModule(d.h, &info, nil, &m.h)); err != nil {
		return ShaderModule{}, err
	}
	m.key = d.shaders.insert(m.h)
	return m, nil
}

// LoadShader reads, validates and creates a shader in one step.
func (d *Device) LoadShader(dir, name string, stage ShaderStage) (Shader, error) {
	code, err := LoadShaderCode(dir, name)
	if err != nil {
		return Shader{}, err
	}
	m, err := d.CreateShaderModule(code)
	if err != nil {
		return Shader{}, err
	}
	return Shader{Module: m, Stage: stage}, nil
}
