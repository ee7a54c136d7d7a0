package shader

import (
	"fmt"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies the pipeline stage a shader provides.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex shader type, used for vertex processing in render pipelines.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment shader type, used for fragment processing in pair with a vertex shader.
	ShaderTypeFragment
)

// shader is the implementation of the Shader interface.
// It holds all of the persistent shader data required for pipeline creation and material binding.
type shader struct {
	key                        string
	source                     string
	shaderType                 ShaderType
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	vertexLayouts              map[int][]wgpu.VertexBufferLayout
	entryPoint                 string
	module                     *wgpu.ShaderModuleDescriptor

	pp PreProcessor
}

// Shader defines the interface for a loaded and parsed WGSL shader. It exposes the shader's
// unique key, source code, entry point, bind group layout descriptors, and vertex buffer
// layouts needed for pipeline creation and resource wiring.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the pre-processed WGSL shader source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// BindGroupLayoutDescriptor retrieves the bind group layout descriptor for a specific binding key.
	//
	// Parameters:
	//   - bindingKey: the integer key identifying the bind group layout descriptor
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the bind group layout descriptor associated with the key, or an empty descriptor if not set
	BindGroupLayoutDescriptor(bindingKey int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors retrieves all parsed bind group layout descriptors.
	// These are the CPU-side descriptors extracted from the shader source which can be
	// used by the renderer to create the actual wgpu.BindGroupLayout GPU objects.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName retrieves the variable name for a given group and binding index, if it exists.
	// This is used for binding resources by name rather than by raw index.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the variable name associated with the group and binding, or an empty string if not found
	BindGroupVarName(group, binding int) string

	// BindGroupFromVarName retrieves the binding index for a given group and variable name, if it exists.
	//
	// Parameters:
	//   - group: the bind group index
	//   - varName: the variable name within the group
	//
	// Returns:
	//   - int: the binding index associated with the variable name, or -1 if not found
	//   - bool: true if the variable name was found, false otherwise
	BindGroupFromVarName(group int, varName string) (int, bool)

	// BindGroupVarNames retrieves all variable names for all bind groups.
	//
	// Returns:
	//   - map[int]map[int]string: variable names keyed by group and binding index
	BindGroupVarNames() map[int]map[int]string

	// VertexLayout retrieves the vertex buffer layout for a specific key.
	//
	// Parameters:
	//   - key: the integer key identifying the vertex layout
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the vertex buffer layout associated with the key, or nil if not set
	VertexLayout(key int) []wgpu.VertexBufferLayout

	// VertexLayouts retrieves all vertex buffer layouts associated with this shader.
	//
	// Returns:
	//   - map[int][]wgpu.VertexBufferLayout: a map of keys to their corresponding vertex buffer layouts
	VertexLayouts() map[int][]wgpu.VertexBufferLayout

	// EntryPoint returns the entry point name for this shader.
	//
	// Returns:
	//   - string: the entry point name (e.g. "main")
	EntryPoint() string

	// Module returns the wgpu.ShaderModuleDescriptor for this shader, built during construction.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the shader module descriptor containing the WGSL code and label
	Module() *wgpu.ShaderModuleDescriptor

	// ShaderType returns the type of the shader (vertex or fragment).
	//
	// Returns:
	//   - ShaderType: ShaderTypeVertex or ShaderTypeFragment
	ShaderType() ShaderType
}

var _ Shader = &shader{}

// NewShader creates a new Shader by reading WGSL source from a file path,
// pre-processing it with the given defines, and parsing its reflection data.
//
// Parameters:
//   - key: a unique identifier for the shader, used for caching and lookups
//   - shaderType: the type of shader (vertex or fragment), used for validation and pipeline setup
//   - sourcePath: the file path to read WGSL source from
//   - defines: conditional-compilation flags applied during pre-processing
//
// Returns:
//   - Shader: a new Shader instance with the provided configuration
//   - error: an error if the file cannot be read or the source fails pre-processing
func NewShader(key string, shaderType ShaderType, sourcePath string, defines ...Define) (Shader, error) {
	if sourcePath == "" {
		return nil, fmt.Errorf("shader %s: no source path provided", key)
	}
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("shader %s: failed to read source file %q: %w", key, sourcePath, err)
	}
	return NewShaderFromSource(key, shaderType, string(data), defines...)
}

// NewShaderFromSource creates a new Shader from in-memory WGSL source,
// pre-processing it with the given defines and parsing its reflection data.
// This is the constructor used for embedded shader assets.
//
// Parameters:
//   - key: a unique identifier for the shader, used for caching and lookups
//   - shaderType: the type of shader (vertex or fragment)
//   - source: the raw WGSL source code
//   - defines: conditional-compilation flags applied during pre-processing
//
// Returns:
//   - Shader: a new Shader instance with the provided configuration
//   - error: an error if the source fails pre-processing
func NewShaderFromSource(key string, shaderType ShaderType, source string, defines ...Define) (Shader, error) {
	s := &shader{
		key:                        key,
		shaderType:                 shaderType,
		bindGroupLayoutDescriptors: make(map[int]wgpu.BindGroupLayoutDescriptor),
		bindingVarNames:            make(map[int]map[int]string),
		vertexLayouts:              make(map[int][]wgpu.VertexBufferLayout),
		pp:                         NewPreProcessor(defines...),
	}
	if err := s.parseSource(source); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) VertexLayout(key int) []wgpu.VertexBufferLayout {
	return s.vertexLayouts[key]
}

func (s *shader) VertexLayouts() map[int][]wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) BindGroupLayoutDescriptor(bindingKey int) wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors[bindingKey]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) BindGroupVarName(group, binding int) string {
	if s.bindingVarNames[group] == nil {
		return ""
	}
	return s.bindingVarNames[group][binding]
}

func (s *shader) BindGroupFromVarName(group int, varName string) (int, bool) {
	if s.bindingVarNames[group] == nil {
		return -1, false
	}
	for binding, name := range s.bindingVarNames[group] {
		if name == varName {
			return binding, true
		}
	}
	return -1, false
}

func (s *shader) BindGroupVarNames() map[int]map[int]string {
	return s.bindingVarNames
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

// parseSource pre-processes the WGSL source, builds the shader module descriptor,
// parses the entry point name, and extracts layout metadata appropriate for the
// shader type. Vertex shaders get vertex buffer layouts parsed. All shader types
// get bind group layout descriptors parsed.
func (s *shader) parseSource(raw string) error {
	processed, err := s.pp.Process(raw)
	if err != nil {
		return fmt.Errorf("shader %s: failed to pre-process source: %w", s.key, err)
	}
	s.source = processed
	s.module = &wgpu.ShaderModuleDescriptor{
		Label: s.key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.source,
		},
	}
	s.entryPoint = parseEntryPoint(s.source, s.shaderType)
	if s.entryPoint == "" {
		return fmt.Errorf("shader %s: no entry point found for shader type", s.key)
	}
	if s.shaderType == ShaderTypeVertex {
		s.vertexLayouts = parseVertexLayouts(s.source)
	}
	var visibility wgpu.ShaderStage
	switch s.shaderType {
	case ShaderTypeVertex:
		visibility = wgpu.ShaderStageVertex
	case ShaderTypeFragment:
		visibility = wgpu.ShaderStageFragment
	default:
		visibility = wgpu.ShaderStageNone
	}
	s.bindGroupLayoutDescriptors, s.bindingVarNames = parseBindGroupLayouts(s.source, visibility)
	return nil
}
