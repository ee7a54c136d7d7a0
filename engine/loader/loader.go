// Package loader imports glTF/GLB model files into engine-ready models. The
// loader produces CPU-side mesh and material data and uploads mesh buffers;
// material GPU resources are created later by the style when a prop is added
// to a scene.
package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/parallax3d/parallax/common"
	"github.com/parallax3d/parallax/engine/model"
	"github.com/parallax3d/parallax/engine/renderer"
	"github.com/parallax3d/parallax/engine/renderer/bind_group_provider"
	"github.com/parallax3d/parallax/engine/renderer/material"
)

// LoaderBackendType identifies the model file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	renderer renderer.Renderer

	modelCache map[string]model.Model

	backend loaderBackend
	workers int
}

// Loader defines the public-facing interface for loading and caching 3D models.
// It abstracts the file format (glTF, GLB, etc.) behind a generic backend and
// manages a cache of previously loaded models.
type Loader interface {
	// Load imports a model file and caches the result.
	// If the model is already cached (by file path), the cached version is
	// returned. The backend is selected based on the file extension
	// (.gltf/.glb → glTF backend).
	//
	// Parameters:
	//   - path: the file path to the model file
	//
	// Returns:
	//   - model.Model: the loaded and cached model
	//   - error: error if loading fails
	Load(path string) (model.Model, error)

	// LoadAll imports several model files concurrently using a bounded worker
	// pool. Results are returned in input order. The first error aborts the
	// result, though other loads may already have been cached.
	//
	// Parameters:
	//   - paths: the file paths to load
	//
	// Returns:
	//   - []model.Model: the loaded models, index-aligned with paths
	//   - error: the first load error encountered
	LoadAll(paths []string) ([]model.Model, error)

	// LoadReader imports a model from a reader stream and caches it by the
	// given name. GLB binary and glTF JSON streams are both accepted.
	//
	// Parameters:
	//   - name: the cache key for the loaded model
	//   - r: the reader providing model data
	//
	// Returns:
	//   - model.Model: the loaded model
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader) (model.Model, error)

	// Get retrieves a cached model by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - model.Model: the cached model or nil
	Get(name string) model.Model

	// Models returns a copy of the full model cache.
	//
	// Returns:
	//   - map[string]model.Model: all cached models keyed by name
	Models() map[string]model.Model
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and
// options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeGLTF)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		modelCache: make(map[string]model.Model),
		workers:    4,
	}

	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFBackend()
	}

	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) Load(path string) (model.Model, error) {
	l.mu.RLock()
	if cached, ok := l.modelCache[path]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, err
	}

	imported, err := backend.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	m, err := l.importedToModel(imported)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.modelCache[path] = m
	l.mu.Unlock()

	return m, nil
}

func (l *loader) LoadAll(paths []string) ([]model.Model, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	// Idle workers wind down on their own after the timeout.
	pool := worker.NewDynamicWorkerPool(l.workers, len(paths), 1*time.Second)

	models := make([]model.Model, len(paths))
	errs := make([]error, len(paths))

	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		idx, p := i, path
		pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				models[idx], errs[idx] = l.Load(p)
				return nil, errs[idx]
			},
		})
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", paths[i], err)
		}
	}
	return models, nil
}

func (l *loader) LoadReader(name string, r io.Reader) (model.Model, error) {
	l.mu.RLock()
	if cached, ok := l.modelCache[name]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	imported, err := l.backend.LoadReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}
	if imported.Name == "" || imported.Name == "unnamed_model" {
		imported.Name = name
	}

	m, err := l.importedToModel(imported)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.modelCache[name] = m
	l.mu.Unlock()

	return m, nil
}

func (l *loader) Get(name string) model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.modelCache[name]
}

func (l *loader) Models() map[string]model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]model.Model, len(l.modelCache))
	for k, v := range l.modelCache {
		result[k] = v
	}
	return result
}

// resolveBackend selects an appropriate loader backend based on the file extension.
// Currently only glTF/GLB is supported.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gltf", ".glb":
		return l.backend, nil
	default:
		return nil, fmt.Errorf("unsupported model format: %s", ext)
	}
}

// importedToModel converts an ImportedModel (CPU data) into a Model
// (engine-ready). It combines all mesh vertex and index data into a single
// BindGroupProvider, uploads the data to the GPU via InitMeshBuffers when a
// Renderer is available, and wraps the imported materials into render-ready
// Materials. Material GPU resources stay uninitialized here; the style binds
// them when a prop enters a scene.
//
// Parameters:
//   - imported: the CPU-side ImportedModel containing mesh and material data
//
// Returns:
//   - model.Model: the engine-ready Model with GPU mesh resources
//   - error: error if GPU resource creation fails
func (l *loader) importedToModel(imported *model.ImportedModel) (model.Model, error) {
	// Combine all meshes into one vertex + index buffer, recording each
	// mesh's slice of the merged buffer so draws keep their own material.
	var allVertices []model.GPUVertex
	var allIndexBytes []byte
	primitives := make([]model.Primitive, 0, len(imported.Meshes))
	totalIndices := 0
	indexOffset := uint32(0)

	for _, mesh := range imported.Meshes {
		allVertices = append(allVertices, mesh.Vertices...)

		// Reindex: offset each index by the running vertex count across meshes
		adjusted := make([]uint32, len(mesh.Indices))
		for i, idx := range mesh.Indices {
			adjusted[i] = idx + indexOffset
		}
		allIndexBytes = append(allIndexBytes, common.SliceToBytes(adjusted)...)

		primitives = append(primitives, model.Primitive{
			Indices: common.IndexRange{
				First: uint32(totalIndices),
				Count: uint32(len(mesh.Indices)),
			},
			MaterialIndex: mesh.MaterialIndex,
		})
		totalIndices += len(mesh.Indices)
		indexOffset += uint32(len(mesh.Vertices))
	}
	allVertexBytes := common.SliceToBytes(allVertices)

	provider := bind_group_provider.NewBindGroupProvider(
		imported.Name + "_mesh",
	)

	// Upload to GPU if renderer is available
	if l.renderer != nil {
		if err := l.renderer.InitMeshBuffers(provider, allVertexBytes, allIndexBytes, totalIndices); err != nil {
			return nil, fmt.Errorf("failed to init mesh bind group for %q: %w", imported.Name, err)
		}
	}

	mdl := model.NewModel(
		model.WithName(imported.Name),
		model.WithImportedMaterials(imported.Materials),
		model.WithMeshProvider(provider),
		model.WithPrimitives(primitives),
		model.WithBoundingRadius(model.ComputeBoundingRadius(allVertices)),
	)
	mdl.SetVertexData(allVertexBytes)
	mdl.SetIndexData(allIndexBytes)
	mdl.SetIndexCount(totalIndices)

	// Wrap imported materials into render-ready Materials. Texture decode and
	// bind group creation happen later via the style.
	renderMats := make([]material.Material, len(imported.Materials))
	for i, imp := range imported.Materials {
		renderMats[i] = material.NewMaterialFromImported(imp)
	}
	mdl.SetRenderMaterials(renderMats)

	return mdl, nil
}
