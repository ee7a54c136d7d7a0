package loader

import (
	"io"

	"github.com/parallax3d/parallax/engine/model"
)

// loaderBackend defines the generic interface for loading models from files or streams.
// Concrete implementations (e.g., gltfBackend) handle format-specific details.
type loaderBackend interface {
	// Load performs a full model import from the given file path.
	// This extracts meshes and materials.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *model.ImportedModel: the imported model data
	//   - error: error if loading fails
	Load(path string) (*model.ImportedModel, error)

	// LoadReader imports a model from a reader stream.
	//
	// Parameters:
	//   - r: the reader providing model data
	//
	// Returns:
	//   - *model.ImportedModel: the imported model data
	//   - error: error if loading fails
	LoadReader(r io.Reader) (*model.ImportedModel, error)
}
