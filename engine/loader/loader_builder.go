package loader

import "github.com/parallax3d/parallax/engine/renderer"

// LoaderBuilderOption is a function that configures a loader during construction.
type LoaderBuilderOption func(*loader)

// WithRenderer is an option builder that attaches a renderer so loaded mesh
// data is uploaded to the GPU. Without a renderer the loader produces
// CPU-only models, which is what the tests use.
//
// Parameters:
//   - r: the renderer to attach
//
// Returns:
//   - LoaderBuilderOption: a function that applies the renderer to the loader
func WithRenderer(r renderer.Renderer) LoaderBuilderOption {
	return func(l *loader) {
		l.renderer = r
	}
}

// WithWorkers is an option builder that sets the worker count used by
// LoadAll. Values below 1 are ignored.
//
// Parameters:
//   - workers: the concurrent load count
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker count to the loader
func WithWorkers(workers int) LoaderBuilderOption {
	return func(l *loader) {
		if workers > 0 {
			l.workers = workers
		}
	}
}
