package ports

import "github.com/aretw0/bigraph/pkg/registry"

// RenderOptions tune how a document is drawn.
type RenderOptions struct {
	// Direction is the flowchart orientation ("TD", "LR", ...). Empty means "TD".
	Direction string
	// ShowValues prints store values in their labels.
	ShowValues bool
	// ShowTypes prints store types in their labels.
	ShowTypes bool
}

// Visualizer renders a document to an artifact on disk.
type Visualizer interface {
	// Render draws state and schema into outDir/filename and returns the artifact path.
	Render(state, schema map[string]any, reg *registry.Registry, outDir, filename string, opts RenderOptions) (string, error)
}
