package driven

import (
	"context"

	"github.com/custodia-labs/neuralmap-cli/internal/core/domain"
)

// FileSource produces project files for the graph builder.
// Each source type (filesystem, github) implements this interface.
type FileSource interface {
	// Type returns the source type identifier.
	Type() string

	// Accepts reports whether the location is handled by this source.
	Accepts(location string) bool

	// Scan lists the files at location with normalised paths and, where
	// available, their text content.
	Scan(ctx context.Context, location string) ([]domain.NeuralFile, error)

	// ProjectName returns the project name implied by location.
	ProjectName(location string) string
}

// ChangeWatcher signals when files at a location change.
type ChangeWatcher interface {
	// Watch emits one value per debounced batch of changes until ctx is done.
	Watch(ctx context.Context, location string) (<-chan struct{}, error)
}
