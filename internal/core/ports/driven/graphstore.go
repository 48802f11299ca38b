package driven

import (
	"context"

	"github.com/custodia-labs/neuralmap-cli/internal/core/domain"
)

// GraphStore persists built graphs.
type GraphStore interface {
	// Save inserts or replaces a graph, keyed by its ID.
	Save(ctx context.Context, graph *domain.NeuralGraph) error

	// Get retrieves a graph by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.NeuralGraph, error)

	// Latest returns the most recently updated graph for a project path.
	// Returns domain.ErrNotFound if none exists.
	Latest(ctx context.Context, projectPath string) (*domain.NeuralGraph, error)

	// List returns summaries of all stored graphs, newest first.
	List(ctx context.Context) ([]domain.GraphSummary, error)

	// Delete removes a graph. Deleting a missing graph is not an error.
	Delete(ctx context.Context, id string) error
}
