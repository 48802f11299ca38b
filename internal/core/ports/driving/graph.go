package driving

import (
	"context"

	"github.com/custodia-labs/neuralmap-cli/internal/core/domain"
)

// GraphService builds and manages project graphs.
type GraphService interface {
	// Build turns files into a graph.
	// A newer Build or BuildProject call supersedes this one: the superseded
	// call returns domain.ErrBuildSuperseded and its result is discarded.
	Build(ctx context.Context, req domain.BuildRequest) (*domain.BuildResult, error)

	// BuildProject scans location with the matching file source and builds it.
	BuildProject(ctx context.Context, location string, opts ProjectOptions) (*domain.BuildResult, error)

	// Get retrieves a stored graph by ID.
	Get(ctx context.Context, id string) (*domain.NeuralGraph, error)

	// Latest retrieves the newest stored graph for a project path.
	Latest(ctx context.Context, projectPath string) (*domain.NeuralGraph, error)

	// List returns summaries of all stored graphs.
	List(ctx context.Context) ([]domain.GraphSummary, error)

	// Delete removes a stored graph.
	Delete(ctx context.Context, id string) error

	// SaveGraph stores graph, assigning an ID if it has none.
	SaveGraph(ctx context.Context, graph *domain.NeuralGraph) error

	// SavePositions stores layout positions on a graph's nodes.
	// Ids that do not belong to the graph are ignored.
	SavePositions(ctx context.Context, id string, positions map[string]domain.Vec3) error
}

// ProjectOptions tunes BuildProject.
type ProjectOptions struct {
	// ThemeID is copied onto the graph.
	ThemeID string

	// LinkedProjectName overrides the name derived from the location.
	LinkedProjectName string

	// Persist saves the built graph to the graph store.
	Persist bool
}
