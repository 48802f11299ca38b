package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/neuralmap-cli/internal/core/domain"
	"github.com/custodia-labs/neuralmap-cli/internal/core/ports/driven"
	"github.com/custodia-labs/neuralmap-cli/internal/core/ports/driving"
	"github.com/custodia-labs/neuralmap-cli/internal/logger"
)

// Ensure GraphService implements the interface.
var _ driving.GraphService = (*GraphService)(nil)

// GraphService builds graphs through a BuildExecutor and keeps them in a GraphStore.
// Builds follow latest-wins semantics: each Build cancels the wait of the
// previous one, whose result is then discarded.
type GraphService struct {
	executor driven.BuildExecutor
	sources  driven.FileSource
	store    driven.GraphStore
	metrics  driven.BuildMetrics
	userID   string
	now      func() time.Time
	newID    func() string

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// GraphOption configures a GraphService.
type GraphOption func(*GraphService)

// WithUserID sets the user stamped on builds that do not name one.
func WithUserID(id string) GraphOption {
	return func(s *GraphService) { s.userID = id }
}

// WithClock overrides the time source used for UpdatedAt stamps.
func WithClock(now func() time.Time) GraphOption {
	return func(s *GraphService) { s.now = now }
}

// WithGraphIDs overrides how graph ids are generated.
func WithGraphIDs(newID func() string) GraphOption {
	return func(s *GraphService) { s.newID = newID }
}

// NewGraphService creates a graph service.
// sources and store may be nil, in which case BuildProject and the
// persistence operations are unavailable. A nil metrics records nothing.
func NewGraphService(
	executor driven.BuildExecutor,
	sources driven.FileSource,
	store driven.GraphStore,
	metrics driven.BuildMetrics,
	opts ...GraphOption,
) *GraphService {
	s := &GraphService{
		executor: executor,
		sources:  sources,
		store:    store,
		metrics:  metrics,
		userID:   domain.DefaultSettings().Builder.UserID,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = nopMetrics{}
	}
	return s
}

// Build submits req to the executor and returns the built graph.
func (s *GraphService) Build(ctx context.Context, req domain.BuildRequest) (*domain.BuildResult, error) {
	if err := validateStruct(req); err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	if req.UserID == "" {
		req.UserID = s.userID
	}

	buildCtx, gen := s.begin(ctx)
	defer s.end(gen)

	logger.Debugw("build submitted", "files", len(req.Files), "project", req.ProjectPath, "generation", gen)
	start := time.Now()
	resp, err := s.executor.Execute(buildCtx, req)
	elapsed := time.Since(start)

	if s.superseded(gen) {
		s.metrics.BuildSuperseded()
		logger.Debugw("build superseded", "generation", gen)
		return nil, domain.ErrBuildSuperseded
	}
	if err != nil {
		s.metrics.ObserveBuild(elapsed, domain.BuildStats{}, err)
		return nil, fmt.Errorf("build: %w", err)
	}
	if !resp.Success || resp.Graph == nil {
		err := fmt.Errorf("%w: %s", domain.ErrBuildFailed, resp.Error)
		s.metrics.ObserveBuild(elapsed, domain.BuildStats{}, err)
		return nil, err
	}

	var stats domain.BuildStats
	if resp.Stats != nil {
		stats = *resp.Stats
	}
	graph := resp.Graph
	if graph.ID == "" {
		graph.ID = s.newID()
	}
	graph.ProjectPath = req.ProjectPath
	s.metrics.ObserveBuild(elapsed, stats, nil)

	logger.Infow("graph built",
		"id", graph.ID,
		"nodes", stats.NodeCount,
		"edges", stats.EdgeCount,
		"elapsed_ms", stats.Elapsed,
	)
	return &domain.BuildResult{Graph: graph, Stats: stats}, nil
}

// BuildProject scans location and builds the files it yields.
func (s *GraphService) BuildProject(ctx context.Context, location string, opts driving.ProjectOptions) (*domain.BuildResult, error) {
	if s.sources == nil {
		return nil, fmt.Errorf("build project: %w", domain.ErrUnsupportedSource)
	}
	logger.Section("Scan")
	files, err := s.sources.Scan(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", location, err)
	}
	logger.Debugw("scan complete", "location", location, "files", len(files))

	linked := opts.LinkedProjectName
	if linked == "" {
		linked = s.sources.ProjectName(location)
	}
	result, err := s.Build(ctx, domain.BuildRequest{
		Files:             files,
		ThemeID:           opts.ThemeID,
		ProjectPath:       location,
		LinkedProjectName: linked,
	})
	if err != nil {
		return nil, err
	}

	if opts.Persist && s.store != nil {
		if err := s.store.Save(ctx, result.Graph); err != nil {
			logger.Warnw("graph not saved", "id", result.Graph.ID, "error", err)
		}
	}
	return result, nil
}

// Get retrieves a stored graph by ID.
func (s *GraphService) Get(ctx context.Context, id string) (*domain.NeuralGraph, error) {
	if s.store == nil {
		return nil, domain.ErrNotFound
	}
	return s.store.Get(ctx, id)
}

// Latest retrieves the newest stored graph for projectPath.
func (s *GraphService) Latest(ctx context.Context, projectPath string) (*domain.NeuralGraph, error) {
	if s.store == nil {
		return nil, domain.ErrNotFound
	}
	return s.store.Latest(ctx, projectPath)
}

// List returns summaries of all stored graphs.
func (s *GraphService) List(ctx context.Context) ([]domain.GraphSummary, error) {
	if s.store == nil {
		return []domain.GraphSummary{}, nil
	}
	return s.store.List(ctx)
}

// Delete removes a stored graph.
func (s *GraphService) Delete(ctx context.Context, id string) error {
	if s.store == nil {
		return nil
	}
	return s.store.Delete(ctx, id)
}

// SaveGraph stores graph, assigning an ID if it has none.
func (s *GraphService) SaveGraph(ctx context.Context, graph *domain.NeuralGraph) error {
	if graph == nil {
		return fmt.Errorf("save graph: %w", domain.ErrInvalidInput)
	}
	if s.store == nil {
		return fmt.Errorf("save graph: no graph store: %w", domain.ErrNotFound)
	}
	now := s.now().UTC()
	if graph.ID == "" {
		graph.ID = s.newID()
	}
	if graph.CreatedAt.IsZero() {
		graph.CreatedAt = now
	}
	graph.UpdatedAt = now
	if err := s.store.Save(ctx, graph); err != nil {
		return fmt.Errorf("save graph: %w", err)
	}
	logger.Debugw("graph saved", "id", graph.ID, "nodes", len(graph.Nodes))
	return nil
}

// SavePositions writes layout positions onto the stored graph's nodes.
func (s *GraphService) SavePositions(ctx context.Context, id string, positions map[string]domain.Vec3) error {
	if s.store == nil {
		return domain.ErrNotFound
	}
	graph, err := s.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("load graph: %w", err)
	}
	updated := 0
	for i := range graph.Nodes {
		p, ok := positions[graph.Nodes[i].ID]
		if !ok {
			continue
		}
		graph.Nodes[i].Position = &p
		updated++
	}
	graph.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, graph); err != nil {
		return fmt.Errorf("save positions: %w", err)
	}
	logger.Debugw("positions saved", "id", id, "nodes", updated)
	return nil
}

// begin starts a new build generation and cancels the previous one's wait.
func (s *GraphService) begin(ctx context.Context) (context.Context, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	buildCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	return buildCtx, s.gen
}

// end releases the generation's context if it is still the current one.
func (s *GraphService) end(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == gen && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *GraphService) superseded(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen != gen
}

type nopMetrics struct{}

func (nopMetrics) ObserveBuild(time.Duration, domain.BuildStats, error) {}
func (nopMetrics) BuildSuperseded()                                     {}
func (nopMetrics) ObserveTick(float64, int)                             {}
