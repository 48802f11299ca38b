package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/neuralmap-cli/internal/core/domain"
	"github.com/custodia-labs/neuralmap-cli/internal/core/ports/driven"
)

// Ensure GraphStore implements the interface.
var _ driven.GraphStore = (*GraphStore)(nil)

type storedGraph struct {
	document    []byte
	projectPath string
	summary     domain.GraphSummary
	seq         int
}

// GraphStore is an in-memory implementation of driven.GraphStore.
// Graphs are held as encoded documents so callers never share node slices.
type GraphStore struct {
	mu     sync.RWMutex
	graphs map[string]storedGraph
	seq    int
}

// NewGraphStore creates a new in-memory graph store.
func NewGraphStore() *GraphStore {
	return &GraphStore{
		graphs: make(map[string]storedGraph),
	}
}

// Save stores or replaces a graph.
func (s *GraphStore) Save(_ context.Context, graph *domain.NeuralGraph) error {
	if graph == nil || graph.ID == "" {
		return fmt.Errorf("saving graph without id: %w", domain.ErrInvalidInput)
	}
	document, err := json.Marshal(graph)
	if err != nil {
		return fmt.Errorf("marshalling graph: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := graph.CreatedAt
	if prev, ok := s.graphs[graph.ID]; ok {
		createdAt = prev.summary.CreatedAt
	}
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	updatedAt := graph.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	s.seq++
	s.graphs[graph.ID] = storedGraph{
		document:    document,
		projectPath: graph.ProjectPath,
		seq:         s.seq,
		summary: domain.GraphSummary{
			ID:          graph.ID,
			Title:       graph.Title,
			ProjectPath: graph.ProjectPath,
			NodeCount:   len(graph.Nodes),
			EdgeCount:   len(graph.Edges),
			CreatedAt:   createdAt,
			UpdatedAt:   updatedAt,
		},
	}
	return nil
}

// Get retrieves a graph by ID.
func (s *GraphStore) Get(_ context.Context, id string) (*domain.NeuralGraph, error) {
	s.mu.RLock()
	stored, ok := s.graphs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return decode(stored)
}

// Latest returns the most recently updated graph for projectPath.
func (s *GraphStore) Latest(_ context.Context, projectPath string) (*domain.NeuralGraph, error) {
	s.mu.RLock()
	var (
		best  storedGraph
		found bool
	)
	for _, g := range s.graphs {
		if g.projectPath != projectPath {
			continue
		}
		if !found || newer(g, best) {
			best, found = g, true
		}
	}
	s.mu.RUnlock()

	if !found {
		return nil, domain.ErrNotFound
	}
	return decode(best)
}

// List returns summaries of all graphs, newest first.
func (s *GraphStore) List(_ context.Context) ([]domain.GraphSummary, error) {
	s.mu.RLock()
	all := make([]storedGraph, 0, len(s.graphs))
	for _, g := range s.graphs {
		all = append(all, g)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return newer(all[i], all[j]) })
	result := make([]domain.GraphSummary, len(all))
	for i, g := range all {
		result[i] = g.summary
	}
	return result, nil
}

// Delete removes a graph.
func (s *GraphStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.graphs, id)
	return nil
}

// newer orders by update time, then by save order.
func newer(a, b storedGraph) bool {
	if !a.summary.UpdatedAt.Equal(b.summary.UpdatedAt) {
		return a.summary.UpdatedAt.After(b.summary.UpdatedAt)
	}
	return a.seq > b.seq
}

func decode(stored storedGraph) (*domain.NeuralGraph, error) {
	var graph domain.NeuralGraph
	if err := json.Unmarshal(stored.document, &graph); err != nil {
		return nil, fmt.Errorf("unmarshalling graph: %w", err)
	}
	graph.ProjectPath = stored.projectPath
	return &graph, nil
}
