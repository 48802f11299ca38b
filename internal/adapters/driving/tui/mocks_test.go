package tui

import (
	"context"

	"github.com/custodia-labs/neuralmap-cli/internal/core/domain"
	"github.com/custodia-labs/neuralmap-cli/internal/core/ports/driving"
)

// mockGraphService is a mock implementation of driving.GraphService.
type mockGraphService struct {
	result  *domain.BuildResult
	err     error
	saveErr error

	lastLocation string
	lastOptions  driving.ProjectOptions
	saved        map[string]domain.Vec3
	savedID      string
}

func (m *mockGraphService) Build(_ context.Context, _ domain.BuildRequest) (*domain.BuildResult, error) {
	return m.result, m.err
}

func (m *mockGraphService) BuildProject(
	_ context.Context,
	location string,
	opts driving.ProjectOptions,
) (*domain.BuildResult, error) {
	m.lastLocation = location
	m.lastOptions = opts
	return m.result, m.err
}

func (m *mockGraphService) Get(_ context.Context, _ string) (*domain.NeuralGraph, error) {
	return nil, domain.ErrNotFound
}

func (m *mockGraphService) Latest(_ context.Context, _ string) (*domain.NeuralGraph, error) {
	return nil, domain.ErrNotFound
}

func (m *mockGraphService) List(_ context.Context) ([]domain.GraphSummary, error) {
	return nil, nil
}

func (m *mockGraphService) Delete(_ context.Context, _ string) error {
	return nil
}

func (m *mockGraphService) SaveGraph(_ context.Context, _ *domain.NeuralGraph) error {
	return m.saveErr
}

func (m *mockGraphService) SavePositions(_ context.Context, id string, positions map[string]domain.Vec3) error {
	m.savedID = id
	m.saved = positions
	return m.saveErr
}

// mockLayoutService is a mock implementation of driving.LayoutService.
type mockLayoutService struct {
	loaded    *domain.NeuralGraph
	state     domain.SimulationState
	positions map[string]domain.Vec3
	loadErr   error
	observer  *driving.LayoutObserver

	calls        []string
	disposed     int
	unsubscribed int
}

func (m *mockLayoutService) Load(graph *domain.NeuralGraph) error {
	m.calls = append(m.calls, "load")
	if m.loadErr != nil {
		return m.loadErr
	}
	m.loaded = graph
	return nil
}

func (m *mockLayoutService) Apply(graph *domain.NeuralGraph) error {
	m.calls = append(m.calls, "apply")
	m.loaded = graph
	return nil
}

func (m *mockLayoutService) Graph() (*domain.NeuralGraph, error) {
	return m.loaded, nil
}

func (m *mockLayoutService) Start() error {
	m.calls = append(m.calls, "start")
	m.state.IsRunning = true
	return nil
}

func (m *mockLayoutService) Stop() error {
	m.calls = append(m.calls, "stop")
	m.state.IsRunning = false
	return nil
}

func (m *mockLayoutService) Dispose() { m.disposed++ }

func (m *mockLayoutService) PinNode(id string, pinned bool) error {
	if pinned {
		m.calls = append(m.calls, "pin "+id)
	} else {
		m.calls = append(m.calls, "unpin "+id)
	}
	return nil
}

func (m *mockLayoutService) DragNode(id string, _ domain.Vec3) error {
	m.calls = append(m.calls, "drag "+id)
	return nil
}

func (m *mockLayoutService) EndDrag(id string, _ bool) error {
	m.calls = append(m.calls, "end_drag "+id)
	return nil
}

func (m *mockLayoutService) Reheat(_ float64) error {
	m.calls = append(m.calls, "reheat")
	return nil
}

func (m *mockLayoutService) SetRadial(centerID string, enabled bool) error {
	if enabled {
		m.calls = append(m.calls, "radial on "+centerID)
	} else {
		m.calls = append(m.calls, "radial off "+centerID)
	}
	return nil
}

func (m *mockLayoutService) FindNodeAt(_ domain.Vec3, _ float64) (string, bool, error) {
	return "", false, nil
}

func (m *mockLayoutService) Positions() (map[string]domain.Vec3, error) {
	return m.positions, nil
}

func (m *mockLayoutService) State() (domain.SimulationState, error) {
	return m.state, nil
}

func (m *mockLayoutService) Subscribe(obs driving.LayoutObserver) func() {
	m.observer = &obs
	return func() { m.unsubscribed++ }
}

func sampleGraph() *domain.NeuralGraph {
	parent := "root-1"
	return &domain.NeuralGraph{
		ID:         "g-1",
		Title:      "shop",
		RootNodeID: "root-1",
		Nodes: []domain.NeuralNode{
			{ID: "root-1", Type: domain.NodeProject, Title: "shop"},
			{ID: "n-1", Type: domain.NodeCode, Title: "main.ts", ParentID: &parent},
		},
		Edges: []domain.NeuralEdge{
			{ID: "e-1", Source: "root-1", Target: "n-1", Type: domain.EdgeParentChild, Weight: 1},
		},
	}
}

func sampleState() domain.SimulationState {
	return domain.SimulationState{
		Alpha:     0.5,
		IsRunning: true,
		Nodes: []domain.SimNode{
			{ID: "n-1", Type: domain.NodeCode, Title: "main.ts", Importance: 0.3, X: 10},
			{ID: "root-1", Type: domain.NodeProject, Title: "shop", Importance: 1},
		},
	}
}
