package mcp

import (
	"context"
	"testing"

	"github.com/custodia-labs/neuralmap-cli/internal/core/domain"
	"github.com/custodia-labs/neuralmap-cli/internal/core/ports/driving"
)

// mockGraphService is a mock implementation of driving.GraphService.
type mockGraphService struct {
	result    *domain.BuildResult
	graph     *domain.NeuralGraph
	summaries []domain.GraphSummary
	err       error

	lastLocation string
	lastOptions  driving.ProjectOptions
	lastLatest   string
	savedGraph   *domain.NeuralGraph
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
	return m.graph, m.err
}

func (m *mockGraphService) Latest(_ context.Context, projectPath string) (*domain.NeuralGraph, error) {
	m.lastLatest = projectPath
	return m.graph, m.err
}

func (m *mockGraphService) List(_ context.Context) ([]domain.GraphSummary, error) {
	return m.summaries, m.err
}

func (m *mockGraphService) Delete(_ context.Context, _ string) error {
	return m.err
}

func (m *mockGraphService) SaveGraph(_ context.Context, graph *domain.NeuralGraph) error {
	m.savedGraph = graph
	return m.err
}

func (m *mockGraphService) SavePositions(_ context.Context, _ string, _ map[string]domain.Vec3) error {
	return m.err
}

// mockLayoutService is a mock implementation of driving.LayoutService.
// It records the last call and fails everything with ErrNoGraphLoaded
// until Load is called.
type mockLayoutService struct {
	loaded    *domain.NeuralGraph
	state     domain.SimulationState
	positions map[string]domain.Vec3
	found     string
	err       error
	calls     []string
}

func (m *mockLayoutService) record(call string) error {
	m.calls = append(m.calls, call)
	if m.err != nil {
		return m.err
	}
	if m.loaded == nil {
		return domain.ErrNoGraphLoaded
	}
	return nil
}

func (m *mockLayoutService) Load(graph *domain.NeuralGraph) error {
	m.calls = append(m.calls, "load")
	if m.err != nil {
		return m.err
	}
	m.loaded = graph
	return nil
}

func (m *mockLayoutService) Apply(graph *domain.NeuralGraph) error {
	if err := m.record("apply"); err != nil {
		return err
	}
	m.loaded = graph
	return nil
}

func (m *mockLayoutService) Graph() (*domain.NeuralGraph, error) {
	if err := m.record("graph"); err != nil {
		return nil, err
	}
	return m.loaded, nil
}

func (m *mockLayoutService) Start() error {
	if err := m.record("start"); err != nil {
		return err
	}
	m.state.IsRunning = true
	return nil
}

func (m *mockLayoutService) Stop() error {
	if err := m.record("stop"); err != nil {
		return err
	}
	m.state.IsRunning = false
	return nil
}

func (m *mockLayoutService) Dispose() { m.loaded = nil }

func (m *mockLayoutService) PinNode(id string, _ bool) error {
	return m.record("pin " + id)
}

func (m *mockLayoutService) DragNode(id string, _ domain.Vec3) error {
	return m.record("drag " + id)
}

func (m *mockLayoutService) EndDrag(id string, _ bool) error {
	return m.record("end_drag " + id)
}

func (m *mockLayoutService) Reheat(alpha float64) error {
	if err := m.record("reheat"); err != nil {
		return err
	}
	if alpha > m.state.Alpha {
		m.state.Alpha = alpha
	}
	return nil
}

func (m *mockLayoutService) SetRadial(centerID string, _ bool) error {
	return m.record("radial " + centerID)
}

func (m *mockLayoutService) FindNodeAt(_ domain.Vec3, _ float64) (string, bool, error) {
	if err := m.record("find"); err != nil {
		return "", false, err
	}
	return m.found, m.found != "", nil
}

func (m *mockLayoutService) Positions() (map[string]domain.Vec3, error) {
	if err := m.record("positions"); err != nil {
		return nil, err
	}
	return m.positions, nil
}

func (m *mockLayoutService) State() (domain.SimulationState, error) {
	if m.loaded == nil {
		return domain.SimulationState{}, domain.ErrNoGraphLoaded
	}
	return m.state, nil
}

func (m *mockLayoutService) Subscribe(_ driving.LayoutObserver) func() {
	return func() {}
}

func newTestServer(t *testing.T, graph *mockGraphService, layout *mockLayoutService) *Server {
	t.Helper()
	server, err := NewServer(&Ports{Graph: graph, Layout: layout})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return server
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
