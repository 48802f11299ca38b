package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/neuralmap-cli/internal/builder"
	"github.com/custodia-labs/neuralmap-cli/internal/core/domain"
	"github.com/custodia-labs/neuralmap-cli/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockExecutor implements driven.BuildExecutor for testing.
// With no execute func set it runs the real builder in-process.
type mockExecutor struct {
	mu       sync.Mutex
	execute  func(ctx context.Context, req domain.BuildRequest) (*domain.BuildResponse, error)
	requests []domain.BuildRequest
	closed   bool
}

func (m *mockExecutor) Execute(ctx context.Context, req domain.BuildRequest) (*domain.BuildResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	fn := m.execute
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, req)
	}
	resp := builder.Handle(req)
	return &resp, nil
}

func (m *mockExecutor) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockExecutor) lastRequest() domain.BuildRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[len(m.requests)-1]
}

// mockSource implements driven.FileSource for testing.
type mockSource struct {
	files   []domain.NeuralFile
	scanErr error
	name    string
}

func (m *mockSource) Type() string { return "mock" }

func (m *mockSource) Accepts(string) bool { return true }

func (m *mockSource) Scan(_ context.Context, _ string) ([]domain.NeuralFile, error) {
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	return m.files, nil
}

func (m *mockSource) ProjectName(string) string { return m.name }

// mockMetrics implements driven.BuildMetrics for testing.
type mockMetrics struct {
	mu         sync.Mutex
	builds     []error
	superseded int
	ticks      int
	lastAlpha  float64
}

func (m *mockMetrics) ObserveBuild(_ time.Duration, _ domain.BuildStats, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.builds = append(m.builds, err)
}

func (m *mockMetrics) BuildSuperseded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.superseded++
}

func (m *mockMetrics) ObserveTick(alpha float64, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticks++
	m.lastAlpha = alpha
}

func (m *mockMetrics) counts() (builds, superseded, ticks int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.builds), m.superseded, m.ticks
}

// failingGraphStore wraps a GraphStore and fails every Save.
type failingGraphStore struct {
	driven.GraphStore
}

var errSaveFailed = errors.New("disk full")

func (f failingGraphStore) Save(context.Context, *domain.NeuralGraph) error {
	return errSaveFailed
}

var (
	_ driven.BuildExecutor = (*mockExecutor)(nil)
	_ driven.FileSource    = (*mockSource)(nil)
	_ driven.BuildMetrics  = (*mockMetrics)(nil)
)

// projectFiles is a small project with one import and one shared selector.
func projectFiles() []domain.NeuralFile {
	return []domain.NeuralFile{
		{ID: "f1", Name: "main.ts", Path: "shop/src/main.ts", Type: "ts", Content: "import { cart } from './cart'\n"},
		{ID: "f2", Name: "cart.ts", Path: "shop/src/cart.ts", Type: "ts", Content: "export const cart = []\n"},
		{ID: "f3", Name: "README.md", Path: "shop/README.md", Type: "md"},
	}
}
