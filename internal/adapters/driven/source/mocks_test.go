package source

import (
	"context"
	"strings"

	"github.com/custodia-labs/neuralmap-cli/internal/core/domain"
)

// mockSource accepts locations with a fixed prefix.
type mockSource struct {
	prefix string
	files  []domain.NeuralFile
	err    error
	scans  int
}

func (m *mockSource) Type() string { return m.prefix }

func (m *mockSource) Accepts(location string) bool {
	return strings.HasPrefix(location, m.prefix)
}

func (m *mockSource) Scan(_ context.Context, _ string) ([]domain.NeuralFile, error) {
	m.scans++
	return m.files, m.err
}

func (m *mockSource) ProjectName(location string) string {
	return strings.TrimPrefix(location, m.prefix)
}
