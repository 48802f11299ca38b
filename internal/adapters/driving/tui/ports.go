// Package tui provides a terminal monitor for a running force layout.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/neuralmap-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Graph builds the monitored project and stores positions.
	Graph driving.GraphService

	// Layout runs the force simulation being monitored.
	Layout driving.LayoutService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(graph driving.GraphService, layout driving.LayoutService) *Ports {
	return &Ports{Graph: graph, Layout: layout}
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p.Graph == nil {
		return ErrMissingGraphService
	}
	if p.Layout == nil {
		return ErrMissingLayoutService
	}
	return nil
}
