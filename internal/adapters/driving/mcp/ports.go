package mcp

import (
	"github.com/custodia-labs/neuralmap-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Graph builds and stores project graphs.
	Graph driving.GraphService

	// Layout drives the force simulation of the loaded graph.
	Layout driving.LayoutService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Graph == nil {
		return ErrMissingGraphService
	}
	if p.Layout == nil {
		return ErrMissingLayoutService
	}
	return nil
}
