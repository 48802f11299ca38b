// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/neuralmap-cli/internal/core/domain"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMonitor shows the running simulation.
	ViewMonitor ViewType = iota
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMonitor:
		return "monitor"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// BuildCompleted carries the graph built for the monitored location.
type BuildCompleted struct {
	Result *domain.BuildResult
	Err    error
}

// Tick carries one simulation frame.
type Tick struct {
	State domain.SimulationState
}

// Converged signals the simulation cooled below its minimum alpha.
type Converged struct{}

// PositionsSaved signals the layout positions were written to the graph store.
type PositionsSaved struct {
	Err error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}
