// Package status provides the monitor's status bar.
package status

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/neuralmap-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/neuralmap-cli/internal/adapters/driving/tui/styles"
)

// State represents the simulation state for display.
type State string

const (
	StateBuilding  State = "building"
	StateRunning   State = "running"
	StatePaused    State = "paused"
	StateConverged State = "converged"
	StateError     State = "error"
)

// Bar displays simulation status and keybinding hints.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	state   State
	message string
	alpha   float64
	nodes   int
	width   int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateBuilding,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(_ tea.Msg) (*Bar, tea.Cmd) {
	// Bar is passive, updated via Set methods
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	var text string
	switch s.state {
	case StateBuilding:
		return s.styles.Muted.Render("Building graph...")
	case StateError:
		if s.message != "" {
			return s.styles.Error.Render(fmt.Sprintf("Error: %s", s.message))
		}
		return s.styles.Error.Render("Error")
	case StateRunning:
		text = s.styles.Normal.Render(fmt.Sprintf("Running  α %.4f  %d nodes", s.alpha, s.nodes))
	case StatePaused:
		text = s.styles.Warning.Render(fmt.Sprintf("Paused  α %.4f  %d nodes", s.alpha, s.nodes))
	case StateConverged:
		text = s.styles.Success.Render(fmt.Sprintf("Converged  %d nodes", s.nodes))
	}
	if s.message != "" {
		text += s.styles.Muted.Render("  " + s.message)
	}
	return text
}

func (s *Bar) renderRight() string {
	bindings := s.keymap.ShortHelp()
	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets a transient message shown after the state.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetSimulation records the latest alpha and node count.
func (s *Bar) SetSimulation(alpha float64, nodes int) {
	s.alpha = alpha
	s.nodes = nodes
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}
