package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBar_Defaults(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.Equal(t, StateBuilding, bar.State())
	assert.Equal(t, 80, bar.Width())
	assert.Empty(t, bar.Message())
}

func TestBar_View(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		message string
		want    string
	}{
		{"building", StateBuilding, "", "Building graph"},
		{"running", StateRunning, "", "Running"},
		{"paused", StatePaused, "", "Paused"},
		{"converged", StateConverged, "", "Converged"},
		{"error with message", StateError, "boom", "Error: boom"},
		{"error without message", StateError, "", "Error"},
		{"running with message", StateRunning, "saved", "saved"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(120)
			bar.SetState(tt.state)
			bar.SetMessage(tt.message)
			bar.SetSimulation(0.25, 12)

			view := bar.View()

			assert.Contains(t, view, tt.want)
			assert.Contains(t, view, "quit")
		})
	}
}

func TestBar_ShowsSimulationNumbers(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(120)
	bar.SetState(StateRunning)
	bar.SetSimulation(0.1234, 42)

	view := bar.View()

	assert.Contains(t, view, "0.1234")
	assert.Contains(t, view, "42 nodes")
}

func TestBar_NarrowWidthStillRenders(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(10)

	assert.NotEmpty(t, bar.View())
}
