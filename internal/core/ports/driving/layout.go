package driving

import "github.com/custodia-labs/neuralmap-cli/internal/core/domain"

// LayoutService drives the force layout of one loaded graph.
// Every operation other than Load and Subscribe returns domain.ErrNoGraphLoaded
// until a graph has been loaded. Operations naming an unknown node are no-ops.
type LayoutService interface {
	// Load replaces the current graph and initialises a fresh simulation.
	Load(graph *domain.NeuralGraph) error

	// Apply swaps in a rebuilt graph, keeping positions of surviving node ids.
	Apply(graph *domain.NeuralGraph) error

	// Graph returns the loaded graph.
	Graph() (*domain.NeuralGraph, error)

	// Start begins the animation loop.
	Start() error

	// Stop halts the animation loop.
	Stop() error

	// Dispose releases the simulation. It is safe to call more than once.
	Dispose()

	// PinNode fixes or releases a node at its current position.
	PinNode(id string, pinned bool) error

	// DragNode holds a node at pos.
	DragNode(id string, pos domain.Vec3) error

	// EndDrag releases a dragged node, or keeps it pinned where it was dropped.
	EndDrag(id string, keepPinned bool) error

	// Reheat raises the simulation's energy to at least alpha.
	Reheat(alpha float64) error

	// SetRadial enables or disables the radial layout around centerID.
	SetRadial(centerID string, enabled bool) error

	// FindNodeAt returns the node nearest pos within radius.
	FindNodeAt(pos domain.Vec3, radius float64) (string, bool, error)

	// Positions returns the current position of every node.
	Positions() (map[string]domain.Vec3, error)

	// State returns a snapshot of the simulation.
	State() (domain.SimulationState, error)

	// Subscribe registers callbacks for ticks and convergence.
	Subscribe(obs LayoutObserver) (unsubscribe func())
}

// LayoutObserver receives simulation events. Either field may be nil.
type LayoutObserver struct {
	OnTick func(domain.SimulationState)
	OnEnd  func()
}
