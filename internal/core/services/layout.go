package services

import (
	"math/rand/v2"
	"sync"

	"github.com/custodia-labs/neuralmap-cli/internal/core/domain"
	"github.com/custodia-labs/neuralmap-cli/internal/core/ports/driven"
	"github.com/custodia-labs/neuralmap-cli/internal/core/ports/driving"
	"github.com/custodia-labs/neuralmap-cli/internal/logger"
	"github.com/custodia-labs/neuralmap-cli/internal/simulation"
)

// Ensure LayoutSession implements the interface.
var _ driving.LayoutService = (*LayoutSession)(nil)

// RootAlias names the graph's root node wherever a node id is expected.
const RootAlias = "root"

// LayoutSession owns the force simulation of one loaded graph.
type LayoutSession struct {
	sched   driven.FrameScheduler
	cfg     domain.SimulationConfig
	metrics driven.BuildMetrics
	rng     *rand.Rand

	mu    sync.Mutex
	sim   *simulation.Simulation
	graph *domain.NeuralGraph
	ids   map[string]struct{}

	obsMu     sync.RWMutex
	observers map[uint64]driving.LayoutObserver
	nextObs   uint64
}

// LayoutOption configures a LayoutSession.
type LayoutOption func(*LayoutSession)

// WithLayoutMetrics records every simulation frame.
func WithLayoutMetrics(m driven.BuildMetrics) LayoutOption {
	return func(s *LayoutSession) { s.metrics = m }
}

// WithLayoutRand seeds initial node placement.
func WithLayoutRand(r *rand.Rand) LayoutOption {
	return func(s *LayoutSession) { s.rng = r }
}

// NewLayoutSession creates a session whose simulations run on sched.
func NewLayoutSession(sched driven.FrameScheduler, cfg domain.SimulationConfig, opts ...LayoutOption) *LayoutSession {
	s := &LayoutSession{
		sched:     sched,
		cfg:       cfg,
		metrics:   nopMetrics{},
		observers: make(map[uint64]driving.LayoutObserver),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load disposes any running simulation and starts a fresh one for graph.
func (s *LayoutSession) Load(graph *domain.NeuralGraph) error {
	if graph == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sim != nil {
		s.sim.Dispose()
	}
	cfg := s.cfg
	if cfg.RadialLayout {
		cfg.CenterNodeID = resolveNode(graph, cfg.CenterNodeID)
	}

	opts := []simulation.Option{
		simulation.WithOnTick(s.emitTick),
		simulation.WithOnEnd(s.emitEnd),
	}
	if s.rng != nil {
		opts = append(opts, simulation.WithRand(s.rng))
	}
	s.sim = simulation.New(s.sched, cfg, opts...)
	s.sim.Init(graph.Nodes, graph.Edges)
	s.setGraph(graph)

	logger.Debugw("graph loaded", "id", graph.ID, "nodes", len(graph.Nodes), "edges", len(graph.Edges), "radial", cfg.RadialLayout)
	return nil
}

// Apply swaps in a rebuilt graph. Nodes that match a loaded node by type and
// path keep the loaded node's id, so the simulation carries their positions.
func (s *LayoutSession) Apply(graph *domain.NeuralGraph) error {
	if graph == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sim == nil {
		return domain.ErrNoGraphLoaded
	}

	kept := carryIDs(s.graph, graph)
	s.sim.UpdateNodes(graph.Nodes)
	s.sim.UpdateEdges(graph.Edges)
	s.setGraph(graph)

	logger.Debugw("graph applied", "id", graph.ID, "nodes", len(graph.Nodes), "kept", kept)
	return nil
}

// Graph returns a copy of the loaded graph with current positions stored on its nodes.
func (s *LayoutSession) Graph() (*domain.NeuralGraph, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sim == nil {
		return nil, domain.ErrNoGraphLoaded
	}
	positions := s.sim.Positions()
	out := *s.graph
	out.Nodes = make([]domain.NeuralNode, len(s.graph.Nodes))
	copy(out.Nodes, s.graph.Nodes)
	for i := range out.Nodes {
		if p, ok := positions[out.Nodes[i].ID]; ok {
			out.Nodes[i].Position = &p
		}
	}
	return &out, nil
}

// Start begins the animation loop.
func (s *LayoutSession) Start() error {
	sim, err := s.current()
	if err != nil {
		return err
	}
	sim.Start()
	return nil
}

// Stop halts the animation loop.
func (s *LayoutSession) Stop() error {
	sim, err := s.current()
	if err != nil {
		return err
	}
	sim.Stop()
	return nil
}

// Dispose releases the simulation and forgets the loaded graph.
func (s *LayoutSession) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sim != nil {
		s.sim.Dispose()
	}
	s.sim = nil
	s.graph = nil
	s.ids = nil
}

// PinNode fixes or releases a node.
func (s *LayoutSession) PinNode(id string, pinned bool) error {
	sim, id, err := s.target("pin", id)
	if err != nil || sim == nil {
		return err
	}
	sim.PinNode(id, pinned)
	return nil
}

// DragNode holds a node at pos.
func (s *LayoutSession) DragNode(id string, pos domain.Vec3) error {
	sim, id, err := s.target("drag", id)
	if err != nil || sim == nil {
		return err
	}
	sim.DragNode(id, pos)
	return nil
}

// EndDrag releases a dragged node.
func (s *LayoutSession) EndDrag(id string, keepPinned bool) error {
	sim, id, err := s.target("end drag", id)
	if err != nil || sim == nil {
		return err
	}
	sim.EndDrag(id, keepPinned)
	return nil
}

// Reheat raises alpha to at least alpha.
func (s *LayoutSession) Reheat(alpha float64) error {
	sim, err := s.current()
	if err != nil {
		return err
	}
	sim.Reheat(alpha)
	return nil
}

// SetRadial toggles the radial layout. centerID may be RootAlias.
func (s *LayoutSession) SetRadial(centerID string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sim == nil {
		return domain.ErrNoGraphLoaded
	}
	centerID = resolveNode(s.graph, centerID)
	if _, ok := s.ids[centerID]; enabled && !ok {
		logger.Debugw("radial center not in graph", "id", centerID)
	}
	s.sim.SetRadial(centerID, enabled)
	return nil
}

// FindNodeAt returns the node nearest pos within radius.
func (s *LayoutSession) FindNodeAt(pos domain.Vec3, radius float64) (string, bool, error) {
	sim, err := s.current()
	if err != nil {
		return "", false, err
	}
	id, ok := sim.FindNodeAt(pos, radius)
	return id, ok, nil
}

// Positions returns the current position of every node.
func (s *LayoutSession) Positions() (map[string]domain.Vec3, error) {
	sim, err := s.current()
	if err != nil {
		return nil, err
	}
	return sim.Positions(), nil
}

// State returns a snapshot of the simulation.
func (s *LayoutSession) State() (domain.SimulationState, error) {
	sim, err := s.current()
	if err != nil {
		return domain.SimulationState{}, err
	}
	return sim.State(), nil
}

// Subscribe registers obs for tick and end events.
func (s *LayoutSession) Subscribe(obs driving.LayoutObserver) func() {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = obs
	var once sync.Once
	return func() {
		once.Do(func() {
			s.obsMu.Lock()
			delete(s.observers, id)
			s.obsMu.Unlock()
		})
	}
}

func (s *LayoutSession) current() (*simulation.Simulation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sim == nil {
		return nil, domain.ErrNoGraphLoaded
	}
	return s.sim, nil
}

// target resolves id for a node operation. A nil simulation with a nil error
// means the id is unknown and the operation is skipped.
func (s *LayoutSession) target(op, id string) (*simulation.Simulation, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sim == nil {
		return nil, "", domain.ErrNoGraphLoaded
	}
	id = resolveNode(s.graph, id)
	if _, ok := s.ids[id]; !ok {
		logger.Debugw("unknown node skipped", "op", op, "id", id)
		return nil, id, nil
	}
	return s.sim, id, nil
}

func (s *LayoutSession) setGraph(graph *domain.NeuralGraph) {
	s.graph = graph
	s.ids = make(map[string]struct{}, len(graph.Nodes))
	for i := range graph.Nodes {
		s.ids[graph.Nodes[i].ID] = struct{}{}
	}
}

func (s *LayoutSession) emitTick(state domain.SimulationState) {
	s.metrics.ObserveTick(state.Alpha, len(state.Nodes))
	for _, obs := range s.snapshotObservers() {
		if obs.OnTick != nil {
			obs.OnTick(state)
		}
	}
}

func (s *LayoutSession) emitEnd() {
	for _, obs := range s.snapshotObservers() {
		if obs.OnEnd != nil {
			obs.OnEnd()
		}
	}
}

func (s *LayoutSession) snapshotObservers() []driving.LayoutObserver {
	s.obsMu.RLock()
	defer s.obsMu.RUnlock()
	out := make([]driving.LayoutObserver, 0, len(s.observers))
	for id := uint64(0); id < s.nextObs; id++ {
		if obs, ok := s.observers[id]; ok {
			out = append(out, obs)
		}
	}
	return out
}

// resolveNode maps RootAlias and the empty id to the graph's root.
func resolveNode(graph *domain.NeuralGraph, id string) string {
	if (id == RootAlias || id == "") && graph != nil {
		return graph.RootNodeID
	}
	return id
}

// nodeKey identifies a node across rebuilds. The project root is unique by
// type; folders and files are keyed by their path, which builds store in Summary.
func nodeKey(n *domain.NeuralNode) string {
	if n.Type == domain.NodeProject {
		return string(n.Type)
	}
	return string(n.Type) + "\x00" + n.Summary
}

// carryIDs rewrites next in place so nodes matching a node of prev reuse its
// id. Edge endpoints, parent ids and view state follow. It returns the number
// of nodes that kept an id.
func carryIDs(prev, next *domain.NeuralGraph) int {
	if prev == nil {
		return 0
	}
	pool := make(map[string][]string, len(prev.Nodes))
	for i := range prev.Nodes {
		k := nodeKey(&prev.Nodes[i])
		pool[k] = append(pool[k], prev.Nodes[i].ID)
	}

	rename := make(map[string]string)
	for i := range next.Nodes {
		k := nodeKey(&next.Nodes[i])
		ids := pool[k]
		if len(ids) == 0 {
			continue
		}
		rename[next.Nodes[i].ID] = ids[0]
		pool[k] = ids[1:]
	}
	if len(rename) == 0 {
		return 0
	}

	swap := func(id string) string {
		if to, ok := rename[id]; ok {
			return to
		}
		return id
	}
	for i := range next.Nodes {
		n := &next.Nodes[i]
		n.ID = swap(n.ID)
		if n.ParentID != nil {
			parent := swap(*n.ParentID)
			n.ParentID = &parent
		}
	}
	for i := range next.Edges {
		next.Edges[i].Source = swap(next.Edges[i].Source)
		next.Edges[i].Target = swap(next.Edges[i].Target)
	}
	next.RootNodeID = swap(next.RootNodeID)
	vs := &next.ViewState
	for _, list := range [][]string{vs.ExpandedNodeIDs, vs.PinnedNodeIDs, vs.SelectedNodeIDs} {
		for i := range list {
			list[i] = swap(list[i])
		}
	}
	return len(rename)
}
