package simulation

import (
	"math"
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/custodia-labs/neuralmap-cli/internal/core/domain"
	"github.com/custodia-labs/neuralmap-cli/internal/core/ports/driven"
)

// Reheat amounts applied after interactive changes.
const (
	ReheatTopology = 0.3
	ReheatPin      = 0.1
	ReheatDrag     = 0.1
)

// simNode is the arena entry for one node.
type simNode struct {
	id         string
	typ        domain.NodeType
	title      string
	importance float64

	pos r3.Vec
	vel r3.Vec

	// fixed holds the node at fix each tick.
	fixed bool
	fix   r3.Vec

	// pinned survives EndDrag without keepPinned and radial toggles.
	pinned bool
}

// simLink is the arena entry for one link. source and target index into nodes.
type simLink struct {
	id       string
	typ      domain.EdgeType
	source   int
	target   int
	strength float64
	distance float64
	bias     float64
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithOnTick registers a callback invoked after every animation frame.
func WithOnTick(fn func(domain.SimulationState)) Option {
	return func(s *Simulation) { s.onTick = fn }
}

// WithOnEnd registers a callback invoked once each time the loop converges.
func WithOnEnd(fn func()) Option {
	return func(s *Simulation) { s.onEnd = fn }
}

// WithRand sets the source used for initial placement and jiggle.
func WithRand(r *rand.Rand) Option {
	return func(s *Simulation) { s.rng = r }
}

// Simulation is a force-directed layout engine for one graph.
// All methods are safe for concurrent use.
type Simulation struct {
	mu sync.Mutex

	sched  driven.FrameScheduler
	cfg    domain.SimulationConfig
	rng    *rand.Rand
	onTick func(domain.SimulationState)
	onEnd  func()

	nodes []simNode
	index map[string]int
	links []simLink
	edges []domain.NeuralEdge
	alpha float64

	// started is set by Start and cleared by Stop and Dispose.
	started bool
	// running is true while the frame loop is active.
	running  bool
	disposed bool

	// frameSeq identifies the one frame request that is still wanted.
	frameSeq    uint64
	pending     bool
	cancelFrame func()

	charge chargeForce
}

// New creates an empty simulation driven by sched.
func New(sched driven.FrameScheduler, cfg domain.SimulationConfig, opts ...Option) *Simulation {
	s := &Simulation{
		sched: sched,
		cfg:   cfg,
		index: make(map[string]int),
		alpha: cfg.InitialAlpha,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return s
}

// Init replaces the simulated graph. Stored node positions are honoured and
// pinned nodes start fixed at that position. Alpha is reset to InitialAlpha.
func (s *Simulation) Init(nodes []domain.NeuralNode, edges []domain.NeuralEdge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.nodes = s.nodes[:0]
	s.index = make(map[string]int, len(nodes))
	for i := range nodes {
		s.appendNode(&nodes[i], nil)
	}
	s.edges = append([]domain.NeuralEdge(nil), edges...)
	s.relink()
	s.anchorCenter()
	s.alpha = s.cfg.InitialAlpha
}

// Start begins the frame loop.
func (s *Simulation) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.started = true
	s.running = true
	s.schedule()
}

// Stop halts the frame loop. Alpha is kept so Start resumes where it left off.
func (s *Simulation) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = false
	s.running = false
	s.unschedule()
}

// Dispose stops the loop and releases all state. It is idempotent.
func (s *Simulation) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.started = false
	s.running = false
	s.unschedule()
	s.disposed = true
	s.nodes = nil
	s.index = nil
	s.links = nil
	s.edges = nil
	s.onTick = nil
	s.onEnd = nil
}

// Tick advances the simulation by one step without invoking callbacks.
func (s *Simulation) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.step()
}

// Alpha returns the current cooling value.
func (s *Simulation) Alpha() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alpha
}

// Converged reports whether alpha has dropped below AlphaMin.
func (s *Simulation) Converged() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alpha < s.cfg.AlphaMin
}

// Reheat raises alpha to at least a and restarts a converged loop, provided
// the simulation was started and not stopped since.
func (s *Simulation) Reheat(a float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reheat(a)
}

func (s *Simulation) reheat(a float64) {
	if s.disposed {
		return
	}
	s.alpha = math.Max(s.alpha, a)
	if s.started && !s.running {
		s.running = true
		s.schedule()
	}
}

// UpdateNodes swaps the node set. Surviving ids keep their position, velocity
// and fixed state; only new ids are placed fresh.
func (s *Simulation) UpdateNodes(nodes []domain.NeuralNode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	prev, prevIndex := s.nodes, s.index
	s.nodes = make([]simNode, 0, len(nodes))
	s.index = make(map[string]int, len(nodes))
	for i := range nodes {
		var old *simNode
		if j, ok := prevIndex[nodes[i].ID]; ok {
			old = &prev[j]
		}
		s.appendNode(&nodes[i], old)
	}
	s.relink()
	s.anchorCenter()
	s.reheat(ReheatTopology)
}

// UpdateEdges replaces the link set wholesale.
func (s *Simulation) UpdateEdges(edges []domain.NeuralEdge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.edges = append([]domain.NeuralEdge(nil), edges...)
	s.relink()
	s.reheat(ReheatTopology)
}

// PinNode fixes a node at its current position, or releases it.
// Unknown ids are ignored.
func (s *Simulation) PinNode(id string, pinned bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.node(id)
	if n == nil {
		return
	}
	n.pinned = pinned
	if pinned {
		n.fixed, n.fix = true, n.pos
	} else if !s.isCenter(id) {
		n.fixed = false
	}
	s.reheat(ReheatPin)
}

// DragNode holds a node at pos until EndDrag. Unknown ids are ignored.
func (s *Simulation) DragNode(id string, pos domain.Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.node(id)
	if n == nil {
		return
	}
	p := toVec(pos)
	n.fixed, n.fix, n.pos, n.vel = true, p, p, r3.Vec{}
	s.reheat(ReheatDrag)
}

// EndDrag releases a dragged node. With keepPinned the drop position becomes
// its pinned position; a node that was not being dragged is pinned where it
// is. Unknown ids are ignored.
func (s *Simulation) EndDrag(id string, keepPinned bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.node(id)
	if n == nil {
		return
	}
	switch {
	case keepPinned:
		if !n.fixed {
			n.fixed, n.fix, n.vel = true, n.pos, r3.Vec{}
		}
		n.pinned = true
	case s.isCenter(id):
		n.pinned = false
		n.fix = r3.Vec{}
	default:
		n.pinned = false
		n.fixed = false
	}
}

// SetRadial turns the radial layout on around centerID, or off.
// Enabling with an unknown id only records the setting.
func (s *Simulation) SetRadial(centerID string, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	if prev := s.node(s.cfg.CenterNodeID); prev != nil && !prev.pinned {
		prev.fixed = false
	}
	s.cfg.CenterNodeID = centerID
	s.cfg.RadialLayout = enabled
	s.anchorCenter()
	s.reheat(ReheatTopology)
}

// FindNodeAt returns the id of the node nearest pos, if it lies within radius.
// A non-positive radius accepts any distance.
func (s *Simulation) FindNodeAt(pos domain.Vec3, radius float64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, d2, ok := nearest(s.nodes, toVec(pos))
	if !ok || (radius > 0 && d2 > radius*radius) {
		return "", false
	}
	return s.nodes[i].id, true
}

// Positions returns the current position of every node.
func (s *Simulation) Positions() map[string]domain.Vec3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]domain.Vec3, len(s.nodes))
	for i := range s.nodes {
		out[s.nodes[i].id] = fromVec(s.nodes[i].pos)
	}
	return out
}

// State returns a snapshot of nodes, links and alpha.
func (s *Simulation) State() domain.SimulationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(s.running)
}

// schedule requests the next frame unless one is already pending. Callers hold mu.
func (s *Simulation) schedule() {
	if s.pending {
		return
	}
	s.pending = true
	s.frameSeq++
	seq := s.frameSeq
	s.cancelFrame = s.sched.RequestFrame(func() { s.frame(seq) })
}

// unschedule drops any pending frame. Callers hold mu.
func (s *Simulation) unschedule() {
	if s.cancelFrame != nil {
		s.cancelFrame()
	}
	s.cancelFrame = nil
	s.pending = false
	s.frameSeq++
}

// frame is one iteration of the animation loop.
func (s *Simulation) frame(seq uint64) {
	s.mu.Lock()
	if seq != s.frameSeq || !s.running || s.disposed {
		s.mu.Unlock()
		return
	}
	s.pending = false
	s.cancelFrame = nil

	s.step()
	done := s.alpha < s.cfg.AlphaMin
	if done {
		s.running = false
	}
	state := s.snapshot(!done)
	onTick, onEnd := s.onTick, s.onEnd
	s.mu.Unlock()

	if onTick != nil {
		onTick(state)
	}
	if done {
		if onEnd != nil {
			onEnd()
		}
		return
	}

	s.mu.Lock()
	if s.running && !s.disposed {
		s.schedule()
	}
	s.mu.Unlock()
}

// appendNode adds n to the arena, carrying state over from old when it survives.
func (s *Simulation) appendNode(n *domain.NeuralNode, old *simNode) {
	sn := simNode{id: n.ID, typ: n.Type, title: n.Title, importance: n.Importance}
	switch {
	case old != nil:
		sn.pos, sn.vel = old.pos, old.vel
		sn.fixed, sn.fix, sn.pinned = old.fixed, old.fix, old.pinned
	default:
		if n.Position != nil {
			sn.pos = toVec(*n.Position)
		} else {
			sn.pos = s.randomPosition()
		}
		if n.Pinned {
			sn.fixed, sn.fix, sn.pinned = true, sn.pos, true
		}
	}
	s.index[n.ID] = len(s.nodes)
	s.nodes = append(s.nodes, sn)
}

// relink rebuilds links from the stored edges against the current node index.
// Edges naming unknown nodes and self-loops are skipped.
func (s *Simulation) relink() {
	s.links = s.links[:0]
	count := make([]int, len(s.nodes))
	for _, e := range s.edges {
		si, ok1 := s.index[e.Source]
		ti, ok2 := s.index[e.Target]
		if !ok1 || !ok2 || si == ti {
			continue
		}
		weight := e.Weight
		if weight <= 0 {
			weight = 1
		}
		avg := (s.nodes[si].importance + s.nodes[ti].importance) / 2
		s.links = append(s.links, simLink{
			id:       e.ID,
			typ:      e.Type,
			source:   si,
			target:   ti,
			strength: weight * s.cfg.LinkStrength,
			distance: s.cfg.LinkDistance / (1 + avg/10),
		})
		count[si]++
		count[ti]++
	}
	for i := range s.links {
		l := &s.links[i]
		l.bias = float64(count[l.source]) / float64(count[l.source]+count[l.target])
	}
}

// anchorCenter fixes the radial center node at the origin when radial layout is on.
func (s *Simulation) anchorCenter() {
	if !s.cfg.RadialLayout {
		return
	}
	if n := s.node(s.cfg.CenterNodeID); n != nil {
		n.fixed, n.fix = true, r3.Vec{}
	}
}

func (s *Simulation) isCenter(id string) bool {
	return s.cfg.RadialLayout && id == s.cfg.CenterNodeID
}

func (s *Simulation) node(id string) *simNode {
	if id == "" {
		return nil
	}
	i, ok := s.index[id]
	if !ok {
		return nil
	}
	return &s.nodes[i]
}

func (s *Simulation) randomPosition() r3.Vec {
	spread := s.cfg.InitialSpread
	return r3.Vec{
		X: (s.rng.Float64()*2 - 1) * spread,
		Y: (s.rng.Float64()*2 - 1) * spread,
		Z: (s.rng.Float64()*2 - 1) * spread,
	}
}

// jiggle returns a tiny random offset used to separate coincident points.
func (s *Simulation) jiggle() float64 {
	return (s.rng.Float64() - 0.5) * 1e-6
}

func (s *Simulation) snapshot(running bool) domain.SimulationState {
	state := domain.SimulationState{
		Nodes:     make([]domain.SimNode, len(s.nodes)),
		Links:     make([]domain.SimLink, len(s.links)),
		Alpha:     s.alpha,
		IsRunning: running,
	}
	for i := range s.nodes {
		n := &s.nodes[i]
		sn := domain.SimNode{
			ID: n.id, Type: n.typ, Title: n.title, Importance: n.importance,
			X: n.pos.X, Y: n.pos.Y, Z: n.pos.Z,
			VX: n.vel.X, VY: n.vel.Y, VZ: n.vel.Z,
		}
		if n.fixed {
			fx, fy, fz := n.fix.X, n.fix.Y, n.fix.Z
			sn.FX, sn.FY, sn.FZ = &fx, &fy, &fz
		}
		state.Nodes[i] = sn
	}
	for i, l := range s.links {
		state.Links[i] = domain.SimLink{
			ID:       l.id,
			Source:   s.nodes[l.source].id,
			Target:   s.nodes[l.target].id,
			Type:     l.typ,
			Strength: l.strength,
			Distance: l.distance,
		}
	}
	return state
}

func toVec(v domain.Vec3) r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

func fromVec(v r3.Vec) domain.Vec3 {
	return domain.Vec3{X: v.X, Y: v.Y, Z: v.Z}
}
