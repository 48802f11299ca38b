package tui

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/neuralmap-cli/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/neuralmap-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/neuralmap-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/neuralmap-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/neuralmap-cli/internal/core/domain"
	"github.com/custodia-labs/neuralmap-cli/internal/core/ports/driving"
)

const (
	reheatAlpha = 0.3
	eventBuffer = 16
	minRows     = 5
)

// App is the monitor application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// location is the project being monitored.
	location string

	// preloaded skips the build when set.
	preloaded *domain.NeuralGraph

	alphaMin float64

	styles    *styles.Styles
	keymap    *keymap.KeyMap
	progress  progress.Model
	table     table.Model
	statusBar *status.Bar

	// events carries simulation callbacks into the program loop.
	events      chan tea.Msg
	unsubscribe func()

	graph  *domain.NeuralGraph
	state  domain.SimulationState
	rowIDs []string
	pinned map[string]bool
	radial bool

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has received its first window size.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// Option configures an App.
type Option func(*App)

// WithGraph monitors graph instead of building location.
func WithGraph(graph *domain.NeuralGraph) Option {
	return func(a *App) { a.preloaded = graph }
}

// WithAlphaMin sets the alpha at which the progress bar is full.
func WithAlphaMin(alphaMin float64) Option {
	return func(a *App) { a.alphaMin = alphaMin }
}

// NewApp creates a monitor for the project at location.
func NewApp(ports *Ports, location string, opts ...Option) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	tbl := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(minRows),
	)
	tbl.SetStyles(s.Table)

	a := &App{
		ports:       ports,
		ctx:         context.Background(),
		location:    location,
		alphaMin:    domain.DefaultSimulationConfig().AlphaMin,
		styles:      s,
		keymap:      km,
		progress:    progress.New(progress.WithDefaultGradient()),
		table:       tbl,
		statusBar:   status.NewBar(s, km),
		events:      make(chan tea.Msg, eventBuffer),
		pinned:      make(map[string]bool),
		currentView: messages.ViewMonitor,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("neuralmap - "+a.location),
		a.buildCmd(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.BuildCompleted:
		return a, a.handleBuild(msg)

	case messages.Tick:
		a.applyTick(msg.State)
		return a, a.waitForEvent()

	case messages.Converged:
		a.state.IsRunning = false
		a.statusBar.SetState(status.StateConverged)
		return a, a.waitForEvent()

	case messages.PositionsSaved:
		if msg.Err != nil {
			a.statusBar.SetMessage("save failed: " + msg.Err.Error())
		} else {
			a.statusBar.SetMessage("positions saved")
		}
		return a, nil

	case messages.ErrorOccurred:
		a.fail(msg.Err)
		return a, nil
	}
	return a, nil
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}
	if a.currentView == messages.ViewHelp {
		return a.helpView()
	}

	var b strings.Builder
	b.WriteString(a.styles.Title.Render("neuralmap"))
	b.WriteString("  ")
	b.WriteString(a.styles.Muted.Render(a.location))
	b.WriteString("\n")
	if a.graph != nil {
		b.WriteString(a.summaryLine())
		b.WriteString("\n\n")
		b.WriteString(a.progress.ViewAs(convergence(a.state.Alpha, a.alphaMin)))
		b.WriteString("\n\n")
		b.WriteString(a.table.View())
		b.WriteString("\n")
	}
	if a.err != nil {
		b.WriteString(a.styles.Error.Render(a.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(a.statusBar.View())
	return b.String()
}

// Err returns the last error.
func (a *App) Err() error {
	return a.err
}

// CurrentView returns the active view.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

func (a *App) buildCmd() tea.Cmd {
	if a.preloaded != nil {
		graph := a.preloaded
		return func() tea.Msg {
			return messages.BuildCompleted{Result: &domain.BuildResult{Graph: graph}}
		}
	}
	ctx, graphs, location := a.ctx, a.ports.Graph, a.location
	return func() tea.Msg {
		result, err := graphs.BuildProject(ctx, location, driving.ProjectOptions{Persist: true})
		return messages.BuildCompleted{Result: result, Err: err}
	}
}

func (a *App) handleBuild(msg messages.BuildCompleted) tea.Cmd {
	if msg.Err != nil {
		a.fail(msg.Err)
		return nil
	}
	if err := a.ports.Layout.Load(msg.Result.Graph); err != nil {
		a.fail(err)
		return nil
	}
	a.graph = msg.Result.Graph
	for _, n := range a.graph.Nodes {
		if n.Pinned {
			a.pinned[n.ID] = true
		}
	}
	if a.unsubscribe == nil {
		a.unsubscribe = a.ports.Layout.Subscribe(driving.LayoutObserver{
			OnTick: func(s domain.SimulationState) { a.offer(messages.Tick{State: s}) },
			OnEnd:  func() { a.deliver(messages.Converged{}) },
		})
	}
	if state, err := a.ports.Layout.State(); err == nil {
		a.applyTick(state)
	}
	if err := a.ports.Layout.Start(); err != nil {
		a.fail(err)
		return nil
	}
	a.state.IsRunning = true
	a.statusBar.SetState(status.StateRunning)
	return a.waitForEvent()
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, a.keymap.Quit):
		a.shutdown()
		return a, tea.Quit

	case keymap.Matches(k, a.keymap.Help):
		if a.currentView == messages.ViewHelp {
			a.currentView = messages.ViewMonitor
		} else {
			a.currentView = messages.ViewHelp
		}
		return a, nil
	}

	if a.graph == nil {
		return a, nil
	}
	a.statusBar.SetMessage("")

	switch {
	case keymap.Matches(k, a.keymap.Toggle):
		if a.state.IsRunning {
			a.check(a.ports.Layout.Stop())
			a.state.IsRunning = false
			a.statusBar.SetState(status.StatePaused)
		} else {
			a.check(a.ports.Layout.Start())
			a.state.IsRunning = true
			a.statusBar.SetState(status.StateRunning)
		}

	case keymap.Matches(k, a.keymap.Reheat):
		a.check(a.ports.Layout.Reheat(reheatAlpha))
		a.statusBar.SetState(status.StateRunning)

	case keymap.Matches(k, a.keymap.Pin):
		if id := a.selectedID(); id != "" {
			a.pinned[id] = !a.pinned[id]
			a.check(a.ports.Layout.PinNode(id, a.pinned[id]))
		}

	case keymap.Matches(k, a.keymap.Radial):
		a.radial = !a.radial
		a.check(a.ports.Layout.SetRadial(a.graph.RootNodeID, a.radial))

	case keymap.Matches(k, a.keymap.Save):
		return a, a.saveCmd()

	default:
		var cmd tea.Cmd
		a.table, cmd = a.table.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) saveCmd() tea.Cmd {
	if a.graph.ID == "" {
		return func() tea.Msg {
			return messages.PositionsSaved{Err: fmt.Errorf("graph has no id: %w", domain.ErrNotFound)}
		}
	}
	positions, err := a.ports.Layout.Positions()
	if err != nil {
		return func() tea.Msg { return messages.PositionsSaved{Err: err} }
	}
	ctx, graphs, id := a.ctx, a.ports.Graph, a.graph.ID
	return func() tea.Msg {
		return messages.PositionsSaved{Err: graphs.SavePositions(ctx, id, positions)}
	}
}

// waitForEvent blocks until the simulation reports a frame or convergence.
func (a *App) waitForEvent() tea.Cmd {
	events, done := a.events, a.ctx.Done()
	return func() tea.Msg {
		select {
		case msg := <-events:
			return msg
		case <-done:
			return nil
		}
	}
}

// offer queues a frame unless the program is behind, in which case it is dropped.
func (a *App) offer(msg tea.Msg) {
	select {
	case a.events <- msg:
	default:
	}
}

// deliver queues msg, waiting for room unless the app is shutting down.
func (a *App) deliver(msg tea.Msg) {
	select {
	case a.events <- msg:
	case <-a.ctx.Done():
	}
}

func (a *App) applyTick(state domain.SimulationState) {
	a.state = state
	a.statusBar.SetSimulation(state.Alpha, len(state.Nodes))
	if state.IsRunning && a.statusBar.State() != status.StatePaused {
		a.statusBar.SetState(status.StateRunning)
	}

	nodes := append([]domain.SimNode(nil), state.Nodes...)
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].Importance > nodes[j].Importance })

	rows := make([]table.Row, len(nodes))
	a.rowIDs = a.rowIDs[:0]
	for i, n := range nodes {
		pin := ""
		if n.Fixed() {
			pin = "•"
		}
		rows[i] = table.Row{
			n.Title,
			string(n.Type),
			fmt.Sprintf("%7.1f %7.1f %7.1f", n.X, n.Y, n.Z),
			fmt.Sprintf("%.2f", math.Sqrt(n.VX*n.VX+n.VY*n.VY+n.VZ*n.VZ)),
			pin,
		}
		a.rowIDs = append(a.rowIDs, n.ID)
	}
	a.table.SetRows(rows)
}

func (a *App) selectedID() string {
	i := a.table.Cursor()
	if i < 0 || i >= len(a.rowIDs) {
		return ""
	}
	return a.rowIDs[i]
}

func (a *App) summaryLine() string {
	counts := make(map[domain.NodeType]int)
	for _, n := range a.graph.Nodes {
		counts[n.Type]++
	}
	types := make([]domain.NodeType, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	parts := []string{a.styles.Subtitle.Render(a.graph.Title)}
	for _, t := range types {
		parts = append(parts, fmt.Sprintf("%s %d", a.styles.NodeType(t), counts[t]))
	}
	parts = append(parts, a.styles.Muted.Render(fmt.Sprintf("%d edges", len(a.graph.Edges))))
	if a.radial {
		parts = append(parts, a.styles.Muted.Render("radial"))
	}
	return strings.Join(parts, "  ")
}

func (a *App) helpView() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Keys"))
	b.WriteString("\n\n")
	for _, col := range a.keymap.FullHelp() {
		for _, binding := range col {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %-8s %s\n", h.Key, h.Desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(a.styles.Help.Render("? to return"))
	return a.styles.Border.Padding(1, 2).Render(b.String())
}

func (a *App) resize(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.statusBar.SetWidth(width)
	a.progress.Width = width - 4
	a.table.SetColumns(columns(width))
	a.table.SetHeight(max(minRows, height-9))
	a.table.SetWidth(width)
}

func (a *App) check(err error) {
	if err != nil {
		a.fail(err)
	}
}

func (a *App) fail(err error) {
	a.err = err
	a.statusBar.SetState(status.StateError)
	a.statusBar.SetMessage(err.Error())
}

func (a *App) shutdown() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
	a.ports.Layout.Dispose()
}

// convergence maps alpha onto a 0-1 scale that is full at alphaMin.
func convergence(alpha, alphaMin float64) float64 {
	if alpha >= 1 {
		return 0
	}
	if alpha <= alphaMin || alpha <= 0 {
		return 1
	}
	return math.Log(alpha) / math.Log(alphaMin)
}

func columns(width int) []table.Column {
	title := max(16, width-60)
	return []table.Column{
		{Title: "Node", Width: title},
		{Title: "Type", Width: 8},
		{Title: "Position", Width: 25},
		{Title: "Speed", Width: 7},
		{Title: "Pin", Width: 3},
	}
}
