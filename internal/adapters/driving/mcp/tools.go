package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/neuralmap-cli/internal/core/domain"
	"github.com/custodia-labs/neuralmap-cli/internal/core/ports/driving"
)

// BuildGraphInput is the input schema for the build_graph tool.
type BuildGraphInput struct {
	Location string `json:"location" jsonschema:"project directory, file:// location or github://owner/repo[@ref]"`
	ThemeID  string `json:"theme_id,omitempty" jsonschema:"theme id copied onto the graph"`
	Name     string `json:"name,omitempty" jsonschema:"project name overriding the one derived from the location"`
	Persist  bool   `json:"persist,omitempty" jsonschema:"save the graph to the graph store"`
	Load     bool   `json:"load,omitempty" jsonschema:"load the graph into the layout simulation"`
}

// GraphOutput summarises a graph.
type GraphOutput struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	RootNodeID string  `json:"root_node_id"`
	NodeCount  int     `json:"node_count"`
	EdgeCount  int     `json:"edge_count"`
	ElapsedMS  float64 `json:"elapsed_ms,omitempty"`
	Loaded     bool    `json:"loaded"`
}

// LoadGraphInput is the input schema for the load_graph tool.
type LoadGraphInput struct {
	ID          string `json:"id,omitempty" jsonschema:"stored graph id"`
	ProjectPath string `json:"project_path,omitempty" jsonschema:"load the newest stored graph for this location instead"`
}

// SaveLayoutInput is the input schema for the save_layout tool.
type SaveLayoutInput struct {
	ID string `json:"id,omitempty" jsonschema:"graph id to store under (default: the loaded graph's id)"`
}

// EmptyInput is the input schema for tools without arguments.
type EmptyInput struct{}

// StatusOutput reports the simulation after a control tool.
type StatusOutput struct {
	Alpha     float64 `json:"alpha"`
	IsRunning bool    `json:"is_running"`
}

// NodeInput names a node. "root" names the graph's root.
type NodeInput struct {
	ID string `json:"id" jsonschema:"node id or root"`
}

// PinNodeInput is the input schema for the pin_node tool.
type PinNodeInput struct {
	ID     string `json:"id" jsonschema:"node id or root"`
	Pinned bool   `json:"pinned" jsonschema:"true to fix the node, false to release it"`
}

// DragNodeInput is the input schema for the drag_node tool.
type DragNodeInput struct {
	ID string  `json:"id" jsonschema:"node id or root"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	Z  float64 `json:"z"`
}

// EndDragInput is the input schema for the end_drag tool.
type EndDragInput struct {
	ID         string `json:"id" jsonschema:"node id or root"`
	KeepPinned bool   `json:"keep_pinned,omitempty" jsonschema:"keep the node pinned where it was dropped"`
}

// ReheatInput is the input schema for the reheat tool.
type ReheatInput struct {
	Alpha float64 `json:"alpha,omitempty" jsonschema:"minimum alpha after reheating (default 0.3)"`
}

// SetRadialInput is the input schema for the set_radial tool.
type SetRadialInput struct {
	CenterID string `json:"center_id,omitempty" jsonschema:"center node id or root (default root)"`
	Enabled  bool   `json:"enabled"`
}

// FindNodeInput is the input schema for the find_node_at tool.
type FindNodeInput struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Z      float64 `json:"z"`
	Radius float64 `json:"radius,omitempty" jsonschema:"search radius, 0 for unbounded"`
}

// FindNodeOutput is the output schema for the find_node_at tool.
type FindNodeOutput struct {
	Found bool   `json:"found"`
	ID    string `json:"id,omitempty"`
}

// PositionsOutput is the output schema for the get_positions tool.
type PositionsOutput struct {
	Positions map[string]domain.Vec3 `json:"positions"`
}

// StateOutput is the output schema for the get_state tool.
type StateOutput struct {
	State domain.SimulationState `json:"state"`
}

const defaultReheat = 0.3

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "build_graph",
		Description: "Build a project graph from a directory or GitHub repository",
	}, s.handleBuildGraph)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "load_graph",
		Description: "Load a stored graph into the layout simulation",
	}, s.handleLoadGraph)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "save_layout",
		Description: "Store the loaded graph with its current node positions",
	}, s.handleSaveLayout)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "start",
		Description: "Start the force layout animation",
	}, s.handleStart)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "stop",
		Description: "Stop the force layout animation",
	}, s.handleStop)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "pin_node",
		Description: "Fix a node at its current position or release it",
	}, s.handlePinNode)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "drag_node",
		Description: "Hold a node at a position",
	}, s.handleDragNode)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "end_drag",
		Description: "Release a dragged node",
	}, s.handleEndDrag)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "reheat",
		Description: "Raise the simulation's energy so the layout moves again",
	}, s.handleReheat)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "set_radial",
		Description: "Arrange nodes in rings around a center node",
	}, s.handleSetRadial)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "find_node_at",
		Description: "Find the node nearest a point",
	}, s.handleFindNodeAt)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_positions",
		Description: "Current position of every node",
	}, s.handleGetPositions)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_state",
		Description: "Snapshot of the simulation: nodes, links and alpha",
	}, s.handleGetState)
}

// handleBuildGraph handles the build_graph tool invocation.
func (s *Server) handleBuildGraph(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input BuildGraphInput,
) (*mcp.CallToolResult, GraphOutput, error) {
	if input.Location == "" {
		return nil, GraphOutput{}, fmt.Errorf("location is required: %w", domain.ErrInvalidInput)
	}
	result, err := s.ports.Graph.BuildProject(ctx, input.Location, driving.ProjectOptions{
		ThemeID:           input.ThemeID,
		LinkedProjectName: input.Name,
		Persist:           input.Persist,
	})
	if err != nil {
		return nil, GraphOutput{}, err
	}

	out := graphOutput(result.Graph)
	out.ElapsedMS = result.Stats.Elapsed
	if input.Load {
		if err := s.ports.Layout.Load(result.Graph); err != nil {
			return nil, GraphOutput{}, fmt.Errorf("loading graph: %w", err)
		}
		out.Loaded = true
	}
	return nil, out, nil
}

// handleLoadGraph handles the load_graph tool invocation.
func (s *Server) handleLoadGraph(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LoadGraphInput,
) (*mcp.CallToolResult, GraphOutput, error) {
	var (
		graph *domain.NeuralGraph
		err   error
	)
	switch {
	case input.ID != "":
		graph, err = s.ports.Graph.Get(ctx, input.ID)
	case input.ProjectPath != "":
		graph, err = s.ports.Graph.Latest(ctx, input.ProjectPath)
	default:
		return nil, GraphOutput{}, fmt.Errorf("id or project_path is required: %w", domain.ErrInvalidInput)
	}
	if err != nil {
		return nil, GraphOutput{}, err
	}
	if err := s.ports.Layout.Load(graph); err != nil {
		return nil, GraphOutput{}, fmt.Errorf("loading graph: %w", err)
	}
	out := graphOutput(graph)
	out.Loaded = true
	return nil, out, nil
}

// handleSaveLayout handles the save_layout tool invocation.
func (s *Server) handleSaveLayout(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SaveLayoutInput,
) (*mcp.CallToolResult, GraphOutput, error) {
	graph, err := s.ports.Layout.Graph()
	if errors.Is(err, domain.ErrNoGraphLoaded) {
		return nil, GraphOutput{}, fmt.Errorf("%w: call build_graph or load_graph first", err)
	}
	if err != nil {
		return nil, GraphOutput{}, err
	}
	if input.ID != "" {
		graph.ID = input.ID
	}
	if err := s.ports.Graph.SaveGraph(ctx, graph); err != nil {
		return nil, GraphOutput{}, err
	}
	out := graphOutput(graph)
	out.Loaded = true
	return nil, out, nil
}

func (s *Server) handleStart(_ context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, StatusOutput, error) {
	return s.control(s.ports.Layout.Start)
}

func (s *Server) handleStop(_ context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, StatusOutput, error) {
	return s.control(s.ports.Layout.Stop)
}

func (s *Server) handlePinNode(_ context.Context, _ *mcp.CallToolRequest, input PinNodeInput) (*mcp.CallToolResult, StatusOutput, error) {
	return s.control(func() error { return s.ports.Layout.PinNode(input.ID, input.Pinned) })
}

func (s *Server) handleDragNode(_ context.Context, _ *mcp.CallToolRequest, input DragNodeInput) (*mcp.CallToolResult, StatusOutput, error) {
	pos := domain.Vec3{X: input.X, Y: input.Y, Z: input.Z}
	return s.control(func() error { return s.ports.Layout.DragNode(input.ID, pos) })
}

func (s *Server) handleEndDrag(_ context.Context, _ *mcp.CallToolRequest, input EndDragInput) (*mcp.CallToolResult, StatusOutput, error) {
	return s.control(func() error { return s.ports.Layout.EndDrag(input.ID, input.KeepPinned) })
}

func (s *Server) handleReheat(_ context.Context, _ *mcp.CallToolRequest, input ReheatInput) (*mcp.CallToolResult, StatusOutput, error) {
	alpha := input.Alpha
	if alpha <= 0 {
		alpha = defaultReheat
	}
	return s.control(func() error { return s.ports.Layout.Reheat(alpha) })
}

func (s *Server) handleSetRadial(_ context.Context, _ *mcp.CallToolRequest, input SetRadialInput) (*mcp.CallToolResult, StatusOutput, error) {
	return s.control(func() error { return s.ports.Layout.SetRadial(input.CenterID, input.Enabled) })
}

func (s *Server) handleFindNodeAt(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input FindNodeInput,
) (*mcp.CallToolResult, FindNodeOutput, error) {
	id, ok, err := s.ports.Layout.FindNodeAt(domain.Vec3{X: input.X, Y: input.Y, Z: input.Z}, input.Radius)
	if err != nil {
		return nil, FindNodeOutput{}, err
	}
	return nil, FindNodeOutput{Found: ok, ID: id}, nil
}

func (s *Server) handleGetPositions(_ context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, PositionsOutput, error) {
	positions, err := s.ports.Layout.Positions()
	if err != nil {
		return nil, PositionsOutput{}, err
	}
	return nil, PositionsOutput{Positions: positions}, nil
}

func (s *Server) handleGetState(_ context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, StateOutput, error) {
	state, err := s.ports.Layout.State()
	if err != nil {
		return nil, StateOutput{}, err
	}
	return nil, StateOutput{State: state}, nil
}

// control runs a layout mutation and reports the resulting status.
func (s *Server) control(op func() error) (*mcp.CallToolResult, StatusOutput, error) {
	if err := op(); err != nil {
		if errors.Is(err, domain.ErrNoGraphLoaded) {
			return nil, StatusOutput{}, fmt.Errorf("%w: call build_graph or load_graph first", err)
		}
		return nil, StatusOutput{}, err
	}
	state, err := s.ports.Layout.State()
	if err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, StatusOutput{Alpha: state.Alpha, IsRunning: state.IsRunning}, nil
}

func graphOutput(g *domain.NeuralGraph) GraphOutput {
	return GraphOutput{
		ID:         g.ID,
		Title:      g.Title,
		RootNodeID: g.RootNodeID,
		NodeCount:  len(g.Nodes),
		EdgeCount:  len(g.Edges),
	}
}
