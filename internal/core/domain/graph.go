package domain

import "time"

// GraphVersion is the serialised graph format version.
const GraphVersion = "2.0"

// NodeType classifies a graph node.
type NodeType string

// Node types.
const (
	NodeProject NodeType = "project"
	NodeFolder  NodeType = "folder"
	NodeCode    NodeType = "code"
	NodeStyle   NodeType = "style"
	NodeConfig  NodeType = "config"
	NodeDoc     NodeType = "doc"
	NodeFile    NodeType = "file"
)

// NodeTypes lists the node types in hierarchy order.
func NodeTypes() []NodeType {
	return []NodeType{NodeProject, NodeFolder, NodeCode, NodeStyle, NodeConfig, NodeDoc, NodeFile}
}

// Importance weights on the 0-10 scale.
const (
	ImportanceProject = 10
	ImportanceFolder  = 7
	ImportanceFile    = 5
)

// EdgeType classifies a graph edge.
type EdgeType string

// Edge types.
const (
	// EdgeParentChild is containment: folder or project to child.
	EdgeParentChild EdgeType = "parent_child"

	// EdgeImports is a resolved import from one code file to another file.
	EdgeImports EdgeType = "imports"

	// EdgeSemantic is a co-reference inferred from shared selectors.
	EdgeSemantic EdgeType = "semantic"
)

// Vec3 is a point or vector in layout space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// SourceRef links a node back to the NeuralFile it was built from.
type SourceRef struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

// NeuralNode is a vertex of the project graph.
type NeuralNode struct {
	ID         string     `json:"id"`
	Type       NodeType   `json:"type"`
	Title      string     `json:"title"`
	Summary    string     `json:"summary"`
	Tags       []string   `json:"tags"`
	Importance float64    `json:"importance"`
	ParentID   *string    `json:"parentId,omitempty"`
	Expanded   bool       `json:"expanded"`
	Pinned     bool       `json:"pinned"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	SourceRef  *SourceRef `json:"sourceRef,omitempty"`

	// Position is the last stored layout position, if any.
	Position *Vec3 `json:"position,omitempty"`
}

// IsRoot reports whether the node is the graph's root (it has no parent).
func (n *NeuralNode) IsRoot() bool {
	return n.ParentID == nil
}

// NeuralEdge is a connection between two nodes.
type NeuralEdge struct {
	ID            string    `json:"id"`
	Source        string    `json:"source"`
	Target        string    `json:"target"`
	Type          EdgeType  `json:"type"`
	Label         string    `json:"label,omitempty"`
	Weight        float64   `json:"weight"`
	Bidirectional bool      `json:"bidirectional"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ViewState captures how the graph was last presented.
type ViewState struct {
	ActiveTab       string   `json:"activeTab"`
	ExpandedNodeIDs []string `json:"expandedNodeIds"`
	PinnedNodeIDs   []string `json:"pinnedNodeIds"`
	SelectedNodeIDs []string `json:"selectedNodeIds"`
	CameraPosition  Vec3     `json:"cameraPosition"`
	CameraTarget    Vec3     `json:"cameraTarget"`
}

// Cluster is reserved for node groupings. Builds always emit an empty list.
type Cluster struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	NodeIDs []string `json:"nodeIds"`
}

// NeuralGraph is the serialised graph document consumed by renderers and stores.
type NeuralGraph struct {
	Version    string       `json:"version"`
	ID         string       `json:"id,omitempty"`
	UserID     string       `json:"userId"`
	RootNodeID string       `json:"rootNodeId"`
	Title      string       `json:"title"`
	Nodes      []NeuralNode `json:"nodes"`
	Edges      []NeuralEdge `json:"edges"`
	Clusters   []Cluster    `json:"clusters"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
	ViewState  ViewState    `json:"viewState"`
	ThemeID    string       `json:"themeId,omitempty"`

	// ProjectPath is where the files came from. It is not part of the wire format.
	ProjectPath string `json:"-"`
}

// Node returns the node with the given id.
func (g *NeuralGraph) Node(id string) (*NeuralNode, bool) {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i], true
		}
	}
	return nil, false
}

// GraphSummary is the listing view of a stored graph.
type GraphSummary struct {
	ID          string
	Title       string
	ProjectPath string
	NodeCount   int
	EdgeCount   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
