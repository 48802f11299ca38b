package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/neuralmap-cli/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for neuralmap resources.
	uriScheme = "neuralmap://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing stored graphs.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "graphs",
		Name:        "graphs",
		Description: "Summaries of all stored graphs",
		MIMEType:    "application/json",
	}, s.handleGraphsResource)

	// Template for a stored graph document.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "graphs/{graphId}",
		Name:        "graph",
		Description: "A stored graph document",
		MIMEType:    "application/json",
	}, s.handleGraphResource)

	// The graph currently loaded into the layout, with live positions.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "layout",
		Name:        "layout",
		Description: "The loaded graph with current layout positions",
		MIMEType:    "application/json",
	}, s.handleLayoutResource)
}

// handleGraphsResource returns summaries of all stored graphs.
func (s *Server) handleGraphsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	graphs, err := s.ports.Graph.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing graphs: %w", err)
	}

	type graphInfo struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		ProjectPath string `json:"project_path"`
		NodeCount   int    `json:"node_count"`
		EdgeCount   int    `json:"edge_count"`
		URI         string `json:"uri"`
	}

	infos := make([]graphInfo, len(graphs))
	for i, g := range graphs {
		infos[i] = graphInfo{
			ID:          g.ID,
			Title:       g.Title,
			ProjectPath: g.ProjectPath,
			NodeCount:   g.NodeCount,
			EdgeCount:   g.EdgeCount,
			URI:         uriScheme + "graphs/" + g.ID,
		}
	}
	return jsonResource(req.Params.URI, infos)
}

// handleGraphResource returns one stored graph.
func (s *Server) handleGraphResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract graphId from URI: neuralmap://graphs/{graphId}
	graphID := extractGraphID(req.Params.URI)
	if graphID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	graph, err := s.ports.Graph.Get(ctx, graphID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting graph: %w", err)
	}
	return jsonResource(req.Params.URI, graph)
}

// handleLayoutResource returns the loaded graph with positions.
func (s *Server) handleLayoutResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	graph, err := s.ports.Layout.Graph()
	if errors.Is(err, domain.ErrNoGraphLoaded) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, graph)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractGraphID extracts the graph ID from a URI like neuralmap://graphs/{graphId}.
func extractGraphID(uri string) string {
	const prefix = uriScheme + "graphs/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
