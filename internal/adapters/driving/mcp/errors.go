// Package mcp provides an MCP (Model Context Protocol) server adapter for neuralmap.
// It lets AI assistants build project graphs and drive their force layout.
package mcp

import "errors"

var (
	// ErrMissingGraphService is returned when the graph service is not provided.
	ErrMissingGraphService = errors.New("mcp: graph service is required")

	// ErrMissingLayoutService is returned when the layout service is not provided.
	ErrMissingLayoutService = errors.New("mcp: layout service is required")
)
