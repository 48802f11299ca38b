package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/neuralmap-cli/internal/core/domain"
)

func TestExtractGraphID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{name: "valid graph URI", uri: "neuralmap://graphs/g-123", expected: "g-123"},
		{name: "invalid prefix", uri: "file://graphs/g-123", expected: ""},
		{name: "nested path", uri: "neuralmap://graphs/g-123/nodes", expected: ""},
		{name: "empty URI", uri: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractGraphID(tt.uri))
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleGraphsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("lists graphs", func(t *testing.T) {
		graphs := &mockGraphService{summaries: []domain.GraphSummary{
			{ID: "g-1", Title: "shop", ProjectPath: "/work/shop", NodeCount: 5, EdgeCount: 4},
		}}
		server := newTestServer(t, graphs, &mockLayoutService{})

		result, err := server.handleGraphsResource(ctx, makeReadResourceRequest("neuralmap://graphs"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Contains(t, result.Contents[0].Text, `"id": "g-1"`)
		assert.Contains(t, result.Contents[0].Text, "neuralmap://graphs/g-1")
		assert.Contains(t, result.Contents[0].Text, "/work/shop")
	})

	t.Run("empty store", func(t *testing.T) {
		server := newTestServer(t, &mockGraphService{summaries: []domain.GraphSummary{}}, &mockLayoutService{})

		result, err := server.handleGraphsResource(ctx, makeReadResourceRequest("neuralmap://graphs"))

		require.NoError(t, err)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		server := newTestServer(t, &mockGraphService{err: errors.New("database error")}, &mockLayoutService{})

		_, err := server.handleGraphsResource(ctx, makeReadResourceRequest("neuralmap://graphs"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing graphs")
	})
}

func TestServer_handleGraphResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns graph document", func(t *testing.T) {
		server := newTestServer(t, &mockGraphService{graph: sampleGraph()}, &mockLayoutService{})

		result, err := server.handleGraphResource(ctx, makeReadResourceRequest("neuralmap://graphs/g-1"))

		require.NoError(t, err)
		assert.Contains(t, result.Contents[0].Text, `"rootNodeId": "root-1"`)
	})

	t.Run("invalid URI returns not found", func(t *testing.T) {
		server := newTestServer(t, &mockGraphService{}, &mockLayoutService{})

		_, err := server.handleGraphResource(ctx, makeReadResourceRequest("neuralmap://invalid"))

		require.Error(t, err)
	})

	t.Run("missing graph returns not found", func(t *testing.T) {
		server := newTestServer(t, &mockGraphService{err: domain.ErrNotFound}, &mockLayoutService{})

		_, err := server.handleGraphResource(ctx, makeReadResourceRequest("neuralmap://graphs/nope"))

		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestServer_handleLayoutResource(t *testing.T) {
	ctx := context.Background()

	t.Run("no graph loaded", func(t *testing.T) {
		server := newTestServer(t, &mockGraphService{}, &mockLayoutService{})

		_, err := server.handleLayoutResource(ctx, makeReadResourceRequest("neuralmap://layout"))

		require.Error(t, err)
	})

	t.Run("returns loaded graph", func(t *testing.T) {
		server := newTestServer(t, &mockGraphService{}, &mockLayoutService{loaded: sampleGraph()})

		result, err := server.handleLayoutResource(ctx, makeReadResourceRequest("neuralmap://layout"))

		require.NoError(t, err)
		assert.Contains(t, result.Contents[0].Text, `"title": "shop"`)
	})
}
