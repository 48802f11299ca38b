package cli

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/neuralmap-cli/internal/core/domain"
	"github.com/custodia-labs/neuralmap-cli/internal/core/ports/driving"
)

func TestLayoutCmd_Flags(t *testing.T) {
	tests := []struct {
		name string
		def  string
	}{
		{"graph", ""},
		{"save", "false"},
		{"radial", "false"},
		{"center", "root"},
		{"max-frames", "2000"},
		{"json", "false"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := layoutCmd.Flags().Lookup(tt.name)
			require.NotNil(t, flag)
			assert.Equal(t, tt.def, flag.DefValue)
		})
	}
}

func TestLayoutCmd_RunsToRest(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("layout", "/work/shop")

	require.NoError(t, err)
	assert.Contains(t, out, "settled after")
	assert.Contains(t, out, "main.ts")

	graphs, err := env.store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, graphs, "nothing is stored without --save")
}

func TestLayoutCmd_StopsAtMaxFrames(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("layout", "--max-frames", "3", "/work/shop")

	require.NoError(t, err)
	assert.Contains(t, out, "stopped before settling after 3 frames")
}

func TestLayoutCmd_RejectsNonPositiveMaxFrames(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("layout", "--max-frames", "0", "/work/shop")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLayoutCmd_JSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("layout", "--json", "/work/shop")

	require.NoError(t, err)
	var positions map[string]domain.Vec3
	require.NoError(t, json.Unmarshal([]byte(out), &positions))
	assert.Len(t, positions, 5)
}

func TestLayoutCmd_SaveAndRadial(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("layout", "--save", "--radial", "/work/shop")
	require.NoError(t, err)
	assert.Contains(t, out, "Positions saved to")

	ctx := context.Background()
	graph, err := env.store.Latest(ctx, "/work/shop")
	require.NoError(t, err)
	for _, n := range graph.Nodes {
		require.NotNil(t, n.Position, n.Title)
	}
	root, ok := graph.Node(graph.RootNodeID)
	require.True(t, ok)
	assert.Equal(t, domain.Vec3{}, *root.Position, "radial center is held at the origin")
}

func TestLayoutCmd_StoredGraph(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()
	ctx := context.Background()
	result, err := env.graphs.BuildProject(ctx, "/work/shop", driving.ProjectOptions{Persist: true})
	require.NoError(t, err)
	env.source.locations = nil

	_, err = execute("layout", "--graph", result.Graph.ID, "--save")

	require.NoError(t, err)
	assert.Empty(t, env.source.locations, "stored graph is not rebuilt")
	graph, err := env.store.Get(ctx, result.Graph.ID)
	require.NoError(t, err)
	assert.NotNil(t, graph.Nodes[0].Position)
}

func TestLayoutCmd_StoredGraphErrors(t *testing.T) {
	t.Run("missing graph", func(t *testing.T) {
		_, cleanup := setupTestServices()
		defer cleanup()

		_, err := execute("layout", "--graph", "nope")

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("graph and location", func(t *testing.T) {
		_, cleanup := setupTestServices()
		defer cleanup()

		_, err := execute("layout", "--graph", "g-1", "/work/shop")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "mutually exclusive")
	})
}
