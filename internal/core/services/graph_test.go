package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/neuralmap-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/neuralmap-cli/internal/core/domain"
	"github.com/custodia-labs/neuralmap-cli/internal/core/ports/driving"
)

func TestGraphService_Build(t *testing.T) {
	t.Run("builds graph and stamps id", func(t *testing.T) {
		metrics := &mockMetrics{}
		svc := NewGraphService(&mockExecutor{}, nil, nil, metrics, WithGraphIDs(func() string { return "g-1" }))

		result, err := svc.Build(context.Background(), domain.BuildRequest{
			Files:             projectFiles(),
			ProjectPath:       "/work/shop",
			LinkedProjectName: "shop",
		})

		require.NoError(t, err)
		assert.Equal(t, "g-1", result.Graph.ID)
		assert.Equal(t, "/work/shop", result.Graph.ProjectPath)
		assert.Equal(t, "shop", result.Graph.Title)
		assert.Equal(t, 5, result.Stats.NodeCount)
		assert.Equal(t, 5, result.Stats.EdgeCount)
		builds, superseded, _ := metrics.counts()
		assert.Equal(t, 1, builds)
		assert.Zero(t, superseded)
	})

	t.Run("defaults user id", func(t *testing.T) {
		exec := &mockExecutor{}
		svc := NewGraphService(exec, nil, nil, nil, WithUserID("alice"))

		result, err := svc.Build(context.Background(), domain.BuildRequest{Files: projectFiles()})

		require.NoError(t, err)
		assert.Equal(t, "alice", exec.lastRequest().UserID)
		assert.Equal(t, "alice", result.Graph.UserID)
	})

	t.Run("keeps explicit user id", func(t *testing.T) {
		exec := &mockExecutor{}
		svc := NewGraphService(exec, nil, nil, nil, WithUserID("alice"))

		_, err := svc.Build(context.Background(), domain.BuildRequest{Files: projectFiles(), UserID: "bob"})

		require.NoError(t, err)
		assert.Equal(t, "bob", exec.lastRequest().UserID)
	})

	t.Run("empty file list builds root only", func(t *testing.T) {
		svc := NewGraphService(&mockExecutor{}, nil, nil, nil)

		result, err := svc.Build(context.Background(), domain.BuildRequest{})

		require.NoError(t, err)
		assert.Len(t, result.Graph.Nodes, 1)
		assert.Empty(t, result.Graph.Edges)
	})

	t.Run("rejects empty path before executing", func(t *testing.T) {
		exec := &mockExecutor{}
		svc := NewGraphService(exec, nil, nil, nil)

		_, err := svc.Build(context.Background(), domain.BuildRequest{
			Files: []domain.NeuralFile{{ID: "x", Path: ""}},
		})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Empty(t, exec.requests)
	})

	t.Run("failure response becomes ErrBuildFailed", func(t *testing.T) {
		metrics := &mockMetrics{}
		exec := &mockExecutor{execute: func(context.Context, domain.BuildRequest) (*domain.BuildResponse, error) {
			return &domain.BuildResponse{Success: false, Error: "file 0 has an empty path"}, nil
		}}
		svc := NewGraphService(exec, nil, nil, metrics)

		_, err := svc.Build(context.Background(), domain.BuildRequest{Files: projectFiles()})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrBuildFailed)
		assert.Contains(t, err.Error(), "empty path")
		require.Len(t, metrics.builds, 1)
		assert.ErrorIs(t, metrics.builds[0], domain.ErrBuildFailed)
	})

	t.Run("executor error is wrapped", func(t *testing.T) {
		exec := &mockExecutor{execute: func(context.Context, domain.BuildRequest) (*domain.BuildResponse, error) {
			return nil, domain.ErrExecutorClosed
		}}
		svc := NewGraphService(exec, nil, nil, nil)

		_, err := svc.Build(context.Background(), domain.BuildRequest{Files: projectFiles()})

		assert.ErrorIs(t, err, domain.ErrExecutorClosed)
	})

	t.Run("caller cancellation is reported as such", func(t *testing.T) {
		exec := &mockExecutor{execute: func(ctx context.Context, _ domain.BuildRequest) (*domain.BuildResponse, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}}
		svc := NewGraphService(exec, nil, nil, nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := svc.Build(ctx, domain.BuildRequest{Files: projectFiles()})

		assert.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, domain.ErrBuildSuperseded)
	})
}

func TestGraphService_Build_LatestWins(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 2)
	exec := &mockExecutor{execute: func(ctx context.Context, req domain.BuildRequest) (*domain.BuildResponse, error) {
		started <- struct{}{}
		if req.ThemeID == "first" {
			select {
			case <-release:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		resp := domain.BuildResponse{Success: true, Graph: &domain.NeuralGraph{Title: req.ThemeID}, Stats: &domain.BuildStats{}}
		return &resp, nil
	}}
	metrics := &mockMetrics{}
	svc := NewGraphService(exec, nil, nil, metrics)

	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Build(context.Background(), domain.BuildRequest{ThemeID: "first"})
		firstErr <- err
	}()
	<-started

	second, err := svc.Build(context.Background(), domain.BuildRequest{ThemeID: "second"})
	require.NoError(t, err)
	assert.Equal(t, "second", second.Graph.Title)

	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, domain.ErrBuildSuperseded)
	case <-time.After(2 * time.Second):
		t.Fatal("superseded build did not return")
	}
	close(release)

	_, superseded, _ := metrics.counts()
	assert.Equal(t, 1, superseded)
}

func TestGraphService_BuildProject(t *testing.T) {
	t.Run("scans and names project from source", func(t *testing.T) {
		src := &mockSource{files: projectFiles(), name: "shop"}
		store := memory.NewGraphStore()
		svc := NewGraphService(&mockExecutor{}, src, store, nil)

		result, err := svc.BuildProject(context.Background(), "github://acme/shop@v1", driving.ProjectOptions{
			ThemeID: "dark",
			Persist: true,
		})

		require.NoError(t, err)
		assert.Equal(t, "shop", result.Graph.Title)
		assert.Equal(t, "dark", result.Graph.ThemeID)

		stored, err := store.Latest(context.Background(), "github://acme/shop@v1")
		require.NoError(t, err)
		assert.Equal(t, result.Graph.ID, stored.ID)
	})

	t.Run("linked name overrides source name", func(t *testing.T) {
		src := &mockSource{files: projectFiles(), name: "shop"}
		svc := NewGraphService(&mockExecutor{}, src, nil, nil)

		result, err := svc.BuildProject(context.Background(), "/work/shop", driving.ProjectOptions{LinkedProjectName: "store"})

		require.NoError(t, err)
		assert.Equal(t, "store", result.Graph.Title)
	})

	t.Run("without persist nothing is stored", func(t *testing.T) {
		src := &mockSource{files: projectFiles(), name: "shop"}
		store := memory.NewGraphStore()
		svc := NewGraphService(&mockExecutor{}, src, store, nil)

		_, err := svc.BuildProject(context.Background(), "/work/shop", driving.ProjectOptions{})

		require.NoError(t, err)
		list, err := store.List(context.Background())
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("save failure does not fail build", func(t *testing.T) {
		src := &mockSource{files: projectFiles(), name: "shop"}
		store := failingGraphStore{memory.NewGraphStore()}
		svc := NewGraphService(&mockExecutor{}, src, store, nil)

		result, err := svc.BuildProject(context.Background(), "/work/shop", driving.ProjectOptions{Persist: true})

		require.NoError(t, err)
		assert.NotNil(t, result.Graph)
	})

	t.Run("scan error", func(t *testing.T) {
		src := &mockSource{scanErr: domain.ErrUnsupportedSource}
		svc := NewGraphService(&mockExecutor{}, src, nil, nil)

		_, err := svc.BuildProject(context.Background(), "ftp://x", driving.ProjectOptions{})

		assert.ErrorIs(t, err, domain.ErrUnsupportedSource)
	})

	t.Run("no sources configured", func(t *testing.T) {
		svc := NewGraphService(&mockExecutor{}, nil, nil, nil)

		_, err := svc.BuildProject(context.Background(), "/work/shop", driving.ProjectOptions{})

		assert.ErrorIs(t, err, domain.ErrUnsupportedSource)
	})
}

func TestGraphService_Store(t *testing.T) {
	ctx := context.Background()
	store := memory.NewGraphStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewGraphService(&mockExecutor{}, &mockSource{files: projectFiles(), name: "shop"}, store, nil,
		WithClock(func() time.Time { return now }))

	result, err := svc.BuildProject(ctx, "/work/shop", driving.ProjectOptions{Persist: true})
	require.NoError(t, err)
	id := result.Graph.ID

	t.Run("get and latest", func(t *testing.T) {
		got, err := svc.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)

		latest, err := svc.Latest(ctx, "/work/shop")
		require.NoError(t, err)
		assert.Equal(t, id, latest.ID)
	})

	t.Run("list", func(t *testing.T) {
		list, err := svc.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, 5, list[0].NodeCount)
	})

	t.Run("save positions", func(t *testing.T) {
		rootID := result.Graph.RootNodeID
		err := svc.SavePositions(ctx, id, map[string]domain.Vec3{
			rootID:    {X: 1, Y: 2, Z: 3},
			"missing": {X: 9},
		})
		require.NoError(t, err)

		got, err := svc.Get(ctx, id)
		require.NoError(t, err)
		root, ok := got.Node(rootID)
		require.True(t, ok)
		require.NotNil(t, root.Position)
		assert.Equal(t, domain.Vec3{X: 1, Y: 2, Z: 3}, *root.Position)
		assert.True(t, got.UpdatedAt.Equal(now))
		for _, n := range got.Nodes {
			if n.ID != rootID {
				assert.Nil(t, n.Position, n.Title)
			}
		}
	})

	t.Run("save positions of missing graph", func(t *testing.T) {
		err := svc.SavePositions(ctx, "nope", nil)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("save graph keeps id", func(t *testing.T) {
		graph, err := svc.Get(ctx, id)
		require.NoError(t, err)
		graph.Title = "renamed"

		require.NoError(t, svc.SaveGraph(ctx, graph))

		got, err := svc.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "renamed", got.Title)
	})

	t.Run("save graph rejects nil", func(t *testing.T) {
		assert.ErrorIs(t, svc.SaveGraph(ctx, nil), domain.ErrInvalidInput)
	})

	t.Run("save graph without store", func(t *testing.T) {
		bare := NewGraphService(&mockExecutor{}, nil, nil, nil)
		assert.ErrorIs(t, bare.SaveGraph(ctx, &domain.NeuralGraph{}), domain.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, id))
		_, err := svc.Get(ctx, id)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}
