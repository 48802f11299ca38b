package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/neuralmap-cli/internal/core/domain"
	"github.com/custodia-labs/neuralmap-cli/internal/logger"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "neuralmap", rootCmd.Use)
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0, len(rootCmd.Commands()))
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}

	for _, want := range []string{"build", "layout", "watch", "graph", "settings", "mcp", "tui", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCmd_VerboseFlag(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	defer logger.SetVerbose(false)

	_, err := execute("--verbose", "version")

	require.NoError(t, err)
	assert.True(t, logger.IsVerbose())
}

func TestSetVersion(t *testing.T) {
	original := version
	defer func() { version = original }()

	SetVersion("")
	assert.Equal(t, original, version)

	SetVersion("1.2.3")
	assert.Equal(t, "1.2.3", version)
}

func TestExecute_UsesContext(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	rootCmd.SetArgs([]string{"version"})

	assert.NoError(t, Execute(context.Background()))
}

func TestSimulationConfig(t *testing.T) {
	t.Run("defaults without settings", func(t *testing.T) {
		_, cleanup := setupTestServices()
		defer cleanup()
		settingsService = nil

		assert.Equal(t, domain.DefaultSimulationConfig(), simulationConfig())
	})

	t.Run("reads settings", func(t *testing.T) {
		env, cleanup := setupTestServices()
		defer cleanup()
		require.NoError(t, env.settings.Set(domain.KeySimFPS, "30"))

		assert.Equal(t, 30, simulationConfig().FPS)
	})
}

func TestCommands_RequireServices(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"build", []string{"build"}, errGraphServiceMissing},
		{"layout", []string{"layout"}, errGraphServiceMissing},
		{"watch", []string{"watch"}, errGraphServiceMissing},
		{"graph list", []string{"graph", "list"}, errGraphServiceMissing},
		{"graph show", []string{"graph", "show", "g-1"}, errGraphServiceMissing},
		{"graph delete", []string{"graph", "delete", "g-1"}, errGraphServiceMissing},
		{"settings", []string{"settings", "show"}, errSettingsServiceMissing},
		{"settings keys", []string{"settings", "keys"}, errSettingsServiceMissing},
		{"mcp serve", []string{"mcp", "serve"}, errGraphServiceMissing},
		{"tui", []string{"tui"}, errGraphServiceMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, cleanup := setupTestServices()
			defer cleanup()
			SetConfig(Config{})

			_, err := execute(tt.args...)

			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCommands_RequireLayout(t *testing.T) {
	for _, args := range [][]string{{"layout"}, {"watch"}, {"tui"}, {"mcp", "serve"}} {
		t.Run(args[0], func(t *testing.T) {
			_, cleanup := setupTestServices()
			defer cleanup()
			layoutFactory = nil

			_, err := execute(args...)

			assert.ErrorIs(t, err, errLayoutMissing)
		})
	}
}
