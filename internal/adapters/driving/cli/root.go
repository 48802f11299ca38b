// Package cli provides the neuralmap command line interface.
// It implements a driving adapter following hexagonal architecture principles.
package cli

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/neuralmap-cli/internal/core/domain"
	"github.com/custodia-labs/neuralmap-cli/internal/core/ports/driven"
	"github.com/custodia-labs/neuralmap-cli/internal/core/ports/driving"
	"github.com/custodia-labs/neuralmap-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var verbose bool

// LayoutFactory creates a layout session driven by sched.
type LayoutFactory func(sched driven.FrameScheduler) driving.LayoutService

// Config holds the services the commands run against.
type Config struct {
	Graph          driving.GraphService
	Settings       driving.SettingsService
	Layout         LayoutFactory
	Watcher        driven.ChangeWatcher
	MetricsHandler http.Handler
}

var (
	graphService    driving.GraphService
	settingsService driving.SettingsService
	layoutFactory   LayoutFactory
	changeWatcher   driven.ChangeWatcher
	metricsHandler  http.Handler
)

var (
	errGraphServiceMissing    = errors.New("graph service not configured")
	errSettingsServiceMissing = errors.New("settings service not configured")
	errLayoutMissing          = errors.New("layout not configured")
	errWatcherMissing         = errors.New("change watcher not configured")
)

var rootCmd = &cobra.Command{
	Use:   "neuralmap",
	Short: "Build and lay out project knowledge graphs",
	Long: `neuralmap turns a project's files into a graph of folders, files and
their imports, then arranges it in 3D with a force-directed layout.

Graphs are stored locally so layouts can be resumed, watched and served
to AI assistants over MCP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetConfig injects the services used by all commands.
func SetConfig(cfg Config) {
	graphService = cfg.Graph
	settingsService = cfg.Settings
	layoutFactory = cfg.Layout
	changeWatcher = cfg.Watcher
	metricsHandler = cfg.MetricsHandler
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// simulationConfig returns the configured simulation parameters,
// falling back to the defaults when settings are unavailable.
func simulationConfig() domain.SimulationConfig {
	if settingsService == nil {
		return domain.DefaultSimulationConfig()
	}
	settings, err := settingsService.Get()
	if err != nil {
		logger.Warn("using default simulation settings: %v", err)
		return domain.DefaultSimulationConfig()
	}
	return settings.Simulation
}

func requireGraphService() error {
	if graphService == nil {
		return errGraphServiceMissing
	}
	return nil
}

func requireLayout() error {
	if err := requireGraphService(); err != nil {
		return err
	}
	if layoutFactory == nil {
		return errLayoutMissing
	}
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
