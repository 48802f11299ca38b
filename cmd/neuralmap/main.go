// Command neuralmap builds project graphs and lays them out in 3D.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/neuralmap-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/neuralmap-cli/internal/adapters/driven/metrics"
	"github.com/custodia-labs/neuralmap-cli/internal/adapters/driven/source"
	"github.com/custodia-labs/neuralmap-cli/internal/adapters/driven/source/filesystem"
	"github.com/custodia-labs/neuralmap-cli/internal/adapters/driven/source/github"
	"github.com/custodia-labs/neuralmap-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/neuralmap-cli/internal/adapters/driven/worker"
	"github.com/custodia-labs/neuralmap-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/neuralmap-cli/internal/core/ports/driven"
	"github.com/custodia-labs/neuralmap-cli/internal/core/ports/driving"
	"github.com/custodia-labs/neuralmap-cli/internal/core/services"
	"github.com/custodia-labs/neuralmap-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		logger.Warn("using default settings: %v", err)
		defaults := settingsService.GetDefaults()
		settings = &defaults
	}

	store, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		return fmt.Errorf("opening graph store: %w", err)
	}
	defer store.Close()

	executor := worker.NewExecutor(settings.Builder.UseWorker)
	defer executor.Close()

	sources := source.NewRouter(
		filesystem.NewScanner(filesystem.WithMaxFileBytes(settings.Builder.MaxFileBytes)),
		github.New(
			github.WithToken(settings.GitHubToken),
			github.WithMaxFileBytes(settings.Builder.MaxFileBytes),
		),
	)

	m := metrics.New()
	graphService := services.NewGraphService(executor, sources, store, m,
		services.WithUserID(settings.Builder.UserID))

	simCfg := settings.Simulation
	cli.SetConfig(cli.Config{
		Graph:    graphService,
		Settings: settingsService,
		Layout: func(sched driven.FrameScheduler) driving.LayoutService {
			return services.NewLayoutSession(sched, simCfg, services.WithLayoutMetrics(m))
		},
		Watcher:        filesystem.NewWatcher(filesystem.DefaultDebounce),
		MetricsHandler: m.Handler(),
	})
	cli.SetVersion(version)

	return cli.Execute(ctx)
}
