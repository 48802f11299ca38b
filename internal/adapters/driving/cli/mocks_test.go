package cli

import (
	"bytes"
	"context"
	"sync"

	"github.com/custodia-labs/neuralmap-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/neuralmap-cli/internal/adapters/driven/worker"
	"github.com/custodia-labs/neuralmap-cli/internal/core/domain"
	"github.com/custodia-labs/neuralmap-cli/internal/core/ports/driven"
	"github.com/custodia-labs/neuralmap-cli/internal/core/ports/driving"
	"github.com/custodia-labs/neuralmap-cli/internal/core/services"
)

// fakeSource serves a fixed project regardless of location.
type fakeSource struct {
	mu        sync.Mutex
	files     []domain.NeuralFile
	scanErr   error
	locations []string
}

func (f *fakeSource) Type() string { return "fake" }

func (f *fakeSource) Accepts(string) bool { return true }

func (f *fakeSource) Scan(_ context.Context, location string) ([]domain.NeuralFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locations = append(f.locations, location)
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	return append([]domain.NeuralFile(nil), f.files...), nil
}

func (f *fakeSource) ProjectName(string) string { return "shop" }

func (f *fakeSource) setFiles(files []domain.NeuralFile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files = files
}

// fakeWatcher emits the given number of change signals, then closes.
type fakeWatcher struct {
	signals  int
	before   func(i int)
	watchErr error
}

func (w *fakeWatcher) Watch(_ context.Context, _ string) (<-chan struct{}, error) {
	if w.watchErr != nil {
		return nil, w.watchErr
	}
	out := make(chan struct{})
	go func() {
		defer close(out)
		for i := 0; i < w.signals; i++ {
			if w.before != nil {
				w.before(i)
			}
			out <- struct{}{}
		}
	}()
	return out, nil
}

func projectFiles() []domain.NeuralFile {
	return []domain.NeuralFile{
		{ID: "f1", Name: "main.ts", Path: "shop/src/main.ts", Type: "ts", Content: "import { cart } from './cart'\n"},
		{ID: "f2", Name: "cart.ts", Path: "shop/src/cart.ts", Type: "ts", Content: "export const cart = []\n"},
		{ID: "f3", Name: "README.md", Path: "shop/README.md", Type: "md"},
	}
}

// testEnv wires the real services over in-memory adapters.
type testEnv struct {
	source   *fakeSource
	store    *memory.GraphStore
	config   *memory.ConfigStore
	graphs   *services.GraphService
	settings *services.SettingsService
	watcher  *fakeWatcher
}

// setupTestServices injects in-memory services and resets command flags.
// The returned cleanup restores the previous configuration.
func setupTestServices() (*testEnv, func()) {
	prev := Config{
		Graph:          graphService,
		Settings:       settingsService,
		Layout:         layoutFactory,
		Watcher:        changeWatcher,
		MetricsHandler: metricsHandler,
	}

	env := &testEnv{
		source:  &fakeSource{files: projectFiles()},
		store:   memory.NewGraphStore(),
		config:  memory.NewConfigStore(),
		watcher: &fakeWatcher{},
	}
	env.graphs = services.NewGraphService(worker.NewInline(), env.source, env.store, nil)
	env.settings = services.NewSettingsService(env.config)

	SetConfig(Config{
		Graph:    env.graphs,
		Settings: env.settings,
		Layout: func(sched driven.FrameScheduler) driving.LayoutService {
			return services.NewLayoutSession(sched, domain.DefaultSimulationConfig())
		},
		Watcher: env.watcher,
	})
	resetFlags()

	return env, func() {
		SetConfig(prev)
		resetFlags()
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}
}

func resetFlags() {
	verbose = false
	buildTheme, buildName, buildNoSave, buildJSON = "", "", false, false
	layoutGraphID, layoutSave, layoutRadial, layoutCenter = "", false, false, "root"
	layoutMaxFrames, layoutJSON = 2000, false
	watchNoSave = false
	graphJSON = false
	tuiGraphID = ""
}

// execute runs the root command with args and returns its output.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}
