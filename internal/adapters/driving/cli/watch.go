package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/neuralmap-cli/internal/adapters/driven/frames"
	"github.com/custodia-labs/neuralmap-cli/internal/core/domain"
	"github.com/custodia-labs/neuralmap-cli/internal/core/ports/driving"
	"github.com/custodia-labs/neuralmap-cli/internal/logger"
)

var watchNoSave bool

var watchCmd = &cobra.Command{
	Use:   "watch [location]",
	Short: "Rebuild and re-layout a directory as it changes",
	Long: `Builds a project directory, runs its layout in real time and rebuilds
whenever files change. Nodes that survive a rebuild keep their positions.
A rebuild started while another is running replaces it.

Positions are saved to the stored graph on exit unless --no-save is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchNoSave, "no-save", false, "do not store the graph or its positions")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := requireLayout(); err != nil {
		return err
	}
	if changeWatcher == nil {
		return errWatcherMissing
	}

	location, err := resolveLocation(args)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)
	out := &printer{cmd: cmd}

	result, err := graphService.BuildProject(ctx, location, driving.ProjectOptions{Persist: !watchNoSave})
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	ticker := frames.NewTicker(simulationConfig().FPS)
	defer ticker.Close()
	session := layoutFactory(ticker)
	defer session.Dispose()

	if err := session.Load(result.Graph); err != nil {
		return fmt.Errorf("loading graph: %w", err)
	}
	unsubscribe := session.Subscribe(driving.LayoutObserver{
		OnEnd: func() { out.Printf("layout settled\n") },
	})
	defer unsubscribe()
	if err := session.Start(); err != nil {
		return fmt.Errorf("starting layout: %w", err)
	}

	changes, err := changeWatcher.Watch(ctx, location)
	if err != nil {
		return fmt.Errorf("watching %s: %w", location, err)
	}
	out.Printf("Watching %s (%d nodes). Press Ctrl+C to stop.\n", location, len(result.Graph.Nodes))

	var (
		wg    sync.WaitGroup
		order applyOrder
	)
	for range changes {
		seq := order.issue()
		wg.Add(1)
		go func() {
			defer wg.Done()
			rebuild(ctx, out, session, location, &order, seq)
		}()
	}
	wg.Wait()

	if watchNoSave {
		return nil
	}
	return saveLayout(context.WithoutCancel(ctx), out, session, result.Graph.ID)
}

// printer serialises output from the layout and rebuild goroutines.
type printer struct {
	mu  sync.Mutex
	cmd *cobra.Command
}

func (p *printer) Printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cmd.Printf(format, args...)
}

// applyOrder keeps a slow rebuild from overwriting a newer one.
type applyOrder struct {
	mu      sync.Mutex
	issued  uint64
	applied uint64
}

func (o *applyOrder) issue() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.issued++
	return o.issued
}

// rebuild builds location again and swaps the result into the running layout.
func rebuild(
	ctx context.Context,
	out *printer,
	session driving.LayoutService,
	location string,
	order *applyOrder,
	seq uint64,
) {
	result, err := graphService.BuildProject(ctx, location, driving.ProjectOptions{})
	switch {
	case errors.Is(err, domain.ErrBuildSuperseded), errors.Is(err, context.Canceled):
		return
	case err != nil:
		logger.Warnw("rebuild failed", "location", location, "error", err)
		return
	}

	order.mu.Lock()
	defer order.mu.Unlock()
	if seq <= order.applied {
		logger.Debugw("discarding stale rebuild", "seq", seq, "applied", order.applied)
		return
	}
	if err := session.Apply(result.Graph); err != nil {
		logger.Warnw("applying rebuilt graph", "error", err)
		return
	}
	order.applied = seq
	out.Printf("rebuilt: %d nodes, %d edges\n", result.Stats.NodeCount, result.Stats.EdgeCount)
}

// saveLayout stores the session's current graph, with positions, as id.
// Rebuilt graphs are not stored on their own so the watched project keeps one id.
func saveLayout(ctx context.Context, out *printer, session driving.LayoutService, id string) error {
	graph, err := session.Graph()
	if err != nil {
		return err
	}
	graph.ID = id
	if err := graphService.SaveGraph(ctx, graph); err != nil {
		return fmt.Errorf("saving layout: %w", err)
	}
	out.Printf("Layout saved to %s\n", id)
	return nil
}
