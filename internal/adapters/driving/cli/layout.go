package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/neuralmap-cli/internal/adapters/driven/frames"
	"github.com/custodia-labs/neuralmap-cli/internal/core/domain"
	"github.com/custodia-labs/neuralmap-cli/internal/core/ports/driving"
)

var (
	layoutGraphID   string
	layoutSave      bool
	layoutRadial    bool
	layoutCenter    string
	layoutMaxFrames int
	layoutJSON      bool
)

var layoutCmd = &cobra.Command{
	Use:   "layout [location]",
	Short: "Compute a 3D layout",
	Long: `Runs the force simulation on a project graph until it settles and
prints the final node positions.

The graph is built from the location (default: current directory) or, with
--graph, loaded from the store. Frames run as fast as possible rather than
in real time.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLayout,
}

func init() {
	layoutCmd.Flags().StringVar(&layoutGraphID, "graph", "", "lay out a stored graph instead of building")
	layoutCmd.Flags().BoolVar(&layoutSave, "save", false, "store the positions on the graph")
	layoutCmd.Flags().BoolVar(&layoutRadial, "radial", false, "arrange nodes in rings around the center node")
	layoutCmd.Flags().StringVar(&layoutCenter, "center", "root", "center node id for --radial")
	layoutCmd.Flags().IntVar(&layoutMaxFrames, "max-frames", 2000, "stop after this many frames")
	layoutCmd.Flags().BoolVar(&layoutJSON, "json", false, "print positions as JSON")
	rootCmd.AddCommand(layoutCmd)
}

func runLayout(cmd *cobra.Command, args []string) error {
	if err := requireLayout(); err != nil {
		return err
	}
	if layoutMaxFrames <= 0 {
		return fmt.Errorf("--max-frames must be positive: %w", domain.ErrInvalidInput)
	}

	ctx := commandContext(cmd)
	graph, err := layoutGraph(ctx, args)
	if err != nil {
		return err
	}

	sched := frames.NewManual()
	session := layoutFactory(sched)
	defer session.Dispose()

	if err := session.Load(graph); err != nil {
		return fmt.Errorf("loading graph: %w", err)
	}
	if layoutRadial {
		if err := session.SetRadial(layoutCenter, true); err != nil {
			return fmt.Errorf("enabling radial layout: %w", err)
		}
	}

	if w := cmd.ErrOrStderr(); isTerminal(w) {
		unsubscribe := session.Subscribe(driving.LayoutObserver{
			OnTick: func(s domain.SimulationState) {
				fmt.Fprintf(w, "\rframe %5d  alpha %.4f", sched.Frames(), s.Alpha)
			},
			OnEnd: func() { fmt.Fprintln(w) },
		})
		defer unsubscribe()
	}

	if err := session.Start(); err != nil {
		return fmt.Errorf("starting layout: %w", err)
	}
	ran := sched.RunUntilIdle(layoutMaxFrames)

	state, err := session.State()
	if err != nil {
		return err
	}
	positions, err := session.Positions()
	if err != nil {
		return err
	}

	if layoutSave {
		if graph.ID == "" {
			return fmt.Errorf("graph was not stored: %w", domain.ErrNotFound)
		}
		if err := graphService.SavePositions(ctx, graph.ID, positions); err != nil {
			return fmt.Errorf("saving positions: %w", err)
		}
	}

	if layoutJSON {
		return printJSON(cmd, positions)
	}

	settled := "settled"
	if state.IsRunning {
		settled = "stopped before settling"
	}
	cmd.Printf("%s after %d frames (alpha %.4f)\n", settled, ran, state.Alpha)
	for _, n := range state.Nodes {
		cmd.Printf("  %-40s %8.1f %8.1f %8.1f\n", n.Title, n.X, n.Y, n.Z)
	}
	if layoutSave {
		cmd.Printf("Positions saved to %s\n", graph.ID)
	}
	return nil
}

// layoutGraph loads the graph named by --graph or builds the location.
func layoutGraph(ctx context.Context, args []string) (*domain.NeuralGraph, error) {
	if layoutGraphID != "" {
		if len(args) > 0 {
			return nil, errors.New("--graph and a location are mutually exclusive")
		}
		graph, err := graphService.Get(ctx, layoutGraphID)
		if err != nil {
			return nil, fmt.Errorf("loading graph %s: %w", layoutGraphID, err)
		}
		return graph, nil
	}

	location, err := resolveLocation(args)
	if err != nil {
		return nil, err
	}
	result, err := graphService.BuildProject(ctx, location, driving.ProjectOptions{Persist: layoutSave})
	if err != nil {
		return nil, fmt.Errorf("build failed: %w", err)
	}
	return result.Graph, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
