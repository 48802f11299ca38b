package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/neuralmap-cli/internal/adapters/driven/frames"
	"github.com/custodia-labs/neuralmap-cli/internal/adapters/driving/tui"
)

var tuiGraphID string

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui [location]",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive layout monitor for neuralmap.

The monitor builds the project (or loads a stored graph with --graph), runs
its force layout in real time and lists nodes by importance with their
positions and speed.

Controls:
  ↑/k, ↓/j - Select node
  Space    - Pause / resume
  r        - Reheat
  p        - Pin / unpin selected node
  c        - Toggle radial layout
  s        - Save positions
  ?        - Toggle help
  q        - Quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().StringVar(&tuiGraphID, "graph", "", "monitor a stored graph instead of building")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if err := requireLayout(); err != nil {
		return err
	}

	ctx := commandContext(cmd)
	cfg := simulationConfig()
	opts := []tui.Option{tui.WithAlphaMin(cfg.AlphaMin)}

	location := ""
	if tuiGraphID != "" {
		graph, err := graphService.Get(ctx, tuiGraphID)
		if err != nil {
			return fmt.Errorf("loading graph %s: %w", tuiGraphID, err)
		}
		location = graph.ProjectPath
		opts = append(opts, tui.WithGraph(graph))
	} else {
		resolved, err := resolveLocation(args)
		if err != nil {
			return err
		}
		location = resolved
	}

	ticker := frames.NewTicker(cfg.FPS)
	defer ticker.Close()
	layout := layoutFactory(ticker)
	defer layout.Dispose()

	// Create the TUI app
	app, err := tui.NewApp(tui.NewPorts(graphService, layout), location, opts...)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	// Set up context from command
	app.WithContext(ctx)

	// Create and run the bubbletea program
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return app.Err()
}
