package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/neuralmap-cli/internal/core/domain"
	"github.com/custodia-labs/neuralmap-cli/internal/core/ports/driving"
)

var (
	buildTheme  string
	buildName   string
	buildNoSave bool
	buildJSON   bool
)

var buildCmd = &cobra.Command{
	Use:   "build [location]",
	Short: "Build a project graph",
	Long: `Scans a project and builds its graph of folders, files and imports.

The location is a directory (default: current directory), a file:// URL or
a GitHub repository written as github://owner/repo[@ref].
The graph is saved to the local store unless --no-save is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildTheme, "theme", "", "theme id stored on the graph")
	buildCmd.Flags().StringVar(&buildName, "name", "", "project name (default: derived from the location)")
	buildCmd.Flags().BoolVar(&buildNoSave, "no-save", false, "do not store the graph")
	buildCmd.Flags().BoolVar(&buildJSON, "json", false, "print the graph as JSON")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	if err := requireGraphService(); err != nil {
		return err
	}

	location, err := resolveLocation(args)
	if err != nil {
		return err
	}

	result, err := graphService.BuildProject(commandContext(cmd), location, driving.ProjectOptions{
		ThemeID:           buildTheme,
		LinkedProjectName: buildName,
		Persist:           !buildNoSave,
	})
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	if buildJSON {
		return printJSON(cmd, result.Graph)
	}
	printBuildResult(cmd, result, !buildNoSave)
	return nil
}

func printBuildResult(cmd *cobra.Command, result *domain.BuildResult, saved bool) {
	g := result.Graph
	cmd.Printf("Built %s: %d nodes, %d edges in %.1fms\n",
		g.Title, result.Stats.NodeCount, result.Stats.EdgeCount, result.Stats.Elapsed)

	counts := make(map[domain.NodeType]int)
	for _, n := range g.Nodes {
		counts[n.Type]++
	}
	for _, t := range domain.NodeTypes() {
		if counts[t] > 0 {
			cmd.Printf("  %-8s %d\n", t, counts[t])
		}
	}
	if saved {
		cmd.Printf("Saved as %s\n", g.ID)
	}
}

// resolveLocation returns the build location named by args, making
// filesystem paths absolute so stored graphs can be found again.
func resolveLocation(args []string) (string, error) {
	location := "."
	if len(args) > 0 {
		location = args[0]
	}
	if strings.Contains(location, "://") && !strings.HasPrefix(location, "file://") {
		return location, nil
	}
	path := strings.TrimPrefix(location, "file://")
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", location, err)
	}
	return abs, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
