package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var graphJSON bool

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Manage stored graphs",
	Long:  `List, inspect and delete the graphs held in the local store.`,
}

var graphListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored graphs",
	Args:  cobra.NoArgs,
	RunE:  runGraphList,
}

var graphShowCmd = &cobra.Command{
	Use:   "show [graph-id]",
	Short: "Show a stored graph",
	Args:  cobra.ExactArgs(1),
	RunE:  runGraphShow,
}

var graphDeleteCmd = &cobra.Command{
	Use:   "delete [graph-id]",
	Short: "Delete a stored graph",
	Args:  cobra.ExactArgs(1),
	RunE:  runGraphDelete,
}

func init() {
	graphShowCmd.Flags().BoolVar(&graphJSON, "json", false, "print the full graph as JSON")
	graphCmd.AddCommand(graphListCmd)
	graphCmd.AddCommand(graphShowCmd)
	graphCmd.AddCommand(graphDeleteCmd)
	rootCmd.AddCommand(graphCmd)
}

func runGraphList(cmd *cobra.Command, _ []string) error {
	if err := requireGraphService(); err != nil {
		return err
	}

	graphs, err := graphService.List(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list graphs: %w", err)
	}
	if len(graphs) == 0 {
		cmd.Println("No graphs stored. Run 'neuralmap build' to create one.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tNODES\tEDGES\tUPDATED\tPATH")
	for _, g := range graphs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n",
			g.ID, g.Title, g.NodeCount, g.EdgeCount, g.UpdatedAt.Local().Format(time.DateTime), g.ProjectPath)
	}
	return w.Flush()
}

func runGraphShow(cmd *cobra.Command, args []string) error {
	if err := requireGraphService(); err != nil {
		return err
	}

	graph, err := graphService.Get(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to get graph: %w", err)
	}
	if graphJSON {
		return printJSON(cmd, graph)
	}

	cmd.Printf("ID:       %s\n", graph.ID)
	cmd.Printf("Title:    %s\n", graph.Title)
	cmd.Printf("Path:     %s\n", graph.ProjectPath)
	cmd.Printf("Nodes:    %d\n", len(graph.Nodes))
	cmd.Printf("Edges:    %d\n", len(graph.Edges))
	cmd.Printf("Updated:  %s\n", graph.UpdatedAt.Local().Format(time.DateTime))
	cmd.Println()

	placed := 0
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tTITLE\tIMPORTANCE\tPOSITION")
	for _, n := range graph.Nodes {
		pos := "-"
		if n.Position != nil {
			pos = fmt.Sprintf("%.1f, %.1f, %.1f", n.Position.X, n.Position.Y, n.Position.Z)
			placed++
		}
		fmt.Fprintf(w, "%s\t%s\t%g\t%s\n", n.Type, n.Title, n.Importance, pos)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if placed == 0 {
		cmd.Println()
		cmd.Printf("No saved layout. Run 'neuralmap layout --graph %s --save' to compute one.\n", graph.ID)
	}
	return nil
}

func runGraphDelete(cmd *cobra.Command, args []string) error {
	if err := requireGraphService(); err != nil {
		return err
	}

	if err := graphService.Delete(commandContext(cmd), args[0]); err != nil {
		return fmt.Errorf("failed to delete graph: %w", err)
	}
	cmd.Printf("Graph %s deleted.\n", args[0])
	return nil
}
