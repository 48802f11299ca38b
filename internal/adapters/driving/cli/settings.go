package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/neuralmap-cli/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change simulation, builder and storage settings.

Settings are stored in ~/.neuralmap/config.toml. Unset values use defaults.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Long: `Change a setting. Run 'neuralmap settings keys' for the list of keys.

Negative numbers must follow "--" so they are not read as flags.

Examples:
  neuralmap settings set builder.worker false
  neuralmap settings set -- simulation.charge_strength -50`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List setting keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

var settingsTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Set the GitHub token",
	Long: `Prompts for a GitHub personal access token used to read
github:// locations. Input is not echoed.`,
	Args: cobra.NoArgs,
	RunE: runSettingsToken,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsTokenCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsServiceMissing
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	sim := settings.Simulation
	cmd.Println("[Simulation]")
	cmd.Printf("  Alpha min:          %g\n", sim.AlphaMin)
	cmd.Printf("  Alpha decay:        %g\n", sim.AlphaDecay)
	cmd.Printf("  Velocity decay:     %g\n", sim.VelocityDecay)
	cmd.Printf("  Link distance:      %g\n", sim.LinkDistance)
	cmd.Printf("  Link strength:      %g\n", sim.LinkStrength)
	cmd.Printf("  Charge strength:    %g\n", sim.ChargeStrength)
	cmd.Printf("  Theta:              %g\n", sim.Theta)
	cmd.Printf("  Distance max:       %g\n", sim.DistanceMax)
	cmd.Printf("  Center strength:    %g\n", sim.CenterStrength)
	cmd.Printf("  Collision at:       %d nodes\n", sim.CollisionThreshold)
	cmd.Printf("  Radial strength:    %g\n", sim.RadialStrength)
	cmd.Printf("  Frame rate:         %d fps\n", sim.FPS)
	cmd.Println()

	cmd.Println("[Builder]")
	mode := "in-process"
	if settings.Builder.UseWorker {
		mode = "worker"
	}
	cmd.Printf("  Execution:          %s\n", mode)
	cmd.Printf("  User ID:            %s\n", settings.Builder.UserID)
	cmd.Printf("  Max file bytes:     %d\n", settings.Builder.MaxFileBytes)
	cmd.Println()

	cmd.Println("[Storage]")
	dataDir := settings.DataDir
	if dataDir == "" {
		dataDir = "(default)"
	}
	cmd.Printf("  Data dir:           %s\n", dataDir)
	cmd.Println()

	cmd.Println("[GitHub]")
	if settings.GitHubToken != "" {
		cmd.Printf("  Token:              %s\n", maskToken(settings.GitHubToken))
	} else {
		cmd.Printf("  Token:              (not set)\n")
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errSettingsServiceMissing
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return fmt.Errorf("%w (run 'neuralmap settings keys')", err)
		}
		return fmt.Errorf("failed to save setting: %w", err)
	}
	if key == domain.KeyGitHubToken {
		value = maskToken(value)
	}
	cmd.Printf("%s = %s\n", key, value)
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsServiceMissing
	}
	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

func runSettingsToken(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsServiceMissing
	}

	cmd.Print("GitHub token: ")
	token := readPassword(cmd.InOrStdin())
	cmd.Println()
	if token == "" {
		return fmt.Errorf("empty token: %w", domain.ErrInvalidInput)
	}
	if err := settingsService.Set(domain.KeyGitHubToken, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	cmd.Printf("Token saved: %s\n", maskToken(token))
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword(in io.Reader) string {
	// Try to read password without echo
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(in)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
