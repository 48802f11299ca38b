package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/neuralmap-cli/internal/core/domain"
)

func TestSettingsCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0, len(settingsCmd.Commands()))
	for _, cmd := range settingsCmd.Commands() {
		names = append(names, cmd.Name())
	}

	assert.Contains(t, names, "show")
	assert.Contains(t, names, "set")
	assert.Contains(t, names, "keys")
	assert.Contains(t, names, "token")
}

func TestSettingsShowCmd(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()
	require.NoError(t, env.settings.Set(domain.KeyGitHubToken, "ghp_1234567890abcdef"))

	out, err := execute("settings")

	require.NoError(t, err)
	assert.Contains(t, out, "[Simulation]")
	assert.Contains(t, out, "Frame rate:         60 fps")
	assert.Contains(t, out, "Execution:          worker")
	assert.Contains(t, out, "Data dir:           (default)")
	assert.Contains(t, out, "ghp_...cdef")
	assert.NotContains(t, out, "1234567890")
}

func TestSettingsSetCmd(t *testing.T) {
	t.Run("stores value", func(t *testing.T) {
		env, cleanup := setupTestServices()
		defer cleanup()

		out, err := execute("settings", "set", "--", domain.KeySimChargeStrength, "-50")

		require.NoError(t, err)
		assert.Contains(t, out, "simulation.charge_strength = -50")
		settings, err := env.settings.Get()
		require.NoError(t, err)
		assert.InDelta(t, -50, settings.Simulation.ChargeStrength, 1e-9)
	})

	t.Run("masks token", func(t *testing.T) {
		_, cleanup := setupTestServices()
		defer cleanup()

		out, err := execute("settings", "set", domain.KeyGitHubToken, "ghp_1234567890abcdef")

		require.NoError(t, err)
		assert.Contains(t, out, "github.token = ghp_...cdef")
	})

	t.Run("unknown key", func(t *testing.T) {
		_, cleanup := setupTestServices()
		defer cleanup()

		_, err := execute("settings", "set", "nope", "1")

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Contains(t, err.Error(), "settings keys")
	})

	t.Run("requires key and value", func(t *testing.T) {
		_, cleanup := setupTestServices()
		defer cleanup()

		_, err := execute("settings", "set", domain.KeySimFPS)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "accepts 2 arg(s)")
	})
}

func TestSettingsKeysCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("settings", "keys")

	require.NoError(t, err)
	assert.Contains(t, out, domain.KeySimFPS)
	assert.Contains(t, out, domain.KeyBuilderWorker)
	assert.Contains(t, out, domain.KeyGitHubToken)
}

func TestSettingsTokenCmd(t *testing.T) {
	t.Run("reads token from input", func(t *testing.T) {
		env, cleanup := setupTestServices()
		defer cleanup()
		rootCmd.SetIn(strings.NewReader("ghp_abcdefghijklmnop\n"))

		out, err := execute("settings", "token")

		require.NoError(t, err)
		assert.Contains(t, out, "Token saved: ghp_...mnop")
		settings, err := env.settings.Get()
		require.NoError(t, err)
		assert.Equal(t, "ghp_abcdefghijklmnop", settings.GitHubToken)
	})

	t.Run("empty token", func(t *testing.T) {
		_, cleanup := setupTestServices()
		defer cleanup()
		rootCmd.SetIn(strings.NewReader("\n"))

		_, err := execute("settings", "token")

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestMaskToken(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short token",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long token",
			input:    "ghp_1234567890abcdef",
			expected: "ghp_...cdef",
		},
		{
			name:     "Empty token",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskToken(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestReadPassword_FallsBackToLine(t *testing.T) {
	assert.Equal(t, "secret", readPassword(strings.NewReader("  secret  \nmore")))
}
