package driving

import "github.com/custodia-labs/neuralmap-cli/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get resolves the current settings over the defaults.
	Get() (*domain.Settings, error)

	// Set parses value for key and persists it.
	// Returns domain.ErrInvalidInput for unknown keys or unparsable values.
	Set(key, value string) error

	// Keys lists the settable keys.
	Keys() []string

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings
}
