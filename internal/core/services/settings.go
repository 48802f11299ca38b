package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/neuralmap-cli/internal/core/domain"
	"github.com/custodia-labs/neuralmap-cli/internal/core/ports/driven"
	"github.com/custodia-labs/neuralmap-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// setting binds a config key to the Settings field it controls.
// field returns a *float64, *int, *int64, *bool or *string.
type setting struct {
	key   string
	field func(*domain.Settings) any
}

var settingsTable = []setting{
	{domain.KeySimAlphaMin, func(s *domain.Settings) any { return &s.Simulation.AlphaMin }},
	{domain.KeySimAlphaDecay, func(s *domain.Settings) any { return &s.Simulation.AlphaDecay }},
	{domain.KeySimVelocityDecay, func(s *domain.Settings) any { return &s.Simulation.VelocityDecay }},
	{domain.KeySimLinkDistance, func(s *domain.Settings) any { return &s.Simulation.LinkDistance }},
	{domain.KeySimLinkStrength, func(s *domain.Settings) any { return &s.Simulation.LinkStrength }},
	{domain.KeySimChargeStrength, func(s *domain.Settings) any { return &s.Simulation.ChargeStrength }},
	{domain.KeySimTheta, func(s *domain.Settings) any { return &s.Simulation.Theta }},
	{domain.KeySimDistanceMax, func(s *domain.Settings) any { return &s.Simulation.DistanceMax }},
	{domain.KeySimCenterStrength, func(s *domain.Settings) any { return &s.Simulation.CenterStrength }},
	{domain.KeySimCollisionThreshold, func(s *domain.Settings) any { return &s.Simulation.CollisionThreshold }},
	{domain.KeySimRadialStrength, func(s *domain.Settings) any { return &s.Simulation.RadialStrength }},
	{domain.KeySimFPS, func(s *domain.Settings) any { return &s.Simulation.FPS }},
	{domain.KeyBuilderWorker, func(s *domain.Settings) any { return &s.Builder.UseWorker }},
	{domain.KeyBuilderUserID, func(s *domain.Settings) any { return &s.Builder.UserID }},
	{domain.KeyBuilderMaxFileBytes, func(s *domain.Settings) any { return &s.Builder.MaxFileBytes }},
	{domain.KeyStorageDataDir, func(s *domain.Settings) any { return &s.DataDir }},
	{domain.KeyGitHubToken, func(s *domain.Settings) any { return &s.GitHubToken }},
}

// SettingsService resolves application settings from the config store.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get returns the stored settings over the defaults.
// Returns an error wrapping domain.ErrInvalidInput if the result is invalid.
func (s *SettingsService) Get() (*domain.Settings, error) {
	settings := s.resolve()
	if err := validateStruct(settings); err != nil {
		return nil, fmt.Errorf("settings in %s: %w", s.configStore.Path(), err)
	}
	return &settings, nil
}

// Set parses value for key, validates the resulting settings and persists it.
func (s *SettingsService) Set(key, value string) error {
	entry, ok := lookupSetting(key)
	if !ok {
		return fmt.Errorf("unknown setting %q: %w", key, domain.ErrInvalidInput)
	}

	candidate := s.resolve()
	parsed, err := assign(entry.field(&candidate), value)
	if err != nil {
		return fmt.Errorf("setting %s: %w: %v", key, domain.ErrInvalidInput, err)
	}
	if err := validateStruct(candidate); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys lists the settable keys in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingsTable))
	for i, entry := range settingsTable {
		keys[i] = entry.key
	}
	sort.Strings(keys)
	return keys
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

// resolve overlays stored values on the defaults without validating.
func (s *SettingsService) resolve() domain.Settings {
	settings := domain.DefaultSettings()
	for _, entry := range settingsTable {
		if _, exists := s.configStore.Get(entry.key); !exists {
			continue
		}
		switch p := entry.field(&settings).(type) {
		case *float64:
			*p = s.configStore.GetFloat(entry.key)
		case *int:
			*p = s.configStore.GetInt(entry.key)
		case *int64:
			*p = int64(s.configStore.GetInt(entry.key))
		case *bool:
			*p = s.configStore.GetBool(entry.key)
		case *string:
			*p = s.configStore.GetString(entry.key)
		}
	}
	return settings
}

func lookupSetting(key string) (setting, bool) {
	for _, entry := range settingsTable {
		if entry.key == key {
			return entry, true
		}
	}
	return setting{}, false
}

// assign parses raw into the field's type, stores it and returns the typed value.
func assign(field any, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch p := field.(type) {
	case *float64:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, err
		}
		*p = v
		return v, nil
	case *int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, err
		}
		*p = v
		return v, nil
	case *int64:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		*p = v
		return v, nil
	case *bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, err
		}
		*p = v
		return v, nil
	case *string:
		*p = raw
		return raw, nil
	default:
		return nil, fmt.Errorf("unsupported field type %T", field)
	}
}
