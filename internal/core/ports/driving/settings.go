package driving

import "github.com/custodia-labs/adpush/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves the current settings, with defaults applied.
	Get() (*domain.Settings, error)

	// Set stores one setting by key, converting the value to the key's type.
	Set(key, value string) error

	// Keys lists the supported setting keys.
	Keys() []string
}
