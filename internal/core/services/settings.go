package services

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/custodia-labs/adpush/internal/core/domain"
	"github.com/custodia-labs/adpush/internal/core/ports/driven"
	"github.com/custodia-labs/adpush/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyPushPlatform     = "push.platform"
	KeyPushOrg          = "push.org"
	KeyPushSource       = "push.source"
	KeyPushAPIKey       = "push.api_key"
	KeyPushRate         = "push.requests_per_second"
	KeyPushStaleAfter   = "push.stale_after_hours"
	KeyLDAPHost         = "ldap.host"
	KeyLDAPBindUser     = "ldap.bind_user"
	KeyLDAPPasswordFile = "ldap.password_file"
	KeyLDAPMainGroup    = "ldap.main_group"
	KeyLDAPGroupFilter  = "ldap.group_filter"
	KeyLDAPUsersFilter  = "ldap.users_filter"
	KeyLDAPCommand      = "ldap.command"
	KeyLDAPMaxParallel  = "ldap.max_parallel_exports"
	KeyWorkDir          = "work_dir"
	KeyMetricsTextfile  = "metrics.textfile"
)

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
)

var settingKeys = map[string]keyKind{
	KeyPushPlatform:     kindString,
	KeyPushOrg:          kindString,
	KeyPushSource:       kindString,
	KeyPushAPIKey:       kindString,
	KeyPushRate:         kindInt,
	KeyPushStaleAfter:   kindFloat,
	KeyLDAPHost:         kindString,
	KeyLDAPBindUser:     kindString,
	KeyLDAPPasswordFile: kindString,
	KeyLDAPMainGroup:    kindString,
	KeyLDAPGroupFilter:  kindString,
	KeyLDAPUsersFilter:  kindString,
	KeyLDAPCommand:      kindString,
	KeyLDAPMaxParallel:  kindInt,
	KeyWorkDir:          kindString,
	KeyMetricsTextfile:  kindString,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	settings := &domain.Settings{
		Push: domain.PushSettings{
			Platform:          s.getString(KeyPushPlatform, defaults.Push.Platform),
			Org:               s.configStore.GetString(KeyPushOrg),
			Source:            s.configStore.GetString(KeyPushSource),
			APIKey:            s.configStore.GetString(KeyPushAPIKey),
			RequestsPerSecond: s.getInt(KeyPushRate, defaults.Push.RequestsPerSecond),
			StaleAfter:        s.getHours(KeyPushStaleAfter, defaults.Push.StaleAfter),
		},
		LDAP: domain.LDAPSettings{
			Host:               s.configStore.GetString(KeyLDAPHost),
			BindUser:           s.configStore.GetString(KeyLDAPBindUser),
			PasswordFile:       s.getString(KeyLDAPPasswordFile, defaults.LDAP.PasswordFile),
			MainGroup:          s.configStore.GetString(KeyLDAPMainGroup),
			GroupFilter:        s.getString(KeyLDAPGroupFilter, defaults.LDAP.GroupFilter),
			UsersFilter:        s.getString(KeyLDAPUsersFilter, defaults.LDAP.UsersFilter),
			Command:            s.getString(KeyLDAPCommand, defaults.LDAP.Command),
			MaxParallelExports: s.getInt(KeyLDAPMaxParallel, defaults.LDAP.MaxParallelExports),
		},
		WorkDir:         s.getString(KeyWorkDir, defaults.WorkDir),
		MetricsTextfile: s.configStore.GetString(KeyMetricsTextfile),
	}

	return settings, nil
}

// Set stores one setting, converting value to the key's type.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidInput, key)
		}
		return s.configStore.Set(key, n)
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 0 || math.IsInf(f, 0) {
			return fmt.Errorf("%w: %s must be a positive number", domain.ErrInvalidInput, key)
		}
		return s.configStore.Set(key, f)
	default:
		return s.configStore.Set(key, value)
	}
}

// Keys lists the supported setting keys, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKeys))
	for k := range settingKeys {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getHours(key string, defaultVal time.Duration) time.Duration {
	hours := s.configStore.GetFloat(key)
	if hours <= 0 {
		return defaultVal
	}
	return time.Duration(hours * float64(time.Hour))
}
