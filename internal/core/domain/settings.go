package domain

import (
	"fmt"
	"time"
)

// Setting defaults.
const (
	DefaultPlatform           = "push.cloud.coveo.com"
	DefaultRequestsPerSecond  = 5
	DefaultLDAPCommand        = "ldapsearch"
	DefaultLDAPPasswordFile   = "ldapUser.password"
	DefaultGroupFilter        = "(ou=* Users)"
	DefaultUsersFilter        = "(objectclass=user)"
	DefaultMaxParallelExports = 8
	DefaultWorkDir            = "./temp"
)

// PushSettings configures the remote push source.
type PushSettings struct {
	Platform          string
	Org               string
	Source            string
	APIKey            string
	RequestsPerSecond int
	StaleAfter        time.Duration
}

// LDAPSettings configures the directory exporter.
type LDAPSettings struct {
	Host               string
	BindUser           string
	PasswordFile       string
	MainGroup          string
	GroupFilter        string
	UsersFilter        string
	Command            string
	MaxParallelExports int
}

// Settings holds all adpush configuration.
type Settings struct {
	Push PushSettings
	LDAP LDAPSettings

	// WorkDir holds exports and intermediate artifacts.
	WorkDir string

	// MetricsTextfile is an optional Prometheus textfile destination.
	MetricsTextfile string
}

// DefaultSettings returns sensible defaults.
func DefaultSettings() Settings {
	return Settings{
		Push: PushSettings{
			Platform:          DefaultPlatform,
			RequestsPerSecond: DefaultRequestsPerSecond,
			StaleAfter:        DefaultStaleAfter,
		},
		LDAP: LDAPSettings{
			PasswordFile:       DefaultLDAPPasswordFile,
			GroupFilter:        DefaultGroupFilter,
			UsersFilter:        DefaultUsersFilter,
			Command:            DefaultLDAPCommand,
			MaxParallelExports: DefaultMaxParallelExports,
		},
		WorkDir: DefaultWorkDir,
	}
}

// ValidateCrawl checks the settings needed to export the directory.
func (s Settings) ValidateCrawl() error {
	switch {
	case s.LDAP.Host == "":
		return fmt.Errorf("%w: ldap.host", ErrNotConfigured)
	case s.LDAP.MainGroup == "":
		return fmt.Errorf("%w: ldap.main_group", ErrNotConfigured)
	case s.WorkDir == "":
		return fmt.Errorf("%w: work_dir", ErrNotConfigured)
	}
	return nil
}

// ValidatePublish checks the settings needed to push documents.
func (s Settings) ValidatePublish() error {
	switch {
	case s.Push.Platform == "":
		return fmt.Errorf("%w: push.platform", ErrNotConfigured)
	case s.Push.Org == "":
		return fmt.Errorf("%w: push.org", ErrNotConfigured)
	case s.Push.Source == "":
		return fmt.Errorf("%w: push.source", ErrNotConfigured)
	case s.Push.APIKey == "":
		return fmt.Errorf("%w: push.api_key", ErrNotConfigured)
	case s.LDAP.Host == "":
		return fmt.Errorf("%w: ldap.host", ErrNotConfigured)
	case s.Push.StaleAfter <= 0:
		return fmt.Errorf("%w: push.stale_after_hours must be positive", ErrInvalidInput)
	}
	return nil
}
