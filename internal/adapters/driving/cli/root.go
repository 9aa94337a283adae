// Package cli provides the adpush command line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/adpush/internal/core/ports/driving"
	"github.com/custodia-labs/adpush/internal/logger"
)

var version = "dev"

// Core services used by the commands.
var (
	settingsService driving.SettingsService
	crawler         driving.Crawler
	publisher       driving.Publisher
	runHistory      driving.RunHistory
	closeServices   func() error
)

// Global flags.
var (
	verbose   bool
	configDir string
)

var wiring Wiring

var rootCmd = &cobra.Command{
	Use:   "adpush",
	Short: "Push Active Directory users to a Coveo source",
	Long: `adpush exports user records from Active Directory with ldapsearch,
resolves the management hierarchy and pushes one document per user
to a Coveo Push API source.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.adpush)")
}

// Services are the core services the commands run against.
type Services struct {
	Settings  driving.SettingsService
	Crawler   driving.Crawler
	Publisher driving.Publisher
	Runs      driving.RunHistory

	// Close releases resources once the command has run. May be nil.
	Close func() error
}

// Wiring builds the services for a configuration directory.
type Wiring func(configDir string) (*Services, error)

// SetServices installs the services used by the commands.
func SetServices(s *Services) {
	settingsService = s.Settings
	crawler = s.Crawler
	publisher = s.Publisher
	runHistory = s.Runs
	closeServices = s.Close
}

// Execute runs the root command. wire is called once flags are parsed.
func Execute(ver string, wire Wiring) error {
	version = ver
	wiring = wire

	err := rootCmd.Execute()

	if closeServices != nil {
		if cerr := closeServices(); cerr != nil {
			logger.Warn("close: %v", cerr)
		}
	}
	return err
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if wiring == nil {
		return nil
	}
	services, err := wiring(configDir)
	if err != nil {
		return fmt.Errorf("failed to initialise: %w", err)
	}
	SetServices(services)
	return nil
}
