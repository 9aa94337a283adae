package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const apiKeySetting = "push.api_key"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage adpush configuration",
	Long: `View and change the push source and directory settings stored in
config.toml.

Use 'adpush config set KEY VALUE' to change a setting and
'adpush config set-key' to enter the Push API key without echo.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Change one setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Set the Push API key",
	Long:  `Prompts for the Push API key. Input is hidden when run from a terminal.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigSetKey,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configSetKeyCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println(titleStyle.Render("Current Settings"))
	cmd.Println()

	cmd.Println("[Push]")
	cmd.Printf("  Platform: %s\n", settings.Push.Platform)
	cmd.Printf("  Organisation: %s\n", orUnset(settings.Push.Org))
	cmd.Printf("  Source: %s\n", orUnset(settings.Push.Source))
	if settings.Push.APIKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Push.APIKey))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
	cmd.Printf("  Requests per second: %d\n", settings.Push.RequestsPerSecond)
	cmd.Printf("  Stale after: %s\n", settings.Push.StaleAfter)
	cmd.Println()

	cmd.Println("[LDAP]")
	cmd.Printf("  Host: %s\n", orUnset(settings.LDAP.Host))
	cmd.Printf("  Bind user: %s\n", orUnset(settings.LDAP.BindUser))
	cmd.Printf("  Password file: %s\n", settings.LDAP.PasswordFile)
	cmd.Printf("  Main group: %s\n", orUnset(settings.LDAP.MainGroup))
	cmd.Printf("  Group filter: %s\n", settings.LDAP.GroupFilter)
	cmd.Printf("  Users filter: %s\n", settings.LDAP.UsersFilter)
	cmd.Printf("  Command: %s\n", settings.LDAP.Command)
	cmd.Printf("  Parallel exports: %d\n", settings.LDAP.MaxParallelExports)
	cmd.Println()

	cmd.Printf("Work directory: %s\n", settings.WorkDir)
	if settings.MetricsTextfile != "" {
		cmd.Printf("Metrics textfile: %s\n", settings.MetricsTextfile)
	}

	cmd.Println()
	cmd.Println(mutedStyle.Render("Keys: " + strings.Join(settingsService.Keys(), ", ")))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	if key == apiKeySetting {
		value = maskAPIKey(value)
	}
	cmd.Printf("%s = %s\n", key, value)
	return nil
}

func runConfigSetKey(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Print("Push API key: ")
	key := readPassword(cmd)
	cmd.Println()
	if key == "" {
		return errors.New("no API key entered")
	}

	if err := settingsService.Set(apiKeySetting, key); err != nil {
		return fmt.Errorf("failed to save API key: %w", err)
	}
	cmd.Printf("API key saved: %s\n", maskAPIKey(key))
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword(cmd *cobra.Command) string {
	// Try to read password without echo
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(cmd.InOrStdin())
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func orUnset(value string) string {
	if value == "" {
		return "(not set)"
	}
	return value
}
