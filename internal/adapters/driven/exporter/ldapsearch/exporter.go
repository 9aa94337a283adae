// Package ldapsearch exports directory entries to LDIF files by running
// the OpenLDAP ldapsearch client.
package ldapsearch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/go-ldap/ldap/v3"

	"github.com/custodia-labs/adpush/internal/core/domain"
	"github.com/custodia-labs/adpush/internal/core/ports/driven"
	"github.com/custodia-labs/adpush/internal/logger"
)

// Ensure Exporter implements the interface.
var _ driven.DirectoryExporter = (*Exporter)(nil)

// GroupsFile is the name of the group list export.
const GroupsFile = "groups.ldif"

// Config holds the ldapsearch connection settings.
type Config struct {
	Command      string
	Host         string
	BindUser     string
	PasswordFile string
	MainGroup    string
	GroupFilter  string
	UsersFilter  string

	// OutputDir receives the .ldif files.
	OutputDir string
}

// Runner executes a command, streaming its standard output to stdout.
type Runner interface {
	Run(ctx context.Context, stdout io.Writer, name string, args ...string) error
}

// ExecRunner runs commands with os/exec. Arguments are passed directly,
// never through a shell.
type ExecRunner struct{}

// Run executes name with args. Standard error is captured into the error.
func (ExecRunner) Run(ctx context.Context, stdout io.Writer, name string, args ...string) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

// Exporter implements driven.DirectoryExporter with ldapsearch.
type Exporter struct {
	cfg    Config
	runner Runner
}

// NewExporter creates an exporter running the real ldapsearch binary.
func NewExporter(cfg Config) *Exporter {
	return NewExporterWithRunner(cfg, ExecRunner{})
}

// NewExporterWithRunner creates an exporter with a custom command runner.
func NewExporterWithRunner(cfg Config, runner Runner) *Exporter {
	if cfg.Command == "" {
		cfg.Command = domain.DefaultLDAPCommand
	}
	cfg.Host = strings.TrimSpace(cfg.Host)
	return &Exporter{cfg: cfg, runner: runner}
}

// ExportGroups writes the group list below the main group to groups.ldif.
func (e *Exporter) ExportGroups(ctx context.Context) (string, error) {
	path := filepath.Join(e.cfg.OutputDir, GroupsFile)
	if err := e.export(ctx, path, e.cfg.MainGroup, e.cfg.GroupFilter, "ou"); err != nil {
		return "", err
	}
	return path, nil
}

// ExportMembers writes the users below group to <ou>.ldif.
func (e *Exporter) ExportMembers(ctx context.Context, group domain.Group) (string, error) {
	if group.OU == "" {
		group.OU = organizationalUnit(group.DN)
	}
	path := filepath.Join(e.cfg.OutputDir, group.ExportName())
	if err := e.export(ctx, path, group.DN, e.cfg.UsersFilter); err != nil {
		return "", err
	}
	return path, nil
}

// Args returns the ldapsearch arguments for one search.
func (e *Exporter) Args(base, filter string, attrs ...string) []string {
	args := []string{
		"-LLL",
		"-H", "ldap://" + e.cfg.Host,
		"-D", e.cfg.BindUser,
		"-y", e.cfg.PasswordFile,
		"-u",
		"-b", base,
	}
	if filter != "" {
		args = append(args, filter)
	}
	return append(args, attrs...)
}

func (e *Exporter) export(ctx context.Context, path, base, filter string, attrs ...string) error {
	if _, err := ldap.ParseDN(base); err != nil || base == "" {
		return fmt.Errorf("%w: invalid search base %q", domain.ErrExportFailed, base)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrExportFailed, err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrExportFailed, err)
	}

	logger.Debug("Exporting %s to %s", base, path)
	runErr := e.runner.Run(ctx, out, e.cfg.Command, e.Args(base, filter, attrs...)...)
	closeErr := out.Close()

	if runErr == nil {
		runErr = closeErr
	}
	if runErr != nil {
		_ = os.Remove(path)
		return fmt.Errorf("%w: %s: %v", domain.ErrExportFailed, base, runErr)
	}
	return nil
}

// organizationalUnit returns the value of the first OU component of dn.
func organizationalUnit(dn string) string {
	parsed, err := ldap.ParseDN(dn)
	if err != nil {
		return ""
	}
	for _, rdn := range parsed.RDNs {
		for _, atv := range rdn.Attributes {
			if strings.EqualFold(atv.Type, "ou") {
				return atv.Value
			}
		}
	}
	return ""
}
