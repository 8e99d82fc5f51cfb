// Package cli implements the annotate command line.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/annotate/internal/core/ports/driving"
	"github.com/custodia-labs/annotate/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// skipSetup marks commands that run without services.
const skipSetup = "annotate/skip-setup"

// Options are the global flags handed to the service factory.
type Options struct {
	Verbose   bool
	Ephemeral bool
}

// Services are the driving ports the commands run against.
type Services struct {
	Data      driving.DataService
	Workspace driving.WorkspaceService
	Migration driving.MigrationService
	Auth      driving.AuthService
	Settings  driving.SettingsService
	Import    driving.ImportService
}

// Factory builds the services once the global flags are parsed.
// The returned function releases them.
type Factory func(ctx context.Context, opts Options) (*Services, func() error, error)

var (
	dataService      driving.DataService
	workspaceService driving.WorkspaceService
	migrationService driving.MigrationService
	authService      driving.AuthService
	settingsService  driving.SettingsService
	importService    driving.ImportService
)

var (
	globalOptions Options
	factory       Factory
	release       func() error
)

var rootCmd = &cobra.Command{
	Use:   "annotate",
	Short: "Manage annotation profiles, datasets and workspaces",
	Long: `Annotate keeps extraction profiles, text datasets and annotation runs in
workspaces. A workspace lives either on this device or in the remote store;
every command works against the active workspace.

Use 'annotate workspace' to pick where data lives and 'annotate migrate' to
copy a local workspace into the remote store.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOptions.Verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(
		&globalOptions.Ephemeral, "ephemeral", false, "keep local data in memory for this run only")
}

// SetVersion sets the version reported by 'annotate version'.
func SetVersion(v string) {
	version = v
}

// Configure installs the services used by the commands.
func Configure(s *Services) {
	if s == nil {
		s = &Services{}
	}
	dataService = s.Data
	workspaceService = s.Workspace
	migrationService = s.Migration
	authService = s.Auth
	settingsService = s.Settings
	importService = s.Import
}

// Execute runs the command line. f builds the services lazily so that
// commands such as 'version' start without touching any store.
func Execute(ctx context.Context, f Factory) error {
	factory = f
	defer func() { factory = nil }()

	err := rootCmd.ExecuteContext(ctx)
	if release != nil {
		err = errors.Join(err, release())
		release = nil
	}
	return err
}

func setupServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(globalOptions.Verbose)

	if factory == nil || cmd.Annotations[skipSetup] == "true" {
		return nil
	}

	svcs, closeFn, err := factory(cmd.Context(), globalOptions)
	if err != nil {
		return err
	}
	Configure(svcs)
	release = closeFn
	return nil
}
