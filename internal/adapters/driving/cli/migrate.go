package cli

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/annotate/internal/adapters/driving/tui"
	"github.com/custodia-labs/annotate/internal/core/domain"
	"github.com/custodia-labs/annotate/internal/core/ports/driving"
)

var (
	migrateSource string
	migrateTarget string
	migrateName   string
	migratePlain  bool
)

// isTerminal reports whether progress can be drawn interactively.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy a local workspace into the remote store",
	Long: `Copy every profile, dataset and annotation of a local workspace into the
remote store. Ids are remapped so references stay intact; records whose
parent could not be copied are skipped and reported.

The local workspace is left untouched. Running the migration again copies
everything again.

Examples:
  # Copy the active workspace into a new remote workspace
  annotate migrate

  # Copy into an existing remote workspace
  annotate migrate --target <remote-workspace-id>`,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&migrateSource, "source", "", "local workspace to copy (default: the active one)")
	migrateCmd.Flags().StringVar(&migrateTarget, "target", "", "existing remote workspace to copy into")
	migrateCmd.Flags().StringVar(&migrateName, "name", "", "name of the remote workspace to create")
	migrateCmd.Flags().BoolVar(&migratePlain, "plain", false, "print progress lines instead of the live view")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	if migrationService == nil {
		return errors.New("migration service not configured")
	}
	if migrateTarget != "" && migrateName != "" {
		return errors.New("--target and --name cannot be combined")
	}

	req := driving.MigrationRequest{
		SourceWorkspaceID: migrateSource,
		TargetWorkspaceID: migrateTarget,
		TargetName:        migrateName,
	}

	var (
		summary *domain.MigrationSummary
		err     error
	)
	if !migratePlain && isTerminal() {
		summary, err = migrateInteractive(cmd, req)
	} else {
		summary, err = migratePlainText(cmd, req)
	}
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	printMigrationSummary(cmd, summary)
	return nil
}

func migrateInteractive(cmd *cobra.Command, req driving.MigrationRequest) (*domain.MigrationSummary, error) {
	app, err := tui.NewApp(&tui.Ports{Migration: migrationService}, req)
	if err != nil {
		return nil, err
	}
	return app.WithContext(cmd.Context()).Run(
		tea.WithOutput(cmd.OutOrStdout()),
		tea.WithInput(cmd.InOrStdin()),
	)
}

func migratePlainText(cmd *cobra.Command, req driving.MigrationRequest) (*domain.MigrationSummary, error) {
	// Progress arrives from worker goroutines.
	var mu sync.Mutex
	progress := func(e domain.MigrationEvent) {
		mu.Lock()
		defer mu.Unlock()

		if e.IsPhase() {
			cmd.Printf("Migrating %s...\n", e.Phase)
			return
		}
		if e.Outcome != domain.OutcomeSucceeded {
			cmd.Printf("  %s %s %s: %v\n", e.Outcome, e.Kind, e.LocalID, e.Err)
		}
	}

	return migrationService.Migrate(cmd.Context(), req, progress)
}

func printMigrationSummary(cmd *cobra.Command, summary *domain.MigrationSummary) {
	cmd.Println()
	cmd.Println(outputStyles.Title.Render("Migration finished"))
	cmd.Printf("  Target workspace: %s\n", summary.TargetWorkspaceID)
	cmd.Println()

	rows := make([][]string, 0, len(domain.MigrationKinds()))
	for _, kind := range domain.MigrationKinds() {
		c := summary.Counts[kind]
		if c.Total() == 0 {
			continue
		}
		rows = append(rows, []string{
			string(kind),
			fmt.Sprintf("%d", c.Succeeded),
			fmt.Sprintf("%d", c.Skipped),
			outputStyles.Outcome(domain.KindCounts{Failed: c.Failed}, fmt.Sprintf("%d", c.Failed)),
		})
	}
	if len(rows) == 0 {
		cmd.Println("  Nothing to migrate.")
	} else {
		printTable(cmd, []string{"KIND", "MIGRATED", "SKIPPED", "FAILED"}, rows)
	}

	if len(summary.Warnings) > 0 {
		cmd.Println()
		cmd.Println(outputStyles.Warning.Render(fmt.Sprintf("%d warnings:", len(summary.Warnings))))
		for _, w := range summary.Warnings {
			cmd.Printf("  %s %s: %s\n", w.Kind, w.LocalID, w.Message)
		}
	}

	if !summary.FinishedAt.IsZero() {
		cmd.Println()
		cmd.Printf("Took %s\n", summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond))
	}
}
