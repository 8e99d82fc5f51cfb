package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/annotate/internal/adapters/driven/auth"
	"github.com/custodia-labs/annotate/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/annotate/internal/core/domain"
	"github.com/custodia-labs/annotate/internal/core/ports/driving"
	"github.com/custodia-labs/annotate/internal/core/services"
	"github.com/custodia-labs/annotate/internal/normalisers"
)

// testEnv is a set of real services over in-memory stores.
type testEnv struct {
	data       *services.DataService
	workspaces *services.WorkspaceService
	local      *memory.Backend
	creds      *memory.CredentialsStore
	active     *domain.Workspace
}

// setupTestServices configures the commands against in-memory services with
// the default local workspace active.
func setupTestServices(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	states := memory.NewWorkspaceStateStore()
	local := memory.NewBackend()
	creds := memory.NewCredentialsStore()
	tokens := auth.NewCredentialsTokenProvider(creds)
	active := services.NewActiveWorkspace(nil)

	workspaces := services.NewWorkspaceService(states, nil, tokens, active, local)
	ws, err := workspaces.EnsureDefault(ctx)
	require.NoError(t, err)

	router := services.NewRouter(active, local, nil, tokens)
	data := services.NewDataService(router)

	Configure(&Services{
		Data:      data,
		Workspace: workspaces,
		Migration: &mockMigrationService{},
		Auth:      services.NewAuthService(creds, tokens),
		Settings:  services.NewSettingsService(router),
		Import:    services.NewImportService(data, normalisers.NewDefaultRegistry()),
	})
	t.Cleanup(func() { Configure(nil) })

	return &testEnv{
		data:       data,
		workspaces: workspaces,
		local:      local,
		creds:      creds,
		active:     ws,
	}
}

// execute runs the root command with args and returns everything it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWithInput(t, "", args...)
}

func executeWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag to its default so values do not leak
// between executions of the shared command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// mockMigrationService implements driving.MigrationService for testing.
type mockMigrationService struct {
	migrateFunc func(
		ctx context.Context, req driving.MigrationRequest, progress driving.ProgressFunc,
	) (*domain.MigrationSummary, error)
	lastRequest driving.MigrationRequest
}

func (m *mockMigrationService) Migrate(
	ctx context.Context, req driving.MigrationRequest, progress driving.ProgressFunc,
) (*domain.MigrationSummary, error) {
	m.lastRequest = req
	if m.migrateFunc != nil {
		return m.migrateFunc(ctx, req, progress)
	}
	return domain.NewMigrationSummary("local-1", "remote-1"), nil
}
