package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/annotate/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/annotate/internal/core/domain"
	"github.com/custodia-labs/annotate/internal/core/ports/driving"
)

func TestNewApp_RequiresMigration(t *testing.T) {
	app, err := NewApp(&Ports{}, driving.MigrationRequest{})

	assert.Nil(t, app)
	assert.ErrorIs(t, err, ErrMissingMigrationService)
}

func TestApp_StartForwardsEvents(t *testing.T) {
	var gotReq driving.MigrationRequest
	svc := &MockMigrationService{
		MigrateFunc: func(
			_ context.Context, req driving.MigrationRequest, progress driving.ProgressFunc,
		) (*domain.MigrationSummary, error) {
			gotReq = req
			progress(domain.MigrationEvent{Phase: "profiles"})
			progress(domain.MigrationEvent{Kind: domain.KindProfile, LocalID: "p1", Outcome: domain.OutcomeSucceeded})
			s := domain.NewMigrationSummary("local-a", "remote-a")
			s.Counts[domain.KindProfile] = domain.KindCounts{Succeeded: 1}
			return s, nil
		},
	}
	app, err := NewApp(&Ports{Migration: svc}, driving.MigrationRequest{TargetName: "Team"})
	require.NoError(t, err)

	finished, ok := app.start()().(messages.MigrationFinished)
	require.True(t, ok)
	assert.Equal(t, "Team", gotReq.TargetName)

	first, ok := app.waitForEvent()().(messages.MigrationProgress)
	require.True(t, ok)
	assert.True(t, first.Event.IsPhase())

	second, ok := app.waitForEvent()().(messages.MigrationProgress)
	require.True(t, ok)
	assert.Equal(t, "p1", second.Event.LocalID)

	assert.Nil(t, app.waitForEvent()())

	_, cmd := app.Update(second)
	assert.NotNil(t, cmd)
	_, _ = app.Update(finished)
	require.NotNil(t, app.Summary())
	assert.Equal(t, "remote-a", app.Summary().TargetWorkspaceID)
	assert.NoError(t, app.Err())
	assert.Contains(t, app.View(), "Migration finished")
}

func TestApp_StartReportsError(t *testing.T) {
	svc := &MockMigrationService{
		MigrateFunc: func(
			context.Context, driving.MigrationRequest, driving.ProgressFunc,
		) (*domain.MigrationSummary, error) {
			return nil, domain.ErrMustAuthenticate
		},
	}
	app, err := NewApp(&Ports{Migration: svc}, driving.MigrationRequest{})
	require.NoError(t, err)

	msg := app.start()()
	_, cmd := app.Update(msg)

	require.NotNil(t, cmd)
	assert.True(t, errors.Is(app.Err(), domain.ErrMustAuthenticate))
	assert.Contains(t, app.View(), "Migration failed")
}

func TestApp_Init(t *testing.T) {
	app, err := NewApp(&Ports{Migration: &MockMigrationService{}}, driving.MigrationRequest{})
	require.NoError(t, err)

	assert.NotNil(t, app.Init())
}

func TestApp_WithContext(t *testing.T) {
	app, err := NewApp(&Ports{Migration: &MockMigrationService{}}, driving.MigrationRequest{})
	require.NoError(t, err)

	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")
	assert.Equal(t, app, app.WithContext(ctx))
	assert.Equal(t, "v", app.ctx.Value(key{}))
}

var _ tea.Model = (*App)(nil)
