package mcp

import (
	"context"

	"github.com/custodia-labs/annotate/internal/core/domain"
	"github.com/custodia-labs/annotate/internal/core/ports/driving"
)

// mockDataService implements the read side of driving.DataService.
// Calling any other method panics.
type mockDataService struct {
	driving.DataService

	profiles []domain.Profile
	datasets []domain.Dataset
	ads      []domain.AnnotatedDataset
	points   []domain.ProfilePoint
	texts    []domain.Text
	err      error

	lastMode   domain.Mode
	lastParent string
}

func (m *mockDataService) ListProfiles(_ context.Context, mode domain.Mode) ([]domain.Profile, error) {
	m.lastMode = mode
	return m.profiles, m.err
}

func (m *mockDataService) ListDatasets(_ context.Context, mode domain.Mode) ([]domain.Dataset, error) {
	m.lastMode = mode
	return m.datasets, m.err
}

func (m *mockDataService) ListAnnotatedDatasets(_ context.Context, mode domain.Mode) ([]domain.AnnotatedDataset, error) {
	m.lastMode = mode
	return m.ads, m.err
}

func (m *mockDataService) ListPoints(_ context.Context, profileID string) ([]domain.ProfilePoint, error) {
	m.lastParent = profileID
	return m.points, m.err
}

func (m *mockDataService) ListTexts(_ context.Context, datasetID string) ([]domain.Text, error) {
	m.lastParent = datasetID
	return m.texts, m.err
}

// mockWorkspaceService implements driving.WorkspaceService.Active.
type mockWorkspaceService struct {
	driving.WorkspaceService

	active *domain.Workspace
	err    error
}

func (m *mockWorkspaceService) Active(_ context.Context) (*domain.Workspace, error) {
	return m.active, m.err
}

// mockMigrationService implements driving.MigrationService.
type mockMigrationService struct {
	summary *domain.MigrationSummary
	err     error
	req     driving.MigrationRequest
}

func (m *mockMigrationService) Migrate(
	_ context.Context, req driving.MigrationRequest, _ driving.ProgressFunc,
) (*domain.MigrationSummary, error) {
	m.req = req
	return m.summary, m.err
}
