package driven

import (
	"context"

	"github.com/custodia-labs/annotate/internal/core/domain"
)

// ListFilter narrows list operations. Zero values mean "no filter".
type ListFilter struct {
	// WorkspaceID restricts results to one workspace.
	WorkspaceID string

	// Mode restricts results to one mode.
	Mode domain.Mode
}

// Backend is one physical store. Every store it returns reads and writes the
// same place, so ids returned by one are valid in the others.
type Backend interface {
	// Kind reports which storage kind this backend serves.
	Kind() domain.StorageKind

	Profiles() ProfileStore
	ProfilePoints() ProfilePointStore
	Datasets() DatasetStore
	Texts() TextStore
	AnnotatedDatasets() AnnotatedDatasetStore
	AnnotatedTexts() AnnotatedTextStore
	DataPoints() DataPointStore
	Settings() SettingsStore
}

// ProfileStore persists profiles.
type ProfileStore interface {
	// Create stores a new profile and returns it with its store-assigned id.
	Create(ctx context.Context, profile domain.Profile) (*domain.Profile, error)

	// Get retrieves a profile by ID. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.Profile, error)

	// List returns profiles matching the filter.
	List(ctx context.Context, filter ListFilter) ([]domain.Profile, error)

	// Update replaces a profile.
	Update(ctx context.Context, profile domain.Profile) error

	// Delete removes a profile and its points.
	Delete(ctx context.Context, id string) error
}

// ProfilePointStore persists profile points.
type ProfilePointStore interface {
	// Create stores a new point and returns it with its store-assigned id.
	Create(ctx context.Context, point domain.ProfilePoint) (*domain.ProfilePoint, error)

	// Get retrieves a point by ID.
	Get(ctx context.Context, id string) (*domain.ProfilePoint, error)

	// ListByProfile returns the points of a profile in ascending order.
	ListByProfile(ctx context.Context, profileID string) ([]domain.ProfilePoint, error)

	// Update replaces a point.
	Update(ctx context.Context, point domain.ProfilePoint) error

	// UpdateBatch replaces several points of one profile together.
	// Local stores apply the batch atomically.
	UpdateBatch(ctx context.Context, points []domain.ProfilePoint) error

	// Delete removes a point. Neighbour pointers are not touched.
	Delete(ctx context.Context, id string) error
}

// LinkedPointStore is implemented by point stores that can insert or remove
// a point together with its neighbours' pointer updates.
type LinkedPointStore interface {
	// CreateLinked stores point, then the updates link returns for the
	// created point, in one unit. It returns the point as finally stored.
	CreateLinked(
		ctx context.Context,
		point domain.ProfilePoint,
		link func(created domain.ProfilePoint) []domain.ProfilePoint,
	) (*domain.ProfilePoint, error)

	// DeleteLinked removes a point and applies updates in one unit.
	DeleteLinked(ctx context.Context, id string, updates []domain.ProfilePoint) error
}

// DatasetStore persists datasets.
type DatasetStore interface {
	Create(ctx context.Context, dataset domain.Dataset) (*domain.Dataset, error)
	Get(ctx context.Context, id string) (*domain.Dataset, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Dataset, error)
	Update(ctx context.Context, dataset domain.Dataset) error

	// Delete removes a dataset with its texts and the annotated datasets built on it.
	Delete(ctx context.Context, id string) error
}

// TextStore persists texts.
type TextStore interface {
	Create(ctx context.Context, text domain.Text) (*domain.Text, error)
	Get(ctx context.Context, id string) (*domain.Text, error)
	ListByDataset(ctx context.Context, datasetID string) ([]domain.Text, error)
	Update(ctx context.Context, text domain.Text) error
	Delete(ctx context.Context, id string) error
}

// AnnotatedDatasetStore persists annotated datasets.
type AnnotatedDatasetStore interface {
	Create(ctx context.Context, ad domain.AnnotatedDataset) (*domain.AnnotatedDataset, error)
	Get(ctx context.Context, id string) (*domain.AnnotatedDataset, error)
	List(ctx context.Context, filter ListFilter) ([]domain.AnnotatedDataset, error)
	Update(ctx context.Context, ad domain.AnnotatedDataset) error

	// Delete removes an annotated dataset with its annotated texts and data points.
	Delete(ctx context.Context, id string) error
}

// AnnotatedTextStore persists annotated texts.
type AnnotatedTextStore interface {
	Create(ctx context.Context, at domain.AnnotatedText) (*domain.AnnotatedText, error)
	Get(ctx context.Context, id string) (*domain.AnnotatedText, error)
	ListByAnnotatedDataset(ctx context.Context, annotatedDatasetID string) ([]domain.AnnotatedText, error)
	Update(ctx context.Context, at domain.AnnotatedText) error
	Delete(ctx context.Context, id string) error
}

// DataPointStore persists data points.
type DataPointStore interface {
	Create(ctx context.Context, dp domain.DataPoint) (*domain.DataPoint, error)
	Get(ctx context.Context, id string) (*domain.DataPoint, error)
	ListByAnnotatedText(ctx context.Context, annotatedTextID string) ([]domain.DataPoint, error)
	Update(ctx context.Context, dp domain.DataPoint) error
	Delete(ctx context.Context, id string) error
}

// SettingsStore persists per-user settings and LLM configuration.
type SettingsStore interface {
	// GetSettings returns the user settings, or defaults if none are stored.
	GetSettings(ctx context.Context) (*domain.UserSettings, error)

	// PutSettings upserts the user settings.
	PutSettings(ctx context.Context, settings domain.UserSettings) error

	// GetLLMConfig returns the LLM configuration, or defaults if none is stored.
	GetLLMConfig(ctx context.Context) (*domain.LLMConfig, error)

	// PutLLMConfig upserts the LLM configuration.
	PutLLMConfig(ctx context.Context, cfg domain.LLMConfig) error
}
