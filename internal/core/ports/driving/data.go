package driving

import (
	"context"

	"github.com/custodia-labs/annotate/internal/core/domain"
)

// DataService is the single entry point for entity CRUD.
// Every call is routed to the store of the active workspace.
//
// Reads degrade: a remote failure is logged and reported as "no data"
// (nil record or empty slice with a nil error). Precondition errors such as
// domain.ErrNoActiveWorkspace are still returned. Writes always return errors.
type DataService interface {
	// CreateProfile creates a profile in the active workspace.
	CreateProfile(ctx context.Context, profile domain.Profile) (*domain.Profile, error)
	GetProfile(ctx context.Context, id string) (*domain.Profile, error)

	// ListProfiles lists profiles of the active workspace. An empty mode lists every mode.
	ListProfiles(ctx context.Context, mode domain.Mode) ([]domain.Profile, error)
	UpdateProfile(ctx context.Context, profile domain.Profile) error
	DeleteProfile(ctx context.Context, id string) error

	// AddPoint appends a point at the tail of its profile.
	AddPoint(ctx context.Context, point domain.ProfilePoint) (*domain.ProfilePoint, error)
	GetPoint(ctx context.Context, id string) (*domain.ProfilePoint, error)

	// ListPoints returns a profile's points in chain order.
	ListPoints(ctx context.Context, profileID string) ([]domain.ProfilePoint, error)

	// UpdatePoint replaces a point's content. Ordering fields are preserved.
	UpdatePoint(ctx context.Context, point domain.ProfilePoint) error

	// MovePoint places a point between prevID and nextID. An empty prevID
	// moves to the head and an empty nextID moves to the tail.
	MovePoint(ctx context.Context, pointID, prevID, nextID string) (*domain.ProfilePoint, error)

	// DeletePoint removes a point and relinks its neighbours.
	DeletePoint(ctx context.Context, id string) error

	CreateDataset(ctx context.Context, dataset domain.Dataset) (*domain.Dataset, error)
	GetDataset(ctx context.Context, id string) (*domain.Dataset, error)
	ListDatasets(ctx context.Context, mode domain.Mode) ([]domain.Dataset, error)
	UpdateDataset(ctx context.Context, dataset domain.Dataset) error
	DeleteDataset(ctx context.Context, id string) error

	CreateText(ctx context.Context, text domain.Text) (*domain.Text, error)
	GetText(ctx context.Context, id string) (*domain.Text, error)
	ListTexts(ctx context.Context, datasetID string) ([]domain.Text, error)
	UpdateText(ctx context.Context, text domain.Text) error
	DeleteText(ctx context.Context, id string) error

	CreateAnnotatedDataset(ctx context.Context, ad domain.AnnotatedDataset) (*domain.AnnotatedDataset, error)
	GetAnnotatedDataset(ctx context.Context, id string) (*domain.AnnotatedDataset, error)
	ListAnnotatedDatasets(ctx context.Context, mode domain.Mode) ([]domain.AnnotatedDataset, error)
	UpdateAnnotatedDataset(ctx context.Context, ad domain.AnnotatedDataset) error
	DeleteAnnotatedDataset(ctx context.Context, id string) error

	CreateAnnotatedText(ctx context.Context, at domain.AnnotatedText) (*domain.AnnotatedText, error)
	ListAnnotatedTexts(ctx context.Context, annotatedDatasetID string) ([]domain.AnnotatedText, error)
	UpdateAnnotatedText(ctx context.Context, at domain.AnnotatedText) error
	DeleteAnnotatedText(ctx context.Context, id string) error

	CreateDataPoint(ctx context.Context, dp domain.DataPoint) (*domain.DataPoint, error)
	ListDataPoints(ctx context.Context, annotatedTextID string) ([]domain.DataPoint, error)
	UpdateDataPoint(ctx context.Context, dp domain.DataPoint) error
	DeleteDataPoint(ctx context.Context, id string) error
}
