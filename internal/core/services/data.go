package services

import (
	"context"

	"github.com/custodia-labs/annotate/internal/core/domain"
	"github.com/custodia-labs/annotate/internal/core/ports/driving"
	"github.com/custodia-labs/annotate/internal/logger"
)

// Ensure DataService implements the interface.
var _ driving.DataService = (*DataService)(nil)

// DataService is the facade over the active workspace's store.
type DataService struct {
	router *Router
}

// NewDataService creates a new data service.
func NewDataService(router *Router) *DataService {
	return &DataService{router: router}
}

// degradable reports whether a read error should be reported as "no data".
func degradable(err error) bool {
	return domain.IsFailure(err) && !domain.IsPrecondition(err)
}

func readOne[T any](op string, v *T, err error) (*T, error) {
	if err == nil {
		return v, nil
	}
	if degradable(err) {
		logger.Warn("%s: %v", op, err)
		return nil, nil
	}
	return nil, err
}

func readMany[T any](op string, v []T, err error) ([]T, error) {
	if err == nil {
		return v, nil
	}
	if degradable(err) {
		logger.Warn("%s: %v", op, err)
		return nil, nil
	}
	return nil, err
}

// inWorkspace hides records of other workspaces.
func inWorkspace[T any](rt route, v *T, workspaceID func(*T) string, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	if workspaceID(v) != rt.workspace.ID {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

// ==================== Profiles ====================

// CreateProfile creates a profile in the active workspace.
func (s *DataService) CreateProfile(ctx context.Context, profile domain.Profile) (*domain.Profile, error) {
	rt, err := s.router.resolveWrite(ctx)
	if err != nil {
		return nil, err
	}
	profile.WorkspaceID = rt.workspace.ID
	if err := check(profile); err != nil {
		return nil, err
	}
	return rt.backend.Profiles().Create(ctx, profile)
}

// GetProfile retrieves a profile of the active workspace.
func (s *DataService) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	rt, err := s.router.resolve()
	if err != nil {
		return nil, err
	}
	p, err := ownedProfile(ctx, rt, id)
	return readOne("get profile "+id, p, err)
}

// ListProfiles lists the active workspace's profiles.
func (s *DataService) ListProfiles(ctx context.Context, mode domain.Mode) ([]domain.Profile, error) {
	rt, err := s.router.resolve()
	if err != nil {
		return nil, err
	}
	profiles, err := listScoped(ctx, rt, mode, rt.backend.Profiles().List,
		func(p domain.Profile) string { return p.ID })
	return readMany("list profiles", profiles, err)
}

// UpdateProfile replaces a profile. It stays in the active workspace.
func (s *DataService) UpdateProfile(ctx context.Context, profile domain.Profile) error {
	rt, err := s.router.resolveWrite(ctx)
	if err != nil {
		return err
	}
	profile.WorkspaceID = rt.workspace.ID
	if err := check(profile); err != nil {
		return err
	}
	if _, err := ownedProfile(ctx, rt, profile.ID); err != nil {
		return err
	}
	return rt.backend.Profiles().Update(ctx, profile)
}

// DeleteProfile removes a profile and its points.
func (s *DataService) DeleteProfile(ctx context.Context, id string) error {
	rt, err := s.router.resolveWrite(ctx)
	if err != nil {
		return err
	}
	if _, err := ownedProfile(ctx, rt, id); err != nil {
		return err
	}
	return rt.backend.Profiles().Delete(ctx, id)
}

// ==================== Profile Points ====================

// AddPoint appends a point at the tail of its profile.
func (s *DataService) AddPoint(ctx context.Context, point domain.ProfilePoint) (*domain.ProfilePoint, error) {
	rt, err := s.router.resolveWrite(ctx)
	if err != nil {
		return nil, err
	}
	if err := check(point); err != nil {
		return nil, err
	}
	if err := requireParent(ctx, rt, ownedProfile, "profile", point.ProfileID); err != nil {
		return nil, err
	}
	return appendPoint(ctx, rt.backend.ProfilePoints(), point)
}

// GetPoint retrieves a point of a profile in the active workspace.
func (s *DataService) GetPoint(ctx context.Context, id string) (*domain.ProfilePoint, error) {
	rt, err := s.router.resolve()
	if err != nil {
		return nil, err
	}
	p, err := ownedPoint(ctx, rt, id)
	return readOne("get point "+id, p, err)
}

// ListPoints returns a profile's points in chain order. A profile outside
// the active workspace has none.
func (s *DataService) ListPoints(ctx context.Context, profileID string) ([]domain.ProfilePoint, error) {
	rt, err := s.router.resolve()
	if err != nil {
		return nil, err
	}
	op := "list points of " + profileID
	visible, err := visibleParent(ctx, rt, ownedProfile, profileID)
	if err != nil || !visible {
		return readMany[domain.ProfilePoint](op, nil, err)
	}
	points, err := loadChain(ctx, rt.backend.ProfilePoints(), profileID)
	return readMany(op, points, err)
}

// UpdatePoint replaces a point's content. Its profile, order and
// neighbours are kept; use MovePoint to reorder.
func (s *DataService) UpdatePoint(ctx context.Context, point domain.ProfilePoint) error {
	rt, err := s.router.resolveWrite(ctx)
	if err != nil {
		return err
	}
	existing, err := ownedPoint(ctx, rt, point.ID)
	if err != nil {
		return err
	}
	point.ProfileID = existing.ProfileID
	point.Order = existing.Order
	point.PreviousPointID = existing.PreviousPointID
	point.NextPointID = existing.NextPointID
	if err := check(point); err != nil {
		return err
	}
	return rt.backend.ProfilePoints().Update(ctx, point)
}

// MovePoint places a point between two adjacent neighbours.
func (s *DataService) MovePoint(ctx context.Context, pointID, prevID, nextID string) (*domain.ProfilePoint, error) {
	rt, err := s.router.resolveWrite(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := ownedPoint(ctx, rt, pointID); err != nil {
		return nil, err
	}
	return movePoint(ctx, rt.backend.ProfilePoints(), pointID, prevID, nextID)
}

// DeletePoint removes a point and relinks its neighbours.
func (s *DataService) DeletePoint(ctx context.Context, id string) error {
	rt, err := s.router.resolveWrite(ctx)
	if err != nil {
		return err
	}
	if _, err := ownedPoint(ctx, rt, id); err != nil {
		return err
	}
	return deletePoint(ctx, rt.backend.ProfilePoints(), id)
}

// ==================== Datasets ====================

// CreateDataset creates a dataset in the active workspace.
func (s *DataService) CreateDataset(ctx context.Context, dataset domain.Dataset) (*domain.Dataset, error) {
	rt, err := s.router.resolveWrite(ctx)
	if err != nil {
		return nil, err
	}
	dataset.WorkspaceID = rt.workspace.ID
	if err := check(dataset); err != nil {
		return nil, err
	}
	return rt.backend.Datasets().Create(ctx, dataset)
}

// GetDataset retrieves a dataset of the active workspace.
func (s *DataService) GetDataset(ctx context.Context, id string) (*domain.Dataset, error) {
	rt, err := s.router.resolve()
	if err != nil {
		return nil, err
	}
	d, err := ownedDataset(ctx, rt, id)
	return readOne("get dataset "+id, d, err)
}

// ListDatasets lists the active workspace's datasets.
func (s *DataService) ListDatasets(ctx context.Context, mode domain.Mode) ([]domain.Dataset, error) {
	rt, err := s.router.resolve()
	if err != nil {
		return nil, err
	}
	datasets, err := listScoped(ctx, rt, mode, rt.backend.Datasets().List,
		func(d domain.Dataset) string { return d.ID })
	return readMany("list datasets", datasets, err)
}

// UpdateDataset replaces a dataset.
func (s *DataService) UpdateDataset(ctx context.Context, dataset domain.Dataset) error {
	rt, err := s.router.resolveWrite(ctx)
	if err != nil {
		return err
	}
	dataset.WorkspaceID = rt.workspace.ID
	if err := check(dataset); err != nil {
		return err
	}
	if _, err := ownedDataset(ctx, rt, dataset.ID); err != nil {
		return err
	}
	return rt.backend.Datasets().Update(ctx, dataset)
}

// DeleteDataset removes a dataset with its texts and annotated datasets.
func (s *DataService) DeleteDataset(ctx context.Context, id string) error {
	rt, err := s.router.resolveWrite(ctx)
	if err != nil {
		return err
	}
	if _, err := ownedDataset(ctx, rt, id); err != nil {
		return err
	}
	return rt.backend.Datasets().Delete(ctx, id)
}

// ==================== Texts ====================

// CreateText adds a text to a dataset of the same store.
func (s *DataService) CreateText(ctx context.Context, text domain.Text) (*domain.Text, error) {
	rt, err := s.router.resolveWrite(ctx)
	if err != nil {
		return nil, err
	}
	if err := check(text); err != nil {
		return nil, err
	}
	if err := requireParent(ctx, rt, ownedDataset, "dataset", text.DatasetID); err != nil {
		return nil, err
	}
	return rt.backend.Texts().Create(ctx, text)
}

// GetText retrieves a text of a dataset in the active workspace.
func (s *DataService) GetText(ctx context.Context, id string) (*domain.Text, error) {
	rt, err := s.router.resolve()
	if err != nil {
		return nil, err
	}
	t, err := ownedText(ctx, rt, id)
	return readOne("get text "+id, t, err)
}

// ListTexts returns a dataset's texts sorted by id.
func (s *DataService) ListTexts(ctx context.Context, datasetID string) ([]domain.Text, error) {
	rt, err := s.router.resolve()
	if err != nil {
		return nil, err
	}
	op := "list texts of " + datasetID
	visible, err := visibleParent(ctx, rt, ownedDataset, datasetID)
	if err != nil || !visible {
		return readMany[domain.Text](op, nil, err)
	}
	texts, err := rt.backend.Texts().ListByDataset(ctx, datasetID)
	if err == nil {
		texts = sortByID(texts, func(t domain.Text) string { return t.ID })
	}
	return readMany(op, texts, err)
}

// UpdateText replaces a text. Both its current and its new dataset must
// belong to the active workspace.
func (s *DataService) UpdateText(ctx context.Context, text domain.Text) error {
	rt, err := s.router.resolveWrite(ctx)
	if err != nil {
		return err
	}
	if err := check(text); err != nil {
		return err
	}
	if _, err := ownedText(ctx, rt, text.ID); err != nil {
		return err
	}
	if err := requireParent(ctx, rt, ownedDataset, "dataset", text.DatasetID); err != nil {
		return err
	}
	return rt.backend.Texts().Update(ctx, text)
}

// DeleteText removes a text.
func (s *DataService) DeleteText(ctx context.Context, id string) error {
	rt, err := s.router.resolveWrite(ctx)
	if err != nil {
		return err
	}
	if _, err := ownedText(ctx, rt, id); err != nil {
		return err
	}
	return rt.backend.Texts().Delete(ctx, id)
}

// ==================== Annotated Datasets ====================

// CreateAnnotatedDataset creates an annotated dataset in the active workspace.
// Its dataset and profile must live in the same store.
func (s *DataService) CreateAnnotatedDataset(
	ctx context.Context, ad domain.AnnotatedDataset,
) (*domain.AnnotatedDataset, error) {
	rt, err := s.router.resolveWrite(ctx)
	if err != nil {
		return nil, err
	}
	ad.WorkspaceID = rt.workspace.ID
	if err := check(ad); err != nil {
		return nil, err
	}
	if err := requireAnnotationParents(ctx, rt, ad); err != nil {
		return nil, err
	}
	return rt.backend.AnnotatedDatasets().Create(ctx, ad)
}

func requireAnnotationParents(ctx context.Context, rt route, ad domain.AnnotatedDataset) error {
	if err := requireParent(ctx, rt, ownedDataset, "dataset", ad.DatasetID); err != nil {
		return err
	}
	return requireParent(ctx, rt, ownedProfile, "profile", ad.ProfileID)
}

// GetAnnotatedDataset retrieves an annotated dataset of the active workspace.
func (s *DataService) GetAnnotatedDataset(ctx context.Context, id string) (*domain.AnnotatedDataset, error) {
	rt, err := s.router.resolve()
	if err != nil {
		return nil, err
	}
	ad, err := ownedAnnotatedDataset(ctx, rt, id)
	return readOne("get annotated dataset "+id, ad, err)
}

// ListAnnotatedDatasets lists the active workspace's annotated datasets.
func (s *DataService) ListAnnotatedDatasets(ctx context.Context, mode domain.Mode) ([]domain.AnnotatedDataset, error) {
	rt, err := s.router.resolve()
	if err != nil {
		return nil, err
	}
	ads, err := listScoped(ctx, rt, mode, rt.backend.AnnotatedDatasets().List,
		func(ad domain.AnnotatedDataset) string { return ad.ID })
	return readMany("list annotated datasets", ads, err)
}

// UpdateAnnotatedDataset replaces an annotated dataset.
func (s *DataService) UpdateAnnotatedDataset(ctx context.Context, ad domain.AnnotatedDataset) error {
	rt, err := s.router.resolveWrite(ctx)
	if err != nil {
		return err
	}
	ad.WorkspaceID = rt.workspace.ID
	if err := check(ad); err != nil {
		return err
	}
	if _, err := ownedAnnotatedDataset(ctx, rt, ad.ID); err != nil {
		return err
	}
	if err := requireAnnotationParents(ctx, rt, ad); err != nil {
		return err
	}
	return rt.backend.AnnotatedDatasets().Update(ctx, ad)
}

// DeleteAnnotatedDataset removes an annotated dataset with its annotated texts and data points.
func (s *DataService) DeleteAnnotatedDataset(ctx context.Context, id string) error {
	rt, err := s.router.resolveWrite(ctx)
	if err != nil {
		return err
	}
	if _, err := ownedAnnotatedDataset(ctx, rt, id); err != nil {
		return err
	}
	return rt.backend.AnnotatedDatasets().Delete(ctx, id)
}

// ==================== Annotated Texts ====================

// CreateAnnotatedText records the annotation state of one text.
func (s *DataService) CreateAnnotatedText(ctx context.Context, at domain.AnnotatedText) (*domain.AnnotatedText, error) {
	rt, err := s.router.resolveWrite(ctx)
	if err != nil {
		return nil, err
	}
	if err := check(at); err != nil {
		return nil, err
	}
	if err := requireAnnotatedTextParents(ctx, rt, at); err != nil {
		return nil, err
	}
	return rt.backend.AnnotatedTexts().Create(ctx, at)
}

func requireAnnotatedTextParents(ctx context.Context, rt route, at domain.AnnotatedText) error {
	if err := requireParent(ctx, rt, ownedAnnotatedDataset, "annotated dataset", at.AnnotatedDatasetID); err != nil {
		return err
	}
	return requireParent(ctx, rt, ownedText, "text", at.TextID)
}

// ListAnnotatedTexts returns an annotated dataset's texts sorted by id.
func (s *DataService) ListAnnotatedTexts(ctx context.Context, annotatedDatasetID string) ([]domain.AnnotatedText, error) {
	rt, err := s.router.resolve()
	if err != nil {
		return nil, err
	}
	op := "list annotated texts of " + annotatedDatasetID
	visible, err := visibleParent(ctx, rt, ownedAnnotatedDataset, annotatedDatasetID)
	if err != nil || !visible {
		return readMany[domain.AnnotatedText](op, nil, err)
	}
	ats, err := rt.backend.AnnotatedTexts().ListByAnnotatedDataset(ctx, annotatedDatasetID)
	if err == nil {
		ats = sortByID(ats, func(at domain.AnnotatedText) string { return at.ID })
	}
	return readMany(op, ats, err)
}

// UpdateAnnotatedText replaces an annotated text.
func (s *DataService) UpdateAnnotatedText(ctx context.Context, at domain.AnnotatedText) error {
	rt, err := s.router.resolveWrite(ctx)
	if err != nil {
		return err
	}
	if err := check(at); err != nil {
		return err
	}
	if _, err := ownedAnnotatedText(ctx, rt, at.ID); err != nil {
		return err
	}
	if err := requireAnnotatedTextParents(ctx, rt, at); err != nil {
		return err
	}
	return rt.backend.AnnotatedTexts().Update(ctx, at)
}

// DeleteAnnotatedText removes an annotated text and its data points.
func (s *DataService) DeleteAnnotatedText(ctx context.Context, id string) error {
	rt, err := s.router.resolveWrite(ctx)
	if err != nil {
		return err
	}
	if _, err := ownedAnnotatedText(ctx, rt, id); err != nil {
		return err
	}
	return rt.backend.AnnotatedTexts().Delete(ctx, id)
}

// ==================== Data Points ====================

// CreateDataPoint records one extracted value.
func (s *DataService) CreateDataPoint(ctx context.Context, dp domain.DataPoint) (*domain.DataPoint, error) {
	rt, err := s.router.resolveWrite(ctx)
	if err != nil {
		return nil, err
	}
	if err := check(dp); err != nil {
		return nil, err
	}
	if err := requireDataPointParents(ctx, rt, dp); err != nil {
		return nil, err
	}
	return rt.backend.DataPoints().Create(ctx, dp)
}

func requireDataPointParents(ctx context.Context, rt route, dp domain.DataPoint) error {
	if err := requireParent(ctx, rt, ownedAnnotatedText, "annotated text", dp.AnnotatedTextID); err != nil {
		return err
	}
	if dp.ProfilePointID == "" {
		return nil
	}
	return requireParent(ctx, rt, ownedPoint, "profile point", dp.ProfilePointID)
}

// ListDataPoints returns an annotated text's data points sorted by id.
func (s *DataService) ListDataPoints(ctx context.Context, annotatedTextID string) ([]domain.DataPoint, error) {
	rt, err := s.router.resolve()
	if err != nil {
		return nil, err
	}
	op := "list data points of " + annotatedTextID
	visible, err := visibleParent(ctx, rt, ownedAnnotatedText, annotatedTextID)
	if err != nil || !visible {
		return readMany[domain.DataPoint](op, nil, err)
	}
	dps, err := rt.backend.DataPoints().ListByAnnotatedText(ctx, annotatedTextID)
	if err == nil {
		dps = sortByID(dps, func(dp domain.DataPoint) string { return dp.ID })
	}
	return readMany(op, dps, err)
}

// UpdateDataPoint replaces a data point.
func (s *DataService) UpdateDataPoint(ctx context.Context, dp domain.DataPoint) error {
	rt, err := s.router.resolveWrite(ctx)
	if err != nil {
		return err
	}
	if err := check(dp); err != nil {
		return err
	}
	if _, err := ownedDataPoint(ctx, rt, dp.ID); err != nil {
		return err
	}
	if err := requireDataPointParents(ctx, rt, dp); err != nil {
		return err
	}
	return rt.backend.DataPoints().Update(ctx, dp)
}

// DeleteDataPoint removes a data point.
func (s *DataService) DeleteDataPoint(ctx context.Context, id string) error {
	rt, err := s.router.resolveWrite(ctx)
	if err != nil {
		return err
	}
	if _, err := ownedDataPoint(ctx, rt, id); err != nil {
		return err
	}
	return rt.backend.DataPoints().Delete(ctx, id)
}
