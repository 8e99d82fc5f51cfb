package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/annotate/internal/core/domain"
	"github.com/custodia-labs/annotate/internal/core/ports/driven"
)

// Ensure Backend implements the interface.
var _ driven.Backend = (*Backend)(nil)

// Backend is an in-memory local store. All tables share one lock so cascades
// and point batches are atomic, matching the SQLite backend.
type Backend struct {
	mu                sync.RWMutex
	profiles          map[string]domain.Profile
	points            map[string]domain.ProfilePoint
	datasets          map[string]domain.Dataset
	texts             map[string]domain.Text
	annotatedDatasets map[string]domain.AnnotatedDataset
	annotatedTexts    map[string]domain.AnnotatedText
	dataPoints        map[string]domain.DataPoint
	settings          *domain.UserSettings
	llmConfig         *domain.LLMConfig
}

// NewBackend creates an empty in-memory backend.
func NewBackend() *Backend {
	return &Backend{
		profiles:          make(map[string]domain.Profile),
		points:            make(map[string]domain.ProfilePoint),
		datasets:          make(map[string]domain.Dataset),
		texts:             make(map[string]domain.Text),
		annotatedDatasets: make(map[string]domain.AnnotatedDataset),
		annotatedTexts:    make(map[string]domain.AnnotatedText),
		dataPoints:        make(map[string]domain.DataPoint),
	}
}

// Kind reports the local storage kind.
func (b *Backend) Kind() domain.StorageKind { return domain.StorageLocal }

func (b *Backend) Profiles() driven.ProfileStore                   { return profileStore{b} }
func (b *Backend) ProfilePoints() driven.ProfilePointStore         { return pointStore{b} }
func (b *Backend) Datasets() driven.DatasetStore                   { return datasetStore{b} }
func (b *Backend) Texts() driven.TextStore                         { return textStore{b} }
func (b *Backend) AnnotatedDatasets() driven.AnnotatedDatasetStore { return annotatedDatasetStore{b} }
func (b *Backend) AnnotatedTexts() driven.AnnotatedTextStore       { return annotatedTextStore{b} }
func (b *Backend) DataPoints() driven.DataPointStore               { return dataPointStore{b} }
func (b *Backend) Settings() driven.SettingsStore                  { return settingsStore{b} }

func ensureID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

func missingParent(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, domain.ErrInvalidInput)
}

func matches(filter driven.ListFilter, workspaceID string, mode domain.Mode) bool {
	if filter.WorkspaceID != "" && filter.WorkspaceID != workspaceID {
		return false
	}
	if filter.Mode != "" && filter.Mode != mode {
		return false
	}
	return true
}

func byID[T any](items []T, id func(T) string) []T {
	sort.Slice(items, func(i, j int) bool { return id(items[i]) < id(items[j]) })
	return items
}

// cascade helpers; callers hold b.mu.

func (b *Backend) deleteAnnotatedTextLocked(id string) {
	delete(b.annotatedTexts, id)
	for dpID, dp := range b.dataPoints {
		if dp.AnnotatedTextID == id {
			delete(b.dataPoints, dpID)
		}
	}
}

func (b *Backend) deleteAnnotatedDatasetLocked(id string) {
	delete(b.annotatedDatasets, id)
	for atID, at := range b.annotatedTexts {
		if at.AnnotatedDatasetID == id {
			b.deleteAnnotatedTextLocked(atID)
		}
	}
}

func (b *Backend) deleteTextLocked(id string) {
	delete(b.texts, id)
	for atID, at := range b.annotatedTexts {
		if at.TextID == id {
			b.deleteAnnotatedTextLocked(atID)
		}
	}
}

// ==================== Profiles ====================

type profileStore struct{ b *Backend }

func (s profileStore) Create(_ context.Context, p domain.Profile) (*domain.Profile, error) {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	p.ID = ensureID(p.ID)
	if _, ok := s.b.profiles[p.ID]; ok {
		return nil, domain.ErrAlreadyExists
	}
	s.b.profiles[p.ID] = p
	return &p, nil
}

func (s profileStore) Get(_ context.Context, id string) (*domain.Profile, error) {
	s.b.mu.RLock()
	defer s.b.mu.RUnlock()
	p, ok := s.b.profiles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (s profileStore) List(_ context.Context, filter driven.ListFilter) ([]domain.Profile, error) {
	s.b.mu.RLock()
	defer s.b.mu.RUnlock()
	result := make([]domain.Profile, 0, len(s.b.profiles))
	for _, p := range s.b.profiles {
		if matches(filter, p.WorkspaceID, p.Mode) {
			result = append(result, p)
		}
	}
	return byID(result, func(p domain.Profile) string { return p.ID }), nil
}

func (s profileStore) Update(_ context.Context, p domain.Profile) error {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if _, ok := s.b.profiles[p.ID]; !ok {
		return domain.ErrNotFound
	}
	s.b.profiles[p.ID] = p
	return nil
}

func (s profileStore) Delete(_ context.Context, id string) error {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if _, ok := s.b.profiles[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.b.profiles, id)
	for ptID, pt := range s.b.points {
		if pt.ProfileID == id {
			delete(s.b.points, ptID)
		}
	}
	return nil
}

// ==================== Profile Points ====================

type pointStore struct{ b *Backend }

var _ driven.LinkedPointStore = pointStore{}

func (s pointStore) Create(_ context.Context, p domain.ProfilePoint) (*domain.ProfilePoint, error) {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	return s.b.createPointLocked(p)
}

func (b *Backend) createPointLocked(p domain.ProfilePoint) (*domain.ProfilePoint, error) {
	if _, ok := b.profiles[p.ProfileID]; !ok {
		return nil, missingParent("profile", p.ProfileID)
	}
	p.ID = ensureID(p.ID)
	if _, ok := b.points[p.ID]; ok {
		return nil, domain.ErrAlreadyExists
	}
	p = clonePoint(p)
	b.points[p.ID] = clonePoint(p)
	return &p, nil
}

// CreateLinked inserts the point and its link updates under one lock.
func (s pointStore) CreateLinked(
	_ context.Context,
	p domain.ProfilePoint,
	link func(created domain.ProfilePoint) []domain.ProfilePoint,
) (*domain.ProfilePoint, error) {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()

	created, err := s.b.createPointLocked(p)
	if err != nil {
		return nil, err
	}
	if err := s.b.updatePointsLocked(link(*created)); err != nil {
		delete(s.b.points, created.ID)
		return nil, err
	}
	stored := clonePoint(s.b.points[created.ID])
	return &stored, nil
}

func (s pointStore) Get(_ context.Context, id string) (*domain.ProfilePoint, error) {
	s.b.mu.RLock()
	defer s.b.mu.RUnlock()
	p, ok := s.b.points[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p = clonePoint(p)
	return &p, nil
}

func (s pointStore) ListByProfile(_ context.Context, profileID string) ([]domain.ProfilePoint, error) {
	s.b.mu.RLock()
	defer s.b.mu.RUnlock()
	var result []domain.ProfilePoint
	for _, p := range s.b.points {
		if p.ProfileID == profileID {
			result = append(result, clonePoint(p))
		}
	}
	domain.SortPointsByOrder(result)
	return result, nil
}

func (s pointStore) Update(_ context.Context, p domain.ProfilePoint) error {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if _, ok := s.b.points[p.ID]; !ok {
		return domain.ErrNotFound
	}
	s.b.points[p.ID] = clonePoint(p)
	return nil
}

func (s pointStore) UpdateBatch(_ context.Context, points []domain.ProfilePoint) error {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	return s.b.updatePointsLocked(points)
}

// updatePointsLocked validates every point before writing any of them.
func (b *Backend) updatePointsLocked(points []domain.ProfilePoint) error {
	for _, p := range points {
		if _, ok := b.points[p.ID]; !ok {
			return fmt.Errorf("updating profile point %s: %w", p.ID, domain.ErrNotFound)
		}
	}
	for _, p := range points {
		b.points[p.ID] = clonePoint(p)
	}
	return nil
}

func (s pointStore) Delete(_ context.Context, id string) error {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if _, ok := s.b.points[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.b.points, id)
	return nil
}

// DeleteLinked removes the point and applies updates under one lock.
func (s pointStore) DeleteLinked(_ context.Context, id string, updates []domain.ProfilePoint) error {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()

	removed, ok := s.b.points[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(s.b.points, id)
	if err := s.b.updatePointsLocked(updates); err != nil {
		s.b.points[id] = removed
		return err
	}
	return nil
}

// clonePoint deep-copies p. An empty synonym list becomes nil, as in the
// other stores.
func clonePoint(p domain.ProfilePoint) domain.ProfilePoint {
	p.Synonyms = slices.Clone(p.Synonyms)
	if len(p.Synonyms) == 0 {
		p.Synonyms = nil
	}
	p.Valueset = slices.Clone(p.Valueset)
	if p.Unit != nil {
		p.Unit = domain.StringPtr(*p.Unit)
	}
	return p
}

// ==================== Datasets ====================

type datasetStore struct{ b *Backend }

func (s datasetStore) Create(_ context.Context, d domain.Dataset) (*domain.Dataset, error) {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	d.ID = ensureID(d.ID)
	if _, ok := s.b.datasets[d.ID]; ok {
		return nil, domain.ErrAlreadyExists
	}
	s.b.datasets[d.ID] = d
	return &d, nil
}

func (s datasetStore) Get(_ context.Context, id string) (*domain.Dataset, error) {
	s.b.mu.RLock()
	defer s.b.mu.RUnlock()
	d, ok := s.b.datasets[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &d, nil
}

func (s datasetStore) List(_ context.Context, filter driven.ListFilter) ([]domain.Dataset, error) {
	s.b.mu.RLock()
	defer s.b.mu.RUnlock()
	result := make([]domain.Dataset, 0, len(s.b.datasets))
	for _, d := range s.b.datasets {
		if matches(filter, d.WorkspaceID, d.Mode) {
			result = append(result, d)
		}
	}
	return byID(result, func(d domain.Dataset) string { return d.ID }), nil
}

func (s datasetStore) Update(_ context.Context, d domain.Dataset) error {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if _, ok := s.b.datasets[d.ID]; !ok {
		return domain.ErrNotFound
	}
	s.b.datasets[d.ID] = d
	return nil
}

func (s datasetStore) Delete(_ context.Context, id string) error {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if _, ok := s.b.datasets[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.b.datasets, id)
	for tID, t := range s.b.texts {
		if t.DatasetID == id {
			s.b.deleteTextLocked(tID)
		}
	}
	for adID, ad := range s.b.annotatedDatasets {
		if ad.DatasetID == id {
			s.b.deleteAnnotatedDatasetLocked(adID)
		}
	}
	return nil
}

// ==================== Texts ====================

type textStore struct{ b *Backend }

func (s textStore) Create(_ context.Context, t domain.Text) (*domain.Text, error) {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if _, ok := s.b.datasets[t.DatasetID]; !ok {
		return nil, missingParent("dataset", t.DatasetID)
	}
	t.ID = ensureID(t.ID)
	s.b.texts[t.ID] = t
	return &t, nil
}

func (s textStore) Get(_ context.Context, id string) (*domain.Text, error) {
	s.b.mu.RLock()
	defer s.b.mu.RUnlock()
	t, ok := s.b.texts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (s textStore) ListByDataset(_ context.Context, datasetID string) ([]domain.Text, error) {
	s.b.mu.RLock()
	defer s.b.mu.RUnlock()
	var result []domain.Text
	for _, t := range s.b.texts {
		if t.DatasetID == datasetID {
			result = append(result, t)
		}
	}
	return byID(result, func(t domain.Text) string { return t.ID }), nil
}

func (s textStore) Update(_ context.Context, t domain.Text) error {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if _, ok := s.b.texts[t.ID]; !ok {
		return domain.ErrNotFound
	}
	s.b.texts[t.ID] = t
	return nil
}

func (s textStore) Delete(_ context.Context, id string) error {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if _, ok := s.b.texts[id]; !ok {
		return domain.ErrNotFound
	}
	s.b.deleteTextLocked(id)
	return nil
}

// ==================== Annotated Datasets ====================

type annotatedDatasetStore struct{ b *Backend }

func (s annotatedDatasetStore) Create(_ context.Context, ad domain.AnnotatedDataset) (*domain.AnnotatedDataset, error) {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if _, ok := s.b.datasets[ad.DatasetID]; !ok {
		return nil, missingParent("dataset", ad.DatasetID)
	}
	ad.ID = ensureID(ad.ID)
	s.b.annotatedDatasets[ad.ID] = ad
	return &ad, nil
}

func (s annotatedDatasetStore) Get(_ context.Context, id string) (*domain.AnnotatedDataset, error) {
	s.b.mu.RLock()
	defer s.b.mu.RUnlock()
	ad, ok := s.b.annotatedDatasets[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &ad, nil
}

func (s annotatedDatasetStore) List(_ context.Context, filter driven.ListFilter) ([]domain.AnnotatedDataset, error) {
	s.b.mu.RLock()
	defer s.b.mu.RUnlock()
	result := make([]domain.AnnotatedDataset, 0, len(s.b.annotatedDatasets))
	for _, ad := range s.b.annotatedDatasets {
		if matches(filter, ad.WorkspaceID, ad.Mode) {
			result = append(result, ad)
		}
	}
	return byID(result, func(ad domain.AnnotatedDataset) string { return ad.ID }), nil
}

func (s annotatedDatasetStore) Update(_ context.Context, ad domain.AnnotatedDataset) error {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if _, ok := s.b.annotatedDatasets[ad.ID]; !ok {
		return domain.ErrNotFound
	}
	s.b.annotatedDatasets[ad.ID] = ad
	return nil
}

func (s annotatedDatasetStore) Delete(_ context.Context, id string) error {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if _, ok := s.b.annotatedDatasets[id]; !ok {
		return domain.ErrNotFound
	}
	s.b.deleteAnnotatedDatasetLocked(id)
	return nil
}

// ==================== Annotated Texts ====================

type annotatedTextStore struct{ b *Backend }

func (s annotatedTextStore) Create(_ context.Context, at domain.AnnotatedText) (*domain.AnnotatedText, error) {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if _, ok := s.b.annotatedDatasets[at.AnnotatedDatasetID]; !ok {
		return nil, missingParent("annotated dataset", at.AnnotatedDatasetID)
	}
	if _, ok := s.b.texts[at.TextID]; !ok {
		return nil, missingParent("text", at.TextID)
	}
	at.ID = ensureID(at.ID)
	s.b.annotatedTexts[at.ID] = at
	return &at, nil
}

func (s annotatedTextStore) Get(_ context.Context, id string) (*domain.AnnotatedText, error) {
	s.b.mu.RLock()
	defer s.b.mu.RUnlock()
	at, ok := s.b.annotatedTexts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &at, nil
}

func (s annotatedTextStore) ListByAnnotatedDataset(_ context.Context, adID string) ([]domain.AnnotatedText, error) {
	s.b.mu.RLock()
	defer s.b.mu.RUnlock()
	var result []domain.AnnotatedText
	for _, at := range s.b.annotatedTexts {
		if at.AnnotatedDatasetID == adID {
			result = append(result, at)
		}
	}
	return byID(result, func(at domain.AnnotatedText) string { return at.ID }), nil
}

func (s annotatedTextStore) Update(_ context.Context, at domain.AnnotatedText) error {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if _, ok := s.b.annotatedTexts[at.ID]; !ok {
		return domain.ErrNotFound
	}
	s.b.annotatedTexts[at.ID] = at
	return nil
}

func (s annotatedTextStore) Delete(_ context.Context, id string) error {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if _, ok := s.b.annotatedTexts[id]; !ok {
		return domain.ErrNotFound
	}
	s.b.deleteAnnotatedTextLocked(id)
	return nil
}

// ==================== Data Points ====================

type dataPointStore struct{ b *Backend }

func (s dataPointStore) Create(_ context.Context, dp domain.DataPoint) (*domain.DataPoint, error) {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if _, ok := s.b.annotatedTexts[dp.AnnotatedTextID]; !ok {
		return nil, missingParent("annotated text", dp.AnnotatedTextID)
	}
	dp.ID = ensureID(dp.ID)
	dp.Match = slices.Clone(dp.Match)
	s.b.dataPoints[dp.ID] = dp
	return &dp, nil
}

func (s dataPointStore) Get(_ context.Context, id string) (*domain.DataPoint, error) {
	s.b.mu.RLock()
	defer s.b.mu.RUnlock()
	dp, ok := s.b.dataPoints[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &dp, nil
}

func (s dataPointStore) ListByAnnotatedText(_ context.Context, atID string) ([]domain.DataPoint, error) {
	s.b.mu.RLock()
	defer s.b.mu.RUnlock()
	var result []domain.DataPoint
	for _, dp := range s.b.dataPoints {
		if dp.AnnotatedTextID == atID {
			result = append(result, dp)
		}
	}
	return byID(result, func(dp domain.DataPoint) string { return dp.ID }), nil
}

func (s dataPointStore) Update(_ context.Context, dp domain.DataPoint) error {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if _, ok := s.b.dataPoints[dp.ID]; !ok {
		return domain.ErrNotFound
	}
	dp.Match = slices.Clone(dp.Match)
	s.b.dataPoints[dp.ID] = dp
	return nil
}

func (s dataPointStore) Delete(_ context.Context, id string) error {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if _, ok := s.b.dataPoints[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.b.dataPoints, id)
	return nil
}

// ==================== Settings ====================

type settingsStore struct{ b *Backend }

func (s settingsStore) GetSettings(_ context.Context) (*domain.UserSettings, error) {
	s.b.mu.RLock()
	defer s.b.mu.RUnlock()
	if s.b.settings == nil {
		return &domain.UserSettings{}, nil
	}
	settings := *s.b.settings
	return &settings, nil
}

func (s settingsStore) PutSettings(_ context.Context, settings domain.UserSettings) error {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	s.b.settings = &settings
	return nil
}

func (s settingsStore) GetLLMConfig(_ context.Context) (*domain.LLMConfig, error) {
	s.b.mu.RLock()
	defer s.b.mu.RUnlock()
	if s.b.llmConfig == nil {
		cfg := domain.DefaultLLMConfig()
		return &cfg, nil
	}
	cfg := *s.b.llmConfig
	return &cfg, nil
}

func (s settingsStore) PutLLMConfig(_ context.Context, cfg domain.LLMConfig) error {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	s.b.llmConfig = &cfg
	return nil
}
