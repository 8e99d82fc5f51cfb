package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/annotate/internal/core/domain"
	"github.com/custodia-labs/annotate/internal/core/ports/driven"
	"github.com/custodia-labs/annotate/internal/core/ports/driving"
	"github.com/custodia-labs/annotate/internal/logger"
)

// Ensure MigrationService implements the interface.
var _ driving.MigrationService = (*MigrationService)(nil)

// Migration phases reported through progress events.
const (
	PhaseProfiles          = "profiles"
	PhaseDatasets          = "datasets"
	PhaseAnnotatedDatasets = "annotated datasets"
	PhaseAnnotatedTexts    = "annotated texts"
	PhaseSettings          = "settings"
)

// MigrationConfig wires a MigrationService.
type MigrationConfig struct {
	Local      driven.Backend
	Remote     driven.Backend
	Workspaces driven.WorkspaceStore
	States     driven.WorkspaceStateStore
	Active     *ActiveWorkspace
	Tokens     driven.TokenProvider

	// Workers bounds the creates in flight per entity kind.
	Workers int
}

// MigrationService copies a local workspace into the remote store.
//
// Kinds run in dependency order: profiles (with their points) and datasets
// (with their texts) in parallel, then annotated datasets, then annotated
// texts and data points, then settings. Every remote id is recorded against
// its local id; children whose parent was not migrated are skipped. Local
// data is never modified, so a rerun duplicates what already succeeded.
type MigrationService struct {
	cfg MigrationConfig
}

// NewMigrationService creates a migration service.
func NewMigrationService(cfg MigrationConfig) *MigrationService {
	cfg.Workers = min(max(cfg.Workers, 1), MaxMigrationWorkers)
	return &MigrationService{cfg: cfg}
}

// Migrate runs a migration to completion. Cancelling ctx after the
// preconditions pass does not stop it.
func (s *MigrationService) Migrate(
	ctx context.Context, req driving.MigrationRequest, progress driving.ProgressFunc,
) (*domain.MigrationSummary, error) {
	if err := requireToken(ctx, s.cfg.Tokens); err != nil {
		return nil, domain.ErrMustAuthenticate
	}
	if s.cfg.Remote == nil || s.cfg.Workspaces == nil {
		return nil, fmt.Errorf("%w: no remote store configured", domain.ErrUnsupportedStorage)
	}

	source, err := s.sourceWorkspace(ctx, req.SourceWorkspaceID)
	if err != nil {
		return nil, err
	}
	target, err := s.targetWorkspace(ctx, req, source)
	if err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)
	run := newMigrationRun(s.cfg, *source, *target, progress)

	logger.Section("Migrating workspace %s to %s", source.ID, target.ID)
	if err := run.execute(ctx); err != nil {
		return nil, err
	}

	summary := run.finish()
	logger.Info("migration finished: %d succeeded, %d skipped, %d failed",
		summary.Succeeded(), summary.Skipped(), summary.Failed())
	return summary, nil
}

func (s *MigrationService) sourceWorkspace(ctx context.Context, id string) (*domain.Workspace, error) {
	var ws *domain.Workspace
	if id == "" {
		ws = s.cfg.Active.Snapshot()
		if ws == nil {
			return nil, domain.ErrNoActiveWorkspace
		}
	} else {
		state, err := s.cfg.States.Load(ctx)
		if err != nil {
			return nil, err
		}
		found, ok := state.FindLocal(id)
		if !ok {
			return nil, fmt.Errorf("local workspace %s: %w", id, domain.ErrNotFound)
		}
		ws = found
	}
	if ws.StorageKind != domain.StorageLocal {
		return nil, fmt.Errorf("%w: workspace %s is not local", domain.ErrInvalidInput, ws.ID)
	}
	return ws, nil
}

func (s *MigrationService) targetWorkspace(
	ctx context.Context, req driving.MigrationRequest, source *domain.Workspace,
) (*domain.Workspace, error) {
	if req.TargetWorkspaceID != "" {
		ws, err := s.cfg.Workspaces.Get(ctx, req.TargetWorkspaceID)
		if err != nil {
			return nil, fmt.Errorf("target workspace %s: %w", req.TargetWorkspaceID, err)
		}
		return ws, nil
	}

	name := req.TargetName
	if name == "" {
		name = source.Name
	}
	ws, err := s.cfg.Workspaces.Create(ctx, domain.Workspace{
		Name:        name,
		Description: source.Description,
		StorageKind: domain.StorageRemote,
	})
	if err != nil {
		return nil, fmt.Errorf("creating target workspace: %w", err)
	}
	return ws, nil
}

// ==================== Run ====================

// idMap records local id to remote id for one entity kind.
type idMap struct {
	mu sync.RWMutex
	m  map[string]string
}

func (m *idMap) put(localID, remoteID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.m == nil {
		m.m = make(map[string]string)
	}
	m.m[localID] = remoteID
}

func (m *idMap) get(localID string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.m[localID]
	return id, ok
}

type migrationRun struct {
	cfg      MigrationConfig
	source   domain.Workspace
	target   domain.Workspace
	progress driving.ProgressFunc

	mu      sync.Mutex
	summary *domain.MigrationSummary

	profiles          idMap
	points            idMap
	datasets          idMap
	texts             idMap
	annotatedDatasets idMap
	annotatedTexts    idMap
}

func newMigrationRun(
	cfg MigrationConfig, source, target domain.Workspace, progress driving.ProgressFunc,
) *migrationRun {
	summary := domain.NewMigrationSummary(source.ID, target.ID)
	summary.StartedAt = time.Now().UTC()
	return &migrationRun{
		cfg:      cfg,
		source:   source,
		target:   target,
		progress: progress,
		summary:  summary,
	}
}

// execute runs every phase. Only local read errors are returned.
func (r *migrationRun) execute(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.migrateProfiles(gctx) })
	g.Go(func() error { return r.migrateDatasets(gctx) })
	if err := g.Wait(); err != nil {
		return err
	}

	if err := r.migrateAnnotatedDatasets(ctx); err != nil {
		return err
	}
	if err := r.migrateAnnotatedTexts(ctx); err != nil {
		return err
	}
	r.migrateSettings(ctx)
	return nil
}

func (r *migrationRun) finish() *domain.MigrationSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summary.FinishedAt = time.Now().UTC()
	return r.summary
}

func (r *migrationRun) local() route {
	return route{workspace: r.source, backend: r.cfg.Local}
}

// forEach runs fn over items on at most Workers goroutines.
func forEach[T any](ctx context.Context, workers int, items []T, fn func(context.Context, T) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, item := range items {
		g.Go(func() error { return fn(gctx, item) })
	}
	return g.Wait()
}

// ==================== Recording ====================

func (r *migrationRun) emit(ev domain.MigrationEvent) {
	if r.progress != nil {
		r.progress(ev)
	}
}

func (r *migrationRun) phase(name string) {
	logger.Debug("migration phase: %s", name)
	r.emit(domain.MigrationEvent{Phase: name})
}

func (r *migrationRun) succeeded(phase string, kind domain.EntityKind, localID, remoteID string) {
	r.mu.Lock()
	c := r.summary.Counts[kind]
	c.Succeeded++
	r.summary.Counts[kind] = c
	r.mu.Unlock()

	logger.Debug("migrated %s %s as %s", kind, localID, remoteID)
	r.emit(domain.MigrationEvent{
		Phase: phase, Kind: kind, LocalID: localID, RemoteID: remoteID, Outcome: domain.OutcomeSucceeded,
	})
}

func (r *migrationRun) skipped(phase string, kind domain.EntityKind, localID string, err error) {
	r.record(phase, kind, localID, err, domain.OutcomeSkipped)
}

func (r *migrationRun) failed(phase string, kind domain.EntityKind, localID string, err error) {
	r.record(phase, kind, localID, err, domain.OutcomeFailed)
}

func (r *migrationRun) record(phase string, kind domain.EntityKind, localID string, err error, outcome domain.Outcome) {
	r.mu.Lock()
	c := r.summary.Counts[kind]
	if outcome == domain.OutcomeSkipped {
		c.Skipped++
	} else {
		c.Failed++
	}
	r.summary.Counts[kind] = c
	r.summary.Warnings = append(r.summary.Warnings, domain.MigrationWarning{
		Kind: kind, LocalID: localID, Message: err.Error(),
	})
	r.mu.Unlock()

	logger.Warn("migration %s %s %s: %v", outcome, kind, localID, err)
	r.emit(domain.MigrationEvent{Phase: phase, Kind: kind, LocalID: localID, Outcome: outcome, Err: err})
}

// warn records a problem that does not change any count.
func (r *migrationRun) warn(kind domain.EntityKind, localID string, err error) {
	r.mu.Lock()
	r.summary.Warnings = append(r.summary.Warnings, domain.MigrationWarning{
		Kind: kind, LocalID: localID, Message: err.Error(),
	})
	r.mu.Unlock()
	logger.Warn("migration %s %s: %v", kind, localID, err)
}

func gap(what, id string) error {
	return fmt.Errorf("%w: %s %s was not migrated", domain.ErrReferentialGap, what, id)
}

// ==================== Profiles ====================

func (r *migrationRun) migrateProfiles(ctx context.Context) error {
	r.phase(PhaseProfiles)
	profiles, err := listScoped(ctx, r.local(), "", r.cfg.Local.Profiles().List,
		func(p domain.Profile) string { return p.ID })
	if err != nil {
		return fmt.Errorf("listing local profiles: %w", err)
	}
	return forEach(ctx, r.cfg.Workers, profiles, r.migrateProfile)
}

func (r *migrationRun) migrateProfile(ctx context.Context, p domain.Profile) error {
	points, err := loadChain(ctx, r.cfg.Local.ProfilePoints(), p.ID)
	if err != nil {
		return fmt.Errorf("listing points of profile %s: %w", p.ID, err)
	}

	localID := p.ID
	p.ID = ""
	p.WorkspaceID = r.target.ID
	created, err := r.cfg.Remote.Profiles().Create(ctx, p)
	if err != nil {
		r.failed(PhaseProfiles, domain.KindProfile, localID, err)
		for _, pt := range points {
			r.skipped(PhaseProfiles, domain.KindProfilePoint, pt.ID, gap("profile", localID))
		}
		return nil
	}
	r.profiles.put(localID, created.ID)
	r.succeeded(PhaseProfiles, domain.KindProfile, localID, created.ID)

	r.migratePoints(ctx, created.ID, points)
	return nil
}

// migratePoints recreates a chain under a remote profile. Orders are
// renumbered and pointers are derived from the remote ids.
func (r *migrationRun) migratePoints(ctx context.Context, remoteProfileID string, points []domain.ProfilePoint) {
	store := r.cfg.Remote.ProfilePoints()
	var chain []domain.ProfilePoint
	for _, pt := range points {
		localID := pt.ID
		pt.ID = ""
		pt.ProfileID = remoteProfileID
		pt.Order = int64(len(chain)+1) * domain.OrderGap
		pt.PreviousPointID = ""
		if len(chain) > 0 {
			pt.PreviousPointID = chain[len(chain)-1].ID
		}
		pt.NextPointID = ""

		created, err := store.Create(ctx, pt)
		if err != nil {
			r.failed(PhaseProfiles, domain.KindProfilePoint, localID, err)
			continue
		}
		r.points.put(localID, created.ID)
		r.succeeded(PhaseProfiles, domain.KindProfilePoint, localID, created.ID)
		chain = append(chain, *created)
	}

	linked := make([]domain.ProfilePoint, len(chain))
	copy(linked, chain)
	if err := relink(ctx, store, chain, linked); err != nil {
		r.warn(domain.KindProfilePoint, remoteProfileID, fmt.Errorf("linking remote points: %w", err))
	}
}

// ==================== Datasets ====================

func (r *migrationRun) migrateDatasets(ctx context.Context) error {
	r.phase(PhaseDatasets)
	datasets, err := listScoped(ctx, r.local(), "", r.cfg.Local.Datasets().List,
		func(d domain.Dataset) string { return d.ID })
	if err != nil {
		return fmt.Errorf("listing local datasets: %w", err)
	}
	return forEach(ctx, r.cfg.Workers, datasets, r.migrateDataset)
}

func (r *migrationRun) migrateDataset(ctx context.Context, d domain.Dataset) error {
	texts, err := r.cfg.Local.Texts().ListByDataset(ctx, d.ID)
	if err != nil {
		return fmt.Errorf("listing texts of dataset %s: %w", d.ID, err)
	}
	texts = sortByID(texts, func(t domain.Text) string { return t.ID })

	localID := d.ID
	d.ID = ""
	d.WorkspaceID = r.target.ID
	created, err := r.cfg.Remote.Datasets().Create(ctx, d)
	if err != nil {
		r.failed(PhaseDatasets, domain.KindDataset, localID, err)
		for _, t := range texts {
			r.skipped(PhaseDatasets, domain.KindText, t.ID, gap("dataset", localID))
		}
		return nil
	}
	r.datasets.put(localID, created.ID)
	r.succeeded(PhaseDatasets, domain.KindDataset, localID, created.ID)

	for _, t := range texts {
		textID := t.ID
		t.ID = ""
		t.DatasetID = created.ID
		ct, err := r.cfg.Remote.Texts().Create(ctx, t)
		if err != nil {
			r.failed(PhaseDatasets, domain.KindText, textID, err)
			continue
		}
		r.texts.put(textID, ct.ID)
		r.succeeded(PhaseDatasets, domain.KindText, textID, ct.ID)
	}
	return nil
}

// ==================== Annotations ====================

func (r *migrationRun) migrateAnnotatedDatasets(ctx context.Context) error {
	r.phase(PhaseAnnotatedDatasets)
	ads, err := listScoped(ctx, r.local(), "", r.cfg.Local.AnnotatedDatasets().List,
		func(ad domain.AnnotatedDataset) string { return ad.ID })
	if err != nil {
		return fmt.Errorf("listing local annotated datasets: %w", err)
	}
	return forEach(ctx, r.cfg.Workers, ads, r.migrateAnnotatedDataset)
}

func (r *migrationRun) migrateAnnotatedDataset(ctx context.Context, ad domain.AnnotatedDataset) error {
	localID := ad.ID
	datasetID, ok := r.datasets.get(ad.DatasetID)
	if !ok {
		r.skipped(PhaseAnnotatedDatasets, domain.KindAnnotatedDataset, localID, gap("dataset", ad.DatasetID))
		return nil
	}
	profileID, ok := r.profiles.get(ad.ProfileID)
	if !ok {
		r.skipped(PhaseAnnotatedDatasets, domain.KindAnnotatedDataset, localID, gap("profile", ad.ProfileID))
		return nil
	}

	ad.ID = ""
	ad.WorkspaceID = r.target.ID
	ad.DatasetID = datasetID
	ad.ProfileID = profileID
	created, err := r.cfg.Remote.AnnotatedDatasets().Create(ctx, ad)
	if err != nil {
		r.failed(PhaseAnnotatedDatasets, domain.KindAnnotatedDataset, localID, err)
		return nil
	}
	r.annotatedDatasets.put(localID, created.ID)
	r.succeeded(PhaseAnnotatedDatasets, domain.KindAnnotatedDataset, localID, created.ID)
	return nil
}

// migrateAnnotatedTexts walks every local annotated dataset, so the children
// of skipped or failed ones are counted as skipped.
func (r *migrationRun) migrateAnnotatedTexts(ctx context.Context) error {
	r.phase(PhaseAnnotatedTexts)
	ads, err := listScoped(ctx, r.local(), "", r.cfg.Local.AnnotatedDatasets().List,
		func(ad domain.AnnotatedDataset) string { return ad.ID })
	if err != nil {
		return fmt.Errorf("listing local annotated datasets: %w", err)
	}
	return forEach(ctx, r.cfg.Workers, ads, func(ctx context.Context, ad domain.AnnotatedDataset) error {
		ats, err := r.cfg.Local.AnnotatedTexts().ListByAnnotatedDataset(ctx, ad.ID)
		if err != nil {
			return fmt.Errorf("listing annotated texts of %s: %w", ad.ID, err)
		}
		ats = sortByID(ats, func(at domain.AnnotatedText) string { return at.ID })
		for _, at := range ats {
			if err := r.migrateAnnotatedText(ctx, at); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *migrationRun) migrateAnnotatedText(ctx context.Context, at domain.AnnotatedText) error {
	dps, err := r.cfg.Local.DataPoints().ListByAnnotatedText(ctx, at.ID)
	if err != nil {
		return fmt.Errorf("listing data points of %s: %w", at.ID, err)
	}
	dps = sortByID(dps, func(dp domain.DataPoint) string { return dp.ID })

	localID := at.ID
	skipChildren := func() {
		for _, dp := range dps {
			r.skipped(PhaseAnnotatedTexts, domain.KindDataPoint, dp.ID, gap("annotated text", localID))
		}
	}

	adID, ok := r.annotatedDatasets.get(at.AnnotatedDatasetID)
	if !ok {
		r.skipped(PhaseAnnotatedTexts, domain.KindAnnotatedText, localID,
			gap("annotated dataset", at.AnnotatedDatasetID))
		skipChildren()
		return nil
	}
	textID, ok := r.texts.get(at.TextID)
	if !ok {
		r.skipped(PhaseAnnotatedTexts, domain.KindAnnotatedText, localID, gap("text", at.TextID))
		skipChildren()
		return nil
	}

	at.ID = ""
	at.AnnotatedDatasetID = adID
	at.TextID = textID
	created, err := r.cfg.Remote.AnnotatedTexts().Create(ctx, at)
	if err != nil {
		r.failed(PhaseAnnotatedTexts, domain.KindAnnotatedText, localID, err)
		skipChildren()
		return nil
	}
	r.annotatedTexts.put(localID, created.ID)
	r.succeeded(PhaseAnnotatedTexts, domain.KindAnnotatedText, localID, created.ID)

	for _, dp := range dps {
		r.migrateDataPoint(ctx, created.ID, dp)
	}
	return nil
}

func (r *migrationRun) migrateDataPoint(ctx context.Context, remoteTextID string, dp domain.DataPoint) {
	localID := dp.ID
	if dp.ProfilePointID != "" {
		pointID, ok := r.points.get(dp.ProfilePointID)
		if !ok {
			r.skipped(PhaseAnnotatedTexts, domain.KindDataPoint, localID, gap("profile point", dp.ProfilePointID))
			return
		}
		dp.ProfilePointID = pointID
	}

	dp.ID = ""
	dp.AnnotatedTextID = remoteTextID
	created, err := r.cfg.Remote.DataPoints().Create(ctx, dp)
	if err != nil {
		r.failed(PhaseAnnotatedTexts, domain.KindDataPoint, localID, err)
		return
	}
	r.succeeded(PhaseAnnotatedTexts, domain.KindDataPoint, localID, created.ID)
}

// ==================== Settings ====================

// migrateSettings upserts user settings and the LLM configuration. The API
// key stays on this device.
func (r *migrationRun) migrateSettings(ctx context.Context) {
	r.phase(PhaseSettings)
	local := r.cfg.Local.Settings()
	remote := r.cfg.Remote.Settings()

	settings, err := local.GetSettings(ctx)
	if err == nil {
		err = remote.PutSettings(ctx, *settings)
	}
	if err != nil {
		r.failed(PhaseSettings, domain.KindSettings, string(domain.KindSettings), err)
	} else {
		r.succeeded(PhaseSettings, domain.KindSettings, string(domain.KindSettings), "")
	}

	cfg, err := local.GetLLMConfig(ctx)
	if err == nil {
		err = remote.PutLLMConfig(ctx, cfg.WithoutSecrets())
	}
	if err != nil {
		r.failed(PhaseSettings, domain.KindLLMConfig, string(domain.KindLLMConfig), err)
	} else {
		r.succeeded(PhaseSettings, domain.KindLLMConfig, string(domain.KindLLMConfig), "")
	}
}

