package domain

import "time"

// EntityKind names an entity kind handled by the migration engine.
type EntityKind string

// Entity kinds, in migration dependency order.
const (
	KindProfile          EntityKind = "profile"
	KindProfilePoint     EntityKind = "profile_point"
	KindDataset          EntityKind = "dataset"
	KindText             EntityKind = "text"
	KindAnnotatedDataset EntityKind = "annotated_dataset"
	KindAnnotatedText    EntityKind = "annotated_text"
	KindDataPoint        EntityKind = "data_point"
	KindSettings         EntityKind = "settings"
	KindLLMConfig        EntityKind = "llm_config"
)

// MigrationKinds returns every kind reported in a migration summary.
func MigrationKinds() []EntityKind {
	return []EntityKind{
		KindProfile,
		KindProfilePoint,
		KindDataset,
		KindText,
		KindAnnotatedDataset,
		KindAnnotatedText,
		KindDataPoint,
		KindSettings,
		KindLLMConfig,
	}
}

// KindCounts tallies per-entity outcomes for one kind.
type KindCounts struct {
	Succeeded int `json:"succeeded"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// Total returns the number of entities attempted.
func (c KindCounts) Total() int {
	return c.Succeeded + c.Skipped + c.Failed
}

// MigrationWarning records a skipped or failed entity.
type MigrationWarning struct {
	Kind    EntityKind `json:"kind"`
	LocalID string     `json:"local_id"`
	Message string     `json:"message"`
}

// MigrationSummary is the outcome of one migration run.
type MigrationSummary struct {
	// SourceWorkspaceID is the local workspace that was read.
	SourceWorkspaceID string `json:"source_workspace_id"`

	// TargetWorkspaceID is the remote workspace that received the copy.
	TargetWorkspaceID string `json:"target_workspace_id"`

	// Counts holds per-kind outcome counts.
	Counts map[EntityKind]KindCounts `json:"counts"`

	// Warnings lists every skip and failure in the order they were observed.
	Warnings []MigrationWarning `json:"warnings,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// NewMigrationSummary returns an empty summary for the given workspaces.
func NewMigrationSummary(source, target string) *MigrationSummary {
	counts := make(map[EntityKind]KindCounts, len(MigrationKinds()))
	for _, k := range MigrationKinds() {
		counts[k] = KindCounts{}
	}
	return &MigrationSummary{
		SourceWorkspaceID: source,
		TargetWorkspaceID: target,
		Counts:            counts,
	}
}

// Succeeded returns the total number of migrated entities.
func (s *MigrationSummary) Succeeded() int {
	n := 0
	for _, c := range s.Counts {
		n += c.Succeeded
	}
	return n
}

// Skipped returns the total number of skipped entities.
func (s *MigrationSummary) Skipped() int {
	n := 0
	for _, c := range s.Counts {
		n += c.Skipped
	}
	return n
}

// Failed returns the total number of entities whose remote create failed.
func (s *MigrationSummary) Failed() int {
	n := 0
	for _, c := range s.Counts {
		n += c.Failed
	}
	return n
}

// Outcome is the result of migrating a single entity.
type Outcome string

// Entity outcomes.
const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// MigrationEvent is emitted once per migrated entity and once per phase change.
type MigrationEvent struct {
	// Phase names the step currently running, e.g. "profiles".
	Phase string

	// Kind and LocalID identify the entity. Both are empty for phase events.
	Kind    EntityKind
	LocalID string

	// RemoteID is set when Outcome is OutcomeSucceeded.
	RemoteID string

	Outcome Outcome

	// Err is set for skipped and failed entities.
	Err error
}

// IsPhase reports whether the event marks the start of a phase.
func (e MigrationEvent) IsPhase() bool {
	return e.Kind == ""
}
