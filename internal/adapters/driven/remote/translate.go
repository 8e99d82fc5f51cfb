package remote

import (
	"maps"
	"slices"

	"github.com/custodia-labs/annotate/internal/core/domain"
)

// Wire spellings that differ from the domain.
const (
	wireModeExtraction   = "datapoint_extraction"
	wireModeSegmentation = "text_segmentation"
	wireStorageCloud     = "cloud"
)

// ModeToRemote returns the wire spelling of a mode.
func ModeToRemote(m domain.Mode) string {
	switch m {
	case domain.ModeExtraction:
		return wireModeExtraction
	case domain.ModeSegmentation:
		return wireModeSegmentation
	default:
		return string(m)
	}
}

// ModeToLocal returns the domain mode for a wire spelling.
// Unknown spellings pass through unchanged so validation can reject them.
func ModeToLocal(s string) domain.Mode {
	switch s {
	case wireModeExtraction:
		return domain.ModeExtraction
	case wireModeSegmentation:
		return domain.ModeSegmentation
	default:
		return domain.Mode(s)
	}
}

// StorageKindToRemote returns the wire spelling of a storage kind.
func StorageKindToRemote(k domain.StorageKind) string {
	if k == domain.StorageRemote {
		return wireStorageCloud
	}
	return string(k)
}

// StorageKindToLocal returns the domain storage kind for a wire spelling.
func StorageKindToLocal(s string) domain.StorageKind {
	if s == wireStorageCloud {
		return domain.StorageRemote
	}
	return domain.StorageKind(s)
}

// optionalID maps "" to nil.
func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

func derefID(id *string) string {
	if id == nil {
		return ""
	}
	return *id
}

// ProfileToRemote converts a profile for the given destination workspace.
func ProfileToRemote(p domain.Profile, workspaceID string) ProfileRecord {
	r := ProfileRecord{
		ID:          p.ID,
		WorkspaceID: workspaceID,
		Name:        p.Name,
		Description: p.Description,
		Mode:        ModeToRemote(p.Mode),
	}
	if p.Example != nil {
		r.Example = &ExampleRecord{Text: p.Example.Text, Output: maps.Clone(p.Example.Output)}
	}
	return r
}

// ProfileToLocal converts a wire profile.
func ProfileToLocal(r ProfileRecord) domain.Profile {
	p := domain.Profile{
		ID:          r.ID,
		WorkspaceID: r.WorkspaceID,
		Name:        r.Name,
		Description: r.Description,
		Mode:        ModeToLocal(r.Mode),
	}
	if r.Example != nil {
		p.Example = &domain.ProfileExample{Text: r.Example.Text, Output: maps.Clone(r.Example.Output)}
	}
	return p
}

// PointToRemote converts a profile point.
func PointToRemote(p domain.ProfilePoint) ProfilePointRecord {
	r := ProfilePointRecord{
		ID:              p.ID,
		ProfileID:       p.ProfileID,
		Name:            p.Name,
		Explanation:     p.Explanation,
		Synonyms:        slices.Clone(p.Synonyms),
		Datatype:        p.Datatype,
		Order:           p.Order,
		PreviousPointID: optionalID(p.PreviousPointID),
		NextPointID:     optionalID(p.NextPointID),
	}
	if r.Synonyms == nil {
		r.Synonyms = []string{}
	}
	if p.Valueset != nil {
		vs := slices.Clone(p.Valueset)
		r.Valueset = &vs
	}
	if p.Unit != nil {
		r.Unit = domain.StringPtr(*p.Unit)
	}
	return r
}

// PointToLocal converts a wire profile point. The wire always carries a
// synonym array; an empty one becomes nil.
func PointToLocal(r ProfilePointRecord) domain.ProfilePoint {
	p := domain.ProfilePoint{
		ID:              r.ID,
		ProfileID:       r.ProfileID,
		Name:            r.Name,
		Explanation:     r.Explanation,
		Datatype:        r.Datatype,
		Order:           r.Order,
		PreviousPointID: derefID(r.PreviousPointID),
		NextPointID:     derefID(r.NextPointID),
	}
	if len(r.Synonyms) > 0 {
		p.Synonyms = slices.Clone(r.Synonyms)
	}
	if r.Valueset != nil {
		p.Valueset = slices.Clone(*r.Valueset)
		if p.Valueset == nil {
			p.Valueset = []string{}
		}
	}
	if r.Unit != nil {
		p.Unit = domain.StringPtr(*r.Unit)
	}
	return p
}

// DatasetToRemote converts a dataset for the given destination workspace.
func DatasetToRemote(d domain.Dataset, workspaceID string) DatasetRecord {
	return DatasetRecord{
		ID:          d.ID,
		WorkspaceID: workspaceID,
		Name:        d.Name,
		Description: d.Description,
		Mode:        ModeToRemote(d.Mode),
	}
}

// DatasetToLocal converts a wire dataset.
func DatasetToLocal(r DatasetRecord) domain.Dataset {
	return domain.Dataset{
		ID:          r.ID,
		WorkspaceID: r.WorkspaceID,
		Name:        r.Name,
		Description: r.Description,
		Mode:        ModeToLocal(r.Mode),
	}
}

// TextToRemote converts a text.
func TextToRemote(t domain.Text) TextRecord {
	return TextRecord{ID: t.ID, DatasetID: t.DatasetID, Filename: t.Filename, Text: t.Text}
}

// TextToLocal converts a wire text.
func TextToLocal(r TextRecord) domain.Text {
	return domain.Text{ID: r.ID, DatasetID: r.DatasetID, Filename: r.Filename, Text: r.Text}
}

// AnnotatedDatasetToRemote converts an annotated dataset for the given destination workspace.
func AnnotatedDatasetToRemote(ad domain.AnnotatedDataset, workspaceID string) AnnotatedDatasetRecord {
	return AnnotatedDatasetRecord{
		ID:          ad.ID,
		WorkspaceID: workspaceID,
		DatasetID:   ad.DatasetID,
		ProfileID:   ad.ProfileID,
		Name:        ad.Name,
		Description: ad.Description,
		Mode:        ModeToRemote(ad.Mode),
	}
}

// AnnotatedDatasetToLocal converts a wire annotated dataset.
func AnnotatedDatasetToLocal(r AnnotatedDatasetRecord) domain.AnnotatedDataset {
	return domain.AnnotatedDataset{
		ID:          r.ID,
		WorkspaceID: r.WorkspaceID,
		DatasetID:   r.DatasetID,
		ProfileID:   r.ProfileID,
		Name:        r.Name,
		Description: r.Description,
		Mode:        ModeToLocal(r.Mode),
	}
}

// AnnotatedTextToRemote converts an annotated text.
func AnnotatedTextToRemote(at domain.AnnotatedText) AnnotatedTextRecord {
	return AnnotatedTextRecord{
		ID:                 at.ID,
		AnnotatedDatasetID: at.AnnotatedDatasetID,
		TextID:             at.TextID,
		Verified:           at.Verified,
		AIFaulty:           at.AIFaulty,
	}
}

// AnnotatedTextToLocal converts a wire annotated text.
func AnnotatedTextToLocal(r AnnotatedTextRecord) domain.AnnotatedText {
	return domain.AnnotatedText{
		ID:                 r.ID,
		AnnotatedDatasetID: r.AnnotatedDatasetID,
		TextID:             r.TextID,
		Verified:           r.Verified,
		AIFaulty:           r.AIFaulty,
	}
}

// DataPointToRemote converts a data point.
func DataPointToRemote(dp domain.DataPoint) DataPointRecord {
	return DataPointRecord{
		ID:              dp.ID,
		AnnotatedTextID: dp.AnnotatedTextID,
		Name:            dp.Name,
		Value:           dp.Value,
		Match:           slices.Clone(dp.Match),
		ProfilePointID:  optionalID(dp.ProfilePointID),
		Verified:        dp.Verified,
	}
}

// DataPointToLocal converts a wire data point.
func DataPointToLocal(r DataPointRecord) domain.DataPoint {
	return domain.DataPoint{
		ID:              r.ID,
		AnnotatedTextID: r.AnnotatedTextID,
		Name:            r.Name,
		Value:           r.Value,
		Match:           slices.Clone(r.Match),
		ProfilePointID:  derefID(r.ProfilePointID),
		Verified:        r.Verified,
	}
}

// WorkspaceToRemote converts a workspace.
func WorkspaceToRemote(ws domain.Workspace) WorkspaceRecord {
	return WorkspaceRecord{
		ID:          ws.ID,
		Name:        ws.Name,
		Description: ws.Description,
		StorageType: StorageKindToRemote(ws.StorageKind),
		IsDefault:   ws.IsDefault,
		OwnerID:     ws.OwnerID,
	}
}

// WorkspaceToLocal converts a wire workspace.
func WorkspaceToLocal(r WorkspaceRecord) domain.Workspace {
	return domain.Workspace{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		StorageKind: StorageKindToLocal(r.StorageType),
		IsDefault:   r.IsDefault,
		OwnerID:     r.OwnerID,
	}
}

// SettingsToRemote converts user settings.
func SettingsToRemote(s domain.UserSettings) SettingsRecord {
	return SettingsRecord{TutorialCompleted: s.TutorialCompleted}
}

// SettingsToLocal converts wire user settings.
func SettingsToLocal(r SettingsRecord) domain.UserSettings {
	return domain.UserSettings{TutorialCompleted: r.TutorialCompleted}
}

// LLMConfigToRemote converts an LLM configuration.
func LLMConfigToRemote(c domain.LLMConfig) LLMConfigRecord {
	return LLMConfigRecord{
		Provider:  string(c.Provider),
		Model:     c.Model,
		BaseURL:   c.BaseURL,
		APIKey:    c.APIKey,
		BatchSize: c.BatchSize,
		MaxTokens: c.MaxTokens,
	}
}

// LLMConfigToLocal converts a wire LLM configuration.
func LLMConfigToLocal(r LLMConfigRecord) domain.LLMConfig {
	return domain.LLMConfig{
		Provider:  domain.AIProvider(r.Provider),
		Model:     r.Model,
		BaseURL:   r.BaseURL,
		APIKey:    r.APIKey,
		BatchSize: r.BatchSize,
		MaxTokens: r.MaxTokens,
	}
}
