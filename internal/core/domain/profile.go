package domain

// Mode is the annotation task a profile, dataset or annotated dataset is built for.
type Mode string

// Available modes.
const (
	// ModeExtraction extracts typed data points from text.
	ModeExtraction Mode = "extraction"

	// ModeSegmentation splits text into labelled segments.
	ModeSegmentation Mode = "segmentation"
)

// AllModes returns every supported mode in a stable order.
func AllModes() []Mode {
	return []Mode{ModeExtraction, ModeSegmentation}
}

// IsValid returns true if the mode is recognised.
func (m Mode) IsValid() bool {
	switch m {
	case ModeExtraction, ModeSegmentation:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m Mode) String() string {
	return string(m)
}

// ProfileExample is a worked example attached to a profile.
type ProfileExample struct {
	Text   string            `json:"text"`
	Output map[string]string `json:"output"`
}

// Profile defines what to extract from texts.
type Profile struct {
	ID          string          `json:"id"`
	WorkspaceID string          `json:"workspaceId"`
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Mode        Mode            `json:"mode" validate:"required,oneof=extraction segmentation"`
	Example     *ProfileExample `json:"example,omitempty"`
}

// ProfilePoint is one data point definition within a profile.
//
// Points form a doubly linked list. Order is the source of truth; the
// PreviousPointID/NextPointID pointers are derived from it. An empty pointer
// means there is no neighbour on that side.
type ProfilePoint struct {
	ID          string   `json:"id"`
	ProfileID   string   `json:"profileId" validate:"required"`
	Name        string   `json:"name" validate:"required"`
	Explanation string   `json:"explanation"`
	Datatype    string   `json:"datatype" validate:"required"`

	// Synonyms is nil when there are none. Stores do not keep an empty list
	// apart from nil, so both read back as nil.
	Synonyms []string `json:"synonyms"`

	// Valueset is nil when unset. An empty, non-nil slice is a valueset with no members.
	Valueset []string `json:"valueset,omitempty"`

	// Unit is nil when unset. A pointer to "" is an explicitly empty unit.
	Unit *string `json:"unit,omitempty"`

	Order           int64  `json:"order"`
	PreviousPointID string `json:"previousPointId,omitempty"`
	NextPointID     string `json:"nextPointId,omitempty"`
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
