package domain

// AnnotatedDataset is the result of running a profile over a dataset.
type AnnotatedDataset struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspaceId"`
	DatasetID   string `json:"datasetId" validate:"required"`
	ProfileID   string `json:"profileId" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Mode        Mode   `json:"mode" validate:"required,oneof=extraction segmentation"`
}

// AnnotatedText links a text to an annotated dataset.
type AnnotatedText struct {
	ID                 string `json:"id"`
	AnnotatedDatasetID string `json:"annotatedDatasetId" validate:"required"`
	TextID             string `json:"textId" validate:"required"`
	Verified           bool   `json:"verified"`
	AIFaulty           bool   `json:"aiFaulty"`
}

// DataPoint is one extracted value within an annotated text.
type DataPoint struct {
	ID              string `json:"id"`
	AnnotatedTextID string `json:"annotatedTextId" validate:"required"`
	Name            string `json:"name" validate:"required"`
	Value           string `json:"value"`

	// Match holds the character span [start, end) of the value, nil when unmatched.
	Match []int `json:"match,omitempty"`

	// ProfilePointID is empty when the point was added manually.
	ProfilePointID string `json:"profilePointId,omitempty"`
	Verified       bool   `json:"verified"`
}
