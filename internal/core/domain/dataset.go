package domain

// Dataset is a named collection of texts.
type Dataset struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspaceId"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Mode        Mode   `json:"mode" validate:"required,oneof=extraction segmentation"`
}

// Text is one uploaded document within a dataset.
type Text struct {
	ID        string `json:"id"`
	DatasetID string `json:"datasetId" validate:"required"`
	Filename  string `json:"filename"`
	Text      string `json:"text"`
}
