package remote

// Wire shapes of the remote store. Server-only metadata is kept so responses
// decode cleanly; translate.go drops it.

// ProfileRecord is the wire shape of a profile.
type ProfileRecord struct {
	ID          string         `json:"id,omitempty"`
	UserID      string         `json:"user_id,omitempty"`
	WorkspaceID string         `json:"workspace_id,omitempty"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Mode        string         `json:"mode"`
	Example     *ExampleRecord `json:"example,omitempty"`
	CreatedAt   string         `json:"created_at,omitempty"`
	UpdatedAt   string         `json:"updated_at,omitempty"`
}

// ExampleRecord is a profile's worked example.
type ExampleRecord struct {
	Text   string            `json:"text"`
	Output map[string]string `json:"output"`
}

// ProfilePointRecord is the wire shape of a profile point.
type ProfilePointRecord struct {
	ID              string    `json:"id,omitempty"`
	ProfileID       string    `json:"profile_id"`
	Name            string    `json:"name"`
	Explanation     string    `json:"explanation,omitempty"`
	Synonyms        []string  `json:"synonyms"`
	Datatype        string    `json:"datatype"`
	Valueset        *[]string `json:"valueset,omitempty"`
	Unit            *string   `json:"unit,omitempty"`
	Order           int64     `json:"order"`
	PreviousPointID *string   `json:"previous_point_id,omitempty"`
	NextPointID     *string   `json:"next_point_id,omitempty"`
	CreatedAt       string    `json:"created_at,omitempty"`
	UpdatedAt       string    `json:"updated_at,omitempty"`
}

// DatasetRecord is the wire shape of a dataset.
type DatasetRecord struct {
	ID          string `json:"id,omitempty"`
	UserID      string `json:"user_id,omitempty"`
	WorkspaceID string `json:"workspace_id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Mode        string `json:"mode"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// TextRecord is the wire shape of a text.
type TextRecord struct {
	ID        string `json:"id,omitempty"`
	DatasetID string `json:"dataset_id"`
	Filename  string `json:"filename"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at,omitempty"`
}

// AnnotatedDatasetRecord is the wire shape of an annotated dataset.
type AnnotatedDatasetRecord struct {
	ID          string `json:"id,omitempty"`
	UserID      string `json:"user_id,omitempty"`
	WorkspaceID string `json:"workspace_id,omitempty"`
	DatasetID   string `json:"dataset_id"`
	ProfileID   string `json:"profile_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Mode        string `json:"mode"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// AnnotatedTextRecord is the wire shape of an annotated text.
type AnnotatedTextRecord struct {
	ID                 string `json:"id,omitempty"`
	AnnotatedDatasetID string `json:"annotated_dataset_id"`
	TextID             string `json:"text_id"`
	Verified           bool   `json:"verified"`
	AIFaulty           bool   `json:"ai_faulty"`
	CreatedAt          string `json:"created_at,omitempty"`
}

// DataPointRecord is the wire shape of a data point.
type DataPointRecord struct {
	ID              string  `json:"id,omitempty"`
	AnnotatedTextID string  `json:"annotated_text_id"`
	Name            string  `json:"name"`
	Value           string  `json:"value"`
	Match           []int   `json:"match,omitempty"`
	ProfilePointID  *string `json:"profile_point_id,omitempty"`
	Verified        bool    `json:"verified"`
	CreatedAt       string  `json:"created_at,omitempty"`
}

// WorkspaceRecord is the wire shape of a workspace.
type WorkspaceRecord struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	StorageType string `json:"storage_type"`
	IsDefault   bool   `json:"is_default"`
	OwnerID     string `json:"owner_id,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// SettingsRecord is the wire shape of user settings.
type SettingsRecord struct {
	TutorialCompleted bool `json:"tutorial_completed"`
}

// LLMConfigRecord is the wire shape of the LLM configuration.
type LLMConfigRecord struct {
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	BaseURL   string `json:"base_url,omitempty"`
	APIKey    string `json:"api_key,omitempty"`
	BatchSize int    `json:"batch_size"`
	MaxTokens int    `json:"max_tokens"`
}

// errorBody is the server's error payload.
type errorBody struct {
	Detail string `json:"detail"`
}
