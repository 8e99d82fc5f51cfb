package domain

import "time"

// StorageKind identifies the physical store a workspace lives in.
type StorageKind string

// Available storage kinds.
const (
	// StorageLocal is the embedded store used when the user is anonymous.
	StorageLocal StorageKind = "local"

	// StorageRemote is the multi-tenant HTTP store reached once the user authenticates.
	StorageRemote StorageKind = "remote"
)

// IsValid returns true if the storage kind is recognised.
func (k StorageKind) IsValid() bool {
	switch k {
	case StorageLocal, StorageRemote:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k StorageKind) String() string {
	return string(k)
}

// Description returns a human-readable description of the storage kind.
func (k StorageKind) Description() string {
	switch k {
	case StorageLocal:
		return "Local (this device)"
	case StorageRemote:
		return "Remote (cloud)"
	default:
		return "Unknown"
	}
}

// Workspace scopes profiles, datasets and annotations to one store.
type Workspace struct {
	// ID is the unique identifier for the workspace.
	ID string `json:"id" toml:"id"`

	// Name is the human-readable name.
	Name string `json:"name" toml:"name" validate:"required"`

	// Description is optional free text.
	Description string `json:"description,omitempty" toml:"description,omitempty"`

	// StorageKind selects the backing store.
	StorageKind StorageKind `json:"storage_kind" toml:"storage_kind" validate:"required,oneof=local remote"`

	// IsDefault marks the workspace created on first run.
	IsDefault bool `json:"is_default" toml:"is_default"`

	// OwnerID is the remote tenant owning the workspace. Empty for local workspaces.
	OwnerID string `json:"owner_id,omitempty" toml:"owner_id,omitempty"`

	// CreatedAt is when the workspace was created.
	CreatedAt time.Time `json:"created_at" toml:"created_at"`

	// UpdatedAt is when the workspace was last updated.
	UpdatedAt time.Time `json:"updated_at" toml:"updated_at"`
}

// IsRemote returns true if the workspace lives in the remote store.
func (w *Workspace) IsRemote() bool {
	return w.StorageKind == StorageRemote
}

// DefaultLocalWorkspaceName is the name given to the workspace created on first run.
const DefaultLocalWorkspaceName = "My Local Workspace"

// WorkspaceState is the persisted workspace selection.
type WorkspaceState struct {
	// ActiveID is the id of the active workspace. Empty when none is selected.
	ActiveID string `toml:"active_id"`

	// Active caches the active workspace record so a remote workspace can be
	// resolved without a network call.
	Active *Workspace `toml:"active,omitempty"`

	// Local is the catalogue of workspaces that live on this device.
	Local []Workspace `toml:"local"`
}

// FindLocal returns the local workspace with the given id.
func (s *WorkspaceState) FindLocal(id string) (*Workspace, bool) {
	for i := range s.Local {
		if s.Local[i].ID == id {
			ws := s.Local[i]
			return &ws, true
		}
	}
	return nil, false
}
