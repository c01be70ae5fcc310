package drive

import (
	"time"
)

type Folder struct {
	ID           string       `json:"id" db:"id"`
	Name         string       `json:"name" db:"name"`
	AuthorID     string       `json:"author_id" db:"author_id"` // creator, never changes
	OwnerID      string       `json:"owner_id" db:"owner_id"`   // inherited from parent at creation
	ParentID     *string      `json:"parent_id" db:"parent_id"` // NULL = root level
	SubFolderIDs []string     `json:"sub_folder_ids" db:"sub_folder_ids"`
	FileIDs      []string     `json:"file_ids" db:"file_ids"`
	Size         int64        `json:"size" db:"size"` // sum of all descendant file sizes
	IsStarred    bool         `json:"is_starred" db:"is_starred"`
	IsTrashed    bool         `json:"is_trashed" db:"is_trashed"`
	TrashedBy    *string      `json:"-" db:"trashed_by"` // id of the folder or file whose trash hid this entity
	QuickAccess  bool         `json:"quick_access" db:"quick_access"`
	IsSubmission bool         `json:"is_submission" db:"is_submission"`
	SharedTo     []string     `json:"shared_to" db:"shared_to"`
	Permissions  []Capability `json:"permissions" db:"permissions"`
	Path         string       `json:"path,omitempty"` // Computed display path, not stored in DB
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	ModifiedAt   time.Time    `json:"modified_at" db:"modified_at"`
	LastOpenedAt time.Time    `json:"last_opened_at" db:"last_opened_at"`
}

// ACL implements Shareable.
func (f *Folder) ACL() AccessControl {
	return AccessControl{
		AuthorID:    f.AuthorID,
		OwnerID:     f.OwnerID,
		SharedTo:    f.SharedTo,
		Permissions: f.Permissions,
	}
}

// Location is one breadcrumb entry.
type Location struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
