package drive

import (
	"context"

	"campusdrive/internal/domain/models"
	"campusdrive/internal/domain/models/drive"
)

// FolderService handles folder business logic
type FolderService interface {
	// CreateFolder creates a folder under an optional parent
	CreateFolder(ctx context.Context, actor models.Actor, req *CreateFolderRequest) (*drive.Folder, error)

	// GetFolder retrieves a folder with its computed path and touches last-opened
	GetFolder(ctx context.Context, actor models.Actor, id string) (*drive.Folder, error)

	// ListChildren lists child folders and files of a folder
	ListChildren(ctx context.Context, actor models.Actor, id string) (*FolderContents, error)

	// ListFolders lists the actor's root, starred, trashed or shared folders
	ListFolders(ctx context.Context, actor models.Actor, req *ListRequest) ([]drive.Folder, error)

	// UpdateFolder renames, stars or toggles quick access
	UpdateFolder(ctx context.Context, actor models.Actor, id string, req *UpdateRequest) (*drive.Folder, error)

	// CopyFolder deep-copies a folder subtree under destID (nil = root)
	CopyFolder(ctx context.Context, actor models.Actor, id string, destID *string) (*drive.Folder, error)

	// MoveFolder re-parents a folder under destID (nil = root)
	MoveFolder(ctx context.Context, actor models.Actor, id string, destID *string) (*drive.Folder, error)

	// DeleteFolder hard-deletes a folder and its whole subtree
	DeleteFolder(ctx context.Context, actor models.Actor, id string) error

	// TrashFolder trashes the subtree (owner) or drops the actor from the share list (share member)
	TrashFolder(ctx context.Context, actor models.Actor, id string) (TrashOutcome, error)

	// RestoreFolder clears the trashed flag on the subtree
	RestoreFolder(ctx context.Context, actor models.Actor, id string) error

	// ShareFolder adds emails and capabilities to the share state
	ShareFolder(ctx context.Context, actor models.Actor, id string, req *ShareRequest) (*drive.Folder, error)

	// UnshareFolder removes emails from the share list
	UnshareFolder(ctx context.Context, actor models.Actor, id string, emails []string) (*drive.Folder, error)

	// Location returns the breadcrumb from the root down to the folder
	Location(ctx context.Context, actor models.Actor, id string) ([]drive.Location, error)

	// VerifySize recomputes a folder's size from its files and optionally repairs stored sizes
	VerifySize(ctx context.Context, actor models.Actor, id string, repair bool) (*SizeReport, error)

	// CreateSubmissionFolder creates a folder flagged is-submission-folder shared
	// read/write with the given emails
	CreateSubmissionFolder(ctx context.Context, actor models.Actor, req *CreateFolderRequest, emails []string) (*drive.Folder, error)
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id,omitempty"` // NULL = root level
}

// UpdateRequest represents a rename/star/quick-access request
type UpdateRequest struct {
	Name        *string `json:"name,omitempty"`
	Starred     *bool   `json:"starred,omitempty"`
	QuickAccess *bool   `json:"quick_access,omitempty"`
}

// ShareRequest adds share recipients and capabilities
type ShareRequest struct {
	Emails      []string           `json:"emails"`
	Permissions []drive.Capability `json:"permissions"`
}

// ListRequest selects one of the listing views
type ListRequest struct {
	FolderID *string         `json:"folder_id,omitempty"`
	View     ListView        `json:"view"`
	Sort     drive.SortField `json:"sort"`
	Desc     bool            `json:"desc"`
	Skip     int             `json:"skip"`
	Limit    int             `json:"limit"`
}

// ListView names a listing
type ListView string

const (
	ViewMine    ListView = "mine"
	ViewStarred ListView = "starred"
	ViewTrash   ListView = "trash"
	ViewShared  ListView = "shared"
)

// FolderContents represents a folder with its children
type FolderContents struct {
	Folder  *drive.Folder  `json:"folder"`
	Folders []drive.Folder `json:"folders"`
	Files   []drive.File   `json:"files"`
}

// TrashOutcome tells the caller which meaning of trash was applied
type TrashOutcome string

const (
	TrashOutcomeTrashed      TrashOutcome = "trashed"
	TrashOutcomeRemovedShare TrashOutcome = "removed_from_share"
)

// SizeReport compares the stored and recomputed size of a folder
type SizeReport struct {
	FolderID   string `json:"folder_id"`
	Stored     int64  `json:"stored"`
	Recomputed int64  `json:"recomputed"`
	Repaired   bool   `json:"repaired"`
}
