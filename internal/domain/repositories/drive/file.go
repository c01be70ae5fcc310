package drive

import (
	"context"

	"campusdrive/internal/domain/models/drive"
)

// FileRepository defines data access operations for file metadata
type FileRepository interface {
	// Create inserts a file, assigning an ID when empty
	Create(ctx context.Context, file *drive.File) error

	// GetByID retrieves a file by ID
	GetByID(ctx context.Context, id string) (*drive.File, error)

	// Update writes name, blob key, flags and the timestamps. Size is never written.
	// A zero ModifiedAt is replaced with the current time.
	Update(ctx context.Context, file *drive.File) error

	// DeleteMany removes files by ID; missing ids are ignored
	DeleteMany(ctx context.Context, ids []string) error

	// SetParent moves a file under folderID (nil = root) and sets its owner
	SetParent(ctx context.Context, id string, folderID *string, ownerID string) error

	// SetOwnerByFolders overwrites owner on every file inside the listed folders
	SetOwnerByFolders(ctx context.Context, folderIDs []string, ownerID string) error

	// SetTrashed marks every listed file as trashed by trashedBy, or restores
	// them when trashedBy is nil
	SetTrashed(ctx context.Context, ids []string, trashedBy *string) error

	// AddShares adds emails and capabilities to the share state (set semantics)
	AddShares(ctx context.Context, id string, emails []string, caps []drive.Capability) error

	// RemoveShares pulls emails from the share list
	RemoveShares(ctx context.Context, id string, emails []string) error

	// ListByFolders returns every file whose folder is in folderIDs
	ListByFolders(ctx context.Context, folderIDs []string) ([]drive.File, error)

	// SiblingNames returns the names of files directly under folderID.
	// For the root level, siblings are the root files of ownerID.
	SiblingNames(ctx context.Context, folderID *string, ownerID string) ([]string, error)

	// List runs a filtered listing with sort/skip/limit
	List(ctx context.Context, q *drive.ListQuery) ([]drive.File, error)
}
