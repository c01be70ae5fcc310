package drive

import (
	"context"

	"campusdrive/internal/domain/models/drive"
)

// FolderRepository defines data access operations for folders.
// Size and child-set mutations are atomic single-document updates.
type FolderRepository interface {
	// Create inserts a folder, assigning an ID when empty
	Create(ctx context.Context, folder *drive.Folder) error

	// GetByID retrieves a folder by ID
	GetByID(ctx context.Context, id string) (*drive.Folder, error)

	// Update writes name, flags and the timestamps.
	// A zero ModifiedAt is replaced with the current time.
	Update(ctx context.Context, folder *drive.Folder) error

	// DeleteMany removes folders by ID; missing ids are ignored
	DeleteMany(ctx context.Context, ids []string) error

	// IncrementSize atomically adds delta to the folder's size and returns its parent.
	// Returns domain.ErrNotFound if the folder does not exist.
	IncrementSize(ctx context.Context, id string, delta int64) (parentID *string, err error)

	// SetSize overwrites the stored size (repair path only)
	SetSize(ctx context.Context, id string, size int64) error

	// AddSubFolder / RemoveSubFolder push and pull a child folder id
	AddSubFolder(ctx context.Context, parentID, childID string) error
	RemoveSubFolder(ctx context.Context, parentID, childID string) error

	// AddFile / RemoveFile push and pull a child file id
	AddFile(ctx context.Context, parentID, fileID string) error
	RemoveFile(ctx context.Context, parentID, fileID string) error

	// SetParent moves a folder under parentID (nil = root)
	SetParent(ctx context.Context, id string, parentID *string) error

	// SetOwner overwrites owner on every listed folder
	SetOwner(ctx context.Context, ids []string, ownerID string) error

	// SetTrashed marks every listed folder as trashed by trashedBy, or restores
	// them when trashedBy is nil
	SetTrashed(ctx context.Context, ids []string, trashedBy *string) error

	// AddShares adds emails and capabilities to the share state (set semantics)
	AddShares(ctx context.Context, id string, emails []string, caps []drive.Capability) error

	// RemoveShares pulls emails from the share list
	RemoveShares(ctx context.Context, id string, emails []string) error

	// ListByParents returns every folder whose parent is in parentIDs
	ListByParents(ctx context.Context, parentIDs []string) ([]drive.Folder, error)

	// SiblingNames returns the names of folders directly under parentID.
	// For the root level, siblings are the root folders of ownerID.
	SiblingNames(ctx context.Context, parentID *string, ownerID string) ([]string, error)

	// List runs a filtered listing with sort/skip/limit
	List(ctx context.Context, q *drive.ListQuery) ([]drive.Folder, error)
}
