package memory

import (
	"context"
	"fmt"
	"time"

	"campusdrive/internal/domain"
	"campusdrive/internal/domain/models/drive"
	driveRepo "campusdrive/internal/domain/repositories/drive"

	"github.com/google/uuid"
)

// FolderRepository implements driveRepo.FolderRepository over a Store
type FolderRepository struct {
	s *Store
}

// NewFolderRepository creates a folder repository backed by store
func NewFolderRepository(store *Store) driveRepo.FolderRepository {
	return &FolderRepository{s: store}
}

func notFoundFolder(id string) error {
	return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
}

// mutate runs fn on the stored folder under the lock
func (r *FolderRepository) mutate(ctx context.Context, id string, fn func(f *drive.Folder)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	f, ok := r.s.folders[id]
	if !ok {
		return notFoundFolder(id)
	}
	r.s.keepFolder(ctx, id)
	fn(f)
	return nil
}

func (r *FolderRepository) Create(ctx context.Context, folder *drive.Folder) error {
	if folder.ID == "" {
		folder.ID = uuid.NewString()
	}
	now := time.Now()
	if folder.CreatedAt.IsZero() {
		folder.CreatedAt = now
	}
	folder.ModifiedAt = now
	folder.LastOpenedAt = now

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.folders[folder.ID]; exists {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("folder '%s' already exists", folder.ID),
			ResourceType: "folder",
			ResourceID:   folder.ID,
		}
	}
	r.s.keepFolder(ctx, folder.ID)
	r.s.folders[folder.ID] = cloneFolder(folder)
	return nil
}

func (r *FolderRepository) GetByID(ctx context.Context, id string) (*drive.Folder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	f, ok := r.s.folders[id]
	if !ok {
		return nil, notFoundFolder(id)
	}
	return cloneFolder(f), nil
}

func (r *FolderRepository) Update(ctx context.Context, folder *drive.Folder) error {
	if folder.ModifiedAt.IsZero() {
		folder.ModifiedAt = time.Now()
	}
	return r.mutate(ctx, folder.ID, func(f *drive.Folder) {
		f.Name = folder.Name
		f.IsStarred = folder.IsStarred
		f.QuickAccess = folder.QuickAccess
		f.LastOpenedAt = folder.LastOpenedAt
		f.ModifiedAt = folder.ModifiedAt
	})
}

func (r *FolderRepository) DeleteMany(ctx context.Context, ids []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, id := range ids {
		r.s.keepFolder(ctx, id)
		delete(r.s.folders, id)
	}
	return nil
}

func (r *FolderRepository) IncrementSize(ctx context.Context, id string, delta int64) (*string, error) {
	var parentID *string
	err := r.mutate(ctx, id, func(f *drive.Folder) {
		f.Size += delta
		parentID = clonePtr(f.ParentID)
	})
	return parentID, err
}

func (r *FolderRepository) SetSize(ctx context.Context, id string, size int64) error {
	return r.mutate(ctx, id, func(f *drive.Folder) { f.Size = size })
}

func (r *FolderRepository) AddSubFolder(ctx context.Context, parentID, childID string) error {
	return r.mutate(ctx, parentID, func(f *drive.Folder) {
		f.SubFolderIDs = appendUnique(f.SubFolderIDs, childID)
		f.ModifiedAt = time.Now()
	})
}

func (r *FolderRepository) RemoveSubFolder(ctx context.Context, parentID, childID string) error {
	return r.mutate(ctx, parentID, func(f *drive.Folder) {
		f.SubFolderIDs = without(f.SubFolderIDs, childID)
		f.ModifiedAt = time.Now()
	})
}

func (r *FolderRepository) AddFile(ctx context.Context, parentID, fileID string) error {
	return r.mutate(ctx, parentID, func(f *drive.Folder) {
		f.FileIDs = appendUnique(f.FileIDs, fileID)
		f.ModifiedAt = time.Now()
	})
}

func (r *FolderRepository) RemoveFile(ctx context.Context, parentID, fileID string) error {
	return r.mutate(ctx, parentID, func(f *drive.Folder) {
		f.FileIDs = without(f.FileIDs, fileID)
		f.ModifiedAt = time.Now()
	})
}

func (r *FolderRepository) SetParent(ctx context.Context, id string, parentID *string) error {
	return r.mutate(ctx, id, func(f *drive.Folder) {
		f.ParentID = clonePtr(parentID)
		f.ModifiedAt = time.Now()
	})
}

func (r *FolderRepository) SetOwner(ctx context.Context, ids []string, ownerID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, id := range ids {
		if f, ok := r.s.folders[id]; ok {
			r.s.keepFolder(ctx, id)
			f.OwnerID = ownerID
		}
	}
	return nil
}

func (r *FolderRepository) SetTrashed(ctx context.Context, ids []string, trashedBy *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now()
	for _, id := range ids {
		if f, ok := r.s.folders[id]; ok {
			r.s.keepFolder(ctx, id)
			f.IsTrashed = trashedBy != nil
			f.TrashedBy = clonePtr(trashedBy)
			f.ModifiedAt = now
		}
	}
	return nil
}

func (r *FolderRepository) AddShares(ctx context.Context, id string, emails []string, caps []drive.Capability) error {
	return r.mutate(ctx, id, func(f *drive.Folder) {
		f.SharedTo = appendUnique(f.SharedTo, emails...)
		f.Permissions = appendUniqueCaps(f.Permissions, caps...)
		f.ModifiedAt = time.Now()
	})
}

func (r *FolderRepository) RemoveShares(ctx context.Context, id string, emails []string) error {
	return r.mutate(ctx, id, func(f *drive.Folder) {
		f.SharedTo = without(f.SharedTo, emails...)
		f.ModifiedAt = time.Now()
	})
}

func (r *FolderRepository) ListByParents(ctx context.Context, parentIDs []string) ([]drive.Folder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []drive.Folder{}
	for _, f := range r.s.folders {
		if f.ParentID != nil && contains(parentIDs, *f.ParentID) {
			out = append(out, *cloneFolder(f))
		}
	}
	return out, nil
}

func (r *FolderRepository) SiblingNames(ctx context.Context, parentID *string, ownerID string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	names := []string{}
	for _, f := range r.s.folders {
		switch {
		case parentID == nil && f.ParentID == nil && f.OwnerID == ownerID:
			names = append(names, f.Name)
		case parentID != nil && f.ParentID != nil && *f.ParentID == *parentID:
			names = append(names, f.Name)
		}
	}
	return names, nil
}

func (r *FolderRepository) List(ctx context.Context, q *drive.ListQuery) ([]drive.Folder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	entries := make([]entry, 0, len(r.s.folders))
	for _, f := range r.s.folders {
		entries = append(entries, entry{
			id:         f.ID,
			name:       f.Name,
			parentID:   f.ParentID,
			ownerID:    f.OwnerID,
			sharedTo:   f.SharedTo,
			starred:    f.IsStarred,
			trashed:    f.IsTrashed,
			size:       f.Size,
			createdAt:  f.CreatedAt,
			modifiedAt: f.ModifiedAt,
		})
	}

	ids := page(entries, q)
	out := make([]drive.Folder, len(ids))
	for i, id := range ids {
		out[i] = *cloneFolder(r.s.folders[id])
	}
	return out, nil
}
