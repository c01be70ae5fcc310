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

// FileRepository implements driveRepo.FileRepository over a Store
type FileRepository struct {
	s *Store
}

// NewFileRepository creates a file repository backed by store
func NewFileRepository(store *Store) driveRepo.FileRepository {
	return &FileRepository{s: store}
}

func notFoundFile(id string) error {
	return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
}

func (r *FileRepository) mutate(ctx context.Context, id string, fn func(f *drive.File)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	f, ok := r.s.files[id]
	if !ok {
		return notFoundFile(id)
	}
	r.s.keepFile(ctx, id)
	fn(f)
	return nil
}

func (r *FileRepository) Create(ctx context.Context, file *drive.File) error {
	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	now := time.Now()
	if file.CreatedAt.IsZero() {
		file.CreatedAt = now
	}
	file.ModifiedAt = now
	file.LastOpenedAt = now

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.files[file.ID]; exists {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("file '%s' already exists", file.ID),
			ResourceType: "file",
			ResourceID:   file.ID,
		}
	}
	r.s.keepFile(ctx, file.ID)
	r.s.files[file.ID] = cloneFile(file)
	return nil
}

func (r *FileRepository) GetByID(ctx context.Context, id string) (*drive.File, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	f, ok := r.s.files[id]
	if !ok {
		return nil, notFoundFile(id)
	}
	return cloneFile(f), nil
}

func (r *FileRepository) Update(ctx context.Context, file *drive.File) error {
	if file.ModifiedAt.IsZero() {
		file.ModifiedAt = time.Now()
	}
	return r.mutate(ctx, file.ID, func(f *drive.File) {
		f.Name = file.Name
		f.BlobKey = file.BlobKey
		f.IsStarred = file.IsStarred
		f.LastOpenedAt = file.LastOpenedAt
		f.ModifiedAt = file.ModifiedAt
	})
}

func (r *FileRepository) DeleteMany(ctx context.Context, ids []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, id := range ids {
		r.s.keepFile(ctx, id)
		delete(r.s.files, id)
	}
	return nil
}

func (r *FileRepository) SetParent(ctx context.Context, id string, folderID *string, ownerID string) error {
	return r.mutate(ctx, id, func(f *drive.File) {
		f.FolderID = clonePtr(folderID)
		f.OwnerID = ownerID
		f.ModifiedAt = time.Now()
	})
}

func (r *FileRepository) SetOwnerByFolders(ctx context.Context, folderIDs []string, ownerID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, f := range r.s.files {
		if f.FolderID != nil && contains(folderIDs, *f.FolderID) {
			r.s.keepFile(ctx, f.ID)
			f.OwnerID = ownerID
		}
	}
	return nil
}

func (r *FileRepository) SetTrashed(ctx context.Context, ids []string, trashedBy *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now()
	for _, id := range ids {
		if f, ok := r.s.files[id]; ok {
			r.s.keepFile(ctx, id)
			f.IsTrashed = trashedBy != nil
			f.TrashedBy = clonePtr(trashedBy)
			f.ModifiedAt = now
		}
	}
	return nil
}

func (r *FileRepository) AddShares(ctx context.Context, id string, emails []string, caps []drive.Capability) error {
	return r.mutate(ctx, id, func(f *drive.File) {
		f.SharedTo = appendUnique(f.SharedTo, emails...)
		f.Permissions = appendUniqueCaps(f.Permissions, caps...)
		f.ModifiedAt = time.Now()
	})
}

func (r *FileRepository) RemoveShares(ctx context.Context, id string, emails []string) error {
	return r.mutate(ctx, id, func(f *drive.File) {
		f.SharedTo = without(f.SharedTo, emails...)
		f.ModifiedAt = time.Now()
	})
}

func (r *FileRepository) ListByFolders(ctx context.Context, folderIDs []string) ([]drive.File, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []drive.File{}
	for _, f := range r.s.files {
		if f.FolderID != nil && contains(folderIDs, *f.FolderID) {
			out = append(out, *cloneFile(f))
		}
	}
	return out, nil
}

func (r *FileRepository) SiblingNames(ctx context.Context, folderID *string, ownerID string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	names := []string{}
	for _, f := range r.s.files {
		switch {
		case folderID == nil && f.FolderID == nil && f.OwnerID == ownerID:
			names = append(names, f.Name)
		case folderID != nil && f.FolderID != nil && *f.FolderID == *folderID:
			names = append(names, f.Name)
		}
	}
	return names, nil
}

func (r *FileRepository) List(ctx context.Context, q *drive.ListQuery) ([]drive.File, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	entries := make([]entry, 0, len(r.s.files))
	for _, f := range r.s.files {
		entries = append(entries, entry{
			id:         f.ID,
			name:       f.Name,
			parentID:   f.FolderID,
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
	out := make([]drive.File, len(ids))
	for i, id := range ids {
		out[i] = *cloneFile(r.s.files[id])
	}
	return out, nil
}
