package drive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campusdrive/internal/blob"
	"campusdrive/internal/domain"
	identity "campusdrive/internal/domain/models"
	models "campusdrive/internal/domain/models/drive"

	"github.com/google/uuid"
)

// blobCopy is one scheduled object copy for a copied file
type blobCopy struct {
	fileID string
	src    string
	dst    string
}

// copyPlan holds the new documents of a folder copy, root first
type copyPlan struct {
	folders []models.Folder
	files   []models.File
	blobs   []blobCopy
}

// planFolderCopy clones an enumerated subtree with fresh ids. Star, trash,
// quick-access, submission and share state are reset; sizes are recomputed
// from the copied files.
func planFolderCopy(tree *models.Subtree, actor identity.Actor, ownerID string, destID *string, rootName string) *copyPlan {
	sizes := recomputeSizes(tree)

	folderIDs := make(map[string]string, len(tree.Folders))
	for _, f := range tree.Folders {
		folderIDs[f.ID] = uuid.NewString()
	}
	fileIDs := make(map[string]string, len(tree.Files))
	for _, f := range tree.Files {
		fileIDs[f.ID] = uuid.NewString()
	}

	now := time.Now()
	plan := &copyPlan{
		folders: make([]models.Folder, 0, len(tree.Folders)),
		files:   make([]models.File, 0, len(tree.Files)),
	}

	for i, f := range tree.Folders {
		cp := models.Folder{
			ID:           folderIDs[f.ID],
			Name:         f.Name,
			AuthorID:     actor.AccountID,
			OwnerID:      ownerID,
			SubFolderIDs: remap(f.SubFolderIDs, folderIDs),
			FileIDs:      remap(f.FileIDs, fileIDs),
			Size:         sizes[f.ID],
			SharedTo:     []string{},
			Permissions:  []models.Capability{},
			CreatedAt:    now,
			ModifiedAt:   now,
			LastOpenedAt: now,
		}
		if i == 0 {
			cp.Name = rootName
			cp.ParentID = destID
		} else {
			parentID := folderIDs[*f.ParentID]
			cp.ParentID = &parentID
		}
		plan.folders = append(plan.folders, cp)
	}

	for _, f := range tree.Files {
		folderID := folderIDs[*f.FolderID]
		cp := models.File{
			ID:           fileIDs[f.ID],
			Name:         f.Name,
			Type:         f.Type,
			Size:         f.Size,
			FolderID:     &folderID,
			AuthorID:     actor.AccountID,
			OwnerID:      ownerID,
			BlobKey:      blob.Key(f.Name, ownerID, &folderID),
			SharedTo:     []string{},
			Permissions:  []models.Capability{},
			CreatedAt:    now,
			ModifiedAt:   now,
			LastOpenedAt: now,
		}
		plan.files = append(plan.files, cp)
		plan.blobs = append(plan.blobs, blobCopy{fileID: cp.ID, src: f.BlobKey, dst: cp.BlobKey})
	}
	return plan
}

// remap translates child ids, dropping references to documents outside the subtree
func remap(ids []string, mapping map[string]string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if newID, ok := mapping[id]; ok {
			out = append(out, newID)
		}
	}
	return out
}

// copyBlobs runs every scheduled copy and reports the ones that failed
func (c *core) copyBlobs(ctx context.Context, copies []blobCopy) error {
	var errs []error
	for _, bc := range copies {
		if err := c.copyBlob(ctx, bc); err != nil {
			c.Logger.Warn("blob copy failed",
				"file_id", bc.fileID,
				"src", bc.src,
				"dst", bc.dst,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("file %s: %w", bc.fileID, err))
		}
	}
	return errors.Join(errs...)
}

// copyBlob copies one object. A taken destination key is retried once with
// the file id appended, and the file is re-keyed to match.
func (c *core) copyBlob(ctx context.Context, bc blobCopy) error {
	err := c.Blobs.Copy(ctx, bc.src, bc.dst)
	if err == nil || !errors.Is(err, domain.ErrConflict) {
		return err
	}

	alt := blob.WithID(bc.dst, bc.fileID)
	if err := c.Blobs.Copy(ctx, bc.src, alt); err != nil {
		return err
	}
	return c.rekey(ctx, bc.fileID, alt)
}

func (c *core) rekey(ctx context.Context, fileID, key string) error {
	file, err := c.Files.GetByID(ctx, fileID)
	if err != nil {
		return err
	}
	file.BlobKey = key
	return c.Files.Update(ctx, file)
}

// deleteBlob removes a file's object. Failures are logged, never returned.
func (c *core) deleteBlob(ctx context.Context, file *models.File) {
	if file.BlobKey == "" {
		return
	}
	if err := c.Blobs.Delete(ctx, file.BlobKey); err != nil && !errors.Is(err, domain.ErrNotFound) {
		c.Logger.Warn("blob delete failed",
			"file_id", file.ID,
			"key", file.BlobKey,
			"error", err,
		)
	}
}
