package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"campusdrive/internal/blob"
	"campusdrive/internal/capabilities"
	"campusdrive/internal/config"
	"campusdrive/internal/domain"
	identity "campusdrive/internal/domain/models"
	models "campusdrive/internal/domain/models/drive"
	"campusdrive/internal/domain/models/events"
	driveSvc "campusdrive/internal/domain/services/drive"
	authsvc "campusdrive/internal/service/auth"

	"github.com/google/uuid"
)

type fileService struct {
	*core
}

// NewFileService creates a new file service
func NewFileService(deps Deps) driveSvc.FileService {
	return &fileService{core: newCore(deps)}
}

// viewFile loads a file the actor is at least allowed to see
func (s *fileService) viewFile(ctx context.Context, actor identity.Actor, id string) (*models.File, error) {
	file, err := s.Files.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.Guard.CanView(actor, file) {
		return nil, domain.NewForbidden("you do not have access to this file")
	}
	return file, nil
}

// checkNameFree returns a ConflictError when a sibling file already uses name
func (s *fileService) checkNameFree(ctx context.Context, name string, folderID *string, ownerID string) error {
	siblings, err := s.Files.SiblingNames(ctx, folderID, ownerID)
	if err != nil {
		return fmt.Errorf("list sibling names: %w", err)
	}
	for _, sibling := range siblings {
		if sibling == name {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a file named %q already exists in this location", name),
				ResourceType: "file",
			}
		}
	}
	return nil
}

// submissionEvent publishes typ when folderID is a submission folder and
// the file's uploader is not the folder's owner
func (s *fileService) submissionEvent(ctx context.Context, typ events.Type, folder *models.Folder, file *models.File) {
	if folder == nil || !folder.IsSubmission || file.AuthorID == folder.OwnerID {
		return
	}
	s.publish(ctx, events.Event{
		Type:       typ,
		FolderID:   folder.ID,
		FileID:     file.ID,
		UploaderID: file.AuthorID,
	})
}

// loadParent returns the folder holding a file, or nil at root or when it vanished
func (s *fileService) loadParent(ctx context.Context, folderID *string) *models.Folder {
	if folderID == nil {
		return nil
	}
	folder, err := s.Folders.GetByID(ctx, *folderID)
	if err != nil {
		s.Logger.Warn("parent folder lookup failed", "folder_id", *folderID, "error", err)
		return nil
	}
	return folder
}

func (s *fileService) Upload(ctx context.Context, actor identity.Actor, req *driveSvc.UploadFileRequest) (*models.File, error) {
	name, err := validateName(req.Name, config.MaxFileNameLength)
	if err != nil {
		return nil, err
	}
	if err := s.Registry.ValidateUpload(req.Type, req.Size); err != nil {
		return nil, err
	}
	if req.Content == nil {
		return nil, domain.NewValidation("file content is required")
	}
	req.FolderID = normalizeID(req.FolderID)

	parent, owner, err := s.destination(ctx, actor, req.FolderID)
	if err != nil {
		return nil, err
	}
	if err := s.checkNameFree(ctx, name, req.FolderID, owner); err != nil {
		return nil, err
	}

	now := time.Now()
	file := &models.File{
		ID:           uuid.NewString(),
		Name:         name,
		Type:         req.Type,
		Size:         req.Size,
		FolderID:     req.FolderID,
		AuthorID:     actor.AccountID,
		OwnerID:      owner,
		BlobKey:      blob.Key(name, owner, req.FolderID),
		SharedTo:     []string{},
		Permissions:  []models.Capability{},
		CreatedAt:    now,
		ModifiedAt:   now,
		LastOpenedAt: now,
	}

	if err := s.putBlob(ctx, file, req.Content); err != nil {
		return nil, &domain.DependencyError{Op: "blob put", ResourceID: file.ID, Err: err}
	}

	var trail sizeTrail
	err = s.TxManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.Files.Create(ctx, file); err != nil {
			return err
		}
		if parent != nil {
			if err := s.Folders.AddFile(ctx, parent.ID, file.ID); err != nil {
				return fmt.Errorf("link file to folder: %w", err)
			}
			return trail.apply(ctx, s.sizes, req.FolderID, file.Size)
		}
		return nil
	})
	if err != nil {
		s.deleteBlob(ctx, file)
		return nil, err
	}
	s.invalidate(ctx, req.FolderID)
	s.invalidateIDs(ctx, trail)

	s.Logger.Info("file uploaded",
		"id", file.ID,
		"name", file.Name,
		"type", file.Type,
		"size", file.Size,
		"folder_id", file.FolderID,
		"actor", actor.AccountID,
	)

	s.submissionEvent(ctx, events.FileAddedToSubmissionFolder, parent, file)
	return file, nil
}

// putBlob stores content under the file's key, switching to the id-suffixed
// key when the plain one is taken
func (s *fileService) putBlob(ctx context.Context, file *models.File, content io.Reader) error {
	err := s.Blobs.Put(ctx, file.BlobKey, content)
	if err == nil || !errors.Is(err, domain.ErrConflict) {
		return err
	}
	alt := blob.WithID(file.BlobKey, file.ID)
	if err := s.Blobs.Put(ctx, alt, content); err != nil {
		return err
	}
	file.BlobKey = alt
	return nil
}

func (s *fileService) GetFile(ctx context.Context, actor identity.Actor, id string) (*models.File, error) {
	return s.viewFile(ctx, actor, id)
}

func (s *fileService) Download(ctx context.Context, actor identity.Actor, id string) (*models.File, io.ReadCloser, error) {
	file, err := s.getFile(ctx, actor, id, models.CapabilityDownload)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.Blobs.Get(ctx, file.BlobKey)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, &domain.NotFoundError{Message: fmt.Sprintf("content of file %s is missing", file.ID)}
		}
		return nil, nil, &domain.DependencyError{Op: "blob get", ResourceID: file.ID, Err: err}
	}

	file.LastOpenedAt = time.Now()
	if err := s.Files.Update(ctx, file); err != nil {
		s.Logger.Warn("failed to touch last-opened", "file_id", file.ID, "error", err)
	}
	return file, rc, nil
}

func (s *fileService) ListFiles(ctx context.Context, actor identity.Actor, req *driveSvc.ListRequest) ([]models.File, error) {
	q, err := s.buildQuery(ctx, actor, req)
	if err != nil {
		return nil, err
	}
	return s.Files.List(ctx, q)
}

func (s *fileService) UpdateFile(ctx context.Context, actor identity.Actor, id string, req *driveSvc.UpdateRequest) (*models.File, error) {
	file, err := s.viewFile(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	var renameErr error
	if req.Name != nil {
		if err := s.Guard.Require(actor, file, models.CapabilityEdit); err != nil {
			return nil, err
		}
		name, err := validateName(*req.Name, config.MaxFileNameLength)
		if err != nil {
			return nil, err
		}
		if name != file.Name {
			if err := s.checkNameFree(ctx, name, file.FolderID, file.OwnerID); err != nil {
				return nil, err
			}
			file.Name = name
			renameErr = s.renameBlob(ctx, file)
		}
	}
	if req.Starred != nil {
		file.IsStarred = *req.Starred
	}
	file.ModifiedAt = time.Now()

	if err := s.Files.Update(ctx, file); err != nil {
		return nil, err
	}
	s.invalidate(ctx, file.FolderID)

	s.Logger.Info("file updated",
		"id", file.ID,
		"name", file.Name,
		"starred", file.IsStarred,
	)

	if renameErr != nil {
		return file, &domain.DependencyError{Op: "blob rename", ResourceID: file.ID, Err: renameErr}
	}
	return file, nil
}

// renameBlob moves the object to the key of the file's new name. BlobKey
// only changes when the store accepted the rename.
func (s *fileService) renameBlob(ctx context.Context, file *models.File) error {
	key := blob.Key(file.Name, file.OwnerID, file.FolderID)
	if key == file.BlobKey {
		return nil
	}
	err := s.Blobs.Rename(ctx, file.BlobKey, key)
	if errors.Is(err, domain.ErrConflict) {
		key = blob.WithID(key, file.ID)
		err = s.Blobs.Rename(ctx, file.BlobKey, key)
	}
	if err != nil {
		s.Logger.Warn("blob rename failed",
			"file_id", file.ID,
			"from", file.BlobKey,
			"to", key,
			"error", err,
		)
		return err
	}
	file.BlobKey = key
	return nil
}

func (s *fileService) CopyFile(ctx context.Context, actor identity.Actor, id string, destID *string) (*models.File, error) {
	destID = normalizeID(destID)
	src, err := s.getFile(ctx, actor, id, models.CapabilityEdit)
	if err != nil {
		return nil, err
	}
	dest, owner, err := s.destination(ctx, actor, destID)
	if err != nil {
		return nil, err
	}

	siblings, err := s.Files.SiblingNames(ctx, destID, owner)
	if err != nil {
		return nil, fmt.Errorf("list sibling names: %w", err)
	}
	name := nextCopyName(src.Name, siblings)

	now := time.Now()
	file := &models.File{
		ID:           uuid.NewString(),
		Name:         name,
		Type:         src.Type,
		Size:         src.Size,
		FolderID:     destID,
		AuthorID:     actor.AccountID,
		OwnerID:      owner,
		BlobKey:      blob.Key(name, owner, destID),
		SharedTo:     []string{},
		Permissions:  []models.Capability{},
		CreatedAt:    now,
		ModifiedAt:   now,
		LastOpenedAt: now,
	}

	var trail sizeTrail
	err = s.TxManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.Files.Create(ctx, file); err != nil {
			return err
		}
		if dest != nil {
			if err := s.Folders.AddFile(ctx, dest.ID, file.ID); err != nil {
				return fmt.Errorf("link copy to folder: %w", err)
			}
			return trail.apply(ctx, s.sizes, destID, file.Size)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, destID)
	s.invalidateIDs(ctx, trail)

	s.Logger.Info("file copied",
		"source_id", src.ID,
		"id", file.ID,
		"name", file.Name,
		"folder_id", destID,
	)

	bc := blobCopy{fileID: file.ID, src: src.BlobKey, dst: file.BlobKey}
	if err := s.copyBlob(ctx, bc); err != nil {
		s.Logger.Warn("blob copy failed", "file_id", file.ID, "src", bc.src, "error", err)
		return file, &domain.DependencyError{Op: "blob copy", ResourceID: file.ID, Err: err}
	}
	if fresh, err := s.Files.GetByID(ctx, file.ID); err == nil {
		file = fresh
	}
	return file, nil
}

func (s *fileService) MoveFile(ctx context.Context, actor identity.Actor, id string, destID *string) (*models.File, error) {
	destID = normalizeID(destID)
	file, err := s.getFile(ctx, actor, id, models.CapabilityEdit)
	if err != nil {
		return nil, err
	}
	if sameParent(file.FolderID, destID) {
		return file, nil
	}
	dest, owner, err := s.destination(ctx, actor, destID)
	if err != nil {
		return nil, err
	}
	if err := s.checkNameFree(ctx, file.Name, destID, owner); err != nil {
		return nil, err
	}

	oldParentID := file.FolderID
	oldParent := s.loadParent(ctx, oldParentID)

	var trail sizeTrail
	err = s.TxManager.ExecTx(ctx, func(ctx context.Context) error {
		if oldParentID != nil {
			if err := s.Folders.RemoveFile(ctx, *oldParentID, file.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("unlink from old folder: %w", err)
			}
			if err := trail.apply(ctx, s.sizes, oldParentID, -file.Size); err != nil {
				return err
			}
		}
		if err := s.Files.SetParent(ctx, file.ID, destID, owner); err != nil {
			return err
		}
		if dest != nil {
			if err := s.Folders.AddFile(ctx, dest.ID, file.ID); err != nil {
				return fmt.Errorf("link to new folder: %w", err)
			}
			return trail.apply(ctx, s.sizes, destID, file.Size)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, oldParentID, destID)
	s.invalidateIDs(ctx, trail)

	s.Logger.Info("file moved",
		"id", file.ID,
		"from", oldParentID,
		"to", destID,
		"owner_id", owner,
	)

	file.FolderID = destID
	file.OwnerID = owner
	s.submissionEvent(ctx, events.FileRemovedFromSubmissionFolder, oldParent, file)
	s.submissionEvent(ctx, events.FileAddedToSubmissionFolder, dest, file)
	return file, nil
}

func (s *fileService) DeleteFile(ctx context.Context, actor identity.Actor, id string) error {
	file, err := s.Files.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Guard.RequireOwner(actor, file); err != nil {
		return err
	}
	parent := s.loadParent(ctx, file.FolderID)

	var trail sizeTrail
	err = s.TxManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.Files.DeleteMany(ctx, []string{file.ID}); err != nil {
			return err
		}
		if file.FolderID != nil {
			if err := s.Folders.RemoveFile(ctx, *file.FolderID, file.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("unlink from folder: %w", err)
			}
			return trail.apply(ctx, s.sizes, file.FolderID, -file.Size)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.deleteBlob(ctx, file)
	s.invalidate(ctx, file.FolderID)
	s.invalidateIDs(ctx, trail)

	s.Logger.Info("file deleted",
		"id", file.ID,
		"name", file.Name,
		"size", file.Size,
		"actor", actor.AccountID,
	)

	s.submissionEvent(ctx, events.FileRemovedFromSubmissionFolder, parent, file)
	return nil
}

func (s *fileService) TrashFile(ctx context.Context, actor identity.Actor, id string) (driveSvc.TrashOutcome, error) {
	file, err := s.Files.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	switch s.Guard.Classify(actor, file) {
	case authsvc.Owner:
		if err := s.Files.SetTrashed(ctx, []string{file.ID}, &file.ID); err != nil {
			return "", err
		}
		s.invalidate(ctx, file.FolderID)
		s.Logger.Info("file trashed", "id", file.ID, "actor", actor.AccountID)
		return driveSvc.TrashOutcomeTrashed, nil

	case authsvc.ShareMember:
		if err := s.Files.RemoveShares(ctx, file.ID, []string{actor.Email}); err != nil {
			return "", err
		}
		s.invalidate(ctx, file.FolderID)
		s.Logger.Info("share member left file", "id", file.ID, "email", actor.Email)
		return driveSvc.TrashOutcomeRemovedShare, nil
	}
	return "", domain.NewForbidden("only the owner or a share member can trash this file")
}

func (s *fileService) RestoreFile(ctx context.Context, actor identity.Actor, id string) error {
	file, err := s.Files.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Guard.RequireOwner(actor, file); err != nil {
		return err
	}
	if err := s.Files.SetTrashed(ctx, []string{file.ID}, nil); err != nil {
		return err
	}
	s.invalidate(ctx, file.FolderID)
	s.Logger.Info("file restored", "id", file.ID, "actor", actor.AccountID)
	return nil
}

func (s *fileService) ShareFile(ctx context.Context, actor identity.Actor, id string, req *driveSvc.ShareRequest) (*models.File, error) {
	file, err := s.getFile(ctx, actor, id, models.CapabilityShare)
	if err != nil {
		return nil, err
	}
	caps, err := s.shareCapabilities(req, capabilities.KindFile)
	if err != nil {
		return nil, err
	}
	if err := s.Files.AddShares(ctx, file.ID, req.Emails, caps); err != nil {
		return nil, err
	}
	s.invalidate(ctx, file.FolderID)

	s.Logger.Info("file shared", "id", file.ID, "emails", len(req.Emails), "permissions", caps)
	return s.Files.GetByID(ctx, file.ID)
}

func (s *fileService) UnshareFile(ctx context.Context, actor identity.Actor, id string, emails []string) (*models.File, error) {
	file, err := s.getFile(ctx, actor, id, models.CapabilityShare)
	if err != nil {
		return nil, err
	}
	if err := validateEmails(emails); err != nil {
		return nil, err
	}
	if err := s.Files.RemoveShares(ctx, file.ID, emails); err != nil {
		return nil, err
	}
	s.invalidate(ctx, file.FolderID)

	s.Logger.Info("file unshared", "id", file.ID, "emails", len(emails))
	return s.Files.GetByID(ctx, file.ID)
}
