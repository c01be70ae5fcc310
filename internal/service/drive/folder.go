package drive

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"campusdrive/internal/capabilities"
	"campusdrive/internal/config"
	"campusdrive/internal/domain"
	identity "campusdrive/internal/domain/models"
	models "campusdrive/internal/domain/models/drive"
	driveSvc "campusdrive/internal/domain/services/drive"
	authsvc "campusdrive/internal/service/auth"
)

type folderService struct {
	*core
}

// NewFolderService creates a new folder service
func NewFolderService(deps Deps) driveSvc.FolderService {
	return &folderService{core: newCore(deps)}
}

// normalizeID treats an empty id as root level
func normalizeID(id *string) *string {
	if id != nil && strings.TrimSpace(*id) == "" {
		return nil
	}
	return id
}

func (s *folderService) CreateFolder(ctx context.Context, actor identity.Actor, req *driveSvc.CreateFolderRequest) (*models.Folder, error) {
	folder, err := s.createFolder(ctx, actor, req, nil)
	if err != nil {
		return nil, err
	}

	s.Logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"parent_id", folder.ParentID,
		"owner_id", folder.OwnerID,
		"actor", actor.AccountID,
	)
	return folder, nil
}

// CreateSubmissionFolder creates the folder a requirement collects files in
func (s *folderService) CreateSubmissionFolder(ctx context.Context, actor identity.Actor, req *driveSvc.CreateFolderRequest, emails []string) (*models.Folder, error) {
	if err := validateEmails(emails); err != nil {
		return nil, err
	}
	folder, err := s.createFolder(ctx, actor, req, func(f *models.Folder) {
		f.IsSubmission = true
		f.SharedTo = dedupe(emails)
		f.Permissions = s.Registry.DefaultPermissions(capabilities.KindSubmission)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("submission folder created",
		"id", folder.ID,
		"name", folder.Name,
		"recipients", len(folder.SharedTo),
		"actor", actor.AccountID,
	)
	return folder, nil
}

func (s *folderService) createFolder(ctx context.Context, actor identity.Actor, req *driveSvc.CreateFolderRequest, configure func(*models.Folder)) (*models.Folder, error) {
	name, err := validateName(req.Name, config.MaxFolderNameLength)
	if err != nil {
		return nil, err
	}
	req.ParentID = normalizeID(req.ParentID)

	parent, owner, err := s.destination(ctx, actor, req.ParentID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	folder := &models.Folder{
		Name:         name,
		AuthorID:     actor.AccountID,
		OwnerID:      owner,
		ParentID:     req.ParentID,
		SubFolderIDs: []string{},
		FileIDs:      []string{},
		SharedTo:     []string{},
		Permissions:  []models.Capability{},
		CreatedAt:    now,
		ModifiedAt:   now,
		LastOpenedAt: now,
	}
	if configure != nil {
		configure(folder)
	}

	err = s.TxManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.Folders.Create(ctx, folder); err != nil {
			return err
		}
		if parent != nil {
			if err := s.Folders.AddSubFolder(ctx, parent.ID, folder.ID); err != nil {
				return fmt.Errorf("link folder to parent: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, folder.ParentID)
	return folder, nil
}

func (s *folderService) GetFolder(ctx context.Context, actor identity.Actor, id string) (*models.Folder, error) {
	folder, err := s.getFolder(ctx, actor, id, models.CapabilityRead)
	if err != nil {
		return nil, err
	}

	if chain, err := s.location(ctx, actor, folder); err != nil {
		s.Logger.Warn("failed to compute path", "folder_id", folder.ID, "error", err)
		folder.Path = folder.Name
	} else {
		names := make([]string, len(chain))
		for i, loc := range chain {
			names[i] = loc.Name
		}
		folder.Path = strings.Join(names, "/")
	}

	folder.LastOpenedAt = time.Now()
	if err := s.Folders.Update(ctx, folder); err != nil {
		s.Logger.Warn("failed to touch last-opened", "folder_id", folder.ID, "error", err)
	}
	return folder, nil
}

func (s *folderService) ListChildren(ctx context.Context, actor identity.Actor, id string) (*driveSvc.FolderContents, error) {
	folder, err := s.getFolder(ctx, actor, id, models.CapabilityRead)
	if err != nil {
		return nil, err
	}
	contents, err := s.children(ctx, folder)
	if err != nil {
		return nil, err
	}
	return &driveSvc.FolderContents{
		Folder:  folder,
		Folders: contents.Folders,
		Files:   contents.Files,
	}, nil
}

func (s *folderService) ListFolders(ctx context.Context, actor identity.Actor, req *driveSvc.ListRequest) ([]models.Folder, error) {
	q, err := s.buildQuery(ctx, actor, req)
	if err != nil {
		return nil, err
	}
	return s.Folders.List(ctx, q)
}

func (s *folderService) UpdateFolder(ctx context.Context, actor identity.Actor, id string, req *driveSvc.UpdateRequest) (*models.Folder, error) {
	folder, err := s.getFolder(ctx, actor, id, models.CapabilityRead)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := s.Guard.Require(actor, folder, models.CapabilityEdit); err != nil {
			return nil, err
		}
		name, err := validateName(*req.Name, config.MaxFolderNameLength)
		if err != nil {
			return nil, err
		}
		folder.Name = name
	}
	if req.Starred != nil {
		folder.IsStarred = *req.Starred
	}
	if req.QuickAccess != nil {
		folder.QuickAccess = *req.QuickAccess
	}
	folder.ModifiedAt = time.Now()

	if err := s.Folders.Update(ctx, folder); err != nil {
		return nil, err
	}
	s.invalidate(ctx, folder.ParentID, &folder.ID)

	s.Logger.Info("folder updated",
		"id", folder.ID,
		"name", folder.Name,
		"starred", folder.IsStarred,
		"quick_access", folder.QuickAccess,
	)
	return folder, nil
}

// validateNoCircularReference rejects moving a folder into itself or one of its descendants
func (s *folderService) validateNoCircularReference(ctx context.Context, folderID string, dest *models.Folder) error {
	current := dest
	for depth := 0; current != nil; depth++ {
		if current.ID == folderID {
			return domain.NewValidation("cannot move a folder into itself or its descendants")
		}
		if current.ParentID == nil {
			return nil
		}
		if depth > config.MaxTreeDepth {
			return fmt.Errorf("%w: ancestor chain of %s too deep", domain.ErrInconsistent, dest.ID)
		}
		parent, err := s.Folders.GetByID(ctx, *current.ParentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			return err
		}
		current = parent
	}
	return nil
}

func (s *folderService) MoveFolder(ctx context.Context, actor identity.Actor, id string, destID *string) (*models.Folder, error) {
	destID = normalizeID(destID)
	folder, err := s.getFolder(ctx, actor, id, models.CapabilityEdit)
	if err != nil {
		return nil, err
	}
	if sameParent(folder.ParentID, destID) {
		return folder, nil
	}

	dest, owner, err := s.destination(ctx, actor, destID)
	if err != nil {
		return nil, err
	}
	if dest != nil {
		if err := s.validateNoCircularReference(ctx, folder.ID, dest); err != nil {
			return nil, err
		}
	}

	tree, err := s.subtree.Enumerate(ctx, folder)
	if err != nil {
		return nil, err
	}

	oldParent := folder.ParentID
	var trail sizeTrail
	err = s.TxManager.ExecTx(ctx, func(ctx context.Context) error {
		if oldParent != nil {
			if err := s.Folders.RemoveSubFolder(ctx, *oldParent, folder.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("unlink from old parent: %w", err)
			}
			if err := trail.apply(ctx, s.sizes, oldParent, -folder.Size); err != nil {
				return err
			}
		}
		if err := s.Folders.SetParent(ctx, folder.ID, destID); err != nil {
			return err
		}
		if owner != folder.OwnerID {
			if err := s.Folders.SetOwner(ctx, tree.FolderIDs(), owner); err != nil {
				return err
			}
			if err := s.Files.SetOwnerByFolders(ctx, tree.FolderIDs(), owner); err != nil {
				return err
			}
		}
		if dest != nil {
			if err := s.Folders.AddSubFolder(ctx, dest.ID, folder.ID); err != nil {
				return fmt.Errorf("link to new parent: %w", err)
			}
			if err := trail.apply(ctx, s.sizes, destID, folder.Size); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, oldParent, destID, &folder.ID)
	s.invalidateIDs(ctx, trail)
	if owner != folder.OwnerID {
		s.invalidateIDs(ctx, tree.FolderIDs())
	}

	s.Logger.Info("folder moved",
		"id", folder.ID,
		"from", oldParent,
		"to", destID,
		"owner_id", owner,
		"size", folder.Size,
	)

	folder.ParentID = destID
	folder.OwnerID = owner
	return folder, nil
}

func (s *folderService) CopyFolder(ctx context.Context, actor identity.Actor, id string, destID *string) (*models.Folder, error) {
	destID = normalizeID(destID)
	src, err := s.getFolder(ctx, actor, id, models.CapabilityEdit)
	if err != nil {
		return nil, err
	}
	dest, owner, err := s.destination(ctx, actor, destID)
	if err != nil {
		return nil, err
	}

	tree, err := s.subtree.Enumerate(ctx, src)
	if err != nil {
		return nil, err
	}
	if dest != nil {
		for _, f := range tree.Folders {
			if f.ID == dest.ID {
				return nil, domain.NewValidation("cannot copy a folder into itself or its descendants")
			}
		}
	}

	siblings, err := s.Folders.SiblingNames(ctx, destID, owner)
	if err != nil {
		return nil, fmt.Errorf("list sibling names: %w", err)
	}
	plan := planFolderCopy(tree, actor, owner, destID, nextCopyName(src.Name, siblings))
	root := &plan.folders[0]

	var trail sizeTrail
	err = s.TxManager.ExecTx(ctx, func(ctx context.Context) error {
		for i := range plan.folders {
			if err := s.Folders.Create(ctx, &plan.folders[i]); err != nil {
				return err
			}
		}
		for i := range plan.files {
			if err := s.Files.Create(ctx, &plan.files[i]); err != nil {
				return err
			}
		}
		if dest != nil {
			if err := s.Folders.AddSubFolder(ctx, dest.ID, root.ID); err != nil {
				return fmt.Errorf("link copy to parent: %w", err)
			}
			if err := trail.apply(ctx, s.sizes, destID, root.Size); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, destID)
	s.invalidateIDs(ctx, trail)

	s.Logger.Info("folder copied",
		"source_id", src.ID,
		"id", root.ID,
		"name", root.Name,
		"folders", len(plan.folders),
		"files", len(plan.files),
		"size", root.Size,
	)

	if err := s.copyBlobs(ctx, plan.blobs); err != nil {
		return root, &domain.DependencyError{Op: "blob copy", ResourceID: root.ID, Err: err}
	}
	return root, nil
}

func (s *folderService) DeleteFolder(ctx context.Context, actor identity.Actor, id string) error {
	folder, err := s.Folders.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Guard.RequireOwner(actor, folder); err != nil {
		return err
	}

	tree, err := s.subtree.Enumerate(ctx, folder)
	if err != nil {
		return err
	}

	var trail sizeTrail
	err = s.TxManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.Files.DeleteMany(ctx, tree.FileIDs()); err != nil {
			return fmt.Errorf("delete files: %w", err)
		}
		if err := s.Folders.DeleteMany(ctx, tree.FolderIDs()); err != nil {
			return fmt.Errorf("delete folders: %w", err)
		}
		if folder.ParentID != nil {
			if err := s.Folders.RemoveSubFolder(ctx, *folder.ParentID, folder.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("unlink from parent: %w", err)
			}
			return trail.apply(ctx, s.sizes, folder.ParentID, -folder.Size)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, f := range tree.Files {
		s.deleteBlob(ctx, &f)
	}
	s.invalidate(ctx, folder.ParentID)
	s.invalidateIDs(ctx, tree.FolderIDs())
	s.invalidateIDs(ctx, trail)

	s.Logger.Info("folder deleted",
		"id", folder.ID,
		"name", folder.Name,
		"folders", len(tree.Folders),
		"files", len(tree.Files),
		"size", folder.Size,
		"actor", actor.AccountID,
	)
	return nil
}

func (s *folderService) TrashFolder(ctx context.Context, actor identity.Actor, id string) (driveSvc.TrashOutcome, error) {
	folder, err := s.Folders.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	switch s.Guard.Classify(actor, folder) {
	case authsvc.Owner:
		if err := s.trash(ctx, folder); err != nil {
			return "", err
		}
		s.Logger.Info("folder trashed", "id", folder.ID, "actor", actor.AccountID)
		return driveSvc.TrashOutcomeTrashed, nil

	case authsvc.ShareMember:
		if err := s.Folders.RemoveShares(ctx, folder.ID, []string{actor.Email}); err != nil {
			return "", err
		}
		s.invalidate(ctx, folder.ParentID, &folder.ID)
		s.Logger.Info("share member left folder", "id", folder.ID, "email", actor.Email)
		return driveSvc.TrashOutcomeRemovedShare, nil
	}
	return "", domain.NewForbidden("only the owner or a share member can trash this folder")
}

func (s *folderService) RestoreFolder(ctx context.Context, actor identity.Actor, id string) error {
	folder, err := s.Folders.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Guard.RequireOwner(actor, folder); err != nil {
		return err
	}
	if err := s.restore(ctx, folder); err != nil {
		return err
	}
	s.Logger.Info("folder restored", "id", folder.ID, "actor", actor.AccountID)
	return nil
}

// trash hides the folder and every descendant that is still visible, tagging
// them with the folder's id. Entities trashed earlier keep their own tag.
func (s *folderService) trash(ctx context.Context, folder *models.Folder) error {
	if folder.IsTrashed {
		return nil
	}
	tree, err := s.subtree.Enumerate(ctx, folder)
	if err != nil {
		return err
	}

	var folderIDs, fileIDs []string
	for _, f := range tree.Folders {
		if f.ID == folder.ID || !f.IsTrashed {
			folderIDs = append(folderIDs, f.ID)
		}
	}
	for _, f := range tree.Files {
		if !f.IsTrashed {
			fileIDs = append(fileIDs, f.ID)
		}
	}
	return s.applyTrash(ctx, folder, folderIDs, fileIDs, &folder.ID)
}

// restore brings back exactly the entities hidden by the trash that hid folder
func (s *folderService) restore(ctx context.Context, folder *models.Folder) error {
	if !folder.IsTrashed {
		return nil
	}
	tag := folder.ID
	if folder.TrashedBy != nil {
		tag = *folder.TrashedBy
	}
	tree, err := s.subtree.Enumerate(ctx, folder)
	if err != nil {
		return err
	}

	hiddenBy := func(by *string) bool { return by != nil && *by == tag }
	folderIDs := []string{folder.ID}
	var fileIDs []string
	for _, f := range tree.Folders {
		if f.ID != folder.ID && f.IsTrashed && hiddenBy(f.TrashedBy) {
			folderIDs = append(folderIDs, f.ID)
		}
	}
	for _, f := range tree.Files {
		if f.IsTrashed && hiddenBy(f.TrashedBy) {
			fileIDs = append(fileIDs, f.ID)
		}
	}
	return s.applyTrash(ctx, folder, folderIDs, fileIDs, nil)
}

func (s *folderService) applyTrash(ctx context.Context, folder *models.Folder, folderIDs, fileIDs []string, trashedBy *string) error {
	err := s.TxManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.Folders.SetTrashed(ctx, folderIDs, trashedBy); err != nil {
			return err
		}
		return s.Files.SetTrashed(ctx, fileIDs, trashedBy)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, folder.ParentID)
	s.invalidateIDs(ctx, folderIDs)
	return nil
}

func (s *folderService) ShareFolder(ctx context.Context, actor identity.Actor, id string, req *driveSvc.ShareRequest) (*models.Folder, error) {
	folder, err := s.getFolder(ctx, actor, id, models.CapabilityShare)
	if err != nil {
		return nil, err
	}
	caps, err := s.shareCapabilities(req, capabilities.KindFolder)
	if err != nil {
		return nil, err
	}
	if err := s.Folders.AddShares(ctx, folder.ID, req.Emails, caps); err != nil {
		return nil, err
	}
	s.invalidate(ctx, folder.ParentID, &folder.ID)

	s.Logger.Info("folder shared", "id", folder.ID, "emails", len(req.Emails), "permissions", caps)
	return s.Folders.GetByID(ctx, folder.ID)
}

func (s *folderService) UnshareFolder(ctx context.Context, actor identity.Actor, id string, emails []string) (*models.Folder, error) {
	folder, err := s.getFolder(ctx, actor, id, models.CapabilityShare)
	if err != nil {
		return nil, err
	}
	if err := validateEmails(emails); err != nil {
		return nil, err
	}
	if err := s.Folders.RemoveShares(ctx, folder.ID, emails); err != nil {
		return nil, err
	}
	s.invalidate(ctx, folder.ParentID, &folder.ID)

	s.Logger.Info("folder unshared", "id", folder.ID, "emails", len(emails))
	return s.Folders.GetByID(ctx, folder.ID)
}

func (s *folderService) Location(ctx context.Context, actor identity.Actor, id string) ([]models.Location, error) {
	folder, err := s.getFolder(ctx, actor, id, models.CapabilityRead)
	if err != nil {
		return nil, err
	}
	return s.location(ctx, actor, folder)
}

// location walks parent links upward and returns the chain root first. The
// walk stops below the first ancestor the actor cannot see.
func (s *folderService) location(ctx context.Context, actor identity.Actor, folder *models.Folder) ([]models.Location, error) {
	chain := []models.Location{{ID: folder.ID, Name: folder.Name}}
	visited := map[string]bool{folder.ID: true}

	parentID := folder.ParentID
	for depth := 0; parentID != nil; depth++ {
		if visited[*parentID] || depth > config.MaxTreeDepth {
			return nil, fmt.Errorf("%w: ancestor walk looped at %s", domain.ErrInconsistent, *parentID)
		}
		visited[*parentID] = true

		parent, err := s.Folders.GetByID(ctx, *parentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				s.Logger.Warn("breadcrumb stopped at missing folder", "folder_id", *parentID)
				break
			}
			return nil, err
		}
		if !s.Guard.CanView(actor, parent) {
			break
		}
		chain = append(chain, models.Location{ID: parent.ID, Name: parent.Name})
		parentID = parent.ParentID
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

func (s *folderService) VerifySize(ctx context.Context, actor identity.Actor, id string, repair bool) (*driveSvc.SizeReport, error) {
	folder, err := s.Folders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Guard.RequireOwner(actor, folder); err != nil {
		return nil, err
	}

	report := &driveSvc.SizeReport{FolderID: folder.ID, Stored: folder.Size}
	if repair {
		size, repaired, err := s.sizes.Repair(ctx, folder.ID)
		if err != nil {
			return nil, err
		}
		report.Recomputed = size
		report.Repaired = repaired > 0
		if repaired > 0 {
			// Ancestors carry the old value too.
			ancestors, err := s.sizes.ApplyDelta(ctx, folder.ParentID, size-folder.Size)
			if err != nil {
				return nil, err
			}
			s.invalidate(ctx, folder.ParentID)
			s.invalidate(ctx, &folder.ID)
			s.invalidateIDs(ctx, ancestors)
		}
		return report, nil
	}

	sizes, err := s.sizes.Recompute(ctx, folder.ID)
	if err != nil {
		return nil, err
	}
	report.Recomputed = sizes[folder.ID]
	return report, nil
}
