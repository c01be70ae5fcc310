// Package drive implements the folder/file mutation service, size
// propagation and subtree enumeration on top of the tree store.
package drive

import (
	"context"
	"log/slog"
	"time"

	"campusdrive/internal/capabilities"
	"campusdrive/internal/domain"
	identity "campusdrive/internal/domain/models"
	models "campusdrive/internal/domain/models/drive"
	"campusdrive/internal/domain/models/events"
	"campusdrive/internal/domain/repositories"
	driveRepo "campusdrive/internal/domain/repositories/drive"
	"campusdrive/internal/domain/services"
	authsvc "campusdrive/internal/service/auth"
)

// Deps bundles the collaborators shared by the folder, file and archive services
type Deps struct {
	Folders   driveRepo.FolderRepository
	Files     driveRepo.FileRepository
	TxManager repositories.TransactionManager
	Guard     *authsvc.Guard
	Blobs     services.BlobStore
	Cache     services.Cache
	CacheTTL  time.Duration
	Events    events.Publisher
	Registry  *capabilities.Registry
	Logger    *slog.Logger
}

// core is embedded by every service in this package
type core struct {
	Deps
	sizes   *SizePropagator
	subtree *SubtreeEnumerator
}

func newCore(d Deps) *core {
	if d.Guard == nil {
		d.Guard = authsvc.NewGuard()
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.CacheTTL <= 0 {
		d.CacheTTL = 5 * time.Minute
	}
	return &core{
		Deps:    d,
		sizes:   NewSizePropagator(d.Folders, d.Files, d.Logger),
		subtree: NewSubtreeEnumerator(d.Folders, d.Files, d.Logger),
	}
}

// getFolder loads a folder and checks that the actor may at least see it
func (c *core) getFolder(ctx context.Context, actor identity.Actor, id string, capability models.Capability) (*models.Folder, error) {
	folder, err := c.Folders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.Guard.Require(actor, folder, capability); err != nil {
		return nil, err
	}
	return folder, nil
}

func (c *core) getFile(ctx context.Context, actor identity.Actor, id string, capability models.Capability) (*models.File, error) {
	file, err := c.Files.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.Guard.Require(actor, file, capability); err != nil {
		return nil, err
	}
	return file, nil
}

// destination resolves a move/copy/create target. A nil id means the
// actor's root, owned by the actor.
func (c *core) destination(ctx context.Context, actor identity.Actor, destID *string) (*models.Folder, string, error) {
	if destID == nil {
		return nil, actor.AccountID, nil
	}
	dest, err := c.Folders.GetByID(ctx, *destID)
	if err != nil {
		return nil, "", err
	}
	if err := c.Guard.Require(actor, dest, models.CapabilityWrite); err != nil {
		return nil, "", err
	}
	if dest.IsTrashed {
		return nil, "", domain.NewValidation("destination folder is in the trash")
	}
	return dest, inheritOwner(dest, actor), nil
}

// inheritOwner returns the parent's owner, or the actor at root level
func inheritOwner(parent *models.Folder, actor identity.Actor) string {
	if parent != nil && parent.OwnerID != "" {
		return parent.OwnerID
	}
	return actor.AccountID
}

func (c *core) publish(ctx context.Context, ev events.Event) {
	if c.Events == nil {
		return
	}
	if err := c.Events.Publish(ctx, ev); err != nil {
		c.Logger.Warn("event delivery failed",
			"type", ev.Type,
			"folder_id", ev.FolderID,
			"file_id", ev.FileID,
			"error", err,
		)
	}
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
