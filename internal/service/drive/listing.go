package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"campusdrive/internal/domain"
	identity "campusdrive/internal/domain/models"
	models "campusdrive/internal/domain/models/drive"
	driveSvc "campusdrive/internal/domain/services/drive"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const listCachePrefix = "drive:list:"

// cachedContents is what the cache stores for one folder's children
type cachedContents struct {
	Folders []models.Folder `json:"folders"`
	Files   []models.File   `json:"files"`
}

func childrenKey(folderID string) string {
	return listCachePrefix + folderID + ":children"
}

// invalidate drops cached listings of the given folders. Failures are logged only.
func (c *core) invalidate(ctx context.Context, folderIDs ...*string) {
	for _, id := range folderIDs {
		if id == nil || c.Cache == nil {
			continue
		}
		if err := c.Cache.DeleteByPrefix(ctx, listCachePrefix+*id+":"); err != nil {
			c.Logger.Warn("cache invalidation failed", "folder_id", *id, "error", err)
		}
	}
}

func (c *core) invalidateIDs(ctx context.Context, ids []string) {
	for i := range ids {
		c.invalidate(ctx, &ids[i])
	}
}

// children returns the direct child folders and files of folder, sorted by
// name. Children are shown when their trashed flag matches the folder's, so
// a trashed folder can still be browsed from the trash view.
func (c *core) children(ctx context.Context, folder *models.Folder) (*cachedContents, error) {
	key := childrenKey(folder.ID)
	if c.Cache != nil {
		data, ok, err := c.Cache.Get(ctx, key)
		switch {
		case err != nil:
			c.Logger.Warn("cache read failed", "key", key, "error", err)
		case ok:
			var cached cachedContents
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
			c.Logger.Warn("cache entry unreadable", "key", key)
		}
	}

	folders, err := c.Folders.ListByParents(ctx, []string{folder.ID})
	if err != nil {
		return nil, fmt.Errorf("list child folders: %w", err)
	}
	files, err := c.Files.ListByFolders(ctx, []string{folder.ID})
	if err != nil {
		return nil, fmt.Errorf("list child files: %w", err)
	}

	out := &cachedContents{Folders: []models.Folder{}, Files: []models.File{}}
	for _, f := range folders {
		if f.IsTrashed == folder.IsTrashed {
			out.Folders = append(out.Folders, f)
		}
	}
	for _, f := range files {
		if f.IsTrashed == folder.IsTrashed {
			out.Files = append(out.Files, f)
		}
	}
	sort.Slice(out.Folders, func(i, j int) bool { return out.Folders[i].Name < out.Folders[j].Name })
	sort.Slice(out.Files, func(i, j int) bool { return out.Files[i].Name < out.Files[j].Name })

	if c.Cache != nil {
		if data, err := json.Marshal(out); err == nil {
			if err := c.Cache.Set(ctx, key, data, c.CacheTTL); err != nil {
				c.Logger.Warn("cache write failed", "key", key, "error", err)
			}
		}
	}
	return out, nil
}

// buildQuery turns a listing request into a store query scoped to the actor
func (c *core) buildQuery(ctx context.Context, actor identity.Actor, req *driveSvc.ListRequest) (*models.ListQuery, error) {
	if req == nil {
		req = &driveSvc.ListRequest{}
	}
	if req.View == "" {
		req.View = driveSvc.ViewMine
	}
	err := validation.ValidateStruct(req,
		validation.Field(&req.View, validation.In(driveSvc.ViewMine, driveSvc.ViewStarred, driveSvc.ViewTrash, driveSvc.ViewShared)),
		validation.Field(&req.Sort, validation.In(models.SortByName, models.SortByCreatedAt, models.SortByModifiedAt, models.SortBySize)),
		validation.Field(&req.Skip, validation.Min(0)),
		validation.Field(&req.Limit, validation.Min(0), validation.Max(models.MaxListLimit)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	yes, no := true, false
	q := &models.ListQuery{Sort: req.Sort, Desc: req.Desc, Skip: req.Skip, Limit: req.Limit}
	switch req.View {
	case driveSvc.ViewMine:
		if req.FolderID != nil {
			if _, err := c.getFolder(ctx, actor, *req.FolderID, models.CapabilityRead); err != nil {
				return nil, err
			}
			q.ParentID = req.FolderID
		} else {
			q.RootOf = actor.AccountID
		}
		q.Trashed = &no
	case driveSvc.ViewStarred:
		q.OwnedBy = actor.AccountID
		q.Starred = &yes
		q.Trashed = &no
	case driveSvc.ViewTrash:
		q.OwnedBy = actor.AccountID
		q.Trashed = &yes
	case driveSvc.ViewShared:
		if actor.Email == "" {
			return nil, domain.NewValidation("shared view needs an email identity")
		}
		q.SharedWith = actor.Email
		q.Trashed = &no
	}
	q.ApplyDefaults()
	return q, nil
}
