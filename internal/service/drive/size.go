package drive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"campusdrive/internal/config"
	"campusdrive/internal/domain"
	models "campusdrive/internal/domain/models/drive"
	driveRepo "campusdrive/internal/domain/repositories/drive"
)

// SizePropagator keeps cumulative folder sizes in step with the files below them.
type SizePropagator struct {
	folders driveRepo.FolderRepository
	files   driveRepo.FileRepository
	logger  *slog.Logger
}

// NewSizePropagator creates a size propagator
func NewSizePropagator(folders driveRepo.FolderRepository, files driveRepo.FileRepository, logger *slog.Logger) *SizePropagator {
	return &SizePropagator{folders: folders, files: files, logger: logger}
}

// ApplyDelta adds delta to folderID and every ancestor up to the root, one
// atomic increment per level, and returns the ids it incremented, nearest
// first. A vanished ancestor ends the walk quietly; the levels already
// incremented stay incremented.
func (p *SizePropagator) ApplyDelta(ctx context.Context, folderID *string, delta int64) ([]string, error) {
	if folderID == nil || delta == 0 {
		return nil, nil
	}

	var resized []string
	visited := make(map[string]bool)
	current := *folderID
	for depth := 0; ; depth++ {
		if visited[current] || depth > config.MaxTreeDepth {
			return resized, fmt.Errorf("%w: size propagation looped at folder %s", domain.ErrInconsistent, current)
		}
		visited[current] = true

		parentID, err := p.folders.IncrementSize(ctx, current, delta)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				p.logger.Warn("size propagation stopped at missing folder",
					"folder_id", current,
					"delta", delta,
					"depth", depth,
				)
				return resized, nil
			}
			return resized, fmt.Errorf("increment size of folder %s: %w", current, err)
		}
		resized = append(resized, current)
		if parentID == nil {
			return resized, nil
		}
		current = *parentID
	}
}

// sizeTrail collects the folders resized during one operation. A folder's
// size shows up in its parent's cached listing, and every parent of a resized
// folder is itself on the trail, so dropping the listings of the trail is
// enough once the operation commits.
type sizeTrail []string

func (t *sizeTrail) apply(ctx context.Context, p *SizePropagator, folderID *string, delta int64) error {
	ids, err := p.ApplyDelta(ctx, folderID, delta)
	*t = append(*t, ids...)
	return err
}

// Recompute derives the size of every folder in the subtree of folderID from
// file sizes alone, ignoring stored sizes. The result is keyed by folder id.
func (p *SizePropagator) Recompute(ctx context.Context, folderID string) (map[string]int64, error) {
	tree, err := p.enumerate(ctx, folderID)
	if err != nil {
		return nil, err
	}
	return recomputeSizes(tree), nil
}

// Repair overwrites every stored size in the subtree that disagrees with the
// recomputed value. It returns the recomputed size of folderID and the
// number of folders rewritten.
func (p *SizePropagator) Repair(ctx context.Context, folderID string) (int64, int, error) {
	tree, err := p.enumerate(ctx, folderID)
	if err != nil {
		return 0, 0, err
	}
	sizes := recomputeSizes(tree)

	repaired := 0
	for _, f := range tree.Folders {
		if f.Size == sizes[f.ID] {
			continue
		}
		if err := p.folders.SetSize(ctx, f.ID, sizes[f.ID]); err != nil {
			return 0, repaired, fmt.Errorf("repair size of folder %s: %w", f.ID, err)
		}
		p.logger.Info("folder size repaired",
			"folder_id", f.ID,
			"stored", f.Size,
			"recomputed", sizes[f.ID],
		)
		repaired++
	}
	return sizes[folderID], repaired, nil
}

func (p *SizePropagator) enumerate(ctx context.Context, folderID string) (*models.Subtree, error) {
	root, err := p.folders.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}
	return NewSubtreeEnumerator(p.folders, p.files, p.logger).Enumerate(ctx, root)
}

// recomputeSizes sums file sizes bottom-up over an enumerated subtree
func recomputeSizes(tree *models.Subtree) map[string]int64 {
	sizes := make(map[string]int64, len(tree.Folders))
	for _, f := range tree.Folders {
		sizes[f.ID] = 0
	}
	for _, f := range tree.Files {
		if f.FolderID != nil {
			sizes[*f.FolderID] += f.Size
		}
	}
	// Level order: walking backwards visits children before parents.
	for i := len(tree.Folders) - 1; i > 0; i-- {
		f := tree.Folders[i]
		if f.ParentID != nil {
			sizes[*f.ParentID] += sizes[f.ID]
		}
	}
	return sizes
}
