package drive

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"campusdrive/internal/domain"
	models "campusdrive/internal/domain/models/drive"
	driveRepo "campusdrive/internal/domain/repositories/drive"
)

// SubtreeEnumerator collects every folder and file below a folder
type SubtreeEnumerator struct {
	folders driveRepo.FolderRepository
	files   driveRepo.FileRepository
	logger  *slog.Logger
}

// NewSubtreeEnumerator creates a subtree enumerator
func NewSubtreeEnumerator(folders driveRepo.FolderRepository, files driveRepo.FileRepository, logger *slog.Logger) *SubtreeEnumerator {
	return &SubtreeEnumerator{folders: folders, files: files, logger: logger}
}

// Enumerate expands the frontier one level at a time until no new folder
// turns up, then loads the files of every visited folder. Folders come back
// root first in level order, each level sorted by id, so the result is
// deterministic for a fixed tree.
func (e *SubtreeEnumerator) Enumerate(ctx context.Context, root *models.Folder) (*models.Subtree, error) {
	tree := &models.Subtree{Folders: []models.Folder{*root}}
	seen := map[string]bool{root.ID: true}
	frontier := []string{root.ID}

	for level := 1; len(frontier) > 0; level++ {
		children, err := e.folders.ListByParents(ctx, frontier)
		if err != nil {
			return nil, fmt.Errorf("list children of %d folders: %w", len(frontier), err)
		}
		sort.Slice(children, func(i, j int) bool { return children[i].ID < children[j].ID })

		next := make([]string, 0, len(children))
		for _, child := range children {
			if seen[child.ID] {
				return nil, fmt.Errorf("%w: folder %s reached twice below %s", domain.ErrInconsistent, child.ID, root.ID)
			}
			seen[child.ID] = true
			tree.Folders = append(tree.Folders, child)
			next = append(next, child.ID)
		}
		e.logger.Debug("subtree level expanded", "root_id", root.ID, "level", level, "folders", len(next))
		frontier = next
	}

	files, err := e.files.ListByFolders(ctx, tree.FolderIDs())
	if err != nil {
		return nil, fmt.Errorf("list files of subtree %s: %w", root.ID, err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].ID < files[j].ID })
	tree.Files = files

	return tree, nil
}
