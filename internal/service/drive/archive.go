package drive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"campusdrive/internal/domain"
	identity "campusdrive/internal/domain/models"
	models "campusdrive/internal/domain/models/drive"
	driveSvc "campusdrive/internal/domain/services/drive"
)

type archiveService struct {
	*core
}

// NewArchiveService creates the zip exporter
func NewArchiveService(deps Deps) driveSvc.ArchiveService {
	return &archiveService{core: newCore(deps)}
}

// ExportZip streams the folder's subtree into w. Entries are laid out as
// "folder/sub/name.type"; trashed descendants of a live folder are left out.
// Files whose content cannot be read are skipped and reported together
// after the archive is closed.
func (s *archiveService) ExportZip(ctx context.Context, actor identity.Actor, folderID string, w io.Writer) (string, error) {
	root, err := s.getFolder(ctx, actor, folderID, models.CapabilityDownload)
	if err != nil {
		return "", err
	}
	tree, err := s.subtree.Enumerate(ctx, root)
	if err != nil {
		return "", err
	}

	dirs := newEntryNames()
	paths := map[string]string{root.ID: root.Name}
	zw := zip.NewWriter(w)

	for _, f := range tree.Folders {
		if f.IsTrashed != root.IsTrashed {
			continue
		}
		if f.ID != root.ID {
			parentPath, ok := paths[*f.ParentID]
			if !ok {
				continue
			}
			paths[f.ID] = dirs.claim(parentPath, f.Name)
		}
		if _, err := zw.Create(paths[f.ID] + "/"); err != nil {
			return "", fmt.Errorf("write folder entry: %w", err)
		}
	}

	var failed []error
	written := 0
	for _, f := range tree.Files {
		dir, ok := paths[*f.FolderID]
		if !ok || f.IsTrashed != root.IsTrashed {
			continue
		}
		if err := s.writeFile(ctx, zw, dirs.claim(dir, f.Name+"."+string(f.Type)), &f); err != nil {
			if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrDependency) {
				return "", err
			}
			s.Logger.Warn("file left out of archive", "file_id", f.ID, "error", err)
			failed = append(failed, err)
			continue
		}
		written++
	}

	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("close archive: %w", err)
	}

	name := root.Name + ".zip"
	s.Logger.Info("folder exported",
		"id", root.ID,
		"folders", len(paths),
		"files", written,
		"skipped", len(failed),
	)
	if len(failed) > 0 {
		return name, &domain.DependencyError{Op: "archive export", ResourceID: root.ID, Err: errors.Join(failed...)}
	}
	return name, nil
}

func (s *archiveService) writeFile(ctx context.Context, zw *zip.Writer, entry string, file *models.File) error {
	rc, err := s.Blobs.Get(ctx, file.BlobKey)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return &domain.DependencyError{Op: "blob get", ResourceID: file.ID, Err: err}
	}
	defer rc.Close()

	out, err := zw.CreateHeader(&zip.FileHeader{
		Name:     entry,
		Method:   zip.Deflate,
		Modified: file.ModifiedAt,
	})
	if err != nil {
		return fmt.Errorf("write file entry: %w", err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("copy %s into archive: %w", file.ID, err)
	}
	return nil
}

// entryNames hands out unique entry names per directory, suffixing
// duplicates the same way copies are named
type entryNames map[string][]string

func newEntryNames() entryNames {
	return make(entryNames)
}

func (e entryNames) claim(dir, name string) string {
	name = nextCopyName(name, e[dir])
	e[dir] = append(e[dir], name)
	return path.Join(dir, name)
}
