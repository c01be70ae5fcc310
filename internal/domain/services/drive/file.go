package drive

import (
	"context"
	"io"

	"campusdrive/internal/domain/models"
	"campusdrive/internal/domain/models/drive"
)

// FileService handles file business logic
type FileService interface {
	// Upload stores the content and creates the file metadata
	Upload(ctx context.Context, actor models.Actor, req *UploadFileRequest) (*drive.File, error)

	// GetFile retrieves file metadata
	GetFile(ctx context.Context, actor models.Actor, id string) (*drive.File, error)

	// Download opens the file content
	Download(ctx context.Context, actor models.Actor, id string) (*drive.File, io.ReadCloser, error)

	// ListFiles lists files of a folder or of one of the actor's views
	ListFiles(ctx context.Context, actor models.Actor, req *ListRequest) ([]drive.File, error)

	// UpdateFile renames or stars a file
	UpdateFile(ctx context.Context, actor models.Actor, id string, req *UpdateRequest) (*drive.File, error)

	CopyFile(ctx context.Context, actor models.Actor, id string, destID *string) (*drive.File, error)
	MoveFile(ctx context.Context, actor models.Actor, id string, destID *string) (*drive.File, error)
	DeleteFile(ctx context.Context, actor models.Actor, id string) error
	TrashFile(ctx context.Context, actor models.Actor, id string) (TrashOutcome, error)
	RestoreFile(ctx context.Context, actor models.Actor, id string) error
	ShareFile(ctx context.Context, actor models.Actor, id string, req *ShareRequest) (*drive.File, error)
	UnshareFile(ctx context.Context, actor models.Actor, id string, emails []string) (*drive.File, error)
}

// UploadFileRequest carries an upload. Size is authoritative.
type UploadFileRequest struct {
	Name     string         `json:"name"`
	Type     drive.FileType `json:"type"`
	Size     int64          `json:"size"`
	FolderID *string        `json:"folder_id,omitempty"`
	Content  io.Reader      `json:"-"`
}

// ArchiveService exports folders
type ArchiveService interface {
	// ExportZip writes the folder subtree as a zip archive and returns the archive name
	ExportZip(ctx context.Context, actor models.Actor, folderID string, w io.Writer) (string, error)
}
