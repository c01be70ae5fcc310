package drive

import (
	"time"
)

// FileType is the closed extension enum accepted for uploads.
type FileType string

const (
	FileTypeDoc  FileType = "doc"
	FileTypeDocx FileType = "docx"
	FileTypeZip  FileType = "zip"
	FileTypeExe  FileType = "exe"
	FileTypeJpg  FileType = "jpg"
	FileTypePng  FileType = "png"
	FileTypePpt  FileType = "ppt"
	FileTypePdf  FileType = "pdf"
	FileTypeSvg  FileType = "svg"
	FileTypeTxt  FileType = "txt"
	FileTypeXlsx FileType = "xlsx"
	FileTypeMp3  FileType = "mp3"
	FileTypeMp4  FileType = "mp4"
)

type File struct {
	ID           string       `json:"id" db:"id"`
	Name         string       `json:"name" db:"name"`
	Type         FileType     `json:"type" db:"type"`
	Size         int64        `json:"size" db:"size"`           // author-supplied, immutable
	FolderID     *string      `json:"folder_id" db:"folder_id"` // NULL = root level
	AuthorID     string       `json:"author_id" db:"author_id"`
	OwnerID      string       `json:"owner_id" db:"owner_id"` // mirrors the parent folder's owner
	BlobKey      string       `json:"-" db:"blob_key"`
	SharedTo     []string     `json:"shared_to" db:"shared_to"`
	Permissions  []Capability `json:"permissions" db:"permissions"`
	IsStarred    bool         `json:"is_starred" db:"is_starred"`
	IsTrashed    bool         `json:"is_trashed" db:"is_trashed"`
	TrashedBy    *string      `json:"-" db:"trashed_by"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	ModifiedAt   time.Time    `json:"modified_at" db:"modified_at"`
	LastOpenedAt time.Time    `json:"last_opened_at" db:"last_opened_at"`
}

// ACL implements Shareable.
func (f *File) ACL() AccessControl {
	return AccessControl{
		AuthorID:    f.AuthorID,
		OwnerID:     f.OwnerID,
		SharedTo:    f.SharedTo,
		Permissions: f.Permissions,
	}
}
