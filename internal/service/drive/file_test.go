package drive

import (
	"errors"
	"io"
	"strings"
	"testing"

	"campusdrive/internal/blob"
	"campusdrive/internal/domain"
	models "campusdrive/internal/domain/models/drive"
	"campusdrive/internal/domain/models/events"
	driveSvc "campusdrive/internal/domain/services/drive"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpload(t *testing.T) {
	f := newFixture(t)
	course := f.mkdir(t, alice, "Course", nil)
	week := f.mkdir(t, alice, "Week 1", &course.ID)

	file := f.upload(t, alice, "slides", 1200, &week.ID)

	assert.Equal(t, "alice", file.OwnerID)
	assert.Equal(t, blob.Key("slides", "alice", &week.ID), file.BlobKey)
	assert.True(t, f.blobs.Has(file.BlobKey))
	assert.Contains(t, f.folder(t, week.ID).FileIDs, file.ID)
	assert.Equal(t, int64(1200), f.folder(t, week.ID).Size)
	assert.Equal(t, int64(1200), f.folder(t, course.ID).Size)
	assert.Empty(t, f.events.all(), "no event outside submission folders")
}

func TestUpload_Rejections(t *testing.T) {
	f := newFixture(t)
	folder := f.mkdir(t, alice, "Course", nil)
	f.upload(t, alice, "taken", 1, &folder.ID)

	tests := []struct {
		name    string
		req     driveSvc.UploadFileRequest
		wantErr error
	}{
		{"duplicate name", driveSvc.UploadFileRequest{Name: "taken", Type: models.FileTypeTxt, Size: 1, FolderID: &folder.ID}, domain.ErrConflict},
		{"unknown type", driveSvc.UploadFileRequest{Name: "x", Type: "bmp", Size: 1, FolderID: &folder.ID}, domain.ErrValidation},
		{"too large", driveSvc.UploadFileRequest{Name: "x", Type: models.FileTypeSvg, Size: 6 << 20, FolderID: &folder.ID}, domain.ErrValidation},
		{"negative size", driveSvc.UploadFileRequest{Name: "x", Type: models.FileTypeTxt, Size: -1, FolderID: &folder.ID}, domain.ErrValidation},
		{"empty name", driveSvc.UploadFileRequest{Name: "", Type: models.FileTypeTxt, Size: 1}, domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			req.Content = strings.NewReader("data")
			_, err := f.files.Upload(f.ctx, alice, &req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := f.files.Upload(f.ctx, bob, &driveSvc.UploadFileRequest{
		Name: "intruder", Type: models.FileTypeTxt, Size: 1, FolderID: &folder.ID, Content: strings.NewReader("x"),
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUpload_TakenBlobKeyFallsBackToID(t *testing.T) {
	f := newFixture(t)
	folder := f.mkdir(t, alice, "Course", nil)
	key := blob.Key("notes", "alice", &folder.ID)
	require.NoError(t, f.blobs.Put(f.ctx, key, strings.NewReader("left behind by a move")))

	file := f.upload(t, alice, "notes", 3, &folder.ID)
	assert.Equal(t, blob.WithID(key, file.ID), file.BlobKey)
	assert.Equal(t, file.BlobKey, f.file(t, file.ID).BlobKey)
}

func TestUpload_BlobFailureCreatesNothing(t *testing.T) {
	f := newFixture(t)
	folder := f.mkdir(t, alice, "Course", nil)
	f.blobs.Fail(blob.OpPut, errors.New("disk full"))

	_, err := f.files.Upload(f.ctx, alice, &driveSvc.UploadFileRequest{
		Name: "notes", Type: models.FileTypeTxt, Size: 3, FolderID: &folder.ID, Content: strings.NewReader("abc"),
	})
	assert.ErrorIs(t, err, domain.ErrDependency)
	assert.Empty(t, f.folder(t, folder.ID).FileIDs)
	assert.Equal(t, int64(0), f.folder(t, folder.ID).Size)
}

func TestSubmissionEvents(t *testing.T) {
	f := newFixture(t)
	folder, err := f.folders.CreateSubmissionFolder(f.ctx, alice, &driveSvc.CreateFolderRequest{Name: "Essay"}, []string{bob.Email})
	require.NoError(t, err)

	f.upload(t, alice, "instructions", 1, &folder.ID)
	assert.Empty(t, f.events.all(), "the folder owner's own uploads are not submissions")

	submitted := f.upload(t, bob, "essay", 10, &folder.ID)
	assert.Equal(t, "alice", submitted.OwnerID)
	require.Len(t, f.events.all(), 1)
	assert.Equal(t, events.Event{
		Type:       events.FileAddedToSubmissionFolder,
		FolderID:   folder.ID,
		FileID:     submitted.ID,
		UploaderID: "bob",
	}, f.events.all()[0])

	require.NoError(t, f.files.DeleteFile(f.ctx, bob, submitted.ID))
	require.Len(t, f.events.all(), 2)
	assert.Equal(t, events.FileRemovedFromSubmissionFolder, f.events.all()[1].Type)
	assert.Equal(t, "bob", f.events.all()[1].UploaderID)
}

func TestDeleteFile(t *testing.T) {
	f := newFixture(t)
	folder := f.mkdir(t, alice, "Course", nil)
	file := f.upload(t, alice, "notes", 8, &folder.ID)

	assert.ErrorIs(t, f.files.DeleteFile(f.ctx, bob, file.ID), domain.ErrForbidden)
	require.NoError(t, f.files.DeleteFile(f.ctx, alice, file.ID))

	_, err := f.deps.Files.GetByID(f.ctx, file.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, f.blobs.Has(file.BlobKey))
	assert.Equal(t, int64(0), f.folder(t, folder.ID).Size)
	assert.NotContains(t, f.folder(t, folder.ID).FileIDs, file.ID)
}

func TestUpdateFile_RenameMovesBlob(t *testing.T) {
	f := newFixture(t)
	folder := f.mkdir(t, alice, "Course", nil)
	file := f.upload(t, alice, "draft", 2, &folder.ID)
	f.upload(t, alice, "other", 2, &folder.ID)

	updated, err := f.files.UpdateFile(f.ctx, alice, file.ID, &driveSvc.UpdateRequest{Name: strPtr("final")})
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Name)
	assert.Equal(t, blob.Key("final", "alice", &folder.ID), updated.BlobKey)
	assert.False(t, f.blobs.Has(file.BlobKey))
	assert.True(t, f.blobs.Has(updated.BlobKey))
	assert.Equal(t, int64(2), updated.Size, "rename never touches size")

	_, err = f.files.UpdateFile(f.ctx, alice, file.ID, &driveSvc.UpdateRequest{Name: strPtr("other")})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUpdateFile_RenameBlobFailure(t *testing.T) {
	f := newFixture(t)
	folder := f.mkdir(t, alice, "Course", nil)
	file := f.upload(t, alice, "draft", 2, &folder.ID)
	f.blobs.Fail(blob.OpRename, errors.New("object store down"))

	updated, err := f.files.UpdateFile(f.ctx, alice, file.ID, &driveSvc.UpdateRequest{Name: strPtr("final")})
	assert.ErrorIs(t, err, domain.ErrDependency)
	require.NotNil(t, updated)

	stored := f.file(t, file.ID)
	assert.Equal(t, "final", stored.Name, "metadata persists")
	assert.Equal(t, file.BlobKey, stored.BlobKey, "key only follows a successful rename")
	assert.True(t, f.blobs.Has(file.BlobKey))
}

func TestUpdateFile_StarNeedsOnlyAccess(t *testing.T) {
	f := newFixture(t)
	folder := f.mkdir(t, alice, "Course", nil)
	file := f.upload(t, alice, "notes", 2, &folder.ID)
	_, err := f.files.ShareFile(f.ctx, alice, file.ID, &driveSvc.ShareRequest{Emails: []string{bob.Email}})
	require.NoError(t, err)

	updated, err := f.files.UpdateFile(f.ctx, bob, file.ID, &driveSvc.UpdateRequest{Starred: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, updated.IsStarred)

	_, err = f.files.UpdateFile(f.ctx, bob, file.ID, &driveSvc.UpdateRequest{Name: strPtr("mine now")})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCopyFile(t *testing.T) {
	f := newFixture(t)
	src := f.mkdir(t, alice, "Src", nil)
	dst := f.mkdir(t, alice, "Dst", nil)
	file := f.upload(t, alice, "notes", 4, &src.ID)

	same, err := f.files.CopyFile(f.ctx, alice, file.ID, &src.ID)
	require.NoError(t, err)
	assert.Equal(t, "notes (1)", same.Name)
	assert.True(t, f.blobs.Has(same.BlobKey))
	assert.Equal(t, int64(8), f.folder(t, src.ID).Size)

	other, err := f.files.CopyFile(f.ctx, alice, file.ID, &dst.ID)
	require.NoError(t, err)
	assert.Equal(t, "notes", other.Name)
	assert.Equal(t, int64(4), f.folder(t, dst.ID).Size)

	rc, err := f.blobs.Get(f.ctx, other.BlobKey)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "content of notes", string(data))
}

func TestCopyFile_BlobFailure(t *testing.T) {
	f := newFixture(t)
	src := f.mkdir(t, alice, "Src", nil)
	file := f.upload(t, alice, "notes", 4, &src.ID)
	f.blobs.Fail(blob.OpCopy, errors.New("object store down"))

	cp, err := f.files.CopyFile(f.ctx, alice, file.ID, &src.ID)
	assert.ErrorIs(t, err, domain.ErrDependency)
	require.NotNil(t, cp)
	assert.Equal(t, "notes (1)", f.file(t, cp.ID).Name)
	assert.Equal(t, int64(8), f.folder(t, src.ID).Size)
}

func TestMoveFile(t *testing.T) {
	f := newFixture(t)
	src := f.mkdir(t, alice, "Src", nil)
	dst := f.mkdir(t, alice, "Dst", nil)
	file := f.upload(t, alice, "notes", 4, &src.ID)

	moved, err := f.files.MoveFile(f.ctx, alice, file.ID, &dst.ID)
	require.NoError(t, err)
	assert.Equal(t, dst.ID, *moved.FolderID)
	assert.Equal(t, int64(0), f.folder(t, src.ID).Size)
	assert.Equal(t, int64(4), f.folder(t, dst.ID).Size)
	assert.Contains(t, f.folder(t, dst.ID).FileIDs, file.ID)
	assert.Equal(t, file.BlobKey, f.file(t, file.ID).BlobKey, "move does not re-key")

	f.upload(t, alice, "notes", 1, &src.ID)
	_, err = f.files.MoveFile(f.ctx, alice, file.ID, &src.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestDownload(t *testing.T) {
	f := newFixture(t)
	folder := f.mkdir(t, alice, "Course", nil)
	file := f.upload(t, alice, "notes", 4, &folder.ID)

	_, rc, err := f.files.Download(f.ctx, alice, file.ID)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "content of notes", string(data))

	_, _, err = f.files.Download(f.ctx, bob, file.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.files.ShareFile(f.ctx, alice, file.ID, &driveSvc.ShareRequest{
		Emails:      []string{bob.Email},
		Permissions: []models.Capability{models.CapabilityDownload},
	})
	require.NoError(t, err)
	_, rc, err = f.files.Download(f.ctx, bob, file.ID)
	require.NoError(t, err)
	rc.Close()
}

func TestTrashFile_TwoMeanings(t *testing.T) {
	f := newFixture(t)
	file := f.upload(t, alice, "notes", 4, nil)
	_, err := f.files.ShareFile(f.ctx, alice, file.ID, &driveSvc.ShareRequest{Emails: []string{bob.Email}})
	require.NoError(t, err)

	outcome, err := f.files.TrashFile(f.ctx, bob, file.ID)
	require.NoError(t, err)
	assert.Equal(t, driveSvc.TrashOutcomeRemovedShare, outcome)
	assert.Empty(t, f.file(t, file.ID).SharedTo)

	outcome, err = f.files.TrashFile(f.ctx, alice, file.ID)
	require.NoError(t, err)
	assert.Equal(t, driveSvc.TrashOutcomeTrashed, outcome)
	assert.True(t, f.file(t, file.ID).IsTrashed)

	assert.ErrorIs(t, f.files.RestoreFile(f.ctx, bob, file.ID), domain.ErrForbidden)
	require.NoError(t, f.files.RestoreFile(f.ctx, alice, file.ID))
	assert.False(t, f.file(t, file.ID).IsTrashed)
}

func TestShareFile_DefaultsAndUnshare(t *testing.T) {
	f := newFixture(t)
	file := f.upload(t, alice, "notes", 4, nil)

	shared, err := f.files.ShareFile(f.ctx, alice, file.ID, &driveSvc.ShareRequest{Emails: []string{bob.Email, carol.Email}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{bob.Email, carol.Email}, shared.SharedTo)
	assert.ElementsMatch(t, []models.Capability{models.CapabilityDownload, models.CapabilityShare}, shared.Permissions)

	_, err = f.files.ShareFile(f.ctx, alice, file.ID, &driveSvc.ShareRequest{
		Emails:      []string{bob.Email},
		Permissions: []models.Capability{"delete"},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	unshared, err := f.files.UnshareFile(f.ctx, bob, file.ID, []string{carol.Email})
	require.NoError(t, err)
	assert.Equal(t, []string{bob.Email}, unshared.SharedTo)

	shared2, err := f.files.ListFiles(f.ctx, bob, &driveSvc.ListRequest{View: driveSvc.ViewShared})
	require.NoError(t, err)
	require.Len(t, shared2, 1)
	assert.Equal(t, file.ID, shared2[0].ID)
}
