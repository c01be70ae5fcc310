package drive

import (
	"testing"

	models "campusdrive/internal/domain/models/drive"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Every change below lands two levels under A; A's cached listing shows B
// and must follow B's stored size.
func TestListChildren_AncestorSizesStayFresh(t *testing.T) {
	type tree struct {
		a, b, c, extra *models.Folder
		seed           *models.File
	}

	tests := []struct {
		name     string
		change   func(t *testing.T, f *fixture, tr tree)
		wantSize int64
	}{
		{
			name: "upload",
			change: func(t *testing.T, f *fixture, tr tree) {
				f.upload(t, alice, "report", 100, &tr.c.ID)
			},
			wantSize: 110,
		},
		{
			name: "delete file",
			change: func(t *testing.T, f *fixture, tr tree) {
				require.NoError(t, f.files.DeleteFile(f.ctx, alice, tr.seed.ID))
			},
			wantSize: 0,
		},
		{
			name: "move file out",
			change: func(t *testing.T, f *fixture, tr tree) {
				_, err := f.files.MoveFile(f.ctx, alice, tr.seed.ID, &tr.extra.ID)
				require.NoError(t, err)
			},
			wantSize: 0,
		},
		{
			name: "copy file in",
			change: func(t *testing.T, f *fixture, tr tree) {
				_, err := f.files.CopyFile(f.ctx, alice, tr.seed.ID, &tr.c.ID)
				require.NoError(t, err)
			},
			wantSize: 20,
		},
		{
			name: "move folder in",
			change: func(t *testing.T, f *fixture, tr tree) {
				_, err := f.folders.MoveFolder(f.ctx, alice, tr.extra.ID, &tr.c.ID)
				require.NoError(t, err)
			},
			wantSize: 17,
		},
		{
			name: "copy folder in",
			change: func(t *testing.T, f *fixture, tr tree) {
				_, err := f.folders.CopyFolder(f.ctx, alice, tr.extra.ID, &tr.c.ID)
				require.NoError(t, err)
			},
			wantSize: 17,
		},
		{
			name: "delete folder",
			change: func(t *testing.T, f *fixture, tr tree) {
				require.NoError(t, f.folders.DeleteFolder(f.ctx, alice, tr.c.ID))
			},
			wantSize: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			var tr tree
			tr.a = f.mkdir(t, alice, "A", nil)
			tr.b = f.mkdir(t, alice, "B", &tr.a.ID)
			tr.c = f.mkdir(t, alice, "C", &tr.b.ID)
			tr.seed = f.upload(t, alice, "seed", 10, &tr.c.ID)
			tr.extra = f.mkdir(t, alice, "Extra", nil)
			f.upload(t, alice, "extra", 7, &tr.extra.ID)

			before, err := f.folders.ListChildren(f.ctx, alice, tr.a.ID)
			require.NoError(t, err)
			require.Len(t, before.Folders, 1)
			require.Equal(t, int64(10), before.Folders[0].Size)

			tt.change(t, f, tr)

			after, err := f.folders.ListChildren(f.ctx, alice, tr.a.ID)
			require.NoError(t, err)
			require.Len(t, after.Folders, 1)
			assert.Equal(t, tt.wantSize, f.folder(t, tr.b.ID).Size, "stored")
			assert.Equal(t, tt.wantSize, after.Folders[0].Size, "listed")
		})
	}
}
