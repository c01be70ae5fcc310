package memory

import (
	"context"
	"errors"
	"testing"

	"campusdrive/internal/domain"
	"campusdrive/internal/domain/models/drive"
	"campusdrive/internal/domain/models/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestTransactionManager_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	folders := NewFolderRepository(store)
	tx := NewTransactionManager(store)

	require.NoError(t, folders.Create(ctx, &drive.Folder{ID: "a", Name: "A", OwnerID: "u1"}))

	boom := errors.New("boom")
	err := tx.ExecTx(ctx, func(ctx context.Context) error {
		if _, err := folders.IncrementSize(ctx, "a", 100); err != nil {
			return err
		}
		require.NoError(t, folders.Create(ctx, &drive.Folder{ID: "b", Name: "B", OwnerID: "u1"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	a, err := folders.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(0), a.Size)

	_, err = folders.GetByID(ctx, "b")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransactionManager_RollbackKeepsOutsideWrites(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	folders := NewFolderRepository(store)
	orders := NewRequireOrderRepository(store)
	tx := NewTransactionManager(store)

	require.NoError(t, folders.Create(ctx, &drive.Folder{ID: "a", Name: "A", OwnerID: "u1"}))
	require.NoError(t, folders.Create(ctx, &drive.Folder{ID: "x", Name: "X", OwnerID: "u1"}))

	written := make(chan struct{})
	release := make(chan struct{})
	boom := errors.New("boom")
	done := make(chan error, 1)
	go func() {
		done <- tx.ExecTx(ctx, func(ctx context.Context) error {
			if _, err := folders.IncrementSize(ctx, "a", 100); err != nil {
				return err
			}
			close(written)
			<-release
			return boom
		})
	}()

	<-written
	x, err := folders.GetByID(ctx, "x")
	require.NoError(t, err)
	x.IsStarred = true
	require.NoError(t, folders.Update(ctx, x))
	require.NoError(t, orders.Save(ctx, &workflow.RequireOrder{UserID: "u2", Waiting: []string{"r1"}}))
	close(release)
	assert.ErrorIs(t, <-done, boom)

	a, err := folders.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(0), a.Size, "the transaction's own write is undone")

	x, err = folders.GetByID(ctx, "x")
	require.NoError(t, err)
	assert.True(t, x.IsStarred, "a write made outside the transaction survives")

	order, err := orders.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, order.Waiting)
}

func TestTransactionManager_NestedCallsShareRollback(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	folders := NewFolderRepository(store)
	tx := NewTransactionManager(store)

	require.NoError(t, folders.Create(ctx, &drive.Folder{ID: "a", Name: "A", OwnerID: "u1"}))

	boom := errors.New("boom")
	err := tx.ExecTx(ctx, func(ctx context.Context) error {
		require.NoError(t, tx.ExecTx(ctx, func(ctx context.Context) error {
			_, err := folders.IncrementSize(ctx, "a", 5)
			return err
		}))
		_, err := folders.IncrementSize(ctx, "a", 7)
		require.NoError(t, err)
		require.NoError(t, folders.DeleteMany(ctx, []string{"a"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	a, err := folders.GetByID(ctx, "a")
	require.NoError(t, err, "a deleted document comes back")
	assert.Equal(t, int64(0), a.Size, "the first recorded state wins")
}

func TestFolderRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	folders := NewFolderRepository(NewStore())
	require.NoError(t, folders.Create(ctx, &drive.Folder{ID: "a", Name: "A", SharedTo: []string{"x@example.com"}}))

	got, err := folders.GetByID(ctx, "a")
	require.NoError(t, err)
	got.SharedTo[0] = "mutated"
	got.Name = "mutated"

	again, err := folders.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "A", again.Name)
	assert.Equal(t, []string{"x@example.com"}, again.SharedTo)
}

func TestFolderRepository_IncrementSizeMissing(t *testing.T) {
	folders := NewFolderRepository(NewStore())
	_, err := folders.IncrementSize(context.Background(), "ghost", 10)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFolderRepository_SharesHaveSetSemantics(t *testing.T) {
	ctx := context.Background()
	folders := NewFolderRepository(NewStore())
	require.NoError(t, folders.Create(ctx, &drive.Folder{ID: "a", Name: "A"}))

	require.NoError(t, folders.AddShares(ctx, "a", []string{"x@e.com", "y@e.com"}, []drive.Capability{drive.CapabilityRead}))
	require.NoError(t, folders.AddShares(ctx, "a", []string{"x@e.com"}, []drive.Capability{drive.CapabilityRead, drive.CapabilityWrite}))
	require.NoError(t, folders.RemoveShares(ctx, "a", []string{"y@e.com"}))

	got, err := folders.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"x@e.com"}, got.SharedTo)
	assert.Equal(t, []drive.Capability{drive.CapabilityRead, drive.CapabilityWrite}, got.Permissions)
}

func TestFileRepository_List(t *testing.T) {
	ctx := context.Background()
	files := NewFileRepository(NewStore())
	for _, f := range []drive.File{
		{ID: "1", Name: "b.txt", Size: 30, FolderID: strPtr("p"), OwnerID: "u1"},
		{ID: "2", Name: "a.txt", Size: 10, FolderID: strPtr("p"), OwnerID: "u1", IsStarred: true},
		{ID: "3", Name: "c.txt", Size: 20, OwnerID: "u1"},
		{ID: "4", Name: "d.txt", Size: 5, FolderID: strPtr("q"), OwnerID: "u2", SharedTo: []string{"me@e.com"}},
	} {
		f := f
		require.NoError(t, files.Create(ctx, &f))
	}

	tests := []struct {
		name string
		q    drive.ListQuery
		want []string
	}{
		{"children by name", drive.ListQuery{ParentID: strPtr("p")}, []string{"2", "1"}},
		{"children by size desc", drive.ListQuery{ParentID: strPtr("p"), Sort: drive.SortBySize, Desc: true}, []string{"1", "2"}},
		{"root of owner", drive.ListQuery{RootOf: "u1"}, []string{"3"}},
		{"starred", drive.ListQuery{OwnedBy: "u1", Starred: boolPtr(true)}, []string{"2"}},
		{"shared", drive.ListQuery{SharedWith: "me@e.com"}, []string{"4"}},
		{"paged", drive.ListQuery{OwnedBy: "u1", Skip: 1, Limit: 1}, []string{"1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.q
			got, err := files.List(ctx, &q)
			require.NoError(t, err)
			ids := make([]string, len(got))
			for i := range got {
				ids[i] = got[i].ID
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func boolPtr(b bool) *bool { return &b }

func TestRequireOrderRepository_AppendAndRemove(t *testing.T) {
	ctx := context.Background()
	orders := NewRequireOrderRepository(NewStore())

	require.NoError(t, orders.AppendWaiting(ctx, []string{"u1", "u2"}, "r1"))
	require.NoError(t, orders.AppendWaiting(ctx, []string{"u1"}, "r2"))

	o1, err := orders.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2"}, o1.Waiting)

	o1.Waiting = []string{"r2"}
	o1.Done = []string{"r1"}
	require.NoError(t, orders.Save(ctx, o1))

	require.NoError(t, orders.RemoveEverywhere(ctx, []string{"u1", "u2", "u3"}, "r1"))

	o1, err = orders.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"r2"}, o1.Waiting)
	assert.Empty(t, o1.Done)

	_, err = orders.Get(ctx, "u3")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRequirementRepository_ListForAccount(t *testing.T) {
	ctx := context.Background()
	reqs := NewRequirementRepository(NewStore())

	require.NoError(t, reqs.Create(ctx, &workflow.Requirement{ID: "r1", AuthorID: "a", FolderID: "f1",
		To: []workflow.Recipient{{AccountID: "b"}}}))
	require.NoError(t, reqs.Create(ctx, &workflow.Requirement{ID: "r2", AuthorID: "c", FolderID: "f2",
		To: []workflow.Recipient{{AccountID: "d"}}}))

	got, err := reqs.ListForAccount(ctx, "b")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "r1", got[0].ID)

	byFolder, err := reqs.GetByFolderID(ctx, "f2")
	require.NoError(t, err)
	assert.Equal(t, "r2", byFolder.ID)
}
