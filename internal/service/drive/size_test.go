package drive

import (
	"testing"

	"campusdrive/internal/domain"
	models "campusdrive/internal/domain/models/drive"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizePropagator_ApplyDelta(t *testing.T) {
	f := newFixture(t)
	root := f.mkdir(t, alice, "root", nil)
	mid := f.mkdir(t, alice, "mid", &root.ID)
	leaf := f.mkdir(t, alice, "leaf", &mid.ID)

	p := NewSizePropagator(f.deps.Folders, f.deps.Files, f.deps.Logger)
	resized, err := p.ApplyDelta(f.ctx, &leaf.ID, 40)
	require.NoError(t, err)
	assert.Equal(t, []string{leaf.ID, mid.ID, root.ID}, resized)
	resized, err = p.ApplyDelta(f.ctx, &mid.ID, -10)
	require.NoError(t, err)
	assert.Equal(t, []string{mid.ID, root.ID}, resized)

	assert.Equal(t, int64(40), f.folder(t, leaf.ID).Size)
	assert.Equal(t, int64(30), f.folder(t, mid.ID).Size)
	assert.Equal(t, int64(30), f.folder(t, root.ID).Size)
}

func TestSizePropagator_NoOps(t *testing.T) {
	f := newFixture(t)
	root := f.mkdir(t, alice, "root", nil)
	p := NewSizePropagator(f.deps.Folders, f.deps.Files, f.deps.Logger)

	resized, err := p.ApplyDelta(f.ctx, nil, 10)
	assert.NoError(t, err)
	assert.Empty(t, resized)
	resized, err = p.ApplyDelta(f.ctx, &root.ID, 0)
	assert.NoError(t, err)
	assert.Empty(t, resized)
	assert.Equal(t, int64(0), f.folder(t, root.ID).Size)
}

func TestSizePropagator_StopsAtMissingAncestor(t *testing.T) {
	f := newFixture(t)
	root := f.mkdir(t, alice, "root", nil)
	mid := f.mkdir(t, alice, "mid", &root.ID)
	leaf := f.mkdir(t, alice, "leaf", &mid.ID)

	// mid vanishes behind the service's back
	require.NoError(t, f.deps.Folders.DeleteMany(f.ctx, []string{mid.ID}))

	p := NewSizePropagator(f.deps.Folders, f.deps.Files, f.deps.Logger)
	resized, err := p.ApplyDelta(f.ctx, &leaf.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{leaf.ID}, resized)

	assert.Equal(t, int64(5), f.folder(t, leaf.ID).Size, "levels below the gap keep their increment")
	assert.Equal(t, int64(0), f.folder(t, root.ID).Size, "levels above the gap are never reached")
}

func TestSizePropagator_DetectsCycle(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.deps.Folders.Create(f.ctx, &models.Folder{ID: "a", Name: "a", OwnerID: "alice", ParentID: strPtr("b")}))
	require.NoError(t, f.deps.Folders.Create(f.ctx, &models.Folder{ID: "b", Name: "b", OwnerID: "alice", ParentID: strPtr("a")}))

	p := NewSizePropagator(f.deps.Folders, f.deps.Files, f.deps.Logger)
	_, err := p.ApplyDelta(f.ctx, strPtr("a"), 1)
	assert.ErrorIs(t, err, domain.ErrInconsistent)
}

func TestSizePropagator_RecomputeAndRepair(t *testing.T) {
	f := newFixture(t)
	root := f.mkdir(t, alice, "root", nil)
	mid := f.mkdir(t, alice, "mid", &root.ID)
	leaf := f.mkdir(t, alice, "leaf", &mid.ID)
	f.upload(t, alice, "a", 100, &root.ID)
	f.upload(t, alice, "b", 20, &mid.ID)
	f.upload(t, alice, "c", 3, &leaf.ID)

	assert.Equal(t, int64(123), f.folder(t, root.ID).Size)
	assert.Equal(t, int64(23), f.folder(t, mid.ID).Size)

	require.NoError(t, f.deps.Folders.SetSize(f.ctx, mid.ID, 999))

	p := NewSizePropagator(f.deps.Folders, f.deps.Files, f.deps.Logger)
	sizes, err := p.Recompute(f.ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{root.ID: 123, mid.ID: 23, leaf.ID: 3}, sizes)
	assert.Equal(t, int64(999), f.folder(t, mid.ID).Size, "recompute does not write")

	size, repaired, err := p.Repair(f.ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(123), size)
	assert.Equal(t, 1, repaired)
	assert.Equal(t, int64(23), f.folder(t, mid.ID).Size)
}
