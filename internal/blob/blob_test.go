package blob

import (
	"context"
	"io"
	"strings"
	"testing"

	"campusdrive/internal/domain"
	"campusdrive/internal/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestKey(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		owner    string
		parentID *string
		want     string
	}{
		{"root file", "notes", "u1", nil, "notes_u1"},
		{"nested file", "notes", "u1", strPtr("f9"), "notes_u1_f9"},
		{"copy suffix", "Report (2)", "u1", strPtr("f9"), "Report_u1_f9 (2)"},
		{"dotted name", "v1.2 notes", "u1", nil, "v1.2 notes_u1"},
		{"path separators", "a/b", "u1", nil, "a_b_u1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Key(tt.file, tt.owner, tt.parentID))
		})
	}
}

func TestWithID(t *testing.T) {
	assert.Equal(t, "notes_u1_f9_abc", WithID("notes_u1_f9", "abc"))
}

func readAll(t *testing.T, s services.BlobStore, key string) string {
	t.Helper()
	rc, err := s.Get(context.Background(), key)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func exerciseStore(t *testing.T, s services.BlobStore) {
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "a", strings.NewReader("hello")))
	assert.ErrorIs(t, s.Put(ctx, "a", strings.NewReader("again")), domain.ErrConflict)
	assert.Equal(t, "hello", readAll(t, s, "a"))

	require.NoError(t, s.Copy(ctx, "a", "b"))
	assert.Equal(t, "hello", readAll(t, s, "b"))

	require.NoError(t, s.Rename(ctx, "b", "c"))
	_, err := s.Get(ctx, "b")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "hello", readAll(t, s, "c"))

	assert.ErrorIs(t, s.Rename(ctx, "a", "c"), domain.ErrConflict)

	require.NoError(t, s.Delete(ctx, "c"))
	require.NoError(t, s.Delete(ctx, "c"))
	_, err = s.Get(ctx, "c")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestFilesystemStore(t *testing.T) {
	s, err := NewFilesystemStore(t.TempDir())
	require.NoError(t, err)
	exerciseStore(t, s)
}

func TestMemoryStore_Fail(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Put(ctx, "a", strings.NewReader("x")))

	s.Fail(OpCopy, assert.AnError)
	assert.ErrorIs(t, s.Copy(ctx, "a", "b"), assert.AnError)

	s.Fail(OpCopy, nil)
	assert.NoError(t, s.Copy(ctx, "a", "b"))
}
