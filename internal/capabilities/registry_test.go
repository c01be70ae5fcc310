package capabilities

import (
	"errors"
	"testing"

	"campusdrive/internal/domain"
	"campusdrive/internal/domain/models/drive"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_LoadsEmbeddedPolicy(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	types := r.ListFileTypes()
	require.Len(t, types, 13)
	assert.Equal(t, drive.FileTypeDoc, types[0].Type)
	assert.Equal(t, drive.FileTypeMp4, types[len(types)-1].Type)

	pdf, err := r.FileType(drive.FileTypePdf)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdf.MimeType)

	assert.Equal(t,
		[]drive.Capability{drive.CapabilityRead, drive.CapabilityWrite},
		r.DefaultPermissions(KindSubmission))
}

func TestRegistry_ValidateUpload(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	tests := []struct {
		name    string
		typ     drive.FileType
		size    int64
		wantErr bool
	}{
		{"pdf within limit", drive.FileTypePdf, 1024, false},
		{"empty txt", drive.FileTypeTxt, 0, false},
		{"unknown type", drive.FileType("iso"), 10, true},
		{"negative size", drive.FileTypePng, -1, true},
		{"svg over limit", drive.FileTypeSvg, 6 << 20, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.ValidateUpload(tt.typ, tt.size)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, domain.ErrValidation), "got %v", err)
		})
	}
}

func TestNewRegistryFromYAML_RejectsUnknownCapability(t *testing.T) {
	_, err := NewRegistryFromYAML([]byte("default_permissions:\n  folder: [read, fly]\n"))
	assert.Error(t, err)
}

func TestRegistry_DefaultPermissionsReturnsCopy(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	caps := r.DefaultPermissions(KindFolder)
	caps[0] = drive.CapabilityEdit

	assert.Equal(t, drive.CapabilityRead, r.DefaultPermissions(KindFolder)[0])
}
