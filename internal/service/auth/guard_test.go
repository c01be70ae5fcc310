package auth

import (
	"testing"

	"campusdrive/internal/domain"
	"campusdrive/internal/domain/models"
	"campusdrive/internal/domain/models/drive"

	"github.com/stretchr/testify/assert"
)

func TestGuard_Classify(t *testing.T) {
	g := NewGuard()
	folder := &drive.Folder{
		AuthorID:    "author",
		OwnerID:     "owner",
		SharedTo:    []string{"member@example.com"},
		Permissions: []drive.Capability{drive.CapabilityRead, drive.CapabilityWrite},
	}

	tests := []struct {
		name  string
		actor models.Actor
		want  Classification
	}{
		{"author", models.Actor{AccountID: "author"}, Owner},
		{"owner", models.Actor{AccountID: "owner"}, Owner},
		{"share member", models.Actor{AccountID: "m", Email: "member@example.com"}, ShareMember},
		{"stranger", models.Actor{AccountID: "x", Email: "x@example.com"}, Denied},
		{"empty actor", models.Actor{}, Denied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Classify(tt.actor, folder))
		})
	}
}

func TestGuard_Require(t *testing.T) {
	g := NewGuard()
	file := &drive.File{
		AuthorID:    "author",
		OwnerID:     "owner",
		SharedTo:    []string{"member@example.com"},
		Permissions: []drive.Capability{drive.CapabilityDownload},
	}
	member := models.Actor{AccountID: "m", Email: "member@example.com"}
	stranger := models.Actor{AccountID: "s", Email: "s@example.com"}
	owner := models.Actor{AccountID: "owner"}

	tests := []struct {
		name    string
		actor   models.Actor
		cap     drive.Capability
		allowed bool
	}{
		{"owner has every capability", owner, drive.CapabilityEdit, true},
		{"member has granted capability", member, drive.CapabilityDownload, true},
		{"member lacks ungranted capability", member, drive.CapabilityEdit, false},
		{"stranger has nothing", stranger, drive.CapabilityDownload, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.Require(tt.actor, file, tt.cap)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, domain.ErrForbidden)
			}
		})
	}

	assert.NoError(t, g.RequireOwner(owner, file))
	assert.ErrorIs(t, g.RequireOwner(member, file), domain.ErrForbidden)
	assert.True(t, g.CanView(member, file))
	assert.False(t, g.CanView(stranger, file))
}
