package auth

import (
	"fmt"

	"campusdrive/internal/domain"
	"campusdrive/internal/domain/models"
	"campusdrive/internal/domain/models/drive"
)

// Classification is the actor's relationship to an entity
type Classification int

const (
	Denied Classification = iota
	ShareMember
	Owner
)

func (c Classification) String() string {
	switch c {
	case Owner:
		return "owner"
	case ShareMember:
		return "share_member"
	}
	return "denied"
}

// Guard decides whether an actor may perform a mutation. It is stateless and
// reads only the entity's access control fields.
type Guard struct{}

// NewGuard creates a permission guard
func NewGuard() *Guard {
	return &Guard{}
}

// Classify returns Owner for the author or owner, ShareMember when the
// actor's email is in the share list, and Denied otherwise.
func (g *Guard) Classify(actor models.Actor, entity drive.Shareable) Classification {
	acl := entity.ACL()
	if actor.AccountID != "" && (actor.AccountID == acl.AuthorID || actor.AccountID == acl.OwnerID) {
		return Owner
	}
	if actor.Email != "" {
		for _, email := range acl.SharedTo {
			if email == actor.Email {
				return ShareMember
			}
		}
	}
	return Denied
}

// Can reports whether actor holds capability on entity. Owners hold every
// capability; share members hold the entity's permission set.
func (g *Guard) Can(actor models.Actor, entity drive.Shareable, capability drive.Capability) bool {
	switch g.Classify(actor, entity) {
	case Owner:
		return true
	case ShareMember:
		return drive.HasCapability(entity.ACL().Permissions, capability)
	}
	return false
}

// Require returns a ForbiddenError unless actor holds capability on entity
func (g *Guard) Require(actor models.Actor, entity drive.Shareable, capability drive.Capability) error {
	if g.Can(actor, entity, capability) {
		return nil
	}
	return domain.NewForbidden(fmt.Sprintf("%s permission required", capability))
}

// RequireOwner returns a ForbiddenError unless actor is author or owner
func (g *Guard) RequireOwner(actor models.Actor, entity drive.Shareable) error {
	if g.Classify(actor, entity) == Owner {
		return nil
	}
	return domain.NewForbidden("only the author or owner can do this")
}

// CanView reports whether the actor may read the entity at all
func (g *Guard) CanView(actor models.Actor, entity drive.Shareable) bool {
	return g.Classify(actor, entity) != Denied
}
