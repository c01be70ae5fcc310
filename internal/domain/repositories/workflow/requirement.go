package workflow

import (
	"context"

	"campusdrive/internal/domain/models/workflow"
)

// RequirementRepository defines data access operations for requirements.
// Update writes the whole document; concurrent writers are last-writer-wins.
type RequirementRepository interface {
	Create(ctx context.Context, req *workflow.Requirement) error
	GetByID(ctx context.Context, id string) (*workflow.Requirement, error)
	// GetByFolderID finds the requirement whose submission folder is folderID
	GetByFolderID(ctx context.Context, folderID string) (*workflow.Requirement, error)
	Update(ctx context.Context, req *workflow.Requirement) error
	Delete(ctx context.Context, id string) error
	// ListForAccount returns requirements authored by or addressed to accountID
	ListForAccount(ctx context.Context, accountID string) ([]workflow.Requirement, error)
}
