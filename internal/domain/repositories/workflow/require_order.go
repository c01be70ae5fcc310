package workflow

import (
	"context"

	"campusdrive/internal/domain/models/workflow"
)

// RequireOrderRepository stores one RequireOrder per user
type RequireOrderRepository interface {
	// Get returns the user's order, or domain.ErrNotFound
	Get(ctx context.Context, userID string) (*workflow.RequireOrder, error)

	// Save upserts all four columns
	Save(ctx context.Context, order *workflow.RequireOrder) error

	// AppendWaiting atomically appends requirementID to the waiting column of
	// every listed user, creating orders that do not exist yet
	AppendWaiting(ctx context.Context, userIDs []string, requirementID string) error

	// RemoveEverywhere atomically pulls requirementID from all four columns of every listed user
	RemoveEverywhere(ctx context.Context, userIDs []string, requirementID string) error
}
