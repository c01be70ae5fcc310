package workflow

import (
	"context"
	"time"

	"campusdrive/internal/domain/models"
	"campusdrive/internal/domain/models/drive"
	"campusdrive/internal/domain/models/events"
	"campusdrive/internal/domain/models/workflow"
)

// RequirementService owns Requirement and RequireOrder documents
type RequirementService interface {
	events.Handler

	CreateRequirement(ctx context.Context, actor models.Actor, req *CreateRequirementRequest) (*workflow.Requirement, error)
	GetRequirement(ctx context.Context, actor models.Actor, id string) (*workflow.Requirement, error)

	// ListRequirements returns every requirement the actor takes part in, plus their private order
	ListRequirements(ctx context.Context, actor models.Actor) (*Board, error)

	// UpdateStatus applies the author/recipient reconciliation rule
	UpdateStatus(ctx context.Context, actor models.Actor, req *UpdateStatusRequest) (*workflow.Requirement, error)

	EditRequirement(ctx context.Context, actor models.Actor, id string, req *EditRequirementRequest) (*workflow.Requirement, error)
	DeleteRequirement(ctx context.Context, actor models.Actor, id string) error
	MarkSeen(ctx context.Context, actor models.Actor, id string) (*workflow.Requirement, error)

	// Reorder moves a requirement inside the actor's private board
	Reorder(ctx context.Context, actor models.Actor, req *ReorderRequest) (*workflow.RequireOrder, error)
}

// RecipientInput identifies one recipient
type RecipientInput struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
}

// SubmissionFolderSpec describes the folder created alongside a requirement
type SubmissionFolderSpec struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id,omitempty"`
}

// CreateRequirementRequest represents a requirement creation request
type CreateRequirementRequest struct {
	Title      string               `json:"title"`
	Recipients []RecipientInput     `json:"to"`
	Folder     SubmissionFolderSpec `json:"folder"`
	FileType   drive.FileType       `json:"file_type"`
	MaxSize    int64                `json:"max_size"`
	Message    string               `json:"message"`
	Note       string               `json:"note"`
	StartDate  time.Time            `json:"start_date"`
	EndDate    time.Time            `json:"end_date"`
}

// EditRequirementRequest carries the fields an author may change.
// Recipients, when present, replaces the whole recipient list.
type EditRequirementRequest struct {
	Title      *string          `json:"title,omitempty"`
	Recipients []RecipientInput `json:"to,omitempty"`
	FileType   *drive.FileType  `json:"file_type,omitempty"`
	MaxSize    *int64           `json:"max_size,omitempty"`
	Message    *string          `json:"message,omitempty"`
	Note       *string          `json:"note,omitempty"`
	StartDate  *time.Time       `json:"start_date,omitempty"`
	EndDate    *time.Time       `json:"end_date,omitempty"`
}

// Position is a column/index pair on a board
type Position struct {
	Column workflow.Status `json:"column"`
	Index  int             `json:"index"`
}

// UpdateStatusRequest moves the actor's view of a requirement to Destination.
// DestinationIndex nil appends at the end of the column.
type UpdateStatusRequest struct {
	RequirementID    string          `json:"requirement_id"`
	Destination      workflow.Status `json:"destination"`
	DestinationIndex *int            `json:"destination_index,omitempty"`
}

// ReorderRequest is an explicit drag-and-drop
type ReorderRequest struct {
	RequirementID string   `json:"requirement_id"`
	Source        Position `json:"source"`
	Destination   Position `json:"destination"`
}

// Board is a participant's view of their requirements
type Board struct {
	Requirements []workflow.Requirement `json:"requirements"`
	Order        *workflow.RequireOrder `json:"order"`
}
