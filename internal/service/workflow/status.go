package workflow

import (
	"context"
	"fmt"
	"time"

	"campusdrive/internal/domain"
	identity "campusdrive/internal/domain/models"
	models "campusdrive/internal/domain/models/workflow"
	"campusdrive/internal/domain/services"
	workflowSvc "campusdrive/internal/domain/services/workflow"
)

// deriveOverall returns the author's status after recipient idx moves to dest.
// Counts are taken before the recipient's own entry changes.
func deriveOverall(req *models.Requirement, idx int, dest models.Status) models.Status {
	prev := req.To[idx].Status
	processing := req.CountRecipients(models.StatusProcessing, -1)
	othersDone := req.CountRecipients(models.StatusDone, idx)

	switch {
	case dest == models.StatusProcessing && processing == 0:
		return models.StatusProcessing
	case dest == models.StatusDone && othersDone == len(req.To)-1:
		return models.StatusDone
	case dest == models.StatusWaiting && processing == 1 && prev == models.StatusProcessing:
		return models.StatusWaiting
	}
	return req.Status
}

// transition is the set of board moves a status change causes: the actor's
// own board, plus the author's when a recipient moved the overall status.
type transition struct {
	actorID     string
	actorColumn models.Status
	index       *int
	overall     bool
}

// applyStatus mutates req for accountID moving to dest
func applyStatus(req *models.Requirement, accountID string, dest models.Status) (transition, error) {
	t := transition{actorID: accountID, actorColumn: dest}

	if req.IsAuthor(accountID) {
		req.Status = dest
		return t, nil
	}

	idx := req.RecipientIndex(accountID)
	if idx < 0 {
		return t, domain.NewForbidden("you are not part of this requirement")
	}

	before := req.Status
	req.Status = deriveOverall(req, idx, dest)
	req.To[idx].Status = dest
	t.overall = req.Status != before
	return t, nil
}

// UpdateStatus moves the actor's view of a requirement and keeps the boards in step
func (s *requirementService) UpdateStatus(ctx context.Context, actor identity.Actor, req *workflowSvc.UpdateStatusRequest) (*models.Requirement, error) {
	if !req.Destination.Valid() {
		return nil, domain.NewValidation(fmt.Sprintf("unknown status %q", req.Destination))
	}

	requirement, err := s.load(ctx, actor, req.RequirementID)
	if err != nil {
		return nil, err
	}
	if requirement.IsDone() {
		return nil, &domain.ConflictError{
			Message:      "requirement is already done",
			ResourceType: "requirement",
			ResourceID:   requirement.ID,
		}
	}

	t, err := applyStatus(requirement, actor.AccountID, req.Destination)
	if err != nil {
		return nil, err
	}
	t.index = req.DestinationIndex
	requirement.ModifiedAt = time.Now()

	err = s.TxManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.Requirements.Update(ctx, requirement); err != nil {
			return err
		}
		return s.moveOnBoards(ctx, requirement, t)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("requirement status updated",
		"id", requirement.ID,
		"actor", actor.AccountID,
		"destination", req.Destination,
		"overall", requirement.Status,
	)

	if !requirement.IsAuthor(actor.AccountID) {
		s.notify(ctx, []string{requirement.AuthorID}, services.NotificationRequirementUpdated, requirement)
	}
	return requirement, nil
}

// moveOnBoards applies t to the affected private orders
func (s *requirementService) moveOnBoards(ctx context.Context, requirement *models.Requirement, t transition) error {
	if err := s.moveOnBoard(ctx, t.actorID, requirement.ID, t.actorColumn, t.index); err != nil {
		return err
	}
	if t.overall {
		return s.moveOnBoard(ctx, requirement.AuthorID, requirement.ID, requirement.Status, nil)
	}
	return nil
}
