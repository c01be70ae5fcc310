package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campusdrive/internal/domain"
	"campusdrive/internal/domain/models/events"
	models "campusdrive/internal/domain/models/workflow"
	"campusdrive/internal/domain/services"
)

// HandleEvent reacts to files entering or leaving a submission folder.
// Events for folders without a requirement, or from accounts that are not
// recipients, are ignored.
func (s *requirementService) HandleEvent(ctx context.Context, ev events.Event) error {
	var submitted bool
	switch ev.Type {
	case events.FileAddedToSubmissionFolder:
		submitted = true
	case events.FileRemovedFromSubmissionFolder:
		submitted = false
	default:
		return nil
	}

	requirement, err := s.Requirements.GetByFolderID(ctx, ev.FolderID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup requirement for folder %s: %w", ev.FolderID, err)
	}
	idx := requirement.RecipientIndex(ev.UploaderID)
	if idx < 0 {
		s.Logger.Debug("submission event from non-recipient ignored",
			"requirement_id", requirement.ID,
			"account", ev.UploaderID,
		)
		return nil
	}

	var t *transition
	if !requirement.IsDone() {
		moved := applySubmission(requirement, idx, submitted)
		t = &moved
	}
	requirement.To[idx].Sent = submitted
	requirement.ModifiedAt = time.Now()

	err = s.TxManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.Requirements.Update(ctx, requirement); err != nil {
			return err
		}
		if t == nil {
			return nil
		}
		return s.moveOnBoards(ctx, requirement, *t)
	})
	if err != nil {
		return fmt.Errorf("apply submission to requirement %s: %w", requirement.ID, err)
	}

	s.Logger.Info("submission recorded",
		"requirement_id", requirement.ID,
		"file_id", ev.FileID,
		"account", ev.UploaderID,
		"sent", submitted,
		"recipient_status", requirement.To[idx].Status,
		"overall", requirement.Status,
	)

	s.notify(ctx, []string{requirement.AuthorID}, services.NotificationRequirementUpdated, requirement)
	return nil
}

// applySubmission moves recipient idx to done on a submission and back to
// processing on a withdrawal. An upload that does not complete the set still
// takes a waiting requirement to processing.
func applySubmission(req *models.Requirement, idx int, submitted bool) transition {
	accountID := req.To[idx].AccountID
	if !submitted {
		t, _ := applyStatus(req, accountID, models.StatusProcessing)
		return t
	}

	before := req.Status
	t, _ := applyStatus(req, accountID, models.StatusDone)
	if req.Status == models.StatusWaiting {
		req.Status = models.StatusProcessing
	}
	t.overall = req.Status != before
	return t
}
