// Package workflow implements the requirement workflow engine and the
// per-user requirement boards.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"campusdrive/internal/capabilities"
	"campusdrive/internal/config"
	"campusdrive/internal/domain"
	identity "campusdrive/internal/domain/models"
	models "campusdrive/internal/domain/models/workflow"
	"campusdrive/internal/domain/repositories"
	driveRepo "campusdrive/internal/domain/repositories/drive"
	workflowRepo "campusdrive/internal/domain/repositories/workflow"
	"campusdrive/internal/domain/services"
	driveSvc "campusdrive/internal/domain/services/drive"
	workflowSvc "campusdrive/internal/domain/services/workflow"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Deps holds the collaborators of the requirement service
type Deps struct {
	Requirements workflowRepo.RequirementRepository
	Orders       workflowRepo.RequireOrderRepository
	Folders      driveSvc.FolderService
	FolderRepo   driveRepo.FolderRepository
	TxManager    repositories.TransactionManager
	Registry     *capabilities.Registry
	Notifier     services.Notifier
	Logger       *slog.Logger
}

type requirementService struct {
	Deps
}

// NewRequirementService creates the workflow engine
func NewRequirementService(deps Deps) workflowSvc.RequirementService {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &requirementService{Deps: deps}
}

func validateRecipients(recipients []workflowSvc.RecipientInput, authorID string) error {
	if len(recipients) == 0 {
		return domain.NewValidation("at least one recipient is required")
	}
	seen := make(map[string]bool, len(recipients))
	for i := range recipients {
		r := &recipients[i]
		r.Email = strings.TrimSpace(r.Email)
		err := validation.ValidateStruct(r,
			validation.Field(&r.AccountID, validation.Required),
			validation.Field(&r.Email, validation.Required, is.EmailFormat),
		)
		if err != nil {
			return fmt.Errorf("%w: recipient %d: %v", domain.ErrValidation, i, err)
		}
		if r.AccountID == authorID {
			return domain.NewValidation("the author cannot be a recipient")
		}
		if seen[r.AccountID] {
			return domain.NewValidation(fmt.Sprintf("recipient %s listed twice", r.AccountID))
		}
		seen[r.AccountID] = true
	}
	return nil
}

func emailsOf(recipients []workflowSvc.RecipientInput) []string {
	emails := make([]string, len(recipients))
	for i, r := range recipients {
		emails[i] = r.Email
	}
	return emails
}

// CreateRequirement creates the submission folder and the requirement, and
// puts the requirement in the waiting column of every participant
func (s *requirementService) CreateRequirement(ctx context.Context, actor identity.Actor, req *workflowSvc.CreateRequirementRequest) (*models.Requirement, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.MaxSize == 0 {
		req.MaxSize = config.DefaultRequirementMaxSize
	}
	err := validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.Required, validation.RuneLength(1, config.MaxRequirementTitleLength)),
		validation.Field(&req.MaxSize, validation.Min(int64(1))),
		validation.Field(&req.EndDate, validation.When(!req.StartDate.IsZero() && !req.EndDate.IsZero(),
			validation.Min(req.StartDate).Error("end date must not be before start date"))),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if err := validateRecipients(req.Recipients, actor.AccountID); err != nil {
		return nil, err
	}
	if _, err := s.Registry.FileType(req.FileType); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Folder.Name) == "" {
		req.Folder.Name = req.Title
	}

	to := make([]models.Recipient, len(req.Recipients))
	for i, r := range req.Recipients {
		to[i] = models.Recipient{AccountID: r.AccountID, Email: r.Email, Status: models.StatusWaiting}
	}
	requirement := &models.Requirement{
		Title:     req.Title,
		AuthorID:  actor.AccountID,
		To:        to,
		FileType:  req.FileType,
		MaxSize:   req.MaxSize,
		Message:   req.Message,
		Note:      req.Note,
		Status:    models.StatusWaiting,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}

	err = s.TxManager.ExecTx(ctx, func(ctx context.Context) error {
		folder, err := s.Folders.CreateSubmissionFolder(ctx, actor, &driveSvc.CreateFolderRequest{
			Name:     req.Folder.Name,
			ParentID: req.Folder.ParentID,
		}, emailsOf(req.Recipients))
		if err != nil {
			return fmt.Errorf("create submission folder: %w", err)
		}
		requirement.FolderID = folder.ID

		if err := s.Requirements.Create(ctx, requirement); err != nil {
			return err
		}
		return s.Orders.AppendWaiting(ctx, requirement.Participants(), requirement.ID)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("requirement created",
		"id", requirement.ID,
		"title", requirement.Title,
		"folder_id", requirement.FolderID,
		"recipients", len(requirement.To),
		"actor", actor.AccountID,
	)

	s.notify(ctx, recipientIDs(requirement.To), services.NotificationRequirementReceived, requirement)
	return requirement, nil
}

// load returns a requirement the actor takes part in
func (s *requirementService) load(ctx context.Context, actor identity.Actor, id string) (*models.Requirement, error) {
	requirement, err := s.Requirements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !requirement.IsAuthor(actor.AccountID) && requirement.RecipientIndex(actor.AccountID) < 0 {
		return nil, domain.NewForbidden("you are not part of this requirement")
	}
	return requirement, nil
}

func (s *requirementService) loadAsAuthor(ctx context.Context, actor identity.Actor, id string) (*models.Requirement, error) {
	requirement, err := s.Requirements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !requirement.IsAuthor(actor.AccountID) {
		return nil, domain.NewForbidden("only the author can change this requirement")
	}
	return requirement, nil
}

func (s *requirementService) GetRequirement(ctx context.Context, actor identity.Actor, id string) (*models.Requirement, error) {
	return s.load(ctx, actor, id)
}

func (s *requirementService) ListRequirements(ctx context.Context, actor identity.Actor) (*workflowSvc.Board, error) {
	requirements, err := s.Requirements.ListForAccount(ctx, actor.AccountID)
	if err != nil {
		return nil, err
	}
	order, err := s.board(ctx, actor.AccountID)
	if err != nil {
		return nil, err
	}
	return &workflowSvc.Board{Requirements: requirements, Order: order}, nil
}

func (s *requirementService) EditRequirement(ctx context.Context, actor identity.Actor, id string, req *workflowSvc.EditRequirementRequest) (*models.Requirement, error) {
	requirement, err := s.loadAsAuthor(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if err := validation.Validate(title, validation.Required, validation.RuneLength(1, config.MaxRequirementTitleLength)); err != nil {
			return nil, fmt.Errorf("%w: title: %v", domain.ErrValidation, err)
		}
		requirement.Title = title
	}
	if req.FileType != nil {
		if _, err := s.Registry.FileType(*req.FileType); err != nil {
			return nil, err
		}
		requirement.FileType = *req.FileType
	}
	if req.MaxSize != nil {
		if *req.MaxSize < 1 {
			return nil, domain.NewValidation("max size must be at least 1 MB")
		}
		requirement.MaxSize = *req.MaxSize
	}
	if req.Message != nil {
		requirement.Message = *req.Message
	}
	if req.Note != nil {
		requirement.Note = *req.Note
	}
	if req.StartDate != nil {
		requirement.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		requirement.EndDate = *req.EndDate
	}
	if !requirement.StartDate.IsZero() && !requirement.EndDate.IsZero() && requirement.EndDate.Before(requirement.StartDate) {
		return nil, domain.NewValidation("end date must not be before start date")
	}

	var diff recipientDiff
	if req.Recipients != nil {
		if err := validateRecipients(req.Recipients, actor.AccountID); err != nil {
			return nil, err
		}
		diff = diffRecipients(requirement.To, req.Recipients)
		requirement.To = diff.next
	}
	requirement.ModifiedAt = time.Now()

	err = s.TxManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.Requirements.Update(ctx, requirement); err != nil {
			return err
		}
		if len(diff.removed) > 0 {
			if err := s.Orders.RemoveEverywhere(ctx, recipientIDs(diff.removed), requirement.ID); err != nil {
				return err
			}
		}
		if len(diff.unshare) > 0 {
			if err := s.FolderRepo.RemoveShares(ctx, requirement.FolderID, diff.unshare); err != nil && !errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("unshare submission folder: %w", err)
			}
		}
		if len(diff.added) > 0 {
			if err := s.Orders.AppendWaiting(ctx, recipientIDs(diff.added), requirement.ID); err != nil {
				return err
			}
		}
		if len(diff.share) > 0 {
			caps := s.Registry.DefaultPermissions(capabilities.KindSubmission)
			if err := s.FolderRepo.AddShares(ctx, requirement.FolderID, diff.share, caps); err != nil && !errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("share submission folder: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("requirement edited",
		"id", requirement.ID,
		"added", len(diff.added),
		"removed", len(diff.removed),
	)

	s.notify(ctx, recipientIDs(diff.added), services.NotificationRequirementReceived, requirement)
	s.notify(ctx, recipientIDs(diff.removed), services.NotificationRequirementRemoved, requirement)
	return requirement, nil
}

// recipientDiff is the outcome of replacing a recipient list
type recipientDiff struct {
	next    []models.Recipient
	added   []models.Recipient
	removed []models.Recipient

	// submission folder shares to drop and to grant
	unshare []string
	share   []string
}

// diffRecipients keeps the state of recipients present in both lists, starts
// new ones in waiting and reports who left. A kept recipient whose email
// changed moves the folder share from the old address to the new one.
func diffRecipients(current []models.Recipient, wanted []workflowSvc.RecipientInput) recipientDiff {
	existing := make(map[string]models.Recipient, len(current))
	for _, r := range current {
		existing[r.AccountID] = r
	}

	var d recipientDiff
	kept := make(map[string]bool, len(wanted))
	for _, w := range wanted {
		kept[w.AccountID] = true
		if r, ok := existing[w.AccountID]; ok {
			if r.Email != w.Email {
				d.unshare = append(d.unshare, r.Email)
				d.share = append(d.share, w.Email)
			}
			r.Email = w.Email
			d.next = append(d.next, r)
			continue
		}
		r := models.Recipient{AccountID: w.AccountID, Email: w.Email, Status: models.StatusWaiting}
		d.next = append(d.next, r)
		d.added = append(d.added, r)
		d.share = append(d.share, r.Email)
	}
	for _, r := range current {
		if !kept[r.AccountID] {
			d.removed = append(d.removed, r)
			d.unshare = append(d.unshare, r.Email)
		}
	}

	// an address still held by someone on the new list keeps its share
	held := make(map[string]bool, len(d.next))
	for _, r := range d.next {
		held[r.Email] = true
	}
	unshare := d.unshare[:0]
	for _, email := range d.unshare {
		if !held[email] {
			unshare = append(unshare, email)
		}
	}
	d.unshare = unshare
	return d
}

// DeleteRequirement removes the requirement from every board. The submission
// folder and its files stay in the author's drive.
func (s *requirementService) DeleteRequirement(ctx context.Context, actor identity.Actor, id string) error {
	requirement, err := s.loadAsAuthor(ctx, actor, id)
	if err != nil {
		return err
	}

	err = s.TxManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.Orders.RemoveEverywhere(ctx, requirement.Participants(), requirement.ID); err != nil {
			return err
		}
		return s.Requirements.Delete(ctx, requirement.ID)
	})
	if err != nil {
		return err
	}

	s.Logger.Info("requirement deleted", "id", requirement.ID, "actor", actor.AccountID)
	s.notify(ctx, recipientIDs(requirement.To), services.NotificationRequirementRemoved, requirement)
	return nil
}

// MarkSeen flags the requirement as read by the acting recipient
func (s *requirementService) MarkSeen(ctx context.Context, actor identity.Actor, id string) (*models.Requirement, error) {
	requirement, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	idx := requirement.RecipientIndex(actor.AccountID)
	if idx < 0 || requirement.To[idx].Seen {
		return requirement, nil
	}

	requirement.To[idx].Seen = true
	if err := s.Requirements.Update(ctx, requirement); err != nil {
		return nil, err
	}
	s.Logger.Debug("requirement seen", "id", requirement.ID, "actor", actor.AccountID)
	return requirement, nil
}

func (s *requirementService) notify(ctx context.Context, accountIDs []string, typ string, requirement *models.Requirement) {
	if s.Notifier == nil || len(accountIDs) == 0 {
		return
	}
	s.Notifier.Notify(ctx, accountIDs, services.Notification{Type: typ, Payload: requirement})
}

func recipientIDs(recipients []models.Recipient) []string {
	ids := make([]string, len(recipients))
	for i, r := range recipients {
		ids[i] = r.AccountID
	}
	return ids
}
