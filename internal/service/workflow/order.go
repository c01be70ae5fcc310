package workflow

import (
	"context"
	"errors"
	"fmt"

	"campusdrive/internal/domain"
	identity "campusdrive/internal/domain/models"
	models "campusdrive/internal/domain/models/workflow"
	workflowSvc "campusdrive/internal/domain/services/workflow"
)

// board returns the user's order, creating an empty one on first use
func (s *requirementService) board(ctx context.Context, userID string) (*models.RequireOrder, error) {
	order, err := s.Orders.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return models.NewRequireOrder(userID), nil
	}
	return order, err
}

// moveOnBoard pulls id out of whatever column holds it and inserts it into dest
func (s *requirementService) moveOnBoard(ctx context.Context, userID, id string, dest models.Status, index *int) error {
	order, err := s.board(ctx, userID)
	if err != nil {
		return err
	}
	placeInColumn(order, id, dest, index)
	return s.Orders.Save(ctx, order)
}

// placeInColumn removes every occurrence of id, then inserts it at index in
// dest. A nil index appends; an index past either end is clamped.
func placeInColumn(order *models.RequireOrder, id string, dest models.Status, index *int) {
	for _, s := range models.Statuses {
		order.SetColumn(s, without(order.Column(s), id))
	}

	col := order.Column(dest)
	at := len(col)
	if index != nil {
		at = min(max(*index, 0), len(col))
	}

	out := make([]string, 0, len(col)+1)
	out = append(out, col[:at]...)
	out = append(out, id)
	out = append(out, col[at:]...)
	order.SetColumn(dest, out)
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, have := range ids {
		if have != id {
			out = append(out, have)
		}
	}
	return out
}

// Reorder is a drag-and-drop on the actor's board. The id is located by
// identity, so a stale source position still moves the right entry.
func (s *requirementService) Reorder(ctx context.Context, actor identity.Actor, req *workflowSvc.ReorderRequest) (*models.RequireOrder, error) {
	if !req.Source.Column.Valid() || !req.Destination.Column.Valid() {
		return nil, domain.NewValidation("unknown column")
	}

	order, err := s.board(ctx, actor.AccountID)
	if err != nil {
		return nil, err
	}
	column, at, ok := order.Locate(req.RequirementID)
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("requirement %s is not on your board", req.RequirementID)}
	}
	if column != req.Source.Column || at != req.Source.Index {
		s.Logger.Debug("board drifted since drag started",
			"actor", actor.AccountID,
			"requirement_id", req.RequirementID,
			"column", column,
			"index", at,
		)
	}

	index := req.Destination.Index
	placeInColumn(order, req.RequirementID, req.Destination.Column, &index)
	if err := s.Orders.Save(ctx, order); err != nil {
		return nil, err
	}

	s.Logger.Debug("board reordered",
		"actor", actor.AccountID,
		"requirement_id", req.RequirementID,
		"column", req.Destination.Column,
		"index", index,
	)
	return order, nil
}
