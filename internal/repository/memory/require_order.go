package memory

import (
	"context"
	"fmt"

	"campusdrive/internal/domain"
	"campusdrive/internal/domain/models/workflow"
	workflowRepo "campusdrive/internal/domain/repositories/workflow"
)

// RequireOrderRepository implements workflowRepo.RequireOrderRepository over a Store
type RequireOrderRepository struct {
	s *Store
}

// NewRequireOrderRepository creates a require-order repository backed by store
func NewRequireOrderRepository(store *Store) workflowRepo.RequireOrderRepository {
	return &RequireOrderRepository{s: store}
}

func (r *RequireOrderRepository) Get(ctx context.Context, userID string) (*workflow.RequireOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	order, ok := r.s.orders[userID]
	if !ok {
		return nil, fmt.Errorf("require order %s: %w", userID, domain.ErrNotFound)
	}
	return cloneOrder(order), nil
}

func (r *RequireOrderRepository) Save(ctx context.Context, order *workflow.RequireOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.keepOrder(ctx, order.UserID)
	r.s.orders[order.UserID] = cloneOrder(order)
	return nil
}

func (r *RequireOrderRepository) AppendWaiting(ctx context.Context, userIDs []string, requirementID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, id := range userIDs {
		r.s.keepOrder(ctx, id)
		order, ok := r.s.orders[id]
		if !ok {
			order = workflow.NewRequireOrder(id)
			r.s.orders[id] = order
		}
		order.Waiting = append(without(order.Waiting, requirementID), requirementID)
	}
	return nil
}

func (r *RequireOrderRepository) RemoveEverywhere(ctx context.Context, userIDs []string, requirementID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, id := range userIDs {
		order, ok := r.s.orders[id]
		if !ok {
			continue
		}
		r.s.keepOrder(ctx, id)
		for _, s := range workflow.Statuses {
			order.SetColumn(s, without(order.Column(s), requirementID))
		}
	}
	return nil
}
