package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"campusdrive/internal/domain"
	"campusdrive/internal/domain/models/workflow"
	workflowRepo "campusdrive/internal/domain/repositories/workflow"

	"github.com/google/uuid"
)

// RequirementRepository implements workflowRepo.RequirementRepository over a Store
type RequirementRepository struct {
	s *Store
}

// NewRequirementRepository creates a requirement repository backed by store
func NewRequirementRepository(store *Store) workflowRepo.RequirementRepository {
	return &RequirementRepository{s: store}
}

func (r *RequirementRepository) Create(ctx context.Context, req *workflow.Requirement) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	now := time.Now()
	req.CreatedAt = now
	req.ModifiedAt = now

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.requirements[req.ID]; exists {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("requirement '%s' already exists", req.ID),
			ResourceType: "requirement",
			ResourceID:   req.ID,
		}
	}
	r.s.keepRequirement(ctx, req.ID)
	r.s.requirements[req.ID] = cloneRequirement(req)
	return nil
}

func (r *RequirementRepository) GetByID(ctx context.Context, id string) (*workflow.Requirement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	req, ok := r.s.requirements[id]
	if !ok {
		return nil, fmt.Errorf("requirement %s: %w", id, domain.ErrNotFound)
	}
	return cloneRequirement(req), nil
}

func (r *RequirementRepository) GetByFolderID(ctx context.Context, folderID string) (*workflow.Requirement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, req := range r.s.requirements {
		if req.FolderID == folderID {
			return cloneRequirement(req), nil
		}
	}
	return nil, fmt.Errorf("requirement for folder %s: %w", folderID, domain.ErrNotFound)
}

func (r *RequirementRepository) Update(ctx context.Context, req *workflow.Requirement) error {
	req.ModifiedAt = time.Now()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.requirements[req.ID]
	if !ok {
		return fmt.Errorf("requirement %s: %w", req.ID, domain.ErrNotFound)
	}
	r.s.keepRequirement(ctx, req.ID)
	updated := cloneRequirement(req)
	updated.AuthorID = existing.AuthorID
	updated.FolderID = existing.FolderID
	updated.CreatedAt = existing.CreatedAt
	r.s.requirements[req.ID] = updated
	return nil
}

func (r *RequirementRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.requirements[id]; !ok {
		return fmt.Errorf("requirement %s: %w", id, domain.ErrNotFound)
	}
	r.s.keepRequirement(ctx, id)
	delete(r.s.requirements, id)
	return nil
}

func (r *RequirementRepository) ListForAccount(ctx context.Context, accountID string) ([]workflow.Requirement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []workflow.Requirement{}
	for _, req := range r.s.requirements {
		if req.IsAuthor(accountID) || req.RecipientIndex(accountID) >= 0 {
			out = append(out, *cloneRequirement(req))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
