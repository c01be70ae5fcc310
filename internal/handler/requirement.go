package handler

import (
	"log/slog"
	"net/http"

	workflowSvc "campusdrive/internal/domain/services/workflow"
	"campusdrive/internal/httputil"
)

// RequirementHandler handles requirement HTTP requests
type RequirementHandler struct {
	requirementService workflowSvc.RequirementService
	logger             *slog.Logger
}

// NewRequirementHandler creates a new requirement handler
func NewRequirementHandler(requirementService workflowSvc.RequirementService, logger *slog.Logger) *RequirementHandler {
	return &RequirementHandler{
		requirementService: requirementService,
		logger:             logger,
	}
}

// CreateRequirement creates a requirement and its submission folder
// POST /api/requirements
func (h *RequirementHandler) CreateRequirement(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req workflowSvc.CreateRequirementRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	requirement, err := h.requirementService.CreateRequirement(r.Context(), actor, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, requirement)
}

// ListRequirements returns the caller's requirements and board order
// GET /api/requirements
func (h *RequirementHandler) ListRequirements(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	board, err := h.requirementService.ListRequirements(r.Context(), actor)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, board)
}

// GetRequirement retrieves a requirement
// GET /api/requirements/{id}
func (h *RequirementHandler) GetRequirement(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	requirement, err := h.requirementService.GetRequirement(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, requirement)
}

// EditRequirement changes fields and recipients
// PATCH /api/requirements/{id}
func (h *RequirementHandler) EditRequirement(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req workflowSvc.EditRequirementRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	requirement, err := h.requirementService.EditRequirement(r.Context(), actor, r.PathValue("id"), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, requirement)
}

// DeleteRequirement deletes a requirement
// DELETE /api/requirements/{id}
func (h *RequirementHandler) DeleteRequirement(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	if err := h.requirementService.DeleteRequirement(r.Context(), actor, r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateStatus moves the caller's view of a requirement
// PUT /api/requirements/{id}/status
func (h *RequirementHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req workflowSvc.UpdateStatusRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.RequirementID = r.PathValue("id")

	requirement, err := h.requirementService.UpdateStatus(r.Context(), actor, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, requirement)
}

// MarkSeen flags the requirement as read by the caller
// PUT /api/requirements/{id}/seen
func (h *RequirementHandler) MarkSeen(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	requirement, err := h.requirementService.MarkSeen(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, requirement)
}

// Reorder applies a drag-and-drop on the caller's board
// PUT /api/requirements/order
func (h *RequirementHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req workflowSvc.ReorderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.requirementService.Reorder(r.Context(), actor, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, order)
}
