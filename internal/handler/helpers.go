package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"campusdrive/internal/domain"
	"campusdrive/internal/domain/models"
	driveModels "campusdrive/internal/domain/models/drive"
	driveSvc "campusdrive/internal/domain/services/drive"
	"campusdrive/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var conflictErr *domain.ConflictError
	var depErr *domain.DependencyError

	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &conflictErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, conflictErr.Error(), map[string]interface{}{
			"resource_type": conflictErr.ResourceType,
			"resource_id":   conflictErr.ResourceID,
		})
	case errors.As(err, &depErr):
		httputil.RespondError(w, http.StatusBadGateway, depErr.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// respondResult writes entity with status, or the error. A dependency failure
// after a commit is answered with 502 and the committed entity in the body.
func respondResult(w http.ResponseWriter, status int, entity interface{}, err error) {
	var depErr *domain.DependencyError
	if err != nil && errors.As(err, &depErr) && entity != nil {
		httputil.RespondErrorWithExtras(w, http.StatusBadGateway, depErr.Error(), map[string]interface{}{
			"entity": entity,
		})
		return
	}
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, status, entity)
}

// requireActor returns the authenticated actor or writes a 401
func requireActor(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	actor, ok := httputil.GetActor(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "not authenticated")
	}
	return actor, ok
}

// optionalID maps an empty string to nil (the root)
func optionalID(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// parseListRequest reads ?view ?folder_id ?sort ?desc ?skip ?limit
func parseListRequest(r *http.Request) (*driveSvc.ListRequest, error) {
	q := r.URL.Query()
	req := &driveSvc.ListRequest{
		FolderID: optionalID(q.Get("folder_id")),
		View:     driveSvc.ListView(q.Get("view")),
		Sort:     driveModels.SortField(q.Get("sort")),
	}
	if req.View == "" {
		req.View = driveSvc.ViewMine
	}

	var err error
	if v := q.Get("desc"); v != "" {
		if req.Desc, err = strconv.ParseBool(v); err != nil {
			return nil, domain.NewValidation("desc must be a boolean")
		}
	}
	if v := q.Get("skip"); v != "" {
		if req.Skip, err = strconv.Atoi(v); err != nil {
			return nil, domain.NewValidation("skip must be an integer")
		}
	}
	if v := q.Get("limit"); v != "" {
		if req.Limit, err = strconv.Atoi(v); err != nil {
			return nil, domain.NewValidation("limit must be an integer")
		}
	}
	return req, nil
}

// destinationRequest is the body of copy and move
type destinationRequest struct {
	DestinationID *string `json:"destination_id"`
}

// unshareRequest is the body of unshare
type unshareRequest struct {
	Emails []string `json:"emails"`
}

type trashResponse struct {
	Outcome driveSvc.TrashOutcome `json:"outcome"`
}

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
