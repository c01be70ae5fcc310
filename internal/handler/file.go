package handler

import (
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"campusdrive/internal/capabilities"
	driveModels "campusdrive/internal/domain/models/drive"
	driveSvc "campusdrive/internal/domain/services/drive"
	"campusdrive/internal/httputil"
)

// multipart parts beyond this are spooled to disk by net/http
const uploadMemory = 32 << 20

// FileHandler handles file HTTP requests
type FileHandler struct {
	fileService driveSvc.FileService
	registry    *capabilities.Registry
	maxUpload   int64
	logger      *slog.Logger
}

// NewFileHandler creates a new file handler. The request body limit follows
// the largest file type the registry accepts.
func NewFileHandler(fileService driveSvc.FileService, registry *capabilities.Registry, logger *slog.Logger) *FileHandler {
	var maxUpload int64
	for _, p := range registry.ListFileTypes() {
		maxUpload = max(maxUpload, p.MaxBytes())
	}
	return &FileHandler{
		fileService: fileService,
		registry:    registry,
		maxUpload:   maxUpload + 1<<20,
		logger:      logger,
	}
}

// splitFilename splits "report.final.pdf" into "report.final" and "pdf"
func splitFilename(filename string) (string, driveModels.FileType) {
	filename = filepath.Base(filename)
	ext := filepath.Ext(filename)
	return strings.TrimSuffix(filename, ext), driveModels.FileType(strings.ToLower(strings.TrimPrefix(ext, ".")))
}

// Upload stores a new file
// POST /api/files (multipart: file, folder_id, name, type)
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(uploadMemory); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	part, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "file part is required")
		return
	}
	defer part.Close()

	name, fileType := splitFilename(header.Filename)
	if v := r.FormValue("name"); v != "" {
		name = v
	}
	if v := r.FormValue("type"); v != "" {
		fileType = driveModels.FileType(v)
	}

	file, err := h.fileService.Upload(r.Context(), actor, &driveSvc.UploadFileRequest{
		Name:     name,
		Type:     fileType,
		Size:     header.Size,
		FolderID: optionalID(r.FormValue("folder_id")),
		Content:  part,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, file)
}

// ListFiles lists files for one of the views
// GET /api/files?view=mine|starred|trash|shared
func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	req, err := parseListRequest(r)
	if err != nil {
		handleError(w, err)
		return
	}

	files, err := h.fileService.ListFiles(r.Context(), actor, req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, files)
}

// GetFile retrieves file metadata
// GET /api/files/{id}
func (h *FileHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	file, err := h.fileService.GetFile(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

// Download streams the file content
// GET /api/files/{id}/download
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	file, content, err := h.fileService.Download(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	defer content.Close()

	contentType := "application/octet-stream"
	if policy, err := h.registry.FileType(file.Type); err == nil {
		contentType = policy.MimeType
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(file.Size, 10))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": file.Name + "." + string(file.Type),
	}))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, content); err != nil {
		h.logger.Warn("download interrupted", "file_id", file.ID, "error", err)
	}
}

// UpdateFile renames or stars a file
// PATCH /api/files/{id}
func (h *FileHandler) UpdateFile(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req driveSvc.UpdateRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	file, err := h.fileService.UpdateFile(r.Context(), actor, r.PathValue("id"), &req)
	respondResult(w, http.StatusOK, file, err)
}

// CopyFile copies a file
// POST /api/files/{id}/copy
func (h *FileHandler) CopyFile(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req destinationRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	file, err := h.fileService.CopyFile(r.Context(), actor, r.PathValue("id"), req.DestinationID)
	respondResult(w, http.StatusCreated, file, err)
}

// MoveFile moves a file to another folder
// POST /api/files/{id}/move
func (h *FileHandler) MoveFile(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req destinationRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	file, err := h.fileService.MoveFile(r.Context(), actor, r.PathValue("id"), req.DestinationID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

// TrashFile trashes a file, or removes the caller from its share list
// POST /api/files/{id}/trash
func (h *FileHandler) TrashFile(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	outcome, err := h.fileService.TrashFile(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, trashResponse{Outcome: outcome})
}

// RestoreFile restores a trashed file
// POST /api/files/{id}/restore
func (h *FileHandler) RestoreFile(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	if err := h.fileService.RestoreFile(r.Context(), actor, r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ShareFile shares a file
// POST /api/files/{id}/share
func (h *FileHandler) ShareFile(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req driveSvc.ShareRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	file, err := h.fileService.ShareFile(r.Context(), actor, r.PathValue("id"), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

// UnshareFile removes emails from the share list
// POST /api/files/{id}/unshare
func (h *FileHandler) UnshareFile(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req unshareRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	file, err := h.fileService.UnshareFile(r.Context(), actor, r.PathValue("id"), req.Emails)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

// DeleteFile hard-deletes a file and its content
// DELETE /api/files/{id}
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	if err := h.fileService.DeleteFile(r.Context(), actor, r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
