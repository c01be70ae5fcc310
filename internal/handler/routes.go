package handler

import "net/http"

// Handlers groups every HTTP handler the server mounts
type Handlers struct {
	Folders       *FolderHandler
	Files         *FileHandler
	Requirements  *RequirementHandler
	Notifications *NotificationHandler
}

// Register mounts all routes on mux (Go 1.22+ enhanced patterns)
func (h *Handlers) Register(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /health", HealthCheck)

	// Folder routes
	mux.HandleFunc("POST /api/folders", h.Folders.CreateFolder)
	mux.HandleFunc("GET /api/folders", h.Folders.ListFolders)
	mux.HandleFunc("GET /api/folders/{id}", h.Folders.GetFolder)
	mux.HandleFunc("GET /api/folders/{id}/children", h.Folders.ListChildren)
	mux.HandleFunc("GET /api/folders/{id}/location", h.Folders.Location)
	mux.HandleFunc("GET /api/folders/{id}/download", h.Folders.DownloadFolder)
	mux.HandleFunc("PATCH /api/folders/{id}", h.Folders.UpdateFolder)
	mux.HandleFunc("POST /api/folders/{id}/copy", h.Folders.CopyFolder)
	mux.HandleFunc("POST /api/folders/{id}/move", h.Folders.MoveFolder)
	mux.HandleFunc("POST /api/folders/{id}/trash", h.Folders.TrashFolder)
	mux.HandleFunc("POST /api/folders/{id}/restore", h.Folders.RestoreFolder)
	mux.HandleFunc("POST /api/folders/{id}/share", h.Folders.ShareFolder)
	mux.HandleFunc("POST /api/folders/{id}/unshare", h.Folders.UnshareFolder)
	mux.HandleFunc("POST /api/folders/{id}/verify-size", h.Folders.VerifySize)
	mux.HandleFunc("DELETE /api/folders/{id}", h.Folders.DeleteFolder)

	// File routes
	mux.HandleFunc("POST /api/files", h.Files.Upload)
	mux.HandleFunc("GET /api/files", h.Files.ListFiles)
	mux.HandleFunc("GET /api/files/{id}", h.Files.GetFile)
	mux.HandleFunc("GET /api/files/{id}/download", h.Files.Download)
	mux.HandleFunc("PATCH /api/files/{id}", h.Files.UpdateFile)
	mux.HandleFunc("POST /api/files/{id}/copy", h.Files.CopyFile)
	mux.HandleFunc("POST /api/files/{id}/move", h.Files.MoveFile)
	mux.HandleFunc("POST /api/files/{id}/trash", h.Files.TrashFile)
	mux.HandleFunc("POST /api/files/{id}/restore", h.Files.RestoreFile)
	mux.HandleFunc("POST /api/files/{id}/share", h.Files.ShareFile)
	mux.HandleFunc("POST /api/files/{id}/unshare", h.Files.UnshareFile)
	mux.HandleFunc("DELETE /api/files/{id}", h.Files.DeleteFile)

	// Requirement routes
	mux.HandleFunc("POST /api/requirements", h.Requirements.CreateRequirement)
	mux.HandleFunc("GET /api/requirements", h.Requirements.ListRequirements)
	mux.HandleFunc("PUT /api/requirements/order", h.Requirements.Reorder) // Must come before {id} routes
	mux.HandleFunc("GET /api/requirements/{id}", h.Requirements.GetRequirement)
	mux.HandleFunc("PATCH /api/requirements/{id}", h.Requirements.EditRequirement)
	mux.HandleFunc("DELETE /api/requirements/{id}", h.Requirements.DeleteRequirement)
	mux.HandleFunc("PUT /api/requirements/{id}/status", h.Requirements.UpdateStatus)
	mux.HandleFunc("PUT /api/requirements/{id}/seen", h.Requirements.MarkSeen)

	// Notification socket
	if h.Notifications != nil {
		mux.HandleFunc("GET /api/ws", h.Notifications.Connect)
	}
}
