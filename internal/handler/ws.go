package handler

import (
	"log/slog"
	"net/http"

	"campusdrive/internal/notify"
)

// NotificationHandler upgrades clients to the notification socket
type NotificationHandler struct {
	hub    *notify.Hub
	logger *slog.Logger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(hub *notify.Hub, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{hub: hub, logger: logger}
}

// Connect holds the socket open until the client leaves
// GET /api/ws
func (h *NotificationHandler) Connect(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	// Upgrade writes its own error response
	if err := h.hub.Serve(w, r, actor.AccountID); err != nil {
		h.logger.Debug("websocket upgrade failed", "account_id", actor.AccountID, "error", err)
	}
}
