package services

import "context"

// Notification types pushed to the real-time channel
const (
	NotificationRequirementReceived = "requirement.received"
	NotificationRequirementUpdated  = "requirement.updated"
	NotificationRequirementRemoved  = "requirement.removed"
)

// Notification is a fire-and-forget event for connected clients
type Notification struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Notifier pushes notifications to accounts. Delivery is not confirmed.
type Notifier interface {
	Notify(ctx context.Context, accountIDs []string, n Notification)
}
