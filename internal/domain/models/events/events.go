package events

import "context"

// Type names a domain event
type Type string

const (
	FileAddedToSubmissionFolder     Type = "file_added_to_submission_folder"
	FileRemovedFromSubmissionFolder Type = "file_removed_from_submission_folder"
)

// Event is published by the folder/file mutation service after a change has
// been committed. Consumers must not assume they run inside the same store
// transaction.
type Event struct {
	Type       Type
	FolderID   string
	FileID     string
	UploaderID string
}

// Publisher delivers events to whoever subscribed.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Handler consumes events.
type Handler interface {
	HandleEvent(ctx context.Context, ev Event) error
}
