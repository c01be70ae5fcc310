package workflow

import (
	"time"

	"campusdrive/internal/domain/models/drive"
)

// Recipient is one entry of a requirement's to[] list.
type Recipient struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	Seen      bool   `json:"seen"`
	Sent      bool   `json:"sent"`
	Status    Status `json:"status"`
}

// Requirement is a request-for-files sent by an author to recipients.
// Status is the author's view; a recipient's operative status is its own entry in To.
type Requirement struct {
	ID         string         `json:"id" db:"id"`
	Title      string         `json:"title" db:"title"`
	AuthorID   string         `json:"author_id" db:"author_id"`
	To         []Recipient    `json:"to" db:"recipients"`
	FolderID   string         `json:"folder_id" db:"folder_id"`
	FileType   drive.FileType `json:"file_type" db:"file_type"`
	MaxSize    int64          `json:"max_size" db:"max_size"`
	Message    string         `json:"message" db:"message"`
	Note       string         `json:"note" db:"note"`
	Status     Status         `json:"status" db:"status"`
	StartDate  time.Time      `json:"start_date" db:"start_date"`
	EndDate    time.Time      `json:"end_date" db:"end_date"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
	ModifiedAt time.Time      `json:"modified_at" db:"modified_at"`
}

// IsAuthor reports whether accountID authored the requirement.
func (r *Requirement) IsAuthor(accountID string) bool {
	return r.AuthorID == accountID
}

// RecipientIndex returns the index of accountID in To, or -1.
func (r *Requirement) RecipientIndex(accountID string) int {
	for i := range r.To {
		if r.To[i].AccountID == accountID {
			return i
		}
	}
	return -1
}

// Participants returns the author followed by every recipient account id.
func (r *Requirement) Participants() []string {
	ids := make([]string, 0, len(r.To)+1)
	ids = append(ids, r.AuthorID)
	for _, rec := range r.To {
		ids = append(ids, rec.AccountID)
	}
	return ids
}

// IsDone reports whether the requirement reached its terminal status.
func (r *Requirement) IsDone() bool {
	return r.Status == StatusDone
}

// CountRecipients counts recipients in status s, ignoring the entry at skip (-1 to count all).
func (r *Requirement) CountRecipients(s Status, skip int) int {
	n := 0
	for i, rec := range r.To {
		if i == skip {
			continue
		}
		if rec.Status == s {
			n++
		}
	}
	return n
}
