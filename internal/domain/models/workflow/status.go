package workflow

// Status is shared by a requirement's overall status and each recipient's status.
type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusCancel     Status = "cancel"
)

// Statuses lists the four columns in display order.
var Statuses = []Status{StatusWaiting, StatusProcessing, StatusDone, StatusCancel}

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusWaiting, StatusProcessing, StatusDone, StatusCancel:
		return true
	}
	return false
}
