package workflow

// RequireOrder is one user's private ordering of requirement ids across the
// four status columns. A requirement id appears in exactly one column.
type RequireOrder struct {
	UserID     string   `json:"-" db:"user_id"`
	Waiting    []string `json:"waiting" db:"waiting"`
	Processing []string `json:"processing" db:"processing"`
	Done       []string `json:"done" db:"done"`
	Cancel     []string `json:"cancel" db:"cancel"`
}

// NewRequireOrder returns an order with four empty columns.
func NewRequireOrder(userID string) *RequireOrder {
	return &RequireOrder{
		UserID:     userID,
		Waiting:    []string{},
		Processing: []string{},
		Done:       []string{},
		Cancel:     []string{},
	}
}

// Column returns the list for s.
func (o *RequireOrder) Column(s Status) []string {
	switch s {
	case StatusWaiting:
		return o.Waiting
	case StatusProcessing:
		return o.Processing
	case StatusDone:
		return o.Done
	case StatusCancel:
		return o.Cancel
	}
	return nil
}

// SetColumn replaces the list for s.
func (o *RequireOrder) SetColumn(s Status, ids []string) {
	switch s {
	case StatusWaiting:
		o.Waiting = ids
	case StatusProcessing:
		o.Processing = ids
	case StatusDone:
		o.Done = ids
	case StatusCancel:
		o.Cancel = ids
	}
}

// Locate returns the column and index holding id.
func (o *RequireOrder) Locate(id string) (Status, int, bool) {
	for _, s := range Statuses {
		for i, have := range o.Column(s) {
			if have == id {
				return s, i, true
			}
		}
	}
	return "", -1, false
}
