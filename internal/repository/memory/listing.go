package memory

import (
	"sort"
	"strings"
	"time"

	"campusdrive/internal/domain/models/drive"
)

// entry is the subset of fields a listing filters and sorts on
type entry struct {
	id         string
	name       string
	parentID   *string
	ownerID    string
	sharedTo   []string
	starred    bool
	trashed    bool
	size       int64
	createdAt  time.Time
	modifiedAt time.Time
}

func (e *entry) matches(q *drive.ListQuery) bool {
	switch {
	case q.ParentID != nil:
		if e.parentID == nil || *e.parentID != *q.ParentID {
			return false
		}
	case q.RootOf != "":
		if e.parentID != nil || e.ownerID != q.RootOf {
			return false
		}
	case q.OwnedBy != "":
		if e.ownerID != q.OwnedBy {
			return false
		}
	case q.SharedWith != "":
		if !contains(e.sharedTo, q.SharedWith) {
			return false
		}
	}
	if q.Starred != nil && e.starred != *q.Starred {
		return false
	}
	if q.Trashed != nil && e.trashed != *q.Trashed {
		return false
	}
	return true
}

// page filters, sorts and slices entries, returning the selected ids in order
func page(entries []entry, q *drive.ListQuery) []string {
	q.ApplyDefaults()

	selected := make([]entry, 0, len(entries))
	for i := range entries {
		if entries[i].matches(q) {
			selected = append(selected, entries[i])
		}
	}

	less := func(a, b *entry) int {
		switch q.Sort {
		case drive.SortByCreatedAt:
			return a.createdAt.Compare(b.createdAt)
		case drive.SortByModifiedAt:
			return a.modifiedAt.Compare(b.modifiedAt)
		case drive.SortBySize:
			switch {
			case a.size < b.size:
				return -1
			case a.size > b.size:
				return 1
			}
			return 0
		}
		return strings.Compare(a.name, b.name)
	}
	sort.SliceStable(selected, func(i, j int) bool {
		c := less(&selected[i], &selected[j])
		if q.Desc {
			c = -c
		}
		if c == 0 {
			return selected[i].id < selected[j].id
		}
		return c < 0
	})

	if q.Skip >= len(selected) {
		return []string{}
	}
	selected = selected[q.Skip:]
	if len(selected) > q.Limit {
		selected = selected[:q.Limit]
	}

	ids := make([]string, len(selected))
	for i := range selected {
		ids[i] = selected[i].id
	}
	return ids
}
