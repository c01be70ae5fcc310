package postgres

import (
	"fmt"
	"strings"

	"campusdrive/internal/domain/models/drive"
)

// ListFilter renders the WHERE clause for a ListQuery. parentColumn is
// parent_id for folders and folder_id for files.
func ListFilter(q *drive.ListQuery, parentColumn string) (string, []interface{}) {
	var conds []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	switch {
	case q.ParentID != nil:
		conds = append(conds, parentColumn+" = "+arg(*q.ParentID))
	case q.RootOf != "":
		conds = append(conds, parentColumn+" IS NULL", "owner_id = "+arg(q.RootOf))
	case q.OwnedBy != "":
		conds = append(conds, "owner_id = "+arg(q.OwnedBy))
	case q.SharedWith != "":
		conds = append(conds, arg(q.SharedWith)+" = ANY(shared_to)")
	}
	if q.Starred != nil {
		conds = append(conds, "is_starred = "+arg(*q.Starred))
	}
	if q.Trashed != nil {
		conds = append(conds, "is_trashed = "+arg(*q.Trashed))
	}

	if len(conds) == 0 {
		return "TRUE", args
	}
	return strings.Join(conds, " AND "), args
}

// OrderClause renders ORDER BY/LIMIT/OFFSET for a ListQuery, appending to args
func OrderClause(q *drive.ListQuery, args []interface{}) (string, []interface{}) {
	column := "name"
	switch q.Sort {
	case drive.SortByCreatedAt, drive.SortByModifiedAt, drive.SortBySize:
		column = string(q.Sort)
	}
	dir := "ASC"
	if q.Desc {
		dir = "DESC"
	}
	args = append(args, q.Limit, q.Skip)
	return fmt.Sprintf("ORDER BY %s %s, id ASC LIMIT $%d OFFSET $%d", column, dir, len(args)-1, len(args)), args
}
