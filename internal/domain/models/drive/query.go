package drive

// SortField selects the listing order
type SortField string

const (
	SortByName       SortField = "name"
	SortByCreatedAt  SortField = "created_at"
	SortByModifiedAt SortField = "modified_at"
	SortBySize       SortField = "size"
)

// Default listing configuration values
const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// ListQuery filters folder and file listings. Exactly one scope applies:
// ParentID (contents of a folder), RootOf (an account's top level),
// OwnedBy (everything an account owns, any depth) or SharedWith (entities
// shared to an email).
type ListQuery struct {
	ParentID   *string
	RootOf     string
	OwnedBy    string
	SharedWith string

	Starred *bool
	Trashed *bool

	Sort  SortField
	Desc  bool
	Skip  int
	Limit int
}

// ApplyDefaults fills in default values for unset fields
func (q *ListQuery) ApplyDefaults() {
	if q.Sort == "" {
		q.Sort = SortByName
	}
	if q.Limit <= 0 {
		q.Limit = DefaultListLimit
	}
	if q.Limit > MaxListLimit {
		q.Limit = MaxListLimit
	}
	if q.Skip < 0 {
		q.Skip = 0
	}
}

// Subtree is the result of enumerating a folder: the folder itself first,
// then its descendants level by level.
type Subtree struct {
	Folders []Folder
	Files   []File
}

// FolderIDs returns the ids of every enumerated folder.
func (s *Subtree) FolderIDs() []string {
	ids := make([]string, 0, len(s.Folders))
	for _, f := range s.Folders {
		ids = append(ids, f.ID)
	}
	return ids
}

// FileIDs returns the ids of every enumerated file.
func (s *Subtree) FileIDs() []string {
	ids := make([]string, 0, len(s.Files))
	for _, f := range s.Files {
		ids = append(ids, f.ID)
	}
	return ids
}
