// Package memory is an in-process backend for the repository interfaces.
// It is used by tests and when no DATABASE_URL is configured.
package memory

import (
	"context"
	"sync"

	"campusdrive/internal/domain/models/drive"
	"campusdrive/internal/domain/models/workflow"
	"campusdrive/internal/domain/repositories"
)

// Store holds every document behind one mutex. Values handed out are deep copies.
type Store struct {
	mu           sync.Mutex
	txMu         sync.Mutex
	folders      map[string]*drive.Folder
	files        map[string]*drive.File
	requirements map[string]*workflow.Requirement
	orders       map[string]*workflow.RequireOrder
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		folders:      make(map[string]*drive.Folder),
		files:        make(map[string]*drive.File),
		requirements: make(map[string]*workflow.Requirement),
		orders:       make(map[string]*workflow.RequireOrder),
	}
}

// undoLog holds the state each document had before a transaction first
// wrote it. A nil entry means the document did not exist.
type undoLog struct {
	folders      map[string]*drive.Folder
	files        map[string]*drive.File
	requirements map[string]*workflow.Requirement
	orders       map[string]*workflow.RequireOrder
}

func newUndoLog() *undoLog {
	return &undoLog{
		folders:      make(map[string]*drive.Folder),
		files:        make(map[string]*drive.File),
		requirements: make(map[string]*workflow.Requirement),
		orders:       make(map[string]*workflow.RequireOrder),
	}
}

type txKey struct{}

func undoFrom(ctx context.Context) *undoLog {
	log, _ := ctx.Value(txKey{}).(*undoLog)
	return log
}

// remember records live[id] in log unless it is already there
func remember[T any](log, live map[string]*T, id string, clone func(*T) *T) {
	if _, seen := log[id]; seen {
		return
	}
	if v, ok := live[id]; ok {
		log[id] = clone(v)
		return
	}
	log[id] = nil
}

func replay[T any](log, live map[string]*T) {
	for id, v := range log {
		if v == nil {
			delete(live, id)
			continue
		}
		live[id] = v
	}
}

// The keep helpers are called with mu held, before a write. Outside a
// transaction they do nothing.

func (s *Store) keepFolder(ctx context.Context, id string) {
	if log := undoFrom(ctx); log != nil {
		remember(log.folders, s.folders, id, cloneFolder)
	}
}

func (s *Store) keepFile(ctx context.Context, id string) {
	if log := undoFrom(ctx); log != nil {
		remember(log.files, s.files, id, cloneFile)
	}
}

func (s *Store) keepRequirement(ctx context.Context, id string) {
	if log := undoFrom(ctx); log != nil {
		remember(log.requirements, s.requirements, id, cloneRequirement)
	}
}

func (s *Store) keepOrder(ctx context.Context, userID string) {
	if log := undoFrom(ctx); log != nil {
		remember(log.orders, s.orders, userID, cloneOrder)
	}
}

// rollback puts back every document log recorded. Writes made outside the
// transaction to other documents are left alone.
func (s *Store) rollback(log *undoLog) {
	s.mu.Lock()
	defer s.mu.Unlock()

	replay(log.folders, s.folders)
	replay(log.files, s.files)
	replay(log.requirements, s.requirements)
	replay(log.orders, s.orders)
}

// TransactionManager gives ExecTx all-or-nothing semantics by undoing the
// writes fn made when it fails. Transactions are serialized.
type TransactionManager struct {
	store *Store
}

// NewTransactionManager creates a transaction manager over store
func NewTransactionManager(store *Store) repositories.TransactionManager {
	return &TransactionManager{store: store}
}

// ExecTx runs fn and rolls its writes back if it returns an error
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if undoFrom(ctx) != nil {
		return fn(ctx)
	}

	tm.store.txMu.Lock()
	defer tm.store.txMu.Unlock()

	log := newUndoLog()
	if err := fn(context.WithValue(ctx, txKey{}, log)); err != nil {
		tm.store.rollback(log)
		return err
	}
	return nil
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneCaps(in []drive.Capability) []drive.Capability {
	out := make([]drive.Capability, len(in))
	copy(out, in)
	return out
}

func clonePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFolder(f *drive.Folder) *drive.Folder {
	c := *f
	c.ParentID = clonePtr(f.ParentID)
	c.TrashedBy = clonePtr(f.TrashedBy)
	c.SubFolderIDs = cloneStrings(f.SubFolderIDs)
	c.FileIDs = cloneStrings(f.FileIDs)
	c.SharedTo = cloneStrings(f.SharedTo)
	c.Permissions = cloneCaps(f.Permissions)
	return &c
}

func cloneFile(f *drive.File) *drive.File {
	c := *f
	c.FolderID = clonePtr(f.FolderID)
	c.TrashedBy = clonePtr(f.TrashedBy)
	c.SharedTo = cloneStrings(f.SharedTo)
	c.Permissions = cloneCaps(f.Permissions)
	return &c
}

func cloneRequirement(r *workflow.Requirement) *workflow.Requirement {
	c := *r
	c.To = make([]workflow.Recipient, len(r.To))
	copy(c.To, r.To)
	return &c
}

func cloneOrder(o *workflow.RequireOrder) *workflow.RequireOrder {
	return &workflow.RequireOrder{
		UserID:     o.UserID,
		Waiting:    cloneStrings(o.Waiting),
		Processing: cloneStrings(o.Processing),
		Done:       cloneStrings(o.Done),
		Cancel:     cloneStrings(o.Cancel),
	}
}

// appendUnique appends v to s if it is not already present
func appendUnique(s []string, v ...string) []string {
	for _, item := range v {
		if !contains(s, item) {
			s = append(s, item)
		}
	}
	return s
}

func appendUniqueCaps(s []drive.Capability, v ...drive.Capability) []drive.Capability {
	for _, item := range v {
		if !drive.HasCapability(s, item) {
			s = append(s, item)
		}
	}
	return s
}

// without returns s minus every value in v
func without(s []string, v ...string) []string {
	out := make([]string, 0, len(s))
	for _, item := range s {
		if !contains(v, item) {
			out = append(out, item)
		}
	}
	return out
}

func contains(s []string, v string) bool {
	for _, item := range s {
		if item == v {
			return true
		}
	}
	return false
}
