package drive

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"campusdrive/internal/blob"
	"campusdrive/internal/cache"
	"campusdrive/internal/capabilities"
	identity "campusdrive/internal/domain/models"
	models "campusdrive/internal/domain/models/drive"
	"campusdrive/internal/domain/models/events"
	driveSvc "campusdrive/internal/domain/services/drive"
	"campusdrive/internal/repository/memory"
	authsvc "campusdrive/internal/service/auth"

	"github.com/stretchr/testify/require"
)

var (
	alice = identity.Actor{AccountID: "alice", Email: "alice@example.com", Role: "lecturer"}
	bob   = identity.Actor{AccountID: "bob", Email: "bob@example.com", Role: "student"}
	carol = identity.Actor{AccountID: "carol", Email: "carol@example.com", Role: "student"}
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) all() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Event, len(p.events))
	copy(out, p.events)
	return out
}

type fixture struct {
	ctx     context.Context
	deps    Deps
	blobs   *blob.MemoryStore
	cache   *cache.Memory
	events  *recordingPublisher
	folders driveSvc.FolderService
	files   driveSvc.FileService
	archive driveSvc.ArchiveService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	registry, err := capabilities.NewRegistry()
	require.NoError(t, err)

	store := memory.NewStore()
	f := &fixture{
		ctx:    context.Background(),
		blobs:  blob.NewMemoryStore(),
		cache:  cache.NewMemory(),
		events: &recordingPublisher{},
	}
	f.deps = Deps{
		Folders:   memory.NewFolderRepository(store),
		Files:     memory.NewFileRepository(store),
		TxManager: memory.NewTransactionManager(store),
		Guard:     authsvc.NewGuard(),
		Blobs:     f.blobs,
		Cache:     f.cache,
		CacheTTL:  time.Minute,
		Events:    f.events,
		Registry:  registry,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	f.folders = NewFolderService(f.deps)
	f.files = NewFileService(f.deps)
	f.archive = NewArchiveService(f.deps)
	return f
}

func (f *fixture) mkdir(t *testing.T, actor identity.Actor, name string, parentID *string) *models.Folder {
	t.Helper()
	folder, err := f.folders.CreateFolder(f.ctx, actor, &driveSvc.CreateFolderRequest{Name: name, ParentID: parentID})
	require.NoError(t, err)
	return folder
}

func (f *fixture) upload(t *testing.T, actor identity.Actor, name string, size int64, folderID *string) *models.File {
	t.Helper()
	file, err := f.files.Upload(f.ctx, actor, &driveSvc.UploadFileRequest{
		Name:     name,
		Type:     models.FileTypeTxt,
		Size:     size,
		FolderID: folderID,
		Content:  strings.NewReader("content of " + name),
	})
	require.NoError(t, err)
	return file
}

func (f *fixture) folder(t *testing.T, id string) *models.Folder {
	t.Helper()
	folder, err := f.deps.Folders.GetByID(f.ctx, id)
	require.NoError(t, err)
	return folder
}

func (f *fixture) file(t *testing.T, id string) *models.File {
	t.Helper()
	file, err := f.deps.Files.GetByID(f.ctx, id)
	require.NoError(t, err)
	return file
}

func (f *fixture) share(t *testing.T, owner identity.Actor, folderID string, to identity.Actor, caps ...models.Capability) {
	t.Helper()
	_, err := f.folders.ShareFolder(f.ctx, owner, folderID, &driveSvc.ShareRequest{
		Emails:      []string{to.Email},
		Permissions: caps,
	})
	require.NoError(t, err)
}
