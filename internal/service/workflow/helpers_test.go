package workflow

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
	driveModels "campusdrive/internal/domain/models/drive"
	models "campusdrive/internal/domain/models/workflow"
	"campusdrive/internal/domain/services"
	driveSvc "campusdrive/internal/domain/services/drive"
	workflowSvc "campusdrive/internal/domain/services/workflow"
	eventbus "campusdrive/internal/events"
	"campusdrive/internal/repository/memory"
	authsvc "campusdrive/internal/service/auth"
	"campusdrive/internal/service/drive"

	"github.com/stretchr/testify/require"
)

var (
	alice = identity.Actor{AccountID: "alice", Email: "alice@example.com", Role: "lecturer"}
	bob   = identity.Actor{AccountID: "bob", Email: "bob@example.com", Role: "student"}
	carol = identity.Actor{AccountID: "carol", Email: "carol@example.com", Role: "student"}
	dave  = identity.Actor{AccountID: "dave", Email: "dave@example.com", Role: "student"}
)

func intPtr(i int) *int { return &i }

func recipient(a identity.Actor) workflowSvc.RecipientInput {
	return workflowSvc.RecipientInput{AccountID: a.AccountID, Email: a.Email}
}

type sent struct {
	to  []string
	typ string
}

// recordingNotifier keeps every notification
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sent
}

func (n *recordingNotifier) Notify(ctx context.Context, accountIDs []string, msg services.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sent{to: append([]string(nil), accountIDs...), typ: msg.Type})
}

func (n *recordingNotifier) of(typ string) []sent {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []sent
	for _, s := range n.sent {
		if s.typ == typ {
			out = append(out, s)
		}
	}
	return out
}

type fixture struct {
	ctx      context.Context
	deps     Deps
	notifier *recordingNotifier
	svc      workflowSvc.RequirementService
	folders  driveSvc.FolderService
	files    driveSvc.FileService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	registry, err := capabilities.NewRegistry()
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()
	bus := eventbus.NewBus(logger)

	driveDeps := drive.Deps{
		Folders:   memory.NewFolderRepository(store),
		Files:     memory.NewFileRepository(store),
		TxManager: memory.NewTransactionManager(store),
		Guard:     authsvc.NewGuard(),
		Blobs:     blob.NewMemoryStore(),
		Cache:     cache.NewMemory(),
		CacheTTL:  time.Minute,
		Events:    bus,
		Registry:  registry,
		Logger:    logger,
	}

	f := &fixture{
		ctx:      context.Background(),
		notifier: &recordingNotifier{},
		folders:  drive.NewFolderService(driveDeps),
		files:    drive.NewFileService(driveDeps),
	}
	f.deps = Deps{
		Requirements: memory.NewRequirementRepository(store),
		Orders:       memory.NewRequireOrderRepository(store),
		Folders:      f.folders,
		FolderRepo:   driveDeps.Folders,
		TxManager:    driveDeps.TxManager,
		Registry:     registry,
		Notifier:     f.notifier,
		Logger:       logger,
	}
	f.svc = NewRequirementService(f.deps)
	bus.Subscribe(f.svc)
	return f
}

func (f *fixture) create(t *testing.T, author identity.Actor, recipients ...identity.Actor) *models.Requirement {
	t.Helper()
	to := make([]workflowSvc.RecipientInput, len(recipients))
	for i, r := range recipients {
		to[i] = recipient(r)
	}
	req, err := f.svc.CreateRequirement(f.ctx, author, &workflowSvc.CreateRequirementRequest{
		Title:      "Lab report",
		Recipients: to,
		FileType:   driveModels.FileTypeTxt,
	})
	require.NoError(t, err)
	return req
}

func (f *fixture) status(t *testing.T, actor identity.Actor, id string, dest models.Status) *models.Requirement {
	t.Helper()
	req, err := f.svc.UpdateStatus(f.ctx, actor, &workflowSvc.UpdateStatusRequest{RequirementID: id, Destination: dest})
	require.NoError(t, err)
	return req
}

func (f *fixture) requirement(t *testing.T, id string) *models.Requirement {
	t.Helper()
	req, err := f.deps.Requirements.GetByID(f.ctx, id)
	require.NoError(t, err)
	return req
}

func (f *fixture) order(t *testing.T, userID string) *models.RequireOrder {
	t.Helper()
	order, err := f.deps.Orders.Get(f.ctx, userID)
	require.NoError(t, err)
	return order
}

func (f *fixture) submit(t *testing.T, actor identity.Actor, folderID, name string) *driveModels.File {
	t.Helper()
	file, err := f.files.Upload(f.ctx, actor, &driveSvc.UploadFileRequest{
		Name:     name,
		Type:     driveModels.FileTypeTxt,
		Size:     int64(len(name)),
		FolderID: &folderID,
		Content:  strings.NewReader(name),
	})
	require.NoError(t, err)
	return file
}

// columnOf returns the single column holding id, failing if it appears twice
func columnOf(t *testing.T, order *models.RequireOrder, id string) models.Status {
	t.Helper()
	var found []models.Status
	for _, s := range models.Statuses {
		for _, have := range order.Column(s) {
			if have == id {
				found = append(found, s)
			}
		}
	}
	require.LessOrEqual(t, len(found), 1, "requirement appears in more than one column")
	if len(found) == 0 {
		return ""
	}
	return found[0]
}
