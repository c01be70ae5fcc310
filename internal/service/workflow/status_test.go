package workflow

import (
	"testing"

	"campusdrive/internal/domain"
	identity "campusdrive/internal/domain/models"
	models "campusdrive/internal/domain/models/workflow"
	"campusdrive/internal/domain/services"
	workflowSvc "campusdrive/internal/domain/services/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reqWith(overall models.Status, statuses ...models.Status) *models.Requirement {
	req := &models.Requirement{AuthorID: "author", Status: overall}
	for i, s := range statuses {
		req.To = append(req.To, models.Recipient{AccountID: string(rune('a' + i)), Status: s})
	}
	return req
}

func TestDeriveOverall(t *testing.T) {
	const (
		W = models.StatusWaiting
		P = models.StatusProcessing
		D = models.StatusDone
		C = models.StatusCancel
	)
	tests := []struct {
		name string
		req  *models.Requirement
		idx  int
		dest models.Status
		want models.Status
	}{
		{"first to start", reqWith(W, W, W, W), 0, P, P},
		{"second to start leaves overall", reqWith(C, P, W, W), 1, P, C},
		{"last to finish", reqWith(P, P, D, D), 0, D, D},
		{"not last to finish", reqWith(P, P, W, D), 0, D, P},
		{"single recipient finishes", reqWith(W, W), 0, D, D},
		{"only worker steps back", reqWith(P, P, W, W), 0, W, W},
		{"idle recipient to waiting", reqWith(P, W, P, W), 0, W, P},
		{"one of two workers steps back", reqWith(P, P, P, W), 0, W, P},
		{"cancel never derived", reqWith(P, P, W), 0, C, P},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deriveOverall(tt.req, tt.idx, tt.dest))
		})
	}
}

func TestUpdateStatus_ThreeRecipients(t *testing.T) {
	f := newFixture(t)
	req := f.create(t, alice, bob, carol, dave)

	got := f.status(t, bob, req.ID, models.StatusProcessing)
	assert.Equal(t, models.StatusProcessing, got.Status)
	assert.Equal(t, models.StatusProcessing, got.To[0].Status)
	assert.Equal(t, models.StatusProcessing, columnOf(t, f.order(t, "bob"), req.ID))
	assert.Equal(t, models.StatusProcessing, columnOf(t, f.order(t, "alice"), req.ID))
	assert.Equal(t, models.StatusWaiting, columnOf(t, f.order(t, "carol"), req.ID))

	got = f.status(t, carol, req.ID, models.StatusDone)
	assert.Equal(t, models.StatusProcessing, got.Status)
	got = f.status(t, dave, req.ID, models.StatusDone)
	assert.Equal(t, models.StatusProcessing, got.Status)

	got = f.status(t, bob, req.ID, models.StatusDone)
	assert.Equal(t, models.StatusDone, got.Status)
	assert.Equal(t, models.StatusDone, columnOf(t, f.order(t, "alice"), req.ID))
	assert.Equal(t, models.StatusDone, columnOf(t, f.order(t, "bob"), req.ID))

	for _, actor := range []identity.Actor{alice, bob} {
		_, err := f.svc.UpdateStatus(f.ctx, actor, &workflowSvc.UpdateStatusRequest{
			RequirementID: req.ID,
			Destination:   models.StatusWaiting,
		})
		var conflict *domain.ConflictError
		assert.ErrorAs(t, err, &conflict, actor.AccountID)
	}

	assert.Equal(t, models.StatusDone, f.requirement(t, req.ID).Status)
	assert.NotEmpty(t, f.notifier.of(services.NotificationRequirementUpdated))
}

func TestUpdateStatus_AuthorSetsOverallDirectly(t *testing.T) {
	f := newFixture(t)
	req := f.create(t, alice, bob)

	got := f.status(t, alice, req.ID, models.StatusCancel)
	assert.Equal(t, models.StatusCancel, got.Status)
	assert.Equal(t, models.StatusWaiting, got.To[0].Status)
	assert.Equal(t, models.StatusCancel, columnOf(t, f.order(t, "alice"), req.ID))
	assert.Equal(t, models.StatusWaiting, columnOf(t, f.order(t, "bob"), req.ID))
}

func TestUpdateStatus_BackToWaiting(t *testing.T) {
	f := newFixture(t)
	req := f.create(t, alice, bob, carol)

	f.status(t, bob, req.ID, models.StatusProcessing)
	got := f.status(t, bob, req.ID, models.StatusWaiting)
	assert.Equal(t, models.StatusWaiting, got.Status)
	assert.Equal(t, models.StatusWaiting, columnOf(t, f.order(t, "alice"), req.ID))
}

func TestUpdateStatus_DestinationIndex(t *testing.T) {
	f := newFixture(t)
	first := f.create(t, alice, bob)
	second := f.create(t, alice, bob)

	f.status(t, bob, first.ID, models.StatusProcessing)
	_, err := f.svc.UpdateStatus(f.ctx, bob, &workflowSvc.UpdateStatusRequest{
		RequirementID:    second.ID,
		Destination:      models.StatusProcessing,
		DestinationIndex: intPtr(0),
	})
	require.NoError(t, err)

	order := f.order(t, "bob")
	assert.Equal(t, []string{second.ID, first.ID}, order.Processing)
	assert.Empty(t, order.Waiting)
}

func TestUpdateStatus_Rejections(t *testing.T) {
	f := newFixture(t)
	req := f.create(t, alice, bob)

	_, err := f.svc.UpdateStatus(f.ctx, bob, &workflowSvc.UpdateStatusRequest{RequirementID: req.ID, Destination: "archived"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.UpdateStatus(f.ctx, carol, &workflowSvc.UpdateStatusRequest{RequirementID: req.ID, Destination: models.StatusDone})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.UpdateStatus(f.ctx, bob, &workflowSvc.UpdateStatusRequest{RequirementID: "missing", Destination: models.StatusDone})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, models.StatusWaiting, f.requirement(t, req.ID).To[0].Status)
}
